// Package remote is an HTTP/JSON client for the computation service.
//
// Every operation is a POST to <base>/<command> whose body carries the named
// arguments of that command. Successful responses are JSON, except exports,
// which return the rendered document bytes. A non-2xx status is a rejection;
// its body (a JSON {"error": "..."} object or plain text) becomes the detail.
package remote

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/hpungsan/masscalc/internal/chem"
	"github.com/hpungsan/masscalc/internal/errors"
	"github.com/hpungsan/masscalc/internal/service"
)

// maxErrorBody caps how much of a rejection body is read into the detail.
const maxErrorBody = 4096

// Client implements service.Service over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

var _ service.Service = (*Client)(nil)

// New creates a client for baseURL. A zero timeout leaves requests bounded
// only by their context.
func New(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

type formulaInput struct {
	Formula string `json:"formula"`
}

type inputArgs[T any] struct {
	Input T `json:"input"`
}

type elementsArgs struct {
	Elements []chem.Element `json:"elements"`
}

type outputArgs struct {
	Output chem.CalculationResult `json:"output"`
}

// ParseFormula calls parse_formula.
func (c *Client) ParseFormula(ctx context.Context, formula string) ([]string, error) {
	var out []string
	err := c.call(ctx, "parse_formula", inputArgs[formulaInput]{Input: formulaInput{Formula: formula}}, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Calculate calls calculate.
func (c *Client) Calculate(ctx context.Context, req chem.CalculationRequest) (*chem.CalculationResult, error) {
	if req.StartingMaterials == nil {
		req.StartingMaterials = []string{}
	}
	var out *chem.CalculationResult
	if err := c.call(ctx, "calculate", inputArgs[chem.CalculationRequest]{Input: req}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetSettings calls get_settings.
func (c *Client) GetSettings(ctx context.Context) (chem.SettingsPayload, error) {
	var out chem.SettingsPayload
	if err := c.call(ctx, "get_settings", struct{}{}, &out); err != nil {
		return chem.SettingsPayload{}, err
	}
	return out, nil
}

// SaveSettings calls save_settings and returns the stored payload.
func (c *Client) SaveSettings(ctx context.Context, payload chem.SettingsPayload) (chem.SettingsPayload, error) {
	var out chem.SettingsPayload
	if err := c.call(ctx, "save_settings", inputArgs[chem.SettingsPayload]{Input: payload}, &out); err != nil {
		return chem.SettingsPayload{}, err
	}
	return out, nil
}

// GetElements calls get_elements.
func (c *Client) GetElements(ctx context.Context) ([]chem.Element, error) {
	var out []chem.Element
	if err := c.call(ctx, "get_elements", struct{}{}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SaveElements calls save_elements and returns the stored rows.
func (c *Client) SaveElements(ctx context.Context, elements []chem.Element) ([]chem.Element, error) {
	var out []chem.Element
	if err := c.call(ctx, "save_elements", elementsArgs{Elements: elements}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// RestoreElements calls restore_elements.
func (c *Client) RestoreElements(ctx context.Context) ([]chem.Element, error) {
	var out []chem.Element
	if err := c.call(ctx, "restore_elements", struct{}{}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Export calls export_to_pdf or export_to_excel and returns the raw document.
func (c *Client) Export(ctx context.Context, format chem.ExportFormat, result chem.CalculationResult) (*service.Document, error) {
	command := "export_to_pdf"
	if format == chem.ExportExcel {
		command = "export_to_excel"
	}

	resp, err := c.post(ctx, command, outputArgs{Output: result})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.NewUpstream(command, fmt.Sprintf("read response: %v", err))
	}
	return &service.Document{
		Name:        "result" + format.Extension(),
		ContentType: resp.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

// call posts args and decodes the JSON response into out.
func (c *Client) call(ctx context.Context, command string, args, out any) error {
	resp, err := c.post(ctx, command, args)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		c.logger.Warn("decode response failed", zap.String("command", command), zap.Error(err))
		return errors.NewUpstream(command, fmt.Sprintf("invalid response: %v", err))
	}
	return nil
}

// post sends one command and returns the response if its status is 2xx.
// The caller closes the body.
func (c *Client) post(ctx context.Context, command string, args any) (*http.Response, error) {
	body, err := json.Marshal(args)
	if err != nil {
		return nil, errors.NewInternal(fmt.Errorf("marshal %s request: %w", command, err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+command, bytes.NewReader(body))
	if err != nil {
		return nil, errors.NewInternal(fmt.Errorf("create %s request: %w", command, err))
	}
	requestID := newRequestID()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", requestID)

	c.logger.Debug("remote call", zap.String("command", command), zap.String("request_id", requestID))

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("remote call failed",
			zap.String("command", command),
			zap.String("request_id", requestID),
			zap.Error(err))
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, errors.NewUpstream(command, err.Error())
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		detail := rejectionDetail(resp)
		c.logger.Warn("remote call rejected",
			zap.String("command", command),
			zap.String("request_id", requestID),
			zap.Int("status", resp.StatusCode),
			zap.String("detail", detail))
		return nil, errors.NewUpstream(command, detail)
	}
	return resp, nil
}

// rejectionDetail extracts the human-readable reason from a non-2xx response.
func rejectionDetail(resp *http.Response) string {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	text := strings.TrimSpace(string(raw))

	var body struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(raw, &body) == nil && body.Error != "" {
		return body.Error
	}
	if text != "" {
		return text
	}
	return fmt.Sprintf("status %d", resp.StatusCode)
}

func newRequestID() string {
	return ulid.MustNew(ulid.Now(), rand.Reader).String()
}

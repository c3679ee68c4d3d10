package remote

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/require"

	"github.com/hpungsan/masscalc/internal/chem"
	"github.com/hpungsan/masscalc/internal/errors"
)

// recorded is one request seen by the test server.
type recorded struct {
	path      string
	body      map[string]any
	requestID string
}

func newServer(t *testing.T, handler func(w http.ResponseWriter, path string, body map[string]any)) (*Client, *[]recorded) {
	t.Helper()
	var seen []recorded
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var body map[string]any
		require.NoError(t, json.Unmarshal(raw, &body))
		seen = append(seen, recorded{path: r.URL.Path, body: body, requestID: r.Header.Get("X-Request-ID")})
		handler(w, r.URL.Path, body)
	}))
	t.Cleanup(srv.Close)
	return New(srv.URL+"/", 0, nil), &seen
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func TestParseFormula(t *testing.T) {
	c, seen := newServer(t, func(w http.ResponseWriter, _ string, _ map[string]any) {
		writeJSON(w, []string{"H", "O"})
	})

	got, err := c.ParseFormula(context.Background(), "H2O")
	require.NoError(t, err)
	require.Equal(t, []string{"H", "O"}, got)

	require.Len(t, *seen, 1)
	req := (*seen)[0]
	require.Equal(t, "/parse_formula", req.path)
	require.Equal(t, map[string]any{"input": map[string]any{"formula": "H2O"}}, req.body)

	_, err = ulid.ParseStrict(req.requestID)
	require.NoError(t, err, "request id %q", req.requestID)
}

func TestCalculate(t *testing.T) {
	want := chem.CalculationResult{
		TargetFormula: "H2O",
		MolarMass:     18.015,
		Reagents:      []chem.ReagentResult{{Reagent: "H2", Moles: 1, MolarMass: 2.016, Mass: 2.016}},
	}
	c, seen := newServer(t, func(w http.ResponseWriter, _ string, _ map[string]any) {
		writeJSON(w, want)
	})

	got, err := c.Calculate(context.Background(), chem.CalculationRequest{TargetFormula: "H2O", TargetMass: "18"})
	require.NoError(t, err)
	require.Equal(t, "H2O", got.TargetFormula)
	require.Equal(t, want.Reagents, got.Reagents)

	input := (*seen)[0].body["input"].(map[string]any)
	require.Equal(t, "18", input["target_mass"])
	require.Equal(t, []any{}, input["starting_materials"])
}

func TestSaveSettingsSendsFullPayload(t *testing.T) {
	c, seen := newServer(t, func(w http.ResponseWriter, _ string, body map[string]any) {
		writeJSON(w, body["input"])
	})

	in := chem.SettingsPayload{ThemeMode: chem.ThemeDark, DetailedReport: true, AutoFillStartingMaterials: false, ExportFormat: chem.ExportExcel}
	got, err := c.SaveSettings(context.Background(), in)
	require.NoError(t, err)
	require.Equal(t, in, got)

	require.Equal(t, "/save_settings", (*seen)[0].path)
	require.Equal(t, map[string]any{
		"theme_mode":                   "dark",
		"detailed_report":              true,
		"auto_fill_starting_materials": false,
		"export_format":                "excel",
	}, (*seen)[0].body["input"])
}

func TestElements(t *testing.T) {
	rows := []chem.Element{{Name: "Hydrogen", Symbol: "H", AtomicMass: 1.008}}
	c, seen := newServer(t, func(w http.ResponseWriter, path string, body map[string]any) {
		if path == "/save_elements" {
			writeJSON(w, body["elements"])
			return
		}
		writeJSON(w, rows)
	})
	ctx := context.Background()

	got, err := c.GetElements(ctx)
	require.NoError(t, err)
	require.Equal(t, rows, got)

	saved, err := c.SaveElements(ctx, rows)
	require.NoError(t, err)
	require.Equal(t, rows, saved)

	restored, err := c.RestoreElements(ctx)
	require.NoError(t, err)
	require.Equal(t, rows, restored)

	paths := []string{}
	for _, r := range *seen {
		paths = append(paths, r.path)
	}
	require.Equal(t, []string{"/get_elements", "/save_elements", "/restore_elements"}, paths)
}

func TestExport(t *testing.T) {
	c, seen := newServer(t, func(w http.ResponseWriter, _ string, _ map[string]any) {
		w.Header().Set("Content-Type", "application/pdf")
		w.Write([]byte("%PDF-1.7"))
	})

	doc, err := c.Export(context.Background(), chem.ExportPDF, chem.CalculationResult{TargetFormula: "H2O"})
	require.NoError(t, err)
	require.Equal(t, "application/pdf", doc.ContentType)
	require.Equal(t, "%PDF-1.7", string(doc.Data))
	require.Equal(t, "result.pdf", doc.Name)

	_, err = c.Export(context.Background(), chem.ExportExcel, chem.CalculationResult{})
	require.NoError(t, err)

	require.Equal(t, "/export_to_pdf", (*seen)[0].path)
	require.Equal(t, "/export_to_excel", (*seen)[1].path)
	require.Equal(t, "H2O", (*seen)[0].body["output"].(map[string]any)["target_formula"])
}

func TestRejection(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"json error", http.StatusBadRequest, `{"error":"unknown element Xx"}`, "unknown element Xx"},
		{"plain text", http.StatusUnprocessableEntity, "target mass must be positive\n", "target mass must be positive"},
		{"empty body", http.StatusInternalServerError, "", "status 500"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c, _ := newServer(t, func(w http.ResponseWriter, _ string, _ map[string]any) {
				w.WriteHeader(tc.status)
				io.WriteString(w, tc.body)
			})

			_, err := c.ParseFormula(context.Background(), "Xx")
			require.True(t, errors.Is(err, errors.ErrUpstream), "got %v", err)
			require.Equal(t, tc.want, errors.Detail(err))
		})
	}
}

func TestInvalidJSONResponse(t *testing.T) {
	c, _ := newServer(t, func(w http.ResponseWriter, _ string, _ map[string]any) {
		io.WriteString(w, "not json")
	})

	_, err := c.GetSettings(context.Background())
	require.True(t, errors.Is(err, errors.ErrUpstream))
}

func TestContextCancelled(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-block:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(block) })

	c := New(srv.URL, 0, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.ParseFormula(ctx, "H2O")
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := New(url, time.Second, nil).GetElements(context.Background())
	require.True(t, errors.Is(err, errors.ErrUpstream), "got %v", err)
}

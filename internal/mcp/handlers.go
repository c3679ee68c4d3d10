package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/masscalc/internal/errors"
	"github.com/hpungsan/masscalc/internal/ops"
	"github.com/hpungsan/masscalc/internal/session"
	"github.com/hpungsan/masscalc/internal/store"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	sess *session.Session
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(sess *session.Session) *Handlers {
	return &Handlers{sess: sess}
}

// Request types for each tool

// SetFormulaRequest represents the arguments for calc_set_formula.
type SetFormulaRequest struct {
	Formula string `json:"formula"`
}

// SetMassRequest represents the arguments for calc_set_mass.
type SetMassRequest struct {
	Mass string `json:"mass"`
}

// UpdateMaterialRequest represents the arguments for calc_update_material.
type UpdateMaterialRequest struct {
	Index int    `json:"index"`
	Value string `json:"value"`
}

// SetMaterialsRequest represents the arguments for calc_set_materials.
type SetMaterialsRequest struct {
	Materials []string `json:"materials"`
}

// RemoveMaterialRequest represents the arguments for calc_remove_material.
type RemoveMaterialRequest struct {
	Index int `json:"index"`
}

// ReportRequest represents the arguments for calc_report.
type ReportRequest struct {
	HTML bool `json:"html,omitempty"`
}

// ReportOutput is the result of calc_report.
type ReportOutput struct {
	Format string `json:"format"`
	Report string `json:"report"`
}

// SettingsUpdateRequest represents the arguments for settings_update.
type SettingsUpdateRequest struct {
	ThemeMode                 *string `json:"theme_mode,omitempty"`
	DetailedReport            *bool   `json:"detailed_report,omitempty"`
	AutoFillStartingMaterials *bool   `json:"auto_fill_starting_materials,omitempty"`
	ExportFormat              *string `json:"export_format,omitempty"`
}

// ElementsListRequest represents the arguments for elements_list.
type ElementsListRequest struct {
	Symbol string `json:"symbol,omitempty"`
}

// ElementsUpdateRowRequest represents the arguments for elements_update_row.
type ElementsUpdateRowRequest struct {
	Symbol     string `json:"symbol"`
	AtomicMass string `json:"atomic_mass"`
}

// Handler implementations

// HandleState handles the calc_state tool call.
func (h *Handlers) HandleState(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return successResult(h.sess.State())
}

// HandleSetFormula handles the calc_set_formula tool call. It waits for the
// auto-fill parse so the returned state already reflects it.
func (h *Handlers) HandleSetFormula(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SetFormulaRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	h.sess.Elements.UpdateTargetFormula(input.Formula)
	h.sess.Settle()
	return successResult(h.sess.State())
}

// HandleSetMass handles the calc_set_mass tool call.
func (h *Handlers) HandleSetMass(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SetMassRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	h.sess.Elements.UpdateTargetMass(input.Mass)
	return successResult(h.sess.State())
}

// HandleUpdateMaterial handles the calc_update_material tool call.
func (h *Handlers) HandleUpdateMaterial(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[UpdateMaterialRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	h.sess.Elements.UpdateStartingMaterial(input.Index, input.Value)
	return successResult(h.sess.State())
}

// HandleSetMaterials handles the calc_set_materials tool call.
func (h *Handlers) HandleSetMaterials(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SetMaterialsRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if len(input.Materials) == 0 {
		return errorResult(errors.NewInvalidRequest("materials must not be empty")), nil
	}

	h.sess.Elements.SetStartingMaterials(input.Materials)
	return successResult(h.sess.State())
}

// HandleAddMaterial handles the calc_add_material tool call.
func (h *Handlers) HandleAddMaterial(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	h.sess.Elements.AddStartingMaterial()
	return successResult(h.sess.State())
}

// HandleRemoveMaterial handles the calc_remove_material tool call.
func (h *Handlers) HandleRemoveMaterial(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[RemoveMaterialRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	h.sess.Elements.RemoveStartingMaterial(input.Index)
	return successResult(h.sess.State())
}

// HandleCalculate handles the calc_calculate tool call.
func (h *Handlers) HandleCalculate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	h.sess.Calculator.Calculate(ctx)
	return successResult(h.sess.State())
}

// HandleClearError handles the calc_clear_error tool call.
func (h *Handlers) HandleClearError(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	h.sess.Elements.ClearError()
	return successResult(h.sess.State())
}

// HandleReport handles the calc_report tool call.
func (h *Handlers) HandleReport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ReportRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	out, err := h.sess.Report(input.HTML)
	if err != nil {
		return errorResult(err), nil
	}
	format := "markdown"
	if input.HTML {
		format = "html"
	}
	return successResult(ReportOutput{Format: format, Report: out})
}

// HandleExport handles the calc_export tool call.
func (h *Handlers) HandleExport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	out, err := h.sess.Export.Export(ctx)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(out)
}

// HandleSettingsGet handles the settings_get tool call.
func (h *Handlers) HandleSettingsGet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return successResult(h.sess.Settings.Snapshot().Payload())
}

// HandleSettingsUpdate handles the settings_update tool call.
func (h *Handlers) HandleSettingsUpdate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SettingsUpdateRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	override, err := store.ParseOverride(input.ThemeMode, input.DetailedReport, input.AutoFillStartingMaterials, input.ExportFormat)
	if err != nil {
		return errorResult(err), nil
	}
	if err := h.sess.Settings.Update(ctx, override); err != nil {
		return errorResult(err), nil
	}
	return successResult(h.sess.Settings.Snapshot().Payload())
}

// HandleElementsLoad handles the elements_load tool call.
func (h *Handlers) HandleElementsLoad(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	h.sess.Editor.Load(ctx)
	return successResult(h.sess.EditorState())
}

// HandleElementsList handles the elements_list tool call.
func (h *Handlers) HandleElementsList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ElementsListRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	state := h.sess.EditorState()
	if input.Symbol == "" {
		return successResult(state)
	}
	idx := h.sess.Editor.IndexOf(input.Symbol)
	if idx < 0 || idx >= len(state.Rows) {
		return errorResult(errors.NewNotFound(input.Symbol)), nil
	}
	state.Rows = []ops.ElementRow{state.Rows[idx]}
	return successResult(state)
}

// HandleElementsUpdateRow handles the elements_update_row tool call.
func (h *Handlers) HandleElementsUpdateRow(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ElementsUpdateRowRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	idx := h.sess.Editor.IndexOf(input.Symbol)
	if idx < 0 {
		return errorResult(errors.NewNotFound(input.Symbol)), nil
	}
	h.sess.Editor.UpdateRow(idx, input.AtomicMass)
	return successResult(h.sess.EditorState())
}

// HandleElementsSave handles the elements_save tool call.
func (h *Handlers) HandleElementsSave(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	h.sess.Editor.Save(ctx)
	return successResult(h.sess.EditorState())
}

// HandleElementsRestore handles the elements_restore tool call.
func (h *Handlers) HandleElementsRestore(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	h.sess.Editor.Restore(ctx)
	return successResult(h.sess.EditorState())
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
// Internal error details are not exposed.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	if cErr, ok := err.(*errors.CalcError); ok {
		errorObj := map[string]any{
			"code":    cErr.Code,
			"message": cErr.Message,
			"status":  cErr.Status,
		}
		if cErr.Code != errors.ErrInternal && cErr.Details != nil {
			errorObj["details"] = cErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    "INTERNAL",
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}

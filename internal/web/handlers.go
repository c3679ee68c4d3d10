package web

import (
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"github.com/hpungsan/masscalc/internal/errors"
	"github.com/hpungsan/masscalc/internal/ops"
	"github.com/hpungsan/masscalc/internal/session"
	"github.com/hpungsan/masscalc/internal/store"
)

// Handlers holds dependencies for HTTP handlers.
type Handlers struct {
	sess    *session.Session
	version string
}

type formulaBody struct {
	Formula string `json:"formula"`
}

type massBody struct {
	Mass string `json:"mass"`
}

type materialsBody struct {
	Materials []string `json:"materials"`
}

type valueBody struct {
	Value string `json:"value"`
}

type atomicMassBody struct {
	AtomicMass string `json:"atomic_mass"`
}

type settingsBody struct {
	ThemeMode                 *string `json:"theme_mode,omitempty"`
	DetailedReport            *bool   `json:"detailed_report,omitempty"`
	AutoFillStartingMaterials *bool   `json:"auto_fill_starting_materials,omitempty"`
	ExportFormat              *string `json:"export_format,omitempty"`
}

// HandleState handles GET /state.
func (h *Handlers) HandleState(w http.ResponseWriter, r *http.Request) {
	renderJSON(w, http.StatusOK, h.sess.State())
}

// HandleSetFormula handles PUT /state/formula and waits for auto-fill.
func (h *Handlers) HandleSetFormula(w http.ResponseWriter, r *http.Request) {
	body, err := decodeBody[formulaBody](w, r)
	if err != nil {
		renderError(w, err)
		return
	}
	h.sess.Elements.UpdateTargetFormula(body.Formula)
	h.sess.Settle()
	renderJSON(w, http.StatusOK, h.sess.State())
}

// HandleSetMass handles PUT /state/mass.
func (h *Handlers) HandleSetMass(w http.ResponseWriter, r *http.Request) {
	body, err := decodeBody[massBody](w, r)
	if err != nil {
		renderError(w, err)
		return
	}
	h.sess.Elements.UpdateTargetMass(body.Mass)
	renderJSON(w, http.StatusOK, h.sess.State())
}

// HandleSetMaterials handles PUT /state/materials.
func (h *Handlers) HandleSetMaterials(w http.ResponseWriter, r *http.Request) {
	body, err := decodeBody[materialsBody](w, r)
	if err != nil {
		renderError(w, err)
		return
	}
	if len(body.Materials) == 0 {
		renderError(w, errors.NewInvalidRequest("materials must not be empty"))
		return
	}
	h.sess.Elements.SetStartingMaterials(body.Materials)
	renderJSON(w, http.StatusOK, h.sess.State())
}

// HandleAddMaterial handles POST /state/materials.
func (h *Handlers) HandleAddMaterial(w http.ResponseWriter, r *http.Request) {
	h.sess.Elements.AddStartingMaterial()
	renderJSON(w, http.StatusOK, h.sess.State())
}

// HandleUpdateMaterial handles PATCH /state/materials/{index}.
func (h *Handlers) HandleUpdateMaterial(w http.ResponseWriter, r *http.Request) {
	index, err := pathIndex(r)
	if err != nil {
		renderError(w, err)
		return
	}
	body, err := decodeBody[valueBody](w, r)
	if err != nil {
		renderError(w, err)
		return
	}
	h.sess.Elements.UpdateStartingMaterial(index, body.Value)
	renderJSON(w, http.StatusOK, h.sess.State())
}

// HandleRemoveMaterial handles DELETE /state/materials/{index}.
func (h *Handlers) HandleRemoveMaterial(w http.ResponseWriter, r *http.Request) {
	index, err := pathIndex(r)
	if err != nil {
		renderError(w, err)
		return
	}
	h.sess.Elements.RemoveStartingMaterial(index)
	renderJSON(w, http.StatusOK, h.sess.State())
}

// HandleClearError handles DELETE /state/error.
func (h *Handlers) HandleClearError(w http.ResponseWriter, r *http.Request) {
	h.sess.Elements.ClearError()
	renderJSON(w, http.StatusOK, h.sess.State())
}

// HandleCalculate handles POST /calculate. The outcome, success or failure,
// is reported through the returned state.
func (h *Handlers) HandleCalculate(w http.ResponseWriter, r *http.Request) {
	h.sess.Calculator.Calculate(r.Context())
	renderJSON(w, http.StatusOK, h.sess.State())
}

// HandleReport handles GET /report. Clients asking for text/markdown get the
// Markdown source; everyone else gets an HTML page.
func (h *Handlers) HandleReport(w http.ResponseWriter, r *http.Request) {
	if strings.Contains(r.Header.Get("Accept"), "text/markdown") {
		md, err := h.sess.Report(false)
		if err != nil {
			renderError(w, err)
			return
		}
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(md))
		return
	}

	body, err := h.sess.Report(true)
	if err != nil {
		renderError(w, err)
		return
	}
	title := "Report"
	if st := h.sess.State(); st.Results != nil && st.Results.TargetFormula != "" {
		title = st.Results.TargetFormula + " report"
	}
	renderReport(w, reportPageData{
		Title:   title,
		Version: h.version,
		Body:    template.HTML(body),
	})
}

// HandleExport handles POST /export.
func (h *Handlers) HandleExport(w http.ResponseWriter, r *http.Request) {
	out, err := h.sess.Export.Export(r.Context())
	if err != nil {
		renderError(w, err)
		return
	}
	renderJSON(w, http.StatusCreated, out)
}

// HandleSettingsGet handles GET /settings.
func (h *Handlers) HandleSettingsGet(w http.ResponseWriter, r *http.Request) {
	renderJSON(w, http.StatusOK, h.sess.Settings.Snapshot().Payload())
}

// HandleSettingsUpdate handles PATCH /settings.
func (h *Handlers) HandleSettingsUpdate(w http.ResponseWriter, r *http.Request) {
	body, err := decodeBody[settingsBody](w, r)
	if err != nil {
		renderError(w, err)
		return
	}
	override, err := store.ParseOverride(body.ThemeMode, body.DetailedReport, body.AutoFillStartingMaterials, body.ExportFormat)
	if err != nil {
		renderError(w, err)
		return
	}
	if err := h.sess.Settings.Update(r.Context(), override); err != nil {
		renderError(w, err)
		return
	}
	renderJSON(w, http.StatusOK, h.sess.Settings.Snapshot().Payload())
}

// HandleElementsList handles GET /elements. An optional ?symbol= narrows the
// rows to one element.
func (h *Handlers) HandleElementsList(w http.ResponseWriter, r *http.Request) {
	state := h.sess.EditorState()
	symbol := r.URL.Query().Get("symbol")
	if symbol == "" {
		renderJSON(w, http.StatusOK, state)
		return
	}
	idx := h.sess.Editor.IndexOf(symbol)
	if idx < 0 || idx >= len(state.Rows) {
		renderError(w, errors.NewNotFound(symbol))
		return
	}
	state.Rows = []ops.ElementRow{state.Rows[idx]}
	renderJSON(w, http.StatusOK, state)
}

// HandleElementsLoad handles POST /elements/load.
func (h *Handlers) HandleElementsLoad(w http.ResponseWriter, r *http.Request) {
	h.sess.Editor.Load(r.Context())
	renderJSON(w, http.StatusOK, h.sess.EditorState())
}

// HandleElementsUpdateRow handles PATCH /elements/{symbol}.
func (h *Handlers) HandleElementsUpdateRow(w http.ResponseWriter, r *http.Request) {
	symbol := r.PathValue("symbol")
	idx := h.sess.Editor.IndexOf(symbol)
	if idx < 0 {
		renderError(w, errors.NewNotFound(symbol))
		return
	}
	body, err := decodeBody[atomicMassBody](w, r)
	if err != nil {
		renderError(w, err)
		return
	}
	h.sess.Editor.UpdateRow(idx, body.AtomicMass)
	renderJSON(w, http.StatusOK, h.sess.EditorState())
}

// HandleElementsSave handles POST /elements/save.
func (h *Handlers) HandleElementsSave(w http.ResponseWriter, r *http.Request) {
	h.sess.Editor.Save(r.Context())
	renderJSON(w, http.StatusOK, h.sess.EditorState())
}

// HandleElementsRestore handles POST /elements/restore.
func (h *Handlers) HandleElementsRestore(w http.ResponseWriter, r *http.Request) {
	h.sess.Editor.Restore(r.Context())
	renderJSON(w, http.StatusOK, h.sess.EditorState())
}

// pathIndex parses the {index} path value.
func pathIndex(r *http.Request) (int, error) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		return 0, errors.NewInvalidRequest("index must be an integer")
	}
	return index, nil
}

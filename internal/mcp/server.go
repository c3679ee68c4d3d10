package mcp

import (
	"sort"
	"strings"

	"github.com/mark3labs/mcp-go/server"

	"github.com/hpungsan/masscalc/internal/config"
	"github.com/hpungsan/masscalc/internal/session"
)

// KnownTypes lists all valid type names.
var KnownTypes = []string{"calc", "settings", "elements"}

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     toolDef
	handler func(*Handlers) server.ToolHandlerFunc
}

// toolRegistry maps tool names to their definitions and handler factories.
var toolRegistry = map[string]toolEntry{
	"calc_state":           {calcStateToolDef, func(h *Handlers) server.ToolHandlerFunc { return h.HandleState }},
	"calc_set_formula":     {setFormulaToolDef, func(h *Handlers) server.ToolHandlerFunc { return h.HandleSetFormula }},
	"calc_set_mass":        {setMassToolDef, func(h *Handlers) server.ToolHandlerFunc { return h.HandleSetMass }},
	"calc_update_material": {updateMaterialToolDef, func(h *Handlers) server.ToolHandlerFunc { return h.HandleUpdateMaterial }},
	"calc_set_materials":   {setMaterialsToolDef, func(h *Handlers) server.ToolHandlerFunc { return h.HandleSetMaterials }},
	"calc_add_material":    {addMaterialToolDef, func(h *Handlers) server.ToolHandlerFunc { return h.HandleAddMaterial }},
	"calc_remove_material": {removeMaterialToolDef, func(h *Handlers) server.ToolHandlerFunc { return h.HandleRemoveMaterial }},
	"calc_calculate":       {calculateToolDef, func(h *Handlers) server.ToolHandlerFunc { return h.HandleCalculate }},
	"calc_clear_error":     {clearErrorToolDef, func(h *Handlers) server.ToolHandlerFunc { return h.HandleClearError }},
	"calc_report":          {reportToolDef, func(h *Handlers) server.ToolHandlerFunc { return h.HandleReport }},
	"calc_export":          {exportToolDef, func(h *Handlers) server.ToolHandlerFunc { return h.HandleExport }},
	"settings_get":         {settingsGetToolDef, func(h *Handlers) server.ToolHandlerFunc { return h.HandleSettingsGet }},
	"settings_update":      {settingsUpdateToolDef, func(h *Handlers) server.ToolHandlerFunc { return h.HandleSettingsUpdate }},
	"elements_load":        {elementsLoadToolDef, func(h *Handlers) server.ToolHandlerFunc { return h.HandleElementsLoad }},
	"elements_list":        {elementsListToolDef, func(h *Handlers) server.ToolHandlerFunc { return h.HandleElementsList }},
	"elements_update_row":  {elementsUpdateRowToolDef, func(h *Handlers) server.ToolHandlerFunc { return h.HandleElementsUpdateRow }},
	"elements_save":        {elementsSaveToolDef, func(h *Handlers) server.ToolHandlerFunc { return h.HandleElementsSave }},
	"elements_restore":     {elementsRestoreToolDef, func(h *Handlers) server.ToolHandlerFunc { return h.HandleElementsRestore }},
}

// AllToolNames returns a sorted list of all valid tool names.
func AllToolNames() []string {
	names := make([]string, 0, len(toolRegistry))
	for name := range toolRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ValidateDisabledTools returns a list of unknown tool names from the given list.
func ValidateDisabledTools(names []string) []string {
	unknown := make([]string, 0)
	for _, name := range names {
		if _, ok := toolRegistry[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// ValidateDisabledTypes returns a list of unknown type names from the given list.
func ValidateDisabledTypes(names []string) []string {
	known := make(map[string]bool, len(KnownTypes))
	for _, t := range KnownTypes {
		known[t] = true
	}

	unknown := make([]string, 0)
	for _, name := range names {
		if !known[name] {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// GetTypeForTool extracts the type name from a tool name.
// Tool names follow the pattern "type_action" (e.g., "calc_calculate" → "calc").
func GetTypeForTool(toolName string) string {
	if idx := strings.Index(toolName, "_"); idx > 0 {
		return toolName[:idx]
	}
	return ""
}

// ExpandTypesToTools returns all tool names belonging to the given types.
func ExpandTypesToTools(types []string) []string {
	if len(types) == 0 {
		return nil
	}

	typeSet := make(map[string]bool, len(types))
	for _, t := range types {
		typeSet[t] = true
	}

	tools := make([]string, 0)
	for name := range toolRegistry {
		if typeSet[GetTypeForTool(name)] {
			tools = append(tools, name)
		}
	}
	return tools
}

// NewServer creates an MCP server exposing sess.
// Tools listed in cfg.DisabledTools or belonging to cfg.DisabledTypes
// are excluded from registration.
func NewServer(sess *session.Session, cfg *config.Config, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"masscalc",
		version,
		server.WithToolCapabilities(true),
	)

	h := NewHandlers(sess)

	// Build set of disabled tools: first expand types, then add individual tools
	disabled := make(map[string]bool)
	if cfg != nil {
		for _, tool := range ExpandTypesToTools(cfg.DisabledTypes) {
			disabled[tool] = true
		}
		for _, name := range cfg.DisabledTools {
			disabled[name] = true
		}
	}

	for name, entry := range toolRegistry {
		if disabled[name] {
			continue
		}
		s.AddTool(entry.def.build(name), entry.handler(h))
	}

	return s
}

// Run serves sess over the stdio transport until stdin closes.
func Run(sess *session.Session, cfg *config.Config, version string) error {
	return server.ServeStdio(NewServer(sess, cfg, version))
}

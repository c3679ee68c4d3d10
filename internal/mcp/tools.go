package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// toolDef describes a tool independently of its registered name.
type toolDef struct {
	description string
	params      []mcp.ToolOption
}

func (d toolDef) build(name string) mcp.Tool {
	opts := append([]mcp.ToolOption{mcp.WithDescription(d.description)}, d.params...)
	return mcp.NewTool(name, opts...)
}

const stateNote = " Returns the calculator state; failures of the calculation, parse and editor " +
	"workflows are reported in its error field."

var (
	calcStateToolDef = toolDef{
		description: "Show the calculator form: target formula, target mass, starting materials, last result and error.",
	}

	setFormulaToolDef = toolDef{
		description: "Set the target formula. With auto-fill enabled the starting materials are replaced by the formula's elements." + stateNote,
		params: []mcp.ToolOption{
			mcp.WithString("formula", mcp.Required(), mcp.Description("Chemical formula, e.g. H2O")),
		},
	}

	setMassToolDef = toolDef{
		description: "Set the target mass text (grams)." + stateNote,
		params: []mcp.ToolOption{
			mcp.WithString("mass", mcp.Required(), mcp.Description("Target mass as typed, e.g. \"18\"")),
		},
	}

	updateMaterialToolDef = toolDef{
		description: "Overwrite one starting-material slot. Out-of-range indexes are ignored." + stateNote,
		params: []mcp.ToolOption{
			mcp.WithNumber("index", mcp.Required(), mcp.Description("Zero-based slot index")),
			mcp.WithString("value", mcp.Required(), mcp.Description("Starting material formula")),
		},
	}

	setMaterialsToolDef = toolDef{
		description: "Replace all starting-material slots (at most 18 are kept)." + stateNote,
		params: []mcp.ToolOption{
			mcp.WithArray("materials", mcp.Required(),
				mcp.Description("Starting material formulas in order"),
				mcp.Items(map[string]any{"type": "string"})),
		},
	}

	addMaterialToolDef = toolDef{
		description: "Append an empty starting-material slot (maximum 18)." + stateNote,
	}

	removeMaterialToolDef = toolDef{
		description: "Remove a starting-material slot. The last remaining slot is never removed." + stateNote,
		params: []mcp.ToolOption{
			mcp.WithNumber("index", mcp.Required(), mcp.Description("Zero-based slot index")),
		},
	}

	calculateToolDef = toolDef{
		description: "Send the form to the solver. Blank starting materials are skipped." + stateNote,
	}

	clearErrorToolDef = toolDef{
		description: "Dismiss the current error message." + stateNote,
	}

	reportToolDef = toolDef{
		description: "Render the last result as Markdown (or HTML). Detail follows the detailed_report setting.",
		params: []mcp.ToolOption{
			mcp.WithBoolean("html", mcp.Description("Render HTML instead of Markdown")),
		},
	}

	exportToolDef = toolDef{
		description: "Export the last result in the preferred export format and return where it was written.",
	}

	settingsGetToolDef = toolDef{
		description: "Show the user preferences.",
	}

	settingsUpdateToolDef = toolDef{
		description: "Change one or more preferences. Omitted fields keep their current value; the stored values are returned.",
		params: []mcp.ToolOption{
			mcp.WithString("theme_mode", mcp.Enum("light", "dark", "system")),
			mcp.WithBoolean("detailed_report"),
			mcp.WithBoolean("auto_fill_starting_materials"),
			mcp.WithString("export_format", mcp.Enum("pdf", "excel")),
		},
	}

	elementsLoadToolDef = toolDef{
		description: "Load the atomic-mass table into the editor, discarding unsaved edits.",
	}

	elementsListToolDef = toolDef{
		description: "Show the editor's atomic-mass rows, including unsaved edits.",
		params: []mcp.ToolOption{
			mcp.WithString("symbol", mcp.Description("Only show the row with this element symbol")),
		},
	}

	elementsUpdateRowToolDef = toolDef{
		description: "Edit the atomic mass of one row. Values are validated only when saving.",
		params: []mcp.ToolOption{
			mcp.WithString("symbol", mcp.Required(), mcp.Description("Element symbol, case-sensitive")),
			mcp.WithString("atomic_mass", mcp.Required(), mcp.Description("Atomic mass text")),
		},
	}

	elementsSaveToolDef = toolDef{
		description: "Validate and save every row. Any non-numeric mass aborts the whole save.",
	}

	elementsRestoreToolDef = toolDef{
		description: "Reset the atomic-mass table to the reference values.",
	}
)

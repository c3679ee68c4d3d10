package chem

// ThemeMode is the UI color scheme preference.
type ThemeMode string

const (
	ThemeLight  ThemeMode = "light"
	ThemeDark   ThemeMode = "dark"
	ThemeSystem ThemeMode = "system"
)

// Valid reports whether m is one of the known theme modes.
func (m ThemeMode) Valid() bool {
	switch m {
	case ThemeLight, ThemeDark, ThemeSystem:
		return true
	}
	return false
}

// ExportFormat is the document format used when exporting results.
type ExportFormat string

const (
	ExportPDF   ExportFormat = "pdf"
	ExportExcel ExportFormat = "excel"
)

// Valid reports whether f is one of the known export formats.
func (f ExportFormat) Valid() bool {
	return f == ExportPDF || f == ExportExcel
}

// Extension returns the file extension (with dot) for documents of this format.
func (f ExportFormat) Extension() string {
	if f == ExportExcel {
		return ".xlsx"
	}
	return ".pdf"
}

// SettingsPayload is the wire shape of persisted user preferences.
type SettingsPayload struct {
	ThemeMode                 ThemeMode    `json:"theme_mode"`
	DetailedReport            bool         `json:"detailed_report"`
	AutoFillStartingMaterials bool         `json:"auto_fill_starting_materials"`
	ExportFormat              ExportFormat `json:"export_format"`
}

// DefaultSettings returns the preferences used before anything is persisted.
func DefaultSettings() SettingsPayload {
	return SettingsPayload{
		ThemeMode:                 ThemeSystem,
		DetailedReport:            false,
		AutoFillStartingMaterials: true,
		ExportFormat:              ExportPDF,
	}
}

// NormalizeSettings maps unknown enum values onto their defaults:
// theme_mode falls back to system, export_format to pdf.
func NormalizeSettings(p SettingsPayload) SettingsPayload {
	if !p.ThemeMode.Valid() {
		p.ThemeMode = ThemeSystem
	}
	if p.ExportFormat != ExportExcel {
		p.ExportFormat = ExportPDF
	}
	return p
}

package store

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/hpungsan/masscalc/internal/chem"
	"github.com/hpungsan/masscalc/internal/errors"
	"github.com/hpungsan/masscalc/internal/service"
)

// SettingsState is the in-memory copy of the user preferences.
type SettingsState struct {
	ThemeMode                 chem.ThemeMode
	DetailedReport            bool
	AutoFillStartingMaterials bool
	ExportFormat              chem.ExportFormat
}

// Payload converts the state into its wire shape.
func (s SettingsState) Payload() chem.SettingsPayload {
	return chem.SettingsPayload{
		ThemeMode:                 s.ThemeMode,
		DetailedReport:            s.DetailedReport,
		AutoFillStartingMaterials: s.AutoFillStartingMaterials,
		ExportFormat:              s.ExportFormat,
	}
}

func settingsFromPayload(p chem.SettingsPayload) SettingsState {
	p = chem.NormalizeSettings(p)
	return SettingsState{
		ThemeMode:                 p.ThemeMode,
		DetailedReport:            p.DetailedReport,
		AutoFillStartingMaterials: p.AutoFillStartingMaterials,
		ExportFormat:              p.ExportFormat,
	}
}

// SettingsOverride names the fields to change in an Update. Nil fields keep
// their current in-store value.
type SettingsOverride struct {
	ThemeMode                 *chem.ThemeMode
	DetailedReport            *bool
	AutoFillStartingMaterials *bool
	ExportFormat              *chem.ExportFormat
}

// ParseOverride validates optional textual preference values and builds an
// override from them. Unlike normalization, unknown enum values are rejected.
func ParseOverride(theme *string, detailed, autoFill *bool, format *string) (SettingsOverride, error) {
	var o SettingsOverride
	if theme != nil {
		m := chem.ThemeMode(*theme)
		if !m.Valid() {
			return o, errors.NewInvalidRequest(fmt.Sprintf("theme_mode must be light, dark or system, got %q", *theme))
		}
		o.ThemeMode = &m
	}
	if format != nil {
		f := chem.ExportFormat(*format)
		if !f.Valid() {
			return o, errors.NewInvalidRequest(fmt.Sprintf("export_format must be pdf or excel, got %q", *format))
		}
		o.ExportFormat = &f
	}
	o.DetailedReport = detailed
	o.AutoFillStartingMaterials = autoFill
	return o, nil
}

// apply returns base with every non-nil override field substituted.
func (o SettingsOverride) apply(base chem.SettingsPayload) chem.SettingsPayload {
	if o.ThemeMode != nil {
		base.ThemeMode = *o.ThemeMode
	}
	if o.DetailedReport != nil {
		base.DetailedReport = *o.DetailedReport
	}
	if o.AutoFillStartingMaterials != nil {
		base.AutoFillStartingMaterials = *o.AutoFillStartingMaterials
	}
	if o.ExportFormat != nil {
		base.ExportFormat = *o.ExportFormat
	}
	return base
}

// SettingsStore owns a SettingsState that round-trips through a
// SettingsService. All four fields are always replaced together.
type SettingsStore struct {
	svc    service.SettingsService
	logger *zap.Logger

	// updateMu serializes Load and Update round trips, so each override is
	// merged onto the echo of the previous one and listeners see replacements
	// in the order they were applied.
	updateMu sync.Mutex

	mu    sync.RWMutex
	state SettingsState

	listeners[SettingsState]
}

// NewSettingsStore returns a store holding the default preferences.
func NewSettingsStore(svc service.SettingsService, logger *zap.Logger) *SettingsStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SettingsStore{
		svc:    svc,
		logger: logger,
		state:  settingsFromPayload(chem.DefaultSettings()),
	}
}

// Snapshot returns the current settings.
func (s *SettingsStore) Snapshot() SettingsState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Subscribe registers fn to receive the settings after every change.
func (s *SettingsStore) Subscribe(fn func(SettingsState)) func() {
	return s.listeners.add(fn)
}

// Load fetches the persisted settings and replaces the whole state.
// Errors are returned unchanged and leave the state as it was.
func (s *SettingsStore) Load(ctx context.Context) error {
	s.updateMu.Lock()
	defer s.updateMu.Unlock()

	payload, err := s.svc.GetSettings(ctx)
	if err != nil {
		s.logger.Warn("load settings failed", zap.Error(err))
		return err
	}
	s.replace(payload)
	return nil
}

// Update merges override onto the current state, saves the full payload,
// and adopts the payload the service echoes back. On error the state is
// unchanged.
func (s *SettingsStore) Update(ctx context.Context, override SettingsOverride) error {
	s.updateMu.Lock()
	defer s.updateMu.Unlock()

	payload := override.apply(s.Snapshot().Payload())
	echo, err := s.svc.SaveSettings(ctx, payload)
	if err != nil {
		s.logger.Warn("save settings failed", zap.Error(err))
		return err
	}
	s.replace(echo)
	return nil
}

// replace runs with updateMu held.
func (s *SettingsStore) replace(payload chem.SettingsPayload) {
	next := settingsFromPayload(payload)

	s.mu.Lock()
	s.state = next
	s.mu.Unlock()

	s.logger.Debug("settings applied",
		zap.String("theme_mode", string(next.ThemeMode)),
		zap.Bool("detailed_report", next.DetailedReport),
		zap.Bool("auto_fill_starting_materials", next.AutoFillStartingMaterials),
		zap.String("export_format", string(next.ExportFormat)))

	s.listeners.notify(next)
}

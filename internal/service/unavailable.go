package service

import (
	"context"

	"github.com/hpungsan/masscalc/internal/chem"
	"github.com/hpungsan/masscalc/internal/errors"
)

// Unavailable rejects every operation with SERVICE_UNAVAILABLE. It stands in
// for the computation service when no service_url is configured.
type Unavailable struct{}

var _ Service = Unavailable{}

func (Unavailable) ParseFormula(context.Context, string) ([]string, error) {
	return nil, errors.NewUnavailable("parse-formula")
}

func (Unavailable) Calculate(context.Context, chem.CalculationRequest) (*chem.CalculationResult, error) {
	return nil, errors.NewUnavailable("calculate")
}

func (Unavailable) GetSettings(context.Context) (chem.SettingsPayload, error) {
	return chem.SettingsPayload{}, errors.NewUnavailable("get-settings")
}

func (Unavailable) SaveSettings(context.Context, chem.SettingsPayload) (chem.SettingsPayload, error) {
	return chem.SettingsPayload{}, errors.NewUnavailable("save-settings")
}

func (Unavailable) GetElements(context.Context) ([]chem.Element, error) {
	return nil, errors.NewUnavailable("get-elements")
}

func (Unavailable) SaveElements(context.Context, []chem.Element) ([]chem.Element, error) {
	return nil, errors.NewUnavailable("save-elements")
}

func (Unavailable) RestoreElements(context.Context) ([]chem.Element, error) {
	return nil, errors.NewUnavailable("restore-elements")
}

func (Unavailable) Export(_ context.Context, format chem.ExportFormat, _ chem.CalculationResult) (*Document, error) {
	return nil, errors.NewUnavailable("export-to-" + string(format))
}

package provider

import (
	"context"

	"github.com/sells-group/derm-scout/internal/model"
)

// RegistryPhone falls back to the practice phone on the registry record.
type RegistryPhone struct{}

// NewRegistryPhone creates the registry phone step.
func NewRegistryPhone() *RegistryPhone { return &RegistryPhone{} }

// Name implements Step.
func (r *RegistryPhone) Name() string { return "registry_phone" }

// Applies implements Step.
func (r *RegistryPhone) Applies(rec *model.ContactRecord, s Subject) bool {
	return !rec.Has(model.FieldPhone) && s.Match != nil && s.Match.Phone() != ""
}

// Attempt implements Step.
func (r *RegistryPhone) Attempt(_ context.Context, _ model.ContactRecord, s Subject) (Partial, error) {
	return Partial{
		Checked: []model.ContactSource{model.SourceRegistry},
		Values:  []Value{{model.FieldPhone, s.Match.Phone(), model.SourceRegistry}},
	}, nil
}

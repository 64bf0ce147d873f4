// Package provider defines the contact enrichment steps run by the
// waterfall, one per source.
package provider

import (
	"context"

	"github.com/sells-group/derm-scout/internal/model"
	"github.com/sells-group/derm-scout/internal/profilematch"
)

// Subject holds what the waterfall knows about the person being enriched.
type Subject struct {
	ChannelID   string
	Description string
	Identity    model.Identity
	// DisplayName is the name used in search queries.
	DisplayName string
	// Match is the best registry record, if any.
	Match *model.RegistryMatch
	// MatchContext disambiguates profile search results.
	MatchContext profilematch.Context
}

// Value is a candidate value for one contact field.
type Value struct {
	Field  model.ContactField
	Value  string
	Source model.ContactSource
}

// Partial is what one step found. Values are offered in order; the
// executor keeps only those filling empty fields.
type Partial struct {
	Values       []Value
	SocialHandle string
	// Checked are the sources this step consulted, in order.
	Checked []model.ContactSource
	Cost    model.CostBreakdown
	Log     []string
}

// Step is one stage of the waterfall.
type Step interface {
	// Name identifies the step in logs.
	Name() string
	// Applies reports whether the step's precondition holds. Steps that do
	// not apply are skipped without being recorded as checked.
	Applies(rec *model.ContactRecord, s Subject) bool
	// Attempt consults the step's source. rec is a read-only snapshot.
	// Only configuration faults are returned as errors.
	Attempt(ctx context.Context, rec model.ContactRecord, s Subject) (Partial, error)
}

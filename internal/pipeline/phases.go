package pipeline

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/derm-scout/internal/model"
	"github.com/sells-group/derm-scout/internal/progress"
)

// The phase entry points below run one phase in isolation so callers can
// inspect or edit intermediate results between phases. Each call keeps its
// own accumulators; nothing carries over between calls.

// DiscoverResult is the output of Discover.
type DiscoverResult struct {
	Queries    []string          `json:"queries"`
	Candidates []model.Candidate `json:"candidates"`
	QuotaUnits int               `json:"quota_units"`
}

// IdentifyResult is the output of Identify.
type IdentifyResult struct {
	Identified  []IdentifiedCandidate    `json:"identified"`
	Gated       []model.GatedCandidate   `json:"gated"`
	GateReasons map[model.GateReason]int `json:"gate_reasons"`
	Costs       model.CostBreakdown      `json:"costs"`
}

// VerifyResult is the output of Verify.
type VerifyResult struct {
	Verified []model.VerifiedCandidate `json:"verified"`
	Tiers    map[model.Tier]int        `json:"tiers"`
}

// EnrichResult is the output of Enrich.
type EnrichResult struct {
	Enriched      []model.VerifiedCandidate                          `json:"enriched"`
	Stats         model.RunStats                                     `json:"stats"`
	Costs         model.CostBreakdown                                `json:"costs"`
	FieldSources  map[model.ContactField]map[model.ContactSource]int `json:"field_sources"`
	Effectiveness []model.ProviderEffectiveness                      `json:"effectiveness"`
}

// Discover runs phase 1 with the first maxQueries catalog queries. A
// non-positive maxQueries selects the configured default.
func (p *Pipeline) Discover(ctx context.Context, maxQueries int) (*DiscoverResult, error) {
	if maxQueries <= 0 {
		maxQueries = p.cfg.Discovery.DefaultMaxQueries
	}
	queries := p.catalog.Select(maxQueries)

	st := newRunState()
	candidates, err := p.discover(ctx, queries, st, progress.Discard)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: discover")
	}
	return &DiscoverResult{Queries: queries, Candidates: candidates, QuotaUnits: st.quota}, nil
}

// Identify runs phase 2 over candidates produced by Discover.
func (p *Pipeline) Identify(ctx context.Context, candidates []model.Candidate) (*IdentifyResult, error) {
	st := newRunState()
	identified, err := p.identify(ctx, candidates, st, progress.Discard)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: identify")
	}
	if identified == nil {
		identified = []IdentifiedCandidate{}
	}
	return &IdentifyResult{
		Identified:  identified,
		Gated:       st.gated,
		GateReasons: st.gateReasons,
		Costs:       st.costs,
	}, nil
}

// Verify runs the registry cascade and scoring for identified candidates
// without enriching contacts.
func (p *Pipeline) Verify(ctx context.Context, identified []IdentifiedCandidate) (*VerifyResult, error) {
	st := newRunState()
	res := &VerifyResult{
		Verified: make([]model.VerifiedCandidate, 0, len(identified)),
		Tiers:    make(map[model.Tier]int),
	}
	for _, ic := range identified {
		if err := ctx.Err(); err != nil {
			return nil, eris.Wrap(err, "pipeline: verify")
		}
		v, err := p.verifyCandidate(ctx, ic, st)
		if err != nil {
			return nil, eris.Wrap(err, "pipeline: verify")
		}
		res.Verified = append(res.Verified, *v)
		res.Tiers[v.Verification.Tier]++
	}

	zap.L().Info("pipeline: verification complete",
		zap.Int("candidates", len(identified)),
		zap.Int("gold", res.Tiers[model.TierGold]),
	)
	return res, nil
}

// Enrich runs the contact waterfall for candidates produced by Verify. Any
// contact details already on the input are discarded.
func (p *Pipeline) Enrich(ctx context.Context, verified []model.VerifiedCandidate) (*EnrichResult, error) {
	st := newRunState()
	enriched := make([]model.VerifiedCandidate, 0, len(verified))
	for _, v := range verified {
		if err := ctx.Err(); err != nil {
			return nil, eris.Wrap(err, "pipeline: enrich")
		}
		v.Contact = model.ContactRecord{}
		if err := p.enrichCandidate(ctx, &v, st); err != nil {
			return nil, eris.Wrap(err, "pipeline: enrich")
		}
		enriched = append(enriched, v)
	}

	return &EnrichResult{
		Enriched:      enriched,
		Stats:         st.stats(0, enriched),
		Costs:         st.costs,
		FieldSources:  st.fieldSources,
		Effectiveness: effectiveness(st.tallies, p.calc.Rates()),
	}, nil
}

// Package pipeline runs the discovery, identification, verification and
// enrichment phases for one invocation and aggregates the result.
package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/derm-scout/internal/config"
	"github.com/sells-group/derm-scout/internal/cost"
	"github.com/sells-group/derm-scout/internal/discovery"
	"github.com/sells-group/derm-scout/internal/gate"
	"github.com/sells-group/derm-scout/internal/identity"
	"github.com/sells-group/derm-scout/internal/model"
	"github.com/sells-group/derm-scout/internal/profilematch"
	"github.com/sells-group/derm-scout/internal/progress"
	"github.com/sells-group/derm-scout/internal/projection"
	"github.com/sells-group/derm-scout/internal/registry"
	"github.com/sells-group/derm-scout/internal/resilience"
	"github.com/sells-group/derm-scout/internal/scoring"
	"github.com/sells-group/derm-scout/internal/waterfall"
	"github.com/sells-group/derm-scout/internal/waterfall/provider"
	"github.com/sells-group/derm-scout/pkg/anthropic"
	"github.com/sells-group/derm-scout/pkg/exa"
	"github.com/sells-group/derm-scout/pkg/hunter"
	"github.com/sells-group/derm-scout/pkg/npi"
	"github.com/sells-group/derm-scout/pkg/snov"
	"github.com/sells-group/derm-scout/pkg/youtube"
)

// Clients are the external providers a pipeline talks to.
type Clients struct {
	YouTube   youtube.Client
	Anthropic anthropic.Client
	Registry  npi.Client
	Exa       exa.Client
	Hunter    hunter.Client
	Snov      snov.Client
}

// Pipeline orchestrates the three phases of a run. It holds no per-run
// state and may serve concurrent runs.
type Pipeline struct {
	cfg       *config.Config
	catalog   *discovery.Catalog
	calc      *cost.Calculator
	collector *discovery.Collector
	gate      *gate.Evaluator
	extractor *identity.Extractor
	country   *gate.CountryFilter
	verifier  *registry.Verifier
	scorer    *scoring.Scorer
	waterfall *waterfall.Executor
	now       func() time.Time
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithClock overrides the time source used for recency checks and
// timestamps.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// New creates a Pipeline with all dependencies.
func New(cfg *config.Config, clients Clients, catalog *discovery.Catalog, opts ...Option) *Pipeline {
	calc := cost.NewCalculator(RatesFromConfig(cfg.Pricing))
	if catalog == nil {
		catalog = discovery.DefaultCatalog()
	}

	steps := provider.NewRegistry()
	steps.Register(provider.NewDescription())
	steps.Register(provider.NewWebSearch(clients.Exa, profilematch.NewScorer(cfg.Specialty.TitleKeywords), calc, provider.WebSearchOptions{
		Title:      cfg.Specialty.Title,
		Field:      cfg.Specialty.Taxonomy,
		NumResults: cfg.Exa.NumResults,
	}))
	steps.Register(provider.NewHunter(clients.Hunter, calc))
	steps.Register(provider.NewSnov(clients.Snov, calc))
	steps.Register(provider.NewRegistryPhone())

	p := &Pipeline{
		cfg:     cfg,
		catalog: catalog,
		calc:    calc,
		collector: discovery.NewCollector(clients.YouTube, calc, discovery.Options{
			PageSize:          cfg.YouTube.PageSize,
			BatchSize:         cfg.YouTube.BatchSize,
			RecentVideos:      cfg.YouTube.RecentVideos,
			RegionCode:        cfg.YouTube.RegionCode,
			RelevanceLanguage: cfg.YouTube.RelevanceLanguage,
		}),
		gate: gate.NewEvaluator(gate.Thresholds{
			MinReach:        cfg.Gate.MinReach,
			MaxInactiveDays: cfg.Gate.MaxInactiveDays,
		}),
		extractor: identity.NewExtractor(clients.Anthropic, calc, identity.Options{
			Model:            cfg.Anthropic.Model,
			MaxTokens:        cfg.Anthropic.MaxTokens,
			Temperature:      cfg.Anthropic.Temperature,
			DescriptionChars: cfg.Pipeline.DescriptionChars,
			Specialty:        cfg.Specialty.Title,
			DomesticCountry:  cfg.Gate.DomesticCountry,
			Retry: resilience.FromRetryConfig(
				cfg.Anthropic.Retry.MaxRetries,
				cfg.Anthropic.Retry.BaseDelayMs,
				cfg.Anthropic.Retry.MaxJitterMs,
			),
		}),
		country:   gate.NewCountryFilter(cfg.Gate.DomesticCountry),
		verifier:  registry.NewVerifier(clients.Registry, registry.Options{Taxonomy: cfg.Specialty.Taxonomy}),
		scorer:    scoring.NewScorer(cfg.Specialty.Taxonomy),
		waterfall: waterfall.NewExecutor(steps),
		now:       time.Now,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Catalog returns the active query catalog.
func (p *Pipeline) Catalog() *discovery.Catalog {
	return p.catalog
}

// Run executes one pipeline invocation using the first maxQueries catalog
// queries. Events are published to sink in order; sink may be nil. Only
// configuration faults, context cancellation and unexpected failures end a
// run early.
func (p *Pipeline) Run(ctx context.Context, maxQueries int, sink progress.Sink) (*model.RunResult, error) {
	return p.safeRun(ctx, uuid.NewString(), maxQueries, sink)
}

func (p *Pipeline) run(ctx context.Context, runID string, maxQueries int, sink progress.Sink) (*model.RunResult, error) {
	if sink == nil {
		sink = progress.Discard
	}
	if maxQueries <= 0 {
		maxQueries = p.cfg.Discovery.DefaultMaxQueries
	}

	st := newRunState()
	result := &model.RunResult{
		RunID:     runID,
		StartedAt: p.now().UTC(),
		Queries:   p.catalog.Select(maxQueries),
	}

	log := zap.L().With(zap.String("run_id", runID))
	log.Info("pipeline: starting run", zap.Int("queries", len(result.Queries)))

	candidates, err := p.discover(ctx, result.Queries, st, sink)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: discover")
	}

	identified, err := p.identify(ctx, candidates, st, sink)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: identify")
	}

	verified, err := p.enrich(ctx, identified, st, sink)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: enrich")
	}

	result.Verified = verified
	result.Gated = st.gated
	result.Costs = st.costs
	result.QuotaUnits = st.quota
	result.FieldSources = st.fieldSources
	result.Stats = st.stats(len(candidates), verified)
	result.Effectiveness = effectiveness(st.tallies, p.calc.Rates())
	result.Projections = projection.Calculate(verified, st.costs.Total)
	result.DebugLogs = st.debugLogs()
	result.FinishedAt = p.now().UTC()

	log.Info("pipeline: run complete",
		zap.Int("discovered", result.Stats.Discovered),
		zap.Int("gated", result.Stats.Gated),
		zap.Int("verified", result.Stats.Verified),
		zap.Float64("cost_usd", result.Costs.Total),
		zap.Int("quota_units", result.QuotaUnits),
	)
	return result, nil
}

// RatesFromConfig converts configured pricing into a cost rate table.
func RatesFromConfig(p config.PricingConfig) cost.Rates {
	rates := cost.Rates{
		Anthropic: make(map[string]cost.ModelRate, len(p.Anthropic)),
		Exa:       cost.ExaRate{PerSearch: p.Exa.PerSearch, PerContent: p.Exa.PerContent},
		EmailFinder: cost.EmailFinderRate{
			Hunter: p.EmailFinder.Hunter,
			Snov:   p.EmailFinder.Snov,
		},
		YouTube: cost.QuotaRate{
			Search:       p.YouTube.Search,
			ChannelBatch: p.YouTube.ChannelBatch,
			VideoList:    p.YouTube.VideoList,
		},
	}
	for name, r := range p.Anthropic {
		rates.Anthropic[name] = cost.ModelRate{Input: r.Input, Output: r.Output}
	}
	return rates
}

// Package waterfall resolves contact details by running enrichment steps in
// order, each filling only the fields earlier steps left empty.
package waterfall

import (
	"context"
	"fmt"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/derm-scout/internal/model"
	"github.com/sells-group/derm-scout/internal/waterfall/provider"
)

// Executor runs the registered steps for a subject.
type Executor struct {
	registry *provider.Registry
}

// NewExecutor creates a waterfall executor.
func NewExecutor(registry *provider.Registry) *Executor {
	return &Executor{registry: registry}
}

// Run folds every applicable step into a fresh contact record. A filled
// field is never overwritten. Steps whose precondition fails are skipped
// and not recorded as checked. Only configuration faults abort the run.
func (e *Executor) Run(ctx context.Context, s provider.Subject) (*Outcome, error) {
	out := &Outcome{
		Contact: model.ContactRecord{SourcesChecked: []model.ContactSource{}},
		Tallies: make(map[model.ContactSource]Tally),
	}
	rec := &out.Contact
	log := zap.L().With(zap.String("channel_id", s.ChannelID))

	for _, step := range e.registry.Steps() {
		if !step.Applies(rec, s) {
			out.Log = append(out.Log, step.Name()+": skipped")
			continue
		}

		p, err := step.Attempt(ctx, snapshot(rec), s)
		if err != nil {
			return nil, eris.Wrapf(err, "waterfall: %s", step.Name())
		}

		filled := make(map[model.ContactSource]bool)
		for _, v := range p.Values {
			if rec.Fill(v.Field, v.Value, v.Source) {
				filled[v.Source] = true
				out.Fills = append(out.Fills, FieldFill{Field: v.Field, Source: v.Source})
				out.Log = append(out.Log, fmt.Sprintf("%s: %s filled from %s", step.Name(), v.Field, v.Source))
			}
		}
		if rec.SocialHandle == "" {
			rec.SocialHandle = p.SocialHandle
		}
		if rec.PracticeDomain == "" && rec.Website != nil {
			rec.PracticeDomain = provider.Domain(rec.Website.Value)
		}

		for _, src := range p.Checked {
			rec.MarkChecked(src)
			t := out.Tallies[src]
			t.Searched++
			if filled[src] {
				t.Found++
			}
			out.Tallies[src] = t
		}

		out.Cost = out.Cost.Add(p.Cost)
		out.Log = append(out.Log, p.Log...)
	}

	log.Debug("waterfall: enrichment complete",
		zap.Int("fills", len(out.Fills)),
		zap.Int("sources_checked", len(rec.SourcesChecked)),
		zap.Float64("cost_usd", out.Cost.Total),
	)
	return out, nil
}

// snapshot copies rec so steps cannot mutate the running record.
func snapshot(rec *model.ContactRecord) model.ContactRecord {
	cp := *rec
	cp.SourcesChecked = append([]model.ContactSource(nil), rec.SourcesChecked...)
	return cp
}

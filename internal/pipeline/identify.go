package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/derm-scout/internal/gate"
	"github.com/sells-group/derm-scout/internal/model"
	"github.com/sells-group/derm-scout/internal/progress"
)

// IdentifiedCandidate is a candidate that passed every phase 2 check.
type IdentifiedCandidate struct {
	Candidate model.Candidate `json:"candidate"`
	Identity  model.Identity  `json:"identity"`
}

// identify is phase 2: activity gate, identity extraction, the
// professional gate and the country filter, first failure wins.
func (p *Pipeline) identify(ctx context.Context, candidates []model.Candidate, st *runState, sink progress.Sink) ([]IdentifiedCandidate, error) {
	sink.Emit(progress.PhaseEvent(2, fmt.Sprintf("Filtering and identifying %d channels", len(candidates))))

	every := p.cfg.Pipeline.ProgressEvery
	if every <= 0 {
		every = 5
	}
	now := p.now()

	var out []IdentifiedCandidate
	for i, c := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		id, ok, err := p.admit(ctx, c, now, st)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, IdentifiedCandidate{Candidate: c, Identity: *id})
		}

		if processed := i + 1; processed%every == 0 || processed == len(candidates) {
			sink.Emit(progress.ProgressEvent(2, processed, len(candidates)))
		}
	}

	ev := progress.PhaseEvent(2, fmt.Sprintf("%d channels identified as practicing physicians", len(out)))
	ev.Count = len(out)
	sink.Emit(ev)

	zap.L().Info("pipeline: identification complete",
		zap.Int("candidates", len(candidates)),
		zap.Int("identified", len(out)),
		zap.Int("gated", len(st.gated)),
	)
	return out, nil
}

// admit runs the phase 2 checks for one candidate. A dropped candidate is
// recorded in st and reported as not ok.
func (p *Pipeline) admit(ctx context.Context, c model.Candidate, now time.Time, st *runState) (*model.Identity, bool, error) {
	ch := c.Channel
	l := st.debug(ch)
	log := zap.L().With(zap.String("channel_id", ch.ID))

	if outcome := p.gate.Evaluate(c, now); !outcome.Passed {
		l.Gate = append(l.Gate, "failed: "+string(outcome.Reason)+" ("+outcome.Detail+")")
		log.Debug("pipeline: gated", zap.String("reason", string(outcome.Reason)))
		st.drop(ch, outcome)
		return nil, false, nil
	}
	l.Gate = append(l.Gate, "passed")

	res, err := p.extractor.Extract(ctx, c)
	if err != nil {
		return nil, false, err
	}
	st.addLLMCost(res.Cost)
	if res.Identity != nil {
		st.identified++
		l.Identity = append(l.Identity,
			"name: "+res.Identity.Name(ch.Title),
			fmt.Sprintf("professional: %t, specialist: %t", res.Identity.IsProfessional, res.Identity.IsSpecialist),
			"confidence: "+string(res.Identity.Confidence),
		)
		if res.Identity.Reasoning != "" {
			l.Identity = append(l.Identity, "reasoning: "+res.Identity.Reasoning)
		}
	}
	l.Identity = append(l.Identity, fmt.Sprintf("cost: $%.4f", res.Cost))

	if outcome := gate.Professional(res.Identity); !outcome.Passed {
		log.Debug("pipeline: not a practicing physician", zap.String("reason", string(outcome.Reason)))
		st.drop(ch, outcome)
		return nil, false, nil
	}

	if outcome := p.country.Evaluate(ch, res.Identity); !outcome.Passed {
		l.Identity = append(l.Identity, "country: "+outcome.Detail)
		log.Debug("pipeline: non-domestic", zap.String("detail", outcome.Detail))
		st.drop(ch, outcome)
		return nil, false, nil
	}

	return res.Identity, true, nil
}

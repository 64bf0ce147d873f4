package pipeline

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/derm-scout/internal/model"
	"github.com/sells-group/derm-scout/internal/profilematch"
	"github.com/sells-group/derm-scout/internal/progress"
	"github.com/sells-group/derm-scout/internal/registry"
	"github.com/sells-group/derm-scout/internal/waterfall/provider"
)

// enrich is phase 3: registry verification, scoring and the contact
// waterfall, one candidate at a time.
func (p *Pipeline) enrich(ctx context.Context, identified []IdentifiedCandidate, st *runState, sink progress.Sink) ([]model.VerifiedCandidate, error) {
	sink.Emit(progress.PhaseEvent(3, fmt.Sprintf("Verifying and enriching %d physicians", len(identified))))

	verified := make([]model.VerifiedCandidate, 0, len(identified))
	for i, ic := range identified {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		v, err := p.verifyOne(ctx, ic, st)
		if err != nil {
			return nil, err
		}
		verified = append(verified, *v)

		sink.Emit(progress.Event{
			Type:      progress.TypeProgress,
			Phase:     3,
			Processed: i + 1,
			Total:     len(identified),
			Candidate: v.Name(),
			Tier:      v.Verification.Tier,
		})
	}

	ev := progress.PhaseEvent(3, fmt.Sprintf("%d physicians verified", len(verified)))
	ev.Count = len(verified)
	sink.Emit(ev)
	return verified, nil
}

func (p *Pipeline) verifyOne(ctx context.Context, ic IdentifiedCandidate, st *runState) (*model.VerifiedCandidate, error) {
	v, err := p.verifyCandidate(ctx, ic, st)
	if err != nil {
		return nil, err
	}
	if err := p.enrichCandidate(ctx, v, st); err != nil {
		return nil, err
	}
	return v, nil
}

// verifyCandidate runs the registry cascade and scores the result. The
// returned candidate has no contact details yet.
func (p *Pipeline) verifyCandidate(ctx context.Context, ic IdentifiedCandidate, st *runState) (*model.VerifiedCandidate, error) {
	ch := ic.Candidate.Channel
	id := ic.Identity
	l := st.debug(ch)

	lookup, err := p.verifier.Verify(ctx, id)
	if err != nil {
		return nil, err
	}
	vr := p.scorer.Score(id, lookup.Best, lookup.TotalCount)

	l.Verification = append(l.Verification,
		fmt.Sprintf("registry: %d results (step %d, %d attempts)", lookup.TotalCount, lookup.Step, lookup.Attempts),
	)
	if lookup.Region != "" {
		l.Verification = append(l.Verification, "region: "+lookup.Region)
	}
	if lookup.Best != nil {
		l.Verification = append(l.Verification,
			fmt.Sprintf("best match: NPI %d %s %s (score %d)", lookup.Best.Number, lookup.Best.GivenName, lookup.Best.FamilyName, lookup.BestScore))
	}
	l.Verification = append(l.Verification, fmt.Sprintf("tier: %s, confidence: %d", vr.Tier, vr.Confidence))
	l.FinalStatus = verifiedStatus(vr)

	return &model.VerifiedCandidate{
		Candidate:    ic.Candidate,
		Identity:     id,
		Verification: vr,
		CreatedAt:    p.now().UTC(),
	}, nil
}

// enrichCandidate runs the contact waterfall for v and replaces its
// contact record with the outcome.
func (p *Pipeline) enrichCandidate(ctx context.Context, v *model.VerifiedCandidate, st *runState) error {
	ch := v.Candidate.Channel
	best := v.Verification.BestMatch

	out, err := p.waterfall.Run(ctx, provider.Subject{
		ChannelID:    ch.ID,
		Description:  ch.Description,
		Identity:     v.Identity,
		DisplayName:  v.Identity.Name(ch.Title),
		Match:        best,
		MatchContext: matchContext(v.Identity, best),
	})
	if err != nil {
		return err
	}
	st.foldWaterfall(out)
	v.Contact = out.Contact

	l := st.debug(ch)
	l.Enrichment = append(l.Enrichment, out.Log...)
	if l.FinalStatus == "" {
		l.FinalStatus = verifiedStatus(v.Verification)
	}

	zap.L().Debug("pipeline: candidate verified",
		zap.String("channel_id", ch.ID),
		zap.String("tier", string(v.Verification.Tier)),
		zap.Int("confidence", v.Verification.Confidence),
		zap.Int("fields", len(out.Fills)),
	)
	return nil
}

// matchContext prefers the registry practice address for city and region
// and falls back to the identity's free-text location.
func matchContext(id model.Identity, best *model.RegistryMatch) profilematch.Context {
	mc := profilematch.Context{
		GivenName:   id.GivenName,
		FamilyName:  id.FamilyName,
		Credentials: id.Credentials,
	}
	if best != nil && best.Address != nil && (best.Address.City != "" || best.Address.State != "") {
		mc.City = best.Address.City
		mc.Region = best.Address.State
		return mc
	}
	if loc := strings.TrimSpace(id.Location); loc != "" {
		if city, _, ok := strings.Cut(loc, ","); ok {
			mc.City = strings.TrimSpace(city)
		}
		mc.Region = registry.DeriveRegion(loc)
	}
	return mc
}

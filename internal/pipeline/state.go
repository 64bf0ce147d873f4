package pipeline

import (
	"fmt"

	"github.com/sells-group/derm-scout/internal/model"
	"github.com/sells-group/derm-scout/internal/waterfall"
)

// runState holds the accumulators of a single run. Only the run loop
// touches it; components hand back deltas that are folded in here.
type runState struct {
	costs        model.CostBreakdown
	quota        int
	identified   int
	gated        []model.GatedCandidate
	gateReasons  map[model.GateReason]int
	fieldSources map[model.ContactField]map[model.ContactSource]int
	tallies      map[model.ContactSource]waterfall.Tally

	logs  map[string]*model.DebugLog
	order []string
}

func newRunState() *runState {
	return &runState{
		gated:        []model.GatedCandidate{},
		gateReasons:  make(map[model.GateReason]int),
		fieldSources: make(map[model.ContactField]map[model.ContactSource]int),
		tallies:      make(map[model.ContactSource]waterfall.Tally),
		logs:         make(map[string]*model.DebugLog),
	}
}

// debug returns the debug log of a channel, creating it on first use.
func (s *runState) debug(ch model.Channel) *model.DebugLog {
	if l, ok := s.logs[ch.ID]; ok {
		return l
	}
	l := &model.DebugLog{ChannelID: ch.ID, ChannelTitle: ch.Title}
	s.logs[ch.ID] = l
	s.order = append(s.order, ch.ID)
	return l
}

func (s *runState) debugLogs() []model.DebugLog {
	out := make([]model.DebugLog, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.logs[id])
	}
	return out
}

func (s *runState) addLLMCost(usd float64) {
	s.costs = s.costs.Add(model.CostBreakdown{LLM: usd})
}

// drop records a candidate leaving the run with a gate reason.
func (s *runState) drop(ch model.Channel, outcome model.GateOutcome) {
	s.gated = append(s.gated, model.GatedCandidate{
		ChannelID: ch.ID,
		Title:     ch.Title,
		Reason:    outcome.Reason,
		Detail:    outcome.Detail,
	})
	s.gateReasons[outcome.Reason]++

	l := s.debug(ch)
	l.FinalStatus = "gated: " + string(outcome.Reason)
	if outcome.Detail != "" {
		l.FinalStatus += " (" + outcome.Detail + ")"
	}
}

// foldWaterfall merges one enrichment outcome into the run totals.
func (s *runState) foldWaterfall(out *waterfall.Outcome) {
	s.costs = s.costs.Add(out.Cost)
	for _, f := range out.Fills {
		bySource := s.fieldSources[f.Field]
		if bySource == nil {
			bySource = make(map[model.ContactSource]int)
			s.fieldSources[f.Field] = bySource
		}
		bySource[f.Source]++
	}
	for src, t := range out.Tallies {
		acc := s.tallies[src]
		acc.Searched += t.Searched
		acc.Found += t.Found
		s.tallies[src] = acc
	}
}

func (s *runState) stats(discovered int, verified []model.VerifiedCandidate) model.RunStats {
	st := model.RunStats{
		Discovered:  discovered,
		Gated:       len(s.gated),
		GateReasons: s.gateReasons,
		Identified:  s.identified,
		Verified:    len(verified),
	}
	for _, v := range verified {
		c := v.Contact
		if c.Has(model.FieldEmail) {
			st.WithEmail++
		}
		if c.Has(model.FieldProfessionalURL) {
			st.WithProfessionalURL++
		}
		if c.Has(model.FieldAlternateURL) {
			st.WithAlternateURL++
		}
		if c.Has(model.FieldPhone) {
			st.WithPhone++
		}
	}
	return st
}

func verifiedStatus(v model.VerificationResult) string {
	return fmt.Sprintf("verified: %s (%d)", v.Tier, v.Confidence)
}

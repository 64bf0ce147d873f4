// Package gate holds the admission checks applied to candidates before
// costlier identity and verification work.
package gate

import (
	"fmt"
	"time"

	"github.com/sells-group/derm-scout/internal/model"
)

// Thresholds are the primary gate limits.
type Thresholds struct {
	MinReach        int64
	MaxInactiveDays int
}

// DefaultThresholds returns the reference thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{MinReach: 5000, MaxInactiveDays: 90}
}

// Evaluator applies the primary gate.
type Evaluator struct {
	t Thresholds
}

// NewEvaluator creates an Evaluator.
func NewEvaluator(t Thresholds) *Evaluator {
	return &Evaluator{t: t}
}

// Evaluate runs the reach check and then the recency check; the first
// failure wins. A hidden reach passes the reach check regardless of count.
func (e *Evaluator) Evaluate(c model.Candidate, now time.Time) model.GateOutcome {
	if !c.Channel.ReachHidden() && c.Channel.Subscribers < e.t.MinReach {
		return model.Fail(model.ReasonLowReach,
			fmt.Sprintf("%d subscribers < %d", c.Channel.Subscribers, e.t.MinReach))
	}

	if c.LastActivity == nil {
		return model.Fail(model.ReasonNoUploads, "no recent uploads found")
	}

	days := DaysSince(*c.LastActivity, now)
	if days > e.t.MaxInactiveDays {
		return model.Fail(model.ReasonInactive,
			fmt.Sprintf("last upload %d days ago (max %d)", days, e.t.MaxInactiveDays))
	}
	return model.Pass()
}

// DaysSince returns whole days elapsed from t to now. Future timestamps
// count as zero.
func DaysSince(t, now time.Time) int {
	d := now.Sub(t)
	if d < 0 {
		return 0
	}
	return int(d.Hours() / 24)
}

// Professional is the secondary gate applied after identity extraction. A
// missing identity fails as an extraction failure; an identity that is not
// a licensed professional fails with its own reason.
func Professional(id *model.Identity) model.GateOutcome {
	if id == nil {
		return model.Fail(model.ReasonExtractionFailed, "identity extraction returned nothing")
	}
	if !id.IsProfessional {
		detail := "not identified as a licensed physician"
		if id.Reasoning != "" {
			detail += ": " + id.Reasoning
		}
		return model.Fail(model.ReasonNotProfessional, detail)
	}
	return model.Pass()
}

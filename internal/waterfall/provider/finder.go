package provider

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/sells-group/derm-scout/internal/cost"
	"github.com/sells-group/derm-scout/internal/model"
	"github.com/sells-group/derm-scout/internal/resilience"
	"github.com/sells-group/derm-scout/pkg/hunter"
	"github.com/sells-group/derm-scout/pkg/snov"
)

// finderFunc looks up an address at a domain. detail is logged on success.
type finderFunc func(ctx context.Context, domain, first, last string) (email, detail string, err error)

// EmailFinder is a domain-based email lookup. It applies only when the
// practice domain and both names are known and email is still empty.
type EmailFinder struct {
	name   string
	source model.ContactSource
	find   finderFunc
	cost   func() float64
}

// NewHunter wraps a Hunter client as a waterfall step.
func NewHunter(c hunter.Client, calc *cost.Calculator) *EmailFinder {
	return &EmailFinder{
		name:   "hunter",
		source: model.SourceFinderA,
		cost:   calc.Hunter,
		find: func(ctx context.Context, domain, first, last string) (string, string, error) {
			e, err := c.FindEmail(ctx, domain, first, last)
			if err != nil || e == nil {
				return "", "", err
			}
			return e.Address, fmt.Sprintf("score: %d", e.Score), nil
		},
	}
}

// NewSnov wraps a Snov client as a waterfall step.
func NewSnov(c snov.Client, calc *cost.Calculator) *EmailFinder {
	return &EmailFinder{
		name:   "snov",
		source: model.SourceFinderB,
		cost:   calc.Snov,
		find: func(ctx context.Context, domain, first, last string) (string, string, error) {
			e, err := c.FindEmail(ctx, domain, first, last)
			if err != nil || e == nil {
				return "", "", err
			}
			return e.Address, "status: " + e.Status, nil
		},
	}
}

// Name implements Step.
func (f *EmailFinder) Name() string { return f.name }

// Applies implements Step.
func (f *EmailFinder) Applies(rec *model.ContactRecord, s Subject) bool {
	return rec.PracticeDomain != "" &&
		!rec.Has(model.FieldEmail) &&
		s.Identity.GivenName != "" &&
		s.Identity.FamilyName != ""
}

// Attempt implements Step.
func (f *EmailFinder) Attempt(ctx context.Context, rec model.ContactRecord, s Subject) (Partial, error) {
	p := Partial{
		Checked: []model.ContactSource{f.source},
		Cost:    model.CostBreakdown{EmailFinder: f.cost()},
	}

	email, detail, err := f.find(ctx, rec.PracticeDomain, s.Identity.GivenName, s.Identity.FamilyName)
	if err != nil {
		if resilience.IsConfigFault(err) {
			return Partial{}, err
		}
		zap.L().Warn("waterfall: email finder failed",
			zap.String("provider", f.name),
			zap.String("domain", rec.PracticeDomain),
			zap.Error(err),
		)
	}
	if email == "" {
		p.Log = append(p.Log, fmt.Sprintf("%s: no email for domain %s", f.name, rec.PracticeDomain))
		return p, nil
	}

	p.Values = append(p.Values, Value{model.FieldEmail, email, f.source})
	p.Log = append(p.Log, fmt.Sprintf("%s: email found (%s, %s)", f.name, email, detail))
	return p, nil
}

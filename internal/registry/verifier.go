// Package registry verifies identities against the NPI credential registry.
package registry

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/derm-scout/internal/model"
	"github.com/sells-group/derm-scout/internal/resilience"
	"github.com/sells-group/derm-scout/pkg/npi"
)

// Options configures the verifier.
type Options struct {
	// Taxonomy is the registry taxonomy description filter, e.g. "Dermatology".
	Taxonomy string
}

// Lookup is the outcome of a registry cascade.
type Lookup struct {
	Matches    []model.RegistryMatch
	TotalCount int
	Best       *model.RegistryMatch
	BestScore  int
	// Region is the 2-letter region derived from the identity location.
	Region string
	// Step is the cascade step (1-3) that produced Matches, or 0.
	Step     int
	Attempts int
}

// Verifier runs the registry search cascade.
type Verifier struct {
	client  npi.Client
	opts    Options
	keyword string
}

// NewVerifier creates a Verifier.
func NewVerifier(client npi.Client, opts Options) *Verifier {
	if opts.Taxonomy == "" {
		opts.Taxonomy = "Dermatology"
	}
	return &Verifier{client: client, opts: opts, keyword: strings.ToLower(opts.Taxonomy)}
}

// Verify searches the registry for the identity, narrowest query first:
//
//  1. name + taxonomy + region (only when a region can be derived)
//  2. name + taxonomy
//  3. name only
//
// Each step runs only when the previous one returned no records. Identities
// without a family name are not looked up. Provider failures count as an
// empty step; only configuration faults are returned.
func (v *Verifier) Verify(ctx context.Context, id model.Identity) (*Lookup, error) {
	lookup := &Lookup{Region: DeriveRegion(id.Location)}
	if strings.TrimSpace(id.FamilyName) == "" {
		return lookup, nil
	}

	log := zap.L().With(zap.String("family_name", id.FamilyName))

	for _, st := range v.cascade(id, lookup.Region) {
		lookup.Attempts++

		res, err := v.client.Search(ctx, st.query)
		if err != nil {
			if resilience.IsConfigFault(err) {
				return nil, err
			}
			log.Warn("registry: search failed", zap.Int("step", st.n), zap.Error(err))
			continue
		}
		lookup.TotalCount = res.ResultCount
		if len(res.Providers) == 0 {
			continue
		}

		lookup.Step = st.n
		for _, p := range res.Providers {
			lookup.Matches = append(lookup.Matches, toModel(p))
		}
		break
	}

	lookup.Best, lookup.BestScore = BestMatch(id, lookup.Region, v.keyword, lookup.Matches)

	log.Debug("registry: cascade complete",
		zap.Int("step", lookup.Step),
		zap.Int("attempts", lookup.Attempts),
		zap.Int("matches", len(lookup.Matches)),
		zap.Int("best_score", lookup.BestScore),
	)
	return lookup, nil
}

type cascadeStep struct {
	n     int
	query npi.Query
}

func (v *Verifier) cascade(id model.Identity, region string) []cascadeStep {
	base := npi.Query{FirstName: id.GivenName, LastName: id.FamilyName}

	withTaxonomy := base
	withTaxonomy.TaxonomyDescription = v.opts.Taxonomy

	var steps []cascadeStep
	if region != "" {
		regional := withTaxonomy
		regional.State = region
		steps = append(steps, cascadeStep{n: 1, query: regional})
	}
	return append(steps,
		cascadeStep{n: 2, query: withTaxonomy},
		cascadeStep{n: 3, query: base},
	)
}

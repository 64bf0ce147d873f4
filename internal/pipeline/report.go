package pipeline

import (
	"math"

	"github.com/sells-group/derm-scout/internal/cost"
	"github.com/sells-group/derm-scout/internal/model"
	"github.com/sells-group/derm-scout/internal/waterfall"
)

// reportedSources are the contact sources listed in the effectiveness
// report, in waterfall order.
var reportedSources = []model.ContactSource{
	model.SourceDescription,
	model.SourceProfessionalURL,
	model.SourceAlternateURL,
	model.SourcePractice,
	model.SourceFinderA,
	model.SourceFinderB,
	model.SourceRegistry,
}

// effectiveness reports searched/found, hit rate and cost per success for
// every contact source, including sources that were never attempted.
func effectiveness(tallies map[model.ContactSource]waterfall.Tally, rates cost.Rates) []model.ProviderEffectiveness {
	out := make([]model.ProviderEffectiveness, 0, len(reportedSources))
	for _, src := range reportedSources {
		t := tallies[src]
		e := model.ProviderEffectiveness{Provider: src, Searched: t.Searched, Found: t.Found}
		if t.Searched > 0 {
			e.HitRate = int(math.Round(float64(t.Found) / float64(t.Searched) * 100))
		}
		if t.Found > 0 {
			e.CostPerSuccess = float64(t.Searched) * lookupCost(src, rates) / float64(t.Found)
		}
		out = append(out, e)
	}
	return out
}

// lookupCost is the price of one attempt against src. Practice searches
// also pay for one content fetch.
func lookupCost(src model.ContactSource, rates cost.Rates) float64 {
	switch src {
	case model.SourceProfessionalURL, model.SourceAlternateURL:
		return rates.Exa.PerSearch
	case model.SourcePractice:
		return rates.Exa.PerSearch + rates.Exa.PerContent
	case model.SourceFinderA:
		return rates.EmailFinder.Hunter
	case model.SourceFinderB:
		return rates.EmailFinder.Snov
	}
	return 0
}

// Package scoring turns identity signals and a registry match into a
// verification confidence and tier.
package scoring

import (
	"fmt"
	"strings"

	"github.com/sells-group/derm-scout/internal/model"
)

// Tier thresholds.
const (
	GoldThreshold   = 70
	SilverThreshold = 40
	maxConfidence   = 100
)

// Scorer computes verification results.
type Scorer struct {
	// keyword is the lowercase specialty expected in registry taxonomies.
	keyword string
}

// NewScorer creates a Scorer for the given registry taxonomy text.
func NewScorer(taxonomy string) *Scorer {
	if taxonomy == "" {
		taxonomy = "Dermatology"
	}
	return &Scorer{keyword: strings.ToLower(taxonomy)}
}

// Score sums the identity and registry contributions, caps the result at
// 100 and assigns a tier. totalCount is the number of records the registry
// reported, used for the consolation point when no match was strong enough.
func (s *Scorer) Score(id model.Identity, best *model.RegistryMatch, totalCount int) model.VerificationResult {
	var (
		confidence int
		reasons    []string
	)
	add := func(points int, reason string) {
		confidence += points
		if reason != "" {
			reasons = append(reasons, reason)
		}
	}

	if id.IsProfessional {
		add(15, "identified as a licensed physician")
	}
	if id.IsSpecialist {
		add(15, "identified as a specialist")
	}
	if id.BoardCertified != nil && *id.BoardCertified {
		add(10, "board certification indicated")
	}
	if id.Credentials != "" {
		add(5, "credentials: "+id.Credentials)
	}
	switch id.Confidence {
	case model.ConfidenceHigh:
		add(10, "")
	case model.ConfidenceMedium:
		add(5, "")
	}

	if best != nil {
		add(25, fmt.Sprintf("NPI match: %d", best.Number))
		if strings.Contains(strings.ToLower(best.Taxonomy), s.keyword) {
			add(10, "NPI taxonomy confirms "+s.keyword)
		}
		if best.Active() {
			add(5, "NPI status: active")
		}
	} else if totalCount > 0 {
		add(5, fmt.Sprintf("%d NPI results but no strong match", totalCount))
	}

	confidence = min(confidence, maxConfidence)
	return model.VerificationResult{
		Tier:       AssignTier(confidence, best != nil),
		BestMatch:  best,
		TotalCount: totalCount,
		Confidence: confidence,
		Reasoning:  strings.Join(reasons, "; "),
	}
}

// AssignTier maps a confidence to a tier. Gold needs both the score and a
// registry match.
func AssignTier(confidence int, hasMatch bool) model.Tier {
	switch {
	case confidence >= GoldThreshold && hasMatch:
		return model.TierGold
	case confidence >= SilverThreshold:
		return model.TierSilver
	default:
		return model.TierBronze
	}
}

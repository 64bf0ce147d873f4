package registry

import (
	"strings"

	"github.com/sells-group/derm-scout/internal/model"
	"github.com/sells-group/derm-scout/internal/textnorm"
	"github.com/sells-group/derm-scout/pkg/npi"
)

// MinMatchScore is the lowest score a registry record needs to be accepted.
// A family-name match alone scores exactly this much.
const MinMatchScore = 3

// Match score weights.
const (
	familyNamePoints = 3
	givenNamePoints  = 2
	taxonomyPoints   = 3
	activePoints     = 1
	regionPoints     = 1
)

// MatchScore scores one registry record against an identity. region is the
// identity's derived 2-letter region, or "" when unknown. keyword is the
// lowercase specialty text expected in the taxonomy description.
func MatchScore(id model.Identity, region, keyword string, m model.RegistryMatch) int {
	score := 0

	if fam := textnorm.Fold(id.FamilyName); fam != "" && textnorm.Fold(m.FamilyName) == fam {
		score += familyNamePoints
	}
	if given := textnorm.Fold(id.GivenName); given != "" && strings.Contains(textnorm.Fold(m.GivenName), given) {
		score += givenNamePoints
	}
	if keyword != "" && strings.Contains(strings.ToLower(m.Taxonomy), keyword) {
		score += taxonomyPoints
	}
	if m.Active() {
		score += activePoints
	}
	if region != "" && m.Address != nil && strings.EqualFold(m.Address.State, region) {
		score += regionPoints
	}
	return score
}

// BestMatch returns the highest-scoring record at or above MinMatchScore.
// Ties keep the earliest record.
func BestMatch(id model.Identity, region, keyword string, matches []model.RegistryMatch) (*model.RegistryMatch, int) {
	bestIdx, bestScore := -1, 0
	for i, m := range matches {
		if s := MatchScore(id, region, keyword, m); s > bestScore {
			bestIdx, bestScore = i, s
		}
	}
	if bestIdx < 0 || bestScore < MinMatchScore {
		return nil, bestScore
	}
	best := matches[bestIdx]
	return &best, bestScore
}

// toModel flattens a registry provider record.
func toModel(p npi.Provider) model.RegistryMatch {
	m := model.RegistryMatch{
		Number:     p.Number,
		GivenName:  p.Basic.FirstName,
		FamilyName: p.Basic.LastName,
		Credential: p.Basic.Credential,
		Status:     p.Basic.Status,
	}
	if t, ok := p.PrimaryTaxonomy(); ok {
		m.Taxonomy = t.Desc
		m.TaxonomyCode = t.Code
		m.PrimaryTaxonomy = t.Primary
	}
	if a, ok := p.PracticeAddress(); ok {
		m.Address = &model.Address{
			Street:     a.Address1,
			City:       a.City,
			State:      a.State,
			PostalCode: a.PostalCode,
			Phone:      a.Phone,
		}
	}
	return m
}

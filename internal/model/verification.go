package model

// Tier is the coarse confidence bucket of a verified candidate.
type Tier string

const (
	TierGold   Tier = "gold"
	TierSilver Tier = "silver"
	TierBronze Tier = "bronze"
)

// Address is a registry practice location.
type Address struct {
	Street     string `json:"street,omitempty"`
	City       string `json:"city,omitempty"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
	Phone      string `json:"phone,omitempty"`
}

// RegistryMatch is a single credential registry record.
type RegistryMatch struct {
	Number          int64    `json:"number"`
	GivenName       string   `json:"given_name"`
	FamilyName      string   `json:"family_name"`
	Credential      string   `json:"credential,omitempty"`
	Status          string   `json:"status,omitempty"`
	Taxonomy        string   `json:"taxonomy,omitempty"`
	TaxonomyCode    string   `json:"taxonomy_code,omitempty"`
	PrimaryTaxonomy bool     `json:"primary_taxonomy"`
	Address         *Address `json:"address,omitempty"`
}

// Active reports whether the registry record is in active status.
func (m RegistryMatch) Active() bool {
	return m.Status == "A"
}

// Phone returns the practice phone, if any.
func (m RegistryMatch) Phone() string {
	if m.Address == nil {
		return ""
	}
	return m.Address.Phone
}

// VerificationResult is the scored outcome of registry verification.
type VerificationResult struct {
	Tier       Tier           `json:"tier"`
	BestMatch  *RegistryMatch `json:"best_match,omitempty"`
	TotalCount int            `json:"total_count"`
	Confidence int            `json:"confidence"`
	Reasoning  string         `json:"reasoning"`
}

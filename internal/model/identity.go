package model

import "strings"

// Confidence is the extraction collaborator's self-reported confidence.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// ParseConfidence maps free text onto a Confidence. Unknown values are low.
func ParseConfidence(s string) Confidence {
	switch Confidence(strings.ToLower(strings.TrimSpace(s))) {
	case ConfidenceHigh:
		return ConfidenceHigh
	case ConfidenceMedium:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// Identity is the real-world person resolved from channel metadata.
type Identity struct {
	GivenName      string     `json:"given_name,omitempty"`
	FamilyName     string     `json:"family_name,omitempty"`
	DisplayName    string     `json:"display_name,omitempty"`
	Credentials    string     `json:"credentials,omitempty"`
	IsProfessional bool       `json:"is_professional"`
	IsSpecialist   bool       `json:"is_specialist"`
	BoardCertified *bool      `json:"board_certified,omitempty"`
	Affiliation    string     `json:"affiliation,omitempty"`
	Location       string     `json:"location,omitempty"`
	CountryCode    string     `json:"country_code,omitempty"`
	Confidence     Confidence `json:"confidence"`
	Reasoning      string     `json:"reasoning,omitempty"`
}

// FullName joins given and family names.
func (id Identity) FullName() string {
	return strings.TrimSpace(id.GivenName + " " + id.FamilyName)
}

// Name returns the best available display name for the identity, falling
// back to fallback when neither a display name nor a full name exists.
func (id Identity) Name(fallback string) string {
	if id.DisplayName != "" {
		return id.DisplayName
	}
	if n := id.FullName(); n != "" {
		return n
	}
	return fallback
}

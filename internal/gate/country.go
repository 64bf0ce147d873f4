package gate

import (
	"regexp"
	"strings"

	"github.com/sells-group/derm-scout/internal/model"
)

// nonDomesticIndicators are lowercase phrases in free text that mark a
// candidate as practicing outside the domestic market.
var nonDomesticIndicators = []string{
	"india", "uk", "united kingdom", "canada", "australia", "philippines",
	"pakistan", "nigeria", "south africa", "germany", "brazil",
	"country: in", "country: gb", "country: ca", "country: au", "country: ph",
	"indian", "british", "canadian", "australian", "filipino", "filipina",
	"pakistani", "nigerian", "south african", "german", "brazilian",
}

// Indicators match as whole words, optionally pluralized, so "uk" does not
// hit "Duke" and "india" does not hit "Indiana".
var nonDomesticRe = func() *regexp.Regexp {
	quoted := make([]string, len(nonDomesticIndicators))
	for i, ind := range nonDomesticIndicators {
		quoted[i] = regexp.QuoteMeta(ind)
	}
	return regexp.MustCompile(`\b(?:` + strings.Join(quoted, "|") + `)s?\b`)
}()

// CountryFilter classifies candidates as domestic or not.
type CountryFilter struct {
	domestic string
}

// NewCountryFilter creates a filter for the given domestic ISO country code.
func NewCountryFilter(domestic string) *CountryFilter {
	if domestic == "" {
		domestic = "US"
	}
	return &CountryFilter{domestic: strings.ToUpper(domestic)}
}

// IsDomestic reports whether the candidate belongs to the domestic market.
// An explicit channel country always wins, with the empty string treated as
// domestic. Without one, the identity's location and reasoning are scanned
// for non-domestic indicators. No signal means domestic.
func (f *CountryFilter) IsDomestic(ch model.Channel, id *model.Identity) bool {
	if ch.Country != nil {
		code := strings.ToUpper(strings.TrimSpace(*ch.Country))
		return code == "" || code == f.domestic
	}
	if id == nil {
		return true
	}

	text := strings.ToLower(id.Location + " " + id.Reasoning)
	return !nonDomesticRe.MatchString(text)
}

// Evaluate wraps IsDomestic as a gate outcome.
func (f *CountryFilter) Evaluate(ch model.Channel, id *model.Identity) model.GateOutcome {
	if f.IsDomestic(ch, id) {
		return model.Pass()
	}
	detail := "non-domestic signals in identity"
	if ch.Country != nil {
		detail = "channel country " + *ch.Country
	}
	return model.Fail(model.ReasonNonDomestic, detail)
}

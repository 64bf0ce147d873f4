package registry

import (
	"regexp"
	"sort"
	"strings"
)

var stateMap = map[string]string{
	"ALABAMA":              "AL",
	"ALASKA":               "AK",
	"ARIZONA":              "AZ",
	"ARKANSAS":             "AR",
	"CALIFORNIA":           "CA",
	"COLORADO":             "CO",
	"CONNECTICUT":          "CT",
	"DELAWARE":             "DE",
	"FLORIDA":              "FL",
	"GEORGIA":              "GA",
	"HAWAII":               "HI",
	"IDAHO":                "ID",
	"ILLINOIS":             "IL",
	"INDIANA":              "IN",
	"IOWA":                 "IA",
	"KANSAS":               "KS",
	"KENTUCKY":             "KY",
	"LOUISIANA":            "LA",
	"MAINE":                "ME",
	"MARYLAND":             "MD",
	"MASSACHUSETTS":        "MA",
	"MICHIGAN":             "MI",
	"MINNESOTA":            "MN",
	"MISSISSIPPI":          "MS",
	"MISSOURI":             "MO",
	"MONTANA":              "MT",
	"NEBRASKA":             "NE",
	"NEVADA":               "NV",
	"NEW HAMPSHIRE":        "NH",
	"NEW JERSEY":           "NJ",
	"NEW MEXICO":           "NM",
	"NEW YORK":             "NY",
	"NORTH CAROLINA":       "NC",
	"NORTH DAKOTA":         "ND",
	"OHIO":                 "OH",
	"OKLAHOMA":             "OK",
	"OREGON":               "OR",
	"PENNSYLVANIA":         "PA",
	"RHODE ISLAND":         "RI",
	"SOUTH CAROLINA":       "SC",
	"SOUTH DAKOTA":         "SD",
	"TENNESSEE":            "TN",
	"TEXAS":                "TX",
	"UTAH":                 "UT",
	"VERMONT":              "VT",
	"VIRGINIA":             "VA",
	"WASHINGTON":           "WA",
	"WEST VIRGINIA":        "WV",
	"WISCONSIN":            "WI",
	"WYOMING":              "WY",
	"DISTRICT OF COLUMBIA": "DC",
}

var (
	stateCodes = func() map[string]bool {
		codes := make(map[string]bool, len(stateMap))
		for _, code := range stateMap {
			codes[code] = true
		}
		return codes
	}()

	// stateNamePatterns are ordered longest name first so "WEST VIRGINIA"
	// wins over "VIRGINIA".
	stateNamePatterns = func() []statePattern {
		names := make([]string, 0, len(stateMap))
		for name := range stateMap {
			names = append(names, name)
		}
		sort.Slice(names, func(i, j int) bool {
			if len(names[i]) != len(names[j]) {
				return len(names[i]) > len(names[j])
			}
			return names[i] < names[j]
		})
		out := make([]statePattern, len(names))
		for i, name := range names {
			out[i] = statePattern{
				re:   regexp.MustCompile(`\b` + regexp.QuoteMeta(name) + `\b`),
				code: stateMap[name],
			}
		}
		return out
	}()

	// "Austin, TX", "Austin TX", "Austin, TX 78701".
	countrySuffixRe = regexp.MustCompile(`[,\s]*\b(?:USA|U\.S\.A\.|UNITED STATES)\.?$`)

	regionSuffixRe = regexp.MustCompile(`(?:^|[,\s])\s*([A-Z]{2})(?:\s+\d{5}(?:-\d{4})?)?\.?$`)
)

type statePattern struct {
	re   *regexp.Regexp
	code string
}

// DeriveRegion extracts a 2-letter state code from free-text location.
// It tries an exact code, then a trailing code, then a full state name.
// Unresolvable input returns "".
func DeriveRegion(location string) string {
	s := strings.ToUpper(strings.TrimSpace(location))
	if s == "" {
		return ""
	}
	s = countrySuffixRe.ReplaceAllString(s, "")
	if len(s) == 2 && stateCodes[s] {
		return s
	}
	if m := regionSuffixRe.FindStringSubmatch(s); m != nil && stateCodes[m[1]] {
		return m[1]
	}
	for _, p := range stateNamePatterns {
		if p.re.MatchString(s) {
			return p.code
		}
	}
	return ""
}

// Package profilematch picks the web search result that most plausibly
// belongs to a named physician.
package profilematch

import (
	"regexp"
	"sort"
	"strings"

	"github.com/sells-group/derm-scout/internal/textnorm"
)

// MinScore is the acceptance threshold.
const MinScore = 50

var credentialKeywords = []string{" md", "m.d.", " do", "d.o.", "doctor", " dr ", "dr."}

// Context identifies the person a profile should belong to.
type Context struct {
	GivenName   string
	FamilyName  string
	Credentials string
	City        string
	// Region is a 2-letter code or a full region name.
	Region string
}

// Result is a search hit to score.
type Result struct {
	URL   string
	Title string
}

// Scored is a scored search hit.
type Scored struct {
	Result
	Score     int
	Breakdown string
}

// Scorer scores profile search results.
type Scorer struct {
	keywords []string
}

// NewScorer creates a Scorer. keywords are the specialty terms looked for
// in result titles.
func NewScorer(keywords []string) *Scorer {
	if len(keywords) == 0 {
		keywords = []string{"dermatolog", "derm ", "skin", "mohs"}
	}
	lower := make([]string, len(keywords))
	for i, k := range keywords {
		lower[i] = strings.ToLower(k)
	}
	return &Scorer{keywords: lower}
}

// Score rates one result. Results whose URL lacks marker, or whose URL and
// title do not mention the family name, score zero.
func (s *Scorer) Score(r Result, ctx Context, marker string) Scored {
	out := Scored{Result: r}

	url := textnorm.Fold(r.URL)
	title := textnorm.Fold(r.Title)
	text := url + " " + title

	if !strings.Contains(url, strings.ToLower(marker)) {
		out.Breakdown = "wrong URL type"
		return out
	}
	family := textnorm.Fold(ctx.FamilyName)
	if family == "" {
		out.Breakdown = "no family name provided"
		return out
	}
	if !strings.Contains(text, family) {
		out.Breakdown = "no family name match"
		return out
	}

	var parts []string
	add := func(points int, label string) {
		out.Score += points
		parts = append(parts, label)
	}
	add(30, "family:30")

	givenSignal := false
	if given := textnorm.Fold(ctx.GivenName); given != "" {
		if strings.Contains(text, given) {
			add(30, "given:30")
			givenSignal = true
		} else {
			initial := string([]rune(given)[0])
			slug := urlSlug(url)
			if strings.HasPrefix(slug, initial) || strings.Contains(slug, "-"+initial) {
				add(15, "initial:15")
				givenSignal = true
			}
		}
	}

	for _, kw := range s.keywords {
		if strings.Contains(title, kw) {
			add(20, "specialty:20")
			break
		}
	}

	if city := textnorm.Fold(ctx.City); len(city) >= 3 && strings.Contains(title, city) {
		add(15, "city:15")
	}

	if region := textnorm.Fold(ctx.Region); regionInTitle(region, title) {
		add(10, "region:10")
	}

	for _, cred := range credentialKeywords {
		if strings.Contains(title, cred) {
			add(5, "credential:5")
			break
		}
	}

	if !givenSignal && IsCommonSurname(family) {
		out.Score = 0
		out.Breakdown = "common surname without given-name signal"
		return out
	}

	out.Breakdown = strings.Join(parts, " + ")
	return out
}

// Best returns the highest-scoring accepted result, ties going to the
// earlier result. Without a family name in ctx, the first result carrying
// marker is accepted unscored. The returned URL has its query string and
// fragment removed.
func (s *Scorer) Best(results []Result, ctx Context, marker string) (Scored, bool) {
	if strings.TrimSpace(ctx.FamilyName) == "" {
		for _, r := range results {
			if strings.Contains(strings.ToLower(r.URL), strings.ToLower(marker)) {
				r.URL = CleanURL(r.URL)
				return Scored{Result: r, Breakdown: "no-context-fallback"}, true
			}
		}
		return Scored{}, false
	}

	var accepted []Scored
	for _, r := range results {
		if sc := s.Score(r, ctx, marker); sc.Score >= MinScore {
			accepted = append(accepted, sc)
		}
	}
	if len(accepted) == 0 {
		return Scored{}, false
	}

	sort.SliceStable(accepted, func(i, j int) bool {
		return accepted[i].Score > accepted[j].Score
	})
	best := accepted[0]
	best.URL = CleanURL(best.URL)
	return best, true
}

// CleanURL strips the query string and fragment.
func CleanURL(u string) string {
	if i := strings.IndexAny(u, "?#"); i >= 0 {
		return u[:i]
	}
	return u
}

func urlSlug(u string) string {
	u = strings.TrimRight(CleanURL(u), "/")
	if i := strings.LastIndex(u, "/"); i >= 0 {
		return u[i+1:]
	}
	return u
}

func regionInTitle(region, title string) bool {
	switch {
	case len(region) == 2:
		return wordRe(region).MatchString(title)
	case len(region) >= 3:
		return strings.Contains(title, region)
	default:
		return false
	}
}

func wordRe(word string) *regexp.Regexp {
	return regexp.MustCompile(`\b` + regexp.QuoteMeta(word) + `\b`)
}

package provider

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/derm-scout/internal/cost"
	"github.com/sells-group/derm-scout/internal/model"
	"github.com/sells-group/derm-scout/internal/profilematch"
	"github.com/sells-group/derm-scout/internal/resilience"
	"github.com/sells-group/derm-scout/pkg/exa"
)

// URL markers of the two profile networks.
const (
	ProfessionalMarker = "linkedin.com/in/"
	AlternateMarker    = "doximity.com"
)

// aggregatorDomains are directory and social sites that are never a
// practice's own page.
var aggregatorDomains = []string{
	"healthgrades.com", "zocdoc.com", "vitals.com", "webmd.com",
	"yelp.com", "realself.com", "ratemds.com", "castleconnolly.com",
	"npidb.org", "npino.com", "opencorporates.com", "bbb.org",
	"healthcarepricetool.com", "aamc.org", "sharecare.com",
	"google.com", "bing.com", "facebook.com", "twitter.com",
	"instagram.com", "tiktok.com", "linkedin.com", "doximity.com",
	"youtube.com", "youtu.be", "reddit.com", "wikipedia.org",
}

var (
	pageEmailRe = regexp.MustCompile(`(?i)[\w.+-]+@[\w-]+\.[a-z]{2,}`)
	// At least one separator, so bare 10-digit registry numbers do not match.
	pagePhoneRe = regexp.MustCompile(`(?:\+?1[-.\s])?\(\d{3}\)[-.\s]?\d{3}[-.\s]?\d{4}|\d{3}[-.\s]\d{3}[-.\s]\d{4}`)
)

// WebSearchOptions configures the web search step.
type WebSearchOptions struct {
	// Title is the practitioner title used in profile queries,
	// e.g. "dermatologist".
	Title string
	// Field is the specialty field used in practice queries,
	// e.g. "dermatology".
	Field      string
	NumResults int
}

// WebSearch runs three independent searches (professional profile,
// alternate profile and practice page) and picks the matching results.
type WebSearch struct {
	client exa.Client
	scorer *profilematch.Scorer
	calc   *cost.Calculator
	opts   WebSearchOptions
}

// NewWebSearch creates the web search step.
func NewWebSearch(client exa.Client, scorer *profilematch.Scorer, calc *cost.Calculator, opts WebSearchOptions) *WebSearch {
	if opts.Title == "" {
		opts.Title = "dermatologist"
	}
	if opts.Field == "" {
		opts.Field = "dermatology"
	}
	if opts.NumResults <= 0 {
		opts.NumResults = 5
	}
	return &WebSearch{client: client, scorer: scorer, calc: calc, opts: opts}
}

// Name implements Step.
func (w *WebSearch) Name() string { return "web_search" }

// Applies implements Step.
func (w *WebSearch) Applies(*model.ContactRecord, Subject) bool { return true }

// Attempt implements Step. The three searches run concurrently and are
// joined before any result is inspected.
func (w *WebSearch) Attempt(ctx context.Context, _ model.ContactRecord, s Subject) (Partial, error) {
	var (
		professional, alternate, practice []exa.Result
		g                                 errgroup.Group
	)
	g.Go(func() (err error) {
		professional, err = w.search(ctx, "professional", w.professionalRequest(s))
		return err
	})
	g.Go(func() (err error) {
		alternate, err = w.search(ctx, "alternate", w.alternateRequest(s))
		return err
	})
	g.Go(func() (err error) {
		practice, err = w.search(ctx, "practice", w.practiceRequest(s))
		return err
	})
	if err := g.Wait(); err != nil {
		return Partial{}, err
	}

	p := Partial{
		Checked: []model.ContactSource{model.SourceProfessionalURL, model.SourceAlternateURL, model.SourcePractice},
		Cost:    model.CostBreakdown{WebSearch: w.calc.ExaSearch(3, len(practice))},
	}

	w.pickProfile(&p, "LinkedIn", professional, s.MatchContext, ProfessionalMarker, model.FieldProfessionalURL, model.SourceProfessionalURL)
	w.pickProfile(&p, "Doximity", alternate, s.MatchContext, AlternateMarker, model.FieldAlternateURL, model.SourceAlternateURL)

	site, email, phone := scanPracticePages(practice)
	if site != "" {
		p.Values = append(p.Values, Value{model.FieldWebsite, site, model.SourcePractice})
	}
	if email != "" {
		p.Values = append(p.Values, Value{model.FieldEmail, email, model.SourcePractice})
	}
	if phone != "" {
		p.Values = append(p.Values, Value{model.FieldPhone, phone, model.SourcePractice})
	}
	p.Log = append(p.Log, fmt.Sprintf("Exa practice: %d results (website=%t email=%t phone=%t)",
		len(practice), site != "", email != "", phone != ""))

	return p, nil
}

func (w *WebSearch) pickProfile(p *Partial, label string, results []exa.Result, ctx profilematch.Context, marker string, field model.ContactField, src model.ContactSource) {
	candidates := make([]profilematch.Result, len(results))
	for i, r := range results {
		candidates[i] = profilematch.Result{URL: r.URL, Title: r.Title}
	}

	best, ok := w.scorer.Best(candidates, ctx, marker)
	if !ok {
		p.Log = append(p.Log, fmt.Sprintf("Exa %s: no match (%d results, none scored >= %d)", label, len(results), profilematch.MinScore))
		return
	}
	p.Values = append(p.Values, Value{field, best.URL, src})
	p.Log = append(p.Log, fmt.Sprintf("Exa %s: score=%d [%s] (%s)", label, best.Score, best.Breakdown, best.URL))
}

// search degrades every failure except configuration faults to no results.
func (w *WebSearch) search(ctx context.Context, kind string, req exa.SearchRequest) ([]exa.Result, error) {
	resp, err := w.client.Search(ctx, req)
	if err != nil {
		if resilience.IsConfigFault(err) {
			return nil, err
		}
		zap.L().Warn("waterfall: web search failed",
			zap.String("kind", kind),
			zap.String("query", req.Query),
			zap.Error(err),
		)
		return nil, nil
	}
	return resp.Results, nil
}

func (w *WebSearch) professionalRequest(s Subject) exa.SearchRequest {
	q := s.DisplayName + " " + w.opts.Title
	mc := s.MatchContext
	if profilematch.IsCommonSurname(mc.FamilyName) && (mc.City != "" || mc.Region != "") {
		q = strings.TrimSpace(q + " " + strings.TrimSpace(mc.City+" "+mc.Region))
	} else if loc := s.Identity.Location; loc != "" {
		q += " " + loc
	}
	return exa.SearchRequest{
		Query:          q,
		NumResults:     w.opts.NumResults,
		UseAutoprompt:  true,
		Type:           "neural",
		Category:       "people",
		IncludeDomains: []string{"linkedin.com"},
	}
}

func (w *WebSearch) alternateRequest(s Subject) exa.SearchRequest {
	return exa.SearchRequest{
		Query:          nameWithCredentials(s) + " " + w.opts.Title,
		NumResults:     w.opts.NumResults,
		UseAutoprompt:  true,
		Type:           "auto",
		IncludeDomains: []string{"doximity.com"},
	}
}

func (w *WebSearch) practiceRequest(s Subject) exa.SearchRequest {
	q := nameWithCredentials(s) + " " + w.opts.Field + " practice contact"
	if loc := s.Identity.Location; loc != "" {
		q += " " + loc
	}
	return exa.SearchRequest{
		Query:          q,
		NumResults:     w.opts.NumResults,
		UseAutoprompt:  true,
		Type:           "auto",
		ExcludeDomains: aggregatorDomains,
		Contents: &exa.Contents{
			Text: &exa.TextOptions{MaxCharacters: 1000},
			Highlights: &exa.HighlightsOptions{
				Query:         "email address phone number contact office",
				MaxCharacters: 300,
			},
		},
	}
}

func nameWithCredentials(s Subject) string {
	if s.Identity.Credentials == "" {
		return s.DisplayName
	}
	return s.DisplayName + " " + s.Identity.Credentials
}

// scanPracticePages returns the first non-aggregator URL and the first
// usable email and phone found in page text and highlights.
func scanPracticePages(results []exa.Result) (site, email, phone string) {
	for _, r := range results {
		if site == "" && r.URL != "" && !isAggregator(r.URL) {
			site = r.URL
		}

		text := strings.TrimSpace(r.Text + " " + strings.Join(r.Highlights, " "))
		if text == "" {
			continue
		}
		if email == "" {
			if m := pageEmailRe.FindString(text); m != "" && usableEmail(m) {
				email = strings.ToLower(m)
			}
		}
		if phone == "" {
			phone = pagePhoneRe.FindString(text)
		}
	}
	return site, email, phone
}

func isAggregator(u string) bool {
	lower := strings.ToLower(u)
	for _, d := range aggregatorDomains {
		if strings.Contains(lower, d) {
			return true
		}
	}
	return false
}

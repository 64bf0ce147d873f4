package provider

import (
	"context"
	"net/url"
	"regexp"
	"strings"

	"github.com/sells-group/derm-scout/internal/model"
)

var (
	descEmailRe     = regexp.MustCompile(`[\w.+-]+@[\w-]+\.[\w.-]+`)
	descPhoneRe     = regexp.MustCompile(`(?:\+?1[-.\s]?)?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`)
	descLinkedInRe  = regexp.MustCompile(`(?i)(?:https?://)?(?:www\.)?linkedin\.com/in/[\w-]+`)
	descInstagramRe = regexp.MustCompile(`(?i)(?:^|[^\w.@])@([\w.]+)|instagram\.com/([\w.]+)`)
	descWebsiteRe   = regexp.MustCompile(`(?i)(?:https?://)?(?:www\.)?[\w-]+\.(?:com|org|net|io|co|health|clinic|med|doctor)(?:/[\w-]*)*`)
	nonDigitRe      = regexp.MustCompile(`[^\d+]`)
)

// nonPracticeDomains never count as a practice website.
var nonPracticeDomains = []string{
	"youtube.com", "youtu.be", "facebook.com", "twitter.com",
	"instagram.com", "tiktok.com", "linkedin.com", "doximity.com",
	"gmail.com", "yahoo.com", "hotmail.com", "outlook.com",
	"patreon.com", "linktr.ee",
}

// Description extracts contact details from the channel description. It is
// free and always applies.
type Description struct{}

// NewDescription creates the description extractor step.
func NewDescription() *Description { return &Description{} }

// Name implements Step.
func (d *Description) Name() string { return "description" }

// Applies implements Step.
func (d *Description) Applies(*model.ContactRecord, Subject) bool { return true }

// Attempt implements Step.
func (d *Description) Attempt(_ context.Context, _ model.ContactRecord, s Subject) (Partial, error) {
	p := Partial{Checked: []model.ContactSource{model.SourceDescription}}
	text := s.Description
	src := model.SourceDescription

	for _, e := range descEmailRe.FindAllString(text, -1) {
		e = strings.TrimRight(e, ".-")
		if usableEmail(e) {
			p.Values = append(p.Values, Value{model.FieldEmail, e, src})
			break
		}
	}

	if m := descPhoneRe.FindString(text); m != "" {
		p.Values = append(p.Values, Value{model.FieldPhone, nonDigitRe.ReplaceAllString(m, ""), src})
	}

	if m := descLinkedInRe.FindString(text); m != "" {
		p.Values = append(p.Values, Value{model.FieldProfessionalURL, withScheme(m), src})
	}

	if m := descInstagramRe.FindStringSubmatch(text); m != nil {
		handle := m[1]
		if handle == "" {
			handle = m[2]
		}
		p.SocialHandle = strings.TrimRight(handle, ".")
	}

	for _, w := range descWebsiteRe.FindAllString(text, -1) {
		if isNonPractice(w) {
			continue
		}
		site := withScheme(w)
		p.Values = append(p.Values, Value{model.FieldWebsite, site, src})
		break
	}

	return p, nil
}

// usableEmail rejects image file names, placeholder and no-reply addresses,
// and matches whose domain lost its dot to trimming.
func usableEmail(e string) bool {
	lower := strings.ToLower(e)
	_, domain, _ := strings.Cut(lower, "@")
	return strings.Contains(domain, ".") &&
		!strings.HasSuffix(lower, ".png") &&
		!strings.HasSuffix(lower, ".jpg") &&
		!strings.HasSuffix(lower, ".gif") &&
		!strings.Contains(lower, "example") &&
		!strings.Contains(lower, "noreply") &&
		!strings.Contains(lower, "no-reply")
}

func isNonPractice(u string) bool {
	lower := strings.ToLower(u)
	for _, d := range nonPracticeDomains {
		if strings.Contains(lower, d) {
			return true
		}
	}
	return false
}

func withScheme(u string) string {
	if strings.HasPrefix(strings.ToLower(u), "http") {
		return u
	}
	return "https://" + u
}

// Domain returns the host of u without a leading "www.", or "" when u does
// not parse.
func Domain(u string) string {
	parsed, err := url.Parse(withScheme(strings.TrimSpace(u)))
	if err != nil || parsed.Hostname() == "" {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(parsed.Hostname()), "www.")
}

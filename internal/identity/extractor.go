// Package identity resolves the real-world physician behind a channel by
// asking a language model for a structured identity.
package identity

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/derm-scout/internal/cost"
	"github.com/sells-group/derm-scout/internal/model"
	"github.com/sells-group/derm-scout/internal/resilience"
	"github.com/sells-group/derm-scout/pkg/anthropic"
)

// Options configures the extractor.
type Options struct {
	Model            string
	MaxTokens        int64
	Temperature      float64
	DescriptionChars int
	// Specialty is the practitioner title the model should confirm,
	// e.g. "dermatologist".
	Specialty       string
	DomesticCountry string
	Retry           resilience.RetryConfig
}

// Result is the outcome of one extraction. Identity is nil when the model
// call failed or its output could not be parsed.
type Result struct {
	Identity *model.Identity
	Cost     float64
}

// Extractor calls the model once per candidate.
type Extractor struct {
	client anthropic.Client
	calc   *cost.Calculator
	opts   Options
}

// NewExtractor creates an Extractor.
func NewExtractor(client anthropic.Client, calc *cost.Calculator, opts Options) *Extractor {
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 1024
	}
	if opts.DescriptionChars <= 0 {
		opts.DescriptionChars = 800
	}
	if opts.Specialty == "" {
		opts.Specialty = "dermatologist"
	}
	if opts.DomesticCountry == "" {
		opts.DomesticCountry = "US"
	}
	return &Extractor{client: client, calc: calc, opts: opts}
}

// Extract resolves the identity behind a candidate. Only configuration
// faults are returned as errors; every other failure yields a nil identity.
// Retries on rate limits and server errors happen inside the model call.
func (e *Extractor) Extract(ctx context.Context, c model.Candidate) (Result, error) {
	log := zap.L().With(zap.String("channel_id", c.Channel.ID))

	temp := e.opts.Temperature
	req := anthropic.MessageRequest{
		Model:       e.opts.Model,
		MaxTokens:   e.opts.MaxTokens,
		System:      systemPrompt(e.opts.Specialty),
		Messages:    []anthropic.Message{{Role: "user", Content: userPrompt(c, e.opts.DescriptionChars)}},
		Temperature: &temp,
	}

	retry := e.opts.Retry
	retry.ShouldRetry = shouldRetry
	if retry.OnRetry == nil {
		retry.OnRetry = resilience.RetryLogger("anthropic", "identity")
	}

	resp, err := resilience.DoVal(ctx, retry, func(ctx context.Context) (*anthropic.MessageResponse, error) {
		return e.client.CreateMessage(ctx, req)
	})
	if err != nil {
		if resilience.IsConfigFault(err) {
			return Result{}, err
		}
		log.Warn("identity: model call failed", zap.Error(err))
		return Result{}, nil
	}

	res := Result{Cost: e.calc.Claude(e.opts.Model, resp.Usage.InputTokens, resp.Usage.OutputTokens)}

	id, err := parseIdentity(resp.Text())
	if err != nil {
		log.Warn("identity: malformed extraction", zap.Error(err))
		return res, nil
	}
	if id.CountryCode != "" && !strings.EqualFold(id.CountryCode, e.opts.DomesticCountry) {
		id.Reasoning = "[Country: " + id.CountryCode + "] " + id.Reasoning
	}

	log.Debug("identity: extracted",
		zap.String("name", id.FullName()),
		zap.Bool("physician", id.IsProfessional),
		zap.Bool("specialist", id.IsSpecialist),
		zap.String("confidence", string(id.Confidence)),
	)
	res.Identity = id
	return res, nil
}

func shouldRetry(err error) bool {
	return resilience.IsTransient(err) || resilience.IsTransientHTTPStatus(anthropic.StatusCode(err))
}

// parseIdentity validates and coerces the model's JSON payload.
func parseIdentity(text string) (*model.Identity, error) {
	payload, ok := ExtractJSON(text)
	if !ok {
		return nil, eris.New("identity: no json object in response")
	}

	var decoded any
	if err := json.Unmarshal([]byte(payload), &decoded); err != nil {
		return nil, eris.Wrap(err, "identity: decode json")
	}

	// Some responses wrap the object in a single-element array.
	if arr, isArr := decoded.([]any); isArr {
		if len(arr) == 0 {
			return nil, eris.New("identity: empty json array")
		}
		decoded = arr[0]
	}
	obj, isObj := decoded.(map[string]any)
	if !isObj {
		return nil, eris.New("identity: json payload is not an object")
	}

	id := &model.Identity{
		GivenName:      str(obj["given_name"]),
		FamilyName:     str(obj["family_name"]),
		DisplayName:    str(obj["display_name"]),
		Credentials:    str(obj["credentials"]),
		IsProfessional: flag(obj["is_physician"]),
		IsSpecialist:   flag(obj["is_specialist"]),
		BoardCertified: optionalFlag(obj["board_certified"]),
		Affiliation:    str(obj["hospital_affiliation"]),
		Location:       str(obj["location"]),
		CountryCode:    strings.ToUpper(str(obj["country_code"])),
		Confidence:     model.ParseConfidence(str(obj["confidence"])),
		Reasoning:      str(obj["reasoning"]),
	}
	if id.Reasoning == "" {
		id.Reasoning = "No reasoning provided"
	}
	return id, nil
}

// str returns v as a trimmed string. Non-strings and the literal "null"
// become empty.
func str(v any) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "null") {
		return ""
	}
	return s
}

func flag(v any) bool {
	b := optionalFlag(v)
	return b != nil && *b
}

// optionalFlag accepts JSON booleans and their string spellings.
func optionalFlag(v any) *bool {
	var b bool
	switch t := v.(type) {
	case bool:
		b = t
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true":
			b = true
		case "false":
			b = false
		default:
			return nil
		}
	default:
		return nil
	}
	return &b
}

package identity

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/derm-scout/internal/cost"
	"github.com/sells-group/derm-scout/internal/model"
	"github.com/sells-group/derm-scout/internal/resilience"
	"github.com/sells-group/derm-scout/pkg/anthropic"
)

const haiku = "claude-haiku-4-5-20251001"

type mockAnthropicClient struct {
	mock.Mock
}

func (m *mockAnthropicClient) CreateMessage(ctx context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*anthropic.MessageResponse), args.Error(1)
}

func textResponse(text string) *anthropic.MessageResponse {
	return &anthropic.MessageResponse{
		Content: []anthropic.ContentBlock{{Type: "text", Text: text}},
		Usage:   anthropic.TokenUsage{InputTokens: 1_000_000, OutputTokens: 100_000},
	}
}

func newTestExtractor(client anthropic.Client) *Extractor {
	return NewExtractor(client, cost.NewCalculator(cost.DefaultRates()), Options{
		Model: haiku,
		Retry: resilience.RetryConfig{MaxRetries: 2, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond},
	})
}

func testCandidate() model.Candidate {
	return model.Candidate{
		Channel: model.Channel{
			ID:          "UCderm",
			Title:       "Dr. Skin Talks",
			Description: strings.Repeat("d", 1200),
			Subscribers: 120000,
			Handle:      "@drskintalks",
		},
		RecentVideos: []model.Video{{ID: "v1", Title: "Retinol myths"}},
	}
}

func TestExtract_Success(t *testing.T) {
	client := &mockAnthropicClient{}
	client.On("CreateMessage", mock.Anything, mock.MatchedBy(func(req anthropic.MessageRequest) bool {
		content := req.Messages[0].Content
		return req.Model == haiku &&
			strings.Contains(req.System, "dermatologist") &&
			strings.Contains(content, "Handle: @drskintalks") &&
			strings.Contains(content, "- Retinol myths") &&
			strings.Contains(content, strings.Repeat("d", 800)+"\n") &&
			!strings.Contains(content, strings.Repeat("d", 801))
	})).Return(textResponse("Sure! Here it is:\n```json\n"+
		`{"given_name":"Sandra","family_name":"Lee","display_name":"Dr. Sandra Lee","credentials":"MD, FAAD",`+
		`"is_physician":true,"is_specialist":"true","board_certified":"false","location":"Upland, CA",`+
		`"country_code":"US","confidence":"HIGH","reasoning":"Known board certified dermatologist"}`+
		"\n```"), nil)

	res, err := newTestExtractor(client).Extract(context.Background(), testCandidate())
	require.NoError(t, err)
	require.NotNil(t, res.Identity)

	id := res.Identity
	assert.Equal(t, "Sandra", id.GivenName)
	assert.Equal(t, "Lee", id.FamilyName)
	assert.Equal(t, "MD, FAAD", id.Credentials)
	assert.True(t, id.IsProfessional)
	assert.True(t, id.IsSpecialist)
	require.NotNil(t, id.BoardCertified)
	assert.False(t, *id.BoardCertified)
	assert.Equal(t, model.ConfidenceHigh, id.Confidence)
	assert.Equal(t, "Known board certified dermatologist", id.Reasoning)
	// 1M input tokens at 0.80 plus 100k output tokens at 4.00.
	assert.InDelta(t, 1.20, res.Cost, 1e-9)
	client.AssertExpectations(t)
}

func TestExtract_ForeignCountryPrefixesReasoning(t *testing.T) {
	client := &mockAnthropicClient{}
	client.On("CreateMessage", mock.Anything, mock.Anything).Return(textResponse(
		`{"given_name":"Asha","family_name":"Rao","is_physician":true,"country_code":"in","confidence":"medium","reasoning":"Practices in Mumbai"}`), nil)

	res, err := newTestExtractor(client).Extract(context.Background(), testCandidate())
	require.NoError(t, err)
	require.NotNil(t, res.Identity)
	assert.Equal(t, "IN", res.Identity.CountryCode)
	assert.Equal(t, "[Country: IN] Practices in Mumbai", res.Identity.Reasoning)
	assert.Nil(t, res.Identity.BoardCertified)
}

func TestExtract_MalformedOutputIsNone(t *testing.T) {
	for _, text := range []string{"I cannot help with that.", "{\"given_name\": ", "[]", "\"just a string\""} {
		client := &mockAnthropicClient{}
		client.On("CreateMessage", mock.Anything, mock.Anything).Return(textResponse(text), nil)

		res, err := newTestExtractor(client).Extract(context.Background(), testCandidate())
		require.NoError(t, err, text)
		assert.Nil(t, res.Identity, text)
		assert.Greater(t, res.Cost, 0.0, "tokens were spent")
	}
}

func TestExtract_RetriesTransientStatus(t *testing.T) {
	client := &mockAnthropicClient{}
	transient := resilience.NewTransientError(eris.New("overloaded"), 529)
	client.On("CreateMessage", mock.Anything, mock.Anything).Return(nil, transient).Twice()
	client.On("CreateMessage", mock.Anything, mock.Anything).Return(textResponse(
		`{"given_name":"Ana","family_name":"Diaz","is_physician":true,"confidence":"low"}`), nil).Once()

	res, err := newTestExtractor(client).Extract(context.Background(), testCandidate())
	require.NoError(t, err)
	require.NotNil(t, res.Identity)
	assert.Equal(t, "No reasoning provided", res.Identity.Reasoning)
	client.AssertNumberOfCalls(t, "CreateMessage", 3)
}

func TestExtract_NonTransientFailureIsNone(t *testing.T) {
	client := &mockAnthropicClient{}
	client.On("CreateMessage", mock.Anything, mock.Anything).Return(nil, eris.New("bad request"))

	res, err := newTestExtractor(client).Extract(context.Background(), testCandidate())
	require.NoError(t, err)
	assert.Nil(t, res.Identity)
	assert.Zero(t, res.Cost)
	client.AssertNumberOfCalls(t, "CreateMessage", 1)
}

func TestExtract_ConfigFaultPropagates(t *testing.T) {
	client := &mockAnthropicClient{}
	client.On("CreateMessage", mock.Anything, mock.Anything).
		Return(nil, eris.Wrap(resilience.ErrMissingCredentials, "anthropic: api key"))

	_, err := newTestExtractor(client).Extract(context.Background(), testCandidate())
	require.Error(t, err)
	assert.True(t, resilience.IsConfigFault(err))
	client.AssertNumberOfCalls(t, "CreateMessage", 1)
}

func TestUserPrompt_HiddenReachAndDefaults(t *testing.T) {
	c := model.Candidate{Channel: model.Channel{Title: "Skin", Subscribers: model.HiddenReach}}
	p := userPrompt(c, 800)
	assert.Contains(t, p, "Subscriber Count: hidden")
	assert.Contains(t, p, "Handle: none")
	assert.Contains(t, p, "Channel Country: unknown")
	assert.Contains(t, p, "none available")
}

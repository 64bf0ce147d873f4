package pipeline

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/sells-group/derm-scout/internal/config"
	"github.com/sells-group/derm-scout/pkg/anthropic"
	"github.com/sells-group/derm-scout/pkg/exa"
	"github.com/sells-group/derm-scout/pkg/hunter"
	"github.com/sells-group/derm-scout/pkg/npi"
	"github.com/sells-group/derm-scout/pkg/snov"
	"github.com/sells-group/derm-scout/pkg/youtube"
)

const haiku = "claude-haiku-4-5-20251001"

var testNow = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

func testConfig() *config.Config {
	return &config.Config{
		YouTube:   config.YouTubeConfig{PageSize: 50, BatchSize: 50, RecentVideos: 5, RegionCode: "US"},
		Anthropic: config.AnthropicConfig{Model: haiku, MaxTokens: 1024},
		Exa:       config.ExaConfig{NumResults: 5},
		Pricing: config.PricingConfig{
			Anthropic: map[string]config.ModelPricing{haiku: {Input: 0.80, Output: 4.00}},
			Exa:       config.ExaPricing{PerSearch: 0.005, PerContent: 0.001},
			YouTube:   config.QuotaPricing{Search: 100, ChannelBatch: 1, VideoList: 1},
		},
		Gate:      config.GateConfig{MinReach: 5000, MaxInactiveDays: 90, DomesticCountry: "US"},
		Discovery: config.DiscoveryConfig{DefaultMaxQueries: 3},
		Specialty: config.SpecialtyConfig{Taxonomy: "Dermatology", Title: "dermatologist"},
		Pipeline:  config.PipelineConfig{TimeoutSecs: 300, ProgressEvery: 5, EventBufferSize: 16, DescriptionChars: 800},
	}
}

// fakeYouTube serves canned searches, channels and uploads.
type fakeYouTube struct {
	search    map[string][]string
	searchErr error
	channels  map[string]youtube.Channel
	videos    map[string][]youtube.Video
	panicOn   string
}

func (f *fakeYouTube) SearchChannelIDs(_ context.Context, req youtube.SearchRequest) ([]string, error) {
	if req.Query == f.panicOn {
		panic("search index out of range")
	}
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.search[req.Query], nil
}

func (f *fakeYouTube) Channels(_ context.Context, ids []string) ([]youtube.Channel, error) {
	var out []youtube.Channel
	for _, id := range ids {
		if ch, ok := f.channels[id]; ok {
			out = append(out, ch)
		}
	}
	return out, nil
}

func (f *fakeYouTube) RecentVideos(_ context.Context, playlistID string, _ int) ([]youtube.Video, error) {
	return f.videos[playlistID], nil
}

// fakeAnthropic answers with the JSON registered for the channel name in
// the prompt.
type fakeAnthropic struct {
	mu        sync.Mutex
	responses map[string]string
	calls     int
}

func (f *fakeAnthropic) CreateMessage(_ context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	text := "I could not determine this."
	for title, body := range f.responses {
		if strings.Contains(req.Messages[0].Content, "Channel Name: "+title+"\n") {
			text = body
		}
	}
	return &anthropic.MessageResponse{
		Content: []anthropic.ContentBlock{{Type: "text", Text: text}},
		Usage:   anthropic.TokenUsage{InputTokens: 1000, OutputTokens: 200},
	}, nil
}

// fakeNPI returns the providers registered for a last name.
type fakeNPI struct {
	byLastName map[string][]npi.Provider
	queries    []npi.Query
}

func (f *fakeNPI) Search(_ context.Context, q npi.Query) (*npi.SearchResult, error) {
	f.queries = append(f.queries, q)
	providers := f.byLastName[strings.ToUpper(q.LastName)]
	return &npi.SearchResult{ResultCount: len(providers), Providers: providers}, nil
}

// fakeExa returns results by include domain.
type fakeExa struct {
	mu       sync.Mutex
	byDomain map[string][]exa.Result
	calls    int
}

func (f *fakeExa) Search(_ context.Context, req exa.SearchRequest) (*exa.SearchResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	domain := ""
	if len(req.IncludeDomains) > 0 {
		domain = req.IncludeDomains[0]
	}
	return &exa.SearchResponse{Results: f.byDomain[domain]}, nil
}

type fakeHunter struct{ calls int }

func (f *fakeHunter) FindEmail(context.Context, string, string, string) (*hunter.Email, error) {
	f.calls++
	return nil, nil
}

type fakeSnov struct{ calls int }

func (f *fakeSnov) FindEmail(context.Context, string, string, string) (*snov.Email, error) {
	f.calls++
	return nil, nil
}

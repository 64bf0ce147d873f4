// Package youtube is a minimal YouTube Data API v3 client covering video
// search, channel details and uploads listing.
package youtube

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/derm-scout/internal/resilience"
)

const (
	defaultBaseURL = "https://www.googleapis.com/youtube/v3"

	// MaxPageSize is the largest maxResults the API accepts.
	MaxPageSize = 50
	// MaxBatchSize is the most channel ids accepted per channels.list call.
	MaxBatchSize = 50
)

// Client queries the YouTube Data API.
type Client interface {
	// SearchChannelIDs runs a video search and returns the unique ids of the
	// channels that uploaded the matching videos, in result order.
	SearchChannelIDs(ctx context.Context, req SearchRequest) ([]string, error)
	// Channels fetches details for up to MaxBatchSize channel ids. Records
	// that cannot be parsed are dropped.
	Channels(ctx context.Context, ids []string) ([]Channel, error)
	// RecentVideos lists the newest uploads of a playlist.
	RecentVideos(ctx context.Context, playlistID string, limit int) ([]Video, error)
}

// SearchRequest describes a video search.
type SearchRequest struct {
	Query             string
	MaxResults        int
	RegionCode        string
	RelevanceLanguage string
}

// Channel is a parsed channels.list item.
type Channel struct {
	ID                string
	Title             string
	Description       string
	ThumbnailURL      string
	Subscribers       int64
	SubscribersHidden bool
	VideoCount        int64
	ViewCount         int64
	Country           string
	CustomURL         string
	UploadsPlaylistID string
}

// Video is a parsed playlistItems.list item.
type Video struct {
	ID          string
	Title       string
	PublishedAt time.Time
}

// UploadsPlaylist returns the uploads playlist of a channel, deriving it
// from a "UC" channel id when the API did not report one.
func UploadsPlaylist(channelID, reported string) string {
	if reported != "" {
		return reported
	}
	if strings.HasPrefix(channelID, "UC") {
		return "UU" + channelID[2:]
	}
	return ""
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = u
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient creates a YouTube Data API client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type searchResponse struct {
	Items []struct {
		Snippet struct {
			ChannelID string `json:"channelId"`
		} `json:"snippet"`
	} `json:"items"`
}

func (c *httpClient) SearchChannelIDs(ctx context.Context, req SearchRequest) ([]string, error) {
	maxResults := req.MaxResults
	if maxResults <= 0 || maxResults > MaxPageSize {
		maxResults = MaxPageSize
	}

	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("q", req.Query)
	params.Set("type", "video")
	params.Set("maxResults", strconv.Itoa(maxResults))
	if req.RegionCode != "" {
		params.Set("regionCode", req.RegionCode)
	}
	if req.RelevanceLanguage != "" {
		params.Set("relevanceLanguage", req.RelevanceLanguage)
	}

	body, err := c.get(ctx, "/search", params)
	if err != nil {
		return nil, err
	}

	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, eris.Wrap(err, "youtube: unmarshal search response")
	}

	seen := make(map[string]bool, len(resp.Items))
	ids := make([]string, 0, len(resp.Items))
	for _, item := range resp.Items {
		id := item.Snippet.ChannelID
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids, nil
}

type channelItem struct {
	ID      string `json:"id"`
	Snippet *struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		CustomURL   string `json:"customUrl"`
		Country     string `json:"country"`
		Thumbnails  map[string]struct {
			URL string `json:"url"`
		} `json:"thumbnails"`
	} `json:"snippet"`
	Statistics *struct {
		SubscriberCount       string `json:"subscriberCount"`
		HiddenSubscriberCount bool   `json:"hiddenSubscriberCount"`
		VideoCount            string `json:"videoCount"`
		ViewCount             string `json:"viewCount"`
	} `json:"statistics"`
	ContentDetails *struct {
		RelatedPlaylists struct {
			Uploads string `json:"uploads"`
		} `json:"relatedPlaylists"`
	} `json:"contentDetails"`
}

func (c *httpClient) Channels(ctx context.Context, ids []string) ([]Channel, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	if len(ids) > MaxBatchSize {
		return nil, eris.Errorf("youtube: %d channel ids exceeds batch size %d", len(ids), MaxBatchSize)
	}

	params := url.Values{}
	params.Set("part", "snippet,statistics,contentDetails,brandingSettings")
	params.Set("id", strings.Join(ids, ","))

	body, err := c.get(ctx, "/channels", params)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Items []json.RawMessage `json:"items"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, eris.Wrap(err, "youtube: unmarshal channels response")
	}

	channels := make([]Channel, 0, len(resp.Items))
	for _, raw := range resp.Items {
		ch, err := parseChannel(raw)
		if err != nil {
			zap.L().Warn("youtube: dropping malformed channel record", zap.Error(err))
			continue
		}
		channels = append(channels, ch)
	}
	return channels, nil
}

func parseChannel(raw json.RawMessage) (Channel, error) {
	var item channelItem
	if err := json.Unmarshal(raw, &item); err != nil {
		return Channel{}, eris.Wrap(err, "youtube: unmarshal channel")
	}
	if item.ID == "" || item.Snippet == nil || item.Statistics == nil {
		return Channel{}, eris.Errorf("youtube: channel %q missing id, snippet or statistics", item.ID)
	}

	stats := item.Statistics
	ch := Channel{
		ID:                item.ID,
		Title:             item.Snippet.Title,
		Description:       item.Snippet.Description,
		Country:           item.Snippet.Country,
		CustomURL:         item.Snippet.CustomURL,
		SubscribersHidden: stats.HiddenSubscriberCount,
	}
	for _, size := range []string{"high", "medium", "default"} {
		if t, ok := item.Snippet.Thumbnails[size]; ok && t.URL != "" {
			ch.ThumbnailURL = t.URL
			break
		}
	}
	if item.ContentDetails != nil {
		ch.UploadsPlaylistID = item.ContentDetails.RelatedPlaylists.Uploads
	}

	var err error
	if !ch.SubscribersHidden {
		if ch.Subscribers, err = parseCount(stats.SubscriberCount); err != nil {
			return Channel{}, eris.Wrapf(err, "youtube: channel %s subscriber count", item.ID)
		}
	}
	if ch.VideoCount, err = parseCount(stats.VideoCount); err != nil {
		return Channel{}, eris.Wrapf(err, "youtube: channel %s video count", item.ID)
	}
	if ch.ViewCount, err = parseCount(stats.ViewCount); err != nil {
		return Channel{}, eris.Wrapf(err, "youtube: channel %s view count", item.ID)
	}
	return ch, nil
}

// parseCount parses the API's string-encoded counters. Absent counters are 0.
func parseCount(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseInt(s, 10, 64)
}

type playlistItemsResponse struct {
	Items []struct {
		Snippet *struct {
			Title       string `json:"title"`
			PublishedAt string `json:"publishedAt"`
			ResourceID  struct {
				VideoID string `json:"videoId"`
			} `json:"resourceId"`
		} `json:"snippet"`
	} `json:"items"`
}

func (c *httpClient) RecentVideos(ctx context.Context, playlistID string, limit int) ([]Video, error) {
	if playlistID == "" {
		return nil, nil
	}
	if limit <= 0 || limit > MaxPageSize {
		limit = MaxPageSize
	}

	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("playlistId", playlistID)
	params.Set("maxResults", strconv.Itoa(limit))

	body, err := c.get(ctx, "/playlistItems", params)
	if err != nil {
		return nil, err
	}

	var resp playlistItemsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, eris.Wrap(err, "youtube: unmarshal playlist items")
	}

	videos := make([]Video, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.Snippet == nil {
			continue
		}
		v := Video{ID: item.Snippet.ResourceID.VideoID, Title: item.Snippet.Title}
		// Unparseable timestamps leave PublishedAt zero so the video does
		// not count as activity.
		if ts, err := time.Parse(time.RFC3339, item.Snippet.PublishedAt); err == nil {
			v.PublishedAt = ts
		}
		videos = append(videos, v)
	}
	return videos, nil
}

func (c *httpClient) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	if c.apiKey == "" {
		return nil, eris.Wrap(resilience.ErrMissingCredentials, "youtube: api key")
	}
	params.Set("key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "youtube: create request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "youtube: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "youtube: read response")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("youtube: unexpected status %d: %s", resp.StatusCode, string(body))
	}
	return body, nil
}

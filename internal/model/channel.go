package model

import "time"

// HiddenReach is the subscriber count recorded for channels that hide it.
const HiddenReach int64 = -1

// Channel is a video-platform channel as returned by the detail endpoint.
type Channel struct {
	ID                string  `json:"id"`
	Title             string  `json:"title"`
	Description       string  `json:"description"`
	ThumbnailURL      string  `json:"thumbnail_url,omitempty"`
	Subscribers       int64   `json:"subscribers"`
	VideoCount        int64   `json:"video_count"`
	ViewCount         int64   `json:"view_count"`
	Country           *string `json:"country,omitempty"`
	Handle            string  `json:"handle,omitempty"`
	UploadsPlaylistID string  `json:"uploads_playlist_id,omitempty"`
	DiscoveryQuery    string  `json:"discovery_query"`
}

// ReachHidden reports whether the channel hides its subscriber count.
func (c Channel) ReachHidden() bool {
	return c.Subscribers == HiddenReach
}

// Video is a recent upload.
type Video struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	PublishedAt time.Time `json:"published_at"`
}

// Candidate is a discovered channel with its recent uploads.
type Candidate struct {
	Channel      Channel    `json:"channel"`
	RecentVideos []Video    `json:"recent_videos"`
	LastActivity *time.Time `json:"last_activity,omitempty"`
}

// NewCandidate builds a Candidate and derives its most recent activity from
// the videos. Videos with a zero publish time are ignored.
func NewCandidate(ch Channel, videos []Video) Candidate {
	c := Candidate{Channel: ch, RecentVideos: videos}
	for _, v := range videos {
		if v.PublishedAt.IsZero() {
			continue
		}
		if c.LastActivity == nil || v.PublishedAt.After(*c.LastActivity) {
			ts := v.PublishedAt
			c.LastActivity = &ts
		}
	}
	return c
}

// VideoTitles returns up to n recent video titles.
func (c Candidate) VideoTitles(n int) []string {
	out := make([]string, 0, n)
	for _, v := range c.RecentVideos {
		if len(out) == n {
			break
		}
		out = append(out, v.Title)
	}
	return out
}

// GateReason is a fixed reason code attached to a dropped candidate.
type GateReason string

const (
	ReasonLowReach         GateReason = "low_reach"
	ReasonInactive         GateReason = "inactive"
	ReasonNoUploads        GateReason = "no_uploads"
	ReasonExtractionFailed GateReason = "extraction_failed"
	ReasonNotProfessional  GateReason = "not_professional"
	ReasonNonDomestic      GateReason = "non_domestic"
)

// GateOutcome is the result of an admission check.
type GateOutcome struct {
	Passed bool       `json:"passed"`
	Reason GateReason `json:"reason,omitempty"`
	Detail string     `json:"detail,omitempty"`
}

// Pass is the passing outcome.
func Pass() GateOutcome { return GateOutcome{Passed: true} }

// Fail builds a failing outcome.
func Fail(reason GateReason, detail string) GateOutcome {
	return GateOutcome{Reason: reason, Detail: detail}
}

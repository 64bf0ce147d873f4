package discovery

import (
	"context"
	"errors"
	"time"

	"github.com/sells-group/derm-scout/pkg/youtube"
)

// fakeYouTube implements youtube.Client for testing.
type fakeYouTube struct {
	search      map[string][]string
	searchErr   map[string]error
	channels    map[string]youtube.Channel
	channelsErr error
	videos      map[string][]youtube.Video
	videosErr   error

	searchCalls  []string
	channelCalls [][]string
	videoCalls   []string
}

func (f *fakeYouTube) SearchChannelIDs(_ context.Context, req youtube.SearchRequest) ([]string, error) {
	f.searchCalls = append(f.searchCalls, req.Query)
	if err := f.searchErr[req.Query]; err != nil {
		return nil, err
	}
	return f.search[req.Query], nil
}

func (f *fakeYouTube) Channels(_ context.Context, ids []string) ([]youtube.Channel, error) {
	f.channelCalls = append(f.channelCalls, append([]string(nil), ids...))
	if f.channelsErr != nil {
		return nil, f.channelsErr
	}
	var out []youtube.Channel
	// Reverse order to prove the collector restores discovery order.
	for i := len(ids) - 1; i >= 0; i-- {
		if ch, ok := f.channels[ids[i]]; ok {
			out = append(out, ch)
		}
	}
	return out, nil
}

func (f *fakeYouTube) RecentVideos(_ context.Context, playlistID string, _ int) ([]youtube.Video, error) {
	f.videoCalls = append(f.videoCalls, playlistID)
	if f.videosErr != nil {
		return nil, f.videosErr
	}
	return f.videos[playlistID], nil
}

var errProvider = errors.New("provider unavailable")

func ytChannel(id string, subs int64) youtube.Channel {
	return youtube.Channel{ID: id, Title: "Channel " + id, Subscribers: subs}
}

func ytVideo(id string, at time.Time) youtube.Video {
	return youtube.Video{ID: id, Title: "Video " + id, PublishedAt: at}
}

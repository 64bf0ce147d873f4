// Package discovery finds candidate channels by running search queries and
// collecting channel details and recent uploads.
package discovery

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/derm-scout/internal/cost"
	"github.com/sells-group/derm-scout/internal/model"
	"github.com/sells-group/derm-scout/internal/resilience"
	"github.com/sells-group/derm-scout/pkg/youtube"
)

// Options tunes the collector's calls to the search provider.
type Options struct {
	PageSize          int
	BatchSize         int
	RecentVideos      int
	RegionCode        string
	RelevanceLanguage string
}

// Result is the outcome of a collection pass.
type Result struct {
	// Candidates are ordered by first discovery.
	Candidates []model.Candidate
	QuotaUnits int
	// Searched counts query results per query, before de-duplication.
	Searched map[string]int
}

// Collector turns search queries into de-duplicated candidates.
type Collector struct {
	yt   youtube.Client
	calc *cost.Calculator
	opts Options
}

// NewCollector creates a Collector.
func NewCollector(yt youtube.Client, calc *cost.Calculator, opts Options) *Collector {
	if opts.PageSize <= 0 || opts.PageSize > youtube.MaxPageSize {
		opts.PageSize = youtube.MaxPageSize
	}
	if opts.BatchSize <= 0 || opts.BatchSize > youtube.MaxBatchSize {
		opts.BatchSize = youtube.MaxBatchSize
	}
	if opts.RecentVideos <= 0 {
		opts.RecentVideos = 5
	}
	return &Collector{yt: yt, calc: calc, opts: opts}
}

// Collect runs every query in order, unions the discovered channel ids
// (an id keeps the query that found it first), fetches channel details in
// batches and lists recent uploads one channel at a time.
//
// Provider failures skip the affected query, batch or listing. Only
// configuration faults and context cancellation are returned as errors.
func (c *Collector) Collect(ctx context.Context, queries []string) (*Result, error) {
	res := &Result{Searched: make(map[string]int, len(queries))}

	var order []string
	attribution := make(map[string]string)

	for _, q := range queries {
		if err := ctx.Err(); err != nil {
			return nil, eris.Wrap(err, "discovery: collect")
		}

		ids, err := c.yt.SearchChannelIDs(ctx, youtube.SearchRequest{
			Query:             q,
			MaxResults:        c.opts.PageSize,
			RegionCode:        c.opts.RegionCode,
			RelevanceLanguage: c.opts.RelevanceLanguage,
		})
		if resilience.IsConfigFault(err) {
			return nil, err
		}
		res.QuotaUnits += c.calc.SearchQuota()
		if err != nil {
			zap.L().Warn("discovery: search failed, skipping query", zap.String("query", q), zap.Error(err))
			continue
		}

		res.Searched[q] = len(ids)
		for _, id := range ids {
			if _, seen := attribution[id]; seen {
				continue
			}
			attribution[id] = q
			order = append(order, id)
		}
	}

	details := make(map[string]youtube.Channel, len(order))
	for start := 0; start < len(order); start += c.opts.BatchSize {
		end := min(start+c.opts.BatchSize, len(order))

		channels, err := c.yt.Channels(ctx, order[start:end])
		if resilience.IsConfigFault(err) {
			return nil, err
		}
		res.QuotaUnits += c.calc.ChannelBatchQuota()
		if err != nil {
			zap.L().Warn("discovery: channel batch failed, skipping",
				zap.Int("batch_start", start),
				zap.Int("batch_size", end-start),
				zap.Error(err),
			)
			continue
		}
		for _, ch := range channels {
			details[ch.ID] = ch
		}
	}

	for _, id := range order {
		ch, ok := details[id]
		if !ok {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, eris.Wrap(err, "discovery: collect")
		}

		channel := toModel(ch, attribution[id])
		videos, quota, err := c.recentVideos(ctx, channel)
		if err != nil {
			return nil, err
		}
		res.QuotaUnits += quota
		res.Candidates = append(res.Candidates, model.NewCandidate(channel, videos))
	}

	zap.L().Info("discovery: collection complete",
		zap.Int("queries", len(queries)),
		zap.Int("unique_ids", len(order)),
		zap.Int("candidates", len(res.Candidates)),
		zap.Int("quota_units", res.QuotaUnits),
	)
	return res, nil
}

func (c *Collector) recentVideos(ctx context.Context, ch model.Channel) ([]model.Video, int, error) {
	playlist := youtube.UploadsPlaylist(ch.ID, ch.UploadsPlaylistID)
	if playlist == "" {
		return nil, 0, nil
	}

	videos, err := c.yt.RecentVideos(ctx, playlist, c.opts.RecentVideos)
	if resilience.IsConfigFault(err) {
		return nil, 0, err
	}
	if err != nil {
		zap.L().Warn("discovery: upload listing failed",
			zap.String("channel_id", ch.ID),
			zap.Error(err),
		)
		return nil, c.calc.VideoListQuota(), nil
	}

	out := make([]model.Video, 0, len(videos))
	for _, v := range videos {
		out = append(out, model.Video{ID: v.ID, Title: v.Title, PublishedAt: v.PublishedAt})
	}
	return out, c.calc.VideoListQuota(), nil
}

func toModel(ch youtube.Channel, query string) model.Channel {
	out := model.Channel{
		ID:                ch.ID,
		Title:             ch.Title,
		Description:       ch.Description,
		ThumbnailURL:      ch.ThumbnailURL,
		Subscribers:       ch.Subscribers,
		VideoCount:        ch.VideoCount,
		ViewCount:         ch.ViewCount,
		Handle:            ch.CustomURL,
		UploadsPlaylistID: ch.UploadsPlaylistID,
		DiscoveryQuery:    query,
	}
	if ch.SubscribersHidden {
		out.Subscribers = model.HiddenReach
	}
	if ch.Country != "" {
		country := ch.Country
		out.Country = &country
	}
	if out.Title == "" {
		out.Title = "Unknown"
	}
	return out
}

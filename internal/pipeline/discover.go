package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/sells-group/derm-scout/internal/model"
	"github.com/sells-group/derm-scout/internal/progress"
)

// discover is phase 1: search, de-duplicate and attach recent uploads.
func (p *Pipeline) discover(ctx context.Context, queries []string, st *runState, sink progress.Sink) ([]model.Candidate, error) {
	sink.Emit(progress.PhaseEvent(1, fmt.Sprintf("Searching YouTube with %d queries", len(queries))))

	res, err := p.collector.Collect(ctx, queries)
	if err != nil {
		return nil, err
	}
	st.quota += res.QuotaUnits

	for _, c := range res.Candidates {
		l := st.debug(c.Channel)
		l.Discovery = append(l.Discovery,
			"query: "+c.Channel.DiscoveryQuery,
			"subscribers: "+reach(c.Channel),
			fmt.Sprintf("recent uploads: %d", len(c.RecentVideos)),
		)
	}

	ev := progress.PhaseEvent(1, fmt.Sprintf("Found %d unique channels", len(res.Candidates)))
	ev.Count = len(res.Candidates)
	sink.Emit(ev)

	zap.L().Info("pipeline: discovery complete",
		zap.Int("candidates", len(res.Candidates)),
		zap.Int("quota_units", res.QuotaUnits),
	)
	return res.Candidates, nil
}

func reach(ch model.Channel) string {
	if ch.ReachHidden() {
		return "hidden"
	}
	return fmt.Sprintf("%d", ch.Subscribers)
}

package pipeline

import (
	"context"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/derm-scout/internal/model"
	"github.com/sells-group/derm-scout/internal/progress"
)

// Stream starts a run in the background and returns its event stream. The
// stream ends with exactly one complete or error event and is then closed.
// Events already sent are never retracted. When ctx is done the remaining
// events are dropped.
func (p *Pipeline) Stream(ctx context.Context, maxQueries int) <-chan progress.Event {
	runID := uuid.NewString()
	em := progress.NewEmitter(ctx, runID, p.cfg.Pipeline.EventBufferSize)

	go func() {
		defer em.Close()

		res, err := p.safeRun(ctx, runID, maxQueries, em)
		if err != nil {
			zap.L().Error("pipeline: run failed", zap.String("run_id", runID), zap.Error(err))
			em.Emit(progress.Event{Type: progress.TypeError, Error: err.Error()})
			return
		}
		em.Emit(progress.Event{Type: progress.TypeComplete, Result: res})
	}()

	return em.Events()
}

// safeRun converts a panic anywhere below the run loop into an error.
func (p *Pipeline) safeRun(ctx context.Context, runID string, maxQueries int, sink progress.Sink) (res *model.RunResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			zap.L().Error("pipeline: run panicked",
				zap.String("run_id", runID),
				zap.Any("panic", r),
				zap.Stack("stack"),
			)
			res, err = nil, eris.Errorf("pipeline: unexpected failure: %v", r)
		}
	}()
	return p.run(ctx, runID, maxQueries, sink)
}

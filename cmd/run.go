package main

import (
	"context"
	"encoding/json"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/derm-scout/internal/model"
	"github.com/sells-group/derm-scout/internal/progress"
)

var (
	runMaxQueries int
	runStream     bool
	runSummary    bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the discovery pipeline once",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := initPipeline("run")
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Pipeline.Timeout())
		defer cancel()

		var result *model.RunResult
		if runStream {
			result, err = streamEvents(os.Stdout, p.Stream(ctx, runMaxQueries))
		} else {
			result, err = p.Run(ctx, runMaxQueries, progressLogger())
			if err == nil {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				err = enc.Encode(result)
			}
		}
		if err != nil {
			return eris.Wrap(err, "pipeline run")
		}

		zap.L().Info("run complete",
			zap.String("run_id", result.RunID),
			zap.Int("verified", result.Stats.Verified),
			zap.Float64("cost_usd", result.Costs.Total),
		)

		if runSummary {
			renderSummary(os.Stderr, result)
		}
		return nil
	},
}

// streamEvents writes every event as one JSON line and returns the result
// carried by the terminal event.
func streamEvents(w io.Writer, events <-chan progress.Event) (*model.RunResult, error) {
	enc := json.NewEncoder(w)
	var (
		result *model.RunResult
		runErr error
	)
	for ev := range events {
		if err := enc.Encode(ev); err != nil {
			return nil, eris.Wrap(err, "write event")
		}
		switch ev.Type {
		case progress.TypeComplete:
			result = ev.Result
		case progress.TypeError:
			runErr = eris.New(ev.Error)
		}
	}
	if runErr != nil {
		return nil, runErr
	}
	if result == nil {
		return nil, eris.New("event stream ended without a result")
	}
	return result, nil
}

// progressLogger logs phase transitions at info level.
func progressLogger() progress.Sink {
	return progress.SinkFunc(func(ev progress.Event) {
		if ev.Type == progress.TypePhase {
			zap.L().Info("pipeline phase", zap.Int("phase", ev.Phase), zap.String("label", ev.Label))
		}
	})
}

func init() {
	runCmd.Flags().IntVar(&runMaxQueries, "max-queries", 0, "number of catalog queries to run (default from config)")
	runCmd.Flags().BoolVar(&runStream, "stream", false, "print progress events as NDJSON instead of the final result")
	runCmd.Flags().BoolVar(&runSummary, "summary", false, "render summary tables to stderr")
	rootCmd.AddCommand(runCmd)
}

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/derm-scout/internal/discovery"
	"github.com/sells-group/derm-scout/internal/model"
	"github.com/sells-group/derm-scout/internal/pipeline"
	"github.com/sells-group/derm-scout/internal/progress"
)

var servePort int

// runner is the part of the pipeline the HTTP surface uses.
type runner interface {
	Run(ctx context.Context, maxQueries int, sink progress.Sink) (*model.RunResult, error)
	Stream(ctx context.Context, maxQueries int) <-chan progress.Event
	Catalog() *discovery.Catalog

	Discover(ctx context.Context, maxQueries int) (*pipeline.DiscoverResult, error)
	Identify(ctx context.Context, candidates []model.Candidate) (*pipeline.IdentifyResult, error)
	Verify(ctx context.Context, identified []pipeline.IdentifiedCandidate) (*pipeline.VerifyResult, error)
	Enrich(ctx context.Context, verified []model.VerifiedCandidate) (*pipeline.EnrichResult, error)
}

// routerConfig holds the settings of the HTTP surface.
type routerConfig struct {
	Timeout           time.Duration
	DefaultMaxQueries int
	AllowedOrigins    []string
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the pipeline over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		p, err := initPipeline("serve")
		if err != nil {
			return err
		}

		router := buildRouter(p, routerConfig{
			Timeout:           cfg.Pipeline.Timeout(),
			DefaultMaxQueries: cfg.Discovery.DefaultMaxQueries,
			AllowedOrigins:    cfg.Server.AllowedOrigins,
		})
		return startServer(ctx, router, resolvePort(servePort, cfg.Server.Port))
	},
}

type runRequest struct {
	MaxQueries int   `json:"max_queries"`
	Stream     *bool `json:"stream"`
}

type extractRequest struct {
	Candidates []model.Candidate `json:"candidates"`
}

type verifyRequest struct {
	Identified []pipeline.IdentifiedCandidate `json:"identified"`
}

type enrichRequest struct {
	Verified []model.VerifiedCandidate `json:"verified"`
}

func buildRouter(p runner, rc routerConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: rc.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/api/queries", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"queries":             p.Catalog().Queries,
			"default_max_queries": rc.DefaultMaxQueries,
		})
	})

	r.Post("/api/pipeline/run", func(w http.ResponseWriter, req *http.Request) {
		var body runRequest
		if !decodeBody(w, req, &body) {
			return
		}
		if body.MaxQueries < 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "max_queries must be >= 0"})
			return
		}

		ctx, cancel := context.WithTimeout(req.Context(), rc.Timeout)
		defer cancel()

		if body.Stream == nil || *body.Stream {
			serveEvents(w, p.Stream(ctx, body.MaxQueries))
			return
		}

		result, err := p.Run(ctx, body.MaxQueries, nil)
		if err != nil {
			zap.L().Error("serve: pipeline run failed", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, result)
	})

	r.Post("/api/pipeline/discover", func(w http.ResponseWriter, req *http.Request) {
		var body runRequest
		if !decodeBody(w, req, &body) {
			return
		}
		if body.MaxQueries < 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "max_queries must be >= 0"})
			return
		}
		phase(w, req, rc.Timeout, "discover", func(ctx context.Context) (any, error) {
			return p.Discover(ctx, body.MaxQueries)
		})
	})

	r.Post("/api/pipeline/extract", func(w http.ResponseWriter, req *http.Request) {
		var body extractRequest
		if !decodeBody(w, req, &body) {
			return
		}
		phase(w, req, rc.Timeout, "extract", func(ctx context.Context) (any, error) {
			return p.Identify(ctx, body.Candidates)
		})
	})

	r.Post("/api/pipeline/verify", func(w http.ResponseWriter, req *http.Request) {
		var body verifyRequest
		if !decodeBody(w, req, &body) {
			return
		}
		phase(w, req, rc.Timeout, "verify", func(ctx context.Context) (any, error) {
			return p.Verify(ctx, body.Identified)
		})
	})

	r.Post("/api/pipeline/enrich", func(w http.ResponseWriter, req *http.Request) {
		var body enrichRequest
		if !decodeBody(w, req, &body) {
			return
		}
		phase(w, req, rc.Timeout, "enrich", func(ctx context.Context) (any, error) {
			return p.Enrich(ctx, body.Verified)
		})
	})

	return r
}

// decodeBody decodes a JSON request body into v. An empty body leaves v
// zero. It writes a 400 and returns false when the body is malformed.
func decodeBody(w http.ResponseWriter, req *http.Request, v any) bool {
	if err := json.NewDecoder(req.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return false
	}
	return true
}

// phase runs one pipeline phase under the request timeout and writes its
// result or a 500.
func phase(w http.ResponseWriter, req *http.Request, timeout time.Duration, name string, fn func(context.Context) (any, error)) {
	ctx, cancel := context.WithTimeout(req.Context(), timeout)
	defer cancel()

	result, err := fn(ctx)
	if err != nil {
		zap.L().Error("serve: pipeline phase failed", zap.String("phase", name), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// serveEvents relays the event stream as server-sent events, one data
// line per event.
func serveEvents(w http.ResponseWriter, events <-chan progress.Event) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	flusher, _ := w.(http.Flusher)
	for ev := range events {
		data, err := json.Marshal(ev)
		if err != nil {
			zap.L().Warn("serve: marshal event", zap.Error(err))
			continue
		}
		if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
			// Client went away; the run stops with the request context.
			continue
		}
		if flusher != nil {
			flusher.Flush()
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func resolvePort(flag, configured int) int {
	if flag != 0 {
		return flag
	}
	return configured
}

// startServer serves handler on port until ctx is done, then shuts down
// gracefully.
func startServer(ctx context.Context, handler http.Handler, port int) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		zap.L().Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	zap.L().Info("starting server", zap.Int("port", port))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return eris.Wrap(err, "server listen")
	}
	return nil
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

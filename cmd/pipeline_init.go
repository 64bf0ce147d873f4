package main

import (
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/derm-scout/internal/config"
	"github.com/sells-group/derm-scout/internal/discovery"
	"github.com/sells-group/derm-scout/internal/pipeline"
	anthropicpkg "github.com/sells-group/derm-scout/pkg/anthropic"
	"github.com/sells-group/derm-scout/pkg/exa"
	"github.com/sells-group/derm-scout/pkg/hunter"
	"github.com/sells-group/derm-scout/pkg/npi"
	"github.com/sells-group/derm-scout/pkg/snov"
	"github.com/sells-group/derm-scout/pkg/youtube"
)

// initPipeline validates the config for mode, loads the query catalog and
// builds the Pipeline with real provider clients.
func initPipeline(mode string) (*pipeline.Pipeline, error) {
	if err := cfg.Validate(mode); err != nil {
		return nil, err
	}

	catalog, err := discovery.LoadCatalog(cfg.Discovery.QueriesFile)
	if err != nil {
		return nil, eris.Wrap(err, "load query catalog")
	}

	zap.L().Info("query catalog loaded",
		zap.Int("queries", len(catalog.Queries)),
		zap.String("file", cfg.Discovery.QueriesFile),
	)

	return pipeline.New(cfg, buildClients(cfg), catalog), nil
}

// buildClients creates every provider client from config. Missing
// credentials are not an error here; the first call to that provider fails.
func buildClients(c *config.Config) pipeline.Clients {
	var ytOpts []youtube.Option
	if c.YouTube.BaseURL != "" {
		ytOpts = append(ytOpts, youtube.WithBaseURL(c.YouTube.BaseURL))
	}

	var aiOpts []anthropicpkg.Option
	if c.Anthropic.BaseURL != "" {
		aiOpts = append(aiOpts, anthropicpkg.WithBaseURL(c.Anthropic.BaseURL))
	}

	npiOpts := []npi.Option{npi.WithLimit(c.Registry.Limit), npi.WithRateLimit(c.Registry.RateLimit)}
	if c.Registry.BaseURL != "" {
		npiOpts = append(npiOpts, npi.WithBaseURL(c.Registry.BaseURL))
	}

	exaOpts := []exa.Option{exa.WithRateLimit(c.Exa.RateLimit)}
	if c.Exa.BaseURL != "" {
		exaOpts = append(exaOpts, exa.WithBaseURL(c.Exa.BaseURL))
	}

	hunterOpts := []hunter.Option{hunter.WithRateLimit(c.Hunter.RateLimit)}
	if c.Hunter.BaseURL != "" {
		hunterOpts = append(hunterOpts, hunter.WithBaseURL(c.Hunter.BaseURL))
	}

	snovOpts := []snov.Option{snov.WithRateLimit(c.Snov.RateLimit)}
	if c.Snov.BaseURL != "" {
		snovOpts = append(snovOpts, snov.WithBaseURL(c.Snov.BaseURL))
	}

	return pipeline.Clients{
		YouTube:   youtube.NewClient(c.YouTube.Key, ytOpts...),
		Anthropic: anthropicpkg.NewClient(c.Anthropic.Key, aiOpts...),
		Registry:  npi.NewClient(npiOpts...),
		Exa:       exa.NewClient(c.Exa.Key, exaOpts...),
		Hunter:    hunter.NewClient(c.Hunter.Key, hunterOpts...),
		Snov:      snov.NewClient(c.Snov.ClientID, c.Snov.ClientSecret, snovOpts...),
	}
}

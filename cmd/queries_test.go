package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/derm-scout/internal/config"
)

func TestQueriesCommand_MarksDefaultSubset(t *testing.T) {
	prev := cfg
	t.Cleanup(func() { cfg = prev })

	path := filepath.Join(t.TempDir(), "queries.yaml")
	require.NoError(t, os.WriteFile(path, []byte("queries:\n  - acne dermatologist\n  - eczema doctor\n  - mole check\n"), 0o644))
	cfg = &config.Config{Discovery: config.DiscoveryConfig{QueriesFile: path, DefaultMaxQueries: 2}}

	var buf bytes.Buffer
	queriesCmd.SetOut(&buf)
	t.Cleanup(func() { queriesCmd.SetOut(nil) })

	require.NoError(t, queriesCmd.RunE(queriesCmd, nil))
	assert.Equal(t, "*  1. acne dermatologist\n*  2. eczema doctor\n   3. mole check\n", buf.String())
}

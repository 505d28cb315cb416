package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sells-group/valuation-agent/internal/config"
)

// useConfig loads the default config, applies mutate, and installs it as
// the package config for the duration of the test.
func useConfig(t *testing.T, mutate func(c *config.Config)) {
	t.Helper()
	c, err := config.Load()
	require.NoError(t, err)
	c.MarketData.Seed = 42
	c.MarketData.SQLitePath = filepath.Join(t.TempDir(), "sales.db")
	if mutate != nil {
		mutate(c)
	}

	prev := cfg
	cfg = c
	t.Cleanup(func() { cfg = prev })
}

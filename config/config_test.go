package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeTestConfig(t *testing.T) (string, *Config) {
	t.Helper()
	home := t.TempDir()
	cfg := DefaultConfig(home)
	cfg.App.LogFile = "fund.log"
	cfg.App.Params.RoundVotingPeriodInDays = 7
	cfg.App.Indexer.Enable = true
	cfg.App.Indexer.SyncInterval = 3 * time.Second
	WriteConfigFile(filepath.Join(home, "config", "config.toml"), cfg)
	return home, cfg
}

func TestWriteAndLoad(t *testing.T) {
	home, written := writeTestConfig(t)

	cfg, err := Load(home)
	require.NoError(t, err)
	require.Equal(t, home, cfg.App.Home)
	require.Equal(t, home, cfg.RootDir)
	require.Equal(t, "fund.log", cfg.App.LogFile)
	require.Equal(t, filepath.Join(home, "fund.log"), cfg.App.ResolvePath(cfg.App.LogFile))
	require.Equal(t, written.App.Params, cfg.App.Params)
	require.True(t, cfg.App.Indexer.Enable)
	require.Equal(t, 3*time.Second, cfg.App.Indexer.SyncInterval)
	require.Equal(t, written.App.Indexer.ListenAddress, cfg.App.Indexer.ListenAddress)
	require.Equal(t, written.Consensus.TimeoutCommit, cfg.Consensus.TimeoutCommit)
	require.Equal(t, filepath.Join(home, "data"), cfg.App.DataDir())
}

func TestLoadEnvOverride(t *testing.T) {
	home, _ := writeTestConfig(t)
	t.Setenv("FUND_APP_INDEXER_LISTEN_ADDRESS", "0.0.0.0:9000")

	cfg, err := Load(home)
	require.NoError(t, err)
	require.Equal(t, "0.0.0.0:9000", cfg.App.Indexer.ListenAddress)
}

func TestLoadDotEnv(t *testing.T) {
	home, _ := writeTestConfig(t)
	t.Cleanup(func() { os.Unsetenv("FUND_APP_INDEXER_DATABASE_URL") })
	require.NoError(t, os.WriteFile(filepath.Join(home, ".env"), []byte("FUND_APP_INDEXER_DATABASE_URL=postgres://fund@localhost/fund\n"), 0o600))

	cfg, err := Load(home)
	require.NoError(t, err)
	require.Equal(t, "postgres://fund@localhost/fund", cfg.App.Indexer.DatabaseURL)
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(t.TempDir())
	require.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	home, _ := writeTestConfig(t)
	cfg, err := Load(home)
	require.NoError(t, err)

	logger, err := NewLogger(cfg)
	require.NoError(t, err)
	logger.Info("hello")
	_, err = os.Stat(filepath.Join(home, "fund.log"))
	require.NoError(t, err)
}

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cometbft/cometbft/config"
	"github.com/cometbft/cometbft/crypto"
	"github.com/cometbft/cometbft/p2p"
	"github.com/cometbft/cometbft/privval"

	"github.com/calehh/fund-app/types"
)

const DefaultHomeDir = "$HOME/.fund"

type IndexerConfig struct {
	Enable bool `mapstructure:"enable"`
	// DatabaseURL is a sqlite file path, or a postgres:// URL.
	DatabaseURL   string        `mapstructure:"database_url"`
	ListenAddress string        `mapstructure:"listen_address"`
	SyncInterval  time.Duration `mapstructure:"sync_interval"`
}

type AppConfig struct {
	Home    string        `mapstructure:"-"`
	LogFile string        `mapstructure:"log_file"`
	Params  types.Params  `mapstructure:"params"`
	Indexer IndexerConfig `mapstructure:"indexer"`
}

func DefaultAppConfig(home string) *AppConfig {
	return &AppConfig{
		Home:    home,
		LogFile: "",
		Params:  types.DefaultParams(),
		Indexer: IndexerConfig{
			Enable:        false,
			DatabaseURL:   "indexer.db",
			ListenAddress: "127.0.0.1:8088",
			SyncInterval:  time.Second,
		},
	}
}

// DataDir is where the state tree lives.
func (c *AppConfig) DataDir() string {
	return filepath.Join(c.Home, "data")
}

// ResolvePath makes p absolute relative to the home directory.
func (c *AppConfig) ResolvePath(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Home, p)
}

type Config struct {
	*config.Config `mapstructure:",squash"`

	App *AppConfig `mapstructure:"app"`
}

func ExpandHome(home string) string {
	if len(home) == 0 {
		home = os.ExpandEnv(DefaultHomeDir)
	}
	return home
}

func DefaultConfig(home string) *Config {
	home = ExpandHome(home)
	cfg := &Config{
		DefaultCometConfig(),
		DefaultAppConfig(home),
	}
	cfg.SetRoot(home)
	_ = os.MkdirAll(filepath.Join(home, "config"), 0o755)
	return cfg
}

func InitializeNodeValidatorFiles(config *Config, privKey crypto.PrivKey) (nodeID string, pk crypto.PubKey, err error) {
	nodeKey, err := p2p.LoadOrGenNodeKey(config.NodeKeyFile())
	if err != nil {
		return "", nil, err
	}
	nodeID = string(nodeKey.ID())

	pvKeyFile := config.PrivValidatorKeyFile()
	if err := os.MkdirAll(filepath.Dir(pvKeyFile), 0o777); err != nil {
		return "", nil, fmt.Errorf("could not create directory %q: %w", filepath.Dir(pvKeyFile), err)
	}

	pvStateFile := config.PrivValidatorStateFile()
	if err := os.MkdirAll(filepath.Dir(pvStateFile), 0o777); err != nil {
		return "", nil, fmt.Errorf("could not create directory %q: %w", filepath.Dir(pvStateFile), err)
	}

	var filePV *privval.FilePV
	if privKey == nil {
		filePV = privval.LoadOrGenFilePV(pvKeyFile, pvStateFile)
	} else {
		filePV = privval.NewFilePV(privKey, pvKeyFile, pvStateFile)
		filePV.Save()
	}
	pk, err = filePV.GetPubKey()
	if err != nil {
		return "", nil, err
	}
	return nodeID, pk, nil
}

func DefaultCometConfig() *config.Config {
	cometConfig := config.DefaultConfig()
	cometConfig.Consensus.TimeoutPropose = time.Second * 3
	cometConfig.Consensus.TimeoutPrevote = time.Second * 1
	cometConfig.Consensus.TimeoutPrecommit = time.Second * 1
	cometConfig.Consensus.TimeoutCommit = time.Millisecond * 1200
	return cometConfig
}

package config

import (
	"io"
	"os"

	cmtconfig "github.com/cometbft/cometbft/config"
	cmtflags "github.com/cometbft/cometbft/libs/cli/flags"
	cmtlog "github.com/cometbft/cometbft/libs/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// NewLogger builds the node logger at the configured log level.
func NewLogger(cfg *Config) (cmtlog.Logger, error) {
	var w io.Writer = os.Stdout
	if path := cfg.App.ResolvePath(cfg.App.LogFile); path != "" {
		w = io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   path,
			MaxSize:    100,
			MaxBackups: 3,
			MaxAge:     28,
			Compress:   true,
		})
	}
	logger := cmtlog.NewTMLogger(cmtlog.NewSyncWriter(w))
	return cmtflags.ParseLogLevel(cfg.LogLevel, logger, cmtconfig.DefaultLogLevel)
}

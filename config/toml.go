package config

import (
	"bytes"
	_ "embed"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	cmtconfig "github.com/cometbft/cometbft/config"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g.
// FUND_APP_INDEXER_DATABASE_URL.
const EnvPrefix = "FUND"

var configTemplate *template.Template

func init() {
	var err error
	tmpl := template.New("appConfigFileTemplate").Funcs(template.FuncMap{
		"StringsJoin": strings.Join,
	})
	if configTemplate, err = tmpl.Parse(appConfigTemplate); err != nil {
		panic(err)
	}
}

// WriteConfigFile writes the CometBFT config followed by the [app] section.
func WriteConfigFile(configFilePath string, config *Config) {
	cmtconfig.WriteConfigFile(configFilePath, config.Config)

	var buffer bytes.Buffer
	if err := configTemplate.Execute(&buffer, config); err != nil {
		panic(err)
	}
	f, err := os.OpenFile(configFilePath, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		panic(err)
	}
	defer f.Close()
	if _, err = f.Write(buffer.Bytes()); err != nil {
		panic(err)
	}
}

// Load reads <home>/config/config.toml. Variables from <home>/.env and ./.env
// are exported first so that FUND_* overrides can live there.
func Load(home string) (*Config, error) {
	home = ExpandHome(home)
	for _, f := range []string{filepath.Join(home, ".env"), ".env"} {
		if _, err := os.Stat(f); err == nil {
			_ = godotenv.Load(f)
		}
	}

	cfg := &Config{
		Config: DefaultCometConfig(),
		App:    DefaultAppConfig(home),
	}
	cfg.SetRoot(home)

	v := viper.New()
	v.SetConfigFile(filepath.Join(home, "config", "config.toml"))
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	cfg.App.Home = home
	if err := cfg.ValidateBasic(); err != nil {
		return nil, err
	}
	if err := cfg.App.Params.Validate(); err != nil {
		return nil, err
	}
	if cfg.App.Indexer.Enable && cfg.App.Indexer.SyncInterval <= 0 {
		return nil, errors.New("indexer sync_interval must be positive")
	}
	return cfg, nil
}

//go:embed config.toml.tpl
var appConfigTemplate string

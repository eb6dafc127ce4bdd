package main

import (
	"path/filepath"

	"github.com/spf13/cobra"
)

const (
	FlagHome      = "home"
	FlagChainID   = "chain-id"
	FlagOverwrite = "overwrite"
	FlagMint      = "mint"
	FlagBalance   = "balance"
)

const (
	DefaultPrivValKeyName = "priv_validator_key.json"
	DefaultRPCURL         = "http://127.0.0.1:26657"
)

// urlFlag and skeyFlag register persistent flags so subcommands inherit them.
func urlFlag(cmd *cobra.Command, url *string) {
	cmd.PersistentFlags().StringVarP(url, "url", "u", DefaultRPCURL, "fund node rpc url")
}

func skeyFlag(cmd *cobra.Command, skey *string) {
	cmd.PersistentFlags().StringVarP(skey, "skeyPath", "s", filepath.Join("config", DefaultPrivValKeyName), "private key path")
}

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cometbft/cometbft/rpc/client/http"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/calehh/fund-app/app"
)

type queryArguments struct {
	Url string
}

var queryArgs queryArguments

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Query escrow state from a node",
}

func init() {
	urlFlag(queryCmd, &queryArgs.Url)
	queryCmd.AddCommand(
		&cobra.Command{
			Use:   "config",
			Short: "Show the program config",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return printQuery(queryArgs.Url, "/config/", nil)
			},
		},
		&cobra.Command{
			Use:   "campaign <owner address | campaign key>",
			Short: "Show a campaign",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				dat, err := hexArg(args[0])
				if err != nil {
					return err
				}
				return printQuery(queryArgs.Url, "/campaigns/", dat)
			},
		},
		&cobra.Command{
			Use:   "record <key>",
			Short: "Show any record by key",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				dat, err := hexArg(args[0])
				if err != nil {
					return err
				}
				return printQuery(queryArgs.Url, "/records/", dat)
			},
		},
		&cobra.Command{
			Use:   "balance <mint> <account>",
			Short: "Show a token balance",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				if !common.IsHexAddress(args[0]) || !common.IsHexAddress(args[1]) {
					return errors.New("mint and account must be addresses")
				}
				dat := append(common.HexToAddress(args[0]).Bytes(), common.HexToAddress(args[1]).Bytes()...)
				return printQuery(queryArgs.Url, "/balances/", dat)
			},
		},
		&cobra.Command{
			Use:   "nonce <address>",
			Short: "Show the next nonce of an address",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if !common.IsHexAddress(args[0]) {
					return errors.New("invalid address")
				}
				return printQuery(queryArgs.Url, "/nonces/", common.HexToAddress(args[0]).Bytes())
			},
		},
	)
}

func hexArg(s string) ([]byte, error) {
	dat := common.FromHex(s)
	if len(dat) != common.AddressLength && len(dat) != common.HashLength {
		return nil, fmt.Errorf("expected a 20 or 32 byte hex value, got %q", s)
	}
	return dat, nil
}

func abciQuery(url, path string, data []byte) ([]byte, error) {
	cli, err := http.New(url, "/websocket")
	if err != nil {
		return nil, err
	}
	res, err := cli.ABCIQuery(context.Background(), path, data)
	if err != nil {
		return nil, err
	}
	if res.Response.Code != 0 {
		return nil, fmt.Errorf("query %s failed: code %d %s", path, res.Response.Code, res.Response.Log)
	}
	return res.Response.Value, nil
}

func printQuery(url, path string, data []byte) error {
	val, err := abciQuery(url, path, data)
	if err != nil {
		return err
	}
	var out bytes.Buffer
	if err = json.Indent(&out, val, "", "  "); err != nil {
		return err
	}
	fmt.Println(out.String())
	return nil
}

func queryNonce(url string, addr common.Address) (uint64, error) {
	val, err := abciQuery(url, "/nonces/", addr.Bytes())
	if err != nil {
		return 0, err
	}
	var n app.NonceResponse
	if err = json.Unmarshal(val, &n); err != nil {
		return 0, err
	}
	return n.Nonce, nil
}

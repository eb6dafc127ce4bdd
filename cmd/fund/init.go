package main

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	cmttypes "github.com/cometbft/cometbft/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/calehh/fund-app/config"
	"github.com/calehh/fund-app/types"
)

// DefaultNativeMint is used when init is not given a mint.
var DefaultNativeMint = types.AccountOf(types.DeriveKey("native-mint"))

type printInfo struct {
	ChainID    string          `json:"chain_id" yaml:"chain_id"`
	NodeID     string          `json:"node_id" yaml:"node_id"`
	Admin      string          `json:"admin" yaml:"admin"`
	AppMessage json.RawMessage `json:"app_message" yaml:"app_message"`
}

func displayInfo(info printInfo) error {
	out, err := json.MarshalIndent(info, "", " ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(os.Stderr, "%s\n", out)
	return err
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize private validator, p2p, genesis, and application configuration files",
	Long: `Initialize the validator and node configuration files. The validator key
also becomes the escrow admin, and the genesis app_state creates the config
with the given native token mint.`,
	Args: cobra.ExactArgs(0),
	RunE: initRun,
}

func init() {
	initCmd.Flags().BoolP(FlagOverwrite, "o", false, "overwrite the genesis.json file")
	initCmd.Flags().String(FlagChainID, "", "genesis file chain-id, if left blank will be randomly created")
	initCmd.Flags().String(FlagHome, "", "node home directory")
	initCmd.Flags().String(FlagMint, DefaultNativeMint.Hex(), "native token mint address")
	initCmd.Flags().Uint64(FlagBalance, 0, "genesis native token balance of the admin")
}

func initRun(cmd *cobra.Command, args []string) error {
	home, _ := cmd.Flags().GetString(FlagHome)
	chainID, _ := cmd.Flags().GetString(FlagChainID)
	overwrite, _ := cmd.Flags().GetBool(FlagOverwrite)
	mintHex, _ := cmd.Flags().GetString(FlagMint)
	balance, _ := cmd.Flags().GetUint64(FlagBalance)

	if chainID == "" {
		chainID = fmt.Sprintf("fund-chain-%v", rand.Uint64())
	}
	if !common.IsHexAddress(mintHex) {
		return fmt.Errorf("invalid mint address %q", mintHex)
	}
	mint := common.HexToAddress(mintHex)

	cfg := config.DefaultConfig(home)
	genFile := cfg.GenesisFile()
	if _, err := os.Stat(genFile); err == nil && !overwrite {
		return fmt.Errorf("genesis file %s already exists, use --%s to replace it", genFile, FlagOverwrite)
	}

	nodeID, pk, err := config.InitializeNodeValidatorFiles(cfg, nil)
	if err != nil {
		return err
	}
	admin := common.BytesToAddress(pk.Address())

	appState := &types.AppState{
		Admin:           admin,
		NativeTokenMint: mint,
		Params:          cfg.App.Params,
	}
	if balance > 0 {
		appState.Balances = append(appState.Balances, types.GenesisBalance{Mint: mint, Account: admin, Amount: balance})
	}
	if err = appState.Validate(); err != nil {
		return err
	}
	appStateJSON, err := json.Marshal(appState)
	if err != nil {
		return err
	}

	appGenesis := &types.GenesisDoc{
		GenesisTime:     time.Now(),
		ChainID:         chainID,
		ConsensusParams: cmttypes.DefaultConsensusParams(),
		InitialHeight:   1,
		Validators: []types.GenesisValidator{
			{Address: pk.Address(), PubKey: pk, Power: types.DefaultPower},
		},
		AppState: appStateJSON,
	}
	if err = types.ExportGenesisFile(appGenesis, genFile); err != nil {
		return fmt.Errorf("failed to export genesis file: %w", err)
	}
	config.WriteConfigFile(filepath.Join(cfg.RootDir, "config", "config.toml"), cfg)
	return displayInfo(printInfo{
		ChainID:    chainID,
		NodeID:     nodeID,
		Admin:      admin.Hex(),
		AppMessage: appGenesis.AppState,
	})
}

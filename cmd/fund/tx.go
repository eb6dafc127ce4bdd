package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/cometbft/cometbft/rpc/client/http"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/calehh/fund-app/crypto"
	"github.com/calehh/fund-app/tx"
)

type txArguments struct {
	Url    string
	Skey   string
	Nonce  int64
	NoSend bool

	Description string
	MetadataRef string
	RoundTarget uint64
	Mint        string
}

var txArgs txArguments

var txCmd = &cobra.Command{
	Use:   "tx",
	Short: "Sign and broadcast escrow transactions",
}

func init() {
	urlFlag(txCmd, &txArgs.Url)
	skeyFlag(txCmd, &txArgs.Skey)
	f := txCmd.PersistentFlags()
	f.Int64VarP(&txArgs.Nonce, "nonce", "n", -1, "account nonce, queried from the node when negative")
	f.BoolVar(&txArgs.NoSend, "nosend", false, "print the signed transaction instead of sending it")

	startCampaignCmd.Flags().StringVar(&txArgs.Description, "description", "", "campaign description")
	startCampaignCmd.Flags().StringVar(&txArgs.MetadataRef, "metadata", "", "metadata reference, e.g. an ipfs cid")
	startCampaignCmd.Flags().Uint64Var(&txArgs.RoundTarget, "round-target", 0, "first round target, required with more than one round")
	startCampaignCmd.Flags().StringVar(&txArgs.Mint, "mint", "", "donation token mint, native mint when empty")

	txCmd.AddCommand(
		simpleTxCmd("initialize <native mint>", "Create the program config", 1, func(args []string) (tx.FundTxType, any, error) {
			mint, err := parseAddress(args[0])
			return tx.FundTxTypeInitialize, &tx.InitializeTx{NativeTokenMint: mint}, err
		}),
		startCampaignCmd,
		simpleTxCmd("donate <campaign> <round> <amount>", "Donate to the active round", 3, func(args []string) (tx.FundTxType, any, error) {
			key, err := parseKey(args[0])
			if err != nil {
				return 0, nil, err
			}
			round, err := strconv.ParseUint(args[1], 10, 64)
			if err != nil {
				return 0, nil, err
			}
			amount, err := strconv.ParseUint(args[2], 10, 64)
			return tx.FundTxTypeDonate, &tx.DonateTx{Campaign: key, Round: round, Amount: amount}, err
		}),
		simpleTxCmd("initialize-voting", "Open voting on the funded round of your campaign", 0, func(args []string) (tx.FundTxType, any, error) {
			return tx.FundTxTypeInitializeVoting, &tx.InitializeVotingTx{}, nil
		}),
		campaignTxCmd("init-donor-voting <campaign>", "Register as a donor voter", tx.FundTxTypeInitDonatorVoting, func(key common.Hash) any {
			return &tx.RegisterVoterTx{Campaign: key}
		}),
		campaignTxCmd("init-staker-voting <campaign>", "Register as a staker voter", tx.FundTxTypeInitStakerVoting, func(key common.Hash) any {
			return &tx.RegisterVoterTx{Campaign: key}
		}),
		simpleTxCmd("vote <campaign> <continue|terminate>", "Vote on the next round", 2, func(args []string) (tx.FundTxType, any, error) {
			key, err := parseKey(args[0])
			if err != nil {
				return 0, nil, err
			}
			cont, err := parseChoice(args[1], "continue", "terminate")
			return tx.FundTxTypeVote, &tx.VoteTx{Campaign: key, Continue: cont}, err
		}),
		campaignTxCmd("tally <campaign>", "Tally the votes once the voting period is over", tx.FundTxTypeTallyVotes, func(key common.Hash) any {
			return &tx.TallyVotesTx{Campaign: key}
		}),
		simpleTxCmd("next-round [target]", "Start the next round of your campaign", -1, func(args []string) (tx.FundTxType, any, error) {
			var target uint64
			var err error
			if len(args) > 0 {
				target, err = strconv.ParseUint(args[0], 10, 64)
			}
			return tx.FundTxTypeStartNextRound, &tx.StartNextRoundTx{Target: target}, err
		}),
		simpleTxCmd("withdraw", "Withdraw the escrowed funds of your campaign", 0, func(args []string) (tx.FundTxType, any, error) {
			return tx.FundTxTypeWithdraw, &tx.WithdrawTx{}, nil
		}),
		simpleTxCmd("initialize-staking <mint>", "Open the staking pool", 1, func(args []string) (tx.FundTxType, any, error) {
			mint, err := parseAddress(args[0])
			return tx.FundTxTypeInitializeStaking, &tx.InitializeStakingTx{Mint: mint}, err
		}),
		simpleTxCmd("stake <amount>", "Stake native tokens", 1, func(args []string) (tx.FundTxType, any, error) {
			amount, err := strconv.ParseUint(args[0], 10, 64)
			return tx.FundTxTypeStake, &tx.StakeTx{Amount: amount}, err
		}),
		simpleTxCmd("unstake", "Withdraw your whole stake", 0, func(args []string) (tx.FundTxType, any, error) {
			return tx.FundTxTypeUnstake, &tx.UnstakeTx{}, nil
		}),
		campaignTxCmd("init-moderation <campaign>", "Register as a campaign moderator", tx.FundTxTypeInitStakerModeration, func(key common.Hash) any {
			return &tx.InitStakerModerationTx{Campaign: key}
		}),
		simpleTxCmd("moderate <campaign> <up|down>", "Judge whether a campaign is legitimate", 2, func(args []string) (tx.FundTxType, any, error) {
			key, err := parseKey(args[0])
			if err != nil {
				return 0, nil, err
			}
			up, err := parseChoice(args[1], "up", "down")
			return tx.FundTxTypeModerate, &tx.ModerateTx{Campaign: key, ThumbsUp: up}, err
		}),
	)
}

var startCampaignCmd = simpleTxCmd("start-campaign <target> <rounds>", "Start a campaign owned by the signer", 2, func(args []string) (tx.FundTxType, any, error) {
	target, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil {
		return 0, nil, err
	}
	rounds, err := strconv.ParseUint(args[1], 10, 64)
	if err != nil {
		return 0, nil, err
	}
	body := &tx.StartCampaignTx{
		Description:        txArgs.Description,
		MetadataRef:        txArgs.MetadataRef,
		Target:             target,
		TotalRounds:        rounds,
		InitialRoundTarget: txArgs.RoundTarget,
	}
	if txArgs.Mint != "" {
		if body.TokenMint, err = parseAddress(txArgs.Mint); err != nil {
			return 0, nil, err
		}
	}
	return tx.FundTxTypeStartCampaign, body, nil
})

// simpleTxCmd takes exactly nargs positional arguments, or at most one when
// nargs is negative.
func simpleTxCmd(use, short string, nargs int, build func(args []string) (tx.FundTxType, any, error)) *cobra.Command {
	argsCheck := cobra.ExactArgs(nargs)
	if nargs < 0 {
		argsCheck = cobra.MaximumNArgs(1)
	}
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  argsCheck,
		RunE: func(cmd *cobra.Command, args []string) error {
			tp, body, err := build(args)
			if err != nil {
				return err
			}
			return sendTx(tp, body)
		},
	}
}

func campaignTxCmd(use, short string, tp tx.FundTxType, build func(key common.Hash) any) *cobra.Command {
	return simpleTxCmd(use, short, 1, func(args []string) (tx.FundTxType, any, error) {
		key, err := parseKey(args[0])
		if err != nil {
			return 0, nil, err
		}
		return tp, build(key), nil
	})
}

func parseAddress(s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("invalid address %q", s)
	}
	return common.HexToAddress(s), nil
}

func parseKey(s string) (common.Hash, error) {
	dat := common.FromHex(s)
	if len(dat) != common.HashLength {
		return common.Hash{}, fmt.Errorf("invalid campaign key %q", s)
	}
	return common.BytesToHash(dat), nil
}

func parseChoice(s, yes, no string) (bool, error) {
	switch s {
	case yes:
		return true, nil
	case no:
		return false, nil
	}
	return false, fmt.Errorf("expected %s or %s, got %q", yes, no, s)
}

func sendTx(tp tx.FundTxType, body any) error {
	pv, err := crypto.LoadFilePV(txArgs.Skey)
	if err != nil {
		return err
	}
	cli, err := http.New(txArgs.Url, "/websocket")
	if err != nil {
		return err
	}
	ctx := context.Background()
	gres, err := cli.Genesis(ctx)
	if err != nil {
		return fmt.Errorf("get chain genesis: %w", err)
	}
	var nonce uint64
	if txArgs.Nonce < 0 {
		if nonce, err = queryNonce(txArgs.Url, pv.Address()); err != nil {
			return err
		}
	} else {
		nonce = uint64(txArgs.Nonce)
	}
	btx, err := tx.NewSignedTx(pv, gres.Genesis.ChainID, tp, nonce, body)
	if err != nil {
		return err
	}
	dat, err := tx.MarshalFundTx(btx)
	if err != nil {
		return err
	}
	fmt.Println("sender:", pv.Address().Hex(), "type:", tp, "nonce:", nonce)
	if txArgs.NoSend {
		fmt.Println(string(dat))
		return nil
	}
	res, err := cli.BroadcastTxSync(ctx, dat)
	if err != nil {
		return fmt.Errorf("broadcast tx: %w", err)
	}
	out, _ := json.Marshal(res)
	fmt.Println(string(out))
	if res.Code != 0 {
		return fmt.Errorf("tx rejected: code %d %s", res.Code, res.Log)
	}
	return nil
}

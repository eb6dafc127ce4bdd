package handler

import (
	cmtlog "github.com/cometbft/cometbft/libs/log"

	"github.com/calehh/fund-app/state"
	"github.com/calehh/fund-app/tx"
	"github.com/calehh/fund-app/types"
)

func NewInitializeTxHandler(logger cmtlog.Logger) *OpTxHandler[tx.InitializeTx, *types.EventInitialize] {
	return newOpTxHandler[tx.InitializeTx, *types.EventInitialize](logger, "initializeTx", (*state.State).Initialize)
}

func NewStartCampaignTxHandler(logger cmtlog.Logger) *OpTxHandler[tx.StartCampaignTx, *types.EventStartCampaign] {
	return newOpTxHandler[tx.StartCampaignTx, *types.EventStartCampaign](logger, "startCampaignTx", (*state.State).StartCampaign)
}

func NewDonateTxHandler(logger cmtlog.Logger) *OpTxHandler[tx.DonateTx, *types.EventDonate] {
	return newOpTxHandler[tx.DonateTx, *types.EventDonate](logger, "donateTx", (*state.State).Donate)
}

func NewStartNextRoundTxHandler(logger cmtlog.Logger) *OpTxHandler[tx.StartNextRoundTx, *types.EventStartNextRound] {
	return newOpTxHandler[tx.StartNextRoundTx, *types.EventStartNextRound](logger, "startNextRoundTx", (*state.State).StartNextRound)
}

func NewWithdrawTxHandler(logger cmtlog.Logger) *OpTxHandler[tx.WithdrawTx, *types.EventWithdraw] {
	return newOpTxHandler[tx.WithdrawTx, *types.EventWithdraw](logger, "withdrawTx", (*state.State).Withdraw)
}

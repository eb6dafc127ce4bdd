package handler

import (
	cmtlog "github.com/cometbft/cometbft/libs/log"

	"github.com/calehh/fund-app/state"
	"github.com/calehh/fund-app/tx"
	"github.com/calehh/fund-app/types"
)

func NewInitializeStakingTxHandler(logger cmtlog.Logger) *OpTxHandler[tx.InitializeStakingTx, *types.EventInitializeStaking] {
	return newOpTxHandler[tx.InitializeStakingTx, *types.EventInitializeStaking](logger, "initializeStakingTx", (*state.State).InitializeStaking)
}

func NewStakeTxHandler(logger cmtlog.Logger) *OpTxHandler[tx.StakeTx, *types.EventStake] {
	return newOpTxHandler[tx.StakeTx, *types.EventStake](logger, "stakeTx", (*state.State).Stake)
}

func NewUnstakeTxHandler(logger cmtlog.Logger) *OpTxHandler[tx.UnstakeTx, *types.EventUnstake] {
	return newOpTxHandler[tx.UnstakeTx, *types.EventUnstake](logger, "unstakeTx", (*state.State).Unstake)
}

func NewInitStakerModerationTxHandler(logger cmtlog.Logger) *OpTxHandler[tx.InitStakerModerationTx, *types.EventRegisterModerator] {
	return newOpTxHandler[tx.InitStakerModerationTx, *types.EventRegisterModerator](logger, "initStakerModerationTx", (*state.State).InitStakerModeration)
}

func NewModerateTxHandler(logger cmtlog.Logger) *OpTxHandler[tx.ModerateTx, *types.EventModerate] {
	return newOpTxHandler[tx.ModerateTx, *types.EventModerate](logger, "moderateTx", (*state.State).Moderate)
}

package handler

import (
	cmtlog "github.com/cometbft/cometbft/libs/log"

	"github.com/calehh/fund-app/state"
	"github.com/calehh/fund-app/tx"
	"github.com/calehh/fund-app/types"
)

func NewInitializeVotingTxHandler(logger cmtlog.Logger) *OpTxHandler[tx.InitializeVotingTx, *types.EventInitializeVoting] {
	return newOpTxHandler[tx.InitializeVotingTx, *types.EventInitializeVoting](logger, "initializeVotingTx", (*state.State).InitializeVoting)
}

func NewInitDonatorVotingTxHandler(logger cmtlog.Logger) *OpTxHandler[tx.RegisterVoterTx, *types.EventRegisterVoter] {
	return newOpTxHandler[tx.RegisterVoterTx, *types.EventRegisterVoter](logger, "initDonatorVotingTx", (*state.State).InitDonatorVoting)
}

func NewInitStakerVotingTxHandler(logger cmtlog.Logger) *OpTxHandler[tx.RegisterVoterTx, *types.EventRegisterVoter] {
	return newOpTxHandler[tx.RegisterVoterTx, *types.EventRegisterVoter](logger, "initStakerVotingTx", (*state.State).InitStakerVoting)
}

func NewVoteTxHandler(logger cmtlog.Logger) *OpTxHandler[tx.VoteTx, *types.EventVote] {
	return newOpTxHandler[tx.VoteTx, *types.EventVote](logger, "voteTx", (*state.State).Vote)
}

func NewTallyVotesTxHandler(logger cmtlog.Logger) *OpTxHandler[tx.TallyVotesTx, *types.EventTallyVotes] {
	return newOpTxHandler[tx.TallyVotesTx, *types.EventTallyVotes](logger, "tallyVotesTx", (*state.State).TallyVotes)
}

package handler

import (
	"context"

	abcitypes "github.com/cometbft/cometbft/abci/types"
	cmtlog "github.com/cometbft/cometbft/libs/log"
	"github.com/ethereum/go-ethereum/common"

	"github.com/calehh/fund-app/state"
	"github.com/calehh/fund-app/tx"
	"github.com/calehh/fund-app/types"
)

type TxHandler interface {
	Check(ctx context.Context, st *state.State, btx *tx.FundTx) (res *abcitypes.ResponseCheckTx, err error)
	Prepare(ctx context.Context, st *state.State, btx *tx.FundTx) (res *abcitypes.ExecTxResult, err error)
	Process(ctx context.Context, st *state.State, btx *tx.FundTx) (res *abcitypes.ExecTxResult, err error)
}

// opFunc is the shape shared by every State operation.
type opFunc[T any, E types.Event] func(st *state.State, sender common.Address, body *T, checkOnly bool) (E, error)

// OpTxHandler runs one State operation. A failed operation is reported in
// the tx result and still consumes the sender nonce.
type OpTxHandler[T any, E types.Event] struct {
	logger cmtlog.Logger
	op     opFunc[T, E]
}

func newOpTxHandler[T any, E types.Event](logger cmtlog.Logger, name string, op opFunc[T, E]) *OpTxHandler[T, E] {
	return &OpTxHandler[T, E]{
		logger: logger.With("module", name),
		op:     op,
	}
}

func (h *OpTxHandler[T, E]) body(btx *tx.FundTx) (*T, error) {
	body, ok := btx.Tx.(*T)
	if !ok {
		return nil, tx.ErrInvalidTx
	}
	return body, nil
}

func (h *OpTxHandler[T, E]) Check(ctx context.Context, st *state.State, btx *tx.FundTx) (res *abcitypes.ResponseCheckTx, err error) {
	body, err := h.body(btx)
	if err != nil {
		return nil, err
	}
	res = &abcitypes.ResponseCheckTx{Code: 0}
	_, err1 := h.op(st, btx.SenderAddress(), body, true)
	if err1 != nil {
		h.logger.Info("CheckTx fail", "err", err1)
		res.Code = types.ErrorCode(err1)
		res.Codespace = types.Codespace
		res.Log = err1.Error()
	}
	return
}

// Prepare applies the operation and fails when it is rejected, so that the
// proposer leaves the tx out of its block.
func (h *OpTxHandler[T, E]) Prepare(ctx context.Context, st *state.State, btx *tx.FundTx) (res *abcitypes.ExecTxResult, err error) {
	body, err := h.body(btx)
	if err != nil {
		return nil, err
	}
	if err = st.IncrementNonce(btx); err != nil {
		return nil, err
	}
	event, err := h.op(st, btx.SenderAddress(), body, false)
	if err != nil {
		return nil, err
	}
	res = &abcitypes.ExecTxResult{}
	res.Events = append(res.Events, types.EncodeEvent(event))
	return
}

func (h *OpTxHandler[T, E]) Process(ctx context.Context, st *state.State, btx *tx.FundTx) (res *abcitypes.ExecTxResult, err error) {
	body, err := h.body(btx)
	if err != nil {
		return nil, err
	}
	if err = st.IncrementNonce(btx); err != nil {
		return nil, err
	}
	res = &abcitypes.ExecTxResult{}
	event, err1 := h.op(st, btx.SenderAddress(), body, false)
	if err1 != nil {
		h.logger.Info("tx rejected", "type", btx.Type, "err", err1)
		res.Code = types.ErrorCode(err1)
		res.Codespace = types.Codespace
		res.Log = err1.Error()
		return
	}
	res.Events = append(res.Events, types.EncodeEvent(event))
	return
}

// NewTxHandlers returns the handler of every supported tx type.
func NewTxHandlers(logger cmtlog.Logger) map[tx.FundTxType]TxHandler {
	return map[tx.FundTxType]TxHandler{
		tx.FundTxTypeInitialize:           NewInitializeTxHandler(logger),
		tx.FundTxTypeStartCampaign:        NewStartCampaignTxHandler(logger),
		tx.FundTxTypeDonate:               NewDonateTxHandler(logger),
		tx.FundTxTypeStartNextRound:       NewStartNextRoundTxHandler(logger),
		tx.FundTxTypeWithdraw:             NewWithdrawTxHandler(logger),
		tx.FundTxTypeInitializeVoting:     NewInitializeVotingTxHandler(logger),
		tx.FundTxTypeInitDonatorVoting:    NewInitDonatorVotingTxHandler(logger),
		tx.FundTxTypeInitStakerVoting:     NewInitStakerVotingTxHandler(logger),
		tx.FundTxTypeVote:                 NewVoteTxHandler(logger),
		tx.FundTxTypeTallyVotes:           NewTallyVotesTxHandler(logger),
		tx.FundTxTypeInitializeStaking:    NewInitializeStakingTxHandler(logger),
		tx.FundTxTypeStake:                NewStakeTxHandler(logger),
		tx.FundTxTypeUnstake:              NewUnstakeTxHandler(logger),
		tx.FundTxTypeInitStakerModeration: NewInitStakerModerationTxHandler(logger),
		tx.FundTxTypeModerate:             NewModerateTxHandler(logger),
	}
}

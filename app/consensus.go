package app

import (
	"context"
	"errors"

	abcitypes "github.com/cometbft/cometbft/abci/types"

	"github.com/calehh/fund-app/state"
	"github.com/calehh/fund-app/tx"
	"github.com/calehh/fund-app/tx/handler"
	"github.com/calehh/fund-app/types"
)

var (
	ErrUnexpectedTxProcess = errors.New("unexpected tx process")
	ErrNoBlockToCommit     = errors.New("no finalized block to commit")
)

// parseTx decodes a tx and checks its signature and nonce against st.
func (app *FundApp) parseTx(st *state.State, txDat []byte, allowNonceGap bool) (btx *tx.FundTx, h handler.TxHandler, err error) {
	btx, err = tx.UnmarshalFundTx(txDat)
	if err != nil {
		return
	}
	h, ok := app.txHdlrs[btx.Type]
	if !ok {
		return nil, nil, tx.ErrUnsupportedTxType
	}
	_, err = st.Verify(btx, allowNonceGap)
	return
}

func (app *FundApp) CheckTx(ctx context.Context, check *abcitypes.RequestCheckTx) (res *abcitypes.ResponseCheckTx, err error) {
	res = &abcitypes.ResponseCheckTx{Code: 0}
	btx, h, err := app.parseTx(app.db.State(), check.Tx, true)
	if err != nil {
		app.logger.Error("parse tx fail", "err", err)
		res.Code = types.ErrorCode(err)
		res.Codespace = types.Codespace
		res.Log = err.Error()
		err = nil
		return
	}
	app.logger.Debug("check tx", "type", btx.Type)
	res, err = h.Check(ctx, app.db.NewState(), btx)
	if err != nil {
		app.logger.Error("check tx fail", "err", err)
		res = &abcitypes.ResponseCheckTx{
			Code:      types.ErrorCode(err),
			Codespace: types.Codespace,
			Log:       err.Error(),
		}
		err = nil
	}
	return
}

// PrepareProposal keeps, in order, the txs that apply cleanly on top of
// each other.
func (app *FundApp) PrepareProposal(ctx context.Context, proposal *abcitypes.RequestPrepareProposal) (res *abcitypes.ResponsePrepareProposal, err error) {
	app.logger.Info("PrepareProposal", "height", proposal.Height, "txs", len(proposal.Txs))
	st := app.db.NewState()
	st.SetBlockTime(proposal.Time)
	txs := make([][]byte, 0, len(proposal.Txs))
	var size int64
	for _, stx := range proposal.Txs {
		if size+int64(len(stx)) > proposal.MaxTxBytes {
			break
		}
		stTmp := st.Clone()
		btx, h, err := app.parseTx(stTmp, stx, false)
		if err != nil {
			app.logger.Error("drop tx, parse fail", "err", err)
			continue
		}
		if _, err = h.Prepare(ctx, stTmp, btx); err != nil {
			app.logger.Info("drop tx, prepare fail", "type", btx.Type, "err", err)
			continue
		}
		st = stTmp
		size += int64(len(stx))
		txs = append(txs, stx)
	}
	return &abcitypes.ResponsePrepareProposal{Txs: txs}, nil
}

// process runs txs in order. Malformed or badly signed txs get a failing
// result and change nothing; rejected operations only consume the nonce.
func (app *FundApp) process(ctx context.Context, st *state.State, txs [][]byte) (res []*abcitypes.ExecTxResult, invalid int, err error) {
	res = make([]*abcitypes.ExecTxResult, len(txs))
	for i, stx := range txs {
		btx, h, err1 := app.parseTx(st, stx, false)
		if err1 != nil {
			app.logger.Error("invalid tx in block", "index", i, "err", err1)
			res[i] = &abcitypes.ExecTxResult{
				Code:      types.ErrorCode(err1),
				Codespace: types.Codespace,
				Log:       err1.Error(),
			}
			invalid++
			continue
		}
		result, err1 := h.Process(ctx, st, btx)
		if err1 != nil {
			app.logger.Error("unexpected process tx fail", "type", btx.Type, "err", err1)
			return nil, 0, errors.Join(ErrUnexpectedTxProcess, err1)
		}
		result.GasWanted = 1
		result.GasUsed = 1
		res[i] = result
	}
	return
}

func (app *FundApp) ProcessProposal(ctx context.Context, proposal *abcitypes.RequestProcessProposal) (res *abcitypes.ResponseProcessProposal, err error) {
	app.logger.Info("ProcessProposal", "height", proposal.Height, "txs", len(proposal.Txs))
	res = &abcitypes.ResponseProcessProposal{Status: abcitypes.ResponseProcessProposal_REJECT}
	st := app.db.NewState()
	st.SetBlockTime(proposal.Time)
	_, invalid, err := app.process(ctx, st, proposal.Txs)
	if err != nil {
		app.logger.Error("process fail", "err", err)
		return res, nil
	}
	if invalid > 0 {
		app.logger.Error("proposal carries invalid txs", "height", proposal.Height, "invalid", invalid)
		return res, nil
	}
	res.Status = abcitypes.ResponseProcessProposal_ACCEPT
	return res, nil
}

func (app *FundApp) FinalizeBlock(ctx context.Context, req *abcitypes.RequestFinalizeBlock) (*abcitypes.ResponseFinalizeBlock, error) {
	app.logger.Info("FinalizeBlock", "height", req.Height, "txs", len(req.Txs))
	st := app.db.NewState()
	st.SetBlockTime(req.Time)
	res, _, err := app.process(ctx, st, req.Txs)
	if err != nil {
		return nil, err
	}
	h, err := st.Update()
	if err != nil {
		app.logger.Error("state update hash fail", "err", err)
		return nil, err
	}
	app.st = st
	return &abcitypes.ResponseFinalizeBlock{
		TxResults: res,
		AppHash:   h.Bytes(),
	}, nil
}

func (app *FundApp) Commit(ctx context.Context, commit *abcitypes.RequestCommit) (*abcitypes.ResponseCommit, error) {
	if app.st == nil {
		return nil, ErrNoBlockToCommit
	}
	_, err := app.db.SetState(app.st)
	if err != nil {
		return nil, err
	}
	app.st = nil
	app.logger.Info("Commit", "height", app.db.Header().Height)
	return &abcitypes.ResponseCommit{}, nil
}

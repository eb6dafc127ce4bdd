package app

import (
	"context"

	abcitypes "github.com/cometbft/cometbft/abci/types"
	cmtlog "github.com/cometbft/cometbft/libs/log"
	"github.com/ethereum/go-ethereum/common"

	"github.com/calehh/fund-app/config"
	"github.com/calehh/fund-app/state"
	"github.com/calehh/fund-app/tx"
	"github.com/calehh/fund-app/tx/handler"
	"github.com/calehh/fund-app/types"
)

const AppVersion = 1

var _ abcitypes.Application = &FundApp{}

type FundApp struct {
	logger cmtlog.Logger

	db       *state.StateDB
	txHdlrs  map[tx.FundTxType]handler.TxHandler
	queriers map[string]Querier

	// st is the block being finalized, saved on Commit.
	st *state.State
}

func NewFundApp(cfg *config.AppConfig, logger cmtlog.Logger, opts ...state.Option) (app *FundApp, err error) {
	db, err := state.NewStateDB(cfg.DataDir(), logger, opts...)
	if err != nil {
		return nil, err
	}
	return NewFundAppWithDB(db, logger), nil
}

func NewFundAppWithDB(db *state.StateDB, logger cmtlog.Logger) (app *FundApp) {
	logger = logger.With("module", "app")
	app = &FundApp{
		logger:   logger,
		db:       db,
		txHdlrs:  handler.NewTxHandlers(logger),
		queriers: make(map[string]Querier),
	}
	app.registerQuerier()
	return
}

func (app *FundApp) StateDB() *state.StateDB {
	return app.db
}

func (app *FundApp) Stop() {
	err := app.db.Close()
	if err != nil {
		app.logger.Error("close db fail", "err", err)
	}
	app.logger.Info("fund app stopped")
}

func (app *FundApp) registerQuerier() {
	app.queriers["/config/"] = NewConfigQuerier(app.db, app.logger)
	app.queriers["/campaigns/"] = NewCampaignQuerier(app.db, app.logger)
	app.queriers["/records/"] = NewRecordQuerier(app.db, app.logger)
	app.queriers["/balances/"] = NewBalanceQuerier(app.db, app.logger)
	app.queriers["/nonces/"] = NewNonceQuerier(app.db, app.logger)
}

// InitChain loads the genesis app_state. When it names an admin and a
// native mint the config is created right away instead of by an
// Initialize tx.
func (app *FundApp) InitChain(_ context.Context, chain *abcitypes.RequestInitChain) (res *abcitypes.ResponseInitChain, err error) {
	if header := app.db.Header(); header.Hash != nil {
		app.logger.Info("InitChain skipped, genesis already applied", "height", header.Height)
		return &abcitypes.ResponseInitChain{AppHash: header.Hash}, nil
	}
	appState, err := types.ParseAppState(chain.AppStateBytes)
	if err != nil {
		app.logger.Error("InitChain parse app state fail", "err", err)
		return nil, err
	}
	st := app.db.NewState()
	st.SetChainId(chain.ChainId)
	st.SetBlockTime(chain.Time)
	if err = st.SetGenesis(appState); err != nil {
		app.logger.Error("InitChain set genesis fail", "err", err)
		return nil, err
	}
	if appState.Admin != (common.Address{}) && appState.NativeTokenMint != (common.Address{}) {
		_, err = st.Initialize(appState.Admin, &tx.InitializeTx{NativeTokenMint: appState.NativeTokenMint}, false)
		if err != nil {
			app.logger.Error("InitChain initialize config fail", "err", err)
			return nil, err
		}
	}
	_, err = st.Update()
	if err != nil {
		app.logger.Error("InitChain update state fail", "err", err)
		return nil, err
	}
	h, err := app.db.SetState(st)
	if err != nil {
		app.logger.Error("InitChain apply state fail", "err", err)
		return nil, err
	}
	app.logger.Info("InitChain", "chainId", chain.ChainId, "admin", appState.Admin, "balances", len(appState.Balances))
	return &abcitypes.ResponseInitChain{
		AppHash: h.Bytes(),
	}, nil
}

func (app *FundApp) Info(ctx context.Context, info *abcitypes.RequestInfo) (*abcitypes.ResponseInfo, error) {
	header := app.db.Header()
	return &abcitypes.ResponseInfo{
		Data:             "fund",
		AppVersion:       AppVersion,
		LastBlockHeight:  int64(header.Height),
		LastBlockAppHash: header.Hash,
	}, nil
}

func (app *FundApp) ExtendVote(_ context.Context, extend *abcitypes.RequestExtendVote) (*abcitypes.ResponseExtendVote, error) {
	return &abcitypes.ResponseExtendVote{}, nil
}

func (app *FundApp) VerifyVoteExtension(_ context.Context, verify *abcitypes.RequestVerifyVoteExtension) (*abcitypes.ResponseVerifyVoteExtension, error) {
	return &abcitypes.ResponseVerifyVoteExtension{Status: abcitypes.ResponseVerifyVoteExtension_ACCEPT}, nil
}

func (app *FundApp) ApplySnapshotChunk(context.Context, *abcitypes.RequestApplySnapshotChunk) (*abcitypes.ResponseApplySnapshotChunk, error) {
	return &abcitypes.ResponseApplySnapshotChunk{}, nil
}

func (app *FundApp) ListSnapshots(context.Context, *abcitypes.RequestListSnapshots) (*abcitypes.ResponseListSnapshots, error) {
	return &abcitypes.ResponseListSnapshots{}, nil
}

func (app *FundApp) LoadSnapshotChunk(context.Context, *abcitypes.RequestLoadSnapshotChunk) (*abcitypes.ResponseLoadSnapshotChunk, error) {
	return &abcitypes.ResponseLoadSnapshotChunk{}, nil
}

func (app *FundApp) OfferSnapshot(context.Context, *abcitypes.RequestOfferSnapshot) (*abcitypes.ResponseOfferSnapshot, error) {
	return &abcitypes.ResponseOfferSnapshot{}, nil
}

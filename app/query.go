package app

import (
	"context"
	"encoding/json"
	"strings"

	abcitypes "github.com/cometbft/cometbft/abci/types"
	cmtlog "github.com/cometbft/cometbft/libs/log"
	"github.com/ethereum/go-ethereum/common"

	"github.com/calehh/fund-app/state"
)

const (
	QueryCodeNotFound   = 1
	QueryCodeBadRequest = 2
	QueryCodeNoPath     = 404
)

func (app *FundApp) Query(ctx context.Context, req *abcitypes.RequestQuery) (res *abcitypes.ResponseQuery, err error) {
	path := req.Path
	if !strings.HasSuffix(path, "/") {
		path += "/"
	}
	q, ok := app.queriers[path]
	if !ok {
		res = &abcitypes.ResponseQuery{}
		res.Code = QueryCodeNoPath
		return
	}
	res, err = q.Query(ctx, req)
	return
}

type Querier interface {
	Query(ctx context.Context, req *abcitypes.RequestQuery) (res *abcitypes.ResponseQuery, err error)
}

type querier struct {
	db     *state.StateDB
	logger cmtlog.Logger
}

// respond encodes v as json; a nil v or a lookup error is reported as not found.
func (q *querier) respond(v any, height uint64, err error) (res *abcitypes.ResponseQuery) {
	res = &abcitypes.ResponseQuery{Height: int64(height)}
	if err != nil {
		q.logger.Error("query fail", "err", err)
		res.Code = QueryCodeNotFound
		res.Log = err.Error()
		return
	}
	if v == nil {
		res.Code = QueryCodeNotFound
		return
	}
	res.Value, err = json.Marshal(v)
	if err != nil {
		res.Code = QueryCodeNotFound
		res.Log = err.Error()
	}
	return
}

func badRequest(log string) *abcitypes.ResponseQuery {
	return &abcitypes.ResponseQuery{Code: QueryCodeBadRequest, Log: log}
}

type ConfigQuerier struct{ querier }

func NewConfigQuerier(db *state.StateDB, logger cmtlog.Logger) *ConfigQuerier {
	return &ConfigQuerier{querier{db: db, logger: logger}}
}

func (q *ConfigQuerier) Query(ctx context.Context, req *abcitypes.RequestQuery) (res *abcitypes.ResponseQuery, err error) {
	cfg, height, err := q.db.GetConfig()
	if cfg == nil {
		return q.respond(nil, height, err), nil
	}
	return q.respond(cfg, height, err), nil
}

// CampaignQuerier looks a campaign up by its key (32 bytes) or by its
// owner address (20 bytes).
type CampaignQuerier struct{ querier }

func NewCampaignQuerier(db *state.StateDB, logger cmtlog.Logger) *CampaignQuerier {
	return &CampaignQuerier{querier{db: db, logger: logger}}
}

func (q *CampaignQuerier) Query(ctx context.Context, req *abcitypes.RequestQuery) (res *abcitypes.ResponseQuery, err error) {
	switch len(req.Data) {
	case common.AddressLength:
		c, height, err := q.db.GetCampaignByOwner(common.BytesToAddress(req.Data))
		if c == nil {
			return q.respond(nil, height, err), nil
		}
		return q.respond(c, height, err), nil
	case common.HashLength:
		c, height, err := q.db.GetCampaign(common.BytesToHash(req.Data))
		if c == nil {
			return q.respond(nil, height, err), nil
		}
		return q.respond(c, height, err), nil
	default:
		return badRequest("campaign query takes an owner address or a campaign key"), nil
	}
}

// RecordQuerier returns the raw json of any record by key.
type RecordQuerier struct{ querier }

func NewRecordQuerier(db *state.StateDB, logger cmtlog.Logger) *RecordQuerier {
	return &RecordQuerier{querier{db: db, logger: logger}}
}

func (q *RecordQuerier) Query(ctx context.Context, req *abcitypes.RequestQuery) (res *abcitypes.ResponseQuery, err error) {
	if len(req.Data) != common.HashLength {
		return badRequest("record query takes a 32 byte key"), nil
	}
	val, height, err := q.db.GetRecord(common.BytesToHash(req.Data))
	res = &abcitypes.ResponseQuery{Height: int64(height), Value: val}
	if err != nil {
		res.Code = QueryCodeNotFound
		res.Log = err.Error()
	} else if val == nil {
		res.Code = QueryCodeNotFound
	}
	return res, nil
}

type BalanceResponse struct {
	Mint    common.Address `json:"mint"`
	Account common.Address `json:"account"`
	Amount  uint64         `json:"amount"`
}

// BalanceQuerier takes mint||account.
type BalanceQuerier struct{ querier }

func NewBalanceQuerier(db *state.StateDB, logger cmtlog.Logger) *BalanceQuerier {
	return &BalanceQuerier{querier{db: db, logger: logger}}
}

func (q *BalanceQuerier) Query(ctx context.Context, req *abcitypes.RequestQuery) (res *abcitypes.ResponseQuery, err error) {
	if len(req.Data) != 2*common.AddressLength {
		return badRequest("balance query takes mint and account addresses"), nil
	}
	b := &BalanceResponse{
		Mint:    common.BytesToAddress(req.Data[:common.AddressLength]),
		Account: common.BytesToAddress(req.Data[common.AddressLength:]),
	}
	var height uint64
	b.Amount, height, err = q.db.GetBalance(b.Mint, b.Account)
	return q.respond(b, height, err), nil
}

type NonceResponse struct {
	Address common.Address `json:"address"`
	Nonce   uint64         `json:"nonce"`
}

// NonceQuerier reports the next nonce expected from an address. Unknown
// addresses start at zero.
type NonceQuerier struct{ querier }

func NewNonceQuerier(db *state.StateDB, logger cmtlog.Logger) *NonceQuerier {
	return &NonceQuerier{querier{db: db, logger: logger}}
}

func (q *NonceQuerier) Query(ctx context.Context, req *abcitypes.RequestQuery) (res *abcitypes.ResponseQuery, err error) {
	if len(req.Data) != common.AddressLength {
		return badRequest("nonce query takes an address"), nil
	}
	n := &NonceResponse{Address: common.BytesToAddress(req.Data)}
	a, height, err := q.db.GetAccount(n.Address)
	if a != nil {
		n.Nonce = a.Nonce
	}
	return q.respond(n, height, err), nil
}

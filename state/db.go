package state

import (
	"sync"

	cmtlog "github.com/cometbft/cometbft/libs/log"
	"github.com/cosmos/iavl"
	dbm "github.com/cosmos/iavl/db"
	"github.com/ethereum/go-ethereum/common"

	"github.com/calehh/fund-app/types"
)

type Option func(*StateDB)

// WithCustodian routes token movements through c instead of the in-tree
// ledger.
func WithCustodian(c Custodian) Option {
	return func(db *StateDB) {
		db.custodian = c
	}
}

func WithKeyDeriver(k types.KeyDeriver) Option {
	return func(db *StateDB) {
		db.keys = k
	}
}

// StateDB owns the committed State and hands out per-block successors.
type StateDB struct {
	mtx sync.RWMutex

	dir    string
	logger cmtlog.Logger
	db     *iavl.MutableTree

	keys      types.KeyDeriver
	custodian Custodian

	state *State
}

func NewStateDB(dir string, logger cmtlog.Logger, opts ...Option) (*StateDB, error) {
	logger = logger.With("module", "funddb")
	ldb, err := dbm.NewDB("fund", "goleveldb", dir)
	if err != nil {
		return nil, err
	}
	return openStateDB(dir, ldb, logger, opts...)
}

// NewMemStateDB opens a StateDB that lives only in memory.
func NewMemStateDB(logger cmtlog.Logger, opts ...Option) (*StateDB, error) {
	return openStateDB("", dbm.NewMemDB(), logger.With("module", "funddb"), opts...)
}

func openStateDB(dir string, ldb dbm.DB, logger cmtlog.Logger, opts ...Option) (db *StateDB, err error) {
	db = &StateDB{
		dir:    dir,
		logger: logger,
		keys:   types.Keccak{},
	}
	for _, opt := range opts {
		opt(db)
	}
	tdb := iavl.NewMutableTree(ldb, 128, true, IavlLogger(logger))
	version, err := tdb.Load()
	if err != nil {
		return nil, err
	}
	logger.Info("load db success", "version", version)
	st := newState(tdb, logger, db.keys, db.custodian)
	st.dbVer = version
	if err = st.load(); err != nil {
		logger.Error("from funddb load fail", "err", err)
		return nil, err
	}
	db.db = tdb
	db.state = st
	return
}

func (db *StateDB) Close() (err error) {
	err = db.db.Close()
	return
}

func (db *StateDB) Header() (header *StateHeader) {
	db.mtx.RLock()
	defer db.mtx.RUnlock()
	header = db.state.Header()
	return
}

func (db *StateDB) State() *State {
	db.mtx.RLock()
	defer db.mtx.RUnlock()
	return db.state
}

func (db *StateDB) NewState() (st *State) {
	db.mtx.RLock()
	defer db.mtx.RUnlock()
	st = db.state.nextState()
	return
}

func (db *StateDB) SetState(st *State) (hash common.Hash, err error) {
	db.mtx.Lock()
	defer db.mtx.Unlock()
	hash, err = st.save()
	if err != nil {
		return
	}
	db.state = st
	return
}

func (db *StateDB) GetConfig() (cfg *types.Config, height uint64, err error) {
	db.mtx.RLock()
	defer db.mtx.RUnlock()
	cfg, err = db.state.getConfig()
	height = db.state.header.Height
	return
}

func (db *StateDB) GetCampaign(key common.Hash) (c *types.Campaign, height uint64, err error) {
	db.mtx.RLock()
	defer db.mtx.RUnlock()
	c, err = db.state.getCampaign(key)
	height = db.state.header.Height
	return
}

func (db *StateDB) GetCampaignByOwner(owner common.Address) (c *types.Campaign, height uint64, err error) {
	return db.GetCampaign(db.keys.CampaignKey(owner))
}

// GetRecord returns the JSON encoding of any record, or nil if absent.
func (db *StateDB) GetRecord(key common.Hash) (val []byte, height uint64, err error) {
	db.mtx.RLock()
	defer db.mtx.RUnlock()
	val, err = db.state.RawRecord(key)
	val = common.CopyBytes(val)
	height = db.state.header.Height
	return
}

func (db *StateDB) GetBalance(mint, account common.Address) (amount uint64, height uint64, err error) {
	db.mtx.RLock()
	defer db.mtx.RUnlock()
	amount, err = db.state.TokenBalance(mint, account)
	height = db.state.header.Height
	return
}

func (db *StateDB) GetAccount(addr common.Address) (acnt *Account, height uint64, err error) {
	db.mtx.RLock()
	defer db.mtx.RUnlock()
	acnt, err = db.state.GetAccount(addr)
	if err != nil {
		return
	}
	if acnt != nil {
		acnt = acnt.Clone()
	}
	height = db.state.header.Height
	return
}

package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"sort"
	"time"

	"github.com/cometbft/cometbft/crypto/ed25519"
	cmtlog "github.com/cometbft/cometbft/libs/log"
	"github.com/cosmos/iavl"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/syndtr/goleveldb/leveldb"

	"github.com/calehh/fund-app/tx"
	"github.com/calehh/fund-app/types"
)

var (
	KeyState     = "s"
	KeyGenesis   = "g"
	KeyRecord    = "r%x"
	KeyAccount   = "a%x"
	KeyBalance   = "b%x%x"
	KeyAuthority = "o%x%x"
)

var (
	ErrTxNonceInvalid  = errors.New("nonce invalid")
	ErrTxSigInvalid    = errors.New("signature invalid")
	ErrTxSenderInvalid = errors.New("sender public key invalid")
)

type StateHeader struct {
	ChainId  string
	Height   uint64
	Time     uint64
	RootHash []byte
	Hash     []byte
}

func (h *StateHeader) clone() *StateHeader {
	n := *h
	n.RootHash = common.CopyBytes(h.RootHash)
	n.Hash = common.CopyBytes(h.Hash)
	return &n
}

// State is one block's view of the record arena. Writes are buffered in
// dirty until Update flushes them into the tree; a nil value marks a
// deletion.
type State struct {
	logger cmtlog.Logger
	db     *iavl.MutableTree
	dbVer  int64

	header    *StateHeader
	dirty     map[string][]byte
	keys      types.KeyDeriver
	custodian Custodian
}

func newState(db *iavl.MutableTree, logger cmtlog.Logger, keys types.KeyDeriver, custodian Custodian) *State {
	return &State{
		logger:    logger,
		db:        db,
		dbVer:     0,
		header:    new(StateHeader),
		dirty:     make(map[string][]byte),
		keys:      keys,
		custodian: custodian,
	}
}

func (s *State) nextState() *State {
	n := &State{
		logger:    s.logger,
		db:        s.db,
		dbVer:     s.dbVer,
		header:    s.header.clone(),
		dirty:     make(map[string][]byte),
		keys:      s.keys,
		custodian: s.custodian,
	}
	if s.header.Hash != nil {
		n.header.Height = s.header.Height + 1
	}
	return n
}

// Clone copies the pending write-set so that a speculative block can be
// applied and thrown away.
func (s *State) Clone() *State {
	n := &State{
		logger:    s.logger,
		db:        s.db,
		dbVer:     s.dbVer,
		header:    s.header.clone(),
		dirty:     maps.Clone(s.dirty),
		keys:      s.keys,
		custodian: s.custodian,
	}
	return n
}

func (s *State) load() (err error) {
	val, err := s.db.Get([]byte(KeyState))
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return nil
		}
		return err
	}
	if val != nil {
		err = rlp.DecodeBytes(val, s.header)
		if err != nil {
			return
		}
		h := s.db.Hash()
		if h != nil {
			s.calcHash(h, true)
		}
	}
	return
}

func (s *State) calcHash(rootHash []byte, update bool) (h common.Hash) {
	h = crypto.Keccak256Hash(rootHash)
	if update {
		s.header.RootHash = common.CopyBytes(rootHash)
		s.header.Hash = h.Bytes()
	}
	return
}

// Update writes the pending records into the working tree and returns the
// resulting app hash.
func (s *State) Update() (h common.Hash, err error) {
	var hash []byte
	defer func() {
		if hash == nil {
			s.db.Rollback()
		}
	}()
	val, err := rlp.EncodeToBytes(s.header)
	if err != nil {
		return
	}
	_, err = s.db.Set([]byte(KeyState), val)
	if err != nil {
		return
	}

	keys := make([]string, 0, len(s.dirty))
	for k := range s.dirty {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v := s.dirty[k]
		if v == nil {
			_, _, err = s.db.Remove([]byte(k))
		} else {
			_, err = s.db.Set([]byte(k), v)
		}
		if err != nil {
			return
		}
	}
	hash = s.db.WorkingHash()
	h = s.calcHash(hash, false)
	s.dirty = make(map[string][]byte)
	return
}

func (s *State) save() (h common.Hash, err error) {
	hash, ver, err := s.db.SaveVersion()
	if err != nil {
		return h, err
	}
	s.dbVer = ver
	h = s.calcHash(hash, true)
	return
}

// exec runs fn against the pending write-set and restores it when fn fails
// or when only a check was requested.
func (s *State) exec(checkOnly bool, fn func() error) error {
	snapshot := maps.Clone(s.dirty)
	if err := fn(); err != nil {
		s.dirty = snapshot
		return err
	}
	if checkOnly {
		s.dirty = snapshot
	}
	return nil
}

func (s *State) get(key string) ([]byte, error) {
	if v, ok := s.dirty[key]; ok {
		return v, nil
	}
	val, err := s.db.Get([]byte(key))
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return val, nil
}

func (s *State) set(key string, val []byte) {
	s.dirty[key] = val
}

func (s *State) remove(key string) {
	s.dirty[key] = nil
}

func getRecord[T any](s *State, key common.Hash) (*T, error) {
	val, err := s.get(fmt.Sprintf(KeyRecord, key))
	if err != nil || val == nil {
		return nil, err
	}
	rec := new(T)
	if err = json.Unmarshal(val, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *State) putRecord(key common.Hash, rec any) error {
	val, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	s.set(fmt.Sprintf(KeyRecord, key), val)
	return nil
}

func (s *State) deleteRecord(key common.Hash) {
	s.remove(fmt.Sprintf(KeyRecord, key))
}

// RawRecord returns the encoded record stored under key, or nil.
func (s *State) RawRecord(key common.Hash) ([]byte, error) {
	return s.get(fmt.Sprintf(KeyRecord, key))
}

func (s *State) Header() *StateHeader {
	return s.header
}

func (s *State) Hash() (h common.Hash) {
	if s.header.Hash != nil {
		copy(h[:], s.header.Hash)
	}
	return
}

func (s *State) Keys() types.KeyDeriver {
	return s.keys
}

func (s *State) SetChainId(chainId string) {
	s.header.ChainId = chainId
}

// SetBlockTime sets the clock every time-dependent rule reads.
func (s *State) SetBlockTime(t time.Time) {
	s.header.Time = uint64(t.Unix())
}

func (s *State) now() int64 {
	return int64(s.header.Time)
}

// SetGenesis stores the genesis governance params and credits the genesis
// token balances.
func (s *State) SetGenesis(app *types.AppState) error {
	val, err := json.Marshal(app.Params)
	if err != nil {
		return err
	}
	s.set(KeyGenesis, val)
	ledger := &Ledger{st: s}
	for _, b := range app.Balances {
		if err = ledger.Mint(b.Mint, b.Account, b.Amount); err != nil {
			return err
		}
	}
	return nil
}

func (s *State) genesisParams() (types.Params, error) {
	val, err := s.get(KeyGenesis)
	if err != nil || val == nil {
		return types.DefaultParams(), err
	}
	var p types.Params
	err = json.Unmarshal(val, &p)
	return p, err
}

func (s *State) Verify(btx *tx.FundTx, allowNonceGap bool) (succ bool, err error) {
	if len(btx.Sender) != ed25519.PubKeySize {
		err = ErrTxSenderInvalid
		return
	}
	a, err := s.GetAccount(btx.SenderAddress())
	if err != nil {
		return succ, err
	}
	if a == nil {
		a = &Account{PubKey: btx.Sender}
	}
	if !(a.Nonce == btx.Nonce || (allowNonceGap && a.Nonce < btx.Nonce)) {
		err = ErrTxNonceInvalid
		return
	}
	dat, err := btx.SigData([]byte(s.header.ChainId))
	if err != nil {
		return succ, err
	}
	succ = a.Verify(dat, btx.Sig)
	if !succ {
		err = ErrTxSigInvalid
	}
	return
}

func (s *State) GetAccount(addr common.Address) (acnt *Account, err error) {
	val, err := s.get(fmt.Sprintf(KeyAccount, addr))
	if err != nil || val == nil {
		return nil, err
	}
	acnt = new(Account)
	if err = rlp.DecodeBytes(val, acnt); err != nil {
		return nil, err
	}
	return
}

// IncrementNonce bumps the sender nonce. It runs outside exec so that a
// rejected operation still consumes its nonce.
func (s *State) IncrementNonce(btx *tx.FundTx) error {
	addr := btx.SenderAddress()
	a, err := s.GetAccount(addr)
	if err != nil {
		return err
	}
	if a == nil {
		a = &Account{PubKey: common.CopyBytes(btx.Sender)}
	}
	a.Nonce += 1
	val, err := rlp.EncodeToBytes(a)
	if err != nil {
		return err
	}
	s.set(fmt.Sprintf(KeyAccount, addr), val)
	return nil
}

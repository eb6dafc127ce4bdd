package types

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/cometbft/cometbft/crypto"
	cmtjson "github.com/cometbft/cometbft/libs/json"
	cmttypes "github.com/cometbft/cometbft/types"
	"github.com/ethereum/go-ethereum/common"
)

type GenesisValidator struct {
	Address crypto.Address `json:"address"`
	PubKey  crypto.PubKey  `json:"pub_key"`
	Power   int64          `json:"power"`
	Name    string         `json:"name"`
}

// GenesisDoc defines the initial conditions for a CometBFT blockchain, in particular its validator set.
type GenesisDoc struct {
	GenesisTime     time.Time                 `json:"genesis_time"`
	ChainID         string                    `json:"chain_id"`
	InitialHeight   int64                     `json:"initial_height"`
	ConsensusParams *cmttypes.ConsensusParams `json:"consensus_params,omitempty"`
	Validators      []GenesisValidator        `json:"validators"`
	AppHash         []byte                    `json:"app_hash"`
	AppState        json.RawMessage           `json:"app_state"`
}

// SaveAs is a utility method for saving GenensisDoc as a JSON file.
func (genDoc *GenesisDoc) SaveAs(file string) error {
	genDocBytes, err := cmtjson.MarshalIndent(genDoc, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(file, genDocBytes, 0o600)
}

func (ag *GenesisDoc) ValidateAndComplete() error {
	if ag.ChainID == "" {
		return errors.New("genesis doc must include non-empty chain_id")
	}

	if ag.InitialHeight < 0 {
		return fmt.Errorf("initial_height cannot be negative (got %v)", ag.InitialHeight)
	}

	if ag.InitialHeight == 0 {
		ag.InitialHeight = 1
	}

	if ag.GenesisTime.IsZero() {
		ag.GenesisTime = time.Now().Round(0).UTC()
	}

	return nil
}

func ExportGenesisFile(genesis *GenesisDoc, genFile string) error {
	if err := genesis.ValidateAndComplete(); err != nil {
		return err
	}
	return genesis.SaveAs(genFile)
}

const DefaultPower = 1000

// AppState is the application part of the genesis document.
type AppState struct {
	Admin           common.Address   `json:"admin"`
	NativeTokenMint common.Address   `json:"native_token_mint"`
	Params          Params           `json:"params"`
	Balances        []GenesisBalance `json:"balances"`
}

// GenesisBalance credits a token account at genesis.
type GenesisBalance struct {
	Mint    common.Address `json:"mint"`
	Account common.Address `json:"account"`
	Amount  uint64         `json:"amount"`
}

func (s *AppState) Validate() error {
	if err := s.Params.Validate(); err != nil {
		return err
	}
	for _, b := range s.Balances {
		if b.Mint == (common.Address{}) {
			return ErrEmptyMint
		}
	}
	return nil
}

// ParseAppState decodes app_state; an empty document yields default params.
func ParseAppState(dat []byte) (*AppState, error) {
	st := &AppState{Params: DefaultParams()}
	if len(dat) == 0 {
		return st, nil
	}
	if err := json.Unmarshal(dat, st); err != nil {
		return nil, err
	}
	if err := st.Validate(); err != nil {
		return nil, err
	}
	return st, nil
}

package state

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/calehh/fund-app/types"
)

// Custodian moves tokens for the escrow. Accounts opened with an authority
// (campaign vaults, the staking pool) only release funds when the
// authorizer matches it; every other account must authorize itself.
type Custodian interface {
	OpenAccount(mint, account, authority common.Address) error
	Transfer(mint, from, to, authorizer common.Address, amount uint64) error
	CloseAccount(mint, account, destination, authorizer common.Address) error
	Balance(mint, account common.Address) (uint64, error)
}

var (
	ErrInsufficientFunds    = errors.New("insufficient funds")
	ErrAccountExists        = errors.New("token account already opened by another authority")
	ErrTransferUnauthorized = errors.New("transfer not authorized")
)

// Ledger is the default Custodian. Balances live in the state tree so they
// share the write-set, and the revert, of the operation that moves them.
type Ledger struct {
	st *State
}

var _ Custodian = (*Ledger)(nil)

func (s *State) tokens() Custodian {
	if s.custodian != nil {
		return s.custodian
	}
	return &Ledger{st: s}
}

func (l *Ledger) authority(mint, account common.Address) (auth common.Address, owned bool, err error) {
	val, err := l.st.get(fmt.Sprintf(KeyAuthority, mint, account))
	if err != nil || val == nil {
		return auth, false, err
	}
	return common.BytesToAddress(val), true, nil
}

func (l *Ledger) Balance(mint, account common.Address) (amount uint64, err error) {
	val, err := l.st.get(fmt.Sprintf(KeyBalance, mint, account))
	if err != nil || val == nil {
		return 0, err
	}
	err = rlp.DecodeBytes(val, &amount)
	return
}

func (l *Ledger) setBalance(mint, account common.Address, amount uint64) error {
	key := fmt.Sprintf(KeyBalance, mint, account)
	if amount == 0 {
		l.st.remove(key)
		return nil
	}
	val, err := rlp.EncodeToBytes(amount)
	if err != nil {
		return err
	}
	l.st.set(key, val)
	return nil
}

// Mint credits amount out of thin air; only genesis and tests use it.
func (l *Ledger) Mint(mint, account common.Address, amount uint64) error {
	bal, err := l.Balance(mint, account)
	if err != nil {
		return err
	}
	bal, overflow := math.SafeAdd(bal, amount)
	if overflow {
		return types.ErrOverflow
	}
	return l.setBalance(mint, account, bal)
}

func (l *Ledger) OpenAccount(mint, account, authority common.Address) error {
	auth, owned, err := l.authority(mint, account)
	if err != nil {
		return err
	}
	if owned {
		if auth == authority {
			return nil
		}
		return ErrAccountExists
	}
	l.st.set(fmt.Sprintf(KeyAuthority, mint, account), authority.Bytes())
	return nil
}

func (l *Ledger) Transfer(mint, from, to, authorizer common.Address, amount uint64) error {
	auth, owned, err := l.authority(mint, from)
	if err != nil {
		return err
	}
	if (owned && authorizer != auth) || (!owned && authorizer != from) {
		return ErrTransferUnauthorized
	}
	if amount == 0 || from == to {
		return nil
	}
	fromBal, err := l.Balance(mint, from)
	if err != nil {
		return err
	}
	if fromBal < amount {
		return fmt.Errorf("%w: have %d, need %d", ErrInsufficientFunds, fromBal, amount)
	}
	toBal, err := l.Balance(mint, to)
	if err != nil {
		return err
	}
	toBal, overflow := math.SafeAdd(toBal, amount)
	if overflow {
		return types.ErrOverflow
	}
	if err = l.setBalance(mint, from, fromBal-amount); err != nil {
		return err
	}
	return l.setBalance(mint, to, toBal)
}

// CloseAccount sweeps any residue to destination and drops the authority.
// Closing an account that is not open is a no-op.
func (l *Ledger) CloseAccount(mint, account, destination, authorizer common.Address) error {
	auth, owned, err := l.authority(mint, account)
	if err != nil || !owned {
		return err
	}
	if authorizer != auth {
		return ErrTransferUnauthorized
	}
	bal, err := l.Balance(mint, account)
	if err != nil {
		return err
	}
	if err = l.Transfer(mint, account, destination, authorizer, bal); err != nil {
		return err
	}
	l.st.remove(fmt.Sprintf(KeyAuthority, mint, account))
	return nil
}

// Mint credits tokens through the in-tree ledger.
func (s *State) Mint(mint, account common.Address, amount uint64) error {
	return (&Ledger{st: s}).Mint(mint, account, amount)
}

// TokenBalance reads a balance through the configured custodian.
func (s *State) TokenBalance(mint, account common.Address) (uint64, error) {
	return s.tokens().Balance(mint, account)
}

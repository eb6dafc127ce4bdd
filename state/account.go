package state

import (
	"github.com/cometbft/cometbft/crypto/ed25519"
	"github.com/ethereum/go-ethereum/common"
)

// Account tracks the replay nonce of a transaction sender.
type Account struct {
	PubKey []byte
	Nonce  uint64
}

func (a *Account) Address() common.Address {
	pk := ed25519.PubKey(a.PubKey[:])
	return common.BytesToAddress(pk.Address())
}

func (a *Account) Verify(msg []byte, sigs [][]byte) (succ bool) {
	if len(sigs) != 1 || len(a.PubKey) != ed25519.PubKeySize {
		return false
	}
	pk := ed25519.PubKey(a.PubKey[:])
	return pk.VerifySignature(msg, sigs[0])
}

func (a *Account) Clone() *Account {
	return &Account{
		PubKey: common.CopyBytes(a.PubKey),
		Nonce:  a.Nonce,
	}
}

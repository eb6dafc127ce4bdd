package tx

import (
	"encoding/json"

	"github.com/cometbft/cometbft/crypto/ed25519"
	"github.com/ethereum/go-ethereum/common"

	"github.com/calehh/fund-app/types"
)

// FundTx is the signed envelope around every operation. Sender carries the
// ed25519 public key of the signer.
type FundTx struct {
	Version uint8      `json:"version"`
	Type    FundTxType `json:"type"`
	Nonce   uint64     `json:"nonce"`
	Sender  []byte     `json:"sender"`
	Tx      any        `json:"tx"`
	Sig     [][]byte   `json:"sig"`
}

type InitializeTx struct {
	NativeTokenMint common.Address `json:"nativeTokenMint"`
	// Params overrides the genesis governance params when set.
	Params *types.Params `json:"params,omitempty"`
}

type StartCampaignTx struct {
	Description        string         `json:"description"`
	MetadataRef        string         `json:"metadataRef"`
	Target             uint64         `json:"target"`
	TotalRounds        uint64         `json:"totalRounds"`
	InitialRoundTarget uint64         `json:"initialRoundTarget"`
	TokenMint          common.Address `json:"tokenMint"`
}

type DonateTx struct {
	Campaign common.Hash `json:"campaign"`
	Round    uint64      `json:"round"`
	Amount   uint64      `json:"amount"`
}

type InitializeVotingTx struct{}

// RegisterVoterTx serves both InitDonatorVoting and InitStakerVoting.
type RegisterVoterTx struct {
	Campaign common.Hash `json:"campaign"`
}

type VoteTx struct {
	Campaign common.Hash `json:"campaign"`
	Continue bool        `json:"continue"`
}

type TallyVotesTx struct {
	Campaign common.Hash `json:"campaign"`
}

type StartNextRoundTx struct {
	Target uint64 `json:"target"`
}

type WithdrawTx struct{}

type InitializeStakingTx struct {
	Mint common.Address `json:"mint"`
}

type StakeTx struct {
	Amount uint64 `json:"amount"`
}

type UnstakeTx struct{}

type InitStakerModerationTx struct {
	Campaign common.Hash `json:"campaign"`
}

type ModerateTx struct {
	Campaign common.Hash `json:"campaign"`
	ThumbsUp bool        `json:"thumbsUp"`
}

type fundTxTmpl[Tx any] struct {
	Version uint8      `json:"version"`
	Type    FundTxType `json:"type"`
	Nonce   uint64     `json:"nonce"`
	Sender  []byte     `json:"sender"`
	Tx      Tx         `json:"tx"`
	Sig     [][]byte   `json:"sig"`
}

// SigData is the payload signed by the sender: the envelope with the
// signature slot replaced by ext, normally the chain id.
func (tx *FundTx) SigData(ext []byte) (dat []byte, err error) {
	ntx := *tx
	ntx.Sig = [][]byte{ext}
	dat, err = json.Marshal(ntx)
	return
}

func (tx *FundTx) SenderAddress() common.Address {
	if len(tx.Sender) != ed25519.PubKeySize {
		return common.Address{}
	}
	return common.BytesToAddress(ed25519.PubKey(tx.Sender).Address())
}

func parseFundTxType(dat []byte) FundTxType {
	var tx struct {
		Type FundTxType `json:"type"`
	}
	err := json.Unmarshal(dat, &tx)
	if err != nil {
		return FundTxTypeUnknown
	}
	return tx.Type
}

func unmarshalFundTx[Tx any](dat []byte) (btx *FundTx, err error) {
	var txt fundTxTmpl[Tx]
	err = json.Unmarshal(dat, &txt)
	if err != nil {
		return
	}
	if txt.Version > FundTxVersion1 {
		return nil, ErrUnsupportedTxVersion
	}
	btx = new(FundTx)
	btx.Version = txt.Version
	btx.Type = txt.Type
	btx.Nonce = txt.Nonce
	btx.Sender = txt.Sender
	btx.Tx = &txt.Tx
	btx.Sig = txt.Sig
	return
}

func UnmarshalFundTx(dat []byte) (btx *FundTx, err error) {
	switch parseFundTxType(dat) {
	case FundTxTypeInitialize:
		return unmarshalFundTx[InitializeTx](dat)
	case FundTxTypeStartCampaign:
		return unmarshalFundTx[StartCampaignTx](dat)
	case FundTxTypeDonate:
		return unmarshalFundTx[DonateTx](dat)
	case FundTxTypeInitializeVoting:
		return unmarshalFundTx[InitializeVotingTx](dat)
	case FundTxTypeInitDonatorVoting, FundTxTypeInitStakerVoting:
		return unmarshalFundTx[RegisterVoterTx](dat)
	case FundTxTypeVote:
		return unmarshalFundTx[VoteTx](dat)
	case FundTxTypeTallyVotes:
		return unmarshalFundTx[TallyVotesTx](dat)
	case FundTxTypeStartNextRound:
		return unmarshalFundTx[StartNextRoundTx](dat)
	case FundTxTypeWithdraw:
		return unmarshalFundTx[WithdrawTx](dat)
	case FundTxTypeInitializeStaking:
		return unmarshalFundTx[InitializeStakingTx](dat)
	case FundTxTypeStake:
		return unmarshalFundTx[StakeTx](dat)
	case FundTxTypeUnstake:
		return unmarshalFundTx[UnstakeTx](dat)
	case FundTxTypeInitStakerModeration:
		return unmarshalFundTx[InitStakerModerationTx](dat)
	case FundTxTypeModerate:
		return unmarshalFundTx[ModerateTx](dat)
	default:
		err = ErrUnsupportedTxType
	}
	return
}

func MarshalFundTx(btx *FundTx) (dat []byte, err error) {
	return json.Marshal(btx)
}

// Signer is satisfied by crypto.PV.
type Signer interface {
	PublicKey() []byte
	Sign(data []byte) ([]byte, error)
}

// NewSignedTx builds and signs an envelope for the given operation.
func NewSignedTx(signer Signer, chainID string, tp FundTxType, nonce uint64, body any) (btx *FundTx, err error) {
	btx = &FundTx{
		Version: FundTxVersion1,
		Type:    tp,
		Nonce:   nonce,
		Sender:  signer.PublicKey(),
		Tx:      body,
	}
	dat, err := btx.SigData([]byte(chainID))
	if err != nil {
		return nil, err
	}
	sig, err := signer.Sign(dat)
	if err != nil {
		return nil, err
	}
	btx.Sig = [][]byte{sig}
	return
}

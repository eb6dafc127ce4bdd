package tx

import (
	"testing"

	"github.com/cometbft/cometbft/crypto/ed25519"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

type testSigner struct {
	priv ed25519.PrivKey
}

func (s testSigner) PublicKey() []byte {
	return s.priv.PubKey().Bytes()
}

func (s testSigner) Sign(data []byte) ([]byte, error) {
	return s.priv.Sign(data)
}

func TestSignedTxRoundTrip(t *testing.T) {
	signer := testSigner{priv: ed25519.GenPrivKey()}
	campaign := common.HexToHash("0x1234")
	btx, err := NewSignedTx(signer, "fund-test", FundTxTypeDonate, 3, &DonateTx{Campaign: campaign, Round: 1, Amount: 99})
	require.NoError(t, err)
	require.Len(t, btx.Sig, 1)

	dat, err := MarshalFundTx(btx)
	require.NoError(t, err)
	decoded, err := UnmarshalFundTx(dat)
	require.NoError(t, err)
	require.Equal(t, FundTxTypeDonate, decoded.Type)
	require.EqualValues(t, 3, decoded.Nonce)
	require.Equal(t, common.BytesToAddress(signer.priv.PubKey().Address()), decoded.SenderAddress())

	body, ok := decoded.Tx.(*DonateTx)
	require.True(t, ok)
	require.Equal(t, DonateTx{Campaign: campaign, Round: 1, Amount: 99}, *body)

	sigData, err := decoded.SigData([]byte("fund-test"))
	require.NoError(t, err)
	pub := ed25519.PubKey(decoded.Sender)
	require.True(t, pub.VerifySignature(sigData, decoded.Sig[0]))

	other, err := decoded.SigData([]byte("other-chain"))
	require.NoError(t, err)
	require.False(t, pub.VerifySignature(other, decoded.Sig[0]))
}

func TestUnmarshalBodies(t *testing.T) {
	signer := testSigner{priv: ed25519.GenPrivKey()}
	cases := []struct {
		tp   FundTxType
		body any
	}{
		{FundTxTypeInitDonatorVoting, &RegisterVoterTx{}},
		{FundTxTypeInitStakerVoting, &RegisterVoterTx{}},
		{FundTxTypeWithdraw, &WithdrawTx{}},
		{FundTxTypeModerate, &ModerateTx{ThumbsUp: true}},
	}
	for _, c := range cases {
		btx, err := NewSignedTx(signer, "fund-test", c.tp, 0, c.body)
		require.NoError(t, err)
		dat, err := MarshalFundTx(btx)
		require.NoError(t, err)
		decoded, err := UnmarshalFundTx(dat)
		require.NoError(t, err, c.tp.String())
		require.IsType(t, c.body, decoded.Tx)
		require.Equal(t, c.body, decoded.Tx)
	}
}

func TestUnmarshalErrors(t *testing.T) {
	_, err := UnmarshalFundTx([]byte(`{"type":99}`))
	require.ErrorIs(t, err, ErrUnsupportedTxType)

	_, err = UnmarshalFundTx([]byte(`not json`))
	require.ErrorIs(t, err, ErrUnsupportedTxType)

	_, err = UnmarshalFundTx([]byte(`{"version":2,"type":12,"tx":{"amount":1}}`))
	require.ErrorIs(t, err, ErrUnsupportedTxVersion)

	_, err = UnmarshalFundTx([]byte(`{"type":12,"tx":{"amount":"x"}}`))
	require.Error(t, err)
}

func TestSenderAddress(t *testing.T) {
	btx := &FundTx{Sender: []byte{1, 2, 3}}
	require.Equal(t, common.Address{}, btx.SenderAddress())
}

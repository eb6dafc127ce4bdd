package state

import (
	"math/big"
	"testing"
	"time"

	"github.com/cometbft/cometbft/crypto/ed25519"
	cmtlog "github.com/cometbft/cometbft/libs/log"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/calehh/fund-app/tx"
	"github.com/calehh/fund-app/types"
)

var (
	testMint  = common.HexToAddress("0x00000000000000000000000000000000000000aa")
	testAdmin = common.HexToAddress("0x00000000000000000000000000000000000000ad")
	testStart = time.Unix(1_700_000_000, 0)
)

func testAddr(i int) common.Address {
	return common.BigToAddress(big.NewInt(int64(0x1000 + i)))
}

func newTestStateDB(t *testing.T, opts ...Option) *StateDB {
	t.Helper()
	db, err := NewMemStateDB(cmtlog.NewNopLogger(), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func newTestState(t *testing.T, opts ...Option) *State {
	t.Helper()
	st := newTestStateDB(t, opts...).NewState()
	st.SetBlockTime(testStart)
	_, err := st.Initialize(testAdmin, &tx.InitializeTx{NativeTokenMint: testMint}, false)
	require.NoError(t, err)
	return st
}

func fund(t *testing.T, st *State, account common.Address, amount uint64) {
	t.Helper()
	require.NoError(t, st.Mint(testMint, account, amount))
}

func balanceOf(t *testing.T, st *State, account common.Address) uint64 {
	t.Helper()
	bal, err := st.TokenBalance(testMint, account)
	require.NoError(t, err)
	return bal
}

func advance(st *State, d time.Duration) {
	st.SetBlockTime(time.Unix(st.now(), 0).Add(d))
}

func TestInitialize(t *testing.T) {
	st := newTestState(t)

	cfg, err := st.Config()
	require.NoError(t, err)
	require.Equal(t, testAdmin, cfg.Admin)
	require.Equal(t, testMint, cfg.NativeTokenMint)
	require.False(t, cfg.StakingInitialized)
	require.EqualValues(t, types.DefaultMinimumRequiredVotePercentage, cfg.MinimumRequiredVotePercentage)
	require.EqualValues(t, types.DefaultRoundVotingPeriodInDays, cfg.RoundVotingPeriodInDays)

	_, err = st.Initialize(testAdmin, &tx.InitializeTx{NativeTokenMint: testMint}, false)
	require.ErrorIs(t, err, types.ErrConfigExists)
	require.ErrorIs(t, err, types.ErrDuplicate)
}

func TestInitializeParams(t *testing.T) {
	st := newTestStateDB(t).NewState()
	require.NoError(t, st.SetGenesis(&types.AppState{Params: types.Params{
		RoundVotingPeriodInDays:       3,
		MinimumRequiredVotePercentage: 50,
		DonatorVotingRights:           70,
		StakerVotingRights:            30,
		StakerModerationRights:        90,
	}}))

	_, err := st.Initialize(testAdmin, &tx.InitializeTx{}, false)
	require.ErrorIs(t, err, types.ErrEmptyMint)

	bad := types.DefaultParams()
	bad.MinimumRequiredVotePercentage = 101
	_, err = st.Initialize(testAdmin, &tx.InitializeTx{NativeTokenMint: testMint, Params: &bad}, false)
	require.ErrorIs(t, err, types.ErrInvalidParams)

	ev, err := st.Initialize(testAdmin, &tx.InitializeTx{NativeTokenMint: testMint}, false)
	require.NoError(t, err)
	require.EqualValues(t, 3, ev.Params.RoundVotingPeriodInDays)

	cfg, err := st.Config()
	require.NoError(t, err)
	require.EqualValues(t, 50, cfg.MinimumRequiredVotePercentage)
	require.EqualValues(t, 90, cfg.StakerModerationRights)
}

func TestConfigNotFound(t *testing.T) {
	st := newTestStateDB(t).NewState()
	_, err := st.Config()
	require.ErrorIs(t, err, types.ErrConfigNotFound)

	_, err = st.InitializeStaking(testAdmin, &tx.InitializeStakingTx{Mint: testMint}, false)
	require.ErrorIs(t, err, types.ErrState)
}

func TestCommitAndRead(t *testing.T) {
	db := newTestStateDB(t)
	st := db.NewState()
	st.SetChainId("fund-test")
	st.SetBlockTime(testStart)
	_, err := st.Initialize(testAdmin, &tx.InitializeTx{NativeTokenMint: testMint}, false)
	require.NoError(t, err)

	owner := testAddr(1)
	ev, err := st.StartCampaign(owner, &tx.StartCampaignTx{Description: "bridge", Target: 100, TotalRounds: 1}, false)
	require.NoError(t, err)

	h, err := st.Update()
	require.NoError(t, err)
	require.NotEqual(t, common.Hash{}, h)
	saved, err := db.SetState(st)
	require.NoError(t, err)
	require.Equal(t, h, saved)

	c, height, err := db.GetCampaignByOwner(owner)
	require.NoError(t, err)
	require.EqualValues(t, 0, height)
	require.Equal(t, owner, c.Owner)

	raw, _, err := db.GetRecord(ev.Campaign)
	require.NoError(t, err)
	require.Contains(t, string(raw), "bridge")

	next := db.NewState()
	require.EqualValues(t, 1, next.Header().Height)
	require.Equal(t, "fund-test", next.Header().ChainId)
}

func TestVerifyAndNonce(t *testing.T) {
	st := newTestState(t)
	st.SetChainId("fund-test")
	priv := ed25519.GenPrivKey()

	btx := &tx.FundTx{
		Version: tx.FundTxVersion1,
		Type:    tx.FundTxTypeStake,
		Nonce:   0,
		Sender:  priv.PubKey().Bytes(),
		Tx:      &tx.StakeTx{Amount: 1},
	}
	dat, err := btx.SigData([]byte("fund-test"))
	require.NoError(t, err)
	sig, err := priv.Sign(dat)
	require.NoError(t, err)
	btx.Sig = [][]byte{sig}

	ok, err := st.Verify(btx, false)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, st.IncrementNonce(btx))
	_, err = st.Verify(btx, false)
	require.ErrorIs(t, err, ErrTxNonceInvalid)

	acnt, err := st.GetAccount(btx.SenderAddress())
	require.NoError(t, err)
	require.EqualValues(t, 1, acnt.Nonce)
	require.Equal(t, btx.SenderAddress(), acnt.Address())

	btx.Nonce = 1
	btx.Sig = [][]byte{sig}
	_, err = st.Verify(btx, false)
	require.ErrorIs(t, err, ErrTxSigInvalid)

	btx.Sender = []byte{1, 2, 3}
	_, err = st.Verify(btx, false)
	require.ErrorIs(t, err, ErrTxSenderInvalid)
}

func TestCheckOnlyLeavesStateUntouched(t *testing.T) {
	st := newTestState(t)
	owner, donor := testAddr(1), testAddr(2)
	key := startCampaign(t, st, owner, 100, 1, 0)
	fund(t, st, donor, 50)

	ev, err := st.Donate(donor, &tx.DonateTx{Campaign: key, Round: 1, Amount: 50}, true)
	require.NoError(t, err)
	require.EqualValues(t, 50, ev.CampaignBalance)

	c, err := st.Campaign(key)
	require.NoError(t, err)
	require.Zero(t, c.Balance)
	require.EqualValues(t, 50, balanceOf(t, st, donor))
	d, err := st.Donation(c.ActiveRoundKey, donor)
	require.NoError(t, err)
	require.Nil(t, d)
}

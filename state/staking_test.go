package state

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/calehh/fund-app/tx"
	"github.com/calehh/fund-app/types"
)

func initStaking(t *testing.T, st *State) {
	t.Helper()
	_, err := st.InitializeStaking(testAdmin, &tx.InitializeStakingTx{Mint: testMint}, false)
	require.NoError(t, err)
}

func stake(t *testing.T, st *State, staker common.Address, amount uint64) {
	t.Helper()
	fund(t, st, staker, amount)
	_, err := st.Stake(staker, &tx.StakeTx{Amount: amount}, false)
	require.NoError(t, err)
}

func TestInitializeStaking(t *testing.T) {
	st := newTestState(t)

	_, err := st.Stake(testAddr(1), &tx.StakeTx{Amount: 1}, false)
	require.ErrorIs(t, err, types.ErrStakingNotInitialized)

	_, err = st.InitializeStaking(testAddr(1), &tx.InitializeStakingTx{Mint: testMint}, false)
	require.ErrorIs(t, err, types.ErrNotAdmin)
	require.ErrorIs(t, err, types.ErrUnauthorized)

	_, err = st.InitializeStaking(testAdmin, &tx.InitializeStakingTx{Mint: testAddr(5)}, false)
	require.ErrorIs(t, err, types.ErrMintMismatch)

	ev, err := st.InitializeStaking(testAdmin, &tx.InitializeStakingTx{Mint: testMint}, false)
	require.NoError(t, err)
	cfg, err := st.Config()
	require.NoError(t, err)
	require.True(t, cfg.StakingInitialized)
	require.Equal(t, ev.Pool, cfg.StakingPool)

	_, err = st.InitializeStaking(testAdmin, &tx.InitializeStakingTx{Mint: testMint}, false)
	require.ErrorIs(t, err, types.ErrStakingInitialized)
}

func TestStakeAndUnstake(t *testing.T) {
	st := newTestState(t)
	initStaking(t, st)
	alice, bob := testAddr(1), testAddr(2)

	_, err := st.Stake(alice, &tx.StakeTx{Amount: 0}, false)
	require.ErrorIs(t, err, types.ErrZeroAmount)

	stake(t, st, alice, 300)
	stake(t, st, bob, 200)

	fund(t, st, alice, 10)
	_, err = st.Stake(alice, &tx.StakeTx{Amount: 10}, false)
	require.ErrorIs(t, err, types.ErrAlreadyStaked)

	cfg, err := st.Config()
	require.NoError(t, err)
	require.EqualValues(t, 2, cfg.ActiveStakers)
	require.EqualValues(t, 500, cfg.TotalAmountStaked)
	require.EqualValues(t, 500, balanceOf(t, st, cfg.StakingPool))

	rec, err := st.StakeRecord(alice)
	require.NoError(t, err)
	require.EqualValues(t, 300, rec.Deposit)
	require.Zero(t, rec.Reward)
	require.Equal(t, testStart.Unix(), rec.StakedAt)

	ev, err := st.Unstake(alice, &tx.UnstakeTx{}, false)
	require.NoError(t, err)
	require.EqualValues(t, 300, ev.Amount)
	require.EqualValues(t, 1, ev.ActiveStakers)
	require.EqualValues(t, 200, ev.TotalAmountStaked)
	require.EqualValues(t, 310, balanceOf(t, st, alice))
	require.EqualValues(t, 200, balanceOf(t, st, cfg.StakingPool))

	rec, err = st.StakeRecord(alice)
	require.NoError(t, err)
	require.Nil(t, rec)

	_, err = st.Unstake(alice, &tx.UnstakeTx{}, false)
	require.ErrorIs(t, err, types.ErrNotStaker)

	// a fresh stake is allowed once the old one is gone
	_, err = st.Stake(alice, &tx.StakeTx{Amount: 10}, false)
	require.NoError(t, err)
}

func TestPoolOnlyReleasesThroughUnstake(t *testing.T) {
	st := newTestState(t)
	initStaking(t, st)
	stake(t, st, testAddr(1), 100)

	cfg, err := st.Config()
	require.NoError(t, err)
	err = st.tokens().Transfer(testMint, cfg.StakingPool, testAddr(2), testAddr(2), 100)
	require.ErrorIs(t, err, ErrTransferUnauthorized)
}

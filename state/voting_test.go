package state

import (
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/calehh/fund-app/tx"
	"github.com/calehh/fund-app/types"
)

const votingPeriod = types.DefaultRoundVotingPeriodInDays * 24 * time.Hour

// finishRound opens voting on the active round and tallies it with no
// ballots cast.
func finishRound(t *testing.T, st *State, key common.Hash) {
	t.Helper()
	c, err := st.Campaign(key)
	require.NoError(t, err)
	_, err = st.InitializeVoting(c.Owner, &tx.InitializeVotingTx{}, false)
	require.NoError(t, err)
	advance(st, votingPeriod+time.Second)
	_, err = st.TallyVotes(c.Owner, &tx.TallyVotesTx{Campaign: key}, false)
	require.NoError(t, err)
}

func TestInitializeVoting(t *testing.T) {
	st := newTestState(t)
	owner := testAddr(1)
	key := startCampaign(t, st, owner, 1000, 2, 100)

	_, err := st.InitializeVoting(owner, &tx.InitializeVotingTx{}, false)
	require.ErrorIs(t, err, types.ErrRoundTargetNotMet)

	donate(t, st, key, testAddr(2), 100)
	_, err = st.InitializeVoting(testAddr(2), &tx.InitializeVotingTx{}, false)
	require.ErrorIs(t, err, types.ErrCampaignNotFound)

	ev, err := st.InitializeVoting(owner, &tx.InitializeVotingTx{}, false)
	require.NoError(t, err)
	require.Equal(t, testStart.Unix(), ev.StartTime)

	_, r := activeRound(t, st, key)
	require.True(t, r.HasVote())
	vote, err := st.RoundVote(r)
	require.NoError(t, err)
	require.Equal(t, testStart.Unix(), vote.StartTime)
	require.Zero(t, vote.ContinueWeight)
	require.Zero(t, vote.TerminateWeight)
	require.False(t, vote.Ended)

	_, err = st.InitializeVoting(owner, &tx.InitializeVotingTx{}, false)
	require.ErrorIs(t, err, types.ErrVotingInitialized)
}

func TestInitializeVotingOnFinalRound(t *testing.T) {
	st := newTestState(t)
	owner := testAddr(1)
	key := startCampaign(t, st, owner, 100, 1, 0)
	donate(t, st, key, testAddr(2), 100)

	_, err := st.InitializeVoting(owner, &tx.InitializeVotingTx{}, false)
	require.ErrorIs(t, err, types.ErrNoRoundsLeft)
}

func TestDonorVotingPowerIsFrozen(t *testing.T) {
	st := newTestState(t)
	owner := testAddr(1)
	key := startCampaign(t, st, owner, 1000, 2, 200)
	donor := testAddr(2)
	donate(t, st, key, donor, 40)

	_, err := st.InitDonatorVoting(donor, &tx.RegisterVoterTx{Campaign: key}, false)
	require.ErrorIs(t, err, types.ErrRoundTargetNotMet)

	donate(t, st, key, testAddr(3), 160)
	ev, err := st.InitDonatorVoting(donor, &tx.RegisterVoterTx{Campaign: key}, false)
	require.NoError(t, err)
	// floor(40 * 60 / 200)
	require.EqualValues(t, 12, ev.VotingPower)
	require.Equal(t, types.VoterDonor, ev.Kind)

	_, err = st.InitDonatorVoting(donor, &tx.RegisterVoterTx{Campaign: key}, false)
	require.ErrorIs(t, err, types.ErrVoterExists)
	require.ErrorIs(t, err, types.ErrDuplicate)

	_, err = st.InitDonatorVoting(testAddr(4), &tx.RegisterVoterTx{Campaign: key}, false)
	require.ErrorIs(t, err, types.ErrNotDonor)

	c, _ := activeRound(t, st, key)
	v, err := st.Voter(c.ActiveRoundKey, donor)
	require.NoError(t, err)
	require.EqualValues(t, 12, v.VotingPower)
	require.False(t, v.HasVoted)
}

func TestStakerVotingPowerIsFrozen(t *testing.T) {
	st := newTestState(t)
	initStaking(t, st)
	owner := testAddr(1)
	key := startCampaign(t, st, owner, 1000, 2, 100)
	donate(t, st, key, testAddr(2), 100)

	staker := testAddr(3)
	_, err := st.InitStakerVoting(staker, &tx.RegisterVoterTx{Campaign: key}, false)
	require.ErrorIs(t, err, types.ErrNotStaker)

	stake(t, st, staker, 100)
	stake(t, st, testAddr(4), 100)
	ev, err := st.InitStakerVoting(staker, &tx.RegisterVoterTx{Campaign: key}, false)
	require.NoError(t, err)
	// floor(100 * 40 / 200)
	require.EqualValues(t, 20, ev.VotingPower)
	require.Equal(t, types.VoterStaker, ev.Kind)

	stake(t, st, testAddr(5), 800)
	c, _ := activeRound(t, st, key)
	v, err := st.Voter(c.ActiveRoundKey, staker)
	require.NoError(t, err)
	require.EqualValues(t, 20, v.VotingPower)
}

func TestVote(t *testing.T) {
	st := newTestState(t)
	owner := testAddr(1)
	key := startCampaign(t, st, owner, 1000, 2, 200)
	donor := testAddr(2)
	donate(t, st, key, donor, 200)

	_, err := st.InitDonatorVoting(donor, &tx.RegisterVoterTx{Campaign: key}, false)
	require.NoError(t, err)
	_, err = st.Vote(donor, &tx.VoteTx{Campaign: key, Continue: true}, false)
	require.ErrorIs(t, err, types.ErrVotingNotInitialized)

	_, err = st.InitializeVoting(owner, &tx.InitializeVotingTx{}, false)
	require.NoError(t, err)

	_, err = st.Vote(testAddr(3), &tx.VoteTx{Campaign: key, Continue: true}, false)
	require.ErrorIs(t, err, types.ErrNotVoter)

	ev, err := st.Vote(donor, &tx.VoteTx{Campaign: key, Continue: true}, false)
	require.NoError(t, err)
	require.EqualValues(t, 60, ev.VotingPower)

	_, err = st.Vote(donor, &tx.VoteTx{Campaign: key, Continue: false}, false)
	require.ErrorIs(t, err, types.ErrAlreadyVoted)
	require.ErrorIs(t, err, types.ErrDuplicate)

	_, r := activeRound(t, st, key)
	vote, err := st.RoundVote(r)
	require.NoError(t, err)
	require.EqualValues(t, 60, vote.ContinueWeight)
	require.Zero(t, vote.TerminateWeight)
	require.EqualValues(t, 1, vote.DonorsVoted)
	require.Zero(t, vote.StakersVoted)
}

func TestTallyWaitsForFullPeriod(t *testing.T) {
	st := newTestState(t)
	owner := testAddr(1)
	key := startCampaign(t, st, owner, 1000, 2, 100)
	donate(t, st, key, testAddr(2), 100)
	_, err := st.InitializeVoting(owner, &tx.InitializeVotingTx{}, false)
	require.NoError(t, err)

	_, err = st.TallyVotes(owner, &tx.TallyVotesTx{Campaign: key}, false)
	require.ErrorIs(t, err, types.ErrVotingPeriodActive)

	advance(st, votingPeriod)
	_, err = st.TallyVotes(owner, &tx.TallyVotesTx{Campaign: key}, false)
	require.ErrorIs(t, err, types.ErrVotingPeriodActive)
	require.ErrorIs(t, err, types.ErrState)

	advance(st, time.Second)
	ev, err := st.TallyVotes(testAddr(7), &tx.TallyVotesTx{Campaign: key}, false)
	require.NoError(t, err)
	require.True(t, ev.CanStartNextRound)

	_, r := activeRound(t, st, key)
	require.Equal(t, types.RoundEnded, r.Status)
	vote, err := st.RoundVote(r)
	require.NoError(t, err)
	require.True(t, vote.Ended)

	_, err = st.TallyVotes(owner, &tx.TallyVotesTx{Campaign: key}, false)
	require.ErrorIs(t, err, types.ErrVotingEnded)
	_, err = st.Vote(testAddr(2), &tx.VoteTx{Campaign: key, Continue: true}, false)
	require.ErrorIs(t, err, types.ErrVotingEnded)
}

func TestTallyQuorumTerminates(t *testing.T) {
	st := newTestState(t)
	initStaking(t, st)
	for i := 0; i < 10; i++ {
		stake(t, st, testAddr(100+i), 100)
	}
	owner := testAddr(1)
	key := startCampaign(t, st, owner, 1000, 3, 200)
	for i := 0; i < 5; i++ {
		donate(t, st, key, testAddr(10+i), 40)
	}
	_, err := st.InitializeVoting(owner, &tx.InitializeVotingTx{}, false)
	require.NoError(t, err)

	c, r := activeRound(t, st, key)
	vote, err := st.RoundVote(r)
	require.NoError(t, err)
	vote.ContinueWeight = 10
	vote.TerminateWeight = 15
	vote.DonorsVoted = 3
	vote.StakersVoted = 2
	require.NoError(t, st.putRecord(r.VoteKey, vote))

	advance(st, votingPeriod+time.Second)
	ev, err := st.TallyVotes(owner, &tx.TallyVotesTx{Campaign: key}, false)
	require.NoError(t, err)
	require.EqualValues(t, 4, ev.MinimumRequired)
	require.EqualValues(t, 5, ev.Voters)
	require.False(t, ev.CanStartNextRound)

	c, err = st.Campaign(key)
	require.NoError(t, err)
	require.False(t, c.CanStartNextRound)

	_, err = st.StartNextRound(owner, &tx.StartNextRoundTx{Target: 100}, false)
	require.ErrorIs(t, err, types.ErrCannotStartNextRound)
}

func TestTallyBallots(t *testing.T) {
	newVotingRound := func(t *testing.T) (*State, common.Hash) {
		st := newTestState(t)
		initStaking(t, st)
		for i := 0; i < 10; i++ {
			stake(t, st, testAddr(100+i), 100)
		}
		owner := testAddr(1)
		key := startCampaign(t, st, owner, 1000, 3, 200)
		for i := 0; i < 5; i++ {
			donate(t, st, key, testAddr(10+i), 40)
		}
		_, err := st.InitializeVoting(owner, &tx.InitializeVotingTx{}, false)
		require.NoError(t, err)
		return st, key
	}
	castDonor := func(t *testing.T, st *State, key common.Hash, p common.Address, cont bool) {
		_, err := st.InitDonatorVoting(p, &tx.RegisterVoterTx{Campaign: key}, false)
		require.NoError(t, err)
		_, err = st.Vote(p, &tx.VoteTx{Campaign: key, Continue: cont}, false)
		require.NoError(t, err)
	}
	castStaker := func(t *testing.T, st *State, key common.Hash, p common.Address, cont bool) {
		_, err := st.InitStakerVoting(p, &tx.RegisterVoterTx{Campaign: key}, false)
		require.NoError(t, err)
		_, err = st.Vote(p, &tx.VoteTx{Campaign: key, Continue: cont}, false)
		require.NoError(t, err)
	}

	t.Run("quorate terminate majority", func(t *testing.T) {
		st, key := newVotingRound(t)
		// donors weigh 12 each, stakers 4 each
		for i := 0; i < 3; i++ {
			castDonor(t, st, key, testAddr(10+i), false)
		}
		castStaker(t, st, key, testAddr(100), true)
		castStaker(t, st, key, testAddr(101), true)

		advance(st, votingPeriod+time.Second)
		ev, err := st.TallyVotes(testAddr(1), &tx.TallyVotesTx{Campaign: key}, false)
		require.NoError(t, err)
		require.EqualValues(t, 36, ev.TerminateWeight)
		require.EqualValues(t, 8, ev.ContinueWeight)
		require.False(t, ev.CanStartNextRound)
	})

	t.Run("terminate majority without quorum", func(t *testing.T) {
		st, key := newVotingRound(t)
		for i := 0; i < 4; i++ {
			castDonor(t, st, key, testAddr(10+i), false)
		}

		advance(st, votingPeriod+time.Second)
		ev, err := st.TallyVotes(testAddr(1), &tx.TallyVotesTx{Campaign: key}, false)
		require.NoError(t, err)
		require.EqualValues(t, 4, ev.Voters)
		require.True(t, ev.CanStartNextRound)
	})

	t.Run("quorate continue majority", func(t *testing.T) {
		st, key := newVotingRound(t)
		for i := 0; i < 5; i++ {
			castDonor(t, st, key, testAddr(10+i), i < 3)
		}

		advance(st, votingPeriod+time.Second)
		ev, err := st.TallyVotes(testAddr(1), &tx.TallyVotesTx{Campaign: key}, false)
		require.NoError(t, err)
		require.True(t, ev.CanStartNextRound)
	})
}

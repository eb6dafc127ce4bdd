package indexer

import (
	"context"
	"errors"
	"testing"

	abci "github.com/cometbft/cometbft/abci/types"
	cmtlog "github.com/cometbft/cometbft/libs/log"
	ctypes "github.com/cometbft/cometbft/rpc/core/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/jinzhu/gorm"
	"github.com/stretchr/testify/require"

	"github.com/calehh/fund-app/types"
)

var (
	testOwner    = common.HexToAddress("0x1000000000000000000000000000000000000001")
	testDonor    = common.HexToAddress("0x2000000000000000000000000000000000000002")
	testStaker   = common.HexToAddress("0x3000000000000000000000000000000000000003")
	testCampaign = common.HexToHash("0xc0ffee")
	testRef      = types.CampaignRef{Campaign: testCampaign}
)

type fakeChain struct {
	latest int64
	blocks map[int64][]*abci.ExecTxResult
	err    error
}

func (f *fakeChain) Status(ctx context.Context) (*ctypes.ResultStatus, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &ctypes.ResultStatus{SyncInfo: ctypes.SyncInfo{LatestBlockHeight: f.latest}}, nil
}

func (f *fakeChain) BlockResults(ctx context.Context, height *int64) (*ctypes.ResultBlockResults, error) {
	return &ctypes.ResultBlockResults{Height: *height, TxsResults: f.blocks[*height]}, nil
}

func (f *fakeChain) add(results ...*abci.ExecTxResult) {
	f.latest++
	f.blocks[f.latest] = results
}

func ok(events ...types.Event) *abci.ExecTxResult {
	res := &abci.ExecTxResult{}
	for _, ev := range events {
		res.Events = append(res.Events, types.EncodeEvent(ev))
	}
	return res
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func newTestIndexer(t *testing.T, db *gorm.DB, chain *fakeChain) *ChainIndexer {
	t.Helper()
	c, err := NewChainIndexerWithClient(cmtlog.NewNopLogger(), db, chain, 0)
	require.NoError(t, err)
	return c
}

// campaignHistory is a two round campaign: funded, voted through, moved
// to round two and withdrawn once.
func campaignHistory() *fakeChain {
	chain := &fakeChain{blocks: make(map[int64][]*abci.ExecTxResult)}
	chain.add(
		ok(&types.EventStartCampaign{
			CampaignRef: testRef,
			Owner:       testOwner,
			Description: "well",
			Target:      1000,
			TotalRounds: 2,
			RoundTarget: 400,
		}),
		ok(&types.EventStake{Staker: testStaker, Amount: 50, ActiveStakers: 1, TotalAmountStaked: 50}),
		ok(&types.EventDonate{
			CampaignRef:     testRef,
			Round:           1,
			Donor:           testDonor,
			Amount:          400,
			RoundBalance:    400,
			CampaignBalance: 400,
			RoundStatus:     types.RoundTargetMet,
			CampaignStatus:  types.CampaignActive,
		}),
		// rejected txs carry no effect
		&abci.ExecTxResult{Code: 2, Events: []abci.Event{types.EncodeEvent(&types.EventDonate{CampaignRef: testRef, Round: 1, Donor: testStaker, Amount: 1})}},
	)
	chain.add(
		ok(&types.EventInitializeVoting{CampaignRef: testRef, Round: 1, StartTime: 1_700_000_000}),
		ok(&types.EventVote{CampaignRef: testRef, Round: 1, Participant: testDonor, Kind: types.VoterDonor, Continue: true, VotingPower: 12}),
		ok(&types.EventTallyVotes{CampaignRef: testRef, Round: 1, ContinueWeight: 12, Voters: 1, CanStartNextRound: true}),
	)
	chain.add(
		ok(&types.EventWithdraw{CampaignRef: testRef, Owner: testOwner, Amount: 400, Status: types.CampaignActive}),
		ok(&types.EventStartNextRound{CampaignRef: testRef, Round: 2, Target: 600}),
		ok(&types.EventModerate{CampaignRef: testRef, Moderator: testStaker, ThumbsUp: true, Power: 100, ValidWeight: 100, ModeratorVotes: 1, IsValidCampaign: true}),
		ok(&types.EventUnstake{Staker: testStaker, Amount: 50}),
	)
	return chain
}

func TestSync(t *testing.T) {
	db := newTestDB(t)
	chain := campaignHistory()
	c := newTestIndexer(t, db, chain)
	require.EqualValues(t, 1, c.Height)

	require.NoError(t, c.Sync(context.Background()))
	require.EqualValues(t, 4, c.Height)

	campaign, err := c.getCampaignById(testCampaign.Hex())
	require.NoError(t, err)
	require.Equal(t, testOwner.Hex(), campaign.Owner)
	require.EqualValues(t, 400, campaign.Balance)
	require.EqualValues(t, 400, campaign.Withdrawn)
	require.EqualValues(t, 2, campaign.ActiveRound)
	require.True(t, campaign.CanStartNextRound)
	require.True(t, campaign.IsValidCampaign)
	require.EqualValues(t, 100, campaign.ValidWeight)
	require.Zero(t, campaign.InvalidWeight)
	require.EqualValues(t, 1, campaign.ModeratorVotes)
	require.EqualValues(t, 1, campaign.CreateHeight)
	require.EqualValues(t, 3, campaign.UpdateHeight)

	rounds, err := c.getRounds(testCampaign.Hex())
	require.NoError(t, err)
	require.Len(t, rounds, 2)
	require.EqualValues(t, types.RoundEnded, rounds[0].Status)
	require.True(t, rounds[0].Tallied)
	require.EqualValues(t, 12, rounds[0].ContinueWeight)
	require.EqualValues(t, 1_700_000_000, rounds[0].VotingStart)
	require.EqualValues(t, 400, rounds[0].Balance)
	require.EqualValues(t, 600, rounds[1].Target)
	require.EqualValues(t, types.RoundDonationsOpen, rounds[1].Status)

	donations, total, err := c.getDonations(testCampaign.Hex(), 0, "", 0, 0)
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Equal(t, testDonor.Hex(), donations[0].Donor)

	votes, total, err := c.getVotes(testCampaign.Hex(), 1, 0, 0)
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.True(t, votes[0].Continue)

	_, total, err = c.getModerations(testCampaign.Hex(), 0, 0)
	require.NoError(t, err)
	require.EqualValues(t, 1, total)

	stakes, total, err := c.getStakes(false, 0, 0)
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.False(t, stakes[0].Active)
	_, total, err = c.getStakes(true, 0, 0)
	require.NoError(t, err)
	require.Zero(t, total)

	// nothing new
	require.NoError(t, c.Sync(context.Background()))
	require.EqualValues(t, 4, c.Height)

	// a restarted indexer resumes after the last indexed block
	resumed := newTestIndexer(t, db, chain)
	require.EqualValues(t, 4, resumed.Height)
}

func TestSyncRollsBackFailedBlock(t *testing.T) {
	db := newTestDB(t)
	chain := &fakeChain{blocks: make(map[int64][]*abci.ExecTxResult)}
	chain.add(
		ok(&types.EventStake{Staker: testStaker, Amount: 50}),
		&abci.ExecTxResult{Events: []abci.Event{{
			Type:       types.EventStartCampaignType,
			Attributes: []abci.EventAttribute{{Key: "data", Value: "{"}},
		}}},
	)
	c := newTestIndexer(t, db, chain)

	err := c.Sync(context.Background())
	require.ErrorIs(t, err, ErrDecodeEvent)
	require.EqualValues(t, 1, c.Height)
	_, total, err := c.getStakes(false, 0, 0)
	require.NoError(t, err)
	require.Zero(t, total)

	chain.err = errors.New("connection refused")
	require.Error(t, c.Sync(context.Background()))
}

func TestPaginate(t *testing.T) {
	db := newTestDB(t)
	for i := 0; i < 25; i++ {
		require.NoError(t, db.Create(&Donation{Campaign: testCampaign.Hex(), Round: 1, Donor: testDonor.Hex(), Amount: uint64(i + 1)}).Error)
	}
	c := newTestIndexer(t, db, &fakeChain{})

	page, total, err := c.getDonations(testCampaign.Hex(), 1, "", 0, 0)
	require.NoError(t, err)
	require.EqualValues(t, 25, total)
	require.Len(t, page, DefaultPageSize)
	require.EqualValues(t, 25, page[0].Amount)

	page, _, err = c.getDonations(testCampaign.Hex(), 1, "", 2, 10)
	require.NoError(t, err)
	require.Len(t, page, 5)
}

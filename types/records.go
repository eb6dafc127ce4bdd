package types

import (
	"github.com/ethereum/go-ethereum/common"
)

const (
	DefaultRoundVotingPeriodInDays       = 1
	DefaultMinimumRequiredVotePercentage = 30
	DefaultDonatorVotingRights           = 60
	DefaultStakerVotingRights            = 40
	DefaultStakerModerationRights        = 100

	// MaxVotingPower bounds every frozen voting or moderation power.
	MaxVotingPower = 255
)

// Params are the governance parameters copied into Config on Initialize.
type Params struct {
	RoundVotingPeriodInDays       uint64 `json:"roundVotingPeriodInDays" mapstructure:"round_voting_period_in_days"`
	MinimumRequiredVotePercentage uint64 `json:"minimumRequiredVotePercentage" mapstructure:"minimum_required_vote_percentage"`
	DonatorVotingRights           uint64 `json:"donatorVotingRights" mapstructure:"donator_voting_rights"`
	StakerVotingRights            uint64 `json:"stakerVotingRights" mapstructure:"staker_voting_rights"`
	StakerModerationRights        uint64 `json:"stakerModerationRights" mapstructure:"staker_moderation_rights"`
}

func DefaultParams() Params {
	return Params{
		RoundVotingPeriodInDays:       DefaultRoundVotingPeriodInDays,
		MinimumRequiredVotePercentage: DefaultMinimumRequiredVotePercentage,
		DonatorVotingRights:           DefaultDonatorVotingRights,
		StakerVotingRights:            DefaultStakerVotingRights,
		StakerModerationRights:        DefaultStakerModerationRights,
	}
}

func (p Params) Validate() error {
	if p.RoundVotingPeriodInDays == 0 {
		return ErrInvalidParams
	}
	if p.MinimumRequiredVotePercentage > 100 {
		return ErrInvalidParams
	}
	if p.DonatorVotingRights > MaxVotingPower || p.StakerVotingRights > MaxVotingPower || p.StakerModerationRights > MaxVotingPower {
		return ErrInvalidParams
	}
	return nil
}

// Config is the singleton record holding governance parameters and the
// staking pool totals.
type Config struct {
	Admin                         common.Address `json:"admin"`
	NativeTokenMint               common.Address `json:"nativeTokenMint"`
	DonationFee                   uint64         `json:"donationFee"`
	StakingInitialized            bool           `json:"stakingInitialized"`
	StakingPool                   common.Address `json:"stakingPool"`
	ActiveStakers                 uint64         `json:"activeStakers"`
	TotalAmountStaked             uint64         `json:"totalAmountStaked"`
	RoundVotingPeriodInDays       uint64         `json:"roundVotingPeriodInDays"`
	MinimumRequiredVotePercentage uint64         `json:"minimumRequiredVotePercentage"`
	DonatorVotingRights           uint64         `json:"donatorVotingRights"`
	StakerVotingRights            uint64         `json:"stakerVotingRights"`
	StakerModerationRights        uint64         `json:"stakerModerationRights"`
}

type Campaign struct {
	Owner             common.Address `json:"owner"`
	Vault             common.Address `json:"vault"`
	Description       string         `json:"description"`
	MetadataRef       string         `json:"metadataRef"`
	Target            uint64         `json:"target"`
	Balance           uint64         `json:"balance"`
	TokenMint         common.Address `json:"tokenMint"`
	Status            CampaignStatus `json:"status"`
	CanStartNextRound bool           `json:"canStartNextRound"`
	TotalRounds       uint64         `json:"totalRounds"`
	ActiveRound       uint64         `json:"activeRound"`
	ActiveRoundKey    common.Hash    `json:"activeRoundKey"`
	ValidWeight       uint64         `json:"validWeight"`
	InvalidWeight     uint64         `json:"invalidWeight"`
	ModeratorVotes    uint64         `json:"moderatorVotes"`
	IsValidCampaign   bool           `json:"isValidCampaign"`
}

type Round struct {
	Campaign common.Hash `json:"campaign"`
	Number   uint64      `json:"number"`
	Target   uint64      `json:"target"`
	Balance  uint64      `json:"balance"`
	Donors   uint64      `json:"donors"`
	Status   RoundStatus `json:"status"`
	// VoteKey is zero until voting is initialized for the round.
	VoteKey common.Hash `json:"voteKey"`
}

func (r *Round) HasVote() bool {
	return r.VoteKey != (common.Hash{})
}

type Donation struct {
	Round       common.Hash    `json:"round"`
	RoundNumber uint64         `json:"roundNumber"`
	Donor       common.Address `json:"donor"`
	Amount      uint64         `json:"amount"`
}

type RoundVote struct {
	Round           common.Hash `json:"round"`
	ContinueWeight  uint64      `json:"continueWeight"`
	TerminateWeight uint64      `json:"terminateWeight"`
	DonorsVoted     uint64      `json:"donorsVoted"`
	StakersVoted    uint64      `json:"stakersVoted"`
	StartTime       int64       `json:"startTime"`
	Ended           bool        `json:"ended"`
}

type Voter struct {
	Round       common.Hash    `json:"round"`
	Participant common.Address `json:"participant"`
	VotingPower uint8          `json:"votingPower"`
	HasVoted    bool           `json:"hasVoted"`
	Kind        VoterKind      `json:"kind"`
}

type StakeRecord struct {
	Staker   common.Address `json:"staker"`
	Deposit  uint64         `json:"deposit"`
	StakedAt int64          `json:"stakedAt"`
	// Reward is reserved; rewards are never computed.
	Reward uint64 `json:"reward"`
}

type ModeratorRecord struct {
	Campaign  common.Hash    `json:"campaign"`
	Moderator common.Address `json:"moderator"`
	Power     uint8          `json:"power"`
	HasVoted  bool           `json:"hasVoted"`
	Kind      ModeratorKind  `json:"kind"`
}

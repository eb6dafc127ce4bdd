package tx

import (
	"errors"
)

type FundTxType uint8

const (
	FundTxTypeUnknown              FundTxType = 0
	FundTxTypeInitialize           FundTxType = 1
	FundTxTypeStartCampaign        FundTxType = 2
	FundTxTypeDonate               FundTxType = 3
	FundTxTypeInitializeVoting     FundTxType = 4
	FundTxTypeInitDonatorVoting    FundTxType = 5
	FundTxTypeInitStakerVoting     FundTxType = 6
	FundTxTypeVote                 FundTxType = 7
	FundTxTypeTallyVotes           FundTxType = 8
	FundTxTypeStartNextRound       FundTxType = 9
	FundTxTypeWithdraw             FundTxType = 10
	FundTxTypeInitializeStaking    FundTxType = 11
	FundTxTypeStake                FundTxType = 12
	FundTxTypeUnstake              FundTxType = 13
	FundTxTypeInitStakerModeration FundTxType = 14
	FundTxTypeModerate             FundTxType = 15
)

func (t FundTxType) String() string {
	switch t {
	case FundTxTypeInitialize:
		return "initialize"
	case FundTxTypeStartCampaign:
		return "start_campaign"
	case FundTxTypeDonate:
		return "donate"
	case FundTxTypeInitializeVoting:
		return "initialize_voting"
	case FundTxTypeInitDonatorVoting:
		return "init_donator_voting"
	case FundTxTypeInitStakerVoting:
		return "init_staker_voting"
	case FundTxTypeVote:
		return "vote"
	case FundTxTypeTallyVotes:
		return "tally_votes"
	case FundTxTypeStartNextRound:
		return "start_next_round"
	case FundTxTypeWithdraw:
		return "withdraw"
	case FundTxTypeInitializeStaking:
		return "initialize_staking"
	case FundTxTypeStake:
		return "stake"
	case FundTxTypeUnstake:
		return "unstake"
	case FundTxTypeInitStakerModeration:
		return "init_staker_moderation"
	case FundTxTypeModerate:
		return "moderate"
	}
	return "unknown"
}

const (
	FundTxVersion0 uint8 = 0
	FundTxVersion1 uint8 = 1
)

var (
	ErrInvalidTx            = errors.New("invalid tx")
	ErrUnsupportedTxType    = errors.New("unsupported tx type")
	ErrUnsupportedTxVersion = errors.New("unsupported tx version")
)

package types

import (
	"encoding/json"

	abci "github.com/cometbft/cometbft/abci/types"
	"github.com/ethereum/go-ethereum/common"
)

const (
	EventInitializeType        = "initialize"
	EventStartCampaignType     = "start_campaign"
	EventDonateType            = "donate"
	EventInitializeVotingType  = "initialize_voting"
	EventRegisterVoterType     = "register_voter"
	EventVoteType              = "vote"
	EventTallyVotesType        = "tally_votes"
	EventStartNextRoundType    = "start_next_round"
	EventWithdrawType          = "withdraw"
	EventInitializeStakingType = "initialize_staking"
	EventStakeType             = "stake"
	EventUnstakeType           = "unstake"
	EventRegisterModeratorType = "register_moderator"
	EventModerateType          = "moderate"
)

// Event is emitted by every successful state transition.
type Event interface {
	EventType() string
}

// CampaignRef is embedded by events scoped to a single campaign; the key is
// exported as an indexed attribute.
type CampaignRef struct {
	Campaign common.Hash `json:"campaign"`
}

func (r CampaignRef) CampaignKey() common.Hash {
	return r.Campaign
}

type EventInitialize struct {
	Admin           common.Address `json:"admin"`
	NativeTokenMint common.Address `json:"nativeTokenMint"`
	Params          Params         `json:"params"`
}

type EventStartCampaign struct {
	CampaignRef
	Owner       common.Address `json:"owner"`
	Vault       common.Address `json:"vault"`
	TokenMint   common.Address `json:"tokenMint"`
	Description string         `json:"description"`
	MetadataRef string         `json:"metadataRef"`
	Target      uint64         `json:"target"`
	TotalRounds uint64         `json:"totalRounds"`
	RoundTarget uint64         `json:"roundTarget"`
}

type EventDonate struct {
	CampaignRef
	Round           uint64         `json:"round"`
	Donor           common.Address `json:"donor"`
	Amount          uint64         `json:"amount"`
	RoundBalance    uint64         `json:"roundBalance"`
	CampaignBalance uint64         `json:"campaignBalance"`
	RoundStatus     RoundStatus    `json:"roundStatus"`
	CampaignStatus  CampaignStatus `json:"campaignStatus"`
}

type EventInitializeVoting struct {
	CampaignRef
	Round     uint64 `json:"round"`
	StartTime int64  `json:"startTime"`
}

type EventRegisterVoter struct {
	CampaignRef
	Round       uint64         `json:"round"`
	Participant common.Address `json:"participant"`
	Kind        VoterKind      `json:"kind"`
	VotingPower uint8          `json:"votingPower"`
}

type EventVote struct {
	CampaignRef
	Round       uint64         `json:"round"`
	Participant common.Address `json:"participant"`
	Kind        VoterKind      `json:"kind"`
	Continue    bool           `json:"continue"`
	VotingPower uint8          `json:"votingPower"`
}

type EventTallyVotes struct {
	CampaignRef
	Round             uint64 `json:"round"`
	ContinueWeight    uint64 `json:"continueWeight"`
	TerminateWeight   uint64 `json:"terminateWeight"`
	Voters            uint64 `json:"voters"`
	MinimumRequired   uint64 `json:"minimumRequired"`
	CanStartNextRound bool   `json:"canStartNextRound"`
}

type EventStartNextRound struct {
	CampaignRef
	Round  uint64 `json:"round"`
	Target uint64 `json:"target"`
}

type EventWithdraw struct {
	CampaignRef
	Owner  common.Address `json:"owner"`
	Amount uint64         `json:"amount"`
	Status CampaignStatus `json:"status"`
}

type EventInitializeStaking struct {
	Pool common.Address `json:"pool"`
	Mint common.Address `json:"mint"`
}

type EventStake struct {
	Staker            common.Address `json:"staker"`
	Amount            uint64         `json:"amount"`
	ActiveStakers     uint64         `json:"activeStakers"`
	TotalAmountStaked uint64         `json:"totalAmountStaked"`
}

type EventUnstake EventStake

type EventRegisterModerator struct {
	CampaignRef
	Moderator common.Address `json:"moderator"`
	Power     uint8          `json:"power"`
}

type EventModerate struct {
	CampaignRef
	Moderator       common.Address `json:"moderator"`
	ThumbsUp        bool           `json:"thumbsUp"`
	Power           uint8          `json:"power"`
	ValidWeight     uint64         `json:"validWeight"`
	InvalidWeight   uint64         `json:"invalidWeight"`
	ModeratorVotes  uint64         `json:"moderatorVotes"`
	IsValidCampaign bool           `json:"isValidCampaign"`
}

func (EventInitialize) EventType() string        { return EventInitializeType }
func (EventStartCampaign) EventType() string     { return EventStartCampaignType }
func (EventDonate) EventType() string            { return EventDonateType }
func (EventInitializeVoting) EventType() string  { return EventInitializeVotingType }
func (EventRegisterVoter) EventType() string     { return EventRegisterVoterType }
func (EventVote) EventType() string              { return EventVoteType }
func (EventTallyVotes) EventType() string        { return EventTallyVotesType }
func (EventStartNextRound) EventType() string    { return EventStartNextRoundType }
func (EventWithdraw) EventType() string          { return EventWithdrawType }
func (EventInitializeStaking) EventType() string { return EventInitializeStakingType }
func (EventStake) EventType() string             { return EventStakeType }
func (EventUnstake) EventType() string           { return EventUnstakeType }
func (EventRegisterModerator) EventType() string { return EventRegisterModeratorType }
func (EventModerate) EventType() string          { return EventModerateType }

func EncodeEvent(event Event) abci.Event {
	dat, _ := json.Marshal(event)
	attrs := make([]abci.EventAttribute, 0, 2)
	if c, ok := event.(interface{ CampaignKey() common.Hash }); ok {
		attrs = append(attrs, abci.EventAttribute{Key: "campaign", Value: c.CampaignKey().Hex(), Index: true})
	}
	attrs = append(attrs, abci.EventAttribute{Key: "data", Value: string(dat), Index: false})
	return abci.Event{
		Type:       event.EventType(),
		Attributes: attrs,
	}
}

// DecodeEvent returns nil when the event is of another type or malformed.
func DecodeEvent[T any, PT interface {
	*T
	Event
}](originEvent abci.Event) PT {
	event := PT(new(T))
	if originEvent.Type != event.EventType() {
		return nil
	}
	for _, v := range originEvent.Attributes {
		if v.Key != "data" {
			continue
		}
		if err := json.Unmarshal([]byte(v.Value), event); err != nil {
			return nil
		}
		return event
	}
	return nil
}

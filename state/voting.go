package state

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/calehh/fund-app/tx"
	"github.com/calehh/fund-app/types"
)

const secondsPerDay = 86400

// RoundVote returns the vote record of a round, or nil.
func (s *State) RoundVote(round *types.Round) (*types.RoundVote, error) {
	if !round.HasVote() {
		return nil, nil
	}
	return getRecord[types.RoundVote](s, round.VoteKey)
}

// Voter returns the voter record of participant in round, or nil.
func (s *State) Voter(round common.Hash, participant common.Address) (*types.Voter, error) {
	return getRecord[types.Voter](s, s.keys.VoterKey(round, participant))
}

func (s *State) InitializeVoting(owner common.Address, _ *tx.InitializeVotingTx, checkOnly bool) (event *types.EventInitializeVoting, err error) {
	s.logger.Debug("apply initialize voting", "owner", owner, "height", s.header.Height)
	err = s.exec(checkOnly, func() error {
		key, campaign, err := s.ownedCampaign(owner)
		if err != nil {
			return err
		}
		round, err := s.activeRound(campaign)
		if err != nil {
			return err
		}
		if round.Status != types.RoundTargetMet {
			return types.ErrRoundTargetNotMet
		}
		if round.HasVote() {
			return types.ErrVotingInitialized
		}
		if campaign.ActiveRound >= campaign.TotalRounds {
			return types.ErrNoRoundsLeft
		}
		round.VoteKey = s.keys.VoteKey(campaign.ActiveRoundKey)
		vote := &types.RoundVote{
			Round:     campaign.ActiveRoundKey,
			StartTime: s.now(),
		}
		if err = s.putRecord(round.VoteKey, vote); err != nil {
			return err
		}
		if err = s.putRecord(campaign.ActiveRoundKey, round); err != nil {
			return err
		}
		event = &types.EventInitializeVoting{
			CampaignRef: types.CampaignRef{Campaign: key},
			Round:       round.Number,
			StartTime:   vote.StartTime,
		}
		return nil
	})
	if err != nil {
		event = nil
	}
	return
}

// registerVoter freezes the voting power of participant for the active
// round. power is only called once the round balance is final.
func (s *State) registerVoter(participant common.Address, campaignKey common.Hash, kind types.VoterKind, power func(cfg *types.Config, round *types.Round) (uint8, error)) (event *types.EventRegisterVoter, err error) {
	campaign, err := s.getCampaign(campaignKey)
	if err != nil {
		return nil, err
	}
	round, err := s.activeRound(campaign)
	if err != nil {
		return nil, err
	}
	if round.Status != types.RoundTargetMet {
		return nil, types.ErrRoundTargetNotMet
	}
	cfg, err := s.getConfig()
	if err != nil {
		return nil, err
	}
	votingPower, err := power(cfg, round)
	if err != nil {
		return nil, err
	}
	voterKey := s.keys.VoterKey(campaign.ActiveRoundKey, participant)
	existing, err := getRecord[types.Voter](s, voterKey)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, types.ErrVoterExists
	}
	voter := &types.Voter{
		Round:       campaign.ActiveRoundKey,
		Participant: participant,
		VotingPower: votingPower,
		Kind:        kind,
	}
	if err = s.putRecord(voterKey, voter); err != nil {
		return nil, err
	}
	event = &types.EventRegisterVoter{
		CampaignRef: types.CampaignRef{Campaign: campaignKey},
		Round:       round.Number,
		Participant: participant,
		Kind:        kind,
		VotingPower: votingPower,
	}
	return
}

func (s *State) InitDonatorVoting(donor common.Address, rtx *tx.RegisterVoterTx, checkOnly bool) (event *types.EventRegisterVoter, err error) {
	s.logger.Debug("apply init donator voting", "donor", donor, "campaign", rtx.Campaign, "height", s.header.Height)
	err = s.exec(checkOnly, func() (err error) {
		event, err = s.registerVoter(donor, rtx.Campaign, types.VoterDonor, func(cfg *types.Config, round *types.Round) (uint8, error) {
			donation, err := getRecord[types.Donation](s, s.keys.DonationKey(s.keys.RoundKey(rtx.Campaign, round.Number), donor))
			if err != nil {
				return 0, err
			}
			if donation == nil {
				return 0, types.ErrNotDonor
			}
			return DonorVotingPower(donation.Amount, cfg.DonatorVotingRights, round.Balance)
		})
		return
	})
	if err != nil {
		event = nil
	}
	return
}

func (s *State) InitStakerVoting(staker common.Address, rtx *tx.RegisterVoterTx, checkOnly bool) (event *types.EventRegisterVoter, err error) {
	s.logger.Debug("apply init staker voting", "staker", staker, "campaign", rtx.Campaign, "height", s.header.Height)
	err = s.exec(checkOnly, func() (err error) {
		event, err = s.registerVoter(staker, rtx.Campaign, types.VoterStaker, func(cfg *types.Config, _ *types.Round) (uint8, error) {
			stake, err := getRecord[types.StakeRecord](s, s.keys.StakeKey(staker))
			if err != nil {
				return 0, err
			}
			if stake == nil {
				return 0, types.ErrNotStaker
			}
			return StakerVotingPower(stake.Deposit, cfg.StakerVotingRights, cfg.TotalAmountStaked)
		})
		return
	})
	if err != nil {
		event = nil
	}
	return
}

func (s *State) Vote(participant common.Address, vtx *tx.VoteTx, checkOnly bool) (event *types.EventVote, err error) {
	s.logger.Debug("apply vote", "participant", participant, "campaign", vtx.Campaign, "continue", vtx.Continue, "height", s.header.Height)
	err = s.exec(checkOnly, func() error {
		campaign, err := s.getCampaign(vtx.Campaign)
		if err != nil {
			return err
		}
		round, err := s.activeRound(campaign)
		if err != nil {
			return err
		}
		vote, err := s.RoundVote(round)
		if err != nil {
			return err
		}
		if vote == nil {
			return types.ErrVotingNotInitialized
		}
		if vote.Ended {
			return types.ErrVotingEnded
		}
		if round.Status != types.RoundTargetMet {
			return types.ErrRoundTargetNotMet
		}
		voterKey := s.keys.VoterKey(campaign.ActiveRoundKey, participant)
		voter, err := getRecord[types.Voter](s, voterKey)
		if err != nil {
			return err
		}
		if voter == nil {
			return types.ErrNotVoter
		}
		if voter.HasVoted {
			return types.ErrAlreadyVoted
		}
		power := uint64(voter.VotingPower)
		if vtx.Continue {
			vote.ContinueWeight, err = checkedAdd(vote.ContinueWeight, power)
		} else {
			vote.TerminateWeight, err = checkedAdd(vote.TerminateWeight, power)
		}
		if err != nil {
			return err
		}
		switch voter.Kind {
		case types.VoterDonor:
			vote.DonorsVoted, err = checkedAdd(vote.DonorsVoted, 1)
		case types.VoterStaker:
			vote.StakersVoted, err = checkedAdd(vote.StakersVoted, 1)
		default:
			return types.ErrUnknownKind
		}
		if err != nil {
			return err
		}
		voter.HasVoted = true
		if err = s.putRecord(round.VoteKey, vote); err != nil {
			return err
		}
		if err = s.putRecord(voterKey, voter); err != nil {
			return err
		}
		event = &types.EventVote{
			CampaignRef: types.CampaignRef{Campaign: vtx.Campaign},
			Round:       round.Number,
			Participant: participant,
			Kind:        voter.Kind,
			Continue:    vtx.Continue,
			VotingPower: voter.VotingPower,
		}
		return nil
	})
	if err != nil {
		event = nil
	}
	return
}

// TallyVotes seals the round vote once its period has elapsed. The next
// round is vetoed only when terminate outweighs continue and turnout is
// strictly above the quorum.
func (s *State) TallyVotes(caller common.Address, ttx *tx.TallyVotesTx, checkOnly bool) (event *types.EventTallyVotes, err error) {
	s.logger.Debug("apply tally votes", "caller", caller, "campaign", ttx.Campaign, "height", s.header.Height)
	err = s.exec(checkOnly, func() error {
		campaign, err := s.getCampaign(ttx.Campaign)
		if err != nil {
			return err
		}
		round, err := s.activeRound(campaign)
		if err != nil {
			return err
		}
		vote, err := s.RoundVote(round)
		if err != nil {
			return err
		}
		if vote == nil {
			return types.ErrVotingNotInitialized
		}
		if vote.Ended {
			return types.ErrVotingEnded
		}
		cfg, err := s.getConfig()
		if err != nil {
			return err
		}
		period, err := checkedMul(cfg.RoundVotingPeriodInDays, secondsPerDay)
		if err != nil {
			return err
		}
		if elapsed := s.now() - vote.StartTime; elapsed <= 0 || uint64(elapsed) <= period {
			return types.ErrVotingPeriodActive
		}
		maxPossible, err := checkedAdd(cfg.ActiveStakers, round.Donors)
		if err != nil {
			return err
		}
		voters, err := checkedAdd(vote.DonorsVoted, vote.StakersVoted)
		if err != nil {
			return err
		}
		minRequired, err := minimumRequired(cfg.MinimumRequiredVotePercentage, maxPossible)
		if err != nil {
			return err
		}
		if vote.TerminateWeight > vote.ContinueWeight && voters > minRequired {
			campaign.CanStartNextRound = false
		}
		round.Status = types.RoundEnded
		vote.Ended = true
		if err = s.putRecord(round.VoteKey, vote); err != nil {
			return err
		}
		if err = s.putRecord(campaign.ActiveRoundKey, round); err != nil {
			return err
		}
		if err = s.putRecord(ttx.Campaign, campaign); err != nil {
			return err
		}
		event = &types.EventTallyVotes{
			CampaignRef:       types.CampaignRef{Campaign: ttx.Campaign},
			Round:             round.Number,
			ContinueWeight:    vote.ContinueWeight,
			TerminateWeight:   vote.TerminateWeight,
			Voters:            voters,
			MinimumRequired:   minRequired,
			CanStartNextRound: campaign.CanStartNextRound,
		}
		return nil
	})
	if err != nil {
		event = nil
	}
	return
}

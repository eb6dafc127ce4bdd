package state

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/calehh/fund-app/tx"
	"github.com/calehh/fund-app/types"
)

// Moderator returns the moderation record of staker for a campaign, or nil.
func (s *State) Moderator(campaign common.Hash, staker common.Address) (*types.ModeratorRecord, error) {
	return getRecord[types.ModeratorRecord](s, s.keys.ModeratorKey(campaign, staker))
}

func (s *State) InitStakerModeration(staker common.Address, mtx *tx.InitStakerModerationTx, checkOnly bool) (event *types.EventRegisterModerator, err error) {
	s.logger.Debug("apply init staker moderation", "staker", staker, "campaign", mtx.Campaign, "height", s.header.Height)
	err = s.exec(checkOnly, func() error {
		campaign, err := s.getCampaign(mtx.Campaign)
		if err != nil {
			return err
		}
		if campaign.Status == types.CampaignEnded {
			return types.ErrCampaignEnded
		}
		cfg, err := s.getConfig()
		if err != nil {
			return err
		}
		stake, err := getRecord[types.StakeRecord](s, s.keys.StakeKey(staker))
		if err != nil {
			return err
		}
		if stake == nil {
			return types.ErrNotStaker
		}
		modKey := s.keys.ModeratorKey(mtx.Campaign, staker)
		existing, err := getRecord[types.ModeratorRecord](s, modKey)
		if err != nil {
			return err
		}
		if existing != nil {
			return types.ErrModeratorExists
		}
		power, err := ModerationPower(stake.Deposit, cfg.StakerModerationRights, cfg.TotalAmountStaked)
		if err != nil {
			return err
		}
		record := &types.ModeratorRecord{
			Campaign:  mtx.Campaign,
			Moderator: staker,
			Power:     power,
			Kind:      types.ModeratorStaker,
		}
		if err = s.putRecord(modKey, record); err != nil {
			return err
		}
		event = &types.EventRegisterModerator{
			CampaignRef: types.CampaignRef{Campaign: mtx.Campaign},
			Moderator:   staker,
			Power:       power,
		}
		return nil
	})
	if err != nil {
		event = nil
	}
	return
}

// Moderate records a thumbs up or down and recomputes campaign validity
// from the running totals, so a campaign can flip back to valid.
func (s *State) Moderate(staker common.Address, mtx *tx.ModerateTx, checkOnly bool) (event *types.EventModerate, err error) {
	s.logger.Debug("apply moderate", "staker", staker, "campaign", mtx.Campaign, "thumbsUp", mtx.ThumbsUp, "height", s.header.Height)
	err = s.exec(checkOnly, func() error {
		campaign, err := s.getCampaign(mtx.Campaign)
		if err != nil {
			return err
		}
		if campaign.Status == types.CampaignEnded {
			return types.ErrCampaignEnded
		}
		modKey := s.keys.ModeratorKey(mtx.Campaign, staker)
		record, err := getRecord[types.ModeratorRecord](s, modKey)
		if err != nil {
			return err
		}
		if record == nil {
			return types.ErrNotModerator
		}
		if record.HasVoted {
			return types.ErrAlreadyModerated
		}
		cfg, err := s.getConfig()
		if err != nil {
			return err
		}
		power := uint64(record.Power)
		if mtx.ThumbsUp {
			campaign.ValidWeight, err = checkedAdd(campaign.ValidWeight, power)
		} else {
			campaign.InvalidWeight, err = checkedAdd(campaign.InvalidWeight, power)
		}
		if err != nil {
			return err
		}
		if campaign.ModeratorVotes, err = checkedAdd(campaign.ModeratorVotes, 1); err != nil {
			return err
		}
		minRequired, err := minimumRequired(cfg.MinimumRequiredVotePercentage, cfg.ActiveStakers)
		if err != nil {
			return err
		}
		campaign.IsValidCampaign = !(campaign.InvalidWeight > campaign.ValidWeight && campaign.ModeratorVotes > minRequired)
		record.HasVoted = true
		if err = s.putRecord(modKey, record); err != nil {
			return err
		}
		if err = s.putRecord(mtx.Campaign, campaign); err != nil {
			return err
		}
		event = &types.EventModerate{
			CampaignRef:     types.CampaignRef{Campaign: mtx.Campaign},
			Moderator:       staker,
			ThumbsUp:        mtx.ThumbsUp,
			Power:           record.Power,
			ValidWeight:     campaign.ValidWeight,
			InvalidWeight:   campaign.InvalidWeight,
			ModeratorVotes:  campaign.ModeratorVotes,
			IsValidCampaign: campaign.IsValidCampaign,
		}
		return nil
	})
	if err != nil {
		event = nil
	}
	return
}

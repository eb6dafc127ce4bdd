package state

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/calehh/fund-app/tx"
	"github.com/calehh/fund-app/types"
)

// StartNextRound opens the round after an ended one. The final round always
// asks for whatever is left of the campaign target.
func (s *State) StartNextRound(owner common.Address, ntx *tx.StartNextRoundTx, checkOnly bool) (event *types.EventStartNextRound, err error) {
	s.logger.Debug("apply start next round", "owner", owner, "target", ntx.Target, "height", s.header.Height)
	err = s.exec(checkOnly, func() error {
		key, campaign, err := s.ownedCampaign(owner)
		if err != nil {
			return err
		}
		current, err := s.activeRound(campaign)
		if err != nil {
			return err
		}
		if current.Status != types.RoundEnded {
			return types.ErrRoundNotEnded
		}
		if !campaign.CanStartNextRound {
			return types.ErrCannotStartNextRound
		}
		if campaign.ActiveRound >= campaign.TotalRounds {
			return types.ErrNoRoundsLeft
		}
		number := campaign.ActiveRound + 1
		var target uint64
		if number == campaign.TotalRounds {
			target, err = checkedSub(campaign.Target, campaign.Balance)
			if err != nil {
				return err
			}
		} else {
			total, err := checkedAdd(campaign.Balance, ntx.Target)
			if err != nil {
				return err
			}
			if ntx.Target == 0 || total > campaign.Target {
				return types.ErrInvalidRoundTarget
			}
			target = ntx.Target
		}
		if err = s.tokens().OpenAccount(campaign.TokenMint, campaign.Vault, types.AccountOf(key)); err != nil {
			return err
		}
		roundKey := s.keys.RoundKey(key, number)
		round := &types.Round{
			Campaign: key,
			Number:   number,
			Target:   target,
			Status:   types.RoundDonationsOpen,
		}
		campaign.ActiveRound = number
		campaign.ActiveRoundKey = roundKey
		if err = s.putRecord(roundKey, round); err != nil {
			return err
		}
		if err = s.putRecord(key, campaign); err != nil {
			return err
		}
		event = &types.EventStartNextRound{
			CampaignRef: types.CampaignRef{Campaign: key},
			Round:       number,
			Target:      target,
		}
		return nil
	})
	if err != nil {
		event = nil
	}
	return
}

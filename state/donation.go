package state

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/calehh/fund-app/tx"
	"github.com/calehh/fund-app/types"
)

// Donation returns the donation of donor in round, or nil.
func (s *State) Donation(round common.Hash, donor common.Address) (*types.Donation, error) {
	return getRecord[types.Donation](s, s.keys.DonationKey(round, donor))
}

// Donate moves amount from the donor into the campaign vault and books it
// against the active round. Each donor may donate once per round.
func (s *State) Donate(donor common.Address, dtx *tx.DonateTx, checkOnly bool) (event *types.EventDonate, err error) {
	s.logger.Debug("apply donate", "donor", donor, "campaign", dtx.Campaign, "amount", dtx.Amount, "height", s.header.Height)
	err = s.exec(checkOnly, func() error {
		campaign, err := s.getCampaign(dtx.Campaign)
		if err != nil {
			return err
		}
		if campaign.Status != types.CampaignActive {
			return types.ErrCampaignNotActive
		}
		if dtx.Round != campaign.ActiveRound {
			return types.ErrRoundNotActive
		}
		round, err := s.activeRound(campaign)
		if err != nil {
			return err
		}
		if round.Status != types.RoundDonationsOpen {
			return types.ErrRoundClosedToDonations
		}
		donationKey := s.keys.DonationKey(campaign.ActiveRoundKey, donor)
		existing, err := getRecord[types.Donation](s, donationKey)
		if err != nil {
			return err
		}
		if existing != nil {
			return types.ErrAlreadyDonated
		}
		if dtx.Amount == 0 {
			return types.ErrZeroAmount
		}
		campaignBalance, err := checkedAdd(campaign.Balance, dtx.Amount)
		if err != nil {
			return err
		}
		if campaignBalance > campaign.Target {
			return types.ErrTargetExceeded
		}
		roundBalance, err := checkedAdd(round.Balance, dtx.Amount)
		if err != nil {
			return err
		}
		donors, err := checkedAdd(round.Donors, 1)
		if err != nil {
			return err
		}

		tokens := s.tokens()
		// a mid-campaign withdrawal may have closed the vault
		if err = tokens.OpenAccount(campaign.TokenMint, campaign.Vault, types.AccountOf(dtx.Campaign)); err != nil {
			return err
		}
		if err = tokens.Transfer(campaign.TokenMint, donor, campaign.Vault, donor, dtx.Amount); err != nil {
			return err
		}

		round.Balance = roundBalance
		round.Donors = donors
		campaign.Balance = campaignBalance
		if round.Balance >= round.Target {
			round.Status = types.RoundTargetMet
		}
		if campaign.Balance >= campaign.Target {
			campaign.Status = types.CampaignTargetMet
		}
		donation := &types.Donation{
			Round:       campaign.ActiveRoundKey,
			RoundNumber: round.Number,
			Donor:       donor,
			Amount:      dtx.Amount,
		}
		if err = s.putRecord(donationKey, donation); err != nil {
			return err
		}
		if err = s.putRecord(campaign.ActiveRoundKey, round); err != nil {
			return err
		}
		if err = s.putRecord(dtx.Campaign, campaign); err != nil {
			return err
		}
		event = &types.EventDonate{
			CampaignRef:     types.CampaignRef{Campaign: dtx.Campaign},
			Round:           round.Number,
			Donor:           donor,
			Amount:          dtx.Amount,
			RoundBalance:    round.Balance,
			CampaignBalance: campaign.Balance,
			RoundStatus:     round.Status,
			CampaignStatus:  campaign.Status,
		}
		return nil
	})
	if err != nil {
		event = nil
	}
	return
}

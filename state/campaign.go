package state

import (
	"unicode/utf8"

	"github.com/ethereum/go-ethereum/common"

	"github.com/calehh/fund-app/tx"
	"github.com/calehh/fund-app/types"
)

const (
	MaxDescriptionLength = 200
	MaxMetadataRefLength = 64
)

func (s *State) getCampaign(key common.Hash) (*types.Campaign, error) {
	c, err := getRecord[types.Campaign](s, key)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, types.ErrCampaignNotFound
	}
	return c, nil
}

// ownedCampaign loads the campaign of owner. Campaign keys are derived from
// the owner, so holding the key is proof of ownership.
func (s *State) ownedCampaign(owner common.Address) (key common.Hash, c *types.Campaign, err error) {
	key = s.keys.CampaignKey(owner)
	c, err = s.getCampaign(key)
	if err != nil {
		return
	}
	if c.Owner != owner {
		err = types.ErrNotOwner
	}
	return
}

func (s *State) activeRound(c *types.Campaign) (*types.Round, error) {
	r, err := getRecord[types.Round](s, c.ActiveRoundKey)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, types.ErrRoundNotFound
	}
	return r, nil
}

// Campaign returns the campaign stored under key.
func (s *State) Campaign(key common.Hash) (*types.Campaign, error) {
	return s.getCampaign(key)
}

// Round returns the round stored under key, or ErrRoundNotFound.
func (s *State) Round(key common.Hash) (*types.Round, error) {
	r, err := getRecord[types.Round](s, key)
	if err == nil && r == nil {
		err = types.ErrRoundNotFound
	}
	return r, err
}

func (s *State) StartCampaign(owner common.Address, ctx *tx.StartCampaignTx, checkOnly bool) (event *types.EventStartCampaign, err error) {
	s.logger.Debug("apply start campaign", "owner", owner, "target", ctx.Target, "height", s.header.Height)
	err = s.exec(checkOnly, func() error {
		switch {
		case ctx.Target == 0:
			return types.ErrZeroTarget
		case utf8.RuneCountInString(ctx.Description) > MaxDescriptionLength:
			return types.ErrDescriptionTooLong
		case utf8.RuneCountInString(ctx.MetadataRef) > MaxMetadataRefLength:
			return types.ErrMetadataTooLong
		case ctx.TotalRounds == 0:
			return types.ErrZeroRounds
		case ctx.InitialRoundTarget > ctx.Target:
			return types.ErrRoundTargetExceedsTarget
		case ctx.TotalRounds > 1 && ctx.InitialRoundTarget == 0:
			return types.ErrZeroInitialRoundTarget
		}
		mint := ctx.TokenMint
		if mint == (common.Address{}) {
			cfg, err := s.getConfig()
			if err != nil {
				return err
			}
			mint = cfg.NativeTokenMint
		}
		key := s.keys.CampaignKey(owner)
		existing, err := getRecord[types.Campaign](s, key)
		if err != nil {
			return err
		}
		if existing != nil {
			return types.ErrCampaignExists
		}

		roundTarget := ctx.InitialRoundTarget
		if ctx.TotalRounds == 1 {
			roundTarget = ctx.Target
		}
		vault := types.AccountOf(s.keys.VaultKey(key))
		if err = s.tokens().OpenAccount(mint, vault, types.AccountOf(key)); err != nil {
			return err
		}
		roundKey := s.keys.RoundKey(key, 1)
		campaign := &types.Campaign{
			Owner:             owner,
			Vault:             vault,
			Description:       ctx.Description,
			MetadataRef:       ctx.MetadataRef,
			Target:            ctx.Target,
			TokenMint:         mint,
			Status:            types.CampaignActive,
			CanStartNextRound: true,
			TotalRounds:       ctx.TotalRounds,
			ActiveRound:       1,
			ActiveRoundKey:    roundKey,
			IsValidCampaign:   true,
		}
		round := &types.Round{
			Campaign: key,
			Number:   1,
			Target:   roundTarget,
			Status:   types.RoundDonationsOpen,
		}
		if err = s.putRecord(key, campaign); err != nil {
			return err
		}
		if err = s.putRecord(roundKey, round); err != nil {
			return err
		}
		event = &types.EventStartCampaign{
			CampaignRef: types.CampaignRef{Campaign: key},
			Owner:       owner,
			Vault:       vault,
			TokenMint:   mint,
			Description: ctx.Description,
			MetadataRef: ctx.MetadataRef,
			Target:      ctx.Target,
			TotalRounds: ctx.TotalRounds,
			RoundTarget: roundTarget,
		}
		return nil
	})
	if err != nil {
		event = nil
	}
	return
}

// Withdraw releases the whole vault to the owner. Campaign.Balance keeps
// the cumulative amount raised and is not decremented.
func (s *State) Withdraw(owner common.Address, _ *tx.WithdrawTx, checkOnly bool) (event *types.EventWithdraw, err error) {
	s.logger.Debug("apply withdraw", "owner", owner, "height", s.header.Height)
	err = s.exec(checkOnly, func() error {
		key, campaign, err := s.ownedCampaign(owner)
		if err != nil {
			return err
		}
		if !campaign.IsValidCampaign {
			return types.ErrInvalidCampaign
		}
		tokens := s.tokens()
		authority := types.AccountOf(key)
		amount, err := tokens.Balance(campaign.TokenMint, campaign.Vault)
		if err != nil {
			return err
		}
		if amount > 0 {
			if err = tokens.Transfer(campaign.TokenMint, campaign.Vault, owner, authority, amount); err != nil {
				return err
			}
		}
		if err = tokens.CloseAccount(campaign.TokenMint, campaign.Vault, owner, authority); err != nil {
			return err
		}
		if campaign.ActiveRound == campaign.TotalRounds {
			campaign.Status = types.CampaignEnded
		}
		if err = s.putRecord(key, campaign); err != nil {
			return err
		}
		event = &types.EventWithdraw{
			CampaignRef: types.CampaignRef{Campaign: key},
			Owner:       owner,
			Amount:      amount,
			Status:      campaign.Status,
		}
		return nil
	})
	if err != nil {
		event = nil
	}
	return
}

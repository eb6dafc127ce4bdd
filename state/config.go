package state

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/calehh/fund-app/tx"
	"github.com/calehh/fund-app/types"
)

func (s *State) getConfig() (*types.Config, error) {
	cfg, err := getRecord[types.Config](s, s.keys.ConfigKey())
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, types.ErrConfigNotFound
	}
	return cfg, nil
}

// Config returns the global config record.
func (s *State) Config() (*types.Config, error) {
	return s.getConfig()
}

// Initialize creates the singleton config. Params in the tx take precedence
// over the genesis params.
func (s *State) Initialize(admin common.Address, itx *tx.InitializeTx, checkOnly bool) (event *types.EventInitialize, err error) {
	s.logger.Debug("apply initialize", "admin", admin, "height", s.header.Height)
	err = s.exec(checkOnly, func() error {
		key := s.keys.ConfigKey()
		existing, err := getRecord[types.Config](s, key)
		if err != nil {
			return err
		}
		if existing != nil {
			return types.ErrConfigExists
		}
		if itx.NativeTokenMint == (common.Address{}) {
			return types.ErrEmptyMint
		}
		params, err := s.genesisParams()
		if err != nil {
			return err
		}
		if itx.Params != nil {
			params = *itx.Params
		}
		if err = params.Validate(); err != nil {
			return err
		}
		cfg := &types.Config{
			Admin:                         admin,
			NativeTokenMint:               itx.NativeTokenMint,
			DonationFee:                   0,
			StakingInitialized:            false,
			RoundVotingPeriodInDays:       params.RoundVotingPeriodInDays,
			MinimumRequiredVotePercentage: params.MinimumRequiredVotePercentage,
			DonatorVotingRights:           params.DonatorVotingRights,
			StakerVotingRights:            params.StakerVotingRights,
			StakerModerationRights:        params.StakerModerationRights,
		}
		if err = s.putRecord(key, cfg); err != nil {
			return err
		}
		event = &types.EventInitialize{
			Admin:           admin,
			NativeTokenMint: itx.NativeTokenMint,
			Params:          params,
		}
		return nil
	})
	if err != nil {
		event = nil
	}
	return
}

package state

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/calehh/fund-app/tx"
	"github.com/calehh/fund-app/types"
)

// StakeRecord returns the stake of staker, or nil.
func (s *State) StakeRecord(staker common.Address) (*types.StakeRecord, error) {
	return getRecord[types.StakeRecord](s, s.keys.StakeKey(staker))
}

func (s *State) InitializeStaking(admin common.Address, itx *tx.InitializeStakingTx, checkOnly bool) (event *types.EventInitializeStaking, err error) {
	s.logger.Debug("apply initialize staking", "admin", admin, "mint", itx.Mint, "height", s.header.Height)
	err = s.exec(checkOnly, func() error {
		cfg, err := s.getConfig()
		if err != nil {
			return err
		}
		if admin != cfg.Admin {
			return types.ErrNotAdmin
		}
		if cfg.StakingInitialized {
			return types.ErrStakingInitialized
		}
		if itx.Mint != cfg.NativeTokenMint {
			return types.ErrMintMismatch
		}
		configKey := s.keys.ConfigKey()
		pool := types.AccountOf(s.keys.StakingPoolKey(configKey))
		if err = s.tokens().OpenAccount(cfg.NativeTokenMint, pool, types.AccountOf(configKey)); err != nil {
			return err
		}
		cfg.StakingPool = pool
		cfg.StakingInitialized = true
		if err = s.putRecord(configKey, cfg); err != nil {
			return err
		}
		event = &types.EventInitializeStaking{
			Pool: pool,
			Mint: cfg.NativeTokenMint,
		}
		return nil
	})
	if err != nil {
		event = nil
	}
	return
}

func (s *State) Stake(staker common.Address, stx *tx.StakeTx, checkOnly bool) (event *types.EventStake, err error) {
	s.logger.Debug("apply stake", "staker", staker, "amount", stx.Amount, "height", s.header.Height)
	err = s.exec(checkOnly, func() error {
		cfg, err := s.getConfig()
		if err != nil {
			return err
		}
		if !cfg.StakingInitialized {
			return types.ErrStakingNotInitialized
		}
		if stx.Amount == 0 {
			return types.ErrZeroAmount
		}
		stakeKey := s.keys.StakeKey(staker)
		existing, err := getRecord[types.StakeRecord](s, stakeKey)
		if err != nil {
			return err
		}
		if existing != nil {
			return types.ErrAlreadyStaked
		}
		activeStakers, err := checkedAdd(cfg.ActiveStakers, 1)
		if err != nil {
			return err
		}
		totalStaked, err := checkedAdd(cfg.TotalAmountStaked, stx.Amount)
		if err != nil {
			return err
		}
		if err = s.tokens().Transfer(cfg.NativeTokenMint, staker, cfg.StakingPool, staker, stx.Amount); err != nil {
			return err
		}
		cfg.ActiveStakers = activeStakers
		cfg.TotalAmountStaked = totalStaked
		record := &types.StakeRecord{
			Staker:   staker,
			Deposit:  stx.Amount,
			StakedAt: s.now(),
			Reward:   0,
		}
		if err = s.putRecord(stakeKey, record); err != nil {
			return err
		}
		if err = s.putRecord(s.keys.ConfigKey(), cfg); err != nil {
			return err
		}
		event = &types.EventStake{
			Staker:            staker,
			Amount:            stx.Amount,
			ActiveStakers:     cfg.ActiveStakers,
			TotalAmountStaked: cfg.TotalAmountStaked,
		}
		return nil
	})
	if err != nil {
		event = nil
	}
	return
}

// Unstake returns the whole deposit and removes the staker from the pool
// totals, so later power snapshots divide by the remaining stake only.
// Earlier on-chain escrows of this design counted both totals up on
// unstake. The decrement stands until the intended direction is confirmed.
func (s *State) Unstake(staker common.Address, _ *tx.UnstakeTx, checkOnly bool) (event *types.EventUnstake, err error) {
	s.logger.Debug("apply unstake", "staker", staker, "height", s.header.Height)
	err = s.exec(checkOnly, func() error {
		cfg, err := s.getConfig()
		if err != nil {
			return err
		}
		stakeKey := s.keys.StakeKey(staker)
		record, err := getRecord[types.StakeRecord](s, stakeKey)
		if err != nil {
			return err
		}
		if record == nil {
			return types.ErrNotStaker
		}
		activeStakers, err := checkedSub(cfg.ActiveStakers, 1)
		if err != nil {
			return err
		}
		totalStaked, err := checkedSub(cfg.TotalAmountStaked, record.Deposit)
		if err != nil {
			return err
		}
		authority := types.AccountOf(s.keys.ConfigKey())
		if err = s.tokens().Transfer(cfg.NativeTokenMint, cfg.StakingPool, staker, authority, record.Deposit); err != nil {
			return err
		}
		cfg.ActiveStakers = activeStakers
		cfg.TotalAmountStaked = totalStaked
		s.deleteRecord(stakeKey)
		if err = s.putRecord(s.keys.ConfigKey(), cfg); err != nil {
			return err
		}
		event = &types.EventUnstake{
			Staker:            staker,
			Amount:            record.Deposit,
			ActiveStakers:     cfg.ActiveStakers,
			TotalAmountStaked: cfg.TotalAmountStaked,
		}
		return nil
	})
	if err != nil {
		event = nil
	}
	return
}

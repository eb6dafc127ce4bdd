package state

import (
	"github.com/ethereum/go-ethereum/common/math"

	"github.com/calehh/fund-app/types"
)

func checkedAdd(x, y uint64) (uint64, error) {
	z, overflow := math.SafeAdd(x, y)
	if overflow {
		return 0, types.ErrOverflow
	}
	return z, nil
}

func checkedSub(x, y uint64) (uint64, error) {
	z, underflow := math.SafeSub(x, y)
	if underflow {
		return 0, types.ErrUnderflow
	}
	return z, nil
}

func checkedMul(x, y uint64) (uint64, error) {
	z, overflow := math.SafeMul(x, y)
	if overflow {
		return 0, types.ErrOverflow
	}
	return z, nil
}

// weightedShare computes floor(amount*rights/total) clamped to the uint8
// power range.
func weightedShare(amount, rights, total uint64) (uint8, error) {
	if total == 0 {
		return 0, types.ErrZeroDivisor
	}
	p, err := checkedMul(amount, rights)
	if err != nil {
		return 0, err
	}
	q := p / total
	if q > types.MaxVotingPower {
		q = types.MaxVotingPower
	}
	return uint8(q), nil
}

// DonorVotingPower is the frozen power of a donor in a round whose balance
// is final.
func DonorVotingPower(donation, donatorRights, roundBalance uint64) (uint8, error) {
	return weightedShare(donation, donatorRights, roundBalance)
}

func StakerVotingPower(deposit, stakerRights, totalStaked uint64) (uint8, error) {
	return weightedShare(deposit, stakerRights, totalStaked)
}

func ModerationPower(deposit, moderationRights, totalStaked uint64) (uint8, error) {
	return weightedShare(deposit, moderationRights, totalStaked)
}

// minimumRequired is floor(percent*population/100).
func minimumRequired(percent, population uint64) (uint64, error) {
	p, err := checkedMul(percent, population)
	if err != nil {
		return 0, err
	}
	return p / 100, nil
}

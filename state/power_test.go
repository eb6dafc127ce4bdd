package state

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/calehh/fund-app/types"
)

func TestVotingPower(t *testing.T) {
	p, err := DonorVotingPower(40, 60, 200)
	require.NoError(t, err)
	require.EqualValues(t, 12, p)

	p, err = StakerVotingPower(1, 40, 3)
	require.NoError(t, err)
	require.EqualValues(t, 13, p)

	p, err = ModerationPower(1000, 255, 10)
	require.NoError(t, err)
	require.EqualValues(t, types.MaxVotingPower, p)

	_, err = DonorVotingPower(40, 60, 0)
	require.ErrorIs(t, err, types.ErrZeroDivisor)
	require.ErrorIs(t, err, types.ErrArithmetic)

	_, err = StakerVotingPower(math.MaxUint64, 2, 1)
	require.ErrorIs(t, err, types.ErrOverflow)
}

func TestMinimumRequired(t *testing.T) {
	n, err := minimumRequired(30, 15)
	require.NoError(t, err)
	require.EqualValues(t, 4, n)

	n, err = minimumRequired(30, 3)
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestCheckedArithmetic(t *testing.T) {
	_, err := checkedAdd(math.MaxUint64, 1)
	require.ErrorIs(t, err, types.ErrOverflow)
	_, err = checkedSub(0, 1)
	require.ErrorIs(t, err, types.ErrUnderflow)
	_, err = checkedMul(math.MaxUint64, 2)
	require.ErrorIs(t, err, types.ErrOverflow)
}

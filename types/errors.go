package types

import (
	"errors"
	"fmt"
)

// Codespace is reported with every failed tx result.
const Codespace = "fund"

// Error categories. Every error returned by a state transition wraps
// exactly one of them.
var (
	ErrValidation   = errors.New("validation error")
	ErrState        = errors.New("state error")
	ErrDuplicate    = errors.New("duplicate")
	ErrArithmetic   = errors.New("arithmetic error")
	ErrUnauthorized = errors.New("unauthorized")
)

var (
	ErrZeroTarget               = fmt.Errorf("%w: target must be greater than zero", ErrValidation)
	ErrDescriptionTooLong       = fmt.Errorf("%w: description too long", ErrValidation)
	ErrMetadataTooLong          = fmt.Errorf("%w: metadata reference too long", ErrValidation)
	ErrZeroRounds               = fmt.Errorf("%w: total rounds must be greater than zero", ErrValidation)
	ErrRoundTargetExceedsTarget = fmt.Errorf("%w: initial round target exceeds campaign target", ErrValidation)
	ErrZeroInitialRoundTarget   = fmt.Errorf("%w: initial round target must be set for multi-round campaigns", ErrValidation)
	ErrZeroAmount               = fmt.Errorf("%w: amount must be greater than zero", ErrValidation)
	ErrTargetExceeded           = fmt.Errorf("%w: donation exceeds campaign target", ErrValidation)
	ErrInvalidRoundTarget       = fmt.Errorf("%w: invalid round target", ErrValidation)
	ErrMintMismatch             = fmt.Errorf("%w: mint does not match native token mint", ErrValidation)
	ErrEmptyMint                = fmt.Errorf("%w: token mint is empty", ErrValidation)
	ErrInvalidParams            = fmt.Errorf("%w: invalid governance params", ErrValidation)
	ErrUnknownStatus            = fmt.Errorf("%w: unknown status code", ErrValidation)
	ErrUnknownKind              = fmt.Errorf("%w: unknown participant kind", ErrValidation)
)

var (
	ErrConfigNotFound         = fmt.Errorf("%w: config not initialized", ErrState)
	ErrCampaignNotFound       = fmt.Errorf("%w: campaign not found", ErrState)
	ErrRoundNotFound          = fmt.Errorf("%w: round not found", ErrState)
	ErrCampaignNotActive      = fmt.Errorf("%w: campaign is not active", ErrState)
	ErrCampaignEnded          = fmt.Errorf("%w: campaign ended", ErrState)
	ErrRoundNotActive         = fmt.Errorf("%w: round is not the active round", ErrState)
	ErrRoundClosedToDonations = fmt.Errorf("%w: round closed to donations", ErrState)
	ErrRoundTargetNotMet      = fmt.Errorf("%w: round target not met", ErrState)
	ErrRoundNotEnded          = fmt.Errorf("%w: round not ended", ErrState)
	ErrNoRoundsLeft           = fmt.Errorf("%w: campaign has no rounds left", ErrState)
	ErrCannotStartNextRound   = fmt.Errorf("%w: next round was voted down", ErrState)
	ErrVotingInitialized      = fmt.Errorf("%w: voting already initialized", ErrState)
	ErrVotingNotInitialized   = fmt.Errorf("%w: voting not initialized", ErrState)
	ErrVotingEnded            = fmt.Errorf("%w: voting ended", ErrState)
	ErrVotingPeriodActive     = fmt.Errorf("%w: voting period still active", ErrState)
	ErrInvalidCampaign        = fmt.Errorf("%w: campaign marked invalid by moderators", ErrState)
	ErrStakingNotInitialized  = fmt.Errorf("%w: staking not initialized", ErrState)
	ErrNotDonor               = fmt.Errorf("%w: no donation in this round", ErrState)
	ErrNotStaker              = fmt.Errorf("%w: no stake record", ErrState)
	ErrNotVoter               = fmt.Errorf("%w: voter not registered", ErrState)
	ErrNotModerator           = fmt.Errorf("%w: moderator not registered", ErrState)
)

var (
	ErrConfigExists       = fmt.Errorf("%w: config already initialized", ErrDuplicate)
	ErrCampaignExists     = fmt.Errorf("%w: owner already has a campaign", ErrDuplicate)
	ErrAlreadyDonated     = fmt.Errorf("%w: already donated in this round", ErrDuplicate)
	ErrVoterExists        = fmt.Errorf("%w: voter already registered", ErrDuplicate)
	ErrAlreadyVoted       = fmt.Errorf("%w: already voted", ErrDuplicate)
	ErrStakingInitialized = fmt.Errorf("%w: staking already initialized", ErrDuplicate)
	ErrAlreadyStaked      = fmt.Errorf("%w: already staked", ErrDuplicate)
	ErrModeratorExists    = fmt.Errorf("%w: moderator already registered", ErrDuplicate)
	ErrAlreadyModerated   = fmt.Errorf("%w: already moderated", ErrDuplicate)
)

var (
	ErrOverflow    = fmt.Errorf("%w: overflow", ErrArithmetic)
	ErrUnderflow   = fmt.Errorf("%w: underflow", ErrArithmetic)
	ErrZeroDivisor = fmt.Errorf("%w: zero divisor", ErrArithmetic)
)

var (
	ErrNotOwner = fmt.Errorf("%w: caller is not the campaign owner", ErrUnauthorized)
	ErrNotAdmin = fmt.Errorf("%w: caller is not the admin", ErrUnauthorized)
)

// ErrorCode maps an error to the code reported in tx results.
func ErrorCode(err error) uint32 {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrValidation):
		return 1
	case errors.Is(err, ErrState):
		return 2
	case errors.Is(err, ErrDuplicate):
		return 3
	case errors.Is(err, ErrArithmetic):
		return 4
	case errors.Is(err, ErrUnauthorized):
		return 5
	default:
		return 6
	}
}

package types

import (
	"encoding/json"
	"fmt"
)

type CampaignStatus uint8

const (
	CampaignActive    CampaignStatus = 1
	CampaignTargetMet CampaignStatus = 2
	CampaignEnded     CampaignStatus = 3
)

func ParseCampaignStatus(v uint8) (CampaignStatus, error) {
	switch s := CampaignStatus(v); s {
	case CampaignActive, CampaignTargetMet, CampaignEnded:
		return s, nil
	}
	return 0, fmt.Errorf("%w: campaign status %d", ErrUnknownStatus, v)
}

func (s CampaignStatus) String() string {
	switch s {
	case CampaignActive:
		return "active"
	case CampaignTargetMet:
		return "target_met"
	case CampaignEnded:
		return "ended"
	}
	return fmt.Sprintf("CampaignStatus(%d)", uint8(s))
}

func (s *CampaignStatus) UnmarshalJSON(dat []byte) (err error) {
	*s, err = decodeCode(dat, ParseCampaignStatus)
	return
}

type RoundStatus uint8

const (
	RoundDonationsOpen RoundStatus = 1
	RoundTargetMet     RoundStatus = 2
	RoundEnded         RoundStatus = 3
)

func ParseRoundStatus(v uint8) (RoundStatus, error) {
	switch s := RoundStatus(v); s {
	case RoundDonationsOpen, RoundTargetMet, RoundEnded:
		return s, nil
	}
	return 0, fmt.Errorf("%w: round status %d", ErrUnknownStatus, v)
}

func (s RoundStatus) String() string {
	switch s {
	case RoundDonationsOpen:
		return "donations_open"
	case RoundTargetMet:
		return "round_target_met"
	case RoundEnded:
		return "round_ended"
	}
	return fmt.Sprintf("RoundStatus(%d)", uint8(s))
}

func (s *RoundStatus) UnmarshalJSON(dat []byte) (err error) {
	*s, err = decodeCode(dat, ParseRoundStatus)
	return
}

// VoterKind tells which weight pool a round voter draws power from.
type VoterKind uint8

const (
	VoterDonor  VoterKind = 1
	VoterStaker VoterKind = 2
)

func ParseVoterKind(v uint8) (VoterKind, error) {
	switch k := VoterKind(v); k {
	case VoterDonor, VoterStaker:
		return k, nil
	}
	return 0, fmt.Errorf("%w: voter kind %d", ErrUnknownKind, v)
}

func (k VoterKind) String() string {
	switch k {
	case VoterDonor:
		return "donor"
	case VoterStaker:
		return "staker"
	}
	return fmt.Sprintf("VoterKind(%d)", uint8(k))
}

func (k *VoterKind) UnmarshalJSON(dat []byte) (err error) {
	*k, err = decodeCode(dat, ParseVoterKind)
	return
}

// ModeratorKind has a single member today; the code is stored so that
// other moderator classes can be added without a record migration.
type ModeratorKind uint8

const ModeratorStaker ModeratorKind = 1

func ParseModeratorKind(v uint8) (ModeratorKind, error) {
	if k := ModeratorKind(v); k == ModeratorStaker {
		return k, nil
	}
	return 0, fmt.Errorf("%w: moderator kind %d", ErrUnknownKind, v)
}

func (k *ModeratorKind) UnmarshalJSON(dat []byte) (err error) {
	*k, err = decodeCode(dat, ParseModeratorKind)
	return
}

func decodeCode[T ~uint8](dat []byte, parse func(uint8) (T, error)) (T, error) {
	var v uint8
	if err := json.Unmarshal(dat, &v); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return parse(v)
}

package types

import (
	"encoding/binary"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

const (
	SeedConfig      = "config"
	SeedCampaign    = "campaign"
	SeedVault       = "vault"
	SeedRound       = "round"
	SeedVoting      = "voting"
	SeedDonator     = "donator"
	SeedVoter       = "voter"
	SeedModerator   = "moderator"
	SeedStakingPool = "staking-pool"
	SeedStaker      = "staker"
)

// KeyDeriver derives the deterministic record keys every record is
// addressed by.
type KeyDeriver interface {
	ConfigKey() common.Hash
	CampaignKey(owner common.Address) common.Hash
	VaultKey(campaign common.Hash) common.Hash
	RoundKey(campaign common.Hash, round uint64) common.Hash
	VoteKey(round common.Hash) common.Hash
	DonationKey(round common.Hash, donor common.Address) common.Hash
	VoterKey(round common.Hash, participant common.Address) common.Hash
	ModeratorKey(campaign common.Hash, staker common.Address) common.Hash
	StakingPoolKey(config common.Hash) common.Hash
	StakeKey(staker common.Address) common.Hash
}

// Keccak derives keys as keccak256(seed || parts...).
type Keccak struct{}

var _ KeyDeriver = Keccak{}

func DeriveKey(seed string, parts ...[]byte) common.Hash {
	data := make([][]byte, 0, len(parts)+1)
	data = append(data, []byte(seed))
	data = append(data, parts...)
	return crypto.Keccak256Hash(data...)
}

// AccountOf returns the token account controlled by a derived key.
func AccountOf(key common.Hash) common.Address {
	return common.BytesToAddress(key.Bytes())
}

func (Keccak) ConfigKey() common.Hash {
	return DeriveKey(SeedConfig)
}

func (Keccak) CampaignKey(owner common.Address) common.Hash {
	return DeriveKey(SeedCampaign, owner.Bytes())
}

func (Keccak) VaultKey(campaign common.Hash) common.Hash {
	return DeriveKey(SeedVault, campaign.Bytes())
}

func (Keccak) RoundKey(campaign common.Hash, round uint64) common.Hash {
	return DeriveKey(SeedRound, campaign.Bytes(), binary.BigEndian.AppendUint64(nil, round))
}

func (Keccak) VoteKey(round common.Hash) common.Hash {
	return DeriveKey(SeedVoting, round.Bytes())
}

func (Keccak) DonationKey(round common.Hash, donor common.Address) common.Hash {
	return DeriveKey(SeedDonator, round.Bytes(), donor.Bytes())
}

func (Keccak) VoterKey(round common.Hash, participant common.Address) common.Hash {
	return DeriveKey(SeedVoter, round.Bytes(), participant.Bytes())
}

func (Keccak) ModeratorKey(campaign common.Hash, staker common.Address) common.Hash {
	return DeriveKey(SeedModerator, campaign.Bytes(), staker.Bytes())
}

func (Keccak) StakingPoolKey(config common.Hash) common.Hash {
	return DeriveKey(SeedStakingPool, config.Bytes())
}

func (Keccak) StakeKey(staker common.Address) common.Hash {
	return DeriveKey(SeedStaker, staker.Bytes())
}

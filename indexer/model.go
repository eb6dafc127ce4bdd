package indexer

// sql models. Addresses and keys are stored as 0x hex strings.

type Height struct {
	Id     uint64 `gorm:"primary_key" json:"id"`
	Height uint64 `json:"height"`
}

type Campaign struct {
	Id                string `gorm:"primary_key" json:"id"`
	Owner             string `gorm:"index" json:"owner"`
	Vault             string `json:"vault"`
	TokenMint         string `json:"token_mint"`
	Description       string `json:"description"`
	MetadataRef       string `json:"metadata_ref"`
	Target            uint64 `json:"target"`
	TotalRounds       uint64 `json:"total_rounds"`
	ActiveRound       uint64 `json:"active_round"`
	Balance           uint64 `json:"balance"`
	Withdrawn         uint64 `json:"withdrawn"`
	Status            uint8  `json:"status"`
	CanStartNextRound bool   `json:"can_start_next_round"`
	IsValidCampaign   bool   `json:"is_valid_campaign"`
	ValidWeight       uint64 `json:"valid_weight"`
	InvalidWeight     uint64 `json:"invalid_weight"`
	ModeratorVotes    uint64 `json:"moderator_votes"`
	CreateHeight      uint64 `json:"create_height"`
	UpdateHeight      uint64 `json:"update_height"`
}

type Round struct {
	Id                uint64 `gorm:"primary_key;AUTO_INCREMENT" json:"id"`
	Campaign          string `gorm:"unique_index:idx_campaign_round" json:"campaign"`
	Number            uint64 `gorm:"unique_index:idx_campaign_round" json:"number"`
	Target            uint64 `json:"target"`
	Balance           uint64 `json:"balance"`
	Status            uint8  `json:"status"`
	VotingStart       int64  `json:"voting_start"`
	ContinueWeight    uint64 `json:"continue_weight"`
	TerminateWeight   uint64 `json:"terminate_weight"`
	Voters            uint64 `json:"voters"`
	MinimumRequired   uint64 `json:"minimum_required"`
	Tallied           bool   `json:"tallied"`
	CanStartNextRound bool   `json:"can_start_next_round"`
	CreateHeight      uint64 `json:"create_height"`
}

type Donation struct {
	Id       uint64 `gorm:"primary_key;AUTO_INCREMENT" json:"id"`
	Campaign string `gorm:"index" json:"campaign"`
	Round    uint64 `json:"round"`
	Donor    string `gorm:"index" json:"donor"`
	Amount   uint64 `json:"amount"`
	Height   uint64 `json:"height"`
}

type Vote struct {
	Id          uint64 `gorm:"primary_key;AUTO_INCREMENT" json:"id"`
	Campaign    string `gorm:"index" json:"campaign"`
	Round       uint64 `json:"round"`
	Participant string `json:"participant"`
	Kind        uint8  `json:"kind"`
	Continue    bool   `json:"continue"`
	VotingPower uint8  `json:"voting_power"`
	Height      uint64 `json:"height"`
}

type Moderation struct {
	Id        uint64 `gorm:"primary_key;AUTO_INCREMENT" json:"id"`
	Campaign  string `gorm:"index" json:"campaign"`
	Moderator string `json:"moderator"`
	ThumbsUp  bool   `json:"thumbs_up"`
	Power     uint8  `json:"power"`
	Height    uint64 `json:"height"`
}

type Stake struct {
	Staker string `gorm:"primary_key" json:"staker"`
	Amount uint64 `json:"amount"`
	Active bool   `json:"active"`
	Height uint64 `json:"height"`
}

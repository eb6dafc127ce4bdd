package indexer

import (
	"github.com/jinzhu/gorm"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

func paginate(page, pageSize int) func(db *gorm.DB) *gorm.DB {
	if pageSize <= 0 || pageSize > MaxPageSize {
		pageSize = DefaultPageSize
	}
	if page < 0 {
		page = 0
	}
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(page * pageSize).Limit(pageSize)
	}
}

// list fills out with one page of the rows matched by query and returns the
// total count.
func list(model interface{}, query *gorm.DB, order string, page, pageSize int, out interface{}) (total uint64, err error) {
	if err = query.Model(model).Count(&total).Error; err != nil {
		return 0, err
	}
	err = query.Order(order).Scopes(paginate(page, pageSize)).Find(out).Error
	return
}

func (c *ChainIndexer) getCampaigns(owner string, status uint8, page, pageSize int) ([]Campaign, uint64, error) {
	q := c.db
	if owner != "" {
		q = q.Where("owner = ?", owner)
	}
	if status != 0 {
		q = q.Where("status = ?", status)
	}
	campaigns := make([]Campaign, 0)
	total, err := list(&Campaign{}, q, "create_height desc", page, pageSize, &campaigns)
	if err != nil {
		return nil, 0, err
	}
	return campaigns, total, nil
}

func (c *ChainIndexer) getCampaignById(id string) (*Campaign, error) {
	var campaign Campaign
	if err := c.db.Where("id = ?", id).First(&campaign).Error; err != nil {
		return nil, err
	}
	return &campaign, nil
}

func (c *ChainIndexer) getRounds(campaign string) ([]Round, error) {
	rounds := make([]Round, 0)
	err := c.db.Where("campaign = ?", campaign).Order("number asc").Find(&rounds).Error
	if err != nil {
		return nil, err
	}
	return rounds, nil
}

func (c *ChainIndexer) getDonations(campaign string, round uint64, donor string, page, pageSize int) ([]Donation, uint64, error) {
	q := c.db
	if campaign != "" {
		q = q.Where("campaign = ?", campaign)
	}
	if round != 0 {
		q = q.Where("round = ?", round)
	}
	if donor != "" {
		q = q.Where("donor = ?", donor)
	}
	donations := make([]Donation, 0)
	total, err := list(&Donation{}, q, "id desc", page, pageSize, &donations)
	if err != nil {
		return nil, 0, err
	}
	return donations, total, nil
}

func (c *ChainIndexer) getVotes(campaign string, round uint64, page, pageSize int) ([]Vote, uint64, error) {
	q := c.db.Where("campaign = ?", campaign)
	if round != 0 {
		q = q.Where("round = ?", round)
	}
	votes := make([]Vote, 0)
	total, err := list(&Vote{}, q, "id desc", page, pageSize, &votes)
	if err != nil {
		return nil, 0, err
	}
	return votes, total, nil
}

func (c *ChainIndexer) getModerations(campaign string, page, pageSize int) ([]Moderation, uint64, error) {
	moderations := make([]Moderation, 0)
	total, err := list(&Moderation{}, c.db.Where("campaign = ?", campaign), "id desc", page, pageSize, &moderations)
	if err != nil {
		return nil, 0, err
	}
	return moderations, total, nil
}

func (c *ChainIndexer) getStakes(activeOnly bool, page, pageSize int) ([]Stake, uint64, error) {
	q := c.db
	if activeOnly {
		q = q.Where("active = ?", true)
	}
	stakes := make([]Stake, 0)
	total, err := list(&Stake{}, q, "height desc", page, pageSize, &stakes)
	if err != nil {
		return nil, 0, err
	}
	return stakes, total, nil
}

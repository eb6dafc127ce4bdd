package indexer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	abci "github.com/cometbft/cometbft/abci/types"
	cmtlog "github.com/cometbft/cometbft/libs/log"
	comethttp "github.com/cometbft/cometbft/rpc/client/http"
	ctypes "github.com/cometbft/cometbft/rpc/core/types"
	"github.com/go-co-op/gocron/v2"
	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/postgres"
	_ "github.com/jinzhu/gorm/dialects/sqlite"

	"github.com/calehh/fund-app/types"
)

var ErrDecodeEvent = errors.New("decode event fail")

// ChainClient is the part of the CometBFT rpc client the indexer reads from.
type ChainClient interface {
	Status(ctx context.Context) (*ctypes.ResultStatus, error)
	BlockResults(ctx context.Context, height *int64) (*ctypes.ResultBlockResults, error)
}

// OpenDB opens a postgres database for postgres:// urls and a sqlite file
// otherwise, and migrates the schema.
func OpenDB(url string) (db *gorm.DB, err error) {
	if strings.HasPrefix(url, "postgres://") || strings.HasPrefix(url, "postgresql://") {
		db, err = gorm.Open("postgres", url)
	} else {
		db, err = gorm.Open("sqlite3", url)
		if err == nil {
			// one connection: sqlite serializes writers, and every
			// connection to :memory: would see its own database
			db.DB().SetMaxOpenConns(1)
		}
	}
	if err != nil {
		return nil, err
	}
	err = db.AutoMigrate(&Height{}, &Campaign{}, &Round{}, &Donation{}, &Vote{}, &Moderation{}, &Stake{}).Error
	if err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

type eventHandler func(db *gorm.DB, event abci.Event, height int64) error

// ChainIndexer copies the events of committed blocks into sql tables.
type ChainIndexer struct {
	logger        cmtlog.Logger
	url           string
	interval      time.Duration
	db            *gorm.DB
	cli           ChainClient
	eventHandlers map[string]eventHandler
	scheduler     gocron.Scheduler

	mtx sync.Mutex
	// Height is the next block to index.
	Height int64
}

func NewChainIndexer(logger cmtlog.Logger, db *gorm.DB, chainUrl string, interval time.Duration) (*ChainIndexer, error) {
	logger.Info("NewChainIndexer", "url", chainUrl, "interval", interval)
	cli, err := comethttp.New(chainUrl, "/websocket")
	if err != nil {
		return nil, err
	}
	return NewChainIndexerWithClient(logger, db, cli, interval)
}

func NewChainIndexerWithClient(logger cmtlog.Logger, db *gorm.DB, cli ChainClient, interval time.Duration) (*ChainIndexer, error) {
	h := Height{Id: 1}
	if err := db.First(&h).Error; err != nil && !gorm.IsRecordNotFoundError(err) {
		return nil, err
	}
	c := &ChainIndexer{
		logger:   logger.With("module", "indexer"),
		interval: interval,
		db:       db,
		cli:      cli,
		Height:   int64(h.Height + 1),
	}
	if hc, ok := cli.(*comethttp.HTTP); ok {
		c.url = hc.Remote()
	}
	c.eventHandlers = map[string]eventHandler{
		types.EventStartCampaignType:    handleEventStartCampaign,
		types.EventDonateType:           handleEventDonate,
		types.EventInitializeVotingType: handleEventInitializeVoting,
		types.EventVoteType:             handleEventVote,
		types.EventTallyVotesType:       handleEventTallyVotes,
		types.EventStartNextRoundType:   handleEventStartNextRound,
		types.EventWithdrawType:         handleEventWithdraw,
		types.EventStakeType:            handleEventStake,
		types.EventUnstakeType:          handleEventUnstake,
		types.EventModerateType:         handleEventModerate,
	}
	return c, nil
}

func (c *ChainIndexer) DB() *gorm.DB {
	return c.db
}

// Start runs Sync every interval until Stop. A slow pass delays the next
// one instead of overlapping it.
func (c *ChainIndexer) Start(ctx context.Context) error {
	s, err := gocron.NewScheduler()
	if err != nil {
		return err
	}
	_, err = s.NewJob(
		gocron.DurationJob(c.interval),
		gocron.NewTask(func() {
			if err := c.Sync(ctx); err != nil {
				c.logger.Error("indexer sync fail", "height", c.Height, "err", err)
			}
		}),
		gocron.WithName("chain_indexer_sync"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return err
	}
	c.scheduler = s
	s.Start()
	c.logger.Info("indexer started", "height", c.Height)
	return nil
}

func (c *ChainIndexer) Stop() {
	if c.scheduler != nil {
		if err := c.scheduler.Shutdown(); err != nil {
			c.logger.Error("shutdown scheduler fail", "err", err)
		}
	}
	c.logger.Info("indexer stopped")
}

// reconnect replaces a dead rpc client. Injected clients are kept.
func (c *ChainIndexer) reconnect() {
	hc, ok := c.cli.(*comethttp.HTTP)
	if !ok || c.url == "" || hc.IsRunning() {
		return
	}
	_ = hc.Stop()
	cli, err := comethttp.New(c.url, "/websocket")
	if err != nil {
		c.logger.Error("reconnect fail", "err", err)
		return
	}
	c.cli = cli
}

// Sync indexes every block up to the latest committed one.
func (c *ChainIndexer) Sync(ctx context.Context) error {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	st, err := c.cli.Status(ctx)
	if err != nil {
		c.reconnect()
		return err
	}
	for c.Height <= st.SyncInfo.LatestBlockHeight {
		if err = ctx.Err(); err != nil {
			return err
		}
		height := c.Height
		res, err := c.cli.BlockResults(ctx, &height)
		if err != nil {
			c.reconnect()
			return err
		}
		if err = c.indexBlock(res); err != nil {
			return err
		}
		c.logger.Debug("indexed block", "height", height, "txs", len(res.TxsResults))
		c.Height++
	}
	return nil
}

// indexBlock writes one block in a single transaction together with the
// height marker, so a failed block is retried from scratch.
func (c *ChainIndexer) indexBlock(res *ctypes.ResultBlockResults) (err error) {
	db := c.db.Begin()
	if err = db.Error; err != nil {
		return err
	}
	defer func() {
		if err != nil {
			db.Rollback()
		}
	}()
	for _, txRes := range res.TxsResults {
		if txRes.Code != 0 {
			continue
		}
		for _, event := range txRes.Events {
			h, ok := c.eventHandlers[event.Type]
			if !ok {
				continue
			}
			if err = h(db, event, res.Height); err != nil {
				return fmt.Errorf("%s at %d: %w", event.Type, res.Height, err)
			}
		}
	}
	if err = db.Save(&Height{Id: 1, Height: uint64(res.Height)}).Error; err != nil {
		return err
	}
	return db.Commit().Error
}

func handleEventStartCampaign(db *gorm.DB, event abci.Event, height int64) error {
	ev := types.DecodeEvent[types.EventStartCampaign](event)
	if ev == nil {
		return ErrDecodeEvent
	}
	campaign := Campaign{
		Id:                ev.Campaign.Hex(),
		Owner:             ev.Owner.Hex(),
		Vault:             ev.Vault.Hex(),
		TokenMint:         ev.TokenMint.Hex(),
		Description:       ev.Description,
		MetadataRef:       ev.MetadataRef,
		Target:            ev.Target,
		TotalRounds:       ev.TotalRounds,
		ActiveRound:       1,
		Status:            uint8(types.CampaignActive),
		CanStartNextRound: true,
		IsValidCampaign:   true,
		CreateHeight:      uint64(height),
		UpdateHeight:      uint64(height),
	}
	if err := db.Save(&campaign).Error; err != nil {
		return err
	}
	return db.Create(&Round{
		Campaign:     campaign.Id,
		Number:       1,
		Target:       ev.RoundTarget,
		Status:       uint8(types.RoundDonationsOpen),
		CreateHeight: uint64(height),
	}).Error
}

func updateCampaign(db *gorm.DB, id string, height int64, fields map[string]interface{}) error {
	fields["update_height"] = uint64(height)
	return db.Model(&Campaign{}).Where("id = ?", id).Updates(fields).Error
}

func updateRound(db *gorm.DB, campaign string, number uint64, fields map[string]interface{}) error {
	return db.Model(&Round{}).Where("campaign = ? AND number = ?", campaign, number).Updates(fields).Error
}

func handleEventDonate(db *gorm.DB, event abci.Event, height int64) error {
	ev := types.DecodeEvent[types.EventDonate](event)
	if ev == nil {
		return ErrDecodeEvent
	}
	id := ev.Campaign.Hex()
	err := db.Create(&Donation{
		Campaign: id,
		Round:    ev.Round,
		Donor:    ev.Donor.Hex(),
		Amount:   ev.Amount,
		Height:   uint64(height),
	}).Error
	if err != nil {
		return err
	}
	err = updateRound(db, id, ev.Round, map[string]interface{}{
		"balance": ev.RoundBalance,
		"status":  uint8(ev.RoundStatus),
	})
	if err != nil {
		return err
	}
	return updateCampaign(db, id, height, map[string]interface{}{
		"balance": ev.CampaignBalance,
		"status":  uint8(ev.CampaignStatus),
	})
}

func handleEventInitializeVoting(db *gorm.DB, event abci.Event, height int64) error {
	ev := types.DecodeEvent[types.EventInitializeVoting](event)
	if ev == nil {
		return ErrDecodeEvent
	}
	return updateRound(db, ev.Campaign.Hex(), ev.Round, map[string]interface{}{
		"voting_start": ev.StartTime,
	})
}

func handleEventVote(db *gorm.DB, event abci.Event, height int64) error {
	ev := types.DecodeEvent[types.EventVote](event)
	if ev == nil {
		return ErrDecodeEvent
	}
	return db.Create(&Vote{
		Campaign:    ev.Campaign.Hex(),
		Round:       ev.Round,
		Participant: ev.Participant.Hex(),
		Kind:        uint8(ev.Kind),
		Continue:    ev.Continue,
		VotingPower: ev.VotingPower,
		Height:      uint64(height),
	}).Error
}

func handleEventTallyVotes(db *gorm.DB, event abci.Event, height int64) error {
	ev := types.DecodeEvent[types.EventTallyVotes](event)
	if ev == nil {
		return ErrDecodeEvent
	}
	id := ev.Campaign.Hex()
	err := updateRound(db, id, ev.Round, map[string]interface{}{
		"continue_weight":      ev.ContinueWeight,
		"terminate_weight":     ev.TerminateWeight,
		"voters":               ev.Voters,
		"minimum_required":     ev.MinimumRequired,
		"can_start_next_round": ev.CanStartNextRound,
		"tallied":              true,
		"status":               uint8(types.RoundEnded),
	})
	if err != nil {
		return err
	}
	return updateCampaign(db, id, height, map[string]interface{}{
		"can_start_next_round": ev.CanStartNextRound,
	})
}

func handleEventStartNextRound(db *gorm.DB, event abci.Event, height int64) error {
	ev := types.DecodeEvent[types.EventStartNextRound](event)
	if ev == nil {
		return ErrDecodeEvent
	}
	id := ev.Campaign.Hex()
	err := db.Create(&Round{
		Campaign:     id,
		Number:       ev.Round,
		Target:       ev.Target,
		Status:       uint8(types.RoundDonationsOpen),
		CreateHeight: uint64(height),
	}).Error
	if err != nil {
		return err
	}
	return updateCampaign(db, id, height, map[string]interface{}{
		"active_round": ev.Round,
	})
}

func handleEventWithdraw(db *gorm.DB, event abci.Event, height int64) error {
	ev := types.DecodeEvent[types.EventWithdraw](event)
	if ev == nil {
		return ErrDecodeEvent
	}
	return updateCampaign(db, ev.Campaign.Hex(), height, map[string]interface{}{
		"withdrawn": gorm.Expr("withdrawn + ?", ev.Amount),
		"status":    uint8(ev.Status),
	})
}

func handleEventStake(db *gorm.DB, event abci.Event, height int64) error {
	ev := types.DecodeEvent[types.EventStake](event)
	if ev == nil {
		return ErrDecodeEvent
	}
	return db.Save(&Stake{
		Staker: ev.Staker.Hex(),
		Amount: ev.Amount,
		Active: true,
		Height: uint64(height),
	}).Error
}

func handleEventUnstake(db *gorm.DB, event abci.Event, height int64) error {
	ev := types.DecodeEvent[types.EventUnstake](event)
	if ev == nil {
		return ErrDecodeEvent
	}
	return db.Save(&Stake{
		Staker: ev.Staker.Hex(),
		Amount: 0,
		Active: false,
		Height: uint64(height),
	}).Error
}

func handleEventModerate(db *gorm.DB, event abci.Event, height int64) error {
	ev := types.DecodeEvent[types.EventModerate](event)
	if ev == nil {
		return ErrDecodeEvent
	}
	id := ev.Campaign.Hex()
	err := db.Create(&Moderation{
		Campaign:  id,
		Moderator: ev.Moderator.Hex(),
		ThumbsUp:  ev.ThumbsUp,
		Power:     ev.Power,
		Height:    uint64(height),
	}).Error
	if err != nil {
		return err
	}
	return updateCampaign(db, id, height, map[string]interface{}{
		"is_valid_campaign": ev.IsValidCampaign,
		"valid_weight":      ev.ValidWeight,
		"invalid_weight":    ev.InvalidWeight,
		"moderator_votes":   ev.ModeratorVotes,
	})
}

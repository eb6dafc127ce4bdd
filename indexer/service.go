package indexer

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"github.com/jinzhu/gorm"
)

type Service struct {
	engine  *gin.Engine
	indexer *ChainIndexer
	server  *http.Server
}

func NewService(listenAddr string, indexer *ChainIndexer) *Service {
	r := gin.New()
	r.Use(gin.Recovery())
	s := &Service{
		engine:  r,
		indexer: indexer,
		server:  &http.Server{Addr: listenAddr, Handler: r},
	}
	s.engine.POST("/getCampaigns", s.handleGetCampaigns)
	s.engine.POST("/getRounds", s.handleGetRounds)
	s.engine.POST("/getDonations", s.handleGetDonations)
	s.engine.POST("/getVotes", s.handleGetVotes)
	s.engine.POST("/getModerations", s.handleGetModerations)
	s.engine.POST("/getStakes", s.handleGetStakes)
	return s
}

func (s *Service) Handler() http.Handler {
	return s.engine
}

// Start serves until Stop.
func (s *Service) Start() {
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.indexer.logger.Error("indexer service stopped", "err", err)
	}
}

func (s *Service) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = s.server.Shutdown(ctx)
}

// normalizeAddress turns an address given in any hex case into the stored
// checksum form.
func normalizeAddress(a string) string {
	if a == "" {
		return ""
	}
	return common.HexToAddress(a).Hex()
}

func normalizeKey(k string) string {
	if k == "" {
		return ""
	}
	return common.HexToHash(k).Hex()
}

func serverError(c *gin.Context, err error) {
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

type GetCampaignsReq struct {
	CampaignId string `json:"campaignId"`
	Owner      string `json:"owner"`
	Status     uint8  `json:"status"`
	Page       int    `json:"page"`
	PageSize   int    `json:"pageSize"`
}

type GetCampaignsResponse struct {
	Campaigns []Campaign `json:"campaigns"`
	Total     uint64     `json:"total"`
}

func (s *Service) handleGetCampaigns(c *gin.Context) {
	var req GetCampaignsReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	response := GetCampaignsResponse{Campaigns: make([]Campaign, 0)}
	if req.CampaignId != "" {
		campaign, err := s.indexer.getCampaignById(normalizeKey(req.CampaignId))
		if err != nil {
			if gorm.IsRecordNotFoundError(err) {
				c.JSON(http.StatusNotFound, gin.H{"error": "campaign not found"})
				return
			}
			serverError(c, err)
			return
		}
		response.Campaigns = append(response.Campaigns, *campaign)
		response.Total = 1
		c.JSON(http.StatusOK, response)
		return
	}
	campaigns, total, err := s.indexer.getCampaigns(normalizeAddress(req.Owner), req.Status, req.Page, req.PageSize)
	if err != nil {
		serverError(c, err)
		return
	}
	response.Campaigns = campaigns
	response.Total = total
	c.JSON(http.StatusOK, response)
}

type GetRoundsReq struct {
	CampaignId string `json:"campaignId" binding:"required"`
}

type GetRoundsResponse struct {
	Rounds []Round `json:"rounds"`
}

func (s *Service) handleGetRounds(c *gin.Context) {
	var req GetRoundsReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rounds, err := s.indexer.getRounds(normalizeKey(req.CampaignId))
	if err != nil {
		serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, GetRoundsResponse{Rounds: rounds})
}

type GetDonationsReq struct {
	CampaignId string `json:"campaignId"`
	Round      uint64 `json:"round"`
	Donor      string `json:"donor"`
	Page       int    `json:"page"`
	PageSize   int    `json:"pageSize"`
}

type GetDonationsResponse struct {
	Donations []Donation `json:"donations"`
	Total     uint64     `json:"total"`
}

func (s *Service) handleGetDonations(c *gin.Context) {
	var req GetDonationsReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.CampaignId == "" && req.Donor == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "campaignId or donor is required"})
		return
	}
	donations, total, err := s.indexer.getDonations(normalizeKey(req.CampaignId), req.Round, normalizeAddress(req.Donor), req.Page, req.PageSize)
	if err != nil {
		serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, GetDonationsResponse{Donations: donations, Total: total})
}

type GetVotesReq struct {
	CampaignId string `json:"campaignId" binding:"required"`
	Round      uint64 `json:"round"`
	Page       int    `json:"page"`
	PageSize   int    `json:"pageSize"`
}

type GetVotesResponse struct {
	Votes []Vote `json:"votes"`
	Total uint64 `json:"total"`
}

func (s *Service) handleGetVotes(c *gin.Context) {
	var req GetVotesReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	votes, total, err := s.indexer.getVotes(normalizeKey(req.CampaignId), req.Round, req.Page, req.PageSize)
	if err != nil {
		serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, GetVotesResponse{Votes: votes, Total: total})
}

type GetModerationsReq struct {
	CampaignId string `json:"campaignId" binding:"required"`
	Page       int    `json:"page"`
	PageSize   int    `json:"pageSize"`
}

type GetModerationsResponse struct {
	Moderations []Moderation `json:"moderations"`
	Total       uint64       `json:"total"`
}

func (s *Service) handleGetModerations(c *gin.Context) {
	var req GetModerationsReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	moderations, total, err := s.indexer.getModerations(normalizeKey(req.CampaignId), req.Page, req.PageSize)
	if err != nil {
		serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, GetModerationsResponse{Moderations: moderations, Total: total})
}

type GetStakesReq struct {
	ActiveOnly bool `json:"activeOnly"`
	Page       int  `json:"page"`
	PageSize   int  `json:"pageSize"`
}

type GetStakesResponse struct {
	Stakes []Stake `json:"stakes"`
	Total  uint64  `json:"total"`
}

func (s *Service) handleGetStakes(c *gin.Context) {
	var req GetStakesReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	stakes, total, err := s.indexer.getStakes(req.ActiveOnly, req.Page, req.PageSize)
	if err != nil {
		serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, GetStakesResponse{Stakes: stakes, Total: total})
}

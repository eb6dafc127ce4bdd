package indexer

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c := newTestIndexer(t, newTestDB(t), campaignHistory())
	require.NoError(t, c.Sync(context.Background()))
	return NewService("127.0.0.1:0", c)
}

func post(t *testing.T, s *Service, path string, body any, out any) int {
	t.Helper()
	dat, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(dat))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	if out != nil && w.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
	}
	return w.Code
}

func TestServiceCampaigns(t *testing.T) {
	s := newTestService(t)

	var res GetCampaignsResponse
	require.Equal(t, http.StatusOK, post(t, s, "/getCampaigns", GetCampaignsReq{Owner: strings.ToLower(testOwner.Hex())}, &res))
	require.EqualValues(t, 1, res.Total)
	require.Equal(t, testCampaign.Hex(), res.Campaigns[0].Id)

	res = GetCampaignsResponse{}
	require.Equal(t, http.StatusOK, post(t, s, "/getCampaigns", GetCampaignsReq{CampaignId: testCampaign.Hex()}, &res))
	require.Len(t, res.Campaigns, 1)
	require.EqualValues(t, 400, res.Campaigns[0].Withdrawn)
	require.EqualValues(t, 100, res.Campaigns[0].ValidWeight)
	require.EqualValues(t, 1, res.Campaigns[0].ModeratorVotes)

	res = GetCampaignsResponse{}
	require.Equal(t, http.StatusOK, post(t, s, "/getCampaigns", GetCampaignsReq{Status: 3}, &res))
	require.Zero(t, res.Total)
	require.NotNil(t, res.Campaigns)

	require.Equal(t, http.StatusNotFound, post(t, s, "/getCampaigns", GetCampaignsReq{CampaignId: "0x01"}, nil))
}

func TestServiceRoundsAndVotes(t *testing.T) {
	s := newTestService(t)

	var rounds GetRoundsResponse
	require.Equal(t, http.StatusOK, post(t, s, "/getRounds", GetRoundsReq{CampaignId: testCampaign.Hex()}, &rounds))
	require.Len(t, rounds.Rounds, 2)
	require.EqualValues(t, 1, rounds.Rounds[0].Number)
	require.Equal(t, http.StatusBadRequest, post(t, s, "/getRounds", GetRoundsReq{}, nil))

	var votes GetVotesResponse
	require.Equal(t, http.StatusOK, post(t, s, "/getVotes", GetVotesReq{CampaignId: testCampaign.Hex(), Round: 1}, &votes))
	require.EqualValues(t, 1, votes.Total)
	require.EqualValues(t, 12, votes.Votes[0].VotingPower)

	var moderations GetModerationsResponse
	require.Equal(t, http.StatusOK, post(t, s, "/getModerations", GetModerationsReq{CampaignId: testCampaign.Hex()}, &moderations))
	require.EqualValues(t, 1, moderations.Total)
	require.True(t, moderations.Moderations[0].ThumbsUp)
}

func TestServiceDonationsAndStakes(t *testing.T) {
	s := newTestService(t)

	var donations GetDonationsResponse
	require.Equal(t, http.StatusOK, post(t, s, "/getDonations", GetDonationsReq{Donor: testDonor.Hex()}, &donations))
	require.EqualValues(t, 1, donations.Total)
	require.EqualValues(t, 400, donations.Donations[0].Amount)
	require.Equal(t, http.StatusBadRequest, post(t, s, "/getDonations", GetDonationsReq{Round: 1}, nil))

	var stakes GetStakesResponse
	require.Equal(t, http.StatusOK, post(t, s, "/getStakes", GetStakesReq{}, &stakes))
	require.EqualValues(t, 1, stakes.Total)
	stakes = GetStakesResponse{}
	require.Equal(t, http.StatusOK, post(t, s, "/getStakes", GetStakesReq{ActiveOnly: true}, &stakes))
	require.Zero(t, stakes.Total)
}

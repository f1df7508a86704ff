package service

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/andrew/llm-movie-rec/pkg/models"
	"github.com/andrew/llm-movie-rec/pkg/recommend"
)

// ExplainRequest asks why rec suits a user with the given history
type ExplainRequest struct {
	History        []models.Movie `json:"history"`
	Recommendation models.Movie   `json:"recommendation"`
}

type ExplainResponse struct {
	Explanation string `json:"explanation"`
	Model       string `json:"model"`
}

// RankRequest asks for candidates to be ordered for a user described either
// by a profile or by a viewing history. The profile wins when both are sent.
type RankRequest struct {
	Profile    *models.UserProfile `json:"profile,omitempty"`
	History    []models.Movie      `json:"history,omitempty"`
	Candidates []models.Movie      `json:"candidates"`
}

type RankResponse struct {
	Ranking []int          `json:"ranking"`
	Ordered []models.Movie `json:"ordered"`
	Model   string         `json:"model"`
}

type errorResponse struct {
	Error string `json:"error"`
	Reply string `json:"reply,omitempty"`
}

func (s *Server) explain(c *gin.Context) {
	var req ExplainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return
	}
	if req.Recommendation.Title == "" {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "recommendation title is required"})
		return
	}

	explainer := recommend.NewExplainer(s.client, s.requestLogger(c))
	explanation, err := explainer.Explain(c.Request.Context(), req.History, req.Recommendation)
	if err != nil {
		c.JSON(http.StatusBadGateway, errorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, ExplainResponse{Explanation: explanation, Model: s.client.Model()})
}

func (s *Server) rank(c *gin.Context) {
	var req RankRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return
	}
	if len(req.Candidates) == 0 {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "candidates are required"})
		return
	}

	var profile string
	switch {
	case req.Profile != nil:
		p, err := recommend.ProfileYAML(*req.Profile)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
		profile = p
	case len(req.History) > 0:
		profile = recommend.ProfilePrompt(req.History)
	default:
		c.JSON(http.StatusBadRequest, errorResponse{Error: "profile or history is required"})
		return
	}

	ranker := recommend.NewRanker(s.client, s.requestLogger(c), s.metrics)
	ranking, err := ranker.Rank(c.Request.Context(), profile, req.Candidates)
	if err == nil {
		if err = recommend.ValidatePermutation(ranking, len(req.Candidates)); err != nil {
			s.metrics.RecordParseFailure("permutation")
		}
	}
	if err != nil {
		resp := errorResponse{Error: err.Error()}
		if errors.Is(err, recommend.ErrMalformedRankingOutput) || errors.Is(err, recommend.ErrNotPermutation) {
			resp.Reply = ranker.Reply()
		}
		c.JSON(http.StatusBadGateway, resp)
		return
	}

	ordered := make([]models.Movie, len(ranking))
	for i, idx := range ranking {
		ordered[i] = req.Candidates[idx]
	}
	c.JSON(http.StatusOK, RankResponse{Ranking: ranking, Ordered: ordered, Model: s.client.Model()})
}

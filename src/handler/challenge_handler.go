package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/butecobot/challenge-api/src/domain"
	"github.com/butecobot/challenge-api/src/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type ChallengeHandler struct {
	challengeService *service.ChallengeService
}

func NewChallengeHandler(challengeService *service.ChallengeService) *ChallengeHandler {
	return &ChallengeHandler{
		challengeService: challengeService,
	}
}

func (h *ChallengeHandler) logger(ctx context.Context) *zerolog.Logger {
	l := zerolog.Ctx(ctx).With().Str("handler", "challenge").Logger()
	return &l
}

// CreateChallengeRequest is the payload for POST /challenge/create.
type CreateChallengeRequest struct {
	ChallengerID string  `json:"challengerId" binding:"required,notblank"`
	ChallengedID string  `json:"challengedId" binding:"required,notblank"`
	ChannelID    string  `json:"channelId" binding:"required,notblank"`
	Description  *string `json:"description" binding:"omitempty,max=500"`
}

// IncrementScoreRequest is the payload for POST /challenge/{id}/increment.
// The path id is authoritative; the body challengeId is accepted for
// compatibility and ignored.
type IncrementScoreRequest struct {
	ChallengeID int64  `json:"challengeId"`
	UserID      string `json:"userId" binding:"required,notblank"`
}

// localDateTimeLayout matches the ISO-8601 local date-time wire format
// (no zone offset); fractional seconds appear only when non-zero.
const localDateTimeLayout = "2006-01-02T15:04:05.999999"

type localDateTime time.Time

func (t localDateTime) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(time.Time(t).Format(localDateTimeLayout))), nil
}

// ChallengeResponse is the wire shape of a challenge.
type ChallengeResponse struct {
	ID              int64                  `json:"id"`
	ChallengerID    string                 `json:"challengerId"`
	ChallengedID    string                 `json:"challengedId"`
	ChannelID       string                 `json:"channelId"`
	Status          domain.ChallengeStatus `json:"status"`
	ChallengerScore int                    `json:"challengerScore"`
	ChallengedScore int                    `json:"challengedScore"`
	Description     *string                `json:"description"`
	CreatedAt       localDateTime          `json:"createdAt"`
	UpdatedAt       localDateTime          `json:"updatedAt"`
	CompletedAt     *localDateTime         `json:"completedAt"`
}

func newChallengeResponse(c *domain.Challenge) ChallengeResponse {
	resp := ChallengeResponse{
		ID:              c.ID,
		ChallengerID:    c.ChallengerID,
		ChallengedID:    c.ChallengedID,
		ChannelID:       c.ChannelID,
		Status:          c.Status,
		ChallengerScore: c.ChallengerScore,
		ChallengedScore: c.ChallengedScore,
		Description:     c.Description,
		CreatedAt:       localDateTime(c.CreatedAt),
		UpdatedAt:       localDateTime(c.UpdatedAt),
	}
	if c.CompletedAt != nil {
		completed := localDateTime(*c.CompletedAt)
		resp.CompletedAt = &completed
	}
	return resp
}

func newChallengeResponseList(challenges []domain.Challenge) []ChallengeResponse {
	// Non-nil so an empty result serializes as [] instead of null.
	responses := make([]ChallengeResponse, 0, len(challenges))
	for i := range challenges {
		responses = append(responses, newChallengeResponse(&challenges[i]))
	}
	return responses
}

// CreateChallenge handles POST /challenge/create
func (h *ChallengeHandler) CreateChallenge(c *gin.Context) {
	logger := h.logger(c.Request.Context()).With().Str("func", "CreateChallenge").Logger()

	var req CreateChallengeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error().Err(err).Msg("invalid request payload")
		respondWithValidationError(c, err)
		return
	}

	challenge, err := h.challengeService.CreateChallenge(
		c.Request.Context(),
		req.ChallengerID,
		req.ChallengedID,
		req.ChannelID,
		req.Description,
	)
	if err != nil {
		logger.Error().Err(err).Msg("failed to create challenge")
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, newChallengeResponse(challenge))
}

// AcceptChallenge handles POST /challenge/{id}/accept
func (h *ChallengeHandler) AcceptChallenge(c *gin.Context) {
	logger := h.logger(c.Request.Context()).With().Str("func", "AcceptChallenge").Logger()

	id, ok := challengeIDParam(c)
	if !ok {
		return
	}

	challenge, err := h.challengeService.AcceptChallenge(c.Request.Context(), id)
	if err != nil {
		logger.Error().Err(err).Int64("challenge_id", id).Msg("failed to accept challenge")
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, newChallengeResponse(challenge))
}

// RejectChallenge handles POST /challenge/{id}/reject
func (h *ChallengeHandler) RejectChallenge(c *gin.Context) {
	logger := h.logger(c.Request.Context()).With().Str("func", "RejectChallenge").Logger()

	id, ok := challengeIDParam(c)
	if !ok {
		return
	}

	challenge, err := h.challengeService.RejectChallenge(c.Request.Context(), id)
	if err != nil {
		logger.Error().Err(err).Int64("challenge_id", id).Msg("failed to reject challenge")
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, newChallengeResponse(challenge))
}

// IncrementScore handles POST /challenge/{id}/increment. Every domain error
// on this route reports 400, unknown id included.
func (h *ChallengeHandler) IncrementScore(c *gin.Context) {
	logger := h.logger(c.Request.Context()).With().Str("func", "IncrementScore").Logger()

	id, ok := challengeIDParam(c)
	if !ok {
		return
	}

	var req IncrementScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error().Err(err).Msg("invalid request payload")
		respondWithValidationError(c, err)
		return
	}

	challenge, err := h.challengeService.IncrementScore(c.Request.Context(), id, req.UserID)
	if err != nil {
		logger.Error().Err(err).Int64("challenge_id", id).Str("user_id", req.UserID).Msg("failed to increment score")
		if domainErr := domain.AsDomainError(err); domainErr.Code() == domain.ErrorCodeResourceNotFound {
			respondWithDetail(c, http.StatusBadRequest, domainErr.ClientMsg())
			return
		}
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, newChallengeResponse(challenge))
}

// CloseChallenge handles POST /challenge/{id}/close
func (h *ChallengeHandler) CloseChallenge(c *gin.Context) {
	logger := h.logger(c.Request.Context()).With().Str("func", "CloseChallenge").Logger()

	id, ok := challengeIDParam(c)
	if !ok {
		return
	}

	challenge, err := h.challengeService.CloseChallenge(c.Request.Context(), id)
	if err != nil {
		logger.Error().Err(err).Int64("challenge_id", id).Msg("failed to close challenge")
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, newChallengeResponse(challenge))
}

// GetChallengeByID handles GET /challenge/{id}
func (h *ChallengeHandler) GetChallengeByID(c *gin.Context) {
	id, ok := challengeIDParam(c)
	if !ok {
		return
	}

	challenge, err := h.challengeService.GetChallengeByID(c.Request.Context(), id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, newChallengeResponse(challenge))
}

// GetActiveChallengesForUser handles GET /challenge/user/{userId}/active
func (h *ChallengeHandler) GetActiveChallengesForUser(c *gin.Context) {
	challenges, err := h.challengeService.GetActiveChallengesForUser(c.Request.Context(), c.Param("userId"))
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, newChallengeResponseList(challenges))
}

// GetPendingChallengesForUser handles GET /challenge/user/{userId}/pending
func (h *ChallengeHandler) GetPendingChallengesForUser(c *gin.Context) {
	challenges, err := h.challengeService.GetPendingChallengesForUser(c.Request.Context(), c.Param("userId"))
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, newChallengeResponseList(challenges))
}

// GetAllChallengesForUser handles GET /challenge/user/{userId}/all
func (h *ChallengeHandler) GetAllChallengesForUser(c *gin.Context) {
	challenges, err := h.challengeService.GetAllChallengesForUser(c.Request.Context(), c.Param("userId"))
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, newChallengeResponseList(challenges))
}

// GetActiveChallengesInChannel handles GET /challenge/channel/{channelId}/active
func (h *ChallengeHandler) GetActiveChallengesInChannel(c *gin.Context) {
	challenges, err := h.challengeService.GetActiveChallengesInChannel(c.Request.Context(), c.Param("channelId"))
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, newChallengeResponseList(challenges))
}

// challengeIDParam parses the {id} path segment. A non-numeric id is a
// malformed request, not a missing challenge.
func challengeIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respondWithError(c, domain.NewError(domain.ErrorCodeParameterInvalid, errors.New("invalid challenge id"),
			domain.WithMsg("Challenge id must be a number")))
		return 0, false
	}
	return id, true
}

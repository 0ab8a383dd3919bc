package session

import (
	"errors"
	"net/http"

	"codema-service/internal/middleware"
	"codema-service/internal/models"
	"codema-service/pkg/response"

	"github.com/gin-gonic/gin"
)

type SessionHandler struct {
	sessionService *SessionService
}

func NewSessionHandler(sessionService *SessionService) *SessionHandler {
	return &SessionHandler{sessionService: sessionService}
}

func (h *SessionHandler) RegisterRoutes(rg *gin.RouterGroup) {
	sessions := rg.Group("/sessions")
	{
		sessions.POST("", h.CreateSession)
		sessions.GET("", h.ListSessions)
		sessions.GET("/:id", h.GetSession)
		sessions.POST("/:id/open", h.OpenSession)
		sessions.POST("/:id/votes", h.CastVote)
		sessions.GET("/:id/votes", h.GetVotes)
		sessions.GET("/:id/ballot", h.GetVoterBallot)
		sessions.GET("/:id/stats", h.LiveStats)
		sessions.POST("/:id/close", h.CloseSession)
		sessions.POST("/:id/cancel", h.CancelSession)
		sessions.GET("/:id/result", h.GetResult)
		sessions.GET("/:id/export", h.ExportResults)
	}
}

// writeServiceError maps the engine's sentinel errors onto the HTTP
// surface, keeping "not allowed", "not possible right now" and "invalid
// request" distinguishable for the client.
func writeServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrSessionNotFound):
		response.Error(c, http.StatusNotFound, response.CodeNotFound, err.Error())
	case errors.Is(err, ErrUnauthorized):
		response.Error(c, http.StatusForbidden, response.CodeUnauthorized, err.Error())
	case errors.Is(err, ErrAlreadyClosed):
		response.Error(c, http.StatusConflict, response.CodeAlreadyClosed, err.Error())
	case errors.Is(err, ErrInvalidSessionState):
		response.Error(c, http.StatusConflict, response.CodeInvalidSessionState, err.Error())
	case errors.Is(err, ErrNotEligible):
		response.Error(c, http.StatusForbidden, response.CodeNotEligible, err.Error())
	case errors.Is(err, ErrInvalidOption), errors.Is(err, ErrAmbiguousBallot):
		response.Error(c, http.StatusBadRequest, response.CodeInvalidOption, err.Error())
	case errors.Is(err, ErrMissingImpedimentReason):
		response.Error(c, http.StatusBadRequest, response.CodeMissingMotivo, err.Error())
	case errors.Is(err, ErrInvalidMajority):
		response.BadRequest(c, err.Error())
	case errors.Is(err, ErrNotFinalized):
		response.Error(c, http.StatusNotFound, response.CodeNotFound, err.Error())
	default:
		response.Error(c, http.StatusServiceUnavailable, response.CodeStoreUnavailable, err.Error())
	}
}

// CreateSession godoc
// @Summary      Create a voting session
// @Tags         sessions
// @Accept       json
// @Produce      json
// @Param        request body models.CreateSessionRequest true "session configuration"
// @Success      201 {object} models.VotingSession
// @Security     BearerAuth
// @Router       /sessions [post]
func (h *SessionHandler) CreateSession(c *gin.Context) {
	var req models.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	session, err := h.sessionService.CreateSession(c.Request.Context(), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, session)
}

// ListSessions godoc
// @Summary      List voting sessions
// @Tags         sessions
// @Produce      json
// @Success      200 {array} models.VotingSession
// @Security     BearerAuth
// @Router       /sessions [get]
func (h *SessionHandler) ListSessions(c *gin.Context) {
	sessions, err := h.sessionService.ListSessions(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, sessions)
}

func (h *SessionHandler) GetSession(c *gin.Context) {
	session, err := h.sessionService.GetSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// OpenSession godoc
// @Summary      Open a session for voting and freeze the roster
// @Tags         sessions
// @Produce      json
// @Param        id path string true "session id"
// @Success      200 {object} models.VotingSession
// @Security     BearerAuth
// @Router       /sessions/{id}/open [post]
func (h *SessionHandler) OpenSession(c *gin.Context) {
	session, err := h.sessionService.OpenSession(c.Request.Context(), c.Param("id"), middleware.CallerIdentity(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// CastVote godoc
// @Summary      Cast or revise the caller's vote
// @Tags         sessions
// @Accept       json
// @Produce      json
// @Param        id path string true "session id"
// @Param        request body models.CastVoteRequest true "ballot"
// @Success      200 {object} models.Vote
// @Security     BearerAuth
// @Router       /sessions/{id}/votes [post]
func (h *SessionHandler) CastVote(c *gin.Context) {
	var req models.CastVoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	vote, err := h.sessionService.CastVote(c.Request.Context(), c.Param("id"), middleware.CallerIdentity(c), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, vote)
}

func (h *SessionHandler) GetVotes(c *gin.Context) {
	votes, err := h.sessionService.GetVotes(c.Request.Context(), c.Param("id"), middleware.CallerIdentity(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, votes)
}

func (h *SessionHandler) GetVoterBallot(c *gin.Context) {
	vote, err := h.sessionService.GetVoterBallot(c.Request.Context(), c.Param("id"), middleware.CallerIdentity(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	if vote == nil {
		c.JSON(http.StatusOK, gin.H{"vote": nil})
		return
	}
	c.JSON(http.StatusOK, vote)
}

// LiveStats godoc
// @Summary      Live quorum and tally statistics
// @Tags         sessions
// @Produce      json
// @Param        id path string true "session id"
// @Success      200 {object} tally.Stats
// @Security     BearerAuth
// @Router       /sessions/{id}/stats [get]
func (h *SessionHandler) LiveStats(c *gin.Context) {
	stats, err := h.sessionService.LiveStats(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// CloseSession godoc
// @Summary      Finalize the session and compute the resolution
// @Tags         sessions
// @Produce      json
// @Param        id path string true "session id"
// @Success      200 {object} models.TallyResult
// @Security     BearerAuth
// @Router       /sessions/{id}/close [post]
func (h *SessionHandler) CloseSession(c *gin.Context) {
	result, err := h.sessionService.CloseSession(c.Request.Context(), c.Param("id"), middleware.CallerIdentity(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// CancelSession godoc
// @Summary      Cancel a session before finalization
// @Tags         sessions
// @Accept       json
// @Param        id path string true "session id"
// @Param        request body models.CancelSessionRequest true "reason"
// @Success      204
// @Security     BearerAuth
// @Router       /sessions/{id}/cancel [post]
func (h *SessionHandler) CancelSession(c *gin.Context) {
	var req models.CancelSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.sessionService.CancelSession(c.Request.Context(), c.Param("id"), req.Reason, middleware.CallerIdentity(c)); err != nil {
		writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *SessionHandler) GetResult(c *gin.Context) {
	result, err := h.sessionService.GetResult(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ExportResults godoc
// @Summary      Export the full session snapshot for external audit
// @Tags         sessions
// @Produce      json
// @Param        id path string true "session id"
// @Success      200 {object} models.SessionExport
// @Security     BearerAuth
// @Router       /sessions/{id}/export [get]
func (h *SessionHandler) ExportResults(c *gin.Context) {
	export, err := h.sessionService.ExportResults(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, export)
}

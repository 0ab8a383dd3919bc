package meeting

import (
	"errors"
	"net/http"

	"codema-service/internal/models"
	"codema-service/pkg/response"

	"github.com/gin-gonic/gin"
)

type MeetingHandler struct {
	meetingService *MeetingService
}

func NewMeetingHandler(meetingService *MeetingService) *MeetingHandler {
	return &MeetingHandler{meetingService: meetingService}
}

func (h *MeetingHandler) RegisterRoutes(rg *gin.RouterGroup) {
	meetings := rg.Group("/meetings")
	{
		meetings.POST("", h.Create)
		meetings.GET("", h.List)
		meetings.GET("/:id", h.Get)
		meetings.POST("/:id/status", h.Transition)
		meetings.POST("/:id/items", h.AddItem)
	}
}

func writeMeetingError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrMeetingNotFound):
		response.Error(c, http.StatusNotFound, response.CodeNotFound, err.Error())
	case errors.Is(err, ErrInvalidMeetingState):
		response.Error(c, http.StatusConflict, response.CodeInvalidSessionState, err.Error())
	default:
		response.Error(c, http.StatusServiceUnavailable, response.CodeStoreUnavailable, err.Error())
	}
}

func (h *MeetingHandler) Create(c *gin.Context) {
	var req models.CreateMeetingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	meeting, err := h.meetingService.Create(c.Request.Context(), req)
	if err != nil {
		writeMeetingError(c, err)
		return
	}
	c.JSON(http.StatusCreated, meeting)
}

func (h *MeetingHandler) List(c *gin.Context) {
	meetings, err := h.meetingService.List(c.Request.Context())
	if err != nil {
		writeMeetingError(c, err)
		return
	}
	c.JSON(http.StatusOK, meetings)
}

func (h *MeetingHandler) Get(c *gin.Context) {
	meeting, err := h.meetingService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeMeetingError(c, err)
		return
	}
	c.JSON(http.StatusOK, meeting)
}

func (h *MeetingHandler) Transition(c *gin.Context) {
	var req struct {
		Status models.MeetingStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	meeting, err := h.meetingService.Transition(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		writeMeetingError(c, err)
		return
	}
	c.JSON(http.StatusOK, meeting)
}

func (h *MeetingHandler) AddItem(c *gin.Context) {
	var req models.AddAgendaItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	item, err := h.meetingService.AddItem(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		writeMeetingError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

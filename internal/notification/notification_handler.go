package notification

import (
	"net/http"

	"codema-service/pkg/response"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	notificationService *NotificationService
}

func NewNotificationHandler(notificationService *NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

func (h *NotificationHandler) RegisterRoutes(rg *gin.RouterGroup) {
	prefs := rg.Group("/notifications/preferences")
	{
		prefs.GET("", h.GetPreferences)
		prefs.PUT("", h.SetPreference)
	}
}

func (h *NotificationHandler) GetPreferences(c *gin.Context) {
	prefs, err := h.notificationService.GetPreferences(c.Request.Context(), c.GetUint("user_id"))
	if err != nil {
		response.Error(c, http.StatusServiceUnavailable, response.CodeStoreUnavailable, err.Error())
		return
	}
	c.JSON(http.StatusOK, prefs)
}

func (h *NotificationHandler) SetPreference(c *gin.Context) {
	var req struct {
		Key     string `json:"key" binding:"required"`
		Enabled *bool  `json:"enabled" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.notificationService.SetPreference(c.Request.Context(), c.GetUint("user_id"), req.Key, *req.Enabled); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	c.Status(http.StatusNoContent)
}

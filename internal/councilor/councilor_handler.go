package councilor

import (
	"errors"
	"net/http"
	"strconv"

	"codema-service/internal/models"
	"codema-service/pkg/response"

	"github.com/gin-gonic/gin"
)

type CouncilorHandler struct {
	councilorService *CouncilorService
}

func NewCouncilorHandler(councilorService *CouncilorService) *CouncilorHandler {
	return &CouncilorHandler{councilorService: councilorService}
}

func (h *CouncilorHandler) RegisterRoutes(rg *gin.RouterGroup) {
	councilors := rg.Group("/councilors")
	{
		councilors.POST("", h.Create)
		councilors.GET("", h.List)
		councilors.GET("/:id", h.Get)
		councilors.PUT("/:id", h.Update)
	}
}

// Create godoc
// @Summary      Register a councilor
// @Tags         councilors
// @Accept       json
// @Produce      json
// @Param        request body models.CreateCouncilorRequest true "councilor data"
// @Success      201 {object} models.Councilor
// @Security     BearerAuth
// @Router       /councilors [post]
func (h *CouncilorHandler) Create(c *gin.Context) {
	if c.GetString("role") != models.RoleAdmin && c.GetString("role") != models.RoleSecretario {
		response.Error(c, http.StatusForbidden, response.CodeUnauthorized, "only admins and secretaries manage the registry")
		return
	}

	var req models.CreateCouncilorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	councilor, err := h.councilorService.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, http.StatusServiceUnavailable, response.CodeStoreUnavailable, err.Error())
		return
	}
	c.JSON(http.StatusCreated, councilor)
}

func (h *CouncilorHandler) List(c *gin.Context) {
	councilors, err := h.councilorService.List(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusServiceUnavailable, response.CodeStoreUnavailable, err.Error())
		return
	}
	c.JSON(http.StatusOK, councilors)
}

func (h *CouncilorHandler) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid councilor id")
		return
	}

	councilor, err := h.councilorService.Get(c.Request.Context(), uint(id))
	if err != nil {
		if errors.Is(err, ErrCouncilorNotFound) {
			response.Error(c, http.StatusNotFound, response.CodeNotFound, err.Error())
			return
		}
		response.Error(c, http.StatusServiceUnavailable, response.CodeStoreUnavailable, err.Error())
		return
	}
	c.JSON(http.StatusOK, councilor)
}

func (h *CouncilorHandler) Update(c *gin.Context) {
	if c.GetString("role") != models.RoleAdmin && c.GetString("role") != models.RoleSecretario {
		response.Error(c, http.StatusForbidden, response.CodeUnauthorized, "only admins and secretaries manage the registry")
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid councilor id")
		return
	}

	var req models.UpdateCouncilorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	councilor, err := h.councilorService.Update(c.Request.Context(), uint(id), req)
	if err != nil {
		if errors.Is(err, ErrCouncilorNotFound) {
			response.Error(c, http.StatusNotFound, response.CodeNotFound, err.Error())
			return
		}
		response.Error(c, http.StatusServiceUnavailable, response.CodeStoreUnavailable, err.Error())
		return
	}
	c.JSON(http.StatusOK, councilor)
}

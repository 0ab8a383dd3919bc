package denuncia

import (
	"errors"
	"net/http"

	"codema-service/internal/middleware"
	"codema-service/internal/models"
	"codema-service/pkg/response"

	"github.com/gin-gonic/gin"
)

type DenunciaHandler struct {
	denunciaService *DenunciaService
}

func NewDenunciaHandler(denunciaService *DenunciaService) *DenunciaHandler {
	return &DenunciaHandler{denunciaService: denunciaService}
}

func (h *DenunciaHandler) RegisterRoutes(rg *gin.RouterGroup) {
	denuncias := rg.Group("/denuncias")
	{
		denuncias.GET("", h.List)
		denuncias.GET("/:id", h.Get)
		denuncias.GET("/:id/tally", h.GetTally)
		denuncias.POST("/:id/tally", h.RegisterTally)
	}
}

// RegisterPublicRoutes exposes the citizen intake without authentication.
func (h *DenunciaHandler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.POST("/denuncias", h.Create)
}

// Create godoc
// @Summary      File a citizen complaint
// @Tags         denuncias
// @Accept       json
// @Produce      json
// @Param        request body models.CreateDenunciaRequest true "complaint"
// @Success      201 {object} models.Denuncia
// @Router       /denuncias [post]
func (h *DenunciaHandler) Create(c *gin.Context) {
	var req models.CreateDenunciaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	denuncia, err := h.denunciaService.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, http.StatusServiceUnavailable, response.CodeStoreUnavailable, err.Error())
		return
	}
	c.JSON(http.StatusCreated, denuncia)
}

func (h *DenunciaHandler) List(c *gin.Context) {
	denuncias, err := h.denunciaService.List(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusServiceUnavailable, response.CodeStoreUnavailable, err.Error())
		return
	}
	c.JSON(http.StatusOK, denuncias)
}

func (h *DenunciaHandler) Get(c *gin.Context) {
	denuncia, err := h.denunciaService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrDenunciaNotFound) {
			response.Error(c, http.StatusNotFound, response.CodeNotFound, err.Error())
			return
		}
		response.Error(c, http.StatusServiceUnavailable, response.CodeStoreUnavailable, err.Error())
		return
	}
	c.JSON(http.StatusOK, denuncia)
}

func (h *DenunciaHandler) GetTally(c *gin.Context) {
	tally, err := h.denunciaService.GetTally(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusServiceUnavailable, response.CodeStoreUnavailable, err.Error())
		return
	}
	if tally == nil {
		response.Error(c, http.StatusNotFound, response.CodeNotFound, "no tally registered")
		return
	}
	c.JSON(http.StatusOK, tally)
}

// RegisterTally godoc
// @Summary      Register the aggregate agenda vote over a denuncia
// @Tags         denuncias
// @Accept       json
// @Produce      json
// @Param        id path string true "denuncia id"
// @Param        request body models.RegisterTallyRequest true "aggregate counts and decision"
// @Success      200 {object} models.DenunciaTally
// @Security     BearerAuth
// @Router       /denuncias/{id}/tally [post]
func (h *DenunciaHandler) RegisterTally(c *gin.Context) {
	var req models.RegisterTallyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	tally, err := h.denunciaService.RegisterTally(c.Request.Context(), c.Param("id"), middleware.CallerIdentity(c), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrDenunciaNotFound):
			response.Error(c, http.StatusNotFound, response.CodeNotFound, err.Error())
		case errors.Is(err, ErrUnauthorized):
			response.Error(c, http.StatusForbidden, response.CodeUnauthorized, err.Error())
		case errors.Is(err, ErrInvalidCounts), errors.Is(err, ErrInvalidDecisao):
			response.BadRequest(c, err.Error())
		default:
			response.Error(c, http.StatusServiceUnavailable, response.CodeStoreUnavailable, err.Error())
		}
		return
	}
	c.JSON(http.StatusOK, tally)
}

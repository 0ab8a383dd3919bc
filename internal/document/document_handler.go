package document

import (
	"errors"
	"net/http"

	"codema-service/internal/middleware"
	"codema-service/pkg/response"

	"github.com/gin-gonic/gin"
)

type DocumentHandler struct {
	documentService *DocumentService
}

func NewDocumentHandler(documentService *DocumentService) *DocumentHandler {
	return &DocumentHandler{documentService: documentService}
}

func (h *DocumentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	documents := rg.Group("/documents")
	{
		documents.POST("", h.Upload)
		documents.GET("", h.List)
		documents.GET("/:id/url", h.DownloadURL)
	}
}

// Upload godoc
// @Summary      Upload a document to the archive
// @Tags         documents
// @Accept       multipart/form-data
// @Produce      json
// @Param        file formData file true "document file"
// @Param        title formData string true "title"
// @Param        category formData string false "category"
// @Success      201 {object} models.Document
// @Security     BearerAuth
// @Router       /documents [post]
func (h *DocumentHandler) Upload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "file is required")
		return
	}
	title := c.PostForm("title")
	if title == "" {
		response.BadRequest(c, "title is required")
		return
	}

	doc, err := h.documentService.Upload(
		c.Request.Context(),
		middleware.CallerIdentity(c),
		title,
		c.DefaultPostForm("category", "geral"),
		c.PostForm("meeting_id"),
		c.PostForm("denuncia_id"),
		file,
	)
	if err != nil {
		response.Error(c, http.StatusServiceUnavailable, response.CodeStoreUnavailable, err.Error())
		return
	}
	c.JSON(http.StatusCreated, doc)
}

func (h *DocumentHandler) List(c *gin.Context) {
	docs, err := h.documentService.List(c.Request.Context(), c.Query("category"))
	if err != nil {
		response.Error(c, http.StatusServiceUnavailable, response.CodeStoreUnavailable, err.Error())
		return
	}
	c.JSON(http.StatusOK, docs)
}

func (h *DocumentHandler) DownloadURL(c *gin.Context) {
	url, err := h.documentService.DownloadURL(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrDocumentNotFound) {
			response.Error(c, http.StatusNotFound, response.CodeNotFound, err.Error())
			return
		}
		response.Error(c, http.StatusServiceUnavailable, response.CodeStoreUnavailable, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

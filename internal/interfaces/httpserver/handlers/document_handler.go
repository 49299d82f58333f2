package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"chat-server/internal/domain/apperrors"
	"chat-server/internal/domain/document"
	"chat-server/internal/infrastructure/auth"
	"chat-server/internal/interfaces/httpserver/dto"
)

// DocumentHandler exposes HTTP entrypoints for standalone documents.
type DocumentHandler struct {
	service document.Service
	log     zerolog.Logger
}

// NewDocumentHandler constructs the handler.
func NewDocumentHandler(service document.Service, log zerolog.Logger) *DocumentHandler {
	return &DocumentHandler{
		service: service,
		log:     log.With().Str("handler", "document").Logger(),
	}
}

// Create handles POST /v1/documents
// @Summary Create a document
// @Description Generates content with the artifact model and persists it as version one.
// @Tags Documents
// @Accept json
// @Produce json
// @Param request body dto.CreateDocumentRequest true "Create request"
// @Success 200 {object} dto.DocumentPayload
// @Failure 400 {object} map[string]string
// @Router /v1/documents [post]
func (h *DocumentHandler) Create(c *gin.Context) {
	var req dto.CreateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperrors.Wrap(apperrors.CodeBadRequest, "document", "invalid request body", err))
		return
	}

	doc, err := h.service.Create(c.Request.Context(), document.CreateParams{
		ID:     req.ID,
		UserID: auth.UserID(c),
		Title:  req.Title,
		Kind:   document.Kind(req.Kind),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromDocument(doc))
}

// Update handles POST /v1/documents/:id
// @Summary Update a document
// @Description Regenerates the document per the description and persists a new version.
// @Tags Documents
// @Accept json
// @Produce json
// @Param id path string true "Document ID"
// @Param request body dto.UpdateDocumentRequest true "Update request"
// @Success 200 {object} dto.DocumentPayload
// @Router /v1/documents/{id} [post]
func (h *DocumentHandler) Update(c *gin.Context) {
	var req dto.UpdateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperrors.Wrap(apperrors.CodeBadRequest, "document", "invalid request body", err))
		return
	}

	doc, err := h.service.Update(c.Request.Context(), c.Param("id"), req.Description, auth.UserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromDocument(doc))
}

// Get handles GET /v1/documents/:id
// @Summary Get the latest version of a document
// @Tags Documents
// @Produce json
// @Param id path string true "Document ID"
// @Success 200 {object} dto.DocumentPayload
// @Failure 404 {object} map[string]string
// @Router /v1/documents/{id} [get]
func (h *DocumentHandler) Get(c *gin.Context) {
	doc, err := h.service.GetLatest(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromDocument(doc))
}

// ListVersions handles GET /v1/documents/:id/versions
// @Summary List all versions of a document
// @Tags Documents
// @Produce json
// @Param id path string true "Document ID"
// @Success 200 {array} dto.DocumentPayload
// @Router /v1/documents/{id}/versions [get]
func (h *DocumentHandler) ListVersions(c *gin.Context) {
	versions, err := h.service.GetVersions(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromDocuments(versions))
}

// GenerateSuggestions handles POST /v1/documents/:id/suggestions
// @Summary Generate edit suggestions for a document
// @Tags Documents
// @Produce json
// @Param id path string true "Document ID"
// @Success 200 {array} dto.SuggestionPayload
// @Router /v1/documents/{id}/suggestions [post]
func (h *DocumentHandler) GenerateSuggestions(c *gin.Context) {
	suggestions, err := h.service.GenerateSuggestions(c.Request.Context(), c.Param("id"), auth.UserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromSuggestions(suggestions))
}

// ListSuggestions handles GET /v1/documents/:id/suggestions
// @Summary List persisted suggestions for a document
// @Tags Documents
// @Produce json
// @Param id path string true "Document ID"
// @Success 200 {array} dto.SuggestionPayload
// @Router /v1/documents/{id}/suggestions [get]
func (h *DocumentHandler) ListSuggestions(c *gin.Context) {
	suggestions, err := h.service.ListSuggestions(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromSuggestions(suggestions))
}

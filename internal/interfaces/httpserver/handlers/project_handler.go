package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"chat-server/internal/domain/apperrors"
	"chat-server/internal/domain/chat"
	"chat-server/internal/domain/project"
	"chat-server/internal/infrastructure/auth"
	"chat-server/internal/interfaces/httpserver/dto"
)

// ChatLister lists the chats attached to a project.
type ChatLister interface {
	ListByProject(ctx context.Context, projectID string) ([]*chat.Chat, error)
}

// ProjectHandler exposes HTTP entrypoints for projects.
type ProjectHandler struct {
	service project.Service
	chats   ChatLister
	log     zerolog.Logger
}

// NewProjectHandler constructs the handler.
func NewProjectHandler(service project.Service, chats ChatLister, log zerolog.Logger) *ProjectHandler {
	return &ProjectHandler{
		service: service,
		chats:   chats,
		log:     log.With().Str("handler", "project").Logger(),
	}
}

// Create handles POST /v1/projects
// @Summary Create a project
// @Tags Projects
// @Accept json
// @Produce json
// @Param request body dto.ProjectRequest true "Create request"
// @Success 200 {object} dto.ProjectPayload
// @Failure 400 {object} map[string]string
// @Router /v1/projects [post]
func (h *ProjectHandler) Create(c *gin.Context) {
	var req dto.ProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperrors.Wrap(apperrors.CodeBadRequest, "project", "invalid request body", err))
		return
	}

	proj, err := h.service.Create(c.Request.Context(), auth.UserID(c), req.Name, req.Description, req.Instructions)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromProject(proj))
}

// List handles GET /v1/projects
// @Summary List the caller's projects
// @Tags Projects
// @Produce json
// @Success 200 {array} dto.ProjectPayload
// @Router /v1/projects [get]
func (h *ProjectHandler) List(c *gin.Context) {
	projects, err := h.service.List(c.Request.Context(), auth.UserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromProjects(projects))
}

// Get handles GET /v1/projects/:id
// @Summary Get a project by ID
// @Tags Projects
// @Produce json
// @Param id path string true "Project ID"
// @Success 200 {object} dto.ProjectPayload
// @Failure 404 {object} map[string]string
// @Router /v1/projects/{id} [get]
func (h *ProjectHandler) Get(c *gin.Context) {
	proj, err := h.service.Get(c.Request.Context(), c.Param("id"), auth.UserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromProject(proj))
}

// Update handles PATCH /v1/projects/:id
// @Summary Update a project
// @Tags Projects
// @Accept json
// @Produce json
// @Param id path string true "Project ID"
// @Param request body dto.ProjectRequest true "Update request"
// @Success 200 {object} dto.ProjectPayload
// @Router /v1/projects/{id} [patch]
func (h *ProjectHandler) Update(c *gin.Context) {
	var req dto.ProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperrors.Wrap(apperrors.CodeBadRequest, "project", "invalid request body", err))
		return
	}

	proj, err := h.service.Update(c.Request.Context(), c.Param("id"), auth.UserID(c), req.Name, req.Description, req.Instructions)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromProject(proj))
}

// Delete handles DELETE /v1/projects/:id
// @Summary Delete a project, detaching its chats
// @Tags Projects
// @Produce json
// @Param id path string true "Project ID"
// @Success 200 {object} map[string]string
// @Router /v1/projects/{id} [delete]
func (h *ProjectHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id"), auth.UserID(c)); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": c.Param("id"), "status": "deleted"})
}

// ListChats handles GET /v1/projects/:id/chats
// @Summary List a project's chats, newest first
// @Tags Projects
// @Produce json
// @Param id path string true "Project ID"
// @Success 200 {array} dto.ChatPayload
// @Router /v1/projects/{id}/chats [get]
func (h *ProjectHandler) ListChats(c *gin.Context) {
	// Ownership gate before exposing the project's chats.
	if _, err := h.service.Get(c.Request.Context(), c.Param("id"), auth.UserID(c)); err != nil {
		writeError(c, err)
		return
	}

	chats, err := h.chats.ListByProject(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	payload := make([]dto.ChatPayload, 0, len(chats))
	for _, conversation := range chats {
		payload = append(payload, dto.FromChat(conversation))
	}
	c.JSON(http.StatusOK, payload)
}

// ListFiles handles GET /v1/projects/:id/files
// @Summary List a project's files
// @Tags Projects
// @Produce json
// @Param id path string true "Project ID"
// @Success 200 {array} dto.ProjectFilePayload
// @Router /v1/projects/{id}/files [get]
func (h *ProjectHandler) ListFiles(c *gin.Context) {
	files, err := h.service.ListFiles(c.Request.Context(), c.Param("id"), auth.UserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromProjectFiles(files))
}

// AddFile handles POST /v1/projects/:id/files
// @Summary Attach a file summary to a project
// @Tags Projects
// @Accept json
// @Produce json
// @Param id path string true "Project ID"
// @Param request body dto.ProjectFileRequest true "File"
// @Success 200 {object} dto.ProjectFilePayload
// @Router /v1/projects/{id}/files [post]
func (h *ProjectHandler) AddFile(c *gin.Context) {
	var req dto.ProjectFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperrors.Wrap(apperrors.CodeBadRequest, "project", "invalid request body", err))
		return
	}

	file, err := h.service.AddFile(c.Request.Context(), c.Param("id"), auth.UserID(c), req.Name, req.Summary)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromProjectFile(file))
}

// DeleteFile handles DELETE /v1/projects/:id/files/:file_id
// @Summary Remove a file from a project
// @Tags Projects
// @Produce json
// @Param id path string true "Project ID"
// @Param file_id path string true "File ID"
// @Success 200 {object} map[string]string
// @Router /v1/projects/{id}/files/{file_id} [delete]
func (h *ProjectHandler) DeleteFile(c *gin.Context) {
	if err := h.service.DeleteFile(c.Request.Context(), c.Param("id"), c.Param("file_id"), auth.UserID(c)); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": c.Param("file_id"), "status": "deleted"})
}

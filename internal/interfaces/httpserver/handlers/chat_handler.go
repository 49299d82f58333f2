package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"chat-server/internal/domain/apperrors"
	"chat-server/internal/domain/chat"
	"chat-server/internal/domain/llm"
	"chat-server/internal/domain/stream"
	"chat-server/internal/infrastructure/auth"
	"chat-server/internal/infrastructure/geo"
	"chat-server/internal/interfaces/httpserver/dto"
)

// ChatHandler exposes HTTP entrypoints for the chat turn lifecycle.
type ChatHandler struct {
	service      *chat.Service
	entitlements llm.Entitlements
	log          zerolog.Logger
}

// NewChatHandler constructs the handler.
func NewChatHandler(service *chat.Service, entitlements llm.Entitlements, log zerolog.Logger) *ChatHandler {
	return &ChatHandler{
		service:      service,
		entitlements: entitlements,
		log:          log.With().Str("handler", "chat").Logger(),
	}
}

// Submit handles POST /v1/chat
// @Summary Submit a chat turn
// @Description Runs one chat turn and streams its events back over SSE.
// @Tags Chat
// @Accept json
// @Produce text/event-stream
// @Param request body dto.SubmitChatRequest true "Submit request"
// @Success 200 {string} string "event stream"
// @Failure 400 {object} map[string]string
// @Failure 429 {object} map[string]string
// @Router /v1/chat [post]
func (h *ChatHandler) Submit(c *gin.Context) {
	var req dto.SubmitChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperrors.Wrap(apperrors.CodeBadRequest, "chat", "invalid request body", err))
		return
	}

	message, visibility, err := req.Validate(h.entitlements)
	if err != nil {
		writeError(c, err)
		return
	}

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		writeError(c, apperrors.New(apperrors.CodeInternal, "chat", "streaming not supported"))
		return
	}

	authCtx := llm.ContextWithAuthToken(c.Request.Context(), strings.TrimSpace(c.GetHeader("Authorization")))
	c.Request = c.Request.WithContext(authCtx)

	writer := newSSEWriter(c.Writer, flusher)

	_, err = h.service.Submit(c.Request.Context(), chat.SubmitParams{
		ChatID:     req.ID,
		Message:    message,
		Model:      req.SelectedChatModel,
		Visibility: visibility,
		UserID:     auth.UserID(c),
		Hints:      geo.HintsFromRequest(c.Request),
		Output:     writer,
	})
	if err != nil {
		// Turn failures after streaming began were already reported as an
		// error event on the stream.
		if !writer.Started() {
			writeError(c, err)
			return
		}
		h.log.Warn().Err(err).Str("chat_id", req.ID).Msg("turn failed after streaming started")
		return
	}
}

// Resume handles GET /v1/chat
// @Summary Resume the most recent stream of a chat
// @Description Reattaches to an in-flight response, backfills a just-finished one, or reports nothing to recover.
// @Tags Chat
// @Produce text/event-stream
// @Param chatId query string true "Chat ID"
// @Success 200 {string} string "event stream"
// @Success 204 {string} string "resumption unavailable"
// @Failure 404 {object} map[string]string
// @Router /v1/chat [get]
func (h *ChatHandler) Resume(c *gin.Context) {
	chatID := c.Query("chatId")
	if chatID == "" {
		writeError(c, apperrors.New(apperrors.CodeBadRequest, "chat", "chatId is required"))
		return
	}

	result, err := h.service.Resume(c.Request.Context(), chatID, auth.UserID(c))
	if err != nil {
		writeError(c, err)
		return
	}

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		writeError(c, apperrors.New(apperrors.CodeInternal, "chat", "streaming not supported"))
		return
	}

	switch result.Status {
	case chat.ResumeUnavailable:
		c.Status(http.StatusNoContent)
	case chat.ResumeLive:
		h.forwardSubscription(c, flusher, result.Subscription)
	case chat.ResumeBackfill:
		writer := newSSEWriter(c.Writer, flusher)
		writer.Send(stream.NewEvent(stream.EventAppend, dto.FromMessage(result.Message)))
	default:
		writer := newSSEWriter(c.Writer, flusher)
		writer.Start()
	}
}

func (h *ChatHandler) forwardSubscription(c *gin.Context, flusher http.Flusher, sub stream.Subscription) {
	defer sub.Close()

	writer := newSSEWriter(c.Writer, flusher)
	writer.Start()

	for {
		select {
		case <-c.Request.Context().Done():
			return
		case event, ok := <-sub.Events():
			if !ok {
				return
			}
			writer.Send(event)
		}
	}
}

// Get handles GET /v1/chats/:id
// @Summary Get a chat by ID
// @Tags Chat
// @Produce json
// @Param id path string true "Chat ID"
// @Success 200 {object} dto.ChatPayload
// @Failure 404 {object} map[string]string
// @Router /v1/chats/{id} [get]
func (h *ChatHandler) Get(c *gin.Context) {
	conversation, err := h.service.GetChat(c.Request.Context(), c.Param("id"), auth.UserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromChat(conversation))
}

// ListMessages handles GET /v1/chats/:id/messages
// @Summary List a chat's messages in order
// @Tags Chat
// @Produce json
// @Param id path string true "Chat ID"
// @Success 200 {array} dto.MessagePayload
// @Router /v1/chats/{id}/messages [get]
func (h *ChatHandler) ListMessages(c *gin.Context) {
	messages, err := h.service.ListMessages(c.Request.Context(), c.Param("id"), auth.UserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromMessages(messages))
}

// Delete handles DELETE /v1/chat
// @Summary Delete a chat and everything attached to it
// @Tags Chat
// @Produce json
// @Param id query string true "Chat ID"
// @Success 200 {object} map[string]string
// @Router /v1/chat [delete]
func (h *ChatHandler) Delete(c *gin.Context) {
	chatID := c.Query("id")
	if chatID == "" {
		writeError(c, apperrors.New(apperrors.CodeBadRequest, "chat", "id is required"))
		return
	}
	if err := h.service.DeleteChat(c.Request.Context(), chatID, auth.UserID(c)); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": chatID, "status": "deleted"})
}

// History handles GET /v1/chats
// @Summary List the caller's chats, newest first
// @Tags Chat
// @Produce json
// @Param limit query int false "Page size"
// @Param ending_before query string false "Cursor chat ID"
// @Success 200 {object} dto.HistoryPayload
// @Router /v1/chats [get]
func (h *ChatHandler) History(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeError(c, apperrors.New(apperrors.CodeBadRequest, "chat", "limit must be a non-negative integer"))
			return
		}
		limit = parsed
	}

	page, err := h.service.History(c.Request.Context(), auth.UserID(c), limit, c.Query("ending_before"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromHistory(page))
}

// UpdateVisibility handles PATCH /v1/chats/:id/visibility
// @Summary Change who can read a chat
// @Tags Chat
// @Accept json
// @Produce json
// @Param id path string true "Chat ID"
// @Param request body dto.UpdateVisibilityRequest true "Visibility"
// @Success 200 {object} map[string]string
// @Router /v1/chats/{id}/visibility [patch]
func (h *ChatHandler) UpdateVisibility(c *gin.Context) {
	var req dto.UpdateVisibilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperrors.Wrap(apperrors.CodeBadRequest, "chat", "invalid request body", err))
		return
	}

	visibility := chat.Visibility(req.Visibility)
	if !visibility.Valid() {
		writeError(c, apperrors.New(apperrors.CodeBadRequest, "chat", "unknown visibility: "+req.Visibility))
		return
	}

	if err := h.service.UpdateVisibility(c.Request.Context(), c.Param("id"), auth.UserID(c), visibility); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": c.Param("id"), "visibility": req.Visibility})
}

// AssignProject handles PATCH /v1/chats/:id/project
// @Summary Attach a chat to a project or detach it
// @Tags Chat
// @Accept json
// @Produce json
// @Param id path string true "Chat ID"
// @Param request body dto.AssignProjectRequest true "Project assignment"
// @Success 200 {object} map[string]string
// @Router /v1/chats/{id}/project [patch]
func (h *ChatHandler) AssignProject(c *gin.Context) {
	var req dto.AssignProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperrors.Wrap(apperrors.CodeBadRequest, "chat", "invalid request body", err))
		return
	}

	if err := h.service.AssignProject(c.Request.Context(), c.Param("id"), auth.UserID(c), req.ProjectID); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": c.Param("id"), "status": "updated"})
}

// Vote handles PATCH /v1/votes
// @Summary Vote on a message
// @Tags Votes
// @Accept json
// @Produce json
// @Param request body dto.VoteRequest true "Vote"
// @Success 200 {object} map[string]string
// @Router /v1/votes [patch]
func (h *ChatHandler) Vote(c *gin.Context) {
	var req dto.VoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperrors.Wrap(apperrors.CodeBadRequest, "vote", "invalid request body", err))
		return
	}

	err := h.service.Vote(c.Request.Context(), req.ChatID, req.MessageID, auth.UserID(c), chat.VoteType(req.Type))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "recorded"})
}

// ListVotes handles GET /v1/votes
// @Summary List votes in a chat
// @Tags Votes
// @Produce json
// @Param chatId query string true "Chat ID"
// @Success 200 {array} dto.VotePayload
// @Router /v1/votes [get]
func (h *ChatHandler) ListVotes(c *gin.Context) {
	chatID := c.Query("chatId")
	if chatID == "" {
		writeError(c, apperrors.New(apperrors.CodeBadRequest, "vote", "chatId is required"))
		return
	}
	votes, err := h.service.ListVotes(c.Request.Context(), chatID, auth.UserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromVotes(votes))
}

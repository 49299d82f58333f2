package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"chat-server/internal/domain/llm"
	"chat-server/internal/interfaces/httpserver/dto"
)

// ModelHandler serves the user-facing model catalog.
type ModelHandler struct{}

// NewModelHandler constructs the handler.
func NewModelHandler() *ModelHandler {
	return &ModelHandler{}
}

// List handles GET /v1/models
// @Summary List selectable chat models
// @Tags Models
// @Produce json
// @Success 200 {array} dto.ModelPayload
// @Router /v1/models [get]
func (h *ModelHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": dto.FromModels(llm.ChatModels)})
}

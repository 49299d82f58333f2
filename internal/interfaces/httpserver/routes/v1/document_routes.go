package v1

import (
	"github.com/gin-gonic/gin"

	"chat-server/internal/interfaces/httpserver/handlers"
)

func registerDocumentRoutes(router gin.IRoutes, handler *handlers.DocumentHandler) {
	router.POST("/documents", handler.Create)
	router.GET("/documents/:id", handler.Get)
	router.POST("/documents/:id", handler.Update)
	router.GET("/documents/:id/versions", handler.ListVersions)
	router.POST("/documents/:id/suggestions", handler.GenerateSuggestions)
	router.GET("/documents/:id/suggestions", handler.ListSuggestions)
}

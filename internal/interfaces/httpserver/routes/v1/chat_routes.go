package v1

import (
	"github.com/gin-gonic/gin"

	"chat-server/internal/interfaces/httpserver/handlers"
)

func registerChatRoutes(router gin.IRoutes, handler *handlers.ChatHandler) {
	router.POST("/chat", handler.Submit)
	router.GET("/chat", handler.Resume)
	router.DELETE("/chat", handler.Delete)
	router.GET("/chats", handler.History)
	router.GET("/chats/:id", handler.Get)
	router.GET("/chats/:id/messages", handler.ListMessages)
	router.PATCH("/chats/:id/visibility", handler.UpdateVisibility)
	router.PATCH("/chats/:id/project", handler.AssignProject)
	router.GET("/votes", handler.ListVotes)
	router.PATCH("/votes", handler.Vote)
}

package v1

import (
	"github.com/gin-gonic/gin"

	"chat-server/internal/interfaces/httpserver/handlers"
)

func registerProjectRoutes(router gin.IRoutes, handler *handlers.ProjectHandler) {
	router.POST("/projects", handler.Create)
	router.GET("/projects", handler.List)
	router.GET("/projects/:id", handler.Get)
	router.PATCH("/projects/:id", handler.Update)
	router.DELETE("/projects/:id", handler.Delete)
	router.GET("/projects/:id/chats", handler.ListChats)
	router.GET("/projects/:id/files", handler.ListFiles)
	router.POST("/projects/:id/files", handler.AddFile)
	router.DELETE("/projects/:id/files/:file_id", handler.DeleteFile)
}

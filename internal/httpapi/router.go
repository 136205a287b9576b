package httpapi

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/playlink/llm-server/internal/httpapi/handlers"
	"github.com/playlink/llm-server/internal/httpapi/middleware"
)

func NewRouter(h *handlers.Handler) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(cors.Default())

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
	})
	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "method not allowed"})
	})

	r.GET("/", h.Root)
	r.GET("/hello", h.Hello)

	// chat sessions
	r.PUT("/chats", h.CreateChat)
	r.POST("/chats/:chat_id", h.SendChatMessage)
	r.GET("/chats/:chat_id", h.GetChatHistory)
	r.POST("/chats/:chat_id/async", h.SendChatMessageAsync)
	r.GET("/jobs/:job_id", h.GetChatJob)

	// gaming-service integrations
	r.POST("/integration", h.UpsertIntegration)
	r.GET("/integration", h.ListIntegrations)
	r.GET("/integration/:service", h.GetIntegration)
	r.DELETE("/integration/:service", h.DeleteIntegration)

	return r
}

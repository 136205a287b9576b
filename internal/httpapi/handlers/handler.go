package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/playlink/llm-server/internal/chat"
	"github.com/playlink/llm-server/internal/integration"
	"github.com/playlink/llm-server/internal/steam"
	"github.com/playlink/llm-server/internal/store/rabbitmq"
	"github.com/playlink/llm-server/internal/store/redisstore"
)

type Handler struct {
	ChatSvc        *chat.Service
	IntegrationSvc *integration.Service
	Steam          *steam.Client
	Cache          *redisstore.Store    // nil when redis is not configured
	Jobs           *rabbitmq.Publisher  // nil when async processing is disabled
}

func NewHandler(chatSvc *chat.Service, integrationSvc *integration.Service, steamClient *steam.Client, cache *redisstore.Store, jobs *rabbitmq.Publisher) *Handler {
	return &Handler{
		ChatSvc:        chatSvc,
		IntegrationSvc: integrationSvc,
		Steam:          steamClient,
		Cache:          cache,
		Jobs:           jobs,
	}
}

func fail(c *gin.Context, httpStatus int, msg string) {
	c.JSON(httpStatus, gin.H{"error": msg})
}

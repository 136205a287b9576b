package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// GET /
func (h *Handler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"name":        "LLM Server API",
		"version":     "1.0.0",
		"description": "Chat sessions routed to LLM backends, with gaming-service integrations",
		"endpoints": gin.H{
			"/":      "API information",
			"/hello": "Simple greeting endpoint",
		},
	})
}

// GET /hello
func (h *Handler) Hello(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message":   "Hello from LLM Server!",
		"timestamp": time.Now().Format(time.RFC3339),
		"status":    "success",
	})
}

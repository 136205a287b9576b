package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/playlink/llm-server/internal/integration"
)

type upsertIntegrationReq struct {
	Service  string `json:"service"`
	Username string `json:"username"`
}

// POST /integration
func (h *Handler) UpsertIntegration(c *gin.Context) {
	var req upsertIntegrationReq
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid json")
		return
	}

	rec, err := h.IntegrationSvc.Upsert(c.Request.Context(), req.Service, req.Username)
	if err != nil {
		var invalid *integration.InvalidServiceError
		switch {
		case errors.As(err, &invalid), errors.Is(err, integration.ErrUsernameRequired):
			fail(c, http.StatusBadRequest, err.Error())
		default:
			log.Printf("[UpsertIntegration] service=%s err=%v", req.Service, err)
			fail(c, http.StatusInternalServerError, "internal error")
		}
		return
	}

	if rec.Service == integration.ServiceSteam && h.Steam != nil {
		games, hit := h.Cache.GetGames(c.Request.Context(), rec.Username)
		if !hit {
			games, err = h.Steam.OwnedGames(c.Request.Context(), rec.Username)
			if err != nil {
				// the integration is already saved; report a partial failure
				log.Printf("[UpsertIntegration] games lookup failed username=%s err=%v", rec.Username, err)
				c.JSON(http.StatusInternalServerError, gin.H{
					"message":     "integration saved, but fetching games failed",
					"integration": rec,
					"error":       err.Error(),
				})
				return
			}
			h.Cache.SetGames(c.Request.Context(), rec.Username, games)
		}

		c.JSON(http.StatusCreated, gin.H{
			"message":     "integration saved",
			"integration": rec,
			"games":       games,
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":     "integration saved",
		"integration": rec,
	})
}

// GET /integration
func (h *Handler) ListIntegrations(c *gin.Context) {
	recs, err := h.IntegrationSvc.List(c.Request.Context())
	if err != nil {
		log.Printf("[ListIntegrations] err=%v", err)
		fail(c, http.StatusInternalServerError, "internal error")
		return
	}
	if recs == nil {
		recs = []integration.Integration{}
	}
	c.JSON(http.StatusOK, gin.H{"integrations": recs})
}

// GET /integration/:service
func (h *Handler) GetIntegration(c *gin.Context) {
	rec, err := h.IntegrationSvc.Get(c.Request.Context(), c.Param("service"))
	if err != nil {
		log.Printf("[GetIntegration] service=%s err=%v", c.Param("service"), err)
		fail(c, http.StatusInternalServerError, "internal error")
		return
	}
	c.JSON(http.StatusOK, gin.H{"integration": rec})
}

// DELETE /integration/:service
func (h *Handler) DeleteIntegration(c *gin.Context) {
	service := c.Param("service")

	if err := h.IntegrationSvc.Remove(c.Request.Context(), service); err != nil {
		var invalid *integration.InvalidServiceError
		switch {
		case errors.As(err, &invalid):
			fail(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, gorm.ErrRecordNotFound):
			fail(c, http.StatusNotFound, "integration not found")
		default:
			log.Printf("[DeleteIntegration] service=%s err=%v", service, err)
			fail(c, http.StatusInternalServerError, "internal error")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "integration removed"})
}

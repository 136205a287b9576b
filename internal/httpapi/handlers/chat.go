package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/playlink/llm-server/internal/ai"
	"github.com/playlink/llm-server/internal/chat"
)

// PUT /chats
func (h *Handler) CreateChat(c *gin.Context) {
	sess, err := h.ChatSvc.CreateSession(c.Request.Context())
	if err != nil {
		log.Printf("[CreateChat] failed: %v", err)
		fail(c, http.StatusInternalServerError, "failed to create chat")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"chatId": sess.SessionID})
}

type sendMessageReq struct {
	Content string         `json:"content"`
	Config  map[string]any `json:"config"`
}

// POST /chats/:chat_id
func (h *Handler) SendChatMessage(c *gin.Context) {
	chatID := c.Param("chat_id")

	var req sendMessageReq
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid json")
		return
	}

	msg, err := h.ChatSvc.SendMessage(c.Request.Context(), chatID, req.Content, req.Config)
	if err != nil {
		h.chatError(c, chatID, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"response": msg})
}

// GET /chats/:chat_id
func (h *Handler) GetChatHistory(c *gin.Context) {
	chatID := c.Param("chat_id")

	msgs, err := h.ChatSvc.History(c.Request.Context(), chatID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fail(c, http.StatusNotFound, "chat not found")
			return
		}
		log.Printf("[GetChatHistory] chat_id=%s err=%v", chatID, err)
		fail(c, http.StatusInternalServerError, "internal error")
		return
	}
	if msgs == nil {
		msgs = []chat.Message{}
	}

	c.JSON(http.StatusOK, gin.H{
		"chatId":  chatID,
		"history": msgs,
	})
}

// POST /chats/:chat_id/async
func (h *Handler) SendChatMessageAsync(c *gin.Context) {
	if h.Jobs == nil {
		fail(c, http.StatusServiceUnavailable, "async processing unavailable")
		return
	}

	chatID := c.Param("chat_id")

	var req sendMessageReq
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid json")
		return
	}

	job, err := h.ChatSvc.CreateJob(c.Request.Context(), chatID, req.Content, req.Config)
	if err != nil {
		h.chatError(c, chatID, err)
		return
	}

	if err := h.Jobs.PublishJob(c.Request.Context(), job.ID); err != nil {
		log.Printf("[SendChatMessageAsync] publish failed chat_id=%s job_id=%s err=%v", chatID, job.ID, err)
		fail(c, http.StatusInternalServerError, "enqueue failed")
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"jobId": job.ID})
}

// GET /jobs/:job_id
func (h *Handler) GetChatJob(c *gin.Context) {
	jobID := c.Param("job_id")

	j, err := h.ChatSvc.GetJob(c.Request.Context(), jobID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fail(c, http.StatusNotFound, "job not found")
			return
		}
		log.Printf("[GetChatJob] job_id=%s err=%v", jobID, err)
		fail(c, http.StatusInternalServerError, "internal error")
		return
	}

	c.JSON(http.StatusOK, gin.H{"job": j})
}

// chatError maps chat service failures onto the status contract.
func (h *Handler) chatError(c *gin.Context, chatID string, err error) {
	var unknownModel *chat.UnknownModelError
	var backend *ai.BackendError

	switch {
	case errors.Is(err, chat.ErrContentRequired):
		fail(c, http.StatusBadRequest, err.Error())
	case errors.As(err, &unknownModel):
		fail(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, gorm.ErrRecordNotFound):
		fail(c, http.StatusNotFound, "chat not found")
	case errors.As(err, &backend):
		log.Printf("[chat] backend failed chat_id=%s provider=%s err=%v", chatID, backend.Provider, backend.Err)
		fail(c, http.StatusInternalServerError, "failed to generate response")
	default:
		log.Printf("[chat] chat_id=%s err=%v", chatID, err)
		fail(c, http.StatusInternalServerError, "internal error")
	}
}

package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"rentrobo/internal/chatbot"
	"rentrobo/internal/service"

	"github.com/gin-gonic/gin"
)

const keepAliveInterval = 15 * time.Second

// ChatHandler handles chat session HTTP requests
type ChatHandler struct {
	chat   *service.ChatService
	logger *slog.Logger
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chat *service.ChatService, logger *slog.Logger) *ChatHandler {
	return &ChatHandler{
		chat:   chat,
		logger: logger,
	}
}

type commandResponse struct {
	Accepted bool             `json:"accepted"`
	State    chatbot.Snapshot `json:"state"`
}

// Create handles POST /api/v1/chat/sessions
func (h *ChatHandler) Create(c *gin.Context) {
	c.JSON(http.StatusCreated, h.chat.Create())
}

// Get handles GET /api/v1/chat/sessions/:id
func (h *ChatHandler) Get(c *gin.Context) {
	view, err := h.chat.Get(c.Param("id"))
	if err != nil {
		h.sessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Command handles POST /api/v1/chat/sessions/:id/commands
func (h *ChatHandler) Command(c *gin.Context) {
	var cmd chatbot.Command
	if err := c.ShouldBindJSON(&cmd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	id := c.Param("id")
	accepted, err := h.chat.Command(id, cmd)
	if err != nil {
		h.sessionError(c, err)
		return
	}
	view, err := h.chat.Get(id)
	if err != nil {
		h.sessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, commandResponse{Accepted: accepted, State: view.State})
}

// Stream handles GET /api/v1/chat/sessions/:id/stream - SSE conversation events
func (h *ChatHandler) Stream(c *gin.Context) {
	id := c.Param("id")
	events, cancel, err := h.chat.Subscribe(id)
	if err != nil {
		h.sessionError(c, err)
		return
	}
	defer cancel()

	view, err := h.chat.Get(id)
	if err != nil {
		h.sessionError(c, err)
		return
	}

	flusher, ok := startSSE(c)
	if !ok {
		return
	}
	sendSSE(c, "state", view)
	flusher.Flush()

	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case e, open := <-events:
			if !open {
				sendSSE(c, "end", nil)
				flusher.Flush()
				return
			}
			sendSSE(c, e.Type, e.Data)
			flusher.Flush()
		case <-ticker.C:
			sendKeepAlive(c)
			flusher.Flush()
		}
	}
}

// Recommendations handles GET /api/v1/chat/sessions/:id/recommendations
func (h *ChatHandler) Recommendations(c *gin.Context) {
	view, err := h.chat.Recommendations(c.Param("id"))
	if err != nil {
		h.sessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Delete handles DELETE /api/v1/chat/sessions/:id
func (h *ChatHandler) Delete(c *gin.Context) {
	if err := h.chat.Delete(c.Param("id")); err != nil {
		h.sessionError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ChatHandler) sessionError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrSessionNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Chat session not found"})
		return
	}
	h.logger.Error("chat request failed", "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

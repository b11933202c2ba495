// Package handler 包含了处理 HTTP 请求的控制器逻辑。
package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"support-chat-go/internal/model"
	"support-chat-go/internal/service"
	"support-chat-go/pkg/log"
)

// ChatHandler 负责处理对话相关的 API 请求。
type ChatHandler struct {
	chatService    service.ChatService
	sessionService service.SessionService
}

// NewChatHandler 创建一个新的 ChatHandler 实例。
func NewChatHandler(chatService service.ChatService, sessionService service.SessionService) *ChatHandler {
	return &ChatHandler{chatService: chatService, sessionService: sessionService}
}

// ChatRequest 定义了 /chat 接口的请求体结构。sessionId 为空表示开启新会话。
type ChatRequest struct {
	UserID    string `json:"userId"`
	SessionID string `json:"sessionId"`
	Message   string `json:"message"`
}

// Chat 处理一轮对话请求。
func (h *ChatHandler) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warnf("Chat: invalid request payload, error: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId and message are required"})
		return
	}

	result, err := h.chatService.HandleTurn(c.Request.Context(), req.UserID, req.SessionID, req.Message)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ListSessions 返回一个用户的会话列表，按最后活跃时间倒序。
func (h *ChatHandler) ListSessions(c *gin.Context) {
	userID := c.Query("userId")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId is required"})
		return
	}

	sessions, err := h.sessionService.ListSessions(userID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	if sessions == nil {
		// 空结果必须序列化为 []，而不是 null
		sessions = []model.Session{}
	}

	c.JSON(http.StatusOK, gin.H{"sessions": sessions})
}

// GetHistory 返回一个会话的完整消息记录，按创建时间升序。
func (h *ChatHandler) GetHistory(c *gin.Context) {
	sessionID := c.Query("sessionId")
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "sessionId is required"})
		return
	}

	messages, err := h.sessionService.GetHistory(sessionID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	if messages == nil {
		messages = []model.Message{}
	}

	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

// writeError 将业务层错误映射为 HTTP 状态码。
// 500 响应直接透出底层错误信息，这是沿用原有行为的已知加固缺口。
func (h *ChatHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidRequest):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		log.Error("请求处理失败", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

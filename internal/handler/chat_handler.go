package handler

import (
	"errors"
	"net/http"

	"github.com/Sameerk99/mental-health-hub/internal/model"
	"github.com/Sameerk99/mental-health-hub/internal/service"
	"github.com/Sameerk99/mental-health-hub/pkg/llm"
	"github.com/Sameerk99/mental-health-hub/pkg/log"
	"github.com/gin-gonic/gin"
)

// ChatHandler 负责处理会话式跟进的 API 请求。
// 响应体固定为 {"response": ...} 或 {"error": ...}。
type ChatHandler struct {
	chatService service.ChatService
}

// NewChatHandler 创建一个新的 ChatHandler 实例。
func NewChatHandler(chatService service.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// Handle 处理一次聊天请求，并把编排层的错误分类映射为对应的状态码。
// 客户端可见的消息保持通用，细节只记录在服务端日志。
func (h *ChatHandler) Handle(c *gin.Context) {
	var req model.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warnf("Chat: invalid request payload, error: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	user := currentUser(c)

	reply, err := h.chatService.Handle(c.Request.Context(), user, &req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"response": reply})
}

// writeError 将编排层/模型层的错误映射为客户端响应。
func (h *ChatHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUnauthenticated), errors.Is(err, service.ErrNoAssessment):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Please complete an assessment first!"})
	case errors.Is(err, service.ErrChatBadRequest):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
	case errors.Is(err, service.ErrSessionMismatch):
		c.JSON(http.StatusForbidden, gin.H{"error": "Session mismatch. Please restart assessment."})
	case errors.Is(err, llm.ErrConnection):
		log.Error("Chat: LLM connection error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Connection failed. Check internet."})
	case errors.Is(err, llm.ErrRateLimited):
		log.Error("Chat: LLM rate limit", err)
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests. Wait 1 minute."})
	case errors.Is(err, llm.ErrService):
		log.Error("Chat: LLM API error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "AI service unavailable"})
	default:
		log.Error("Chat: unexpected error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

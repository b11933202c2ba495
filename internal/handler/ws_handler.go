// Package handler 包含了处理 HTTP 请求的控制器逻辑。
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"support-chat-go/internal/service"
	"support-chat-go/pkg/log"
	"support-chat-go/pkg/token"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // 允许所有来源
	},
}

// WSChatHandler 通过 WebSocket 提供与 /chat 等价的对话通道。
// 复用同一个 ChatService，一帧请求对应一轮对话。
type WSChatHandler struct {
	chatService service.ChatService
	jwtManager  *token.JWTManager
}

// NewWSChatHandler 创建一个新的 WSChatHandler 实例。
func NewWSChatHandler(chatService service.ChatService, jwtManager *token.JWTManager) *WSChatHandler {
	return &WSChatHandler{chatService: chatService, jwtManager: jwtManager}
}

// wsTurnRequest 是 WebSocket 的入站帧。userId 取自 token，不由帧内容决定。
type wsTurnRequest struct {
	SessionID string `json:"sessionId"`
	Message   string `json:"message"`
}

// Handle 处理一个传入的 WebSocket 连接。token 走路径参数，与 HTTP 链路的
// Authorization 头等价。
func (h *WSChatHandler) Handle(c *gin.Context) {
	tokenString := c.Param("token")
	claims, err := h.jwtManager.VerifyToken(tokenString)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "无效的 token"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("WebSocket 升级失败", err)
		return
	}
	defer conn.Close()

	log.Infof("WebSocket 连接已建立，用户: %s", claims.UserID)

	for {
		var req wsTurnRequest
		if err := conn.ReadJSON(&req); err != nil {
			log.Warnf("从 WebSocket 读取消息失败: %v", err)
			break
		}

		result, err := h.chatService.HandleTurn(c.Request.Context(), claims.UserID, req.SessionID, req.Message)
		if err != nil {
			// 统一 JSON 错误帧，连接保持打开，允许客户端重试
			if werr := conn.WriteJSON(gin.H{"error": err.Error()}); werr != nil {
				log.Warnf("向 WebSocket 写入错误帧失败: %v", werr)
				break
			}
			continue
		}

		if err := conn.WriteJSON(result); err != nil {
			log.Warnf("向 WebSocket 写入响应失败: %v", err)
			break
		}
	}
}

// Package handler 包含了处理 HTTP 请求的控制器逻辑。
package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"support-chat-go/internal/service"
	"support-chat-go/pkg/log"
)

// AdminHandler 处理坐席侧的管理 API 请求。
type AdminHandler struct {
	adminService service.AdminService
}

// NewAdminHandler 创建一个新的 AdminHandler 实例。
func NewAdminHandler(adminService service.AdminService) *AdminHandler {
	return &AdminHandler{adminService: adminService}
}

// ListEscalatedSessions 返回待人工处理的升级会话。
func (h *AdminHandler) ListEscalatedSessions(c *gin.Context) {
	sessions, err := h.adminService.ListEscalatedSessions()
	if err != nil {
		log.Error("获取升级会话列表失败", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    http.StatusInternalServerError,
			"message": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": sessions})
}

// ResolveSession 人工将会话标记为已解决。
func (h *AdminHandler) ResolveSession(c *gin.Context) {
	sessionID := c.Param("sessionId")

	err := h.adminService.ResolveSession(sessionID)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "会话已标记为已解决"})
	case errors.Is(err, service.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"code":    http.StatusNotFound,
			"message": err.Error(),
		})
	case errors.Is(err, service.ErrSessionAlreadyResolved):
		c.JSON(http.StatusConflict, gin.H{
			"code":    http.StatusConflict,
			"message": err.Error(),
		})
	default:
		log.Error("标记会话已解决失败", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    http.StatusInternalServerError,
			"message": err.Error(),
		})
	}
}

// SearchTranscripts 全文检索历史对话，供坐席排查问题。
func (h *AdminHandler) SearchTranscripts(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    http.StatusBadRequest,
			"message": "q is required",
		})
		return
	}

	hits, err := h.adminService.SearchTranscripts(c.Request.Context(), query)
	if err != nil {
		if errors.Is(err, service.ErrSearchDisabled) {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"code":    http.StatusServiceUnavailable,
				"message": err.Error(),
			})
			return
		}
		log.Error("检索对话记录失败", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    http.StatusInternalServerError,
			"message": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": hits})
}

package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"support-chat-go/internal/model"
	"support-chat-go/internal/repository"
	"support-chat-go/internal/service"
)

// 端到端走一遍真实的 repository + service 栈（内存 SQLite），
// 验证经 /chat 建立的会话能被 /sessions 与 /history 按序读回。
func newFlowRouter(t *testing.T) *gin.Engine {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.Session{}, &model.Message{}, &model.FAQEntry{}))

	sessionRepo := repository.NewSessionRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	faqRepo := repository.NewFAQRepository(db, nil, 0)

	chatService := service.NewChatService(sessionRepo, messageRepo, faqRepo, nil, nil, nil)
	sessionService := service.NewSessionService(sessionRepo, messageRepo)

	return newChatRouter(chatService, sessionService)
}

func TestChatSessionRoundTrip(t *testing.T) {
	r := newFlowRouter(t)

	// 第一轮：不带 sessionId，服务端新建会话
	w := doRequest(r, http.MethodPost, "/chat", `{"userId":"u1","message":"where is my package"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var turn struct {
		SessionID string `json:"sessionId"`
		Message   string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &turn))
	require.NotEmpty(t, turn.SessionID)
	require.NotEmpty(t, turn.Message)

	// 第二轮：续用同一会话
	w = doRequest(r, http.MethodPost, "/chat",
		`{"userId":"u1","sessionId":"`+turn.SessionID+`","message":"thank you"}`)
	require.Equal(t, http.StatusOK, w.Code)

	// 会话出现在用户的会话列表中
	w = doRequest(r, http.MethodGet, "/sessions?userId=u1", "")
	require.Equal(t, http.StatusOK, w.Code)

	var sessResp struct {
		Sessions []model.Session `json:"sessions"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sessResp))
	require.Len(t, sessResp.Sessions, 1)
	require.Equal(t, turn.SessionID, sessResp.Sessions[0].ID)
	require.Equal(t, "u1", sessResp.Sessions[0].UserID)

	// 历史按时间升序：用户、助手交替，共四条
	w = doRequest(r, http.MethodGet, "/history?sessionId="+turn.SessionID, "")
	require.Equal(t, http.StatusOK, w.Code)

	var histResp struct {
		Messages []model.Message `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &histResp))
	require.Len(t, histResp.Messages, 4)
	require.Equal(t, model.RoleUser, histResp.Messages[0].Role)
	require.Equal(t, "where is my package", histResp.Messages[0].Content)
	require.Equal(t, model.RoleAssistant, histResp.Messages[1].Role)
	require.Equal(t, model.RoleUser, histResp.Messages[2].Role)
	require.Equal(t, "thank you", histResp.Messages[2].Content)
	require.Equal(t, model.RoleAssistant, histResp.Messages[3].Role)
}

func TestChatFlowEmptyListsForFreshUser(t *testing.T) {
	r := newFlowRouter(t)

	w := doRequest(r, http.MethodGet, "/sessions?userId=nobody", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"sessions": []}`, w.Body.String())
}

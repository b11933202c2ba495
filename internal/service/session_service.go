// Package service 包含了应用的业务逻辑层。
package service

import (
	"support-chat-go/internal/model"
	"support-chat-go/internal/repository"
)

// SessionService 提供面向用户的会话查询。
type SessionService interface {
	// ListSessions 返回一个用户的全部会话，按最后活跃时间倒序。
	ListSessions(userID string) ([]model.Session, error)
	// GetHistory 返回一个会话的完整消息记录，按创建时间升序。
	GetHistory(sessionID string) ([]model.Message, error)
}

type sessionService struct {
	sessionRepo repository.SessionRepository
	messageRepo repository.MessageRepository
}

// NewSessionService 创建一个新的 SessionService 实例。
func NewSessionService(sessionRepo repository.SessionRepository, messageRepo repository.MessageRepository) SessionService {
	return &sessionService{sessionRepo: sessionRepo, messageRepo: messageRepo}
}

func (s *sessionService) ListSessions(userID string) ([]model.Session, error) {
	return s.sessionRepo.FindByUser(userID)
}

func (s *sessionService) GetHistory(sessionID string) ([]model.Message, error) {
	return s.messageRepo.FindBySession(sessionID)
}

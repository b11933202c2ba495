// Package service 包含了应用的业务逻辑层。
package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"support-chat-go/internal/model"
	"support-chat-go/internal/repository"
)

var (
	ErrSessionAlreadyResolved = errors.New("session is already resolved")
	ErrSearchDisabled         = errors.New("transcript search is not enabled")
)

// TranscriptSearcher 对坐席开放的对话记录全文检索（由 Elasticsearch 实现）。
type TranscriptSearcher interface {
	SearchMessages(ctx context.Context, query string, size int) ([]model.TranscriptHit, error)
}

// AdminService 提供坐席侧的管理操作。状态机只会自动把会话升级为 escalated，
// resolved 只能经由这里的人工操作到达。
type AdminService interface {
	// ListEscalatedSessions 返回待人工处理的会话，最久未处理的排前面。
	ListEscalatedSessions() ([]model.Session, error)
	// ResolveSession 人工将会话标记为已解决。状态只能向前流转，
	// 已经 resolved 的会话再次标记会报错。
	ResolveSession(sessionID string) error
	// SearchTranscripts 全文检索历史消息。未启用索引时返回 ErrSearchDisabled。
	SearchTranscripts(ctx context.Context, query string) ([]model.TranscriptHit, error)
}

type adminService struct {
	sessionRepo repository.SessionRepository
	searcher    TranscriptSearcher
}

// NewAdminService 创建一个新的 AdminService 实例。searcher 可为 nil。
func NewAdminService(sessionRepo repository.SessionRepository, searcher TranscriptSearcher) AdminService {
	return &adminService{sessionRepo: sessionRepo, searcher: searcher}
}

func (s *adminService) ListEscalatedSessions() ([]model.Session, error) {
	return s.sessionRepo.FindByStatus(model.SessionStatusEscalated)
}

func (s *adminService) ResolveSession(sessionID string) error {
	session, err := s.sessionRepo.FindByID(sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSessionNotFound
		}
		return fmt.Errorf("failed to load session: %w", err)
	}
	if session.Status == model.SessionStatusResolved {
		return ErrSessionAlreadyResolved
	}
	return s.sessionRepo.UpdateStatus(sessionID, model.SessionStatusResolved)
}

func (s *adminService) SearchTranscripts(ctx context.Context, query string) ([]model.TranscriptHit, error) {
	if s.searcher == nil {
		return nil, ErrSearchDisabled
	}
	const maxHits = 50
	return s.searcher.SearchMessages(ctx, query, maxHits)
}

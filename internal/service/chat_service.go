// Package service 包含了应用的业务逻辑层。
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"support-chat-go/internal/model"
	"support-chat-go/internal/repository"
	"support-chat-go/internal/responder"
	"support-chat-go/pkg/log"
)

// 业务层的哨兵错误，由 handler 映射为对应的 HTTP 状态码。
var (
	ErrInvalidRequest  = errors.New("userId and message are required")
	ErrSessionNotFound = errors.New("session not found")
)

// EscalationEvent 是会话升级时发往人工坐席队列的事件。
type EscalationEvent struct {
	SessionID   string    `json:"session_id"`
	UserID      string    `json:"user_id"`
	Reason      string    `json:"reason"`
	EscalatedAt time.Time `json:"escalated_at"`
}

// EscalationNotifier 在会话升级时通知外部系统（如 Kafka 坐席队列）。
type EscalationNotifier interface {
	NotifyEscalation(ctx context.Context, event EscalationEvent) error
}

// TranscriptArchiver 归档升级会话的完整对话记录，供人工坐席接手时查阅。
type TranscriptArchiver interface {
	ArchiveTranscript(ctx context.Context, session *model.Session, messages []model.Message) error
}

// MessageIndexer 将消息写入全文索引，供坐席检索历史对话。
type MessageIndexer interface {
	IndexMessage(ctx context.Context, session *model.Session, message *model.Message) error
}

// TurnResult 是一轮对话的处理结果，直接对应 /chat 接口的响应体。
type TurnResult struct {
	SessionID        string `json:"sessionId"`
	Message          string `json:"message"`
	ShouldEscalate   bool   `json:"shouldEscalate"`
	EscalationReason string `json:"escalationReason,omitempty"`
}

// ChatService 定义了对话编排的接口：一次调用处理一轮完整的用户对话。
type ChatService interface {
	HandleTurn(ctx context.Context, userID, sessionID, message string) (*TurnResult, error)
}

type chatService struct {
	sessionRepo repository.SessionRepository
	messageRepo repository.MessageRepository
	faqRepo     repository.FAQRepository
	notifier    EscalationNotifier
	archiver    TranscriptArchiver
	indexer     MessageIndexer
}

// NewChatService 创建一个新的 ChatService 实例。
// notifier/archiver/indexer 均可为 nil，表示对应的旁路通道未启用。
func NewChatService(
	sessionRepo repository.SessionRepository,
	messageRepo repository.MessageRepository,
	faqRepo repository.FAQRepository,
	notifier EscalationNotifier,
	archiver TranscriptArchiver,
	indexer MessageIndexer,
) ChatService {
	return &chatService{
		sessionRepo: sessionRepo,
		messageRepo: messageRepo,
		faqRepo:     faqRepo,
		notifier:    notifier,
		archiver:    archiver,
		indexer:     indexer,
	}
}

// HandleTurn 处理一轮对话：建立或续用会话，落用户消息，调规则引擎，
// 落助手消息，必要时把会话升级给人工。任何持久化失败都会中止本轮。
// 多步写之间没有锁或事务，同一会话的并发轮次需要由调用方自行串行化。
func (s *chatService) HandleTurn(ctx context.Context, userID, sessionID, message string) (*TurnResult, error) {
	// 先校验再写库，保证校验失败时没有任何半成品状态。
	if userID == "" || message == "" {
		return nil, ErrInvalidRequest
	}

	session, err := s.ensureSession(userID, sessionID)
	if err != nil {
		return nil, err
	}

	userMsg := &model.Message{
		ID:        uuid.NewString(),
		SessionID: session.ID,
		Role:      model.RoleUser,
		Content:   message,
		CreatedAt: time.Now(),
	}
	if err := s.messageRepo.Append(userMsg); err != nil {
		return nil, fmt.Errorf("failed to append user message: %w", err)
	}

	// 历史包含刚追加的用户消息，引擎据此判断问候与升级阈值。
	history, err := s.messageRepo.FindBySession(session.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	faqs, err := s.faqRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	result := responder.Respond(message, toHistory(history), toFAQs(faqs))

	assistantMsg := &model.Message{
		ID:        uuid.NewString(),
		SessionID: session.ID,
		Role:      model.RoleAssistant,
		Content:   result.Content,
		CreatedAt: time.Now(),
		Metadata:  marshalMetadata(result.Metadata),
	}
	if err := s.messageRepo.Append(assistantMsg); err != nil {
		return nil, fmt.Errorf("failed to append assistant message: %w", err)
	}

	s.indexMessages(ctx, session, userMsg, assistantMsg)

	if result.ShouldEscalate {
		if err := s.sessionRepo.Escalate(session.ID, result.EscalationReason); err != nil {
			return nil, fmt.Errorf("failed to escalate session: %w", err)
		}
		s.fireEscalationHooks(ctx, session.ID, session.UserID, result.EscalationReason)
	}

	return &TurnResult{
		SessionID:        session.ID,
		Message:          result.Content,
		ShouldEscalate:   result.ShouldEscalate,
		EscalationReason: result.EscalationReason,
	}, nil
}

// ensureSession 在没有会话 id 时新建会话，有 id 时只刷新最后活跃时间。
// id 指向的会话不存在时返回 ErrSessionNotFound，绝不隐式新建。
func (s *chatService) ensureSession(userID, sessionID string) (*model.Session, error) {
	now := time.Now()
	if sessionID == "" {
		session := &model.Session{
			ID:             uuid.NewString(),
			UserID:         userID,
			StartedAt:      now,
			LastActivityAt: now,
			Status:         model.SessionStatusActive,
		}
		if err := s.sessionRepo.Create(session); err != nil {
			return nil, fmt.Errorf("failed to create session: %w", err)
		}
		return session, nil
	}

	if err := s.sessionRepo.Touch(sessionID, now); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to touch session: %w", err)
	}
	// 续用会话时以库中记录的归属为准，不信任请求声明的 userId
	session, err := s.sessionRepo.FindByID(sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	session.LastActivityAt = now
	return session, nil
}

// fireEscalationHooks 触发升级的旁路通道。旁路失败只记日志，本轮照常返回。
func (s *chatService) fireEscalationHooks(ctx context.Context, sessionID, userID, reason string) {
	if s.notifier != nil {
		event := EscalationEvent{
			SessionID:   sessionID,
			UserID:      userID,
			Reason:      reason,
			EscalatedAt: time.Now(),
		}
		if err := s.notifier.NotifyEscalation(ctx, event); err != nil {
			log.Errorf("发送升级事件失败: session=%s, err=%v", sessionID, err)
		}
	}

	if s.archiver != nil {
		session, err := s.sessionRepo.FindByID(sessionID)
		if err != nil {
			log.Errorf("归档前加载会话失败: session=%s, err=%v", sessionID, err)
			return
		}
		messages, err := s.messageRepo.FindBySession(sessionID)
		if err != nil {
			log.Errorf("归档前加载对话记录失败: session=%s, err=%v", sessionID, err)
			return
		}
		if err := s.archiver.ArchiveTranscript(ctx, session, messages); err != nil {
			log.Errorf("归档对话记录失败: session=%s, err=%v", sessionID, err)
		}
	}
}

func (s *chatService) indexMessages(ctx context.Context, session *model.Session, messages ...*model.Message) {
	if s.indexer == nil {
		return
	}
	for _, m := range messages {
		if err := s.indexer.IndexMessage(ctx, session, m); err != nil {
			log.Warnf("索引消息失败: message=%s, err=%v", m.ID, err)
		}
	}
}

func toHistory(messages []model.Message) []responder.HistoryEntry {
	entries := make([]responder.HistoryEntry, 0, len(messages))
	for _, m := range messages {
		entries = append(entries, responder.HistoryEntry{Role: m.Role, Content: m.Content})
	}
	return entries
}

func toFAQs(faqs []model.FAQEntry) []responder.FAQ {
	out := make([]responder.FAQ, 0, len(faqs))
	for _, f := range faqs {
		out = append(out, responder.FAQ{
			ID:       f.ID,
			Question: f.Question,
			Answer:   f.Answer,
			Category: f.Category,
			Keywords: f.KeywordList(),
		})
	}
	return out
}

func marshalMetadata(meta responder.Metadata) []byte {
	b, err := json.Marshal(meta)
	if err != nil {
		return nil
	}
	return b
}

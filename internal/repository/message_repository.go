// Package repository 提供了数据访问层的实现。
package repository

import (
	"gorm.io/gorm"

	"support-chat-go/internal/model"
)

// MessageRepository 定义了消息日志的持久化操作。消息只追加，没有更新和删除。
type MessageRepository interface {
	Append(message *model.Message) error
	// FindBySession 返回一个会话的全部消息，按创建时间升序，即完整对话记录。
	FindBySession(sessionID string) ([]model.Message, error)
}

type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository 创建一个新的 MessageRepository 实例。
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Append(message *model.Message) error {
	return r.db.Create(message).Error
}

func (r *messageRepository) FindBySession(sessionID string) ([]model.Message, error) {
	var messages []model.Message
	err := r.db.Where("session_id = ?", sessionID).
		Order("created_at ASC").
		Find(&messages).Error
	return messages, err
}

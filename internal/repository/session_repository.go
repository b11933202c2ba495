// Package repository 提供了数据访问层的实现。
package repository

import (
	"time"

	"gorm.io/gorm"

	"support-chat-go/internal/model"
)

// SessionRepository 定义了会话数据的持久化操作。
type SessionRepository interface {
	Create(session *model.Session) error
	FindByID(id string) (*model.Session, error)
	// Touch 更新会话的最后活跃时间。会话不存在时返回 gorm.ErrRecordNotFound，
	// 不会静默创建。
	Touch(id string, at time.Time) error
	FindByUser(userID string) ([]model.Session, error)
	FindByStatus(status string) ([]model.Session, error)
	// Escalate 将会话置为 escalated 并记录原因。
	Escalate(id, reason string) error
	UpdateStatus(id, status string) error
}

type sessionRepository struct {
	db *gorm.DB
}

// NewSessionRepository 创建一个新的 SessionRepository 实例。
func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Create(session *model.Session) error {
	return r.db.Create(session).Error
}

func (r *sessionRepository) FindByID(id string) (*model.Session, error) {
	var session model.Session
	err := r.db.First(&session, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepository) Touch(id string, at time.Time) error {
	res := r.db.Model(&model.Session{}).
		Where("id = ?", id).
		Update("last_activity_at", at)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// FindByUser 返回一个用户的全部会话，按最后活跃时间倒序。
func (r *sessionRepository) FindByUser(userID string) ([]model.Session, error) {
	var sessions []model.Session
	err := r.db.Where("user_id = ?", userID).
		Order("last_activity_at DESC").
		Find(&sessions).Error
	return sessions, err
}

// FindByStatus 返回指定状态的会话，按最后活跃时间升序（最久未处理的排前面）。
func (r *sessionRepository) FindByStatus(status string) ([]model.Session, error) {
	var sessions []model.Session
	err := r.db.Where("status = ?", status).
		Order("last_activity_at ASC").
		Find(&sessions).Error
	return sessions, err
}

func (r *sessionRepository) Escalate(id, reason string) error {
	return r.db.Model(&model.Session{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":           model.SessionStatusEscalated,
			"escalated_reason": reason,
		}).Error
}

func (r *sessionRepository) UpdateStatus(id, status string) error {
	res := r.db.Model(&model.Session{}).
		Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

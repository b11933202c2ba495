// Package model 包含了应用的数据模型定义。
package model

import "time"

// 会话状态常量。状态只能单向流转：active -> resolved 或 active -> escalated。
const (
	SessionStatusActive    = "active"
	SessionStatusResolved  = "resolved"
	SessionStatusEscalated = "escalated"
)

// Session 代表一次客服会话。由用户的第一条消息创建，id 一经分配不再变更。
type Session struct {
	ID              string    `gorm:"type:char(36);primaryKey" json:"id"`
	UserID          string    `gorm:"size:64;index;not null" json:"user_id"`
	StartedAt       time.Time `gorm:"autoCreateTime" json:"started_at"`
	LastActivityAt  time.Time `gorm:"index;not null" json:"last_activity_at"`
	Status          string    `gorm:"size:16;not null;default:active" json:"status"`
	EscalatedReason string    `gorm:"type:text" json:"escalated_reason,omitempty"`
}

func (Session) TableName() string {
	return "support_sessions"
}

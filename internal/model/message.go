// Package model 包含了应用的数据模型定义。
package model

import (
	"time"

	"gorm.io/datatypes"
)

// 消息角色常量。
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Message 代表会话中的一条消息。只追加，创建后不再修改或删除。
// 同一会话内按 created_at 升序即为完整的对话记录。
type Message struct {
	ID        string         `gorm:"type:char(36);primaryKey" json:"id"`
	SessionID string         `gorm:"type:char(36);index;not null" json:"session_id"`
	Role      string         `gorm:"size:16;not null" json:"role"`
	Content   string         `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time      `gorm:"autoCreateTime;index" json:"created_at"`
	Metadata  datatypes.JSON `gorm:"type:json" json:"metadata,omitempty"`
}

func (Message) TableName() string {
	return "conversation_messages"
}

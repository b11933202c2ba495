// Package model 包含了应用的数据模型定义。
package model

import "time"

// TranscriptHit 是对话记录全文检索的一条命中结果。
type TranscriptHit struct {
	MessageID string    `json:"message_id"`
	SessionID string    `json:"session_id"`
	UserID    string    `json:"user_id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	Score     float64   `json:"score"`
}

// Package model 包含了应用的数据模型定义。
package model

import (
	"encoding/json"

	"gorm.io/datatypes"
)

// FAQEntry 代表一条常见问题。目录由外部系统维护，本服务只读。
type FAQEntry struct {
	ID       string         `gorm:"type:char(36);primaryKey" json:"id"`
	Question string         `gorm:"type:text;not null" json:"question"`
	Answer   string         `gorm:"type:text;not null" json:"answer"`
	Category string         `gorm:"size:64;index" json:"category"`
	Keywords datatypes.JSON `gorm:"type:json" json:"keywords"`
}

func (FAQEntry) TableName() string {
	return "faqs"
}

// KeywordList 将 JSON 形式的关键词列解析为字符串切片。解析失败时返回空切片。
func (f *FAQEntry) KeywordList() []string {
	if len(f.Keywords) == 0 {
		return nil
	}
	var kws []string
	if err := json.Unmarshal(f.Keywords, &kws); err != nil {
		return nil
	}
	return kws
}

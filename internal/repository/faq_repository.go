// Package repository 提供了数据访问层的实现。
package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"

	"support-chat-go/internal/model"
	"support-chat-go/pkg/log"
)

const faqCacheKey = "faq:catalog"

// FAQRepository 定义了 FAQ 目录的读取操作。目录由外部系统维护，这里只读。
type FAQRepository interface {
	FindAll(ctx context.Context) ([]model.FAQEntry, error)
}

type faqRepository struct {
	db          *gorm.DB
	redisClient *redis.Client
	cacheTTL    time.Duration
}

// NewFAQRepository 创建一个新的 FAQRepository 实例。
// cacheTTL 为 0 时禁用缓存，每轮对话都直接读库（默认行为）。
func NewFAQRepository(db *gorm.DB, redisClient *redis.Client, cacheTTL time.Duration) FAQRepository {
	return &faqRepository{db: db, redisClient: redisClient, cacheTTL: cacheTTL}
}

// FindAll 返回完整的 FAQ 目录，保持数据库中的目录顺序。
// 启用缓存时优先读 Redis，缓存异常只记日志并回落到数据库。
func (r *faqRepository) FindAll(ctx context.Context) ([]model.FAQEntry, error) {
	if r.cacheTTL > 0 && r.redisClient != nil {
		if faqs, ok := r.fromCache(ctx); ok {
			return faqs, nil
		}
	}

	var faqs []model.FAQEntry
	if err := r.db.Order("id ASC").Find(&faqs).Error; err != nil {
		return nil, fmt.Errorf("failed to load faq catalog: %w", err)
	}

	if r.cacheTTL > 0 && r.redisClient != nil {
		r.toCache(ctx, faqs)
	}
	return faqs, nil
}

func (r *faqRepository) fromCache(ctx context.Context) ([]model.FAQEntry, bool) {
	jsonData, err := r.redisClient.Get(ctx, faqCacheKey).Result()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		log.Warnf("读取 FAQ 缓存失败，回落到数据库: %v", err)
		return nil, false
	}
	var faqs []model.FAQEntry
	if err := json.Unmarshal([]byte(jsonData), &faqs); err != nil {
		log.Warnf("解析 FAQ 缓存失败，回落到数据库: %v", err)
		return nil, false
	}
	return faqs, true
}

func (r *faqRepository) toCache(ctx context.Context, faqs []model.FAQEntry) {
	jsonData, err := json.Marshal(faqs)
	if err != nil {
		return
	}
	if err := r.redisClient.Set(ctx, faqCacheKey, jsonData, r.cacheTTL).Err(); err != nil {
		log.Warnf("写入 FAQ 缓存失败: %v", err)
	}
}

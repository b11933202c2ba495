// Package storage 提供了与对象存储服务（如 MinIO）交互的功能。
// 升级会话的完整对话记录会以 JSON 对象的形式归档，供人工坐席接手时查阅。
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"support-chat-go/internal/config"
	"support-chat-go/internal/model"
	"support-chat-go/pkg/log"
)

// Archiver 将对话记录写入对象存储，实现 service.TranscriptArchiver。
type Archiver struct {
	client *minio.Client
	bucket string
}

// transcript 是归档对象的内容结构。
type transcript struct {
	Session  *model.Session  `json:"session"`
	Messages []model.Message `json:"messages"`
}

// NewArchiver 初始化 MinIO 客户端并确保归档存储桶存在。
func NewArchiver(cfg config.MinIOConfig) (*Archiver, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("初始化 MinIO 客户端失败: %w", err)
	}

	ctx := context.Background()
	exists, err := client.BucketExists(ctx, cfg.BucketName)
	if err != nil {
		return nil, fmt.Errorf("检查 MinIO 存储桶失败: %w", err)
	}
	if !exists {
		log.Infof("存储桶 '%s' 不存在，正在创建...", cfg.BucketName)
		if err := client.MakeBucket(ctx, cfg.BucketName, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("创建 MinIO 存储桶失败: %w", err)
		}
	}

	log.Info("MinIO 归档客户端初始化成功")
	return &Archiver{client: client, bucket: cfg.BucketName}, nil
}

// ArchiveTranscript 把会话与全部消息序列化后写入
// transcripts/<sessionID>.json。同一会话重复归档时直接覆盖旧对象。
func (a *Archiver) ArchiveTranscript(ctx context.Context, session *model.Session, messages []model.Message) error {
	body, err := json.Marshal(transcript{Session: session, Messages: messages})
	if err != nil {
		return fmt.Errorf("failed to marshal transcript: %w", err)
	}

	objectName := fmt.Sprintf("transcripts/%s.json", session.ID)
	_, err = a.client.PutObject(ctx, a.bucket, objectName,
		bytes.NewReader(body), int64(len(body)),
		minio.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		return fmt.Errorf("failed to archive transcript: %w", err)
	}

	log.Infof("对话记录已归档: %s", objectName)
	return nil
}

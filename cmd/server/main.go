// Package main 是应用程序的入口点。
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"support-chat-go/internal/config"
	"support-chat-go/internal/handler"
	"support-chat-go/internal/middleware"
	"support-chat-go/internal/repository"
	"support-chat-go/internal/service"
	"support-chat-go/pkg/database"
	"support-chat-go/pkg/es"
	"support-chat-go/pkg/kafka"
	"support-chat-go/pkg/log"
	"support-chat-go/pkg/storage"
	"support-chat-go/pkg/token"
)

func main() {
	// 1. 初始化配置
	config.Init("./configs/config.yaml")
	cfg := config.Conf

	// 2. 初始化日志记录器
	log.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.OutputPath)
	defer log.Sync() // 确保在程序退出时刷新所有缓冲的日志条目
	log.Info("日志记录器初始化成功")

	// 3. 初始化数据库和 Redis
	database.InitMySQL(cfg.Database.MySQL.DSN)
	database.InitRedis(cfg.Database.Redis.Addr, cfg.Database.Redis.Password, cfg.Database.Redis.DB)

	// 4. 初始化可选的旁路通道：升级事件队列、对话归档、全文索引
	var notifier service.EscalationNotifier
	var kafkaNotifier *kafka.Notifier
	if cfg.Kafka.Enabled {
		kafkaNotifier = kafka.NewNotifier(cfg.Kafka)
		notifier = kafkaNotifier
	}

	var archiver service.TranscriptArchiver
	if cfg.MinIO.Enabled {
		a, err := storage.NewArchiver(cfg.MinIO)
		if err != nil {
			log.Fatal("初始化对话归档失败", err)
		}
		archiver = a
	}

	var indexer service.MessageIndexer
	var searcher service.TranscriptSearcher
	if cfg.Elasticsearch.Enabled {
		idx, err := es.NewIndexer(cfg.Elasticsearch)
		if err != nil {
			log.Fatal("初始化全文索引失败", err)
		}
		indexer = idx
		searcher = idx
	}

	// 5. 初始化 Repository
	sessionRepo := repository.NewSessionRepository(database.DB)
	messageRepo := repository.NewMessageRepository(database.DB)
	faqRepo := repository.NewFAQRepository(database.DB, database.RDB,
		time.Duration(cfg.FAQ.CacheTTLSeconds)*time.Second)

	// 6. 初始化 Service (依赖注入)
	jwtManager := token.NewJWTManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpireHours)
	chatService := service.NewChatService(sessionRepo, messageRepo, faqRepo, notifier, archiver, indexer)
	sessionService := service.NewSessionService(sessionRepo, messageRepo)
	adminService := service.NewAdminService(sessionRepo, searcher)

	// 7. 设置 Gin 模式并创建路由引擎
	gin.SetMode(cfg.Server.Mode)
	r := gin.New()
	r.Use(middleware.CORS(), middleware.RequestLogger(), gin.Recovery())

	// 8. 注册路由
	chatHandler := handler.NewChatHandler(chatService, sessionService)
	wsHandler := handler.NewWSChatHandler(chatService, jwtManager)
	adminHandler := handler.NewAdminHandler(adminService)

	// 对话相关路由，需要认证
	api := r.Group("/")
	api.Use(middleware.AuthMiddleware(jwtManager))
	{
		api.POST("/chat", chatHandler.Chat)
		api.GET("/sessions", chatHandler.ListSessions)
		api.GET("/history", chatHandler.GetHistory)
	}

	// WebSocket 对话通道，token 走路径参数
	r.GET("/chat/ws/:token", wsHandler.Handle)

	// 坐席管理路由，需要同时通过认证和管理员授权两个中间件
	admin := r.Group("/admin")
	admin.Use(middleware.AuthMiddleware(jwtManager), middleware.AdminAuthMiddleware())
	{
		admin.GET("/sessions/escalated", adminHandler.ListEscalatedSessions)
		admin.PUT("/sessions/:sessionId/resolve", adminHandler.ResolveSession)
		admin.GET("/search", adminHandler.SearchTranscripts)
	}

	// 9. 启动 HTTP 服务器并实现优雅停机
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: r,
	}

	go func() {
		log.Infof("服务启动于 %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP 服务监听失败: %s\n", err)
		}
	}()

	// 等待中断信号以实现优雅停机
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("接收到停机信号，正在关闭服务...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("HTTP 服务器关闭失败: %v", err)
	}

	if kafkaNotifier != nil {
		if err := kafkaNotifier.Close(); err != nil {
			log.Errorf("关闭 Kafka 生产者失败: %v", err)
		}
	}

	log.Info("服务已优雅关闭")
}

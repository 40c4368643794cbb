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

	"github.com/arrahchii/portfolio-sub000/internal/config"
	"github.com/arrahchii/portfolio-sub000/internal/handler"
	"github.com/arrahchii/portfolio-sub000/internal/middleware"
	"github.com/arrahchii/portfolio-sub000/internal/profile"
	"github.com/arrahchii/portfolio-sub000/internal/repository"
	"github.com/arrahchii/portfolio-sub000/internal/service"
	"github.com/arrahchii/portfolio-sub000/pkg/database"
	"github.com/arrahchii/portfolio-sub000/pkg/kafka"
	"github.com/arrahchii/portfolio-sub000/pkg/llm"
	"github.com/arrahchii/portfolio-sub000/pkg/log"
	"github.com/arrahchii/portfolio-sub000/pkg/storage"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// 1. 加载 .env 与配置
	envErr := godotenv.Load()
	cfg, err := config.Load("./configs/config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志记录器
	log.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.OutputPath)
	defer log.Sync() // 确保在程序退出时刷新所有缓冲的日志条目
	log.Info("日志记录器初始化成功")
	if envErr != nil {
		log.Warnf("未加载 .env 文件，仅使用配置文件与环境变量: %v", envErr)
	}

	// 3. 初始化存储
	messageRepo, conversationRepo, closeStore := openStore(cfg)
	defer closeStore()

	// 4. 初始化 Service (依赖注入)
	owner := profile.New(cfg.Profile)
	if cfg.LLM.APIKey == "" {
		log.Warnf("未配置 llm.api_key，开放式问题将返回致歉文本")
	}
	llmClient := llm.NewClient(cfg.LLM)

	var images service.ImageSource
	if cfg.MinIO.Enabled {
		resolver, err := storage.NewProfileImageResolver(cfg.MinIO)
		if err != nil {
			log.Fatal("初始化 MinIO 失败", err)
		}
		images = resolver
	}

	var publisher service.TurnPublisher = service.NoopPublisher{}
	if cfg.Kafka.Enabled {
		producer := kafka.NewProducer(cfg.Kafka)
		defer func() {
			if err := producer.Close(); err != nil {
				log.Errorf("关闭 Kafka 生产者失败: %v", err)
			}
		}()
		publisher = producer
	}

	quickAnswers := service.NewQuickQuestionResolver(owner, cfg.Chat.FallbackReply)
	personal := service.NewPersonalQueryDetector(owner, images)
	chatService := service.NewChatService(service.ChatDeps{
		Messages:      messageRepo,
		Conversations: conversationRepo,
		QuickAnswers:  quickAnswers,
		Personal:      personal,
		Dispatcher:    service.NewDispatcher(llmClient, owner.SystemPrompt, cfg.Chat.HistoryWindow, cfg.LLM.Generation),
		Publisher:     publisher,
		ApologyReply:  cfg.Chat.ApologyReply,
	})
	conversationService := service.NewConversationService(conversationRepo)

	// 5. 设置 Gin 模式并创建路由引擎
	gin.SetMode(cfg.Server.Mode)
	r := gin.New() // 使用 New() 创建一个不带默认中间件的引擎
	r.Use(middleware.RequestLogger(), gin.Recovery(), middleware.CORS(cfg.Server.AllowedOrigins))

	handler.RegisterRoutes(r, handler.Handlers{
		Chat:         handler.NewChatHandler(chatService),
		Conversation: handler.NewConversationHandler(conversationService),
		Profile:      handler.NewProfileHandler(owner, personal, quickAnswers),
	})

	// 启动 HTTP 服务器并实现优雅停机
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
		log.Errorf("HTTP 服务器关闭失败: %v", err)
	}
	log.Info("服务已优雅关闭")
}

// openStore 按 store.driver 选择消息与会话摘要的存储实现。
func openStore(cfg config.Config) (repository.MessageRepository, repository.ConversationRepository, func()) {
	switch cfg.Store.Driver {
	case "redis":
		rdb, err := database.NewRedis(context.Background(), cfg.Database.Redis.Addr, cfg.Database.Redis.Password, cfg.Database.Redis.DB)
		if err != nil {
			log.Fatal("连接 Redis 失败", err)
		}
		closeFn := func() {
			if err := rdb.Close(); err != nil {
				log.Errorf("关闭 Redis 连接失败: %v", err)
			}
		}
		return repository.NewRedisMessageRepository(rdb, cfg.Store.RedisTTL),
			repository.NewRedisConversationRepository(rdb, cfg.Store.RedisTTL),
			closeFn
	case "mysql", "postgres", "sqlite":
		db, err := database.OpenGorm(cfg.Store.Driver, cfg.Database.DSN)
		if err != nil {
			log.Fatal("连接数据库失败", err)
		}
		if err := database.Migrate(db); err != nil {
			log.Fatal("数据库迁移失败", err)
		}
		closeFn := func() {
			if err := database.Close(db); err != nil {
				log.Errorf("关闭数据库连接失败: %v", err)
			}
		}
		return repository.NewGormMessageRepository(db), repository.NewGormConversationRepository(db), closeFn
	default:
		log.Info("使用内存存储，重启后会话数据将丢失")
		return repository.NewMemoryMessageRepository(), repository.NewMemoryConversationRepository(), func() {}
	}
}

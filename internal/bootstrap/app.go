package bootstrap

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"docquery/internal/ai"
	"docquery/internal/cache"
	"docquery/internal/chunker"
	"docquery/internal/config"
	"docquery/internal/engine"
	"docquery/internal/index"
	"docquery/internal/ingest"
	"docquery/internal/memory"
	"docquery/internal/model"
	mysqlClient "docquery/internal/platform/mysql"
	rabbitmqClient "docquery/internal/platform/rabbitmq"
	redisClient "docquery/internal/platform/redis"
	"docquery/internal/registry"
	"docquery/internal/repository"
	"docquery/internal/worker"
)

type App struct {
	Config        *config.Config
	MySQL         *gorm.DB
	Redis         *redis.Client
	MQConn        *amqp.Connection
	MessageWorker *worker.MessagePersistWorker
	Publisher     *rabbitmqClient.MessagePublisher
	HistoryCache  *cache.HistoryCache
	Registry      *registry.Registry
	Memory        *memory.Store

	StartedAt time.Time
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}

	mysqlDB, err := mysqlClient.New(ctx, cfg.MySQLDSN())
	if err != nil {
		return nil, err
	}
	if err := mysqlDB.AutoMigrate(&model.Document{}, &model.Session{}, &model.Message{}); err != nil {
		return nil, fmt.Errorf("auto migrate tables failed: %w", err)
	}

	redisCli, err := redisClient.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, err
	}

	mqConn, err := rabbitmqClient.New(ctx, cfg.RabbitMQ.URL)
	if err != nil {
		return nil, err
	}

	messageRepo := repository.NewMessageRepository(mysqlDB)
	messageWorker := worker.NewMessagePersistWorker(mqConn, messageRepo, cfg.RabbitMQ.MessagePersistQueue)
	if err := messageWorker.Start(ctx); err != nil {
		return nil, fmt.Errorf("start message worker failed: %w", err)
	}

	splitter, err := chunker.NewSplitter(cfg.RAG.ChunkSize, cfg.RAG.ChunkOverlap)
	if err != nil {
		return nil, err
	}

	llm := ai.NewBoundClient(
		ai.NewOpenAICompatibleClient(),
		ai.ChatConfig{BaseURL: cfg.LLM.BaseURL, APIKey: cfg.LLM.APIKey, Model: cfg.LLM.Model},
		ai.EmbeddingConfig{BaseURL: cfg.LLM.BaseURL, APIKey: cfg.LLM.APIKey, Model: cfg.LLM.EmbeddingModel},
	)

	mem := memory.NewStore()
	reg := registry.New(func(ctx context.Context, doc *model.Document) (*engine.Engine, error) {
		text, err := ingest.ExtractFile(doc.FilePath, doc.FileType)
		if err != nil {
			return nil, err
		}
		chunks := splitter.Split(text)
		ix := index.New(llm)
		if err := ix.Build(ctx, chunks); err != nil {
			return nil, err
		}
		return engine.New(ix, mem, llm, cfg.RAG.TopK, cfg.LLM.MaxHistoryTurns), nil
	})

	publisher, err := rabbitmqClient.NewMessagePublisher(mqConn, cfg.RabbitMQ.MessagePersistQueue)
	if err != nil {
		return nil, err
	}

	return &App{
		Config:        cfg,
		MySQL:         mysqlDB,
		Redis:         redisCli,
		MQConn:        mqConn,
		MessageWorker: messageWorker,
		Publisher:     publisher,
		HistoryCache: cache.NewHistoryCache(
			redisCli,
			time.Duration(cfg.Redis.HistoryTTLSeconds)*time.Second,
			time.Duration(cfg.Redis.HistoryDirtyTTLSeconds)*time.Second,
		),
		Registry:  reg,
		Memory:    mem,
		StartedAt: time.Now(),
	}, nil
}

func (a *App) Close() error {
	var closeErr error
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			closeErr = err
		}
	}
	if a.MessageWorker != nil {
		a.MessageWorker.Close()
	}
	if a.MQConn != nil {
		if err := a.MQConn.Close(); err != nil {
			closeErr = err
		}
	}
	if a.MySQL != nil {
		sqlDB, err := a.MySQL.DB()
		if err == nil {
			if err := sqlDB.Close(); err != nil {
				closeErr = err
			}
		}
	}
	return closeErr
}

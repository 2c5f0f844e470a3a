package app

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"tush00nka/chattik/internal/config"
	"tush00nka/chattik/internal/handler"
	"tush00nka/chattik/internal/pkg/logger"
	"tush00nka/chattik/internal/pkg/openai"
	"tush00nka/chattik/internal/pkg/storage"
	"tush00nka/chattik/internal/repository"
	"tush00nka/chattik/internal/service"

	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

// Run собирает зависимости и блокируется до SIGINT/SIGTERM
func Run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log := logger.New(logger.Options{FilePath: cfg.LogFile, IsProd: cfg.IsProduction()})
	defer log.Sync()
	zap.ReplaceGlobals(log)

	dbLogLevel := gormlogger.Info
	if cfg.IsProduction() {
		dbLogLevel = gormlogger.Warn
	}

	db, err := repository.NewDB(cfg.DatabaseURL, repository.Options{Schema: cfg.DBSchema, LogLevel: dbLogLevel})
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	if err := repository.Migrate(db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	cache, err := newMessageCache(ctx, cfg)
	if err != nil {
		return err
	}

	store, err := newStorage(ctx, cfg)
	if err != nil {
		return err
	}

	userRepo := repository.NewUserRepository(db)
	chatRepo := repository.NewChatRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	contactRepo := repository.NewContactRepository(db)

	aiService := service.NewAIService(newCompleter(cfg), log.Named("ai"))
	userService := service.NewUserService(userRepo, log.Named("users"))
	contactService := service.NewContactService(contactRepo, userRepo, log.Named("contacts"))
	chatService := service.NewChatService(chatRepo, userRepo, log.Named("chats"))
	messageService := service.NewMessageService(messageRepo, chatRepo, userRepo, cache, aiService, log.Named("messages"))
	uploadService := service.NewUploadService(store, log.Named("upload"))

	h := handler.NewHandler(userService, contactService, chatService, messageService, aiService, log)
	uploadHandler := handler.NewUploadHandler(uploadService, log)

	server := NewServer(log, h, uploadHandler)
	server.writeTimeout = writeTimeoutFor(cfg.AITimeout)
	return server.Run(ctx, cfg.ServerPort)
}

// newCompleter возвращает nil без ключа: AI тогда отвечает заглушкой и наружу не ходит
func newCompleter(cfg *config.Config) service.Completer {
	if cfg.OpenAIAPIKey == "" {
		return nil
	}
	return openai.NewClient(openai.Config{
		APIKey:  cfg.OpenAIAPIKey,
		BaseURL: cfg.OpenAIBaseURL,
		Model:   cfg.OpenAIModel,
		Timeout: cfg.AITimeout,
	})
}

func newMessageCache(ctx context.Context, cfg *config.Config) (repository.MessageCacheRepository, error) {
	if cfg.RedisAddr == "" {
		zap.L().Info("REDIS_ADDR is empty, message cache disabled")
		return repository.NewNopMessageCache(), nil
	}

	rdb, err := repository.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	return repository.NewMessageCacheRepository(rdb, cfg.MessageCacheTTL), nil
}

// newStorage выбирает S3, если задан бакет, иначе локальную папку
func newStorage(ctx context.Context, cfg *config.Config) (storage.Storage, error) {
	if cfg.S3BucketName != "" {
		s3, err := storage.NewS3Storage(ctx, storage.S3Config{
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
			Bucket:          cfg.S3BucketName,
			PublicURL:       cfg.UploadPublicURL,
		})
		if err != nil {
			return nil, fmt.Errorf("init s3 storage: %w", err)
		}
		return s3, nil
	}

	local, err := storage.NewLocalStorage(cfg.UploadDir, cfg.UploadPublicURL)
	if err != nil {
		return nil, fmt.Errorf("init local storage: %w", err)
	}
	return local, nil
}

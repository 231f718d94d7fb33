package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gamarriando/contracts-service/internal/app/contracts/config"
	"gamarriando/contracts-service/internal/app/contracts/entity"
	"gamarriando/contracts-service/internal/app/contracts/handler"
	"gamarriando/contracts-service/internal/app/contracts/infrastructure"
	"gamarriando/contracts-service/internal/app/contracts/infrastructure/messaging"
	"gamarriando/contracts-service/internal/app/contracts/processor"
	"gamarriando/contracts-service/internal/app/contracts/repository"
	"gamarriando/contracts-service/internal/app/contracts/service"
	"gamarriando/contracts-service/internal/app/contracts/util"
	"gamarriando/pkg/contracts"
	"gamarriando/pkg/logger"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	serviceName := cfg.Service.Name
	logger.Init(serviceName, cfg.Service.LogLevel)

	if cfg.Service.LogstashAddr != "" {
		if err := logger.InitLogstash(cfg.Service.LogstashAddr, serviceName, cfg.Service.LogLevel); err != nil {
			logger.Warn().Err(err).Msg("Failed to connect to Logstash, using stdout only")
		} else {
			logger.Info().Str("logstash_addr", cfg.Service.LogstashAddr).Msg("Connected to Logstash")
		}
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// === ХРАНИЛИЩЕ НАРУШЕНИЙ ===
	violationRepo, closeStore := openViolationStore(cfg, serviceName)
	defer closeStore()

	// === REDIS ===
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	// Redis не обязателен для старта: без кеша проверка работает медленнее
	pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		logger.Warn().Err(err).Str("address", cfg.Redis.Address()).Msg("Redis is not reachable, verdict cache degraded")
	} else {
		logger.Info().Str("address", cfg.Redis.Address()).Msg("Connected to Redis")
	}
	pingCancel()

	verdictCache := repository.NewVerdictCache(redisClient, cfg.Redis.VerdictTTL, serviceName)

	// === KAFKA ===
	kafkaProducer := messaging.NewKafkaProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic, serviceName)
	defer kafkaProducer.Close()
	logger.Info().
		Strs("brokers", cfg.Kafka.Brokers).
		Str("topic", cfg.Kafka.Topic).
		Msg("Initialized Kafka producer")

	// === СЕРВИСЫ ===
	validationSvc := service.NewValidationService(contracts.Schemas, violationRepo, verdictCache, kafkaProducer, serviceName)

	healthSvc := service.NewHealthService(service.HealthServiceConfig{
		Service:       serviceName,
		Version:       cfg.Service.Version,
		PublicURL:     cfg.Service.PublicURL,
		Documentation: cfg.Service.Documentation,
		ProbeTimeout:  cfg.Cron.ProbeTimeout,
		Endpoints:     handler.Endpoints(),
	}, map[string]infrastructure.Pinger{
		cfg.Database.Store: violationRepo,
		"redis":            verdictCache,
		"kafka":            kafkaProducer,
	})

	prober := processor.NewHealthProber(healthSvc)
	if err := prober.Start(ctx, cfg.Cron.HealthSchedule); err != nil {
		logger.Fatal().Err(err).Str("schedule", cfg.Cron.HealthSchedule).Msg("Failed to start health prober")
	}
	defer prober.Stop()

	// === HTTP ===
	rateLimiter := handler.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst, serviceName)
	rateLimiter.StartCleanup(ctx, 10*time.Minute)

	authMiddleware := handler.NewAuthMiddleware(util.NewTokenVerifier(cfg.JWT.Secret))
	router := handler.SetupRoutes(
		serviceName,
		handler.NewContractHandler(validationSvc),
		handler.NewHealthHandler(healthSvc),
		authMiddleware,
		rateLimiter,
	)

	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Int("schemas", contracts.Schemas.Len()).
			Msg("Starting Contracts Service")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// === GRACEFUL SHUTDOWN ===
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down Contracts Service...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}

	logger.Info().Msg("Contracts Service stopped gracefully")
}

// openViolationStore подключает хранилище, выбранное VIOLATION_STORE
func openViolationStore(cfg *config.Config, serviceName string) (repository.ViolationRepository, func()) {
	if cfg.Database.Store == config.StoreMongo {
		client, err := connectMongoDB(cfg.Mongo)
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to connect to MongoDB")
		}
		logger.Info().Str("database", cfg.Mongo.Database).Msg("Connected to MongoDB")

		closeFn := func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := client.Disconnect(ctx); err != nil {
				logger.Error().Err(err).Msg("Error disconnecting from MongoDB")
			}
		}
		return repository.NewViolationMongoRepository(client.Database(cfg.Mongo.Database)), closeFn
	}

	db, err := connectDB(cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to database")
	}
	logger.Info().Str("database", cfg.Database.DBName).Msg("Connected to PostgreSQL")

	if err := db.AutoMigrate(&entity.ViolationReport{}); err != nil {
		logger.Fatal().Err(err).Msg("Failed to migrate database")
	}

	closeFn := func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	}
	return repository.NewViolationRepository(db, serviceName), closeFn
}

// connectDB открывает пул pgx и отдает его GORM как готовое соединение
func connectDB(cfg config.DatabaseConfig) (*gorm.DB, error) {
	pgxConfig, err := pgx.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("invalid database config: %w", err)
	}

	gormConfig := &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	}

	// Retry logic для устойчивости при запуске в Docker
	for i := 0; i < 10; i++ {
		sqlDB := stdlib.OpenDB(*pgxConfig)
		if err = sqlDB.Ping(); err == nil {
			sqlDB.SetMaxOpenConns(10)
			sqlDB.SetMaxIdleConns(5)
			sqlDB.SetConnMaxLifetime(5 * time.Minute)
			sqlDB.SetConnMaxIdleTime(1 * time.Minute)

			var db *gorm.DB
			db, err = gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), gormConfig)
			if err == nil {
				return db, nil
			}
		}
		sqlDB.Close()

		logger.Warn().
			Int("attempt", i+1).
			Err(err).
			Msg("Failed to connect to database, retrying...")
		time.Sleep(3 * time.Second)
	}

	return nil, fmt.Errorf("failed to connect after 10 attempts: %w", err)
}

func connectMongoDB(cfg config.MongoConfig) (*mongo.Client, error) {
	clientOptions := options.Client().ApplyURI(cfg.URI)

	var client *mongo.Client
	var err error

	for i := 0; i < 10; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		client, err = mongo.Connect(ctx, clientOptions)
		cancel()

		if err == nil {
			pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
			err = client.Ping(pingCtx, nil)
			pingCancel()
			if err == nil {
				return client, nil
			}
		}

		logger.Warn().
			Int("attempt", i+1).
			Err(err).
			Msg("Failed to connect to MongoDB, retrying...")
		time.Sleep(3 * time.Second)
	}

	return nil, fmt.Errorf("failed to connect after 10 attempts: %w", err)
}

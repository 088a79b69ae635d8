package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"livro/api"
	"livro/config"
	"livro/middleware"
	"livro/models"
	"livro/services"
)

func main() {
	config.LoadConfig()

	logger, err := newLogger(config.AppConfig.Mode)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	db, err := gorm.Open(mysql.Open(config.AppConfig.DBConnectionString), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		PrepareStmt:    true,
		TranslateError: true,
	})
	if err != nil {
		logger.Fatal("database connection failed", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("database pool unavailable", zap.Error(err))
	}
	sqlDB.SetMaxIdleConns(config.AppConfig.DBMaxIdleConns)
	sqlDB.SetMaxOpenConns(config.AppConfig.DBMaxOpenConns)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&models.Group{}, &models.Event{}, &models.Meeting{}); err != nil {
		logger.Fatal("database migration failed", zap.Error(err))
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisDB,
		PoolSize: config.AppConfig.RedisPoolSize,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		logger.Fatal("redis connection failed", zap.Error(err))
	}
	logger.Info("redis connected", zap.String("addr", config.AppConfig.RedisAddr))

	hub := services.NewHub(rdb, config.AppConfig.MaxConnections, logger)
	go hub.Run()

	// Without Kafka the hub delivers notices itself, to this instance only.
	var publisher services.NoticePublisher = hub
	var kafkaService *services.KafkaService
	if config.AppConfig.KafkaEnabled {
		kafkaService, err = services.NewKafkaService(
			config.AppConfig.KafkaBootstrapServers,
			config.AppConfig.KafkaConsumerGroup,
			config.AppConfig.KafkaRevalidationTopic,
			logger,
		)
		if err != nil {
			logger.Warn("kafka unavailable, notices stay local", zap.Error(err))
			kafkaService = nil
		} else if err := kafkaService.Subscribe(hub.BroadcastNotice); err != nil {
			logger.Warn("kafka subscription failed, notices stay local", zap.Error(err))
			kafkaService.Close()
			kafkaService = nil
		} else {
			publisher = kafkaService
		}
	}

	pageCache := services.NewPageCache(rdb, time.Duration(config.AppConfig.CacheExpiration)*time.Second, logger)
	revalidator := services.NewRevalidator(pageCache, publisher, logger)

	if config.AppConfig.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(logger))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     config.AppConfig.CORSAllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))
	r.Use(middleware.RateLimiter(rdb, config.AppConfig.RateLimitPerMinute, logger))
	r.Use(middleware.AdminGate())

	api.RegisterRoutes(r, api.Services{
		DB:       db,
		RDB:      rdb,
		Groups:   services.NewGroupService(db, revalidator, logger),
		Events:   services.NewEventService(db, revalidator, logger),
		Meetings: services.NewMeetingService(db, revalidator, logger),
		Book:     services.NewBookService(db, pageCache, logger),
		Hub:      hub,
		Kafka:    kafkaService,
	}, logger)

	srv := services.StartServer(r, config.AppConfig.Port, logger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("forced shutdown", zap.Error(err))
	}

	hub.Stop()
	if kafkaService != nil {
		if err := kafkaService.Close(); err != nil {
			logger.Warn("kafka close", zap.Error(err))
		}
	}
	if err := rdb.Close(); err != nil {
		logger.Warn("redis close", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger(mode string) (*zap.Logger, error) {
	if mode == "release" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

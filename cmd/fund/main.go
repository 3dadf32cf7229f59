package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/wyfcoding/fundpooling/internal/fund/application"
	"github.com/wyfcoding/fundpooling/internal/fund/domain"
	fundcache "github.com/wyfcoding/fundpooling/internal/fund/infrastructure/cache"
	"github.com/wyfcoding/fundpooling/internal/fund/infrastructure/messaging"
	"github.com/wyfcoding/fundpooling/internal/fund/infrastructure/persistence/mysql"
	"github.com/wyfcoding/fundpooling/pkg/cache"
	"github.com/wyfcoding/fundpooling/pkg/config"
	"github.com/wyfcoding/fundpooling/pkg/db"
	"github.com/wyfcoding/fundpooling/pkg/idgen"
	"github.com/wyfcoding/fundpooling/pkg/logger"
	"github.com/wyfcoding/fundpooling/pkg/metrics"
	"github.com/wyfcoding/fundpooling/pkg/mq"
)

func main() {
	ctx := context.Background()

	// 1. 加载配置
	configPath := config.GetEnv("APP_CONFIG", "configs/fund/config.toml")
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	if err := logger.Init(logger.Config{
		Level:      cfg.Logger.Level,
		Format:     cfg.Logger.Format,
		Output:     cfg.Logger.Output,
		FilePath:   cfg.Logger.FilePath,
		MaxSize:    cfg.Logger.MaxSize,
		MaxBackups: cfg.Logger.MaxBackups,
		MaxAge:     cfg.Logger.MaxAge,
		Compress:   cfg.Logger.Compress,
		WithCaller: cfg.Logger.WithCaller,
	}); err != nil {
		fmt.Printf("failed to init logger: %v\n", err)
		os.Exit(1)
	}

	// 3. 初始化 ID 生成器与指标
	idgen.Init(cfg.NodeID)
	m := metrics.New("fund")

	// 4. 初始化数据库
	database, err := db.Init(db.Config{
		Driver:             cfg.Database.Driver,
		DSN:                cfg.Database.DSN,
		MaxOpenConns:       cfg.Database.MaxOpenConns,
		MaxIdleConns:       cfg.Database.MaxIdleConns,
		ConnMaxLifetime:    cfg.Database.ConnMaxLifetime,
		LogEnabled:         cfg.Database.LogEnabled,
		SlowQueryThreshold: cfg.Database.SlowQueryThreshold,
	}, func(elapsed time.Duration) {
		m.DBQueryDuration.Observe(elapsed.Seconds())
	})
	if err != nil {
		logger.Fatal(ctx, "failed to connect to database", "error", err)
	}

	// 5. 自动迁移
	if err := database.AutoMigrate(
		&domain.Fund{},
		&domain.Investor{},
		&domain.Investment{},
		&domain.Payment{},
		&domain.Payout{},
		&domain.Transfer{},
	); err != nil {
		logger.Fatal(ctx, "failed to migrate database", "error", err)
	}

	// 6. 初始化 Redis
	redisCache, err := cache.New(cache.Config{
		Host:         cfg.Redis.Host,
		Port:         cfg.Redis.Port,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		MaxPoolSize:  cfg.Redis.MaxPoolSize,
		ConnTimeout:  cfg.Redis.ConnTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})
	if err != nil {
		logger.Fatal(ctx, "failed to connect to redis", "error", err)
	}

	// 7. 初始化 Kafka 生产者
	producer, err := mq.NewProducer(mq.KafkaConfig{
		Brokers:      cfg.Kafka.Brokers,
		MaxRetries:   cfg.Kafka.MaxRetries,
		RetryBackoff: cfg.Kafka.RetryBackoff,
	})
	if err != nil {
		logger.Fatal(ctx, "failed to create kafka producer", "error", err)
	}

	// 8. 依赖注入
	repo := mysql.NewFundRepository(database)
	publisher := messaging.NewKafkaEventPublisher(producer, cfg.Kafka.EventTopic)
	snapshot := fundcache.NewRedisFundCache(redisCache, time.Duration(cfg.Redis.FundCacheTTL)*time.Second)
	service := application.NewFundService(repo, publisher, snapshot, m)

	// 9. 启动到期结束任务
	jobCtx, cancelJob := context.WithCancel(ctx)
	maturityJob := application.NewMaturityJob(service, repo)
	go maturityJob.Start(jobCtx)

	// 10. 指标服务
	var metricsServer *http.Server
	if cfg.Metrics.Enabled {
		metricsServer = m.NewServer(cfg.Metrics.Port, cfg.Metrics.Path)
		go func() {
			logger.Info(ctx, "metrics server listening", "port", cfg.Metrics.Port, "path", cfg.Metrics.Path)
			if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error(ctx, "metrics server failed", "error", err)
			}
		}()
	}

	logger.Info(ctx, "fund service started", "environment", cfg.Environment)

	// 11. 优雅关停
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	cancelJob()

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if metricsServer != nil {
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			logger.Error(ctx, "failed to shut down metrics server", "error", err)
		}
	}
	if err := producer.Close(); err != nil {
		logger.Error(ctx, "failed to close kafka producer", "error", err)
	}
	if err := redisCache.Close(); err != nil {
		logger.Error(ctx, "failed to close redis", "error", err)
	}
	if err := database.Close(); err != nil {
		logger.Error(ctx, "failed to close database", "error", err)
	}

	logger.Info(ctx, "fund service stopped")
}

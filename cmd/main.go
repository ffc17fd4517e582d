package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/RaikyD/orders-intake-service/internal/application"
	"github.com/RaikyD/orders-intake-service/internal/batch"
	"github.com/RaikyD/orders-intake-service/internal/config"
	"github.com/RaikyD/orders-intake-service/internal/intake"
	"github.com/RaikyD/orders-intake-service/internal/kafka"
	"github.com/RaikyD/orders-intake-service/internal/logger"
	"github.com/RaikyD/orders-intake-service/internal/metrics"
	"github.com/RaikyD/orders-intake-service/internal/migrate"
	"github.com/RaikyD/orders-intake-service/internal/presentation"
	"github.com/RaikyD/orders-intake-service/internal/queue"
	"github.com/RaikyD/orders-intake-service/internal/repository"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config load failed:", err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.LogDevelopment); err != nil {
		fmt.Fprintln(os.Stderr, "logger init failed:", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logger.Error("service stopped with error", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	repo, closeRepo, err := openRepo(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeRepo()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	svc := application.NewOrdersService(repo)

	prod := kafka.NewProducer(cfg.KafkaBrokers)
	defer prod.Close()

	dispatcher := intake.NewDispatcher(prod.Topic(cfg.JSONTopic), prod.Topic(cfg.XMLTopic), m)

	g, ctx := errgroup.WithContext(ctx)

	lanes := []struct {
		lane  queue.Lane
		topic string
	}{
		{queue.JSONLane, cfg.JSONTopic},
		{queue.XMLLane, cfg.XMLTopic},
	}
	for _, l := range lanes {
		proc, err := batch.NewProcessor(l.lane, svc, m, cfg.Workers)
		if err != nil {
			return err
		}
		consumer := kafka.NewConsumer(kafka.ConsumerConfig{
			Brokers:         cfg.KafkaBrokers,
			Topic:           l.topic,
			GroupID:         cfg.KafkaGroupID,
			DeadLetterTopic: cfg.DeadLetterTopic(l.topic),
			BatchSize:       cfg.BatchSize,
			BatchWait:       cfg.BatchWait,
		}, proc, prod.Topic(cfg.DeadLetterTopic(l.topic)))
		g.Go(func() error { return consumer.Run(ctx) })
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	presentation.NewOrdersHandler(dispatcher, svc, cfg.MaxBodyBytes).Register(r)
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	g.Go(func() error {
		logger.Info("starting http", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func openRepo(ctx context.Context, cfg *config.Config) (repository.OrderRepo, func(), error) {
	switch cfg.StoreDriver {
	case config.StoreDriverPostgres:
		if err := migrate.Up(cfg.DBString); err != nil {
			return nil, nil, fmt.Errorf("migrate.Up: %w", err)
		}
		pool, err := pgxpool.New(ctx, cfg.DBString)
		if err != nil {
			return nil, nil, fmt.Errorf("pgxpool.New: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("db ping: %w", err)
		}
		logger.Info("db connected")
		return repository.NewOrderRepository(pool), pool.Close, nil

	case config.StoreDriverRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("redis ping: %w", err)
		}
		logger.Info("redis connected", "addr", cfg.RedisAddr)
		return repository.NewRedisOrderRepository(client, cfg.RedisPrefix), func() { _ = client.Close() }, nil
	}

	logger.Warn("using in-memory order store; records are lost on restart")
	return repository.NewMemoryOrderRepository(), func() {}, nil
}

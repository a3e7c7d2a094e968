package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mybbstuff/alerts-engine/internal/config"
	"github.com/mybbstuff/alerts-engine/internal/event"
	"github.com/mybbstuff/alerts-engine/internal/registry"
	"github.com/mybbstuff/alerts-engine/internal/repository/postgres"
	alertservice "github.com/mybbstuff/alerts-engine/internal/service/alert"
	"github.com/mybbstuff/alerts-engine/internal/worker"
	"github.com/mybbstuff/alerts-engine/pkg/logger"
	"github.com/mybbstuff/alerts-engine/pkg/messaging/redis"
	"github.com/mybbstuff/alerts-engine/pkg/metrics"
)

func setupHealthCheck(log *logger.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/health/live", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.Handle("/metrics", promhttp.Handler())

	go func() {
		if err := http.ListenAndServe(":8081", mux); err != nil {
			log.Fatal(err, "health check server failed")
		}
	}()
}

func main() {
	log := logger.New(nil)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err, "failed to load config")
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal(err, "failed to connect to database")
	}
	defer db.Close()

	broker, err := redis.NewRedisBroker(cfg.Redis.ToBrokerConfig(), log.ZL())
	if err != nil {
		log.Fatal(err, "failed to create redis broker")
	}
	defer broker.Close()

	m := metrics.New("alerts_worker")

	baseRepo := postgres.NewBaseRepository(db)
	alertRepo := postgres.NewAlertRepository(baseRepo)
	typeRepo := postgres.NewAlertTypeRepository(baseRepo)
	prefRepo := postgres.NewUserPreferenceRepository(baseRepo)

	loader := registry.NewLoader(typeRepo, cfg.Registry.CacheTTL)
	engine := alertservice.NewService(alertRepo, prefRepo, loader, log, m)

	adapters := event.NewAdapters(engine, loader, log)
	consumer := event.NewConsumer(broker, adapters, log)
	retention := worker.NewRetentionTask(alertRepo, cfg.Retention.Horizon, cfg.Retention.Schedule, log, m)

	setupHealthCheck(log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Info("shutting down")
		cancel()
	}()

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := consumer.Run(ctx); err != nil {
			log.Error(err, "event consumer stopped")
			cancel()
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := retention.Start(ctx); err != nil {
			log.Error(err, "retention task stopped")
			cancel()
		}
	}()

	wg.Wait()
}

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/time/rate"

	"github.com/mybbstuff/alerts-engine/internal/config"
	"github.com/mybbstuff/alerts-engine/internal/handler"
	alerthandler "github.com/mybbstuff/alerts-engine/internal/handler/alert"
	"github.com/mybbstuff/alerts-engine/internal/handler/alerttype"
	"github.com/mybbstuff/alerts-engine/internal/middleware"
	"github.com/mybbstuff/alerts-engine/internal/registry"
	"github.com/mybbstuff/alerts-engine/internal/repository/postgres"
	"github.com/mybbstuff/alerts-engine/internal/router"
	alertservice "github.com/mybbstuff/alerts-engine/internal/service/alert"
	"github.com/mybbstuff/alerts-engine/internal/service/preference"
	"github.com/mybbstuff/alerts-engine/pkg/auth"
	"github.com/mybbstuff/alerts-engine/pkg/logger"
	"github.com/mybbstuff/alerts-engine/pkg/metrics"
)

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

	m := metrics.New("alerts")

	baseRepo := postgres.NewBaseRepository(db)
	alertRepo := postgres.NewAlertRepository(baseRepo)
	typeRepo := postgres.NewAlertTypeRepository(baseRepo)
	prefRepo := postgres.NewUserPreferenceRepository(baseRepo)

	loader := registry.NewLoader(typeRepo, cfg.Registry.CacheTTL)
	engine := alertservice.NewService(alertRepo, prefRepo, loader, log, m)
	prefSvc := preference.NewService(prefRepo)

	jwtSvc := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpiryHours)
	authMw := middleware.NewAuthMiddleware(jwtSvc)

	routerCfg := router.Config{
		MetricsPrefix: "alerts_api",
	}
	if cfg.RateLimit.Enabled {
		routerCfg.RateLimit = rate.Limit(cfg.RateLimit.RequestsPerSecond)
		routerCfg.RateBurst = cfg.RateLimit.Burst
	}

	r, err := router.NewRouter(
		authMw,
		alerthandler.NewHandler(engine, prefSvc),
		alerttype.NewHandler(typeRepo, loader),
		handler.NewHealthHandler(db),
		routerCfg,
	)
	if err != nil {
		log.Fatal(err, "failed to build router")
	}

	srv := &http.Server{
		Addr:           fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:        r.Engine(),
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	go func() {
		log.Info("api server started", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err, "server failed")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error(err, "graceful shutdown failed")
	}
}

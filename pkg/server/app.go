package server

import (
	"context"
	"io"
	"os/signal"
	"syscall"

	"CrediScan/internal/handler/api"
	"CrediScan/internal/services/news"
	"CrediScan/internal/usecase"
	"CrediScan/pkg/cache"
	pkgch "CrediScan/pkg/clickhouse"
	"CrediScan/pkg/config"
	xhttp "CrediScan/pkg/http"
	pkgkafka "CrediScan/pkg/kafka"
	applogger "CrediScan/pkg/logger"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	log        *applogger.Logger
	svc        *usecase.AnalysisService
	handler    *api.AnalysisEchoHandler
	hub        *api.StreamHub
	httpServer *xhttp.Server

	// optional components, nil when disabled
	Warmer       *news.Warmer
	Producer     *pkgkafka.Producer
	Consumer     *pkgkafka.Consumer
	KafkaHandler pkgkafka.MessageHandler
	ClickHouse   *pkgch.Client
	Redis        *cache.RedisCache
	ResultCache  cache.Service
}

// New creates a new App instance with the always-present dependencies.
func New(cfg *config.Config, l *applogger.Logger, svc *usecase.AnalysisService, handler *api.AnalysisEchoHandler, hub *api.StreamHub) *App {
	return &App{cfg: cfg, log: l, svc: svc, handler: handler, hub: hub}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts := []xhttp.ServerOption{
		xhttp.WithHost(a.cfg.Server.Host),
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithCORS(a.cfg.Server.CORS),
		xhttp.WithSlowRequest(a.cfg.Server.SlowRequest),
		xhttp.WithLogger(a.log.With(applogger.String("component", "http"))),
	}
	metricsPath := a.cfg.Metrics.Path
	if !a.cfg.Metrics.Enabled {
		metricsPath = ""
	}
	opts = append(opts, xhttp.WithMetrics(metricsPath, nil))
	a.httpServer = xhttp.NewServer([]xhttp.Handler{a.handler, a.hub}, opts...)

	if a.Warmer != nil {
		a.Warmer.Start()
	}

	if a.Consumer != nil && a.KafkaHandler != nil {
		a.Consumer.RegisterHandler(a.KafkaHandler)
		if err := a.Consumer.Start(); err != nil {
			a.log.Error("kafka consumer start", applogger.Error(err))
			return err
		}
	}

	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}

	health := a.svc.Health()
	a.log.Info("crediscan started",
		applogger.String("backend", a.cfg.Backend.Type),
		applogger.String("model_backend", health.ModelBackend),
		applogger.Bool("model_available", health.AIModelAvailable),
		applogger.Bool("news", a.cfg.News.Enabled),
	)

	<-ctx.Done()
	a.log.Info("shutdown signal received")
	return a.shutdown()
}

// shutdown stops intake first, then drains sinks, then closes infrastructure.
func (a *App) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Stop(ctx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
	}
	if err := a.svc.Drain(ctx); err != nil {
		a.log.Warn("analysis sinks not drained", applogger.Error(err))
	}
	_ = a.hub.Close()

	if a.Warmer != nil {
		a.Warmer.Stop(ctx)
	}
	if a.Consumer != nil {
		if err := a.Consumer.Stop(ctx); err != nil {
			a.log.Warn("kafka consumer stop error", applogger.Error(err))
		}
	}

	// the collector publishes through the producer, so flush it first
	a.log.RemoveCollector()
	if a.Producer != nil {
		if err := a.Producer.Close(); err != nil {
			a.log.Warn("kafka producer close error", applogger.Error(err))
		}
	}
	if a.ClickHouse != nil {
		if err := a.ClickHouse.Close(); err != nil {
			a.log.Warn("clickhouse close error", applogger.Error(err))
		}
	}
	if c, ok := a.ResultCache.(io.Closer); ok {
		_ = c.Close()
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			a.log.Warn("redis close error", applogger.Error(err))
		}
	}

	a.log.Info("shutdown complete")
	return nil
}

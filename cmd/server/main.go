// Command server hosts Mystery Letter rooms over websockets without Nakama.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mysteryletter/internal/app"
	"mysteryletter/internal/bot"
	"mysteryletter/internal/config"
	"mysteryletter/internal/lobby"
	"mysteryletter/internal/logger"
	"mysteryletter/internal/metrics"
	"mysteryletter/internal/ports/ws"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.LoadServerConfig()
	if err != nil {
		logger.Fatal("load config", "error", err)
	}
	logger.Init(cfg.LogLevel, cfg.LogJSON)
	log := logger.Get()

	if err := config.LoadGameConfig(cfg.GameConfigPath); err != nil {
		log.Warn("game config not loaded, using defaults", "path", cfg.GameConfigPath, "error", err)
	}
	if err := bot.LoadIdentities(cfg.BotsPath); err != nil {
		log.Warn("bot identities not loaded, using generated names", "path", cfg.BotsPath, "error", err)
	}

	secret := cfg.TicketSecret
	if secret == "" {
		secret = uuid.NewString()
		log.Warn("MYSTERY_TICKET_SECRET not set, seat tickets will not survive a restart")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	registry := lobby.NewRegistry(lobby.Options{
		Game:     config.GetGameConfig(),
		Logger:   log,
		Metrics:  m,
		BotNamer: bot.IdentityNamer(),
	})
	tickets := app.NewTicketService(secret, "mysteryletter", cfg.TicketTTL)

	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	handler := ws.NewHandler(registry, tickets, cfg, log)
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           ws.NewRouter(handler, m),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown", "error", err)
	}
	registry.Close()
}

package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/garra-os/backend/internal/auth"
	"github.com/garra-os/backend/internal/config"
	httpapi "github.com/garra-os/backend/internal/http"
	"github.com/garra-os/backend/internal/metrics"
	"github.com/garra-os/backend/internal/models"
	"github.com/garra-os/backend/internal/photos"
	"github.com/garra-os/backend/internal/session"
	"github.com/garra-os/backend/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	zerolog.TimeFieldFormat = time.RFC3339
	level, _ := zerolog.ParseLevel(cfg.LogLevel)
	logger := log.Level(level).With().Str("service", "garra-backend").Logger()

	var st *store.Store
	if cfg.SeedOrders {
		st = store.NewSeeded()
	} else {
		st = store.New()
	}

	reg := photos.NewRegistry()
	tech := models.Technician{Name: cfg.TechName, VanStatus: cfg.VanStatus}

	m := metrics.New(st.Len)
	ctrl := session.New(st, reg, tech, logger, session.WithTransitionHook(m.ObserveTransition))

	authSvc := auth.New(auth.Config{
		Secret:         cfg.AuthSecret,
		TokenTTL:       cfg.TokenTTL,
		Email:          cfg.TechEmail,
		Password:       cfg.TechPassword,
		TechnicianName: cfg.TechName,
	})

	router := httpapi.Router(cfg, st, ctrl, authSvc, reg, m, logger)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info().Str("port", cfg.Port).Int("seed_orders", st.Len()).Msg("server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctxShutdown)
	logger.Info().Msg("server stopped")
}

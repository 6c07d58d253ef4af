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

	"skirace/pkg/adapters"
	"skirace/pkg/api"
	"skirace/pkg/config"
	"skirace/pkg/orchestrator"
	"skirace/pkg/store"
	"skirace/pkg/timingpoint"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	db, err := store.OpenBadger(cfg.StorageDir)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open db")
	}

	httpClient := &http.Client{Timeout: cfg.HTTPClientTimeout}
	events := adapters.NewEventsAdapter(cfg.EventsBaseURL, httpClient)
	formats := adapters.NewCompetitionFormatAdapter(cfg.CompetitionFormatBaseURL, httpClient)
	users := adapters.NewUsersAdapter(cfg.UsersBaseURL, httpClient)

	serviceTokens := adapters.NewServiceToken(cfg.UsersBaseURL, cfg.AdminUsername, cfg.AdminPassword, httpClient)
	events.SetTokenSource(serviceTokens)
	formats.SetTokenSource(serviceTokens)

	o := orchestrator.New(db, events, formats)

	tp := timingpoint.New(cfg.TimingPointListenAddr, o)

	srv := &http.Server{
		Addr:    cfg.Host + ":" + cfg.Port,
		Handler: api.NewServer(o, users).Router(),
	}

	go func() {
		log.Err(tp.Serve()).Msg("timingpoint listener stopped")
	}()

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("skirace listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Err(err).Msg("http server stopped")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Err(err).Msg("failed to shut down http server")
	}

	tp.Stop()

	if err := db.Close(); err != nil {
		log.Err(err).Msg("failed to close badger db")
	}

	log.Info().Msg("skirace stopped")
}

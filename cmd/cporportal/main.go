package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/cpor-labs/cpor-portal/internal/config"
	"github.com/cpor-labs/cpor-portal/internal/contracts"
	"github.com/cpor-labs/cpor-portal/internal/dataset"
	"github.com/cpor-labs/cpor-portal/internal/driveprovider"
	"github.com/cpor-labs/cpor-portal/internal/httpapi"
	"github.com/cpor-labs/cpor-portal/internal/loader"
	"github.com/cpor-labs/cpor-portal/internal/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(2)
	}
	log := logging.New(cfg)

	log.Info().Str("env", cfg.Env).Msg("cpor portal starting")

	store := dataset.NewStore()
	provider := driveprovider.New(cfg.DriveFileID)

	var primaryMu sync.Mutex
	var primaryID string

	getDashboard := func() (string, bool) {
		primaryMu.Lock()
		defer primaryMu.Unlock()
		return primaryID, primaryID != ""
	}
	setDashboard := func(id string) {
		primaryMu.Lock()
		primaryID = id
		primaryMu.Unlock()
	}

	if cfg.DriveBootSync && cfg.DriveFileID != "" {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout)
		data, name, err := provider.FetchWorkbook(ctx)
		cancel()
		if err != nil {
			log.Error().Err(err).Msg("boot-time drive sync failed")
			os.Exit(2)
		}
		tbl, sch, err := loader.Load(name, data)
		if err != nil {
			log.Error().Err(err).Msg("boot-time workbook parse failed")
			os.Exit(2)
		}
		if _, _, err := contracts.Normalize(tbl, time.Now()); err != nil {
			log.Error().Err(err).Msg("boot-time contract normalization failed")
			os.Exit(2)
		}
		ds, err := store.Put(name, dataset.KindContracts, tbl, sch)
		if err != nil {
			log.Error().Err(err).Msg("boot-time dataset registration failed")
			os.Exit(2)
		}
		setDashboard(ds.ID)
		log.Info().Str("dataset", ds.ID).Msg("boot-synced contracts workbook from drive")
	}

	srv := &httpapi.Server{
		Store:        store,
		Config:       cfg,
		Logger:       log,
		DriveFileID:  cfg.DriveFileID,
		Provider:     provider,
		DashboardID:  getDashboard,
		SetDashboard: setDashboard,
	}
	router := httpapi.NewRouter(srv)

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: httpapi.HardTimeout + 10*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Info().Str("addr", cfg.Addr).Msg("cpor portal listening")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-done
	log.Info().Msg("shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.GracefulTimeout)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	} else {
		log.Info().Msg("cpor portal stopped gracefully")
	}
}

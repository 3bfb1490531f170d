package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"squadsim/internal/archive"
	"squadsim/internal/config"
	"squadsim/internal/roster"
	"squadsim/internal/server"
	"squadsim/internal/util"
)

func main() {
	var cfgDir, addr, dbPath string
	flag.StringVar(&cfgDir, "config", "assets", "config dir")
	flag.StringVar(&addr, "addr", ":8080", "listen address")
	flag.StringVar(&dbPath, "db", "battles.db", "sqlite archive (empty disables)")
	flag.Parse()

	bundle, err := config.LoadAll(cfgDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "battlesvc:", err)
		os.Exit(1)
	}
	logger, err := util.NewLogger(bundle.Battle.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, "battlesvc:", err)
		os.Exit(1)
	}
	defer logger.Sync()

	cat, err := roster.NewCatalog(bundle)
	if err != nil {
		logger.Fatal("build catalog", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var store archive.Repository
	if dbPath != "" {
		st, err := archive.Open(ctx, dbPath)
		if err != nil {
			logger.Fatal("open archive", zap.String("path", dbPath), zap.Error(err))
		}
		defer st.Close()
		store = st
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           server.New(cat, bundle.Battle, store, logger).Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdown)
	}()

	logger.Info("battlesvc listening", zap.String("addr", addr), zap.Int("squads", len(cat.SquadDefs())))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("serve", zap.Error(err))
	}
}

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

	"github.com/labstack/gommon/log"

	"superstore/internal/api"
	"superstore/internal/config"
	"superstore/internal/dashboard"
	"superstore/internal/engine"
)

var (
	configPath = flag.String("config", "config.toml", "path to config.toml")
	port       = flag.Int("port", 0, "listen port (config.toml wins when it sets server.port)")
)

func main() {
	flag.Parse()

	cfg, info, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if *port > 0 && !info.PortSpecified {
		cfg.Server.Port = *port
	}
	log.SetLevel(api.ParseLevel(cfg.Log.Level))

	// 1. Load the dataset before anything is served; a broken source aborts startup.
	t0 := time.Now()
	table, err := engine.Default(cfg.LoadOptions()).Get(cfg.Data.Path)
	if err != nil {
		log.Fatalf("load %s: %v", cfg.Data.Path, err)
	}
	log.Infof("dataset ready: %d rows from %s in %v", table.Len(), cfg.Data.Path, time.Since(t0))

	// 2. Wire the API
	h := api.NewHandler(table, dashboard.Options{TopStates: cfg.Dashboard.TopStates})
	e := api.NewServer(h, api.ServerOptions{
		RateLimit:   cfg.Server.RateLimit,
		CORSOrigins: cfg.Server.CORS,
		LogLevel:    cfg.Log.Level,
	})

	// 3. Serve until interrupted
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			e.Logger.Fatal(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		e.Logger.Error(err)
	}
}

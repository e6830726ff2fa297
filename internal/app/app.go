package app

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	server "corsairs/server"
	"corsairs/server/internal/config"
	servernet "corsairs/server/internal/net"
	"corsairs/server/internal/sim"
	"corsairs/server/internal/storage"
	storagememory "corsairs/server/internal/storage/memory"
	storagesqlite "corsairs/server/internal/storage/sqlite"
	"corsairs/server/internal/world"
	"corsairs/server/logging"
	loggingSinks "corsairs/server/logging/sinks"
)

// Config carries the process-level knobs main cannot derive.
type Config struct {
	ConfigPath string
	Logger     *log.Logger
}

// Run assembles storage, world, engine, hub, and the HTTP surface, then
// serves until the context is cancelled.
func Run(ctx context.Context, cfg Config) error {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}

	fileCfg, err := config.Load(cfg.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	router, closeSinks, err := buildRouter(fileCfg)
	if err != nil {
		return fmt.Errorf("construct logging router: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if cerr := router.Close(shutdownCtx); cerr != nil {
			logger.Printf("failed to close logging router: %v", cerr)
		}
		closeSinks()
	}()

	store, err := openStore(fileCfg)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer store.Close()

	w := world.New(fileCfg.World, fileCfg.ShipClasses, fileCfg.Goods, fileCfg.Ports, nil)
	if err := restoreMarket(ctx, w, store); err != nil {
		logger.Printf("market restore skipped: %v", err)
	}

	metrics := logging.NewMetrics()
	engine := sim.New(w, store, sim.Deps{
		Logger:  logger,
		Metrics: metrics,
		Clock:   logging.SystemClock{},
		Events:  router,
	}, sim.Config{RecordTTL: fileCfg.RecordTTL()})

	hub := server.NewHub(engine, server.HubConfig{
		TickInterval:    fileCfg.TickInterval,
		PublishInterval: fileCfg.PublishInterval,
		Logger:          logger,
		Metrics:         metrics,
		Clock:           logging.SystemClock{},
		Events:          router,
	})

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go hub.Run(runCtx)

	handler := servernet.NewHTTPHandler(hub, servernet.HTTPHandlerConfig{
		ClientDir: fileCfg.ClientDir,
		Logger:    logger,
		Events:    router,
	})

	srv := &http.Server{Addr: fileCfg.ListenAddr, Handler: handler}

	errCh := make(chan error, 1)
	go func() {
		logger.Printf("server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancelShutdown()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	}
}

// buildRouter assembles the event router with the configured sinks. The
// returned closer releases the JSON sink's file handle after the router
// drains.
func buildRouter(cfg config.Config) (*logging.Router, func(), error) {
	logCfg := cfg.LoggingConfig()

	var sinks []logging.NamedSink
	var jsonFile *os.File
	if logCfg.HasSink("console") {
		sinks = append(sinks, logging.NamedSink{
			Name: "console",
			Sink: loggingSinks.NewConsole(os.Stdout, logCfg.Console),
		})
	}
	if logCfg.HasSink("json") {
		out := os.Stdout
		if logCfg.JSON.FilePath != "" {
			f, err := os.OpenFile(logCfg.JSON.FilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
			if err != nil {
				return nil, nil, fmt.Errorf("open json log: %w", err)
			}
			jsonFile = f
			out = f
		}
		sinks = append(sinks, logging.NamedSink{
			Name: "json",
			Sink: loggingSinks.NewJSON(out, logCfg.JSON.FlushInterval),
		})
	}

	router, err := logging.NewRouter(logging.SystemClock{}, logCfg, sinks)
	if err != nil {
		if jsonFile != nil {
			jsonFile.Close()
		}
		return nil, nil, err
	}
	closer := func() {
		if jsonFile != nil {
			jsonFile.Close()
		}
	}
	return router, closer, nil
}

func openStore(cfg config.Config) (storage.Store, error) {
	switch cfg.Storage.Driver {
	case "sqlite":
		s, err := storagesqlite.Open(cfg.Storage.Path, nil)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return storagememory.New(nil), nil
	}
}

// restoreMarket reloads persisted market rows so prices and stocks survive a
// restart.
func restoreMarket(ctx context.Context, w *world.World, store storage.Store) error {
	for _, port := range w.Ports() {
		rows, err := store.GetPortGoods(ctx, port.ID)
		if err != nil {
			return err
		}
		for _, row := range rows {
			w.RestorePortGood(row)
		}
	}
	return nil
}

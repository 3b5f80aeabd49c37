package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/1broseidon/xtiler/internal/config"
	"github.com/1broseidon/xtiler/internal/controller"
	"github.com/1broseidon/xtiler/internal/daemon"
	"github.com/1broseidon/xtiler/internal/host"
	"github.com/1broseidon/xtiler/internal/ipc"
	"github.com/1broseidon/xtiler/internal/platform"
	"github.com/1broseidon/xtiler/internal/runtimepath"
	"github.com/1broseidon/xtiler/internal/tiling"
	"github.com/1broseidon/xtiler/internal/x11"
)

// reconcileInterval is how often the client list is re-read in case a
// notification was missed.
const reconcileInterval = 10 * time.Second

func runDaemon(args []string) int {
	fs := newFlagSet("daemon", "xtiler daemon [--config PATH]", "Run the tiling daemon in the foreground.")
	configPath := fs.String("config", "", "Config file path (default: ~/.config/xtiler/config.yaml)")
	if code := parseNoArgs(fs, args); code >= 0 {
		return code
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	level := new(slog.LevelVar)
	level.Set(cfg.SlogLevel())
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	logger.Info("configuration loaded", "layout", cfg.Layout, "gap", cfg.GapSize,
		"mouse_adjust_layout", cfg.MouseAdjustLayout)

	conn, err := x11.NewConnection()
	if err != nil {
		log.Fatalf("Failed to connect to display: %v", err)
	}
	defer conn.Close()

	backend := platform.NewLinuxBackend(conn)
	engine := tiling.NewEngine(backend, cfg, logger)
	h := host.New(conn, backend, controller.New(engine, cfg, logger), cfg, logger)

	// The controller is rebuilt rather than mutated so its configuration
	// stays read-only for its lifetime.
	reload := func(ctx context.Context) error {
		newCfg, err := loadConfig(*configPath)
		if err != nil {
			return err
		}
		return h.Do(ctx, func() {
			engine.UpdateConfig(newCfg)
			h.SetConfig(newCfg)
			h.SetHandler(controller.New(engine, newCfg, logger))
			level.Set(newCfg.SlogLevel())
			engine.Arrange()
		})
	}

	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		log.Fatalf("Failed to resolve IPC socket path: %v", err)
	}
	server := ipc.NewServer(socketPath, h, engine, reload, logger)
	if err := server.Start(); err != nil {
		log.Fatalf("Failed to start IPC server: %v", err)
	}
	defer server.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reconciler := daemon.NewReconciler(daemon.ReconcilerConfig{
		Interval: reconcileInterval,
		Logger:   logger,
	}, h, h.Resync)
	go reconciler.Run(ctx)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	go func() {
		for sig := range sigCh {
			if sig == syscall.SIGHUP {
				logger.Info("received SIGHUP, reloading config")
				if err := reload(ctx); err != nil {
					logger.Error("config reload failed", "error", err)
				}
				continue
			}
			logger.Info("shutting down", "signal", sig)
			cancel()
			return
		}
	}()

	logger.Info("xtiler daemon started")
	if err := h.Run(ctx); err != nil {
		logger.Error("event loop failed", "error", err)
		return 1
	}
	return 0
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Load()
	}
	res, err := config.LoadFromPath(path)
	if err != nil {
		return nil, err
	}
	return res.Config, nil
}

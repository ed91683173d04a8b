package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/labstack/echo/v4"
	"github.com/layout-editor/backend/internal/api"
	"github.com/layout-editor/backend/internal/config"
	"github.com/layout-editor/backend/internal/logging"
	"github.com/layout-editor/backend/internal/parser"
	"github.com/layout-editor/backend/internal/storage"
	"github.com/layout-editor/backend/internal/web"
	"github.com/layout-editor/backend/internal/workspace"
)

// Version info (set during build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// Get the executable's directory for config resolution
	exePath, err := os.Executable()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to get executable path: %v\n", err)
		os.Exit(1)
	}
	configPath := filepath.Join(filepath.Dir(exePath), "LayoutEditor.config")
	if p := os.Getenv("LAYOUT_EDITOR_CONFIG"); p != "" {
		configPath = p
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(os.Stderr, logging.ParseLevel(cfg.Advanced.LogLevel))
	log.SetDefault(logger)

	if err := run(cfg, configPath, logger); err != nil {
		logger.Fatal("server stopped", "err", err)
	}
}

func run(cfg *config.AppConfig, configPath string, logger *log.Logger) error {
	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}

	presets, err := parser.LoadDevicePresets(cfg.Storage.DevicePresetsFile)
	if err != nil {
		return fmt.Errorf("device presets: %w", err)
	}

	snapshots, err := storage.Open(storage.Options{
		Backend:   cfg.Storage.SnapshotBackend,
		Directory: cfg.Storage.SnapshotsDirectory,
		DuckDB: storage.DuckOptions{
			Threads:     cfg.Advanced.DuckDBThreads,
			MemoryLimit: cfg.Advanced.DuckDBMemoryLimit,
		},
		Logger: logger,
	})
	if err != nil {
		return fmt.Errorf("snapshot storage: %w", err)
	}
	defer snapshots.Close()

	workspaces := workspace.NewManager(workspace.Options{
		MaxWorkspaces: cfg.Workspace.MaxWorkspaces,
		Defaults:      cfg.ContainerDefaults(),
		Presets:       presets,
		Logger:        logger,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start background workspace cleanup
	go workspaces.RunCleanup(ctx, cfg.CleanupInterval(), cfg.WorkspaceTimeout())

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	api.SetupMiddleware(e, api.MiddlewareOptions{
		Logger:         logger,
		RequestLogging: cfg.Advanced.EnableRequestLogging,
		EnableCORS:     cfg.Server.EnableCORS,
		AllowOrigins:   cfg.Server.AllowOrigins,
		BodyLimit:      cfg.Server.BodyLimit,
		Debug:          logging.ParseLevel(cfg.Advanced.LogLevel) == log.DebugLevel,
	})

	handlers := api.NewHandlers(&api.Dependencies{
		Workspaces:     workspaces,
		Presets:        presets,
		Snapshots:      snapshots,
		Logger:         logger,
		MaxMessageSize: int64(cfg.Advanced.WebSocketMaxMessageSize) * 1024,
		Version:        Version,
	})
	api.RegisterRoutes(e, handlers)
	api.RegisterWebSocketRoutes(e, handlers)

	// Register embedded frontend if available
	embeddedMode := web.HasEmbeddedFiles()
	if embeddedMode {
		if err := web.RegisterStaticRoutes(e); err != nil {
			logger.Warn("failed to register static routes", "err", err)
			embeddedMode = false
		}
	}

	// Configure server with settings from XML config
	s := &http.Server{
		Addr:         cfg.GetServerAddr(),
		Handler:      e,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	logger.Info("layout editor starting",
		"version", Version,
		"built", BuildTime,
		"config", configPath,
		"listen", "http://"+cfg.GetServerAddr(),
		"snapshots", cfg.Storage.SnapshotBackend+":"+cfg.Storage.SnapshotsDirectory,
		"devices", len(presets.Devices),
		"embedded", embeddedMode,
	)

	errCh := make(chan error, 1)
	go func() {
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.Shutdown(shutdownCtx)
}

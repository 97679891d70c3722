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

	"apivengers/internal/backup"
	"apivengers/internal/config"
	"apivengers/internal/handler"
	"apivengers/internal/logger"
	authmw "apivengers/internal/middleware"
	"apivengers/internal/storage"
	"apivengers/internal/store"
	"apivengers/internal/version"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	databaseFile    = "apivengers.db"
	connectTimeout  = 10 * time.Second
	shutdownTimeout = 10 * time.Second
)

func newServeCmd() *cobra.Command {
	var addr, storeKind string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the schema designer HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if addr != "" {
				cfg.Port = addr
			}
			if storeKind != "" {
				cfg.Store = storeKind
			}
			return serve(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address or port (overrides PORT)")
	cmd.Flags().StringVar(&storeKind, "store", "", "storage backend: sqlite or mongo (overrides APIVENGERS_STORE)")
	return cmd
}

func openStore(ctx context.Context, cfg config.Config) (store.Store, error) {
	switch cfg.Store {
	case config.StoreSQLite:
		path := filepath.Join(cfg.DataDir, databaseFile)
		zap.L().Info("Using database", zap.String("path", path))
		st, err := store.OpenSQLite(ctx, path)
		if err != nil {
			return nil, err
		}
		return st, nil
	case config.StoreMongo:
		ctx, cancel := context.WithTimeout(ctx, connectTimeout)
		defer cancel()
		zap.L().Info("Using MongoDB", zap.String("db", cfg.MongoDB))
		st, err := store.OpenMongo(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return nil, err
		}
		return st, nil
	default:
		return nil, fmt.Errorf("unknown store %q (want %s or %s)", cfg.Store, config.StoreSQLite, config.StoreMongo)
	}
}

func backupTarget(ctx context.Context, cfg config.Config) (backup.Target, error) {
	switch cfg.BackupTarget {
	case "", "local":
		return nil, nil
	case "webdav":
		t, err := backup.NewWebDAVTarget(cfg.WebDAVURL, cfg.WebDAVUser, cfg.WebDAVPassword)
		if err != nil {
			return nil, err
		}
		return t, nil
	case "s3":
		t, err := backup.NewS3Target(ctx, cfg.S3)
		if err != nil {
			return nil, err
		}
		return t, nil
	default:
		return nil, fmt.Errorf("unknown backup target %q", cfg.BackupTarget)
	}
}

func newServer(cfg config.Config, st store.Store, fs *storage.FileSystem, svc *backup.Service) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Logger.SetOutput(logger.GetLogWriter())

	// Middleware
	e.Use(middleware.RequestID())
	e.Use(authmw.ZapLogger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowCredentials: true,
	}))
	e.Use(middleware.Secure())
	e.Use(middleware.Gzip())

	// Routes
	handler.NewHandler(st,
		handler.WithFileSystem(fs),
		handler.WithBackup(svc),
		handler.WithJWTSecret(cfg.JWTSecret),
		handler.WithProbeHosts(cfg.ProbeHosts),
	).Register(e)
	return e
}

func serve(ctx context.Context, cfg config.Config) error {
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}
	if err := logger.InitLogger(cfg.DataDir); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()

	zap.L().Info("Starting apivengers",
		zap.String("version", version.Version),
		zap.String("data_dir", cfg.DataDir),
		zap.String("store", cfg.Store),
	)

	st, err := openStore(ctx, cfg)
	if err != nil {
		zap.L().Error("Failed to open store", zap.Error(err))
		return err
	}
	defer st.Close(context.Background())

	// Exports and local backups live under the data dir
	fs, err := storage.NewFileSystem(cfg.DataDir)
	if err != nil {
		return err
	}

	target, err := backupTarget(ctx, cfg)
	if err != nil {
		return err
	}
	svc := backup.NewService(st, target, backup.NewLocalTarget(fs))

	// Auto backup
	var sched *backup.Scheduler
	if cfg.BackupSchedule != "" {
		sched, err = backup.NewScheduler(svc, cfg.BackupSchedule)
		if err != nil {
			return err
		}
		sched.Start()
	}

	e := newServer(cfg, st, fs, svc)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start server
	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		zap.L().Info("Server starting", zap.String("addr", cfg.Addr()))
		if err := e.Start(cfg.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		if err != nil {
			zap.L().Error("Server failed", zap.Error(err))
			return err
		}
	case <-ctx.Done():
	}

	zap.L().Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if sched != nil {
		sched.Stop(shutdownCtx)
	}
	return e.Shutdown(shutdownCtx)
}

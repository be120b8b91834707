package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/tupyy/dispatch-agent/internal/config"
	"github.com/tupyy/dispatch-agent/internal/handlers"
	"github.com/tupyy/dispatch-agent/internal/pool"
	"github.com/tupyy/dispatch-agent/internal/queue"
	"github.com/tupyy/dispatch-agent/internal/server"
	"github.com/tupyy/dispatch-agent/internal/services"
	"github.com/tupyy/dispatch-agent/internal/store"
	"github.com/tupyy/dispatch-agent/pkg/dispatch"
	"github.com/tupyy/dispatch-agent/pkg/workerclient"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the dispatch agent HTTP server",
	RunE:  runServe,
}

func loadConfiguration() (*config.Configuration, error) {
	cfg := &config.Configuration{
		Server: config.Server{
			ServerMode:     viper.GetString("server-mode"),
			HTTPPort:       viper.GetInt("http-port"),
			StaticsFolder:  viper.GetString("statics-folder"),
			TLSCertificate: viper.GetString("tls-certificate"),
		},
		Dispatch: config.Dispatch{
			TaskTimeout:         viper.GetDuration("task-timeout"),
			QueueTimeout:        viper.GetDuration("queue-timeout"),
			MaxQueueSize:        viper.GetInt("max-queue-size"),
			EnablePriority:      viper.GetBool("enable-priority"),
			MaxRetries:          viper.GetInt("max-retries"),
			RetryDelay:          viper.GetDuration("retry-delay"),
			HealthCheckInterval: viper.GetDuration("health-check-interval"),
			InstanceTimeout:     viper.GetDuration("instance-timeout"),
		},
		Storage: config.Storage{
			DataFolder: viper.GetString("data-folder"),
		},
		Auth: config.Auth{
			Enabled:     viper.GetBool("auth-enabled"),
			JWTSecret:   viper.GetString("jwt-secret"),
			JWTFilePath: viper.GetString("jwt-file-path"),
		},
		LogFormat: viper.GetString("log-format"),
		LogLevel:  viper.GetString("log-level"),
	}

	if err := config.ApplyDefaults(cfg); err != nil {
		return nil, fmt.Errorf("apply config defaults: %w", err)
	}

	if cfg.Auth.Enabled && cfg.Auth.JWTSecret == "" && cfg.Auth.JWTFilePath != "" {
		secret, err := os.ReadFile(cfg.Auth.JWTFilePath)
		if err != nil {
			return nil, fmt.Errorf("read jwt secret file: %w", err)
		}
		cfg.Auth.JWTSecret = strings.TrimSpace(string(secret))
	}

	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cfg config.Configuration) (*zap.Logger, error) {
	var zcfg zap.Config
	if cfg.LogFormat == "json" {
		zcfg = zap.NewProductionConfig()
	} else {
		zcfg = zap.NewDevelopmentConfig()
	}

	level := zap.NewAtomicLevel()
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}
	zcfg.Level = level

	return zcfg.Build()
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfiguration()
	if err != nil {
		return err
	}

	logger, err := newLogger(*cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	logger.Sugar().Infow("starting dispatchd", "config", cfg.DebugMap())

	if err := os.MkdirAll(cfg.Storage.DataFolder, 0o755); err != nil {
		return fmt.Errorf("create data folder: %w", err)
	}

	db, err := store.NewDB(cfg.Storage.DataFolder + "/dispatch.db")
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	st := store.NewStore(db)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := st.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate store: %w", err)
	}

	q := queue.New()
	p := pool.New(pool.NewHTTPProber())

	client := workerclient.NewClient(&http.Client{Timeout: cfg.Dispatch.TaskTimeout})
	notifier := services.NewStoreNotifier(st)

	d := dispatch.New(q, p, client, notifier, dispatch.Config{
		TaskTimeout:         cfg.Dispatch.TaskTimeout,
		QueueTimeout:        cfg.Dispatch.QueueTimeout,
		MaxRetries:          cfg.Dispatch.MaxRetries,
		RetryDelay:          cfg.Dispatch.RetryDelay,
		HealthCheckInterval: cfg.Dispatch.HealthCheckInterval,
		InstanceTimeout:     cfg.Dispatch.InstanceTimeout,
	})
	d.Start(ctx)
	defer d.Stop()

	configSrv := services.NewConfigService(cfg.Dispatch, d, st)
	jobSrv := services.NewJobService(q, d, st, configSrv.Get)
	workerSrv := services.NewWorkerService(p, st)
	statsSrv := services.NewStatsService(q, p, d)

	monitor := services.NewHealthMonitor(p, configSrv.Get)
	monitor.Start(ctx)
	defer monitor.Stop()

	h := handlers.New(jobSrv, workerSrv, statsSrv, configSrv)
	srv := server.New(cfg.Server, cfg.Auth, h)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-sigCh:
		logger.Sugar().Infow("shutting down", "signal", sig.String())
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	return srv.Stop(shutdownCtx)
}

package cmd

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	httpapi "tacly.com/taskboard/internal/http"
	repository "tacly.com/taskboard/internal/repositories"
	"tacly.com/taskboard/internal/services"
	"tacly.com/taskboard/internal/tokens"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long:  "Starts the task board HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		database, err := openDatabase(cfg, logger)
		if err != nil {
			return err
		}

		store, local, closeStore, err := newStorage(ctx, cfg)
		if err != nil {
			return err
		}
		defer closeStore()

		var uploadDir, uploadPrefix string
		if local != nil {
			uploadDir, uploadPrefix = local.Dir(), local.URLPrefix()
		}

		verifier, err := newVerifier(ctx, cfg, logger)
		if err != nil {
			return err
		}

		limiter, closeLimiter, err := newLimiter(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer closeLimiter()

		taskService := services.NewTaskService(
			logger,
			repository.NewTaskRepository(database),
			repository.NewAttachmentRepository(database),
			store,
		)
		authService := services.NewAuthService(
			logger,
			repository.NewUserRepository(database),
			tokens.NewManager(cfg.JWTSecret, cfg.JWTTTL),
			verifier,
		)

		e := httpapi.NewServer(httpapi.ServerOptions{
			Logger:          logger,
			DB:              database,
			TaskService:     taskService,
			AuthService:     authService,
			Limiter:         limiter,
			MaxUploadBytes:  cfg.MaxUploadBytes,
			AllowedOrigins:  cfg.CORSAllowedOrigins,
			UploadDir:       uploadDir,
			UploadURLPrefix: uploadPrefix,
		})

		serverErr := make(chan error, 1)
		go func() {
			logger.Info().Str("addr", cfg.AppURL()).Msg("HTTP server listening")
			if err := e.Start(cfg.AppURL()); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serverErr <- err
			}
		}()

		select {
		case <-ctx.Done():
		case err := <-serverErr:
			return err
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("HTTP server shutdown failed")
		}
		if sqlDB, err := database.DB(); err == nil {
			_ = sqlDB.Close()
		}

		logger.Info().Msg("HTTP server shut down gracefully")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	gcs "cloud.google.com/go/storage"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"
	"gorm.io/gorm"

	config "tacly.com/taskboard/internal/configs"
	"tacly.com/taskboard/internal/identity"
	"tacly.com/taskboard/internal/ratelimit"
	"tacly.com/taskboard/internal/storage"
)

const gcsObjectPrefix = "attachments"

// loadConfig reads .env when present and then the process environment.
func loadConfig() (config.Config, zerolog.Logger, error) {
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, zerolog.Nop(), err
	}

	logger := config.NewLogger(cfg.Env)
	if envErr != nil {
		logger.Debug().Msg(".env file not found, using environment variables")
	}
	return cfg, logger, nil
}

func openDatabase(cfg config.Config, logger zerolog.Logger) (*gorm.DB, error) {
	db, err := config.NewDatabaseClient(cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}
	if err := config.Migrate(db); err != nil {
		return nil, err
	}

	logger.Info().
		Str("driver", cfg.DatabaseDriver).
		Msg("database ready")
	return db, nil
}

// newStorage returns the attachment backend and, for local storage, the
// same backend as *LocalStorage so its directory can be served.
func newStorage(ctx context.Context, cfg config.Config) (storage.Storage, *storage.LocalStorage, func(), error) {
	if cfg.StorageDriver == config.StorageGCS {
		var opts []option.ClientOption
		if cfg.GCSCredentialsFile != "" {
			opts = append(opts, option.WithCredentialsFile(cfg.GCSCredentialsFile))
		}
		client, err := gcs.NewClient(ctx, opts...)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("create gcs client: %w", err)
		}
		return storage.NewGCSStorage(client, cfg.GCSBucket, gcsObjectPrefix), nil, func() { _ = client.Close() }, nil
	}

	local, err := storage.NewLocalStorage(cfg.UploadDir, cfg.UploadURLPrefix)
	if err != nil {
		return nil, nil, nil, err
	}
	return local, local, func() {}, nil
}

func newVerifier(ctx context.Context, cfg config.Config, logger zerolog.Logger) (identity.Verifier, error) {
	if cfg.IdentityProvider == config.IdentityFirebase {
		return identity.NewFirebaseVerifier(ctx, cfg.FirebaseCredentialsPath)
	}
	if cfg.GoogleClientID == "" {
		logger.Warn().Msg("GOOGLE_CLIENT_ID is empty, google login is disabled")
	}
	return identity.NewGoogleVerifier(cfg.GoogleClientID), nil
}

// newLimiter shares counters through Redis when REDIS_ADDR is set.
func newLimiter(ctx context.Context, cfg config.Config, logger zerolog.Logger) (ratelimit.Limiter, func(), error) {
	if cfg.RedisAddr == "" {
		return ratelimit.NewMemoryLimiter(cfg.RateLimit, time.Minute), func() {}, nil
	}

	client, err := config.NewRedisClient(cfg.RedisAddr)
	if err != nil {
		return nil, nil, err
	}
	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, nil, errors.Join(errors.New("redis ping failed"), err)
	}

	logger.Info().
		Str("addr", cfg.RedisAddr).
		Msg("using redis rate limiter")
	return ratelimit.NewRedisLimiter(client, cfg.RedisKeyPrefix, cfg.RateLimit, time.Minute), client.Close, nil
}

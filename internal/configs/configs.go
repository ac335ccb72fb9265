package config

import (
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	StorageLocal = "local"
	StorageGCS   = "gcs"

	IdentityGoogle   = "google"
	IdentityFirebase = "firebase"
)

type Config struct {
	Env     string `env:"APP_ENV" env-default:"local"`
	AppHost string `env:"APP_HOST" env-default:"127.0.0.1"`
	AppPort string `env:"APP_PORT" env-default:"5001"`

	DatabaseDriver string `env:"DATABASE_DRIVER" env-default:"sqlite"`
	DatabaseDSN    string `env:"DATABASE_DSN" env-default:"tasks.db"`

	JWTSecret string        `env:"JWT_SECRET" env-required:"true"`
	JWTTTL    time.Duration `env:"JWT_TTL" env-default:"1h"`

	IdentityProvider        string `env:"IDENTITY_PROVIDER" env-default:"google"`
	GoogleClientID          string `env:"GOOGLE_CLIENT_ID"`
	FirebaseCredentialsPath string `env:"FIREBASE_CREDENTIALS_PATH"`

	StorageDriver      string `env:"STORAGE_DRIVER" env-default:"local"`
	UploadDir          string `env:"UPLOAD_DIR" env-default:"uploads"`
	UploadURLPrefix    string `env:"UPLOAD_URL_PREFIX" env-default:"/uploads"`
	GCSBucket          string `env:"GCS_BUCKET"`
	GCSCredentialsFile string `env:"GCS_CREDENTIALS_FILE"`
	MaxUploadBytes     int64  `env:"MAX_UPLOAD_BYTES" env-default:"10485760"`

	RateLimit      int    `env:"RATE_LIMIT_PER_MINUTE" env-default:"60"`
	RedisAddr      string `env:"REDIS_ADDR"`
	RedisKeyPrefix string `env:"REDIS_KEY_PREFIX" env-default:"taskboard:ratelimit"`

	CORSAllowedOrigins []string      `env:"CORS_ALLOWED_ORIGINS" env-default:"*" env-separator:","`
	ShutdownTimeout    time.Duration `env:"SHUTDOWN_TIMEOUT" env-default:"20s"`
}

func (c Config) AppURL() string {
	return net.JoinHostPort(c.AppHost, c.AppPort)
}

// Load reads the configuration from the process environment.
func Load() (Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("read env: %w", err)
	}

	if err := validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func validate(cfg Config) error {
	switch cfg.Env {
	case EnvLocal, EnvDev, EnvProd:
	default:
		return fmt.Errorf("APP_ENV must be one of local, dev, prod (got %q)", cfg.Env)
	}
	if cfg.AppPort == "" {
		return errors.New("APP_PORT must not be empty")
	}
	if cfg.DatabaseDriver != DriverSQLite && cfg.DatabaseDriver != DriverPostgres {
		return fmt.Errorf("DATABASE_DRIVER must be sqlite or postgres (got %q)", cfg.DatabaseDriver)
	}
	if cfg.DatabaseDSN == "" {
		return errors.New("DATABASE_DSN must not be empty")
	}
	if cfg.JWTSecret == "" {
		return errors.New("JWT_SECRET must not be empty")
	}
	if cfg.JWTTTL <= 0 {
		return errors.New("JWT_TTL must be greater than 0")
	}
	switch cfg.IdentityProvider {
	case IdentityGoogle:
		// An empty client id disables Google login rather than failing startup.
	case IdentityFirebase:
		if cfg.FirebaseCredentialsPath == "" {
			return errors.New("FIREBASE_CREDENTIALS_PATH is required when IDENTITY_PROVIDER=firebase")
		}
	default:
		return fmt.Errorf("IDENTITY_PROVIDER must be google or firebase (got %q)", cfg.IdentityProvider)
	}
	switch cfg.StorageDriver {
	case StorageLocal:
		if cfg.UploadDir == "" {
			return errors.New("UPLOAD_DIR must not be empty")
		}
	case StorageGCS:
		if cfg.GCSBucket == "" {
			return errors.New("GCS_BUCKET is required when STORAGE_DRIVER=gcs")
		}
	default:
		return fmt.Errorf("STORAGE_DRIVER must be local or gcs (got %q)", cfg.StorageDriver)
	}
	if cfg.MaxUploadBytes <= 0 {
		return errors.New("MAX_UPLOAD_BYTES must be greater than 0")
	}
	if cfg.RateLimit <= 0 {
		return errors.New("RATE_LIMIT_PER_MINUTE must be greater than 0")
	}
	return nil
}

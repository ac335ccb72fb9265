package http

import (
	"fmt"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	middleware "tacly.com/taskboard/internal/http/middlewares"
	"tacly.com/taskboard/internal/http/validators"
	"tacly.com/taskboard/internal/ratelimit"
	"tacly.com/taskboard/internal/services"
)

// maxFilesPerRequest sizes the whole-body limit from the per-file limit.
const maxFilesPerRequest = 10

type ServerOptions struct {
	Logger      zerolog.Logger
	DB          *gorm.DB
	TaskService *services.TaskService
	AuthService *services.AuthService
	Limiter     ratelimit.Limiter

	MaxUploadBytes int64
	AllowedOrigins []string

	// UploadDir is served under UploadURLPrefix when set.
	UploadDir       string
	UploadURLPrefix string
}

// NewServer builds the echo instance with the middleware chain and routes.
func NewServer(opts ServerOptions) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = validators.New()
	e.HTTPErrorHandler = ErrorHandler(opts.Logger)

	e.Use(echomw.Recover())
	e.Use(middleware.RequestLogger(opts.Logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: opts.AllowedOrigins,
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	if opts.Limiter != nil {
		e.Use(middleware.RateLimiter(opts.Limiter, opts.Logger))
	}
	e.Use(echomw.BodyLimit(bodyLimit(opts.MaxUploadBytes)))

	if opts.UploadDir != "" && opts.UploadURLPrefix != "" {
		e.Static(opts.UploadURLPrefix, opts.UploadDir)
	}

	Register(
		e,
		NewTaskHandler(opts.Logger, opts.TaskService, opts.MaxUploadBytes),
		NewUserHandler(opts.AuthService),
		NewHealthHandler(opts.DB),
		middleware.Authenticate(opts.AuthService),
	)
	return e
}

func bodyLimit(maxUploadBytes int64) string {
	kib := (maxUploadBytes*maxFilesPerRequest + 1<<20) / 1024
	return fmt.Sprintf("%dK", kib)
}

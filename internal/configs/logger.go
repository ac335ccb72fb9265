package config

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

func NewLogger(env string) zerolog.Logger {
	zerolog.TimestampFieldName = "timestamp"

	w := io.Writer(os.Stdout)
	level := zerolog.InfoLevel
	switch env {
	case EnvDev:
		level = zerolog.DebugLevel
	case EnvProd:
		level = zerolog.InfoLevel
	case EnvLocal:
		level = zerolog.TraceLevel

		consoleWriter := zerolog.NewConsoleWriter()
		consoleWriter.TimeFormat = time.DateTime
		consoleWriter.Out = os.Stdout
		w = consoleWriter
	}

	return zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Str("env", env).
		Logger()
}

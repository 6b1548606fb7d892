package app

import (
	"os"

	"github.com/rs/zerolog"
)

const logTimeFormat = "2006-01-02 15:04:05"

// InitLogger builds the root console logger every component derives its
// context logger from.
func InitLogger(levelStr string) zerolog.Logger {
	level, err := zerolog.ParseLevel(levelStr)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	output := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		NoColor:    false,
		TimeFormat: logTimeFormat,
	}

	logger := zerolog.New(output).With().
		Timestamp().
		Str("service", "challenge-api").
		Logger()

	return logger
}

package main

import (
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"github.com/spf13/viper"
)

// setupLogging installs the process-wide slog default. Interactive
// runs get colorized tint output with source locations; production
// (env=prod) gets JSON lines with RFC 3339 timestamps under "ts" so
// the serve command's request logs are machine-readable. The stdlib
// log package is redirected into the same handler.
func setupLogging() {
	isProd := isProdEnv(viper.GetString("env"))

	levelStr := viper.GetString("log.level")
	if levelStr == "" {
		// Verbose by default while developing, quiet in production.
		if isProd {
			levelStr = "info"
		} else {
			levelStr = "debug"
		}
	}
	level := logLevel(levelStr)

	var h slog.Handler
	if isProd {
		h = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
			ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
				if a.Key == slog.TimeKey {
					return slog.String("ts", a.Value.Time().UTC().Format(time.RFC3339Nano))
				}
				return a
			},
		})
	} else {
		h = tint.NewHandler(os.Stdout, &tint.Options{
			Level:      level,
			AddSource:  true,
			TimeFormat: "15:04:05.000",
		})
	}

	slog.SetDefault(slog.New(h))

	log.SetFlags(0)
	log.SetOutput(slog.NewLogLogger(slog.Default().Handler(), slog.LevelInfo).Writer())
}

func isProdEnv(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "prod", "production":
		return true
	}
	return false
}

// logLevel maps a config string to a slog level, defaulting to info
// for anything unrecognized.
func logLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

package main

import (
	"io"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/todomanager/todomanager/internal/config"
)

// initLogger builds the process logger from LOG_LEVEL and LOG_FORMAT and
// installs it as the slog default.
func initLogger(cfg *config.Config) *slog.Logger {
	logger := newLogger(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)
	return logger
}

func newLogger(w io.Writer, level, format string) *slog.Logger {
	lvl := parseLogLevel(level)
	opts := &slog.HandlerOptions{Level: lvl, AddSource: lvl <= slog.LevelDebug}
	if format == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// parseLogLevel accepts slog level names in any case. Unknown values fall
// back to info.
func parseLogLevel(s string) slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

var passwordPattern = regexp.MustCompile(`(?i)password=\S+`)

// redactURL strips the password from a connection URL, keeping the user.
func redactURL(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}
	if u.User != nil {
		name := u.User.Username()
		if name == "" {
			name = "redacted"
		}
		u.User = url.User(name)
	}
	return u.String()
}

// sanitizeError renders err with every occurrence of the given connection
// strings redacted, plus any password=... fragments.
func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}
	pairs := make([]string, 0, 2*len(secrets))
	for _, s := range secrets {
		if s == "" {
			continue
		}
		pairs = append(pairs, s, redactURL(s))
	}
	msg := strings.NewReplacer(pairs...).Replace(err.Error())
	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}

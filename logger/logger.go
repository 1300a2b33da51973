package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Scalingo/github-profile-mcp/config"
	"github.com/sirupsen/logrus"
)

// Setup will configure logrus logger.
// Output goes to stderr, or to Logs.File when set: stdout carries the MCP stdio protocol.
// The returned func closes the log file, if any.
func Setup(cfg config.Config) (func() error, error) {
	var output io.Writer = os.Stderr
	closeOutput := func() error { return nil }

	if cfg.Logs.File != "" {
		file, err := os.OpenFile(cfg.Logs.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return closeOutput, fmt.Errorf("unable to open log file %s: %w", cfg.Logs.File, err)
		}
		output = file
		closeOutput = file.Close
	}

	logrus.SetOutput(output)
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	if cfg.Logs.OutputLogsAsJSON {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}

	logrus.SetLevel(StringToLogrusLogType(cfg.Logs.Level))

	hooks := make(logrus.LevelHooks)
	hooks.Add(profileHook{username: cfg.Github.Username})
	logrus.StandardLogger().ReplaceHooks(hooks)

	return closeOutput, nil
}

// profileHook tags every entry with the profile served, several servers may share a log file
type profileHook struct {
	username string
}

func (h profileHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h profileHook) Fire(entry *logrus.Entry) error {
	if _, found := entry.Data["profile"]; !found && h.username != "" {
		entry.Data["profile"] = h.username
	}
	return nil
}

// StringToLogrusLogType will convert string to the right logrus level
func StringToLogrusLogType(logLevel string) logrus.Level {
	logLevelLowerCase := strings.ToLower(logLevel)
	switch logLevelLowerCase {
	case "error":
		return logrus.ErrorLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "info":
		return logrus.InfoLevel
	case "debug":
		return logrus.DebugLevel
	case "trace":
		return logrus.TraceLevel
	default:
		return logrus.ErrorLevel
	}
}

package observability

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LoggerOptions tags every entry of a process's logger.
type LoggerOptions struct {
	// Service is the process name: "meteo-gateway" for the server, "meteo" for the terminal client.
	Service string
	Version string
	// Console selects the human-readable encoder. LOG_FORMAT=json|console overrides it.
	Console bool
}

// NewLogger builds the process logger. Level comes from LOG_LEVEL. JSON output
// uses an ISO8601 "timestamp" key so gateway logs line up with the request metrics.
func NewLogger(opts LoggerOptions) (*zap.Logger, error) {
	return newLoggerConfig(opts, os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT")).Build()
}

func newLoggerConfig(opts LoggerOptions, level, format string) zap.Config {
	console := opts.Console
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json":
		console = false
	case "console":
		console = true
	}

	var config zap.Config
	if console {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		config.DisableStacktrace = true
	} else {
		config = zap.NewProductionConfig()
		config.EncoderConfig.TimeKey = "timestamp"
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	config.Level = parseLogLevel(level)

	fields := map[string]interface{}{}
	if opts.Service != "" {
		fields["service"] = opts.Service
	}
	if opts.Version != "" {
		fields["version"] = opts.Version
	}
	if len(fields) > 0 {
		config.InitialFields = fields
	}
	return config
}

func parseLogLevel(s string) zap.AtomicLevel {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return zap.NewAtomicLevelAt(zap.DebugLevel)
	case "WARN", "WARNING":
		return zap.NewAtomicLevelAt(zap.WarnLevel)
	case "ERROR":
		return zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		return zap.NewAtomicLevelAt(zap.InfoLevel)
	}
}

package config

import (
	"os"

	"github.com/pkg/errors"
	zaplogfmt "github.com/sykesm/zap-logfmt"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log formats.
const (
	FormatJSON    = "json"
	FormatConsole = "console"
	FormatLogfmt  = "logfmt"
)

// NewLogger builds a logger writing to stderr.
func NewLogger(c LogConfig) (*zap.Logger, error) {
	return newLogger(c, zapcore.Lock(os.Stderr))
}

func newLogger(c LogConfig, out zapcore.WriteSyncer) (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(c.Level)
	if err != nil {
		return nil, errors.Wrap(err, "log level")
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	var enc zapcore.Encoder
	switch c.Format {
	case FormatJSON, "":
		enc = zapcore.NewJSONEncoder(encCfg)
	case FormatConsole:
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
	case FormatLogfmt:
		enc = zaplogfmt.NewEncoder(encCfg)
	default:
		return nil, errors.Errorf("unknown log format %q", c.Format)
	}
	return zap.New(zapcore.NewCore(enc, out, level), zap.AddCaller()), nil
}

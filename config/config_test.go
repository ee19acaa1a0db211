package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/fardream/confirm-solana-transaction/poller"
	"github.com/fardream/confirm-solana-transaction/types"
)

func TestLoadDefaults(t *testing.T) {
	v, err := NewViper("")
	require.NoError(t, err)
	cfg, err := Load(v)
	require.NoError(t, err)

	require.Equal(t, TransportSolana, cfg.Transport)
	require.Equal(t, types.CommitmentFinalized, cfg.CommitmentLevel())
	require.Equal(t, 60*time.Second, cfg.Timeout)
	require.Zero(t, cfg.ConfirmTimeout)
	require.Zero(t, cfg.ConfirmOptions(poller.Config{}).Timeout, "confirm is unbounded by default")
	require.Equal(t, 400*time.Millisecond, cfg.Backoff.Initial)
	require.Equal(t, 5*time.Second, cfg.Backoff.Max)
	require.Equal(t, "127.0.0.1:7545", cfg.Listen)
	require.Equal(t, FormatJSON, cfg.Log.Format)
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "confirmtx.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
endpoint: 127.0.0.1:7545
transport: grpc
commitment: singleGossip
timeout: 90s
max_retries: 4
backoff:
  initial: 100ms
  max: 2s
log:
  format: logfmt
`), 0o600))
	t.Setenv("CONFIRMTX_LOG_LEVEL", "debug")
	t.Setenv("CONFIRMTX_SKIP_PREFLIGHT", "true")
	t.Setenv("CONFIRMTX_CONFIRM_TIMEOUT", "2m")

	v, err := NewViper(path)
	require.NoError(t, err)
	cfg, err := Load(v)
	require.NoError(t, err)

	require.Equal(t, TransportGRPC, cfg.Transport)
	require.Equal(t, types.CommitmentConfirmed, cfg.CommitmentLevel())
	require.Equal(t, 90*time.Second, cfg.Timeout)
	require.Equal(t, 2*time.Minute, cfg.ConfirmTimeout)
	require.EqualValues(t, 4, cfg.MaxRetries)
	require.Equal(t, 100*time.Millisecond, cfg.Backoff.Initial)
	require.Equal(t, 2*time.Second, cfg.Backoff.Max)
	require.Equal(t, "debug", cfg.Log.Level)
	require.Equal(t, FormatLogfmt, cfg.Log.Format)
	require.True(t, cfg.SkipPreflight)
}

func TestNewViperMissingFile(t *testing.T) {
	_, err := NewViper(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestValidateRejects(t *testing.T) {
	for name, mutate := range map[string]func(*Config){
		"transport":  func(c *Config) { c.Transport = "websocket" },
		"commitment": func(c *Config) { c.Commitment = "eventually" },
		"backoff":    func(c *Config) { c.Backoff = BackoffConfig{Initial: time.Second, Max: time.Millisecond} },
		"log_level":  func(c *Config) { c.Log.Level = "loud" },
		"log_format": func(c *Config) { c.Log.Format = "xml" },
		"endpoint":   func(c *Config) { c.Endpoint = "" },
	} {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			mutate(&cfg)
			require.Error(t, cfg.Validate())
		})
	}

	cfg := Default()
	cfg.Endpoint = ""
	cfg.Simulate = true
	require.NoError(t, cfg.Validate(), "simulation needs no endpoint")
}

func TestValidateFillsZeroValues(t *testing.T) {
	cfg := Config{Endpoint: "http://localhost:8899"}
	require.NoError(t, cfg.Validate())
	require.Equal(t, TransportSolana, cfg.Transport)
	require.Equal(t, types.CommitmentFinalized, cfg.CommitmentLevel())
	require.Equal(t, poller.DefaultInitialBackoff, cfg.Backoff.Initial)
	require.Equal(t, poller.DefaultMaxBackoff, cfg.Backoff.Max)
	require.Zero(t, cfg.Timeout, "zero timeout is meaningful and kept")
}

func TestOptions(t *testing.T) {
	cfg := Default()
	cfg.Commitment = "processed"
	cfg.MaxRetries = 2
	cfg.SkipPreflight = true
	require.NoError(t, cfg.Validate())

	pc := cfg.PollerConfig(nil, nil)
	require.Equal(t, cfg.Backoff.Initial, pc.InitialBackoff)

	send := cfg.SendOptions(pc)
	require.Equal(t, types.CommitmentProcessed, send.Commitment)
	require.True(t, send.SkipPreflight)
	require.NotNil(t, send.MaxRetries)
	require.EqualValues(t, 2, *send.MaxRetries)

	cfg.MaxRetries = 0
	require.Nil(t, cfg.SendOptions(pc).MaxRetries)

	confirm := cfg.ConfirmOptions(pc)
	require.Equal(t, types.CommitmentProcessed, confirm.Commitment)
	require.Zero(t, confirm.Timeout)
	require.Equal(t, cfg.Timeout, send.Timeout)

	cfg.ConfirmTimeout = 30 * time.Second
	require.Equal(t, 30*time.Second, cfg.ConfirmOptions(pc).Timeout)
}

func TestLoggerFormats(t *testing.T) {
	for format, want := range map[string]string{
		FormatJSON:    `"msg":"hello"`,
		FormatConsole: "hello",
		FormatLogfmt:  "msg=hello",
	} {
		t.Run(format, func(t *testing.T) {
			var buf bytes.Buffer
			log, err := newLogger(LogConfig{Level: "info", Format: format}, zapcore.AddSync(&buf))
			require.NoError(t, err)
			log.Info("hello")
			log.Debug("hidden")
			require.Contains(t, buf.String(), want)
			require.NotContains(t, buf.String(), "hidden")
		})
	}

	_, err := NewLogger(LogConfig{Level: "info", Format: "xml"})
	require.Error(t, err)
	_, err = NewLogger(LogConfig{Level: "nope"})
	require.Error(t, err)
}

// Package config loads the confirmtx settings from file, environment
// and command-line flags through viper.
package config

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/fardream/confirm-solana-transaction/client"
	"github.com/fardream/confirm-solana-transaction/poller"
	"github.com/fardream/confirm-solana-transaction/types"
)

// EnvPrefix prefixes every environment override, e.g. CONFIRMTX_LOG_LEVEL.
const EnvPrefix = "CONFIRMTX"

// Transports.
const (
	TransportSolana = "solana"
	TransportGRPC   = "grpc"
)

var errInvalid = errors.New("invalid config")

// Config is the full confirmtx configuration.
type Config struct {
	// Endpoint is a Solana JSON-RPC URL or a relay address, per Transport.
	Endpoint  string `mapstructure:"endpoint"`
	Transport string `mapstructure:"transport"`
	// Commitment accepts the same aliases as types.ParseCommitment.
	Commitment string `mapstructure:"commitment"`
	// Timeout bounds send. ConfirmTimeout bounds confirm and defaults to
	// zero, which polls until expiry or interrupt.
	Timeout        time.Duration `mapstructure:"timeout"`
	ConfirmTimeout time.Duration `mapstructure:"confirm_timeout"`
	SkipPreflight  bool          `mapstructure:"skip_preflight"`
	// MaxRetries caps node-side rebroadcasts. Zero leaves the node default.
	MaxRetries uint64        `mapstructure:"max_retries"`
	Backoff    BackoffConfig `mapstructure:"backoff"`

	Listen        string `mapstructure:"listen"`
	MetricsListen string `mapstructure:"metrics_listen"`
	// Simulate backs the relay with the in-process ledger instead of Endpoint.
	Simulate  bool          `mapstructure:"simulate"`
	BlockTime time.Duration `mapstructure:"block_time"`

	Log LogConfig `mapstructure:"log"`

	commitment types.Commitment
}

type BackoffConfig struct {
	Initial time.Duration `mapstructure:"initial"`
	Max     time.Duration `mapstructure:"max"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Endpoint:      "https://api.mainnet-beta.solana.com",
		Transport:     TransportSolana,
		Commitment:    types.CommitmentFinalized.String(),
		Timeout:       client.DefaultSendTimeout,
		Backoff:       BackoffConfig{Initial: poller.DefaultInitialBackoff, Max: poller.DefaultMaxBackoff},
		Listen:        "127.0.0.1:7545",
		MetricsListen: "127.0.0.1:9464",
		BlockTime:     400 * time.Millisecond,
		Log:           LogConfig{Level: "info", Format: FormatJSON},
		commitment:    types.CommitmentFinalized,
	}
}

// NewViper returns a viper instance reading path, if not empty, and
// CONFIRMTX_* environment variables.
func NewViper(path string) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)
	if path == "" {
		return v, nil
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "read config %s", path)
	}
	return v, nil
}

// SetDefaults registers every key with its default. Registered keys are
// what lets AutomaticEnv resolve nested settings during Unmarshal.
func SetDefaults(v *viper.Viper) {
	def := Default()
	v.SetDefault("endpoint", def.Endpoint)
	v.SetDefault("transport", def.Transport)
	v.SetDefault("commitment", def.Commitment)
	v.SetDefault("timeout", def.Timeout)
	v.SetDefault("confirm_timeout", def.ConfirmTimeout)
	v.SetDefault("skip_preflight", def.SkipPreflight)
	v.SetDefault("max_retries", def.MaxRetries)
	v.SetDefault("backoff.initial", def.Backoff.Initial)
	v.SetDefault("backoff.max", def.Backoff.Max)
	v.SetDefault("listen", def.Listen)
	v.SetDefault("metrics_listen", def.MetricsListen)
	v.SetDefault("simulate", def.Simulate)
	v.SetDefault("block_time", def.BlockTime)
	v.SetDefault("log.level", def.Log.Level)
	v.SetDefault("log.format", def.Log.Format)
}

// Load decodes v and validates the result.
func Load(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errors.Wrap(err, "decode config")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate fills zero values with defaults and rejects settings no
// component can honor.
func (c *Config) Validate() error {
	def := Default()
	if c.Transport == "" {
		c.Transport = def.Transport
	}
	if c.Commitment == "" {
		c.Commitment = def.Commitment
	}
	if c.Backoff.Initial <= 0 {
		c.Backoff.Initial = def.Backoff.Initial
	}
	if c.Backoff.Max <= 0 {
		c.Backoff.Max = def.Backoff.Max
	}
	if c.BlockTime <= 0 {
		c.BlockTime = def.BlockTime
	}
	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = def.Log.Format
	}

	switch c.Transport {
	case TransportSolana, TransportGRPC:
	default:
		return errors.Wrapf(errInvalid, "unknown transport %q", c.Transport)
	}
	if c.Endpoint == "" && !c.Simulate {
		return errors.Wrap(errInvalid, "endpoint is required")
	}
	commitment, err := types.ParseCommitment(c.Commitment)
	if err != nil {
		return errors.Wrap(err, "commitment")
	}
	c.commitment = commitment
	if c.Backoff.Max < c.Backoff.Initial {
		return errors.Wrapf(errInvalid, "backoff.max %s below backoff.initial %s", c.Backoff.Max, c.Backoff.Initial)
	}
	if _, err := zap.ParseAtomicLevel(c.Log.Level); err != nil {
		return errors.Wrapf(errInvalid, "log.level: %v", err)
	}
	switch c.Log.Format {
	case FormatJSON, FormatConsole, FormatLogfmt:
	default:
		return errors.Wrapf(errInvalid, "unknown log.format %q", c.Log.Format)
	}
	return nil
}

// CommitmentLevel returns the validated commitment.
func (c Config) CommitmentLevel() types.Commitment {
	if c.commitment == types.CommitmentUnspecified {
		if parsed, err := types.ParseCommitment(c.Commitment); err == nil {
			return parsed
		}
		return types.CommitmentFinalized
	}
	return c.commitment
}

// PollerConfig returns the loop settings for log and rec.
func (c Config) PollerConfig(log *zap.Logger, rec poller.Recorder) poller.Config {
	return poller.Config{
		InitialBackoff: c.Backoff.Initial,
		MaxBackoff:     c.Backoff.Max,
		Logger:         log,
		Recorder:       rec,
	}
}

// SendOptions returns options for client.SendAndConfirmTransaction.
func (c Config) SendOptions(pc poller.Config) client.SendOptions {
	opts := client.SendOptions{
		Commitment:    c.CommitmentLevel(),
		SkipPreflight: c.SkipPreflight,
		Timeout:       c.Timeout,
		Poller:        pc,
	}
	if c.MaxRetries > 0 {
		n := c.MaxRetries
		opts.MaxRetries = &n
	}
	return opts
}

// ConfirmOptions returns options for client.ConfirmTransaction.
func (c Config) ConfirmOptions(pc poller.Config) client.ConfirmOptions {
	return client.ConfirmOptions{
		Commitment: c.CommitmentLevel(),
		Timeout:    c.ConfirmTimeout,
		Poller:     pc,
	}
}

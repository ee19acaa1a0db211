// Package local provides an in-process, simulated ledger connection.
//
// The ledger produces blocks only when told to (Advance) or on a timer
// (Run), hands out blockhashes with a finite validity window, and lands
// submitted transactions a fixed number of blocks after submission
// unless their blockhash expired first. Heights lag the tip by
// commitment level. It backs tests and the relay's simulation mode.
package local

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"sync"
	"time"

	"github.com/blockberries/cramberry/pkg/cramberry"
	"github.com/cenkalti/backoff/v5"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	confirm "github.com/fardream/confirm-solana-transaction"
	"github.com/fardream/confirm-solana-transaction/types"
)

// Compile-time interface check.
var _ confirm.Connection = (*Ledger)(nil)

// Config shapes the simulated chain.
type Config struct {
	// StartHeight is the tip when the ledger is created.
	StartHeight types.Height
	// BlockhashWindow is how many blocks a blockhash stays valid.
	BlockhashWindow uint64
	// FinalityDepth is how far the finalized height lags the tip.
	FinalityDepth uint64
	// LandAfter is how many blocks after submission a transaction lands.
	LandAfter uint64

	Logger *zap.Logger
}

// DefaultConfig mirrors mainnet proportions.
func DefaultConfig() Config {
	return Config{
		StartHeight:     1,
		BlockhashWindow: 150,
		FinalityDepth:   32,
		LandAfter:       1,
	}
}

// ApplyDefaults normalizes zero values using defaults.
func ApplyDefaults(cfg *Config) {
	def := DefaultConfig()
	if cfg.StartHeight == 0 {
		cfg.StartHeight = def.StartHeight
	}
	if cfg.BlockhashWindow == 0 {
		cfg.BlockhashWindow = def.BlockhashWindow
	}
	if cfg.FinalityDepth == 0 {
		cfg.FinalityDepth = def.FinalityDepth
	}
	if cfg.LandAfter == 0 {
		cfg.LandAfter = def.LandAfter
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
}

// Fate scripts what happens to the next submitted transaction.
type Fate struct {
	// Drop keeps the transaction from ever landing.
	Drop bool
	// Err makes the transaction land and fail on chain with this cause.
	Err string
}

type entry struct {
	submittedAt types.Height
	expiry      types.Height
	fate        Fate
	landedAt    types.Height
}

// Ledger is a simulated chain. Safe for concurrent use.
type Ledger struct {
	cfg Config
	log *zap.Logger

	mu          sync.RWMutex
	tip         types.Height
	blockhashes map[types.Blockhash]types.Height
	txs         map[types.Signature]*entry
	fates       []Fate
}

// NewLedger creates a ledger at cfg.StartHeight.
func NewLedger(cfg Config) *Ledger {
	ApplyDefaults(&cfg)
	return &Ledger{
		cfg:         cfg,
		log:         cfg.Logger.Named("ledger"),
		tip:         cfg.StartHeight,
		blockhashes: make(map[types.Blockhash]types.Height),
		txs:         make(map[types.Signature]*entry),
	}
}

// QueueFate scripts the fate of the next len(fates) submissions.
func (l *Ledger) QueueFate(fates ...Fate) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.fates = append(l.fates, fates...)
}

// Tip returns the processed height.
func (l *Ledger) Tip() types.Height {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.tip
}

// Advance produces n blocks and lands every transaction that is due.
func (l *Ledger) Advance(n uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.tip += types.Height(n)
	for sig, e := range l.txs {
		if e.landedAt != 0 || e.fate.Drop {
			continue
		}
		due := e.submittedAt + types.Height(l.cfg.LandAfter)
		if due > l.tip {
			continue
		}
		if due > e.expiry {
			e.fate.Drop = true
			l.log.Debug("transaction expired before landing", zap.String("signature", string(sig)))
			continue
		}
		e.landedAt = due
		l.log.Debug("transaction landed", zap.String("signature", string(sig)), zap.Uint64("height", uint64(due)))
	}
}

// Run advances the ledger by one block every interval until ctx ends.
func (l *Ledger) Run(ctx context.Context, interval time.Duration) error {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			l.Advance(1)
		}
	}
}

func (l *Ledger) GetSignatureStatus(_ context.Context, sig types.Signature) (*types.SignatureStatus, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	e, ok := l.txs[sig]
	if !ok || e.landedAt == 0 {
		return nil, nil
	}
	status := &types.SignatureStatus{Slot: uint64(e.landedAt), Err: e.fate.Err}
	depth := uint64(l.tip - e.landedAt)
	switch {
	case depth >= l.cfg.FinalityDepth:
		status.ConfirmationStatus = types.CommitmentFinalized
	case depth >= 1:
		status.ConfirmationStatus = types.CommitmentConfirmed
		status.Confirmations = &depth
	default:
		status.ConfirmationStatus = types.CommitmentProcessed
		status.Confirmations = &depth
	}
	return status, nil
}

func (l *Ledger) GetBlockHeight(_ context.Context, commitment types.Commitment) (types.Height, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.heightAt(commitment)
}

func (l *Ledger) GetLatestBlockhash(_ context.Context, commitment types.Commitment) (types.BlockhashWithExpiry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	base, err := l.heightAt(commitment)
	if err != nil {
		return types.BlockhashWithExpiry{}, err
	}
	hash := blockhashAt(base)
	expiry := base + types.Height(l.cfg.BlockhashWindow)
	l.blockhashes[hash] = expiry
	return types.BlockhashWithExpiry{Blockhash: hash, ExpiryHeight: expiry}, nil
}

func (l *Ledger) SubmitRawTransaction(_ context.Context, raw []byte, opts types.SubmitOptions) (types.Signature, error) {
	tx := new(Tx)
	if err := cramberry.Unmarshal(raw, tx); err != nil {
		return "", backoff.Permanent(errors.Wrap(err, "decode transaction"))
	}
	if err := tx.verify(); err != nil {
		return "", backoff.Permanent(err)
	}
	sig := types.Signature(hex.EncodeToString(tx.Signatures[0]))

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.txs[sig]; ok {
		return sig, nil
	}
	expiry, ok := l.blockhashes[tx.Blockhash]
	if !ok && !tx.UsesDurableNonce() {
		return "", errors.Errorf("blockhash %s not found", tx.Blockhash)
	}
	if ok && l.tip > expiry {
		return "", errors.Errorf("blockhash %s expired at height %d", tx.Blockhash, expiry)
	}
	if !ok {
		// Durable nonces never expire.
		expiry = ^types.Height(0)
	}

	var fate Fate
	if len(l.fates) > 0 {
		fate, l.fates = l.fates[0], l.fates[1:]
	}
	if !opts.SkipPreflight && fate.Err != "" {
		return "", errors.Errorf("preflight simulation failed: %s", fate.Err)
	}

	l.txs[sig] = &entry{submittedAt: l.tip, expiry: expiry, fate: fate}
	l.log.Debug("transaction submitted",
		zap.String("signature", string(sig)),
		zap.Uint64("height", uint64(l.tip)),
		zap.Uint64("expiry_height", uint64(expiry)),
	)
	return sig, nil
}

func (l *Ledger) heightAt(commitment types.Commitment) (types.Height, error) {
	var lag uint64
	switch commitment {
	case types.CommitmentProcessed:
	case types.CommitmentConfirmed:
		lag = 1
	case types.CommitmentFinalized:
		lag = l.cfg.FinalityDepth
	default:
		return 0, backoff.Permanent(errors.Wrapf(types.ErrUnsupportedCommitment, "commitment %s", commitment))
	}
	if uint64(l.tip) < lag {
		return 0, nil
	}
	return l.tip - types.Height(lag), nil
}

func blockhashAt(h types.Height) types.Blockhash {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(h))
	sum := sha256.Sum256(buf[:])
	return types.Blockhash(hex.EncodeToString(sum[:]))
}

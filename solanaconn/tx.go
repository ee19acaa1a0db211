package solanaconn

import (
	"bytes"
	"encoding/binary"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/pkg/errors"

	confirm "github.com/fardream/confirm-solana-transaction"
	"github.com/fardream/confirm-solana-transaction/types"
)

// Compile-time interface checks.
var (
	_ confirm.Transaction = (*Tx)(nil)
	_ confirm.Signer      = KeySigner{}
)

// Tx adapts a solana-go transaction.
type Tx struct {
	tx *solana.Transaction
}

// WrapTransaction adapts tx. Mutations go through to tx.
func WrapTransaction(tx *solana.Transaction) *Tx {
	return &Tx{tx: tx}
}

// ParseTransaction decodes a base64 wire transaction, the format
// wallets and the CLI exchange.
func ParseTransaction(b64 string) (*Tx, error) {
	tx := new(solana.Transaction)
	if err := tx.UnmarshalBase64(strings.TrimSpace(b64)); err != nil {
		return nil, errors.Wrap(err, "decode transaction")
	}
	return WrapTransaction(tx), nil
}

// Transaction returns the underlying transaction.
func (t *Tx) Transaction() *solana.Transaction {
	return t.tx
}

// UsesDurableNonce reports whether the first instruction advances a
// nonce account, which replaces the recent blockhash.
func (t *Tx) UsesDurableNonce() bool {
	msg := &t.tx.Message
	if len(msg.Instructions) == 0 {
		return false
	}
	ix := msg.Instructions[0]
	if int(ix.ProgramIDIndex) >= len(msg.AccountKeys) {
		return false
	}
	if !msg.AccountKeys[ix.ProgramIDIndex].Equals(solana.SystemProgramID) {
		return false
	}
	return len(ix.Data) >= 4 && binary.LittleEndian.Uint32(ix.Data[:4]) == system.Instruction_AdvanceNonceAccount
}

// SetBlockhash binds the transaction to bh. Existing signatures no
// longer cover the message and are discarded.
func (t *Tx) SetBlockhash(bh types.Blockhash) error {
	hash, err := solana.HashFromBase58(string(bh))
	if err != nil {
		return errors.Wrapf(err, "parse blockhash %q", bh)
	}
	t.tx.Message.RecentBlockhash = hash
	t.tx.Signatures = nil
	return nil
}

// Sign signs the message once per required signer, in account order.
// Every required signer must be present among signers.
func (t *Tx) Sign(signers ...confirm.Signer) error {
	content, err := t.tx.Message.MarshalBinary()
	if err != nil {
		return errors.Wrap(err, "encode message")
	}
	required := int(t.tx.Message.Header.NumRequiredSignatures)
	if len(t.tx.Message.AccountKeys) < required {
		return errors.Errorf("message requires %d signers but lists %d accounts", required, len(t.tx.Message.AccountKeys))
	}

	sigs := make([]solana.Signature, required)
	for i, key := range t.tx.Message.AccountKeys[:required] {
		signer := lookup(signers, key)
		if signer == nil {
			return errors.Errorf("no signer for %s", key)
		}
		raw, err := signer.Sign(content)
		if err != nil {
			return errors.Wrapf(err, "sign as %s", key)
		}
		if len(raw) != len(solana.Signature{}) {
			return errors.Errorf("signer %s returned %d-byte signature", key, len(raw))
		}
		sigs[i] = solana.SignatureFromBytes(raw)
	}
	t.tx.Signatures = sigs
	return nil
}

func (t *Tx) MarshalBinary() ([]byte, error) {
	return t.tx.MarshalBinary()
}

func lookup(signers []confirm.Signer, key solana.PublicKey) confirm.Signer {
	for _, s := range signers {
		if bytes.Equal(s.PublicKey(), key[:]) {
			return s
		}
	}
	return nil
}

// KeySigner signs with an in-memory ed25519 keypair.
type KeySigner struct {
	key solana.PrivateKey
}

// NewKeySigner wraps key.
func NewKeySigner(key solana.PrivateKey) KeySigner {
	return KeySigner{key: key}
}

// LoadKeypair reads a solana-keygen JSON keypair file.
func LoadKeypair(path string) (KeySigner, error) {
	key, err := solana.PrivateKeyFromSolanaKeygenFile(path)
	if err != nil {
		return KeySigner{}, errors.Wrapf(err, "load keypair %s", path)
	}
	return NewKeySigner(key), nil
}

func (k KeySigner) PublicKey() []byte {
	pub := k.key.PublicKey()
	return pub[:]
}

func (k KeySigner) Sign(message []byte) ([]byte, error) {
	sig, err := k.key.Sign(message)
	if err != nil {
		return nil, err
	}
	return sig[:], nil
}

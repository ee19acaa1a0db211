package local

import (
	"crypto/ed25519"

	"github.com/blockberries/cramberry/pkg/cramberry"
	"github.com/pkg/errors"

	confirm "github.com/fardream/confirm-solana-transaction"
	"github.com/fardream/confirm-solana-transaction/types"
)

// Compile-time interface checks.
var (
	_ confirm.Transaction = (*Tx)(nil)
	_ confirm.Signer      = (*KeySigner)(nil)
)

// Tx is the transaction format the simulated ledger accepts. It is
// serialized with cramberry.
type Tx struct {
	Blockhash types.Blockhash `cramberry:"1"`
	Payload   []byte          `cramberry:"2"`
	// NonceAccount marks a durable-nonce transaction when non-empty.
	NonceAccount string   `cramberry:"3"`
	Signers      [][]byte `cramberry:"4"`
	Signatures   [][]byte `cramberry:"5"`
}

// NewTx creates an unsigned transaction carrying payload.
func NewTx(payload []byte) *Tx {
	return &Tx{Payload: payload}
}

func (tx *Tx) UsesDurableNonce() bool { return tx.NonceAccount != "" }

func (tx *Tx) SetBlockhash(hash types.Blockhash) error {
	if hash == "" {
		return errors.New("local tx: empty blockhash")
	}
	tx.Blockhash = hash
	tx.Signers, tx.Signatures = nil, nil
	return nil
}

func (tx *Tx) Sign(signers ...confirm.Signer) error {
	if len(signers) == 0 {
		return errors.New("local tx: no signers")
	}
	msg, err := tx.message()
	if err != nil {
		return err
	}
	tx.Signers, tx.Signatures = nil, nil
	for i, s := range signers {
		sig, err := s.Sign(msg)
		if err != nil {
			return errors.Wrapf(err, "local tx: signer %d", i)
		}
		tx.Signers = append(tx.Signers, s.PublicKey())
		tx.Signatures = append(tx.Signatures, sig)
	}
	return nil
}

func (tx *Tx) MarshalBinary() ([]byte, error) {
	if len(tx.Signatures) == 0 {
		return nil, errors.New("local tx: not signed")
	}
	return cramberry.Marshal(tx)
}

// message is the signed portion of the transaction.
func (tx *Tx) message() ([]byte, error) {
	return cramberry.Marshal(&Tx{
		Blockhash:    tx.Blockhash,
		Payload:      tx.Payload,
		NonceAccount: tx.NonceAccount,
	})
}

// verify checks every signature against its signer.
func (tx *Tx) verify() error {
	if len(tx.Signatures) == 0 || len(tx.Signatures) != len(tx.Signers) {
		return errors.Errorf("local tx: %d signatures for %d signers", len(tx.Signatures), len(tx.Signers))
	}
	msg, err := tx.message()
	if err != nil {
		return err
	}
	for i, pub := range tx.Signers {
		if len(pub) != ed25519.PublicKeySize || !ed25519.Verify(pub, msg, tx.Signatures[i]) {
			return errors.Errorf("local tx: signature %d does not verify", i)
		}
	}
	return nil
}

// KeySigner signs local transactions with an ed25519 key.
type KeySigner struct {
	key ed25519.PrivateKey
}

// NewKeySigner generates a fresh signing key.
func NewKeySigner() (*KeySigner, error) {
	_, key, err := ed25519.GenerateKey(nil)
	if err != nil {
		return nil, err
	}
	return &KeySigner{key: key}, nil
}

func (s *KeySigner) PublicKey() []byte {
	return s.key.Public().(ed25519.PublicKey)
}

func (s *KeySigner) Sign(message []byte) ([]byte, error) {
	return ed25519.Sign(s.key, message), nil
}

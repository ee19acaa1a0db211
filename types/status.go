package types

// SignatureStatus is the network's live view of a submitted signature.
// A nil *SignatureStatus means the network reports nothing for it.
// It is not a wire type: cramberry cannot tell a nil count from a zero
// one. Use StatusRecord on the wire.
type SignatureStatus struct {
	// Slot the transaction was processed in.
	Slot uint64
	// Confirmations is the number of blocks built atop the one holding
	// the transaction. Nil once the block is rooted.
	Confirmations *uint64
	// Err is the on-chain execution error, empty on success.
	Err string
	// ConfirmationStatus is the durability level observed so far.
	ConfirmationStatus Commitment
}

// Errored reports whether the ledger executed and rejected the transaction.
func (s *SignatureStatus) Errored() bool {
	return s != nil && s.Err != ""
}

// Satisfies reports whether the status meets a request whose satisfying
// levels are given by set. A reported count of exactly zero with an
// unsatisfied level is insufficient; any other landed status is enough.
func (s *SignatureStatus) Satisfies(set CommitmentSet) bool {
	if s == nil {
		return false
	}
	if s.Confirmations != nil && *s.Confirmations == 0 && !set.Has(s.ConfirmationStatus) {
		return false
	}
	return true
}

package types

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupportedCommitment is returned for a commitment level outside
// processed, confirmed and finalized.
var ErrUnsupportedCommitment = errors.New("unsupported commitment")

// Commitment is a durability level for observed ledger state, ordered
// from least to most durable.
type Commitment uint8

const (
	// CommitmentUnspecified is the zero value. Callers that accept it
	// substitute CommitmentFinalized.
	CommitmentUnspecified Commitment = iota
	CommitmentProcessed
	CommitmentConfirmed
	CommitmentFinalized
)

// Valid reports whether c is one of the three recognized levels.
func (c Commitment) Valid() bool {
	return c >= CommitmentProcessed && c <= CommitmentFinalized
}

func (c Commitment) String() string {
	switch c {
	case CommitmentUnspecified:
		return "unspecified"
	case CommitmentProcessed:
		return "processed"
	case CommitmentConfirmed:
		return "confirmed"
	case CommitmentFinalized:
		return "finalized"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(c))
	}
}

// ParseCommitment parses a commitment name. Deprecated Solana aliases
// are mapped onto their modern level.
func ParseCommitment(s string) (Commitment, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "processed", "recent":
		return CommitmentProcessed, nil
	case "confirmed", "single", "singlegossip":
		return CommitmentConfirmed, nil
	case "finalized", "max", "root":
		return CommitmentFinalized, nil
	default:
		return CommitmentUnspecified, fmt.Errorf("%w: %q", ErrUnsupportedCommitment, s)
	}
}

// CommitmentSet is a bitfield of commitment levels.
type CommitmentSet uint8

// SetOf builds a set from the given levels.
func SetOf(levels ...Commitment) CommitmentSet {
	var s CommitmentSet
	for _, l := range levels {
		s |= 1 << l
	}
	return s
}

// Has returns true if level is in the set.
func (s CommitmentSet) Has(level Commitment) bool {
	return level.Valid() && s&(1<<level) != 0
}

// String returns a human-readable representation.
func (s CommitmentSet) String() string {
	var levels []string
	for _, l := range []Commitment{CommitmentProcessed, CommitmentConfirmed, CommitmentFinalized} {
		if s.Has(l) {
			levels = append(levels, l.String())
		}
	}
	if len(levels) == 0 {
		return "none"
	}
	return strings.Join(levels, "|")
}

var satisfying = [...]CommitmentSet{
	CommitmentProcessed: SetOf(CommitmentProcessed, CommitmentConfirmed, CommitmentFinalized),
	CommitmentConfirmed: SetOf(CommitmentConfirmed, CommitmentFinalized),
	CommitmentFinalized: SetOf(CommitmentFinalized),
}

// SatisfiedBy returns the observed levels that meet a request for c.
func (c Commitment) SatisfiedBy() (CommitmentSet, error) {
	if !c.Valid() {
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedCommitment, c)
	}
	return satisfying[c], nil
}

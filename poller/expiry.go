package poller

import "github.com/fardream/confirm-solana-transaction/types"

// IsDropped reports whether a transaction whose blockhash expires at
// expiry can no longer land, given the freshly queried current height.
// A missing status is ambiguous until the height passes the expiry.
func IsDropped(current, expiry types.Height) bool {
	return current > expiry
}

// Command confirmtx submits Solana transactions and waits for them to
// reach a commitment level, or relays a ledger connection over gRPC.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

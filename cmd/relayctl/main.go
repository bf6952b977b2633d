// Command relayctl is the operator CLI for the relay: webhook registration
// and inspection of stored conversations.
package main

import "os"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

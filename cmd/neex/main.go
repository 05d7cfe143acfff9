// Command neex is an incremental monorepo task runner: content-hash-based
// change detection, a workspace dependency graph, a bounded-concurrency
// scheduler, and a tiered result cache, with an optional background daemon
// for live change tracking and LAN cache sharing.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := buildRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

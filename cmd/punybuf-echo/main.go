// Command punybuf-echo is a loopback demo of the punybuf wire codec and
// RPC session running over a single in-process connection.
package main

import (
	"fmt"
	"os"

	"github.com/whzard/punybuf/cmd/punybuf-echo/commands"
)

// Build-time variables injected via -ldflags "-X main.version=... -X main.commit=... -X main.date=...".
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.Version = version
	commands.Commit = commit
	commands.Date = date

	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "punybuf-echo:", err)
		os.Exit(1)
	}
}

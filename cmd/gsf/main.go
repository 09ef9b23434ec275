package main

import (
	"fmt"
	"os"

	"github.com/tdinh-labs/go-sign-flow/cmd/gsf/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

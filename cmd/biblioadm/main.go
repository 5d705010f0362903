// Command biblioadm is the administrative console. Unlike the web server it
// runs one task to completion and exits; status goes to stdout/stderr and
// the exit code reports success.
//
// Supported subcommands:
// - switch-db-hash: Re-encrypt stored catalog passwords under a new scheme
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/pkg/errors"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := runSubcommand(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runSubcommand(ctx context.Context) error {
	switch os.Args[1] {
	case "switch-db-hash":
		return runSwitchDBHash(ctx, os.Args[2:])
	default:
		printUsage()

		return errors.New("unknown subcommand")
	}
}

func printUsage() {
	fmt.Println("Usage: biblioadm <command> [options]")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  switch-db-hash <algorithm> [key]   Re-encrypt stored catalog passwords")
	fmt.Println("")
	fmt.Println("Use 'biblioadm <command> -h' for more information about a command.")
}

// Command regvm compiles regular expressions to bytecode and runs them.
//
// Usage:
//
//	regvm repl
//	regvm match PATTERN SUBJECT...
//	regvm dump PATTERN
//	regvm compile PATTERN -o prog.cbor
//	regvm gen PATTERN -n Name -p package -o file.go
//	regvm grep [-n] [-c] PATTERN [FILE...]
//	regvm check cases.toml...
package main

import (
	"fmt"
	"os"
)

func main() {
	cli := NewCli(os.Stdin, os.Stdout, os.Stderr)
	cli.AddCommands(Commands)
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "regvm:", err)
		os.Exit(1)
	}
}

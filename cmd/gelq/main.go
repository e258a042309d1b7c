package main

import (
	"fmt"
	"os"
)

// version is stamped by -ldflags on release builds.
var version = "devel"

const usage = `gelq - EdgeQL query builder toolchain for Gel

Usage:
  gelq <command> [arguments]

Commands:
  introspect   Fetch the schema from the connected instance into .gelq/schema.json
  generate     Generate Go bindings from the introspected schema
  describe     Show object types and their pointers
  watch        Re-run introspect and generate when schema files change
  version      Print the gelq version

Options:
  -h, --help   Show this help message

Run 'gelq <command> -h' for more information on a specific command.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Print(usage)
		os.Exit(0)
	}

	switch cmd := os.Args[1]; cmd {
	case "-h", "--help", "help":
		fmt.Print(usage)
		os.Exit(0)

	case "introspect":
		introspectCmd(os.Args[2:])

	case "generate":
		generateCmd(os.Args[2:])

	case "describe":
		describeCmd(os.Args[2:])

	case "watch":
		watchCmd(os.Args[2:])

	case "version":
		fmt.Printf("gelq version %s\n", version)

	default:
		fmt.Fprintf(os.Stderr, "error: unknown command: %s\n", cmd)
		fmt.Fprintln(os.Stderr, "Run 'gelq --help' for usage.")
		os.Exit(1)
	}
}

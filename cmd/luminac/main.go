// cmd/luminac/main.go
package main

import (
	"fmt"
	"os"

	"lumina/cmd/luminac/commands"
	"lumina/internal/config"
)

const version = "0.1.0"

// commandAliases mirrors the teacher's single-letter alias table.
var commandAliases = map[string]string{
	"b": "build",
	"c": "check",
	"h": "history",
	"v": "version",
}

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		commands.Usage()
		return
	}

	cmd := args[0]
	if alias, ok := commandAliases[cmd]; ok {
		cmd = alias
	}

	switch cmd {
	case "--help", "-h", "help":
		commands.Usage()
		return
	case "--version", "version":
		commands.Version(version)
		return
	case "history":
		if err := commands.History(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	case "build":
		runWithConfig(args[1:], commands.Build)
		return
	case "check":
		runWithConfig(args[1:], commands.Check)
		return
	}

	// Bare `luminac file.lum` is sugar for `luminac build file.lum`.
	if len(args) > 0 && args[0][0] != '-' {
		runWithConfig(args, commands.Build)
		return
	}

	fmt.Fprintf(os.Stderr, "Error: unknown command %q\n", cmd)
	commands.Usage()
	os.Exit(1)
}

func runWithConfig(args []string, run func(*config.Options) error) {
	opts, err := config.Parse(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		commands.Usage()
		os.Exit(2)
	}
	if opts.Help {
		commands.Usage()
		return
	}
	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

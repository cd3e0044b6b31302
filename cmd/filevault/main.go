// Command filevault is the terminal client for the file vault storage
// service. It dispatches to subcommands for auth and the interactive
// dashboard.
package main

import (
	"fmt"
	"os"

	"filevault/internal/cmd/login"
	"filevault/internal/cmd/logout"
	"filevault/internal/cmd/register"
	"filevault/internal/cmd/ui"
)

func main() {
	if err := run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

// run parses argv and invokes the matching subcommand handler. A bare
// invocation opens the dashboard.
func run(argv []string) error {
	if len(argv) < 2 {
		return ui.Run(nil)
	}

	switch argv[1] {
	case "ui":
		return ui.Run(argv[2:])
	case "login":
		return login.Run(argv[2:])
	case "register":
		return register.Run(argv[2:])
	case "logout":
		return logout.Run(argv[2:])
	case "-h", "--help", "help":
		usage()
		return nil
	default:
		usage()
		return fmt.Errorf("unknown subcommand: %s", argv[1])
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "filevault [ui|login|register|logout] [flags]")
}

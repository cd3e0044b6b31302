// Package login implements the headless login subcommand. On success
// the session is persisted so later invocations start authenticated.
package login

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"filevault/internal/cmd/cmdenv"
	"filevault/internal/format"
	"filevault/internal/validate"
)

func Run(args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	cf := cmdenv.RegisterFlags(fs)
	email := fs.String("email", "", "account email")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" {
		return errors.New("-email is required")
	}
	if err := validate.Email(*email); err != nil {
		return err
	}

	env, err := cmdenv.Setup(cf.Overrides())
	if err != nil {
		return err
	}

	pass, err := readPassword("Password: ")
	if err != nil {
		return err
	}

	if err := env.Store.Login(context.Background(), *email, pass); err != nil {
		return err
	}
	sess := env.Store.Current()
	fmt.Printf("Logged in as %s. Quota: %s of %s, %s saved by dedup.\n",
		sess.User.Username,
		format.Size(sess.User.QuotaUsed),
		format.Size(sess.User.QuotaMax),
		format.Size(sess.User.StorageSaved))
	return nil
}

// readPassword prompts without echo when stdin is a terminal, and falls
// back to a plain line read so piping still works.
func readPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		return string(b), err
	}
	var line string
	if _, err := fmt.Fscanln(os.Stdin, &line); err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// Package register implements account creation from the command line.
package register

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"filevault/internal/cmd/cmdenv"
	"filevault/internal/validate"
)

func Run(args []string) error {
	fs := flag.NewFlagSet("register", flag.ContinueOnError)
	cf := cmdenv.RegisterFlags(fs)
	username := fs.String("username", "", "new account username")
	email := fs.String("email", "", "new account email")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *username == "" || *email == "" {
		return errors.New("-username and -email are required")
	}
	if err := validate.Username(*username); err != nil {
		return err
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
	if err := validate.Password(pass); err != nil {
		return err
	}

	if err := env.Store.Register(context.Background(), *username, *email, pass); err != nil {
		return err
	}
	fmt.Printf("Account %s created and logged in.\n", *username)
	return nil
}

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

// Package logout clears the persisted session. Running it twice is
// harmless.
package logout

import (
	"flag"
	"fmt"

	"filevault/internal/cmd/cmdenv"
)

func Run(args []string) error {
	fs := flag.NewFlagSet("logout", flag.ContinueOnError)
	cf := cmdenv.RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	env, err := cmdenv.Setup(cf.Overrides())
	if err != nil {
		return err
	}
	if err := env.Store.Logout(); err != nil {
		return err
	}
	fmt.Println("Logged out.")
	return nil
}

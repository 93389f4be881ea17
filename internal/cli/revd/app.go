// Package revd implements the command line interface of the revd binary.
package revd

import (
	"github.com/urfave/cli/v2"

	"gitlab.com/revstore/revd/internal/version"
)

// NewApp returns a new revd app.
func NewApp() *cli.App {
	return &cli.App{
		Name:    "revd",
		Usage:   "a versioned file store daemon",
		Version: version.GetVersion(),
		// serve is the default command used when no other command is given.
		DefaultCommand:  "serve",
		HideHelpCommand: true,
		Commands: []*cli.Command{
			newServeCommand(),
			newCheckCommand(),
		},
	}
}

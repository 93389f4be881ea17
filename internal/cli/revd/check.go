package revd

import (
	"fmt"

	"github.com/urfave/cli/v2"
)

func newCheckCommand() *cli.Command {
	return &cli.Command{
		Name:  "check",
		Usage: "verify a configuration file",
		UsageText: `revd check <revd_config_file>

Example: revd check revd.config.toml`,
		Description:     "Check that a revd configuration file is valid.",
		Action:          checkAction,
		HideHelpCommand: true,
	}
}

func checkAction(ctx *cli.Context) error {
	if ctx.NArg() != 1 || ctx.Args().First() == "" {
		cli.ShowSubcommandHelpAndExit(ctx, 2)
	}

	cfg, err := loadConfig(ctx.Args().First())
	if err != nil {
		return cli.Exit(fmt.Errorf("invalid configuration: %w", err), 1)
	}

	fmt.Fprintf(ctx.App.Writer, "configuration OK: storage root %q, listen address %q\n",
		cfg.Storage.Root, cfg.ListenAddr)

	return nil
}

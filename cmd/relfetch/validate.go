package main

import (
	"fmt"

	"github.com/urfave/cli"

	"github.com/ZebulonRouseFrantzich/relfetch/internal/config"
	"github.com/ZebulonRouseFrantzich/relfetch/internal/service"
)

// validateCommand checks the config file without fetching anything
func (a *application) validateCommand() cli.Command {
	return cli.Command{
		Name:  "validate",
		Usage: "check the config file",
		Action: func(c *cli.Context) error {
			path, err := a.configPath(c)
			if err != nil {
				return err
			}
			// Findings are printed below; keep the parser quiet about them
			detector, err := a.platformDetector(c)
			if err != nil {
				return err
			}
			parser := config.NewParser(detector)

			result, err := service.NewValidateService(parser).Validate(a.ctx, path)
			if err != nil {
				return err
			}

			if warning := config.FormatSensitiveDataWarning(result.Findings); warning != "" {
				fmt.Fprintln(a.stderr, warning)
			}
			fmt.Fprintf(a.stdout, "%s: OK (%d source(s))\n", path, len(result.Config.Sources))
			return nil
		},
	}
}

package main

import (
	"fmt"

	"github.com/urfave/cli"

	"github.com/ZebulonRouseFrantzich/relfetch/internal/config"
	"github.com/ZebulonRouseFrantzich/relfetch/internal/service"
)

// initCommand writes a starter config file
func (a *application) initCommand() cli.Command {
	return cli.Command{
		Name:      "init",
		Usage:     "write a starter config file",
		ArgsUsage: "[OWNER REPO ASSET]",
		Flags: []cli.Flag{
			cli.StringFlag{Name: "path, p", Value: config.DefaultConfigFile, Usage: "where to write the config"},
			cli.StringFlag{Name: "output, o", Value: "./bin", Usage: "output directory of the starter source"},
			cli.BoolFlag{Name: "force", Usage: "overwrite an existing config"},
		},
		Action: func(c *cli.Context) error {
			cfg := config.Config{TokenEnv: config.DefaultTokenEnv}
			switch c.NArg() {
			case 0:
			case 3:
				cfg.Sources = []config.Source{{
					Owner:  c.Args().Get(0),
					Repo:   c.Args().Get(1),
					Asset:  c.Args().Get(2),
					Output: c.String("output"),
				}}
			default:
				return fmt.Errorf("usage: relfetch init [--path FILE] [OWNER REPO ASSET]")
			}

			path, err := expandFlagPath(c.String("path"))
			if err != nil {
				return err
			}

			result, err := service.NewInitService(config.NewGenerator()).Execute(a.ctx, service.InitRequest{
				Path:   path,
				Force:  c.Bool("force"),
				Config: cfg,
			})
			if err != nil {
				return err
			}

			verb := "Created"
			if result.Overwritten {
				verb = "Overwrote"
			}
			fmt.Fprintf(a.stdout, "%s %s\n", verb, result.Path)
			return nil
		},
	}
}

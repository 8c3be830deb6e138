package main

import (
	"fmt"

	"github.com/urfave/cli"

	"github.com/ZebulonRouseFrantzich/relfetch/internal/service"
)

// statusCommand lists configured sources and whether they are on disk
func (a *application) statusCommand() cli.Command {
	return cli.Command{
		Name:  "status",
		Usage: "show which configured sources are present",
		Action: func(c *cli.Context) error {
			path, err := a.configPath(c)
			if err != nil {
				return err
			}
			parser, err := a.newParser(c)
			if err != nil {
				return err
			}
			detector, err := a.platformDetector(c)
			if err != nil {
				return err
			}

			result, err := service.NewStatusService(parser, detector).List(a.ctx, service.StatusRequest{ConfigPath: path})
			if err != nil {
				return err
			}

			if len(result.Sources) == 0 {
				fmt.Fprintf(a.stdout, "No sources configured in %s.\n", path)
				return nil
			}

			fmt.Fprintf(a.stdout, "Sources in %s (%s):\n\n", path, result.Platform)
			for _, s := range result.Sources {
				fmt.Fprintf(a.stdout, "  %s %s  %s\n", s.Status.Symbol(), s.Source.DisplayName(), s.Path)
			}
			fmt.Fprintln(a.stdout)
			fmt.Fprintln(a.stdout, "Legend: ✓ present, ✗ missing, ? partial")
			return nil
		},
	}
}

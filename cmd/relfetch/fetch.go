package main

import (
	"fmt"
	"time"

	"github.com/urfave/cli"

	"github.com/ZebulonRouseFrantzich/relfetch/internal/service"
)

// fetchCommand fetches every source declared in the config file
func (a *application) fetchCommand() cli.Command {
	return cli.Command{
		Name:  "fetch",
		Usage: "fetch the sources declared in the config file",
		Flags: []cli.Flag{
			cli.StringSliceFlag{Name: "only", Usage: "fetch only the named source (repeatable)"},
			cli.BoolFlag{Name: "keep-going, k", Usage: "continue after a source fails"},
		},
		Action: func(c *cli.Context) error {
			path, err := a.configPath(c)
			if err != nil {
				return err
			}
			parser, err := a.newParser(c)
			if err != nil {
				return err
			}

			svc := service.NewFetchService(parser, a.fetcherFactory(c), service.RealClock{}, a.logger)
			summary, err := svc.Execute(a.ctx, service.FetchRequest{
				ConfigPath: path,
				Only:       c.StringSlice("only"),
				KeepGoing:  c.Bool("keep-going"),
			})

			for _, outcome := range summary.Outcomes {
				name := outcome.Source.DisplayName()
				if outcome.Err != nil {
					fmt.Fprintf(a.stdout, "  ✗ %s: %v\n", name, outcome.Err)
					continue
				}
				a.printResult(name, outcome.Result)
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(a.stdout, "\nFetched %d source(s) in %s\n", len(summary.Outcomes), summary.Duration.Round(time.Millisecond))
			return nil
		},
	}
}

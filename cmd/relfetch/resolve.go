package main

import (
	"fmt"

	"github.com/urfave/cli"

	"github.com/ZebulonRouseFrantzich/relfetch/internal/release"
)

// resolveCommand prints the download URL of an asset in the latest release
func (a *application) resolveCommand() cli.Command {
	return cli.Command{
		Name:      "resolve",
		Usage:     "print the download URL of an asset in the latest release",
		ArgsUsage: "OWNER REPO ASSET",
		Flags: []cli.Flag{
			cli.StringFlag{
				Name:  "fallback-url",
				Usage: "URL printed when the API is rate limited (default: " + release.DefaultFallbackURL + ")",
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 3 {
				return fmt.Errorf("usage: relfetch resolve OWNER REPO ASSET")
			}
			q := release.Query{Owner: c.Args().Get(0), Repo: c.Args().Get(1), AssetName: c.Args().Get(2)}

			client := a.newClient(c, nil)
			resolver := a.newResolver(c, client, nil, c.String("fallback-url"))

			res := resolver.Resolve(a.ctx, q)
			if !res.OK() {
				if res.Err != nil {
					return fmt.Errorf("resolve %s: %s: %w", q, res.Status, res.Err)
				}
				return fmt.Errorf("resolve %s: %s", q, res.Status)
			}
			if res.Status == release.StatusRateLimited {
				a.logger.Warn("rate limited, printing fallback URL", "query", q.String())
			}

			fmt.Fprintln(a.stdout, res.URL)
			return nil
		},
	}
}

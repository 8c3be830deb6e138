package main

import (
	"fmt"
	"net/url"
	"path"

	"github.com/urfave/cli"

	"github.com/ZebulonRouseFrantzich/relfetch/internal/binary"
)

// downloadCommand saves a URL to disk
func (a *application) downloadCommand() cli.Command {
	return cli.Command{
		Name:      "download",
		Usage:     "download a URL into a directory",
		ArgsUsage: "URL",
		Flags: []cli.Flag{
			cli.StringFlag{Name: "output, o", Value: ".", Usage: "output directory (created if missing)"},
			cli.StringFlag{Name: "filename, f", Usage: "file name (default: last URL path segment)"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return fmt.Errorf("usage: relfetch download [--output DIR] [--filename NAME] URL")
			}
			rawURL := c.Args().Get(0)

			filename := c.String("filename")
			if filename == "" {
				u, err := url.Parse(rawURL)
				if err != nil {
					return fmt.Errorf("parse URL: %w", err)
				}
				filename = path.Base(u.Path)
				if filename == "/" || filename == "." {
					return fmt.Errorf("cannot derive a file name from %s; use --filename", rawURL)
				}
			}

			outputDir, err := expandFlagPath(c.String("output"))
			if err != nil {
				return err
			}

			downloader := binary.NewDownloader(a.newClient(c, nil), a.logger)
			result, err := downloader.Download(a.ctx, rawURL, outputDir, filename)
			if err != nil {
				return err
			}

			fmt.Fprintln(a.stdout, result.Path)
			return nil
		},
	}
}

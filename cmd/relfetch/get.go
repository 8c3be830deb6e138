package main

import (
	"fmt"

	"github.com/urfave/cli"

	"github.com/ZebulonRouseFrantzich/relfetch/internal/binary"
	"github.com/ZebulonRouseFrantzich/relfetch/internal/config"
)

// getCommand resolves, downloads and verifies one asset without a config file
func (a *application) getCommand() cli.Command {
	return cli.Command{
		Name:      "get",
		Usage:     "fetch one asset from the latest release",
		ArgsUsage: "OWNER REPO ASSET",
		Description: "ASSET may contain {os}, {arch}, {arch_raw}, {arch_gnu} and {ext},\n" +
			"   expanded for the host or --platform.",
		Flags: []cli.Flag{
			cli.StringFlag{Name: "output, o", Value: ".", Usage: "output directory (created if missing)"},
			cli.StringFlag{Name: "filename, f", Usage: "file name (default: the asset name)"},
			cli.StringFlag{Name: "checksums", Usage: "sha256sum asset covering ASSET"},
			cli.StringFlag{Name: "signature", Usage: "detached OpenPGP signature asset (needs --keyring)"},
			cli.StringFlag{Name: "extract", Usage: "binary to extract from a .tar.gz or .zip asset"},
			cli.StringFlag{Name: "fallback-url", Usage: "URL fetched when the API is rate limited"},
			cli.BoolFlag{Name: "skip-installed", Usage: "do nothing when the --extract binary is already installed"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 3 {
				return fmt.Errorf("usage: relfetch get [options] OWNER REPO ASSET")
			}

			outputDir, err := expandFlagPath(c.String("output"))
			if err != nil {
				return err
			}

			manager, err := a.newManager(c, nil)
			if err != nil {
				return err
			}

			result, err := manager.Fetch(a.ctx, binary.FetchOptions{
				Owner:         c.Args().Get(0),
				Repo:          c.Args().Get(1),
				Asset:         c.Args().Get(2),
				OutputDir:     outputDir,
				Filename:      c.String("filename"),
				Signature:     c.String("signature"),
				Checksums:     c.String("checksums"),
				Extract:       c.String("extract"),
				FallbackURL:   c.String("fallback-url"),
				SkipInstalled: c.Bool("skip-installed"),
			})
			if err != nil {
				return err
			}

			a.printResult(c.Args().Get(0)+"/"+c.Args().Get(1), result)
			return nil
		},
	}
}

// printResult writes one line describing a fetch
func (a *application) printResult(name string, result *binary.FetchResult) {
	path := result.Path
	if result.Extracted != "" {
		path = result.Extracted
	}
	switch {
	case result.Skipped:
		fmt.Fprintf(a.stdout, "  - %s: already installed at %s\n", name, path)
	default:
		source := result.Tag
		if result.UsedFallback() {
			source = "fallback"
		}
		fmt.Fprintf(a.stdout, "  ✓ %s: %s (%s, verified: %s)\n", name, path, source, result.Verified)
	}
}

// expandFlagPath expands ~ in a path given on the command line
func expandFlagPath(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("path cannot be empty")
	}
	return config.ExpandPath(path)
}

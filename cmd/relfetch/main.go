package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli"

	"github.com/ZebulonRouseFrantzich/relfetch/internal/config"
	"github.com/ZebulonRouseFrantzich/relfetch/internal/logging"
	"github.com/ZebulonRouseFrantzich/relfetch/internal/platform"
	"github.com/ZebulonRouseFrantzich/relfetch/internal/release"
	"github.com/ZebulonRouseFrantzich/relfetch/internal/transport"
)

// Version will be set at build time via -ldflags
var Version = "v0.1.0"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// application carries the process-wide state shared by every command.
type application struct {
	ctx      context.Context
	stdout   io.Writer
	stderr   io.Writer
	detector platform.Detector
	verbose  bool
	logger   logging.Logger
}

// run executes the CLI and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	a := &application{
		ctx:      ctx,
		stdout:   stdout,
		stderr:   stderr,
		detector: platform.NewDetector(),
		logger:   logging.Nop(),
	}
	return a.run(args)
}

func (a *application) run(args []string) int {
	if err := a.newApp().Run(args); err != nil {
		fmt.Fprintf(a.stderr, "Error: %s\n", config.FormatError(err, a.verbose))
		return 1
	}
	return 0
}

func (a *application) newApp() *cli.App {
	cli.VersionFlag = cli.BoolFlag{Name: "version", Usage: "print the version"}

	app := cli.NewApp()
	app.Name = "relfetch"
	app.Usage = "fetch assets from the latest GitHub release"
	app.Version = Version
	app.Writer = a.stdout
	app.ErrWriter = a.stderr

	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "config, c",
			Usage: "config file (default: $" + config.ConfigPathEnv + ", ./relfetch.lua, ~/.config/relfetch/relfetch.lua)",
		},
		cli.StringFlag{
			Name:   "token",
			Usage:  "GitHub API token",
			EnvVar: "RELFETCH_TOKEN,GITHUB_TOKEN",
		},
		cli.StringFlag{
			Name:  "api-base-url",
			Usage: "GitHub REST API root (default: " + release.DefaultAPIBaseURL + ")",
		},
		cli.StringFlag{
			Name:  "user-agent",
			Usage: "User-Agent header (default: " + transport.DefaultUserAgent + ")",
		},
		cli.DurationFlag{
			Name:  "timeout",
			Usage: "per-request timeout",
			Value: transport.DefaultTimeout,
		},
		cli.StringFlag{
			Name:  "platform",
			Usage: "target platform as os/arch instead of the host (e.g. linux/arm64)",
		},
		cli.StringFlag{
			Name:  "keyring",
			Usage: "public keyring for signature verification",
		},
		cli.BoolFlag{
			Name:  "verbose, V",
			Usage: "debug logging and full error details",
		},
	}

	app.Before = func(c *cli.Context) error {
		a.verbose = c.Bool("verbose")
		level := slog.LevelInfo
		if a.verbose {
			level = slog.LevelDebug
		}
		a.logger = logging.NewSlog(slog.New(slog.NewTextHandler(a.stderr, &slog.HandlerOptions{Level: level})))
		return nil
	}

	app.Commands = []cli.Command{
		a.resolveCommand(),
		a.downloadCommand(),
		a.getCommand(),
		a.fetchCommand(),
		a.statusCommand(),
		a.validateCommand(),
		a.initCommand(),
	}

	return app
}

package main

import (
	"fmt"

	"github.com/urfave/cli"

	"github.com/ZebulonRouseFrantzich/relfetch/internal/binary"
	"github.com/ZebulonRouseFrantzich/relfetch/internal/config"
	"github.com/ZebulonRouseFrantzich/relfetch/internal/platform"
	"github.com/ZebulonRouseFrantzich/relfetch/internal/release"
	"github.com/ZebulonRouseFrantzich/relfetch/internal/service"
	"github.com/ZebulonRouseFrantzich/relfetch/internal/transport"
)

// Flags win over the config file, which wins over built-in defaults.

func (a *application) newClient(c *cli.Context, cfg *config.Config) *transport.Client {
	token := c.GlobalString("token")
	userAgent := c.GlobalString("user-agent")
	if cfg != nil {
		if token == "" {
			token = cfg.Token()
		}
		if userAgent == "" {
			userAgent = cfg.UserAgent
		}
	}
	client := transport.New(transport.Config{
		UserAgent: userAgent,
		Token:     token,
		Timeout:   c.GlobalDuration("timeout"),
	})
	a.logger.Debug("http client", "user_agent", client.UserAgent(), "authenticated", client.HasToken())
	return client
}

func (a *application) newResolver(c *cli.Context, client *transport.Client, cfg *config.Config, fallbackURL string) *release.Resolver {
	baseURL := c.GlobalString("api-base-url")
	if baseURL == "" && cfg != nil {
		baseURL = cfg.APIBaseURL
	}

	rc := release.ResolverConfig{FallbackURL: fallbackURL, Logger: a.logger}
	if baseURL != "" {
		rc.Endpoint = release.EndpointForBase(baseURL)
	}
	r := release.NewResolver(client, rc)
	a.logger.Debug("release resolver", "api_base_url", baseURL, "fallback", r.FallbackURL())
	return r
}

func (a *application) platformDetector(c *cli.Context) (platform.Detector, error) {
	if target := c.GlobalString("platform"); target != "" {
		info, err := platform.Parse(target)
		if err != nil {
			return nil, err
		}
		return platform.StaticDetector{Info: info}, nil
	}
	return a.detector, nil
}

func (a *application) keyringPath(c *cli.Context, cfg *config.Config) (string, error) {
	if path := c.GlobalString("keyring"); path != "" {
		return config.ExpandPath(path)
	}
	if cfg != nil {
		return cfg.KeyringPath()
	}
	return "", nil
}

// newManager builds a fully wired manager. cfg may be nil.
func (a *application) newManager(c *cli.Context, cfg *config.Config) (*binary.Manager, error) {
	detector, err := a.platformDetector(c)
	if err != nil {
		return nil, err
	}
	info, err := detector.Detect(a.ctx)
	if err != nil {
		return nil, fmt.Errorf("detect platform: %w", err)
	}

	keyring, err := a.keyringPath(c, cfg)
	if err != nil {
		return nil, err
	}

	client := a.newClient(c, cfg)
	return binary.NewManager(binary.Config{
		Resolver:     a.newResolver(c, client, cfg, ""),
		Downloader:   binary.NewDownloader(client, a.logger),
		PlatformInfo: info,
		KeyringPath:  keyring,
		Logger:       a.logger,
	})
}

func (a *application) fetcherFactory(c *cli.Context) service.FetcherFactory {
	return func(cfg *config.Config) (service.Fetcher, error) {
		m, err := a.newManager(c, cfg)
		if err != nil {
			return nil, err
		}
		return m, nil
	}
}

func (a *application) newParser(c *cli.Context) (*config.Parser, error) {
	detector, err := a.platformDetector(c)
	if err != nil {
		return nil, err
	}
	return config.NewParser(detector).WithLogger(a.logger), nil
}

func (a *application) configPath(c *cli.Context) (string, error) {
	path, err := config.Locate(c.GlobalString("config"))
	if err != nil {
		return "", err
	}
	a.logger.Debug("using config", "path", path)
	return path, nil
}

// Package release resolves the download URL of a named asset attached to the
// latest release of a hosted repository.
//
// # Resolution
//
// A Resolver issues a single GET against the "latest release" endpoint,
// built by an injectable EndpointFunc, and inspects the response:
//
//   - Rate limited (per the RateLimitInspector): the configured fallback URL
//     is returned without retrying.
//   - Non-2xx status or an undecodable payload: StatusRequestFailed.
//   - No asset with the exact (case-sensitive) name: StatusNotFound.
//   - Otherwise the first matching asset's browser_download_url.
//
// Callers that only need a string use LatestAssetURL, which maps every
// failure to "" and rate limiting to the fallback URL. Callers that need to
// branch use Resolve and inspect the Resolution.
//
// # Usage
//
//	client := transport.New(transport.Config{Token: os.Getenv("GITHUB_TOKEN")})
//	resolver := release.NewResolver(client, release.ResolverConfig{Logger: logger})
//
//	url := resolver.LatestAssetURL(ctx, "acme", "tool", "bootstrapper.exe")
//	if url == "" {
//	    return errors.New("no download URL")
//	}
package release

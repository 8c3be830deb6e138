// Package binary downloads release assets to disk and checks them before
// they are used.
//
// # Downloads
//
// Downloader streams a URL into a uniquely named temporary file inside the
// output directory and renames it into place once the body has been fully
// written. The output directory is created (with its ancestors) on demand.
// A failed download removes the temporary file and leaves any existing file
// at the destination untouched.
//
// # Verification
//
// Sources may declare companion assets from the same release:
//   - a detached OpenPGP signature, checked against a local keyring
//     (armored or binary) with ProtonMail's go-crypto
//   - a sha256sum-format checksum file
//
// An asset that fails either check is deleted.
//
// # Usage
//
//	client := transport.New(transport.Config{Token: os.Getenv("GITHUB_TOKEN")})
//	mgr, err := binary.NewManager(binary.Config{
//	    Resolver:     release.NewResolver(client, release.ResolverConfig{}),
//	    Downloader:   binary.NewDownloader(client, logger),
//	    PlatformInfo: info,
//	})
//	if err != nil {
//	    return err
//	}
//
//	result, err := mgr.Fetch(ctx, binary.FetchOptions{
//	    Owner:     "acme",
//	    Repo:      "tool",
//	    Asset:     "tool-{os}-{arch}.tar.gz",
//	    Checksums: "checksums.txt",
//	    Extract:   "tool",
//	    OutputDir: "./bin",
//	})
//
// # Architecture
//
// The package is organized into several components:
//   - Manager: resolve, download, verify and extract for one source
//   - Downloader: streaming HTTP download with temp file and rename
//   - Verifier: GPG and SHA256 verification
//   - Extractor: archive extraction (tar.gz, zip)
//   - ExpandAssetName: platform placeholders in asset names
package binary

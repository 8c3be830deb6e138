// Package config parses relfetch's Lua configuration files.
//
// A config declares the release assets to fetch. It runs in a sandboxed
// gopher-lua VM (no os, io, require or load*), with the host platform
// injected as a read-only platform table so one file can serve every
// machine:
//
//	relfetch = {
//	  token_env = "GITHUB_TOKEN",               -- env var holding the API token
//	  keyring   = "~/.config/relfetch/keys.asc", -- for signature checks
//	  sources = {
//	    {
//	      name      = "tool",
//	      owner     = "acme",
//	      repo      = "tool",
//	      asset     = "tool-{os}-{arch}" .. (platform.is_windows and ".zip" or ".tar.gz"),
//	      output    = "~/.local/bin",
//	      checksums = "checksums.txt",
//	      extract   = "tool" .. platform.exe_suffix,
//	    },
//	    platform.when(platform.is_linux, {
//	      owner = "acme", repo = "helper", asset = "helper-linux", output = "./bin",
//	    }),
//	  },
//	}
//
// nil entries in sources (from platform.when) are skipped.
//
// # Validation
//
// Struct constraints (required fields, URLs, lengths) are checked with
// go-playground/validator using the Lua field names in messages. Owner and
// repository names, output paths (no ".." components) and asset names
// (single path element) are checked by hand, as are duplicate sources.
//
// # Secrets
//
// Tokens belong in the environment. ParseFile scans the file for values
// that look like credentials and logs a warning for each;
// FormatSensitiveDataWarning renders the findings for display.
//
// # Errors
//
//	type ParseError struct {
//	    Message string // User-friendly message
//	    Detail  string // Technical details (raw Lua error)
//	}
//
//	type ValidationError struct {
//	    Field   string // e.g. "sources[0].owner"
//	    Message string
//	}
//
// FormatError strips the Lua stack traceback unless verbose is set.
//
// # Limits
//
//   - Config size: MaxConfigSize
//   - Sources: MaxSourceCount
//   - Execution: DefaultParseTimeout unless ctx carries a deadline
//   - Call stack depth: 256 levels
package config

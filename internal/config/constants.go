package config

import "time"

// Lua schema field names and globals
const (
	luaGlobalRelfetch   = "relfetch"
	luaFieldAPIBaseURL  = "api_base_url"
	luaFieldUserAgent   = "user_agent"
	luaFieldTokenEnv    = "token_env"
	luaFieldKeyring     = "keyring"
	luaFieldSources     = "sources"
	luaFieldName        = "name"
	luaFieldOwner       = "owner"
	luaFieldRepo        = "repo"
	luaFieldAsset       = "asset"
	luaFieldOutput      = "output"
	luaFieldFilename    = "filename"
	luaFieldSignature   = "signature"
	luaFieldChecksums   = "checksums"
	luaFieldExtract     = "extract"
	luaFieldFallbackURL = "fallback_url"
	luaFieldSkip        = "skip_installed"
)

// Resource limits
const (
	// DefaultParseTimeout bounds Lua execution when ctx has no deadline
	DefaultParseTimeout = 5 * time.Second
	// MaxConfigSize is the largest config file ParseFile accepts
	MaxConfigSize = 1 << 20
	// MaxSourceCount bounds the number of sources in one config
	MaxSourceCount = 256
)

const (
	// DefaultConfigFile is the config file name searched for by Locate
	DefaultConfigFile = "relfetch.lua"
	// ConfigPathEnv names an explicit config file, overriding the search
	ConfigPathEnv = "RELFETCH_CONFIG"
	// DefaultTokenEnv is consulted when a config names no token_env
	DefaultTokenEnv = "GITHUB_TOKEN"
)

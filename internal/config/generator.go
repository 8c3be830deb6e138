package config

import (
	"bytes"
	"fmt"
	"strings"
	"time"
)

// Generator generates Lua configuration code from Go structs.
type Generator struct {
	indent string // Indentation string (default: two spaces)
	now    func() time.Time
}

// NewGenerator creates a new Lua config generator.
func NewGenerator() *Generator {
	return &Generator{
		indent: "  ", // Two spaces
		now:    time.Now,
	}
}

// Generate generates Lua code from a Config struct.
// The output is formatted, human-readable and parses back to an equal Config.
func (g *Generator) Generate(config *Config) (string, error) {
	if config == nil {
		return "", fmt.Errorf("config is nil")
	}

	var buf bytes.Buffer

	buf.WriteString("-- relfetch configuration\n")
	buf.WriteString("-- Generated: ")
	buf.WriteString(g.now().Format(time.RFC3339))
	buf.WriteString("\n\n")

	buf.WriteString(luaGlobalRelfetch + " = {\n")

	g.writeString(&buf, 1, luaFieldAPIBaseURL, config.APIBaseURL)
	g.writeString(&buf, 1, luaFieldUserAgent, config.UserAgent)
	g.writeString(&buf, 1, luaFieldTokenEnv, config.TokenEnv)
	g.writeString(&buf, 1, luaFieldKeyring, config.Keyring)

	if len(config.Sources) > 0 {
		g.writeSources(&buf, config.Sources)
	}

	buf.WriteString("}\n")

	return buf.String(), nil
}

// writeSources writes the sources array to the buffer.
func (g *Generator) writeSources(buf *bytes.Buffer, sources []Source) {
	buf.WriteString(g.indent)
	buf.WriteString(luaFieldSources + " = {\n")

	for _, src := range sources {
		buf.WriteString(strings.Repeat(g.indent, 2))
		buf.WriteString("{\n")

		g.writeString(buf, 3, luaFieldName, src.Name)
		g.writeString(buf, 3, luaFieldOwner, src.Owner)
		g.writeString(buf, 3, luaFieldRepo, src.Repo)
		g.writeString(buf, 3, luaFieldAsset, src.Asset)
		g.writeString(buf, 3, luaFieldOutput, src.Output)
		g.writeString(buf, 3, luaFieldFilename, src.Filename)
		g.writeString(buf, 3, luaFieldSignature, src.Signature)
		g.writeString(buf, 3, luaFieldChecksums, src.Checksums)
		g.writeString(buf, 3, luaFieldExtract, src.Extract)
		g.writeString(buf, 3, luaFieldFallbackURL, src.FallbackURL)
		if src.SkipInstalled {
			buf.WriteString(strings.Repeat(g.indent, 3))
			buf.WriteString(luaFieldSkip + " = true,\n")
		}

		buf.WriteString(strings.Repeat(g.indent, 2))
		buf.WriteString("},\n")
	}

	buf.WriteString(g.indent)
	buf.WriteString("},\n")
}

// writeString writes `key = "value",` at the given depth; empty values are omitted.
func (g *Generator) writeString(buf *bytes.Buffer, depth int, key, value string) {
	if value == "" {
		return
	}
	buf.WriteString(strings.Repeat(g.indent, depth))
	buf.WriteString(key)
	buf.WriteString(" = ")
	buf.WriteString(g.quoteLuaString(value))
	buf.WriteString(",\n")
}

// quoteLuaString quotes a string for Lua, handling special characters.
func (g *Generator) quoteLuaString(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\") // Escape backslashes first
	s = strings.ReplaceAll(s, "\"", "\\\"")
	s = strings.ReplaceAll(s, "\n", "\\n")
	s = strings.ReplaceAll(s, "\r", "\\r")
	s = strings.ReplaceAll(s, "\t", "\\t")
	return "\"" + s + "\""
}

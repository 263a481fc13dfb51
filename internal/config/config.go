// Package config holds the run configuration: its defaults, validation of a
// raw key/value map (from a config file or the CLI), config file discovery
// and loading, env files, and env(NAME) URL resolution.
package config

import (
	"github.com/koustreak/typegen/internal/generator"
	"github.com/koustreak/typegen/internal/naming"
	"github.com/koustreak/typegen/internal/normalize"
	"github.com/koustreak/typegen/internal/override"
	"github.com/koustreak/typegen/internal/typemap"
)

// DefaultURL reads the connection string from the DATABASE_URL variable.
const DefaultURL = "env(DATABASE_URL)"

// DefaultOutFile is where declarations are written when nothing else is set.
const DefaultOutFile = "./db.d.ts"

// Config is one fully merged run configuration.
type Config struct {
	CamelCase         bool
	DateParser        typemap.DateParser
	DefaultSchemas    []string
	DialectName       string
	Domains           bool
	EnvFile           string
	ExcludePattern    string
	IncludePattern    string
	LogLevel          string
	NumericParser     typemap.NumericParser
	OutFile           string // empty: no file, declarations go to stdout
	Overrides         override.Overrides
	Partitions        bool
	Print             bool
	RuntimeEnums      bool
	RuntimeEnumsStyle naming.EnumStyle
	Singular          bool
	TypeOnlyImports   bool
	URL               string
	Verify            bool
}

// Default returns the configuration used when no file or flag sets a value.
func Default() Config {
	return Config{
		DateParser:        typemap.DateTimestamp,
		Domains:           true,
		LogLevel:          "warn",
		NumericParser:     typemap.NumericString,
		OutFile:           DefaultOutFile,
		RuntimeEnumsStyle: naming.StylePascal,
		TypeOnlyImports:   true,
		URL:               DefaultURL,
	}
}

// GeneratorOptions projects c onto the pipeline options. defaultSchemas is
// the resolved list (configured, or the connection's current schema).
func (c Config) GeneratorOptions(defaultSchemas []string) generator.Options {
	return generator.Options{
		Types: typemap.Policy{
			Numeric: c.NumericParser,
			Date:    c.DateParser,
		},
		Filters: normalize.Filters{
			DefaultSchemas: defaultSchemas,
			IncludePattern: c.IncludePattern,
			ExcludePattern: c.ExcludePattern,
			Domains:        c.Domains,
			Partitions:     c.Partitions,
		},
		Overrides: c.Overrides,
		Naming: naming.Policy{
			CamelCase:       c.CamelCase,
			Singular:        c.Singular,
			TypeOnlyImports: c.TypeOnlyImports,
		},
		RuntimeEnums: c.RuntimeEnums,
		EnumStyle:    c.RuntimeEnumsStyle,
	}
}

package cli

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/koustreak/typegen/internal/config"
	"github.com/koustreak/typegen/internal/errs"
)

// flags holds the raw flag values. Only flags the user actually set are
// merged over the config file.
type flags struct {
	configFile        string
	camelCase         bool
	dateParser        string
	defaultSchemas    []string
	dialect           string
	domains           bool
	noDomains         bool
	envFile           string
	excludePattern    string
	includePattern    string
	logLevel          string
	numericParser     string
	outFile           string
	overrides         string
	partitions        bool
	print             bool
	runtimeEnums      bool
	runtimeEnumsStyle string
	schema            string
	singular          bool
	typeOnlyImports   bool
	noTypeOnlyImports bool
	url               string
	verify            bool
}

func (f *flags) register(cmd *cobra.Command) {
	fs := cmd.Flags()

	fs.StringVar(&f.configFile, "config", "", "Path to a YAML or JSON config file (default: search for .typegenrc)")
	fs.BoolVar(&f.camelCase, "camel-case", false, "Use the camelCase naming convention")
	fs.StringVar(&f.dateParser, "date-parser", "", "Specify which parser to use for dates (string, timestamp) (default: timestamp)")
	fs.StringArrayVar(&f.defaultSchemas, "default-schema", nil, "Set the default schema(s) of the database connection (repeatable)")
	fs.StringVar(&f.dialect, "dialect", "", "Set the SQL dialect (default: inferred from the URL)")
	fs.BoolVar(&f.domains, "domains", true, "Generate types for PostgreSQL domains")
	fs.BoolVar(&f.noDomains, "no-domains", false, "Skip generating types for PostgreSQL domains")
	fs.StringVar(&f.envFile, "env-file", "", "Specify the path to an environment file to use")
	fs.StringVar(&f.excludePattern, "exclude-pattern", "", "Exclude tables matching the specified glob pattern (e.g. users, *.table, secrets.*, *._*)")
	fs.StringVar(&f.includePattern, "include-pattern", "", "Only include tables matching the specified glob pattern (e.g. users, *.table, secrets.*, *._*)")
	fs.StringVar(&f.logLevel, "log-level", "", "Set the terminal log level (silent, info, warn, error, debug) (default: warn)")
	fs.StringVar(&f.numericParser, "numeric-parser", "", "Specify which parser to use for numeric values (number, number-or-string, string) (default: string)")
	fs.StringVar(&f.outFile, "out-file", "", "Set the file build path, or s3://bucket/key for object storage (default: ./db.d.ts)")
	fs.StringVar(&f.overrides, "overrides", "", `Specify type overrides as JSON, e.g. {"columns":{"table.column":"string"}}`)
	fs.BoolVar(&f.partitions, "partitions", false, "Include partition tables in the generated code")
	fs.BoolVar(&f.print, "print", false, "Print the generated output to the terminal instead of a file")
	fs.BoolVar(&f.runtimeEnums, "runtime-enums", false, "Generate runtime enums instead of string unions")
	fs.StringVar(&f.runtimeEnumsStyle, "runtime-enums-style", "", "Set the naming style of runtime enum members (pascal-case, screaming-snake-case) (default: pascal-case)")
	fs.BoolVar(&f.singular, "singular", false, "Singularize generated table names")
	fs.BoolVar(&f.typeOnlyImports, "type-only-imports", true, "Generate TypeScript 3.8+ `import type` syntax")
	fs.BoolVar(&f.noTypeOnlyImports, "no-type-only-imports", false, "Generate plain `import` statements")
	fs.StringVar(&f.url, "url", "", "Set the database connection string URL (default: env(DATABASE_URL))")
	fs.BoolVar(&f.verify, "verify", false, "Verify that the generated types are up-to-date")

	fs.StringVar(&f.schema, "schema", "", "")
	fs.Lookup("schema").NoOptDefVal = " "
	_ = fs.MarkHidden("schema")
}

// resolve merges defaults, the config file and the flags that were set,
// in that order of precedence.
func (f *flags) resolve(cmd *cobra.Command) (config.Config, error) {
	fs := cmd.Flags()
	if fs.Changed("schema") {
		return config.Config{}, errs.New(errs.ErrKindInvalidInput,
			"The flag 'schema' has been deprecated. Use 'default-schema' instead.")
	}

	raw, err := f.loadFile()
	if err != nil {
		return config.Config{}, err
	}
	cfg, err := config.Parse(raw, config.Default())
	if err != nil {
		return config.Config{}, err
	}

	set := map[string]any{}
	for flag, key := range map[string]string{
		"camel-case":        "camelCase",
		"domains":           "domains",
		"partitions":        "partitions",
		"print":             "print",
		"runtime-enums":     "runtimeEnums",
		"singular":          "singular",
		"type-only-imports": "typeOnlyImports",
		"verify":            "verify",
	} {
		if fs.Changed(flag) {
			v, _ := fs.GetBool(flag)
			set[key] = v
		}
	}
	if fs.Changed("no-domains") && f.noDomains {
		set["domains"] = false
	}
	if fs.Changed("no-type-only-imports") && f.noTypeOnlyImports {
		set["typeOnlyImports"] = false
	}
	for flag, key := range map[string]string{
		"date-parser":         "dateParser",
		"dialect":             "dialectName",
		"env-file":            "envFile",
		"exclude-pattern":     "excludePattern",
		"include-pattern":     "includePattern",
		"log-level":           "logLevel",
		"numeric-parser":      "numericParser",
		"out-file":            "outFile",
		"runtime-enums-style": "runtimeEnumsStyle",
		"url":                 "url",
	} {
		if fs.Changed(flag) {
			v, _ := fs.GetString(flag)
			set[key] = v
		}
	}
	if fs.Changed("default-schema") {
		list := make([]any, len(f.defaultSchemas))
		for i, s := range f.defaultSchemas {
			list[i] = s
		}
		set["defaultSchemas"] = list
	}

	cfg, err = config.Parse(set, cfg)
	if err != nil {
		return config.Config{}, err
	}

	if fs.Changed("overrides") {
		cfg.Overrides, err = config.DecodeOverrides(f.overrides)
		if err != nil {
			return config.Config{}, err
		}
	}
	return cfg, nil
}

// loadFile reads --config, or the first config file found from the working
// directory upwards. No file is an empty config.
func (f *flags) loadFile() (map[string]any, error) {
	if f.configFile != "" {
		return config.LoadFile(f.configFile)
	}

	wd, err := os.Getwd()
	if err != nil {
		return map[string]any{}, nil
	}
	path, err := config.FindFile(wd)
	if errors.Is(err, config.ErrNotFound) {
		return map[string]any{}, nil
	}
	if err != nil {
		return nil, err
	}
	return config.LoadFile(path)
}

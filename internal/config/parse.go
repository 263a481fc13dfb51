package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/koustreak/typegen/internal/dialect"
	"github.com/koustreak/typegen/internal/errs"
	"github.com/koustreak/typegen/internal/logger"
	"github.com/koustreak/typegen/internal/naming"
	"github.com/koustreak/typegen/internal/override"
	"github.com/koustreak/typegen/internal/typemap"
)

var (
	dateParsers    = []string{string(typemap.DateString), string(typemap.DateTimestamp)}
	numericParsers = []string{string(typemap.NumericNumber), string(typemap.NumericNumberOrString), string(typemap.NumericString)}
	enumStyles     = []string{string(naming.StylePascal), string(naming.StyleScreamingSnake)}
)

type field struct {
	key   string
	apply func(c *Config, v any) error
}

// fields is checked in this order; the first invalid one is reported.
var fields = []field{
	{"camelCase", func(c *Config, v any) (err error) {
		c.CamelCase, err = asBool(v, "camelCase")
		return
	}},
	{"dateParser", func(c *Config, v any) error {
		s, err := asEnum(v, dateParsers, "dateParser")
		c.DateParser = typemap.DateParser(s)
		return err
	}},
	{"defaultSchemas", func(c *Config, v any) (err error) {
		c.DefaultSchemas, err = asStrings(v, "defaultSchemas")
		return
	}},
	{"dialectName", func(c *Config, v any) (err error) {
		c.DialectName, err = asEnum(v, dialect.Names, "dialectName")
		return
	}},
	{"domains", func(c *Config, v any) (err error) {
		c.Domains, err = asBool(v, "domains")
		return
	}},
	{"envFile", func(c *Config, v any) (err error) {
		c.EnvFile, err = asString(v, "envFile")
		return
	}},
	{"excludePattern", func(c *Config, v any) (err error) {
		c.ExcludePattern, err = asString(v, "excludePattern")
		return
	}},
	{"includePattern", func(c *Config, v any) (err error) {
		c.IncludePattern, err = asString(v, "includePattern")
		return
	}},
	{"logLevel", func(c *Config, v any) (err error) {
		c.LogLevel, err = asEnum(v, logger.Levels, "logLevel")
		return
	}},
	{"numericParser", func(c *Config, v any) error {
		s, err := asEnum(v, numericParsers, "numericParser")
		c.NumericParser = typemap.NumericParser(s)
		return err
	}},
	{"outFile", func(c *Config, v any) (err error) {
		if v == nil {
			c.OutFile = ""
			return nil
		}
		c.OutFile, err = asString(v, "outFile")
		return
	}},
	{"overrides", func(c *Config, v any) (err error) {
		c.Overrides, err = asOverrides(v)
		return
	}},
	{"partitions", func(c *Config, v any) (err error) {
		c.Partitions, err = asBool(v, "partitions")
		return
	}},
	{"print", func(c *Config, v any) (err error) {
		c.Print, err = asBool(v, "print")
		return
	}},
	{"runtimeEnums", func(c *Config, v any) (err error) {
		c.RuntimeEnums, err = asBool(v, "runtimeEnums")
		return
	}},
	{"runtimeEnumsStyle", func(c *Config, v any) error {
		s, err := asEnum(v, enumStyles, "runtimeEnumsStyle")
		c.RuntimeEnumsStyle = naming.EnumStyle(s)
		return err
	}},
	{"singular", func(c *Config, v any) (err error) {
		c.Singular, err = asBool(v, "singular")
		return
	}},
	{"typeOnlyImports", func(c *Config, v any) (err error) {
		c.TypeOnlyImports, err = asBool(v, "typeOnlyImports")
		return
	}},
	{"url", func(c *Config, v any) (err error) {
		c.URL, err = asString(v, "url")
		return
	}},
	{"verify", func(c *Config, v any) (err error) {
		c.Verify, err = asBool(v, "verify")
		return
	}},
}

// Keys lists every recognised configuration key.
func Keys() []string {
	keys := make([]string, len(fields))
	for i, f := range fields {
		keys[i] = f.key
	}
	return keys
}

// Parse validates raw and applies its values on top of base. Unknown keys
// are ignored. The first invalid field is returned as an invalid_config
// error carrying the field path.
func Parse(raw map[string]any, base Config) (Config, error) {
	c := base
	c.DefaultSchemas = append([]string(nil), base.DefaultSchemas...)

	for _, f := range fields {
		v, ok := raw[f.key]
		if !ok {
			continue
		}
		if err := f.apply(&c, v); err != nil {
			return Config{}, err
		}
	}
	return c, nil
}

// Unknown returns the keys of raw that Parse ignores, sorted.
func Unknown(raw map[string]any) []string {
	known := make(map[string]bool, len(fields))
	for _, f := range fields {
		known[f.key] = true
	}
	var out []string
	for k := range raw {
		if !known[k] {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

// --- value checks ---

func asBool(v any, path ...string) (bool, error) {
	b, ok := v.(bool)
	if !ok {
		return false, expected("boolean", v, path)
	}
	return b, nil
}

func asString(v any, path ...string) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", expected("string", v, path)
	}
	return s, nil
}

func asEnum(v any, allowed []string, path ...string) (string, error) {
	s, ok := v.(string)
	if ok {
		for _, a := range allowed {
			if s == a {
				return s, nil
			}
		}
	}
	quoted := make([]string, len(allowed))
	for i, a := range allowed {
		quoted[i] = "'" + a + "'"
	}
	msg := fmt.Sprintf("Invalid enum value. Expected %s, received '%s'", strings.Join(quoted, " | "), display(v))
	return "", errs.Config(msg, path...)
}

func asStrings(v any, path ...string) ([]string, error) {
	list, ok := v.([]any)
	if !ok {
		return nil, expected("array", v, path)
	}
	out := make([]string, len(list))
	for i, item := range list {
		s, err := asString(item, append(path, strconv.Itoa(i))...)
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}

func asOverrides(v any) (override.Overrides, error) {
	obj, ok := v.(map[string]any)
	if !ok {
		return override.Overrides{}, expected("object", v, []string{"overrides"})
	}

	raw, ok := obj["columns"]
	if !ok {
		return override.Overrides{}, nil
	}
	cols, ok := raw.(map[string]any)
	if !ok {
		return override.Overrides{}, expected("object", raw, []string{"overrides", "columns"})
	}

	out := override.Overrides{Columns: make(map[string]string, len(cols))}
	for _, key := range sortedKeys(cols) {
		s, err := asString(cols[key], "overrides", "columns", key)
		if err != nil {
			return override.Overrides{}, err
		}
		out.Columns[key] = s
	}
	return out, nil
}

func expected(want string, got any, path []string) *errs.Error {
	return errs.Config(fmt.Sprintf("Expected %s, received %s", want, typeName(got)), path...)
}

// typeName names the type of a decoded YAML/JSON value.
func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case string:
		return "string"
	case int, int64, uint64, float64:
		return "number"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	case time.Time:
		return "date"
	}
	return fmt.Sprintf("%T", v)
}

func display(v any) string {
	if v == nil {
		return "null"
	}
	return fmt.Sprint(v)
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

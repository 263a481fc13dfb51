package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"

	"github.com/joho/godotenv"
	"go.yaml.in/yaml/v3"

	"github.com/koustreak/typegen/internal/errs"
	"github.com/koustreak/typegen/internal/override"
)

// FileNames are the config files searched for, in order, in each directory.
var FileNames = []string{
	".typegenrc",
	".typegenrc.json",
	".typegenrc.yaml",
	".typegenrc.yml",
	"typegen.config.json",
	"typegen.config.yaml",
	"typegen.config.yml",
}

// ErrNotFound is returned by FindFile when no config file exists.
var ErrNotFound = errors.New("config: no config file found")

// FindFile searches dir and its parents for one of FileNames.
func FindFile(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}

	for dir := abs; ; {
		for _, name := range FileNames {
			path := filepath.Join(dir, name)
			if fi, err := os.Stat(path); err == nil && !fi.IsDir() {
				return path, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrNotFound
		}
		dir = parent
	}
}

// LoadFile reads a YAML or JSON config file into a raw map for Parse.
func LoadFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindInvalidConfig, "failed to read config file "+path, err)
	}
	return decode(data, path)
}

func decode(data []byte, source string) (map[string]any, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errs.Wrap(errs.ErrKindInvalidConfig, "failed to parse "+source, err)
	}
	switch v := doc.(type) {
	case nil:
		return map[string]any{}, nil
	case map[string]any:
		return v, nil
	default:
		return nil, errs.Config("Expected object, received " + typeName(v))
	}
}

// DecodeOverrides parses the JSON (or YAML) text of the overrides option.
func DecodeOverrides(text string) (override.Overrides, error) {
	var v any
	if err := yaml.Unmarshal([]byte(text), &v); err != nil {
		e := errs.Config("Invalid JSON: "+err.Error(), "overrides")
		e.Cause = err
		return override.Overrides{}, e
	}
	return asOverrides(v)
}

// LoadEnv loads variables from path into the process environment without
// replacing variables that are already set. With an empty path it loads
// ./.env when present.
func LoadEnv(path string) error {
	if path == "" {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return errs.Wrap(errs.ErrKindInvalidConfig, "failed to load .env", err)
		}
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		e := errs.Config("Failed to load env file '"+path+"'", "envFile")
		e.Cause = err
		return e
	}
	return nil
}

var envRef = regexp.MustCompile(`^env\(([A-Za-z_][A-Za-z0-9_]*)\)$`)

// ResolveURL expands an env(NAME) reference to the value of NAME.
// Any other value is returned unchanged.
func ResolveURL(url string) (string, error) {
	m := envRef.FindStringSubmatch(url)
	if m == nil {
		return url, nil
	}
	v, ok := os.LookupEnv(m[1])
	if !ok || v == "" {
		return "", errs.Config("Environment variable '"+m[1]+"' is not set", "url")
	}
	return v, nil
}

// Package config provides the configuration loader for kiln.
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// FileNames are the configuration file names, in lookup order.
var FileNames = []string{"kiln.yaml", "kiln.yml"}

// DotEnvFile holds environment overrides next to the configuration file.
const DotEnvFile = ".env"

// Environment variables that override the configuration file.
const (
	EnvSourcemap          = "KILN_SOURCEMAP"
	EnvMinify             = "KILN_MINIFY"
	EnvReactRefresh       = "KILN_REACT_REFRESH"
	EnvResolveNodeModules = "KILN_RESOLVE_NODE_MODULES"
	EnvCacheSize          = "KILN_CACHE_SIZE"
)

// Loader implements ports.ConfigLoader using a YAML file.
type Loader struct {
	Logger ports.Logger
	// LookupEnv reads the process environment. Tests replace it.
	LookupEnv func(string) (string, bool)
}

var _ ports.ConfigLoader = (*Loader)(nil)

// NewLoader creates a new Loader with the given logger.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{Logger: logger, LookupEnv: os.LookupEnv}
}

// Load reads the options from the nearest kiln.yaml at or above cwd, then applies
// .env and process environment overrides. A missing file yields default options.
func (l *Loader) Load(cwd string) (domain.Options, error) {
	var opts domain.Options
	envDir := cwd

	path, found := findConfiguration(cwd)
	if found {
		l.debug("loading configuration from " + path)

		var kilnfile Kilnfile
		if err := readAndUnmarshalYAML(path, &kilnfile); err != nil {
			return domain.Options{}, err
		}

		var err error
		opts, err = toOptions(&kilnfile)
		if err != nil {
			return domain.Options{}, zerr.With(err, "file", path)
		}
		envDir = filepath.Dir(path)
	}

	dotenv, err := readDotEnv(filepath.Join(envDir, DotEnvFile))
	if err != nil {
		return domain.Options{}, err
	}

	if err := l.applyEnv(&opts, dotenv); err != nil {
		return domain.Options{}, err
	}

	return opts, nil
}

func (l *Loader) debug(msg string) {
	if l.Logger != nil {
		l.Logger.Debug(msg)
	}
}

func findConfiguration(cwd string) (string, bool) {
	currentDir := cwd

	for {
		for _, name := range FileNames {
			candidate := filepath.Join(currentDir, name)
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				return candidate, true
			}
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return "", false
		}
		currentDir = parentDir
	}
}

func readAndUnmarshalYAML(path string, out any) error {
	data, err := os.ReadFile(path) //nolint:gosec // path is discovered from the working directory
	if err != nil {
		return zerr.With(errors.Join(domain.ErrConfigRead, err), "file", path)
	}

	if err := yaml.Unmarshal(data, out); err != nil {
		return zerr.With(errors.Join(domain.ErrConfigParse, err), "file", path)
	}

	return nil
}

func readDotEnv(path string) (map[string]string, error) {
	values, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, zerr.With(errors.Join(domain.ErrConfigRead, err), "file", path)
	}
	return values, nil
}

// lookup prefers the process environment over .env values.
func (l *Loader) lookup(dotenv map[string]string, key string) (string, bool) {
	if l.LookupEnv != nil {
		if v, ok := l.LookupEnv(key); ok {
			return v, true
		}
	}
	v, ok := dotenv[key]
	return v, ok
}

func (l *Loader) applyEnv(opts *domain.Options, dotenv map[string]string) error {
	boolVars := []struct {
		key string
		set func(bool)
	}{
		{EnvSourcemap, func(v bool) { opts.Sourcemap = &v }},
		{EnvReactRefresh, func(v bool) { opts.ReactRefresh = &v }},
		{EnvResolveNodeModules, func(v bool) { opts.ResolveNodeModules = &v }},
		{EnvMinify, func(v bool) {
			toggle := domain.Off[domain.MinifyOptions]()
			if v {
				toggle = domain.On[domain.MinifyOptions]()
				if opts.Minify != nil && opts.Minify.State == domain.Configured {
					toggle = *opts.Minify
				}
			}
			opts.Minify = &toggle
		}},
	}

	for _, bv := range boolVars {
		raw, ok := l.lookup(dotenv, bv.key)
		if !ok || raw == "" {
			continue
		}
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return zerr.With(zerr.With(errors.Join(domain.ErrInvalidOption, err), "env", bv.key), "value", raw)
		}
		bv.set(v)
	}

	if raw, ok := l.lookup(dotenv, EnvCacheSize); ok && raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return zerr.With(zerr.With(zerr.Wrap(domain.ErrInvalidOption, "cache size must be a non-negative integer"), "env", EnvCacheSize), "value", raw)
		}
		opts.CacheSize = n
	}

	return nil
}

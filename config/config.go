// Package config consolidates the settings of the sksl tools. Values come
// from built-in defaults, a .sksl.yaml file, SKSL_* environment variables
// and command-line flags, each layer overriding the one before it.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/mstoykov/envconfig"
	"github.com/spf13/afero"
	"github.com/spf13/pflag"
	"gopkg.in/guregu/null.v3"
	"gopkg.in/yaml.v3"

	"github.com/dhamidi/sksl/sksl/parser"
	"github.com/dhamidi/sksl/sksl/symbols"
)

// FileName is the name of the configuration file looked up by Load.
const FileName = ".sksl.yaml"

// DefaultExtensions are the file extensions treated as SkSL sources.
var DefaultExtensions = []string{".sksl", ".fp"}

type Config struct {
	MaxParseDepth null.Int    `json:"maxParseDepth" envconfig:"SKSL_MAX_PARSE_DEPTH"`
	Extensions    []string    `json:"extensions" envconfig:"SKSL_EXTENSIONS"`
	ExtraTypes    []string    `json:"extraTypes" envconfig:"SKSL_EXTRA_TYPES"`
	Color         null.Bool   `json:"color" envconfig:"SKSL_COLOR"`
	LogLevel      null.Int    `json:"logLevel" envconfig:"SKSL_LOG_LEVEL"`
	LogFile       null.String `json:"logFile" envconfig:"SKSL_LOG_FILE"`
}

// Default returns the built-in configuration. Its values are not marked
// valid, so any other layer overrides them.
func Default() Config {
	return Config{
		MaxParseDepth: null.NewInt(int64(parser.DefaultMaxDepth), false),
		Extensions:    DefaultExtensions,
		LogLevel:      null.NewInt(0, false),
	}
}

// Apply returns c with every value that is set in cfg copied over.
func (c Config) Apply(cfg Config) Config {
	if cfg.MaxParseDepth.Valid {
		c.MaxParseDepth = cfg.MaxParseDepth
	}
	if len(cfg.Extensions) > 0 {
		c.Extensions = cfg.Extensions
	}
	if len(cfg.ExtraTypes) > 0 {
		c.ExtraTypes = cfg.ExtraTypes
	}
	if cfg.Color.Valid {
		c.Color = cfg.Color
	}
	if cfg.LogLevel.Valid {
		c.LogLevel = cfg.LogLevel
	}
	if cfg.LogFile.Valid {
		c.LogFile = cfg.LogFile
	}
	return c
}

// Validate reports settings that cannot be used.
func (c Config) Validate() error {
	var errs []error
	if c.MaxParseDepth.Valid && c.MaxParseDepth.Int64 <= 0 {
		errs = append(errs, fmt.Errorf("maxParseDepth must be positive, got %d", c.MaxParseDepth.Int64))
	}
	for _, ext := range c.Extensions {
		if !strings.HasPrefix(ext, ".") {
			errs = append(errs, fmt.Errorf("extension %q must start with a dot", ext))
		}
	}
	if c.LogLevel.Valid && c.LogLevel.Int64 < 0 {
		errs = append(errs, fmt.Errorf("logLevel must not be negative, got %d", c.LogLevel.Int64))
	}
	return errors.Join(errs...)
}

// HasExtension reports whether path has one of the configured extensions.
func (c Config) HasExtension(path string) bool {
	exts := c.Extensions
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	return slices.Contains(exts, filepath.Ext(path))
}

// ParserOptions returns the options for one parser. Each call builds a new
// symbol table, so the options must not be shared between parsers.
func (c Config) ParserOptions() []parser.Option {
	opts := []parser.Option{parser.WithSymbols(symbols.New(c.ExtraTypes...))}
	if c.MaxParseDepth.Valid {
		opts = append(opts, parser.WithMaxDepth(int(c.MaxParseDepth.Int64)))
	}
	return opts
}

// fileConfig is the YAML shape of a configuration file.
type fileConfig struct {
	MaxParseDepth *int64   `yaml:"maxParseDepth"`
	Extensions    []string `yaml:"extensions"`
	ExtraTypes    []string `yaml:"extraTypes"`
	Color         *bool    `yaml:"color"`
	LogLevel      *int64   `yaml:"logLevel"`
	LogFile       *string  `yaml:"logFile"`
}

func (f fileConfig) config() Config {
	return Config{
		MaxParseDepth: null.IntFromPtr(f.MaxParseDepth),
		Extensions:    f.Extensions,
		ExtraTypes:    f.ExtraTypes,
		Color:         null.BoolFromPtr(f.Color),
		LogLevel:      null.IntFromPtr(f.LogLevel),
		LogFile:       null.StringFromPtr(f.LogFile),
	}
}

// ReadFile reads a configuration file. A missing file yields an empty
// Config and no error.
func ReadFile(fs afero.Fs, path string) (Config, error) {
	data, err := afero.ReadFile(fs, path)
	if errors.Is(err, os.ErrNotExist) {
		return Config{}, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("reading %s: %w", path, err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return Config{}, fmt.Errorf("parsing %s: %w", path, err)
	}
	return fc.config(), nil
}

// FindFile looks for FileName in dir and its parents and returns the first
// match, or "" when there is none.
func FindFile(fs afero.Fs, dir string) string {
	for {
		candidate := filepath.Join(dir, FileName)
		if ok, _ := afero.Exists(fs, candidate); ok {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// FromEnv reads SKSL_* variables through lookup.
func FromEnv(lookup func(string) (string, bool)) (Config, error) {
	var conf Config
	if err := envconfig.Process("", &conf, lookup); err != nil {
		return Config{}, fmt.Errorf("reading environment: %w", err)
	}
	return conf, nil
}

// BindFlags registers the command-line flags that FromFlags reads.
func BindFlags(flags *pflag.FlagSet) {
	flags.Int("max-depth", parser.DefaultMaxDepth, "maximum nesting depth of statements and expressions")
	flags.StringSlice("ext", DefaultExtensions, "file extensions treated as SkSL sources")
	flags.StringSlice("type", nil, "additional type `name`s known to the parser")
	flags.Bool("color", false, "force coloured output on or off")
}

// FromFlags returns the values of the flags that were set explicitly.
func FromFlags(flags *pflag.FlagSet) (Config, error) {
	var conf Config
	if flags.Changed("max-depth") {
		v, err := flags.GetInt("max-depth")
		if err != nil {
			return conf, err
		}
		conf.MaxParseDepth = null.IntFrom(int64(v))
	}
	if flags.Changed("ext") {
		v, err := flags.GetStringSlice("ext")
		if err != nil {
			return conf, err
		}
		conf.Extensions = v
	}
	if flags.Changed("type") {
		v, err := flags.GetStringSlice("type")
		if err != nil {
			return conf, err
		}
		conf.ExtraTypes = v
	}
	if flags.Changed("color") {
		v, err := flags.GetBool("color")
		if err != nil {
			return conf, err
		}
		conf.Color = null.BoolFrom(v)
	}
	return conf, nil
}

// Load consolidates defaults, the nearest configuration file above dir,
// the environment and flags, in that order. flags may be nil.
func Load(fs afero.Fs, dir string, lookup func(string) (string, bool), flags *pflag.FlagSet) (Config, error) {
	conf := Default()
	if path := FindFile(fs, dir); path != "" {
		fileConf, err := ReadFile(fs, path)
		if err != nil {
			return conf, err
		}
		conf = conf.Apply(fileConf)
	}
	envConf, err := FromEnv(lookup)
	if err != nil {
		return conf, err
	}
	conf = conf.Apply(envConf)
	if flags != nil {
		flagConf, err := FromFlags(flags)
		if err != nil {
			return conf, err
		}
		conf = conf.Apply(flagConf)
	}
	return conf, conf.Validate()
}

// Package config loads pipe parameters from TOML or YAML files. Keys that
// a file leaves out keep their pipe.DefaultConfig values.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chazu/conduit/pkg/pipe"
	"github.com/npillmayer/schuko/tracing"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// tracer writes to trace with key 'config'
func tracer() tracing.Trace {
	return tracing.Select("config")
}

// Format is a configuration file syntax.
type Format string

const (
	TOML Format = "toml"
	YAML Format = "yaml"
)

// ErrUnknownFormat is returned for file extensions other than .toml,
// .yaml and .yml.
var ErrUnknownFormat = errors.New("config: unknown format")

// FormatOf picks the format from a file name's extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return TOML, nil
	case ".yaml", ".yml":
		return YAML, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, filepath.Ext(path))
}

// Load reads the file at path. An empty path returns the defaults.
func Load(path string) (pipe.Config, error) {
	if path == "" {
		return pipe.DefaultConfig(), nil
	}
	format, err := FormatOf(path)
	if err != nil {
		return pipe.Config{}, err
	}
	f, err := os.Open(path)
	if err != nil {
		return pipe.Config{}, fmt.Errorf("config: %w", err)
	}
	defer f.Close()

	cfg, err := Decode(f, format)
	if err != nil {
		return pipe.Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	tracer().Infof("loaded %s: size index %d, detail %d, length %g", path, cfg.SizeIndex, cfg.Detail, cfg.Length)
	return cfg, nil
}

// Decode reads a configuration in the given format on top of the defaults
// and validates the result. Unknown keys are errors.
func Decode(r io.Reader, format Format) (pipe.Config, error) {
	cfg := pipe.DefaultConfig()
	var err error
	switch format {
	case TOML:
		err = toml.NewDecoder(r).DisallowUnknownFields().Decode(&cfg)
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			err = fmt.Errorf("%w\n%s", err, strict.String())
		}
	case YAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		err = dec.Decode(&cfg)
		if errors.Is(err, io.EOF) {
			// An empty document leaves the defaults.
			err = nil
		}
	default:
		return pipe.Config{}, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	if err != nil {
		return pipe.Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return pipe.Config{}, err
	}
	return cfg, nil
}

// Encode writes cfg in the given format.
func Encode(w io.Writer, cfg pipe.Config, format Format) error {
	var buf bytes.Buffer
	switch format {
	case TOML:
		if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
			return err
		}
	case YAML:
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return err
		}
		if err := enc.Close(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	_, err := w.Write(buf.Bytes())
	return err
}

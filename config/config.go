// Package config holds the parameters of a run, which may be loaded from a YAML file.
package config

import (
	"bytes"
	"io"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/brunokim/sasp/errors"
	"github.com/brunokim/sasp/resolve"
)

// Modes of presenting models.
const (
	// Auto prints every model without stopping.
	Auto = "auto"
	// Step waits for confirmation before searching the next model.
	Step = "step"
)

// Config is the set of run parameters.
type Config struct {
	// Verbosity of logs: 0 for warnings, 1 for info, 2 or more for debug.
	Verbosity int    `json:"verbosity" yaml:"verbosity" validate:"gte=0"`
	Mode      string `json:"mode" yaml:"mode" validate:"oneof=auto step"`
	// Models to compute, or 0 for all.
	Models        int  `json:"models" yaml:"models" validate:"gte=0"`
	Justification bool `json:"justification" yaml:"justification"`
	HideCheck     bool `json:"hide_check" yaml:"hide_check"`
	Abducibles    bool `json:"abducibles" yaml:"abducibles"`
	OccursCheck   bool `json:"occurs_check" yaml:"occurs_check"`
	// Maximum number of resolver steps, or 0 for no limit.
	IterLimit     int    `json:"iter_limit" yaml:"iter_limit" validate:"gte=0"`
	NegationLimit int    `json:"negation_limit" yaml:"negation_limit" validate:"gt=0"`
	DebugFile     string `json:"debug_file" yaml:"debug_file"`
	MetricsFile   string `json:"metrics_file" yaml:"metrics_file"`
}

// Default returns the parameters used when none is given.
func Default() Config {
	return Config{
		Mode:          Auto,
		Models:        1,
		HideCheck:     true,
		OccursCheck:   true,
		NegationLimit: 64,
	}
}

var validate = validator.New()

// Validate returns an InvalidArgument error if any parameter is out of range.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.InvalidArgument, err)
	}
	return nil
}

// Load reads a YAML file over the default parameters, and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrap(errors.InvalidArgument, err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && err != io.EOF {
		return cfg, errors.Errorf(errors.InvalidArgument, "%s: %v", path, err)
	}
	return cfg, cfg.Validate()
}

// ResolveOptions returns the resolver options for this configuration. The logger is
// left for the caller to set.
func (c Config) ResolveOptions() resolve.Options {
	return resolve.Options{
		OccursCheck:   c.OccursCheck,
		IterLimit:     c.IterLimit,
		NegationLimit: c.NegationLimit,
		DebugFilename: c.DebugFile,
	}
}

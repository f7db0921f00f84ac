package container

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-yaml"
)

// EngineOptions configures the resolution pipeline's guard rails, per
// spec section 6. Grounded on the teacher's libs/core/config.go
// YAML-backed configuration struct.
type EngineOptions struct {
	// MaxDepth caps the resolution chain length before
	// ResolutionDepthExceeded is raised. Zero means "use the default".
	MaxDepth int `yaml:"maxDepth" validate:"gte=0"`
	// ResolutionTimeout is loaded and validated (it must not be negative),
	// but the Engine does not read it: no resolution is aborted on elapsed
	// wall-clock time, and no ResolutionTimeout error is ever produced.
	ResolutionTimeout time.Duration `yaml:"resolutionTimeout" validate:"gte=0"`
	// PrototypeCachePath, if non-empty, persists prototype digests across
	// process restarts.
	PrototypeCachePath string `yaml:"prototypeCachePath"`
	// StrictMode is loaded from YAML or KERNEL_STRICT_MODE, but the Engine
	// does not read it: resolution behaves the same whether it is set or not.
	StrictMode bool `yaml:"strictMode"`
}

// DefaultMaxDepth is used when EngineOptions.MaxDepth is zero.
const DefaultMaxDepth = 256

var optionsValidator = validator.New()

// DefaultEngineOptions returns the options a Container uses when none are
// supplied explicitly.
func DefaultEngineOptions() EngineOptions {
	return EngineOptions{
		MaxDepth:          DefaultMaxDepth,
		ResolutionTimeout: 0,
		StrictMode:        false,
	}
}

// LoadEngineOptions reads EngineOptions from a YAML file, applying
// KERNEL_-prefixed environment variable overrides on top, then validates
// the result. A missing MaxDepth/zero value falls back to
// DefaultMaxDepth, mirroring the teacher's config.go default-fallback
// behaviour.
func LoadEngineOptions(path string) (EngineOptions, error) {
	opts := DefaultEngineOptions()

	data, err := os.ReadFile(path)
	if err != nil {
		return EngineOptions{}, fmt.Errorf("read engine options %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return EngineOptions{}, fmt.Errorf("parse engine options %q: %w", path, err)
	}

	applyEnvOverrides(&opts)

	if opts.MaxDepth == 0 {
		opts.MaxDepth = DefaultMaxDepth
	}

	if err := optionsValidator.Struct(opts); err != nil {
		return EngineOptions{}, newKernelError(InvalidDefinition, "EngineOptions", err)
	}

	return opts, nil
}

func applyEnvOverrides(opts *EngineOptions) {
	if v := os.Getenv("KERNEL_STRICT_MODE"); v == "true" {
		opts.StrictMode = true
	}
	if v := os.Getenv("KERNEL_PROTOTYPE_CACHE_PATH"); v != "" {
		opts.PrototypeCachePath = v
	}
}

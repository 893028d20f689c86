// Package config holds the extraction run configuration and the validation
// policy consulted by the transformer. A Config is immutable once built.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"

	dErrors "sirene/pkg/domain-errors"
)

// ValidationMode governs how missing or malformed source data is tolerated.
type ValidationMode string

const (
	// ModeStrict aborts the transformation on any missing required field.
	ModeStrict ValidationMode = "strict"

	// ModeLenient degrades missing data to defaults and keeps going.
	ModeLenient ValidationMode = "lenient"

	// ModePermissive is lenient and also drops values that fail range rules.
	ModePermissive ValidationMode = "permissive"
)

// Strict reports whether a missing required field fails the run.
func (m ValidationMode) Strict() bool { return m == ModeStrict }

// SuppressRangeErrors reports whether range violations are dropped instead of raised.
func (m ValidationMode) SuppressRangeErrors() bool { return m == ModePermissive }

// CoordinatePrecision labels how precise converted coordinates are.
type CoordinatePrecision string

const (
	PrecisionRooftop      CoordinatePrecision = "rooftop"
	PrecisionInterpolated CoordinatePrecision = "interpolated"
	PrecisionApproximate  CoordinatePrecision = "approximate"
	PrecisionUnknown      CoordinatePrecision = "unknown"
)

// Config is the configuration surface consumed by the extraction core.
type Config struct {
	ValidationMode      ValidationMode      `env:"VALIDATION_MODE" envDefault:"lenient" validate:"oneof=strict lenient permissive"`
	IncludePersonalData bool                `env:"INCLUDE_PERSONAL_DATA" envDefault:"false"`
	CoordinatePrecision CoordinatePrecision `env:"COORDINATE_PRECISION" envDefault:"unknown" validate:"oneof=rooftop interpolated approximate unknown"`
	MaxRetries          int                 `env:"MAX_RETRIES" envDefault:"3" validate:"gte=0"`
	TimeoutSeconds      int                 `env:"TIMEOUT_SECONDS" envDefault:"30" validate:"gt=0"`
}

// Timeout returns TimeoutSeconds as a duration.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Option configures a Config.
type Option func(*Config)

func WithValidationMode(mode ValidationMode) Option {
	return func(c *Config) { c.ValidationMode = mode }
}

func WithPersonalData(include bool) Option {
	return func(c *Config) { c.IncludePersonalData = include }
}

func WithCoordinatePrecision(p CoordinatePrecision) Option {
	return func(c *Config) { c.CoordinatePrecision = p }
}

func WithMaxRetries(n int) Option {
	return func(c *Config) { c.MaxRetries = n }
}

func WithTimeoutSeconds(n int) Option {
	return func(c *Config) { c.TimeoutSeconds = n }
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		ValidationMode:      ModeLenient,
		CoordinatePrecision: PrecisionUnknown,
		MaxRetries:          3,
		TimeoutSeconds:      30,
	}
}

// New builds a Config from the defaults plus opts and validates it.
func New(opts ...Option) (Config, error) {
	cfg := Default()
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// FromEnv loads a Config from SIRENE_* environment variables.
func FromEnv() (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: "SIRENE_"}); err != nil {
		return Config{}, dErrors.Wrap(err, dErrors.CodeInvalidInput, "load extraction config")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks every field against its rule.
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid extraction config")
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %s=%s", fe.Field(), fe.Tag(), fe.Param()))
	}
	first := fieldErrs[0]
	return dErrors.Validation(first.Field(), first.Value(), "invalid extraction config: "+strings.Join(msgs, "; "))
}

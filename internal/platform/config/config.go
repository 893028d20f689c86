package config

import (
	"errors"
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"

	extraction "sirene/internal/extraction/config"
	dErrors "sirene/pkg/domain-errors"
	pstrings "sirene/pkg/platform/strings"
)

// Server captures process level configuration.
type Server struct {
	Addr       string `env:"SIRENE_ADDR" envDefault:":8080" validate:"required"`
	APIBaseURL string `env:"SIRENE_API_BASE_URL" envDefault:"https://api.insee.fr/api-sirene/3.11" validate:"required,url"`
	APIKey     string `env:"SIRENE_API_KEY"`

	// ActivityLabelsFile is an optional scheme,code,label CSV used to label
	// activity classifications.
	ActivityLabelsFile string `env:"SIRENE_ACTIVITY_LABELS_FILE" validate:"omitempty,file"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn warning error"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text" validate:"oneof=text json"`

	KafkaBrokers []string `env:"KAFKA_BROKERS" envSeparator:","`
	KafkaTopic   string   `env:"KAFKA_TOPIC" envDefault:"sirene.extractions" validate:"required"`

	Extraction extraction.Config `envPrefix:"SIRENE_"`
}

// PublishEnabled reports whether finished results go to Kafka.
func (s Server) PublishEnabled() bool {
	return len(s.KafkaBrokers) > 0
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() (Server, error) {
	return Parse(env.Options{})
}

// Parse loads a Server config with explicit env options. Tests pass
// Environment to avoid touching the process env.
func Parse(opts env.Options) (Server, error) {
	var cfg Server
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Server{}, dErrors.Wrap(err, dErrors.CodeInvalidInput, "load server config")
	}
	cfg.KafkaBrokers = pstrings.DedupeAndTrim(cfg.KafkaBrokers)
	if len(cfg.KafkaBrokers) == 0 {
		cfg.KafkaBrokers = nil
	}
	if err := cfg.Validate(); err != nil {
		return Server{}, err
	}
	return cfg, nil
}

var validate = validator.New()

// Validate checks the server fields and the embedded extraction config.
func (s Server) Validate() error {
	if err := validate.StructExcept(s, "Extraction"); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid server config")
		}
		first := fieldErrs[0]
		return dErrors.Validation(first.Field(), first.Value(),
			fmt.Sprintf("invalid server config: %s failed %s", first.Field(), first.Tag()))
	}
	return s.Extraction.Validate()
}

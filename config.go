package qexp

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const (
	PlaceholderToken = "Insert Token Here"
	PlaceholderURL   = "https://quantumexperience.ng.bluemix.net/api"
)

/*
Config holds the settings used to pick a backend and submit a job.
The defaults run everything against the local simulator, so a machine
without credentials can still execute both experiments.
*/
type Config struct {
	Local        bool          `mapstructure:"local"`
	Simulator    bool          `mapstructure:"simulator"`
	Shots        int           `mapstructure:"shots" validate:"gte=1"`
	MaxCredits   int           `mapstructure:"max_credits" validate:"gte=1"`
	DeviceQubits int           `mapstructure:"device_qubits" validate:"gte=1"`
	APIToken     string        `mapstructure:"api_token" validate:"required"`
	URL          string        `mapstructure:"url" validate:"required"`
	Timeout      time.Duration `mapstructure:"timeout" validate:"gt=0"`
	PollInterval time.Duration `mapstructure:"poll_interval" validate:"gt=0"`
	Retries      int           `mapstructure:"retries" validate:"gte=1"`
}

func NewConfig() *Config {
	return &Config{
		Local:        true,
		Simulator:    true,
		Shots:        1024,
		MaxCredits:   3,
		DeviceQubits: 5,
		APIToken:     PlaceholderToken,
		URL:          PlaceholderURL,
		Timeout:      2 * time.Minute,
		PollInterval: 2 * time.Second,
		Retries:      3,
	}
}

// SetDefaults registers the defaults of NewConfig on v.
func SetDefaults(v *viper.Viper) {
	def := NewConfig()
	v.SetDefault("local", def.Local)
	v.SetDefault("simulator", def.Simulator)
	v.SetDefault("shots", def.Shots)
	v.SetDefault("max_credits", def.MaxCredits)
	v.SetDefault("device_qubits", def.DeviceQubits)
	v.SetDefault("timeout", def.Timeout)
	v.SetDefault("poll_interval", def.PollInterval)
	v.SetDefault("retries", def.Retries)
}

/*
LoadConfig reads the configuration from an optional file, QEXP_* environment
variables and whatever flags were bound to v. An explicit file that cannot be
read is an error. A missing default file is not.

Remote credentials are only consulted when not running locally. When they are
absent the placeholder values are used and a warning is logged, so the run
proceeds and fails at submission with a clear error from the service.
*/
func LoadConfig(v *viper.Viper, file string) (*Config, error) {
	SetDefaults(v)

	v.SetEnvPrefix("qexp")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	// credentials have no default, so the env lookup has to be bound explicitly
	_ = v.BindEnv("api_token")
	_ = v.BindEnv("url")

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("qconfig")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.qexp")
		v.AddConfigPath("/etc/qexp")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, &ConfigError{Field: "file", Err: err}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, &ConfigError{Field: "decode", Err: err}
	}

	if !cfg.Local {
		cfg.applyCredentialFallback()
	} else {
		if cfg.APIToken == "" {
			cfg.APIToken = PlaceholderToken
		}
		if cfg.URL == "" {
			cfg.URL = PlaceholderURL
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (cfg *Config) applyCredentialFallback() {
	if cfg.APIToken == "" || cfg.URL == "" {
		log.Warn("remote credentials not configured, using placeholders",
			"token_set", cfg.APIToken != "",
			"url_set", cfg.URL != "",
		)
	}
	if cfg.APIToken == "" {
		cfg.APIToken = PlaceholderToken
	}
	if cfg.URL == "" {
		cfg.URL = PlaceholderURL
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterStructValidation(remoteURLValidation, Config{})
	return v
}

// The URL is only dialed for remote runs, so a local run ignores its shape.
func remoteURLValidation(sl validator.StructLevel) {
	cfg := sl.Current().Interface().(Config)
	if cfg.Local {
		return
	}
	if err := sl.Validator().Var(cfg.URL, "url"); err != nil {
		sl.ReportError(cfg.URL, "URL", "URL", "url", "")
	}
}

// Validate checks the numeric bounds, and the URL when running remotely,
// returning a *ConfigError.
func (cfg *Config) Validate() error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return &ConfigError{
			Field: fe.Field(),
			Err:   fmt.Errorf("failed %q check with value %v", fe.Tag(), fe.Value()),
		}
	}

	return &ConfigError{Field: "validate", Err: err}
}

package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Config holds all the settings of an application instance.
type Config struct {
	LogLevel  string `hcl:"log_level,optional" toml:"log_level" validate:"oneof=debug info warn error"`
	LogFormat string `hcl:"log_format,optional" toml:"log_format" validate:"oneof=text json"`

	// Workers bounds how many documents are evaluated in parallel.
	Workers int `hcl:"workers,optional" toml:"workers" validate:"gte=1,lte=256"`

	// HTTPPort serves /health and /metrics. 0 disables the server.
	HTTPPort int `hcl:"http_port,optional" toml:"http_port" validate:"gte=0,lte=65535"`

	// NotifyURL is a socket.io server scene events are published to.
	NotifyURL string `hcl:"notify_url,optional" toml:"notify_url" validate:"omitempty,url"`

	HistoryLimit int `hcl:"history_limit,optional" toml:"history_limit" validate:"gte=1,lte=10000"`

	SimStart float64 `hcl:"sim_start,optional" toml:"sim_start"`
	SimStop  float64 `hcl:"sim_stop,optional" toml:"sim_stop" validate:"gtefield=SimStart"`
	SimStep  float64 `hcl:"sim_step,optional" toml:"sim_step" validate:"gt=0"`

	CodegenPackage string `hcl:"codegen_package,optional" toml:"codegen_package" validate:"required"`
	CodegenFunc    string `hcl:"codegen_func,optional" toml:"codegen_func" validate:"required"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		LogLevel:       "info",
		LogFormat:      "text",
		Workers:        4,
		HistoryLimit:   32,
		SimStart:       0,
		SimStop:        10,
		SimStep:        0.01,
		CodegenPackage: "scene",
		CodegenFunc:    "Eval",
	}
}

var validate = validator.New()

// Validate checks every field and reports all problems at once.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, len(verrs))
	for i, fe := range verrs {
		msgs[i] = fmt.Sprintf("%s: failed %q (%v)", fe.Field(), fe.Tag(), fe.Value())
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
}

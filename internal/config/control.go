package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// ControlConfig is the environment of the esctl control utility.
type ControlConfig struct {
	Scheme       string `envconfig:"ES_SCHEME" default:"http"`
	Host         string `envconfig:"ES_HOST" required:"true"`
	Port         int    `envconfig:"ES_PORT" required:"true"`
	Username     string `envconfig:"ES_USERNAME"`
	Password     string `envconfig:"ES_PASSWORD"`
	Index        string `envconfig:"ES_INDEX"`
	ControlIndex string `envconfig:"ES_CONTROL_INDEX"`
	LogFile      string `envconfig:"LOGFILE_PATH"`
	Debug        bool   `envconfig:"DEBUG"`

	// Command and Argument are used when esctl runs without arguments.
	Command  string `envconfig:"CONTROL_COMMAND"`
	Argument string `envconfig:"CONTROL_ARGUMENT"`
}

// LoadControl reads the control utility environment.
func LoadControl() (ControlConfig, error) {
	var c ControlConfig
	if err := envconfig.Process("", &c); err != nil {
		return ControlConfig{}, fmt.Errorf("processing env config: %w", err)
	}
	// required only checks presence; an empty ES_HOST still gets through.
	if c.Host == "" {
		return ControlConfig{}, fmt.Errorf("ES_HOST is empty")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return ControlConfig{}, fmt.Errorf("ES_PORT out of range: %d", c.Port)
	}
	return c, nil
}

// Package config loads the application configuration from file and
// environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"serialterm/internal/codec"
	"serialterm/internal/model"
)

// Config represents the application configuration
type Config struct {
	Serial  SerialConfig  `mapstructure:"serial"`
	Display DisplayConfig `mapstructure:"display"`
	Send    SendConfig    `mapstructure:"send"`
	Capture CaptureConfig `mapstructure:"capture"`
	Monitor MonitorConfig `mapstructure:"monitor"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// SerialConfig represents the serial link configuration
type SerialConfig struct {
	Port        string        `mapstructure:"port"`
	BaudRate    int           `mapstructure:"baud_rate"`
	DataBits    int           `mapstructure:"data_bits"`
	Parity      string        `mapstructure:"parity"`
	StopBits    string        `mapstructure:"stop_bits"`
	FlowControl string        `mapstructure:"flow_control"`
	ReadTimeout time.Duration `mapstructure:"read_timeout"`
}

// DisplayConfig represents the terminal rendering configuration
type DisplayConfig struct {
	Format     string `mapstructure:"format"`
	Timestamps bool   `mapstructure:"timestamps"`
	ShowTiming bool   `mapstructure:"show_timing"`
	Filter     string `mapstructure:"filter"`
}

// SendConfig represents the outgoing data configuration
type SendConfig struct {
	Format         string        `mapstructure:"format"`
	LineEnding     string        `mapstructure:"line_ending"`
	RepeatInterval time.Duration `mapstructure:"repeat_interval"`
}

// CaptureConfig represents the session capture configuration
type CaptureConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Path       string `mapstructure:"path"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
}

// MonitorConfig represents the websocket monitor configuration
type MonitorConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Output     string `mapstructure:"output"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
}

// Load loads configuration from the given file (optional) and environment
// variables. A missing config file is not an error; defaults and the
// environment are enough to run.
func Load(path string) (*Config, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("serialterm")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/serialterm")
	}

	// Environment variable support
	v.SetEnvPrefix("SERIALTERM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// A config file is optional when none was named explicitly.
	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Serial defaults
	v.SetDefault("serial.baud_rate", 115200)
	v.SetDefault("serial.data_bits", 8)
	v.SetDefault("serial.parity", "none")
	v.SetDefault("serial.stop_bits", "1")
	v.SetDefault("serial.flow_control", "none")
	v.SetDefault("serial.read_timeout", "100ms")

	// Display defaults
	v.SetDefault("display.format", "ascii")
	v.SetDefault("display.timestamps", false)
	v.SetDefault("display.show_timing", false)
	v.SetDefault("display.filter", "")

	// Send defaults
	v.SetDefault("send.format", "ascii")
	v.SetDefault("send.line_ending", "none")
	v.SetDefault("send.repeat_interval", "1s")

	// Capture defaults
	v.SetDefault("capture.enabled", false)
	v.SetDefault("capture.path", "./serialterm-capture.log")
	v.SetDefault("capture.max_size", 100)
	v.SetDefault("capture.max_backups", 3)
	v.SetDefault("capture.max_age", 28)
	v.SetDefault("capture.compress", false)

	// Monitor defaults
	v.SetDefault("monitor.enabled", false)
	v.SetDefault("monitor.addr", "127.0.0.1:8790")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.output", "stderr")
	v.SetDefault("logging.max_size", 100)
	v.SetDefault("logging.max_backups", 3)
	v.SetDefault("logging.max_age", 28)
	v.SetDefault("logging.compress", true)
}

// validate validates the configuration
func validate(config *Config) error {
	params := config.Parameters()
	if params.Port == "" {
		// The port may be chosen later on the command line, so an empty
		// port name alone is not a validation error here.
		params.Port = "-"
	}
	if err := params.Validate(); err != nil {
		return err
	}

	switch model.Format(config.Display.Format) {
	case model.FormatASCII, model.FormatHex, model.FormatBoth:
	default:
		return fmt.Errorf("display.format must be one of: ascii, hex, both")
	}

	switch model.Format(config.Send.Format) {
	case model.FormatASCII, model.FormatHex:
	default:
		return fmt.Errorf("send.format must be one of: ascii, hex")
	}

	if !codec.LineEnding(config.Send.LineEnding).Valid() {
		return fmt.Errorf("send.line_ending must be one of: none, nl, cr, nlcr")
	}

	if config.Send.RepeatInterval <= 0 {
		return fmt.Errorf("send.repeat_interval must be positive")
	}

	validLevels := []string{"debug", "info", "warn", "error", "fatal"}
	isValidLevel := false
	for _, level := range validLevels {
		if config.Logging.Level == level {
			isValidLevel = true
			break
		}
	}
	if !isValidLevel {
		return fmt.Errorf("logging.level must be one of: %v", validLevels)
	}

	return nil
}

// Parameters builds the connection parameters from the serial section
func (c *Config) Parameters() model.ConnectionParameters {
	return model.ConnectionParameters{
		Port:        c.Serial.Port,
		BaudRate:    c.Serial.BaudRate,
		DataBits:    c.Serial.DataBits,
		Parity:      model.Parity(c.Serial.Parity),
		StopBits:    model.StopBits(c.Serial.StopBits),
		FlowControl: model.FlowControl(c.Serial.FlowControl),
	}
}

// LineEnding returns the configured line-ending policy
func (c *Config) LineEnding() codec.LineEnding {
	return codec.LineEnding(c.Send.LineEnding)
}

// DisplayFormat returns the configured display representation
func (c *Config) DisplayFormat() model.Format {
	return model.Format(c.Display.Format)
}

// SendFormat returns the configured outgoing encoding
func (c *Config) SendFormat() model.Format {
	return model.Format(c.Send.Format)
}

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Widget positions recognized by the embed layer.
const (
	PositionBottomRight = "bottom-right"
	PositionBottomLeft  = "bottom-left"
)

// Config holds the widget configuration
type Config struct {
	Widget    WidgetConfig    `mapstructure:"widget"`
	Assistant AssistantConfig `mapstructure:"assistant"`
	Audio     AudioConfig     `mapstructure:"audio"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// WidgetConfig holds presentation options for the embedded widget
type WidgetConfig struct {
	Position         string `mapstructure:"position"`
	PrimaryColor     string `mapstructure:"primary_color"`
	TextColor        string `mapstructure:"text_color"`
	WelcomeMessage   string `mapstructure:"welcome_message"`
	InputPlaceholder string `mapstructure:"input_placeholder"`
	ButtonIcon       string `mapstructure:"button_icon"`
	ButtonTooltip    string `mapstructure:"button_tooltip"`
	HeaderTitle      string `mapstructure:"header_title"`
}

// AssistantConfig identifies the remote assistant and its endpoint
type AssistantConfig struct {
	ID      string `mapstructure:"id"`
	BaseURL string `mapstructure:"base_url"`
}

// AudioConfig holds capture parameters for voice input
type AudioConfig struct {
	SampleRate      int  `mapstructure:"sample_rate"`
	TimesliceMillis int  `mapstructure:"timeslice_millis"`
	ProcessorBuffer int  `mapstructure:"processor_buffer"`
	EchoCancel      bool `mapstructure:"echo_cancel"`
	NoiseSuppress   bool `mapstructure:"noise_suppress"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

// Load loads the configuration from the config.yaml file.
// CONFIG_PATH overrides the default lookup in the working directory.
func Load() (*Config, error) {
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		viper.SetConfigFile(path)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
	}

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("widget.position", PositionBottomRight)
	viper.SetDefault("widget.primary_color", "#2563eb")
	viper.SetDefault("widget.text_color", "#ffffff")
	viper.SetDefault("widget.welcome_message", "Hi! I can help you book a table. When would you like to visit?")
	viper.SetDefault("widget.input_placeholder", "Type a message...")
	viper.SetDefault("widget.button_icon", "💬")
	viper.SetDefault("widget.button_tooltip", "Chat with us")
	viper.SetDefault("widget.header_title", "Reservations")
	viper.SetDefault("audio.sample_rate", 44100)
	viper.SetDefault("audio.timeslice_millis", 1000)
	viper.SetDefault("audio.processor_buffer", 4096)
	viper.SetDefault("audio.echo_cancel", true)
	viper.SetDefault("audio.noise_suppress", true)
	viper.SetDefault("logging.level", "info")
}

// Validate checks the configuration for values the widget cannot run with.
func (c *Config) Validate() error {
	if err := c.Assistant.Validate(); err != nil {
		return fmt.Errorf("assistant config: %w", err)
	}
	if err := c.Widget.Validate(); err != nil {
		return fmt.Errorf("widget config: %w", err)
	}
	if err := c.Audio.Validate(); err != nil {
		return fmt.Errorf("audio config: %w", err)
	}
	return nil
}

// Validate validates assistant configuration. The assistant id is the one
// required option: without it there is no conversation to correlate.
func (a *AssistantConfig) Validate() error {
	if a.ID == "" {
		return fmt.Errorf("id is required")
	}
	if a.BaseURL != "" && !strings.HasPrefix(a.BaseURL, "http://") && !strings.HasPrefix(a.BaseURL, "https://") {
		return fmt.Errorf("base_url must be an http(s) URL, got %q", a.BaseURL)
	}
	return nil
}

// Validate validates widget presentation options.
func (w *WidgetConfig) Validate() error {
	if w.Position != PositionBottomRight && w.Position != PositionBottomLeft {
		return fmt.Errorf("position must be %q or %q, got %q", PositionBottomRight, PositionBottomLeft, w.Position)
	}
	return nil
}

// Validate validates audio capture parameters.
func (a *AudioConfig) Validate() error {
	if a.SampleRate <= 0 {
		return fmt.Errorf("sample_rate must be positive, got %d", a.SampleRate)
	}
	if a.TimesliceMillis <= 0 {
		return fmt.Errorf("timeslice_millis must be positive, got %d", a.TimesliceMillis)
	}
	if a.ProcessorBuffer < 256 {
		return fmt.Errorf("processor_buffer must be at least 256 samples, got %d", a.ProcessorBuffer)
	}
	return nil
}

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds all settings for one translation run.
type Config struct {
	TargetLanguage string `mapstructure:"target_language"`
	BatchSize      int    `mapstructure:"batch_size"`
	InputDoc       string `mapstructure:"input_doc"`
	OutputDoc      string `mapstructure:"output_doc"`
	BatchDelay     int    `mapstructure:"batch_delay"` // seconds between batches
	Verbose        bool   `mapstructure:"verbose"`

	Provider       string  `mapstructure:"provider"`
	Model          string  `mapstructure:"model"`
	APIEndpoint    string  `mapstructure:"api_endpoint"`
	APIKey         string  `mapstructure:"api_key"`
	Temperature    float64 `mapstructure:"temperature"`
	RequestTimeout int     `mapstructure:"request_timeout"` // seconds
}

// LoadConfig loads configuration from the given file, or from
// .docx-translator.yaml in the working directory or home directory.
// A missing config file is not an error: defaults apply.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}

		v.AddConfigPath(".")
		v.AddConfigPath(home)
		v.SetConfigName(".docx-translator")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		missing := errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist)
		if !missing {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// No config file anywhere: defaults carry the run.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// setDefaults applies the documented defaults
func setDefaults(v *viper.Viper) {
	v.SetDefault("target_language", "Hindi")
	v.SetDefault("batch_size", 2)
	v.SetDefault("input_doc", "input.docx")
	v.SetDefault("output_doc", "translated_paper.docx")
	v.SetDefault("batch_delay", 1)
	v.SetDefault("verbose", false)
	v.SetDefault("provider", "ollama")
	v.SetDefault("model", "mistral:7b")
	v.SetDefault("temperature", 0.3)
	v.SetDefault("request_timeout", 300)
}

// Validate checks settings the pipeline depends on.
func (c *Config) Validate() error {
	if c.BatchSize < 1 {
		return fmt.Errorf("batch_size must be at least 1, got %d", c.BatchSize)
	}
	if c.BatchDelay < 0 {
		return fmt.Errorf("batch_delay must not be negative, got %d", c.BatchDelay)
	}
	if c.TargetLanguage == "" {
		return errors.New("target_language must not be empty")
	}
	return nil
}

// ResolveInputPath locates the input document, falling back through the
// working directory and the desktop when the configured path does not
// exist. The run never starts without an input file.
func (c *Config) ResolveInputPath() (string, error) {
	if _, err := os.Stat(c.InputDoc); err == nil {
		return c.InputDoc, nil
	}

	cwd, _ := os.Getwd()
	home, _ := os.UserHomeDir()

	candidates := []string{
		filepath.Join(cwd, c.InputDoc),
		filepath.Join(cwd, "input.docx"),
		filepath.Join(home, "Desktop", c.InputDoc),
		filepath.Join(home, "Desktop", "input.docx"),
	}

	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}

	return "", fmt.Errorf("input document not found at %s or any fallback location %v",
		c.InputDoc, candidates)
}

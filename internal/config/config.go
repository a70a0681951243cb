package config

import (
	"context"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type contextKey string

const configKey contextKey = "config"

// Config holds all application configuration
type Config struct {
	// Core settings
	WorkDir     string `yaml:"work_dir"`
	Concurrency int    `yaml:"concurrency"`

	// Agent planning settings
	Agent AgentConfig `yaml:"agent"`

	// FFmpeg settings
	FFmpeg FFmpegConfig `yaml:"ffmpeg"`

	// Voice / narration settings
	Voice VoiceConfig `yaml:"voice"`

	// Semantic review settings
	Review ReviewConfig `yaml:"review"`
}

type AgentConfig struct {
	WeightsPath         string  `yaml:"weights_path"`
	Candidates          int     `yaml:"candidates"`
	ConfidenceThreshold float64 `yaml:"confidence_threshold"`
	PQSGate             float64 `yaml:"pqs_gate"`
	DurationTolerance   float64 `yaml:"duration_tolerance"`
}

type FFmpegConfig struct {
	Threads int    `yaml:"threads"`
	Preset  string `yaml:"preset"`
	CRF     int    `yaml:"crf"`
}

type VoiceConfig struct {
	Volume float64 `yaml:"volume"`
}

type ReviewConfig struct {
	Enabled bool   `yaml:"enabled" env:"REVIEW_ENABLED"`
	Model   string `yaml:"model" env:"REVIEW_MODEL"`
	BaseURL string `yaml:"base_url"`
}

// Load reads configuration from file or returns defaults
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	if path == "" {
		path = findConfigFile()
	}

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes configuration to file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

func defaultConfig() *Config {
	return &Config{
		WorkDir:     "./work",
		Concurrency: 4,
		Agent: AgentConfig{
			WeightsPath:         "./viral_scoring_weights.json",
			Candidates:          3,
			ConfidenceThreshold: 0.4,
			PQSGate:             0.45,
			DurationTolerance:   0.10,
		},
		FFmpeg: FFmpegConfig{
			Threads: 0,
			Preset:  "medium",
			CRF:     23,
		},
		Voice: VoiceConfig{
			Volume: 1.0,
		},
		Review: ReviewConfig{
			Enabled: false,
			Model:   "gpt-4.1-mini",
		},
	}
}

func findConfigFile() string {
	candidates := []string{
		"./config.yaml",
		"./config.yml",
		filepath.Join(os.Getenv("HOME"), ".vidkit", "config.yaml"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// WithConfig stores config in context
func WithConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey, cfg)
}

// FromContext retrieves config from context
func FromContext(ctx context.Context) *Config {
	if cfg, ok := ctx.Value(configKey).(*Config); ok {
		return cfg
	}
	return defaultConfig()
}

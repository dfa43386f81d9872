package utils

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"easytavern/llm"
)

// Config is the persisted application settings blob: provider catalogs,
// chat defaults and the image generation policy
type Config struct {
	Providers       []llm.TextProvider `json:"providers"`
	ChatSettings    ChatSettings       `json:"chat_settings"`
	ImageGeneration ImageGeneration    `json:"image_generation"`
	UI              UIConfig           `json:"ui"`
	Data            DataConfig         `json:"data"`
}

// ChatSettings are the defaults applied to every chat turn
type ChatSettings struct {
	ActiveProvider   string  `json:"active_provider"`
	ActiveModel      string  `json:"active_model"`
	Temperature      float64 `json:"temperature"`
	MaxTokens        int     `json:"max_tokens"`
	TopP             float64 `json:"top_p"`
	FrequencyPenalty float64 `json:"frequency_penalty"`
	PresencePenalty  float64 `json:"presence_penalty"`
	SystemPrompt     string  `json:"system_prompt"`
}

// ImageGeneration is the scene image policy configuration
type ImageGeneration struct {
	Enabled           bool                `json:"enabled"`
	ActiveProvider    string              `json:"active_provider"`
	Frequency         int                 `json:"generation_frequency"` // 0 = off, 1-10 turns
	Style             llm.ImageStyle      `json:"style"`
	CustomStylePrompt string              `json:"custom_style_prompt,omitempty"`
	NegativePrompt    string              `json:"negative_prompt"`
	Providers         []llm.ImageProvider `json:"providers"`
}

// UIConfig holds window preferences
type UIConfig struct {
	WindowWidth  int `json:"window_width"`
	WindowHeight int `json:"window_height"`
}

// DataConfig holds storage locations
type DataConfig struct {
	DBPath  string `json:"db_path"`
	DataDir string `json:"data_dir"` // chats and generated images live under here
}

// LoadConfig loads configuration from file
func LoadConfig(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if config.Data.DBPath != "" {
		config.Data.DBPath = expandPath(config.Data.DBPath)
	}
	if config.Data.DataDir != "" {
		config.Data.DataDir = expandPath(config.Data.DataDir)
	}

	return &config, nil
}

// SaveConfig saves configuration to file
func SaveConfig(configPath string, config *Config) error {
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// expandPath expands ~ and relative paths
func expandPath(path string) string {
	if len(path) == 0 {
		return path
	}

	if path[0] == '~' {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, path[1:])
		}
	}

	absPath, err := filepath.Abs(path)
	if err == nil {
		return absPath
	}

	return path
}

// GetConfigPath returns the default config path
func GetConfigPath() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "./config/config.json"
	}

	return filepath.Join(configDir, "easytavern", "config.json")
}

// DefaultConfig returns the settings used on first run
func DefaultConfig() *Config {
	return &Config{
		Providers: llm.DefaultTextProviders(),
		ChatSettings: ChatSettings{
			ActiveProvider:   "ollama",
			ActiveModel:      "llama3.2",
			Temperature:      0.7,
			MaxTokens:        2048,
			TopP:             0.9,
			FrequencyPenalty: 0,
			PresencePenalty:  0,
			SystemPrompt:     "You are a helpful assistant.",
		},
		ImageGeneration: ImageGeneration{
			Enabled:        false,
			ActiveProvider: "automatic1111",
			Frequency:      2,
			Style:          llm.StyleGraphicNovel,
			NegativePrompt: "blurry, low quality, distorted, deformed",
			Providers:      llm.DefaultImageProviders(),
		},
		UI: UIConfig{
			WindowWidth:  1200,
			WindowHeight: 800,
		},
		Data: DataConfig{
			DBPath:  "./data/easytavern.db",
			DataDir: "./data",
		},
	}
}

// EnsureDefaultConfig creates a default config file if it doesn't exist
func EnsureDefaultConfig() (string, error) {
	configPath := GetConfigPath()

	if _, err := os.Stat(configPath); err == nil {
		return configPath, nil
	}

	if err := SaveConfig(configPath, DefaultConfig()); err != nil {
		return "", err
	}

	return configPath, nil
}

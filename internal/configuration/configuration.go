package configuration

import (
	"encoding/json"
	"os"
	"path/filepath"

	"dario.cat/mergo"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"

	"github.com/promptdeck/promptdeck/internal/file"
)

var defaultConfig = Config{
	OpenaiAPIKey:   "API_KEY",
	OpenaiAPIHost:  "https://api.openai.com/v1",
	EngineAPIKey:   "API_KEY",
	EngineAPIHost:  "https://api.imagine.engine",
	RequestTimeout: 60,
	Database:       "~/.config/promptdeck/promptdeck.db",

	Chat: &ChatConfig{
		DefaultModel: "gpt-4o-mini",
	},

	Image: &ImageConfig{
		DefaultModel:   "proteus",
		NumberOfImages: 4,
		DefaultSteps:   4,
	},
}

// Config holds configuration for the promptdeck tool.
type Config struct {
	OpenaiAPIKey   string `json:"openai_api_key"`
	OpenaiAPIHost  string `json:"openai_api_host"`
	EngineAPIKey   string `json:"engine_api_key"`
	EngineAPIHost  string `json:"engine_api_host"`
	RequestTimeout int    `json:"request_timeout"`
	Database       string `json:"database"`

	Chat  *ChatConfig  `json:"chat"`
	Image *ImageConfig `json:"image"`
}

// ChatConfig holds configuration for chats.
type ChatConfig struct {
	// The model used for a new exchange when none is specified.
	DefaultModel string `json:"default_model"`
	// Maps short names to model identifiers.
	ModelAliases map[string]string `json:"model_aliases"`
}

// ImageConfig holds configuration for image generation.
type ImageConfig struct {
	// The engine used when none is specified.
	DefaultModel string `json:"default_model"`
	// How many images to request per generation.
	NumberOfImages int `json:"number_of_images"`
	// Detail steps on the client scale.
	DefaultSteps int `json:"default_steps"`
}

// Parse a configuration file.
func Parse(path string) (*Config, error) {
	path, err := file.ExpandPath(path)
	if err != nil {
		return nil, errors.Wrap(err, "expanding path")
	}

	if err := initializeIfNotPresent(path); err != nil {
		return nil, errors.Wrap(err, "initializing configuration")
	}
	bytes, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading file")
	}

	config := &Config{}
	if err = json.Unmarshal(bytes, config); err != nil {
		return nil, errors.Wrap(err, "unmarshaling into config")
	}
	// Fill any field the user's file leaves unset.
	if err := mergo.Merge(config, defaultConfig); err != nil {
		return nil, errors.Wrap(err, "merging defaults")
	}
	applyEnvironment(config)

	expandedDatabasePath, err := file.ExpandPath(config.Database)
	if err != nil {
		return nil, errors.Wrap(err, "expanding database path")
	}
	config.Database = expandedDatabasePath
	return config, nil
}

// applyEnvironment overrides secrets from the environment. A .env file in the
// working directory is honored when present.
func applyEnvironment(config *Config) {
	godotenv.Load()
	if v := os.Getenv("PROMPTDECK_OPENAI_API_KEY"); v != "" {
		config.OpenaiAPIKey = v
	}
	if v := os.Getenv("PROMPTDECK_ENGINE_API_KEY"); v != "" {
		config.EngineAPIKey = v
	}
}

// save a configuration file.
func (c *Config) save(path string) error {
	bytes, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshaling config")
	}

	err = os.WriteFile(path, bytes, 0644)
	if err != nil {
		return errors.Wrap(err, "writing file")
	}

	return nil
}

// initializeIfNotPresent initializes a config if it does not exist.
func initializeIfNotPresent(path string) error {
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return nil
	}

	// Create the directories.
	dir, _ := filepath.Split(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrap(err, "creating folders")
	}

	if err := defaultConfig.save(path); err != nil {
		return errors.Wrap(err, "saving default config")
	}
	return nil
}

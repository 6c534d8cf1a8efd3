package client

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	envAPIKey = "DOCQA_API_KEY"
	envAPIURL = "DOCQA_API_URL"

	defaultAPIURL = "http://localhost:8080"
)

// GlobalConfig is the per-user client configuration stored in config.yaml.
type GlobalConfig struct {
	APIKey string `yaml:"api_key,omitempty"`
	APIURL string `yaml:"api_url,omitempty"`
}

var getConfigPathFunc = defaultGetConfigPath

func defaultGetConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	return filepath.Join(configDir, "docqa", "config.yaml"), nil
}

// GetConfigPath returns the full path to the config.yaml file
func GetConfigPath() (string, error) {
	return getConfigPathFunc()
}

// LoadGlobalConfig reads config.yaml. A missing file yields a nil config and
// no error.
func LoadGlobalConfig() (*GlobalConfig, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(configPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config GlobalConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &config, nil
}

// SaveGlobalConfig writes config.yaml with 0600 permissions
func SaveGlobalConfig(config *GlobalConfig) error {
	if config == nil {
		return fmt.Errorf("config cannot be nil")
	}

	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// CredentialSource records where a setting came from
type CredentialSource string

const (
	SourceFlag         CredentialSource = "flag"
	SourceEnv          CredentialSource = "env"
	SourceGlobalConfig CredentialSource = "global_config"
	SourceDefault      CredentialSource = "default"
	SourceNone         CredentialSource = "none"
)

// Settings are the resolved connection settings of the client.
type Settings struct {
	APIKey    string
	APIURL    string
	KeySource CredentialSource
	URLSource CredentialSource
}

// ResolveSettings resolves each setting independently with the cascade
// flag -> env (including .env) -> config.yaml -> default.
func ResolveSettings(flagAPIKey, flagAPIURL string) (*Settings, error) {
	s := &Settings{KeySource: SourceNone, URLSource: SourceDefault, APIURL: defaultAPIURL}

	switch {
	case flagAPIKey != "":
		s.APIKey, s.KeySource = flagAPIKey, SourceFlag
	case os.Getenv(envAPIKey) != "":
		s.APIKey, s.KeySource = os.Getenv(envAPIKey), SourceEnv
	}

	switch {
	case flagAPIURL != "":
		s.APIURL, s.URLSource = flagAPIURL, SourceFlag
	case os.Getenv(envAPIURL) != "":
		s.APIURL, s.URLSource = os.Getenv(envAPIURL), SourceEnv
	}

	if s.KeySource != SourceNone && s.URLSource != SourceDefault {
		return s, nil
	}

	global, err := LoadGlobalConfig()
	if err != nil {
		return nil, err
	}
	if global == nil {
		return s, nil
	}
	if s.KeySource == SourceNone && global.APIKey != "" {
		s.APIKey, s.KeySource = global.APIKey, SourceGlobalConfig
	}
	if s.URLSource == SourceDefault && global.APIURL != "" {
		s.APIURL, s.URLSource = global.APIURL, SourceGlobalConfig
	}

	return s, nil
}

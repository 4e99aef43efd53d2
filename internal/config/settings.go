package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	configDirName = "sagipero"
	settingsFile  = "settings.yaml"
)

// Settings are the operator's persisted preferences.
type Settings struct {
	APIBase string `yaml:"api_base,omitempty"`
	Token   string `yaml:"token,omitempty"`
}

// Dir returns the base config directory (~/.config/sagipero/).
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}

	xdgConfig := os.Getenv("XDG_CONFIG_HOME")
	if xdgConfig == "" {
		xdgConfig = filepath.Join(home, ".config")
	}

	return filepath.Join(xdgConfig, configDirName), nil
}

// SettingsPath returns the location of the settings file.
func SettingsPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, settingsFile), nil
}

// LoadSettings reads the settings file. A missing file yields empty settings.
func LoadSettings() (*Settings, error) {
	path, err := SettingsPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return &Settings{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse settings: %w", err)
	}
	return &s, nil
}

// Save writes the settings file, creating the config directory if needed.
func (s *Settings) Save() error {
	dir, err := Dir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, settingsFile), data, 0600); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}

// ResolveAPIBase picks the saved API base over the configured one.
func (s *Settings) ResolveAPIBase(fallback string) string {
	if s != nil && strings.TrimSpace(s.APIBase) != "" {
		return strings.TrimRight(strings.TrimSpace(s.APIBase), "/")
	}
	return fallback
}

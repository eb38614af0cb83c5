package app

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"savehaven/internal/config"
)

// GetDefaults returns application default paths, checking environment variables first.
// Environment variables:
//   - SAVEHAVEN_CONFIG_PATH: config file location (default: ~/.config/savehaven.toml)
//   - SAVEHAVEN_HOME: base directory for savehaven data (default: ~/.local/share/savehaven)
func GetDefaults() (map[string]string, error) {
	configPath, err := getConfigPath()
	if err != nil {
		return nil, err
	}

	baseDir, err := getBaseDir()
	if err != nil {
		return nil, err
	}

	return map[string]string{
		"config_path": configPath,
		"base_dir":    baseDir,
		"log_dir":     filepath.Join(baseDir, "log"),
	}, nil
}

// LoadConfig reads the config at the default path. On first run, when no file
// exists yet, one is written with a fresh host ID and default settings.
// created reports whether that happened.
func LoadConfig() (cfg *config.Config, path string, created bool, err error) {
	defaults, err := GetDefaults()
	if err != nil {
		return nil, "", false, fmt.Errorf("getting defaults: %w", err)
	}
	path = defaults["config_path"]

	cfg, err = config.ReadFromFile(path)
	if err == nil {
		return cfg, path, false, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, path, false, err
	}

	cfg = config.NewConfig(uuid.New().String(), defaults["base_dir"])
	if err := config.Init(path, cfg); err != nil {
		return nil, path, false, err
	}
	return cfg, path, true, nil
}

// getConfigPath returns the config file path, checking SAVEHAVEN_CONFIG_PATH first,
// then falling back to the default ~/.config/savehaven.toml.
func getConfigPath() (string, error) {
	if path := os.Getenv("SAVEHAVEN_CONFIG_PATH"); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "savehaven.toml"), nil
}

// getBaseDir returns the base directory for savehaven data, checking SAVEHAVEN_HOME first,
// then falling back to the XDG default ~/.local/share/savehaven.
func getBaseDir() (string, error) {
	if path := os.Getenv("SAVEHAVEN_HOME"); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".local", "share", "savehaven"), nil
}

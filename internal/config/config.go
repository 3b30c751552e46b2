// SPDX-License-Identifier: MPL-2.0

// Package config resolves knapsac's configuration. The only mandatory
// setting is the registry file location; everything else has a default.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/knapsac/knapsac/pkg/types"
)

const (
	// AppName is the application name, used for the config directory.
	AppName = "knapsac"
	// RegistryFileName is the default registry file name.
	RegistryFileName = "registry.json"
	// EnvPrefix namespaces the environment variables read by viper
	// (KNAPSAC_REGISTRY, KNAPSAC_VERBOSE).
	EnvPrefix = "KNAPSAC"
)

// registryPathOverride holds the --registry flag value; it wins over every
// other source.
var registryPathOverride types.FilesystemPath

type (
	// Config holds the resolved settings.
	Config struct {
		// RegistryPath is the absolute location of the registry JSON file.
		RegistryPath types.FilesystemPath `mapstructure:"registry"`
		// Verbose enables debug logging.
		Verbose bool `mapstructure:"verbose"`
	}
)

// SetRegistryPathOverride installs the --registry flag value.
func SetRegistryPathOverride(path types.FilesystemPath) {
	registryPathOverride = path
}

// Dir returns the knapsac configuration directory, ~/.knapsac.
func Dir() (types.FilesystemPath, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return types.FilesystemPath(filepath.Join(home, "."+AppName)), nil
}

// Load resolves the configuration. Sources, strongest first: the
// --registry flag override, KNAPSAC_* environment variables, the optional
// config file under ~/.knapsac, built-in defaults. A missing config file
// is not an error.
func Load() (*Config, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetConfigName("config")
	v.AddConfigPath(string(dir))
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	v.SetDefault("registry", string(dir.Join(RegistryFileName)))
	v.SetDefault("verbose", false)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	if registryPathOverride != "" {
		cfg.RegistryPath = registryPathOverride
	}
	return &cfg, nil
}

// Package config holds the process configuration: values parsed from an
// optional yaml file merged with command-line overrides.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Configuration represents the totality of configuration knobs and dials for
// the server.
type Configuration struct {
	LogLevel    string `yaml:"logLevel"`
	LogFile     string `yaml:"logFile"`
	ConfigFile  string `yaml:"configFile"`
	CatalogFile string `yaml:"catalogFile"`
	Port        int64  `yaml:"port"`
	MetricsPort int64  `yaml:"metricsPort"`
	Arch        string `yaml:"arch"`
	ManifestTTL string `yaml:"manifestTTL"`
}

// FromCmdLine has a flag for every command-line option. The parsing code
// sets the flag to true if the option was explicitly provided on the command
// line by the user.
type FromCmdLine struct {
	Command     string
	LogLevel    bool
	LogFile     bool
	ConfigFile  bool
	CatalogFile bool
	Port        bool
	MetricsPort bool
	Arch        bool
	ManifestTTL bool
}

var config Configuration

// Load loads the passed configuration file into the configuration struct
func Load(configFile string) error {
	if _, err := os.Stat(configFile); err != nil {
		return fmt.Errorf("unable to stat configuration file: %s", configFile)
	}
	if contents, err := os.ReadFile(configFile); err != nil {
		return fmt.Errorf("error reading configuration file: %s", configFile)
	} else if err := SetConfigFromStr(contents); err != nil {
		return fmt.Errorf("error parsing configuration file: %s, the error was: %s", configFile, err)
	}
	return nil
}

// Merge takes a struct indicating which configuration options have been
// provided on the command line, as well as a configuration struct parsed from
// the command line which ALSO includes defaults that the user didn't specify.
// So:
//
//  1. User provided a value: overwrite current config using the user's value
//  2. User did not provide a value, current config is unspecified: use the
//     default in the parsed config
//  3. User did not provide a value, current config is specified: leave the
//     current config untouched
func Merge(fromCmdline FromCmdLine, cfg Configuration) {
	if fromCmdline.LogLevel || config.LogLevel == "" {
		config.LogLevel = cfg.LogLevel
	}
	if fromCmdline.LogFile || config.LogFile == "" {
		config.LogFile = cfg.LogFile
	}
	if fromCmdline.ConfigFile || config.ConfigFile == "" {
		config.ConfigFile = cfg.ConfigFile
	}
	if fromCmdline.CatalogFile || config.CatalogFile == "" {
		config.CatalogFile = cfg.CatalogFile
	}
	if fromCmdline.Port || config.Port == 0 {
		config.Port = cfg.Port
	}
	if fromCmdline.MetricsPort || config.MetricsPort == 0 {
		config.MetricsPort = cfg.MetricsPort
	}
	if fromCmdline.Arch || config.Arch == "" {
		config.Arch = cfg.Arch
	}
	if fromCmdline.ManifestTTL || config.ManifestTTL == "" {
		config.ManifestTTL = cfg.ManifestTTL
	}
}

// Get gets the current configuration
func Get() Configuration {
	return config
}

// Set replaces the configuration with the passed configuration
func Set(cfg Configuration) {
	config = cfg
}

// SetConfigFromStr parses the yaml input and sets the configuration from it
func SetConfigFromStr(configBytes []byte) error {
	var cfg Configuration
	if err := yaml.Unmarshal(configBytes, &cfg); err != nil {
		return err
	}
	config = cfg
	return nil
}

// TTL parses the manifest time-to-live from the configuration. An
// unspecified TTL defaults to one hour.
func (c Configuration) TTL() (time.Duration, error) {
	if c.ManifestTTL == "" {
		return time.Hour, nil
	}
	ttl, err := time.ParseDuration(c.ManifestTTL)
	if err != nil {
		return 0, fmt.Errorf("invalid manifest TTL %q: %s", c.ManifestTTL, err)
	}
	if ttl <= 0 {
		return 0, fmt.Errorf("manifest TTL must be positive, got %q", c.ManifestTTL)
	}
	return ttl, nil
}

package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

var testCfg = `
---
logLevel: error
logFile: /foo/bar/baz.log
catalogFile: /etc/imagehost/catalog.yaml
port: 8080
metricsPort: 2222
arch: x86_64
manifestTTL: 30m
`

var expectConfig = Configuration{
	LogLevel:    "error",
	LogFile:     "/foo/bar/baz.log",
	CatalogFile: "/etc/imagehost/catalog.yaml",
	Port:        8080,
	MetricsPort: 2222,
	Arch:        "x86_64",
	ManifestTTL: "30m",
}

// Test loading and parsing a configuration file
func TestLoadConfigFile(t *testing.T) {
	td, err := os.MkdirTemp("", "")
	if err != nil {
		t.Fail()
	}
	defer os.RemoveAll(td)
	cfgFile := filepath.Join(td, "testcfg.yaml")
	os.WriteFile(cfgFile, []byte(testCfg), 0700)
	if Load(cfgFile) != nil {
		t.Fail()
	}
	if !reflect.DeepEqual(config, expectConfig) {
		t.Fail()
	}
	if Load(filepath.Join(td, "no-such-file.yaml")) == nil {
		t.Fail()
	}
}

// Test the merge precedence: command line beats file beats defaults
func TestMerge(t *testing.T) {
	Set(Configuration{
		LogLevel: "error",
		Port:     9090,
		Arch:     "arm64",
	})
	fromCmdline := FromCmdLine{
		LogLevel: true,
	}
	parsed := Configuration{
		LogLevel:    "debug",
		Port:        8080,
		Arch:        "x86_64",
		ManifestTTL: "1h",
	}
	Merge(fromCmdline, parsed)
	cfg := Get()
	// explicitly provided on the command line: overrides the file
	if cfg.LogLevel != "debug" {
		t.Fail()
	}
	// not provided, file has a value: file wins over the parser default
	if cfg.Port != 9090 || cfg.Arch != "arm64" {
		t.Fail()
	}
	// not provided, file silent: parser default fills in
	if cfg.ManifestTTL != "1h" {
		t.Fail()
	}
}

func TestTTL(t *testing.T) {
	ttl, err := Configuration{}.TTL()
	if err != nil || ttl != time.Hour {
		t.Fail()
	}
	ttl, err = Configuration{ManifestTTL: "30m"}.TTL()
	if err != nil || ttl != time.Minute*30 {
		t.Fail()
	}
	if _, err := (Configuration{ManifestTTL: "frobozz"}).TTL(); err == nil {
		t.Fail()
	}
	if _, err := (Configuration{ManifestTTL: "-5m"}).TTL(); err == nil {
		t.Fail()
	}
}

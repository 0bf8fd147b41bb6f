package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
)

const infoLevel = "info"

func newTestLoader() *Loader {
	return NewLoaderWith(viper.New())
}

// TestLoadWithNoConfigFile tests loading with no config file present.
func TestLoadWithNoConfigFile(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := newTestLoader().Load()
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}

	if cfg.LogLevel != infoLevel {
		t.Errorf("Expected default log level '%s', got %s", infoLevel, cfg.LogLevel)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Processor.TimeoutMS != 250 {
		t.Errorf("Expected default timeout 250ms, got %d", cfg.Processor.TimeoutMS)
	}
	if cfg.Output.Format != "text" {
		t.Errorf("Expected default output format text, got %s", cfg.Output.Format)
	}
}

// TestLoadFromSearchPath tests that zbars.yaml in the working directory is found.
func TestLoadFromSearchPath(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	writeFile(t, filepath.Join(dir, "zbars.yaml"), "log_level: warn\n")

	loader := newTestLoader()
	cfg, err := loader.Load()
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("Expected log level from file, got %s", cfg.LogLevel)
	}
	if filepath.Base(loader.ConfigFileUsed()) != "zbars.yaml" {
		t.Errorf("Unexpected config file used: %s", loader.ConfigFileUsed())
	}
}

// TestLoadWithValidYAMLFile tests loading from a valid YAML file.
func TestLoadWithValidYAMLFile(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "custom.yaml")
	writeFile(t, configFile, `
log_level: debug
verbose: true
scanner:
  symbologies: [qrcode, ean13]
  configs:
    - "ean13.add-check=0"
  try_harder: true
processor:
  device: /dev/video2
  display: true
  width: 640
  height: 480
  iomode: mmap
  input_format: YUYV
  output_format: Y800
  timeout_ms: -1
  controls:
    brightness: 42
output:
  format: json
server:
  host: 0.0.0.0
  port: 9090
  live: true
`)

	cfg, err := newTestLoader().LoadWithFile(configFile)
	if err != nil {
		t.Fatalf("LoadWithFile() unexpected error: %v", err)
	}

	if cfg.LogLevel != "debug" || !cfg.Verbose {
		t.Errorf("Global settings not loaded: %+v", cfg)
	}
	if len(cfg.Scanner.Symbologies) != 2 || cfg.Scanner.Symbologies[1] != "ean13" {
		t.Errorf("Unexpected symbologies: %v", cfg.Scanner.Symbologies)
	}
	if len(cfg.Scanner.Configs) != 1 || !cfg.Scanner.TryHarder {
		t.Errorf("Unexpected scanner section: %+v", cfg.Scanner)
	}
	if cfg.Processor.Device != "/dev/video2" || cfg.Processor.Width != 640 || cfg.Processor.IOMode != "mmap" {
		t.Errorf("Unexpected processor section: %+v", cfg.Processor)
	}
	if cfg.Processor.Controls["brightness"] != 42 {
		t.Errorf("Expected brightness control 42, got %v", cfg.Processor.Controls)
	}
	if cfg.Processor.TimeoutMS != -1 {
		t.Errorf("Expected timeout -1, got %d", cfg.Processor.TimeoutMS)
	}
	if cfg.Server.Port != 9090 || !cfg.Server.Live {
		t.Errorf("Unexpected server section: %+v", cfg.Server)
	}
	// Untouched keys keep their defaults.
	if cfg.Server.MaxUploadMB != 10 {
		t.Errorf("Expected default max upload, got %d", cfg.Server.MaxUploadMB)
	}
}

// TestLoadWithInvalidFile tests the error paths of LoadWithFile.
func TestLoadWithInvalidFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file", func(t *testing.T) {
		if _, err := newTestLoader().LoadWithFile(filepath.Join(dir, "nope.yaml")); err == nil {
			t.Error("Expected error for missing file")
		}
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := filepath.Join(dir, "bad.yaml")
		writeFile(t, path, "server: [port: 1\n")
		if _, err := newTestLoader().LoadWithFile(path); err == nil {
			t.Error("Expected error for malformed YAML")
		}
	})

	t.Run("invalid values", func(t *testing.T) {
		path := filepath.Join(dir, "invalid.yaml")
		writeFile(t, path, "output:\n  format: html\n")
		if _, err := newTestLoader().LoadWithFile(path); err == nil {
			t.Error("Expected validation error")
		}
	})
}

// TestEnvironmentOverrides tests ZBARS_ environment variables.
func TestEnvironmentOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("ZBARS_SERVER_PORT", "7070")
	t.Setenv("ZBARS_PROCESSOR_DEVICE", "/dev/video5")
	t.Setenv("ZBARS_SCANNER_SYMBOLOGIES", "qrcode,code128")

	cfg, err := newTestLoader().Load()
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("Expected port from env 7070, got %d", cfg.Server.Port)
	}
	if cfg.Processor.Device != "/dev/video5" {
		t.Errorf("Expected device from env, got %s", cfg.Processor.Device)
	}
	if len(cfg.Scanner.Symbologies) != 2 {
		t.Errorf("Expected two symbologies from env, got %v", cfg.Scanner.Symbologies)
	}
}

func TestLoadWithoutValidation(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("ZBARS_SERVER_PORT", "0")

	if _, err := newTestLoader().Load(); err == nil {
		t.Error("Expected validation error for port 0")
	}
	cfg, err := newTestLoader().LoadWithoutValidation()
	if err != nil {
		t.Fatalf("LoadWithoutValidation() unexpected error: %v", err)
	}
	if cfg.Server.Port != 0 {
		t.Errorf("Expected raw port 0, got %d", cfg.Server.Port)
	}
}

func TestGenerateDefaultConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "generated.yaml")
	if err := GenerateDefaultConfigFile(path); err != nil {
		t.Fatalf("GenerateDefaultConfigFile() error: %v", err)
	}

	cfg, err := newTestLoader().LoadWithFile(path)
	if err != nil {
		t.Fatalf("loading generated file: %v", err)
	}
	if cfg.Server.Port != 8080 || cfg.Processor.Device != "/dev/video0" {
		t.Errorf("Generated file does not round trip defaults: %+v", cfg)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
}

func TestSearchPaths(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	t.Run("xdg set", func(t *testing.T) {
		xdg := t.TempDir()
		t.Setenv("XDG_CONFIG_HOME", xdg)
		paths := SearchPaths()
		want := []string{".", home, filepath.Join(xdg, "zbars"), "/etc/zbars"}
		if len(paths) != len(want) {
			t.Fatalf("SearchPaths() = %v, want %v", paths, want)
		}
		for i := range want {
			if paths[i] != want[i] {
				t.Errorf("SearchPaths()[%d] = %s, want %s", i, paths[i], want[i])
			}
		}
	})

	t.Run("xdg unset", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "")
		os.Unsetenv("XDG_CONFIG_HOME")
		paths := SearchPaths()
		if paths[2] != filepath.Join(home, ".config", "zbars") {
			t.Errorf("expected ~/.config/zbars fallback, got %v", paths)
		}
	})
}

func TestDefaultValuesCoverConfig(t *testing.T) {
	v := viper.New()
	applyDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults do not validate: %v", err)
	}
	if cfg.Scanner.Workers != DefaultConfig().Scanner.Workers {
		t.Errorf("scanner.workers default lost: %d", cfg.Scanner.Workers)
	}
}

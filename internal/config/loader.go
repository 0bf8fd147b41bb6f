package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	// ConfigFileName is the configuration file base name, without extension.
	ConfigFileName = "zbars"

	// EnvPrefix prefixes every environment override, as in ZBARS_SERVER_PORT.
	EnvPrefix = "ZBARS"
)

// Loader resolves a Config from defaults, an optional YAML file, the
// environment and whatever flags the caller bound on its viper instance.
type Loader struct {
	v *viper.Viper
}

// NewLoader uses the global viper instance, where the CLI binds its flags.
func NewLoader() *Loader {
	return &Loader{v: viper.GetViper()}
}

func NewLoaderWith(v *viper.Viper) *Loader {
	return &Loader{v: v}
}

// Load searches the standard locations for zbars.yaml and validates the
// result. Not finding a file is fine.
func (l *Loader) Load() (*Config, error) {
	return l.load("", true)
}

func (l *Loader) LoadWithoutValidation() (*Config, error) {
	return l.load("", false)
}

// LoadWithFile reads exactly configFile, which must exist.
func (l *Loader) LoadWithFile(configFile string) (*Config, error) {
	return l.load(configFile, true)
}

func (l *Loader) load(configFile string, validate bool) (*Config, error) {
	if err := l.locate(configFile); err != nil {
		return nil, err
	}

	l.v.SetEnvPrefix(EnvPrefix)
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	l.v.AutomaticEnv()
	applyDefaults(l.v)

	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	cfg := &Config{}
	if err := l.v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if !validate {
		return cfg, nil
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func (l *Loader) locate(configFile string) error {
	if configFile == "" {
		l.v.SetConfigName(ConfigFileName)
		l.v.SetConfigType("yaml")
		for _, dir := range SearchPaths() {
			l.v.AddConfigPath(dir)
		}
		return nil
	}
	if _, err := os.Stat(configFile); err != nil {
		return fmt.Errorf("config file %s: %w", configFile, err)
	}
	l.v.SetConfigFile(configFile)
	return nil
}

// ConfigFileUsed is the path of the file that was read, or "".
func (l *Loader) ConfigFileUsed() string {
	return l.v.ConfigFileUsed()
}

func (l *Loader) Viper() *viper.Viper {
	return l.v
}

// defaultValues flattens DefaultConfig into viper keys. AutomaticEnv only
// reaches keys viper already knows, so every field needs an entry here.
func defaultValues() map[string]any {
	d := DefaultConfig()
	return map[string]any{
		"log_level": d.LogLevel,
		"verbose":   d.Verbose,

		"scanner.symbologies": d.Scanner.Symbologies,
		"scanner.configs":     d.Scanner.Configs,
		"scanner.cache":       d.Scanner.Cache,
		"scanner.try_harder":  d.Scanner.TryHarder,
		"scanner.multi":       d.Scanner.Multi,
		"scanner.min_size":    d.Scanner.MinSize,
		"scanner.workers":     d.Scanner.Workers,

		"processor.device":            d.Processor.Device,
		"processor.display":           d.Processor.Display,
		"processor.threaded":          d.Processor.Threaded,
		"processor.width":             d.Processor.Width,
		"processor.height":            d.Processor.Height,
		"processor.interface_version": d.Processor.InterfaceVersion,
		"processor.iomode":            d.Processor.IOMode,
		"processor.input_format":      d.Processor.InputFormat,
		"processor.output_format":     d.Processor.OutputFormat,
		"processor.timeout_ms":        d.Processor.TimeoutMS,
		"processor.max_frames":        d.Processor.MaxFrames,
		"processor.controls":          d.Processor.Controls,

		"output.format": d.Output.Format,
		"output.file":   d.Output.File,

		"pdf.pages":          d.PDF.Pages,
		"pdf.user_password":  d.PDF.UserPassword,
		"pdf.owner_password": d.PDF.OwnerPassword,

		"server.host":             d.Server.Host,
		"server.port":             d.Server.Port,
		"server.cors_origin":      d.Server.CORSOrigin,
		"server.max_upload_mb":    d.Server.MaxUploadMB,
		"server.shutdown_timeout": d.Server.ShutdownTimeout,
		"server.live":             d.Server.Live,
	}
}

func applyDefaults(v *viper.Viper) {
	for key, value := range defaultValues() {
		v.SetDefault(key, value)
	}
}

// GenerateDefaultConfigFile writes every default to filename, or to
// zbars.yaml in the working directory when filename is empty.
func GenerateDefaultConfigFile(filename string) error {
	if filename == "" {
		filename = ConfigFileName + ".yaml"
	}
	v := viper.New()
	applyDefaults(v)
	return v.WriteConfigAs(filename)
}

// SearchPaths lists the directories searched for zbars.yaml, in order.
func SearchPaths() []string {
	paths := []string{"."}
	home, homeErr := os.UserHomeDir()
	if homeErr == nil {
		paths = append(paths, home)
	}
	switch xdg, ok := os.LookupEnv("XDG_CONFIG_HOME"); {
	case ok:
		paths = append(paths, filepath.Join(xdg, ConfigFileName))
	case homeErr == nil:
		paths = append(paths, filepath.Join(home, ".config", ConfigFileName))
	}
	return append(paths, "/etc/zbars")
}

package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/Nic0w/zbars/internal/config"
	"github.com/Nic0w/zbars/internal/version"
)

// loader and loaded are populated by the first command that runs.
var (
	loader     *config.Loader
	loaded     *config.Config
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "zbars",
	Short: "Barcode and QR code scanner built on libzbar",
	Long: `zbars decodes barcodes and QR codes with libzbar.

It scans image files and PDF documents, reads frames from a video device,
and serves a scanning API over HTTP with a live WebSocket feed.

Examples:
  zbars scan label.png
  zbars scan --format json --symbologies qrcode,ean13 ./photos
  zbars pdf invoice.pdf --pages 1-2
  zbars capture --device /dev/video0 --max-frames 1
  zbars serve --port 8080 --live`,
	SilenceUsage:      true,
	PersistentPreRunE: setupLogging,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if show, _ := cmd.Flags().GetBool("version"); show {
			_, err := fmt.Fprint(cmd.OutOrStdout(), version.String())
			return err
		}
		return cmd.Help()
	},
}

// Execute runs the CLI and exits non-zero on failure. Cobra has already
// printed the error by then.
func Execute() {
	if rootCmd.Execute() != nil {
		os.Exit(1)
	}
}

func Root() *cobra.Command {
	return rootCmd
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "config file (searched in ., $HOME, $XDG_CONFIG_HOME/zbars, /etc/zbars when unset)")
	pf.BoolP("verbose", "v", false, "shorthand for --log-level=debug")
	pf.String("log-level", "info", "log level: debug, info, warn or error")
	pf.Bool("version", false, "print version information and exit")

	mustBind("verbose", pf.Lookup("verbose"))
	mustBind("log_level", pf.Lookup("log-level"))
}

// setupLogging loads the configuration once and installs a JSON slog
// handler on stderr, leaving stdout to reports.
func setupLogging(cmd *cobra.Command, _ []string) error {
	if loaded == nil {
		if err := loadConfig(); err != nil {
			return err
		}
	}
	cfg, err := currentConfig()
	if err != nil {
		return err
	}
	handler := slog.NewJSONHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: cfg.SlogLevel()})
	slog.SetDefault(slog.New(handler))
	return nil
}

// loadConfig reads defaults, the config file and the environment. An
// explicit --config file is validated at once; otherwise validation waits
// until each command has bound its flags.
func loadConfig() error {
	loader = config.NewLoader()
	var err error
	if configPath != "" {
		loaded, err = loader.LoadWithFile(configPath)
	} else {
		loaded, err = loader.LoadWithoutValidation()
	}
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	return nil
}

func activeLoader() *config.Loader {
	if loader == nil {
		loader = config.NewLoader()
	}
	return loader
}

// currentConfig decodes viper again so flags bound since the first load
// are reflected.
func currentConfig() (*config.Config, error) {
	if loaded == nil {
		if err := loadConfig(); err != nil {
			return nil, err
		}
	}
	cfg := &config.Config{}
	if err := activeLoader().Viper().Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding configuration: %w", err)
	}
	return cfg, nil
}

func validatedConfig() (*config.Config, error) {
	cfg, err := currentConfig()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

type flagBinding struct {
	key  string
	flag string
}

// bindOnRun returns a PreRunE that binds the running command's flags to
// viper keys. Commands share keys such as output.format and viper holds a
// single flag per key, so the binding must happen for the command that runs.
func bindOnRun(bindings ...flagBinding) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		for _, b := range bindings {
			f := cmd.Flags().Lookup(b.flag)
			if f == nil {
				return fmt.Errorf("%s has no --%s flag for %s", cmd.Name(), b.flag, b.key)
			}
			if err := viper.BindPFlag(b.key, f); err != nil {
				return fmt.Errorf("binding --%s: %w", b.flag, err)
			}
		}
		return nil
	}
}

func mustBind(key string, flag *pflag.Flag) {
	if err := viper.BindPFlag(key, flag); err != nil {
		panic(fmt.Sprintf("binding --%s to %s: %v", flag.Name, key, err))
	}
}

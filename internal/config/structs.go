//nolint:lll
package config

// Config represents the complete configuration for zbars. It covers every
// command (scan, pdf, capture, serve) and is loaded from configuration
// files, environment variables and command-line flags.
type Config struct {
	// Global settings
	LogLevel string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	Verbose  bool   `mapstructure:"verbose" yaml:"verbose" json:"verbose"`

	Scanner   ScannerConfig   `mapstructure:"scanner" yaml:"scanner" json:"scanner"`
	Processor ProcessorConfig `mapstructure:"processor" yaml:"processor" json:"processor"`
	Output    OutputConfig    `mapstructure:"output" yaml:"output" json:"output"`
	PDF       PDFConfig       `mapstructure:"pdf" yaml:"pdf" json:"pdf"`

	// Server configuration (for serve command)
	Server ServerConfig `mapstructure:"server" yaml:"server" json:"server"`
}

// ScannerConfig contains decoder settings shared by every scan path.
type ScannerConfig struct {
	// Symbologies to enable, by name ("qrcode", "EAN-13"). Empty enables all.
	Symbologies []string `mapstructure:"symbologies" yaml:"symbologies" json:"symbologies"`
	// Configs are "symbology.config=value" strings applied after Symbologies.
	Configs   []string `mapstructure:"configs" yaml:"configs" json:"configs"`
	Cache     bool     `mapstructure:"cache" yaml:"cache" json:"cache"`
	TryHarder bool     `mapstructure:"try_harder" yaml:"try_harder" json:"try_harder"`
	Multi     bool     `mapstructure:"multi" yaml:"multi" json:"multi"`
	MinSize   int      `mapstructure:"min_size" yaml:"min_size" json:"min_size"`
	// Workers bounds concurrent file scans. Zero means one per CPU.
	Workers int `mapstructure:"workers" yaml:"workers" json:"workers"`
}

// ProcessorConfig contains video capture settings.
type ProcessorConfig struct {
	Device           string         `mapstructure:"device" yaml:"device" json:"device"`
	Display          bool           `mapstructure:"display" yaml:"display" json:"display"`
	Threaded         bool           `mapstructure:"threaded" yaml:"threaded" json:"threaded"`
	Width            uint           `mapstructure:"width" yaml:"width" json:"width"`
	Height           uint           `mapstructure:"height" yaml:"height" json:"height"`
	InterfaceVersion int            `mapstructure:"interface_version" yaml:"interface_version" json:"interface_version"`
	IOMode           string         `mapstructure:"iomode" yaml:"iomode" json:"iomode"`
	InputFormat      string         `mapstructure:"input_format" yaml:"input_format" json:"input_format"`
	OutputFormat     string         `mapstructure:"output_format" yaml:"output_format" json:"output_format"`
	TimeoutMS        int            `mapstructure:"timeout_ms" yaml:"timeout_ms" json:"timeout_ms"`
	MaxFrames        int            `mapstructure:"max_frames" yaml:"max_frames" json:"max_frames"`
	Controls         map[string]int `mapstructure:"controls" yaml:"controls" json:"controls"`
}

// OutputConfig contains output formatting settings.
type OutputConfig struct {
	Format string `mapstructure:"format" yaml:"format" json:"format"`
	File   string `mapstructure:"file" yaml:"file" json:"file"`
}

// PDFConfig contains PDF extraction settings.
type PDFConfig struct {
	Pages         string `mapstructure:"pages" yaml:"pages" json:"pages"`
	UserPassword  string `mapstructure:"user_password" yaml:"user_password" json:"user_password,omitempty"`
	OwnerPassword string `mapstructure:"owner_password" yaml:"owner_password" json:"owner_password,omitempty"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host            string `mapstructure:"host" yaml:"host" json:"host"`
	Port            int    `mapstructure:"port" yaml:"port" json:"port"`
	CORSOrigin      string `mapstructure:"cors_origin" yaml:"cors_origin" json:"cors_origin"`
	MaxUploadMB     int    `mapstructure:"max_upload_mb" yaml:"max_upload_mb" json:"max_upload_mb"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" json:"shutdown_timeout"`
	// Live runs the capture loop and streams frames on /ws/live.
	Live bool `mapstructure:"live" yaml:"live" json:"live"`
}

package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	// Project settings
	ProjectPath string `mapstructure:"project_path"`
	TestPath    string `mapstructure:"test_path"`
	ImportRoot  string `mapstructure:"import_root"`

	// Discovery settings
	FilePrefix    string   `mapstructure:"file_prefix"`
	FileSuffix    string   `mapstructure:"file_suffix"`
	PathsToIgnore []string `mapstructure:"paths_to_ignore"`
	EntryPoint    string   `mapstructure:"entry_point"`
	HarnessBases  []string `mapstructure:"harness_bases"`
	Sidecar       bool     `mapstructure:"sidecar"`
	SidecarSuffix string   `mapstructure:"sidecar_suffix"`
	FailFast      bool     `mapstructure:"fail_fast"`

	BuildTimeout time.Duration `mapstructure:"build_timeout"`

	// Output settings
	OutputDir    string `mapstructure:"output_dir"`
	OutputFile   string `mapstructure:"output_file"`
	OutputFormat string `mapstructure:"output_format"`

	// Logging
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`

	// Command flags
	Flags Flags
}

// Flags holds command-line flags
type Flags struct {
	ConfigFile   string
	TestPath     string
	ImportRoot   string
	Filter       string
	ShowMetadata bool
	FailFast     bool
	Format       string
	Output       string
	Sidecar      bool
	EntryPoint   string
	HarnessBases []string
	Timeout      time.Duration
	NoProgress   bool
	LogLevel     string
	LogFormat    string
}

// New creates a new Config with defaults
func New() *Config {
	cfg := &Config{
		ProjectPath:   DefaultProjectPath,
		TestPath:      DefaultTestPath,
		FilePrefix:    DefaultFilePrefix,
		FileSuffix:    DefaultFileSuffix,
		EntryPoint:    DefaultEntryPoint,
		SidecarSuffix: DefaultSidecarSuffix,
		BuildTimeout:  DefaultBuildTimeout,
		OutputDir:     DefaultOutputDir,
		OutputFile:    DefaultOutputFile,
		OutputFormat:  DefaultOutputFormat,
		LogLevel:      DefaultLogLevel,
		LogFormat:     DefaultLogFormat,
	}
	// Copy default paths to ignore
	cfg.PathsToIgnore = make([]string, len(DefaultPathsToIgnore))
	copy(cfg.PathsToIgnore, DefaultPathsToIgnore)
	return cfg
}

// Load builds the configuration. Precedence, highest first: flags,
// TESTCAT_* environment variables (a .env file in the working directory is
// loaded first), the config file, defaults.
func Load(flags Flags) (*Config, error) {
	// .env is optional, real environment variables win over it
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v, New())
	v.SetEnvPrefix("TESTCAT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if flags.ConfigFile != "" {
		v.SetConfigFile(flags.ConfigFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName(DefaultConfigName)
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if flags.ConfigFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.Flags = flags
	cfg.applyFlags()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("project_path", d.ProjectPath)
	v.SetDefault("test_path", d.TestPath)
	v.SetDefault("import_root", d.ImportRoot)
	v.SetDefault("file_prefix", d.FilePrefix)
	v.SetDefault("file_suffix", d.FileSuffix)
	v.SetDefault("paths_to_ignore", d.PathsToIgnore)
	v.SetDefault("entry_point", d.EntryPoint)
	v.SetDefault("harness_bases", d.HarnessBases)
	v.SetDefault("sidecar", d.Sidecar)
	v.SetDefault("sidecar_suffix", d.SidecarSuffix)
	v.SetDefault("fail_fast", d.FailFast)
	v.SetDefault("build_timeout", d.BuildTimeout)
	v.SetDefault("output_dir", d.OutputDir)
	v.SetDefault("output_file", d.OutputFile)
	v.SetDefault("output_format", d.OutputFormat)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_format", d.LogFormat)
}

// applyFlags overrides settings with the flags that were set
func (c *Config) applyFlags() {
	f := c.Flags
	if f.ImportRoot != "" {
		c.ImportRoot = f.ImportRoot
	}
	if f.FailFast {
		c.FailFast = true
	}
	if f.Sidecar {
		c.Sidecar = true
	}
	if f.Format != "" {
		c.OutputFormat = f.Format
	}
	if f.EntryPoint != "" {
		c.EntryPoint = f.EntryPoint
	}
	if len(f.HarnessBases) > 0 {
		c.HarnessBases = f.HarnessBases
	}
	if f.Timeout > 0 {
		c.BuildTimeout = f.Timeout
	}
	if f.LogLevel != "" {
		c.LogLevel = f.LogLevel
	}
	if f.LogFormat != "" {
		c.LogFormat = f.LogFormat
	}
}

// Validate checks the settings the discovery pipeline depends on
func (c *Config) Validate() error {
	c.OutputFormat = strings.ToLower(c.OutputFormat)
	if c.OutputFormat != FormatJSON && c.OutputFormat != FormatYAML {
		return fmt.Errorf("invalid output format %q: must be %s or %s", c.OutputFormat, FormatJSON, FormatYAML)
	}
	if c.FileSuffix == "" {
		return fmt.Errorf("file suffix must not be empty")
	}
	if c.EntryPoint == "" {
		return fmt.Errorf("entry point must not be empty")
	}
	if c.Sidecar && c.SidecarSuffix == "" {
		return fmt.Errorf("sidecar suffix must not be empty when sidecar descriptors are enabled")
	}
	if c.BuildTimeout < 0 {
		return fmt.Errorf("build timeout must not be negative")
	}
	return nil
}

// GetTestPath returns the test path, using flag if provided
func (c *Config) GetTestPath() string {
	if c.Flags.TestPath != "" {
		// If TestPath is provided, make it relative to the project path if it's not absolute
		if filepath.IsAbs(c.Flags.TestPath) {
			return c.Flags.TestPath
		}
		return filepath.Join(c.ProjectPath, c.Flags.TestPath)
	}

	if filepath.IsAbs(c.TestPath) {
		return c.TestPath
	}
	return filepath.Join(c.ProjectPath, c.TestPath)
}

// GetImportRoot returns the directory module identifiers are relative to.
// It defaults to the project path.
func (c *Config) GetImportRoot() string {
	switch {
	case c.ImportRoot == "":
		return c.ProjectPath
	case filepath.IsAbs(c.ImportRoot):
		return c.ImportRoot
	default:
		return filepath.Join(c.ProjectPath, c.ImportRoot)
	}
}

// GetSidecarSuffix returns the descriptor suffix, or "" when sidecar
// descriptors are disabled.
func (c *Config) GetSidecarSuffix() string {
	if !c.Sidecar {
		return ""
	}
	return c.SidecarSuffix
}

// GetOutputPath returns the absolute path of the catalog document. The file
// extension follows the output format unless --output names a file.
// Resolves to an absolute path so build and view always use the same file regardless of cwd.
func (c *Config) GetOutputPath() string {
	p := c.Flags.Output
	if p == "" {
		name := strings.TrimSuffix(c.OutputFile, filepath.Ext(c.OutputFile)) + "." + c.OutputFormat
		p = filepath.Join(c.ProjectPath, c.OutputDir, name)
	}
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultFileName is the optional project-local config file
const DefaultFileName = ".scangate.yaml"

var baseURLPattern = regexp.MustCompile(`^https?://`)

// Config carries every knob for one scan run. It is resolved once at startup
// (defaults, then config file, then environment, then flags) and treated as
// immutable afterwards; nothing reads the environment past Load.
type Config struct {
	APIBaseURL      string   `yaml:"api_base_url"`
	Format          string   `yaml:"report_format"`
	TimeoutSeconds  int      `yaml:"timeout_seconds"`
	ExcludePatterns []string `yaml:"exclude_files"`
	Blocking        bool     `yaml:"blocking"`
	BlockPercentage int      `yaml:"block_percentage"`
	Mode            string   `yaml:"scan_mode"`
	OutputDir       string   `yaml:"output_dir"`
	LogFile         string   `yaml:"log_file"`
}

// fileConfig mirrors Config with pointer fields so an absent key in the YAML
// file is distinguishable from an explicit zero value.
type fileConfig struct {
	APIBaseURL      *string  `yaml:"api_base_url"`
	Format          *string  `yaml:"report_format"`
	TimeoutSeconds  *int     `yaml:"timeout_seconds"`
	ExcludePatterns []string `yaml:"exclude_files"`
	Blocking        *bool    `yaml:"blocking"`
	BlockPercentage *int     `yaml:"block_percentage"`
	Mode            *string  `yaml:"scan_mode"`
	OutputDir       *string  `yaml:"output_dir"`
	LogFile         *string  `yaml:"log_file"`
}

// Default returns the built-in configuration
func Default() Config {
	return Config{
		Format:          "md",
		TimeoutSeconds:  300,
		Blocking:        true,
		BlockPercentage: 50,
		Mode:            "poll",
		OutputDir:       ".",
	}
}

// Load resolves the configuration: defaults, overlaid by the YAML file at
// path (missing file is fine), overlaid by environment variables. Malformed
// values are reported immediately; semantic checks live in Validate.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = DefaultFileName
	}
	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return cfg, fmt.Errorf("reading config file %s: %v", path, err)
	}
	if err == nil {
		var fc fileConfig
		if err := yaml.Unmarshal(data, &fc); err != nil {
			return cfg, fmt.Errorf("parsing config file %s: %v", path, err)
		}
		fc.apply(&cfg)
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (fc *fileConfig) apply(cfg *Config) {
	if fc.APIBaseURL != nil {
		cfg.APIBaseURL = *fc.APIBaseURL
	}
	if fc.Format != nil {
		cfg.Format = *fc.Format
	}
	if fc.TimeoutSeconds != nil {
		cfg.TimeoutSeconds = *fc.TimeoutSeconds
	}
	if fc.ExcludePatterns != nil {
		cfg.ExcludePatterns = fc.ExcludePatterns
	}
	if fc.Blocking != nil {
		cfg.Blocking = *fc.Blocking
	}
	if fc.BlockPercentage != nil {
		cfg.BlockPercentage = *fc.BlockPercentage
	}
	if fc.Mode != nil {
		cfg.Mode = *fc.Mode
	}
	if fc.OutputDir != nil {
		cfg.OutputDir = *fc.OutputDir
	}
	if fc.LogFile != nil {
		cfg.LogFile = *fc.LogFile
	}
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("API_BASE_URL"); v != "" {
		cfg.APIBaseURL = v
	}
	if v := os.Getenv("REPORT_FORMAT"); v != "" {
		cfg.Format = strings.ToLower(v)
	}
	if v := os.Getenv("TIMEOUT_SECONDS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("TIMEOUT_SECONDS must be an integer, got %q", v)
		}
		cfg.TimeoutSeconds = n
	}
	if v := os.Getenv("EXCLUDE_FILES"); v != "" {
		cfg.ExcludePatterns = splitPatterns(v)
	}
	if v := os.Getenv("BLOCKING"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("BLOCKING must be a boolean, got %q", v)
		}
		cfg.Blocking = b
	}
	if v := os.Getenv("BLOCK_PERCENTAGE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("BLOCK_PERCENTAGE must be an integer, got %q", v)
		}
		cfg.BlockPercentage = n
	}
	if v := os.Getenv("SCAN_MODE"); v != "" {
		cfg.Mode = strings.ToLower(v)
	}
	if v := os.Getenv("OUTPUT_DIR"); v != "" {
		cfg.OutputDir = v
	}
	if v := os.Getenv("LOG_FILE"); v != "" {
		cfg.LogFile = v
	}
	return nil
}

// splitPatterns turns the comma-separated EXCLUDE_FILES value into a clean
// ordered list. The patterns are informational: filtering happens server-side
// and they are only echoed into the report.
func splitPatterns(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate checks the resolved configuration. It runs before any network
// call; a failure here means nothing was sent anywhere.
func (c Config) Validate() error {
	if c.APIBaseURL == "" {
		return fmt.Errorf("API_BASE_URL is required")
	}
	if !baseURLPattern.MatchString(c.APIBaseURL) {
		return fmt.Errorf("API_BASE_URL must start with http:// or https://, got %q", c.APIBaseURL)
	}
	switch c.Format {
	case "md", "pdf", "xml":
	default:
		return fmt.Errorf("REPORT_FORMAT must be one of md, pdf, xml, got %q", c.Format)
	}
	if c.TimeoutSeconds <= 0 {
		return fmt.Errorf("TIMEOUT_SECONDS must be positive, got %d", c.TimeoutSeconds)
	}
	if c.BlockPercentage < 0 || c.BlockPercentage > 100 {
		return fmt.Errorf("BLOCK_PERCENTAGE must be between 0 and 100, got %d", c.BlockPercentage)
	}
	switch c.Mode {
	case "poll", "stream":
	default:
		return fmt.Errorf("SCAN_MODE must be poll or stream, got %q", c.Mode)
	}
	if c.OutputDir == "" {
		return fmt.Errorf("output directory must not be empty")
	}
	return nil
}

// Save writes the configuration as YAML, used by `scangate config init`
func Save(cfg Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

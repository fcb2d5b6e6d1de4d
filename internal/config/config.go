package config

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/vango-dev/splice/internal/errors"
)

const (
	// ConfigFileName is the name of the JSON configuration file.
	ConfigFileName = "splice.json"

	// YAMLConfigFileName is the name of the YAML configuration file. It is
	// used when no splice.json exists.
	YAMLConfigFileName = "splice.yaml"

	// DefaultTemplates is the default template table path.
	DefaultTemplates = "build/templates.cbor.zst"

	// DefaultAddr is the default address of `splice serve`.
	DefaultAddr = "localhost:7070"

	// DefaultNamespace is the default Prometheus namespace.
	DefaultNamespace = "splice"
)

// Config represents the splice.json configuration file.
type Config struct {
	// Root is the source directory whose templates this process owns, as it
	// appears in invocation locations. Locations outside it pass through
	// unreconciled.
	Root string `json:"root" yaml:"root"`

	// Templates is the template table, a path or s3://bucket/key.
	Templates string `json:"templates" yaml:"templates"`

	// Codec overrides the table format inferred from Templates, ie "cbor+zstd".
	Codec string `json:"codec,omitempty" yaml:"codec,omitempty"`

	// Strict enables the stale-template fingerprint check.
	Strict bool `json:"strict,omitempty" yaml:"strict,omitempty"`

	// Workers bounds concurrent batch resolution. 0 means GOMAXPROCS.
	Workers int `json:"workers,omitempty" yaml:"workers,omitempty"`

	Log     LogConfig     `json:"log" yaml:"log"`
	Metrics MetricsConfig `json:"metrics" yaml:"metrics"`
	Tracing TracingConfig `json:"tracing" yaml:"tracing"`
	Serve   ServeConfig   `json:"serve" yaml:"serve"`
	S3      S3Config      `json:"s3,omitempty" yaml:"s3,omitempty"`

	// configPath is the path where the config was loaded from
	configPath string
}

// LogConfig configures the slog handler.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level" yaml:"level"`
	// Format is text or json.
	Format string `json:"format" yaml:"format"`
}

// MetricsConfig configures Prometheus metric names.
type MetricsConfig struct {
	Namespace string `json:"namespace" yaml:"namespace"`
	Subsystem string `json:"subsystem,omitempty" yaml:"subsystem,omitempty"`
}

// TracingConfig configures OpenTelemetry spans.
type TracingConfig struct {
	Name string `json:"name" yaml:"name"`
}

// ServeConfig configures the preview server.
type ServeConfig struct {
	Addr string `json:"addr" yaml:"addr"`
}

// S3Config configures access to tables stored in S3.
type S3Config struct {
	Region   string `json:"region,omitempty" yaml:"region,omitempty"`
	Endpoint string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
}

// New returns a configuration with default values. Root is left empty so
// the root recorded in the template table applies.
func New() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load reads splice.json, or splice.yaml if there is no splice.json, from dir.
func Load(dir string) (*Config, error) {
	for _, name := range []string{ConfigFileName, YAMLConfigFileName} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}
	return nil, errors.New("E122").
		WithDetail("No splice.json or splice.yaml found in " + dir).
		WithSuggestion("Create splice.json with at least a \"templates\" entry")
}

// LoadFile reads configuration from the specified file path. Files ending
// in .yaml or .yml are parsed as YAML; anything else as JSON with comments
// and trailing commas allowed.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E122").
				WithDetail("No configuration file at " + path)
		}
		return nil, errors.New("E120").Wrap(err)
	}

	cfg := &Config{}
	if isYAML(path) {
		err = yaml.Unmarshal(data, cfg)
	} else {
		err = json.Unmarshal(jsonc.ToJSON(data), cfg)
	}
	if err != nil {
		return nil, errors.New("E120").
			WithDetail("Failed to parse " + filepath.Base(path) + ": " + err.Error()).
			WithLocationString(path)
	}

	cfg.configPath = path
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to the specified path, as YAML when the
// path ends in .yaml or .yml.
func (c *Config) SaveTo(path string) error {
	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
		// Add newline at end of file
		data = append(data, '\n')
	}
	if err != nil {
		return errors.New("E123").Wrap(err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("E123").Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Templates == "" {
		c.Templates = DefaultTemplates
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = DefaultNamespace
	}
	if c.Tracing.Name == "" {
		c.Tracing.Name = "splice"
	}
	if c.Serve.Addr == "" {
		c.Serve.Addr = DefaultAddr
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Workers < 0 {
		return errors.New("E121").
			WithDetail("workers must not be negative, got " + strconv.Itoa(c.Workers))
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return errors.New("E121").
			WithDetail("log.format must be text or json, got " + strconv.Quote(c.Log.Format))
	}
	if strings.HasPrefix(c.Templates, "s3://") {
		rest := strings.TrimPrefix(c.Templates, "s3://")
		if bucket, key, _ := strings.Cut(rest, "/"); bucket == "" || key == "" {
			return errors.New("E121").
				WithDetail("templates must look like s3://bucket/key, got " + strconv.Quote(c.Templates))
		}
	}
	return nil
}

// SlogLevel parses Log.Level.
func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return 0, errors.New("E121").
			WithDetail("log.level must be debug, info, warn or error, got " + strconv.Quote(c.Log.Level))
	}
	return level, nil
}

// TemplatesPath returns Templates resolved against the config directory.
// S3 URIs are returned unchanged.
func (c *Config) TemplatesPath() string {
	if strings.HasPrefix(c.Templates, "s3://") || filepath.IsAbs(c.Templates) || c.Dir() == "" {
		return c.Templates
	}
	return filepath.Join(c.Dir(), c.Templates)
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	for _, name := range []string{ConfigFileName, YAMLConfigFileName} {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	return false
}

// FindProjectRoot walks up directories to find the project root.
// Returns the directory containing splice.json or splice.yaml.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("E122").
				WithDetail("No splice.json found in " + startDir + " or any parent directory")
		}
		dir = parent
	}
}

// LoadFromWorkingDir loads configuration from the current working directory
// or its nearest parent that has one.
func LoadFromWorkingDir() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	root, err := FindProjectRoot(wd)
	if err != nil {
		return nil, err
	}

	return Load(root)
}

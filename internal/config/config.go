package config

import (
	"encoding/json"
	"net"
	"os"
	"path/filepath"
	"strconv"

	"github.com/vango-dev/retree/internal/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "retree.json"

	// DefaultPort is the default inspector port.
	DefaultPort = 7070

	// DefaultHost is the default inspector host.
	DefaultHost = "localhost"

	// DefaultInitialCapacity is the default node table capacity.
	DefaultInitialCapacity = 64

	// DefaultNamespace is the default Prometheus namespace.
	DefaultNamespace = "retree"

	// DefaultTracerName is the default OpenTelemetry tracer name.
	DefaultTracerName = "github.com/vango-dev/retree"
)

// Config represents the complete retree.json configuration.
type Config struct {
	// Engine configures the reconciliation tree.
	Engine EngineConfig `json:"engine"`

	// Inspector configures the HTTP inspector.
	Inspector InspectorConfig `json:"inspector"`

	// Metrics configures Prometheus frame metrics.
	Metrics MetricsConfig `json:"metrics"`

	// Tracing configures OpenTelemetry frame spans.
	Tracing TracingConfig `json:"tracing"`

	// Workload configures the synthetic demo workload.
	Workload WorkloadConfig `json:"workload"`

	configPath string
}

// EngineConfig contains tree settings.
type EngineConfig struct {
	// InitialCapacity pre-sizes the node table.
	InitialCapacity int `json:"initialCapacity,omitempty"`

	// FirstFrameRelayout raises FullRelayout on the first frame.
	// A nil value means true.
	FirstFrameRelayout *bool `json:"firstFrameRelayout,omitempty"`

	// Debug enables debug logging of frame summaries.
	Debug bool `json:"debug,omitempty"`
}

// InspectorConfig contains inspector server settings.
type InspectorConfig struct {
	Host string `json:"host,omitempty"`
	Port int    `json:"port,omitempty"`
}

// MetricsConfig contains Prometheus settings.
type MetricsConfig struct {
	Enabled   bool   `json:"enabled,omitempty"`
	Namespace string `json:"namespace,omitempty"`
	Subsystem string `json:"subsystem,omitempty"`
}

// TracingConfig contains OpenTelemetry settings.
type TracingConfig struct {
	Enabled    bool   `json:"enabled,omitempty"`
	TracerName string `json:"tracerName,omitempty"`
}

// WorkloadConfig sizes the demo workload.
type WorkloadConfig struct {
	// Items is the number of list rows declared per frame.
	Items int `json:"items,omitempty"`

	// Interval is the frame interval for the inspect command (e.g., "250ms").
	Interval string `json:"interval,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	relayout := true
	return &Config{
		Engine: EngineConfig{
			InitialCapacity:    DefaultInitialCapacity,
			FirstFrameRelayout: &relayout,
		},
		Inspector: InspectorConfig{
			Host: DefaultHost,
			Port: DefaultPort,
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Namespace: DefaultNamespace,
		},
		Tracing: TracingConfig{
			TracerName: DefaultTracerName,
		},
		Workload: WorkloadConfig{
			Items:    100,
			Interval: "250ms",
		},
	}
}

// Load reads configuration from the specified directory.
// It looks for retree.json in the directory.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E123").
				WithDetail("No retree.json found in " + filepath.Dir(path))
		}
		return nil, errors.New("E120").Wrap(err)
	}

	cfg := New()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New("E120").
			WithDetail("Failed to parse retree.json: " + err.Error())
	}

	cfg.configPath = path
	cfg.applyDefaults()

	return cfg, nil
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.New("E120").Wrap(err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("E120").Wrap(err)
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

func (c *Config) applyDefaults() {
	if c.Engine.InitialCapacity == 0 {
		c.Engine.InitialCapacity = DefaultInitialCapacity
	}
	if c.Engine.FirstFrameRelayout == nil {
		relayout := true
		c.Engine.FirstFrameRelayout = &relayout
	}

	if c.Inspector.Host == "" {
		c.Inspector.Host = DefaultHost
	}
	if c.Inspector.Port == 0 {
		c.Inspector.Port = DefaultPort
	}

	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = DefaultNamespace
	}
	if c.Tracing.TracerName == "" {
		c.Tracing.TracerName = DefaultTracerName
	}

	if c.Workload.Items == 0 {
		c.Workload.Items = 100
	}
	if c.Workload.Interval == "" {
		c.Workload.Interval = "250ms"
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Inspector.Port < 0 || c.Inspector.Port > 65535 {
		return errors.New("E122").
			WithDetail("Port must be between 0 and 65535, got " + strconv.Itoa(c.Inspector.Port))
	}
	if c.Engine.InitialCapacity < 0 {
		return errors.New("E121").
			WithDetail("engine.initialCapacity must not be negative")
	}
	if c.Workload.Items < 0 {
		return errors.New("E121").
			WithDetail("workload.items must not be negative")
	}
	return nil
}

// Relayout reports whether the first frame raises FullRelayout.
func (c *Config) Relayout() bool {
	return c.Engine.FirstFrameRelayout == nil || *c.Engine.FirstFrameRelayout
}

// InspectorAddress returns the listen address for the inspector.
func (c *Config) InspectorAddress() string {
	return net.JoinHostPort(c.Inspector.Host, strconv.Itoa(c.Inspector.Port))
}

// InspectorURL returns the base URL of the inspector.
func (c *Config) InspectorURL() string {
	return "http://" + c.InspectorAddress()
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ConfigFileName))
	return err == nil
}

// FindProjectRoot walks up directories to find the project root.
// Returns the directory containing retree.json, or an error if not found.
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
			return "", errors.New("E123").
				WithDetail("No retree.json found in " + startDir + " or any parent directory")
		}
		dir = parent
	}
}

// LoadFromWorkingDir loads configuration from the current working directory.
// When no retree.json exists up the tree, defaults are returned.
func LoadFromWorkingDir() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	root, err := FindProjectRoot(wd)
	if err != nil {
		return New(), nil
	}

	return Load(root)
}

package mongolsp

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the .mongodb-lsp.yaml configuration file.
type Config struct {
	// Connection settings for the deployment backing live completions.
	Connection ConnectionConfig `yaml:"connection"`

	// Diagnostics toggles publishing of schema/catalog diagnostics.
	// Defaults to on; completions work either way.
	Diagnostics *bool `yaml:"diagnostics,omitempty"`

	// LogLevel sets server verbosity ("debug", "info", "warn", "error").
	LogLevel string `yaml:"logLevel,omitempty"`

	// Schema declares namespace data for deployments the server cannot
	// reach, or for pinning completions to a known schema.
	Schema SchemaConfig `yaml:"schema,omitempty"`
}

// SchemaConfig is a declared namespace inventory: databases mapping to
// collections mapping to field names.
type SchemaConfig struct {
	Databases        map[string]map[string][]string `yaml:"databases,omitempty"`
	StreamProcessors []string                       `yaml:"streamProcessors,omitempty"`
}

// ConnectionConfig holds connection settings for the deployment.
type ConnectionConfig struct {
	// Connection URI (e.g., "mongodb://localhost:27017").
	URI string `yaml:"uri"`

	// Optional credentials (if not in the URI).
	Username string `yaml:"username,omitempty"`
	Password string `yaml:"password,omitempty"`

	// Driver-specific options.
	Options map[string]any `yaml:"options,omitempty"`
}

// DiagnosticsEnabled reports whether diagnostics should be published.
func (c *Config) DiagnosticsEnabled() bool {
	return c.Diagnostics == nil || *c.Diagnostics
}

// DefaultConfigNames are the filenames we search for.
var DefaultConfigNames = []string{".mongodb-lsp.yaml", ".mongodb-lsp.yml", "mongodb-lsp.yaml", "mongodb-lsp.yml"}

// LoadConfig finds and loads the nearest config file walking up from dir.
func LoadConfig(dir string) (*Config, error) {
	path, err := FindConfig(dir)
	if err != nil {
		return nil, err
	}

	return LoadConfigFile(path)
}

// FindConfig searches for a config file starting from dir and walking up.
func FindConfig(dir string) (string, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}

	for dir := absDir; ; {
		for _, name := range DefaultConfigNames {
			path := filepath.Join(dir, name)

			_, err := os.Stat(path)
			if err == nil {
				return path, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrConfigNotFound
		}

		dir = parent
	}
}

// LoadConfigFile loads a config from a specific path.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, err
	}

	var cfg Config

	err = yaml.Unmarshal(data, &cfg)
	if err != nil {
		return nil, err
	}

	return &cfg, nil
}

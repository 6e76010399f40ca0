package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/prometheus-swarm/harness/internal/errors"
	"github.com/prometheus-swarm/harness/internal/worker"
)

// Config is the session configuration for a harness run.
type Config struct {
	// TaskID identifies the task under test.
	TaskID string `yaml:"task_id"`

	// MiddleServerURL is the coordination-service base URL.
	MiddleServerURL string `yaml:"middle_server_url"`

	// DataDir is where run state is persisted. Relative paths resolve
	// against the config file's directory.
	DataDir string `yaml:"data_dir"`

	// WorkersConfig is the path to the workers YAML. Relative paths
	// resolve against the config file's directory.
	WorkersConfig string `yaml:"workers_config"`

	// MaxRounds bounds the run.
	MaxRounds int `yaml:"max_rounds"`
}

// Default returns the built-in session defaults.
func Default() *Config {
	return &Config{
		TaskID:        "test-task-123",
		DataDir:       "data",
		WorkersConfig: "workers.yaml",
		MaxRounds:     1,
	}
}

// Load reads a session config YAML, applies defaults for absent
// fields, and resolves relative paths against the file's directory.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewConfigNotFoundError(path)
		}
		return nil, errors.Wrap(errors.ErrCodeConfigInvalid, "read config file", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.NewConfigInvalidError(path, err)
	}

	baseDir := filepath.Dir(path)
	if cfg.DataDir != "" && !filepath.IsAbs(cfg.DataDir) {
		cfg.DataDir = filepath.Join(baseDir, cfg.DataDir)
	}
	if cfg.WorkersConfig != "" && !filepath.IsAbs(cfg.WorkersConfig) {
		cfg.WorkersConfig = filepath.Join(baseDir, cfg.WorkersConfig)
	}

	return cfg, nil
}

// Validate checks the fields a run cannot start without.
func (c *Config) Validate() error {
	if c.TaskID == "" {
		return errors.New(errors.ErrCodeConfigInvalid, "task_id must be set")
	}
	if c.MiddleServerURL == "" {
		return errors.New(errors.ErrCodeConfigInvalid, "middle_server_url must be set").
			WithSuggestion("Point it at the coordination service, e.g. http://localhost:5000")
	}
	if c.MaxRounds < 1 {
		return errors.New(errors.ErrCodeConfigInvalid, "max_rounds must be at least 1")
	}
	return nil
}

// LoadWorkers reads the workers YAML: a map of worker name to worker
// config.
func LoadWorkers(path string) (map[string]worker.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewConfigNotFoundError(path)
		}
		return nil, errors.Wrap(errors.ErrCodeConfigInvalid, "read workers file", err)
	}

	var workers map[string]worker.Config
	if err := yaml.Unmarshal(data, &workers); err != nil {
		return nil, errors.NewConfigInvalidError(path, err)
	}
	if len(workers) == 0 {
		return nil, errors.New(errors.ErrCodeConfigInvalid, "workers file defines no workers")
	}

	return workers, nil
}

// LoadEnv loads a .env file into the process environment so worker
// env_vars and keypair paths can resolve. A missing file is fine.
func LoadEnv(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Overload(path); err != nil {
		return errors.Wrap(errors.ErrCodeConfigInvalid, "load .env file", err)
	}
	return nil
}

package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Addr         string           `yaml:"addr"`
	APITimeout   time.Duration    `yaml:"timeout"`
	DatabasePath string           `yaml:"database_path"`
	Classifier   ClassifierConfig `yaml:"classifier"`
}

// ClassifierConfig holds settings for the species classifier client.
type ClassifierConfig struct {
	// BaseURL is the HTTP endpoint for the Ollama instance, e.g. http://localhost:11434
	BaseURL string `yaml:"base_url"`
	// Model is the vision-capable model asked to identify species
	Model string `yaml:"model"`
	// Timeout is the per-request timeout
	Timeout time.Duration `yaml:"timeout"`
	// Retries is number of retry attempts for transient failures
	Retries int `yaml:"retries"`
	// Backoff is the base backoff between retries
	Backoff time.Duration `yaml:"backoff"`
	// CircuitFailureThreshold opens circuit after this many consecutive failures
	CircuitFailureThreshold int `yaml:"circuit_failure_threshold"`
	// CircuitReset is the duration after which the circuit attempts to half-open
	CircuitReset time.Duration `yaml:"circuit_reset"`
}

// DefaultClassifierConfig returns a sensible default configuration.
func DefaultClassifierConfig() ClassifierConfig {
	return ClassifierConfig{
		BaseURL:                 getEnv("STRIKENET_OLLAMA_URL", "http://localhost:11434"),
		Model:                   getEnv("STRIKENET_CLASSIFIER_MODEL", "llava"),
		Timeout:                 30 * time.Second,
		Retries:                 0,
		Backoff:                 500 * time.Millisecond,
		CircuitFailureThreshold: 5,
		CircuitReset:            30 * time.Second,
	}
}

func LoadConfig(path string) (*Config, error) {
	cfg := &Config{
		Addr:         getEnv("STRIKENET_ADDR", ":8080"),
		APITimeout:   15 * time.Second,
		DatabasePath: getEnv("STRIKENET_DATABASE_PATH", "strikenet.db"),
		Classifier:   DefaultClassifierConfig(),
	}
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		dec := yaml.NewDecoder(f)
		if err := dec.Decode(cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return def
}

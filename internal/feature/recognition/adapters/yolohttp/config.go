// Package yolohttp provides a client for a remote YOLO inference service.
package yolohttp

import (
	"os"
	"time"
)

// DefaultModelVersion is recorded on results when YOLO_MODEL_VERSION is not set.
const DefaultModelVersion = "best.pt"

// Config holds configuration for the YOLO inference service client.
type Config struct {
	BaseURL      string        // Base URL of the inference service (e.g., "http://localhost:5000")
	ModelVersion string        // Model identifier recorded on recognition results
	Timeout      time.Duration // HTTP request timeout
}

// LoadConfig loads YOLO inference service configuration from environment variables.
func LoadConfig() Config {
	cfg := Config{
		BaseURL:      os.Getenv("YOLO_INFERENCE_URL"),
		ModelVersion: os.Getenv("YOLO_MODEL_VERSION"),
		Timeout:      30 * time.Second,
	}
	if cfg.ModelVersion == "" {
		cfg.ModelVersion = DefaultModelVersion
	}
	return cfg
}

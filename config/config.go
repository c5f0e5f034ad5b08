// Package config holds the immutable runtime configuration for the duochat
// client. It is loaded once in main and passed to every component that needs
// backend access; nothing reads the environment after startup.
package config

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/compute/metadata"
	"github.com/caarlos0/env/v11"
)

// Backend selects the document store implementation.
const (
	BackendFirestore = "firestore"
	BackendMemory    = "memory"
)

var errMissingProjectID = errors.New("project ID is not set and could not be discovered")

type Config struct {
	// ProjectID is the Firebase/GCP project. When empty it is resolved from
	// the GCE metadata server, the same way the backend functions do.
	ProjectID string `env:"DUOCHAT_PROJECT_ID"`

	// APIKey is the Firebase Web API key used by the Identity Toolkit
	// sign-in endpoints.
	APIKey string `env:"DUOCHAT_API_KEY"`

	// CredentialsFile optionally points at a service account JSON file for
	// the Firestore client. When empty, application default credentials apply.
	CredentialsFile string `env:"DUOCHAT_CREDENTIALS_FILE"`

	// Backend is "firestore" or "memory" (in-process store, for demos/tests).
	Backend string `env:"DUOCHAT_BACKEND" envDefault:"firestore"`

	// LogFile receives the structured log stream; stderr when empty.
	LogFile string `env:"DUOCHAT_LOG_FILE"`

	// CloudLog additionally ships log records to Cloud Logging.
	CloudLog bool `env:"DUOCHAT_CLOUD_LOG"`
}

// Load parses the environment and fills in the project ID from the metadata
// server when running on GCP.
func Load(ctx context.Context) (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}

	if cfg.Backend != BackendFirestore && cfg.Backend != BackendMemory {
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}

	if cfg.Backend == BackendFirestore {
		if cfg.ProjectID == "" && metadata.OnGCE() {
			projectID, err := metadata.ProjectIDWithContext(ctx)
			if err != nil {
				return nil, fmt.Errorf("resolving project ID: %w", err)
			}
			cfg.ProjectID = projectID
		}
		if cfg.ProjectID == "" {
			return nil, errMissingProjectID
		}
		if cfg.APIKey == "" {
			return nil, errors.New("DUOCHAT_API_KEY is not set")
		}
	}
	return cfg, nil
}

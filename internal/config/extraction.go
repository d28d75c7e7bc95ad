package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"github.com/siftlabs/sift/internal/extract"
	"github.com/siftlabs/sift/internal/ingest"
)

// Extraction is the file-backed extraction configuration. A missing file
// yields the defaults; a partial file is merged over them section by section.
//
// Precedence (highest first): SIFT_ environment variables, the YAML file,
// the built-in defaults.
type Extraction struct {
	ExtractionSection struct {
		EnabledFeatures []string `koanf:"enabled_features"`
		EnabledTargets  []string `koanf:"enabled_targets"`
		Features        struct {
			InitialLatency struct {
				NResponses int `koanf:"n_responses"`
			} `koanf:"initial_latency"`
		} `koanf:"features"`
	} `koanf:"extraction"`

	Processing struct {
		RoleTransfer struct {
			AssistantToUser []string `koanf:"assistant_to_user"`
			UserToAssistant []string `koanf:"user_to_assistant"`
		} `koanf:"role_transfer"`
		MinMessages int `koanf:"min_messages"`
		MaxMessages int `koanf:"max_messages"`
	} `koanf:"processing"`

	Workers int `koanf:"workers"`
}

const defaultExtractionYAML = `
extraction:
  enabled_features: []
  enabled_targets: []
  features:
    initial_latency:
      n_responses: 5
processing:
  role_transfer:
    assistant_to_user: []
    user_to_assistant: []
  min_messages: 0
  max_messages: 0
workers: 4
`

// LoadExtraction loads the extraction config. An empty path means
// defaults-only (plus environment overrides).
func LoadExtraction(path string) (*Extraction, error) {
	k := koanf.New(".")

	if err := k.Load(rawbytes.Provider([]byte(defaultExtractionYAML)), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("load default config: %w", err)
	}

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
		if err := k.Load(rawbytes.Provider(raw), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	// Double underscore separates nesting levels:
	// SIFT_WORKERS, SIFT_PROCESSING__MIN_MESSAGES, etc.
	err := k.Load(env.Provider("SIFT_", ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, "SIFT_")), "__", ".")
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("load env overrides: %w", err)
	}

	var cfg Extraction
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

// ExtractConfig maps the file config onto the extraction engine's settings.
func (e *Extraction) ExtractConfig() extract.Config {
	return extract.Config{
		EnabledFeatures:         e.ExtractionSection.EnabledFeatures,
		EnabledTargets:          e.ExtractionSection.EnabledTargets,
		InitialLatencyResponses: e.ExtractionSection.Features.InitialLatency.NResponses,
	}
}

// IngestOptions maps the processing section onto the ingestion settings.
func (e *Extraction) IngestOptions() ingest.Options {
	return ingest.Options{
		MinMessages:     e.Processing.MinMessages,
		MaxMessages:     e.Processing.MaxMessages,
		AssistantToUser: e.Processing.RoleTransfer.AssistantToUser,
		UserToAssistant: e.Processing.RoleTransfer.UserToAssistant,
	}
}

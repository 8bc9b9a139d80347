package definitions

import (
	"fmt"
	"os"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
	"go.uber.org/zap"
)

// maxDefinitionFileSize caps definition files at 1MB.
const maxDefinitionFileSize = 1024 * 1024

// Load reads, parses, validates, and normalizes a workflow definition
// file. YAML is the canonical format; JSON parses as a YAML subset.
func Load(path string, logger *zap.Logger) (*Workflow, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat definitions file: %w", err)
	}
	if info.Size() > maxDefinitionFileSize {
		return nil, fmt.Errorf("definitions file too large: %d bytes (max %d)",
			info.Size(), maxDefinitionFileSize)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read definitions file: %w", err)
	}

	return Parse(content, logger)
}

// Parse parses and validates raw definition bytes.
func Parse(content []byte, logger *zap.Logger) (*Workflow, error) {
	k := koanf.New(".")
	if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to parse definitions: %w", err)
	}

	var wf Workflow
	if err := k.Unmarshal("", &wf); err != nil {
		return nil, fmt.Errorf("failed to unmarshal definitions: %w", err)
	}

	if err := wf.Validate(logger); err != nil {
		return nil, err
	}

	return &wf, nil
}

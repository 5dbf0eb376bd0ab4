package catalog

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalogYAML []byte

// catalogFile is the on-disk shape of a task catalog.
type catalogFile struct {
	Version       int               `yaml:"version"`
	SystemPrompts map[string]string `yaml:"system_prompts"`
	Tasks         []Task            `yaml:"tasks"`
}

// Load parses a YAML catalog and builds a validated Registry.
func Load(data []byte) (*Registry, error) {
	var cf catalogFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("parse catalog yaml: %w", err)
	}
	reg, err := NewRegistry(cf.Tasks)
	if err != nil {
		return nil, err
	}
	for domain, prompt := range cf.SystemPrompts {
		if domain == "default" {
			domain = ""
		}
		reg.systemPrompts[domain] = prompt
	}
	return reg, nil
}

// LoadFromPath reads and parses a catalog file.
func LoadFromPath(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Load(data)
}

// Default builds the registry from the embedded catalog. The embedded
// file is validated like any other, so a bad edit fails at startup.
func Default() (*Registry, error) {
	return Load(defaultCatalogYAML)
}

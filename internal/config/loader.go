package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

// keyAliases maps legacy config keys to their current names. Upstream
// configs used init_delay/restore_delay, so both spellings keep working.
var keyAliases = map[string]string{
	"init_delay":     "initialize_delay",
	"restore_delay":  "unminimize_delay",
	"render_backend": "rendering_backend",
}

// Dir returns the config directory (~/.config/framelight), creating it if
// needed.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not find home directory: %w", err)
	}
	dir := filepath.Join(home, ".config", "framelight")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("could not create config directory: %w", err)
	}
	return dir, nil
}

// Path returns the config file path, creating the directory if needed.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads the config from the default location, writing the embedded
// default config first if no file exists yet.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := os.WriteFile(path, defaultYAML, 0644); err != nil {
			return nil, fmt.Errorf("could not write default config: %w", err)
		}
	}
	return LoadFromPath(path)
}

// LoadFromPath reads and validates a config file. Unknown keys are errors
// so typos fail loudly instead of being silently ignored.
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read config %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes, defaults, and validates raw config bytes.
func Parse(data []byte) (*Config, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("invalid yaml: %w", err)
	}
	// An empty file decodes to a zero node; that means all defaults.
	if root.Kind == 0 || len(root.Content) == 0 {
		return DefaultConfig(), nil
	}

	renameAliases(&root)

	cfg := &Config{}
	dec := yaml.NewDecoder(bytes.NewReader(mustMarshal(&root)))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// renameAliases rewrites legacy key names in place across the whole node
// tree before strict decoding.
func renameAliases(n *yaml.Node) {
	if n.Kind == yaml.MappingNode {
		for i := 0; i+1 < len(n.Content); i += 2 {
			key := n.Content[i]
			if canonical, ok := keyAliases[key.Value]; ok {
				key.Value = canonical
			}
		}
	}
	for _, child := range n.Content {
		renameAliases(child)
	}
}

func mustMarshal(n *yaml.Node) []byte {
	out, err := yaml.Marshal(n)
	if err != nil {
		// A node we just decoded always re-marshals.
		panic(err)
	}
	return out
}

// DefaultYAML returns the embedded default config text, used by
// `framelight config print --defaults`.
func DefaultYAML() []byte {
	return defaultYAML
}

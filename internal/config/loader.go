package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LoadResult carries the effective config and the file it came from.
type LoadResult struct {
	Config *Config
	File   string // empty when defaults were used
}

// DefaultConfigPath returns ~/.config/xtiler/config.yaml.
func DefaultConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "xtiler", "config.yaml"), nil
}

// Load reads the configuration from the standard location.
func Load() (*Config, error) {
	path, err := DefaultConfigPath()
	if err != nil {
		return nil, err
	}
	res, err := LoadFromPath(path)
	if err != nil {
		return nil, err
	}
	return res.Config, nil
}

// LoadFromPath reads path on top of DefaultConfig. A missing file yields the
// defaults; unknown keys are rejected.
func LoadFromPath(path string) (*LoadResult, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return &LoadResult{Config: cfg}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to decode config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, attachPosition(err, path, &root)
	}

	return &LoadResult{Config: cfg, File: path}, nil
}

// attachPosition fills in the file position of a top-level key.
func attachPosition(err error, path string, root *yaml.Node) error {
	var verr *ValidationError
	if !errors.As(err, &verr) {
		return err
	}
	verr.File = path
	if node := lookupKey(root, verr.Path); node != nil {
		verr.Line = node.Line
		verr.Column = node.Column
	}
	return verr
}

func lookupKey(root *yaml.Node, key string) *yaml.Node {
	doc := root
	if doc.Kind == yaml.DocumentNode && len(doc.Content) > 0 {
		doc = doc.Content[0]
	}
	if doc.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(doc.Content); i += 2 {
		if doc.Content[i].Value == key {
			return doc.Content[i]
		}
	}
	return nil
}

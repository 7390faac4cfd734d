package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// fileConfig is the on-disk shape of Config. Durations are written as
// strings so the file stays readable.
type fileConfig struct {
	Version  int      `yaml:"version"`
	Apps     []string `yaml:"apps"`
	Interval string   `yaml:"interval"`
	Duration string   `yaml:"duration"`
	Output   string   `yaml:"output"`
	Serial   string   `yaml:"serial,omitempty"`
	ADB      string   `yaml:"adb,omitempty"`
	Display  string   `yaml:"display"`
	LogFile  string   `yaml:"log_file,omitempty"`
	SSH      *fileSSH `yaml:"ssh,omitempty"`
}

type fileSSH struct {
	Host                  string `yaml:"host"`
	Timeout               string `yaml:"timeout,omitempty"`
	InsecureIgnoreHostKey bool   `yaml:"insecure_ignore_host_key,omitempty"`
}

// Marshal renders cfg as YAML.
func Marshal(cfg *Config) ([]byte, error) {
	fc := fileConfig{
		Version:  cfg.Version,
		Apps:     cfg.Apps,
		Interval: FormatDuration(cfg.Interval),
		Duration: FormatDuration(cfg.Duration),
		Output:   cfg.Output,
		Serial:   cfg.Serial,
		Display:  cfg.Display,
		LogFile:  cfg.LogFile,
	}
	if fc.Apps == nil {
		fc.Apps = []string{}
	}
	if cfg.ADB != DefaultConfig().ADB {
		fc.ADB = cfg.ADB
	}
	if cfg.SSH.Host != "" {
		fc.SSH = &fileSSH{
			Host:                  cfg.SSH.Host,
			Timeout:               FormatDuration(cfg.SSH.Timeout),
			InsecureIgnoreHostKey: cfg.SSH.InsecureIgnoreHostKey,
		}
	}

	var buf strings.Builder
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(&fc); err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	return []byte(buf.String()), nil
}

// Write saves cfg to path, creating parent directories.
func Write(cfg *Config, path string) error {
	data, err := Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// AddApp appends app to the apps list in the config file, preserving the
// rest of the file's structure and comments. It reports whether the file
// changed; an app already listed (case-insensitive) is left alone.
func AddApp(configPath, app string) (bool, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return false, fmt.Errorf("failed to read config file: %w", err)
	}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return false, fmt.Errorf("failed to parse config file: %w", err)
	}

	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return false, fmt.Errorf("invalid YAML document structure")
	}

	docNode := root.Content[0]
	if docNode.Kind != yaml.MappingNode {
		return false, fmt.Errorf("expected mapping at document root")
	}

	appsNode := findMapValue(docNode, "apps")
	if appsNode == nil {
		appsNode = &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		docNode.Content = append(docNode.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: "apps"},
			appsNode,
		)
	}
	if appsNode.Kind != yaml.SequenceNode {
		return false, fmt.Errorf("'apps' must be a list")
	}
	// An empty flow list ("apps: []") would stay inline; switch to block.
	appsNode.Style = 0

	for _, item := range appsNode.Content {
		if item.Kind == yaml.ScalarNode && strings.EqualFold(item.Value, app) {
			return false, nil
		}
	}

	appsNode.Content = append(appsNode.Content, &yaml.Node{
		Kind:  yaml.ScalarNode,
		Tag:   "!!str",
		Value: app,
	})

	var buf strings.Builder
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(&root); err != nil {
		return false, fmt.Errorf("failed to encode config: %w", err)
	}
	encoder.Close()

	if err := os.WriteFile(configPath, []byte(buf.String()), 0644); err != nil {
		return false, fmt.Errorf("failed to write config file: %w", err)
	}

	return true, nil
}

// findMapValue finds a value in a mapping node by key name.
func findMapValue(node *yaml.Node, key string) *yaml.Node {
	if node.Kind != yaml.MappingNode {
		return nil
	}

	for i := 0; i < len(node.Content)-1; i += 2 {
		keyNode := node.Content[i]
		valueNode := node.Content[i+1]

		if keyNode.Kind == yaml.ScalarNode && keyNode.Value == key {
			return valueNode
		}
	}

	return nil
}

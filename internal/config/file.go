package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Error variables for file loading errors
var (
	// ErrUnsupportedFormat is returned for config files with an unknown extension
	ErrUnsupportedFormat = errors.New("unsupported configuration file format")
)

// LoadFile loads the configuration file document used as the file source.
// The format is chosen by extension: .conf/.ini, .yaml/.yml, or .toml.
// Exactly one document is active per run. A missing file is not an error;
// a warning is logged and resolution proceeds without a file source.
func (r *Resolver) LoadFile(path string) error {
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			r.log.Warn("Configuration file %s not found. Continuing without it.", path)
			return nil
		}
		return fmt.Errorf("failed to read configuration file: %w", err)
	}

	doc, err := parseDocument(path, data)
	if err != nil {
		return err
	}

	r.fileDoc = doc
	return nil
}

// parseDocument parses file data into a section/key document based on the
// file extension.
func parseDocument(path string, data []byte) (map[string]interface{}, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".conf", ".ini":
		sections, err := ParseINI(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		return iniDocument(sections), nil

	case ".yaml", ".yml":
		var doc map[string]interface{}
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		return doc, nil

	case ".toml":
		var doc map[string]interface{}
		if err := toml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		return doc, nil

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// iniDocument converts parsed INI sections to the generic document shape
// shared with YAML and TOML. Keys outside any section become top-level keys.
func iniDocument(sections map[string]map[string]string) map[string]interface{} {
	doc := make(map[string]interface{}, len(sections))
	for name, kv := range sections {
		if name == "" {
			for k, v := range kv {
				doc[k] = v
			}
			continue
		}
		sec := make(map[string]interface{}, len(kv))
		for k, v := range kv {
			sec[k] = v
		}
		doc[name] = sec
	}
	return doc
}

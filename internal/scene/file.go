package scene

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format is the encoding of a persisted scene document.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFor picks the document format from a file extension. Anything that
// is not YAML is treated as JSON.
func FormatFor(filename string) Format {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Encode writes data in the given format. JSON output is indented.
func Encode(data SceneData, format Format) ([]byte, error) {
	switch format {
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(data); err != nil {
			return nil, fmt.Errorf("encoding yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("encoding yaml: %w", err)
		}
		return buf.Bytes(), nil
	case FormatJSON, "":
		b, err := json.MarshalIndent(data, "", "    ")
		if err != nil {
			return nil, fmt.Errorf("encoding json: %w", err)
		}
		return append(b, '\n'), nil
	default:
		return nil, fmt.Errorf("unsupported document format %q", format)
	}
}

// Decode parses a document in the given format.
func Decode(b []byte, format Format) (SceneData, error) {
	var data SceneData
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(b, &data); err != nil {
			return SceneData{}, err
		}
	case FormatJSON, "":
		if err := json.Unmarshal(b, &data); err != nil {
			return SceneData{}, err
		}
	default:
		return SceneData{}, fmt.Errorf("unsupported document format %q", format)
	}
	return data, nil
}

// ReadFile reads and parses a document. Parse failures are reported as
// *InvalidFileError.
func ReadFile(filename string) (SceneData, error) {
	b, err := os.ReadFile(filename)
	if err != nil {
		return SceneData{}, fmt.Errorf("reading scene file: %w", err)
	}
	data, err := Decode(b, FormatFor(filename))
	if err != nil {
		return SceneData{}, &InvalidFileError{Filename: filename, Err: err}
	}
	return data, nil
}

// SaveToFile writes the scene to filename, in YAML or JSON depending on the
// extension, and clears the modified flag.
func (s *Scene) SaveToFile(filename string) error {
	b, err := Encode(s.Serialize(), FormatFor(filename))
	if err != nil {
		return err
	}
	if err := os.WriteFile(filename, b, 0o644); err != nil {
		return fmt.Errorf("writing scene file: %w", err)
	}
	s.SetModified(false)
	s.logger.Info("Saved scene.", "file", filename, "nodes", len(s.nodes), "edges", len(s.edges))
	return nil
}

// LoadFromFile replaces the scene content with the document in filename,
// keeping stored ids. The history is reset to a single initial stamp. A
// *PartialLoadError still leaves the loaded part of the scene in place.
func (s *Scene) LoadFromFile(filename string) error {
	data, err := ReadFile(filename)
	if err != nil {
		var invalid *InvalidFileError
		if errors.As(err, &invalid) {
			s.logger.Error("Invalid scene file.", "file", filename, "error", invalid.Err)
		}
		return err
	}
	loadErr := s.Deserialize(data, true)
	s.history.Clear(true)
	s.SetModified(false)
	s.logger.Info("Loaded scene.", "file", filename, "nodes", len(s.nodes), "edges", len(s.edges))
	return loadErr
}

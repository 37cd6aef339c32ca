// Package schema publishes a JSON Schema for the save container so tools
// outside the game can validate unobfuscated save files.
package schema

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goliatone/go-savestate"
	"github.com/invopop/jsonschema"
)

const (
	Title       = "Save State Container"
	Description = "Entity snapshots written by savestate.Service.Save. Each value carries its type tag: 1 signed, 2 unsigned, 3 float, 4 bool, 5 text, 6 null, 7 object."
)

// Container reflects the schema of savestate.Container.
func Container() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: true,
	}
	s := reflector.Reflect(new(savestate.Container))
	s.Title = Title
	s.Description = Description
	return s
}

// Marshal renders s as indented JSON with a trailing newline.
func Marshal(s *jsonschema.Schema) ([]byte, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	return append(data, '\n'), nil
}

// Write replaces the file at path with s, going through a temporary file.
func Write(path string, s *jsonschema.Schema) error {
	data, err := Marshal(s)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create schema directory: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write temp schema: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("replace schema: %w", err)
	}
	return nil
}

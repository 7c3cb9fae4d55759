package app

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/specialistvlad/blockgraph/internal/state"
)

// Format is a workspace document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatXML  Format = "xml"
)

// FormatOf picks the format from a file extension; anything but .xml is JSON.
func FormatOf(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".xml") {
		return FormatXML
	}
	return FormatJSON
}

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatJSON, FormatXML:
		return f, nil
	}
	return "", fmt.Errorf("unknown document format %q: must be 'json' or 'xml'", s)
}

// DecodeDocument parses a workspace document.
func DecodeDocument(data []byte, f Format) (*state.Workspace, error) {
	if f == FormatXML {
		return state.UnmarshalWorkspaceXML(data)
	}
	doc := new(state.Workspace)
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("decoding workspace JSON: %w", err)
	}
	return doc, nil
}

// EncodeDocument serializes a workspace document. JSON is indented.
func EncodeDocument(doc *state.Workspace, f Format) ([]byte, error) {
	if f == FormatXML {
		return state.MarshalWorkspaceXML(doc)
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding workspace JSON: %w", err)
	}
	return append(data, '\n'), nil
}

// ReadDocument reads a workspace document, choosing the format by extension.
func ReadDocument(path string) (*state.Workspace, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading workspace document: %w", err)
	}
	doc, err := DecodeDocument(data, FormatOf(path))
	if err != nil {
		return nil, fmt.Errorf("in %s: %w", path, err)
	}
	return doc, nil
}

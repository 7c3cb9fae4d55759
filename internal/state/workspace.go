package state

import "sort"

// Workspace is the JSON document for a whole workspace.
type Workspace struct {
	Blocks     *Blocks     `json:"blocks,omitempty"`
	Variables  []Variable  `json:"variables,omitempty"`
	Procedures []Procedure `json:"procedures,omitempty"`
	Comments   []Comment   `json:"workspaceComments,omitempty"`
}

// Blocks wraps the top-level block list.
type Blocks struct {
	LanguageVersion int      `json:"languageVersion"`
	Blocks          []*Block `json:"blocks"`
}

// TopBlocks returns the top-level block states, or nil for an empty document.
func (w *Workspace) TopBlocks() []*Block {
	if w == nil || w.Blocks == nil {
		return nil
	}
	return w.Blocks.Blocks
}

// Variable is the serialized form of a variable model.
type Variable struct {
	Name string `json:"name"`
	ID   string `json:"id"`
	Type string `json:"type,omitempty"`
}

// Procedure is the serialized form of a procedure model.
type Procedure struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	ReturnTypes []string    `json:"returnTypes"`
	Parameters  []Parameter `json:"parameters,omitempty"`
}

// Parameter is one procedure parameter.
type Parameter struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Types []string `json:"types,omitempty"`
}

// Comment is the serialized form of a workspace comment.
type Comment struct {
	ID     string  `json:"id"`
	Text   string  `json:"text"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Package digest fingerprints serialized workspaces. Two workspaces with the
// same blocks, variables and comments have the same digest, whatever order
// their maps were built in.
package digest

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/specialistvlad/blockgraph/internal/workspace"
	"lukechampine.com/blake3"
)

// Size is the digest length in bytes.
const Size = 32

// CanonicalJSON encodes v with sorted object keys, no insignificant
// whitespace and no HTML escaping.
func CanonicalJSON(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding value: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var generic any
	if err := dec.Decode(&generic); err != nil {
		return nil, fmt.Errorf("re-decoding value: %w", err)
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(generic); err != nil {
		return nil, fmt.Errorf("encoding canonical form: %w", err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// Bytes returns the BLAKE3-256 hex digest of data.
func Bytes(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Sum returns the hex digest of v's canonical JSON.
func Sum(v any) (string, error) {
	data, err := CanonicalJSON(v)
	if err != nil {
		return "", err
	}
	return Bytes(data), nil
}

// Workspace returns the digest of ws's saved state.
func Workspace(ws *workspace.Workspace) (string, error) {
	return Sum(workspace.Save(ws))
}

package store

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/moacafe/internal/ir"
)

// marshalSnapshot converts a snapshot to canonical JSON for storage.
// Canonical bytes make an unchanged snapshot byte-identical on rewrite.
func marshalSnapshot(key string, v any) ([]byte, error) {
	data, err := ir.MarshalCanonical(v)
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", key, err)
	}
	return data, nil
}

// unmarshalSnapshot decodes a stored snapshot into out.
// A JSON null is reported as an error so that callers fall back to defaults
// instead of adopting a zero value.
func unmarshalSnapshot(key string, data []byte, out any) error {
	if len(data) == 0 || string(data) == "null" {
		return fmt.Errorf("unmarshal %s: empty document", key)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("unmarshal %s: %w", key, err)
	}
	return nil
}

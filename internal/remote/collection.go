package remote

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
)

// decodeCollection normalizes the two encodings a document store may use for
// a collection: a JSON array (possibly with null holes) or an object keyed by
// id. Object members keep the order the store served them in. Elements that
// are null are skipped; elements that fail to decode or validate are skipped
// with a warning. stored counts the non-null elements, valid or not.
func decodeCollection[T any](what string, data json.RawMessage, validate func(T) error) (items []T, stored int, err error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", what, err)
	}
	delim, ok := tok.(json.Delim)
	if !ok || (delim != '[' && delim != '{') {
		return nil, 0, fmt.Errorf("%s: expected array or object, got %v", what, tok)
	}

	items = []T{}
	index := 0
	for dec.More() {
		label := fmt.Sprint(index)
		if delim == '{' {
			keyTok, err := dec.Token()
			if err != nil {
				return nil, 0, fmt.Errorf("%s: %w", what, err)
			}
			label, _ = keyTok.(string)
		}
		index++

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, 0, fmt.Errorf("%s[%s]: %w", what, label, err)
		}
		if string(bytes.TrimSpace(raw)) == "null" {
			continue
		}
		stored++

		var item T
		if err := json.Unmarshal(raw, &item); err != nil {
			slog.Warn("skipping malformed remote element", "collection", what, "key", label, "error", err)
			continue
		}
		if validate != nil {
			if err := validate(item); err != nil {
				slog.Warn("skipping invalid remote element", "collection", what, "key", label, "error", err)
				continue
			}
		}
		items = append(items, item)
	}
	return items, stored, nil
}

package docstore

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// splitPath turns "/orders/A1.json" into ["orders", "A1"].
// The root is addressed by "/.json" or "/".
func splitPath(p string) []string {
	p = strings.TrimSuffix(strings.Trim(p, "/"), ".json")
	if p == "" {
		return nil
	}
	var parts []string
	for _, s := range strings.Split(p, "/") {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return parts
}

func decodeValue(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("decode body: %w", err)
	}
	return normalize(v), nil
}

// normalize stores arrays as objects keyed by index so that every path
// below a collection is addressable the same way.
func normalize(v any) any {
	switch val := v.(type) {
	case []any:
		obj := make(map[string]any, len(val))
		for i, elem := range val {
			if elem == nil {
				continue
			}
			obj[strconv.Itoa(i)] = normalize(elem)
		}
		if len(obj) == 0 {
			return nil
		}
		return obj
	case map[string]any:
		obj := make(map[string]any, len(val))
		for k, elem := range val {
			if elem == nil {
				continue
			}
			obj[k] = normalize(elem)
		}
		if len(obj) == 0 {
			return nil
		}
		return obj
	default:
		return v
	}
}

func lookup(root any, parts []string) any {
	cur := root
	for _, p := range parts {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur = obj[p]
	}
	return cur
}

// set writes v at parts, creating intermediate objects. A nil v deletes and
// prunes parents left empty.
func set(root any, parts []string, v any) any {
	if len(parts) == 0 {
		return v
	}
	obj, _ := root.(map[string]any)
	if obj == nil {
		if v == nil {
			return root
		}
		obj = map[string]any{}
	}
	child := set(obj[parts[0]], parts[1:], v)
	if child == nil {
		delete(obj, parts[0])
	} else {
		obj[parts[0]] = child
	}
	if len(obj) == 0 {
		return nil
	}
	return obj
}

// render converts the stored value to its wire form. When forceArray is set
// an object is served as the array of its values ordered by key.
func render(v any, forceArray bool) any {
	obj, ok := v.(map[string]any)
	if !ok {
		return v
	}
	if forceArray {
		keys := sortedKeys(obj)
		out := make([]any, 0, len(keys))
		for _, k := range keys {
			out = append(out, render(obj[k], false))
		}
		return out
	}
	if arr, ok := asArray(obj); ok {
		return arr
	}
	out := make(map[string]any, len(obj))
	for k, elem := range obj {
		out[k] = render(elem, false)
	}
	return out
}

// asArray reports whether obj looks like a sparse array: every key is a
// non-negative integer and at least half of the slots are filled.
func asArray(obj map[string]any) ([]any, bool) {
	maxIndex := -1
	for k := range obj {
		i, err := strconv.Atoi(k)
		if err != nil || i < 0 || strconv.Itoa(i) != k {
			return nil, false
		}
		maxIndex = max(maxIndex, i)
	}
	if maxIndex < 0 || len(obj)*2 <= maxIndex {
		return nil, false
	}
	arr := make([]any, maxIndex+1)
	for k, elem := range obj {
		i, _ := strconv.Atoi(k)
		arr[i] = render(elem, false)
	}
	return arr, true
}

func sortedKeys(obj map[string]any) []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

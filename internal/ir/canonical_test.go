package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonicalBasic(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected string
	}{
		{"string", "hello", `"hello"`},
		{"empty string", "", `""`},
		{"int", 42, "42"},
		{"negative int", -100, "-100"},
		{"max int64", int64(9223372036854775807), "9223372036854775807"},
		{"bool", true, "true"},
		{"null", nil, "null"},
		{"empty array", []int{}, "[]"},
		{"empty object", map[string]int{}, "{}"},
		{"array of ints", []int{1, 2, 3}, "[1,2,3]"},
		{"html is not escaped", "<a&b>", `"<a&b>"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := MarshalCanonical(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(result))
		})
	}
}

func TestMarshalCanonicalSortedKeys(t *testing.T) {
	result, err := CanonicalizeJSON([]byte(`{"zebra":1, "alpha":{"b":1,"a":2}, "beta":3}`))
	require.NoError(t, err)
	assert.Equal(t, `{"alpha":{"a":2,"b":1},"beta":3,"zebra":1}`, string(result))
}

func TestMarshalCanonicalUTF16Ordering(t *testing.T) {
	// U+10000 encodes as the surrogate pair 0xD800 0xDC00, which sorts
	// before U+E000 in UTF-16 but after it in UTF-8.
	obj := map[string]int{
		"\uE000":     1,
		"\U00010000": 2,
	}

	result, err := MarshalCanonical(obj)
	require.NoError(t, err)
	assert.Equal(t, "{\"\U00010000\":2,\"\uE000\":1}", string(result))
}

func TestMarshalCanonicalNFC(t *testing.T) {
	decomposed, err := MarshalCanonical("cafe\u0301")
	require.NoError(t, err)
	composed, err := MarshalCanonical("caf\u00e9")
	require.NoError(t, err)
	assert.Equal(t, string(composed), string(decomposed))
}

func TestMarshalCanonicalLineSeparators(t *testing.T) {
	result, err := MarshalCanonical("a\u2028b")
	require.NoError(t, err)
	assert.Equal(t, "\"a\u2028b\"", string(result))

	literal, err := MarshalCanonical(`a\u2028b`)
	require.NoError(t, err)
	assert.Equal(t, `"a\\u2028b"`, string(literal), "escaped backslash must stay escaped")
}

func TestMarshalCanonicalNumbersKeepLiteral(t *testing.T) {
	result, err := CanonicalizeJSON([]byte(`{"price": 25000, "ratio": 0.5}`))
	require.NoError(t, err)
	assert.Equal(t, `{"price":25000,"ratio":0.5}`, string(result))
}

func TestCanonicalizeJSONRejectsGarbage(t *testing.T) {
	_, err := CanonicalizeJSON([]byte(`{"a":`))
	assert.Error(t, err)
}

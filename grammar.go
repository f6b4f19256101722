package settings

import "github.com/goliatone/go-settings/internal/grammar"

// KeyValues is one segment of a segmented list value.
type KeyValues = grammar.KeyValues

// ParseList parses a flat comma-separated setting value, honouring quoting
// and escapes.
func ParseList(text string) ([]string, error) {
	return grammar.ParseList(text)
}

// ParseSegmentedList parses a "key: v1, v2, key2: v3" setting value into
// keyed segments.
func ParseSegmentedList(text string) ([]KeyValues, error) {
	return grammar.ParseSegmentedList(text)
}

// ParseImportList parses a "path as alias, path2 as alias2" setting value
// into an alias-to-path mapping. Later duplicate aliases overwrite earlier
// ones.
func ParseImportList(text string) (map[string]string, error) {
	return grammar.ParseImportList(text)
}

// DecodeEscapes resolves backslash escapes the way quoted setting-value
// tokens do.
func DecodeEscapes(body string) (string, error) {
	return grammar.DecodeEscapes(body)
}

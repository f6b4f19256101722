package grammar

import (
	"errors"
	"reflect"
	"testing"
)

func TestParseList(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want []string
	}{
		{"plain", "a, b, c", []string{"a", "b", "c"}},
		{"no spaces", "a,b,c", []string{"a", "b", "c"}},
		{"empty", "", nil},
		{"single", "alone", []string{"alone"}},
		{"quoted comma is literal", "'a,b', c", []string{"a,b", "c"}},
		{"double quoted", `"x y", z`, []string{"x y", "z"}},
		{"paths", "/include/common.t, /include/footer.t", []string{"/include/common.t", "/include/footer.t"}},
		{"escapes", `'line1\nline2'`, []string{"line1\nline2"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseList(tc.in)
			if err != nil {
				t.Fatalf("ParseList(%q) returned error: %v", tc.in, err)
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("ParseList(%q) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestParseListErrors(t *testing.T) {
	cases := []struct {
		name string
		in   string
	}{
		{"missing separator", "a b"},
		{"unterminated quote", "'abc"},
		{"unexpected character", "a, ;"},
		{"bad escape", `'oops\q'`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseList(tc.in)
			var perr *ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("ParseList(%q) = %v, want *ParseError", tc.in, err)
			}
		})
	}
}

func TestParseSegmentedList(t *testing.T) {
	got, err := ParseSegmentedList("k1: a, b, k2: c")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []KeyValues{
		{Key: "k1", Values: []string{"a", "b"}},
		{Key: "k2", Values: []string{"c"}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected segments: %v", got)
	}
}

func TestParseSegmentedListQuotedItems(t *testing.T) {
	got, err := ParseSegmentedList(`allowed_types: com.example.C1, com.example.C2, trusted_documents: lib/*, "safe doc.t"`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []KeyValues{
		{Key: "allowed_types", Values: []string{"com.example.C1", "com.example.C2"}},
		{Key: "trusted_documents", Values: []string{"lib/*", "safe doc.t"}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected segments: %v", got)
	}
}

func TestParseSegmentedListRequiresLeadingKey(t *testing.T) {
	_, err := ParseSegmentedList("a, b")
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected *ParseError, got %v", err)
	}
}

// A comma directly after "key:" keeps one empty item under that key. The
// grammar is deliberately loose here; this pins the chosen reading.
func TestParseSegmentedListEmptyItemAfterKey(t *testing.T) {
	got, err := ParseSegmentedList("k:, a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []KeyValues{{Key: "k", Values: []string{"", "a"}}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected segments: %v", got)
	}

	got, err = ParseSegmentedList("k: '', a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected segments: %v", got)
	}
}

func TestParseSegmentedListEmptySegment(t *testing.T) {
	got, err := ParseSegmentedList("k1: k2: a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []KeyValues{
		{Key: "k1"},
		{Key: "k2", Values: []string{"a"}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected segments: %v", got)
	}
}

func TestParseImportList(t *testing.T) {
	got, err := ParseImportList(`/lib/x.t as x, "/lib/odd name.t" as y`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := map[string]string{
		"x": "/lib/x.t",
		"y": "/lib/odd name.t",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected imports: %v", got)
	}
}

func TestParseImportListDuplicateAliasOverwrites(t *testing.T) {
	got, err := ParseImportList("/a.t as x, /b.t as x")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got["x"] != "/b.t" {
		t.Fatalf("later alias should win, got %q", got["x"])
	}
}

func TestParseImportListKeywordIsCaseInsensitive(t *testing.T) {
	got, err := ParseImportList("/a.t AS x")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got["x"] != "/a.t" {
		t.Fatalf("unexpected imports: %v", got)
	}
}

func TestParseImportListErrors(t *testing.T) {
	cases := []struct {
		name string
		in   string
	}{
		{"missing as", "/a.t x"},
		{"truncated after path", "/a.t"},
		{"truncated after as", "/a.t as"},
		{"quoted keyword", `/a.t "as" x`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseImportList(tc.in)
			var perr *ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("ParseImportList(%q) = %v, want *ParseError", tc.in, err)
			}
		})
	}
}

func TestDecodeEscapes(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{`plain`, "plain"},
		{`a\nb`, "a\nb"},
		{`a\tb`, "a\tb"},
		{`quote\"inside`, `quote"inside`},
		{`back\\slash`, `back\slash`},
		{`\x41`, "A"},
		{`\x263a!`, "☺!"},
	}
	for _, tc := range cases {
		got, err := DecodeEscapes(tc.in)
		if err != nil {
			t.Fatalf("DecodeEscapes(%q) returned error: %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("DecodeEscapes(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestDecodeEscapesInvalid(t *testing.T) {
	for _, in := range []string{`\q`, `trailing\`, `\xzz`} {
		if _, err := DecodeEscapes(in); err == nil {
			t.Fatalf("DecodeEscapes(%q) should fail", in)
		}
	}
}

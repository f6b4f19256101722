package propsource

import (
	"strings"
	"testing"
)

func TestParseOrderPreserved(t *testing.T) {
	input := "# comment\n" +
		"locale = en-US\n" +
		"\n" +
		"! another comment\n" +
		"number_format: 0.##\n" +
		"boolean_format = yes,no\n"

	entries, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []Entry{
		{Name: "locale", Value: "en-US"},
		{Name: "number_format", Value: "0.##"},
		{Name: "boolean_format", Value: "yes,no"},
	}
	if len(entries) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(entries))
	}
	for i, entry := range entries {
		if entry != want[i] {
			t.Fatalf("entry %d: expected %+v, got %+v", i, want[i], entry)
		}
	}
}

func TestParseMissingSeparator(t *testing.T) {
	_, err := Parse(strings.NewReader("locale en-US\n"))
	if err == nil {
		t.Fatal("expected error for line without separator")
	}
}

func TestParseEmptyName(t *testing.T) {
	_, err := Parse(strings.NewReader("= value\n"))
	if err == nil {
		t.Fatal("expected error for empty name")
	}
}

func TestParseValueKeepsInnerSpace(t *testing.T) {
	entries, err := Parse(strings.NewReader("auto_import = /lib/a.lib as a, /lib/b.lib as b\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entries[0].Value != "/lib/a.lib as a, /lib/b.lib as b" {
		t.Fatalf("unexpected value: %q", entries[0].Value)
	}
}

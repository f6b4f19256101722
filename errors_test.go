package settings

import (
	"strings"
	"testing"
)

func TestSuggestSettingName(t *testing.T) {
	known := SettingNames()

	if got := suggestSettingName("locale", known); got != KeyLocale {
		t.Fatalf("an exact name must suggest itself, got %q", got)
	}
	if got := suggestSettingName("boolean_fromat", known); got != KeyBooleanFormat {
		t.Fatalf("expected %q, got %q", KeyBooleanFormat, got)
	}
	if got := suggestSettingName("completely_different", known); got != "" {
		t.Fatalf("expected no suggestion, got %q", got)
	}
}

func TestErrorMessages(t *testing.T) {
	invalid := &InvalidArgumentError{Setting: KeyCompatMode, Value: "9", Msg: "out of range"}
	if msg := invalid.Error(); !strings.Contains(msg, KeyCompatMode) || !strings.Contains(msg, "9") {
		t.Fatalf("unexpected message: %q", msg)
	}

	bare := &InvalidArgumentError{Value: "x", Msg: "bad"}
	if msg := bare.Error(); strings.Contains(msg, "for") {
		t.Fatalf("a setting-less error must omit the setting clause: %q", msg)
	}

	unknown := &UnknownSettingError{Name: "locl"}
	if msg := unknown.Error(); strings.Contains(msg, "did you mean") {
		t.Fatalf("a suggestion-less error must omit the hint: %q", msg)
	}

	assignment := &AssignmentError{Name: KeyLocale, Value: "??", Err: invalid}
	if assignment.Unwrap() != invalid {
		t.Fatal("the cause must be preserved")
	}
	if msg := assignment.Error(); !strings.Contains(msg, KeyLocale) {
		t.Fatalf("unexpected message: %q", msg)
	}
}

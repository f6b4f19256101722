package settings

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"golang.org/x/text/language"
)

func TestNewRootPopulatesEverySetting(t *testing.T) {
	root := NewRoot()

	if got := root.NumberFormat(); got != "number" {
		t.Fatalf("expected default number format %q, got %q", "number", got)
	}
	if got := root.TimeFormat(); got != "" {
		t.Fatalf("expected empty default time format, got %q", got)
	}
	if got := root.BooleanFormat(); got != "true,false" {
		t.Fatalf("expected legacy boolean format, got %q", got)
	}
	if root.CompatMode() != 0 {
		t.Fatalf("expected compat mode 0, got %d", root.CompatMode())
	}
	if root.CompatModeEnabled() {
		t.Fatal("compat mode should be disabled by default")
	}
	if got := root.ErrorHandler().HandlerName(); got != "debug" {
		t.Fatalf("expected debug error handler, got %q", got)
	}
	if got := root.ArithmeticEngine().EngineName(); got != "decimal" {
		t.Fatalf("expected decimal arithmetic, got %q", got)
	}
	if got := root.ObjectAdapter().AdapterName(); got != "default" {
		t.Fatalf("expected default object adapter, got %q", got)
	}
	if got := root.Resolver().ResolverName(); got != "unrestricted" {
		t.Fatalf("expected unrestricted resolver, got %q", got)
	}
	if !root.AutoFlush() {
		t.Fatal("auto flush should default to true")
	}
	if !root.ShowErrorHints() {
		t.Fatal("error hints should default to true")
	}
	if root.UseSystemTimeZoneForSQL() {
		t.Fatal("SQL system time zone should default to false")
	}
	if root.TimeZone() == nil {
		t.Fatal("root time zone must be populated")
	}
	if imports := root.AutoImports(); len(imports) != 0 {
		t.Fatalf("expected no default auto imports, got %v", imports)
	}
	if includes := root.AutoIncludes(); len(includes) != 0 {
		t.Fatalf("expected no default auto includes, got %v", includes)
	}
	if _, known := root.OutputEncoding(); known {
		t.Fatal("output encoding should start unresolved")
	}
	if _, known := root.URLEscapingCharset(); known {
		t.Fatal("url escaping charset should start unresolved")
	}
}

func TestChildDelegatesUntilOverridden(t *testing.T) {
	root := NewRoot()
	doc := root.NewChild()
	env := doc.NewChild()

	if got := env.NumberFormat(); got != "number" {
		t.Fatalf("expected delegation to root, got %q", got)
	}

	doc.SetNumberFormat("0.##")
	if got := env.NumberFormat(); got != "0.##" {
		t.Fatalf("expected nearest-ancestor value, got %q", got)
	}
	if got := root.NumberFormat(); got != "number" {
		t.Fatalf("root must be unaffected by the child, got %q", got)
	}

	env.SetNumberFormat("#")
	if got := env.NumberFormat(); got != "#" {
		t.Fatalf("expected the local override, got %q", got)
	}
	if got := doc.NumberFormat(); got != "0.##" {
		t.Fatalf("document value must be unaffected by the grandchild, got %q", got)
	}
}

func TestFreshChildMirrorsParent(t *testing.T) {
	root := NewRoot()
	if err := root.SetLocale(language.German); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	root.SetDateFormat("yyyy-MM-dd")

	child := root.NewChild()
	if child.Locale() != root.Locale() {
		t.Fatalf("expected child locale %v, got %v", root.Locale(), child.Locale())
	}
	if child.DateFormat() != root.DateFormat() {
		t.Fatalf("expected child date format %q, got %q", root.DateFormat(), child.DateFormat())
	}
	if child.Parent() != root {
		t.Fatal("expected the root as parent")
	}
	if root.Parent() != nil {
		t.Fatal("the root must have no parent")
	}
}

func TestReparentSwitchesDelegationChain(t *testing.T) {
	root := NewRoot()
	docA := root.NewChild()
	docA.SetNumberFormat("a-format")
	docB := root.NewChild()
	docB.SetNumberFormat("b-format")

	env := docA.NewChild()
	if got := env.NumberFormat(); got != "a-format" {
		t.Fatalf("expected %q before reparent, got %q", "a-format", got)
	}

	env.reparent(docB)
	if got := env.NumberFormat(); got != "b-format" {
		t.Fatalf("expected %q after reparent, got %q", "b-format", got)
	}

	env.reparent(docA)
	if got := env.NumberFormat(); got != "a-format" {
		t.Fatalf("expected %q after restoring, got %q", "a-format", got)
	}
}

func TestUnpopulatedRootPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected a panic for an unpopulated parent-less node")
		}
	}()
	bare := &Node{}
	bare.NumberFormat()
}

func TestAttributeNilDiffersFromRemoved(t *testing.T) {
	root := NewRoot()
	root.SetAttribute("owner", "alice")
	child := root.NewChild()

	value, ok := child.Attribute("owner")
	if !ok || value != "alice" {
		t.Fatalf("expected inherited attribute, got %v (%v)", value, ok)
	}

	child.SetAttribute("owner", nil)
	value, ok = child.Attribute("owner")
	if !ok || value != nil {
		t.Fatalf("explicit nil must shadow the parent, got %v (%v)", value, ok)
	}

	child.RemoveAttribute("owner")
	value, ok = child.Attribute("owner")
	if !ok || value != "alice" {
		t.Fatalf("removal must expose the parent again, got %v (%v)", value, ok)
	}

	root.RemoveAttribute("owner")
	if _, ok := child.Attribute("owner"); ok {
		t.Fatal("attribute absent on the whole chain must report false")
	}
}

func TestAttributeNamesAreLocalAndSorted(t *testing.T) {
	root := NewRoot()
	root.SetAttribute("inherited", 1)
	child := root.NewChild()
	child.SetAttribute("zeta", 1)
	child.SetAttribute("alpha", 2)

	names := child.AttributeNames()
	if !reflect.DeepEqual(names, []string{"alpha", "zeta"}) {
		t.Fatalf("unexpected attribute names: %v", names)
	}
}

func TestFormatBooleanLegacyIsUndecided(t *testing.T) {
	root := NewRoot()

	if _, err := root.FormatBoolean(true, false); !errors.Is(err, ErrUndecidedBooleanFormat) {
		t.Fatalf("expected ErrUndecidedBooleanFormat, got %v", err)
	}
	got, err := root.FormatBoolean(true, true)
	if err != nil || got != "true" {
		t.Fatalf("expected literal fallback %q, got %q (%v)", "true", got, err)
	}
	got, err = root.FormatBoolean(false, true)
	if err != nil || got != "false" {
		t.Fatalf("expected literal fallback %q, got %q (%v)", "false", got, err)
	}
	if _, _, ok := root.BooleanStrings(); ok {
		t.Fatal("legacy format must report no decided strings")
	}
}

func TestFormatBooleanWithDecidedFormat(t *testing.T) {
	root := NewRoot()
	if err := root.SetBooleanFormat("yes,no"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	child := root.NewChild()
	got, err := child.FormatBoolean(true, false)
	if err != nil || got != "yes" {
		t.Fatalf("expected %q, got %q (%v)", "yes", got, err)
	}
	got, err = child.FormatBoolean(false, false)
	if err != nil || got != "no" {
		t.Fatalf("expected %q, got %q (%v)", "no", got, err)
	}
	trueStr, falseStr, ok := child.BooleanStrings()
	if !ok || trueStr != "yes" || falseStr != "no" {
		t.Fatalf("unexpected boolean strings %q/%q (%v)", trueStr, falseStr, ok)
	}
}

func TestSetBooleanFormatRequiresComma(t *testing.T) {
	root := NewRoot()
	err := root.SetBooleanFormat("igen")
	var invalid *InvalidArgumentError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidArgumentError, got %v", err)
	}
}

func TestOutputEncodingUnknownShadowsAncestor(t *testing.T) {
	root := NewRoot()
	root.SetOutputEncoding("UTF-8")
	child := root.NewChild()

	name, known := child.OutputEncoding()
	if !known || name != "UTF-8" {
		t.Fatalf("expected inherited encoding, got %q (%v)", name, known)
	}

	child.SetOutputEncodingUnknown()
	if _, known := child.OutputEncoding(); known {
		t.Fatal("explicitly unknown encoding must shadow the ancestor")
	}
	if name, known := root.OutputEncoding(); !known || name != "UTF-8" {
		t.Fatalf("root encoding must be unaffected, got %q (%v)", name, known)
	}
}

func TestAutoImportsAndIncludesAreCopied(t *testing.T) {
	root := NewRoot()
	source := map[string]string{"lib": "/lib/common.lib"}
	root.SetAutoImports(source)
	source["lib"] = "mutated"

	imports := root.AutoImports()
	if imports["lib"] != "/lib/common.lib" {
		t.Fatalf("imports must be detached from the caller's map, got %v", imports)
	}
	imports["lib"] = "mutated-again"
	if root.AutoImports()["lib"] != "/lib/common.lib" {
		t.Fatal("mutating the returned map must not affect the node")
	}

	includes := []string{"/inc/a"}
	root.SetAutoIncludes(includes)
	includes[0] = "mutated"
	if got := root.AutoIncludes(); got[0] != "/inc/a" {
		t.Fatalf("includes must be detached from the caller's slice, got %v", got)
	}
}

func TestTypedSetterValidation(t *testing.T) {
	root := NewRoot()

	if err := root.SetLocale(language.Tag{}); err == nil {
		t.Fatal("expected an error for the zero locale tag")
	}
	if err := root.SetTimeZone(nil); err == nil {
		t.Fatal("expected an error for a nil time zone")
	}
	if err := root.SetErrorHandler(nil); err == nil {
		t.Fatal("expected an error for a nil error handler")
	}
	if err := root.SetCompatModeInt(3); err == nil {
		t.Fatal("expected an error for compat mode 3")
	}
	if err := root.SetCompatModeInt(2); err != nil {
		t.Fatalf("mode 2 must be accepted: %v", err)
	}
	if root.CompatMode() != 2 {
		t.Fatalf("expected mode 2, got %d", root.CompatMode())
	}
}

func TestNodeIDsAreStableAndDistinct(t *testing.T) {
	root := NewRoot()
	child := root.NewChild()
	if root.ID() == "" || child.ID() == "" {
		t.Fatal("every node must have an identity")
	}
	if root.ID() == child.ID() {
		t.Fatal("node identities must be distinct")
	}
	if root.ID() != root.ID() {
		t.Fatal("node identity must be stable")
	}
}

func TestProcessDefaultTimeZoneFrozenAtRoot(t *testing.T) {
	root := NewRoot()
	child := root.NewChild()
	if child.processDefaultTimeZone() != root.defaults.timeZone {
		t.Fatal("children must see the root's frozen time zone default")
	}
	if root.defaults.timeZone != time.Local {
		t.Fatalf("expected the process time zone, got %v", root.defaults.timeZone)
	}
}

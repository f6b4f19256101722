package settings

import (
	"strings"
	"time"

	"golang.org/x/text/language"
)

// resolve walks from n toward the root and returns the first slot that was
// explicitly set. Exhausting the chain means the root invariant is broken.
func resolve[T any](n *Node, name string, pick func(*Node) *slot[T]) T {
	for node := n; node != nil; node = node.parent.Load() {
		if s := pick(node); s.set {
			return s.value
		}
	}
	n.unresolved(name)
	var zero T
	return zero
}

// Locale returns the locale used for number and date rendering.
func (n *Node) Locale() language.Tag {
	return resolve(n, KeyLocale, func(n *Node) *slot[language.Tag] { return &n.locale })
}

// SetLocale overrides the locale on this node.
func (n *Node) SetLocale(tag language.Tag) error {
	var zero language.Tag
	if tag == zero {
		return invalidArgumentf(KeyLocale, "", "locale must not be the zero tag")
	}
	n.locale.store(tag)
	return nil
}

// TimeZone returns the time zone used when rendering date/time values.
func (n *Node) TimeZone() *time.Location {
	return resolve(n, KeyTimeZone, func(n *Node) *slot[*time.Location] { return &n.timeZone })
}

// SetTimeZone overrides the time zone on this node.
func (n *Node) SetTimeZone(loc *time.Location) error {
	if loc == nil {
		return invalidArgumentf(KeyTimeZone, "", "time zone must not be nil")
	}
	n.timeZone.store(loc)
	return nil
}

// UseSystemTimeZoneForSQL reports whether SQL date-only and time-only
// values keep the system time zone instead of the configured one.
func (n *Node) UseSystemTimeZoneForSQL() bool {
	return resolve(n, KeyUseSystemTimeZoneForSQL, func(n *Node) *slot[bool] { return &n.sqlSystemTZ })
}

// SetUseSystemTimeZoneForSQL overrides the SQL time-zone policy on this node.
func (n *Node) SetUseSystemTimeZoneForSQL(v bool) {
	n.sqlSystemTZ.store(v)
}

// NumberFormat returns the format used to render numbers.
func (n *Node) NumberFormat() string {
	return resolve(n, KeyNumberFormat, func(n *Node) *slot[string] { return &n.numberFormat })
}

// SetNumberFormat overrides the number format on this node.
func (n *Node) SetNumberFormat(format string) {
	n.numberFormat.store(format)
}

// TimeFormat returns the format used to render time-only values.
func (n *Node) TimeFormat() string {
	return resolve(n, KeyTimeFormat, func(n *Node) *slot[string] { return &n.timeFormat })
}

// SetTimeFormat overrides the time-only format on this node.
func (n *Node) SetTimeFormat(format string) {
	n.timeFormat.store(format)
}

// DateFormat returns the format used to render date-only values.
func (n *Node) DateFormat() string {
	return resolve(n, KeyDateFormat, func(n *Node) *slot[string] { return &n.dateFormat })
}

// SetDateFormat overrides the date-only format on this node.
func (n *Node) SetDateFormat(format string) {
	n.dateFormat.store(format)
}

// DateTimeFormat returns the format used to render date+time values.
func (n *Node) DateTimeFormat() string {
	return resolve(n, KeyDateTimeFormat, func(n *Node) *slot[string] { return &n.dateTimeFormat })
}

// SetDateTimeFormat overrides the date+time format on this node.
func (n *Node) SetDateTimeFormat(format string) {
	n.dateTimeFormat.store(format)
}

// BooleanFormat returns the raw "true-str,false-str" format string.
func (n *Node) BooleanFormat() string {
	return n.resolveBooleanFormat().format
}

// SetBooleanFormat overrides the boolean format on this node. The value
// must contain a comma separating the true and false strings. Setting the
// legacy "true,false" literal is allowed but leaves boolean-to-string
// coercion undecided; see FormatBoolean.
func (n *Node) SetBooleanFormat(format string) error {
	if !strings.ContainsRune(format, ',') {
		return invalidArgumentf(KeyBooleanFormat, format,
			"the format must contain two comma-separated strings, for true and false respectively")
	}
	n.booleanFormat.store(parseBooleanFormat(format))
	return nil
}

// CompatMode returns the backward-compatibility mode: 0 off, 1 on, 2 on
// with early-version quirk emulation.
func (n *Node) CompatMode() int {
	return resolve(n, KeyCompatMode, func(n *Node) *slot[int] { return &n.compatMode })
}

// CompatModeEnabled reports whether any backward-compatibility mode is on.
func (n *Node) CompatModeEnabled() bool {
	return n.CompatMode() != 0
}

// SetCompatMode switches the backward-compatibility mode on or off.
func (n *Node) SetCompatMode(enabled bool) {
	if enabled {
		n.compatMode.store(1)
		return
	}
	n.compatMode.store(0)
}

// SetCompatModeInt sets the backward-compatibility mode to one of the
// supported levels 0, 1 or 2.
func (n *Node) SetCompatModeInt(mode int) error {
	if mode < 0 || mode > 2 {
		return invalidArgumentf(KeyCompatMode, "", "mode %d is outside the supported range 0..2", mode)
	}
	n.compatMode.store(mode)
	return nil
}

// ErrorHandler returns the configured evaluation-failure policy.
func (n *Node) ErrorHandler() ErrorHandler {
	return resolve(n, KeyErrorHandler, func(n *Node) *slot[ErrorHandler] { return &n.errorHandler })
}

// SetErrorHandler overrides the evaluation-failure policy on this node.
func (n *Node) SetErrorHandler(handler ErrorHandler) error {
	if handler == nil {
		return invalidArgumentf(KeyErrorHandler, "", "handler must not be nil")
	}
	n.errorHandler.store(handler)
	return nil
}

// ArithmeticEngine returns the configured arithmetic policy.
func (n *Node) ArithmeticEngine() ArithmeticEngine {
	return resolve(n, KeyArithmeticEngine, func(n *Node) *slot[ArithmeticEngine] { return &n.arithmeticEngine })
}

// SetArithmeticEngine overrides the arithmetic policy on this node.
func (n *Node) SetArithmeticEngine(engine ArithmeticEngine) error {
	if engine == nil {
		return invalidArgumentf(KeyArithmeticEngine, "", "engine must not be nil")
	}
	n.arithmeticEngine.store(engine)
	return nil
}

// ObjectAdapter returns the configured host-value adaptation policy.
func (n *Node) ObjectAdapter() ObjectAdapter {
	return resolve(n, KeyObjectAdapter, func(n *Node) *slot[ObjectAdapter] { return &n.objectAdapter })
}

// SetObjectAdapter overrides the adaptation policy on this node.
func (n *Node) SetObjectAdapter(adapter ObjectAdapter) error {
	if adapter == nil {
		return invalidArgumentf(KeyObjectAdapter, "", "adapter must not be nil")
	}
	n.objectAdapter.store(adapter)
	return nil
}

// Resolver returns the configured type-resolution policy.
func (n *Node) Resolver() Resolver {
	return resolve(n, KeyResolver, func(n *Node) *slot[Resolver] { return &n.resolver })
}

// SetResolver overrides the type-resolution policy on this node.
func (n *Node) SetResolver(resolver Resolver) error {
	if resolver == nil {
		return invalidArgumentf(KeyResolver, "", "resolver must not be nil")
	}
	n.resolver.store(resolver)
	return nil
}

// AutoFlush reports whether output is flushed when an execution completes.
func (n *Node) AutoFlush() bool {
	return resolve(n, KeyAutoFlush, func(n *Node) *slot[bool] { return &n.autoFlush })
}

// SetAutoFlush overrides the flush policy on this node.
func (n *Node) SetAutoFlush(v bool) {
	n.autoFlush.store(v)
}

// ShowErrorHints reports whether remediation hints are attached to
// evaluation errors.
func (n *Node) ShowErrorHints() bool {
	return resolve(n, KeyShowErrorHints, func(n *Node) *slot[bool] { return &n.showErrorHints })
}

// SetShowErrorHints overrides the hint policy on this node.
func (n *Node) SetShowErrorHints(v bool) {
	n.showErrorHints.store(v)
}

// OutputEncoding resolves the charset of the produced output. The second
// result is false when the charset is unknown, either because no node set
// it or because a node explicitly declared it unknown. This setting is
// nullable: the root legitimately leaves it unset.
func (n *Node) OutputEncoding() (string, bool) {
	for node := n; node != nil; node = node.parent.Load() {
		if node.outputEncoding.set {
			return node.outputEncoding.value.name, node.outputEncoding.value.known
		}
	}
	return "", false
}

// SetOutputEncoding declares the output charset on this node.
func (n *Node) SetOutputEncoding(name string) {
	n.outputEncoding.store(encoding{name: name, known: true})
}

// SetOutputEncodingUnknown declares on this node that the output charset is
// not known, shadowing any ancestor's declaration.
func (n *Node) SetOutputEncodingUnknown() {
	n.outputEncoding.store(encoding{})
}

// URLEscapingCharset resolves the charset used for URL escaping, with the
// same nullable semantics as OutputEncoding.
func (n *Node) URLEscapingCharset() (string, bool) {
	for node := n; node != nil; node = node.parent.Load() {
		if node.urlEscaping.set {
			return node.urlEscaping.value.name, node.urlEscaping.value.known
		}
	}
	return "", false
}

// SetURLEscapingCharset declares the URL escaping charset on this node.
func (n *Node) SetURLEscapingCharset(name string) {
	n.urlEscaping.store(encoding{name: name, known: true})
}

// SetURLEscapingCharsetUnknown declares on this node that the URL escaping
// charset is not known.
func (n *Node) SetURLEscapingCharsetUnknown() {
	n.urlEscaping.store(encoding{})
}

// AutoImports returns a copy of the alias-to-path imports applied before
// every execution.
func (n *Node) AutoImports() map[string]string {
	imports := resolve(n, KeyAutoImport, func(n *Node) *slot[map[string]string] { return &n.autoImports })
	out := make(map[string]string, len(imports))
	for alias, path := range imports {
		out[alias] = path
	}
	return out
}

// SetAutoImports overrides the auto-import list on this node. The map is
// copied.
func (n *Node) SetAutoImports(imports map[string]string) {
	copied := make(map[string]string, len(imports))
	for alias, path := range imports {
		copied[alias] = path
	}
	n.autoImports.store(copied)
}

// AutoIncludes returns a copy of the document paths included before every
// execution.
func (n *Node) AutoIncludes() []string {
	includes := resolve(n, KeyAutoInclude, func(n *Node) *slot[[]string] { return &n.autoIncludes })
	out := make([]string, len(includes))
	copy(out, includes)
	return out
}

// SetAutoIncludes overrides the auto-include list on this node. The slice
// is copied.
func (n *Node) SetAutoIncludes(includes []string) {
	copied := make([]string, len(includes))
	copy(copied, includes)
	n.autoIncludes.store(copied)
}

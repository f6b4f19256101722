package settings

import (
	"sort"
	"strconv"
	"strings"
)

// settingDef ties a setting name to a renderer of the node-local value.
// The table drives Snapshot, TraceSetting and name suggestions, so every
// dispatchable setting must appear here.
type settingDef struct {
	name string
	// local renders the value set directly on the node. The second result
	// is false when the slot is unset. An empty rendered string with a
	// true result means "set, but with no textual form" (the explicitly
	// unknown charsets).
	local func(*Node) (string, bool)
}

var settingDefs = []settingDef{
	{KeyLocale, func(n *Node) (string, bool) {
		if !n.locale.set {
			return "", false
		}
		return n.locale.value.String(), true
	}},
	{KeyTimeZone, func(n *Node) (string, bool) {
		if !n.timeZone.set {
			return "", false
		}
		return n.timeZone.value.String(), true
	}},
	{KeyUseSystemTimeZoneForSQL, renderBool(func(n *Node) *slot[bool] { return &n.sqlSystemTZ })},
	{KeyNumberFormat, renderString(func(n *Node) *slot[string] { return &n.numberFormat })},
	{KeyTimeFormat, renderString(func(n *Node) *slot[string] { return &n.timeFormat })},
	{KeyDateFormat, renderString(func(n *Node) *slot[string] { return &n.dateFormat })},
	{KeyDateTimeFormat, renderString(func(n *Node) *slot[string] { return &n.dateTimeFormat })},
	{KeyBooleanFormat, func(n *Node) (string, bool) {
		if !n.booleanFormat.set {
			return "", false
		}
		return n.booleanFormat.value.format, true
	}},
	{KeyCompatMode, func(n *Node) (string, bool) {
		if !n.compatMode.set {
			return "", false
		}
		return strconv.Itoa(n.compatMode.value), true
	}},
	{KeyErrorHandler, func(n *Node) (string, bool) {
		if !n.errorHandler.set {
			return "", false
		}
		return n.errorHandler.value.HandlerName(), true
	}},
	{KeyArithmeticEngine, func(n *Node) (string, bool) {
		if !n.arithmeticEngine.set {
			return "", false
		}
		return n.arithmeticEngine.value.EngineName(), true
	}},
	{KeyObjectAdapter, func(n *Node) (string, bool) {
		if !n.objectAdapter.set {
			return "", false
		}
		return n.objectAdapter.value.AdapterName(), true
	}},
	{KeyResolver, func(n *Node) (string, bool) {
		if !n.resolver.set {
			return "", false
		}
		return n.resolver.value.ResolverName(), true
	}},
	{KeyAutoFlush, renderBool(func(n *Node) *slot[bool] { return &n.autoFlush })},
	{KeyShowErrorHints, renderBool(func(n *Node) *slot[bool] { return &n.showErrorHints })},
	{KeyOutputEncoding, renderEncoding(func(n *Node) *slot[encoding] { return &n.outputEncoding })},
	{KeyURLEscapingCharset, renderEncoding(func(n *Node) *slot[encoding] { return &n.urlEscaping })},
	{KeyAutoImport, func(n *Node) (string, bool) {
		if !n.autoImports.set {
			return "", false
		}
		return renderImports(n.autoImports.value), true
	}},
	{KeyAutoInclude, func(n *Node) (string, bool) {
		if !n.autoIncludes.set {
			return "", false
		}
		return strings.Join(n.autoIncludes.value, ", "), true
	}},
}

func renderString(pick func(*Node) *slot[string]) func(*Node) (string, bool) {
	return func(n *Node) (string, bool) {
		s := pick(n)
		return s.value, s.set
	}
}

func renderBool(pick func(*Node) *slot[bool]) func(*Node) (string, bool) {
	return func(n *Node) (string, bool) {
		s := pick(n)
		if !s.set {
			return "", false
		}
		return strconv.FormatBool(s.value), true
	}
}

func renderEncoding(pick func(*Node) *slot[encoding]) func(*Node) (string, bool) {
	return func(n *Node) (string, bool) {
		s := pick(n)
		if !s.set {
			return "", false
		}
		return s.value.name, true
	}
}

func renderImports(imports map[string]string) string {
	aliases := make([]string, 0, len(imports))
	for alias := range imports {
		aliases = append(aliases, alias)
	}
	sort.Strings(aliases)
	parts := make([]string, len(aliases))
	for i, alias := range aliases {
		parts[i] = imports[alias] + " as " + alias
	}
	return strings.Join(parts, ", ")
}

// Snapshot renders the effective value of every known setting as it would
// resolve from this node. The rendering is a diagnostic aid and is not
// guaranteed to round-trip through Apply. Settings with no resolved value
// (the nullable charsets) are left out.
func (n *Node) Snapshot() map[string]string {
	out := make(map[string]string, len(settingDefs))
	for _, def := range settingDefs {
		for node := n; node != nil; node = node.parent.Load() {
			if value, set := def.local(node); set {
				if value != "" || !isEncodingSetting(def.name) {
					out[def.name] = value
				}
				break
			}
		}
	}
	return out
}

func isEncodingSetting(name string) bool {
	return name == KeyOutputEncoding || name == KeyURLEscapingCharset
}

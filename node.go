package settings

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/language"
)

// Node is one level of the hierarchical configuration: the global root, a
// per-document child, or a per-execution grandchild. Every setting getter
// returns the local slot when set and otherwise delegates to the parent;
// the root is fully populated at construction, so resolution never misses.
//
// A node is meant to be configured on a single goroutine and only then
// published to concurrent readers. The custom-attribute store is the one
// exception: it stays mutable after publication and is guarded by the
// node's own mutex.
type Node struct {
	id     uuid.UUID
	parent atomic.Pointer[Node]
	cfg    nodeConfig

	// Captured once at root construction, nil on non-root nodes.
	defaults *processDefaults

	locale           slot[language.Tag]
	timeZone         slot[*time.Location]
	sqlSystemTZ      slot[bool]
	numberFormat     slot[string]
	timeFormat       slot[string]
	dateFormat       slot[string]
	dateTimeFormat   slot[string]
	booleanFormat    slot[booleanFormatSpec]
	compatMode       slot[int]
	errorHandler     slot[ErrorHandler]
	arithmeticEngine slot[ArithmeticEngine]
	objectAdapter    slot[ObjectAdapter]
	resolver         slot[Resolver]
	autoFlush        slot[bool]
	showErrorHints   slot[bool]
	outputEncoding   slot[encoding]
	urlEscaping      slot[encoding]
	autoImports      slot[map[string]string]
	autoIncludes     slot[[]string]

	mu    sync.Mutex
	attrs map[string]any
}

// slot is an explicit optional: it distinguishes "unset, delegate to the
// parent" from "set to the zero value".
type slot[T any] struct {
	value T
	set   bool
}

func (s *slot[T]) store(v T) {
	s.value = v
	s.set = true
}

// encoding models the nullable charset settings, where an explicitly
// unknown charset differs from an inherited one.
type encoding struct {
	name  string
	known bool
}

// processDefaults freezes the process-wide locale and time zone so that
// later "default" lookups do not observe environment changes.
type processDefaults struct {
	locale   language.Tag
	timeZone *time.Location
}

// NewRoot builds a parent-less node with every required setting populated.
// The process locale and time zone are captured here, once.
func NewRoot(opts ...NodeOption) *Node {
	n := &Node{
		id:  uuid.New(),
		cfg: applyNodeOptions(opts),
		defaults: &processDefaults{
			locale:   processLocale(),
			timeZone: time.Local,
		},
		attrs: map[string]any{},
	}
	n.locale.store(n.defaults.locale)
	n.timeZone.store(n.defaults.timeZone)
	n.sqlSystemTZ.store(false)
	n.numberFormat.store("number")
	n.timeFormat.store("")
	n.dateFormat.store("")
	n.dateTimeFormat.store("")
	n.booleanFormat.store(parseBooleanFormat(legacyBooleanFormat))
	n.compatMode.store(0)
	n.errorHandler.store(DebugErrorHandler)
	n.arithmeticEngine.store(DecimalArithmetic)
	n.objectAdapter.store(DefaultObjectAdapter)
	n.resolver.store(UnrestrictedResolver)
	n.autoFlush.store(true)
	n.showErrorHints.store(true)
	n.autoImports.store(map[string]string{})
	n.autoIncludes.store([]string{})
	// outputEncoding and urlEscaping stay unset: "not specified" is a
	// valid resolved state for the two nullable charset settings.
	return n
}

// NewChild builds a node one level below n with every slot unset, so all
// reads delegate until the child is configured.
func (n *Node) NewChild(opts ...NodeOption) *Node {
	child := &Node{
		id:    uuid.New(),
		cfg:   applyNodeOptions(opts),
		attrs: map[string]any{},
	}
	child.parent.Store(n)
	return child
}

// ID returns the node's stable identity, used in traces.
func (n *Node) ID() string {
	return n.id.String()
}

// Parent returns the node the unset settings delegate to, or nil on the
// root.
func (n *Node) Parent() *Node {
	return n.parent.Load()
}

// reparent transiently re-links n below parent. Used while one document's
// evaluation is nested inside another's scope. A resolution walk racing a
// reparent sees either the old or the new ancestor chain, never a torn
// state.
func (n *Node) reparent(parent *Node) {
	n.parent.Store(parent)
}

// root walks to the parent-less node.
func (n *Node) root() *Node {
	node := n
	for {
		parent := node.parent.Load()
		if parent == nil {
			return node
		}
		node = parent
	}
}

// unresolved reports a violated root invariant: a parent-less node was
// asked for a setting that was never populated. This is a programming
// error, not a recoverable condition.
func (n *Node) unresolved(name string) {
	panic(fmt.Sprintf("settings: %q is not set on the root node; the root must have every setting populated", name))
}

// SetAttribute stores a custom attribute on this node. A nil value is a
// real value: it shadows the parent's attribute, unlike a removed one.
func (n *Node) SetAttribute(name string, value any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.attrs[name] = value
}

// Attribute resolves a custom attribute, delegating to the parent when the
// name is absent on this node. The second result is false only when the
// name is absent on this node and every ancestor. Each hop locks only its
// own node.
func (n *Node) Attribute(name string) (any, bool) {
	n.mu.Lock()
	value, ok := n.attrs[name]
	n.mu.Unlock()
	if ok {
		return value, true
	}
	if parent := n.parent.Load(); parent != nil {
		return parent.Attribute(name)
	}
	return nil, false
}

// RemoveAttribute deletes the local attribute slot only, exposing the
// ancestor's value (or absence) on the next read. Removing is therefore
// observably different from setting the value to nil.
func (n *Node) RemoveAttribute(name string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.attrs, name)
}

// AttributeNames lists the attributes set directly on this node, sorted.
// Inherited attributes are not included.
func (n *Node) AttributeNames() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	names := make([]string, 0, len(n.attrs))
	for name := range n.attrs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (n *Node) resolveEvaluator() Evaluator {
	for node := n; node != nil; node = node.parent.Load() {
		if node.cfg.evaluator != nil {
			return node.cfg.evaluator
		}
	}
	var exprOpts []ExprEvaluatorOption
	if cache := n.resolveProgramCache(); cache != nil {
		exprOpts = append(exprOpts, ExprWithProgramCache(cache))
	}
	if registry := n.resolveFactories(); registry != nil {
		exprOpts = append(exprOpts, ExprWithFactoryRegistry(registry))
	}
	evaluator := NewExprEvaluator(exprOpts...)
	n.cfg.evaluator = evaluator
	return evaluator
}

func (n *Node) resolveProgramCache() ProgramCache {
	for node := n; node != nil; node = node.parent.Load() {
		if node.cfg.programCache != nil {
			return node.cfg.programCache
		}
	}
	return nil
}

func (n *Node) resolveFactories() *FactoryRegistry {
	for node := n; node != nil; node = node.parent.Load() {
		if node.cfg.factories != nil {
			return node.cfg.factories
		}
	}
	return nil
}

func (n *Node) evaluatorLogger() EvaluatorLogger {
	for node := n; node != nil; node = node.parent.Load() {
		if node.cfg.logger != nil {
			return node.cfg.logger
		}
	}
	return noopEvaluatorLogger{}
}

// processLocale derives the process locale from the environment, the same
// way the surrounding platform would report it. Invalid or missing values
// fall back to English rather than failing root construction.
func processLocale() language.Tag {
	for _, key := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		raw := os.Getenv(key)
		if raw == "" || raw == "C" || raw == "POSIX" {
			continue
		}
		if dot := strings.IndexByte(raw, '.'); dot >= 0 {
			raw = raw[:dot]
		}
		if tag, err := language.Parse(strings.ReplaceAll(raw, "_", "-")); err == nil {
			return tag
		}
	}
	return language.English
}

// legacyBooleanFormat is the historical default of the boolean_format
// setting. It is accepted but treated as "no value decided": automatic
// boolean-to-string coercion refuses to use it.
const legacyBooleanFormat = "true,false"

// booleanFormatSpec is the state derived from a "true-str,false-str"
// format string.
type booleanFormatSpec struct {
	format   string
	trueStr  string
	falseStr string
	decided  bool
}

// parseBooleanFormat splits a format string already known to contain a
// comma. The legacy literal yields an undecided format.
func parseBooleanFormat(format string) booleanFormatSpec {
	if format == legacyBooleanFormat {
		return booleanFormatSpec{format: format}
	}
	comma := strings.IndexByte(format, ',')
	return booleanFormatSpec{
		format:   format,
		trueStr:  format[:comma],
		falseStr: format[comma+1:],
		decided:  true,
	}
}

// ErrUndecidedBooleanFormat reports that boolean-to-string coercion was
// attempted while boolean_format still holds the legacy computer-language
// literal, which deliberately decides nothing.
var ErrUndecidedBooleanFormat = errors.New(
	"settings: boolean_format is the legacy \"" + legacyBooleanFormat + "\" literal, which does not decide a human-readable rendering")

// FormatBoolean renders value with the resolved boolean format. When the
// format is the undecided legacy literal, fallbackToLiteral selects
// between returning the plain "true"/"false" literals and failing with
// ErrUndecidedBooleanFormat.
func (n *Node) FormatBoolean(value bool, fallbackToLiteral bool) (string, error) {
	spec := n.resolveBooleanFormat()
	if !spec.decided {
		if fallbackToLiteral {
			if value {
				return "true", nil
			}
			return "false", nil
		}
		return "", ErrUndecidedBooleanFormat
	}
	if value {
		return spec.trueStr, nil
	}
	return spec.falseStr, nil
}

// BooleanStrings returns the strings booleans coerce to. ok is false while
// the resolved format is the undecided legacy literal.
func (n *Node) BooleanStrings() (trueStr, falseStr string, ok bool) {
	spec := n.resolveBooleanFormat()
	if !spec.decided {
		return "", "", false
	}
	return spec.trueStr, spec.falseStr, true
}

func (n *Node) resolveBooleanFormat() booleanFormatSpec {
	for node := n; node != nil; node = node.parent.Load() {
		if node.booleanFormat.set {
			return node.booleanFormat.value
		}
	}
	n.unresolved(KeyBooleanFormat)
	return booleanFormatSpec{}
}

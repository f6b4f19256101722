package settings

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"

	"github.com/goliatone/go-settings/internal/grammar"
	"github.com/goliatone/go-settings/internal/propsource"
)

// Setting names accepted by Apply.
const (
	KeyLocale                  = "locale"
	KeyTimeZone                = "time_zone"
	KeyUseSystemTimeZoneForSQL = "use_system_time_zone_for_sql"
	KeyNumberFormat            = "number_format"
	KeyTimeFormat              = "time_format"
	KeyDateFormat              = "date_format"
	KeyDateTimeFormat          = "datetime_format"
	KeyBooleanFormat           = "boolean_format"
	KeyCompatMode              = "compat_mode"
	KeyErrorHandler            = "error_handler"
	KeyArithmeticEngine        = "arithmetic_engine"
	KeyObjectAdapter           = "object_adapter"
	KeyResolver                = "resolver"
	KeyAutoFlush               = "auto_flush"
	KeyShowErrorHints          = "show_error_hints"
	KeyOutputEncoding          = "output_encoding"
	KeyURLEscapingCharset      = "url_escaping_charset"
	KeyAutoImport              = "auto_import"
	KeyAutoInclude             = "auto_include"
)

// Segment keys of the segmented resolver syntax.
const (
	segmentAllowedTypes     = "allowed_types"
	segmentTrustedDocuments = "trusted_documents"
)

// literalDefault maps a setting to the process default captured at root
// construction.
const literalDefault = "default"

var dispatchTable = map[string]func(*Node, string) error{
	KeyLocale:                  applyLocale,
	KeyTimeZone:                applyTimeZone,
	KeyUseSystemTimeZoneForSQL: applyBoolSetter(KeyUseSystemTimeZoneForSQL, (*Node).SetUseSystemTimeZoneForSQL),
	KeyNumberFormat:            applyStringSetter((*Node).SetNumberFormat),
	KeyTimeFormat:              applyStringSetter((*Node).SetTimeFormat),
	KeyDateFormat:              applyStringSetter((*Node).SetDateFormat),
	KeyDateTimeFormat:          applyStringSetter((*Node).SetDateTimeFormat),
	KeyBooleanFormat:           func(n *Node, value string) error { return n.SetBooleanFormat(value) },
	KeyCompatMode:              applyCompatMode,
	KeyErrorHandler:            applyErrorHandler,
	KeyArithmeticEngine:        applyArithmeticEngine,
	KeyObjectAdapter:           applyObjectAdapter,
	KeyResolver:                applyResolver,
	KeyAutoFlush:               applyBoolSetter(KeyAutoFlush, (*Node).SetAutoFlush),
	KeyShowErrorHints:          applyBoolSetter(KeyShowErrorHints, (*Node).SetShowErrorHints),
	KeyOutputEncoding: func(n *Node, value string) error {
		n.SetOutputEncoding(value)
		return nil
	},
	KeyURLEscapingCharset: func(n *Node, value string) error {
		n.SetURLEscapingCharset(value)
		return nil
	},
	KeyAutoImport:  applyAutoImport,
	KeyAutoInclude: applyAutoInclude,
}

var settingNames = sortedSettingNames()

func sortedSettingNames() []string {
	names := make([]string, 0, len(dispatchTable))
	for name := range dispatchTable {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SettingNames lists every name Apply accepts, sorted.
func SettingNames() []string {
	out := make([]string, len(settingNames))
	copy(out, settingNames)
	return out
}

// Apply converts a raw string value with the rule registered for name and
// stores the result on this node. An unrecognized name yields
// *UnknownSettingError; any conversion or assignment failure is returned
// wrapped in *AssignmentError with the cause preserved.
func (n *Node) Apply(name, value string) error {
	apply, ok := dispatchTable[name]
	if !ok {
		return &UnknownSettingError{
			Name:       name,
			Suggestion: suggestSettingName(name, settingNames),
		}
	}
	if err := apply(n, value); err != nil {
		return &AssignmentError{Name: name, Value: value, Err: err}
	}
	return nil
}

// Entry is one name/raw-value pair of an ordered settings source.
type Entry struct {
	Name  string
	Value string
}

// ApplyAll applies the entries in order, trimming each value, and stops at
// the first failure. Entries applied before the failing one stay applied;
// the operation is deliberately not transactional.
func (n *Node) ApplyAll(entries []Entry) error {
	for _, entry := range entries {
		if err := n.Apply(entry.Name, strings.TrimSpace(entry.Value)); err != nil {
			return err
		}
	}
	return nil
}

// ApplyReader reads a properties-style "name = value" stream and applies
// the entries in file order with ApplyAll semantics.
func (n *Node) ApplyReader(r io.Reader) error {
	entries, err := propsource.Parse(r)
	if err != nil {
		return err
	}
	converted := make([]Entry, len(entries))
	for i, entry := range entries {
		converted[i] = Entry{Name: entry.Name, Value: entry.Value}
	}
	return n.ApplyAll(converted)
}

func applyStringSetter(set func(*Node, string)) func(*Node, string) error {
	return func(n *Node, value string) error {
		set(n, value)
		return nil
	}
}

func applyBoolSetter(name string, set func(*Node, bool)) func(*Node, string) error {
	return func(n *Node, value string) error {
		v, err := parseBoolToken(name, value)
		if err != nil {
			return err
		}
		set(n, v)
		return nil
	}
}

// parseBoolToken accepts the usual spelled-out and single-letter boolean
// tokens, case-insensitively.
func parseBoolToken(setting, value string) (bool, error) {
	switch strings.ToLower(value) {
	case "true", "yes", "t", "y":
		return true, nil
	case "false", "no", "f", "n":
		return false, nil
	}
	return false, invalidArgumentf(setting, value, "expected a boolean token such as true/false, yes/no, t/f or y/n")
}

func applyLocale(n *Node, value string) error {
	if value == literalDefault {
		return n.SetLocale(n.processDefaultLocale())
	}
	tag, err := language.Parse(strings.ReplaceAll(value, "_", "-"))
	if err != nil {
		return invalidArgumentf(KeyLocale, value, "malformed locale identifier: %v", err)
	}
	return n.SetLocale(tag)
}

func applyTimeZone(n *Node, value string) error {
	if value == literalDefault {
		return n.SetTimeZone(n.processDefaultTimeZone())
	}
	loc, err := loadTimeZone(value)
	if err != nil {
		return err
	}
	return n.SetTimeZone(loc)
}

// loadTimeZone accepts IANA zone names plus fixed-offset forms such as
// "GMT+2", "UTC-05:30" or a bare "GMT"/"UTC".
func loadTimeZone(value string) (*time.Location, error) {
	upper := strings.ToUpper(value)
	if upper == "GMT" || upper == "UTC" {
		return time.UTC, nil
	}
	if strings.HasPrefix(upper, "GMT") || strings.HasPrefix(upper, "UTC") {
		if loc, err := parseZoneOffset(value, upper[3:]); err == nil {
			return loc, nil
		}
		return nil, invalidArgumentf(KeyTimeZone, value, "malformed fixed-offset time zone")
	}
	loc, err := time.LoadLocation(value)
	if err != nil {
		return nil, invalidArgumentf(KeyTimeZone, value, "unknown time zone: %v", err)
	}
	return loc, nil
}

func parseZoneOffset(name, offset string) (*time.Location, error) {
	if offset == "" || (offset[0] != '+' && offset[0] != '-') {
		return nil, fmt.Errorf("missing sign")
	}
	sign := 1
	if offset[0] == '-' {
		sign = -1
	}
	hoursPart, minutesPart, hasMinutes := strings.Cut(offset[1:], ":")
	hours, err := strconv.Atoi(hoursPart)
	if err != nil || hours > 23 {
		return nil, fmt.Errorf("malformed hours %q", hoursPart)
	}
	minutes := 0
	if hasMinutes {
		minutes, err = strconv.Atoi(minutesPart)
		if err != nil || minutes > 59 {
			return nil, fmt.Errorf("malformed minutes %q", minutesPart)
		}
	}
	return time.FixedZone(name, sign*(hours*3600+minutes*60)), nil
}

// processDefaultLocale returns the locale frozen when the root of this
// chain was constructed.
func (n *Node) processDefaultLocale() language.Tag {
	if d := n.root().defaults; d != nil {
		return d.locale
	}
	return processLocale()
}

// processDefaultTimeZone returns the time zone frozen when the root of
// this chain was constructed.
func (n *Node) processDefaultTimeZone() *time.Location {
	if d := n.root().defaults; d != nil {
		return d.timeZone
	}
	return time.Local
}

func applyCompatMode(n *Node, value string) error {
	if value != "" {
		switch c := value[0]; {
		case c >= '0' && c <= '9', c == '+', c == '-':
			mode, err := strconv.Atoi(value)
			if err != nil {
				return invalidArgumentf(KeyCompatMode, value, "malformed integer: %v", err)
			}
			return n.SetCompatModeInt(mode)
		}
	}
	enabled, err := parseBoolToken(KeyCompatMode, value)
	if err != nil {
		return err
	}
	n.SetCompatMode(enabled)
	return nil
}

func applyErrorHandler(n *Node, value string) error {
	if !strings.ContainsRune(value, '.') {
		switch strings.ToLower(value) {
		case "rethrow":
			return n.SetErrorHandler(RethrowErrorHandler)
		case "debug":
			return n.SetErrorHandler(DebugErrorHandler)
		case "html_debug":
			return n.SetErrorHandler(HTMLDebugErrorHandler)
		case "ignore":
			return n.SetErrorHandler(IgnoreErrorHandler)
		}
		return invalidArgumentf(KeyErrorHandler, value,
			"expected rethrow, debug, html_debug, ignore or an object builder expression")
	}
	built, err := n.buildObject(KeyErrorHandler, value)
	if err != nil {
		return err
	}
	handler, ok := built.(ErrorHandler)
	if !ok {
		return invalidArgumentf(KeyErrorHandler, value, "expression built %T, which is not an ErrorHandler", built)
	}
	return n.SetErrorHandler(handler)
}

func applyArithmeticEngine(n *Node, value string) error {
	if !strings.ContainsRune(value, '.') {
		switch strings.ToLower(value) {
		case "decimal":
			return n.SetArithmeticEngine(DecimalArithmetic)
		case "conservative":
			return n.SetArithmeticEngine(ConservativeArithmetic)
		}
		return invalidArgumentf(KeyArithmeticEngine, value,
			"expected decimal, conservative or an object builder expression")
	}
	built, err := n.buildObject(KeyArithmeticEngine, value)
	if err != nil {
		return err
	}
	engine, ok := built.(ArithmeticEngine)
	if !ok {
		return invalidArgumentf(KeyArithmeticEngine, value, "expression built %T, which is not an ArithmeticEngine", built)
	}
	return n.SetArithmeticEngine(engine)
}

func applyObjectAdapter(n *Node, value string) error {
	if !strings.ContainsRune(value, '.') {
		switch strings.ToLower(value) {
		case "default":
			return n.SetObjectAdapter(DefaultObjectAdapter)
		case "simple":
			return n.SetObjectAdapter(SimpleObjectAdapter)
		case "reflective":
			return n.SetObjectAdapter(ReflectiveObjectAdapter)
		}
		return invalidArgumentf(KeyObjectAdapter, value,
			"expected default, simple, reflective or an object builder expression")
	}
	built, err := n.buildObject(KeyObjectAdapter, value)
	if err != nil {
		return err
	}
	adapter, ok := built.(ObjectAdapter)
	if !ok {
		return invalidArgumentf(KeyObjectAdapter, value, "expression built %T, which is not an ObjectAdapter", built)
	}
	return n.SetObjectAdapter(adapter)
}

func applyResolver(n *Node, value string) error {
	switch strings.ToLower(value) {
	case "unrestricted":
		return n.SetResolver(UnrestrictedResolver)
	case "safer":
		return n.SetResolver(SaferResolver)
	case "allows_nothing":
		return n.SetResolver(AllowsNothingResolver)
	}
	if strings.ContainsRune(value, ':') {
		resolver, err := parseOptInResolver(value)
		if err != nil {
			return err
		}
		return n.SetResolver(resolver)
	}
	if strings.ContainsRune(value, '.') {
		built, err := n.buildObject(KeyResolver, value)
		if err != nil {
			return err
		}
		resolver, ok := built.(Resolver)
		if !ok {
			return invalidArgumentf(KeyResolver, value, "expression built %T, which is not a Resolver", built)
		}
		return n.SetResolver(resolver)
	}
	return invalidArgumentf(KeyResolver, value,
		"expected unrestricted, safer, allows_nothing, a segmented allow list or an object builder expression")
}

func parseOptInResolver(value string) (*OptInResolver, error) {
	segments, err := grammar.ParseSegmentedList(value)
	if err != nil {
		return nil, err
	}
	resolver := &OptInResolver{}
	for _, segment := range segments {
		switch segment.Key {
		case segmentAllowedTypes:
			resolver.AllowedTypes = make(map[string]struct{}, len(segment.Values))
			for _, name := range segment.Values {
				resolver.AllowedTypes[name] = struct{}{}
			}
		case segmentTrustedDocuments:
			resolver.TrustedDocuments = segment.Values
		default:
			return nil, &ParseError{Msg: fmt.Sprintf(
				"unrecognized list segment key %q; supported keys are %q and %q",
				segment.Key, segmentAllowedTypes, segmentTrustedDocuments)}
		}
	}
	return resolver, nil
}

func applyAutoImport(n *Node, value string) error {
	imports, err := grammar.ParseImportList(value)
	if err != nil {
		return err
	}
	n.SetAutoImports(imports)
	return nil
}

func applyAutoInclude(n *Node, value string) error {
	includes, err := grammar.ParseList(value)
	if err != nil {
		return err
	}
	n.SetAutoIncludes(includes)
	return nil
}

// buildObject forwards an external-object-reference expression to the
// resolved evaluator and logs the attempt.
func (n *Node) buildObject(setting, expr string) (any, error) {
	evaluator := n.resolveEvaluator()
	ctx := BuildContext{Setting: setting, Snapshot: n.Snapshot()}
	start := time.Now()
	value, err := evaluator.Evaluate(ctx, expr)
	err = wrapEvaluationError("", expr, setting, err)
	n.evaluatorLogger().LogEvaluation(EvaluatorLogEvent{
		Engine:   evaluatorEngineName(evaluator),
		Expr:     expr,
		Setting:  setting,
		Duration: time.Since(start),
		Err:      err,
	})
	if err != nil {
		return nil, err
	}
	return value, nil
}

// Package settings implements a three-level hierarchical configuration
// engine: a fully populated global root, per-document children and
// per-execution grandchildren. Reading a setting on any node returns the
// locally set value or delegates to the parent, so an effective value
// always resolves.
//
// Raw string values are applied through a dispatch table (see Apply) that
// converts each setting's text form into its typed value, including the
// embedded list grammars used by auto_import, auto_include and the
// segmented resolver syntax. Values containing a dot are treated as
// external object references and handed to a pluggable Evaluator; expr,
// CEL and goja backed evaluators ship with the package.
package settings

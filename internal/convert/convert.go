// Package convert implements the MV to MZ rewrite engine.
//
// Convert runs four stages in a fixed order over one text buffer:
//
//  1. header normalization (declare "@target MZ" in the plugin header)
//  2. symbol migration (Window_Base actor helpers to Window_StatusBase)
//  3. call substitution (window color helpers to ColorManager)
//  4. unsafe pattern annotation (MV pluginCommand hooks)
//
// Each stage is a pure function of its input text. The engine never fails:
// text it does not recognise is left untouched.
package convert

import "mzify/internal/rules"

// Options tunes a single conversion.
type Options struct {
	// KeepMVColor skips the call substitution stage.
	KeepMVColor bool
	// InjectHeader prepends a minimal MZ header when the source has none.
	InjectHeader bool
	// PluginName is written into an injected header.
	PluginName string
}

// Convert rewrites src with the built-in catalog.
func Convert(src string, opts Options) (string, Report) {
	return ConvertWith(rules.Default(), src, opts)
}

// ConvertWith rewrites src using cat. The report lists one line per rule
// that fired, in stage order and then catalog order.
func ConvertWith(cat *rules.Catalog, src string, opts Options) (string, Report) {
	report := make(Report, 0)

	out, changes := normalizeHeader(src, opts)
	report = append(report, changes...)

	out, changes = migrateSymbols(out, cat.Symbols)
	report = append(report, changes...)

	out, changes = substituteCalls(out, cat.Calls, opts.KeepMVColor)
	report = append(report, changes...)

	out, changes = annotateUnsafe(out, cat.Unsafe)
	report = append(report, changes...)

	return out, report
}

// Package rules holds the fixed rewrite catalogs used to migrate RPG Maker MV
// plugins to MZ. Every catalog is built once at init and is read-only after.
package rules

import "regexp"

// Version identifies the catalog generation. Bump it whenever an entry is
// added, removed or reordered so cached conversions are invalidated.
const Version = "mv-mz/1"

// TargetMarker is the header token whose presence means a target is declared.
const TargetMarker = "@target"

// TargetLine is inserted into headers that declare no target.
const TargetLine = " * @target MZ"

// HeaderBlock matches the first plugin header comment, non-greedy.
var HeaderBlock = regexp.MustCompile(`/\*:[\s\S]*?\*/`)

// SymbolRename moves a qualified member reference to a new owner.
type SymbolRename struct {
	OldOwner string
	NewOwner string
	Member   string
	re       *regexp.Regexp
}

// Old returns the qualified reference being replaced.
func (r *SymbolRename) Old() string { return r.OldOwner + "." + r.Member }

// New returns the qualified reference written in place of Old.
func (r *SymbolRename) New() string { return r.NewOwner + "." + r.Member }

// Regexp returns the word-boundary matcher for Old.
func (r *SymbolRename) Regexp() *regexp.Regexp { return r.re }

// CallPattern rewrites a call expression. Replacement may reference
// capture groups using the regexp.Expand syntax (${1}).
type CallPattern struct {
	Pattern     string
	Replacement string
	re          *regexp.Regexp
}

// Regexp returns the compiled Pattern.
func (p *CallPattern) Regexp() *regexp.Regexp { return p.re }

// UnsafePattern is detected but never rewritten; Annotation is inserted
// before each occurrence and Summary is reported once per category.
type UnsafePattern struct {
	Pattern    string
	Annotation string
	Summary    string
	re         *regexp.Regexp
}

// Regexp returns the compiled Pattern.
func (p *UnsafePattern) Regexp() *regexp.Regexp { return p.re }

const (
	windowBase       = "Window_Base.prototype"
	windowStatusBase = "Window_StatusBase.prototype"
)

// Members usually defined on Window_StatusBase in MZ.
var statusBaseMembers = []string{
	"drawActorSimpleStatus",
	"drawActorName",
	"drawActorClass",
	"drawActorNickname",
	"drawActorLevel",
	"drawActorIcons",
	"drawActorHp",
	"drawActorMp",
	"drawActorTp",
	"drawActorHpGauge",
	"drawActorMpGauge",
	"drawActorTpGauge",
	"placeActorName",
	"placeGauge",
}

// colorHelper describes a Window_Base color helper that moved to ColorManager.
type colorHelper struct {
	name   string
	hasArg bool
}

// Order matters: entries are applied sequentially against the running text.
var colorHelpers = []colorHelper{
	{"systemColor", false},
	{"crisisColor", false},
	{"deathColor", false},
	{"gaugeBackColor", false},
	{"hpColor", true},
	{"mpColor", true},
	{"tpColor", true},
	{"mpCostColor", false},
	{"powerUpColor", false},
	{"powerDownColor", false},
	{"paramchangeTextColor", true},
	{"textColor", true},
	{"normalColor", false},
}

const pluginCommandAnnotation = "\n// [MZ TODO] Detected MV-style pluginCommand. In MZ, migrate to:\n" +
	"// PluginManager.registerCommand(pluginName, command, handler)\n" +
	"// and use @command/@arg annotations in the header.\n"

// Catalog groups the three rule lists consumed by the rewrite stages.
// A Catalog is shared by reference and must not be modified.
type Catalog struct {
	Symbols []SymbolRename
	Calls   []CallPattern
	Unsafe  []UnsafePattern
}

var std = build()

// Default returns the built-in MV to MZ catalog.
func Default() *Catalog { return std }

func build() *Catalog {
	cat := &Catalog{
		Symbols: make([]SymbolRename, 0, len(statusBaseMembers)),
		Calls:   make([]CallPattern, 0, len(colorHelpers)),
	}
	for _, member := range statusBaseMembers {
		cat.Symbols = append(cat.Symbols, NewSymbolRename(windowBase, windowStatusBase, member))
	}
	for _, h := range colorHelpers {
		cat.Calls = append(cat.Calls, newColorPattern(h))
	}
	cat.Unsafe = []UnsafePattern{
		NewUnsafePattern(
			`\bGame_Interpreter\.prototype\.pluginCommand\b`,
			pluginCommandAnnotation,
			"Annotated MV pluginCommand for manual conversion.",
		),
	}
	return cat
}

// NewSymbolRename builds a rename of oldOwner.member to newOwner.member.
func NewSymbolRename(oldOwner, newOwner, member string) SymbolRename {
	return SymbolRename{
		OldOwner: oldOwner,
		NewOwner: newOwner,
		Member:   member,
		re:       regexp.MustCompile(`\b` + regexp.QuoteMeta(oldOwner+"."+member) + `\b`),
	}
}

func newColorPattern(h colorHelper) CallPattern {
	quoted := regexp.QuoteMeta(h.name)
	if h.hasArg {
		return NewCallPattern(
			`\bthis\.`+quoted+`\s*\(\s*(.*?)\s*\)`,
			"ColorManager."+h.name+"(${1})",
		)
	}
	return NewCallPattern(
		`\bthis\.`+quoted+`\s*\(\s*\)`,
		"ColorManager."+h.name+"()",
	)
}

// NewCallPattern compiles pattern; it panics if pattern is invalid.
func NewCallPattern(pattern, replacement string) CallPattern {
	return CallPattern{
		Pattern:     pattern,
		Replacement: replacement,
		re:          regexp.MustCompile(pattern),
	}
}

// NewUnsafePattern compiles pattern; it panics if pattern is invalid.
func NewUnsafePattern(pattern, annotation, summary string) UnsafePattern {
	return UnsafePattern{
		Pattern:    pattern,
		Annotation: annotation,
		Summary:    summary,
		re:         regexp.MustCompile(pattern),
	}
}

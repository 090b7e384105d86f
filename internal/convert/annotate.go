package convert

import (
	"strings"

	"mzify/internal/rules"
)

// annotateUnsafe inserts the entry's annotation in front of every match.
// Matched text is never modified.
func annotateUnsafe(src string, patterns []rules.UnsafePattern) (string, []string) {
	var changes []string
	for i := range patterns {
		p := &patterns[i]
		locs := p.Regexp().FindAllStringIndex(src, -1)
		if len(locs) == 0 {
			continue
		}
		var b strings.Builder
		b.Grow(len(src) + len(locs)*len(p.Annotation))
		last := 0
		for _, loc := range locs {
			b.WriteString(src[last:loc[0]])
			b.WriteString(p.Annotation)
			last = loc[0]
		}
		b.WriteString(src[last:])
		src = b.String()
		changes = append(changes, p.Summary)
	}
	return src, changes
}

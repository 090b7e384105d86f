package convert

import (
	"fmt"

	"mzify/internal/rules"
)

// substituteCalls applies every call pattern in catalog order. Each entry
// sees the text produced by the previous one, so order is significant.
func substituteCalls(src string, patterns []rules.CallPattern, skip bool) (string, []string) {
	if skip {
		return src, nil
	}
	var changes []string
	for i := range patterns {
		p := &patterns[i]
		re := p.Regexp()
		n := len(re.FindAllStringIndex(src, -1))
		if n == 0 {
			continue
		}
		src = re.ReplaceAllString(src, p.Replacement)
		changes = append(changes, fmt.Sprintf("%s -> %s (%dx)", p.Pattern, p.Replacement, n))
	}
	return src, changes
}

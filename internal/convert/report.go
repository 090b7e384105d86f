package convert

import "strings"

// NoChangesMessage is rendered for an empty report.
const NoChangesMessage = "No heuristic changes were necessary."

// Report is the ordered list of rules that fired during a conversion.
type Report []string

// Empty reports whether no rule fired.
func (r Report) Empty() bool { return len(r) == 0 }

// Render formats the report as "- " prefixed lines, or NoChangesMessage.
func (r Report) Render() string {
	if r.Empty() {
		return NoChangesMessage
	}
	var b strings.Builder
	for i, line := range r {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("- ")
		b.WriteString(line)
	}
	return b.String()
}

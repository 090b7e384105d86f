package convert

import "mzify/internal/rules"

// migrateSymbols moves each cataloged qualified reference to its new owner.
// One report line per entry that matched, regardless of occurrence count.
func migrateSymbols(src string, renames []rules.SymbolRename) (string, []string) {
	var changes []string
	for i := range renames {
		r := &renames[i]
		re := r.Regexp()
		if !re.MatchString(src) {
			continue
		}
		src = re.ReplaceAllLiteralString(src, r.New())
		changes = append(changes, r.Old()+" -> "+r.New())
	}
	return src, changes
}

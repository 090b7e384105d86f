package batch

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
)

// pluginExt is the extension of plugin scripts picked up from directories.
const pluginExt = ".js"

// Expansion is the input list produced by ExpandInputs.
type Expansion struct {
	Paths []string
	// Unlisted maps directories that could not be walked to the walk error.
	// They are also in Paths, so Run fails them in order like any other input.
	Unlisted map[string]error
}

// ExpandInputs turns command-line arguments into a list of input files.
// Directories expand to their *.js files (sorted, recursive), skipping
// files that already carry suffix. Paths that cannot be stat'ed are kept
// as-is so Run reports them per input. Duplicates keep their first position.
func ExpandInputs(args []string, suffix string) Expansion {
	suffix = effectiveSuffix(suffix)
	exp := Expansion{Paths: make([]string, 0, len(args))}
	seen := mapset.NewThreadUnsafeSet[string]()
	add := func(path string) {
		key := filepath.Clean(path)
		if seen.Contains(key) {
			return
		}
		seen.Add(key)
		exp.Paths = append(exp.Paths, path)
	}

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil || !info.IsDir() {
			add(arg)
			continue
		}
		files, failed := listPluginFiles(arg, suffix)
		for _, f := range files {
			add(f)
		}
		for _, dir := range sortedKeys(failed) {
			if seen.Contains(filepath.Clean(dir)) {
				continue
			}
			if exp.Unlisted == nil {
				exp.Unlisted = make(map[string]error)
			}
			exp.Unlisted[dir] = failed[dir]
			add(dir)
		}
	}
	return exp
}

// listPluginFiles returns the sorted plugin scripts under dir. Subtrees that
// cannot be read are skipped and returned in failed.
func listPluginFiles(dir, suffix string) (files []string, failed map[string]error) {
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if failed == nil {
				failed = make(map[string]error)
			}
			failed[path] = fmt.Errorf("failed to list directory: %w", err)
			if d != nil && !d.IsDir() {
				return nil
			}
			return filepath.SkipDir
		}
		if d.IsDir() {
			return nil
		}
		if filepath.Ext(path) != pluginExt {
			return nil
		}
		if strings.HasSuffix(stem(path), suffix) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	sort.Strings(files)
	return files, failed
}

func sortedKeys(m map[string]error) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

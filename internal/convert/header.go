package convert

import (
	"strings"

	"mzify/internal/rules"
)

const (
	addedTargetMessage = "Added '@target MZ' to plugin header."
	defaultPluginName  = "Plugin"
)

// normalizeHeader makes sure the first plugin header declares a target.
// Only the first header block is considered.
func normalizeHeader(src string, opts Options) (string, []string) {
	loc := rules.HeaderBlock.FindStringIndex(src)
	if loc == nil {
		if opts.InjectHeader {
			return injectHeader(src, opts.PluginName)
		}
		return src, nil
	}
	header := src[loc[0]:loc[1]]
	if strings.Contains(header, rules.TargetMarker) || targetedSingleLine(src[:loc[0]], header) {
		return src, nil
	}
	return src[:loc[0]] + addTarget(header) + src[loc[1]:], []string{addedTargetMessage}
}

// targetedSingleLine reports whether a single-line header is already preceded
// by the target line a previous pass put in front of it.
func targetedSingleLine(before, header string) bool {
	if strings.ContainsAny(header, "\r\n") {
		return false
	}
	return strings.HasSuffix(before, rules.TargetLine+"\n")
}

// addTarget inserts the target line after the first line of header, reusing
// that line's terminator (\n, \r\n or \r). Single-line headers get the line
// in front.
func addTarget(header string) string {
	i := strings.IndexAny(header, "\r\n")
	if i < 0 {
		return rules.TargetLine + "\n" + header
	}
	eol := header[i : i+1]
	if strings.HasPrefix(header[i:], "\r\n") {
		eol = "\r\n"
	}
	cut := i + len(eol)
	return header[:cut] + rules.TargetLine + eol + header[cut:]
}

func injectHeader(src, name string) (string, []string) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = defaultPluginName
	}
	var b strings.Builder
	b.Grow(len(src) + 64)
	b.WriteString("/*:\n")
	b.WriteString(rules.TargetLine)
	b.WriteString("\n * @plugindesc ")
	b.WriteString(name)
	b.WriteString("\n */\n")
	b.WriteString(src)
	return b.String(), []string{"Injected MZ plugin header for '" + name + "'."}
}

package batch

import "path/filepath"

// DefaultSuffix is appended to the input stem when no output path is given.
const DefaultSuffix = "_MZ"

// OutputPath derives where the converted text for input is written.
// inPlace wins over explicit; an empty suffix falls back to DefaultSuffix.
func OutputPath(input, explicit string, inPlace bool, suffix string) string {
	if inPlace {
		return input
	}
	if explicit != "" {
		return explicit
	}
	return filepath.Join(filepath.Dir(input), stem(input)+effectiveSuffix(suffix)+filepath.Ext(input))
}

// effectiveSuffix is the suffix used both to name outputs and to skip
// previous outputs when expanding directories.
func effectiveSuffix(suffix string) string {
	if suffix == "" {
		return DefaultSuffix
	}
	return suffix
}

// ReportPath returns the sidecar report location for output.
func ReportPath(output string, format ReportFormat) string {
	return output + ".report." + format.Ext()
}

// PluginName guesses the plugin name from its file name.
func PluginName(input string) string {
	return stem(input)
}

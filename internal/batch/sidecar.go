package batch

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"mzify/internal/convert"
)

// ReportFormat selects the sidecar report encoding.
type ReportFormat string

const (
	ReportText ReportFormat = "text"
	ReportJSON ReportFormat = "json"
	ReportYAML ReportFormat = "yaml"
)

// ParseReportFormat validates a --report-format value.
func ParseReportFormat(value string) (ReportFormat, error) {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "", "text", "txt":
		return ReportText, nil
	case "json":
		return ReportJSON, nil
	case "yaml", "yml":
		return ReportYAML, nil
	default:
		return "", fmt.Errorf("invalid report format %q (expected text|json|yaml)", value)
	}
}

// Ext returns the file extension used for the format.
func (f ReportFormat) Ext() string {
	switch f {
	case ReportJSON:
		return "json"
	case ReportYAML:
		return "yaml"
	default:
		return "txt"
	}
}

type sidecarPayload struct {
	Input   string   `json:"input" yaml:"input"`
	Output  string   `json:"output" yaml:"output"`
	Changed bool     `json:"changed" yaml:"changed"`
	Changes []string `json:"changes" yaml:"changes"`
}

// RenderSidecar encodes report for the given input and output file names.
func RenderSidecar(format ReportFormat, input, output string, report convert.Report) ([]byte, error) {
	inName, outName := filepath.Base(input), filepath.Base(output)
	switch format {
	case ReportJSON, ReportYAML:
		payload := sidecarPayload{
			Input:   inName,
			Output:  outName,
			Changed: !report.Empty(),
			Changes: append([]string{}, report...),
		}
		if format == ReportJSON {
			data, err := json.MarshalIndent(payload, "", "  ")
			if err != nil {
				return nil, err
			}
			return append(data, '\n'), nil
		}
		return yaml.Marshal(payload)
	default:
		if report.Empty() {
			return []byte(convert.NoChangesMessage), nil
		}
		text := fmt.Sprintf("Conversion report for %s -> %s\n%s", inName, outName, report.Render())
		return []byte(text), nil
	}
}

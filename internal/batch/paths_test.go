package batch

import (
	"path/filepath"
	"testing"
)

func TestOutputPath(t *testing.T) {
	cases := []struct {
		input    string
		explicit string
		inPlace  bool
		suffix   string
		want     string
	}{
		{"plugins/Foo.js", "", false, "", filepath.Join("plugins", "Foo_MZ.js")},
		{"plugins/Foo.js", "", false, "_v2", filepath.Join("plugins", "Foo_v2.js")},
		{"Foo.js", "", false, "_MZ", "Foo_MZ.js"},
		{"plugins/Foo", "", false, "", filepath.Join("plugins", "Foo_MZ")},
		{"plugins/Foo.js", "out/Bar.js", false, "", "out/Bar.js"},
		{"plugins/Foo.js", "out/Bar.js", true, "", "plugins/Foo.js"},
		{"plugins/Foo.js", "", true, "_MZ", "plugins/Foo.js"},
	}
	for _, tc := range cases {
		got := OutputPath(tc.input, tc.explicit, tc.inPlace, tc.suffix)
		if got != tc.want {
			t.Fatalf("OutputPath(%q, %q, %v, %q) = %q, want %q", tc.input, tc.explicit, tc.inPlace, tc.suffix, got, tc.want)
		}
	}
}

func TestReportPath(t *testing.T) {
	cases := []struct {
		format ReportFormat
		want   string
	}{
		{ReportText, "Foo_MZ.js.report.txt"},
		{ReportJSON, "Foo_MZ.js.report.json"},
		{ReportYAML, "Foo_MZ.js.report.yaml"},
		{"", "Foo_MZ.js.report.txt"},
	}
	for _, tc := range cases {
		if got := ReportPath("Foo_MZ.js", tc.format); got != tc.want {
			t.Fatalf("ReportPath(%q) = %q, want %q", tc.format, got, tc.want)
		}
	}
}

func TestPluginName(t *testing.T) {
	if got := PluginName("a/b/YEP_Core.js"); got != "YEP_Core" {
		t.Fatalf("PluginName = %q", got)
	}
}

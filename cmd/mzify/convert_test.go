package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"mzify/internal/batch"
)

// newTestRoot builds a fresh command tree so flag state does not leak between tests.
func newTestRoot(stdout, stderr *bytes.Buffer) *cobra.Command {
	root := &cobra.Command{Use: "mzify", SilenceUsage: true, SilenceErrors: true}
	registerRootFlags(root.PersistentFlags())
	cmd := &cobra.Command{Use: "convert", Args: convertCmd.Args, RunE: runConvert}
	registerConvertFlags(cmd.Flags())
	root.AddCommand(cmd)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return root
}

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	emptyConfig := filepath.Join(t.TempDir(), configFileName)
	if err := os.WriteFile(emptyConfig, nil, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	var stdout, stderr bytes.Buffer
	root := newTestRoot(&stdout, &stderr)
	full := append([]string{args[0], "--color=off", "--config", emptyConfig}, args[1:]...)
	root.SetArgs(full)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func writePlugin(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestConvertCommandSingleFile(t *testing.T) {
	dir := t.TempDir()
	in := writePlugin(t, dir, "Status.js", "Window_Base.prototype.drawActorHp = function(){}")

	stdout, stderr, err := runCLI(t, "convert", "--ui=off", in)
	if err != nil {
		t.Fatalf("convert: %v (stderr %q)", err, stderr)
	}
	out := filepath.Join(dir, "Status_MZ.js")
	if !strings.Contains(stdout, "[OK] Wrote "+out) {
		t.Fatalf("unexpected stdout %q", stdout)
	}
	if !strings.Contains(stdout, "   - Window_Base.prototype.drawActorHp -> Window_StatusBase.prototype.drawActorHp") {
		t.Fatalf("changes not listed: %q", stdout)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !strings.HasPrefix(string(data), "Window_StatusBase.prototype.drawActorHp") {
		t.Fatalf("unexpected output %q", data)
	}
}

func TestConvertCommandBatchFailure(t *testing.T) {
	dir := t.TempDir()
	good := writePlugin(t, dir, "Good.js", "var x;")
	missing := filepath.Join(dir, "Missing.js")

	stdout, stderr, err := runCLI(t, "convert", "--ui=off", missing, good)
	if !errors.Is(err, errInputsFailed) {
		t.Fatalf("expected errInputsFailed, got %v", err)
	}
	if exitCode(err) != 1 {
		t.Fatalf("exit code = %d", exitCode(err))
	}
	if !strings.Contains(stderr, "[!] ") || !strings.Contains(stderr, "Missing.js") {
		t.Fatalf("missing input not reported: %q", stderr)
	}
	if !strings.Contains(stdout, "No heuristic changes were necessary.") {
		t.Fatalf("good input not reported: %q", stdout)
	}
}

func TestConvertCommandReportWriteFailureWarns(t *testing.T) {
	dir := t.TempDir()
	in := writePlugin(t, dir, "Warn.js", "this.systemColor();")
	report := filepath.Join(dir, "Warn_MZ.js.report.txt")
	if err := os.Mkdir(report, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	stdout, stderr, err := runCLI(t, "convert", "--ui=off", in)
	if err != nil {
		t.Fatalf("convert: %v (stderr %q)", err, stderr)
	}
	if !strings.Contains(stderr, "[!] Failed to write report "+report) {
		t.Fatalf("missing report warning: %q", stderr)
	}
	if !strings.Contains(stdout, "[OK] Wrote "+filepath.Join(dir, "Warn_MZ.js")) {
		t.Fatalf("unexpected stdout %q", stdout)
	}
}

func TestConvertCommandUnreadableDirectory(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced for root")
	}
	dir := t.TempDir()
	good := writePlugin(t, dir, "Good.js", "var x;")
	locked := filepath.Join(dir, "locked")
	if err := os.Mkdir(locked, 0); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chmod(locked, 0o755) })

	stdout, stderr, err := runCLI(t, "convert", "--ui=off", good, locked)
	if !errors.Is(err, errInputsFailed) {
		t.Fatalf("expected errInputsFailed, got %v", err)
	}
	if !strings.Contains(stderr, "[!] ") || !strings.Contains(stderr, "locked") {
		t.Fatalf("unlisted directory not reported: %q", stderr)
	}
	if !strings.Contains(stdout, "[OK] Wrote "+filepath.Join(dir, "Good_MZ.js")) {
		t.Fatalf("good input not converted: %q", stdout)
	}
}

func TestConvertCommandOutputWithBatchIsUsageError(t *testing.T) {
	dir := t.TempDir()
	a := writePlugin(t, dir, "A.js", "")
	b := writePlugin(t, dir, "B.js", "")
	_, _, err := runCLI(t, "convert", "-o", filepath.Join(dir, "out.js"), a, b)
	if !errors.Is(err, batch.ErrOutputWithBatch) {
		t.Fatalf("expected ErrOutputWithBatch, got %v", err)
	}
	if exitCode(err) != 2 {
		t.Fatalf("exit code = %d, want 2", exitCode(err))
	}
}

func TestConvertCommandNoArgsIsUsageError(t *testing.T) {
	_, _, err := runCLI(t, "convert")
	if err == nil || exitCode(err) != 2 {
		t.Fatalf("expected usage error, got %v", err)
	}
}

func TestConvertCommandKeepColorAndDryRun(t *testing.T) {
	dir := t.TempDir()
	in := writePlugin(t, dir, "C.js", "this.textColor(1);")
	stdout, _, err := runCLI(t, "convert", "--keep-mv-color", "--dry-run", in)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if !strings.Contains(stdout, "[DRY] Would write") || !strings.Contains(stdout, "No heuristic changes were necessary.") {
		t.Fatalf("unexpected stdout %q", stdout)
	}
	if _, err := os.Stat(filepath.Join(dir, "C_MZ.js")); !os.IsNotExist(err) {
		t.Fatalf("dry run wrote a file: %v", err)
	}
}

func TestResolveConvertSettingsPrecedence(t *testing.T) {
	var stdout, stderr bytes.Buffer
	root := newTestRoot(&stdout, &stderr)
	cmd, _, err := root.Find([]string{"convert"})
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if err := cmd.Flags().Parse([]string{"--suffix", "_flag", "--report-format", "yaml"}); err != nil {
		t.Fatalf("parse: %v", err)
	}
	cfg := &fileConfig{
		Convert: convertConfig{KeepMVColor: true, Suffix: "_cfg", Jobs: 3, ReportFormat: "json"},
	}
	s, err := resolveConvertSettings(cmd, cfg)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if s.suffix != "_flag" {
		t.Fatalf("flag should override suffix, got %q", s.suffix)
	}
	if s.reportFormat != batch.ReportYAML {
		t.Fatalf("flag should override report format, got %q", s.reportFormat)
	}
	if !s.options.KeepMVColor || s.jobs != 3 {
		t.Fatalf("config values lost: %+v", s)
	}
}

func TestResolveConvertSettingsRejectsConflicts(t *testing.T) {
	var stdout, stderr bytes.Buffer
	root := newTestRoot(&stdout, &stderr)
	cmd, _, err := root.Find([]string{"convert"})
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if err := cmd.Flags().Parse([]string{"--inplace", "-o", "x.js"}); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if _, err := resolveConvertSettings(cmd, &fileConfig{}); err == nil {
		t.Fatalf("expected --output/--inplace conflict")
	}
}

func TestBuildRequestOpensConfiguredCache(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cache")
	settings := convertSettings{suffix: batch.DefaultSuffix, jobs: 1, cache: true, cacheDir: dir}
	inputs := batch.Expansion{Paths: []string{"A.js"}}

	req, err := buildRequest(settings, inputs, zap.NewNop())
	if err != nil {
		t.Fatalf("buildRequest: %v", err)
	}
	if req.Cache == nil || req.Cache.Dir() != dir {
		t.Fatalf("cache not opened at %s: %+v", dir, req.Cache)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Fatalf("cache dir missing: %v", err)
	}
}

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"mzify/internal/rules"
	"mzify/internal/version"
)

// buildInfo is what `mzify version` reports. Commit and date are left empty
// unless requested.
type buildInfo struct {
	Tool      string `json:"tool"`
	Version   string `json:"version"`
	Catalog   string `json:"catalog"`
	GitCommit string `json:"git_commit,omitempty"`
	BuildDate string `json:"build_date,omitempty"`
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show mzify and rule catalog versions",
	Args:  cobra.NoArgs,
	RunE:  runVersion,
}

func init() {
	fs := versionCmd.Flags()
	fs.Bool("hash", false, "include git commit hash")
	fs.Bool("date", false, "include build timestamp")
	fs.Bool("full", false, "include all build metadata")
	fs.String("format", "pretty", "output format (pretty|json)")
}

func runVersion(cmd *cobra.Command, _ []string) error {
	if err := setupColor(cmd); err != nil {
		return err
	}
	fs := cmd.Flags()
	format, err := fs.GetString("format")
	if err != nil {
		return err
	}
	full, err := fs.GetBool("full")
	if err != nil {
		return err
	}
	withHash, err := fs.GetBool("hash")
	if err != nil {
		return err
	}
	withDate, err := fs.GetBool("date")
	if err != nil {
		return err
	}

	info := currentBuild(withHash || full, withDate || full)
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(info)
	case "pretty":
		return printBuild(cmd.OutOrStdout(), info)
	default:
		return &usageError{err: fmt.Errorf("unsupported format %q (must be pretty or json)", format)}
	}
}

func currentBuild(withHash, withDate bool) buildInfo {
	info := buildInfo{
		Tool:    "mzify",
		Version: strings.TrimSpace(version.Version),
		Catalog: rules.Version,
	}
	if info.Version == "" {
		info.Version = "dev"
	}
	if withHash {
		info.GitCommit = orUnknown(version.GitCommit)
	}
	if withDate {
		info.BuildDate = orUnknown(version.BuildDate)
	}
	return info
}

func printBuild(out io.Writer, info buildInfo) error {
	var b strings.Builder
	fmt.Fprintf(&b, "mzify %s (rules %s)\n", version.Pretty(), info.Catalog)
	if info.GitCommit != "" {
		fmt.Fprintf(&b, "commit: %s\n", info.GitCommit)
	}
	if info.BuildDate != "" {
		fmt.Fprintf(&b, "built:  %s\n", info.BuildDate)
	}
	_, err := io.WriteString(out, b.String())
	return err
}

func orUnknown(s string) string {
	if s = strings.TrimSpace(s); s == "" {
		return "unknown"
	}
	return s
}

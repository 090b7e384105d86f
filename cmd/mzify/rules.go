package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"mzify/internal/rules"
)

var rulesFormat string

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List the rewrite rules applied by convert",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := setupColor(cmd); err != nil {
			return err
		}
		switch strings.ToLower(rulesFormat) {
		case "pretty":
			return renderRulesPretty(cmd.OutOrStdout(), rules.Default())
		case "json":
			return renderRulesJSON(cmd.OutOrStdout(), rules.Default())
		default:
			return &usageError{err: fmt.Errorf("unsupported format %q (must be pretty or json)", rulesFormat)}
		}
	},
}

func init() {
	rulesCmd.Flags().StringVar(&rulesFormat, "format", "pretty", "output format (pretty|json)")
}

type rulesPayload struct {
	Catalog string          `json:"catalog"`
	Symbols []symbolPayload `json:"symbols"`
	Calls   []patternRule   `json:"calls"`
	Unsafe  []patternRule   `json:"unsafe"`
}

type symbolPayload struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type patternRule struct {
	Pattern     string `json:"pattern"`
	Replacement string `json:"replacement,omitempty"`
	Summary     string `json:"summary,omitempty"`
}

func collectRules(cat *rules.Catalog) rulesPayload {
	payload := rulesPayload{
		Catalog: rules.Version,
		Symbols: make([]symbolPayload, 0, len(cat.Symbols)),
		Calls:   make([]patternRule, 0, len(cat.Calls)),
		Unsafe:  make([]patternRule, 0, len(cat.Unsafe)),
	}
	for i := range cat.Symbols {
		r := &cat.Symbols[i]
		payload.Symbols = append(payload.Symbols, symbolPayload{From: r.Old(), To: r.New()})
	}
	for i := range cat.Calls {
		p := &cat.Calls[i]
		payload.Calls = append(payload.Calls, patternRule{Pattern: p.Pattern, Replacement: p.Replacement})
	}
	for i := range cat.Unsafe {
		p := &cat.Unsafe[i]
		payload.Unsafe = append(payload.Unsafe, patternRule{Pattern: p.Pattern, Summary: p.Summary})
	}
	return payload
}

func renderRulesPretty(out io.Writer, cat *rules.Catalog) error {
	payload := collectRules(cat)
	var b strings.Builder
	fmt.Fprintf(&b, "catalog %s\n\n", payload.Catalog)
	fmt.Fprintf(&b, "%s\n", headColor.Sprint("symbol migrations"))
	for _, s := range payload.Symbols {
		fmt.Fprintf(&b, "  %s -> %s\n", s.From, s.To)
	}
	fmt.Fprintf(&b, "\n%s\n", headColor.Sprint("call substitutions (applied in order)"))
	for i, c := range payload.Calls {
		fmt.Fprintf(&b, "  %2d. %s -> %s\n", i+1, c.Pattern, c.Replacement)
	}
	fmt.Fprintf(&b, "\n%s\n", headColor.Sprint("annotated, not rewritten"))
	for _, u := range payload.Unsafe {
		fmt.Fprintf(&b, "  %s\n", u.Pattern)
	}
	_, err := io.WriteString(out, b.String())
	return err
}

func renderRulesJSON(out io.Writer, cat *rules.Catalog) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(collectRules(cat))
}

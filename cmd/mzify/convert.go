package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"mzify/internal/batch"
	"mzify/internal/convert"
)

var convertCmd = &cobra.Command{
	Use:   "convert [flags] <plugin.js|directory>...",
	Short: "Convert MV plugins to MZ",
	Long: "Apply the MV to MZ rewrite rules to each input and write the result next to it " +
		"(<name>_MZ.js by default) together with a .report.txt sidecar listing every change.",
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return &usageError{err: errors.New("requires at least one input file or directory")}
		}
		return nil
	},
	RunE: runConvert,
}

func init() {
	registerConvertFlags(convertCmd.Flags())
}

func registerConvertFlags(fs *pflag.FlagSet) {
	fs.StringP("output", "o", "", "output file (only valid with a single input)")
	fs.Bool("inplace", false, "overwrite inputs in place")
	fs.Bool("keep-mv-color", false, "do not convert MV color helpers to ColorManager")
	fs.Bool("inject-header", false, "add a minimal MZ plugin header when none exists")
	fs.String("suffix", batch.DefaultSuffix, "suffix appended to the file stem for derived output names")
	fs.IntP("jobs", "j", 0, "number of inputs converted in parallel (0 = GOMAXPROCS)")
	fs.String("report-format", "text", "sidecar report format (text|json|yaml)")
	fs.Bool("no-report", false, "do not write sidecar reports")
	fs.Bool("dry-run", false, "convert and print the report without writing files")
	fs.Bool("cache", false, "reuse cached conversions of unchanged inputs")
	fs.String("ui", "auto", "progress UI for batches (auto|on|off)")
}

// convertSettings is the merged view of flags and mzify.toml.
type convertSettings struct {
	output       string
	inPlace      bool
	options      convert.Options
	suffix       string
	jobs         int
	reportFormat batch.ReportFormat
	noReport     bool
	dryRun       bool
	cache        bool
	cacheDir     string
	ui           switchMode
	quiet        bool
}

func runConvert(cmd *cobra.Command, args []string) error {
	if err := setupColor(cmd); err != nil {
		return err
	}
	configPath, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return err
	}
	cfg, err := loadConfig(configPath, ".")
	if err != nil {
		return err
	}
	settings, err := resolveConvertSettings(cmd, cfg)
	if err != nil {
		return &usageError{err: err}
	}
	logger, err := setupLogger(cmd, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	if cfg.Path != "" {
		logger.Debug("loaded config", zap.String("path", cfg.Path))
	}

	inputs := batch.ExpandInputs(args, settings.suffix)
	for dir, walkErr := range inputs.Unlisted {
		logger.Debug("directory not fully listed", zap.String("dir", dir), zap.Error(walkErr))
	}

	req, err := buildRequest(settings, inputs, logger)
	if err != nil {
		return err
	}

	var summary *batch.Summary
	if !settings.quiet && len(req.Inputs) > 1 && settings.ui.enabled(os.Stdout) {
		summary, err = runBatchWithUI(cmd.Context(), fmt.Sprintf("Converting %d plugins", len(req.Inputs)), req)
	} else {
		summary, err = batch.Run(cmd.Context(), req)
	}
	if err != nil {
		if errors.Is(err, batch.ErrOutputWithBatch) || errors.Is(err, batch.ErrNoInputs) {
			return &usageError{err: err}
		}
		return err
	}

	if err := printSummary(cmd.OutOrStdout(), cmd.ErrOrStderr(), summary, settings); err != nil {
		return err
	}
	if !summary.OK() {
		return errInputsFailed
	}
	return nil
}

func buildRequest(settings convertSettings, inputs batch.Expansion, logger *zap.Logger) (*batch.Request, error) {
	req := &batch.Request{
		Inputs:       inputs.Paths,
		Unlisted:     inputs.Unlisted,
		Output:       settings.output,
		InPlace:      settings.inPlace,
		Suffix:       settings.suffix,
		Options:      settings.options,
		ReportFormat: settings.reportFormat,
		NoReport:     settings.noReport,
		DryRun:       settings.dryRun,
		Jobs:         settings.jobs,
		Logger:       logger,
	}
	if err := req.Validate(); err != nil {
		return nil, &usageError{err: err}
	}
	if settings.cache {
		dir := settings.cacheDir
		if dir == "" {
			var err error
			dir, err = batch.DefaultCacheDir("mzify")
			if err != nil {
				return nil, fmt.Errorf("cache: %w", err)
			}
		}
		cache, err := batch.OpenCache(dir)
		if err != nil {
			logger.Warn("cache disabled", zap.String("dir", dir), zap.Error(err))
		} else {
			req.Cache = cache
			logger.Debug("cache enabled", zap.String("dir", cache.Dir()))
		}
	}
	return req, nil
}

// resolveConvertSettings applies explicitly set flags over config values.
func resolveConvertSettings(cmd *cobra.Command, cfg *fileConfig) (convertSettings, error) {
	flags := cmd.Flags()
	s := convertSettings{
		options: convert.Options{
			KeepMVColor:  cfg.Convert.KeepMVColor,
			InjectHeader: cfg.Convert.InjectHeader,
		},
		suffix:   batch.DefaultSuffix,
		jobs:     cfg.Convert.Jobs,
		cache:    cfg.Cache.Enabled,
		cacheDir: cfg.Cache.Dir,
	}
	if cfg.Convert.Suffix != "" {
		s.suffix = cfg.Convert.Suffix
	}
	reportFormat := cfg.Convert.ReportFormat

	var err error
	if s.output, err = flags.GetString("output"); err != nil {
		return s, err
	}
	if s.inPlace, err = flags.GetBool("inplace"); err != nil {
		return s, err
	}
	if s.noReport, err = flags.GetBool("no-report"); err != nil {
		return s, err
	}
	if s.dryRun, err = flags.GetBool("dry-run"); err != nil {
		return s, err
	}
	if flags.Changed("keep-mv-color") {
		if s.options.KeepMVColor, err = flags.GetBool("keep-mv-color"); err != nil {
			return s, err
		}
	}
	if flags.Changed("inject-header") {
		if s.options.InjectHeader, err = flags.GetBool("inject-header"); err != nil {
			return s, err
		}
	}
	if flags.Changed("suffix") {
		if s.suffix, err = flags.GetString("suffix"); err != nil {
			return s, err
		}
	}
	if flags.Changed("jobs") {
		if s.jobs, err = flags.GetInt("jobs"); err != nil {
			return s, err
		}
	}
	if flags.Changed("report-format") {
		if reportFormat, err = flags.GetString("report-format"); err != nil {
			return s, err
		}
	}
	if flags.Changed("cache") {
		if s.cache, err = flags.GetBool("cache"); err != nil {
			return s, err
		}
	}

	if s.reportFormat, err = batch.ParseReportFormat(reportFormat); err != nil {
		return s, err
	}
	uiValue, err := flags.GetString("ui")
	if err != nil {
		return s, err
	}
	if s.ui, err = parseSwitchMode("ui", uiValue); err != nil {
		return s, err
	}
	if s.quiet, err = cmd.Root().PersistentFlags().GetBool("quiet"); err != nil {
		return s, err
	}

	if s.output != "" && s.inPlace {
		return s, fmt.Errorf("--output and --inplace are mutually exclusive")
	}
	if s.suffix == "" {
		s.suffix = batch.DefaultSuffix
	}
	if s.jobs < 0 {
		return s, fmt.Errorf("--jobs must not be negative")
	}
	if s.jobs == 0 {
		s.jobs = runtime.GOMAXPROCS(0)
	}
	return s, nil
}

func printSummary(stdout, stderr io.Writer, summary *batch.Summary, settings convertSettings) error {
	for _, res := range summary.Results {
		if res.Err != nil {
			if _, err := fmt.Fprintf(stderr, "%s %v\n", failTag(), res.Err); err != nil {
				return err
			}
			continue
		}
		if res.ReportErr != nil {
			if _, err := fmt.Fprintf(stderr, "%s Failed to write report %s: %v\n", failTag(), res.ReportPath, res.ReportErr); err != nil {
				return err
			}
		}
		if settings.quiet {
			continue
		}
		if err := printResult(stdout, res, settings.dryRun); err != nil {
			return err
		}
	}
	return nil
}

func printResult(out io.Writer, res batch.Result, dryRun bool) error {
	var err error
	if dryRun {
		_, err = fmt.Fprintf(out, "%s Would write %s\n", dryRunTag(), res.Output)
	} else {
		_, err = fmt.Fprintf(out, "%s Wrote %s\n", okTag(), res.Output)
	}
	if err != nil {
		return err
	}
	if res.Report.Empty() {
		_, err = fmt.Fprintf(out, "  %s\n", convert.NoChangesMessage)
		return err
	}
	if _, err = fmt.Fprintln(out, "  Changes:"); err != nil {
		return err
	}
	for _, line := range res.Report {
		if _, err = fmt.Fprintf(out, "   - %s\n", line); err != nil {
			return err
		}
	}
	return nil
}

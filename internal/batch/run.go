// Package batch drives the rewrite engine over files: it decodes inputs,
// converts each one exactly once, and writes the result with a sidecar
// report. Inputs are independent; one failure never stops the others.
package batch

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"mzify/internal/convert"
)

// Request configures a batch run.
type Request struct {
	Inputs []string
	// Output is an explicit output path; valid only with one input.
	Output  string
	InPlace bool
	Suffix  string
	Options convert.Options

	ReportFormat ReportFormat
	NoReport     bool
	// DryRun converts without writing anything.
	DryRun bool

	// Unlisted holds inputs that already failed during expansion.
	Unlisted map[string]error

	Jobs     int
	Cache    *Cache
	Logger   *zap.Logger
	Progress ProgressSink
}

// Result is the outcome for one input.
type Result struct {
	Input      string
	Output     string
	ReportPath string
	Text       string
	Report     convert.Report
	Changed    bool
	Cached     bool
	// ReportErr is a sidecar write failure; the input still counts as converted.
	ReportErr error
	Err       error
	Elapsed   time.Duration
}

// Summary aggregates per-input results in input order.
type Summary struct {
	Results []Result
}

// OK reports whether every input succeeded.
func (s *Summary) OK() bool {
	return s.Failed() == 0
}

// Failed returns the number of inputs that failed.
func (s *Summary) Failed() int {
	n := 0
	for i := range s.Results {
		if s.Results[i].Err != nil {
			n++
		}
	}
	return n
}

// Validate checks request-level constraints.
func (req *Request) Validate() error {
	if len(req.Inputs) == 0 {
		return ErrNoInputs
	}
	if req.Output != "" && len(req.Inputs) != 1 {
		return ErrOutputWithBatch
	}
	return nil
}

// Run converts every input of req in parallel.
func Run(ctx context.Context, req *Request) (*Summary, error) {
	if req == nil {
		return nil, fmt.Errorf("batch: nil request")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	logger := req.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	sink := req.Progress
	if sink == nil {
		sink = nopSink{}
	}

	jobs := req.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	for _, input := range req.Inputs {
		sink.OnEvent(Event{File: input, Stage: StageRead, Status: StatusQueued})
	}

	// indices are unique per goroutine, no mutex needed
	results := make([]Result, len(req.Inputs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(req.Inputs)))

	for i, input := range req.Inputs {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				results[i] = Result{Input: input, Err: gctx.Err()}
				sink.OnEvent(Event{File: input, Stage: StageRead, Status: StatusError, Err: gctx.Err()})
				return nil
			default:
			}
			results[i] = convertOne(req, input, logger, sink)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	summary := &Summary{Results: results}
	logger.Info("batch finished",
		zap.Int("inputs", len(results)),
		zap.Int("failed", summary.Failed()),
	)
	return summary, nil
}

func convertOne(req *Request, input string, logger *zap.Logger, sink ProgressSink) Result {
	start := time.Now()
	res := Result{Input: input}
	fail := func(stage Stage, err error) Result {
		res.Err = err
		res.Elapsed = time.Since(start)
		logger.Error("conversion failed", zap.String("input", input), zap.String("stage", string(stage)), zap.Error(err))
		sink.OnEvent(Event{File: input, Stage: stage, Status: StatusError, Err: err, Elapsed: res.Elapsed})
		return res
	}

	sink.OnEvent(Event{File: input, Stage: StageRead, Status: StatusWorking})
	if err, ok := req.Unlisted[input]; ok {
		return fail(StageRead, err)
	}
	doc, err := readDocument(input)
	if err != nil {
		return fail(StageRead, err)
	}

	sink.OnEvent(Event{File: input, Stage: StageConvert, Status: StatusWorking})
	opts := req.Options
	if opts.PluginName == "" {
		opts.PluginName = PluginName(input)
	}
	res.Text, res.Report, res.Cached = cachedConvert(req.Cache, doc.Text, opts, logger)
	res.Changed = res.Text != doc.Text

	res.Output = OutputPath(input, req.Output, req.InPlace, req.Suffix)
	if !req.NoReport {
		res.ReportPath = ReportPath(res.Output, req.ReportFormat)
	}

	if req.DryRun {
		res.Elapsed = time.Since(start)
		sink.OnEvent(Event{File: input, Stage: StageConvert, Status: StatusDone, Elapsed: res.Elapsed})
		return res
	}

	sink.OnEvent(Event{File: input, Stage: StageWrite, Status: StatusWorking})
	data, err := encodeText(res.Text, doc.Encoding)
	if err != nil {
		return fail(StageWrite, fmt.Errorf("%s: %w", res.Output, err))
	}
	if err := writeFile(res.Output, data, doc.Mode); err != nil {
		return fail(StageWrite, err)
	}

	if res.ReportPath != "" {
		res.ReportErr = writeSidecar(req.ReportFormat, input, res.Output, res.ReportPath, res.Report)
		if res.ReportErr != nil {
			logger.Warn("failed to write report", zap.String("report", res.ReportPath), zap.Error(res.ReportErr))
		}
	}

	res.Elapsed = time.Since(start)
	logger.Debug("converted",
		zap.String("input", input),
		zap.String("output", res.Output),
		zap.Int("changes", len(res.Report)),
		zap.Bool("cached", res.Cached),
		zap.String("encoding", doc.Encoding.String()),
		zap.Duration("elapsed", res.Elapsed),
	)
	sink.OnEvent(Event{File: input, Stage: StageWrite, Status: StatusDone, Elapsed: res.Elapsed})
	return res
}

func cachedConvert(cache *Cache, text string, opts convert.Options, logger *zap.Logger) (string, convert.Report, bool) {
	if cache == nil {
		out, report := convert.Convert(text, opts)
		return out, report, false
	}
	key := KeyFor(text, opts)
	out, report, ok, err := cache.Get(key)
	if err != nil {
		logger.Warn("cache read failed", zap.Error(err))
	}
	if ok {
		return out, report, true
	}
	out, report = convert.Convert(text, opts)
	if err := cache.Put(key, out, report); err != nil {
		logger.Warn("cache write failed", zap.Error(err))
	}
	return out, report, false
}

func writeSidecar(format ReportFormat, input, output, path string, report convert.Report) error {
	data, err := RenderSidecar(format, input, output, report)
	if err != nil {
		return err
	}
	return writeFile(path, data, 0o644)
}

package batch

import "time"

// Stage describes the step a single input is in.
type Stage string

const (
	// StageRead loads and decodes the input.
	StageRead Stage = "read"
	// StageConvert runs the rewrite engine.
	StageConvert Stage = "convert"
	// StageWrite persists the output and its sidecar report.
	StageWrite Stage = "write"
)

// Status captures progress state within a stage.
type Status string

const (
	// StatusQueued indicates the input is waiting to start.
	StatusQueued Status = "queued"
	// StatusWorking indicates the input is being processed.
	StatusWorking Status = "working"
	// StatusDone indicates the input finished successfully.
	StatusDone Status = "done"
	// StatusError indicates the input failed.
	StatusError Status = "error"
)

// Event reports progress for an input (or for the whole batch when File is empty).
type Event struct {
	File    string
	Stage   Stage
	Status  Status
	Err     error
	Elapsed time.Duration
}

// ProgressSink consumes progress events. Implementations must be safe for
// concurrent use.
type ProgressSink interface {
	OnEvent(Event)
}

// ChannelSink forwards events into a channel.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(evt Event) {
	if s.Ch == nil {
		return
	}
	s.Ch <- evt
}

type nopSink struct{}

func (nopSink) OnEvent(Event) {}

// Package ui renders batch conversion progress in the terminal.
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"mzify/internal/batch"
)

const labelWidth = 12

// stageWeight is the share of one input's work finished once a stage starts.
var stageWeight = map[batch.Stage]float64{
	batch.StageRead:    0.2,
	batch.StageConvert: 0.5,
	batch.StageWrite:   0.8,
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	activeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	doneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	pendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// row is the last known state of one input.
type row struct {
	path    string
	stage   batch.Stage
	status  batch.Status
	err     error
	elapsed time.Duration
}

func (r row) finished() bool {
	return r.status == batch.StatusDone || r.status == batch.StatusError
}

func (r row) label() string {
	switch r.status {
	case batch.StatusWorking:
		switch r.stage {
		case batch.StageRead:
			return "reading"
		case batch.StageConvert:
			return "converting"
		case batch.StageWrite:
			return "writing"
		}
		return "working"
	case batch.StatusDone:
		return "done"
	case batch.StatusError:
		return "error"
	default:
		return "queued"
	}
}

func (r row) style() lipgloss.Style {
	switch r.status {
	case batch.StatusWorking:
		return activeStyle
	case batch.StatusDone:
		return doneStyle
	case batch.StatusError:
		return errorStyle
	default:
		return pendingStyle
	}
}

func (r row) progress() float64 {
	if r.finished() {
		return 1
	}
	if r.status == batch.StatusQueued {
		return 0
	}
	return stageWeight[r.stage]
}

type progressModel struct {
	title   string
	events  <-chan batch.Event
	spinner spinner.Model
	bar     progress.Model
	rows    []row
	byPath  map[string]int
	width   int
	closed  bool
}

type eventMsg batch.Event
type closedMsg struct{}

// NewProgressModel returns a Bubble Tea model fed by events. The program
// quits once events is closed.
func NewProgressModel(title string, files []string, events <-chan batch.Event) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = activeStyle

	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = 76

	m := &progressModel{
		title:   title,
		events:  events,
		spinner: sp,
		bar:     bar,
		rows:    make([]row, len(files)),
		byPath:  make(map[string]int, len(files)),
		width:   80,
	}
	for i, file := range files {
		m.rows[i] = row{path: file, stage: batch.StageRead, status: batch.StatusQueued}
		m.byPath[file] = i
	}
	return m
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.next())
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		return m, tea.Batch(m.applyEvent(batch.Event(msg)), m.next())
	case closedMsg:
		m.closed = true
		return m, tea.Quit
	case spinner.TickMsg:
		if m.closed {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.bar.Width = msg.Width - 4
		}
	case progress.FrameMsg:
		updated, cmd := m.bar.Update(msg)
		m.bar = updated.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *progressModel) next() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return closedMsg{}
		}
		return eventMsg(ev)
	}
}

func (m *progressModel) applyEvent(ev batch.Event) tea.Cmd {
	i, ok := m.byPath[ev.File]
	if !ok || m.rows[i].status == batch.StatusError {
		return nil
	}
	r := &m.rows[i]
	r.stage, r.status = ev.Stage, ev.Status
	if ev.Err != nil {
		r.err = ev.Err
	}
	if ev.Elapsed > 0 {
		r.elapsed = ev.Elapsed
	}
	return m.bar.SetPercent(m.percent())
}

func (m *progressModel) counts() (finished, failed int) {
	for _, r := range m.rows {
		if r.finished() {
			finished++
		}
		if r.status == batch.StatusError {
			failed++
		}
	}
	return finished, failed
}

func (m *progressModel) percent() float64 {
	if len(m.rows) == 0 {
		return 0
	}
	total := 0.0
	for _, r := range m.rows {
		total += r.progress()
	}
	return total / float64(len(m.rows))
}

func (m *progressModel) View() string {
	if len(m.rows) == 0 {
		return ""
	}
	finished, failed := m.counts()
	header := fmt.Sprintf("%s [%d/%d]", m.title, finished, len(m.rows))
	if failed > 0 {
		header += fmt.Sprintf(" (%d failed)", failed)
	}
	if m.closed {
		header = "done: " + header
	} else {
		header = m.spinner.View() + " " + header
	}

	nameWidth := max(m.width-labelWidth-4, 20)

	var b strings.Builder
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n\n")
	for _, r := range m.rows {
		label := r.style().Render(fmt.Sprintf("%*s", labelWidth, r.label()))
		line := r.path
		switch {
		case r.err != nil:
			line = fmt.Sprintf("%s: %v", r.path, r.err)
		case r.status == batch.StatusDone && r.elapsed > 0:
			line = fmt.Sprintf("%s (%s)", r.path, r.elapsed.Round(time.Millisecond))
		}
		fmt.Fprintf(&b, "  %s %s\n", label, truncate(line, nameWidth))
	}
	b.WriteString("\n")
	if m.closed {
		b.WriteString(m.bar.ViewAs(1))
	} else {
		b.WriteString(m.bar.View())
	}
	b.WriteString("\n")
	return b.String()
}

// truncate shortens value to width terminal cells, ending in "...".
func truncate(value string, width int) string {
	if width <= 0 || runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width, "...")
}

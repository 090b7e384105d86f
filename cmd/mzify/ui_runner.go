package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"mzify/internal/batch"
	"mzify/internal/ui"
)

type batchOutcome struct {
	summary *batch.Summary
	err     error
}

func runBatchWithUI(ctx context.Context, title string, req *batch.Request) (*batch.Summary, error) {
	if req == nil {
		return nil, fmt.Errorf("missing batch request")
	}
	events := make(chan batch.Event, 256)
	outcomeCh := make(chan batchOutcome, 1)

	go func() {
		reqCopy := *req
		reqCopy.Progress = batch.ChannelSink{Ch: events}
		summary, err := batch.Run(ctx, &reqCopy)
		outcomeCh <- batchOutcome{summary: summary, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, req.Inputs, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	// keep the pipeline unblocked if the UI quit early
	go func() {
		for range events {
		}
	}()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.summary, uiErr
	}
	return outcome.summary, outcome.err
}

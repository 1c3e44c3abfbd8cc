package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"kestrel/internal/driver"
	"kestrel/internal/ui"
)

type buildOutcome struct {
	result *driver.Result
	err    error
}

// runBuildWithUI runs the driver in the background and shows its progress
// until the build finishes.
func runBuildWithUI(ctx context.Context, title string, opts driver.Options) (*driver.Result, error) {
	events := make(chan driver.Event, 256)
	outcomeCh := make(chan buildOutcome, 1)

	go func() {
		opts.Progress = driver.ChannelSink{Ch: events}
		res, err := driver.Build(ctx, opts)
		outcomeCh <- buildOutcome{result: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.result, uiErr
	}
	return outcome.result, outcome.err
}

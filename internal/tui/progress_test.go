package tui

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Qinmu-mu/libdc-for-dirk/dc"
)

// headless drives the program from a canned input string instead of a
// terminal.
func headless(input string) []tea.ProgramOption {
	return []tea.ProgramOption{
		tea.WithInput(strings.NewReader(input)),
		tea.WithOutput(io.Discard),
		tea.WithoutRenderer(),
	}
}

func TestRunSuccess(t *testing.T) {
	err := run("testing", func(ctx context.Context, report dc.ProgressFunc) error {
		report(dc.Progress{Current: 1, Maximum: 2})
		report(dc.Progress{Current: 2, Maximum: 2})
		return nil
	}, headless("")...)
	if err != nil {
		t.Fatalf("run error = %v, want nil", err)
	}
}

func TestRunReturnsWorkError(t *testing.T) {
	wantErr := errors.New("device gone")
	err := run("testing", func(ctx context.Context, report dc.ProgressFunc) error {
		return wantErr
	}, headless("")...)
	if !errors.Is(err, wantErr) {
		t.Fatalf("run error = %v, want %v", err, wantErr)
	}
}

// ctrl+c must cancel the work's context, wait for the work to wind
// down, and surface the abort as an error so callers never archive a
// partial transfer as if it had completed.
func TestRunAbortCancelsAndDrainsWork(t *testing.T) {
	finished := make(chan struct{})
	err := run("testing", func(ctx context.Context, report dc.ProgressFunc) error {
		<-ctx.Done()
		close(finished)
		return ctx.Err()
	}, headless("\x03")...)
	if !errors.Is(err, ErrAborted) {
		t.Fatalf("run error = %v, want %v", err, ErrAborted)
	}
	select {
	case <-finished:
	default:
		t.Error("run returned while the work goroutine was still running")
	}
}

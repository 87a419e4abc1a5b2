// Package tui renders a progress bar for long device transfers. The
// transfer runs in a goroutine and feeds progress events into the
// bubbletea program.
package tui

import (
	"context"
	"errors"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Qinmu-mu/libdc-for-dirk/dc"
)

// ErrAborted is returned by Run when the user interrupts the transfer
// with ctrl+c. An aborted transfer must never be treated as complete.
var ErrAborted = errors.New("transfer aborted")

// progressMsg reports progress during an operation.
type progressMsg dc.Progress

// doneMsg signals the operation finished.
type doneMsg struct{}

type model struct {
	progress    progress.Model
	percent     float64
	description string
	aborted     bool
}

func newModel(description string) model {
	p := progress.New(
		progress.WithDefaultGradient(),
		progress.WithWidth(40),
	)
	return model{
		progress:    p,
		description: description,
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case progressMsg:
		if msg.Maximum > 0 {
			m.percent = float64(msg.Current) / float64(msg.Maximum)
		}
		return m, nil
	case doneMsg:
		m.percent = 1.0
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.aborted = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m model) View() string {
	descStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	return descStyle.Render(m.description) + "\n" + m.progress.ViewAs(m.percent) + "\n"
}

// Run executes work while showing a progress bar. The work function
// reports progress through the supplied callback, which is safe to
// call from the work goroutine, and should watch ctx so an interrupted
// transfer winds down promptly. On ctrl+c Run cancels the context,
// waits for work to return, and reports ErrAborted; Run never returns
// while the work goroutine is still running.
func Run(description string, work func(ctx context.Context, report dc.ProgressFunc) error) error {
	return run(description, work)
}

func run(description string, work func(ctx context.Context, report dc.ProgressFunc) error, opts ...tea.ProgramOption) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p := tea.NewProgram(newModel(description), opts...)

	done := make(chan error, 1)
	go func() {
		err := work(ctx, func(pr dc.Progress) {
			p.Send(progressMsg(pr))
		})
		done <- err
		p.Send(doneMsg{})
	}()

	final, err := p.Run()
	if err != nil {
		cancel()
		<-done
		return err
	}
	if final.(model).aborted {
		cancel()
		<-done
		return ErrAborted
	}
	return <-done
}

// Package report is the narrow presentation capability the pipeline emits
// progress through. The core never touches console state directly, so it
// stays testable headlessly.
package report

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Kind classifies an event for presentation.
type Kind string

const (
	Info     Kind = "info"
	Success  Kind = "success"
	Warning  Kind = "warning"
	Failure  Kind = "failure"
	Change   Kind = "change"
	Progress Kind = "progress"
)

// Event is one reportable occurrence.
type Event struct {
	Kind    Kind
	Message string
}

// Reporter receives pipeline events. Implementations must be safe for use
// from a single goroutine at a time; the pipeline is single-threaded.
type Reporter interface {
	Emit(ev Event)
}

// Console renders events with per-kind styling.
type Console struct {
	out io.Writer
}

var (
	infoStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	successStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	warningStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	failureStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	changeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("5"))
	progressStyle = lipgloss.NewStyle().Faint(true)
)

// NewConsole creates a console reporter writing to out.
func NewConsole(out io.Writer) *Console {
	return &Console{out: out}
}

func (c *Console) Emit(ev Event) {
	var styled string
	switch ev.Kind {
	case Success:
		styled = successStyle.Render("✓ " + ev.Message)
	case Warning:
		styled = warningStyle.Render("! " + ev.Message)
	case Failure:
		styled = failureStyle.Render("✗ " + ev.Message)
	case Change:
		styled = changeStyle.Render("~ " + ev.Message)
	case Progress:
		styled = progressStyle.Render(ev.Message)
	default:
		styled = infoStyle.Render(ev.Message)
	}
	fmt.Fprintln(c.out, styled)
}

// Nop discards all events.
type Nop struct{}

func (Nop) Emit(Event) {}

// Recorder captures events for assertions in tests.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Emit(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

// Events returns a copy of everything emitted so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Messages returns just the message strings, in emission order.
func (r *Recorder) Messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Message
	}
	return out
}

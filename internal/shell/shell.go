// Package shell implements the interactive taximeter console.
// It reads one command per line, drives a Meter, and renders the results
// with fatih/color. Cancelling the Run context finishes any open trip.
package shell

import (
	"bufio"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"

	"github.com/pkordes/taximeter/internal/domain"
)

// Meter is the fare ledger the shell drives.
type Meter interface {
	Start(ctx context.Context) (domain.Snapshot, error)
	ChangeState(ctx context.Context, target domain.State) (domain.StateChange, error)
	Peek(ctx context.Context) (domain.Snapshot, error)
	Finish(ctx context.Context) (domain.Receipt, error)
	Active() bool
}

// History lists finished trips for the history command.
type History interface {
	ListPaged(ctx context.Context, p domain.PaginationParams) ([]domain.Receipt, int64, error)
}

const historyLimit = 10

var commandHelp = []struct{ name, help string }{
	{"start", "Begin new trip"},
	{"moving", "Change to moving rate"},
	{"stopped", "Change to stopped rate"},
	{"status", "View current status and fare"},
	{"finish", "End trip and show total"},
	{"history", "List recent trips"},
	{"help", "Show this screen"},
	{"exit", "Close the program"},
}

// Shell is one interactive session.
type Shell struct {
	meter   Meter
	history History
	in      io.Reader
	log     *slog.Logger
	color   bool
	out     io.Writer
	r       *renderer
}

// Option configures a Shell.
type Option func(*Shell)

// WithColor turns ANSI colors on or off. Colors are on by default.
func WithColor(enabled bool) Option {
	return func(s *Shell) { s.color = enabled }
}

// WithHistory enables the history command.
func WithHistory(h History) Option {
	return func(s *Shell) { s.history = h }
}

// WithLogger sets the session logger. Defaults to slog.Default.
func WithLogger(log *slog.Logger) Option {
	return func(s *Shell) { s.log = log }
}

// New constructs a Shell reading commands from in and writing to out.
func New(meter Meter, in io.Reader, out io.Writer, opts ...Option) *Shell {
	s := &Shell{meter: meter, in: in, out: out, color: true}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	s.r = newRenderer(out, s.color)
	return s
}

// errExit ends the command loop.
var errExit = errors.New("exit")

// Run shows the welcome screen and processes commands until exit, end of
// input, or ctx is cancelled. On cancellation and at end of input an open
// trip is finished and its receipt rendered before Run returns.
func (s *Shell) Run(ctx context.Context) error {
	s.log.InfoContext(ctx, "starting taximeter interface")
	s.r.welcome()
	s.log.InfoContext(ctx, "welcome screen displayed")

	done := make(chan struct{})
	defer close(done)
	lines, readErr := s.readLines(done)

	for {
		s.r.prompt(s.meter.Active())

		line, ok, err := s.next(ctx, lines)
		if err != nil {
			// ctx is already cancelled; finish under a fresh context so the
			// journal write is not cut short.
			s.log.WarnContext(ctx, "interruption detected")
			s.r.println()
			s.r.warnf("Interruption detected...")
			s.finishOnExit(context.WithoutCancel(ctx))
			s.r.ok.Fprintln(s.out, "See you later!")
			return nil
		}
		if !ok {
			s.log.InfoContext(ctx, "end of input")
			s.r.println()
			s.finishOnExit(ctx)
			return <-readErr
		}

		cmd := strings.ToLower(strings.TrimSpace(line))
		s.log.DebugContext(ctx, "command entered", "command", cmd)
		if err := s.dispatch(ctx, cmd, lines); err != nil {
			if errors.Is(err, errExit) {
				s.log.InfoContext(ctx, "exiting application")
				s.r.println()
				s.r.ok.Fprintln(s.out, "Thank you for using Digital Taximeter!")
				return nil
			}
			return err
		}
	}
}

// readLines feeds input lines to a channel so Run can wait on ctx at the
// same time. The error channel receives the scanner error (or nil) once the
// input is exhausted.
func (s *Shell) readLines(done <-chan struct{}) (<-chan string, <-chan error) {
	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(s.in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-done:
				return
			}
		}
		readErr <- sc.Err()
	}()
	return lines, readErr
}

// next waits for one line. ok is false at end of input; err is non-nil when
// ctx is cancelled first.
func (s *Shell) next(ctx context.Context, lines <-chan string) (string, bool, error) {
	select {
	case <-ctx.Done():
		return "", false, ctx.Err()
	case line, ok := <-lines:
		return line, ok, nil
	}
}

func (s *Shell) dispatch(ctx context.Context, cmd string, lines <-chan string) error {
	switch cmd {
	case "start":
		s.start(ctx)
	case "moving":
		s.changeState(ctx, domain.StateMoving)
	case "stopped":
		s.changeState(ctx, domain.StateStopped)
	case "status":
		s.status(ctx)
	case "finish":
		s.finish(ctx)
	case "history":
		s.showHistory(ctx)
	case "help":
		s.r.welcome()
	case "exit":
		return s.exit(ctx, lines)
	case "":
	default:
		s.log.WarnContext(ctx, "unrecognized command", "command", cmd)
		s.r.errorf("Command not recognized. Use 'help' to see available commands.")
	}
	return nil
}

func (s *Shell) start(ctx context.Context) {
	snap, err := s.meter.Start(ctx)
	if err != nil {
		s.report(ctx, err)
		return
	}
	s.r.started(snap)
}

func (s *Shell) changeState(ctx context.Context, target domain.State) {
	change, err := s.meter.ChangeState(ctx, target)
	if err != nil {
		s.report(ctx, err)
		return
	}
	s.r.changed(change)
}

func (s *Shell) status(ctx context.Context) {
	snap, err := s.meter.Peek(ctx)
	if err != nil {
		s.report(ctx, err)
		return
	}
	s.r.status(snap)
}

func (s *Shell) finish(ctx context.Context) {
	rec, err := s.meter.Finish(ctx)
	if err != nil {
		s.report(ctx, err)
		return
	}
	s.r.receipt(rec)
}

func (s *Shell) showHistory(ctx context.Context) {
	if s.history == nil {
		s.r.warnf("Trip history is not available.")
		return
	}
	recs, total, err := s.history.ListPaged(ctx, domain.PaginationParams{Page: 1, Limit: historyLimit})
	if err != nil {
		s.report(ctx, err)
		return
	}
	s.r.history(recs, total)
}

// exit asks for confirmation when a trip is open. Anything but "y" keeps
// the session running.
func (s *Shell) exit(ctx context.Context, lines <-chan string) error {
	if !s.meter.Active() {
		return errExit
	}
	s.r.printf("%s", s.r.warn.Sprint("A trip is in progress. Finish and exit? (y/n): "))
	answer, ok, err := s.next(ctx, lines)
	if err != nil || !ok {
		// Run's own loop handles cancellation and end of input on the next read.
		return nil
	}
	s.log.DebugContext(ctx, "exit confirmation", "response", answer)
	if !strings.EqualFold(strings.TrimSpace(answer), "y") {
		return nil
	}
	s.finish(ctx)
	return errExit
}

// finishOnExit closes an open trip on the way out.
func (s *Shell) finishOnExit(ctx context.Context) {
	if !s.meter.Active() {
		return
	}
	s.r.warnf("Finishing current trip...")
	s.finish(ctx)
}

// report renders a lifecycle error as the matching user message.
func (s *Shell) report(ctx context.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrAlreadyActive):
		s.r.errorf("A trip is already in progress. Finish the current one first.")
	case errors.Is(err, domain.ErrNoActiveTrip):
		s.r.errorf("No trip in progress. Use 'start' first.")
	default:
		s.log.ErrorContext(ctx, "unexpected error", "error", err)
		s.r.errorf("Unexpected error: %v", err)
	}
}

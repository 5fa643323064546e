package shell

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/pkordes/taximeter/internal/domain"
)

const (
	bannerWidth  = 60
	statusWidth  = 40
	receiptWidth = 50
	clockLayout  = "15:04:05"
)

// renderer owns every string the shell prints. Colors are fixed per
// renderer so a test can switch them off without touching color.NoColor.
type renderer struct {
	out io.Writer

	title   *color.Color
	accent  *color.Color
	bold    *color.Color
	ok      *color.Color
	warn    *color.Color
	bad     *color.Color
	moving  *color.Color
	stopped *color.Color
	rule    *color.Color
}

func newRenderer(out io.Writer, enabled bool) *renderer {
	r := &renderer{
		out:     out,
		title:   color.New(color.FgBlue, color.Bold),
		accent:  color.New(color.FgHiYellow, color.Bold),
		bold:    color.New(color.Bold),
		ok:      color.New(color.FgGreen, color.Bold),
		warn:    color.New(color.FgYellow, color.Bold),
		bad:     color.New(color.FgRed, color.Bold),
		moving:  color.New(color.FgGreen),
		stopped: color.New(color.FgYellow),
		rule:    color.New(color.FgBlue),
	}
	for _, c := range []*color.Color{r.title, r.accent, r.bold, r.ok, r.warn, r.bad, r.moving, r.stopped, r.rule} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return r
}

func (r *renderer) println(a ...any) {
	fmt.Fprintln(r.out, a...)
}

func (r *renderer) printf(format string, a ...any) {
	fmt.Fprintf(r.out, format, a...)
}

func (r *renderer) state(s domain.State) string {
	if s == domain.StateMoving {
		return r.moving.Sprint(strings.ToUpper(s.String()))
	}
	return r.stopped.Sprint(strings.ToUpper(s.String()))
}

func amount(v float64) string {
	return domain.FormatAmount(v) + "€"
}

func cents(rate float64) string {
	return fmt.Sprintf("%.0f cents", rate*100)
}

func (r *renderer) welcome() {
	line := r.title.Sprint(strings.Repeat("=", bannerWidth))
	r.println(line)
	r.println(strings.Repeat(" ", 18) + r.accent.Sprint("DIGITAL TAXIMETER"))
	r.println(line)
	r.println()
	r.println(r.bold.Sprint("RATES:"))
	r.printf("   • %s: %s per second\n", r.stopped.Sprint("Stopped"), r.bold.Sprint(amount(domain.StoppedRate)))
	r.printf("   • %s: %s per second\n", r.moving.Sprint("Moving"), r.bold.Sprint(amount(domain.MovingRate)))
	r.println()
	r.println(r.bold.Sprint("AVAILABLE COMMANDS:"))
	for _, c := range commandHelp {
		r.printf("   • %s - %s\n", r.ok.Sprintf("%-10s", "'"+c.name+"'"), c.help)
	}
	r.println(line)
}

func (r *renderer) prompt(active bool) {
	status := r.stopped.Sprint("[INACTIVE]")
	if active {
		status = r.moving.Sprint("[IN PROGRESS]")
	}
	r.printf("\nTaximeter %s\n", status)
	r.printf("%s", r.bold.Sprint("> Enter a command: "))
}

func (r *renderer) started(s domain.Snapshot) {
	r.println(r.ok.Sprint("Trip started!"))
	r.printf("Initial state: %s\n", r.state(s.State))
	r.printf("Start time: %s\n", r.bold.Sprint(s.StartedAt.Format(clockLayout)))
}

func (r *renderer) changed(c domain.StateChange) {
	if !c.Changed {
		r.printf("Already in state: %s\n", r.bold.Sprint(strings.ToUpper(c.State.String())))
		return
	}
	r.printf("State changed to: %s\n", r.state(c.State))
	if c.State == domain.StateMoving {
		r.printf("Taxi moving - Rate: %s\n", r.bold.Sprint(cents(c.State.Rate())+"/second"))
	} else {
		r.printf("Taxi stopped - Rate: %s\n", r.bold.Sprint(cents(c.State.Rate())+"/second"))
	}
}

func (r *renderer) status(s domain.Snapshot) {
	line := r.rule.Sprint(strings.Repeat("─", statusWidth))
	r.println()
	r.println(line)
	r.println(r.title.Sprint("CURRENT TAXIMETER STATUS"))
	r.println(line)
	r.printf("State: %s\n", r.state(s.State))
	r.printf("Elapsed time: %s seconds\n", r.bold.Sprintf("%.1f", s.Elapsed.Seconds()))
	r.printf("Current total: %s\n", r.ok.Sprint(amount(s.Total)))
	r.printf("Current rate: %s per second\n", r.bold.Sprint(cents(s.Rate)))
	r.println(line)
}

func (r *renderer) receipt(rec domain.Receipt) {
	line := r.ok.Sprint(strings.Repeat("=", receiptWidth))
	r.println()
	r.println(line)
	r.println(r.ok.Sprint("TRIP FINISHED"))
	r.println(line)
	r.printf("Total duration: %s seconds\n", r.bold.Sprintf("%.1f", rec.Duration.Seconds()))
	r.printf("  stopped: %.1f s, moving: %.1f s\n", rec.StoppedFor.Seconds(), rec.MovingFor.Seconds())
	r.printf("TOTAL TO PAY: %s\n", r.ok.Sprint(amount(rec.Total)))
	r.printf("End time: %s\n", r.bold.Sprint(rec.FinishedAt.Format(clockLayout)))
	r.println(line)
}

func (r *renderer) history(recs []domain.Receipt, total int64) {
	if len(recs) == 0 {
		r.println(r.warn.Sprint("No finished trips yet."))
		return
	}
	r.printf("Last %d of %d trips:\n", len(recs), total)
	for _, rec := range recs {
		r.printf("   %s  %s  %6.1f s  %s\n",
			rec.FinishedAt.Format(time.DateTime),
			r.state(rec.FinalState),
			rec.Duration.Seconds(),
			r.ok.Sprint(amount(rec.Total)),
		)
	}
}

func (r *renderer) errorf(format string, a ...any) {
	r.println(r.bad.Sprintf(format, a...))
}

func (r *renderer) warnf(format string, a ...any) {
	r.println(r.warn.Sprintf(format, a...))
}

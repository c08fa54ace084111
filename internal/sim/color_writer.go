// ColorWriter prints human-friendly, colorized event rows to STDOUT.
package sim

import (
	"fmt"
	"io"
	"os"
	"sync"
	"text/tabwriter"
	"time"

	"golang.org/x/term"

	"kuberbomber/internal/config"
	"kuberbomber/internal/event"
)

const (
	colorReset   = "\x1b[0m"
	colorRed     = "\x1b[31m"
	colorGreen   = "\x1b[32m"
	colorYellow  = "\x1b[33m"
	colorBlue    = "\x1b[34m"
	colorMagenta = "\x1b[35m"
	colorCyan    = "\x1b[36m"
	colorGray    = "\x1b[90m"
)

// ColorWriter prints event rows using ANSI colors when STDOUT is a terminal.
type ColorWriter struct {
	cfg     *config.SimulationConfig
	out     io.Writer
	once    sync.Once
	colored bool
}

// NewColorWriter creates a ColorWriter writing to os.Stdout.
func NewColorWriter(cfg *config.SimulationConfig) *ColorWriter {
	return &ColorWriter{
		cfg:     cfg,
		out:     os.Stdout,
		colored: term.IsTerminal(int(os.Stdout.Fd())),
	}
}

func (w *ColorWriter) color(c string) string {
	if !w.colored {
		return ""
	}
	return c
}

func (w *ColorWriter) printOverview() {
	if w.cfg == nil {
		return
	}
	fmt.Fprintln(w.out, "Simulation Configuration:")
	tw := tabwriter.NewWriter(w.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Acceleration:\t%.0fx\n", w.cfg.Acceleration)
	fmt.Fprintf(tw, "Base MTTF (h):\t%.2f\n", w.cfg.BaseMTTFHours)
	fmt.Fprintf(tw, "Distribution:\t%s\n", w.cfg.Distribution)
	fmt.Fprintf(tw, "Failure Modes:\t%v\n", w.cfg.FailureModes)
	fmt.Fprintf(tw, "Poll Interval (s):\t%.0f\n", w.cfg.PollIntervalSeconds)
	fmt.Fprintf(tw, "Horizon (h):\t%.0f\n", w.cfg.HorizonHours)
	tw.Flush()
	fmt.Fprintln(w.out)
}

func eventColor(t event.Type) string {
	switch t {
	case event.FailureInitiated, event.FailureDetected:
		return colorRed
	case event.RecoveryStarted:
		return colorYellow
	case event.RecoveryCompleted:
		return colorGreen
	default:
		return colorCyan
	}
}

// Write outputs a single event row in colorized format.
func (w *ColorWriter) Write(row event.Row) error {
	w.once.Do(w.printOverview)

	ec := eventColor(row.EventType)
	fmt.Fprintf(w.out, "%s[%s]%s ", w.color(colorGray), row.Timestamp.Format(time.RFC3339), w.color(colorReset))
	fmt.Fprintf(w.out, "%s%s%s ", w.color(ec), row.EventType, w.color(colorReset))
	fmt.Fprintf(w.out, "%ssim=%.2fh%s ", w.color(colorBlue), row.SimulationHours, w.color(colorReset))
	if row.FailureMode != "" {
		fmt.Fprintf(w.out, "%smode=%s%s ", w.color(colorMagenta), row.FailureMode, w.color(colorReset))
	}
	if row.Target != "" {
		fmt.Fprintf(w.out, "target=%s/%s ", row.TargetType, row.Target)
	}
	if row.EventType == event.RecoveryCompleted {
		fmt.Fprintf(w.out, "%sdur=%.1fs%s ", w.color(colorYellow), row.DurationSeconds, w.color(colorReset))
		fmt.Fprintf(w.out, "%smttf=%.2fh mtbf=%.2fh mttr=%.1fs%s ",
			w.color(colorCyan), row.MTTFHours, row.MTBFHours, row.MTTRSeconds, w.color(colorReset))
		fmt.Fprintf(w.out, "%snext=%.2fh%s ", w.color(colorGray), row.NextFailureInHours, w.color(colorReset))
	}
	if row.AdditionalInfo != "" {
		fmt.Fprintf(w.out, "%s%s%s", w.color(colorGray), row.AdditionalInfo, w.color(colorReset))
	}
	fmt.Fprintln(w.out)
	return nil
}

// WriteBatch outputs multiple event rows.
func (w *ColorWriter) WriteBatch(rows []event.Row) error {
	for _, r := range rows {
		_ = w.Write(r)
	}
	return nil
}

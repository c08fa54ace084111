package sim

import (
	"fmt"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"kuberbomber/internal/event"
)

// teaProgram abstracts bubbletea.Program for testing.
type teaProgram interface {
	Send(tea.Msg)
}

// eventMsg carries one event row into the TUI.
type eventMsg struct{ row event.Row }

// statusMsg carries a fresh status snapshot.
type statusMsg struct{ st Status }

// tickMsg drives periodic status refresh.
type tickMsg time.Time

// TUIWriter renders the event stream and live metrics in a bubbletea TUI.
type TUIWriter struct {
	program    teaProgram
	done       chan struct{}
	sendSignal atomic.Bool
}

// NewTUIWriter starts a bubbletea program and returns a TUIWriter. The
// status func is polled once per second for the metrics panel.
func NewTUIWriter(status func() Status) *TUIWriter {
	w := &TUIWriter{done: make(chan struct{})}
	w.sendSignal.Store(true)
	p := tea.NewProgram(newTUIModel(status), tea.WithAltScreen())
	w.program = p
	go func() {
		_, _ = p.Run()
		close(w.done)
		if w.sendSignal.Load() {
			if proc, err := os.FindProcess(os.Getpid()); err == nil {
				_ = proc.Signal(os.Interrupt)
			}
		}
	}()
	return w
}

// Write implements EventWriter.
func (w *TUIWriter) Write(row event.Row) error {
	w.program.Send(eventMsg{row: row})
	return nil
}

// WriteBatch implements batch mode.
func (w *TUIWriter) WriteBatch(rows []event.Row) error {
	for _, r := range rows {
		_ = w.Write(r)
	}
	return nil
}

// Close shuts the TUI down without signalling the process.
func (w *TUIWriter) Close() {
	w.sendSignal.Store(false)
	if p, ok := w.program.(*tea.Program); ok {
		p.Quit()
		<-w.done
	}
}

var (
	tuiTitleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	tuiBorderStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	tuiFailStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	tuiOKStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	tuiWarnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	tuiDimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

type tuiModel struct {
	status   func() Status
	metrics  table.Model
	feed     viewport.Model
	lines    []string
	width    int
	height   int
	maxLines int
}

func newTUIModel(status func() Status) tuiModel {
	cols := []table.Column{
		{Title: "Metric", Width: 24},
		{Title: "Value", Width: 20},
	}
	t := table.New(table.WithColumns(cols), table.WithHeight(10))
	st := table.DefaultStyles()
	st.Header = st.Header.Bold(true)
	st.Selected = lipgloss.NewStyle()
	t.SetStyles(st)

	return tuiModel{
		status:   status,
		metrics:  t,
		feed:     viewport.New(80, 16),
		maxLines: 500,
	}
}

func tuiTick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m tuiModel) Init() tea.Cmd {
	return tuiTick()
}

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.feed.Width = msg.Width - 4
		feedHeight := msg.Height - 18
		if feedHeight < 4 {
			feedHeight = 4
		}
		m.feed.Height = feedHeight
		m.refreshFeed()
	case tickMsg:
		if m.status != nil {
			st := m.status()
			m.applyStatus(st)
		}
		return m, tuiTick()
	case statusMsg:
		m.applyStatus(msg.st)
	case eventMsg:
		m.lines = append(m.lines, renderEventLine(msg.row))
		if len(m.lines) > m.maxLines {
			m.lines = m.lines[len(m.lines)-m.maxLines:]
		}
		m.refreshFeed()
	}

	var cmd tea.Cmd
	m.feed, cmd = m.feed.Update(msg)
	return m, cmd
}

func (m *tuiModel) applyStatus(st Status) {
	running := "stopped"
	if st.IsRunning {
		running = "running"
	}
	m.metrics.SetRows([]table.Row{
		{"State", running},
		{"Simulated time (h)", fmt.Sprintf("%.2f", st.SimulatedHours)},
		{"Real time (s)", fmt.Sprintf("%.1f", st.RealSeconds)},
		{"Acceleration", fmt.Sprintf("%.0fx", st.Acceleration)},
		{"Active failures", fmt.Sprintf("%d", st.ActiveFailures)},
		{"Total failures", fmt.Sprintf("%d", st.TotalFailures)},
		{"MTTF (h)", fmt.Sprintf("%.3f", st.MTTFHours)},
		{"MTBF (h)", fmt.Sprintf("%.3f", st.MTBFHours)},
		{"MTTR (s)", fmt.Sprintf("%.1f", st.MTTRSeconds)},
		{"Availability (%)", fmt.Sprintf("%.2f", st.AvailabilityPercent)},
	})
}

func (m *tuiModel) refreshFeed() {
	width := m.feed.Width
	if width <= 0 {
		width = 80
	}
	wrapped := make([]string, 0, len(m.lines))
	for _, l := range m.lines {
		wrapped = append(wrapped, wordwrap.String(l, width))
	}
	m.feed.SetContent(strings.Join(wrapped, "\n"))
	m.feed.GotoBottom()
}

func renderEventLine(row event.Row) string {
	var style lipgloss.Style
	switch row.EventType {
	case event.FailureInitiated, event.FailureDetected:
		style = tuiFailStyle
	case event.RecoveryCompleted:
		style = tuiOKStyle
	case event.RecoveryStarted:
		style = tuiWarnStyle
	default:
		style = tuiDimStyle
	}
	line := fmt.Sprintf("[%s] %s", row.Timestamp.Format("15:04:05"), style.Render(string(row.EventType)))
	if row.Target != "" {
		line += fmt.Sprintf(" %s/%s", row.TargetType, row.Target)
	}
	if row.FailureMode != "" {
		line += fmt.Sprintf(" mode=%s", row.FailureMode)
	}
	if row.EventType == event.RecoveryCompleted {
		line += fmt.Sprintf(" dur=%.1fs mttf=%.2fh mttr=%.1fs", row.DurationSeconds, row.MTTFHours, row.MTTRSeconds)
	}
	if row.AdditionalInfo != "" {
		line += " " + tuiDimStyle.Render(row.AdditionalInfo)
	}
	return line
}

func (m tuiModel) View() string {
	title := tuiTitleStyle.Render("kuberbomber reliability simulation")
	metrics := tuiBorderStyle.Render(m.metrics.View())
	feed := tuiBorderStyle.Render(m.feed.View())
	help := tuiDimStyle.Render("q: quit")
	return lipgloss.JoinVertical(lipgloss.Left, title, metrics, feed, help)
}

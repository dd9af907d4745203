package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pbutterworth/gochlorinator/pkg/snapshot"
)

// GatherFunc runs one data gathering cycle and returns the merged snapshot.
type GatherFunc func(ctx context.Context) (*snapshot.Snapshot, error)

// Message types for async operations
type snapshotMsg struct {
	fields map[string]any
	err    error
}

type refreshTickMsg time.Time

// dashboardKeyMap defines key bindings for the dashboard screen
type dashboardKeyMap struct {
	Refresh key.Binding
	Quit    key.Binding
}

var dashboardKeys = dashboardKeyMap{
	Refresh: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "refresh"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// Model is the dashboard's bubbletea model.
type Model struct {
	// Device polling
	Device   string // nickname or address, for the header
	Gather   GatherFunc
	Interval time.Duration

	// Snapshot state
	Fields     map[string]any
	LastUpdate time.Time
	GatherErr  error

	// UI state
	Width     int
	Height    int
	Gathering bool
	Spinner   spinner.Model
	Keys      dashboardKeyMap
}

// NewModel creates a dashboard polling via gather every interval.
func NewModel(device string, gather GatherFunc, interval time.Duration) Model {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle
	return Model{
		Device:   device,
		Gather:   gather,
		Interval: interval,
		Fields:   make(map[string]any),
		Spinner:  s,
		Keys:     dashboardKeys,
	}
}

// Init starts the spinner and kicks off the first gather cycle.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.Spinner.Tick, m.gatherCmd())
}

// gatherCmd runs one gather cycle off the UI goroutine.
func (m Model) gatherCmd() tea.Cmd {
	gather := m.Gather
	return func() tea.Msg {
		snap, err := gather(context.Background())
		msg := snapshotMsg{err: err}
		if snap != nil {
			msg.fields = snap.Fields()
		}
		return msg
	}
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.Keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.Keys.Refresh):
			if m.Gathering {
				return m, nil
			}
			m.Gathering = true
			return m, m.gatherCmd()
		}
		return m, nil

	case snapshotMsg:
		m.Gathering = false
		m.GatherErr = msg.err
		if len(msg.fields) > 0 {
			// Partial snapshots update what they carry; everything else
			// keeps its last known value.
			for k, v := range msg.fields {
				m.Fields[k] = v
			}
			m.LastUpdate = time.Now()
		}
		return m, tea.Tick(m.Interval, func(t time.Time) tea.Msg {
			return refreshTickMsg(t)
		})

	case refreshTickMsg:
		if m.Gathering {
			return m, nil
		}
		m.Gathering = true
		return m, m.gatherCmd()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View renders the dashboard.
func (m Model) View() string {
	header := BuildHeaderContent(m.Device)

	var status string
	switch {
	case m.Gathering || m.LastUpdate.IsZero():
		status = m.Spinner.View() + " gathering data..."
	case m.GatherErr != nil:
		status = ErrorStyle.Render("⚠ last cycle incomplete: "+m.GatherErr.Error()) +
			HelpStyle.Render(fmt.Sprintf("  (updated %s)", m.LastUpdate.Format("15:04:05")))
	default:
		status = HelpStyle.Render("updated " + m.LastUpdate.Format("15:04:05"))
	}

	sections := []string{
		m.chemistrySection(),
		m.systemSection(),
		m.temperatureSection(),
	}
	top := lipgloss.JoinHorizontal(lipgloss.Top, sections...)

	extras := []string{}
	if sec := m.heaterSection(); sec != "" {
		extras = append(extras, sec)
	}
	if sec := m.solarSection(); sec != "" {
		extras = append(extras, sec)
	}
	if sec := m.statisticsSection(); sec != "" {
		extras = append(extras, sec)
	}

	parts := []string{header, status, top}
	if len(extras) > 0 {
		parts = append(parts, lipgloss.JoinHorizontal(lipgloss.Top, extras...))
	}
	parts = append(parts, HelpStyle.Render("r refresh • q quit"))

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// row renders one "label: value" line if the field is present.
func (m Model) row(rows []string, label, field string) []string {
	v, ok := m.Fields[field]
	if !ok {
		return rows
	}
	return append(rows, LabelStyle.Render(label)+ValueStyle.Render(renderValue(v)))
}

func (m Model) chemistrySection() string {
	var rows []string
	rows = m.row(rows, "pH", "PhMeasurement")
	rows = m.row(rows, "pH setpoint", "PhControlSetpoint")
	rows = m.row(rows, "ORP", "ORPMeasurement")
	rows = m.row(rows, "ORP setpoint", "OrpControlSetpoint")
	rows = m.row(rows, "ORP setpoint", "ChlorineControlSetpoint")
	rows = m.row(rows, "Chlorine", "ChlorineStatus")
	rows = m.row(rows, "Chlorine", "ChlorineControlStatus")
	rows = m.row(rows, "Acid dosing inhibit", "AcidDosingInhibitStatus")
	if len(rows) == 0 {
		rows = append(rows, HelpStyle.Render("no data"))
	}
	return RenderSection("Chemistry", rows)
}

func (m Model) systemSection() string {
	var rows []string
	rows = m.row(rows, "Mode", "Mode")
	rows = m.row(rows, "Pump speed", "PumpSpeed")
	rows = m.row(rows, "Cell level", "RealCellLevel")
	rows = m.row(rows, "Cell running", "IsCellRunning")
	rows = m.row(rows, "Cell running", "CellIsOperating")
	rows = m.row(rows, "Pump running", "PumpIsOperating")
	rows = m.row(rows, "Display", "MainText")
	rows = m.row(rows, "Error", "ErrorInfo")
	rows = m.row(rows, "Info", "InfoMessage")
	if len(rows) == 0 {
		rows = append(rows, HelpStyle.Render("no data"))
	}
	return RenderSection("System", rows)
}

func (m Model) temperatureSection() string {
	var rows []string
	rows = m.row(rows, "Water", "WaterTemp")
	rows = m.row(rows, "Solar roof", "SolarRoof")
	rows = m.row(rows, "Heater water", "HeaterWaterTemp")
	if len(rows) == 0 {
		rows = append(rows, HelpStyle.Render("no data"))
	}
	return RenderSection("Temperatures", rows)
}

func (m Model) heaterSection() string {
	if _, ok := m.Fields["HeaterMode"]; !ok {
		return ""
	}
	var rows []string
	rows = m.row(rows, "Mode", "HeaterMode")
	rows = m.row(rows, "On", "HeaterOn")
	rows = m.row(rows, "Setpoint", "HeaterSetpoint")
	return RenderSection("Heater", rows)
}

func (m Model) solarSection() string {
	if _, ok := m.Fields["RoofTemp"]; !ok {
		return ""
	}
	var rows []string
	rows = m.row(rows, "Mode", "Mode")
	rows = m.row(rows, "Roof", "RoofTemp")
	rows = m.row(rows, "Pump", "PumpOn")
	return RenderSection("Solar", rows)
}

func (m Model) statisticsSection() string {
	var rows []string
	rows = m.row(rows, "Cell runtime", "CellRunningTime")
	rows = m.row(rows, "Reversals", "CellReversalCount")
	rows = m.row(rows, "Highest pH", "HighestPhMeasured")
	rows = m.row(rows, "Lowest pH", "LowestPhMeasured")
	rows = m.row(rows, "Highest ORP", "HighestOrpMeasured")
	if len(rows) == 0 {
		return ""
	}
	return RenderSection("Statistics", rows)
}

// renderValue formats a snapshot value for display.
func renderValue(v any) string {
	switch v := v.(type) {
	case bool:
		if v {
			return OkStyle.Render("yes")
		}
		return "no"
	case float64:
		return fmt.Sprintf("%.1f", v)
	case time.Duration:
		return v.String()
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// Run starts the dashboard program and blocks until the user quits.
func Run(device string, gather GatherFunc, interval time.Duration) error {
	program := tea.NewProgram(NewModel(device, gather, interval), tea.WithAltScreen())
	_, err := program.Run()
	return err
}

package tui

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/renewsim/internal/experiment"
	"github.com/san-kum/renewsim/internal/metrics"
	"github.com/san-kum/renewsim/internal/projection"
	"github.com/san-kum/renewsim/internal/viz"
)

const (
	allScenarios  = "all scenarios"
	progressWidth = 10
)

type state int

const (
	stateMenu state = iota
	stateConfig
	stateResult
)

type model struct {
	state state

	runner     *experiment.Runner
	target     metrics.Target
	maxHorizon int

	cursor int
	items  []string
	names  map[string]string
	colors map[string]string

	params      map[string]float64
	paramNames  []string
	paramCursor int
	editing     bool
	editBuf     string

	running   bool
	results   []*projection.Result
	summaries []metrics.Summary
	failures  []experiment.Outcome
	err       error

	width  int
	height int
}

// NewApp builds the scenario browser. Parameters start at ic and endYear
// and may be edited before each projection.
func NewApp(runner *experiment.Runner, ic experiment.InitialConditions, endYear, maxHorizon int, target metrics.Target) *model {
	reg := runner.Registry()
	m := &model{
		state:      stateMenu,
		runner:     runner,
		target:     target,
		maxHorizon: maxHorizon,
		items:      append([]string{allScenarios}, reg.IDs()...),
		names:      make(map[string]string),
		colors:     make(map[string]string),
		params: map[string]float64{
			"end_year":           float64(endYear),
			"renewable_capacity": ic.RenewableCapacity,
			"investment":         ic.Investment,
			"infrastructure":     ic.Infrastructure,
			"total_capacity":     ic.TotalCapacity,
		},
		paramNames: []string{"end_year", "renewable_capacity", "investment", "infrastructure", "total_capacity"},
		width:      80,
		height:     24,
	}
	for _, sc := range reg.All() {
		m.names[sc.ID] = sc.DisplayName()
		m.colors[sc.ID] = sc.Color
	}
	return m
}

func Run(m *model) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

func (m model) Init() tea.Cmd { return nil }

type projectedMsg struct {
	results  []*projection.Result
	failures []experiment.Outcome
	err      error
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case projectedMsg:
		m.running = false
		m.err = msg.err
		m.results = msg.results
		m.failures = msg.failures
		m.summaries = metrics.Compare(msg.results, m.target)
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch m.state {
	case stateMenu:
		return m.menuKey(msg)
	case stateConfig:
		return m.configKey(msg)
	case stateResult:
		return m.resultKey(msg)
	}
	return m, nil
}

func (m model) menuKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}
	case "enter", " ":
		m.state = stateConfig
		m.paramCursor = 0
	}
	return m, nil
}

func (m model) configKey(msg tea.KeyMsg) (model, tea.Cmd) {
	if m.editing {
		switch msg.String() {
		case "enter":
			if v, err := strconv.ParseFloat(m.editBuf, 64); err == nil {
				m.params[m.paramNames[m.paramCursor]] = v
			}
			m.editing = false
			m.editBuf = ""
		case "esc":
			m.editing = false
			m.editBuf = ""
		case "backspace":
			if len(m.editBuf) > 0 {
				m.editBuf = m.editBuf[:len(m.editBuf)-1]
			}
		default:
			if s := msg.String(); len(s) == 1 {
				c := s[0]
				if (c >= '0' && c <= '9') || c == '.' || c == '-' || c == 'e' {
					m.editBuf += s
				}
			}
		}
		return m, nil
	}

	switch msg.String() {
	case "q", "esc":
		m.state = stateMenu
	case "up", "k":
		if m.paramCursor > 0 {
			m.paramCursor--
		}
	case "down", "j":
		if m.paramCursor < len(m.paramNames)-1 {
			m.paramCursor++
		}
	case "enter", " ":
		m.editing = true
		m.editBuf = strconv.FormatFloat(m.params[m.paramNames[m.paramCursor]], 'f', -1, 64)
	case "left", "h":
		m.nudge(-1)
	case "right", "l":
		m.nudge(1)
	case "s":
		m.state = stateResult
		m.running = true
		m.results, m.summaries, m.failures, m.err = nil, nil, nil, nil
		return m, m.project()
	}
	return m, nil
}

func (m model) resultKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		m.state = stateMenu
	case "c":
		m.state = stateConfig
	case "r":
		m.running = true
		return m, m.project()
	}
	return m, nil
}

// nudge moves the end year by one and any other parameter by 5%.
func (m *model) nudge(dir float64) {
	name := m.paramNames[m.paramCursor]
	if name == "end_year" {
		m.params[name] += dir
		return
	}
	v := m.params[name]
	step := math.Abs(v) * 0.05
	if step == 0 {
		step = 1
	}
	m.params[name] = v + dir*step
}

func (m model) selected() string { return m.items[m.cursor] }

func (m model) conditions() (experiment.InitialConditions, int) {
	return experiment.InitialConditions{
		RenewableCapacity: m.params["renewable_capacity"],
		Investment:        m.params["investment"],
		Infrastructure:    m.params["infrastructure"],
		TotalCapacity:     m.params["total_capacity"],
	}, int(m.params["end_year"])
}

// project runs the selected scenario, or all of them, off the UI loop.
func (m model) project() tea.Cmd {
	ic, endYear := m.conditions()
	runner, id := m.runner, m.selected()
	start, horizon := runner.StartYear(), m.maxHorizon

	return func() tea.Msg {
		if horizon > 0 && endYear > start+horizon {
			return projectedMsg{err: fmt.Errorf("%w: end year %d beyond %d",
				experiment.ErrInvalidHorizon, endYear, start+horizon)}
		}
		ctx := context.Background()
		if id == allScenarios {
			batch, err := runner.RunAll(ctx, ic, endYear)
			if batch == nil {
				return projectedMsg{err: err}
			}
			return projectedMsg{results: batch.Results(), failures: batch.Failures(), err: err}
		}
		res, err := runner.RunOne(ctx, id, ic, endYear)
		if err != nil {
			return projectedMsg{err: err}
		}
		return projectedMsg{results: []*projection.Result{res}}
	}
}

func (m model) View() string {
	var b strings.Builder
	b.WriteString(viz.Title.Render("renewsim") + viz.Subtle.Render("  renewable share scenarios") + "\n\n")

	switch m.state {
	case stateMenu:
		m.viewMenu(&b)
	case stateConfig:
		m.viewConfig(&b)
	case stateResult:
		m.viewResult(&b)
	}
	return b.String()
}

func (m model) label(id string) string {
	if id == allScenarios {
		return id
	}
	return viz.ScenarioStyle(m.colors[id]).Render(m.names[id])
}

func (m model) viewMenu(b *strings.Builder) {
	for i, id := range m.items {
		cursor := "  "
		if i == m.cursor {
			cursor = viz.Selected.Render("▸ ")
		}
		b.WriteString(cursor + m.label(id) + "\n")
	}
	b.WriteString("\n" + viz.KeyHint.Render("↑/↓ select · enter configure · q quit") + "\n")
}

func (m model) viewConfig(b *strings.Builder) {
	b.WriteString(viz.MetricLabel.Render("scenario: ") + m.label(m.selected()) + "\n\n")
	for i, name := range m.paramNames {
		cursor := "  "
		if i == m.paramCursor {
			cursor = viz.Selected.Render("▸ ")
		}
		val := strconv.FormatFloat(m.params[name], 'f', -1, 64)
		if m.editing && i == m.paramCursor {
			val = m.editBuf + "_"
		}
		fmt.Fprintf(b, "%s%-20s %s\n", cursor, viz.MetricLabel.Render(name), viz.MetricValue.Render(val))
	}
	b.WriteString("\n" + viz.KeyHint.Render("enter edit · ←/→ adjust · s project · esc back") + "\n")
}

func (m model) viewResult(b *strings.Builder) {
	if m.running {
		b.WriteString(viz.Subtle.Render("projecting...") + "\n")
		return
	}
	if m.err != nil {
		b.WriteString(viz.Bad.Render("error: ") + m.err.Error() + "\n")
	}

	if len(m.results) > 0 {
		opts := viz.DefaultChartOptions()
		opts.Width = max(m.width-12, 20)
		opts.Height = max(min(m.height-14-len(m.results), 14), 5)
		opts.Caption = "renewable share (%)"
		opts.Target = m.target.Share
		chart, err := viz.Plot(viz.ShareSeries(m.results, m.names, m.colors), opts)
		if err != nil {
			b.WriteString(viz.Bad.Render(err.Error()) + "\n")
		} else {
			b.WriteString(chart + "\n\n")
		}

		fmt.Fprintf(b, "%-24s %10s %10s %10s %8s  %s\n",
			"scenario", fmt.Sprintf("share %d", m.target.MilestoneYear), "final", "capacity", "target", "progress")
		for _, s := range m.summaries {
			fmt.Fprintf(b, "%-24s %10s %10s %10s %8s  %s\n",
				m.names[s.Scenario], pct(s.ShareAtMilestone), pct(s.FinalShare), mw(s.FinalCapacity),
				viz.YesNo(s.TargetReachedFinal), m.targetBar(s.FinalShare))
		}
	}
	for _, f := range m.failures {
		b.WriteString(viz.Bad.Render("skipped ") + f.Scenario + ": " + f.Err.Error() + "\n")
	}
	b.WriteString("\n" + viz.KeyHint.Render("r rerun · c configure · esc menu") + "\n")
}

func pct(f projection.Float) string {
	if !f.Valid() {
		return "n/a"
	}
	return fmt.Sprintf("%.2f%%", float64(f))
}

func mw(f projection.Float) string {
	if !f.Valid() {
		return "n/a"
	}
	return fmt.Sprintf("%.0f", float64(f))
}

// targetBar shows a share as progress toward the target share.
func (m model) targetBar(share projection.Float) string {
	if !share.Valid() || m.target.Share <= 0 {
		return ""
	}
	return viz.ProgressBar(float64(share)/m.target.Share, progressWidth)
}

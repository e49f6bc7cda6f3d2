package tui

import (
	"errors"
	"math"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/renewsim/internal/experiment"
	"github.com/san-kum/renewsim/internal/metrics"
	"github.com/san-kum/renewsim/internal/projection"
	"github.com/san-kum/renewsim/internal/scenario"
)

func newTestApp(t *testing.T) model {
	t.Helper()
	runner, err := experiment.NewRunner(scenario.Default(), 2023, experiment.WithIntegrator("rk4"))
	if err != nil {
		t.Fatal(err)
	}
	ic := experiment.InitialConditions{RenewableCapacity: 26200, Investment: 2.9, Infrastructure: 50, TotalCapacity: 95400}
	return *NewApp(runner, ic, 2030, 27, metrics.Target{Share: 23, MilestoneYear: 2025})
}

func press(t *testing.T, m model, keys ...tea.KeyMsg) (model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		var next tea.Model
		next, cmd = m.Update(k)
		m = next.(model)
	}
	return m, cmd
}

func key(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

var (
	down  = tea.KeyMsg{Type: tea.KeyDown}
	enter = tea.KeyMsg{Type: tea.KeyEnter}
)

func TestMenuListsScenarios(t *testing.T) {
	m := newTestApp(t)

	if len(m.items) != 5 || m.items[0] != allScenarios {
		t.Fatalf("items = %v", m.items)
	}
	view := m.View()
	for _, name := range []string{"Business as Usual", "Combined Policy", allScenarios} {
		if !strings.Contains(view, name) {
			t.Errorf("menu missing %q", name)
		}
	}
}

func TestProjectAllScenarios(t *testing.T) {
	m := newTestApp(t)

	m, _ = press(t, m, enter)
	if m.state != stateConfig {
		t.Fatalf("state = %v, want config", m.state)
	}

	m, cmd := press(t, m, key("s"))
	if cmd == nil || !m.running {
		t.Fatal("expected projection command")
	}

	next, _ := m.Update(cmd())
	m = next.(model)
	if m.err != nil {
		t.Fatal(m.err)
	}
	if len(m.results) != 4 || len(m.summaries) != 4 {
		t.Fatalf("results = %d, summaries = %d", len(m.results), len(m.summaries))
	}
	if got := m.results[0].Last().Year; got != 2030 {
		t.Errorf("last year = %d, want 2030", got)
	}
	if view := m.View(); !strings.Contains(view, "renewable share") {
		t.Errorf("result view missing chart:\n%s", view)
	}
}

func TestProjectSingleScenarioAfterEdit(t *testing.T) {
	m := newTestApp(t)

	m, _ = press(t, m, down, down, enter)
	if got := m.selected(); got != scenario.InvestmentIncentive {
		t.Fatalf("selected = %s", got)
	}

	// Edit end year to 2026.
	m, _ = press(t, m, enter)
	m.editBuf = ""
	m, _ = press(t, m, key("2"), key("0"), key("2"), key("6"), enter)
	if got := m.params["end_year"]; got != 2026 {
		t.Fatalf("end_year = %v", got)
	}

	m, cmd := press(t, m, key("s"))
	next, _ := m.Update(cmd())
	m = next.(model)

	if m.err != nil {
		t.Fatal(m.err)
	}
	if len(m.results) != 1 || m.results[0].Scenario != scenario.InvestmentIncentive {
		t.Fatalf("unexpected results %+v", m.results)
	}
	if got := m.results[0].Len(); got != 4 {
		t.Errorf("rows = %d, want 4", got)
	}
}

func TestProjectRejectsHorizonBeyondLimit(t *testing.T) {
	m := newTestApp(t)
	m.params["end_year"] = 2100

	msg := m.project()().(projectedMsg)
	if !errors.Is(msg.err, experiment.ErrInvalidHorizon) {
		t.Errorf("err = %v, want ErrInvalidHorizon", msg.err)
	}
}

func TestNudge(t *testing.T) {
	m := newTestApp(t)
	m.state = stateConfig

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyRight})
	if got := m.params["end_year"]; got != 2031 {
		t.Errorf("end_year = %v, want 2031", got)
	}

	m, _ = press(t, m, down, tea.KeyMsg{Type: tea.KeyLeft})
	if got := m.params["renewable_capacity"]; math.Abs(got-24890) > 1e-9 {
		t.Errorf("capacity = %v, want 24890", got)
	}
}

func TestQuit(t *testing.T) {
	m := newTestApp(t)
	_, cmd := press(t, m, key("q"))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}

func TestResultViewShowsTargetProgress(t *testing.T) {
	m := newTestApp(t)
	m.state = stateResult

	half := &projection.Result{Scenario: "business_as_usual", Rows: []projection.Row{
		{Year: 2023, RenewableCapacity: 26200, TotalCapacity: 95400, RenewableShare: 12, Scenario: "business_as_usual"},
		{Year: 2024, RenewableCapacity: 26200, TotalCapacity: 95400, RenewableShare: 11.5, Scenario: "business_as_usual"},
	}}
	full := &projection.Result{Scenario: "combined_policy", Rows: []projection.Row{
		{Year: 2023, RenewableCapacity: 26200, TotalCapacity: 95400, RenewableShare: 22, Scenario: "combined_policy"},
		{Year: 2024, RenewableCapacity: 26200, TotalCapacity: 95400, RenewableShare: 23, Scenario: "combined_policy"},
	}}
	next, _ := m.Update(projectedMsg{results: []*projection.Result{half, full}})
	m = next.(model)

	view := m.View()
	if !strings.Contains(view, "progress") {
		t.Errorf("result view missing progress column:\n%s", view)
	}
	if !strings.Contains(view, "█████░░░░░") {
		t.Errorf("half-way scenario should show a half bar:\n%s", view)
	}
	if !strings.Contains(view, "██████████") {
		t.Errorf("scenario at target should show a full bar:\n%s", view)
	}

	if got := m.targetBar(projection.Float(math.NaN())); got != "" {
		t.Errorf("non-finite share bar = %q, want empty", got)
	}
}

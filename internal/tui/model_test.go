package tui

import (
	"context"
	"fmt"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rgehrsitz/inss-calc/internal/calculation"
	"github.com/rgehrsitz/inss-calc/internal/domain"
	"github.com/rgehrsitz/inss-calc/internal/ingest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestModel(t *testing.T, amounts ...string) Model {
	t.Helper()
	var b strings.Builder
	for i, a := range amounts {
		fmt.Fprintf(&b, "%d,%02d/2010,%s,2010\n", i+1, i%12+1, a)
	}
	batch, err := ingest.ParseString(b.String(), domain.SourceConfig{
		Name: "cnis", Format: domain.FormatDelimited, Layout: domain.LayoutHistory,
		Header: new(bool), Origin: domain.PrimaryHistory,
	})
	require.NoError(t, err)

	engine := calculation.NewEngine()
	pc := calculation.PipelineContext{
		Options:    domain.DefaultPipelineOptions(),
		Parameters: domain.DefaultPensionParameters(),
	}
	report, err := engine.Run(context.Background(), pc, []ingest.Batch{batch})
	require.NoError(t, err)
	return NewModel(engine, report)
}

func press(t *testing.T, m Model, keys ...tea.KeyMsg) (Model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		var next tea.Model
		next, cmd = m.Update(k)
		m = next.(Model)
	}
	return m, cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var (
	keyRight = tea.KeyMsg{Type: tea.KeyRight}
	keyLeft  = tea.KeyMsg{Type: tea.KeyLeft}
	keyDown  = tea.KeyMsg{Type: tea.KeyDown}
	keyUp    = tea.KeyMsg{Type: tea.KeyUp}
)

func TestNewModel(t *testing.T) {
	m := newTestModel(t, "100", "90", "80", "70", "60", "50", "40", "30", "20", "10")

	assert.Equal(t, SliderContribution, m.Focused())
	assert.Equal(t, domain.StatusOK, m.Result().Status)
	assert.Equal(t, "0.9282", m.Result().Factor.String())
	assert.True(t, m.Parameters().ContributionYears.Equal(domain.DefaultPensionParameters().ContributionYears))
	assert.Nil(t, m.Init())
}

func TestAdjustRecalculates(t *testing.T) {
	m := newTestModel(t, "100", "90", "80", "70", "60", "50", "40", "30", "20", "10")
	before := m.Result()

	m, _ = press(t, m, keyRight)
	assert.Equal(t, "38.5", m.Parameters().ContributionYears.String())
	assert.True(t, m.Result().Factor.GreaterThan(before.Factor))
	assert.True(t, m.Result().AverageTopSelection.Equal(before.AverageTopSelection))

	m, _ = press(t, m, keyLeft, keyLeft)
	assert.Equal(t, "37.5", m.Parameters().ContributionYears.String())
	assert.True(t, m.Result().Factor.LessThan(before.Factor))
}

func TestNavigation(t *testing.T) {
	m := newTestModel(t, "100", "90")

	m, _ = press(t, m, keyDown, keyDown)
	assert.Equal(t, SliderAge, m.Focused())

	m, _ = press(t, m, runes("+"))
	assert.Equal(t, "61", m.Parameters().Age.String())

	m, _ = press(t, m, keyDown, keyDown)
	assert.Equal(t, SliderContribution, m.Focused(), "focus wraps around")

	m, _ = press(t, m, keyUp)
	assert.Equal(t, SliderAliquot, m.Focused())
}

func TestSliderBounds(t *testing.T) {
	m := newTestModel(t, "100", "90")
	m, _ = press(t, m, keyUp) // aliquot, 0.31 in steps of 0.01

	for i := 0; i < 100; i++ {
		m, _ = press(t, m, keyRight)
	}
	assert.Equal(t, "1", m.Parameters().Aliquot.String())

	m, _ = press(t, m, keyDown, keyDown) // survival expectancy
	for i := 0; i < 500; i++ {
		m, _ = press(t, m, keyLeft)
	}
	assert.True(t, m.Parameters().SurvivalExpectancy.GreaterThanOrEqual(m.sliders[SliderSurvival].Min))
	assert.NoError(t, m.Err(), "survival expectancy never reaches zero")
}

func TestReset(t *testing.T) {
	m := newTestModel(t, "100", "90", "80", "70", "60", "50", "40", "30", "20", "10")
	initial := m.Result()

	m, _ = press(t, m, keyRight, keyRight, keyDown, keyLeft)
	require.False(t, m.Result().Factor.Equal(initial.Factor))

	m, _ = press(t, m, runes("r"))
	assert.Equal(t, fmt.Sprint(domain.DefaultPensionParameters()), fmt.Sprint(m.Parameters()))
	assert.True(t, m.Result().Factor.Equal(initial.Factor))
}

func TestQuit(t *testing.T) {
	m := newTestModel(t, "100", "90")

	for _, k := range []tea.KeyMsg{runes("q"), {Type: tea.KeyCtrlC}} {
		_, cmd := press(t, m, k)
		require.NotNil(t, cmd)
		assert.IsType(t, tea.QuitMsg{}, cmd())
	}
}

func TestView(t *testing.T) {
	m := newTestModel(t, "100", "90", "80", "70", "60", "50", "40", "30", "20", "10")
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	m = next.(Model)

	view := m.View()
	for _, s := range []string{"INSS Benefit Simulator", "Contribution time (Tc)", "Survival expectancy (Es)", "Age (Id)", "Aliquot (a)", "Factor", "Benefit", "0.9282"} {
		assert.Contains(t, view, s)
	}

	m, _ = press(t, m, runes("?"))
	assert.Contains(t, m.View(), "next parameter")
}

func TestView_InsufficientData(t *testing.T) {
	m := newTestModel(t, "100")
	assert.Equal(t, domain.StatusInsufficientData, m.Result().Status)
	assert.Contains(t, m.View(), "Insufficient data")
}

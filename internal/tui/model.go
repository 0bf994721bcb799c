// Package tui is an interactive simulator: it re-evaluates a finished run
// while the user adjusts the pension parameters.
package tui

import (
	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rgehrsitz/inss-calc/internal/calculation"
	"github.com/rgehrsitz/inss-calc/internal/domain"
	"github.com/rgehrsitz/inss-calc/internal/tui/components"
	"github.com/shopspring/decimal"
)

// Slider positions
const (
	SliderContribution = iota
	SliderSurvival
	SliderAge
	SliderAliquot
)

// Model is the simulator state
type Model struct {
	engine *calculation.Engine
	report *calculation.Report

	defaults domain.PensionParameters
	sliders  []*components.ParameterSlider
	focused  int

	baseline domain.BenefitResult
	result   domain.BenefitResult
	err      error

	keys keyMap
	help help.Model

	width  int
	height int
}

// NewModel builds a simulator over a finished run, starting from the
// parameters the run used
func NewModel(engine *calculation.Engine, report *calculation.Report) Model {
	params := report.Context.Parameters
	m := Model{
		engine:   engine,
		report:   report,
		defaults: params,
		sliders:  newSliders(params),
		keys:     defaultKeyMap(),
		help:     help.New(),
		width:    80,
		height:   24,
	}
	m.sliders[0].SetFocused(true)
	m.recalculate()
	m.baseline = m.result
	return m
}

func newSliders(p domain.PensionParameters) []*components.ParameterSlider {
	d := decimal.RequireFromString
	return []*components.ParameterSlider{
		SliderContribution: components.NewParameterSlider("Contribution time (Tc)", p.ContributionYears, d("0"), d("50"), d("0.5")).
			WithPlaces(1).WithUnit(" years").
			WithDescription("Years of contribution at retirement"),
		SliderSurvival: components.NewParameterSlider("Survival expectancy (Es)", p.SurvivalExpectancy, d("1"), d("40"), d("0.1")).
			WithPlaces(1).WithUnit(" years").
			WithDescription("Expected years of life at the retirement age"),
		SliderAge: components.NewParameterSlider("Age (Id)", p.Age, d("40"), d("80"), d("1")).
			WithPlaces(0).WithUnit(" years").
			WithDescription("Age at retirement"),
		SliderAliquot: components.NewParameterSlider("Aliquot (a)", p.Aliquot, d("0"), d("1"), d("0.01")).
			WithPlaces(2).
			WithDescription("Contribution aliquot"),
	}
}

// Parameters returns the values currently on the sliders
func (m Model) Parameters() domain.PensionParameters {
	return domain.PensionParameters{
		ContributionYears:  m.sliders[SliderContribution].Value,
		SurvivalExpectancy: m.sliders[SliderSurvival].Value,
		Age:                m.sliders[SliderAge].Value,
		Aliquot:            m.sliders[SliderAliquot].Value,
	}
}

// Result returns the latest evaluation
func (m Model) Result() domain.BenefitResult {
	return m.result
}

// Err returns the error of the latest evaluation, if any
func (m Model) Err() error {
	return m.err
}

// Focused returns the focused slider position
func (m Model) Focused() int {
	return m.focused
}

func (m *Model) recalculate() {
	result, err := m.engine.Simulate(m.report, m.Parameters())
	m.err = err
	if err == nil {
		m.result = result
	}
}

func (m *Model) focus(i int) {
	m.sliders[m.focused].SetFocused(false)
	m.focused = (i + len(m.sliders)) % len(m.sliders)
	m.sliders[m.focused].SetFocused(true)
}

func (m *Model) reset() {
	p := m.defaults
	m.sliders[SliderContribution].SetValue(p.ContributionYears)
	m.sliders[SliderSurvival].SetValue(p.SurvivalExpectancy)
	m.sliders[SliderAge].SetValue(p.Age)
	m.sliders[SliderAliquot].SetValue(p.Aliquot)
	m.recalculate()
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return nil
}

// Run starts the simulator and blocks until the user quits
func Run(engine *calculation.Engine, report *calculation.Report) error {
	_, err := tea.NewProgram(NewModel(engine, report), tea.WithAltScreen()).Run()
	return err
}

package tui

import (
	"strings"

	"github.com/rgehrsitz/inss-calc/internal/domain"
	"github.com/rgehrsitz/inss-calc/internal/output"
	"github.com/rgehrsitz/inss-calc/internal/tui/components"
)

// View renders the simulator
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("INSS Benefit Simulator"))
	b.WriteString("\n")
	b.WriteString(SubtitleStyle.Render("Run " + m.report.RunID))
	b.WriteString("\n\n")

	for _, s := range m.sliders {
		b.WriteString(s.Render())
		b.WriteString("\n\n")
	}

	b.WriteString(m.renderResult())
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString(ErrorStyle.Render("Error: " + m.err.Error()))
		b.WriteString("\n")
	}
	for _, w := range m.result.Warnings {
		b.WriteString(WarningStyle.Render("! " + w))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))

	return AppStyle.Render(b.String())
}

func (m Model) renderResult() string {
	if m.result.Status == domain.StatusInsufficientData {
		return MetricLabelStyle.Render("Insufficient data: no salary records to average")
	}

	factorDelta := m.result.Factor.Sub(m.baseline.Factor)
	benefitDelta := m.result.FinalBenefit.Sub(m.baseline.FinalBenefit)

	return components.MetricRow(
		components.NewMetricCard("Average", output.FormatCurrency(m.result.AverageTopSelection)),
		components.NewMetricCard("Factor", m.result.Factor.StringFixed(4)).
			WithDelta(factorDelta, factorDelta.Abs().StringFixed(4)),
		components.NewMetricCard("Benefit", output.FormatCurrency(m.result.FinalBenefit)).
			WithDelta(benefitDelta, output.FormatCurrency(benefitDelta.Abs())),
	)
}

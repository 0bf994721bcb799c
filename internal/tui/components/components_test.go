package components

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestParameterSlider_Steps(t *testing.T) {
	s := NewParameterSlider("Age", d("79"), d("40"), d("80"), d("1"))

	if !s.Increment() || s.Value.String() != "80" {
		t.Fatalf("Expected 80, got %s", s.Value)
	}
	if s.Increment() {
		t.Error("Expected increment past max to be refused")
	}

	s.SetValue(d("10"))
	if s.Value.String() != "40" {
		t.Errorf("Expected clamp to 40, got %s", s.Value)
	}
	if s.Decrement() {
		t.Error("Expected decrement past min to be refused")
	}
}

func TestParameterSlider_RangeIncludesValue(t *testing.T) {
	s := NewParameterSlider("Tc", d("55"), d("0"), d("50"), d("0.5"))
	if !s.Max.Equal(d("55")) {
		t.Errorf("Expected max widened to 55, got %s", s.Max)
	}
	if s.Percentage() != 1 {
		t.Errorf("Expected percentage 1, got %f", s.Percentage())
	}
}

func TestParameterSlider_Render(t *testing.T) {
	s := NewParameterSlider("Aliquot (a)", d("0.31"), d("0"), d("1"), d("0.01")).
		WithPlaces(2).
		WithDescription("Contribution aliquot")

	out := s.Render()
	for _, want := range []string{"Aliquot (a)", "0.31", "0.00 ─ 1.00", "●"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected render to contain %q\n%s", want, out)
		}
	}
	if strings.Contains(out, "Contribution aliquot") {
		t.Error("Description is shown only when focused")
	}

	s.SetFocused(true)
	if !strings.Contains(s.Render(), "Contribution aliquot") {
		t.Error("Expected description when focused")
	}
}

func TestMetricCard(t *testing.T) {
	card := NewMetricCard("Benefit", "R$ 58,01").WithDelta(d("-1.5"), "R$ 1,50")
	if card.Trend == nil || card.Trend.IsPositive {
		t.Fatalf("Expected negative trend, got %+v", card.Trend)
	}
	out := card.Render()
	if !strings.Contains(out, "R$ 58,01") || !strings.Contains(out, "↓ R$ 1,50") {
		t.Errorf("Unexpected card\n%s", out)
	}

	if NewMetricCard("Factor", "1").WithDelta(decimal.Zero, "0").Trend != nil {
		t.Error("Expected no trend for zero delta")
	}

	row := MetricRow(NewMetricCard("A", "1"), NewMetricCard("B", "2"))
	if !strings.Contains(row, "A") || !strings.Contains(row, "B") {
		t.Errorf("Unexpected row\n%s", row)
	}
}

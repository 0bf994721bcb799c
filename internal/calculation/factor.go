package calculation

import (
	"github.com/rgehrsitz/inss-calc/internal/domain"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// PensionFactor computes round((Tc*a/Es) * (1 + (Id + Tc*a)/100), 4).
// It returns a *domain.ParameterError for Es == 0 or negative inputs.
func PensionFactor(p domain.PensionParameters) (decimal.Decimal, error) {
	if err := p.Validate(); err != nil {
		return decimal.Zero, err
	}

	tca := p.ContributionYears.Mul(p.Aliquot)
	base := tca.Div(p.SurvivalExpectancy)
	bonus := decimal.NewFromInt(1).Add(p.Age.Add(tca).Div(hundred))
	return base.Mul(bonus).Round(4), nil
}

package compare

import (
	"context"
	"fmt"

	"github.com/rgehrsitz/inss-calc/internal/calculation"
	"github.com/rgehrsitz/inss-calc/internal/transform"
)

// BaseScenarioName labels the configured parameters in a comparison
const BaseScenarioName = "base"

// CompareEngine orchestrates simulation comparison
type CompareEngine struct {
	CalcEngine        *calculation.Engine
	MetricsCalculator *MetricsCalculator
	TemplateRegistry  *transform.TemplateRegistry
	TransformRegistry *transform.TransformRegistry
}

// NewCompareEngine creates a new comparison engine
func NewCompareEngine(calcEngine *calculation.Engine) *CompareEngine {
	return &CompareEngine{
		CalcEngine:        calcEngine,
		MetricsCalculator: NewMetricsCalculator(),
		TemplateRegistry:  transform.CreateBuiltInTemplates(),
		TransformRegistry: transform.NewTransformRegistry(),
	}
}

// CompareOptions configures comparison behavior
type CompareOptions struct {
	Templates  []string // Template names to evaluate against base
	Transforms []string // Transform specs, each evaluated as its own alternative
}

// Compare evaluates the report's parameters and every requested alternative
func (ce *CompareEngine) Compare(
	ctx context.Context,
	report *calculation.Report,
	options CompareOptions,
) (*ComparisonSet, error) {
	if report == nil {
		return nil, fmt.Errorf("no report to compare")
	}

	base := report.Context.Parameters
	baseEval, err := ce.CalcEngine.Simulate(report, base)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate base scenario: %w", err)
	}
	baseResult := ce.MetricsCalculator.CalculateMetrics(BaseScenarioName, baseEval)
	baseResult.Description = "Configured parameters"

	alternatives := []ComparisonResult{}
	evaluate := func(name, description string, transforms []transform.ParameterTransform) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		params, err := transform.ApplyTransforms(base, transforms)
		if err != nil {
			return fmt.Errorf("failed to apply %s: %w", name, err)
		}
		eval, err := ce.CalcEngine.Simulate(report, params)
		if err != nil {
			return fmt.Errorf("failed to calculate scenario %s: %w", name, err)
		}
		alt := ce.MetricsCalculator.CalculateMetrics(name, eval)
		alt.Description = description
		alternatives = append(alternatives, ce.MetricsCalculator.CalculateComparison(alt, baseResult))
		return nil
	}

	for _, templateName := range options.Templates {
		template, ok := ce.TemplateRegistry.Get(templateName)
		if !ok {
			return nil, fmt.Errorf("template %s not found", templateName)
		}
		if err := evaluate(template.Name, template.Description, template.Transforms); err != nil {
			return nil, err
		}
	}

	for _, spec := range options.Transforms {
		t, err := ce.TransformRegistry.ParseTransformSpec(spec)
		if err != nil {
			return nil, fmt.Errorf("invalid transform %q: %w", spec, err)
		}
		if err := evaluate(spec, t.Description(), []transform.ParameterTransform{t}); err != nil {
			return nil, err
		}
	}

	compSet := &ComparisonSet{
		RunID:              report.RunID,
		BaseScenarioName:   BaseScenarioName,
		BaseResult:         &baseResult,
		AlternativeResults: alternatives,
	}
	compSet.Recommendations = GenerateRecommendations(compSet)

	return compSet, nil
}

package transform

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// TransformRegistry provides a central registry for all available transforms.
// It enables creation of transforms from string parameters, useful for CLI commands.
type TransformRegistry struct {
	factories map[string]TransformFactory
}

// TransformFactory is a function that creates a transform from parameters.
type TransformFactory func(params map[string]string) (ParameterTransform, error)

// NewTransformRegistry creates a new registry with all built-in transforms registered.
func NewTransformRegistry() *TransformRegistry {
	registry := &TransformRegistry{
		factories: make(map[string]TransformFactory),
	}

	registry.Register("set_contribution_years", createSetContributionYears)
	registry.Register("set_survival_expectancy", createSetSurvivalExpectancy)
	registry.Register("set_age", createSetAge)
	registry.Register("set_aliquot", createSetAliquot)
	registry.Register("postpone_retirement", createPostponeRetirement)

	return registry
}

// Register adds a transform factory to the registry.
func (r *TransformRegistry) Register(name string, factory TransformFactory) {
	r.factories[name] = factory
}

// Create creates a transform by name with the given parameters.
func (r *TransformRegistry) Create(name string, params map[string]string) (ParameterTransform, error) {
	factory, exists := r.factories[name]
	if !exists {
		return nil, fmt.Errorf("unknown transform: %s", name)
	}

	return factory(params)
}

// List returns the sorted names of all registered transforms.
func (r *TransformRegistry) List() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParseTransformSpec parses a transform specification string.
// Format: "transform_name:param1=value1,param2=value2"
// Example: "postpone_retirement:years=2"
func (r *TransformRegistry) ParseTransformSpec(spec string) (ParameterTransform, error) {
	parts := strings.SplitN(spec, ":", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("invalid transform spec format, expected 'name:params', got: %s", spec)
	}

	name := strings.TrimSpace(parts[0])
	paramsStr := strings.TrimSpace(parts[1])

	params := make(map[string]string)
	if paramsStr != "" {
		for _, paramPair := range strings.Split(paramsStr, ",") {
			kv := strings.SplitN(paramPair, "=", 2)
			if len(kv) != 2 {
				return nil, fmt.Errorf("invalid parameter format, expected 'key=value', got: %s", paramPair)
			}
			params[strings.TrimSpace(kv[0])] = strings.TrimSpace(kv[1])
		}
	}

	return r.Create(name, params)
}

// ParseTransformSpecs parses several specs in order
func (r *TransformRegistry) ParseTransformSpecs(specs []string) ([]ParameterTransform, error) {
	out := make([]ParameterTransform, 0, len(specs))
	for _, spec := range specs {
		t, err := r.ParseTransformSpec(spec)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func decimalParam(transform string, params map[string]string, key string) (decimal.Decimal, error) {
	raw, ok := params[key]
	if !ok {
		return decimal.Zero, fmt.Errorf("%s requires '%s' parameter", transform, key)
	}
	v, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s value: %w", key, err)
	}
	return v, nil
}

// Factory functions for each transform

func createSetContributionYears(params map[string]string) (ParameterTransform, error) {
	years, err := decimalParam("set_contribution_years", params, "years")
	if err != nil {
		return nil, err
	}
	return &SetContributionYears{Years: years}, nil
}

func createSetSurvivalExpectancy(params map[string]string) (ParameterTransform, error) {
	years, err := decimalParam("set_survival_expectancy", params, "years")
	if err != nil {
		return nil, err
	}
	return &SetSurvivalExpectancy{Years: years}, nil
}

func createSetAge(params map[string]string) (ParameterTransform, error) {
	age, err := decimalParam("set_age", params, "age")
	if err != nil {
		return nil, err
	}
	return &SetAge{Age: age}, nil
}

func createSetAliquot(params map[string]string) (ParameterTransform, error) {
	a, err := decimalParam("set_aliquot", params, "value")
	if err != nil {
		return nil, err
	}
	return &SetAliquot{Aliquot: a}, nil
}

func createPostponeRetirement(params map[string]string) (ParameterTransform, error) {
	years, err := decimalParam("postpone_retirement", params, "years")
	if err != nil {
		return nil, err
	}
	t := &PostponeRetirement{Years: years}
	if raw, ok := params["contributing"]; ok {
		contributing, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("postpone_retirement: invalid contributing %q: %w", raw, err)
		}
		t.NoContribution = !contributing
	}
	return t, nil
}

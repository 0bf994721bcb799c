package transform

import (
	"fmt"

	"github.com/rgehrsitz/inss-calc/internal/domain"
)

// ParameterTransform defines the interface for all pension parameter transformations.
// Transforms are composable operations that derive alternative parameter sets
// for simulations and comparisons.
type ParameterTransform interface {
	// Apply returns a new parameter set derived from base.
	Apply(base domain.PensionParameters) (domain.PensionParameters, error)

	// Name returns a short identifier for this transform (e.g., "postpone_retirement").
	Name() string

	// Description returns a human-readable description of what this transform does.
	Description() string

	// Validate checks if the transform can be applied to base without applying it.
	Validate(base domain.PensionParameters) error
}

// ApplyTransforms applies a sequence of transforms to base parameters.
// Each transform receives the output of the previous one; the result is
// validated against the factor formula's domain.
func ApplyTransforms(base domain.PensionParameters, transforms []ParameterTransform) (domain.PensionParameters, error) {
	current := base
	for i, transform := range transforms {
		if transform == nil {
			return base, fmt.Errorf("transform at index %d is nil", i)
		}

		if err := transform.Validate(current); err != nil {
			return base, fmt.Errorf("transform %s validation failed: %w", transform.Name(), err)
		}

		next, err := transform.Apply(current)
		if err != nil {
			return base, fmt.Errorf("transform %s failed: %w", transform.Name(), err)
		}
		current = next
	}

	if err := current.Validate(); err != nil {
		return base, fmt.Errorf("transformed parameters are invalid: %w", err)
	}
	return current, nil
}

// TransformError represents an error that occurred during transformation.
type TransformError struct {
	TransformName string
	Operation     string
	Reason        string
	Err           error
}

func (e *TransformError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("transform %s (%s): %s: %v", e.TransformName, e.Operation, e.Reason, e.Err)
	}
	return fmt.Sprintf("transform %s (%s): %s", e.TransformName, e.Operation, e.Reason)
}

func (e *TransformError) Unwrap() error {
	return e.Err
}

// NewTransformError creates a new TransformError.
func NewTransformError(transformName, operation, reason string, err error) error {
	return &TransformError{
		TransformName: transformName,
		Operation:     operation,
		Reason:        reason,
		Err:           err,
	}
}

package transform

import (
	"errors"
	"testing"

	"github.com/rgehrsitz/inss-calc/internal/domain"
	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestApplyTransforms_EmptyTransforms(t *testing.T) {
	base := domain.DefaultPensionParameters()

	result, err := ApplyTransforms(base, nil)
	if err != nil {
		t.Fatalf("Expected no error for empty transforms, got: %v", err)
	}
	if !result.ContributionYears.Equal(base.ContributionYears) || !result.Age.Equal(base.Age) {
		t.Errorf("Expected unchanged parameters, got %+v", result)
	}
}

func TestApplyTransforms_NilTransform(t *testing.T) {
	transforms := []ParameterTransform{
		&PostponeRetirement{Years: d("1")},
		nil,
	}

	_, err := ApplyTransforms(domain.DefaultPensionParameters(), transforms)
	if err == nil {
		t.Error("Expected error for nil transform, got nil")
	}
}

func TestApplyTransforms_Sequence(t *testing.T) {
	base := domain.DefaultPensionParameters()
	transforms := []ParameterTransform{
		&SetAge{Age: d("62")},
		&PostponeRetirement{Years: d("2")},
		&SetAliquot{Aliquot: d("0.3")},
		&SetSurvivalExpectancy{Years: d("20")},
	}

	result, err := ApplyTransforms(base, transforms)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if !result.Age.Equal(d("64")) {
		t.Errorf("Expected age 64, got %s", result.Age)
	}
	if !result.ContributionYears.Equal(d("40")) {
		t.Errorf("Expected contribution 40, got %s", result.ContributionYears)
	}
	if !result.Aliquot.Equal(d("0.3")) {
		t.Errorf("Expected aliquot 0.3, got %s", result.Aliquot)
	}
	if !result.SurvivalExpectancy.Equal(d("20")) {
		t.Errorf("Expected survival expectancy 20, got %s", result.SurvivalExpectancy)
	}

	// Base must be untouched
	if !base.Age.Equal(d("60")) {
		t.Errorf("Base was modified: age %s", base.Age)
	}
}

func TestApplyTransforms_ValidationErrors(t *testing.T) {
	tests := []struct {
		name      string
		transform ParameterTransform
		wantErr   error
	}{
		{"negative contribution", &SetContributionYears{Years: d("-1")}, domain.ErrInvalidParameter},
		{"zero survival", &SetSurvivalExpectancy{Years: d("0")}, domain.ErrInvalidSurvivalExpectancy},
		{"negative age", &SetAge{Age: d("-5")}, domain.ErrInvalidParameter},
		{"aliquot above one", &SetAliquot{Aliquot: d("1.5")}, domain.ErrInvalidParameter},
		{"negative postpone", &PostponeRetirement{Years: d("-1")}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ApplyTransforms(domain.DefaultPensionParameters(), []ParameterTransform{tt.transform})
			if err == nil {
				t.Fatal("Expected error, got nil")
			}

			var terr *TransformError
			if !errors.As(err, &terr) {
				t.Fatalf("Expected TransformError, got %T", err)
			}
			if terr.TransformName != tt.transform.Name() {
				t.Errorf("Expected transform name %s, got %s", tt.transform.Name(), terr.TransformName)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v in chain, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestPostponeRetirement_Apply(t *testing.T) {
	tr := &PostponeRetirement{Years: d("1.5")}
	result, err := tr.Apply(domain.DefaultPensionParameters())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !result.ContributionYears.Equal(d("39.5")) || !result.Age.Equal(d("61.5")) {
		t.Errorf("Unexpected result %+v", result)
	}
	if tr.Description() != "Postpone retirement by 1.5 years" {
		t.Errorf("Unexpected description %q", tr.Description())
	}
}

func TestTransformError(t *testing.T) {
	inner := errors.New("boom")
	err := NewTransformError("set_age", "validate", "bad age", inner)
	if err.Error() != "transform set_age (validate): bad age: boom" {
		t.Errorf("Unexpected message %q", err.Error())
	}
	if !errors.Is(err, inner) {
		t.Error("Expected wrapped error to be reachable")
	}

	plain := NewTransformError("set_age", "validate", "bad age", nil)
	if plain.Error() != "transform set_age (validate): bad age" {
		t.Errorf("Unexpected message %q", plain.Error())
	}
}

func TestTransformRegistry_ParseTransformSpec(t *testing.T) {
	registry := NewTransformRegistry()

	tests := []struct {
		spec     string
		wantName string
		wantErr  bool
	}{
		{"set_contribution_years:years=40", "set_contribution_years", false},
		{"set_survival_expectancy:years=19.5", "set_survival_expectancy", false},
		{"set_age: age = 65 ", "set_age", false},
		{"set_aliquot:value=0.2", "set_aliquot", false},
		{"postpone_retirement:years=2", "postpone_retirement", false},
		{"postpone_retirement", "", true},
		{"postpone_retirement:", "", true},
		{"postpone_retirement:years", "", true},
		{"postpone_retirement:years=abc", "", true},
		{"unknown:x=1", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			tr, err := registry.ParseTransformSpec(tt.spec)
			if tt.wantErr {
				if err == nil {
					t.Errorf("Expected error for %q", tt.spec)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if tr.Name() != tt.wantName {
				t.Errorf("Expected %s, got %s", tt.wantName, tr.Name())
			}
		})
	}
}

func TestTransformRegistry_MultipleParameters(t *testing.T) {
	tr, err := NewTransformRegistry().ParseTransformSpec("postpone_retirement:years=2,contributing=false")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	result, err := tr.Apply(domain.DefaultPensionParameters())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !result.ContributionYears.Equal(d("38")) || !result.Age.Equal(d("62")) {
		t.Errorf("Expected Tc 38 and age 62, got %+v", result)
	}
	if tr.Description() != "Postpone retirement by 2 years without contributing" {
		t.Errorf("Unexpected description %q", tr.Description())
	}

	if _, err := NewTransformRegistry().ParseTransformSpec("postpone_retirement:years=2,contributing=maybe"); err == nil {
		t.Error("Expected error for invalid contributing flag")
	}
}

func TestTransformRegistry_List(t *testing.T) {
	names := NewTransformRegistry().List()
	want := []string{"postpone_retirement", "set_age", "set_aliquot", "set_contribution_years", "set_survival_expectancy"}
	if len(names) != len(want) {
		t.Fatalf("Expected %d transforms, got %d", len(want), len(names))
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("Expected %s at %d, got %s", want[i], i, names[i])
		}
	}
}

func TestTransformRegistry_ParseTransformSpecs(t *testing.T) {
	registry := NewTransformRegistry()
	transforms, err := registry.ParseTransformSpecs([]string{"set_age:age=65", "postpone_retirement:years=1"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	result, err := ApplyTransforms(domain.DefaultPensionParameters(), transforms)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !result.Age.Equal(d("66")) {
		t.Errorf("Expected age 66, got %s", result.Age)
	}

	if _, err := registry.ParseTransformSpecs([]string{"set_age:age=65", "bogus"}); err == nil {
		t.Error("Expected error for bad spec")
	}
}

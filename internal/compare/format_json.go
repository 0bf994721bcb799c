package compare

import (
	json "github.com/goccy/go-json"
	"github.com/rgehrsitz/inss-calc/internal/domain"
)

// JSONFormatter formats comparison results as JSON
type JSONFormatter struct {
	Pretty bool
}

type comparisonDocument struct {
	*ComparisonSet
	BestScenario string `json:"bestScenario,omitempty"`
}

// Format renders the set plus the name of the alternative with the highest
// benefit above base, if any
func (jf *JSONFormatter) Format(compSet *ComparisonSet) (string, error) {
	doc := comparisonDocument{ComparisonSet: compSet, BestScenario: bestAlternative(compSet)}

	marshal := json.Marshal
	if jf.Pretty {
		marshal = func(v interface{}) ([]byte, error) { return json.MarshalIndent(v, "", "  ") }
	}
	data, err := marshal(doc)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func bestAlternative(compSet *ComparisonSet) string {
	if compSet == nil || compSet.BaseResult == nil {
		return ""
	}
	best := ""
	top := compSet.BaseResult.FinalBenefit
	for _, alt := range compSet.AlternativeResults {
		if alt.Status == domain.StatusOK && alt.FinalBenefit.GreaterThan(top) {
			best, top = alt.ScenarioName, alt.FinalBenefit
		}
	}
	return best
}

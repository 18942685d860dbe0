package check

import (
	"math"
	"net/http"

	"LTSLab/internal/config"
	"LTSLab/internal/pkg/textfold"

	"github.com/ansel1/merry"
)

var (
	ErrUnknownModule      = merry.New("unknown module").WithHTTPCode(http.StatusNotFound)
	ErrUnknownParameter   = merry.New("unknown parameter").WithHTTPCode(http.StatusBadRequest)
	ErrDuplicateParameter = merry.New("parameter entered twice").WithHTTPCode(http.StatusBadRequest)
	ErrUnitMismatch       = merry.New("unit does not match the configured unit").WithHTTPCode(http.StatusBadRequest)
)

type Verdict string

const (
	Compliant     Verdict = "compliant"
	NonCompliant  Verdict = "non_compliant"
	NotApplicable Verdict = "not_applicable"
)

func (v Verdict) Label() string {
	switch v {
	case Compliant:
		return "Compliant"
	case NonCompliant:
		return "Non-compliant"
	default:
		return "N/A"
	}
}

// Check compares value with the inclusive band [min, max]. A nil value is
// NotApplicable. NaN in the value or in either bound is NonCompliant.
func Check(value *float64, min, max float64) Verdict {
	if value == nil {
		return NotApplicable
	}
	v := *value
	if math.IsNaN(v) || math.IsNaN(min) || math.IsNaN(max) {
		return NonCompliant
	}
	if min <= v && v <= max {
		return Compliant
	}
	return NonCompliant
}

// Measurement is one operator entry. Unit is optional; when given it must
// match the configured unit.
type Measurement struct {
	Name  string   `json:"name"`
	Value *float64 `json:"value"`
	Unit  string   `json:"unit,omitempty"`
}

// Line is the verdict for one configured parameter.
type Line struct {
	Name        string   `json:"name"`
	Unit        string   `json:"unit"`
	Value       *float64 `json:"value"`
	Min         float64  `json:"min"`
	Max         float64  `json:"max"`
	Verdict     Verdict  `json:"verdict"`
	Explanation string   `json:"explanation,omitempty"`
}

type Evaluator struct {
	cfg *config.Config
}

func NewEvaluator(cfg *config.Config) *Evaluator {
	return &Evaluator{cfg: cfg}
}

// Evaluate applies Check to every parameter of the module, in registry
// order. Parameters without a measurement get NotApplicable.
func (e *Evaluator) Evaluate(module string, ms []Measurement) ([]Line, error) {
	m, ok := e.cfg.Module(module)
	if !ok {
		return nil, merry.Here(ErrUnknownModule).Append(module)
	}

	params := make(map[string]config.Parameter, len(m.Parameters))
	for _, p := range m.Parameters {
		params[textfold.Key(p.Name)] = p
	}
	entered := make(map[string]Measurement, len(ms))
	for _, x := range ms {
		key := textfold.Key(x.Name)
		p, ok := params[key]
		if !ok {
			return nil, merry.Here(ErrUnknownParameter).Appendf("%s: %q", m.Name, x.Name)
		}
		if _, ok := entered[key]; ok {
			return nil, merry.Here(ErrDuplicateParameter).Append(p.Name)
		}
		if x.Unit != "" && textfold.Compact(x.Unit) != textfold.Compact(p.Unit) {
			return nil, merry.Here(ErrUnitMismatch).Appendf("%s: got %q, want %q", p.Name, x.Unit, p.Unit)
		}
		entered[key] = x
	}

	lines := make([]Line, 0, len(m.Parameters))
	for _, p := range m.Parameters {
		var value *float64
		if x, ok := entered[textfold.Key(p.Name)]; ok && x.Value != nil {
			v := *x.Value
			value = &v
		}
		lines = append(lines, Line{
			Name:        p.Name,
			Unit:        p.Unit,
			Value:       value,
			Min:         p.Min,
			Max:         p.Max,
			Verdict:     Check(value, p.Min, p.Max),
			Explanation: p.Explanation,
		})
	}
	return lines, nil
}

type Summary struct {
	Compliant     int `json:"compliant"`
	NonCompliant  int `json:"non_compliant"`
	NotApplicable int `json:"not_applicable"`
}

func Summarize(lines []Line) Summary {
	var s Summary
	for _, l := range lines {
		switch l.Verdict {
		case Compliant:
			s.Compliant++
		case NonCompliant:
			s.NonCompliant++
		default:
			s.NotApplicable++
		}
	}
	return s
}

// AllCompliant is true when no line is NonCompliant.
func AllCompliant(lines []Line) bool {
	return Summarize(lines).NonCompliant == 0
}

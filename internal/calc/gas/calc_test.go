package gas

import (
	"math"
	"testing"

	"LTSLab/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exampleTable() *Table {
	return NewTable([]config.Component{
		{Symbol: "CH4", Name: "Methane", HeatingValue: 39.82, MolecularWeight: 16.04},
		{Symbol: "C2H6", Name: "Ethane", HeatingValue: 68.39, MolecularWeight: 30.07},
		{Symbol: "C3H8", Name: "Propane", HeatingValue: 93.57, MolecularWeight: 44.10},
		{Symbol: "N2", Name: "Nitrogen", HeatingValue: 0, MolecularWeight: 28.01},
	})
}

var methaneWeighted = config.LHVPolicy{Method: config.LHVMethaneWeighted, MethaneK: 3.94, FlatOffset: 0.09}

func exampleFractions() map[string]float64 {
	return map[string]float64{"CH4": 0.95, "C2H6": 0.03, "C3H8": 0.01, "N2": 0.01}
}

func TestCalculateExample(t *testing.T) {
	r := NewCalculator(exampleTable(), methaneWeighted).Calculate(exampleFractions())

	assert.InDelta(t, 40.8164, r.HHV, 1e-9)
	assert.InDelta(t, 40.8164-3.94*0.95, r.LHV, 1e-9)
	assert.InDelta(t, 16.8612, r.MolecularWeight, 1e-9)
	assert.InDelta(t, 16.8612/28.964, r.RelativeDensity, 1e-12)
	assert.InDelta(t, 53.4958, r.Wobbe, 1e-4)

	assert.Equal(t, Result{
		HHV:             40.82,
		LHV:             37.07,
		RelativeDensity: 0.5821,
		MolecularWeight: 16.86,
		Wobbe:           53.5,
	}, r.Rounded())
}

func TestCalculateIdempotent(t *testing.T) {
	calc := NewCalculator(exampleTable(), methaneWeighted)
	fractions := exampleFractions()
	first := calc.Calculate(fractions)
	for i := 0; i < 100; i++ {
		assert.Equal(t, first, calc.Calculate(fractions))
	}
	assert.Equal(t, exampleFractions(), fractions, "input is not modified")
}

func TestCalculateDegenerate(t *testing.T) {
	for _, policy := range []config.LHVPolicy{
		methaneWeighted,
		{Method: config.LHVFlat, FlatOffset: 0.09},
	} {
		calc := NewCalculator(exampleTable(), policy)
		assert.Equal(t, Result{}, calc.Calculate(nil), policy.Method)
		assert.Equal(t, Result{}, calc.Calculate(map[string]float64{}), policy.Method)
		assert.Equal(t, Result{}, calc.Calculate(map[string]float64{"He": 1}), policy.Method)
	}
}

func TestCalculateInertOnly(t *testing.T) {
	r := NewCalculator(exampleTable(), methaneWeighted).Calculate(map[string]float64{"N2": 1})
	assert.Equal(t, 0.0, r.HHV)
	assert.Equal(t, 0.0, r.LHV)
	assert.InDelta(t, 28.01/28.964, r.RelativeDensity, 1e-12)
	assert.Equal(t, 0.0, r.Wobbe)
}

func TestCalculateNegativeDensityGuard(t *testing.T) {
	r := NewCalculator(exampleTable(), methaneWeighted).Calculate(map[string]float64{"CH4": -0.5})
	assert.Less(t, r.RelativeDensity, 0.0)
	assert.Equal(t, 0.0, r.Wobbe)
	assert.False(t, math.IsNaN(r.Wobbe))
}

func TestCalculateTotal(t *testing.T) {
	calc := NewCalculator(exampleTable(), methaneWeighted)
	for _, fractions := range []map[string]float64{
		{"CH4": 1},
		{"CH4": 0, "C2H6": 0},
		{"CH4": 1e-300},
		{"C3H8": 1e6},
		{"CH4": -1, "C2H6": 2},
	} {
		r := calc.Calculate(fractions)
		for _, v := range []float64{r.HHV, r.LHV, r.RelativeDensity, r.MolecularWeight, r.Wobbe} {
			assert.False(t, math.IsNaN(v) || math.IsInf(v, 0), "%v -> %+v", fractions, r)
		}
	}
}

func TestLHVPolicies(t *testing.T) {
	fractions := exampleFractions()

	r := NewCalculator(exampleTable(), config.LHVPolicy{Method: config.LHVFlat, FlatOffset: 0.09}).Calculate(fractions)
	assert.InDelta(t, 40.8164-0.09, r.LHV, 1e-9)

	r = NewCalculator(exampleTable(), config.LHVPolicy{Method: config.LHVMethaneWeighted, MethaneK: 4}).Calculate(fractions)
	assert.InDelta(t, 40.8164-4*0.95, r.LHV, 1e-9)
}

func TestFields(t *testing.T) {
	r := NewCalculator(exampleTable(), methaneWeighted).Calculate(exampleFractions())
	fields := r.Fields(methaneWeighted)
	require.Len(t, fields, 5)

	var labels []string
	for _, f := range fields {
		labels = append(labels, f.Label)
		assert.NotEmpty(t, f.Formula, f.Key)
		assert.NotEmpty(t, f.Explanation, f.Key)
	}
	assert.Equal(t, []string{LabelHHV, LabelLHV, LabelRelativeDensity, LabelMolecularWeight, LabelWobbe}, labels)
	assert.Equal(t, 40.82, fields[0].Value)
	assert.Equal(t, 4, fields[2].Decimals)
	assert.Equal(t, 0.5821, fields[2].Value)
	assert.Equal(t, "LHV ≈ HHV - 3.94 · y(CH4)", fields[1].Formula)

	fields = r.Fields(config.LHVPolicy{Method: config.LHVFlat, FlatOffset: 0.09})
	assert.Equal(t, "LHV ≈ HHV - 0.09", fields[1].Formula)
}

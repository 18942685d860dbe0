package gas

import (
	"fmt"
	"math"

	"LTSLab/internal/config"
)

// Result holds the derived energy parameters at full precision.
type Result struct {
	HHV             float64 `json:"hhv"`              // MJ/m³
	LHV             float64 `json:"lhv"`              // MJ/m³, estimate
	RelativeDensity float64 `json:"relative_density"` // air = 1
	MolecularWeight float64 `json:"molecular_weight"` // g/mol
	Wobbe           float64 `json:"wobbe"`            // MJ/m³
}

type Calculator struct {
	table *Table
	lhv   config.LHVPolicy
}

func NewCalculator(table *Table, lhv config.LHVPolicy) *Calculator {
	return &Calculator{table: table, lhv: lhv}
}

// Calculate is total: any map of finite fractions gives a result, the empty
// map gives all zeros. Keys missing from the table are ignored.
//
//	HHV  = Σ xᵢ·HHVᵢ
//	M    = Σ xᵢ·Mᵢ
//	ρrel = M / 28.964          (0 when M = 0)
//	W    = HHV / √ρrel         (0 when ρrel <= 0)
func (c *Calculator) Calculate(fractions map[string]float64) Result {
	var r Result
	for _, comp := range c.table.components {
		x, ok := fractions[comp.Symbol]
		if !ok {
			continue
		}
		r.HHV += x * comp.HeatingValue
		r.MolecularWeight += x * comp.MolecularWeight
	}
	r.LHV = c.estimateLHV(r.HHV, fractions[Methane])
	if r.MolecularWeight != 0 {
		r.RelativeDensity = r.MolecularWeight / AirMolecularWeight
	}
	if r.RelativeDensity > 0 {
		r.Wobbe = r.HHV / math.Sqrt(r.RelativeDensity)
	}
	return r
}

func (c *Calculator) estimateLHV(hhv, methane float64) float64 {
	switch c.lhv.Method {
	case config.LHVFlat:
		// a flat offset would turn an inert or empty gas negative
		if hhv == 0 {
			return 0
		}
		return hhv - c.lhv.FlatOffset
	default:
		return hhv - c.lhv.MethaneK*methane
	}
}

// Rounded returns r at report precision: 4 decimals for relative density,
// 2 for everything else.
func (r Result) Rounded() Result {
	return Result{
		HHV:             round(r.HHV, 2),
		LHV:             round(r.LHV, 2),
		RelativeDensity: round(r.RelativeDensity, 4),
		MolecularWeight: round(r.MolecularWeight, 2),
		Wobbe:           round(r.Wobbe, 2),
	}
}

// Field describes one result value for display.
type Field struct {
	Key         string  `json:"key"`
	Label       string  `json:"label"`
	Unit        string  `json:"unit"`
	Decimals    int     `json:"decimals"`
	Value       float64 `json:"value"`
	Formula     string  `json:"formula"`
	Explanation string  `json:"explanation"`
}

const (
	LabelHHV             = "Heating Value (Superior)"
	LabelLHV             = "Heating Value (Inferior, estimate)"
	LabelRelativeDensity = "Relative Density"
	LabelMolecularWeight = "Molecular Weight"
	LabelWobbe           = "Wobbe Index"
)

// Fields lists the five results in report order, rounded to their display
// precision. The LHV formula follows the configured estimate.
func (r Result) Fields(lhv config.LHVPolicy) []Field {
	x := r.Rounded()
	lhvFormula := fmt.Sprintf("LHV ≈ HHV - %g · y(CH4)", lhv.MethaneK)
	if lhv.Method == config.LHVFlat {
		lhvFormula = fmt.Sprintf("LHV ≈ HHV - %g", lhv.FlatOffset)
	}
	return []Field{
		{
			Key: "hhv", Label: LabelHHV, Unit: "MJ/m³", Decimals: 2, Value: x.HHV,
			Formula:     "HHV = Σ(yi · HHVi)",
			Explanation: "Total energy released burning the gas, including the condensation heat of water vapour.",
		},
		{
			Key: "lhv", Label: LabelLHV, Unit: "MJ/m³", Decimals: 2, Value: x.LHV,
			Formula:     lhvFormula,
			Explanation: "HHV minus the latent heat of the water formed (estimate).",
		},
		{
			Key: "relative_density", Label: LabelRelativeDensity, Unit: "-", Decimals: 4, Value: x.RelativeDensity,
			Formula:     "ρrel = M / 28.964",
			Explanation: "Ratio of the gas density to that of dry air.",
		},
		{
			Key: "molecular_weight", Label: LabelMolecularWeight, Unit: "g/mol", Decimals: 2, Value: x.MolecularWeight,
			Formula:     "M = Σ(yi · Mi)",
			Explanation: "Mole-fraction weighted molecular weight of the mixture.",
		},
		{
			Key: "wobbe", Label: LabelWobbe, Unit: "MJ/m³", Decimals: 2, Value: x.Wobbe,
			Formula:     "W = HHV / √ρrel",
			Explanation: "Interchangeability of fuel gases on the same burner.",
		},
	}
}

func round(v float64, decimals int) float64 {
	p := math.Pow10(decimals)
	return math.Round(v*p) / p
}

package gas

import "LTSLab/internal/config"

// Methane is the component whose fraction drives the LHV estimate.
const Methane = "CH4"

// AirMolecularWeight is the molecular weight of dry air, g/mol.
const AirMolecularWeight = 28.964

type Component struct {
	Symbol          string  `json:"symbol"`
	Name            string  `json:"name"`
	HeatingValue    float64 `json:"heating_value"`
	MolecularWeight float64 `json:"molecular_weight"`
}

// Table is the immutable component table. Order follows the configuration
// and fixes the summation order of the calculator.
type Table struct {
	components []Component
	index      map[string]int
}

func NewTable(components []config.Component) *Table {
	t := &Table{
		components: make([]Component, 0, len(components)),
		index:      make(map[string]int, len(components)),
	}
	for _, c := range components {
		if _, ok := t.index[c.Symbol]; ok {
			continue
		}
		t.index[c.Symbol] = len(t.components)
		t.components = append(t.components, Component{
			Symbol:          c.Symbol,
			Name:            c.Name,
			HeatingValue:    c.HeatingValue,
			MolecularWeight: c.MolecularWeight,
		})
	}
	return t
}

func (t *Table) Lookup(symbol string) (Component, bool) {
	i, ok := t.index[symbol]
	if !ok {
		return Component{}, false
	}
	return t.components[i], true
}

func (t *Table) Symbols() []string {
	xs := make([]string, len(t.components))
	for i, c := range t.components {
		xs[i] = c.Symbol
	}
	return xs
}

func (t *Table) Components() []Component {
	return append([]Component(nil), t.components...)
}

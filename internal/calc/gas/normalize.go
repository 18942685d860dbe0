package gas

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"LTSLab/internal/config"

	"github.com/ansel1/merry"
)

// Entry is one row of an uploaded or typed composition: a free-text label
// and its content in percent.
type Entry struct {
	Label   string  `json:"label"`
	Percent float64 `json:"percent"`
}

// Composition is the normalized mole fraction map. Fractions keys are always
// symbols of the component table.
type Composition struct {
	Fractions    map[string]float64 `json:"fractions"`
	Dropped      []string           `json:"dropped,omitempty"`
	TotalPercent float64            `json:"total_percent"`
	Warnings     []string           `json:"warnings,omitempty"`
}

// SortedSymbols orders the symbols by decreasing fraction, ties by symbol.
func (c Composition) SortedSymbols() []string {
	xs := make([]string, 0, len(c.Fractions))
	for sym := range c.Fractions {
		xs = append(xs, sym)
	}
	sort.Slice(xs, func(i, j int) bool {
		if c.Fractions[xs[i]] != c.Fractions[xs[j]] {
			return c.Fractions[xs[i]] > c.Fractions[xs[j]]
		}
		return xs[i] < xs[j]
	})
	return xs
}

// ParseRows reads a composition table: column 1 is the label, column 2 the
// percentage, further columns are ignored. Blank rows are skipped. With
// header set the first row is taken as column titles.
func ParseRows(rows [][]string, header bool) ([]Entry, error) {
	first := 1
	if header && len(rows) > 0 {
		if len(rows[0]) < 2 {
			return nil, merry.Here(ErrMalformedTable).Appendf("table has %d column(s), at least two are required", len(rows[0]))
		}
		rows = rows[1:]
		first = 2
	}
	entries := make([]Entry, 0, len(rows))
	for i, row := range rows {
		if blankRow(row) {
			continue
		}
		line := i + first
		if len(row) < 2 {
			return nil, merry.Here(ErrMalformedTable).Appendf("row %d: expected label and value, got %d column(s)", line, len(row))
		}
		label := strings.TrimSpace(row[0])
		if label == "" {
			return nil, merry.Here(ErrMalformedTable).Appendf("row %d: empty component label", line)
		}
		v, err := ParsePercent(row[1])
		if err != nil {
			return nil, merry.Here(ErrMalformedTable).Appendf("row %d: %s value %q is not a number", line, label, row[1])
		}
		entries = append(entries, Entry{Label: label, Percent: v})
	}
	return entries, nil
}

// ParsePercent accepts "95", "95.5", "95,5" and "95.5 %".
func ParsePercent(s string) (float64, error) {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	if strings.Contains(s, ",") && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("not a finite number: %s", s)
	}
	return v, nil
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

type Normalizer struct {
	resolver *Resolver
	policy   config.CompositionPolicy
}

func NewNormalizer(resolver *Resolver, policy config.CompositionPolicy) *Normalizer {
	return &Normalizer{resolver: resolver, policy: policy}
}

// Normalize resolves labels and accumulates percent/100 per symbol, so
// duplicate rows of one component add up. Out-of-range percentages are not
// rejected; they propagate into the fractions.
func (n *Normalizer) Normalize(entries []Entry) (Composition, error) {
	comp := Composition{Fractions: make(map[string]float64)}
	for _, e := range entries {
		symbol, ok := n.resolver.Resolve(e.Label)
		if !ok {
			comp.Dropped = append(comp.Dropped, e.Label)
			continue
		}
		comp.Fractions[symbol] += e.Percent / 100
		comp.TotalPercent += e.Percent
	}

	if len(comp.Dropped) > 0 {
		switch n.policy.Unknown {
		case config.UnknownReject:
			return Composition{}, merry.Here(ErrUnknownComponent).Append(strings.Join(comp.Dropped, ", "))
		case config.UnknownWarn:
			comp.Warnings = append(comp.Warnings,
				fmt.Sprintf("unrecognized components excluded: %s", strings.Join(comp.Dropped, ", ")))
		}
	}

	if tol := n.policy.SumTolerance; tol > 0 && math.Abs(comp.TotalPercent-100) > tol {
		return Composition{}, merry.Here(ErrCompositionSum).Appendf("total %.2f%%, tolerance ±%.2f", comp.TotalPercent, tol)
	}
	return comp, nil
}

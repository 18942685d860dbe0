package gas

import (
	"LTSLab/internal/calc/check"
	"LTSLab/internal/config"
	"LTSLab/internal/pkg/textfold"

	"github.com/ansel1/merry"
	"github.com/powerman/structlog"
)

// NaturalGasModule is the registry module whose bands apply to the energy
// results. It is optional.
const NaturalGasModule = "Natural Gas"

var log = structlog.New(structlog.KeyUnit, "gas")

// Report is everything derived from one composition.
type Report struct {
	Composition Composition  `json:"composition"`
	Result      Result       `json:"result"`
	Rounded     Result       `json:"rounded"`
	Fields      []Field      `json:"fields"`
	Lines       []check.Line `json:"lines,omitempty"`
	Warnings    []string     `json:"warnings,omitempty"`
	Notes       string       `json:"notes"`
}

// Service wires resolver, normalizer, calculator and the optional Natural
// Gas evaluation around one shared configuration.
type Service struct {
	cfg        *config.Config
	table      *Table
	resolver   *Resolver
	normalizer *Normalizer
	calc       *Calculator
	evaluator  *check.Evaluator
}

func NewService(cfg *config.Config) *Service {
	table := NewTable(cfg.Components)
	resolver := NewResolver(cfg.Components)
	return &Service{
		cfg:        cfg,
		table:      table,
		resolver:   resolver,
		normalizer: NewNormalizer(resolver, cfg.Composition),
		calc:       NewCalculator(table, cfg.LHV),
		evaluator:  check.NewEvaluator(cfg),
	}
}

func (s *Service) Table() *Table       { return s.table }
func (s *Service) Resolver() *Resolver { return s.resolver }

// Run normalizes entries and computes the energy parameters. When the
// registry has a Natural Gas module the rounded results are checked against
// its bands.
func (s *Service) Run(entries []Entry) (Report, error) {
	comp, err := s.normalizer.Normalize(entries)
	if err != nil {
		return Report{}, err
	}
	if len(comp.Dropped) > 0 {
		log.Warn("components excluded", "labels", comp.Dropped, "policy", s.cfg.Composition.Unknown)
	}

	res := s.calc.Calculate(comp.Fractions)
	rep := Report{
		Composition: comp,
		Result:      res,
		Rounded:     res.Rounded(),
		Fields:      res.Fields(s.cfg.LHV),
		Warnings:    comp.Warnings,
		Notes:       "Component-additive model; see GPA 2145 / ISO 6976 for reference constants.",
	}

	if m, ok := s.cfg.Module(NaturalGasModule); ok {
		lines, err := s.evaluator.Evaluate(m.Name, measurements(m, rep.Fields))
		if err != nil {
			return Report{}, merry.Prepend(err, "natural gas bands")
		}
		rep.Lines = lines
	}
	log.Debug("gas calculated", "hhv", rep.Rounded.HHV, "wobbe", rep.Rounded.Wobbe, "rows", len(entries))
	return rep, nil
}

// measurements feeds the rounded fields configured in the Natural Gas
// module to the range evaluator; fields without a band are skipped. Bands
// are matched by label and report in the unit of the band.
func measurements(m config.Module, fields []Field) []check.Measurement {
	banded := make(map[string]struct{}, len(m.Parameters))
	for _, p := range m.Parameters {
		banded[textfold.Key(p.Name)] = struct{}{}
	}
	var ms []check.Measurement
	for _, f := range fields {
		if _, ok := banded[textfold.Key(f.Label)]; !ok {
			continue
		}
		v := f.Value
		ms = append(ms, check.Measurement{Name: f.Label, Value: &v})
	}
	return ms
}

package config

import (
	_ "embed"
	"fmt"
	"math"
	"os"
	"strings"

	"LTSLab/internal/pkg/textfold"

	"github.com/ansel1/merry"
	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"
)

//go:embed lab.yaml
var defaultYAML []byte

// UnknownPolicy decides what happens to composition rows whose label is not
// a known component.
type UnknownPolicy string

const (
	UnknownDrop   UnknownPolicy = "drop"
	UnknownWarn   UnknownPolicy = "warn"
	UnknownReject UnknownPolicy = "reject"
)

// LHVMethod selects the inferior heating value estimate.
type LHVMethod string

const (
	LHVMethaneWeighted LHVMethod = "methane_weighted"
	LHVFlat            LHVMethod = "flat"
)

// Config is built once at startup and shared read-only by every request.
type Config struct {
	Composition CompositionPolicy `yaml:"composition"`
	LHV         LHVPolicy         `yaml:"lhv"`
	Components  []Component       `yaml:"components"`
	Modules     []Module          `yaml:"modules"`
}

type Component struct {
	Symbol          string   `yaml:"symbol" json:"symbol"`
	Name            string   `yaml:"name" json:"name"`
	HeatingValue    float64  `yaml:"heating_value" json:"heating_value"`       // MJ/m³, superior
	MolecularWeight float64  `yaml:"molecular_weight" json:"molecular_weight"` // g/mol
	Aliases         []string `yaml:"aliases" json:"aliases"`
}

type CompositionPolicy struct {
	Unknown      UnknownPolicy `yaml:"unknown"`
	SumTolerance float64       `yaml:"sum_tolerance"` // percent points, 0 disables
}

type LHVPolicy struct {
	Method     LHVMethod `yaml:"method"`
	MethaneK   float64   `yaml:"methane_k"`
	FlatOffset float64   `yaml:"flat_offset"`
}

// Module is one laboratory analysis form: an ordered list of measured parameters.
type Module struct {
	Name       string      `yaml:"name" json:"name"`
	Title      string      `yaml:"title" json:"title"`
	Parameters []Parameter `yaml:"parameters" json:"parameters"`
}

type Parameter struct {
	Name        string  `yaml:"name" json:"name"`
	Unit        string  `yaml:"unit" json:"unit"`
	Min         float64 `yaml:"min" json:"min"`
	Max         float64 `yaml:"max" json:"max"`
	Explanation string  `yaml:"explanation" json:"explanation,omitempty"`
}

// Default returns the configuration embedded into the binary.
func Default() (*Config, error) {
	c, err := Parse(defaultYAML)
	if err != nil {
		return nil, merry.Prepend(err, "embedded lab.yaml")
	}
	return c, nil
}

// Load reads the configuration file at path. An empty path means Default.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, merry.Wrap(err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, merry.Prepend(err, path)
	}
	return c, nil
}

func Parse(data []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, merry.Wrap(err)
	}
	c.setDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) setDefaults() {
	if c.Composition.Unknown == "" {
		c.Composition.Unknown = UnknownDrop
	}
	if c.LHV.Method == "" {
		c.LHV.Method = LHVMethaneWeighted
	}
}

// Validate reports every problem found, not only the first one.
func (c *Config) Validate() error {
	var result *multierror.Error
	fail := func(format string, args ...interface{}) {
		result = multierror.Append(result, merry.Errorf(format, args...))
	}

	switch c.Composition.Unknown {
	case UnknownDrop, UnknownWarn, UnknownReject:
	default:
		fail("composition.unknown: %q is not one of drop, warn, reject", c.Composition.Unknown)
	}
	if !finite(c.Composition.SumTolerance) || c.Composition.SumTolerance < 0 {
		fail("composition.sum_tolerance: must be a non-negative number, got %v", c.Composition.SumTolerance)
	}
	switch c.LHV.Method {
	case LHVMethaneWeighted, LHVFlat:
	default:
		fail("lhv.method: %q is not one of methane_weighted, flat", c.LHV.Method)
	}
	if !finite(c.LHV.MethaneK) || !finite(c.LHV.FlatOffset) {
		fail("lhv: constants must be finite")
	}

	if len(c.Components) == 0 {
		fail("components: table is empty")
	}
	labels := make(map[string]string)
	for i, comp := range c.Components {
		where := fmt.Sprintf("components[%d] %s", i, comp.Symbol)
		if strings.TrimSpace(comp.Symbol) == "" {
			fail("components[%d]: symbol is empty", i)
			continue
		}
		if !finite(comp.HeatingValue) || comp.HeatingValue < 0 {
			fail("%s: heating_value must be a non-negative number", where)
		}
		if !finite(comp.MolecularWeight) || comp.MolecularWeight <= 0 {
			fail("%s: molecular_weight must be positive", where)
		}
		for _, label := range append([]string{comp.Symbol, comp.Name}, comp.Aliases...) {
			key := textfold.Key(label)
			if key == "" {
				continue
			}
			if owner, ok := labels[key]; ok && owner != comp.Symbol {
				fail("%s: label %q already names %s", where, label, owner)
				continue
			}
			labels[key] = comp.Symbol
		}
	}

	modules := make(map[string]struct{})
	for i, m := range c.Modules {
		key := textfold.Key(m.Name)
		if key == "" {
			fail("modules[%d]: name is empty", i)
			continue
		}
		if _, ok := modules[key]; ok {
			fail("modules[%d]: duplicate module %q", i, m.Name)
		}
		modules[key] = struct{}{}
		params := make(map[string]struct{})
		for j, p := range m.Parameters {
			where := fmt.Sprintf("modules[%s].parameters[%d] %s", m.Name, j, p.Name)
			pk := textfold.Key(p.Name)
			if pk == "" {
				fail("%s: name is empty", where)
				continue
			}
			if _, ok := params[pk]; ok {
				fail("%s: duplicate parameter", where)
			}
			params[pk] = struct{}{}
			if math.IsNaN(p.Min) || math.IsNaN(p.Max) || p.Min > p.Max {
				fail("%s: min %v must not exceed max %v", where, p.Min, p.Max)
			}
		}
	}
	return result.ErrorOrNil()
}

// Module looks a module up by name ignoring case, accents and extra spaces.
func (c *Config) Module(name string) (Module, bool) {
	key := textfold.Key(name)
	for _, m := range c.Modules {
		if textfold.Key(m.Name) == key {
			return m, true
		}
	}
	return Module{}, false
}

// ModuleNames lists module names in registry order.
func (c *Config) ModuleNames() []string {
	names := make([]string, 0, len(c.Modules))
	for _, m := range c.Modules {
		names = append(names, m.Name)
	}
	return names
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

package gas

import (
	"LTSLab/internal/config"
	"LTSLab/internal/pkg/textfold"
)

// Resolver maps free-text component labels to canonical symbols.
type Resolver struct {
	aliases map[string]string
}

// NewResolver indexes every symbol, name and alias of the configured
// components. When two components claim the same folded label the first
// one keeps it; config.Validate rejects such tables beforehand.
func NewResolver(components []config.Component) *Resolver {
	r := &Resolver{aliases: make(map[string]string)}
	for _, c := range components {
		for _, label := range append([]string{c.Symbol, c.Name}, c.Aliases...) {
			key := textfold.Key(label)
			if key == "" {
				continue
			}
			if _, ok := r.aliases[key]; !ok {
				r.aliases[key] = c.Symbol
			}
		}
	}
	return r
}

// Resolve returns the canonical symbol for label. Unrecognized labels
// return ("", false), never an error.
func (r *Resolver) Resolve(label string) (string, bool) {
	symbol, ok := r.aliases[textfold.Key(label)]
	return symbol, ok
}

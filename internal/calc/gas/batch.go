package gas

import "github.com/ansel1/merry"

// Sample is one named composition of a batch, e.g. one sampling point.
type Sample struct {
	Name    string  `json:"name"`
	Entries []Entry `json:"entries"`
}

type BatchInput struct {
	Samples []Sample `json:"samples"`
}

type SampleReport struct {
	Name   string `json:"name"`
	Report Report `json:"report"`
}

type BatchResult struct {
	Results []SampleReport `json:"results"`
}

// CalculateBatch runs every sample and stops at the first failing one.
func (s *Service) CalculateBatch(in BatchInput) (BatchResult, error) {
	if len(in.Samples) == 0 {
		return BatchResult{}, merry.Here(ErrNoSamples)
	}
	out := BatchResult{Results: make([]SampleReport, 0, len(in.Samples))}
	for i, sample := range in.Samples {
		rep, err := s.Run(sample.Entries)
		if err != nil {
			return BatchResult{}, merry.Prependf(err, "sample %d %q", i+1, sample.Name)
		}
		out.Results = append(out.Results, SampleReport{Name: sample.Name, Report: rep})
	}
	return out, nil
}

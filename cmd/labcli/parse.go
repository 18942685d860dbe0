package main

import (
	"strings"

	"LTSLab/internal/calc/check"
	"LTSLab/internal/calc/gas"

	"github.com/ansel1/merry"
)

// parseEntry reads "Methane=95" or "CH4=95,5%".
func parseEntry(s string) (gas.Entry, error) {
	label, value, ok := strings.Cut(s, "=")
	label = strings.TrimSpace(label)
	if !ok || label == "" {
		return gas.Entry{}, merry.Errorf("entry %q: expected LABEL=PERCENT", s)
	}
	v, err := gas.ParsePercent(value)
	if err != nil {
		return gas.Entry{}, merry.Errorf("entry %q: %q is not a number", s, value)
	}
	return gas.Entry{Label: label, Percent: v}, nil
}

// parseMeasurement reads "pH=7.1", "Chlorides=250 mg/L" or "Iron=" for a
// parameter left blank.
func parseMeasurement(s string) (check.Measurement, error) {
	name, rest, ok := strings.Cut(s, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return check.Measurement{}, merry.Errorf("measurement %q: expected NAME=VALUE [UNIT]", s)
	}
	m := check.Measurement{Name: name}
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return m, nil
	}
	v, err := gas.ParsePercent(fields[0])
	if err != nil {
		return check.Measurement{}, merry.Errorf("measurement %q: %q is not a number", s, fields[0])
	}
	m.Value = &v
	m.Unit = strings.Join(fields[1:], " ")
	return m, nil
}

func parseAll[T any](args []string, parse func(string) (T, error)) ([]T, error) {
	xs := make([]T, 0, len(args))
	for _, a := range args {
		x, err := parse(a)
		if err != nil {
			return nil, err
		}
		xs = append(xs, x)
	}
	return xs, nil
}

// Package report builds the laboratory report of one analysis, renders it
// as PDF and records it in the history.
package report

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"LTSLab/internal/calc/check"
	"LTSLab/internal/calc/gas"
	"LTSLab/internal/repo"

	"github.com/google/uuid"
)

const DefaultObservations = "No observations."

// Lab is one issued laboratory report.
type Lab struct {
	ID           string       `json:"id"`
	Time         time.Time    `json:"time"`
	Operator     string       `json:"operator"`
	Module       string       `json:"module"`
	Title        string       `json:"title"`
	Lines        []check.Line `json:"lines"`
	Gas          *gas.Report  `json:"gas,omitempty"`
	Observations string       `json:"observations"`
}

func New(operator, module string, now time.Time) *Lab {
	return &Lab{
		ID:       uuid.NewString(),
		Time:     now,
		Operator: operator,
		Module:   module,
	}
}

// NewHistory is the history record of lab.
func NewHistory(lab *Lab) repo.History {
	return repo.History{
		Time:     lab.Time,
		Operator: lab.Operator,
		Module:   lab.Module,
		ReportID: lab.ID,
	}
}

func (lab *Lab) observations() string {
	if s := strings.TrimSpace(lab.Observations); s != "" {
		return s
	}
	return DefaultObservations
}

func (lab *Lab) Compliant() bool {
	return check.AllCompliant(lab.Lines)
}

// AlertText is the plain text notification sent when lab has non-compliant
// lines.
func AlertText(lab *Lab) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Non-compliant result: %s\n", lab.Module)
	fmt.Fprintf(&b, "Operator: %s\n", lab.Operator)
	fmt.Fprintf(&b, "Date: %s\n", lab.Time.Format("2006-01-02 15:04"))
	fmt.Fprintf(&b, "Report: %s\n", lab.ID)
	for _, l := range lab.Lines {
		if l.Verdict != check.NonCompliant {
			continue
		}
		fmt.Fprintf(&b, "- %s: %s %s (range %s)\n", l.Name, formatValue(l.Value), l.Unit, formatRange(l.Min, l.Max))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func formatValue(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func formatRange(min, max float64) string {
	return strconv.FormatFloat(min, 'f', -1, 64) + " - " + strconv.FormatFloat(max, 'f', -1, 64)
}

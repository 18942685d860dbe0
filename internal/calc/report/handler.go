package report

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"LTSLab/internal/auth"
	"LTSLab/internal/calc/check"
	"LTSLab/internal/calc/gas"
	"LTSLab/internal/config"
	"LTSLab/internal/notify"
	"LTSLab/internal/pkg/httpio"
	"LTSLab/internal/pkg/textfold"
	"LTSLab/internal/repo"

	"github.com/ansel1/merry"
	"github.com/powerman/structlog"
)

var log = structlog.New(structlog.KeyUnit, "report")

// Input is one analysis submitted for a report. Natural Gas reports may
// carry the composition in Entries instead of measured values.
type Input struct {
	Module       string              `json:"module"`
	Title        string              `json:"title"`
	Measurements []check.Measurement `json:"measurements"`
	Entries      []gas.Entry         `json:"entries"`
	Observations string              `json:"observations"`
}

type Handler struct {
	Config    *config.Config
	Evaluator *check.Evaluator
	Gas       *gas.Service
	Repo      repo.Repository
	Notifier  notify.Notifier
	Now       func() time.Time
}

// Build evaluates input into a lab report issued by operator.
func (h *Handler) Build(operator string, input Input) (*Lab, error) {
	m, ok := h.Config.Module(input.Module)
	if !ok {
		return nil, merry.Here(check.ErrUnknownModule).Append(input.Module)
	}
	now := time.Now
	if h.Now != nil {
		now = h.Now
	}
	lab := New(operator, m.Name, now())
	lab.Title = input.Title
	if lab.Title == "" {
		lab.Title = m.Title
	}
	lab.Observations = input.Observations

	if textfold.Key(m.Name) == textfold.Key(gas.NaturalGasModule) && len(input.Entries) > 0 {
		rep, err := h.Gas.Run(input.Entries)
		if err != nil {
			return nil, err
		}
		lab.Gas = &rep
		lab.Lines = rep.Lines
		return lab, nil
	}
	lines, err := h.Evaluator.Evaluate(m.Name, input.Measurements)
	if err != nil {
		return nil, err
	}
	lab.Lines = lines
	return lab, nil
}

// Issue renders lab, appends its history record and alerts on
// non-compliance. A failed alert does not fail the report.
func (h *Handler) Issue(ctx context.Context, lab *Lab) ([]byte, error) {
	var buf bytes.Buffer
	if err := Render(&buf, lab); err != nil {
		return nil, err
	}
	if _, err := h.Repo.AppendHistory(ctx, NewHistory(lab)); err != nil {
		return nil, merry.Prepend(err, "append history")
	}
	if !lab.Compliant() && h.Notifier != nil {
		if err := h.Notifier.Notify(ctx, AlertText(lab)); err != nil {
			log.PrintErr(err, "report", lab.ID)
		}
	}
	log.Info("report issued", "id", lab.ID, "module", lab.Module, "operator", lab.Operator, "compliant", lab.Compliant())
	return buf.Bytes(), nil
}

func (h *Handler) PDF(w http.ResponseWriter, r *http.Request) {
	var input Input
	if err := httpio.DecodeJSON(r, &input); err != nil {
		httpio.WriteError(w, err)
		return
	}
	lab, err := h.Build(auth.Operator(r.Context()), input)
	if err != nil {
		httpio.WriteError(w, err)
		return
	}
	b, err := h.Issue(r.Context(), lab)
	if err != nil {
		httpio.WriteError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", FileName(lab)))
	w.Header().Set("X-Report-ID", lab.ID)
	_, _ = w.Write(b)
}

// History lists issued reports, newest first. Query: limit, module.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := repo.HistoryFilter{}
	if s := q.Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			httpio.WriteError(w, merry.Errorf("limit: %q is not a number", s).WithHTTPCode(http.StatusBadRequest))
			return
		}
		f.Limit = n
	}
	if s := q.Get("module"); s != "" {
		m, ok := h.Config.Module(s)
		if !ok {
			httpio.WriteError(w, merry.Here(check.ErrUnknownModule).Append(s))
			return
		}
		f.Module = m.Name
	}
	xs, err := h.Repo.ListHistory(r.Context(), f)
	if err != nil {
		httpio.WriteError(w, err)
		return
	}
	httpio.WriteJSON(w, http.StatusOK, xs)
}

// FileName is the default download name of lab.
func FileName(lab *Lab) string {
	return fmt.Sprintf("%s_%s.pdf", textfold.Compact(lab.Module), lab.Time.Format("20060102-1504"))
}

package check

import (
	"net/http"

	"LTSLab/internal/config"
	"LTSLab/internal/pkg/httpio"

	"github.com/gorilla/mux"
)

type Input struct {
	Measurements []Measurement `json:"measurements"`
}

type Result struct {
	Module  string  `json:"module"`
	Lines   []Line  `json:"lines"`
	Summary Summary `json:"summary"`
}

type Handler struct {
	Config    *config.Config
	Evaluator *Evaluator
}

// Modules lists the registry: every module with its ordered parameter
// templates.
func (h *Handler) Modules(w http.ResponseWriter, r *http.Request) {
	httpio.WriteJSON(w, http.StatusOK, h.Config.Modules)
}

func (h *Handler) Check(w http.ResponseWriter, r *http.Request) {
	module := mux.Vars(r)["module"]
	var input Input
	if err := httpio.DecodeJSON(r, &input); err != nil {
		httpio.WriteError(w, err)
		return
	}
	lines, err := h.Evaluator.Evaluate(module, input.Measurements)
	if err != nil {
		httpio.WriteError(w, err)
		return
	}
	m, _ := h.Config.Module(module)
	httpio.WriteJSON(w, http.StatusOK, Result{Module: m.Name, Lines: lines, Summary: Summarize(lines)})
}

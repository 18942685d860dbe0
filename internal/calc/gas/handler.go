package gas

import (
	"net/http"

	"LTSLab/internal/pkg/httpio"
)

type Input struct {
	Entries []Entry `json:"entries"`
}

type Handler struct {
	Service *Service
}

func (h *Handler) Calc(w http.ResponseWriter, r *http.Request) {
	var input Input
	if err := httpio.DecodeJSON(r, &input); err != nil {
		httpio.WriteError(w, err)
		return
	}
	res, err := h.Service.Run(input.Entries)
	if err != nil {
		httpio.WriteError(w, err)
		return
	}
	httpio.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) Batch(w http.ResponseWriter, r *http.Request) {
	var input BatchInput
	if err := httpio.DecodeJSON(r, &input); err != nil {
		httpio.WriteError(w, err)
		return
	}
	res, err := h.Service.CalculateBatch(input)
	if err != nil {
		httpio.WriteError(w, err)
		return
	}
	httpio.WriteJSON(w, http.StatusOK, res)
}

// Components lists the component table with the labels each symbol accepts.
func (h *Handler) Components(w http.ResponseWriter, r *http.Request) {
	httpio.WriteJSON(w, http.StatusOK, h.Service.cfg.Components)
}

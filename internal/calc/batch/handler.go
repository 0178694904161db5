package batch

import (
	"net/http"

	"Flashover/internal/calc/httpio"
	"Flashover/internal/calc/run"
)

type Handler struct {
	Options run.Options
}

func (h *Handler) Run(w http.ResponseWriter, r *http.Request) {
	var in Input
	if !httpio.DecodeJSON(w, r, &in) {
		return
	}
	res, err := Calculate(in, h.Options)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	httpio.JSON(w, http.StatusOK, res)
}

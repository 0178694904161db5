package travelling

import (
	"net/http"

	"Flashover/internal/calc/httpio"
	"Flashover/internal/calc/timestep"
)

type Handler struct {
	MaxIterations int
}

func (h *Handler) Calc(w http.ResponseWriter, r *http.Request) {
	req, ok := httpio.Decode(w, r)
	if !ok {
		return
	}
	res, err := Run(req.Fields, timestep.WithLimit(h.MaxIterations))
	if err != nil {
		httpio.Fail(w, "travelling", err)
		return
	}
	httpio.Respond(w, res, res.Series, req.Rows)
}

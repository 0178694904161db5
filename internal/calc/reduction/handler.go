package reduction

import (
	"net/http"

	"Flashover/internal/calc/httpio"
)

type Handler struct{}

func (h *Handler) Calc(w http.ResponseWriter, r *http.Request) {
	req, ok := httpio.Decode(w, r)
	if !ok {
		return
	}
	res, err := Run(req.Fields)
	if err != nil {
		httpio.Fail(w, "reduction", err)
		return
	}
	httpio.Respond(w, res, nil, 0)
}

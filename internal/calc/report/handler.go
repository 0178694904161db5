package report

import (
	"net/http"

	log "github.com/sirupsen/logrus"

	"Flashover/internal/calc/batch"
	"Flashover/internal/calc/httpio"
	"Flashover/internal/calc/input"
	"Flashover/internal/calc/run"
)

type Input struct {
	Meta
	Calculator run.Calculator `json:"calculator"`
	Fields     input.Fields   `json:"fields"`
	Rows       int            `json:"rows"`
}

type Handler struct {
	Options run.Options
}

// Generate runs one input set and answers its detail report as a PDF.
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	var in Input
	if !httpio.DecodeJSON(w, r, &in) {
		return
	}
	out := run.Run(in.Calculator, in.Fields, h.Options)

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=\"report.pdf\"")
	if err := PDF(w, in.Meta, Entry{Fields: in.Fields, Output: out}, in.Rows); err != nil {
		log.WithError(err).Error("pdf report")
		http.Error(w, "Report generation error", http.StatusInternalServerError)
	}
}

// Export runs a batch and answers the full series as an xlsx workbook.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	var in batch.Input
	if !httpio.DecodeJSON(w, r, &in) {
		return
	}
	res, err := batch.Calculate(in, h.Options)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	entries := Entries(in, res)

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename=\"series.xlsx\"")
	if err := Workbook(w, entries); err != nil {
		log.WithError(err).Error("xlsx export")
		http.Error(w, "Export error", http.StatusInternalServerError)
	}
}

package importer

import (
	"net/http"

	"Flashover/internal/calc/batch"
	"Flashover/internal/calc/httpio"
	"Flashover/internal/calc/run"
)

// MaxUpload bounds an uploaded workbook.
const MaxUpload = 10 << 20

type Handler struct {
	Options run.Options
}

// Workbook imports an uploaded xlsx ("file") and runs every row.
func (h *Handler) Workbook(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxUpload)
	if err := r.ParseMultipartForm(MaxUpload); err != nil {
		http.Error(w, "Invalid upload", http.StatusBadRequest)
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "File required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	items, err := ReadWorkbook(file)
	if err != nil {
		http.Error(w, "Invalid file", http.StatusBadRequest)
		return
	}
	res, err := batch.Calculate(batch.Input{Items: items}, h.Options)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	httpio.JSON(w, http.StatusOK, res)
}

// Package library serves a user's saved input sets.
package library

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"Flashover/internal/auth"
	"Flashover/internal/calc/httpio"
	"Flashover/internal/calc/input"
	"Flashover/internal/calc/run"
	"Flashover/internal/repo"
)

type Handler struct {
	Repo    repo.Repository
	Options run.Options
}

type SaveRequest struct {
	Name       string       `json:"name"`
	Calculator string       `json:"calculator"`
	Fields     input.Fields `json:"fields"`
}

func user(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, ok := auth.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
	}
	return id, ok
}

func setID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func decode(w http.ResponseWriter, r *http.Request) (repo.InputSet, bool) {
	var req SaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return repo.InputSet{}, false
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		http.Error(w, "Name required", http.StatusBadRequest)
		return repo.InputSet{}, false
	}
	c, err := run.ParseCalculator(req.Calculator)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return repo.InputSet{}, false
	}
	if req.Fields == nil {
		req.Fields = input.Fields{}
	}
	return repo.InputSet{Name: req.Name, Calculator: string(c), Fields: req.Fields}, true
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	if errors.Is(err, repo.ErrNotFound) {
		http.Error(w, "Input set not found", http.StatusNotFound)
		return
	}
	log.WithError(err).Error("input sets")
	http.Error(w, "DB error", http.StatusInternalServerError)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := user(w, r)
	if !ok {
		return
	}
	sets, err := h.Repo.ListInputs(r.Context(), userID)
	if err != nil {
		h.fail(w, err)
		return
	}
	httpio.JSON(w, http.StatusOK, sets)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := user(w, r)
	if !ok {
		return
	}
	set, ok := decode(w, r)
	if !ok {
		return
	}
	id, err := h.Repo.SaveInputs(r.Context(), userID, set)
	if err != nil {
		h.fail(w, err)
		return
	}
	set.ID = id
	httpio.JSON(w, http.StatusCreated, set)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := user(w, r)
	if !ok {
		return
	}
	id, ok := setID(w, r)
	if !ok {
		return
	}
	set, err := h.Repo.GetInputs(r.Context(), userID, id)
	if err != nil {
		h.fail(w, err)
		return
	}
	httpio.JSON(w, http.StatusOK, set)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := user(w, r)
	if !ok {
		return
	}
	id, ok := setID(w, r)
	if !ok {
		return
	}
	set, ok := decode(w, r)
	if !ok {
		return
	}
	set.ID = id
	if err := h.Repo.UpdateInputs(r.Context(), userID, set); err != nil {
		h.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := user(w, r)
	if !ok {
		return
	}
	id, ok := setID(w, r)
	if !ok {
		return
	}
	if err := h.Repo.DeleteInputs(r.Context(), userID, id); err != nil {
		h.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Run computes a saved set. The optional "rows" query parameter bounds
// the returned series.
func (h *Handler) Run(w http.ResponseWriter, r *http.Request) {
	userID, ok := user(w, r)
	if !ok {
		return
	}
	id, ok := setID(w, r)
	if !ok {
		return
	}
	set, err := h.Repo.GetInputs(r.Context(), userID, id)
	if err != nil {
		h.fail(w, err)
		return
	}
	rows, _ := strconv.Atoi(r.URL.Query().Get("rows"))

	out := run.Run(run.Calculator(set.Calculator), set.Fields, h.Options)
	if !out.Outcome.Computed() {
		httpio.JSON(w, http.StatusUnprocessableEntity, out)
		return
	}
	httpio.Respond(w, out, out.Series, rows)
}

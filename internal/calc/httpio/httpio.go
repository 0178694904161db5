// Package httpio holds the request and response shapes shared by the
// calculator handlers.
package httpio

import (
	"bytes"
	"encoding/json"
	"net/http"

	log "github.com/sirupsen/logrus"

	"Flashover/internal/calc/input"
	"Flashover/internal/calc/series"
)

// MaxBody bounds every JSON request body.
const MaxBody = 1 << 20

// Request is the body every calculator endpoint accepts.
type Request struct {
	Fields input.Fields `json:"fields"`
	Rows   int          `json:"rows"`
}

// Response carries a computed result and a decimated view of its series.
type Response struct {
	Result any            `json:"result"`
	Series *series.Series `json:"series,omitempty"`
}

// Failure is the structured "could not compute" body.
type Failure struct {
	Outcome series.Outcome `json:"outcome"`
	Message string         `json:"message"`
}

// Decode reads a Request, answering 400 itself when the body is unusable.
func Decode(w http.ResponseWriter, r *http.Request) (Request, bool) {
	var req Request
	ok := DecodeJSON(w, r, &req)
	return req, ok
}

// DecodeJSON reads at most MaxBody bytes of JSON into v, answering 400
// itself when the body is unusable or too large.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return false
	}
	return true
}

// JSON encodes v before writing the header so an unencodable value
// becomes a 500 rather than a truncated 200.
func JSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		log.WithError(err).Error("encode response")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(buf.Bytes()); err != nil {
		log.WithError(err).Warn("write response")
	}
}

// Fail answers 422 with the outcome the error maps to.
func Fail(w http.ResponseWriter, calculator string, err error) {
	f := Failure{Outcome: series.Classify(err), Message: series.Message(err)}
	log.WithFields(log.Fields{
		"calculator": calculator,
		"outcome":    f.Outcome,
	}).Info(err.Error())
	JSON(w, http.StatusUnprocessableEntity, f)
}

// Respond answers 200 with result and s decimated to rows.
func Respond(w http.ResponseWriter, result any, s *series.Series, rows int) {
	resp := Response{Result: result}
	if s != nil {
		resp.Series = s.Decimate(rows)
	}
	JSON(w, http.StatusOK, resp)
}

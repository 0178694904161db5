package report

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"Flashover/internal/calc/batch"
	"Flashover/internal/calc/httpio"
	"Flashover/internal/calc/input"
	"Flashover/internal/calc/run"
)

func steelFields() input.Fields {
	return input.Fields{"duration": "3600", "time_step": "30", "section_factor": "200"}
}

func TestPDF(t *testing.T) {
	f := steelFields()
	out := run.Run(run.Steel, f, run.Options{})

	var buf bytes.Buffer
	require.NoError(t, PDF(&buf, Meta{Project: "Atrium", Author: "QA"}, Entry{Fields: f, Output: out}, 20))
	require.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestPDFOfFailedRun(t *testing.T) {
	out := run.Run(run.Steel, input.Fields{"duration": "3600"}, run.Options{})
	var buf bytes.Buffer
	require.NoError(t, PDF(&buf, Meta{}, Entry{Output: out}, 0))
	require.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestWorkbook(t *testing.T) {
	ok := run.Run(run.Steel, steelFields(), run.Options{})
	bad := run.Run(run.Growth, input.Fields{}, run.Options{})
	static := run.Run(run.Flame, input.Fields{"hrr": "1000", "hrr_density": "250"}, run.Options{})

	var buf bytes.Buffer
	require.NoError(t, Workbook(&buf, []Entry{{Name: "beam", Output: ok}, {Output: bad}, {Output: static}}))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	require.Equal(t, []string{"Summary", "1 steel"}, f.GetSheetList())

	rows, err := f.GetRows("1 steel")
	require.NoError(t, err)
	require.Equal(t, "t_s", rows[0][0])
	require.Len(t, rows, ok.Series.Len()+1)

	summary, err := f.GetRows("Summary")
	require.NoError(t, err)
	require.Equal(t, "beam", summary[1][0])
	var sawFailure bool
	for _, r := range summary {
		if len(r) > 2 && r[0] == "run 2" {
			sawFailure = true
			require.Equal(t, "invalid_input", r[2])
		}
	}
	require.True(t, sawFailure)
}

func TestHandlers(t *testing.T) {
	body, _ := json.Marshal(map[string]any{"title": "Steel", "calculator": "steel", "fields": steelFields()})
	rec := httptest.NewRecorder()
	(&Handler{}).Generate(rec, httptest.NewRequest(http.MethodPost, "/api/tools/report/pdf", bytes.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))

	body, _ = json.Marshal(batch.Input{Items: []batch.Item{{Name: "a", Calculator: run.Steel, Fields: steelFields()}}})
	rec = httptest.NewRecorder()
	(&Handler{}).Export(rec, httptest.NewRequest(http.MethodPost, "/api/tools/export/xlsx", bytes.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code)
	f, err := excelize.OpenReader(rec.Body)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	rec = httptest.NewRecorder()
	(&Handler{}).Export(rec, httptest.NewRequest(http.MethodPost, "/api/tools/export/xlsx", bytes.NewReader([]byte(`{}`))))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlersBoundBody(t *testing.T) {
	big := map[string]any{"title": strings.Repeat("x", httpio.MaxBody), "calculator": "steel", "fields": steelFields()}
	body, _ := json.Marshal(big)
	rec := httptest.NewRecorder()
	(&Handler{}).Generate(rec, httptest.NewRequest(http.MethodPost, "/api/tools/report/pdf", bytes.NewReader(body)))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	(&Handler{}).Export(rec, httptest.NewRequest(http.MethodPost, "/api/tools/export/xlsx", bytes.NewReader(body)))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

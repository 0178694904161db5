// Package report renders run outputs as a PDF detail report or an xlsx
// workbook.
package report

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/phpdave11/gofpdf"
	"github.com/xuri/excelize/v2"

	"Flashover/internal/calc/batch"
	"Flashover/internal/calc/input"
	"Flashover/internal/calc/run"
	"Flashover/internal/calc/series"
)

// Meta is the title block of a report.
type Meta struct {
	Project string `json:"project"`
	Author  string `json:"author"`
	Title   string `json:"title"`
}

// Entry is one run to report on.
type Entry struct {
	Name   string
	Fields input.Fields
	Output run.Output
}

// Entries pairs the items of a batch with their outputs.
func Entries(in batch.Input, res batch.Result) []Entry {
	entries := make([]Entry, 0, len(res.Results))
	for i, it := range res.Results {
		entries = append(entries, Entry{Name: it.Name, Fields: in.Items[i].Fields, Output: it.Output})
	}
	return entries
}

// DefaultPDFRows bounds the series table of a detail report.
const DefaultPDFRows = 40

func num(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}

// PDF writes a detail report of e to w.
func PDF(w io.Writer, meta Meta, e Entry, rows int) error {
	if meta.Title == "" {
		meta.Title = "Fire Engineering Report"
	}
	if rows <= 0 {
		rows = DefaultPDFRows
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, tr(meta.Title))
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 6, tr(fmt.Sprintf("Project: %s", meta.Project)))
	pdf.Ln(6)
	pdf.Cell(0, 6, tr(fmt.Sprintf("Author: %s", meta.Author)))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Date: %s", time.Now().Format("2006-01-02")))
	pdf.Ln(6)
	pdf.Cell(0, 6, tr(fmt.Sprintf("Calculator: %s    Outcome: %s", e.Output.Calculator, e.Output.Outcome)))
	pdf.Ln(10)

	section := func(title string) {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Cell(0, 8, title)
		pdf.Ln(8)
		pdf.SetFont("Helvetica", "", 10)
	}
	pair := func(k, v string) {
		pdf.CellFormat(70, 6, tr(k), "1", 0, "L", false, 0, "")
		pdf.CellFormat(60, 6, tr(v), "1", 1, "R", false, 0, "")
	}

	if len(e.Fields) > 0 {
		section("Inputs")
		for _, k := range e.Fields.Keys() {
			pair(k, e.Fields[k])
		}
		pdf.Ln(4)
	}
	if len(e.Output.DefaultsApplied) > 0 {
		section("Defaults applied")
		for _, d := range e.Output.DefaultsApplied {
			pdf.Cell(0, 6, d)
			pdf.Ln(6)
		}
		pdf.Ln(4)
	}
	if sum := e.Output.Summary(); len(sum) > 0 {
		section("Results")
		for _, p := range sum {
			pair(p.Label, num(p.Value))
		}
		pdf.Ln(4)
	}

	section("Notes")
	pdf.MultiCell(0, 6, tr(e.Output.Notes()), "", "L", false)

	if s := e.Output.Series; s.Len() > 0 {
		pdf.AddPage()
		section("Time series")
		seriesTable(pdf, tr, s.Decimate(rows))
	}
	return pdf.Output(w)
}

func seriesTable(pdf *gofpdf.Fpdf, tr func(string) string, s *series.Series) {
	width := 190.0 / float64(len(s.Columns)+1)
	pdf.SetFont("Helvetica", "B", 7)
	pdf.CellFormat(width, 6, "t (s)", "1", 0, "C", false, 0, "")
	for _, c := range s.Columns {
		pdf.CellFormat(width, 6, tr(c), "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Helvetica", "", 7)
	for _, r := range s.Records {
		pdf.CellFormat(width, 5, num(r.T), "1", 0, "R", false, 0, "")
		for _, v := range r.Values {
			pdf.CellFormat(width, 5, num(v), "1", 0, "R", false, 0, "")
		}
		pdf.Ln(-1)
	}
}

// Workbook writes a summary sheet listing every entry and one sheet holding
// the full series of each entry that has one.
func Workbook(w io.Writer, entries []Entry) error {
	f := excelize.NewFile()
	defer f.Close()

	const summary = "Summary"
	if err := f.SetSheetName("Sheet1", summary); err != nil {
		return err
	}
	if err := f.SetSheetRow(summary, "A1", &[]any{"name", "calculator", "outcome", "result", "value", "message"}); err != nil {
		return err
	}

	row := 2
	for i, e := range entries {
		name := e.Name
		if name == "" {
			name = fmt.Sprintf("run %d", i+1)
		}
		head := []any{name, string(e.Output.Calculator), string(e.Output.Outcome)}
		sum := e.Output.Summary()
		if len(sum) == 0 {
			if err := f.SetSheetRow(summary, cell(1, row), &[]any{head[0], head[1], head[2], "", "", e.Output.Message}); err != nil {
				return err
			}
			row++
		}
		for _, p := range sum {
			if err := f.SetSheetRow(summary, cell(1, row), &[]any{head[0], head[1], head[2], p.Label, p.Value}); err != nil {
				return err
			}
			row++
		}

		if e.Output.Series.Len() == 0 {
			continue
		}
		sheet := fmt.Sprintf("%d %s", i+1, e.Output.Calculator)
		if _, err := f.NewSheet(sheet); err != nil {
			return err
		}
		if err := writeSeries(f, sheet, e.Output.Series); err != nil {
			return err
		}
	}
	return f.Write(w)
}

func writeSeries(f *excelize.File, sheet string, s *series.Series) error {
	header := make([]any, 0, len(s.Columns)+1)
	header = append(header, "t_s")
	for _, c := range s.Columns {
		header = append(header, c)
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	sw := make([]any, len(s.Columns)+1)
	for i, r := range s.Records {
		sw[0] = r.T
		for j, v := range r.Values {
			sw[j+1] = v
		}
		if err := f.SetSheetRow(sheet, cell(1, i+2), &sw); err != nil {
			return err
		}
	}
	return nil
}

func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

// Package importer reads batches of input sets from xlsx workbooks and ini
// files.
package importer

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
	"gopkg.in/ini.v1"

	"Flashover/internal/calc/batch"
	"Flashover/internal/calc/input"
	"Flashover/internal/calc/run"
)

var ErrNoRows = errors.New("importer: no input rows")

const (
	colName       = "name"
	colCalculator = "calculator"
)

// ReadWorkbook reads every sheet of an xlsx workbook. The first row of a
// sheet holds field names; each following row is one input set. A
// "calculator" column selects the calculator per row, otherwise the sheet
// name must be a calculator name.
func ReadWorkbook(r io.Reader) ([]batch.Item, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("importer: %w", err)
	}
	defer f.Close()

	var items []batch.Item
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("importer: sheet %s: %w", sheet, err)
		}
		items = append(items, sheetItems(sheet, rows)...)
	}
	if len(items) == 0 {
		return nil, ErrNoRows
	}
	return items, nil
}

func sheetItems(sheet string, rows [][]string) []batch.Item {
	if len(rows) < 2 {
		return nil
	}
	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = strings.ToLower(strings.TrimSpace(h))
	}

	var items []batch.Item
	for i, row := range rows[1:] {
		item := batch.Item{
			Name:       fmt.Sprintf("%s!%d", sheet, i+2),
			Calculator: run.Calculator(strings.ToLower(sheet)),
			Fields:     input.Fields{},
		}
		blank := true
		for j, cell := range row {
			cell = strings.TrimSpace(cell)
			if j >= len(header) || header[j] == "" || cell == "" {
				continue
			}
			blank = false
			switch header[j] {
			case colName:
				item.Name = cell
			case colCalculator:
				item.Calculator = run.Calculator(strings.ToLower(cell))
			default:
				item.Fields[header[j]] = cell
			}
		}
		if !blank {
			items = append(items, item)
		}
	}
	return items
}

// ReadINI reads one input set per section. The "calculator" key selects the
// calculator; the other keys are fields.
func ReadINI(source any) ([]batch.Item, error) {
	file, err := ini.Load(source)
	if err != nil {
		return nil, fmt.Errorf("importer: %w", err)
	}
	var items []batch.Item
	for _, sec := range file.Sections() {
		if sec.Name() == ini.DefaultSection && len(sec.Keys()) == 0 {
			continue
		}
		item := batch.Item{
			Name:       sec.Name(),
			Calculator: run.Calculator(sec.Key(colCalculator).MustString(sec.Name())),
			Fields:     input.Fields{},
		}
		for _, k := range sec.Keys() {
			if k.Name() != colCalculator {
				item.Fields[k.Name()] = k.String()
			}
		}
		items = append(items, item)
	}
	if len(items) == 0 {
		return nil, ErrNoRows
	}
	return items, nil
}

// Package batch runs a list of named input sets.
package batch

import (
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"Flashover/internal/calc/input"
	"Flashover/internal/calc/run"
	"Flashover/internal/calc/series"
)

// MaxItems bounds the input sets of one batch.
const MaxItems = 200

var (
	ErrEmpty   = errors.New("batch: no items")
	ErrTooMany = fmt.Errorf("batch: more than %d items", MaxItems)
)

// Item is one input set.
type Item struct {
	Name       string         `json:"name"`
	Calculator run.Calculator `json:"calculator"`
	Fields     input.Fields   `json:"fields"`
}

type Input struct {
	Items []Item `json:"items"`
}

// ItemResult pairs an item with its output.
type ItemResult struct {
	Name   string     `json:"name"`
	Output run.Output `json:"output"`
}

type Result struct {
	Results  []ItemResult           `json:"results"`
	Outcomes map[series.Outcome]int `json:"outcomes"`
}

// Computed counts the items that produced numbers.
func (r Result) Computed() int {
	n := 0
	for _, it := range r.Results {
		if it.Output.Outcome.Computed() {
			n++
		}
	}
	return n
}

// Calculate runs every item in order. An item that cannot be computed does
// not stop the batch; its output says why.
func Calculate(in Input, opts run.Options) (Result, error) {
	if len(in.Items) == 0 {
		return Result{}, ErrEmpty
	}
	if len(in.Items) > MaxItems {
		return Result{}, ErrTooMany
	}
	out := Result{
		Results:  make([]ItemResult, 0, len(in.Items)),
		Outcomes: make(map[series.Outcome]int),
	}
	for _, item := range in.Items {
		o := run.Run(item.Calculator, item.Fields, opts)
		out.Results = append(out.Results, ItemResult{Name: item.Name, Output: o})
		out.Outcomes[o.Outcome]++
	}
	log.WithFields(log.Fields{
		"items":    len(in.Items),
		"computed": out.Computed(),
	}).Info("batch finished")
	return out, nil
}

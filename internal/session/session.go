// Package session owns calculator windows. A Workspace is created for one
// client and disposed with it; each Window keeps its own inputs and latest
// run, so nothing about a window outlives it.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"Flashover/internal/calc/input"
	"Flashover/internal/calc/run"
	"Flashover/internal/calc/series"
)

var (
	ErrNoWindow = errors.New("session: no such window")
	ErrClosed   = errors.New("session: workspace closed")
)

// Window is one open calculator.
type Window struct {
	ID         uuid.UUID
	Calculator run.Calculator
	Opened     time.Time

	mu     sync.Mutex
	fields input.Fields
	last   *run.Output
	runs   int
}

// Run computes the window's calculator with f. The previous result is
// replaced wholesale, including when the new run fails.
func (w *Window) Run(f input.Fields, opts run.Options) run.Output {
	out := run.Run(w.Calculator, f, opts)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.fields = copyFields(f)
	w.last = &out
	w.runs++
	return out
}

// FinalResult returns the latest output without recomputing it.
func (w *Window) FinalResult() (run.Output, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.last == nil {
		return run.Output{}, false
	}
	return *w.last, true
}

// Series returns the latest run's series decimated to rows, or nil.
func (w *Window) Series(rows int) *series.Series {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.last == nil || w.last.Series == nil {
		return nil
	}
	return w.last.Series.Decimate(rows)
}

// Fields returns a copy of the inputs of the latest run.
func (w *Window) Fields() input.Fields {
	w.mu.Lock()
	defer w.mu.Unlock()
	return copyFields(w.fields)
}

// Runs counts the runs made in this window.
func (w *Window) Runs() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.runs
}

func copyFields(f input.Fields) input.Fields {
	if f == nil {
		return nil
	}
	out := make(input.Fields, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// Workspace is the set of windows of one client.
type Workspace struct {
	Options run.Options

	mu      sync.Mutex
	windows map[uuid.UUID]*Window
	order   []uuid.UUID
	closed  bool
}

func NewWorkspace(opts run.Options) *Workspace {
	return &Workspace{Options: opts, windows: make(map[uuid.UUID]*Window)}
}

// Open creates a window for c.
func (ws *Workspace) Open(c run.Calculator) (*Window, error) {
	if _, err := run.ParseCalculator(string(c)); err != nil {
		return nil, err
	}
	ws.mu.Lock()
	defer ws.mu.Unlock()
	if ws.closed {
		return nil, ErrClosed
	}
	w := &Window{ID: uuid.New(), Calculator: c, Opened: time.Now()}
	ws.windows[w.ID] = w
	ws.order = append(ws.order, w.ID)
	log.WithFields(log.Fields{"window": w.ID, "calculator": c}).Debug("window opened")
	return w, nil
}

// Window looks a window up.
func (ws *Workspace) Window(id uuid.UUID) (*Window, error) {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	w, ok := ws.windows[id]
	if !ok {
		return nil, ErrNoWindow
	}
	return w, nil
}

// Run runs the window id with the workspace options.
func (ws *Workspace) Run(id uuid.UUID, f input.Fields) (run.Output, error) {
	w, err := ws.Window(id)
	if err != nil {
		return run.Output{}, err
	}
	return w.Run(f, ws.Options), nil
}

// Close disposes of a window and its results.
func (ws *Workspace) Close(id uuid.UUID) error {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	if _, ok := ws.windows[id]; !ok {
		return ErrNoWindow
	}
	delete(ws.windows, id)
	for i, o := range ws.order {
		if o == id {
			ws.order = append(ws.order[:i], ws.order[i+1:]...)
			break
		}
	}
	log.WithField("window", id).Debug("window closed")
	return nil
}

// Windows lists open windows in opening order.
func (ws *Workspace) Windows() []*Window {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	out := make([]*Window, 0, len(ws.order))
	for _, id := range ws.order {
		out = append(out, ws.windows[id])
	}
	return out
}

// Dispose closes every window. Later Opens fail with ErrClosed.
func (ws *Workspace) Dispose() {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	n := len(ws.windows)
	ws.windows = make(map[uuid.UUID]*Window)
	ws.order = nil
	ws.closed = true
	log.WithField("windows", n).Debug("workspace disposed")
}

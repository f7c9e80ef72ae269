package indicator

import (
	"log/slog"
	"sync"
)

// Indicator is the "generating" modal shown while a submission is outstanding.
type Indicator interface {
	SetVisible(visible bool)
}

type Func func(visible bool)

func (f Func) SetVisible(visible bool) {
	f(visible)
}

type multi []Indicator

func (m multi) SetVisible(visible bool) {
	for _, ind := range m {
		ind.SetVisible(visible)
	}
}

func Multi(indicators ...Indicator) Indicator {
	return multi(indicators)
}

// Recorder keeps the visibility state and the sequence of changes to it.
type Recorder struct {
	mu          sync.Mutex
	visible     bool
	calls       int
	transitions []bool
}

func (r *Recorder) SetVisible(visible bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.calls++
	if visible != r.visible {
		r.visible = visible
		r.transitions = append(r.transitions, visible)
	}
}

func (r *Recorder) Visible() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.visible
}

// Calls is the number of SetVisible calls, including ones that did not change
// the state.
func (r *Recorder) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

func (r *Recorder) Transitions() []bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]bool(nil), r.transitions...)
}

type Logger struct {
	mu      sync.Mutex
	visible bool
}

func (l *Logger) SetVisible(visible bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if visible == l.visible {
		return
	}
	l.visible = visible
	if visible {
		slog.Info("generation in progress, showing indicator")
	} else {
		slog.Debug("hiding generation indicator")
	}
}

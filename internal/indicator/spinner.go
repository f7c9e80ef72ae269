package indicator

import (
	"io"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"
)

// Spinner renders the indicator as a terminal spinner while it is visible.
type Spinner struct {
	w           io.Writer
	description string
	refresh     time.Duration

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

func NewSpinner(w io.Writer, description string) *Spinner {
	return &Spinner{w: w, description: description, refresh: 100 * time.Millisecond}
}

func (s *Spinner) SetVisible(visible bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if visible {
		if s.stop != nil {
			return
		}
		s.stop = make(chan struct{})
		s.done = make(chan struct{})
		go s.spin(s.stop, s.done)
		return
	}

	if s.stop == nil {
		return
	}
	close(s.stop)
	<-s.done
	s.stop, s.done = nil, nil
}

func (s *Spinner) spin(stop, done chan struct{}) {
	defer close(done)

	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(s.w),
		progressbar.OptionSetDescription(s.description),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetElapsedTime(true),
		progressbar.OptionClearOnFinish(),
	)

	ticker := time.NewTicker(s.refresh)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			_ = bar.Finish()
			return
		case <-ticker.C:
			_ = bar.Add(1)
		}
	}
}

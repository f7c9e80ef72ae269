package indicator_test

import (
	"bytes"
	"slide-generator/internal/indicator"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRecorder(t *testing.T) {
	var r indicator.Recorder
	assert.False(t, r.Visible())

	r.SetVisible(true)
	r.SetVisible(true)
	r.SetVisible(false)

	assert.False(t, r.Visible())
	assert.Equal(t, 3, r.Calls())
	assert.Equal(t, []bool{true, false}, r.Transitions())
}

func TestMulti(t *testing.T) {
	var a, b indicator.Recorder
	var seen []bool
	m := indicator.Multi(&a, &b, indicator.Func(func(v bool) { seen = append(seen, v) }))

	m.SetVisible(true)
	assert.True(t, a.Visible())
	assert.True(t, b.Visible())

	m.SetVisible(false)
	assert.False(t, a.Visible())
	assert.Equal(t, []bool{true, false}, seen)
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Len()
}

func TestSpinner(t *testing.T) {
	out := &syncBuffer{}
	s := indicator.NewSpinner(out, "generating")

	// Hiding a spinner that was never shown is a no-op.
	s.SetVisible(false)

	s.SetVisible(true)
	s.SetVisible(true)
	time.Sleep(300 * time.Millisecond)
	s.SetVisible(false)

	assert.Greater(t, out.Len(), 0)

	// It can be shown again after being hidden.
	s.SetVisible(true)
	s.SetVisible(false)
}

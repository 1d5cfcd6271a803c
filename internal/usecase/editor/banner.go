package editor

import (
	"sync"
	"time"
)

// Banner is a self-expiring error message. Each Show arms one timer; a new
// Show cancels and re-arms it. Expiry of an old timer never clears a newer
// message.
type Banner struct {
	// emitMu orders onChange calls; it is taken before mu, never after.
	emitMu   sync.Mutex
	mu       sync.Mutex
	msg      string
	gen      uint64
	timer    *time.Timer
	window   time.Duration
	onChange func(msg string)
}

func NewBanner(window time.Duration, onChange func(msg string)) *Banner {
	if onChange == nil {
		onChange = func(string) {}
	}
	return &Banner{window: window, onChange: onChange}
}

func (b *Banner) Show(msg string) {
	if msg == "" {
		return
	}
	b.mu.Lock()
	if b.timer != nil {
		b.timer.Stop()
	}
	b.gen++
	gen := b.gen
	b.msg = msg
	b.timer = time.AfterFunc(b.window, func() { b.expire(gen) })
	b.mu.Unlock()
	b.emit(gen, msg)
}

func (b *Banner) expire(gen uint64) {
	b.mu.Lock()
	if gen != b.gen || b.msg == "" {
		b.mu.Unlock()
		return
	}
	b.msg = ""
	b.timer = nil
	b.mu.Unlock()
	b.emit(gen, "")
}

// Clear drops the current message and its timer.
func (b *Banner) Clear() {
	b.mu.Lock()
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	b.gen++
	gen := b.gen
	had := b.msg != ""
	b.msg = ""
	b.mu.Unlock()
	if had {
		b.emit(gen, "")
	}
}

// emit delivers msg only if no newer Show or Clear happened since gen was
// taken, so listeners never see an older message after a newer one.
func (b *Banner) emit(gen uint64, msg string) {
	b.emitMu.Lock()
	defer b.emitMu.Unlock()
	b.mu.Lock()
	current := gen == b.gen
	b.mu.Unlock()
	if current {
		b.onChange(msg)
	}
}

func (b *Banner) Message() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.msg
}

// Package notify carries transient UI notifications as data. Rendering is
// the subscriber's problem; services only emit events here.
package notify

import (
	"sync"
	"time"
)

// Toast is the broadcast state of the notification banner. Show flips back
// to false automatically after the clear delay.
type Toast struct {
	Show    bool   `json:"show"`
	Message string `json:"message"`
}

// Toaster broadcasts Toast values to subscribers and owns the auto-clear
// timer, so no subscriber has to run one.
type Toaster struct {
	mu      sync.Mutex
	delay   time.Duration
	current Toast
	subs    map[int]func(Toast)
	nextSub int
	timer   *time.Timer
}

// NewToaster builds a Toaster clearing after delay (3s in production).
func NewToaster(delay time.Duration) *Toaster {
	return &Toaster{
		delay: delay,
		subs:  make(map[int]func(Toast)),
	}
}

// Show publishes the message and schedules the clear. A second Show before
// the clear fires restarts the timer.
func (t *Toaster) Show(message string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.timer != nil {
		t.timer.Stop()
	}
	t.setLocked(Toast{Show: true, Message: message})
	t.timer = time.AfterFunc(t.delay, t.clear)
}

func (t *Toaster) clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.setLocked(Toast{})
}

// Current returns the present toast state.
func (t *Toaster) Current() Toast {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current
}

// Subscribe delivers the current state immediately and every change until
// cancelled.
func (t *Toaster) Subscribe(fn func(Toast)) (cancel func()) {
	t.mu.Lock()
	id := t.nextSub
	t.nextSub++
	t.subs[id] = fn
	fn(t.current)
	t.mu.Unlock()

	return func() {
		t.mu.Lock()
		delete(t.subs, id)
		t.mu.Unlock()
	}
}

func (t *Toaster) setLocked(toast Toast) {
	t.current = toast
	for _, fn := range t.subs {
		fn(toast)
	}
}

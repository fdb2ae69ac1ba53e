package timers

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// Stat is a read-only view of one timer
type Stat struct {
	Name       string    `json:"name" yaml:"name"`
	StartedAt  time.Time `json:"started_at" yaml:"started_at"`
	DurationMS int64     `json:"duration_ms" yaml:"duration_ms"`
	Running    bool      `json:"running" yaml:"running"`
}

// Option configures a Registry
type Option func(*Registry)

// WithClock replaces the clock used to start and end timers
func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		r.now = now
	}
}

// Registry owns a set of named timers.
//
// Registry is not safe for concurrent use; wrap it in Locked when timers are
// shared between goroutines.
type Registry struct {
	timers map[string]*Timer
	now    func() time.Time
}

// NewRegistry creates a registry holding one running timer under name
func NewRegistry(name string, opts ...Option) *Registry {
	r := &Registry{
		timers: make(map[string]*Timer),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.Add(name)
	return r
}

// Add starts a timer under name. An existing timer with the same name is
// replaced and its state is lost.
func (r *Registry) Add(name string) {
	r.timers[name] = newTimer(r.now)
}

// AddStrict starts a timer under name unless one already exists
func (r *Registry) AddStrict(name string) error {
	if _, ok := r.timers[name]; ok {
		return fmt.Errorf("%w: %q", ErrTimerExists, name)
	}
	r.Add(name)
	return nil
}

// End stops the named timer and returns its duration in milliseconds
func (r *Registry) End(name string) (int64, error) {
	t, ok := r.timers[name]
	if !ok {
		return Unknown, notFound(name)
	}
	t.End()
	return t.Milliseconds(), nil
}

// Duration returns the named timer's duration in milliseconds. Running
// timers report the time elapsed so far.
func (r *Registry) Duration(name string) (int64, error) {
	t, ok := r.timers[name]
	if !ok {
		return Unknown, notFound(name)
	}
	return t.Milliseconds(), nil
}

// Rate returns quantity per second over the named timer's duration,
// truncated to an integer. A zero duration counts as one millisecond.
func (r *Registry) Rate(name string, quantity int64) (int64, error) {
	t, ok := r.timers[name]
	if !ok {
		return Unknown, notFound(name)
	}
	return RateOf(quantity, t.Milliseconds())
}

// maxQuantity is the largest quantity whose per-second scaling fits in int64
const maxQuantity = math.MaxInt64 / 1000

// RateOf returns quantity per second over ms milliseconds. A zero duration
// counts as one millisecond.
func RateOf(quantity, ms int64) (int64, error) {
	if quantity < 0 {
		return Unknown, fmt.Errorf("%w: %d", ErrNegativeQuantity, quantity)
	}
	if quantity > maxQuantity {
		return Unknown, fmt.Errorf("%w: %d exceeds %d", ErrQuantityTooLarge, quantity, int64(maxQuantity))
	}
	if ms <= 0 {
		ms = 1
	}
	return quantity * 1000 / ms, nil
}

// Timer returns the named timer
func (r *Registry) Timer(name string) (*Timer, bool) {
	t, ok := r.timers[name]
	return t, ok
}

// Has reports whether a timer is registered under name
func (r *Registry) Has(name string) bool {
	_, ok := r.timers[name]
	return ok
}

// Remove deletes the named timer, reporting whether it existed
func (r *Registry) Remove(name string) bool {
	if _, ok := r.timers[name]; !ok {
		return false
	}
	delete(r.timers, name)
	return true
}

// Clear removes every timer
func (r *Registry) Clear() {
	r.timers = make(map[string]*Timer)
}

// Len returns the number of registered timers
func (r *Registry) Len() int {
	return len(r.timers)
}

// Names returns the registered timer names in sorted order
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.timers))
	for name := range r.timers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Stats returns a view of every timer, sorted by name
func (r *Registry) Stats() []Stat {
	stats := make([]Stat, 0, len(r.timers))
	for _, name := range r.Names() {
		stats = append(stats, statOf(name, r.timers[name]))
	}
	return stats
}

func statOf(name string, t *Timer) Stat {
	return Stat{
		Name:       name,
		StartedAt:  t.StartedAt(),
		DurationMS: t.Milliseconds(),
		Running:    t.Running(),
	}
}

package timers

import "sync"

// Locked guards a Registry with a mutex so handlers running on different
// goroutines can share it.
type Locked struct {
	mu  sync.RWMutex
	reg *Registry
}

// NewLocked creates a synchronized registry seeded with one timer
func NewLocked(name string, opts ...Option) *Locked {
	return &Locked{reg: NewRegistry(name, opts...)}
}

// Add starts (or replaces) the named timer
func (l *Locked) Add(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.reg.Add(name)
}

// AddStrict starts the named timer unless it exists
func (l *Locked) AddStrict(name string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.reg.AddStrict(name)
}

// AddStat starts (or replaces) the named timer and returns its view, read
// under the same lock.
func (l *Locked) AddStat(name string) Stat {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.reg.Add(name)
	return statOf(name, l.reg.timers[name])
}

// AddStrictStat is AddStat that refuses an existing name
func (l *Locked) AddStrictStat(name string) (Stat, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.reg.AddStrict(name); err != nil {
		return Stat{}, err
	}
	return statOf(name, l.reg.timers[name]), nil
}

// EndStat stops the named timer and returns its view, read under the same
// lock.
func (l *Locked) EndStat(name string) (Stat, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, err := l.reg.End(name); err != nil {
		return Stat{}, err
	}
	return statOf(name, l.reg.timers[name]), nil
}

// End stops the named timer
func (l *Locked) End(name string) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.reg.End(name)
}

// Duration returns the named timer's duration in milliseconds
func (l *Locked) Duration(name string) (int64, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.reg.Duration(name)
}

// Rate returns quantity per second for the named timer
func (l *Locked) Rate(name string, quantity int64) (int64, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.reg.Rate(name, quantity)
}

// Lookup returns a snapshot of one timer
func (l *Locked) Lookup(name string) (Stat, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	t, ok := l.reg.Timer(name)
	if !ok {
		return Stat{}, false
	}
	return statOf(name, t), true
}

// Has reports whether the named timer exists
func (l *Locked) Has(name string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.reg.Has(name)
}

// Remove deletes the named timer
func (l *Locked) Remove(name string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.reg.Remove(name)
}

// Clear removes every timer
func (l *Locked) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.reg.Clear()
}

// Len returns the number of timers
func (l *Locked) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.reg.Len()
}

// Stats returns a view of every timer
func (l *Locked) Stats() []Stat {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.reg.Stats()
}

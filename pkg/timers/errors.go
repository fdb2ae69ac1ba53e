package timers

import (
	"errors"
	"fmt"
)

// Unknown is the legacy sentinel for "no timer with that name".
const Unknown int64 = -1

var (
	// ErrTimerNotFound is returned when no timer is registered under a name
	ErrTimerNotFound = errors.New("timer not found")
	// ErrTimerExists is returned by AddStrict when the name is taken
	ErrTimerExists = errors.New("timer already exists")
	// ErrNegativeQuantity is returned by Rate for quantities below zero
	ErrNegativeQuantity = errors.New("quantity must not be negative")
	// ErrQuantityTooLarge is returned by Rate when quantity*1000 overflows int64
	ErrQuantityTooLarge = errors.New("quantity too large")
)

func notFound(name string) error {
	return fmt.Errorf("%w: %q", ErrTimerNotFound, name)
}

// OrUnknown collapses a (value, error) result into the sentinel form:
// any error becomes Unknown.
//
//	ms := timers.OrUnknown(reg.Duration("job"))
func OrUnknown(v int64, err error) int64 {
	if err != nil {
		return Unknown
	}
	return v
}

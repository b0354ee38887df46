package simulation

import (
	"errors"
	"fmt"
)

// ErrNumericalInstability is returned when a tick produces a non-finite position
var ErrNumericalInstability = errors.New("numerical instability")

// InstabilityError names the body that diverged
type InstabilityError struct {
	Key  string
	Tick uint64
}

func (e *InstabilityError) Error() string {
	return fmt.Sprintf("node %q diverged at tick %d: %v", e.Key, e.Tick, ErrNumericalInstability)
}

func (e *InstabilityError) Unwrap() error {
	return ErrNumericalInstability
}

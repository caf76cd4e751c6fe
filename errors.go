package dlpc1438

import (
	"errors"
	"fmt"
)

var (
	// ErrOutOfBounds is returned when an image or offset addresses pixels
	// outside the 2560x1440 frame store.
	ErrOutOfBounds = errors.New("dlpc1438: out of bounds")

	// ErrInvalidParameter is returned when a value is outside the range the
	// register protocol can carry. Nothing is sent to the device.
	ErrInvalidParameter = errors.New("dlpc1438: invalid parameter")

	// ErrPreconditionFailed is returned when an operation requires a signal
	// line in a state it is not in, e.g. exposing before SYS_RDY.
	ErrPreconditionFailed = errors.New("dlpc1438: precondition failed")

	// ErrTimeout is returned when a bounded wait exceeds its deadline.
	ErrTimeout = errors.New("dlpc1438: timeout")

	// ErrHalted is returned by every operation after Halt.
	ErrHalted = errors.New("dlpc1438: halted")
)

// TransportError reports a failure of the I²C, SPI or GPIO layer.
type TransportError struct {
	Bus string // "i2c", "spi" or "gpio"
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("dlpc1438: %s %s: %v", e.Bus, e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// BringupReason classifies a BringupError.
type BringupReason int

const (
	// BringupTimeout means HOST_IRQ or the register interface did not come up
	// before the configured deadline.
	BringupTimeout BringupReason = iota
	// BringupUnexpectedState means the device answered in a way the power-up
	// handshake does not allow, or the bus failed.
	BringupUnexpectedState
)

func (r BringupReason) String() string {
	switch r {
	case BringupTimeout:
		return "timeout"
	case BringupUnexpectedState:
		return "unexpected state"
	default:
		return fmt.Sprintf("BringupReason(%d)", int(r))
	}
}

// BringupError is returned by New when the power-up handshake fails. No
// device handle exists after a BringupError.
type BringupError struct {
	Reason BringupReason
	Err    error
}

func (e *BringupError) Error() string {
	return fmt.Sprintf("dlpc1438: bring-up failed (%s): %v", e.Reason, e.Err)
}

func (e *BringupError) Unwrap() error { return e.Err }

// ModeSwitchError is returned when the mode register accepted a write but
// reads back a different value.
type ModeSwitchError struct {
	Requested Mode
	Observed  byte
}

func (e *ModeSwitchError) Error() string {
	return fmt.Sprintf("dlpc1438: mode switch to %s failed: device reports 0x%02X", e.Requested, e.Observed)
}

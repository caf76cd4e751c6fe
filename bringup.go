package dlpc1438

import (
	"errors"
	"fmt"
	"time"

	"periph.io/x/conn/v3/gpio"
)

// Outcome is the result of the power-up handshake.
type Outcome int

const (
	// AlreadyRunning means the ASIC answered on I²C without being powered up
	// by the driver.
	AlreadyRunning Outcome = iota
	// ColdStarted means the driver asserted PROJ_ON and waited for HOST_IRQ
	// and the register interface.
	ColdStarted
)

func (o Outcome) String() string {
	switch o {
	case AlreadyRunning:
		return "AlreadyRunning"
	case ColdStarted:
		return "ColdStarted"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// bringUp runs the power-on handshake (DLPC1438 datasheet figure 9-1) and
// records the active buffer.
func (d *Dev) bringUp() error {
	t := d.timing
	if err := d.pins.setPower(gpio.Low); err != nil {
		return &BringupError{Reason: BringupUnexpectedState, Err: err}
	}
	time.Sleep(t.PowerSettle)

	err := d.regs.probe()
	switch {
	case err == nil:
		d.outcome = AlreadyRunning
		d.log.Warn("device already powered on, no power-up needed")
	case isAbsent(err):
		if err := d.coldStart(); err != nil {
			return err
		}
		d.outcome = ColdStarted
	default:
		return &BringupError{Reason: BringupUnexpectedState, Err: err}
	}

	active, err := d.readActiveBuffer()
	if err != nil {
		return &BringupError{Reason: BringupUnexpectedState, Err: err}
	}
	d.active = active
	d.log.WithField("outcome", d.outcome).WithField("active", active).Info("device ready")
	return nil
}

func (d *Dev) coldStart() error {
	t := d.timing
	d.log.Info("asserting PROJ_ON")
	if err := d.pins.setPower(gpio.High); err != nil {
		return &BringupError{Reason: BringupUnexpectedState, Err: err}
	}

	start := time.Now()
	if err := waitLevel(d.pins.HostIRQ, gpio.High, t.HostReadyTimeout, t.HostReadyPoll, nil); err != nil {
		return &BringupError{Reason: BringupTimeout, Err: err}
	}
	d.log.WithField("elapsed", time.Since(start)).Info("HOST_IRQ high")

	time.Sleep(t.RegisterSettle)
	err := poll(t.RegisterReadyTimeout, t.RegisterReadyPoll, func() (bool, error) {
		err := d.regs.probe()
		switch {
		case err == nil:
			return true, nil
		case isAbsent(err):
			return false, nil
		default:
			return false, err
		}
	})
	if errors.Is(err, ErrTimeout) {
		return &BringupError{
			Reason: BringupTimeout,
			Err:    fmt.Errorf("dlpc1438: register interface not ready within %s: %w", t.RegisterReadyTimeout, ErrTimeout),
		}
	}
	if err != nil {
		return &BringupError{Reason: BringupUnexpectedState, Err: err}
	}
	return nil
}

package dlpc1438

import (
	"fmt"
	"time"

	"periph.io/x/conn/v3/gpio"
)

// Mode is an operating mode of the DLPC1438. The only valid values are
// Standby, ExternalPrint and TestPattern.
type Mode struct {
	value byte
}

var (
	// Standby parks the DMD; most external print settings are reset.
	Standby = Mode{0xFF}
	// ExternalPrint displays the FPGA frame buffers on request.
	ExternalPrint = Mode{0x06}
	// TestPattern displays the built-in test pattern generator.
	TestPattern = Mode{0x01}
)

// Value returns the byte written to the mode select register.
func (m Mode) Value() byte {
	return m.value
}

func (m Mode) valid() bool {
	return m == Standby || m == ExternalPrint || m == TestPattern
}

func (m Mode) String() string {
	switch m {
	case Standby:
		return "Standby"
	case ExternalPrint:
		return "ExternalPrint"
	case TestPattern:
		return "TestPattern"
	default:
		return fmt.Sprintf("Mode(0x%02X)", m.value)
	}
}

// Mode returns the last mode set by SwitchMode. It is the zero Mode until
// the first successful switch.
func (d *Dev) Mode() Mode {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.mode
}

// ReportedMode reads the mode register as the device reports it.
func (d *Dev) ReportedMode() (byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.halted {
		return 0, ErrHalted
	}
	return d.regs.read8(regModeRead)
}

// SwitchMode writes the mode select register, waits for the ASIC to settle
// and verifies the read-back. A mismatch returns *ModeSwitchError and is not
// retried.
//
// Switching to ExternalPrint additionally blocks until SYS_RDY goes high,
// bounded by Timing.SysReadyTimeout. Call ConfigureExternalPrint first.
func (d *Dev) SwitchMode(m Mode) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.halted {
		return ErrHalted
	}
	if !m.valid() {
		return fmt.Errorf("%w: %s", ErrInvalidParameter, m)
	}

	log := d.log.WithField("mode", m)
	if cur, err := d.regs.read8(regModeRead); err == nil {
		log = log.WithField("from", fmt.Sprintf("0x%02X", cur))
	}
	log.Info("switching mode")

	if err := d.regs.write(regModeSelect, m.value); err != nil {
		return err
	}
	time.Sleep(d.timing.ModeSettle)

	got, err := d.regs.read8(regModeRead)
	if err != nil {
		return err
	}
	if got != m.value {
		return &ModeSwitchError{Requested: m, Observed: got}
	}
	d.mode = m

	if m == ExternalPrint {
		return d.waitSysReady()
	}
	return nil
}

// waitSysReady blocks until the FPGA video pipeline reports ready.
func (d *Dev) waitSysReady() error {
	t := d.timing
	start := time.Now()
	return waitLevel(d.pins.SysRdy, gpio.High, t.SysReadyTimeout, t.SysReadyPoll, func() {
		d.log.WithField("elapsed", time.Since(start).Round(time.Millisecond)).Info("waiting for SYS_RDY")
	})
}

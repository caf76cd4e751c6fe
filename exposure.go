package dlpc1438

import (
	"encoding/binary"
	"fmt"
	"time"

	"periph.io/x/conn/v3/gpio"
)

const (
	exposureStart byte = 0x00
	exposureStop  byte = 0x01
)

// ExposeIndefinitely makes StartExposure run until StopExposure.
const ExposeIndefinitely = -1

// VideoFrameRate is the approximate rate of the FPGA parallel video output.
const VideoFrameRate = 60

// ExposureDuration converts a frame count to the approximate exposure time.
func ExposureDuration(frames int) time.Duration {
	return time.Duration(frames) * time.Second / VideoFrameRate
}

// ExposureStatus reports the PRINT_ACTIVE line after a start or stop command.
//
// The exposure register does not read back reliably, so PRINT_ACTIVE is the
// only liveness signal. A mismatch is reported here and logged, not returned
// as an error.
type ExposureStatus struct {
	PrintActive gpio.Level
	Confirmed   bool // PRINT_ACTIVE had the expected level
}

// StartExposure exposes the active buffer for exposed frames after dark
// frames of settling. exposed may be ExposeIndefinitely.
//
// Five dark frames are advisable right after Swap; zero is fine when enough
// time has passed since.
func (d *Dev) StartExposure(exposed, dark int) (ExposureStatus, error) {
	if dark < 0 || dark > 0xFFFF {
		return ExposureStatus{}, fmt.Errorf("%w: dark frames %d not in [0, 65535]", ErrInvalidParameter, dark)
	}
	if exposed != ExposeIndefinitely && (exposed < 0 || exposed > 0xFFFF) {
		return ExposureStatus{}, fmt.Errorf("%w: exposed frames %d not in [0, 65535] or -1", ErrInvalidParameter, exposed)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.halted {
		return ExposureStatus{}, ErrHalted
	}
	if d.pins.SysRdy.Read() != gpio.High {
		return ExposureStatus{}, fmt.Errorf("%w: SYS_RDY is low", ErrPreconditionFailed)
	}

	cmd := exposureCommand(exposed, dark)
	if exposed == ExposeIndefinitely {
		d.log.Info("starting exposure until stopped")
	} else {
		d.log.WithField("frames", exposed).WithField("duration", ExposureDuration(exposed)).Info("starting exposure")
	}
	if err := d.regs.write(regExposure, cmd...); err != nil {
		return ExposureStatus{}, err
	}
	return d.checkPrintActive(d.timing.StartSettle, gpio.High), nil
}

// StopExposure ends a running exposure.
func (d *Dev) StopExposure() (ExposureStatus, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.halted {
		return ExposureStatus{}, ErrHalted
	}
	d.log.Info("stopping exposure")
	if err := d.regs.write(regExposure, exposureStop, 0, 0, 0, 0); err != nil {
		return ExposureStatus{}, err
	}
	return d.checkPrintActive(d.timing.StopSettle, gpio.Low), nil
}

// exposureCommand encodes the exposure control register for a start.
func exposureCommand(exposed, dark int) []byte {
	b := make([]byte, 5)
	b[0] = exposureStart
	binary.LittleEndian.PutUint16(b[1:], uint16(dark))
	if exposed == ExposeIndefinitely {
		binary.LittleEndian.PutUint16(b[3:], 0xFFFF)
	} else {
		binary.LittleEndian.PutUint16(b[3:], uint16(exposed))
	}
	return b
}

func (d *Dev) checkPrintActive(settle time.Duration, want gpio.Level) ExposureStatus {
	time.Sleep(settle)
	l := d.pins.PrintActive.Read()
	s := ExposureStatus{PrintActive: l, Confirmed: l == want}
	if !s.Confirmed {
		d.log.WithField("want", want).WithField("got", l).Warn("PRINT_ACTIVE did not follow exposure command")
	}
	return s
}

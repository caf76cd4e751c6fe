package dlpc1438

import (
	"encoding/binary"
	"fmt"

	"github.com/sirupsen/logrus"
)

// MaxLEDPWM is the largest LED PWM value; the register is 10 bits wide.
const MaxLEDPWM = 1023

// Fixed register contents for external print mode.
var (
	// Linear transfer function, LED 1 selected.
	externalPrintConfig = []byte{0x00, 0x01}
	// Actuator orientation as shipped on the reference light engine board.
	actuatorOrientation = []byte{0x03, 0x16, 0x11, 0x06, 0x01}
)

// ConfigureExternalPrint writes the registers external print mode depends
// on: FPGA control, transfer function and LED select, LED PWM, parallel video
// enable (unless skipVideo) and actuator orientation.
//
// Entering Standby resets some of these, so call it right before switching
// to ExternalPrint. skipVideo keeps the FPGA parallel video interface off,
// which FPGASelfTest requires.
func (d *Dev) ConfigureExternalPrint(pwm uint16, skipVideo bool) error {
	if pwm > MaxLEDPWM {
		return fmt.Errorf("%w: LED PWM %d exceeds %d", ErrInvalidParameter, pwm, MaxLEDPWM)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.halted {
		return ErrHalted
	}

	d.log.WithField("pwm", fmt.Sprintf("%.1f%%", float64(pwm)*100/MaxLEDPWM)).Info("configuring external print")

	// No CRC error injection or calculation, no FPGA reset.
	if err := d.writeAndReport(regFPGAControl, regFPGAControlRead, "fpga control", 0x00); err != nil {
		return err
	}
	if err := d.writeAndReport(regExternalPrint, regExternalPrintRead, "external print", externalPrintConfig...); err != nil {
		return err
	}
	// PWM for the active LED, the second LED channel unused.
	led := make([]byte, 6)
	binary.LittleEndian.PutUint16(led, pwm)
	if err := d.writeAndReport(regLEDPWM, regLEDPWMRead, "led pwm", led...); err != nil {
		return err
	}
	if !skipVideo {
		if err := d.writeAndReport(regParallelVideo, regParallelVideoRead, "parallel video", 0x01); err != nil {
			return err
		}
	}
	return d.writeAndReport(regActuator, regActuatorRead, "actuator orientation", actuatorOrientation...)
}

// writeAndReport writes data to reg and logs what readReg returns. The
// read-back is not compared.
func (d *Dev) writeAndReport(reg, readReg byte, name string, data ...byte) error {
	if err := d.regs.write(reg, data...); err != nil {
		return err
	}
	got, err := d.regs.read(readReg, len(data))
	if err != nil {
		return err
	}
	d.log.WithFields(logrus.Fields{
		"register": name,
		"wrote":    fmt.Sprintf("% X", data),
		"read":     fmt.Sprintf("% X", got),
	}).Debug("register read-back")
	return nil
}

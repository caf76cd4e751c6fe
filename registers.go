package dlpc1438

import (
	"fmt"

	"periph.io/x/conn/v3/i2c"
)

// I2CAddr is the fixed I²C address of the DLPC1438.
const I2CAddr uint16 = 0x1B

// Register sub-addresses. Writes and read-backs use distinct addresses.
const (
	regTestPattern         byte = 0x16
	regModeSelect          byte = 0x05
	regModeRead            byte = 0x06
	regLEDPWM              byte = 0x54
	regLEDPWMRead          byte = 0x55
	regFPGAVersion         byte = 0x64
	regFPGATestPattern     byte = 0x67
	regFPGATestPatternRead byte = 0x68
	regFPGAStatus          byte = 0x6F
	regExternalPrint       byte = 0xA8
	regExternalPrintRead   byte = 0xA9
	regExposure            byte = 0xC1
	regParallelVideo       byte = 0xC3
	regParallelVideoRead   byte = 0xC4
	regBufferSelect        byte = 0xC5
	regBufferRead          byte = 0xC6
	regActuator            byte = 0xC8
	regActuatorRead        byte = 0xC9
	regFPGAControl         byte = 0xCA
	regFPGAControlRead     byte = 0xCB
)

// regs is the register link: block reads and writes by sub-address against
// the device at I2CAddr.
type regs struct {
	d *i2c.Dev
}

func newRegs(b i2c.Bus) regs {
	return regs{d: &i2c.Dev{Bus: b, Addr: I2CAddr}}
}

// probe performs a one byte read without a sub-address. It fails when the
// device does not acknowledge its address.
func (r regs) probe() error {
	var b [1]byte
	if err := r.d.Tx(nil, b[:]); err != nil {
		return &TransportError{Bus: "i2c", Op: "probe", Err: err}
	}
	return nil
}

// read reads n bytes starting at register reg.
func (r regs) read(reg byte, n int) ([]byte, error) {
	buf := make([]byte, n)
	if err := r.d.Tx([]byte{reg}, buf); err != nil {
		return nil, &TransportError{Bus: "i2c", Op: fmt.Sprintf("read 0x%02X", reg), Err: err}
	}
	return buf, nil
}

// read8 reads a single byte register.
func (r regs) read8(reg byte) (byte, error) {
	b, err := r.read(reg, 1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// write writes data to register reg in one transaction.
func (r regs) write(reg byte, data ...byte) error {
	w := make([]byte, 0, len(data)+1)
	w = append(w, reg)
	w = append(w, data...)
	if err := r.d.Tx(w, nil); err != nil {
		return &TransportError{Bus: "i2c", Op: fmt.Sprintf("write 0x%02X", reg), Err: err}
	}
	return nil
}

package dlpc1438

import (
	"encoding/binary"

	"periph.io/x/conn/v3/gpio"
)

// FPGA test pattern written by FPGASelfTest.
var fpgaTestPattern = []byte{0x03, 0x0B}

// FPGAStatus is the result of FPGASelfTest.
type FPGAStatus struct {
	Version       uint32
	Status        uint16
	ParallelVideo byte
	TestPattern   []byte // read back after writing the test pattern

	// SPIReady is the SPI_RDY line, or false when the pin is not wired.
	SPIReady bool
}

// FPGASelfTest reads the FPGA identification and status registers and makes
// the FPGA output its own test pattern.
//
// It does not work with the parallel video interface enabled; call
// ConfigureExternalPrint with skipVideo first.
func (d *Dev) FPGASelfTest() (FPGAStatus, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.halted {
		return FPGAStatus{}, ErrHalted
	}

	var s FPGAStatus
	v, err := d.regs.read(regFPGAVersion, 4)
	if err != nil {
		return s, err
	}
	s.Version = binary.LittleEndian.Uint32(v)
	st, err := d.regs.read(regFPGAStatus, 2)
	if err != nil {
		return s, err
	}
	s.Status = binary.LittleEndian.Uint16(st)
	if s.ParallelVideo, err = d.regs.read8(regParallelVideoRead); err != nil {
		return s, err
	}
	if err := d.regs.write(regFPGATestPattern, fpgaTestPattern...); err != nil {
		return s, err
	}
	if s.TestPattern, err = d.regs.read(regFPGATestPatternRead, len(fpgaTestPattern)); err != nil {
		return s, err
	}
	if d.pins.SPIRdy != nil {
		s.SPIReady = d.pins.SPIRdy.Read() == gpio.High
		if !s.SPIReady {
			d.log.Warn("FPGA not ready to receive SPI data")
		}
	}

	d.log.WithField("version", s.Version).WithField("status", s.Status).Info("FPGA self test")
	return s, nil
}

// SetTestPattern writes the test pattern / floodlight register. params are
// sent unchanged; their layout is described in the DLPC1438 programmer's
// guide. The pattern is shown in TestPattern mode.
func (d *Dev) SetTestPattern(params []byte) error {
	if len(params) == 0 {
		return ErrInvalidParameter
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.halted {
		return ErrHalted
	}
	return d.regs.write(regTestPattern, params...)
}

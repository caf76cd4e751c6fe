package dlpc1438

import "fmt"

// BufferIndex identifies one of the two FPGA frame buffers. One is active
// (shown on the DMD) while the other receives SPI data.
type BufferIndex uint8

const (
	Buffer0 BufferIndex = 0
	Buffer1 BufferIndex = 1
)

// Other returns the buffer that is not b.
func (b BufferIndex) Other() BufferIndex {
	if b == Buffer0 {
		return Buffer1
	}
	return Buffer0
}

func parseBufferIndex(v byte) (BufferIndex, error) {
	switch v {
	case 0:
		return Buffer0, nil
	case 1:
		return Buffer1, nil
	default:
		return 0, fmt.Errorf("dlpc1438: buffer register reports 0x%02X", v)
	}
}

func (d *Dev) readActiveBuffer() (BufferIndex, error) {
	v, err := d.regs.read8(regBufferRead)
	if err != nil {
		return 0, err
	}
	return parseBufferIndex(v)
}

// ActiveBuffer returns the buffer currently shown on the DMD.
func (d *Dev) ActiveBuffer() BufferIndex {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.active
}

// ReceivingBuffer returns the buffer Load writes to.
func (d *Dev) ReceivingBuffer() BufferIndex {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.active.Other()
}

// Swap makes the receiving buffer active and returns its index. Data loaded
// since the last swap becomes visible to the exposure path.
//
// The read-back of the buffer register is logged only: the FPGA may take a
// frame to follow.
func (d *Dev) Swap() (BufferIndex, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.halted {
		return 0, ErrHalted
	}
	return d.swap()
}

func (d *Dev) swap() (BufferIndex, error) {
	next := d.active.Other()
	if err := d.regs.write(regBufferSelect, byte(next)); err != nil {
		return 0, err
	}
	d.active = next
	if v, err := d.regs.read8(regBufferRead); err != nil {
		d.log.WithError(err).Debug("buffer read-back failed")
	} else {
		d.log.WithField("active", next).WithField("reported", v).Debug("swapped buffers")
	}
	return next, nil
}

package dlpc1438

import (
	"errors"
	"fmt"
	"time"

	"periph.io/x/conn/v3/gpio"
)

// Pins are the handshake lines between the host and the projector engine.
//
// ProjOn, HostIRQ, SysRdy and PrintActive are required. SPIRdy is only read
// by FPGASelfTest and may be nil.
type Pins struct {
	ProjOn      gpio.PinOut // PROJ_ON: power enable, driven by the host
	HostIRQ     gpio.PinIn  // HOST_IRQ: ASIC boot completed
	SysRdy      gpio.PinIn  // SYS_RDY: FPGA video pipeline ready
	PrintActive gpio.PinIn  // PRINT_ACTIVE: exposure in progress
	SPIRdy      gpio.PinIn  // SPI_RDY: FPGA ready for pixel data (optional)
}

func (p *Pins) validate() error {
	switch {
	case p.ProjOn == nil:
		return fmt.Errorf("%w: PROJ_ON pin is required", ErrInvalidParameter)
	case p.HostIRQ == nil:
		return fmt.Errorf("%w: HOST_IRQ pin is required", ErrInvalidParameter)
	case p.SysRdy == nil:
		return fmt.Errorf("%w: SYS_RDY pin is required", ErrInvalidParameter)
	case p.PrintActive == nil:
		return fmt.Errorf("%w: PRINT_ACTIVE pin is required", ErrInvalidParameter)
	}
	return nil
}

func (p *Pins) inputs() []gpio.PinIn {
	in := []gpio.PinIn{p.HostIRQ, p.SysRdy, p.PrintActive}
	if p.SPIRdy != nil {
		in = append(in, p.SPIRdy)
	}
	return in
}

// configure sets every line to its fixed direction. PROJ_ON is left low.
func (p *Pins) configure() error {
	if err := p.ProjOn.Out(gpio.Low); err != nil {
		return &TransportError{Bus: "gpio", Op: "configure " + p.ProjOn.Name(), Err: err}
	}
	for _, in := range p.inputs() {
		if err := in.In(gpio.PullNoChange, gpio.NoEdge); err != nil {
			return &TransportError{Bus: "gpio", Op: "configure " + in.Name(), Err: err}
		}
	}
	return nil
}

// setPower drives PROJ_ON.
func (p *Pins) setPower(l gpio.Level) error {
	if err := p.ProjOn.Out(l); err != nil {
		return &TransportError{Bus: "gpio", Op: "write " + p.ProjOn.Name(), Err: err}
	}
	return nil
}

// release returns every line to the platform. PROJ_ON is turned back into an
// input when the pin supports it, so the host stops driving it.
func (p *Pins) release() error {
	var errs []error
	if in, ok := p.ProjOn.(gpio.PinIn); ok {
		if err := in.In(gpio.PullNoChange, gpio.NoEdge); err != nil {
			errs = append(errs, err)
		}
	}
	if err := p.ProjOn.Halt(); err != nil {
		errs = append(errs, err)
	}
	for _, in := range p.inputs() {
		if err := in.Halt(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return &TransportError{Bus: "gpio", Op: "release", Err: err}
	}
	return nil
}

// poll calls cond every interval until it reports true, returns an error, or
// timeout elapses. The condition is always evaluated at least once.
func poll(timeout, interval time.Duration, cond func() (bool, error)) error {
	deadline := time.Now().Add(timeout)
	for {
		ok, err := cond()
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		if !time.Now().Before(deadline) {
			return ErrTimeout
		}
		time.Sleep(interval)
	}
}

// waitLevel blocks until pin reads want. progress, if not nil, is called
// before every sleep.
func waitLevel(pin gpio.PinIn, want gpio.Level, timeout, interval time.Duration, progress func()) error {
	err := poll(timeout, interval, func() (bool, error) {
		if pin.Read() == want {
			return true, nil
		}
		if progress != nil {
			progress()
		}
		return false, nil
	})
	if errors.Is(err, ErrTimeout) {
		return fmt.Errorf("dlpc1438: %s did not go %s within %s: %w", pin.Name(), want, timeout, ErrTimeout)
	}
	return err
}

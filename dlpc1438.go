package dlpc1438

import (
	"errors"
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/devices/v3/dlpc1438/image8bit"
)

// Frame store dimensions in pixels.
const (
	FrameWidth  = 2560
	FrameHeight = 1440
)

// Timing holds the handshake delays and poll deadlines. Zero fields take the
// defaults listed next to them.
type Timing struct {
	PowerSettle          time.Duration // 1s: PROJ_ON low before the first probe
	HostReadyTimeout     time.Duration // 30s
	HostReadyPoll        time.Duration // 10ms
	RegisterSettle       time.Duration // 1s: after HOST_IRQ before probing again
	RegisterReadyTimeout time.Duration // 30s
	RegisterReadyPoll    time.Duration // 1s
	ModeSettle           time.Duration // 400ms: between mode write and read-back
	SysReadyTimeout      time.Duration // 30s
	SysReadyPoll         time.Duration // 300ms
	StartSettle          time.Duration // 20ms: before checking PRINT_ACTIVE after start
	StopSettle           time.Duration // 100ms: before checking PRINT_ACTIVE after stop
}

func (t Timing) withDefaults() Timing {
	def := func(v *time.Duration, d time.Duration) {
		if *v <= 0 {
			*v = d
		}
	}
	def(&t.PowerSettle, time.Second)
	def(&t.HostReadyTimeout, 30*time.Second)
	def(&t.HostReadyPoll, 10*time.Millisecond)
	def(&t.RegisterSettle, time.Second)
	def(&t.RegisterReadyTimeout, 30*time.Second)
	def(&t.RegisterReadyPoll, time.Second)
	def(&t.ModeSettle, 400*time.Millisecond)
	def(&t.SysReadyTimeout, 30*time.Second)
	def(&t.SysReadyPoll, 300*time.Millisecond)
	def(&t.StartSettle, 20*time.Millisecond)
	def(&t.StopSettle, 100*time.Millisecond)
	return t
}

// Opts is the configuration for the DLPC1438.
type Opts struct {
	// SPI clock (default: 50MHz, the FPGA limit) and mode. The zero mode
	// selects Mode3, which the FPGA expects.
	SPIFrequency physic.Frequency
	SPIMode      spi.Mode

	// MaxTxSize bounds every SPI transaction. Default: the connection's
	// MaxTxSize when it reports one, else 4096 (the spidev default).
	MaxTxSize int

	Timing Timing

	// Logger receives progress and diagnostic records. Default: the logrus
	// standard logger.
	Logger logrus.FieldLogger
}

// Dev is a handle to a DLPC1438 light engine.
//
// All methods are serialized; a Dev is safe for use from multiple goroutines
// but only one operation runs against the hardware at a time.
type Dev struct {
	mu sync.Mutex

	regs   regs
	c      spi.Conn
	pins   Pins
	log    logrus.FieldLogger
	timing Timing
	maxTx  int

	outcome Outcome
	mode    Mode
	active  BufferIndex
	halted  bool
}

// New powers up the light engine if needed and returns a handle to it.
//
// The SPI port is connected at opts.SPIFrequency, opts.SPIMode, 8 bits. The
// power-up handshake runs before New returns; on any error the GPIO lines
// are released and no handle is returned.
//
// opts can be nil to use defaults.
func New(b i2c.Bus, p spi.Port, pins Pins, opts *Opts) (*Dev, error) {
	o := Opts{}
	if opts != nil {
		o = *opts
	}
	if o.SPIFrequency == 0 {
		o.SPIFrequency = 50 * physic.MegaHertz
	}
	if o.SPIMode == spi.Mode0 {
		o.SPIMode = spi.Mode3
	}
	if o.MaxTxSize < 0 {
		return nil, fmt.Errorf("%w: MaxTxSize %d", ErrInvalidParameter, o.MaxTxSize)
	}
	if o.Logger == nil {
		o.Logger = logrus.StandardLogger()
	}
	if err := pins.validate(); err != nil {
		return nil, err
	}

	c, err := p.Connect(o.SPIFrequency, o.SPIMode, 8)
	if err != nil {
		return nil, &TransportError{Bus: "spi", Op: "connect", Err: err}
	}

	d := &Dev{
		regs:   newRegs(b),
		c:      c,
		pins:   pins,
		log:    o.Logger.WithField("dev", "dlpc1438"),
		timing: o.Timing.withDefaults(),
		maxTx:  maxTxSize(c, o.MaxTxSize),
	}

	if err := d.pins.configure(); err != nil {
		return nil, errors.Join(err, d.pins.release())
	}
	if err := d.bringUp(); err != nil {
		return nil, errors.Join(err, d.pins.release())
	}
	return d, nil
}

func maxTxSize(c spi.Conn, configured int) int {
	if configured > 0 {
		return configured
	}
	if l, ok := c.(conn.Limits); ok {
		if n := l.MaxTxSize(); n > 0 {
			return n
		}
	}
	return 4096
}

// Outcome reports how the power-up handshake found the device.
func (d *Dev) Outcome() Outcome {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.outcome
}

// MaxTxSize returns the largest SPI transaction the driver issues.
func (d *Dev) MaxTxSize() int {
	return d.maxTx
}

// Load converts img to 8-bit gray, encodes it at pixel offset (x, y) and
// streams it into the receiving buffer. It does not display anything; call
// Swap to expose the data. It returns the buffer written.
//
// Pixels outside img but inside the blocks it is padded to are cleared; see
// Plan for images that fit in a single column block.
func (d *Dev) Load(img image.Image, x, y int) (BufferIndex, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.halted {
		return 0, ErrHalted
	}
	return d.load(image8bit.Convert(img), x, y)
}

func (d *Dev) load(g *image.Gray, x, y int) (BufferIndex, error) {
	frames, err := Encode(g, x, y, d.maxTx)
	if err != nil {
		return 0, err
	}
	target := d.active.Other()
	start := time.Now()
	n := 0
	for i, f := range frames {
		b := f.Bytes()
		if err := d.c.Tx(b, nil); err != nil {
			return 0, &TransportError{Bus: "spi", Op: fmt.Sprintf("transfer %d/%d", i+1, len(frames)), Err: err}
		}
		n += len(b)
	}
	d.log.WithFields(logrus.Fields{
		"buffer":  target,
		"frames":  len(frames),
		"bytes":   n,
		"elapsed": time.Since(start),
	}).Info("loaded pixel data")
	return target, nil
}

// SetBackground fills the receiving buffer with a constant intensity. With
// bothBuffers, the buffers are swapped and the other one is filled too; the
// filled buffer that was receiving first ends up active.
func (d *Dev) SetBackground(intensity uint8, bothBuffers bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.halted {
		return ErrHalted
	}
	bg := image8bit.Uniform(FrameWidth, FrameHeight, intensity)
	if _, err := d.load(bg, 0, 0); err != nil {
		return err
	}
	if !bothBuffers {
		return nil
	}
	if _, err := d.swap(); err != nil {
		return err
	}
	_, err := d.load(bg, 0, 0)
	return err
}

// Halt stops a running exposure and releases the GPIO lines. The device is
// left in its current mode. Every later call returns ErrHalted.
//
// Halt implements conn.Resource.
func (d *Dev) Halt() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.halted {
		return nil
	}
	d.halted = true
	var errs []error
	if d.pins.PrintActive.Read() == gpio.High {
		if err := d.regs.write(regExposure, exposureStop, 0, 0, 0, 0); err != nil {
			errs = append(errs, err)
		}
	}
	if err := d.pins.release(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// String implements conn.Resource.
func (d *Dev) String() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return fmt.Sprintf("dlpc1438.Dev{mode=%s active=%d}", d.mode, d.active)
}

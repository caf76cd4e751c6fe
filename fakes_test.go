package dlpc1438

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

// errNack mimics what periph's sysfs I²C bus returns for an unacknowledged
// address.
var errNack = errors.New("sysfs-i2c: remote I/O error")

type regWrite struct {
	reg  byte
	data []byte
}

// fakeBus is an I²C bus with a DLPC1438-like register file at I2CAddr.
type fakeBus struct {
	mu sync.Mutex

	// regs holds what reads return, by register.
	regs map[byte][]byte
	// echo mirrors writes to a register into its read-back register.
	echo map[byte]byte
	// absent is the number of probes to NACK; negative NACKs forever.
	absent int
	// probeErr, when set, is returned by every probe.
	probeErr error
	// onWrite is called after each register write.
	onWrite func(reg byte, data []byte)

	writes []regWrite
	probes int
}

func newFakeBus() *fakeBus {
	return &fakeBus{
		regs: map[byte][]byte{},
		echo: map[byte]byte{
			regModeSelect:   regModeRead,
			regBufferSelect: regBufferRead,
		},
	}
}

func (b *fakeBus) String() string                   { return "fakeBus" }
func (b *fakeBus) Halt() error                      { return nil }
func (b *fakeBus) SetSpeed(f physic.Frequency) error { return nil }

func (b *fakeBus) Tx(addr uint16, w, r []byte) error {
	b.mu.Lock()
	if addr != I2CAddr {
		b.mu.Unlock()
		return errNack
	}
	switch {
	case len(w) == 0:
		defer b.mu.Unlock()
		b.probes++
		if b.probeErr != nil {
			return b.probeErr
		}
		if b.absent != 0 {
			if b.absent > 0 {
				b.absent--
			}
			return errNack
		}
		for i := range r {
			r[i] = 0
		}
		return nil
	case len(r) == 0:
		reg, data := w[0], append([]byte(nil), w[1:]...)
		b.writes = append(b.writes, regWrite{reg: reg, data: data})
		if rb, ok := b.echo[reg]; ok {
			b.regs[rb] = data
		}
		onWrite := b.onWrite
		b.mu.Unlock()
		if onWrite != nil {
			onWrite(reg, data)
		}
		return nil
	default:
		defer b.mu.Unlock()
		for i := range r {
			r[i] = 0
		}
		copy(r, b.regs[w[0]])
		return nil
	}
}

// writesTo returns the payloads written to reg, in order.
func (b *fakeBus) writesTo(reg byte) [][]byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out [][]byte
	for _, w := range b.writes {
		if w.reg == reg {
			out = append(out, w.data)
		}
	}
	return out
}

func (b *fakeBus) writeCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.writes)
}

// fakeSPI is an SPI port and connection recording every transaction.
type fakeSPI struct {
	mu sync.Mutex

	freq  physic.Frequency
	mode  spi.Mode
	bits  int
	limit int
	err   error

	txs [][]byte
}

func (s *fakeSPI) String() string                      { return "fakeSPI" }
func (s *fakeSPI) LimitSpeed(f physic.Frequency) error { return nil }
func (s *fakeSPI) Duplex() conn.Duplex                 { return conn.Full }
func (s *fakeSPI) MaxTxSize() int                      { return s.limit }

func (s *fakeSPI) Connect(f physic.Frequency, mode spi.Mode, bits int) (spi.Conn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.freq, s.mode, s.bits = f, mode, bits
	return s, nil
}

func (s *fakeSPI) Tx(w, r []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.txs = append(s.txs, append([]byte(nil), w...))
	return nil
}

func (s *fakeSPI) TxPackets(p []spi.Packet) error {
	for _, pkt := range p {
		if err := s.Tx(pkt.W, pkt.R); err != nil {
			return err
		}
	}
	return nil
}

func (s *fakeSPI) transactions() [][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.txs
}

type testPins struct {
	projOn, hostIRQ, sysRdy, printActive, spiRdy *gpiotest.Pin
}

func newTestPins() *testPins {
	return &testPins{
		projOn:      &gpiotest.Pin{N: "PROJ_ON", Num: 5},
		hostIRQ:     &gpiotest.Pin{N: "HOST_IRQ", Num: 19, L: gpio.High},
		sysRdy:      &gpiotest.Pin{N: "SYS_RDY", Num: 6, L: gpio.High},
		printActive: &gpiotest.Pin{N: "PRINT_ACTIVE", Num: 13},
		spiRdy:      &gpiotest.Pin{N: "SPI_RDY", Num: 7, L: gpio.High},
	}
}

func (p *testPins) pins() Pins {
	return Pins{
		ProjOn:      p.projOn,
		HostIRQ:     p.hostIRQ,
		SysRdy:      p.sysRdy,
		PrintActive: p.printActive,
		SPIRdy:      p.spiRdy,
	}
}

// fastTiming keeps every delay short and every deadline small.
var fastTiming = Timing{
	PowerSettle:          time.Microsecond,
	HostReadyTimeout:     20 * time.Millisecond,
	HostReadyPoll:        time.Millisecond,
	RegisterSettle:       time.Microsecond,
	RegisterReadyTimeout: 20 * time.Millisecond,
	RegisterReadyPoll:    time.Millisecond,
	ModeSettle:           time.Microsecond,
	SysReadyTimeout:      20 * time.Millisecond,
	SysReadyPoll:         time.Millisecond,
	StartSettle:          time.Microsecond,
	StopSettle:           time.Microsecond,
}

type testRig struct {
	bus  *fakeBus
	spi  *fakeSPI
	pins *testPins
	log  *test.Hook
	dev  *Dev
}

func newTestOpts(hook **test.Hook) *Opts {
	logger, h := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	*hook = h
	return &Opts{Timing: fastTiming, Logger: logger}
}

// newTestRig brings up a device that is already running.
func newTestRig(t *testing.T) *testRig {
	t.Helper()
	r := &testRig{
		bus:  newFakeBus(),
		spi:  &fakeSPI{limit: 65536},
		pins: newTestPins(),
	}
	d, err := New(r.bus, r.spi, r.pins.pins(), newTestOpts(&r.log))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	r.dev = d
	r.log.Reset()
	return r
}

// hasMessage reports whether a record with msg was logged at level.
func hasMessage(h *test.Hook, level logrus.Level, msg string) bool {
	for _, e := range h.AllEntries() {
		if e.Level == level && e.Message == msg {
			return true
		}
	}
	return false
}

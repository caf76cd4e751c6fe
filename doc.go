// Package dlpc1438 controls a DLPC1438 DMD controller and its companion
// FPGA, the light engine of many resin 3D printers.
//
// The controller is configured over I²C, receives pixel data over SPI into
// one of two FPGA frame buffers, and reports its state on GPIO lines. The
// DMD has 2560×1440 mirrors and shows 8-bit grayscale.
//
// # Hardware Connection
//
//	Engine Pin    → System Pin
//	SDA/SCL       → I²C bus (address 0x1B)
//	SCLK/MOSI/CS  → SPI port, mode 3, up to 50MHz
//	PROJ_ON       → GPIO output (power enable)
//	HOST_IRQ      → GPIO input (controller booted)
//	SYS_RDY       → GPIO input (FPGA video pipeline ready)
//	PRINT_ACTIVE  → GPIO input (exposure in progress)
//	SPI_RDY       → Optional: GPIO input (FPGA accepting pixel data)
//
// # Basic Usage
//
//	package main
//
//	import (
//		"time"
//
//		"periph.io/x/conn/v3/gpio/gpioreg"
//		"periph.io/x/conn/v3/i2c/i2creg"
//		"periph.io/x/conn/v3/spi/spireg"
//		"periph.io/x/devices/v3/dlpc1438"
//		"periph.io/x/devices/v3/dlpc1438/image8bit"
//		"periph.io/x/host/v3"
//	)
//
//	func main() {
//		host.Init()
//
//		bus, _ := i2creg.Open("1")
//		defer bus.Close()
//		port, _ := spireg.Open("SPI0.0")
//		defer port.Close()
//
//		// Powers the engine up unless it is already running.
//		dev, _ := dlpc1438.New(bus, port, dlpc1438.Pins{
//			ProjOn:      gpioreg.ByName("GPIO5"),
//			HostIRQ:     gpioreg.ByName("GPIO19"),
//			SysRdy:      gpioreg.ByName("GPIO6"),
//			PrintActive: gpioreg.ByName("GPIO13"),
//		}, nil)
//		defer dev.Halt()
//
//		dev.ConfigureExternalPrint(1000, false)
//		dev.SwitchMode(dlpc1438.ExternalPrint)
//		dev.SetBackground(0, true)
//
//		img, _ := image8bit.Load("layer.png")
//		dev.Load(img, 0, 0)
//		dev.Swap()
//
//		// 200 frames at 60Hz, about 3.3s.
//		dev.StartExposure(200, 5)
//		time.Sleep(dlpc1438.ExposureDuration(205))
//		dev.StopExposure()
//
//		dev.SwitchMode(dlpc1438.Standby)
//	}
//
// # Frame Buffers
//
// The FPGA holds two frame buffers. One is displayed (active) while the other
// receives pixel data. Load always writes the receiving buffer and Swap
// exchanges the roles, so the next layer can be streamed while the current
// one is exposing:
//
//	dev.Load(next, 0, 0) // while the previous layer exposes
//	dev.StopExposure()
//	dev.Swap()
//	dev.StartExposure(dlpc1438.ExposeIndefinitely, 0)
//
// To change part of the displayed image, swap twice: the displayed data
// returns to the receiving side, is drawn over, and swapped back.
//
// # Partial Updates
//
// Pixel data is addressed in blocks of 128 columns by 2 rows. Load pads the
// image with zero pixels out to block boundaries, so only the blocks it
// covers are rewritten and the rest of the buffer keeps its content. Encode
// and Plan expose the same computation without touching the hardware.
//
// A write must span at least two column blocks. An image whose padded width
// is a single block (128 pixels or less, block aligned) is widened by a zero
// block to its right, or to its left in the last block, and that neighbour
// is cleared too. Keep this in mind when drawing over existing content: a
// 100 pixel wide image at x=0 rewrites columns 0 to 255.
//
// # Transfer Size
//
// Every SPI transaction fits Dev.MaxTxSize. The default comes from the SPI
// connection; on Linux that is the spidev bufsiz module parameter, 4096
// bytes unless raised. Larger transactions mean fewer of them per frame.
//
// # Exposure
//
// StartExposure either runs for a number of 60Hz frames, timed by the
// controller, or until StopExposure with ExposeIndefinitely. PRINT_ACTIVE is
// checked after each command; a mismatch is reported in ExposureStatus and
// logged, it is not an error.
//
// # Errors
//
// Parameter errors wrap ErrInvalidParameter or ErrOutOfBounds and never
// reach the bus. Bus failures are *TransportError, power-up failures
// *BringupError, and a mode the controller did not accept *ModeSwitchError.
// Nothing is retried.
package dlpc1438

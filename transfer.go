package dlpc1438

import (
	"encoding/binary"
	"fmt"
	"image"
)

// The frame store is addressed in blocks of 128 columns and 2 rows.
const (
	BlockWidth  = 128
	BlockHeight = 2

	maxColBlock = FrameWidth/BlockWidth - 1   // 19
	maxRowBlock = FrameHeight/BlockHeight - 1 // 719
)

// SPI write framing.
const (
	opWritePixels = 0x04
	headerSize    = 6 // opcode, 4 address bytes, filler
	lengthSize    = 4 // first frame only
	trailerSize   = 4 // last frame only; CRC placeholder, required even with CRC off

	// FrameOverhead is the largest number of non-pixel bytes in one frame.
	FrameOverhead = headerSize + lengthSize + trailerSize
)

// TileAddress selects the blocks an SPI write covers: column blocks
// ColStart..ColEnd inclusive, starting at row block RowStart.
type TileAddress struct {
	ColStart uint8
	ColEnd   uint8
	RowStart uint16
}

// Validate checks the address against the frame store geometry.
func (a TileAddress) Validate() error {
	if a.ColStart >= a.ColEnd || a.ColEnd > maxColBlock || a.RowStart > maxRowBlock {
		return fmt.Errorf("%w: tile cols %d..%d row %d", ErrOutOfBounds, a.ColStart, a.ColEnd, a.RowStart)
	}
	return nil
}

// Pack returns the 32-bit address word. The top nibble must be all ones.
func (a TileAddress) Pack() uint32 {
	return uint32(a.ColStart) | uint32(a.ColEnd)<<5 | uint32(a.RowStart)<<10 | 0xF<<28
}

// Padding is the number of zero pixels added around an image so it snaps to
// block boundaries.
type Padding struct {
	Left, Right, Top, Bottom int
}

// Layout describes how an image placed at an offset maps onto the frame
// store and how it is split into SPI transactions.
type Layout struct {
	Addr            TileAddress // address of the first frame
	Pad             Padding
	Width, Height   int // padded size in pixels
	RowsPerTransfer int // even; the last transfer may carry fewer
	Transfers       int
}

// Plan computes the layout of a w×h image placed at pixel offset (x, y),
// with no SPI transaction larger than limit bytes.
//
// The address spans at least two column blocks. A padded image that fits in
// a single block is widened by a zero block to its right (to its left at the
// last block), so that neighbouring block is overwritten as well.
func Plan(w, h, x, y, limit int) (Layout, error) {
	if w <= 0 || h <= 0 {
		return Layout{}, fmt.Errorf("%w: empty image %dx%d", ErrOutOfBounds, w, h)
	}
	if w > FrameWidth || h > FrameHeight {
		return Layout{}, fmt.Errorf("%w: image %dx%d larger than %dx%d", ErrOutOfBounds, w, h, FrameWidth, FrameHeight)
	}
	if x < 0 || y < 0 {
		return Layout{}, fmt.Errorf("%w: negative offset (%d,%d)", ErrOutOfBounds, x, y)
	}
	if x >= FrameWidth || y >= FrameHeight {
		return Layout{}, fmt.Errorf("%w: offset (%d,%d) outside %dx%d", ErrOutOfBounds, x, y, FrameWidth, FrameHeight)
	}

	var l Layout
	colStart := x / BlockWidth
	rowStart := y / BlockHeight
	l.Pad.Left = x % BlockWidth
	l.Pad.Top = y % BlockHeight
	l.Pad.Right = (BlockWidth - (l.Pad.Left+w)%BlockWidth) % BlockWidth
	l.Pad.Bottom = (BlockHeight - (l.Pad.Top+h)%BlockHeight) % BlockHeight
	l.Width = l.Pad.Left + w + l.Pad.Right
	l.Height = l.Pad.Top + h + l.Pad.Bottom
	if colStart*BlockWidth+l.Width > FrameWidth || rowStart*BlockHeight+l.Height > FrameHeight {
		return Layout{}, fmt.Errorf("%w: image %dx%d at (%d,%d) exceeds %dx%d", ErrOutOfBounds, w, h, x, y, FrameWidth, FrameHeight)
	}

	// The address needs at least two column blocks; grow into a neighbour.
	colEnd := colStart + l.Width/BlockWidth - 1
	if colEnd == colStart {
		if colEnd < maxColBlock {
			colEnd++
			l.Pad.Right += BlockWidth
		} else {
			colStart--
			l.Pad.Left += BlockWidth
		}
		l.Width += BlockWidth
	}
	l.Addr = TileAddress{ColStart: uint8(colStart), ColEnd: uint8(colEnd), RowStart: uint16(rowStart)}

	rows := (limit - FrameOverhead) / l.Width / BlockHeight * BlockHeight
	if rows < BlockHeight {
		return Layout{}, fmt.Errorf("%w: transfer limit %d cannot carry two %d pixel rows", ErrInvalidParameter, limit, l.Width)
	}
	l.RowsPerTransfer = min(rows, l.Height)
	l.Transfers = (l.Height + l.RowsPerTransfer - 1) / l.RowsPerTransfer
	return l, nil
}

// Frame is one SPI write transaction.
type Frame struct {
	Addr   TileAddress
	First  bool   // carries Length
	Last   bool   // carries the trailer
	Length uint32 // padded pixel count of the whole image, sent on the first frame
	Rows   int    // padded rows in Pix
	Pix    []byte // row-major, padded width pixels per row
}

// Size returns the encoded length of f.
func (f Frame) Size() int {
	n := headerSize + len(f.Pix)
	if f.First {
		n += lengthSize
	}
	if f.Last {
		n += trailerSize
	}
	return n
}

// Bytes returns the wire encoding of f.
func (f Frame) Bytes() []byte {
	b := make([]byte, 0, f.Size())
	b = append(b, opWritePixels)
	b = binary.LittleEndian.AppendUint32(b, f.Addr.Pack())
	b = append(b, 0x00)
	if f.First {
		b = binary.LittleEndian.AppendUint32(b, f.Length)
	}
	b = append(b, f.Pix...)
	if f.Last {
		b = append(b, 0, 0, 0, 0)
	}
	return b
}

// Encode splits img, placed at pixel offset (x, y), into SPI frames no larger
// than limit bytes. Pixels are sent row by row, left to right, zero padded to
// block boundaries.
//
// Encode does no I/O and may run concurrently with device operations.
func Encode(img *image.Gray, x, y, limit int) ([]Frame, error) {
	r := img.Bounds()
	l, err := Plan(r.Dx(), r.Dy(), x, y, limit)
	if err != nil {
		return nil, err
	}
	pix := l.pad(img)

	frames := make([]Frame, 0, l.Transfers)
	for row := 0; row < l.Height; row += l.RowsPerTransfer {
		n := min(l.RowsPerTransfer, l.Height-row)
		f := Frame{
			Addr: l.Addr,
			Rows: n,
			Pix:  pix[row*l.Width : (row+n)*l.Width],
		}
		f.Addr.RowStart += uint16(row / BlockHeight)
		if row == 0 {
			f.First = true
			f.Length = uint32(l.Width * l.Height)
		}
		frames = append(frames, f)
	}
	frames[len(frames)-1].Last = true
	return frames, nil
}

// pad copies img into a zeroed buffer of the padded size.
func (l *Layout) pad(img *image.Gray) []byte {
	r := img.Bounds()
	w := r.Dx()
	buf := make([]byte, l.Width*l.Height)
	for y := 0; y < r.Dy(); y++ {
		src := img.Pix[img.PixOffset(r.Min.X, r.Min.Y+y):]
		copy(buf[(y+l.Pad.Top)*l.Width+l.Pad.Left:], src[:w])
	}
	return buf
}

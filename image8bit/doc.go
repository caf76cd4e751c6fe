// Package image8bit prepares 8-bit grayscale images for the DLPC1438 frame
// store.
//
// The frame store holds one byte per pixel, 0 being dark and 255 full LED
// intensity. image.Gray already has that layout, so this package only deals
// with getting images into it:
//
// - Load: decode a PNG, JPEG, GIF, BMP or TIFF file into an *image.Gray
// - Convert: turn any image.Image into an *image.Gray
// - Invert: make a photographic negative in place
// - Uniform: a constant intensity image, e.g. to clear a buffer
//
// Example usage:
//
//	// Load a mask and use it as a negative
//	img, err := image8bit.Load("layer_0001.png")
//	if err != nil {
//		return err
//	}
//	image8bit.Invert(img)
//
//	// Clear a full frame
//	bg := image8bit.Uniform(2560, 1440, 0)
//
// Rows are kept top to bottom and left to right, which is the order the
// light engine expects on the wire; no transposition is needed.
package image8bit

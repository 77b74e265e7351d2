// Package imaging converts between the sensor's nibble-packed wire image
// format and both an in-memory pixel buffer and PNG files on disk. It is
// the file-I/O and bitmap-conversion collaborator the command and
// workflow layers hand raw bytes to, and back.
package imaging

import (
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"io"

	"github.com/ics-upjs/FPM10FingerprintSensor/protocol"
)

// Rows and Cols are the resolution of the sensor's image buffer.
const (
	Rows = protocol.ImageRows
	Cols = protocol.ImageCols
)

// packedSize is the number of bytes a nibble-packed image occupies on the
// wire: two pixels per byte.
const packedSize = Rows * Cols / 2

// Scan is a decoded 288x256 8-bit grayscale fingerprint image, stored
// row-major with one byte per pixel.
type Scan struct {
	Pixels []byte
}

// NewScan allocates a blank Scan of the sensor's fixed resolution.
func NewScan() Scan {
	return Scan{Pixels: make([]byte, Rows*Cols)}
}

// Pack nibble-packs scan for upload to the sensor: each output byte holds
// two horizontally adjacent pixels, high nibble first, each truncated to
// its high four bits. Pack is Unpack's inverse up to that truncation.
func Pack(scan Scan) ([]byte, error) {
	if len(scan.Pixels) != Rows*Cols {
		return nil, protocol.NewSensorErrorKind(protocol.KindWrongScanSize)
	}

	packed := make([]byte, packedSize)
	for i := 0; i < packedSize; i++ {
		hi := scan.Pixels[2*i]
		lo := scan.Pixels[2*i+1]
		packed[i] = (hi & 0xF0) | (lo >> 4)
	}
	return packed, nil
}

// Unpack expands a nibble-packed image downloaded from the sensor into a
// full Scan: pixel_hi = (b>>4)*16, pixel_lo = (b&0xF)*16.
func Unpack(packed []byte) (Scan, error) {
	if len(packed) != packedSize {
		return Scan{}, protocol.NewSensorErrorKind(protocol.KindWrongScanSize)
	}

	pixels := make([]byte, Rows*Cols)
	for i, b := range packed {
		pixels[2*i] = (b >> 4) * 16
		pixels[2*i+1] = (b & 0x0F) * 16
	}
	return Scan{Pixels: pixels}, nil
}

// EncodePNG writes scan to w as an 8-bit grayscale PNG.
func EncodePNG(w io.Writer, scan Scan) error {
	if len(scan.Pixels) != Rows*Cols {
		return protocol.NewSensorErrorKind(protocol.KindWrongScanSize)
	}

	img := image.NewGray(image.Rect(0, 0, Cols, Rows))
	copy(img.Pix, scan.Pixels)
	return png.Encode(w, img)
}

// DecodePNG reads an image from r and converts it to a Scan. The image
// must be exactly Cols x Rows; anything else is rejected rather than
// resized.
func DecodePNG(r io.Reader) (Scan, error) {
	img, err := png.Decode(r)
	if err != nil {
		return Scan{}, fmt.Errorf("imaging: decode png: %w", err)
	}

	bounds := img.Bounds()
	if bounds.Dx() != Cols || bounds.Dy() != Rows {
		return Scan{}, fmt.Errorf("imaging: expected %dx%d image, got %dx%d", Cols, Rows, bounds.Dx(), bounds.Dy())
	}

	gray := image.NewGray(image.Rect(0, 0, Cols, Rows))
	draw.Draw(gray, gray.Bounds(), img, bounds.Min, draw.Src)
	return Scan{Pixels: gray.Pix}, nil
}

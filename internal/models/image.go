package models

import (
	"fmt"
)

// Image represents a planar floating-point image buffer.
// Channels are stored as contiguous planes rather than interleaved,
// so the red plane of an RGB image occupies Data[0 : Width*Height].
type Image struct {
	// Data is the sample buffer in plane-major order,
	// length Width*Height*Channels
	Data []float64

	// Width is the image width in pixels
	Width int

	// Height is the image height in pixels
	Height int

	// Channels is the number of color planes (1 for grayscale, 3 for RGB)
	Channels int
}

// NewImage allocates a zero-filled planar image with the given dimensions.
// All dimensions must be positive.
func NewImage(width, height, channels int) (*Image, error) {
	if width <= 0 || height <= 0 || channels <= 0 {
		return nil, fmt.Errorf("invalid image dimensions %dx%dx%d", width, height, channels)
	}
	return &Image{
		Data:     make([]float64, width*height*channels),
		Width:    width,
		Height:   height,
		Channels: channels,
	}, nil
}

// Valid reports whether the image dimensions are positive and consistent
// with the buffer length.
func (img *Image) Valid() bool {
	return img != nil && img.Width > 0 && img.Height > 0 && img.Channels > 0 &&
		len(img.Data) == img.Width*img.Height*img.Channels
}

// SameShape reports whether two images share width, height and channel count.
// Images participating in the same computation must have the same shape.
func (img *Image) SameShape(other *Image) bool {
	return other != nil && img != nil &&
		img.Width == other.Width &&
		img.Height == other.Height &&
		img.Channels == other.Channels
}

// Clone returns a deep copy of the image. The denoiser uses this to
// warm-start the working estimate from the noisy input.
func (img *Image) Clone() *Image {
	data := make([]float64, len(img.Data))
	copy(data, img.Data)
	return &Image{
		Data:     data,
		Width:    img.Width,
		Height:   img.Height,
		Channels: img.Channels,
	}
}

// CopyFrom overwrites the image contents with those of src.
// The two images must share the same shape.
func (img *Image) CopyFrom(src *Image) error {
	if !img.SameShape(src) {
		return fmt.Errorf("shape mismatch: %dx%dx%d vs %dx%dx%d",
			img.Width, img.Height, img.Channels,
			src.Width, src.Height, src.Channels)
	}
	copy(img.Data, src.Data)
	return nil
}

// Plane returns the sample slice for channel c, sharing storage with Data.
func (img *Image) Plane(c int) []float64 {
	n := img.Width * img.Height
	return img.Data[c*n : (c+1)*n]
}

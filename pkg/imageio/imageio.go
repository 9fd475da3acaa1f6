// Package imageio converts between on-disk image files and the planar
// floating-point buffers the denoiser works on. PNG and JPEG are handled
// by the standard library; BMP and TIFF support comes from golang.org/x/image.
package imageio

import (
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"tvdenoise/internal/models"
)

// DefaultJpegQuality is used when no quality setting is supplied.
const DefaultJpegQuality = 95

// ReadImage loads an image file and converts it to a planar float64 buffer
// with intensities in [0,1]. Grayscale inputs (including RGB files whose
// channels are identical) produce a single-channel image; everything else
// produces three channels.
func ReadImage(path string) (*models.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image %s: %v", path, err)
	}
	defer file.Close()

	src, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %v", path, err)
	}

	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	rgb, err := models.NewImage(width, height, 3)
	if err != nil {
		return nil, err
	}

	red := rgb.Plane(0)
	green := rgb.Plane(1)
	blue := rgb.Plane(2)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, b, _ := src.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			i := y*width + x
			red[i] = float64(r) / 65535.0
			green[i] = float64(g) / 65535.0
			blue[i] = float64(b) / 65535.0
		}
	}

	if !IsGrayscale(rgb) {
		return rgb, nil
	}

	// Collapse identical channels to a single plane.
	gray := &models.Image{
		Data:     rgb.Data[:width*height],
		Width:    width,
		Height:   height,
		Channels: 1,
	}
	return gray, nil
}

// IsGrayscale reports whether all channels of an image carry identical
// samples. Single-channel images are trivially grayscale.
func IsGrayscale(img *models.Image) bool {
	if img.Channels == 1 {
		return true
	}

	first := img.Plane(0)
	for c := 1; c < img.Channels; c++ {
		plane := img.Plane(c)
		for i, v := range first {
			if plane[i] != v {
				return false
			}
		}
	}
	return true
}

// WriteImage encodes a planar image to disk. The format is chosen from the
// file extension (.png, .jpg/.jpeg, .bmp, .tif/.tiff); single-channel
// images are written as grayscale. Samples are clamped to [0,1] before
// quantization. jpegQuality applies only to JPEG output.
func WriteImage(img *models.Image, path string, jpegQuality int) error {
	if !img.Valid() {
		return fmt.Errorf("invalid image buffer")
	}
	if img.Channels != 1 && img.Channels != 3 {
		return fmt.Errorf("unsupported channel count %d", img.Channels)
	}

	out := toNRGBA(img)

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file %s: %v", path, err)
	}
	defer file.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		err = png.Encode(file, out)
	case ".jpg", ".jpeg":
		err = jpeg.Encode(file, out, &jpeg.Options{Quality: jpegQuality})
	case ".bmp":
		err = bmp.Encode(file, out)
	case ".tif", ".tiff":
		err = tiff.Encode(file, out, nil)
	default:
		return fmt.Errorf("unsupported output format %q", filepath.Ext(path))
	}
	if err != nil {
		return fmt.Errorf("failed to encode image %s: %v", path, err)
	}

	return nil
}

// toNRGBA rasterizes the planar buffer into an 8-bit image for encoding.
// Grayscale images replicate the single plane across RGB.
func toNRGBA(img *models.Image) image.Image {
	width, height := img.Width, img.Height

	if img.Channels == 1 {
		out := image.NewGray(image.Rect(0, 0, width, height))
		plane := img.Plane(0)
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				out.SetGray(x, y, color.Gray{Y: quantize(plane[y*width+x])})
			}
		}
		return out
	}

	out := image.NewNRGBA(image.Rect(0, 0, width, height))
	red := img.Plane(0)
	green := img.Plane(1)
	blue := img.Plane(2)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			i := y*width + x
			out.SetNRGBA(x, y, color.NRGBA{
				R: quantize(red[i]),
				G: quantize(green[i]),
				B: quantize(blue[i]),
				A: 255,
			})
		}
	}
	return out
}

// quantize clamps a normalized sample to [0,1] and maps it to 8 bits.
func quantize(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}

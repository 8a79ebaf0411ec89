// Package avatar processes profile image uploads and persists them under
// randomized filenames.
package avatar

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"

	"golang.org/x/image/draw"

	"inkwell/internal/models"
)

var (
	// ErrUnsupportedFormat is returned for uploads that are not JPEG or PNG.
	ErrUnsupportedFormat = errors.New("unsupported image format")
	// ErrNotFound is returned when no stored image exists under a name.
	ErrNotFound = errors.New("avatar not found")
)

// BoundingBox is the maximum width and height of a stored avatar.
const BoundingBox = 250

// DefaultName is the sentinel filename served for accounts that never
// uploaded an avatar. It aliases the model constant so the stored value and
// the generated placeholder can never disagree.
const DefaultName = models.DefaultAvatar

// placeholderPNG renders the flat-gray default avatar.
func placeholderPNG() ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, BoundingBox, BoundingBox))
	gray := color.RGBA{R: 0xB0, G: 0xB4, B: 0xBA, A: 0xFF}
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i] = gray.R
		img.Pix[i+1] = gray.G
		img.Pix[i+2] = gray.B
		img.Pix[i+3] = gray.A
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode default avatar: %w", err)
	}
	return buf.Bytes(), nil
}

// Process decodes an uploaded image, shrinks it to fit the bounding box
// (aspect-preserving, never upscaled, never cropped), and re-encodes it in
// its source format. The returned filename is freshly randomized so a new
// upload never overwrites a previous one.
func Process(r io.Reader) (filename string, data []byte, err error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return "", nil, ErrUnsupportedFormat
	}

	var ext string
	switch format {
	case "jpeg":
		ext = ".jpg"
	case "png":
		ext = ".png"
	default:
		return "", nil, ErrUnsupportedFormat
	}

	img = shrink(img)

	var buf bytes.Buffer
	switch ext {
	case ".jpg":
		err = jpeg.Encode(&buf, img, nil)
	case ".png":
		err = png.Encode(&buf, img)
	}
	if err != nil {
		return "", nil, fmt.Errorf("encode avatar: %w", err)
	}

	name, err := randomName(ext)
	if err != nil {
		return "", nil, err
	}
	return name, buf.Bytes(), nil
}

// shrink scales the image down to fit BoundingBox on its longer side. Images
// already inside the box pass through unchanged.
func shrink(img image.Image) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= BoundingBox && h <= BoundingBox {
		return img
	}

	scale := float64(BoundingBox) / float64(w)
	if h > w {
		scale = float64(BoundingBox) / float64(h)
	}
	dw := int(float64(w) * scale)
	dh := int(float64(h) * scale)
	if dw < 1 {
		dw = 1
	}
	if dh < 1 {
		dh = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}

func randomName(ext string) (string, error) {
	raw := make([]byte, 8)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("generate avatar name: %w", err)
	}
	return hex.EncodeToString(raw) + ext, nil
}

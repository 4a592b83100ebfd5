package storage

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	_ "image/png" // register PNG decoder
	"net/http"
	"path/filepath"
	"strings"

	"iisa-recruitment-backend/internal/domain"

	"golang.org/x/image/draw"
)

const (
	MaxImageBytes     = 5 << 20
	MaxImageDimension = 1200
	JPEGQuality       = 80
)

// Magic byte signatures for the accepted photo formats
var magicBytes = map[string][]byte{
	".jpg":  {0xFF, 0xD8, 0xFF},
	".jpeg": {0xFF, 0xD8, 0xFF},
	".png":  {0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A},
}

var allowedImageMIME = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

// ValidateImage performs the extension, magic byte and detected MIME checks
// plus the size limit. Failures wrap domain.ErrInvalidImage.
func ValidateImage(filename string, data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("%w: file is empty", domain.ErrInvalidImage)
	}
	if len(data) > MaxImageBytes {
		return fmt.Errorf("%w: file exceeds %d MB", domain.ErrInvalidImage, MaxImageBytes>>20)
	}

	ext := strings.ToLower(filepath.Ext(filename))
	sig, ok := magicBytes[ext]
	if !ok {
		return fmt.Errorf("%w: only PNG or JPEG files are accepted", domain.ErrInvalidImage)
	}
	if !bytes.HasPrefix(data, sig) {
		return fmt.Errorf("%w: file content does not match extension", domain.ErrInvalidImage)
	}
	if mime := http.DetectContentType(data); !allowedImageMIME[mime] {
		return fmt.Errorf("%w: MIME type not allowed: %s", domain.ErrInvalidImage, mime)
	}
	return nil
}

// NormalizeImage re-encodes a PNG/JPEG as JPEG with the longest side capped
// at maxDimension. Transparent areas become white.
func NormalizeImage(data []byte, maxDimension, quality int) ([]byte, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decode image (format: %s): %v", domain.ErrInvalidImage, format, err)
	}

	bounds := img.Bounds()
	newWidth, newHeight := fitWithin(bounds.Dx(), bounds.Dy(), maxDimension)

	canvas := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
	draw.Draw(canvas, canvas.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	draw.CatmullRom.Scale(canvas, canvas.Bounds(), img, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, canvas, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}

// fitWithin scales (w, h) down, keeping the aspect ratio, so neither side exceeds max.
func fitWithin(w, h, max int) (int, int) {
	if w <= max && h <= max {
		return w, h
	}
	if w >= h {
		nh := int(float64(h) * float64(max) / float64(w))
		if nh < 1 {
			nh = 1
		}
		return max, nh
	}
	nw := int(float64(w) * float64(max) / float64(h))
	if nw < 1 {
		nw = 1
	}
	return nw, max
}

// SanitizeFilename keeps an ASCII-safe base name without extension.
func SanitizeFilename(filename string) string {
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	base = strings.ReplaceAll(base, " ", "_")

	var result strings.Builder
	for _, r := range base {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' || r == '-' {
			result.WriteRune(r)
		}
	}
	if result.Len() == 0 {
		return "photo"
	}
	if result.Len() > 64 {
		return result.String()[:64]
	}
	return result.String()
}

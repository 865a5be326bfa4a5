package images

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"io"

	"github.com/nfnt/resize"
)

// MaxWidth bounds uploaded product images, larger files are downscaled
// before storage.
const MaxWidth = 800

const jpegQuality = 80

// Downscale decodes a JPEG or PNG, shrinks it to at most MaxWidth pixels
// wide preserving the aspect ratio, and re-encodes as JPEG.
func Downscale(r io.Reader, maxWidth uint) ([]byte, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	if uint(img.Bounds().Dx()) > maxWidth {
		img = resize.Resize(maxWidth, 0, img, resize.Lanczos3)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}
	return buf.Bytes(), nil
}

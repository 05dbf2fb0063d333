// Package imaging pads downloaded images onto a square canvas.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	errpkg "github.com/veranemoloko/post-downloader/internal/errors"
)

var black = image.NewUniform(color.NRGBA{A: 0xff})

// Letterbox decodes data and returns a PNG whose canvas is a square of side
// max(width, height). The source is centered without scaling and the padding
// is opaque black.
func Letterbox(data []byte) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errpkg.ErrDecodeImage, err)
	}

	canvas := letterbox(src)

	var buf bytes.Buffer
	if err := png.Encode(&buf, canvas); err != nil {
		return nil, fmt.Errorf("failed to encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func letterbox(src image.Image) *image.NRGBA {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	side := max(w, h)

	canvas := image.NewNRGBA(image.Rect(0, 0, side, side))
	draw.Draw(canvas, canvas.Bounds(), black, image.Point{}, draw.Src)

	offset := image.Pt((side-w)/2, (side-h)/2)
	draw.Draw(canvas, image.Rectangle{Min: offset, Max: offset.Add(b.Size())}, src, b.Min, draw.Src)
	return canvas
}

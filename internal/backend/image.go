package backend

import (
	"bytes"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"

	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/image/bmp"
	"golang.org/x/image/webp"
)

// DecodeImage sniffs the content type of r and decodes PNG, JPEG, GIF, WebP
// or BMP. It returns the detected MIME type.
func DecodeImage(r io.Reader) (image.Image, string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, "", err
	}
	mt := mimetype.Detect(data)
	var img image.Image
	switch {
	case mt.Is("image/png"):
		img, err = png.Decode(bytes.NewReader(data))
	case mt.Is("image/jpeg"):
		img, err = jpeg.Decode(bytes.NewReader(data))
	case mt.Is("image/gif"):
		img, err = gif.Decode(bytes.NewReader(data))
	case mt.Is("image/webp"):
		img, err = webp.Decode(bytes.NewReader(data))
	case mt.Is("image/bmp"):
		img, err = bmp.Decode(bytes.NewReader(data))
	default:
		return nil, mt.String(), unsupportedImageError{mime: mt.String()}
	}
	if err != nil {
		return nil, mt.String(), fmt.Errorf("decode %s: %w", mt.String(), err)
	}
	return img, mt.String(), nil
}

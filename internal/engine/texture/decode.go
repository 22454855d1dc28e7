// Package texture decodes texture images referenced by scene materials.
package texture

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"  // register GIF
	_ "image/jpeg" // register JPEG
	_ "image/png"  // register PNG
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"  // register BMP
	_ "golang.org/x/image/webp" // register WebP
)

// Info describes a texture image without its pixels.
type Info struct {
	Format string
	Width  int
	Height int
}

// isTGA reports whether name has a TGA extension. TGA has no
// magic number to sniff.
func isTGA(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".tga")
}

// DecodeInfo reads only the header of an encoded image.
// name is used for formats that cannot be sniffed from content.
func DecodeInfo(name string, data []byte) (Info, error) {
	if isTGA(name) {
		cfg, err := DecodeTGAConfig(data)
		if err != nil {
			return Info{}, fmt.Errorf("decoding %s: %w", name, err)
		}
		return Info{Format: "tga", Width: cfg.Width, Height: cfg.Height}, nil
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Info{}, fmt.Errorf("decoding %s: %w", name, err)
	}
	return Info{Format: format, Width: cfg.Width, Height: cfg.Height}, nil
}

// Decode decodes the full image.
func Decode(name string, data []byte) (image.Image, error) {
	if isTGA(name) {
		img, err := DecodeTGA(data)
		if err != nil {
			return nil, fmt.Errorf("decoding %s: %w", name, err)
		}
		return img, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", name, err)
	}
	return img, nil
}

// ToRGBA converts any image to *image.RGBA, returning it unchanged when it
// already is one.
func ToRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	rgba := image.NewRGBA(img.Bounds())
	draw.Draw(rgba, rgba.Bounds(), img, img.Bounds().Min, draw.Src)
	return rgba
}

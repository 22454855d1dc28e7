package texture

import (
	"errors"
	"fmt"
	"image"
	"image/color"
)

// TGA image type constants.
const (
	TGATypeUncompressed = 2  // Uncompressed true-color
	TGATypeRLE          = 10 // RLE compressed true-color
)

// ErrTruncatedTGA is returned when the header or pixel data is cut short.
var ErrTruncatedTGA = errors.New("truncated TGA data")

type tgaHeader struct {
	imageType     byte
	width, height int
	bytesPerPixel int
	topToBottom   bool
	dataOffset    int
}

func parseTGAHeader(data []byte) (tgaHeader, error) {
	if len(data) < 18 {
		return tgaHeader{}, ErrTruncatedTGA
	}

	idLength := int(data[0])
	colorMapType := data[1]
	h := tgaHeader{
		imageType:  data[2],
		width:      int(data[12]) | int(data[13])<<8,
		height:     int(data[14]) | int(data[15])<<8,
		dataOffset: 18 + idLength,
		// Bit 5 of the descriptor marks top-to-bottom row order.
		topToBottom: data[17]&0x20 != 0,
	}
	bpp := int(data[16])

	if colorMapType != 0 {
		return tgaHeader{}, fmt.Errorf("color-mapped TGA not supported")
	}
	if h.imageType != TGATypeUncompressed && h.imageType != TGATypeRLE {
		return tgaHeader{}, fmt.Errorf("unsupported TGA type %d (only uncompressed/RLE true-color supported)", h.imageType)
	}
	if bpp != 24 && bpp != 32 {
		return tgaHeader{}, fmt.Errorf("unsupported TGA bit depth %d (only 24/32 supported)", bpp)
	}
	if h.dataOffset > len(data) {
		return tgaHeader{}, ErrTruncatedTGA
	}
	h.bytesPerPixel = bpp / 8
	return h, nil
}

// DecodeTGAConfig returns the dimensions of a TGA image without decoding pixels.
func DecodeTGAConfig(data []byte) (image.Config, error) {
	h, err := parseTGAHeader(data)
	if err != nil {
		return image.Config{}, err
	}
	return image.Config{ColorModel: color.RGBAModel, Width: h.width, Height: h.height}, nil
}

// DecodeTGA decodes an uncompressed (type 2) or RLE (type 10) true-color TGA image.
func DecodeTGA(data []byte) (image.Image, error) {
	h, err := parseTGAHeader(data)
	if err != nil {
		return nil, err
	}
	pixelData := data[h.dataOffset:]
	img := image.NewRGBA(image.Rect(0, 0, h.width, h.height))

	if h.imageType == TGATypeUncompressed {
		if len(pixelData) < h.width*h.height*h.bytesPerPixel {
			return nil, ErrTruncatedTGA
		}
		for i := 0; i < h.width*h.height; i++ {
			h.set(img, i, readBGRA(pixelData[i*h.bytesPerPixel:], h.bytesPerPixel))
		}
		return img, nil
	}

	decodeTGARLE(img, pixelData, h)
	return img, nil
}

// decodeTGARLE decodes RLE-compressed pixel data. Truncated input leaves the
// remaining pixels transparent.
func decodeTGARLE(img *image.RGBA, pixelData []byte, h tgaHeader) {
	pixelCount := h.width * h.height
	pixelIdx := 0
	dataIdx := 0

	for pixelIdx < pixelCount && dataIdx < len(pixelData) {
		packet := pixelData[dataIdx]
		dataIdx++
		count := int(packet&0x7F) + 1

		if packet&0x80 != 0 {
			// RLE packet - repeat single pixel
			if dataIdx+h.bytesPerPixel > len(pixelData) {
				return
			}
			c := readBGRA(pixelData[dataIdx:], h.bytesPerPixel)
			dataIdx += h.bytesPerPixel
			for i := 0; i < count && pixelIdx < pixelCount; i++ {
				h.set(img, pixelIdx, c)
				pixelIdx++
			}
			continue
		}

		// Raw packet - read count pixels
		for i := 0; i < count && pixelIdx < pixelCount; i++ {
			if dataIdx+h.bytesPerPixel > len(pixelData) {
				return
			}
			h.set(img, pixelIdx, readBGRA(pixelData[dataIdx:], h.bytesPerPixel))
			dataIdx += h.bytesPerPixel
			pixelIdx++
		}
	}
}

func (h tgaHeader) set(img *image.RGBA, pixelIdx int, c color.RGBA) {
	x := pixelIdx % h.width
	y := pixelIdx / h.width
	if !h.topToBottom {
		y = h.height - 1 - y
	}
	img.SetRGBA(x, y, c)
}

func readBGRA(p []byte, bytesPerPixel int) color.RGBA {
	c := color.RGBA{R: p[2], G: p[1], B: p[0], A: 255}
	if bytesPerPixel == 4 {
		c.A = p[3]
	}
	return c
}

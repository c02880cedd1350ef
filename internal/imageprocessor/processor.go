package imageprocessor

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"net/http"

	"golang.org/x/image/draw"
	"golang.org/x/image/webp"
)

// ImageSize is a bounding box images are scaled down to fit.
type ImageSize struct {
	Name   string
	Width  int
	Height int
}

var (
	SizeThumbnail = ImageSize{Name: "thumbnail", Width: 400, Height: 400}
	SizeLarge     = ImageSize{Name: "large", Width: 1600, Height: 1600}
)

var ErrUnsupportedFormat = errors.New("unsupported image format")

// Processed is an image ready for upload.
type Processed struct {
	Data        []byte
	ContentType string
	Extension   string
	Width       int
	Height      int
}

// Processor handles image processing operations
type Processor struct {
	quality int // JPEG quality (1-100)
}

func NewProcessor(quality int) *Processor {
	if quality <= 0 || quality > 100 {
		quality = 85
	}
	return &Processor{
		quality: quality,
	}
}

// DetectContentType sniffs the MIME type and accepts only jpeg, png and webp.
func DetectContentType(data []byte) (string, error) {
	ct := http.DetectContentType(data)
	switch ct {
	case "image/jpeg", "image/png", "image/webp":
		return ct, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, ct)
	}
}

// Prepare validates data and scales jpeg/png images down to fit size. WebP
// is decoded to validate it and passed through unchanged since there is no
// encoder for it here.
func (p *Processor) Prepare(data []byte, size ImageSize) (*Processed, error) {
	ct, err := DetectContentType(data)
	if err != nil {
		return nil, err
	}

	if ct == "image/webp" {
		cfg, err := webp.DecodeConfig(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("failed to decode webp: %w", err)
		}
		return &Processed{Data: data, ContentType: ct, Extension: "webp", Width: cfg.Width, Height: cfg.Height}, nil
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	if bounds.Dx() <= size.Width && bounds.Dy() <= size.Height {
		return &Processed{Data: data, ContentType: ct, Extension: extension(format), Width: bounds.Dx(), Height: bounds.Dy()}, nil
	}

	resized := p.resize(img, size.Width, size.Height)

	var buf bytes.Buffer
	switch format {
	case "jpeg":
		if err := jpeg.Encode(&buf, resized, &jpeg.Options{Quality: p.quality}); err != nil {
			return nil, fmt.Errorf("failed to encode JPEG: %w", err)
		}
	case "png":
		if err := png.Encode(&buf, resized); err != nil {
			return nil, fmt.Errorf("failed to encode PNG: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}

	rb := resized.Bounds()
	return &Processed{Data: buf.Bytes(), ContentType: ct, Extension: extension(format), Width: rb.Dx(), Height: rb.Dy()}, nil
}

// resize resizes an image maintaining aspect ratio
func (p *Processor) resize(img image.Image, maxWidth, maxHeight int) image.Image {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	ratio := float64(width) / float64(height)
	newWidth := maxWidth
	newHeight := maxHeight

	if float64(maxWidth)/float64(maxHeight) > ratio {
		newWidth = int(float64(maxHeight) * ratio)
	} else {
		newHeight = int(float64(maxWidth) / ratio)
	}
	if newWidth < 1 {
		newWidth = 1
	}
	if newHeight < 1 {
		newHeight = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	return dst
}

func extension(format string) string {
	if format == "jpeg" {
		return "jpg"
	}
	return format
}

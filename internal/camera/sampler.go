package camera

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"
	"time"

	"golang.org/x/image/draw"
)

const (
	DefaultJPEGQuality = 80
	dataURLPrefix      = "data:image/jpeg;base64,"
)

// Frame is a single still, JPEG encoded as a data URL.
type Frame struct {
	DataURL    string
	Width      int
	Height     int
	Size       int
	CapturedAt time.Time
}

// Sampler grabs independent stills from an acquired camera.
type Sampler struct {
	quality  int
	maxWidth int
}

// NewSampler returns a sampler encoding with the given JPEG quality. Frames
// wider than maxWidth are scaled down, maxWidth <= 0 keeps the native size.
func NewSampler(quality, maxWidth int) *Sampler {
	if quality < 1 || quality > 100 {
		quality = DefaultJPEGQuality
	}
	return &Sampler{
		quality:  quality,
		maxWidth: maxWidth,
	}
}

func (s *Sampler) Capture(h *Handle) (Frame, error) {
	img := h.latest()
	if img == nil {
		if err := h.Err(); err != nil {
			return Frame{}, fmt.Errorf("%w: %w", ErrNotReady, err)
		}
		return Frame{}, ErrNotReady
	}

	bounds := img.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return Frame{}, ErrNotReady
	}

	if s.maxWidth > 0 && bounds.Dx() > s.maxWidth {
		img = downscale(img, s.maxWidth)
		bounds = img.Bounds()
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: s.quality}); err != nil {
		return Frame{}, fmt.Errorf("encode jpeg: %w", err)
	}

	return Frame{
		DataURL:    dataURLPrefix + base64.StdEncoding.EncodeToString(buf.Bytes()),
		Width:      bounds.Dx(),
		Height:     bounds.Dy(),
		Size:       buf.Len(),
		CapturedAt: time.Now(),
	}, nil
}

func downscale(src image.Image, maxWidth int) image.Image {
	b := src.Bounds()
	height := b.Dy() * maxWidth / b.Dx()
	if height < 1 {
		height = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, maxWidth, height))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	return dst
}

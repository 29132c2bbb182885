package camera

import (
	"context"
	"image"
	"image/color"
	"sync"
	"sync/atomic"

	"golang.org/x/image/draw"
)

// PatternDevice produces a synthetic moving test pattern. Every frame is
// different from the previous one. The first WarmupFrames reads return no
// frame, the way a real device needs a moment before the first image.
type PatternDevice struct {
	Width        int
	Height       int
	WarmupFrames int
}

func NewPatternDevice(width, height int) *PatternDevice {
	return &PatternDevice{
		Width:  width,
		Height: height,
	}
}

func (d *PatternDevice) Open(ctx context.Context) (Stream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	width, height := d.Width, d.Height
	if width <= 0 {
		width = 640
	}
	if height <= 0 {
		height = 480
	}

	s := &patternStream{
		width:  width,
		height: height,
		warmup: int64(d.WarmupFrames),
	}
	s.track = &patternTrack{stream: s}
	return s, nil
}

type patternStream struct {
	width  int
	height int
	warmup int64
	reads  atomic.Int64
	track  *patternTrack
}

func (s *patternStream) Tracks() []Track {
	return []Track{s.track}
}

func (s *patternStream) LatestFrame() image.Image {
	if s.track.stopped.Load() {
		return nil
	}

	n := s.reads.Add(1)
	if n <= s.warmup {
		return nil
	}

	return renderPattern(s.width, s.height, n)
}

type patternTrack struct {
	stream  *patternStream
	stopped atomic.Bool
	once    sync.Once
}

func (t *patternTrack) Kind() string {
	return TrackKindVideo
}

func (t *patternTrack) Stop() error {
	t.once.Do(func() {
		t.stopped.Store(true)
	})
	return nil
}

// renderPattern draws a gradient background and a block that moves one step
// per frame, with the frame number encoded in the top row.
func renderPattern(width, height int, n int64) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))

	shift := uint8(n % 256)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetRGBA(x, y, color.RGBA{
				R: uint8(x*255/width) + shift,
				G: uint8(y*255/height) + shift,
				B: 128,
				A: 255,
			})
		}
	}

	size := height / 4
	if size < 1 {
		size = 1
	}
	step := int64(size / 2)
	if step < 1 {
		step = 1
	}
	x0 := int((n * step) % int64(max(width-size, 1)))
	y0 := (height - size) / 2
	block := image.Rect(x0, y0, x0+size, y0+size)
	draw.Draw(img, block, image.NewUniform(color.RGBA{R: 255, G: 255, B: 255, A: 255}), image.Point{}, draw.Src)

	for bit := 0; bit < 64 && bit < width; bit++ {
		c := color.RGBA{A: 255}
		if n&(1<<bit) != 0 {
			c = color.RGBA{R: 255, G: 255, B: 255, A: 255}
		}
		img.SetRGBA(bit, 0, c)
	}

	return img
}

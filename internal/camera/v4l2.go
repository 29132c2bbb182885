//go:build linux

package camera

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"sync"

	"github.com/blackjack/webcam"
	log "github.com/sirupsen/logrus"
	"go.uber.org/multierr"
)

const (
	pixFmtMJPEG webcam.PixelFormat = 0x47504a4d
	pixFmtYUYV  webcam.PixelFormat = 0x56595559

	// seconds
	frameWaitTimeout = 1
)

// frameSource is the part of the webcam the reader goroutine uses.
type frameSource interface {
	WaitForFrame(timeout uint32) error
	ReadFrame() ([]byte, error)
}

// V4L2Device is a video4linux camera, e.g. /dev/video0.
type V4L2Device struct {
	Path   string
	Width  int
	Height int
}

func NewV4L2Device(path string, width, height int) *V4L2Device {
	return &V4L2Device{
		Path:   path,
		Width:  width,
		Height: height,
	}
}

func (d *V4L2Device) Open(ctx context.Context) (Stream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cam, err := webcam.Open(d.Path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", d.Path, err)
	}

	format, err := pickFormat(cam.GetSupportedFormats())
	if err != nil {
		return nil, multierr.Append(err, cam.Close())
	}

	gotFormat, w, h, err := cam.SetImageFormat(format, uint32(d.Width), uint32(d.Height))
	if err != nil {
		return nil, multierr.Append(fmt.Errorf("set image format: %w", err), cam.Close())
	}
	log.Debugf("v4l2 [%s]: format %#x, %dx%d", d.Path, uint32(gotFormat), w, h)

	if err := cam.StartStreaming(); err != nil {
		return nil, multierr.Append(fmt.Errorf("start streaming: %w", err), cam.Close())
	}

	s := &v4l2Stream{
		cam:    cam,
		path:   d.Path,
		format: gotFormat,
		width:  int(w),
		height: int(h),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	s.track = &v4l2Track{stream: s}

	go s.readLoop(cam)

	return s, nil
}

func pickFormat(supported map[webcam.PixelFormat]string) (webcam.PixelFormat, error) {
	for _, f := range []webcam.PixelFormat{pixFmtMJPEG, pixFmtYUYV} {
		if _, ok := supported[f]; ok {
			return f, nil
		}
	}
	return 0, fmt.Errorf("%w: no supported pixel format (MJPG, YUYV)", ErrDeviceUnavailable)
}

type v4l2Stream struct {
	cam    *webcam.Webcam
	path   string
	format webcam.PixelFormat
	width  int
	height int
	track  *v4l2Track

	stop chan struct{}
	done chan struct{}

	mu     sync.RWMutex
	latest image.Image
	// set when the reader gave up, the stream delivers no frames after that
	readErr error
}

func (s *v4l2Stream) Tracks() []Track {
	return []Track{s.track}
}

func (s *v4l2Stream) LatestFrame() image.Image {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest
}

// Err reports why the stream stopped delivering frames, nil while it is live.
func (s *v4l2Stream) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.readErr
}

// readLoop keeps only the most recent decoded frame. When the device goes
// away the last frame is dropped, so captures report ErrNotReady instead of
// repeating a frozen picture.
func (s *v4l2Stream) readLoop(src frameSource) {
	defer close(s.done)

	for {
		select {
		case <-s.stop:
			return
		default:
		}

		err := src.WaitForFrame(frameWaitTimeout)
		var timeoutErr *webcam.Timeout
		if errors.As(err, &timeoutErr) {
			continue
		}
		if err != nil {
			log.Errorf("v4l2 [%s]: wait for frame: %s", s.path, err)
			s.mu.Lock()
			s.latest = nil
			s.readErr = fmt.Errorf("%w: %s: %w", ErrDeviceUnavailable, s.path, err)
			s.mu.Unlock()
			return
		}

		raw, err := src.ReadFrame()
		if err != nil {
			log.Errorf("v4l2 [%s]: read frame: %s", s.path, err)
			continue
		}
		if len(raw) == 0 {
			continue
		}

		img, err := s.decode(raw)
		if err != nil {
			log.Debugf("v4l2 [%s]: decode frame: %s", s.path, err)
			continue
		}

		s.mu.Lock()
		s.latest = img
		s.mu.Unlock()
	}
}

func (s *v4l2Stream) decode(raw []byte) (image.Image, error) {
	switch s.format {
	case pixFmtMJPEG:
		return jpeg.Decode(bytes.NewReader(raw))
	case pixFmtYUYV:
		stride := s.width * 2
		if s.height > 0 && len(raw)%s.height == 0 && len(raw)/s.height > stride {
			// padded rows, bytesperline is not exposed by the driver bindings
			stride = len(raw) / s.height
		}
		return decodeYUYV(raw, s.width, s.height, stride)
	default:
		return nil, fmt.Errorf("unsupported pixel format %#x", uint32(s.format))
	}
}

type v4l2Track struct {
	stream *v4l2Stream
	once   sync.Once
	err    error
}

func (t *v4l2Track) Kind() string {
	return TrackKindVideo
}

func (t *v4l2Track) Stop() error {
	t.once.Do(func() {
		s := t.stream
		close(s.stop)
		<-s.done

		s.mu.Lock()
		s.latest = nil
		s.mu.Unlock()

		t.err = multierr.Combine(
			s.cam.StopStreaming(),
			s.cam.Close(),
		)
	})
	return t.err
}

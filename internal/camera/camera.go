package camera

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync/atomic"
	"time"
)

var (
	ErrPermissionDenied  = errors.New("camera permission denied")
	ErrDeviceUnavailable = errors.New("camera device unavailable")
	ErrDeviceBusy        = fmt.Errorf("%w: device busy", ErrDeviceUnavailable)
	ErrNotReady          = errors.New("no camera frame ready")
)

const TrackKindVideo = "video"

// Device is a camera backend.
type Device interface {
	Open(ctx context.Context) (Stream, error)
}

// Stream is an opened device. LatestFrame returns nil until the first frame
// has been decoded, and after the tracks are stopped.
type Stream interface {
	Tracks() []Track
	LatestFrame() image.Image
}

type Track interface {
	Kind() string
	Stop() error
}

// Handle is an acquired camera. It is owned by whoever acquired it and is
// dead after Resource.Release.
type Handle struct {
	stream     Stream
	acquiredAt time.Time
	released   atomic.Bool
}

func (h *Handle) Released() bool {
	return h == nil || h.released.Load()
}

func (h *Handle) AcquiredAt() time.Time {
	if h == nil {
		return time.Time{}
	}
	return h.acquiredAt
}

// Err is set once the stream stopped delivering frames, e.g. the device was
// unplugged.
func (h *Handle) Err() error {
	if h.Released() {
		return nil
	}
	if f, ok := h.stream.(interface{ Err() error }); ok {
		return f.Err()
	}
	return nil
}

func (h *Handle) latest() image.Image {
	if h.Released() || h.stream == nil {
		return nil
	}
	return h.stream.LatestFrame()
}

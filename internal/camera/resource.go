package camera

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/2beens/exercisetracker/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"go.uber.org/multierr"
)

// Resource hands out the camera to at most one owner at a time.
type Resource struct {
	device Device

	mu   sync.Mutex
	held *Handle
}

func NewResource(device Device) *Resource {
	return &Resource{
		device: device,
	}
}

func (r *Resource) Acquire(ctx context.Context) (_ *Handle, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "camera.acquire")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.held != nil {
		return nil, ErrDeviceBusy
	}

	stream, err := r.device.Open(ctx)
	if err != nil {
		return nil, classifyOpenErr(err)
	}

	if !hasVideoTrack(stream) {
		if stopErr := stopTracks(stream); stopErr != nil {
			log.Warnf("camera: stop tracks of stream without video: %s", stopErr)
		}
		return nil, fmt.Errorf("%w: no video track", ErrDeviceUnavailable)
	}

	h := &Handle{
		stream:     stream,
		acquiredAt: time.Now(),
	}
	r.held = h

	log.Debugf("camera acquired, %d track(s)", len(stream.Tracks()))

	return h, nil
}

// Release stops every track of the handle. Releasing a nil or an already
// released handle is a no-op.
func (r *Resource) Release(h *Handle) error {
	if h == nil || !h.released.CompareAndSwap(false, true) {
		return nil
	}

	var err error
	if h.stream != nil {
		err = stopTracks(h.stream)
	}

	r.mu.Lock()
	if r.held == h {
		r.held = nil
	}
	r.mu.Unlock()

	if err != nil {
		return fmt.Errorf("release camera: %w", err)
	}

	log.Debugln("camera released")
	return nil
}

// InUse reports whether a handle is currently held.
func (r *Resource) InUse() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.held != nil
}

func classifyOpenErr(err error) error {
	switch {
	case errors.Is(err, ErrPermissionDenied), errors.Is(err, ErrDeviceUnavailable):
		return err
	case errors.Is(err, os.ErrPermission):
		return fmt.Errorf("%w: %w", ErrPermissionDenied, err)
	default:
		return fmt.Errorf("%w: %w", ErrDeviceUnavailable, err)
	}
}

func hasVideoTrack(stream Stream) bool {
	for _, t := range stream.Tracks() {
		if t.Kind() == TrackKindVideo {
			return true
		}
	}
	return false
}

func stopTracks(stream Stream) error {
	var err error
	for _, t := range stream.Tracks() {
		err = multierr.Append(err, t.Stop())
	}
	return err
}

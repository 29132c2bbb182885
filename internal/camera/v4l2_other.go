//go:build !linux

package camera

import (
	"context"
	"fmt"
	"runtime"
)

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

func (d *V4L2Device) Open(context.Context) (Stream, error) {
	return nil, fmt.Errorf("%w: v4l2 not supported on %s", ErrDeviceUnavailable, runtime.GOOS)
}

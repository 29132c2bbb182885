package tracker

import (
	"context"

	"github.com/2beens/exercisetracker/internal/camera"
	"github.com/2beens/exercisetracker/internal/inference"
)

//go:generate mockgen -source=$GOFILE -destination=deps_mocks_test.go -package=tracker_test

type mediaResource interface {
	Acquire(ctx context.Context) (*camera.Handle, error)
	Release(h *camera.Handle) error
}

type frameSampler interface {
	Capture(h *camera.Handle) (camera.Frame, error)
}

type inferenceClient interface {
	SendFrame(ctx context.Context, image, exercise string) (inference.Result, error)
	ResetCounters(ctx context.Context) error
}

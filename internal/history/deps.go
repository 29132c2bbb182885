package history

import "context"

//go:generate mockgen -source=$GOFILE -destination=deps_mocks_test.go -package=history_test

type eventsWriter interface {
	Add(ctx context.Context, event Event) (*Event, error)
}

type eventsLister interface {
	List(ctx context.Context, page, size int) ([]*Event, error)
}

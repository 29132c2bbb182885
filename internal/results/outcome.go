package results

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/multierr"
)

var ErrNoOutcome = errors.New("no outcome yet")

// Outcome is what one capture tick produced: either the inference result or
// the error that prevented it.
type Outcome struct {
	Generation uint64          `json:"generation"`
	Exercise   string          `json:"exercise"`
	Tick       uint64          `json:"tick"`
	IssuedAt   time.Time       `json:"issuedAt"`
	Result     json.RawMessage `json:"result,omitempty"`
	Error      string          `json:"error,omitempty"`
}

func (o Outcome) Failed() bool {
	return o.Error != ""
}

type Sink interface {
	Publish(ctx context.Context, outcome Outcome) error
}

// MultiSink publishes to every sink, a failing sink does not stop the others.
type MultiSink []Sink

func (m MultiSink) Publish(ctx context.Context, outcome Outcome) error {
	var err error
	for _, s := range m {
		if s == nil {
			continue
		}
		err = multierr.Append(err, s.Publish(ctx, outcome))
	}
	return err
}

package history

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/2beens/exercisetracker/internal/telemetry/tracing"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

//go:embed schema.sql
var Schema string

var ErrInvalidPage = errors.New("invalid page")

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

// Migrate creates the session_event table if it is missing.
func (r *Repo) Migrate(ctx context.Context) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.history.migrate")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if _, err = r.db.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("create session_event table: %w", err)
	}
	return nil
}

func (r *Repo) Add(ctx context.Context, event Event) (_ *Event, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.history.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("type", event.Type.String()))

	if event.Data == nil {
		event.Data = map[string]string{}
	}

	err = r.db.QueryRow(ctx, `
		INSERT INTO session_event (type, generation, exercise, data, timestamp)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`,
		event.Type.String(),
		int64(event.Generation),
		event.Exercise,
		event.Data,
		event.Timestamp,
	).Scan(&event.ID)
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// List returns a page of events, newest first. Pages start at 1.
func (r *Repo) List(ctx context.Context, page, size int) (_ []*Event, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.history.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("page", page), attribute.Int("size", size))

	if page < 1 || size < 1 {
		return nil, fmt.Errorf("%w: page %d, size %d", ErrInvalidPage, page, size)
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, type, generation, exercise, data, timestamp
		FROM session_event
		ORDER BY timestamp DESC, id DESC
		LIMIT $1 OFFSET $2;
	`, size, size*(page-1))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]*Event, 0, size)
	for rows.Next() {
		var (
			event      Event
			eventType  string
			generation int64
		)
		if err := rows.Scan(&event.ID, &eventType, &generation, &event.Exercise, &event.Data, &event.Timestamp); err != nil {
			return nil, err
		}
		event.Type = EventType(eventType)
		event.Generation = uint64(generation)
		events = append(events, &event)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return events, nil
}

package tracker

import (
	"context"
	"errors"
	"net/http"

	"github.com/2beens/exercisetracker/internal/camera"
	"github.com/2beens/exercisetracker/internal/exercises"
	"github.com/2beens/exercisetracker/internal/inference"
	"github.com/2beens/exercisetracker/internal/results"
	"github.com/2beens/exercisetracker/internal/telemetry/tracing"
	"github.com/2beens/exercisetracker/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=tracker_test

type sessionController interface {
	Start(ctx context.Context) error
	SelectExercise(id string) error
	ResetCounters(ctx context.Context) error
	Stop() error
	Status() Status
}

type latestOutcomeStore interface {
	Latest(ctx context.Context) (*results.Outcome, error)
}

type Handler struct {
	controller sessionController
	outcomes   latestOutcomeStore
}

func NewHandler(controller sessionController, outcomes latestOutcomeStore) *Handler {
	return &Handler{
		controller: controller,
		outcomes:   outcomes,
	}
}

func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.session.status")
	defer span.End()

	pkg.WriteJSON(w, h.controller.Status(), http.StatusOK)
}

func (h *Handler) HandleStart(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.session.start")
	defer span.End()

	if err := h.controller.Start(ctx); err != nil {
		span.RecordError(err)
		writeError(w, "start session", err)
		return
	}

	pkg.WriteJSON(w, h.controller.Status(), http.StatusOK)
}

func (h *Handler) HandleStop(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.session.stop")
	defer span.End()

	if err := h.controller.Stop(); err != nil {
		// the session is gone anyway, only the camera cleanup complained
		span.RecordError(err)
		log.Errorf("stop session: %s", err)
	}

	pkg.WriteJSON(w, h.controller.Status(), http.StatusOK)
}

func (h *Handler) HandleSelectExercise(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.session.exercise")
	defer span.End()

	id := mux.Vars(r)["id"]
	if id == "" {
		pkg.WriteJSONError(w, "exercise id missing", http.StatusBadRequest)
		return
	}

	if err := h.controller.SelectExercise(id); err != nil {
		span.RecordError(err)
		writeError(w, "select exercise", err)
		return
	}

	pkg.WriteJSON(w, h.controller.Status(), http.StatusOK)
}

func (h *Handler) HandleResetCounters(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.session.reset")
	defer span.End()

	if err := h.controller.ResetCounters(ctx); err != nil {
		span.RecordError(err)
		writeError(w, "reset counters", err)
		return
	}

	pkg.WriteJSON(w, h.controller.Status(), http.StatusOK)
}

func (h *Handler) HandleLatestOutcome(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.session.outcome.latest")
	defer span.End()

	outcome, err := h.outcomes.Latest(ctx)
	if errors.Is(err, results.ErrNoOutcome) {
		pkg.WriteJSONError(w, "no outcome yet", http.StatusNotFound)
		return
	}
	if err != nil {
		span.RecordError(err)
		log.Errorf("get latest outcome: %s", err)
		pkg.WriteJSONError(w, "failed to get latest outcome", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSON(w, outcome, http.StatusOK)
}

func writeError(w http.ResponseWriter, op string, err error) {
	status := errorStatus(err)
	if status >= http.StatusInternalServerError {
		log.Errorf("%s: %s", op, err)
	} else {
		log.Debugf("%s: %s", op, err)
	}
	pkg.WriteJSONError(w, err.Error(), status)
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, ErrInvalidState):
		return http.StatusConflict
	case errors.Is(err, exercises.ErrUnknownExercise):
		return http.StatusNotFound
	case errors.Is(err, camera.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, camera.ErrDeviceUnavailable), errors.Is(err, ErrClosed):
		return http.StatusServiceUnavailable
	case errors.Is(err, inference.ErrNetwork), errors.Is(err, inference.ErrService):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

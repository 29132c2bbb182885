package history

import (
	"net/http"
	"strconv"

	"github.com/2beens/exercisetracker/internal/telemetry/tracing"
	"github.com/2beens/exercisetracker/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

const maxPageSize = 200

type ListResponse struct {
	Events []*Event `json:"events"`
	Page   int      `json:"page"`
	Size   int      `json:"size"`
}

type Handler struct {
	repo eventsLister
}

func NewHandler(repo eventsLister) *Handler {
	return &Handler{
		repo: repo,
	}
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.history.list")
	defer span.End()

	vars := mux.Vars(r)
	page, err := strconv.Atoi(vars["page"])
	if err != nil {
		log.Tracef("handle list history, from <page> param: %s", err)
		pkg.WriteJSONError(w, "parse form error, parameter <page>", http.StatusBadRequest)
		return
	}
	size, err := strconv.Atoi(vars["size"])
	if err != nil {
		log.Tracef("handle list history, from <size> param: %s", err)
		pkg.WriteJSONError(w, "parse form error, parameter <size>", http.StatusBadRequest)
		return
	}

	if page < 1 {
		pkg.WriteJSONError(w, "invalid page (has to be non-zero value)", http.StatusBadRequest)
		return
	}
	if size < 1 || size > maxPageSize {
		pkg.WriteJSONError(w, "invalid size (has to be between 1 and 200)", http.StatusBadRequest)
		return
	}

	events, err := h.repo.List(ctx, page, size)
	if err != nil {
		span.RecordError(err)
		log.Errorf("list history events: %s", err)
		pkg.WriteJSONError(w, "failed to get history events", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSON(w, ListResponse{
		Events: events,
		Page:   page,
		Size:   size,
	}, http.StatusOK)
}

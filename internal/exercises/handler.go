package exercises

import (
	"encoding/json"
	"net/http"

	"github.com/2beens/exercisetracker/internal/telemetry/tracing"
	"github.com/2beens/exercisetracker/pkg"

	log "github.com/sirupsen/logrus"
)

type ListResponse struct {
	Exercises []Descriptor `json:"exercises"`
}

type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.exercises.list")
	defer span.End()

	resp, err := json.Marshal(ListResponse{Exercises: All()})
	if err != nil {
		log.Errorf("marshal exercises list: %s", err)
		pkg.WriteJSONError(w, "failed to list exercises", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, resp, http.StatusOK)
}

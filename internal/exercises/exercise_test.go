package exercises_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/2beens/exercisetracker/internal/exercises"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	d, err := exercises.Lookup("left_bicep_curl")
	require.NoError(t, err)
	assert.Equal(t, "left_bicep_curl", d.ID)
	assert.Equal(t, "Left Bicep Curl", d.Label)

	_, err = exercises.Lookup("jumping_jacks")
	assert.ErrorIs(t, err, exercises.ErrUnknownExercise)

	// labels are not ids
	_, err = exercises.Lookup("Squat")
	assert.ErrorIs(t, err, exercises.ErrUnknownExercise)
}

func TestAll(t *testing.T) {
	all := exercises.All()
	require.Len(t, all, 9)
	assert.Equal(t, "push_up", all[0].ID)
	assert.Equal(t, "squat", all[8].ID)

	seen := map[string]bool{}
	for _, d := range all {
		assert.False(t, seen[d.ID], "duplicate id %s", d.ID)
		seen[d.ID] = true
		assert.NotEmpty(t, d.Label)
	}

	// callers get a copy
	all[0].Label = "changed"
	assert.Equal(t, "Push Up", exercises.All()[0].Label)
}

func TestHandler_HandleList(t *testing.T) {
	h := exercises.NewHandler()

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/exercises", nil)
	http.HandlerFunc(h.HandleList).ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var resp exercises.ListResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, exercises.All(), resp.Exercises)
}

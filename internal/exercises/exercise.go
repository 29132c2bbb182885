package exercises

import (
	"errors"
	"fmt"
)

var ErrUnknownExercise = errors.New("unknown exercise")

// Descriptor is a supported exercise. ID is what the inference service
// understands, Label is what people see.
type Descriptor struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// catalog order is the display order
var catalog = []Descriptor{
	{ID: "push_up", Label: "Push Up"},
	{ID: "left_bicep_curl", Label: "Left Bicep Curl"},
	{ID: "right_bicep_curl", Label: "Right Bicep Curl"},
	{ID: "lunge", Label: "Lunge"},
	{ID: "plank", Label: "Plank"},
	{ID: "deadlift", Label: "Deadlift"},
	{ID: "side_plank", Label: "Side Plank"},
	{ID: "shoulder_press", Label: "Shoulder Press"},
	{ID: "squat", Label: "Squat"},
}

var byID = func() map[string]Descriptor {
	m := make(map[string]Descriptor, len(catalog))
	for _, d := range catalog {
		m[d.ID] = d
	}
	return m
}()

func Lookup(id string) (Descriptor, error) {
	d, ok := byID[id]
	if !ok {
		return Descriptor{}, fmt.Errorf("%w: %q", ErrUnknownExercise, id)
	}
	return d, nil
}

// All returns a copy of the catalog, in display order.
func All() []Descriptor {
	all := make([]Descriptor, len(catalog))
	copy(all, catalog)
	return all
}

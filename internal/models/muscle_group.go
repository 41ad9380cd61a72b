package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// MuscleGroup classifies an exercise. The set is fixed.
type MuscleGroup string

const (
	Biceps    MuscleGroup = "Biceps"
	Back      MuscleGroup = "Back"
	Triceps   MuscleGroup = "Triceps"
	Shoulders MuscleGroup = "Shoulders"
	Legs      MuscleGroup = "Legs"
	Glutes    MuscleGroup = "Glutes"
	Chest     MuscleGroup = "Chest"
	Calves    MuscleGroup = "Calves"
	Abs       MuscleGroup = "Abs"
)

var allMuscleGroups = []MuscleGroup{Biceps, Back, Triceps, Shoulders, Legs, Glutes, Chest, Calves, Abs}

// muscleGroupAliases maps lowercased names and common gym shorthand to the
// canonical group.
var muscleGroupAliases = map[string]MuscleGroup{
	"biceps":     Biceps,
	"bicep":      Biceps,
	"back":       Back,
	"lats":       Back,
	"traps":      Back,
	"triceps":    Triceps,
	"tricep":     Triceps,
	"shoulders":  Shoulders,
	"shoulder":   Shoulders,
	"delts":      Shoulders,
	"legs":       Legs,
	"leg":        Legs,
	"quads":      Legs,
	"hamstrings": Legs,
	"glutes":     Glutes,
	"glute":      Glutes,
	"chest":      Chest,
	"pecs":       Chest,
	"calves":     Calves,
	"calf":       Calves,
	"abs":        Abs,
	"core":       Abs,
	"abdominals": Abs,
}

// AllMuscleGroups returns the canonical groups in display order.
func AllMuscleGroups() []MuscleGroup {
	out := make([]MuscleGroup, len(allMuscleGroups))
	copy(out, allMuscleGroups)
	return out
}

// ParseMuscleGroup resolves a user-supplied name (case-insensitive, aliases
// allowed) to a canonical MuscleGroup.
func ParseMuscleGroup(s string) (MuscleGroup, error) {
	if g, ok := muscleGroupAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return g, nil
	}
	return "", fmt.Errorf("unknown muscle group %q", s)
}

// Valid reports whether g is one of the canonical groups.
func (g MuscleGroup) Valid() bool {
	for _, c := range allMuscleGroups {
		if g == c {
			return true
		}
	}
	return false
}

// UnmarshalJSON accepts any spelling ParseMuscleGroup understands.
func (g *MuscleGroup) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseMuscleGroup(s)
	if err != nil {
		return err
	}
	*g = parsed
	return nil
}

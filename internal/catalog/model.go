package catalog

import (
	"github.com/google/uuid"
)

// Kind names one of the reference lookup tables.
type Kind string

const (
	KindEquipment      Kind = "equipment"
	KindCategory       Kind = "category"
	KindMuscleGroup    Kind = "muscle_group"
	KindWeightUnit     Kind = "weight_unit"
	KindRepetitionUnit Kind = "repetition_unit"
)

var Kinds = []Kind{
	KindEquipment,
	KindCategory,
	KindMuscleGroup,
	KindWeightUnit,
	KindRepetitionUnit,
}

func (k Kind) IsValid() bool {
	switch k {
	case KindEquipment, KindCategory, KindMuscleGroup, KindWeightUnit, KindRepetitionUnit:
		return true
	default:
		return false
	}
}

// Lookup is a row of one of the reference tables. TimeBased is only
// meaningful for repetition units: sets measured in a time-based unit run a
// countdown instead of taking a typed rep count.
type Lookup struct {
	ID        uuid.UUID `json:"id" yaml:"id"`
	Name      string    `json:"name" yaml:"name"`
	TimeBased bool      `json:"timeBased,omitempty" yaml:"timeBased,omitempty"`
}

type Level string

const (
	LevelBeginner     Level = "beginner"
	LevelIntermediate Level = "intermediate"
	LevelExpert       Level = "expert"
)

func (l Level) IsValid() bool {
	switch l {
	case LevelBeginner, LevelIntermediate, LevelExpert:
		return true
	default:
		return false
	}
}

type Exercise struct {
	ID                 uuid.UUID   `json:"id"`
	Name               string      `json:"name"`
	EquipmentID        *uuid.UUID  `json:"equipmentId,omitempty"`
	CategoryID         uuid.UUID   `json:"categoryId"`
	Level              Level       `json:"level"`
	Force              *string     `json:"force,omitempty"`
	Mechanic           *string     `json:"mechanic,omitempty"`
	PrimaryMuscleIDs   []uuid.UUID `json:"primaryMuscleIds"`
	SecondaryMuscleIDs []uuid.UUID `json:"secondaryMuscleIds"`
	Instructions       []string    `json:"instructions"`
	Images             []string    `json:"images"`
}

// MatchesGym reports whether the exercise can be done with the given
// equipment. Exercises without equipment always match.
func (e *Exercise) MatchesGym(equipment map[uuid.UUID]bool) bool {
	if e.EquipmentID == nil {
		return true
	}
	return equipment[*e.EquipmentID]
}

// Keyset is the position of an exercise in the name ordered scan.
type Keyset struct {
	Name string    `json:"n"`
	ID   uuid.UUID `json:"i"`
}

// ExerciseFilter restricts exercise lookups. A nil GymEquipment means no gym
// restriction; a non-nil (possibly empty) slice restricts results to exercises
// without equipment or with equipment in the slice.
type ExerciseFilter struct {
	Query           string
	EquipmentID     *uuid.UUID
	Level           Level
	CategoryID      *uuid.UUID
	PrimaryMuscleID *uuid.UUID
	GymEquipment    []uuid.UUID
}

// TextSearch reports whether the filter takes the ranked search path.
func (f ExerciseFilter) TextSearch() bool {
	return f.Query != ""
}

// ExerciseQuery is one page request against the catalog. On the text search
// path results are relevance ranked; otherwise they are ordered by (name, id)
// and start after the After keyset. Offset skips rows on both paths. A zero
// Limit returns every match.
type ExerciseQuery struct {
	Filter ExerciseFilter
	After  *Keyset
	Offset int
	Limit  int
}

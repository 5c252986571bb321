package workouts

import (
	"time"

	"github.com/google/uuid"

	"github.com/soodoh/openfit/internal/ordering"
)

type SetGroupType string

const (
	SetGroupNormal   SetGroupType = "NORMAL"
	SetGroupSuperset SetGroupType = "SUPERSET"
)

func (t SetGroupType) IsValid() bool {
	return t == SetGroupNormal || t == SetGroupSuperset
}

type SetType string

const (
	SetNormal  SetType = "NORMAL"
	SetWarmup  SetType = "WARMUP"
	SetDropset SetType = "DROPSET"
	SetFailure SetType = "FAILURE"
)

func (t SetType) IsValid() bool {
	switch t {
	case SetNormal, SetWarmup, SetDropset, SetFailure:
		return true
	default:
		return false
	}
}

type Routine struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"userId"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// RoutineDay is a workout template. Weekdays are 0 (Sunday) to 6.
type RoutineDay struct {
	ID          uuid.UUID `json:"id"`
	RoutineID   uuid.UUID `json:"routineId"`
	UserID      uuid.UUID `json:"userId"`
	Description string    `json:"description"`
	Weekdays    []int     `json:"weekdays"`
}

type Session struct {
	ID         uuid.UUID  `json:"id"`
	UserID     uuid.UUID  `json:"userId"`
	Name       string     `json:"name"`
	Notes      string     `json:"notes"`
	Impression *int       `json:"impression,omitempty"`
	StartTime  time.Time  `json:"startTime"`
	EndTime    *time.Time `json:"endTime,omitempty"`
	TemplateID *uuid.UUID `json:"templateId,omitempty"`
}

// Active reports whether the session is still in progress.
func (s *Session) Active() bool {
	return s.EndTime == nil
}

// Parent identifies the owner of a set group list, either a routine day or a
// session.
type Parent struct {
	Kind ordering.ParentKind `json:"kind"`
	ID   uuid.UUID           `json:"id"`
}

func DayParent(id uuid.UUID) Parent {
	return Parent{Kind: ordering.ParentRoutineDay, ID: id}
}

func SessionParent(id uuid.UUID) Parent {
	return Parent{Kind: ordering.ParentSession, ID: id}
}

func (p Parent) Key() string {
	return ordering.Key(p.Kind, p.ID)
}

type SetGroup struct {
	ID           uuid.UUID    `json:"id"`
	UserID       uuid.UUID    `json:"userId"`
	RoutineDayID *uuid.UUID   `json:"routineDayId,omitempty"`
	SessionID    *uuid.UUID   `json:"sessionId,omitempty"`
	Type         SetGroupType `json:"type"`
	Order        int          `json:"order"`
	Comment      *string      `json:"comment,omitempty"`
}

func (g *SetGroup) Parent() Parent {
	if g.SessionID != nil {
		return SessionParent(*g.SessionID)
	}
	return DayParent(*g.RoutineDayID)
}

// InSession reports whether the group belongs to a live session rather than
// a template.
func (g *SetGroup) InSession() bool {
	return g.SessionID != nil
}

type Set struct {
	ID               uuid.UUID `json:"id"`
	UserID           uuid.UUID `json:"userId"`
	SetGroupID       uuid.UUID `json:"setGroupId"`
	ExerciseID       uuid.UUID `json:"exerciseId"`
	Type             SetType   `json:"type"`
	Order            int       `json:"order"`
	Reps             int       `json:"reps"`
	RepetitionUnitID uuid.UUID `json:"repetitionUnitId"`
	Weight           int       `json:"weight"`
	WeightUnitID     uuid.UUID `json:"weightUnitId"`
	RestTime         int       `json:"restTime"`
	Completed        bool      `json:"completed"`
}

type Gym struct {
	ID           uuid.UUID   `json:"id"`
	UserID       uuid.UUID   `json:"userId"`
	Name         string      `json:"name"`
	EquipmentIDs []uuid.UUID `json:"equipmentIds"`
}

type SetGroupDetail struct {
	SetGroup
	Sets []Set `json:"sets"`
}

// Completed is the AND over the group's sets. An empty group is never
// completed.
func (d *SetGroupDetail) Completed() bool {
	if len(d.Sets) == 0 {
		return false
	}
	for _, s := range d.Sets {
		if !s.Completed {
			return false
		}
	}
	return true
}

type RoutineDetail struct {
	Routine
	Days []RoutineDay `json:"days"`
}

type RoutineDayDetail struct {
	RoutineDay
	SetGroups []SetGroupDetail `json:"setGroups"`
}

type SessionDetail struct {
	Session
	SetGroups []SetGroupDetail `json:"setGroups"`
}

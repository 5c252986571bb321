package workouts

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Store runs units of work against the workout data. All writes of one
// service operation happen inside a single InTx call; an error returned from
// fn discards every write made through tx.
type Store interface {
	InTx(ctx context.Context, fn func(tx Tx) error) error
}

// Tx is the set of queries available inside a unit of work. Lookups take the
// owning user and report records of other users as not found.
type Tx interface {
	// Lock serializes writers on key until the unit of work ends.
	Lock(ctx context.Context, key string) error

	InsertRoutine(ctx context.Context, r *Routine) error
	GetRoutine(ctx context.Context, userID, id uuid.UUID) (*Routine, error)
	ListRoutines(ctx context.Context, userID uuid.UUID) ([]Routine, error)
	UpdateRoutine(ctx context.Context, r *Routine) error
	DeleteRoutine(ctx context.Context, userID, id uuid.UUID) error
	CountRoutines(ctx context.Context, userID uuid.UUID) (int, error)

	InsertRoutineDay(ctx context.Context, d *RoutineDay) error
	GetRoutineDay(ctx context.Context, userID, id uuid.UUID) (*RoutineDay, error)
	ListRoutineDays(ctx context.Context, userID, routineID uuid.UUID) ([]RoutineDay, error)
	UpdateRoutineDay(ctx context.Context, d *RoutineDay) error
	DeleteRoutineDay(ctx context.Context, userID, id uuid.UUID) error

	InsertSession(ctx context.Context, s *Session) error
	GetSession(ctx context.Context, userID, id uuid.UUID) (*Session, error)
	UpdateSession(ctx context.Context, s *Session) error
	DeleteSession(ctx context.Context, userID, id uuid.UUID) error
	// ListSessions returns sessions newest first.
	ListSessions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Session, error)
	CountSessions(ctx context.Context, userID uuid.UUID) (int, error)
	// OpenSessions returns the sessions without an end time, latest start first.
	OpenSessions(ctx context.Context, userID uuid.UUID) ([]Session, error)
	// ClearSessionTemplate drops the template reference of every session
	// started from the given routine day.
	ClearSessionTemplate(ctx context.Context, userID, routineDayID uuid.UUID) error
	SessionStartTimes(ctx context.Context, userID uuid.UUID, since time.Time) ([]time.Time, error)

	InsertSetGroup(ctx context.Context, g *SetGroup) error
	GetSetGroup(ctx context.Context, userID, id uuid.UUID) (*SetGroup, error)
	// ListSetGroups returns the groups of parent sorted by order.
	ListSetGroups(ctx context.Context, userID uuid.UUID, parent Parent) ([]SetGroup, error)
	UpdateSetGroup(ctx context.Context, g *SetGroup) error
	DeleteSetGroup(ctx context.Context, userID, id uuid.UUID) error
	UpdateSetGroupOrders(ctx context.Context, userID uuid.UUID, orders map[uuid.UUID]int) error

	InsertSet(ctx context.Context, s *Set) error
	GetSet(ctx context.Context, userID, id uuid.UUID) (*Set, error)
	// ListSets returns the sets of the given groups sorted by group and order.
	ListSets(ctx context.Context, userID uuid.UUID, groupIDs ...uuid.UUID) ([]Set, error)
	UpdateSet(ctx context.Context, s *Set) error
	DeleteSet(ctx context.Context, userID, id uuid.UUID) error
	UpdateSetOrders(ctx context.Context, userID uuid.UUID, orders map[uuid.UUID]int) error
	// SetGroupExercise points every set of the group at exerciseID.
	SetGroupExercise(ctx context.Context, userID, groupID, exerciseID uuid.UUID) (int, error)

	InsertGym(ctx context.Context, g *Gym) error
	GetGym(ctx context.Context, userID, id uuid.UUID) (*Gym, error)
	ListGyms(ctx context.Context, userID uuid.UUID) ([]Gym, error)
	UpdateGym(ctx context.Context, g *Gym) error
	DeleteGym(ctx context.Context, userID, id uuid.UUID) error
	DefaultGym(ctx context.Context, userID uuid.UUID) (*uuid.UUID, error)
	SetDefaultGym(ctx context.Context, userID uuid.UUID, gymID *uuid.UUID) error
}

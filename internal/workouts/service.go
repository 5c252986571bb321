package workouts

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/soodoh/openfit/internal/apperr"
	"github.com/soodoh/openfit/internal/telemetry/metrics"
)

//go:generate mockgen -source=$GOFILE -destination=service_mocks_test.go -package=workouts_test

// Catalog is the part of the reference catalog the workout engine reads.
type Catalog interface {
	ExerciseExists(ctx context.Context, id uuid.UUID) (bool, error)
	IsTimeBased(ctx context.Context, repetitionUnitID uuid.UUID) (bool, error)
}

type Service struct {
	store   Store
	catalog Catalog
	metrics *metrics.Manager
	now     func() time.Time
}

type Option func(*Service)

func WithMetrics(m *metrics.Manager) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithClock replaces time.Now, used for session start defaults and routine
// update times.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func NewService(store Store, catalog Catalog, opts ...Option) *Service {
	s := &Service{
		store:   store,
		catalog: catalog,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func requireUser(op string, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return apperr.New(op, apperr.ErrUnauthorized, "no user")
	}
	return nil
}

func (s *Service) checkExercise(ctx context.Context, op string, id uuid.UUID) error {
	exists, err := s.catalog.ExerciseExists(ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		return apperr.NotFound(op, "exercise")
	}
	return nil
}

// loadGroups returns the set groups of parent with their sets.
func loadGroups(ctx context.Context, tx Tx, userID uuid.UUID, parent Parent) ([]SetGroupDetail, error) {
	groups, err := tx.ListSetGroups(ctx, userID, parent)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(groups))
	for _, g := range groups {
		ids = append(ids, g.ID)
	}
	sets, err := tx.ListSets(ctx, userID, ids...)
	if err != nil {
		return nil, err
	}

	byGroup := make(map[uuid.UUID][]Set, len(groups))
	for _, set := range sets {
		byGroup[set.SetGroupID] = append(byGroup[set.SetGroupID], set)
	}
	out := make([]SetGroupDetail, 0, len(groups))
	for _, g := range groups {
		groupSets := byGroup[g.ID]
		if groupSets == nil {
			groupSets = []Set{}
		}
		out = append(out, SetGroupDetail{SetGroup: g, Sets: groupSets})
	}
	return out, nil
}

// deleteGroups removes the set groups of parent together with their sets.
func deleteGroups(ctx context.Context, tx Tx, userID uuid.UUID, parent Parent) error {
	groups, err := tx.ListSetGroups(ctx, userID, parent)
	if err != nil {
		return err
	}
	for _, g := range groups {
		if err := deleteGroup(ctx, tx, userID, g.ID); err != nil {
			return err
		}
	}
	return nil
}

func deleteGroup(ctx context.Context, tx Tx, userID, groupID uuid.UUID) error {
	sets, err := tx.ListSets(ctx, userID, groupID)
	if err != nil {
		return err
	}
	for _, set := range sets {
		if err := tx.DeleteSet(ctx, userID, set.ID); err != nil {
			return err
		}
	}
	return tx.DeleteSetGroup(ctx, userID, groupID)
}

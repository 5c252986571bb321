package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/coocood/freecache"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/soodoh/openfit/internal/apperr"
	"github.com/soodoh/openfit/internal/telemetry/tracing"
)

const lookupsCacheExpireSec = 5 * 60

//go:generate mockgen -source=$GOFILE -destination=service_mocks_test.go -package=catalog_test

// Store persists the reference catalog.
type Store interface {
	ListLookups(ctx context.Context, kind Kind) ([]Lookup, error)
	CreateLookup(ctx context.Context, kind Kind, l *Lookup) error
	UpdateLookup(ctx context.Context, kind Kind, l *Lookup) error
	DeleteLookup(ctx context.Context, kind Kind, id uuid.UUID) error

	GetExercise(ctx context.Context, id uuid.UUID) (*Exercise, error)
	AddExercise(ctx context.Context, e *Exercise) error
	// UpdateExerciseMuscles runs update against the current muscle sets under
	// a lock on the exercise and stores the result.
	UpdateExerciseMuscles(
		ctx context.Context,
		id uuid.UUID,
		update func(primary, secondary []uuid.UUID) ([]uuid.UUID, []uuid.UUID, error),
	) (*Exercise, error)

	FindExercises(ctx context.Context, q ExerciseQuery) ([]Exercise, error)
	CountExercises(ctx context.Context, f ExerciseFilter) (int, error)
}

type Service struct {
	store Store
	cache *freecache.Cache
}

func NewService(store Store) *Service {
	megabyte := 1024 * 1024
	return &Service{
		store: store,
		cache: freecache.NewCache(4 * megabyte),
	}
}

func lookupsCacheKey(kind Kind) []byte {
	return []byte("lookups::" + string(kind))
}

func (s *Service) Lookups(ctx context.Context, kind Kind) (_ []Lookup, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.catalog.lookups")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("kind", string(kind)))

	if !kind.IsValid() {
		return nil, apperr.Validation("list lookups", "unknown kind %q", kind)
	}

	if cached, err := s.cache.Get(lookupsCacheKey(kind)); err == nil {
		var lookups []Lookup
		if err := json.Unmarshal(cached, &lookups); err == nil {
			span.SetAttributes(attribute.Bool("cached", true))
			return lookups, nil
		} else {
			log.Errorf("unmarshal cached %s lookups: %s", kind, err)
		}
	}

	lookups, err := s.store.ListLookups(ctx, kind)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", kind, err)
	}

	if lookupsBytes, err := json.Marshal(lookups); err == nil {
		if err := s.cache.Set(lookupsCacheKey(kind), lookupsBytes, lookupsCacheExpireSec); err != nil {
			log.Errorf("cache %s lookups: %s", kind, err)
		}
	}

	return lookups, nil
}

// Lookup returns a single lookup row of the given kind.
func (s *Service) Lookup(ctx context.Context, kind Kind, id uuid.UUID) (*Lookup, error) {
	lookups, err := s.Lookups(ctx, kind)
	if err != nil {
		return nil, err
	}
	for i := range lookups {
		if lookups[i].ID == id {
			return &lookups[i], nil
		}
	}
	return nil, apperr.NotFound("get "+string(kind), string(kind))
}

// Apply executes an admin mutation on one of the lookup tables.
func (s *Service) Apply(ctx context.Context, m Mutation) (_ *Lookup, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.catalog.apply")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(
		attribute.String("kind", string(m.Kind)),
		attribute.String("action", string(m.Action)),
	)

	if err := m.Validate(); err != nil {
		return nil, err
	}
	defer s.cache.Del(lookupsCacheKey(m.Kind))

	l := &Lookup{ID: m.ID, Name: strings.TrimSpace(m.Name), TimeBased: m.TimeBased}
	switch m.Action {
	case ActionCreate:
		err = s.store.CreateLookup(ctx, m.Kind, l)
	case ActionUpdate:
		err = s.store.UpdateLookup(ctx, m.Kind, l)
	case ActionDelete:
		err = s.store.DeleteLookup(ctx, m.Kind, m.ID)
		l = nil
	default:
		return nil, apperr.Validation("catalog mutation", "unknown action %q", m.Action)
	}
	if err != nil {
		return nil, err
	}

	log.Debugf("catalog: %s %s [%s]", m.Action, m.Kind, m.ID)
	return l, nil
}

func (s *Service) Exercise(ctx context.Context, id uuid.UUID) (*Exercise, error) {
	return s.store.GetExercise(ctx, id)
}

// ExerciseExists reports whether id names a catalog exercise.
func (s *Service) ExerciseExists(ctx context.Context, id uuid.UUID) (bool, error) {
	_, err := s.store.GetExercise(ctx, id)
	if err == nil {
		return true, nil
	}
	if apperr.IsNotFound(err) {
		return false, nil
	}
	return false, err
}

// IsTimeBased reports whether the repetition unit measures duration.
func (s *Service) IsTimeBased(ctx context.Context, repetitionUnitID uuid.UUID) (bool, error) {
	unit, err := s.Lookup(ctx, KindRepetitionUnit, repetitionUnitID)
	if err != nil {
		return false, err
	}
	return unit.TimeBased, nil
}

func (s *Service) CreateExercise(ctx context.Context, e *Exercise) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.catalog.exercise.create")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	const op = "create exercise"
	e.Name = strings.TrimSpace(e.Name)
	if e.Name == "" {
		return apperr.Validation(op, "name is required")
	}
	if e.CategoryID == uuid.Nil {
		return apperr.Validation(op, "category is required")
	}
	if !e.Level.IsValid() {
		return apperr.Validation(op, "invalid level %q", e.Level)
	}
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	e.PrimaryMuscleIDs, e.SecondaryMuscleIDs = normalizeMuscles(e.PrimaryMuscleIDs, e.SecondaryMuscleIDs)
	if e.Instructions == nil {
		e.Instructions = []string{}
	}
	if e.Images == nil {
		e.Images = []string{}
	}

	return s.store.AddExercise(ctx, e)
}

// ToggleMuscle flips a muscle in one of the exercise's muscle sets, keeping
// primary and secondary disjoint.
func (s *Service) ToggleMuscle(ctx context.Context, exerciseID, muscleID uuid.UUID, role MuscleRole) (_ *Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.catalog.exercise.togglemuscle")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if !role.IsValid() {
		return nil, apperr.Validation("toggle muscle", "unknown role %q", role)
	}
	if _, err := s.Lookup(ctx, KindMuscleGroup, muscleID); err != nil {
		return nil, err
	}

	return s.store.UpdateExerciseMuscles(ctx, exerciseID, func(primary, secondary []uuid.UUID) ([]uuid.UUID, []uuid.UUID, error) {
		return ToggleMuscle(primary, secondary, muscleID, role)
	})
}

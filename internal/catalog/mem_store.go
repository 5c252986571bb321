package catalog

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/soodoh/openfit/internal/apperr"
)

var _ Store = (*MemStore)(nil)

// MemStore keeps the catalog in memory. It backs the "memory" store backend
// and tests.
type MemStore struct {
	mu        sync.RWMutex
	lookups   map[Kind]map[uuid.UUID]Lookup
	exercises map[uuid.UUID]Exercise
}

func NewMemStore() *MemStore {
	lookups := make(map[Kind]map[uuid.UUID]Lookup, len(Kinds))
	for _, k := range Kinds {
		lookups[k] = map[uuid.UUID]Lookup{}
	}
	return &MemStore{
		lookups:   lookups,
		exercises: map[uuid.UUID]Exercise{},
	}
}

func (s *MemStore) ListLookups(ctx context.Context, kind Kind) ([]Lookup, error) {
	if _, err := tableFor(kind); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Lookup, 0, len(s.lookups[kind]))
	for _, l := range s.lookups[kind] {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

func (s *MemStore) CreateLookup(_ context.Context, kind Kind, l *Lookup) error {
	if _, err := tableFor(kind); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.lookups[kind] {
		if existing.Name == l.Name {
			return apperr.Conflict("create "+string(kind), "name %q already exists", l.Name)
		}
	}
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	if kind != KindRepetitionUnit {
		l.TimeBased = false
	}
	s.lookups[kind][l.ID] = *l
	return nil
}

func (s *MemStore) UpdateLookup(_ context.Context, kind Kind, l *Lookup) error {
	if _, err := tableFor(kind); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.lookups[kind][l.ID]; !ok {
		return apperr.NotFound("update "+string(kind), string(kind))
	}
	for id, existing := range s.lookups[kind] {
		if id != l.ID && existing.Name == l.Name {
			return apperr.Conflict("update "+string(kind), "name %q already exists", l.Name)
		}
	}
	if kind != KindRepetitionUnit {
		l.TimeBased = false
	}
	s.lookups[kind][l.ID] = *l
	return nil
}

func (s *MemStore) DeleteLookup(_ context.Context, kind Kind, id uuid.UUID) error {
	if _, err := tableFor(kind); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.lookups[kind][id]; !ok {
		return apperr.NotFound("delete "+string(kind), string(kind))
	}
	if s.referencedLocked(kind, id) {
		return apperr.Conflict("delete "+string(kind), "%s is still referenced", kind)
	}
	delete(s.lookups[kind], id)
	return nil
}

func (s *MemStore) referencedLocked(kind Kind, id uuid.UUID) bool {
	for _, e := range s.exercises {
		switch kind {
		case KindEquipment:
			if e.EquipmentID != nil && *e.EquipmentID == id {
				return true
			}
		case KindCategory:
			if e.CategoryID == id {
				return true
			}
		case KindMuscleGroup:
			if contains(e.PrimaryMuscleIDs, id) || contains(e.SecondaryMuscleIDs, id) {
				return true
			}
		case KindWeightUnit, KindRepetitionUnit:
			// referenced by sets, which live in the workouts store
		}
	}
	return false
}

func (s *MemStore) GetExercise(ctx context.Context, id uuid.UUID) (*Exercise, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.exercises[id]
	if !ok {
		return nil, apperr.NotFound("get exercise", "exercise")
	}
	e = cloneExercise(e)
	return &e, nil
}

func (s *MemStore) AddExercise(_ context.Context, e *Exercise) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.exercises[e.ID]; ok {
		return apperr.Conflict("add exercise", "exercise %s already exists", e.ID)
	}
	if e.EquipmentID != nil {
		if _, ok := s.lookups[KindEquipment][*e.EquipmentID]; !ok {
			return apperr.Validation("add exercise", "unknown equipment or category")
		}
	}
	if _, ok := s.lookups[KindCategory][e.CategoryID]; !ok {
		return apperr.Validation("add exercise", "unknown equipment or category")
	}
	for _, m := range append(append([]uuid.UUID{}, e.PrimaryMuscleIDs...), e.SecondaryMuscleIDs...) {
		if _, ok := s.lookups[KindMuscleGroup][m]; !ok {
			return apperr.Validation("exercise muscles", "unknown muscle group")
		}
	}

	stored := cloneExercise(*e)
	stored.PrimaryMuscleIDs, stored.SecondaryMuscleIDs = normalizeMuscles(stored.PrimaryMuscleIDs, stored.SecondaryMuscleIDs)
	s.exercises[e.ID] = stored
	return nil
}

func (s *MemStore) UpdateExerciseMuscles(
	_ context.Context,
	id uuid.UUID,
	update func(primary, secondary []uuid.UUID) ([]uuid.UUID, []uuid.UUID, error),
) (*Exercise, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.exercises[id]
	if !ok {
		return nil, apperr.NotFound("update exercise muscles", "exercise")
	}
	primary, secondary, err := update(
		append([]uuid.UUID{}, e.PrimaryMuscleIDs...),
		append([]uuid.UUID{}, e.SecondaryMuscleIDs...),
	)
	if err != nil {
		return nil, err
	}
	e.PrimaryMuscleIDs, e.SecondaryMuscleIDs = normalizeMuscles(primary, secondary)
	s.exercises[id] = e

	out := cloneExercise(e)
	return &out, nil
}

func (s *MemStore) FindExercises(ctx context.Context, q ExerciseQuery) ([]Exercise, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	matches := s.match(q.Filter)
	if q.Filter.TextSearch() {
		query := strings.ToLower(q.Filter.Query)
		sort.SliceStable(matches, func(i, j int) bool {
			ri, rj := textRank(matches[i].Name, query), textRank(matches[j].Name, query)
			if ri != rj {
				return ri < rj
			}
			return keysetLess(matches[i], matches[j])
		})
		return window(matches, q.Offset, q.Limit), nil
	}

	sort.Slice(matches, func(i, j int) bool {
		return keysetLess(matches[i], matches[j])
	})
	if q.After != nil {
		start := sort.Search(len(matches), func(i int) bool {
			return afterKeyset(matches[i], *q.After)
		})
		matches = matches[start:]
	}
	return window(matches, q.Offset, q.Limit), nil
}

func (s *MemStore) CountExercises(ctx context.Context, f ExerciseFilter) (int, error) {
	if err := ctx.Err(); err != nil {
		return -1, err
	}
	return len(s.match(f)), nil
}

func (s *MemStore) match(f ExerciseFilter) []Exercise {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var gym map[uuid.UUID]bool
	if f.GymEquipment != nil {
		gym = make(map[uuid.UUID]bool, len(f.GymEquipment))
		for _, id := range f.GymEquipment {
			gym[id] = true
		}
	}
	query := strings.ToLower(f.Query)

	out := make([]Exercise, 0)
	for _, e := range s.exercises {
		if query != "" && !strings.Contains(strings.ToLower(e.Name), query) {
			continue
		}
		if f.EquipmentID != nil && (e.EquipmentID == nil || *e.EquipmentID != *f.EquipmentID) {
			continue
		}
		if f.Level != "" && e.Level != f.Level {
			continue
		}
		if f.CategoryID != nil && e.CategoryID != *f.CategoryID {
			continue
		}
		if f.PrimaryMuscleID != nil && !contains(e.PrimaryMuscleIDs, *f.PrimaryMuscleID) {
			continue
		}
		if gym != nil && !e.MatchesGym(gym) {
			continue
		}
		out = append(out, cloneExercise(e))
	}
	return out
}

// textRank orders matches: exact name, name prefix, word prefix, substring.
func textRank(name, query string) int {
	name = strings.ToLower(name)
	switch {
	case name == query:
		return 0
	case strings.HasPrefix(name, query):
		return 1
	case strings.Contains(name, " "+query):
		return 2
	default:
		return 3
	}
}

func keysetLess(a, b Exercise) bool {
	if a.Name != b.Name {
		return a.Name < b.Name
	}
	return strings.Compare(a.ID.String(), b.ID.String()) < 0
}

func afterKeyset(e Exercise, k Keyset) bool {
	if e.Name != k.Name {
		return e.Name > k.Name
	}
	return strings.Compare(e.ID.String(), k.ID.String()) > 0
}

func window(items []Exercise, offset, limit int) []Exercise {
	if offset < 0 || offset >= len(items) {
		return []Exercise{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

func cloneExercise(e Exercise) Exercise {
	if e.EquipmentID != nil {
		id := *e.EquipmentID
		e.EquipmentID = &id
	}
	e.PrimaryMuscleIDs = append([]uuid.UUID{}, e.PrimaryMuscleIDs...)
	e.SecondaryMuscleIDs = append([]uuid.UUID{}, e.SecondaryMuscleIDs...)
	e.Instructions = append([]string{}, e.Instructions...)
	e.Images = append([]string{}, e.Images...)
	return e
}

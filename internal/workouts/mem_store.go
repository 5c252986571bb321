package workouts

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/soodoh/openfit/internal/apperr"
)

var _ Store = (*MemStore)(nil)

type memState struct {
	routines    map[uuid.UUID]Routine
	days        map[uuid.UUID]RoutineDay
	sessions    map[uuid.UUID]Session
	groups      map[uuid.UUID]SetGroup
	sets        map[uuid.UUID]Set
	gyms        map[uuid.UUID]Gym
	defaultGyms map[uuid.UUID]uuid.UUID
}

func newMemState() memState {
	return memState{
		routines:    map[uuid.UUID]Routine{},
		days:        map[uuid.UUID]RoutineDay{},
		sessions:    map[uuid.UUID]Session{},
		groups:      map[uuid.UUID]SetGroup{},
		sets:        map[uuid.UUID]Set{},
		gyms:        map[uuid.UUID]Gym{},
		defaultGyms: map[uuid.UUID]uuid.UUID{},
	}
}

func (s memState) clone() memState {
	c := memState{
		routines:    make(map[uuid.UUID]Routine, len(s.routines)),
		days:        make(map[uuid.UUID]RoutineDay, len(s.days)),
		sessions:    make(map[uuid.UUID]Session, len(s.sessions)),
		groups:      make(map[uuid.UUID]SetGroup, len(s.groups)),
		sets:        make(map[uuid.UUID]Set, len(s.sets)),
		gyms:        make(map[uuid.UUID]Gym, len(s.gyms)),
		defaultGyms: make(map[uuid.UUID]uuid.UUID, len(s.defaultGyms)),
	}
	for k, v := range s.routines {
		c.routines[k] = v
	}
	for k, v := range s.days {
		v.Weekdays = append([]int{}, v.Weekdays...)
		c.days[k] = v
	}
	for k, v := range s.sessions {
		c.sessions[k] = v
	}
	for k, v := range s.groups {
		c.groups[k] = v
	}
	for k, v := range s.sets {
		c.sets[k] = v
	}
	for k, v := range s.gyms {
		v.EquipmentIDs = append([]uuid.UUID{}, v.EquipmentIDs...)
		c.gyms[k] = v
	}
	for k, v := range s.defaultGyms {
		c.defaultGyms[k] = v
	}
	return c
}

// MemStore keeps workout data in memory. A unit of work runs against a copy
// of the state which replaces the live state only when fn succeeds. Units of
// work are fully serialized.
type MemStore struct {
	mu    sync.Mutex
	state memState
}

func NewMemStore() *MemStore {
	return &MemStore{
		state: newMemState(),
	}
}

func (m *MemStore) InTx(ctx context.Context, fn func(tx Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	tx := &memTx{state: m.state.clone()}
	if err := fn(tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	m.state = tx.state
	return nil
}

type memTx struct {
	state memState
}

func (t *memTx) Lock(ctx context.Context, _ string) error {
	return ctx.Err()
}

func (t *memTx) InsertRoutine(_ context.Context, r *Routine) error {
	t.state.routines[r.ID] = *r
	return nil
}

func (t *memTx) GetRoutine(_ context.Context, userID, id uuid.UUID) (*Routine, error) {
	r, ok := t.state.routines[id]
	if !ok || r.UserID != userID {
		return nil, apperr.NotFound("get routine", "routine")
	}
	return &r, nil
}

func (t *memTx) ListRoutines(_ context.Context, userID uuid.UUID) ([]Routine, error) {
	out := make([]Routine, 0)
	for _, r := range t.state.routines {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

func (t *memTx) UpdateRoutine(ctx context.Context, r *Routine) error {
	if _, err := t.GetRoutine(ctx, r.UserID, r.ID); err != nil {
		return err
	}
	t.state.routines[r.ID] = *r
	return nil
}

func (t *memTx) DeleteRoutine(ctx context.Context, userID, id uuid.UUID) error {
	if _, err := t.GetRoutine(ctx, userID, id); err != nil {
		return err
	}
	for _, d := range t.state.days {
		if d.RoutineID == id {
			return apperr.Conflict("delete routine", "routine still has days")
		}
	}
	delete(t.state.routines, id)
	return nil
}

func (t *memTx) CountRoutines(ctx context.Context, userID uuid.UUID) (int, error) {
	routines, err := t.ListRoutines(ctx, userID)
	return len(routines), err
}

func (t *memTx) InsertRoutineDay(_ context.Context, d *RoutineDay) error {
	if r, ok := t.state.routines[d.RoutineID]; !ok || r.UserID != d.UserID {
		return apperr.NotFound("insert routine day", "routine")
	}
	d.Weekdays = append([]int{}, d.Weekdays...)
	t.state.days[d.ID] = *d
	return nil
}

func (t *memTx) GetRoutineDay(_ context.Context, userID, id uuid.UUID) (*RoutineDay, error) {
	d, ok := t.state.days[id]
	if !ok || d.UserID != userID {
		return nil, apperr.NotFound("get routine day", "routine day")
	}
	d.Weekdays = append([]int{}, d.Weekdays...)
	return &d, nil
}

func (t *memTx) ListRoutineDays(_ context.Context, userID, routineID uuid.UUID) ([]RoutineDay, error) {
	out := make([]RoutineDay, 0)
	for _, d := range t.state.days {
		if d.UserID == userID && d.RoutineID == routineID {
			d.Weekdays = append([]int{}, d.Weekdays...)
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Description != out[j].Description {
			return out[i].Description < out[j].Description
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

func (t *memTx) UpdateRoutineDay(ctx context.Context, d *RoutineDay) error {
	if _, err := t.GetRoutineDay(ctx, d.UserID, d.ID); err != nil {
		return err
	}
	d.Weekdays = append([]int{}, d.Weekdays...)
	t.state.days[d.ID] = *d
	return nil
}

func (t *memTx) DeleteRoutineDay(ctx context.Context, userID, id uuid.UUID) error {
	if _, err := t.GetRoutineDay(ctx, userID, id); err != nil {
		return err
	}
	for _, g := range t.state.groups {
		if g.RoutineDayID != nil && *g.RoutineDayID == id {
			return apperr.Conflict("delete routine day", "routine day still has set groups")
		}
	}
	for _, s := range t.state.sessions {
		if s.TemplateID != nil && *s.TemplateID == id {
			return apperr.Conflict("delete routine day", "routine day is still referenced by sessions")
		}
	}
	delete(t.state.days, id)
	return nil
}

func (t *memTx) checkSession(s *Session) error {
	if s.EndTime != nil && !s.StartTime.Before(*s.EndTime) {
		return apperr.New("store session", apperr.ErrInvalidDuration, "start time must be before end time")
	}
	if s.EndTime == nil {
		for _, other := range t.state.sessions {
			if other.ID != s.ID && other.UserID == s.UserID && other.EndTime == nil {
				return apperr.Conflict("store session", "another session is already active")
			}
		}
	}
	if s.TemplateID != nil {
		if d, ok := t.state.days[*s.TemplateID]; !ok || d.UserID != s.UserID {
			return apperr.NotFound("store session", "routine day")
		}
	}
	return nil
}

func (t *memTx) InsertSession(_ context.Context, s *Session) error {
	if err := t.checkSession(s); err != nil {
		return err
	}
	t.state.sessions[s.ID] = *s
	return nil
}

func (t *memTx) GetSession(_ context.Context, userID, id uuid.UUID) (*Session, error) {
	s, ok := t.state.sessions[id]
	if !ok || s.UserID != userID {
		return nil, apperr.NotFound("get session", "session")
	}
	return &s, nil
}

func (t *memTx) UpdateSession(ctx context.Context, s *Session) error {
	if _, err := t.GetSession(ctx, s.UserID, s.ID); err != nil {
		return err
	}
	if err := t.checkSession(s); err != nil {
		return err
	}
	t.state.sessions[s.ID] = *s
	return nil
}

func (t *memTx) DeleteSession(ctx context.Context, userID, id uuid.UUID) error {
	if _, err := t.GetSession(ctx, userID, id); err != nil {
		return err
	}
	for _, g := range t.state.groups {
		if g.SessionID != nil && *g.SessionID == id {
			return apperr.Conflict("delete session", "session still has set groups")
		}
	}
	delete(t.state.sessions, id)
	return nil
}

func (t *memTx) userSessions(userID uuid.UUID) []Session {
	out := make([]Session, 0)
	for _, s := range t.state.sessions {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartTime.Equal(out[j].StartTime) {
			return out[i].StartTime.After(out[j].StartTime)
		}
		return out[i].ID.String() > out[j].ID.String()
	})
	return out
}

func (t *memTx) ListSessions(_ context.Context, userID uuid.UUID, limit, offset int) ([]Session, error) {
	sessions := t.userSessions(userID)
	if offset < 0 || offset >= len(sessions) {
		return []Session{}, nil
	}
	sessions = sessions[offset:]
	if limit > 0 && limit < len(sessions) {
		sessions = sessions[:limit]
	}
	return sessions, nil
}

func (t *memTx) CountSessions(_ context.Context, userID uuid.UUID) (int, error) {
	return len(t.userSessions(userID)), nil
}

func (t *memTx) OpenSessions(_ context.Context, userID uuid.UUID) ([]Session, error) {
	out := make([]Session, 0)
	for _, s := range t.userSessions(userID) {
		if s.EndTime == nil {
			out = append(out, s)
		}
	}
	return out, nil
}

func (t *memTx) ClearSessionTemplate(_ context.Context, userID, routineDayID uuid.UUID) error {
	for id, s := range t.state.sessions {
		if s.UserID == userID && s.TemplateID != nil && *s.TemplateID == routineDayID {
			s.TemplateID = nil
			t.state.sessions[id] = s
		}
	}
	return nil
}

func (t *memTx) SessionStartTimes(_ context.Context, userID uuid.UUID, since time.Time) ([]time.Time, error) {
	out := make([]time.Time, 0)
	for _, s := range t.userSessions(userID) {
		if !s.StartTime.Before(since) {
			out = append(out, s.StartTime)
		}
	}
	return out, nil
}

func (t *memTx) InsertSetGroup(_ context.Context, g *SetGroup) error {
	if (g.RoutineDayID == nil) == (g.SessionID == nil) {
		return apperr.Validation("insert set group", "set group needs exactly one parent")
	}
	if g.RoutineDayID != nil {
		if d, ok := t.state.days[*g.RoutineDayID]; !ok || d.UserID != g.UserID {
			return apperr.NotFound("insert set group", "routine day")
		}
	}
	if g.SessionID != nil {
		if s, ok := t.state.sessions[*g.SessionID]; !ok || s.UserID != g.UserID {
			return apperr.NotFound("insert set group", "session")
		}
	}
	t.state.groups[g.ID] = *g
	return nil
}

func (t *memTx) GetSetGroup(_ context.Context, userID, id uuid.UUID) (*SetGroup, error) {
	g, ok := t.state.groups[id]
	if !ok || g.UserID != userID {
		return nil, apperr.NotFound("get set group", "set group")
	}
	return &g, nil
}

func (t *memTx) ListSetGroups(_ context.Context, userID uuid.UUID, parent Parent) ([]SetGroup, error) {
	out := make([]SetGroup, 0)
	for _, g := range t.state.groups {
		if g.UserID == userID && g.Parent() == parent {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Order < out[j].Order
	})
	return out, nil
}

func (t *memTx) UpdateSetGroup(ctx context.Context, g *SetGroup) error {
	if _, err := t.GetSetGroup(ctx, g.UserID, g.ID); err != nil {
		return err
	}
	t.state.groups[g.ID] = *g
	return nil
}

func (t *memTx) DeleteSetGroup(ctx context.Context, userID, id uuid.UUID) error {
	if _, err := t.GetSetGroup(ctx, userID, id); err != nil {
		return err
	}
	for _, s := range t.state.sets {
		if s.SetGroupID == id {
			return apperr.Conflict("delete set group", "set group still has sets")
		}
	}
	delete(t.state.groups, id)
	return nil
}

func (t *memTx) UpdateSetGroupOrders(ctx context.Context, userID uuid.UUID, orders map[uuid.UUID]int) error {
	for id, order := range orders {
		g, err := t.GetSetGroup(ctx, userID, id)
		if err != nil {
			return err
		}
		g.Order = order
		t.state.groups[id] = *g
	}
	return nil
}

func (t *memTx) InsertSet(_ context.Context, s *Set) error {
	if g, ok := t.state.groups[s.SetGroupID]; !ok || g.UserID != s.UserID {
		return apperr.NotFound("insert set", "set group")
	}
	t.state.sets[s.ID] = *s
	return nil
}

func (t *memTx) GetSet(_ context.Context, userID, id uuid.UUID) (*Set, error) {
	s, ok := t.state.sets[id]
	if !ok || s.UserID != userID {
		return nil, apperr.NotFound("get set", "set")
	}
	return &s, nil
}

func (t *memTx) ListSets(_ context.Context, userID uuid.UUID, groupIDs ...uuid.UUID) ([]Set, error) {
	rank := make(map[uuid.UUID]int, len(groupIDs))
	for i, id := range groupIDs {
		rank[id] = i
	}
	out := make([]Set, 0)
	for _, s := range t.state.sets {
		if _, ok := rank[s.SetGroupID]; ok && s.UserID == userID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SetGroupID != out[j].SetGroupID {
			return rank[out[i].SetGroupID] < rank[out[j].SetGroupID]
		}
		return out[i].Order < out[j].Order
	})
	return out, nil
}

func (t *memTx) UpdateSet(ctx context.Context, s *Set) error {
	if _, err := t.GetSet(ctx, s.UserID, s.ID); err != nil {
		return err
	}
	t.state.sets[s.ID] = *s
	return nil
}

func (t *memTx) DeleteSet(ctx context.Context, userID, id uuid.UUID) error {
	if _, err := t.GetSet(ctx, userID, id); err != nil {
		return err
	}
	delete(t.state.sets, id)
	return nil
}

func (t *memTx) UpdateSetOrders(ctx context.Context, userID uuid.UUID, orders map[uuid.UUID]int) error {
	for id, order := range orders {
		s, err := t.GetSet(ctx, userID, id)
		if err != nil {
			return err
		}
		s.Order = order
		t.state.sets[id] = *s
	}
	return nil
}

func (t *memTx) SetGroupExercise(_ context.Context, userID, groupID, exerciseID uuid.UUID) (int, error) {
	updated := 0
	for id, s := range t.state.sets {
		if s.SetGroupID == groupID && s.UserID == userID {
			s.ExerciseID = exerciseID
			t.state.sets[id] = s
			updated++
		}
	}
	return updated, nil
}

func (t *memTx) InsertGym(_ context.Context, g *Gym) error {
	if len(g.EquipmentIDs) == 0 {
		return apperr.Validation("insert gym", "at least one equipment is required")
	}
	g.EquipmentIDs = append([]uuid.UUID{}, g.EquipmentIDs...)
	t.state.gyms[g.ID] = *g
	return nil
}

func (t *memTx) GetGym(_ context.Context, userID, id uuid.UUID) (*Gym, error) {
	g, ok := t.state.gyms[id]
	if !ok || g.UserID != userID {
		return nil, apperr.NotFound("get gym", "gym")
	}
	g.EquipmentIDs = append([]uuid.UUID{}, g.EquipmentIDs...)
	return &g, nil
}

func (t *memTx) ListGyms(_ context.Context, userID uuid.UUID) ([]Gym, error) {
	out := make([]Gym, 0)
	for _, g := range t.state.gyms {
		if g.UserID == userID {
			g.EquipmentIDs = append([]uuid.UUID{}, g.EquipmentIDs...)
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

func (t *memTx) UpdateGym(ctx context.Context, g *Gym) error {
	if _, err := t.GetGym(ctx, g.UserID, g.ID); err != nil {
		return err
	}
	if len(g.EquipmentIDs) == 0 {
		return apperr.Validation("update gym", "at least one equipment is required")
	}
	g.EquipmentIDs = append([]uuid.UUID{}, g.EquipmentIDs...)
	t.state.gyms[g.ID] = *g
	return nil
}

func (t *memTx) DeleteGym(ctx context.Context, userID, id uuid.UUID) error {
	if _, err := t.GetGym(ctx, userID, id); err != nil {
		return err
	}
	delete(t.state.gyms, id)
	if def, ok := t.state.defaultGyms[userID]; ok && def == id {
		delete(t.state.defaultGyms, userID)
	}
	return nil
}

func (t *memTx) DefaultGym(_ context.Context, userID uuid.UUID) (*uuid.UUID, error) {
	id, ok := t.state.defaultGyms[userID]
	if !ok {
		return nil, nil
	}
	return &id, nil
}

func (t *memTx) SetDefaultGym(ctx context.Context, userID uuid.UUID, gymID *uuid.UUID) error {
	if gymID == nil {
		delete(t.state.defaultGyms, userID)
		return nil
	}
	if _, err := t.GetGym(ctx, userID, *gymID); err != nil {
		return err
	}
	t.state.defaultGyms[userID] = *gymID
	return nil
}

package workouts_test

import (
	"context"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/mock/gomock"

	"github.com/soodoh/openfit/internal/apperr"
	"github.com/soodoh/openfit/internal/ordering"
	"github.com/soodoh/openfit/internal/telemetry/metrics"
	"github.com/soodoh/openfit/internal/workouts"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var (
	benchPressID = uuid.MustParse("0b7f5a4e-1c2d-4e3f-8a9b-000000000001")
	rowID        = uuid.MustParse("0b7f5a4e-1c2d-4e3f-8a9b-000000000002")
	plankID      = uuid.MustParse("0b7f5a4e-1c2d-4e3f-8a9b-000000000003")
	repsUnitID   = uuid.MustParse("6d1e0c3a-2b4f-4a5e-9c8d-000000000001")
	secondsID    = uuid.MustParse("6d1e0c3a-2b4f-4a5e-9c8d-000000000002")
	kgUnitID     = uuid.MustParse("6d1e0c3a-2b4f-4a5e-9c8d-000000000003")
)

type fixture struct {
	ctx     context.Context
	svc     *workouts.Service
	store   *workouts.MemStore
	catalog *MockCatalog
	metrics *metrics.Manager
	userID  uuid.UUID
	now     time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	catalogMock := NewMockCatalog(ctrl)
	m := metrics.NewTestManager()

	f := &fixture{
		ctx:     context.Background(),
		catalog: catalogMock,
		metrics: m,
		userID:  uuid.New(),
		now:     time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC),
		store:   workouts.NewMemStore(),
	}
	f.svc = workouts.NewService(
		f.store,
		catalogMock,
		workouts.WithMetrics(m),
		workouts.WithClock(func() time.Time { return f.now }),
	)
	return f
}

// knownExercises makes every exercise lookup succeed.
func (f *fixture) knownExercises() {
	f.catalog.EXPECT().ExerciseExists(gomock.Any(), gomock.Any()).Return(true, nil).AnyTimes()
}

func (f *fixture) day(t *testing.T) *workouts.RoutineDay {
	t.Helper()
	routine, err := f.svc.CreateRoutine(f.ctx, f.userID, workouts.RoutineInput{Name: "Push Pull"})
	require.NoError(t, err)
	day, err := f.svc.CreateRoutineDay(f.ctx, f.userID, routine.ID, "Push", []int{1, 4})
	require.NoError(t, err)
	return day
}

func (f *fixture) group(t *testing.T, parent workouts.Parent, sets int) *workouts.SetGroup {
	t.Helper()
	group, err := f.svc.CreateSetGroup(f.ctx, f.userID, parent, workouts.SetGroupInput{Type: workouts.SetGroupNormal})
	require.NoError(t, err)
	for i := 0; i < sets; i++ {
		_, err := f.svc.CreateSet(f.ctx, f.userID, group.ID, workouts.SetInput{
			ExerciseID:       benchPressID,
			Reps:             10 - i,
			RepetitionUnitID: repsUnitID,
			Weight:           60 + 5*i,
			WeightUnitID:     kgUnitID,
			RestTime:         90,
		})
		require.NoError(t, err)
	}
	return group
}

func groupIDs(groups []workouts.SetGroup) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(groups))
	for _, g := range groups {
		ids = append(ids, g.ID)
	}
	return ids
}

func detailOrders(groups []workouts.SetGroupDetail) []int {
	orders := make([]int, 0, len(groups))
	for _, g := range groups {
		orders = append(orders, g.Order)
	}
	return orders
}

func TestCreateRoutineDay_Weekdays(t *testing.T) {
	f := newFixture(t)
	routine, err := f.svc.CreateRoutine(f.ctx, f.userID, workouts.RoutineInput{Name: "Upper Lower"})
	require.NoError(t, err)

	day, err := f.svc.CreateRoutineDay(f.ctx, f.userID, routine.ID, "  Upper  ", []int{5, 1, 5, 3})
	require.NoError(t, err)
	assert.Equal(t, "Upper", day.Description)
	assert.Equal(t, []int{1, 3, 5}, day.Weekdays)

	empty, err := f.svc.CreateRoutineDay(f.ctx, f.userID, routine.ID, "Rest", nil)
	require.NoError(t, err)
	assert.Empty(t, empty.Weekdays)

	_, err = f.svc.CreateRoutineDay(f.ctx, f.userID, routine.ID, "Lower", []int{7})
	assert.ErrorIs(t, err, apperr.ErrValidation)
	_, err = f.svc.CreateRoutineDay(f.ctx, f.userID, routine.ID, "   ", []int{1})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = f.svc.CreateRoutineDay(f.ctx, uuid.New(), routine.ID, "Lower", nil)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	detail, err := f.svc.GetRoutine(f.ctx, f.userID, routine.ID)
	require.NoError(t, err)
	assert.Len(t, detail.Days, 2)
}

func TestService_RequiresUser(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.ListRoutines(f.ctx, uuid.Nil)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
	_, err = f.svc.CurrentSession(f.ctx, uuid.Nil)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestService_NotOwnedIsNotFound(t *testing.T) {
	f := newFixture(t)
	f.knownExercises()
	day := f.day(t)
	group := f.group(t, workouts.DayParent(day.ID), 1)

	stranger := uuid.New()
	_, err := f.svc.GetRoutineDay(f.ctx, stranger, day.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	err = f.svc.DeleteSetGroup(f.ctx, stranger, group.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	_, err = f.svc.CreateSetGroup(f.ctx, stranger, workouts.DayParent(day.ID), workouts.SetGroupInput{})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestSetGroups_OrderStaysContiguous(t *testing.T) {
	f := newFixture(t)
	f.knownExercises()
	day := f.day(t)
	parent := workouts.DayParent(day.ID)

	var created []*workouts.SetGroup
	for i := 0; i < 4; i++ {
		g := f.group(t, parent, 2)
		assert.Equal(t, i, g.Order)
		created = append(created, g)
	}

	require.NoError(t, f.svc.DeleteSetGroup(f.ctx, f.userID, created[1].ID))

	detail, err := f.svc.GetRoutineDay(f.ctx, f.userID, day.ID)
	require.NoError(t, err)
	require.Len(t, detail.SetGroups, 3)
	assert.Equal(t, []int{0, 1, 2}, detailOrders(detail.SetGroups))
	assert.Equal(t, created[0].ID, detail.SetGroups[0].ID)
	assert.Equal(t, created[2].ID, detail.SetGroups[1].ID)
	assert.Equal(t, created[3].ID, detail.SetGroups[2].ID)

	// sets of a group get the same treatment
	sets := detail.SetGroups[0].Sets
	require.Len(t, sets, 2)
	require.NoError(t, f.svc.DeleteSet(f.ctx, f.userID, sets[0].ID))
	extra, err := f.svc.CreateSet(f.ctx, f.userID, detail.SetGroups[0].ID, workouts.SetInput{
		ExerciseID:       rowID,
		Reps:             8,
		RepetitionUnitID: repsUnitID,
		WeightUnitID:     kgUnitID,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, extra.Order)
	assert.Equal(t, workouts.SetNormal, extra.Type)

	detail, err = f.svc.GetRoutineDay(f.ctx, f.userID, day.ID)
	require.NoError(t, err)
	var orders []int
	for _, s := range detail.SetGroups[0].Sets {
		orders = append(orders, s.Order)
	}
	assert.True(t, ordering.Contiguous(orders))
	assert.Equal(t, sets[1].ID, detail.SetGroups[0].Sets[0].ID)
}

// Scenario B: reorder [A,B,C,D] to [C,A,D,B].
func TestReorderSetGroups(t *testing.T) {
	f := newFixture(t)
	day := f.day(t)
	parent := workouts.DayParent(day.ID)

	var ids []uuid.UUID
	for i := 0; i < 4; i++ {
		ids = append(ids, f.group(t, parent, 0).ID)
	}
	a, b, c, d := ids[0], ids[1], ids[2], ids[3]

	reordered, err := f.svc.ReorderSetGroups(f.ctx, f.userID, parent, []uuid.UUID{c, a, d, b})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{c, a, d, b}, groupIDs(reordered))

	detail, err := f.svc.GetRoutineDay(f.ctx, f.userID, day.ID)
	require.NoError(t, err)
	require.Len(t, detail.SetGroups, 4)
	for i, want := range []uuid.UUID{c, a, d, b} {
		assert.Equal(t, want, detail.SetGroups[i].ID)
		assert.Equal(t, i, detail.SetGroups[i].Order)
	}
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.CounterReorders.WithLabelValues(string(ordering.ParentRoutineDay))))
}

func TestReorderSetGroups_InvalidLeavesOrderUntouched(t *testing.T) {
	f := newFixture(t)
	day := f.day(t)
	parent := workouts.DayParent(day.ID)

	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		ids = append(ids, f.group(t, parent, 0).ID)
	}

	testCases := []struct {
		name    string
		ordered []uuid.UUID
	}{
		{"missing", []uuid.UUID{ids[2], ids[0]}},
		{"duplicate", []uuid.UUID{ids[2], ids[0], ids[0]}},
		{"foreign", []uuid.UUID{ids[2], ids[0], uuid.New()}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.ReorderSetGroups(f.ctx, f.userID, parent, tc.ordered)
			assert.ErrorIs(t, err, apperr.ErrInvalidReorder)
			assert.Equal(t, 400, apperr.HTTPStatus(err))

			detail, err := f.svc.GetRoutineDay(f.ctx, f.userID, day.ID)
			require.NoError(t, err)
			for i, g := range detail.SetGroups {
				assert.Equal(t, ids[i], g.ID)
				assert.Equal(t, i, g.Order)
			}
		})
	}
	assert.Equal(t, 3.0, testutil.ToFloat64(f.metrics.CounterRejectedReorders))
}

func TestReorderSets(t *testing.T) {
	f := newFixture(t)
	f.knownExercises()
	day := f.day(t)
	group := f.group(t, workouts.DayParent(day.ID), 3)

	detail, err := f.svc.GetRoutineDay(f.ctx, f.userID, day.ID)
	require.NoError(t, err)
	sets := detail.SetGroups[0].Sets
	ordered := []uuid.UUID{sets[2].ID, sets[0].ID, sets[1].ID}

	reordered, err := f.svc.ReorderSets(f.ctx, f.userID, group.ID, ordered)
	require.NoError(t, err)
	require.Len(t, reordered, 3)
	for i, s := range reordered {
		assert.Equal(t, ordered[i], s.ID)
		assert.Equal(t, i, s.Order)
	}

	_, err = f.svc.ReorderSets(f.ctx, f.userID, group.ID, ordered[:2])
	assert.ErrorIs(t, err, apperr.ErrInvalidReorder)
}

// Scenario A: a session started from a routine day gets a detached copy.
func TestCreateSession_FromTemplate(t *testing.T) {
	f := newFixture(t)
	f.knownExercises()
	day := f.day(t)
	parent := workouts.DayParent(day.ID)
	first := f.group(t, parent, 3)
	second := f.group(t, parent, 2)

	session, err := f.svc.CreateSession(f.ctx, f.userID, workouts.SessionInput{TemplateID: &day.ID})
	require.NoError(t, err)
	assert.Equal(t, "Push", session.Name)
	assert.Equal(t, f.now, session.StartTime)
	assert.True(t, session.Active())
	require.NotNil(t, session.TemplateID)
	assert.Equal(t, day.ID, *session.TemplateID)

	require.Len(t, session.SetGroups, 2)
	assert.Len(t, session.SetGroups[0].Sets, 3)
	assert.Len(t, session.SetGroups[1].Sets, 2)
	assert.Equal(t, []int{0, 1}, detailOrders(session.SetGroups))
	for _, g := range session.SetGroups {
		assert.NotEqual(t, first.ID, g.ID)
		assert.NotEqual(t, second.ID, g.ID)
		require.NotNil(t, g.SessionID)
		assert.Equal(t, session.ID, *g.SessionID)
		assert.Nil(t, g.RoutineDayID)
		for i, s := range g.Sets {
			assert.False(t, s.Completed)
			assert.Equal(t, i, s.Order)
			assert.Equal(t, 10-i, s.Reps)
		}
	}

	// edits to the copy leave the template alone
	_, err = f.svc.SetCompleted(f.ctx, f.userID, session.SetGroups[0].Sets[0].ID, true)
	require.NoError(t, err)
	require.NoError(t, f.svc.DeleteSetGroup(f.ctx, f.userID, session.SetGroups[1].ID))

	template, err := f.svc.GetRoutineDay(f.ctx, f.userID, day.ID)
	require.NoError(t, err)
	require.Len(t, template.SetGroups, 2)
	assert.Equal(t, first.ID, template.SetGroups[0].ID)
	assert.Len(t, template.SetGroups[1].Sets, 2)
	for _, s := range template.SetGroups[0].Sets {
		assert.False(t, s.Completed)
	}

	current, err := f.svc.CurrentSession(f.ctx, f.userID)
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, session.ID, current.ID)
	assert.Len(t, current.SetGroups, 1)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.CounterSessionsStarted.WithLabelValues("template")))
}

func TestCreateSession_Singleton(t *testing.T) {
	f := newFixture(t)

	current, err := f.svc.CurrentSession(f.ctx, f.userID)
	require.NoError(t, err)
	assert.Nil(t, current)

	first, err := f.svc.CreateSession(f.ctx, f.userID, workouts.SessionInput{})
	require.NoError(t, err)

	_, err = f.svc.CreateSession(f.ctx, f.userID, workouts.SessionInput{})
	assert.ErrorIs(t, err, apperr.ErrConflict)

	// a finished session can be logged while another one is active
	start := f.now.Add(-48 * time.Hour)
	end := start.Add(time.Hour)
	_, err = f.svc.CreateSession(f.ctx, f.userID, workouts.SessionInput{StartTime: &start, EndTime: &end})
	require.NoError(t, err)

	f.now = f.now.Add(30 * time.Minute)
	second, err := f.svc.CreateSession(f.ctx, f.userID, workouts.SessionInput{SupersedeActive: true})
	require.NoError(t, err)

	superseded, err := f.svc.GetSession(f.ctx, f.userID, first.ID)
	require.NoError(t, err)
	require.NotNil(t, superseded.EndTime)
	assert.Equal(t, f.now, *superseded.EndTime)

	current, err = f.svc.CurrentSession(f.ctx, f.userID)
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, second.ID, current.ID)

	// other users are independent
	_, err = f.svc.CreateSession(f.ctx, uuid.New(), workouts.SessionInput{})
	assert.NoError(t, err)
}

func TestCreateSession_ConcurrentStarts(t *testing.T) {
	f := newFixture(t)

	const workers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		conflicts int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.CreateSession(f.ctx, f.userID, workouts.SessionInput{})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				succeeded++
			} else if assert.ErrorIs(t, err, apperr.ErrConflict) {
				conflicts++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, workers-1, conflicts)
}

func TestUpdateSession(t *testing.T) {
	f := newFixture(t)
	session, err := f.svc.CreateSession(f.ctx, f.userID, workouts.SessionInput{})
	require.NoError(t, err)

	before := session.StartTime.Add(-time.Minute)
	_, err = f.svc.UpdateSession(f.ctx, f.userID, session.ID, workouts.SessionPatch{EndTime: &before})
	assert.ErrorIs(t, err, apperr.ErrInvalidDuration)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	bad := 6
	_, err = f.svc.UpdateSession(f.ctx, f.userID, session.ID, workouts.SessionPatch{Impression: &bad})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	good, notes := 4, "felt strong"
	updated, err := f.svc.UpdateSession(f.ctx, f.userID, session.ID, workouts.SessionPatch{Impression: &good, Notes: &notes})
	require.NoError(t, err)
	assert.Equal(t, 4, *updated.Impression)
	assert.Equal(t, notes, updated.Notes)

	f.now = f.now.Add(time.Hour)
	finished, err := f.svc.FinishSession(f.ctx, f.userID, session.ID)
	require.NoError(t, err)
	require.NotNil(t, finished.EndTime)
	_, err = f.svc.FinishSession(f.ctx, f.userID, session.ID)
	assert.ErrorIs(t, err, apperr.ErrConflict)

	other, err := f.svc.CreateSession(f.ctx, f.userID, workouts.SessionInput{})
	require.NoError(t, err)
	_, err = f.svc.UpdateSession(f.ctx, f.userID, session.ID, workouts.SessionPatch{Reopen: true})
	assert.ErrorIs(t, err, apperr.ErrConflict)

	require.NoError(t, f.svc.DeleteSession(f.ctx, f.userID, other.ID))
	reopened, err := f.svc.UpdateSession(f.ctx, f.userID, session.ID, workouts.SessionPatch{Reopen: true})
	require.NoError(t, err)
	assert.True(t, reopened.Active())
}

func TestListSessions(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 5; i++ {
		start := f.now.Add(-time.Duration(i+1) * 24 * time.Hour)
		end := start.Add(time.Hour)
		_, err := f.svc.CreateSession(f.ctx, f.userID, workouts.SessionInput{StartTime: &start, EndTime: &end})
		require.NoError(t, err)
	}

	page, err := f.svc.ListSessions(f.ctx, f.userID, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, 5, page.Total)
	assert.Equal(t, 3, page.TotalPages)
	require.Len(t, page.Items, 2)
	assert.Equal(t, f.now.Add(-72*time.Hour), page.Items[0].StartTime)
	assert.True(t, page.Items[0].StartTime.After(page.Items[1].StartTime))

	last, err := f.svc.ListSessions(f.ctx, f.userID, 3, 2)
	require.NoError(t, err)
	assert.Len(t, last.Items, 1)

	_, err = f.svc.ListSessions(f.ctx, f.userID, 0, 2)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	for _, p := range []int{4611686018427387905, math.MaxInt} {
		_, err = f.svc.ListSessions(f.ctx, f.userID, p, 2)
		assert.ErrorIs(t, err, apperr.ErrValidation, "page %d", p)
	}
}

func TestDeleteRoutine_Cascades(t *testing.T) {
	f := newFixture(t)
	f.knownExercises()
	day := f.day(t)
	f.group(t, workouts.DayParent(day.ID), 2)

	session, err := f.svc.CreateSession(f.ctx, f.userID, workouts.SessionInput{TemplateID: &day.ID})
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteRoutine(f.ctx, f.userID, day.RoutineID))

	_, err = f.svc.GetRoutine(f.ctx, f.userID, day.RoutineID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	_, err = f.svc.GetRoutineDay(f.ctx, f.userID, day.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	kept, err := f.svc.GetSession(f.ctx, f.userID, session.ID)
	require.NoError(t, err)
	assert.Nil(t, kept.TemplateID)
	require.Len(t, kept.SetGroups, 1)
	assert.Len(t, kept.SetGroups[0].Sets, 2)

	require.NoError(t, f.svc.DeleteSession(f.ctx, f.userID, session.ID))
	_, err = f.svc.GetSession(f.ctx, f.userID, session.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestDeleteRoutineDay_KeepsRoutineAndSessions(t *testing.T) {
	f := newFixture(t)
	f.knownExercises()
	day := f.day(t)
	group := f.group(t, workouts.DayParent(day.ID), 2)
	pull, err := f.svc.CreateRoutineDay(f.ctx, f.userID, day.RoutineID, "Pull", []int{2, 5})
	require.NoError(t, err)

	session, err := f.svc.CreateSession(f.ctx, f.userID, workouts.SessionInput{TemplateID: &day.ID})
	require.NoError(t, err)
	require.NotNil(t, session.TemplateID)

	require.NoError(t, f.svc.DeleteRoutineDay(f.ctx, f.userID, day.ID))

	routine, err := f.svc.GetRoutine(f.ctx, f.userID, day.RoutineID)
	require.NoError(t, err)
	require.Len(t, routine.Days, 1)
	assert.Equal(t, pull.ID, routine.Days[0].ID)

	_, err = f.svc.GetRoutineDay(f.ctx, f.userID, day.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	require.NoError(t, f.store.InTx(f.ctx, func(tx workouts.Tx) error {
		_, err := tx.GetSetGroup(f.ctx, f.userID, group.ID)
		assert.ErrorIs(t, err, apperr.ErrNotFound)
		sets, err := tx.ListSets(f.ctx, f.userID, group.ID)
		require.NoError(t, err)
		assert.Empty(t, sets)
		return nil
	}))

	kept, err := f.svc.GetSession(f.ctx, f.userID, session.ID)
	require.NoError(t, err)
	assert.Nil(t, kept.TemplateID)
	require.Len(t, kept.SetGroups, 1)
	assert.NotEqual(t, group.ID, kept.SetGroups[0].ID)
	assert.Len(t, kept.SetGroups[0].Sets, 2)
}

func TestMemStore_ListSessionsNegativeOffset(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.CreateSession(f.ctx, f.userID, workouts.SessionInput{})
	require.NoError(t, err)

	require.NoError(t, f.store.InTx(f.ctx, func(tx workouts.Tx) error {
		sessions, err := tx.ListSessions(f.ctx, f.userID, 2, -4)
		require.NoError(t, err)
		assert.Empty(t, sessions)
		return nil
	}))
}

func TestReplaceExerciseInSetGroup(t *testing.T) {
	f := newFixture(t)
	unknown := uuid.New()
	f.catalog.EXPECT().ExerciseExists(gomock.Any(), unknown).Return(false, nil)
	f.knownExercises()

	day := f.day(t)
	group := f.group(t, workouts.DayParent(day.ID), 3)

	_, err := f.svc.ReplaceExerciseInSetGroup(f.ctx, f.userID, group.ID, unknown)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	detail, err := f.svc.ReplaceExerciseInSetGroup(f.ctx, f.userID, group.ID, rowID)
	require.NoError(t, err)
	require.Len(t, detail.Sets, 3)
	for i, s := range detail.Sets {
		assert.Equal(t, rowID, s.ExerciseID)
		assert.Equal(t, 10-i, s.Reps)
	}
}

func TestSetCompleted(t *testing.T) {
	f := newFixture(t)
	f.knownExercises()
	session, err := f.svc.CreateSession(f.ctx, f.userID, workouts.SessionInput{})
	require.NoError(t, err)
	f.group(t, workouts.SessionParent(session.ID), 2)

	current, err := f.svc.GetSession(f.ctx, f.userID, session.ID)
	require.NoError(t, err)
	sets := current.SetGroups[0].Sets

	res, err := f.svc.SetCompleted(f.ctx, f.userID, sets[0].ID, true)
	require.NoError(t, err)
	assert.True(t, res.Set.Completed)
	require.NotNil(t, res.Rest)
	assert.Equal(t, 90, res.Rest.Seconds)
	assert.Equal(t, workouts.GroupState{}, res.Group)

	// repeating the same state is not a transition
	res, err = f.svc.SetCompleted(f.ctx, f.userID, sets[0].ID, true)
	require.NoError(t, err)
	assert.Nil(t, res.Rest)

	res, err = f.svc.SetCompleted(f.ctx, f.userID, sets[1].ID, true)
	require.NoError(t, err)
	assert.Equal(t, workouts.GroupState{Completed: true, JustCompleted: true, Collapse: true}, res.Group)

	res, err = f.svc.SetCompleted(f.ctx, f.userID, sets[1].ID, false)
	require.NoError(t, err)
	assert.Nil(t, res.Rest)
	assert.Equal(t, workouts.GroupState{Expand: true}, res.Group)
	assert.Equal(t, 2.0, testutil.ToFloat64(f.metrics.CounterSetsCompleted))

	noRest := 0
	_, err = f.svc.UpdateSet(f.ctx, f.userID, sets[1].ID, workouts.SetPatch{RestTime: &noRest})
	require.NoError(t, err)
	res, err = f.svc.SetCompleted(f.ctx, f.userID, sets[1].ID, true)
	require.NoError(t, err)
	assert.Nil(t, res.Rest)
	assert.True(t, res.Group.JustCompleted)

	_, err = f.svc.SetCompleted(f.ctx, uuid.New(), sets[1].ID, true)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestSetCompleted_TemplateSetsRejected(t *testing.T) {
	f := newFixture(t)
	f.knownExercises()
	day := f.day(t)
	f.group(t, workouts.DayParent(day.ID), 1)

	detail, err := f.svc.GetRoutineDay(f.ctx, f.userID, day.ID)
	require.NoError(t, err)
	_, err = f.svc.SetCompleted(f.ctx, f.userID, detail.SetGroups[0].Sets[0].ID, true)
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestCountdownFinished(t *testing.T) {
	f := newFixture(t)
	f.knownExercises()
	f.catalog.EXPECT().IsTimeBased(gomock.Any(), secondsID).Return(true, nil).AnyTimes()
	f.catalog.EXPECT().IsTimeBased(gomock.Any(), repsUnitID).Return(false, nil).AnyTimes()

	session, err := f.svc.CreateSession(f.ctx, f.userID, workouts.SessionInput{})
	require.NoError(t, err)
	group, err := f.svc.CreateSetGroup(f.ctx, f.userID, workouts.SessionParent(session.ID), workouts.SetGroupInput{})
	require.NoError(t, err)

	plank, err := f.svc.CreateSet(f.ctx, f.userID, group.ID, workouts.SetInput{
		ExerciseID:       plankID,
		Reps:             60,
		RepetitionUnitID: secondsID,
		WeightUnitID:     kgUnitID,
		RestTime:         30,
	})
	require.NoError(t, err)
	press, err := f.svc.CreateSet(f.ctx, f.userID, group.ID, workouts.SetInput{
		ExerciseID:       benchPressID,
		Reps:             8,
		RepetitionUnitID: repsUnitID,
		WeightUnitID:     kgUnitID,
	})
	require.NoError(t, err)

	_, err = f.svc.CountdownFinished(f.ctx, f.userID, press.ID)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	res, err := f.svc.CountdownFinished(f.ctx, f.userID, plank.ID)
	require.NoError(t, err)
	assert.True(t, res.Set.Completed)
	require.NotNil(t, res.Rest)
	assert.Equal(t, 30, res.Rest.Seconds)
	assert.False(t, res.Group.Completed)
}

func TestCreateSet_Validation(t *testing.T) {
	f := newFixture(t)
	unknown := uuid.New()
	f.catalog.EXPECT().ExerciseExists(gomock.Any(), unknown).Return(false, nil)
	f.knownExercises()
	day := f.day(t)
	group := f.group(t, workouts.DayParent(day.ID), 0)

	_, err := f.svc.CreateSet(f.ctx, f.userID, group.ID, workouts.SetInput{ExerciseID: unknown})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	_, err = f.svc.CreateSet(f.ctx, f.userID, group.ID, workouts.SetInput{ExerciseID: benchPressID, Type: "HEAVY"})
	assert.ErrorIs(t, err, apperr.ErrValidation)
	_, err = f.svc.CreateSet(f.ctx, f.userID, group.ID, workouts.SetInput{ExerciseID: benchPressID, Reps: -1})
	assert.ErrorIs(t, err, apperr.ErrValidation)
	_, err = f.svc.CreateSet(f.ctx, f.userID, uuid.New(), workouts.SetInput{ExerciseID: benchPressID})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestGyms(t *testing.T) {
	f := newFixture(t)
	barbell, dumbbell := uuid.New(), uuid.New()

	_, err := f.svc.CreateGym(f.ctx, f.userID, workouts.GymInput{Name: "Garage"})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	home, err := f.svc.CreateGym(f.ctx, f.userID, workouts.GymInput{
		Name:         "Garage",
		EquipmentIDs: []uuid.UUID{barbell, barbell},
	})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{barbell}, home.EquipmentIDs)

	def, err := f.svc.DefaultGym(f.ctx, f.userID)
	require.NoError(t, err)
	require.NotNil(t, def)
	assert.Equal(t, home.ID, def.ID)

	err = f.svc.DeleteGym(f.ctx, f.userID, home.ID)
	assert.ErrorIs(t, err, apperr.ErrLastGym)
	assert.ErrorIs(t, err, apperr.ErrConflict)

	club, err := f.svc.CreateGym(f.ctx, f.userID, workouts.GymInput{
		Name:         "Club",
		EquipmentIDs: []uuid.UUID{barbell, dumbbell},
	})
	require.NoError(t, err)

	empty := []uuid.UUID{}
	_, err = f.svc.UpdateGym(f.ctx, f.userID, club.ID, workouts.GymPatch{EquipmentIDs: &empty})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	require.NoError(t, f.svc.DeleteGym(f.ctx, f.userID, home.ID))
	def, err = f.svc.DefaultGym(f.ctx, f.userID)
	require.NoError(t, err)
	assert.Nil(t, def, "deleting the default gym clears the default")

	gyms, err := f.svc.ListGyms(f.ctx, f.userID)
	require.NoError(t, err)
	assert.Len(t, gyms, 1)

	_, err = f.svc.GetGym(f.ctx, uuid.New(), club.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	require.NoError(t, f.svc.SetDefaultGym(f.ctx, f.userID, &club.ID))
	spare, err := f.svc.CreateGym(f.ctx, f.userID, workouts.GymInput{
		Name:         "Hotel",
		EquipmentIDs: []uuid.UUID{dumbbell},
	})
	require.NoError(t, err)
	require.NoError(t, f.svc.DeleteGym(f.ctx, f.userID, spare.ID))
	def, err = f.svc.DefaultGym(f.ctx, f.userID)
	require.NoError(t, err)
	require.NotNil(t, def, "deleting another gym keeps the default")
	assert.Equal(t, club.ID, def.ID)

	require.NoError(t, f.svc.SetDefaultGym(f.ctx, f.userID, nil))
	def, err = f.svc.DefaultGym(f.ctx, f.userID)
	require.NoError(t, err)
	assert.Nil(t, def)
}

package search_test

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	promcl "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/mock/gomock"

	"github.com/soodoh/openfit/internal/apperr"
	"github.com/soodoh/openfit/internal/catalog"
	"github.com/soodoh/openfit/internal/search"
	"github.com/soodoh/openfit/internal/telemetry/metrics"
	"github.com/soodoh/openfit/internal/workouts"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const librarySeed = `
equipment: [Barbell, Dumbbell]
categories: [Strength]
muscleGroups: [Back, Biceps, Chest]
weightUnits: [kg]
repetitionUnits:
  - name: Repetitions
exercises:
  - name: Barbell Row
    equipment: Barbell
    category: Strength
    level: intermediate
    primaryMuscles: [Back]
  - name: Dumbbell Curl
    equipment: Dumbbell
    category: Strength
    level: beginner
    primaryMuscles: [Biceps]
  - name: Push Up
    category: Strength
    level: beginner
    primaryMuscles: [Chest]
`

type fixture struct {
	ctx      context.Context
	catalog  *catalog.Service
	store    *catalog.MemStore
	workouts *workouts.Service
	engine   *search.Engine
	metrics  *metrics.Manager
	userID   uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	seed, err := catalog.ParseSeed(strings.NewReader(librarySeed))
	require.NoError(t, err)

	f := &fixture{
		ctx:     context.Background(),
		store:   catalog.NewMemStore(),
		metrics: metrics.NewTestManager(),
		userID:  uuid.New(),
	}
	f.catalog = catalog.NewService(f.store)
	_, err = f.catalog.Seed(f.ctx, seed)
	require.NoError(t, err)

	f.workouts = workouts.NewService(workouts.NewMemStore(), f.catalog)
	f.engine = search.NewEngine(f.store, f.workouts, f.metrics)
	return f
}

func (f *fixture) lookupID(t *testing.T, kind catalog.Kind, name string) uuid.UUID {
	t.Helper()
	lookups, err := f.catalog.Lookups(f.ctx, kind)
	require.NoError(t, err)
	for _, l := range lookups {
		if l.Name == name {
			return l.ID
		}
	}
	t.Fatalf("%s %q not found", kind, name)
	return uuid.Nil
}

// addFiller adds n generated exercises without equipment.
func (f *fixture) addFiller(t *testing.T, n int) {
	t.Helper()
	faker := gofakeit.New(7)
	strength := f.lookupID(t, catalog.KindCategory, "Strength")
	for i := 0; i < n; i++ {
		require.NoError(t, f.catalog.CreateExercise(f.ctx, &catalog.Exercise{
			Name:       fmt.Sprintf("%s %s", strings.Title(faker.Verb()), strings.Title(faker.Noun())),
			CategoryID: strength,
			Level:      catalog.LevelBeginner,
		}))
	}
}

func names(exercises []catalog.Exercise) []string {
	out := make([]string, 0, len(exercises))
	for _, e := range exercises {
		out = append(out, e.Name)
	}
	return out
}

func ids(exercises []catalog.Exercise) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(exercises))
	for _, e := range exercises {
		out = append(out, e.ID)
	}
	return out
}

func (f *fixture) walkCursor(t *testing.T, filter search.Filter, limit int) []catalog.Exercise {
	t.Helper()
	var out []catalog.Exercise
	req := search.CursorRequest{Filter: filter, Limit: limit}
	for i := 0; ; i++ {
		require.Less(t, i, 100, "cursor walk does not terminate")
		page, err := f.engine.Search(f.ctx, f.userID, req)
		require.NoError(t, err)
		assert.LessOrEqual(t, len(page.Page), limit)
		out = append(out, page.Page...)
		if page.IsDone {
			assert.Empty(t, page.ContinueCursor)
			return out
		}
		require.NotEmpty(t, page.ContinueCursor)
		req.Cursor = page.ContinueCursor
	}
}

func (f *fixture) walkPages(t *testing.T, filter search.Filter, size int) []catalog.Exercise {
	t.Helper()
	var out []catalog.Exercise
	first, err := f.engine.Page(f.ctx, f.userID, search.OffsetRequest{Filter: filter, Page: 1, PageSize: size})
	require.NoError(t, err)
	out = append(out, first.Items...)
	for p := 2; p <= first.TotalPages; p++ {
		page, err := f.engine.Page(f.ctx, f.userID, search.OffsetRequest{Filter: filter, Page: p, PageSize: size})
		require.NoError(t, err)
		assert.Equal(t, first.Total, page.Total)
		out = append(out, page.Items...)
	}
	assert.Len(t, out, first.Total)
	return out
}

func TestSearch_GymFilter(t *testing.T) {
	f := newFixture(t)
	barbell := f.lookupID(t, catalog.KindEquipment, "Barbell")

	gym, err := f.workouts.CreateGym(f.ctx, f.userID, workouts.GymInput{Name: "Garage", EquipmentIDs: []uuid.UUID{barbell}})
	require.NoError(t, err)

	page, err := f.engine.Search(f.ctx, f.userID, search.CursorRequest{Filter: search.Filter{GymID: &gym.ID}})
	require.NoError(t, err)
	assert.True(t, page.IsDone)
	assert.Equal(t, []string{"Barbell Row", "Push Up"}, names(page.Page))

	page, err = f.engine.Search(f.ctx, f.userID, search.CursorRequest{Filter: search.Filter{DefaultGym: true}})
	require.NoError(t, err)
	assert.Equal(t, []string{"Barbell Row", "Push Up"}, names(page.Page))

	page, err = f.engine.Search(f.ctx, f.userID, search.CursorRequest{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Barbell Row", "Dumbbell Curl", "Push Up"}, names(page.Page))

	offset, err := f.engine.Page(f.ctx, f.userID, search.OffsetRequest{Filter: search.Filter{GymID: &gym.ID}, Page: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, offset.Total)
	assert.Equal(t, 1, offset.TotalPages)
	assert.Equal(t, search.DefaultLimit, offset.PageSize)
	assert.Equal(t, []string{"Barbell Row", "Push Up"}, names(offset.Items))

	_, err = f.engine.Search(f.ctx, uuid.New(), search.CursorRequest{Filter: search.Filter{GymID: &gym.ID}})
	assert.True(t, apperr.IsNotFound(err), "another user's gym is not found")

	_, err = f.engine.Search(f.ctx, uuid.Nil, search.CursorRequest{})
	assert.True(t, errors.Is(err, apperr.ErrUnauthorized))
}

func TestSearch_DefaultGymUnset(t *testing.T) {
	f := newFixture(t)

	page, err := f.engine.Search(f.ctx, f.userID, search.CursorRequest{Filter: search.Filter{DefaultGym: true}})
	require.NoError(t, err)
	assert.Len(t, page.Page, 3)
}

func TestSearch_AttributeFilters(t *testing.T) {
	f := newFixture(t)
	chest := f.lookupID(t, catalog.KindMuscleGroup, "Chest")
	dumbbell := f.lookupID(t, catalog.KindEquipment, "Dumbbell")

	page, err := f.engine.Search(f.ctx, f.userID, search.CursorRequest{Filter: search.Filter{Level: catalog.LevelBeginner}})
	require.NoError(t, err)
	assert.Equal(t, []string{"Dumbbell Curl", "Push Up"}, names(page.Page))

	page, err = f.engine.Search(f.ctx, f.userID, search.CursorRequest{Filter: search.Filter{PrimaryMuscleID: &chest}})
	require.NoError(t, err)
	assert.Equal(t, []string{"Push Up"}, names(page.Page))

	page, err = f.engine.Search(f.ctx, f.userID, search.CursorRequest{Filter: search.Filter{EquipmentID: &dumbbell, Query: " curl "}})
	require.NoError(t, err)
	assert.Equal(t, []string{"Dumbbell Curl"}, names(page.Page))

	_, err = f.engine.Search(f.ctx, f.userID, search.CursorRequest{Filter: search.Filter{Level: "legendary"}})
	assert.True(t, errors.Is(err, apperr.ErrValidation))
}

func TestSearch_CursorMatchesOffset(t *testing.T) {
	f := newFixture(t)
	f.addFiller(t, 23)

	filters := map[string]search.Filter{
		"filter path": {},
		"text path":   {Query: "e"},
		"level":       {Level: catalog.LevelBeginner},
	}
	for name, filter := range filters {
		t.Run(name, func(t *testing.T) {
			all, err := f.engine.Search(f.ctx, f.userID, search.CursorRequest{Filter: filter, Limit: search.MaxLimit})
			require.NoError(t, err)
			require.True(t, all.IsDone)
			require.NotEmpty(t, all.Page)

			for _, size := range []int{1, 2, 5, 7} {
				assert.Equal(t, ids(all.Page), ids(f.walkCursor(t, filter, size)), "cursor walk, size %d", size)
				assert.Equal(t, ids(all.Page), ids(f.walkPages(t, filter, size)), "page walk, size %d", size)
			}
		})
	}
}

func TestSearch_CursorMisuse(t *testing.T) {
	f := newFixture(t)

	page, err := f.engine.Search(f.ctx, f.userID, search.CursorRequest{Limit: 1})
	require.NoError(t, err)
	require.False(t, page.IsDone)

	_, err = f.engine.Search(f.ctx, f.userID, search.CursorRequest{
		Filter: search.Filter{Level: catalog.LevelBeginner},
		Cursor: page.ContinueCursor,
		Limit:  1,
	})
	assert.True(t, errors.Is(err, apperr.ErrValidation), "cursor reused with other filters")

	_, err = f.engine.Search(f.ctx, f.userID, search.CursorRequest{Cursor: "%%%", Limit: 1})
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	_, err = f.engine.Search(f.ctx, f.userID, search.CursorRequest{Cursor: "bm90LWpzb24", Limit: 1})
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	next, err := f.engine.Search(f.ctx, f.userID, search.CursorRequest{
		Filter: search.Filter{Query: "  "},
		Cursor: page.ContinueCursor,
		Limit:  1,
	})
	require.NoError(t, err, "blank query is the same filter as no query")
	assert.Equal(t, []string{"Dumbbell Curl"}, names(next.Page))
}

func TestPage_Bounds(t *testing.T) {
	f := newFixture(t)

	_, err := f.engine.Page(f.ctx, f.userID, search.OffsetRequest{Page: 0})
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	page, err := f.engine.Page(f.ctx, f.userID, search.OffsetRequest{Page: 5, PageSize: 2})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.NotNil(t, page.Items)
	assert.Equal(t, 3, page.Total)
	assert.Equal(t, 2, page.TotalPages)

	page, err = f.engine.Page(f.ctx, f.userID, search.OffsetRequest{Page: 1, PageSize: 1000})
	require.NoError(t, err)
	assert.Equal(t, search.MaxLimit, page.PageSize)

	for _, p := range []int{4611686018427387905, math.MaxInt} {
		_, err = f.engine.Page(f.ctx, f.userID, search.OffsetRequest{Page: p, PageSize: 2})
		assert.ErrorIs(t, err, apperr.ErrValidation, "page %d", p)
	}
}

func TestSearch_Metrics(t *testing.T) {
	f := newFixture(t)
	m, reg := metrics.NewTestManagerAndRegistry()
	engine := search.NewEngine(f.store, f.workouts, m)

	_, err := engine.Search(f.ctx, f.userID, search.CursorRequest{Filter: search.Filter{Query: "row"}})
	require.NoError(t, err)
	_, err = engine.Page(f.ctx, f.userID, search.OffsetRequest{Page: 1})
	require.NoError(t, err)
	_, err = engine.Page(f.ctx, f.userID, search.OffsetRequest{Page: 2})
	require.NoError(t, err)

	assert.Equal(t, 2, testutil.CollectAndCount(m.HistogramSearchDuration))

	gathered, err := reg.Gather()
	require.NoError(t, err)
	var family *promcl.MetricFamily
	for _, mf := range gathered {
		if mf.GetName() == "openfit_test_server_exercise_search_duration_seconds" {
			family = mf
			break
		}
	}
	require.NotNil(t, family)

	counts := map[string]uint64{}
	for _, metric := range family.GetMetric() {
		labels := map[string]string{}
		for _, l := range metric.GetLabel() {
			labels[l.GetName()] = l.GetValue()
		}
		counts[labels["path"]+"/"+labels["paging"]] = metric.GetHistogram().GetSampleCount()
	}
	assert.Equal(t, map[string]uint64{"text/cursor": 1, "filter/offset": 2}, counts)
}

func TestSearch_SourceErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	source := NewMockSource(ctrl)
	gyms := NewMockGyms(ctrl)
	engine := search.NewEngine(source, gyms, nil)
	ctx := context.Background()
	userID := uuid.New()

	boom := errors.New("connection reset")
	source.EXPECT().
		FindExercises(gomock.Any(), catalog.ExerciseQuery{Limit: search.DefaultLimit + 1}).
		Return(nil, boom)
	_, err := engine.Search(ctx, userID, search.CursorRequest{})
	assert.ErrorIs(t, err, boom)

	source.EXPECT().CountExercises(gomock.Any(), gomock.Any()).Return(0, context.Canceled)
	_, err = engine.Page(ctx, userID, search.OffsetRequest{Page: 1})
	assert.ErrorIs(t, err, context.Canceled)

	gymID := uuid.New()
	gyms.EXPECT().GetGym(gomock.Any(), userID, gymID).Return(nil, apperr.NotFound("get gym", "gym"))
	_, err = engine.Search(ctx, userID, search.CursorRequest{Filter: search.Filter{GymID: &gymID}})
	assert.True(t, apperr.IsNotFound(err))

	gyms.EXPECT().GetGym(gomock.Any(), userID, gymID).Return(&workouts.Gym{ID: gymID, EquipmentIDs: []uuid.UUID{}}, nil)
	source.EXPECT().
		FindExercises(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, q catalog.ExerciseQuery) ([]catalog.Exercise, error) {
			assert.NotNil(t, q.Filter.GymEquipment, "an empty gym still restricts results")
			assert.Equal(t, 11, q.Limit)
			return []catalog.Exercise{}, nil
		})
	page, err := engine.Search(ctx, userID, search.CursorRequest{Filter: search.Filter{GymID: &gymID}, Limit: 10})
	require.NoError(t, err)
	assert.True(t, page.IsDone)
}

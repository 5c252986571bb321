//go:build integration_test || all_tests

package test

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/soodoh/openfit/internal/catalog"
	"github.com/soodoh/openfit/internal/search"
	"github.com/soodoh/openfit/internal/timer"
	"github.com/soodoh/openfit/internal/workouts"
	"github.com/soodoh/openfit/pkg/client"
)

func (s *IntegrationTestSuite) lookupID(c *client.Client, kind catalog.Kind, name string) uuid.UUID {
	lookups, err := c.Lookups(s.ctx, kind)
	s.Require().NoError(err)
	for _, l := range lookups {
		if l.Name == name {
			return l.ID
		}
	}
	s.FailNowf("lookup missing", "%s %q", kind, name)
	return uuid.Nil
}

func (s *IntegrationTestSuite) exerciseID(c *client.Client, name string) uuid.UUID {
	page, err := c.SearchExercises(s.ctx, search.Filter{Query: name}, "", 1)
	s.Require().NoError(err)
	s.Require().NotEmpty(page.Page)
	s.Require().Equal(name, page.Page[0].Name)
	return page.Page[0].ID
}

func (s *IntegrationTestSuite) TestLogin() {
	_, err := login(s.ctx, userUsername, "wrong-password")
	var apiErr *client.APIError
	s.Require().ErrorAs(err, &apiErr)
	s.Equal(http.StatusUnauthorized, apiErr.StatusCode)

	c, err := login(s.ctx, userUsername, testPassword)
	s.Require().NoError(err)
	me, err := c.Me(s.ctx)
	s.Require().NoError(err)
	s.Equal(userUsername, me.Username)
	s.False(me.Admin)

	loggedOut, err := c.Logout(s.ctx)
	s.Require().NoError(err)
	s.True(loggedOut)

	_, err = newClient().Me(s.ctx)
	s.Error(err)
}

func (s *IntegrationTestSuite) TestCatalogAdmin() {
	user, err := login(s.ctx, userUsername, testPassword)
	s.Require().NoError(err)
	admin, err := login(s.ctx, adminUsername, testPassword)
	s.Require().NoError(err)

	m := catalog.Mutation{Kind: catalog.KindEquipment, Action: catalog.ActionCreate, Name: "kettlebell"}
	_, err = user.ApplyCatalogMutation(s.ctx, m)
	var apiErr *client.APIError
	s.Require().ErrorAs(err, &apiErr)
	s.Equal(http.StatusForbidden, apiErr.StatusCode)

	created, err := admin.ApplyCatalogMutation(s.ctx, m)
	s.Require().NoError(err)
	s.Equal("kettlebell", created.Name)
	s.Equal(created.ID, s.lookupID(user, catalog.KindEquipment, "kettlebell"))
}

func (s *IntegrationTestSuite) TestGymSearch() {
	c, err := login(s.ctx, adminUsername, testPassword)
	s.Require().NoError(err)

	barbell := s.lookupID(c, catalog.KindEquipment, "barbell")
	gyms, err := c.ListGyms(s.ctx)
	s.Require().NoError(err)
	if len(gyms) == 0 {
		_, err = c.CreateGym(s.ctx, workouts.GymInput{Name: "Garage", EquipmentIDs: []uuid.UUID{barbell}})
		s.Require().NoError(err)
	}

	rows, err := c.PageExercises(s.ctx, search.Filter{Query: "row"}, 1, 10)
	s.Require().NoError(err)
	s.Equal(2, rows.Total)

	rows, err = c.PageExercises(s.ctx, search.Filter{Query: "row", DefaultGym: true}, 1, 10)
	s.Require().NoError(err)
	s.Zero(rows.Total, "the garage has no dumbbells and no cable")

	var names []string
	cursor := ""
	for {
		page, err := c.SearchExercises(s.ctx, search.Filter{DefaultGym: true}, cursor, 2)
		s.Require().NoError(err)
		for _, e := range page.Page {
			names = append(names, e.Name)
		}
		if page.IsDone {
			s.Empty(page.ContinueCursor)
			break
		}
		cursor = page.ContinueCursor
	}
	s.Equal([]string{"Barbell Bench Press", "Barbell Squat", "Plank", "Pushups", "Romanian Deadlift"}, names)
}

func (s *IntegrationTestSuite) TestWorkoutFlow() {
	c, err := login(s.ctx, userUsername, testPassword)
	s.Require().NoError(err)

	reps := s.lookupID(c, catalog.KindRepetitionUnit, "repetitions")
	kg := s.lookupID(c, catalog.KindWeightUnit, "kg")
	squat := s.exerciseID(c, "Barbell Squat")
	bench := s.exerciseID(c, "Barbell Bench Press")

	routine, err := c.CreateRoutine(s.ctx, workouts.RoutineInput{Name: "Starting Strength"})
	s.Require().NoError(err)
	day, err := c.CreateRoutineDay(s.ctx, routine.ID, workouts.RoutineDayInput{Description: "Workout A", Weekdays: []int{1, 3, 5}})
	s.Require().NoError(err)

	var groupIDs []uuid.UUID
	for _, exercise := range []uuid.UUID{squat, bench} {
		group, err := c.CreateSetGroup(s.ctx, workouts.DayParent(day.ID), workouts.SetGroupInput{Type: workouts.SetGroupNormal})
		s.Require().NoError(err)
		for i := 0; i < 3; i++ {
			_, err := c.CreateSet(s.ctx, group.ID, workouts.SetInput{
				ExerciseID:       exercise,
				Reps:             5,
				RepetitionUnitID: reps,
				Weight:           100,
				WeightUnitID:     kg,
				RestTime:         180,
			})
			s.Require().NoError(err)
		}
		groupIDs = append(groupIDs, group.ID)
	}

	reordered, err := c.ReorderSetGroups(s.ctx, workouts.DayParent(day.ID), []uuid.UUID{groupIDs[1], groupIDs[0]})
	s.Require().NoError(err)
	s.Equal(groupIDs[1], reordered[0].ID)

	session, err := c.StartSession(s.ctx, workouts.SessionInput{TemplateID: &day.ID})
	s.Require().NoError(err)
	s.Require().Len(session.SetGroups, 2)

	_, err = c.StartSession(s.ctx, workouts.SessionInput{})
	var apiErr *client.APIError
	s.Require().ErrorAs(err, &apiErr)
	s.Equal(http.StatusConflict, apiErr.StatusCode)

	clock := timer.NewFakeClock(time.Now())
	tracker, err := c.Track(s.ctx, session.ID, clock)
	s.Require().NoError(err)

	first := tracker.View().SetGroups[0]
	for i, set := range first.Sets {
		result, err := tracker.CompleteSet(s.ctx, set.ID, true)
		s.Require().NoError(err)
		s.Require().NotNil(result.Rest)
		s.Equal(i == len(first.Sets)-1, result.Group.JustCompleted)
	}
	s.True(tracker.Rest().Running())
	clock.Advance(3 * time.Minute)
	s.False(tracker.Rest().Running())

	var completed int
	s.Require().NoError(s.DB.QueryRowContext(s.ctx,
		`SELECT COUNT(*) FROM workout_set ws JOIN set_group sg ON sg.id = ws.set_group_id
		 WHERE sg.session_id = $1 AND ws.completed`, session.ID,
	).Scan(&completed))
	s.Equal(3, completed)

	finished, err := c.FinishSession(s.ctx, session.ID)
	s.Require().NoError(err)
	s.NotNil(finished.EndTime)

	current, err := c.CurrentSession(s.ctx)
	s.Require().NoError(err)
	s.Nil(current)

	summary, err := c.Dashboard(s.ctx, "Europe/Berlin")
	s.Require().NoError(err)
	s.Equal(1, summary.TotalSessions)
	s.Equal(1, summary.ThisWeekSessions)
	s.Equal(1, summary.TotalRoutines)
	s.Equal(1, summary.CurrentStreak)
}

package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soodoh/openfit/internal/auth"
	"github.com/soodoh/openfit/internal/catalog"
	"github.com/soodoh/openfit/internal/dashboard"
	"github.com/soodoh/openfit/internal/search"
	"github.com/soodoh/openfit/internal/workouts"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := newRootCmd()
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func newAPI(t *testing.T, active *workouts.SessionDetail) *httptest.Server {
	t.Helper()
	r := mux.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get(auth.TokenHeader) != "cli-token" {
				http.Error(w, "no can do", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	})
	r.HandleFunc("/dashboard", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Europe/Berlin", r.URL.Query().Get("tz"))
		_ = json.NewEncoder(w).Encode(dashboard.Summary{TotalSessions: 12, ThisWeekSessions: 3, TotalRoutines: 2, CurrentStreak: 4})
	})
	r.HandleFunc("/sessions/current", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(active)
	})
	r.HandleFunc("/sessions/{id}/finish", func(w http.ResponseWriter, r *http.Request) {
		end := time.Date(2026, 3, 2, 18, 30, 0, 0, time.UTC)
		id := uuid.MustParse(mux.Vars(r)["id"])
		_ = json.NewEncoder(w).Encode(workouts.Session{ID: id, EndTime: &end})
	}).Methods("POST")
	r.HandleFunc("/search/exercises", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "default", r.URL.Query().Get("gym"))
		assert.Equal(t, "squat", r.URL.Query().Get("q"))
		_ = json.NewEncoder(w).Encode(search.CursorPage{
			Page:   []catalog.Exercise{{ID: uuid.New(), Name: "Back Squat", Level: catalog.LevelIntermediate}},
			IsDone: true,
		})
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func TestRootHelp(t *testing.T) {
	out, err := run(t, "--help")
	require.NoError(t, err)
	assert.Contains(t, out, "migrate")
	assert.Contains(t, out, "catalog")
}

func TestDashboard(t *testing.T) {
	srv := newAPI(t, nil)

	out, err := run(t, "--api", srv.URL, "--token", "cli-token", "dashboard", "--tz", "Europe/Berlin")
	require.NoError(t, err)
	assert.Contains(t, out, "sessions:       12")
	assert.Contains(t, out, "current streak: 4")

	_, err = run(t, "--api", srv.URL, "--token", "wrong", "dashboard", "--tz", "Europe/Berlin")
	assert.ErrorContains(t, err, "401")
}

func TestSession_Idle(t *testing.T) {
	srv := newAPI(t, nil)

	out, err := run(t, "--api", srv.URL, "--token", "cli-token", "session", "current")
	require.NoError(t, err)
	assert.Contains(t, out, "no active session")

	_, err = run(t, "--api", srv.URL, "--token", "cli-token", "session", "finish")
	assert.ErrorContains(t, err, "no active session")

	_, err = run(t, "--api", srv.URL, "--token", "cli-token", "session", "finish", "not-a-uuid")
	assert.ErrorContains(t, err, "invalid session id")
}

func TestSession_Active(t *testing.T) {
	active := &workouts.SessionDetail{
		Session: workouts.Session{ID: uuid.New(), Name: "Leg Day", StartTime: time.Now()},
		SetGroups: []workouts.SetGroupDetail{{
			SetGroup: workouts.SetGroup{Type: workouts.SetGroupNormal},
			Sets:     []workouts.Set{{Completed: true}, {}},
		}},
	}
	srv := newAPI(t, active)

	out, err := run(t, "--api", srv.URL, "--token", "cli-token", "session", "current")
	require.NoError(t, err)
	assert.Contains(t, out, "Leg Day")
	assert.Contains(t, out, "1/2 sets")

	out, err = run(t, "--api", srv.URL, "--token", "cli-token", "session", "finish")
	require.NoError(t, err)
	assert.Contains(t, out, "finished session "+active.ID.String()+" at 2026-03-02 18:30")
}

func TestSearch(t *testing.T) {
	srv := newAPI(t, nil)

	out, err := run(t, "--api", srv.URL, "--token", "cli-token", "search", "squat", "--gym", "default")
	require.NoError(t, err)
	assert.Contains(t, out, "Back Squat")
	assert.NotContains(t, out, "...")

	_, err = run(t, "--api", srv.URL, "search", "--gym", "nope")
	assert.ErrorContains(t, err, "invalid gym id")
}

func TestAdminCommands_Errors(t *testing.T) {
	_, err := run(t, "catalog", "seed", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = run(t, "catalog", "seed")
	assert.Error(t, err, "the seed file is required")

	t.Setenv("OPENFIT_PASSWORD", "")
	_, err = run(t, "user", "add", "lifter")
	assert.ErrorContains(t, err, "OPENFIT_PASSWORD")

	t.Setenv("OPENFIT_PASSWORD", "long-enough-pass")
	_, err = run(t, "--config", filepath.Join(t.TempDir(), "missing.toml"), "user", "add", "lifter")
	assert.Error(t, err)
}

package client

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/soodoh/openfit/internal/timer"
	"github.com/soodoh/openfit/internal/workouts"
	"github.com/soodoh/openfit/pkg/optimistic"
)

// Tracker follows one workout session. Reorders and completions show up in
// View right away and are replaced by the server's answer, or rolled back
// when the request fails.
type Tracker struct {
	client *Client
	state  *optimistic.State[workouts.SessionDetail]
	rest   *timer.Rest
}

// Track loads the session and returns a tracker for it. A nil clock uses the
// system clock for rest countdowns.
func (c *Client) Track(ctx context.Context, sessionID uuid.UUID, clock timer.Clock) (*Tracker, error) {
	session, err := c.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return &Tracker{
		client: c,
		state:  optimistic.New(*session),
		rest:   timer.NewRest(clock),
	}, nil
}

func (t *Tracker) View() workouts.SessionDetail {
	return t.state.View()
}

func (t *Tracker) Pending() bool {
	return t.state.Pending()
}

// Rest is the countdown started by the last completion with a rest time.
func (t *Tracker) Rest() *timer.Rest {
	return t.rest
}

func cloneDetail(d workouts.SessionDetail) workouts.SessionDetail {
	out := d
	out.SetGroups = make([]workouts.SetGroupDetail, len(d.SetGroups))
	for i, g := range d.SetGroups {
		g.Sets = slices.Clone(g.Sets)
		out.SetGroups[i] = g
	}
	return out
}

// ReorderGroups moves the session's groups into the given order.
func (t *Tracker) ReorderGroups(ctx context.Context, ids []uuid.UUID) error {
	view, token := t.state.Apply(func(d workouts.SessionDetail) workouts.SessionDetail {
		out := cloneDetail(d)
		byID := make(map[uuid.UUID]workouts.SetGroupDetail, len(out.SetGroups))
		for _, g := range out.SetGroups {
			byID[g.ID] = g
		}
		if len(ids) != len(byID) {
			return out
		}
		groups := make([]workouts.SetGroupDetail, 0, len(ids))
		for i, id := range ids {
			g, ok := byID[id]
			if !ok {
				return out
			}
			g.Order = i
			groups = append(groups, g)
		}
		out.SetGroups = groups
		return out
	})

	groups, err := t.client.ReorderSetGroups(ctx, workouts.SessionParent(view.ID), ids)
	if err != nil {
		t.state.Reject(token)
		return err
	}

	confirmed := cloneDetail(t.state.Server())
	sets := make(map[uuid.UUID][]workouts.Set, len(confirmed.SetGroups))
	for _, g := range confirmed.SetGroups {
		sets[g.ID] = g.Sets
	}
	confirmed.SetGroups = confirmed.SetGroups[:0]
	for _, g := range groups {
		confirmed.SetGroups = append(confirmed.SetGroups, workouts.SetGroupDetail{SetGroup: g, Sets: sets[g.ID]})
	}
	t.state.Confirm(token, confirmed)
	return nil
}

func replaceSet(d workouts.SessionDetail, set workouts.Set) (workouts.SessionDetail, bool) {
	out := cloneDetail(d)
	for gi := range out.SetGroups {
		for si := range out.SetGroups[gi].Sets {
			if out.SetGroups[gi].Sets[si].ID == set.ID {
				out.SetGroups[gi].Sets[si] = set
				return out, true
			}
		}
	}
	return out, false
}

func (t *Tracker) findSet(setID uuid.UUID) (workouts.Set, bool) {
	for _, g := range t.state.View().SetGroups {
		for _, s := range g.Sets {
			if s.ID == setID {
				return s, true
			}
		}
	}
	return workouts.Set{}, false
}

// CompleteSet marks a set done or pending. A rest instruction in the answer
// starts the rest countdown, replacing any running one.
func (t *Tracker) CompleteSet(ctx context.Context, setID uuid.UUID, completed bool) (*workouts.CompletionResult, error) {
	set, ok := t.findSet(setID)
	if !ok {
		return nil, fmt.Errorf("set %s is not part of session %s", setID, t.state.View().ID)
	}
	set.Completed = completed
	_, token := t.state.Apply(func(d workouts.SessionDetail) workouts.SessionDetail {
		out, _ := replaceSet(d, set)
		return out
	})

	result, err := t.client.SetCompleted(ctx, setID, completed)
	if err != nil {
		t.state.Reject(token)
		return nil, err
	}

	confirmed, _ := replaceSet(t.state.Server(), result.Set)
	t.state.Confirm(token, confirmed)

	if result.Rest != nil && result.Rest.Seconds > 0 {
		log.Debugf("rest for %ds after set %s", result.Rest.Seconds, setID)
		t.rest.Start(time.Duration(result.Rest.Seconds) * time.Second)
	}
	return result, nil
}

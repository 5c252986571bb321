package workouts

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/soodoh/openfit/internal/apperr"
	"github.com/soodoh/openfit/internal/ordering"
	"github.com/soodoh/openfit/internal/telemetry/tracing"
	"github.com/soodoh/openfit/pkg"
)

const (
	DefaultSessionsPageSize = 20
	MaxSessionsPageSize     = 100
)

type SessionInput struct {
	TemplateID *uuid.UUID `json:"templateId,omitempty"`
	Name       *string    `json:"name,omitempty"`
	StartTime  *time.Time `json:"startTime,omitempty"`
	EndTime    *time.Time `json:"endTime,omitempty"`
	Notes      *string    `json:"notes,omitempty"`
	Impression *int       `json:"impression,omitempty"`
	// SupersedeActive finishes the currently active session instead of
	// failing with a conflict.
	SupersedeActive bool `json:"supersedeActive,omitempty"`
}

type SessionPatch struct {
	Name            *string    `json:"name,omitempty"`
	Notes           *string    `json:"notes,omitempty"`
	Impression      *int       `json:"impression,omitempty"`
	ClearImpression bool       `json:"clearImpression,omitempty"`
	StartTime       *time.Time `json:"startTime,omitempty"`
	EndTime         *time.Time `json:"endTime,omitempty"`
	// Reopen clears the end time, making the session active again.
	Reopen bool `json:"reopen,omitempty"`
}

type SessionsPage struct {
	Items      []Session `json:"items"`
	Total      int       `json:"total"`
	Page       int       `json:"page"`
	PageSize   int       `json:"pageSize"`
	TotalPages int       `json:"totalPages"`
}

func userLockKey(userID uuid.UUID) string {
	return "user:" + userID.String()
}

func validateImpression(op string, impression *int) error {
	if impression != nil && (*impression < 1 || *impression > 5) {
		return apperr.Validation(op, "impression must be between 1 and 5")
	}
	return nil
}

func validateDuration(op string, start time.Time, end *time.Time) error {
	if end != nil && !start.Before(*end) {
		return apperr.New(op, apperr.ErrInvalidDuration, "start time must be before end time")
	}
	return nil
}

// CreateSession starts a session, from scratch or as a detached copy of a
// routine day. At most one session per user may be active.
func (s *Service) CreateSession(ctx context.Context, userID uuid.UUID, in SessionInput) (_ *SessionDetail, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.workouts.session.create")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Bool("from_template", in.TemplateID != nil))

	const op = "create session"
	if err := requireUser(op, userID); err != nil {
		return nil, err
	}
	if err := validateImpression(op, in.Impression); err != nil {
		return nil, err
	}

	now := s.now()
	session := &Session{
		ID:         uuid.New(),
		UserID:     userID,
		Impression: in.Impression,
		StartTime:  now,
		EndTime:    in.EndTime,
		TemplateID: in.TemplateID,
	}
	if in.StartTime != nil {
		session.StartTime = *in.StartTime
	}
	if in.Name != nil {
		session.Name = strings.TrimSpace(*in.Name)
	}
	if in.Notes != nil {
		session.Notes = *in.Notes
	}
	if err := validateDuration(op, session.StartTime, session.EndTime); err != nil {
		return nil, err
	}

	var detail *SessionDetail
	err = s.store.InTx(ctx, func(tx Tx) error {
		if err := tx.Lock(ctx, userLockKey(userID)); err != nil {
			return err
		}

		if session.Active() {
			open, err := tx.OpenSessions(ctx, userID)
			if err != nil {
				return err
			}
			if len(open) > 0 && !in.SupersedeActive {
				return apperr.Conflict(op, "session %s is still active", open[0].ID)
			}
			for i := range open {
				if err := finishSession(ctx, tx, &open[i], now); err != nil {
					return err
				}
				log.Debugf("session %s superseded by %s", open[i].ID, session.ID)
			}
		}

		var templateGroups []SetGroupDetail
		if in.TemplateID != nil {
			day, err := tx.GetRoutineDay(ctx, userID, *in.TemplateID)
			if err != nil {
				return err
			}
			if session.Name == "" {
				session.Name = day.Description
			}
			dayParent := DayParent(day.ID)
			if err := tx.Lock(ctx, dayParent.Key()); err != nil {
				return err
			}
			templateGroups, err = loadGroups(ctx, tx, userID, dayParent)
			if err != nil {
				return err
			}
		}

		if err := tx.InsertSession(ctx, session); err != nil {
			return err
		}
		groups, err := copyGroups(ctx, tx, templateGroups, SessionParent(session.ID))
		if err != nil {
			return err
		}
		detail = &SessionDetail{Session: *session, SetGroups: groups}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		source := "scratch"
		if in.TemplateID != nil {
			source = "template"
		}
		s.metrics.CounterSessionsStarted.WithLabelValues(source).Inc()
	}
	return detail, nil
}

// copyGroups deep copies template groups under parent with new ids, dense
// orders and every set pending.
func copyGroups(ctx context.Context, tx Tx, groups []SetGroupDetail, parent Parent) ([]SetGroupDetail, error) {
	out := make([]SetGroupDetail, 0, len(groups))
	for i, g := range groups {
		group := g.SetGroup
		group.ID = uuid.New()
		group.Order = i
		group.RoutineDayID, group.SessionID = nil, nil
		parentID := parent.ID
		if parent.Kind == ordering.ParentSession {
			group.SessionID = &parentID
		} else {
			group.RoutineDayID = &parentID
		}
		if err := tx.InsertSetGroup(ctx, &group); err != nil {
			return nil, err
		}

		sets := make([]Set, 0, len(g.Sets))
		for j, set := range g.Sets {
			set.ID = uuid.New()
			set.SetGroupID = group.ID
			set.Order = j
			set.Completed = false
			if err := tx.InsertSet(ctx, &set); err != nil {
				return nil, err
			}
			sets = append(sets, set)
		}
		out = append(out, SetGroupDetail{SetGroup: group, Sets: sets})
	}
	return out, nil
}

func finishSession(ctx context.Context, tx Tx, session *Session, now time.Time) error {
	end := now
	if !session.StartTime.Before(end) {
		end = session.StartTime.Add(time.Second)
	}
	session.EndTime = &end
	return tx.UpdateSession(ctx, session)
}

func (s *Service) UpdateSession(ctx context.Context, userID, id uuid.UUID, patch SessionPatch) (_ *Session, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.workouts.session.update")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	const op = "update session"
	if err := requireUser(op, userID); err != nil {
		return nil, err
	}
	if patch.Reopen && patch.EndTime != nil {
		return nil, apperr.Validation(op, "cannot set and clear the end time at once")
	}
	if err := validateImpression(op, patch.Impression); err != nil {
		return nil, err
	}

	var updated *Session
	err = s.store.InTx(ctx, func(tx Tx) error {
		if err := tx.Lock(ctx, userLockKey(userID)); err != nil {
			return err
		}
		session, err := tx.GetSession(ctx, userID, id)
		if err != nil {
			return err
		}
		wasActive := session.Active()

		if patch.Name != nil {
			session.Name = strings.TrimSpace(*patch.Name)
		}
		if patch.Notes != nil {
			session.Notes = *patch.Notes
		}
		if patch.Impression != nil {
			session.Impression = patch.Impression
		} else if patch.ClearImpression {
			session.Impression = nil
		}
		if patch.StartTime != nil {
			session.StartTime = *patch.StartTime
		}
		if patch.EndTime != nil {
			session.EndTime = patch.EndTime
		} else if patch.Reopen {
			session.EndTime = nil
		}
		if err := validateDuration(op, session.StartTime, session.EndTime); err != nil {
			return err
		}

		if !wasActive && session.Active() {
			open, err := tx.OpenSessions(ctx, userID)
			if err != nil {
				return err
			}
			if len(open) > 0 {
				return apperr.Conflict(op, "session %s is still active", open[0].ID)
			}
		}

		if err := tx.UpdateSession(ctx, session); err != nil {
			return err
		}
		updated = session
		return nil
	})
	return updated, err
}

// FinishSession sets the end time of an active session to now.
func (s *Service) FinishSession(ctx context.Context, userID, id uuid.UUID) (_ *Session, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.workouts.session.finish")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	const op = "finish session"
	if err := requireUser(op, userID); err != nil {
		return nil, err
	}

	var finished *Session
	err = s.store.InTx(ctx, func(tx Tx) error {
		session, err := tx.GetSession(ctx, userID, id)
		if err != nil {
			return err
		}
		if !session.Active() {
			return apperr.Conflict(op, "session already finished")
		}
		if err := finishSession(ctx, tx, session, s.now()); err != nil {
			return err
		}
		finished = session
		return nil
	})
	return finished, err
}

// CurrentSession returns the active session of the user, or nil when idle.
// Should several sessions be open, the latest started one wins.
func (s *Service) CurrentSession(ctx context.Context, userID uuid.UUID) (_ *SessionDetail, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.workouts.session.current")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if err := requireUser("current session", userID); err != nil {
		return nil, err
	}

	var detail *SessionDetail
	err = s.store.InTx(ctx, func(tx Tx) error {
		open, err := tx.OpenSessions(ctx, userID)
		if err != nil {
			return err
		}
		if len(open) == 0 {
			return nil
		}
		if len(open) > 1 {
			log.Warnf("user %s has %d open sessions, using %s", userID, len(open), open[0].ID)
		}
		groups, err := loadGroups(ctx, tx, userID, SessionParent(open[0].ID))
		if err != nil {
			return err
		}
		detail = &SessionDetail{Session: open[0], SetGroups: groups}
		return nil
	})
	return detail, err
}

func (s *Service) GetSession(ctx context.Context, userID, id uuid.UUID) (_ *SessionDetail, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.workouts.session.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if err := requireUser("get session", userID); err != nil {
		return nil, err
	}

	var detail *SessionDetail
	err = s.store.InTx(ctx, func(tx Tx) error {
		session, err := tx.GetSession(ctx, userID, id)
		if err != nil {
			return err
		}
		groups, err := loadGroups(ctx, tx, userID, SessionParent(id))
		if err != nil {
			return err
		}
		detail = &SessionDetail{Session: *session, SetGroups: groups}
		return nil
	})
	return detail, err
}

// ListSessions returns one page (1-based) of the user's sessions, newest
// first.
func (s *Service) ListSessions(ctx context.Context, userID uuid.UUID, page, pageSize int) (_ *SessionsPage, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.workouts.session.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	const op = "list sessions"
	if err := requireUser(op, userID); err != nil {
		return nil, err
	}
	if page < 1 {
		return nil, apperr.Validation(op, "page must be at least 1")
	}
	if pageSize <= 0 {
		pageSize = DefaultSessionsPageSize
	}
	if pageSize > MaxSessionsPageSize {
		return nil, apperr.Validation(op, "page size must be at most %d", MaxSessionsPageSize)
	}

	offset, ok := pkg.PageOffset(page, pageSize)
	if !ok {
		return nil, apperr.Validation(op, "page %d is out of range", page)
	}

	result := &SessionsPage{Page: page, PageSize: pageSize}
	err = s.store.InTx(ctx, func(tx Tx) error {
		total, err := tx.CountSessions(ctx, userID)
		if err != nil {
			return err
		}
		items, err := tx.ListSessions(ctx, userID, pageSize, offset)
		if err != nil {
			return err
		}
		result.Total = total
		result.Items = items
		return nil
	})
	if err != nil {
		return nil, err
	}
	result.TotalPages = (result.Total + pageSize - 1) / pageSize
	return result, nil
}

func (s *Service) DeleteSession(ctx context.Context, userID, id uuid.UUID) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.workouts.session.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if err := requireUser("delete session", userID); err != nil {
		return err
	}

	return s.store.InTx(ctx, func(tx Tx) error {
		if _, err := tx.GetSession(ctx, userID, id); err != nil {
			return err
		}
		parent := SessionParent(id)
		if err := tx.Lock(ctx, parent.Key()); err != nil {
			return err
		}
		if err := deleteGroups(ctx, tx, userID, parent); err != nil {
			return err
		}
		return tx.DeleteSession(ctx, userID, id)
	})
}

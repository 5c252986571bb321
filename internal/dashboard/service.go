package dashboard

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/soodoh/openfit/internal/apperr"
	"github.com/soodoh/openfit/internal/telemetry/tracing"
	"github.com/soodoh/openfit/internal/workouts"
)

type Summary struct {
	TotalSessions    int `json:"totalSessions"`
	ThisWeekSessions int `json:"thisWeekSessions"`
	TotalRoutines    int `json:"totalRoutines"`
	CurrentStreak    int `json:"currentStreak"`
}

type Service struct {
	store workouts.Store
}

func NewService(store workouts.Store) *Service {
	return &Service{
		store: store,
	}
}

// Summary rolls up the user's sessions and routines. Week and day boundaries
// are taken in loc.
func (s *Service) Summary(ctx context.Context, userID uuid.UUID, now time.Time, loc *time.Location) (_ *Summary, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.dashboard.summary")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if userID == uuid.Nil {
		return nil, apperr.New("dashboard summary", apperr.ErrUnauthorized, "no user")
	}
	if loc == nil {
		loc = time.UTC
	}
	span.SetAttributes(attribute.String("location", loc.String()))

	summary := &Summary{}
	err = s.store.InTx(ctx, func(tx workouts.Tx) error {
		var err error
		if summary.TotalSessions, err = tx.CountSessions(ctx, userID); err != nil {
			return err
		}
		if summary.TotalRoutines, err = tx.CountRoutines(ctx, userID); err != nil {
			return err
		}
		// the streak can reach back past this week, so read every start time
		starts, err := tx.SessionStartTimes(ctx, userID, time.Time{})
		if err != nil {
			return err
		}
		summary.ThisWeekSessions = CountThisWeek(starts, now, loc)
		summary.CurrentStreak = CurrentStreak(starts, now, loc)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}

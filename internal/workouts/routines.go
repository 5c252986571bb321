package workouts

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/soodoh/openfit/internal/apperr"
	"github.com/soodoh/openfit/internal/telemetry/tracing"
)

type RoutineInput struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

type RoutinePatch struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

type RoutineDayPatch struct {
	Description *string `json:"description,omitempty"`
	Weekdays    *[]int  `json:"weekdays,omitempty"`
}

// NormalizeWeekdays validates weekdays as a set of values in [0,6] and
// returns them sorted without duplicates.
func NormalizeWeekdays(weekdays []int) ([]int, error) {
	seen := make(map[int]bool, len(weekdays))
	out := make([]int, 0, len(weekdays))
	for _, w := range weekdays {
		if w < 0 || w > 6 {
			return nil, apperr.Validation("weekdays", "weekday %d out of range [0,6]", w)
		}
		if !seen[w] {
			seen[w] = true
			out = append(out, w)
		}
	}
	sort.Ints(out)
	return out, nil
}

func (s *Service) CreateRoutine(ctx context.Context, userID uuid.UUID, in RoutineInput) (_ *Routine, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.workouts.routine.create")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	const op = "create routine"
	if err := requireUser(op, userID); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperr.Validation(op, "name is required")
	}

	r := &Routine{
		ID:          uuid.New(),
		UserID:      userID,
		Name:        name,
		Description: in.Description,
		UpdatedAt:   s.now(),
	}
	err = s.store.InTx(ctx, func(tx Tx) error {
		return tx.InsertRoutine(ctx, r)
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (s *Service) GetRoutine(ctx context.Context, userID, id uuid.UUID) (_ *RoutineDetail, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.workouts.routine.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if err := requireUser("get routine", userID); err != nil {
		return nil, err
	}

	var detail *RoutineDetail
	err = s.store.InTx(ctx, func(tx Tx) error {
		r, err := tx.GetRoutine(ctx, userID, id)
		if err != nil {
			return err
		}
		days, err := tx.ListRoutineDays(ctx, userID, id)
		if err != nil {
			return err
		}
		detail = &RoutineDetail{Routine: *r, Days: days}
		return nil
	})
	return detail, err
}

func (s *Service) ListRoutines(ctx context.Context, userID uuid.UUID) (_ []Routine, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.workouts.routine.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if err := requireUser("list routines", userID); err != nil {
		return nil, err
	}

	var routines []Routine
	err = s.store.InTx(ctx, func(tx Tx) error {
		routines, err = tx.ListRoutines(ctx, userID)
		return err
	})
	return routines, err
}

func (s *Service) UpdateRoutine(ctx context.Context, userID, id uuid.UUID, patch RoutinePatch) (_ *Routine, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.workouts.routine.update")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	const op = "update routine"
	if err := requireUser(op, userID); err != nil {
		return nil, err
	}

	var updated *Routine
	err = s.store.InTx(ctx, func(tx Tx) error {
		r, err := tx.GetRoutine(ctx, userID, id)
		if err != nil {
			return err
		}
		if patch.Name != nil {
			name := strings.TrimSpace(*patch.Name)
			if name == "" {
				return apperr.Validation(op, "name is required")
			}
			r.Name = name
		}
		if patch.Description != nil {
			r.Description = patch.Description
		}
		r.UpdatedAt = s.now()
		if err := tx.UpdateRoutine(ctx, r); err != nil {
			return err
		}
		updated = r
		return nil
	})
	return updated, err
}

// DeleteRoutine removes the routine with its days and their set groups.
// Sessions started from those days keep their own copies.
func (s *Service) DeleteRoutine(ctx context.Context, userID, id uuid.UUID) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.workouts.routine.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("routine", id.String()))

	if err := requireUser("delete routine", userID); err != nil {
		return err
	}

	return s.store.InTx(ctx, func(tx Tx) error {
		if _, err := tx.GetRoutine(ctx, userID, id); err != nil {
			return err
		}
		days, err := tx.ListRoutineDays(ctx, userID, id)
		if err != nil {
			return err
		}
		for _, d := range days {
			if err := deleteRoutineDay(ctx, tx, userID, d.ID); err != nil {
				return err
			}
		}
		return tx.DeleteRoutine(ctx, userID, id)
	})
}

func (s *Service) CreateRoutineDay(
	ctx context.Context,
	userID, routineID uuid.UUID,
	description string,
	weekdays []int,
) (_ *RoutineDay, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.workouts.routineday.create")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	const op = "create routine day"
	if err := requireUser(op, userID); err != nil {
		return nil, err
	}
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, apperr.Validation(op, "description is required")
	}
	weekdays, err = NormalizeWeekdays(weekdays)
	if err != nil {
		return nil, err
	}

	day := &RoutineDay{
		ID:          uuid.New(),
		RoutineID:   routineID,
		UserID:      userID,
		Description: description,
		Weekdays:    weekdays,
	}
	err = s.store.InTx(ctx, func(tx Tx) error {
		r, err := tx.GetRoutine(ctx, userID, routineID)
		if err != nil {
			return err
		}
		if err := tx.InsertRoutineDay(ctx, day); err != nil {
			return err
		}
		r.UpdatedAt = s.now()
		return tx.UpdateRoutine(ctx, r)
	})
	if err != nil {
		return nil, err
	}
	return day, nil
}

func (s *Service) ListRoutineDays(ctx context.Context, userID, routineID uuid.UUID) (_ []RoutineDay, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.workouts.routineday.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if err := requireUser("list routine days", userID); err != nil {
		return nil, err
	}

	var days []RoutineDay
	err = s.store.InTx(ctx, func(tx Tx) error {
		if _, err := tx.GetRoutine(ctx, userID, routineID); err != nil {
			return err
		}
		days, err = tx.ListRoutineDays(ctx, userID, routineID)
		return err
	})
	return days, err
}

func (s *Service) GetRoutineDay(ctx context.Context, userID, id uuid.UUID) (_ *RoutineDayDetail, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.workouts.routineday.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if err := requireUser("get routine day", userID); err != nil {
		return nil, err
	}

	var detail *RoutineDayDetail
	err = s.store.InTx(ctx, func(tx Tx) error {
		d, err := tx.GetRoutineDay(ctx, userID, id)
		if err != nil {
			return err
		}
		groups, err := loadGroups(ctx, tx, userID, DayParent(id))
		if err != nil {
			return err
		}
		detail = &RoutineDayDetail{RoutineDay: *d, SetGroups: groups}
		return nil
	})
	return detail, err
}

func (s *Service) UpdateRoutineDay(ctx context.Context, userID, id uuid.UUID, patch RoutineDayPatch) (_ *RoutineDay, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.workouts.routineday.update")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	const op = "update routine day"
	if err := requireUser(op, userID); err != nil {
		return nil, err
	}

	var updated *RoutineDay
	err = s.store.InTx(ctx, func(tx Tx) error {
		d, err := tx.GetRoutineDay(ctx, userID, id)
		if err != nil {
			return err
		}
		if patch.Description != nil {
			description := strings.TrimSpace(*patch.Description)
			if description == "" {
				return apperr.Validation(op, "description is required")
			}
			d.Description = description
		}
		if patch.Weekdays != nil {
			weekdays, err := NormalizeWeekdays(*patch.Weekdays)
			if err != nil {
				return err
			}
			d.Weekdays = weekdays
		}
		if err := tx.UpdateRoutineDay(ctx, d); err != nil {
			return err
		}
		if err := touchRoutine(ctx, tx, userID, d.RoutineID, s.now); err != nil {
			return err
		}
		updated = d
		return nil
	})
	return updated, err
}

// DeleteRoutineDay removes the day and its set groups. Sessions started from
// the day survive with their template reference cleared.
func (s *Service) DeleteRoutineDay(ctx context.Context, userID, id uuid.UUID) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.workouts.routineday.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if err := requireUser("delete routine day", userID); err != nil {
		return err
	}

	return s.store.InTx(ctx, func(tx Tx) error {
		d, err := tx.GetRoutineDay(ctx, userID, id)
		if err != nil {
			return err
		}
		if err := deleteRoutineDay(ctx, tx, userID, id); err != nil {
			return err
		}
		return touchRoutine(ctx, tx, userID, d.RoutineID, s.now)
	})
}

func deleteRoutineDay(ctx context.Context, tx Tx, userID, id uuid.UUID) error {
	parent := DayParent(id)
	if err := tx.Lock(ctx, parent.Key()); err != nil {
		return err
	}
	if err := deleteGroups(ctx, tx, userID, parent); err != nil {
		return err
	}
	if err := tx.ClearSessionTemplate(ctx, userID, id); err != nil {
		return err
	}
	return tx.DeleteRoutineDay(ctx, userID, id)
}

func touchRoutine(ctx context.Context, tx Tx, userID, routineID uuid.UUID, now func() time.Time) error {
	r, err := tx.GetRoutine(ctx, userID, routineID)
	if err != nil {
		return err
	}
	r.UpdatedAt = now()
	return tx.UpdateRoutine(ctx, r)
}

package workouts

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/soodoh/openfit/internal/apperr"
	"github.com/soodoh/openfit/internal/ordering"
	"github.com/soodoh/openfit/internal/telemetry/tracing"
)

type SetInput struct {
	ExerciseID       uuid.UUID `json:"exerciseId"`
	Type             SetType   `json:"type"`
	Reps             int       `json:"reps"`
	RepetitionUnitID uuid.UUID `json:"repetitionUnitId"`
	Weight           int       `json:"weight"`
	WeightUnitID     uuid.UUID `json:"weightUnitId"`
	RestTime         int       `json:"restTime"`
}

type SetPatch struct {
	ExerciseID       *uuid.UUID `json:"exerciseId,omitempty"`
	Type             *SetType   `json:"type,omitempty"`
	Reps             *int       `json:"reps,omitempty"`
	RepetitionUnitID *uuid.UUID `json:"repetitionUnitId,omitempty"`
	Weight           *int       `json:"weight,omitempty"`
	WeightUnitID     *uuid.UUID `json:"weightUnitId,omitempty"`
	RestTime         *int       `json:"restTime,omitempty"`
}

func validateSetNumbers(op string, reps, weight, restTime int) error {
	switch {
	case reps < 0:
		return apperr.Validation(op, "reps must not be negative")
	case weight < 0:
		return apperr.Validation(op, "weight must not be negative")
	case restTime < 0:
		return apperr.Validation(op, "rest time must not be negative")
	}
	return nil
}

func setItems(sets []Set) ([]uuid.UUID, []ordering.Item[uuid.UUID]) {
	ids := make([]uuid.UUID, 0, len(sets))
	items := make([]ordering.Item[uuid.UUID], 0, len(sets))
	for _, s := range sets {
		ids = append(ids, s.ID)
		items = append(items, ordering.Item[uuid.UUID]{ID: s.ID, Order: s.Order})
	}
	return ids, items
}

// CreateSet appends a set to the group.
func (s *Service) CreateSet(ctx context.Context, userID, groupID uuid.UUID, in SetInput) (_ *Set, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.workouts.set.create")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("set_group", groupID.String()))

	const op = "create set"
	if err := requireUser(op, userID); err != nil {
		return nil, err
	}
	if in.Type == "" {
		in.Type = SetNormal
	}
	if !in.Type.IsValid() {
		return nil, apperr.Validation(op, "invalid set type %q", in.Type)
	}
	if err := validateSetNumbers(op, in.Reps, in.Weight, in.RestTime); err != nil {
		return nil, err
	}
	if err := s.checkExercise(ctx, op, in.ExerciseID); err != nil {
		return nil, err
	}

	set := &Set{
		ID:               uuid.New(),
		UserID:           userID,
		SetGroupID:       groupID,
		ExerciseID:       in.ExerciseID,
		Type:             in.Type,
		Reps:             in.Reps,
		RepetitionUnitID: in.RepetitionUnitID,
		Weight:           in.Weight,
		WeightUnitID:     in.WeightUnitID,
		RestTime:         in.RestTime,
	}
	err = s.store.InTx(ctx, func(tx Tx) error {
		if err := tx.Lock(ctx, ordering.Key(ordering.ParentSetGroup, groupID)); err != nil {
			return err
		}
		if _, err := tx.GetSetGroup(ctx, userID, groupID); err != nil {
			return err
		}
		siblings, err := tx.ListSets(ctx, userID, groupID)
		if err != nil {
			return err
		}
		set.Order = ordering.Next(len(siblings))
		return tx.InsertSet(ctx, set)
	})
	if err != nil {
		return nil, err
	}
	return set, nil
}

func (s *Service) UpdateSet(ctx context.Context, userID, id uuid.UUID, patch SetPatch) (_ *Set, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.workouts.set.update")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	const op = "update set"
	if err := requireUser(op, userID); err != nil {
		return nil, err
	}
	if patch.Type != nil && !patch.Type.IsValid() {
		return nil, apperr.Validation(op, "invalid set type %q", *patch.Type)
	}
	if patch.ExerciseID != nil {
		if err := s.checkExercise(ctx, op, *patch.ExerciseID); err != nil {
			return nil, err
		}
	}

	var updated *Set
	err = s.store.InTx(ctx, func(tx Tx) error {
		set, err := tx.GetSet(ctx, userID, id)
		if err != nil {
			return err
		}
		if patch.ExerciseID != nil {
			set.ExerciseID = *patch.ExerciseID
		}
		if patch.Type != nil {
			set.Type = *patch.Type
		}
		if patch.Reps != nil {
			set.Reps = *patch.Reps
		}
		if patch.RepetitionUnitID != nil {
			set.RepetitionUnitID = *patch.RepetitionUnitID
		}
		if patch.Weight != nil {
			set.Weight = *patch.Weight
		}
		if patch.WeightUnitID != nil {
			set.WeightUnitID = *patch.WeightUnitID
		}
		if patch.RestTime != nil {
			set.RestTime = *patch.RestTime
		}
		if err := validateSetNumbers(op, set.Reps, set.Weight, set.RestTime); err != nil {
			return err
		}
		if err := tx.UpdateSet(ctx, set); err != nil {
			return err
		}
		updated = set
		return nil
	})
	return updated, err
}

// DeleteSet removes the set and closes the gap in its group's order.
func (s *Service) DeleteSet(ctx context.Context, userID, id uuid.UUID) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.workouts.set.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if err := requireUser("delete set", userID); err != nil {
		return err
	}

	return s.store.InTx(ctx, func(tx Tx) error {
		set, err := tx.GetSet(ctx, userID, id)
		if err != nil {
			return err
		}
		if err := tx.Lock(ctx, ordering.Key(ordering.ParentSetGroup, set.SetGroupID)); err != nil {
			return err
		}
		if err := tx.DeleteSet(ctx, userID, id); err != nil {
			return err
		}
		siblings, err := tx.ListSets(ctx, userID, set.SetGroupID)
		if err != nil {
			return err
		}
		_, items := setItems(siblings)
		return tx.UpdateSetOrders(ctx, userID, ordering.Compact(items))
	})
}

// ReorderSets rewrites the order of the group's sets to match orderedIDs.
func (s *Service) ReorderSets(ctx context.Context, userID, groupID uuid.UUID, orderedIDs []uuid.UUID) (_ []Set, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.workouts.set.reorder")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("set_group", groupID.String()), attribute.Int("count", len(orderedIDs)))

	if err := requireUser("reorder sets", userID); err != nil {
		return nil, err
	}

	var reordered []Set
	err = s.store.InTx(ctx, func(tx Tx) error {
		if err := tx.Lock(ctx, ordering.Key(ordering.ParentSetGroup, groupID)); err != nil {
			return err
		}
		if _, err := tx.GetSetGroup(ctx, userID, groupID); err != nil {
			return err
		}
		sets, err := tx.ListSets(ctx, userID, groupID)
		if err != nil {
			return err
		}
		ids, items := setItems(sets)
		positions, err := ordering.Reorder(ids, orderedIDs)
		if err != nil {
			return err
		}
		if err := tx.UpdateSetOrders(ctx, userID, ordering.Changed(items, positions)); err != nil {
			return err
		}
		reordered, err = tx.ListSets(ctx, userID, groupID)
		return err
	})
	s.countReorder(string(ordering.ParentSetGroup), err)
	if err != nil {
		return nil, err
	}
	return reordered, nil
}

func (s *Service) countReorder(list string, err error) {
	if s.metrics == nil {
		return
	}
	if err == nil {
		s.metrics.CounterReorders.WithLabelValues(list).Inc()
	} else if errors.Is(err, apperr.ErrInvalidReorder) {
		s.metrics.CounterRejectedReorders.Inc()
	}
}

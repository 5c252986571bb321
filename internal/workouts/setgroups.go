package workouts

import (
	"context"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/soodoh/openfit/internal/apperr"
	"github.com/soodoh/openfit/internal/ordering"
	"github.com/soodoh/openfit/internal/telemetry/tracing"
)

type SetGroupInput struct {
	Type    SetGroupType `json:"type"`
	Comment *string      `json:"comment,omitempty"`
}

type SetGroupPatch struct {
	Type    *SetGroupType `json:"type,omitempty"`
	Comment *string       `json:"comment,omitempty"`
}

// checkParent verifies that the parent exists and belongs to the user.
func checkParent(ctx context.Context, tx Tx, userID uuid.UUID, parent Parent) error {
	switch parent.Kind {
	case ordering.ParentRoutineDay:
		_, err := tx.GetRoutineDay(ctx, userID, parent.ID)
		return err
	case ordering.ParentSession:
		_, err := tx.GetSession(ctx, userID, parent.ID)
		return err
	default:
		return apperr.Validation("set group parent", "unknown parent kind %q", parent.Kind)
	}
}

func groupItems(groups []SetGroup) ([]uuid.UUID, []ordering.Item[uuid.UUID]) {
	ids := make([]uuid.UUID, 0, len(groups))
	items := make([]ordering.Item[uuid.UUID], 0, len(groups))
	for _, g := range groups {
		ids = append(ids, g.ID)
		items = append(items, ordering.Item[uuid.UUID]{ID: g.ID, Order: g.Order})
	}
	return ids, items
}

// CreateSetGroup appends a new group to the parent's list.
func (s *Service) CreateSetGroup(ctx context.Context, userID uuid.UUID, parent Parent, in SetGroupInput) (_ *SetGroup, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.workouts.setgroup.create")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("parent", parent.Key()))

	const op = "create set group"
	if err := requireUser(op, userID); err != nil {
		return nil, err
	}
	if in.Type == "" {
		in.Type = SetGroupNormal
	}
	if !in.Type.IsValid() {
		return nil, apperr.Validation(op, "invalid set group type %q", in.Type)
	}

	group := &SetGroup{
		ID:      uuid.New(),
		UserID:  userID,
		Type:    in.Type,
		Comment: in.Comment,
	}
	parentID := parent.ID
	switch parent.Kind {
	case ordering.ParentRoutineDay:
		group.RoutineDayID = &parentID
	case ordering.ParentSession:
		group.SessionID = &parentID
	default:
		return nil, apperr.Validation(op, "unknown parent kind %q", parent.Kind)
	}

	err = s.store.InTx(ctx, func(tx Tx) error {
		if err := tx.Lock(ctx, parent.Key()); err != nil {
			return err
		}
		if err := checkParent(ctx, tx, userID, parent); err != nil {
			return err
		}
		siblings, err := tx.ListSetGroups(ctx, userID, parent)
		if err != nil {
			return err
		}
		group.Order = ordering.Next(len(siblings))
		return tx.InsertSetGroup(ctx, group)
	})
	if err != nil {
		return nil, err
	}
	return group, nil
}

func (s *Service) UpdateSetGroup(ctx context.Context, userID, id uuid.UUID, patch SetGroupPatch) (_ *SetGroup, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.workouts.setgroup.update")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	const op = "update set group"
	if err := requireUser(op, userID); err != nil {
		return nil, err
	}
	if patch.Type != nil && !patch.Type.IsValid() {
		return nil, apperr.Validation(op, "invalid set group type %q", *patch.Type)
	}

	var updated *SetGroup
	err = s.store.InTx(ctx, func(tx Tx) error {
		group, err := tx.GetSetGroup(ctx, userID, id)
		if err != nil {
			return err
		}
		if patch.Type != nil {
			group.Type = *patch.Type
		}
		if patch.Comment != nil {
			group.Comment = patch.Comment
		}
		if err := tx.UpdateSetGroup(ctx, group); err != nil {
			return err
		}
		updated = group
		return nil
	})
	return updated, err
}

// DeleteSetGroup removes the group with its sets and closes the gap in the
// parent's order.
func (s *Service) DeleteSetGroup(ctx context.Context, userID, id uuid.UUID) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.workouts.setgroup.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if err := requireUser("delete set group", userID); err != nil {
		return err
	}

	return s.store.InTx(ctx, func(tx Tx) error {
		group, err := tx.GetSetGroup(ctx, userID, id)
		if err != nil {
			return err
		}
		parent := group.Parent()
		if err := tx.Lock(ctx, parent.Key()); err != nil {
			return err
		}
		if err := tx.Lock(ctx, ordering.Key(ordering.ParentSetGroup, id)); err != nil {
			return err
		}
		if err := deleteGroup(ctx, tx, userID, id); err != nil {
			return err
		}

		siblings, err := tx.ListSetGroups(ctx, userID, parent)
		if err != nil {
			return err
		}
		_, items := groupItems(siblings)
		return tx.UpdateSetGroupOrders(ctx, userID, ordering.Compact(items))
	})
}

// ReorderSetGroups rewrites the order of the parent's groups to match
// orderedIDs, which must be a permutation of the current groups.
func (s *Service) ReorderSetGroups(ctx context.Context, userID uuid.UUID, parent Parent, orderedIDs []uuid.UUID) (_ []SetGroup, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.workouts.setgroup.reorder")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("parent", parent.Key()), attribute.Int("count", len(orderedIDs)))

	if err := requireUser("reorder set groups", userID); err != nil {
		return nil, err
	}

	var reordered []SetGroup
	err = s.store.InTx(ctx, func(tx Tx) error {
		if err := tx.Lock(ctx, parent.Key()); err != nil {
			return err
		}
		if err := checkParent(ctx, tx, userID, parent); err != nil {
			return err
		}
		groups, err := tx.ListSetGroups(ctx, userID, parent)
		if err != nil {
			return err
		}
		ids, items := groupItems(groups)
		positions, err := ordering.Reorder(ids, orderedIDs)
		if err != nil {
			return err
		}
		if err := tx.UpdateSetGroupOrders(ctx, userID, ordering.Changed(items, positions)); err != nil {
			return err
		}
		reordered, err = tx.ListSetGroups(ctx, userID, parent)
		return err
	})
	s.countReorder(string(parent.Kind), err)
	if err != nil {
		return nil, err
	}
	return reordered, nil
}

// ReplaceExerciseInSetGroup points every set of the group at a new exercise,
// keeping everything else about the sets.
func (s *Service) ReplaceExerciseInSetGroup(ctx context.Context, userID, groupID, exerciseID uuid.UUID) (_ *SetGroupDetail, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.workouts.setgroup.replaceexercise")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	const op = "replace exercise"
	if err := requireUser(op, userID); err != nil {
		return nil, err
	}
	if err := s.checkExercise(ctx, op, exerciseID); err != nil {
		return nil, err
	}

	var detail *SetGroupDetail
	err = s.store.InTx(ctx, func(tx Tx) error {
		if err := tx.Lock(ctx, ordering.Key(ordering.ParentSetGroup, groupID)); err != nil {
			return err
		}
		group, err := tx.GetSetGroup(ctx, userID, groupID)
		if err != nil {
			return err
		}
		if _, err := tx.SetGroupExercise(ctx, userID, groupID, exerciseID); err != nil {
			return err
		}
		sets, err := tx.ListSets(ctx, userID, groupID)
		if err != nil {
			return err
		}
		detail = &SetGroupDetail{SetGroup: *group, Sets: sets}
		return nil
	})
	return detail, err
}

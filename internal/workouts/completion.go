package workouts

import (
	"context"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/soodoh/openfit/internal/apperr"
	"github.com/soodoh/openfit/internal/telemetry/tracing"
)

// RestInstruction asks the client to start a rest countdown.
type RestInstruction struct {
	Seconds int `json:"seconds"`
}

// GroupState is the derived completion of the set's group after a change.
// Collapse and Expand tell the client how to present the group.
type GroupState struct {
	Completed     bool `json:"completed"`
	JustCompleted bool `json:"justCompleted"`
	Collapse      bool `json:"collapse"`
	Expand        bool `json:"expand"`
}

type CompletionResult struct {
	Set   Set              `json:"set"`
	Rest  *RestInstruction `json:"rest,omitempty"`
	Group GroupState       `json:"group"`
}

// SetCompleted moves a session set between pending and done. Only the
// pending to done transition of a set with a rest time produces a rest
// instruction.
func (s *Service) SetCompleted(ctx context.Context, userID, setID uuid.UUID, completed bool) (_ *CompletionResult, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.workouts.set.complete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Bool("completed", completed))

	const op = "complete set"
	if err := requireUser(op, userID); err != nil {
		return nil, err
	}
	return s.complete(ctx, op, userID, setID, completed, false)
}

// CountdownFinished completes a duration set when its countdown reaches zero.
func (s *Service) CountdownFinished(ctx context.Context, userID, setID uuid.UUID) (_ *CompletionResult, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.workouts.set.countdown")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	const op = "finish countdown"
	if err := requireUser(op, userID); err != nil {
		return nil, err
	}
	return s.complete(ctx, op, userID, setID, true, true)
}

func (s *Service) complete(ctx context.Context, op string, userID, setID uuid.UUID, completed, timedOnly bool) (*CompletionResult, error) {
	var (
		result *CompletionResult
		done   bool
	)
	err := s.store.InTx(ctx, func(tx Tx) error {
		set, err := tx.GetSet(ctx, userID, setID)
		if err != nil {
			return err
		}
		group, err := tx.GetSetGroup(ctx, userID, set.SetGroupID)
		if err != nil {
			return err
		}
		if !group.InSession() {
			return apperr.Validation(op, "sets of a routine day cannot be completed")
		}
		if timedOnly {
			timed, err := s.catalog.IsTimeBased(ctx, set.RepetitionUnitID)
			if err != nil {
				return err
			}
			if !timed {
				return apperr.Validation(op, "set is not measured in time")
			}
		}

		before, err := groupDetail(ctx, tx, userID, group)
		if err != nil {
			return err
		}
		wasDone := set.Completed
		set.Completed = completed
		done = !wasDone && completed
		if wasDone != completed {
			if err := tx.UpdateSet(ctx, set); err != nil {
				return err
			}
		}
		after, err := groupDetail(ctx, tx, userID, group)
		if err != nil {
			return err
		}

		result = &CompletionResult{Set: *set}
		if done && set.RestTime > 0 {
			result.Rest = &RestInstruction{Seconds: set.RestTime}
		}
		wasGroupDone, isGroupDone := before.Completed(), after.Completed()
		result.Group = GroupState{
			Completed:     isGroupDone,
			JustCompleted: !wasGroupDone && isGroupDone,
			Collapse:      !wasGroupDone && isGroupDone,
			Expand:        wasGroupDone && !isGroupDone,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if done && s.metrics != nil {
		s.metrics.CounterSetsCompleted.Inc()
	}
	return result, nil
}

func groupDetail(ctx context.Context, tx Tx, userID uuid.UUID, group *SetGroup) (*SetGroupDetail, error) {
	sets, err := tx.ListSets(ctx, userID, group.ID)
	if err != nil {
		return nil, err
	}
	return &SetGroupDetail{SetGroup: *group, Sets: sets}, nil
}

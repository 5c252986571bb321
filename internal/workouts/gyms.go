package workouts

import (
	"context"
	"strings"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/soodoh/openfit/internal/apperr"
	"github.com/soodoh/openfit/internal/telemetry/tracing"
)

type GymInput struct {
	Name         string      `json:"name"`
	EquipmentIDs []uuid.UUID `json:"equipmentIds"`
}

type GymPatch struct {
	Name         *string      `json:"name,omitempty"`
	EquipmentIDs *[]uuid.UUID `json:"equipmentIds,omitempty"`
}

func normalizeEquipment(op string, ids []uuid.UUID) ([]uuid.UUID, error) {
	seen := make(map[uuid.UUID]bool, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	if len(out) == 0 {
		return nil, apperr.Validation(op, "at least one equipment is required")
	}
	return out, nil
}

// CreateGym adds a gym. The user's first gym becomes the default one.
func (s *Service) CreateGym(ctx context.Context, userID uuid.UUID, in GymInput) (_ *Gym, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.workouts.gym.create")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	const op = "create gym"
	if err := requireUser(op, userID); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperr.Validation(op, "name is required")
	}
	equipment, err := normalizeEquipment(op, in.EquipmentIDs)
	if err != nil {
		return nil, err
	}

	gym := &Gym{
		ID:           uuid.New(),
		UserID:       userID,
		Name:         name,
		EquipmentIDs: equipment,
	}
	err = s.store.InTx(ctx, func(tx Tx) error {
		if err := tx.Lock(ctx, userLockKey(userID)); err != nil {
			return err
		}
		if err := tx.InsertGym(ctx, gym); err != nil {
			return err
		}
		def, err := tx.DefaultGym(ctx, userID)
		if err != nil {
			return err
		}
		if def == nil {
			return tx.SetDefaultGym(ctx, userID, &gym.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return gym, nil
}

func (s *Service) GetGym(ctx context.Context, userID, id uuid.UUID) (_ *Gym, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.workouts.gym.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if err := requireUser("get gym", userID); err != nil {
		return nil, err
	}

	var gym *Gym
	err = s.store.InTx(ctx, func(tx Tx) error {
		gym, err = tx.GetGym(ctx, userID, id)
		return err
	})
	return gym, err
}

func (s *Service) ListGyms(ctx context.Context, userID uuid.UUID) (_ []Gym, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.workouts.gym.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if err := requireUser("list gyms", userID); err != nil {
		return nil, err
	}

	var gyms []Gym
	err = s.store.InTx(ctx, func(tx Tx) error {
		gyms, err = tx.ListGyms(ctx, userID)
		return err
	})
	return gyms, err
}

func (s *Service) UpdateGym(ctx context.Context, userID, id uuid.UUID, patch GymPatch) (_ *Gym, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.workouts.gym.update")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	const op = "update gym"
	if err := requireUser(op, userID); err != nil {
		return nil, err
	}

	var updated *Gym
	err = s.store.InTx(ctx, func(tx Tx) error {
		gym, err := tx.GetGym(ctx, userID, id)
		if err != nil {
			return err
		}
		if patch.Name != nil {
			name := strings.TrimSpace(*patch.Name)
			if name == "" {
				return apperr.Validation(op, "name is required")
			}
			gym.Name = name
		}
		if patch.EquipmentIDs != nil {
			equipment, err := normalizeEquipment(op, *patch.EquipmentIDs)
			if err != nil {
				return err
			}
			gym.EquipmentIDs = equipment
		}
		if err := tx.UpdateGym(ctx, gym); err != nil {
			return err
		}
		updated = gym
		return nil
	})
	return updated, err
}

// DeleteGym removes a gym. A user always keeps at least one gym, so deleting
// the last one fails with ErrLastGym. Deleting the default gym clears the
// user's default, so searches run unfiltered until a new one is set.
func (s *Service) DeleteGym(ctx context.Context, userID, id uuid.UUID) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.workouts.gym.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	const op = "delete gym"
	if err := requireUser(op, userID); err != nil {
		return err
	}

	return s.store.InTx(ctx, func(tx Tx) error {
		if err := tx.Lock(ctx, userLockKey(userID)); err != nil {
			return err
		}
		if _, err := tx.GetGym(ctx, userID, id); err != nil {
			return err
		}
		gyms, err := tx.ListGyms(ctx, userID)
		if err != nil {
			return err
		}
		if len(gyms) <= 1 {
			return apperr.New(op, apperr.ErrLastGym, "a user must keep at least one gym")
		}

		def, err := tx.DefaultGym(ctx, userID)
		if err != nil {
			return err
		}
		if err := tx.DeleteGym(ctx, userID, id); err != nil {
			return err
		}
		if def == nil || *def != id {
			return nil
		}
		log.Debugf("default gym %s of user %s deleted, default cleared", id, userID)
		return tx.SetDefaultGym(ctx, userID, nil)
	})
}

// SetDefaultGym marks the gym used when a search names no gym. A nil id
// clears the default.
func (s *Service) SetDefaultGym(ctx context.Context, userID uuid.UUID, gymID *uuid.UUID) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.workouts.gym.setdefault")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if err := requireUser("set default gym", userID); err != nil {
		return err
	}

	return s.store.InTx(ctx, func(tx Tx) error {
		if gymID != nil {
			if _, err := tx.GetGym(ctx, userID, *gymID); err != nil {
				return err
			}
		}
		return tx.SetDefaultGym(ctx, userID, gymID)
	})
}

// DefaultGym returns the user's default gym, or nil when none is set.
func (s *Service) DefaultGym(ctx context.Context, userID uuid.UUID) (_ *Gym, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.workouts.gym.default")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if err := requireUser("default gym", userID); err != nil {
		return nil, err
	}

	var gym *Gym
	err = s.store.InTx(ctx, func(tx Tx) error {
		id, err := tx.DefaultGym(ctx, userID)
		if err != nil || id == nil {
			return err
		}
		gym, err = tx.GetGym(ctx, userID, *id)
		return err
	})
	return gym, err
}

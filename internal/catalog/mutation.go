package catalog

import (
	"strings"

	"github.com/google/uuid"

	"github.com/soodoh/openfit/internal/apperr"
)

type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Mutation is an admin change to one of the lookup tables.
type Mutation struct {
	Kind      Kind      `json:"kind"`
	Action    Action    `json:"action"`
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	TimeBased bool      `json:"timeBased"`
}

func (m Mutation) Validate() error {
	const op = "catalog mutation"
	if !m.Kind.IsValid() {
		return apperr.Validation(op, "unknown kind %q", m.Kind)
	}
	if m.TimeBased && m.Kind != KindRepetitionUnit {
		return apperr.Validation(op, "only repetition units can be time based")
	}
	switch m.Action {
	case ActionCreate:
		if strings.TrimSpace(m.Name) == "" {
			return apperr.Validation(op, "name is required")
		}
	case ActionUpdate:
		if m.ID == uuid.Nil {
			return apperr.Validation(op, "id is required")
		}
		if strings.TrimSpace(m.Name) == "" {
			return apperr.Validation(op, "name is required")
		}
	case ActionDelete:
		if m.ID == uuid.Nil {
			return apperr.Validation(op, "id is required")
		}
	default:
		return apperr.Validation(op, "unknown action %q", m.Action)
	}
	return nil
}

// tableFor maps a kind to its lookup table.
func tableFor(kind Kind) (string, error) {
	switch kind {
	case KindEquipment:
		return "equipment", nil
	case KindCategory:
		return "category", nil
	case KindMuscleGroup:
		return "muscle_group", nil
	case KindWeightUnit:
		return "weight_unit", nil
	case KindRepetitionUnit:
		return "repetition_unit", nil
	default:
		return "", apperr.Validation("catalog", "unknown kind %q", kind)
	}
}

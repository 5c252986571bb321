package catalog

import (
	"github.com/google/uuid"

	"github.com/soodoh/openfit/internal/apperr"
)

type MuscleRole string

const (
	RolePrimary   MuscleRole = "primary"
	RoleSecondary MuscleRole = "secondary"
)

func (r MuscleRole) IsValid() bool {
	return r == RolePrimary || r == RoleSecondary
}

// ToggleMuscle flips membership of muscle in the role's set. Adding a muscle
// to one side removes it from the other, so both sets stay disjoint.
func ToggleMuscle(primary, secondary []uuid.UUID, muscle uuid.UUID, role MuscleRole) ([]uuid.UUID, []uuid.UUID, error) {
	var target, other []uuid.UUID
	switch role {
	case RolePrimary:
		target, other = primary, secondary
	case RoleSecondary:
		target, other = secondary, primary
	default:
		return nil, nil, apperr.Validation("toggle muscle", "unknown role %q", role)
	}

	if contains(target, muscle) {
		target = without(target, muscle)
	} else {
		target = append(without(target, muscle), muscle)
		other = without(other, muscle)
	}

	if role == RolePrimary {
		return target, other, nil
	}
	return other, target, nil
}

// normalizeMuscles removes duplicates and resolves overlap in favour of the
// primary set.
func normalizeMuscles(primary, secondary []uuid.UUID) ([]uuid.UUID, []uuid.UUID) {
	seen := make(map[uuid.UUID]bool, len(primary)+len(secondary))
	p := make([]uuid.UUID, 0, len(primary))
	for _, id := range primary {
		if !seen[id] {
			seen[id] = true
			p = append(p, id)
		}
	}
	s := make([]uuid.UUID, 0, len(secondary))
	for _, id := range secondary {
		if !seen[id] {
			seen[id] = true
			s = append(s, id)
		}
	}
	return p, s
}

func contains(ids []uuid.UUID, id uuid.UUID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func without(ids []uuid.UUID, id uuid.UUID) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

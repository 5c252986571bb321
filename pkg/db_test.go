package pkg

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestPgErrors(t *testing.T) {
	dup := fmt.Errorf("insert gym: %w", &pgconn.PgError{Code: "23505", ConstraintName: "gyms_user_name_key"})
	fk := &pgconn.PgError{Code: "23503", ConstraintName: "sets_exercise_id_fkey"}
	plain := errors.New("connection reset")

	assert.True(t, IsUniqueViolationError(dup))
	assert.False(t, IsForeignKeyViolationError(dup))
	assert.Equal(t, "gyms_user_name_key", ConstraintName(dup))

	assert.True(t, IsForeignKeyViolationError(fk))
	assert.False(t, IsUniqueViolationError(fk))

	assert.False(t, IsUniqueViolationError(plain))
	assert.False(t, IsForeignKeyViolationError(nil))
	assert.Empty(t, ConstraintName(plain))
}

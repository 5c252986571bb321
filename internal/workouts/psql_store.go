package workouts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/soodoh/openfit/internal/apperr"
	"github.com/soodoh/openfit/internal/ordering"
	"github.com/soodoh/openfit/internal/telemetry/tracing"
	"github.com/soodoh/openfit/pkg"
)

var _ Store = (*PsqlStore)(nil)

type PsqlStore struct {
	db *pgxpool.Pool
}

func NewPsqlStore(db *pgxpool.Pool) *PsqlStore {
	return &PsqlStore{
		db: db,
	}
}

func (s *PsqlStore) InTx(ctx context.Context, fn func(tx Tx) error) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.tx")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			if rollbackErr := tx.Rollback(ctx); rollbackErr != nil && !errors.Is(rollbackErr, pgx.ErrTxClosed) {
				err = fmt.Errorf("failed to rollback transaction: %w: %w", rollbackErr, err)
			}
		} else {
			// deferred order constraints are checked here
			err = mapPgError("commit", tx.Commit(ctx))
		}
	}()

	return fn(&psqlTx{tx: tx})
}

// mapPgError turns constraint violations into domain errors.
func mapPgError(op string, err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.ConstraintName {
	case "ux_workout_session_open":
		return apperr.Conflict(op, "another session is already active")
	case "workout_session_check":
		return apperr.New(op, apperr.ErrInvalidDuration, "start time must be before end time")
	case "gym_equipment_ids_check":
		return apperr.Validation(op, "at least one equipment is required")
	}
	switch {
	case pkg.IsUniqueViolationError(err):
		return apperr.Wrap(op, apperr.ErrConflict, err)
	case pkg.IsForeignKeyViolationError(err):
		return apperr.Wrap(op, apperr.ErrNotFound, err)
	case pgErr.Code == "23514": // check violation
		return apperr.Wrap(op, apperr.ErrValidation, err)
	}
	return err
}

type psqlTx struct {
	tx pgx.Tx
}

func (t *psqlTx) exec(ctx context.Context, op, sql string, args ...any) (pgconn.CommandTag, error) {
	tag, err := t.tx.Exec(ctx, sql, args...)
	return tag, mapPgError(op, err)
}

func (t *psqlTx) execOne(ctx context.Context, op, resource, sql string, args ...any) error {
	tag, err := t.exec(ctx, op, sql, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(op, resource)
	}
	return nil
}

func (t *psqlTx) Lock(ctx context.Context, key string) error {
	_, err := t.tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0));`, key)
	if err != nil {
		return fmt.Errorf("lock %s: %w", key, err)
	}
	return nil
}

func (t *psqlTx) InsertRoutine(ctx context.Context, r *Routine) error {
	_, err := t.exec(ctx, "insert routine", `
		INSERT INTO routine (id, user_id, name, description, updated_at)
		VALUES ($1, $2, $3, $4, $5);`,
		r.ID, r.UserID, r.Name, r.Description, r.UpdatedAt,
	)
	return err
}

const selectRoutine = `SELECT id, user_id, name, description, updated_at FROM routine`

func scanRoutine(row pgx.Row) (*Routine, error) {
	var r Routine
	if err := row.Scan(&r.ID, &r.UserID, &r.Name, &r.Description, &r.UpdatedAt); err != nil {
		return nil, err
	}
	return &r, nil
}

func (t *psqlTx) GetRoutine(ctx context.Context, userID, id uuid.UUID) (*Routine, error) {
	r, err := scanRoutine(t.tx.QueryRow(ctx, selectRoutine+` WHERE id = $1 AND user_id = $2;`, id, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("get routine", "routine")
	}
	return r, err
}

func (t *psqlTx) ListRoutines(ctx context.Context, userID uuid.UUID) ([]Routine, error) {
	rows, err := t.tx.Query(ctx, selectRoutine+` WHERE user_id = $1 ORDER BY updated_at DESC, id;`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Routine, 0)
	for rows.Next() {
		r, err := scanRoutine(rows)
		if err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

func (t *psqlTx) UpdateRoutine(ctx context.Context, r *Routine) error {
	return t.execOne(ctx, "update routine", "routine", `
		UPDATE routine SET name = $1, description = $2, updated_at = $3
		WHERE id = $4 AND user_id = $5;`,
		r.Name, r.Description, r.UpdatedAt, r.ID, r.UserID,
	)
}

func (t *psqlTx) DeleteRoutine(ctx context.Context, userID, id uuid.UUID) error {
	return t.execOne(ctx, "delete routine", "routine",
		`DELETE FROM routine WHERE id = $1 AND user_id = $2;`, id, userID)
}

func (t *psqlTx) CountRoutines(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	err := t.tx.QueryRow(ctx, `SELECT COUNT(*) FROM routine WHERE user_id = $1;`, userID).Scan(&count)
	return count, err
}

func (t *psqlTx) InsertRoutineDay(ctx context.Context, d *RoutineDay) error {
	// the routine must belong to the same user
	return t.execOne(ctx, "insert routine day", "routine", `
		INSERT INTO routine_day (id, routine_id, user_id, description, weekdays)
		SELECT $1, r.id, r.user_id, $3, $4
		FROM routine r WHERE r.id = $2 AND r.user_id = $5;`,
		d.ID, d.RoutineID, d.Description, weekdaysParam(d.Weekdays), d.UserID,
	)
}

const selectRoutineDay = `SELECT id, routine_id, user_id, description, weekdays FROM routine_day`

func scanRoutineDay(row pgx.Row) (*RoutineDay, error) {
	var d RoutineDay
	var weekdays []int16
	if err := row.Scan(&d.ID, &d.RoutineID, &d.UserID, &d.Description, &weekdays); err != nil {
		return nil, err
	}
	d.Weekdays = make([]int, 0, len(weekdays))
	for _, w := range weekdays {
		d.Weekdays = append(d.Weekdays, int(w))
	}
	return &d, nil
}

func weekdaysParam(weekdays []int) []int16 {
	out := make([]int16, 0, len(weekdays))
	for _, w := range weekdays {
		out = append(out, int16(w))
	}
	return out
}

func (t *psqlTx) GetRoutineDay(ctx context.Context, userID, id uuid.UUID) (*RoutineDay, error) {
	d, err := scanRoutineDay(t.tx.QueryRow(ctx, selectRoutineDay+` WHERE id = $1 AND user_id = $2;`, id, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("get routine day", "routine day")
	}
	return d, err
}

func (t *psqlTx) ListRoutineDays(ctx context.Context, userID, routineID uuid.UUID) ([]RoutineDay, error) {
	rows, err := t.tx.Query(ctx,
		selectRoutineDay+` WHERE routine_id = $1 AND user_id = $2 ORDER BY description COLLATE "C", id;`,
		routineID, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]RoutineDay, 0)
	for rows.Next() {
		d, err := scanRoutineDay(rows)
		if err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

func (t *psqlTx) UpdateRoutineDay(ctx context.Context, d *RoutineDay) error {
	return t.execOne(ctx, "update routine day", "routine day", `
		UPDATE routine_day SET description = $1, weekdays = $2
		WHERE id = $3 AND user_id = $4;`,
		d.Description, weekdaysParam(d.Weekdays), d.ID, d.UserID,
	)
}

func (t *psqlTx) DeleteRoutineDay(ctx context.Context, userID, id uuid.UUID) error {
	return t.execOne(ctx, "delete routine day", "routine day",
		`DELETE FROM routine_day WHERE id = $1 AND user_id = $2;`, id, userID)
}

func (t *psqlTx) InsertSession(ctx context.Context, s *Session) error {
	_, err := t.exec(ctx, "insert session", `
		INSERT INTO workout_session (id, user_id, name, notes, impression, start_time, end_time, template_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);`,
		s.ID, s.UserID, s.Name, s.Notes, s.Impression, s.StartTime, s.EndTime, s.TemplateID,
	)
	return err
}

const selectSession = `
	SELECT id, user_id, name, notes, impression, start_time, end_time, template_id
	FROM workout_session`

func scanSession(row pgx.Row) (*Session, error) {
	var s Session
	if err := row.Scan(
		&s.ID, &s.UserID, &s.Name, &s.Notes, &s.Impression, &s.StartTime, &s.EndTime, &s.TemplateID,
	); err != nil {
		return nil, err
	}
	return &s, nil
}

func (t *psqlTx) querySessions(ctx context.Context, sql string, args ...any) ([]Session, error) {
	rows, err := t.tx.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Session, 0)
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

func (t *psqlTx) GetSession(ctx context.Context, userID, id uuid.UUID) (*Session, error) {
	s, err := scanSession(t.tx.QueryRow(ctx, selectSession+` WHERE id = $1 AND user_id = $2;`, id, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("get session", "session")
	}
	return s, err
}

func (t *psqlTx) UpdateSession(ctx context.Context, s *Session) error {
	return t.execOne(ctx, "update session", "session", `
		UPDATE workout_session
		SET name = $1, notes = $2, impression = $3, start_time = $4, end_time = $5, template_id = $6
		WHERE id = $7 AND user_id = $8;`,
		s.Name, s.Notes, s.Impression, s.StartTime, s.EndTime, s.TemplateID, s.ID, s.UserID,
	)
}

func (t *psqlTx) DeleteSession(ctx context.Context, userID, id uuid.UUID) error {
	return t.execOne(ctx, "delete session", "session",
		`DELETE FROM workout_session WHERE id = $1 AND user_id = $2;`, id, userID)
}

func (t *psqlTx) ListSessions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Session, error) {
	return t.querySessions(ctx,
		selectSession+` WHERE user_id = $1 ORDER BY start_time DESC, id DESC LIMIT $2 OFFSET $3;`,
		userID, limit, offset,
	)
}

func (t *psqlTx) CountSessions(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	err := t.tx.QueryRow(ctx, `SELECT COUNT(*) FROM workout_session WHERE user_id = $1;`, userID).Scan(&count)
	return count, err
}

func (t *psqlTx) OpenSessions(ctx context.Context, userID uuid.UUID) ([]Session, error) {
	return t.querySessions(ctx,
		selectSession+` WHERE user_id = $1 AND end_time IS NULL ORDER BY start_time DESC, id DESC;`,
		userID,
	)
}

func (t *psqlTx) ClearSessionTemplate(ctx context.Context, userID, routineDayID uuid.UUID) error {
	_, err := t.exec(ctx, "clear session template", `
		UPDATE workout_session SET template_id = NULL
		WHERE template_id = $1 AND user_id = $2;`,
		routineDayID, userID,
	)
	return err
}

func (t *psqlTx) SessionStartTimes(ctx context.Context, userID uuid.UUID, since time.Time) ([]time.Time, error) {
	rows, err := t.tx.Query(ctx, `
		SELECT start_time FROM workout_session
		WHERE user_id = $1 AND start_time >= $2
		ORDER BY start_time DESC;`,
		userID, since,
	)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[time.Time])
}

func (t *psqlTx) InsertSetGroup(ctx context.Context, g *SetGroup) error {
	_, err := t.exec(ctx, "insert set group", `
		INSERT INTO set_group (id, user_id, routine_day_id, session_id, type, sort_order, comment)
		VALUES ($1, $2, $3, $4, $5, $6, $7);`,
		g.ID, g.UserID, g.RoutineDayID, g.SessionID, string(g.Type), g.Order, g.Comment,
	)
	return err
}

const selectSetGroup = `
	SELECT id, user_id, routine_day_id, session_id, type, sort_order, comment
	FROM set_group`

func scanSetGroup(row pgx.Row) (*SetGroup, error) {
	var g SetGroup
	var groupType string
	if err := row.Scan(&g.ID, &g.UserID, &g.RoutineDayID, &g.SessionID, &groupType, &g.Order, &g.Comment); err != nil {
		return nil, err
	}
	g.Type = SetGroupType(groupType)
	return &g, nil
}

func (t *psqlTx) GetSetGroup(ctx context.Context, userID, id uuid.UUID) (*SetGroup, error) {
	g, err := scanSetGroup(t.tx.QueryRow(ctx, selectSetGroup+` WHERE id = $1 AND user_id = $2;`, id, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("get set group", "set group")
	}
	return g, err
}

func (t *psqlTx) ListSetGroups(ctx context.Context, userID uuid.UUID, parent Parent) ([]SetGroup, error) {
	var column string
	switch parent.Kind {
	case ordering.ParentRoutineDay:
		column = "routine_day_id"
	case ordering.ParentSession:
		column = "session_id"
	default:
		return nil, apperr.Validation("list set groups", "unknown parent kind %q", parent.Kind)
	}
	rows, err := t.tx.Query(ctx,
		selectSetGroup+` WHERE `+column+` = $1 AND user_id = $2 ORDER BY sort_order;`,
		parent.ID, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]SetGroup, 0)
	for rows.Next() {
		g, err := scanSetGroup(rows)
		if err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		out = append(out, *g)
	}
	return out, rows.Err()
}

func (t *psqlTx) UpdateSetGroup(ctx context.Context, g *SetGroup) error {
	return t.execOne(ctx, "update set group", "set group", `
		UPDATE set_group SET type = $1, comment = $2
		WHERE id = $3 AND user_id = $4;`,
		string(g.Type), g.Comment, g.ID, g.UserID,
	)
}

func (t *psqlTx) DeleteSetGroup(ctx context.Context, userID, id uuid.UUID) error {
	return t.execOne(ctx, "delete set group", "set group",
		`DELETE FROM set_group WHERE id = $1 AND user_id = $2;`, id, userID)
}

func splitOrders(orders map[uuid.UUID]int) ([]uuid.UUID, []int32) {
	ids := make([]uuid.UUID, 0, len(orders))
	positions := make([]int32, 0, len(orders))
	for id, order := range orders {
		ids = append(ids, id)
		positions = append(positions, int32(order))
	}
	return ids, positions
}

// updateOrders rewrites sort_order of many rows in one statement. The unique
// order constraints are deferred, so intermediate duplicates are fine.
func (t *psqlTx) updateOrders(ctx context.Context, op, table string, userID uuid.UUID, orders map[uuid.UUID]int) error {
	if len(orders) == 0 {
		return nil
	}
	ids, positions := splitOrders(orders)
	tag, err := t.exec(ctx, op, `
		UPDATE `+table+` AS t SET sort_order = o.sort_order
		FROM unnest($1::uuid[], $2::int[]) AS o(id, sort_order)
		WHERE t.id = o.id AND t.user_id = $3;`,
		ids, positions, userID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() != int64(len(orders)) {
		return apperr.NotFound(op, table)
	}
	return nil
}

func (t *psqlTx) UpdateSetGroupOrders(ctx context.Context, userID uuid.UUID, orders map[uuid.UUID]int) error {
	return t.updateOrders(ctx, "update set group orders", "set_group", userID, orders)
}

func (t *psqlTx) InsertSet(ctx context.Context, s *Set) error {
	_, err := t.exec(ctx, "insert set", `
		INSERT INTO workout_set
			(id, user_id, set_group_id, exercise_id, type, sort_order, reps, repetition_unit_id,
			 weight, weight_unit_id, rest_time, completed)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);`,
		s.ID, s.UserID, s.SetGroupID, s.ExerciseID, string(s.Type), s.Order, s.Reps, s.RepetitionUnitID,
		s.Weight, s.WeightUnitID, s.RestTime, s.Completed,
	)
	return err
}

const selectSet = `
	SELECT ws.id, ws.user_id, ws.set_group_id, ws.exercise_id, ws.type, ws.sort_order, ws.reps,
		ws.repetition_unit_id, ws.weight, ws.weight_unit_id, ws.rest_time, ws.completed
	FROM workout_set ws`

func scanSet(row pgx.Row) (*Set, error) {
	var s Set
	var setType string
	if err := row.Scan(
		&s.ID, &s.UserID, &s.SetGroupID, &s.ExerciseID, &setType, &s.Order, &s.Reps, &s.RepetitionUnitID,
		&s.Weight, &s.WeightUnitID, &s.RestTime, &s.Completed,
	); err != nil {
		return nil, err
	}
	s.Type = SetType(setType)
	return &s, nil
}

func (t *psqlTx) GetSet(ctx context.Context, userID, id uuid.UUID) (*Set, error) {
	s, err := scanSet(t.tx.QueryRow(ctx, selectSet+` WHERE ws.id = $1 AND ws.user_id = $2;`, id, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("get set", "set")
	}
	return s, err
}

func (t *psqlTx) ListSets(ctx context.Context, userID uuid.UUID, groupIDs ...uuid.UUID) ([]Set, error) {
	if len(groupIDs) == 0 {
		return []Set{}, nil
	}
	rows, err := t.tx.Query(ctx, selectSet+`
		JOIN unnest($1::uuid[]) WITH ORDINALITY AS g(id, rank) ON g.id = ws.set_group_id
		WHERE ws.user_id = $2
		ORDER BY g.rank, ws.sort_order;`,
		groupIDs, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Set, 0)
	for rows.Next() {
		s, err := scanSet(rows)
		if err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

func (t *psqlTx) UpdateSet(ctx context.Context, s *Set) error {
	return t.execOne(ctx, "update set", "set", `
		UPDATE workout_set
		SET exercise_id = $1, type = $2, reps = $3, repetition_unit_id = $4, weight = $5,
			weight_unit_id = $6, rest_time = $7, completed = $8
		WHERE id = $9 AND user_id = $10;`,
		s.ExerciseID, string(s.Type), s.Reps, s.RepetitionUnitID, s.Weight,
		s.WeightUnitID, s.RestTime, s.Completed, s.ID, s.UserID,
	)
}

func (t *psqlTx) DeleteSet(ctx context.Context, userID, id uuid.UUID) error {
	return t.execOne(ctx, "delete set", "set",
		`DELETE FROM workout_set WHERE id = $1 AND user_id = $2;`, id, userID)
}

func (t *psqlTx) UpdateSetOrders(ctx context.Context, userID uuid.UUID, orders map[uuid.UUID]int) error {
	return t.updateOrders(ctx, "update set orders", "workout_set", userID, orders)
}

func (t *psqlTx) SetGroupExercise(ctx context.Context, userID, groupID, exerciseID uuid.UUID) (int, error) {
	tag, err := t.exec(ctx, "replace exercise", `
		UPDATE workout_set SET exercise_id = $1
		WHERE set_group_id = $2 AND user_id = $3;`,
		exerciseID, groupID, userID,
	)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

func (t *psqlTx) InsertGym(ctx context.Context, g *Gym) error {
	_, err := t.exec(ctx, "insert gym", `
		INSERT INTO gym (id, user_id, name, equipment_ids) VALUES ($1, $2, $3, $4);`,
		g.ID, g.UserID, g.Name, g.EquipmentIDs,
	)
	return err
}

const selectGym = `SELECT id, user_id, name, equipment_ids FROM gym`

func scanGym(row pgx.Row) (*Gym, error) {
	var g Gym
	if err := row.Scan(&g.ID, &g.UserID, &g.Name, &g.EquipmentIDs); err != nil {
		return nil, err
	}
	return &g, nil
}

func (t *psqlTx) GetGym(ctx context.Context, userID, id uuid.UUID) (*Gym, error) {
	g, err := scanGym(t.tx.QueryRow(ctx, selectGym+` WHERE id = $1 AND user_id = $2;`, id, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("get gym", "gym")
	}
	return g, err
}

func (t *psqlTx) ListGyms(ctx context.Context, userID uuid.UUID) ([]Gym, error) {
	rows, err := t.tx.Query(ctx, selectGym+` WHERE user_id = $1 ORDER BY name COLLATE "C", id;`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Gym, 0)
	for rows.Next() {
		g, err := scanGym(rows)
		if err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		out = append(out, *g)
	}
	return out, rows.Err()
}

func (t *psqlTx) UpdateGym(ctx context.Context, g *Gym) error {
	return t.execOne(ctx, "update gym", "gym", `
		UPDATE gym SET name = $1, equipment_ids = $2
		WHERE id = $3 AND user_id = $4;`,
		g.Name, g.EquipmentIDs, g.ID, g.UserID,
	)
}

func (t *psqlTx) DeleteGym(ctx context.Context, userID, id uuid.UUID) error {
	return t.execOne(ctx, "delete gym", "gym",
		`DELETE FROM gym WHERE id = $1 AND user_id = $2;`, id, userID)
}

func (t *psqlTx) DefaultGym(ctx context.Context, userID uuid.UUID) (*uuid.UUID, error) {
	var gymID *uuid.UUID
	err := t.tx.QueryRow(ctx, `SELECT default_gym_id FROM app_user WHERE id = $1;`, userID).Scan(&gymID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("default gym", "user")
	}
	return gymID, err
}

func (t *psqlTx) SetDefaultGym(ctx context.Context, userID uuid.UUID, gymID *uuid.UUID) error {
	if gymID != nil {
		if _, err := t.GetGym(ctx, userID, *gymID); err != nil {
			return err
		}
	}
	return t.execOne(ctx, "set default gym", "user",
		`UPDATE app_user SET default_gym_id = $1 WHERE id = $2;`, gymID, userID)
}

package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"

	"github.com/soodoh/openfit/internal/apperr"
	"github.com/soodoh/openfit/internal/telemetry/tracing"
	"github.com/soodoh/openfit/pkg"
)

var _ Store = (*Repo)(nil)

// Repo is the postgres backed catalog store.
type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) ListLookups(ctx context.Context, kind Kind) (_ []Lookup, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.catalog.lookups.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("kind", string(kind)))

	table, err := tableFor(kind)
	if err != nil {
		return nil, err
	}

	timeBased := "false"
	if kind == KindRepetitionUnit {
		timeBased = "time_based"
	}

	rows, err := r.db.Query(ctx, fmt.Sprintf(
		`SELECT id, name, %s FROM %s ORDER BY name COLLATE "C", id;`, timeBased, table,
	))
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	defer rows.Close()

	lookups := make([]Lookup, 0)
	for rows.Next() {
		var l Lookup
		if err := rows.Scan(&l.ID, &l.Name, &l.TimeBased); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		lookups = append(lookups, l)
	}
	return lookups, rows.Err()
}

func (r *Repo) CreateLookup(ctx context.Context, kind Kind, l *Lookup) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.catalog.lookups.create")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	table, err := tableFor(kind)
	if err != nil {
		return err
	}
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}

	if kind == KindRepetitionUnit {
		_, err = r.db.Exec(ctx,
			`INSERT INTO repetition_unit (id, name, time_based) VALUES ($1, $2, $3);`,
			l.ID, l.Name, l.TimeBased,
		)
	} else {
		_, err = r.db.Exec(ctx,
			fmt.Sprintf(`INSERT INTO %s (id, name) VALUES ($1, $2);`, table),
			l.ID, l.Name,
		)
	}
	if pkg.IsUniqueViolationError(err) {
		return apperr.Conflict("create "+string(kind), "name %q already exists", l.Name)
	}
	return err
}

func (r *Repo) UpdateLookup(ctx context.Context, kind Kind, l *Lookup) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.catalog.lookups.update")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	table, err := tableFor(kind)
	if err != nil {
		return err
	}

	var rowsAffected int64
	if kind == KindRepetitionUnit {
		tag, execErr := r.db.Exec(ctx,
			`UPDATE repetition_unit SET name = $1, time_based = $2 WHERE id = $3;`,
			l.Name, l.TimeBased, l.ID,
		)
		err, rowsAffected = execErr, tag.RowsAffected()
	} else {
		tag, execErr := r.db.Exec(ctx,
			fmt.Sprintf(`UPDATE %s SET name = $1 WHERE id = $2;`, table),
			l.Name, l.ID,
		)
		err, rowsAffected = execErr, tag.RowsAffected()
	}
	if err != nil {
		if pkg.IsUniqueViolationError(err) {
			return apperr.Conflict("update "+string(kind), "name %q already exists", l.Name)
		}
		return err
	}
	if rowsAffected == 0 {
		return apperr.NotFound("update "+string(kind), string(kind))
	}
	return nil
}

func (r *Repo) DeleteLookup(ctx context.Context, kind Kind, id uuid.UUID) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.catalog.lookups.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	table, err := tableFor(kind)
	if err != nil {
		return err
	}

	tag, err := r.db.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = $1;`, table), id)
	if err != nil {
		if pkg.IsForeignKeyViolationError(err) {
			return apperr.Conflict("delete "+string(kind), "%s is still referenced (%s)", kind, pkg.ConstraintName(err))
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("delete "+string(kind), string(kind))
	}
	return nil
}

func (r *Repo) GetExercise(ctx context.Context, id uuid.UUID) (_ *Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.catalog.exercise.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("id", id.String()))

	rows, err := r.db.Query(ctx, selectExercise+` WHERE e.id = $1;`, id)
	if err != nil {
		return nil, err
	}
	exercises, err := r.collectExercises(ctx, rows)
	if err != nil {
		return nil, err
	}
	if len(exercises) != 1 {
		return nil, apperr.NotFound("get exercise", "exercise")
	}
	return &exercises[0], nil
}

func (r *Repo) AddExercise(ctx context.Context, e *Exercise) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.catalog.exercise.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rollbackErr := tx.Rollback(ctx); rollbackErr != nil {
				err = fmt.Errorf("failed to rollback transaction: %w: %w", rollbackErr, err)
			}
		} else {
			err = tx.Commit(ctx)
		}
	}()

	_, err = tx.Exec(ctx, `
		INSERT INTO exercise
			(id, name, equipment_id, category_id, level, force, mechanic, instructions, images)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);`,
		e.ID, e.Name, e.EquipmentID, e.CategoryID, string(e.Level), e.Force, e.Mechanic,
		e.Instructions, e.Images,
	)
	if err != nil {
		if pkg.IsForeignKeyViolationError(err) {
			return apperr.Validation("add exercise", "unknown equipment or category")
		}
		return err
	}

	return writeMuscles(ctx, tx, e.ID, e.PrimaryMuscleIDs, e.SecondaryMuscleIDs)
}

func (r *Repo) UpdateExerciseMuscles(
	ctx context.Context,
	id uuid.UUID,
	update func(primary, secondary []uuid.UUID) ([]uuid.UUID, []uuid.UUID, error),
) (_ *Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.catalog.exercise.muscles")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			if rollbackErr := tx.Rollback(ctx); rollbackErr != nil {
				err = fmt.Errorf("failed to rollback transaction: %w: %w", rollbackErr, err)
			}
		} else {
			err = tx.Commit(ctx)
		}
	}()

	// row lock serializes concurrent toggles on the same exercise
	var locked uuid.UUID
	err = tx.QueryRow(ctx, `SELECT id FROM exercise WHERE id = $1 FOR UPDATE;`, id).Scan(&locked)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("update exercise muscles", "exercise")
	}
	if err != nil {
		return nil, err
	}

	muscles, err := loadMuscles(ctx, tx, []uuid.UUID{id})
	if err != nil {
		return nil, err
	}
	current := muscles[id]

	primary, secondary, err := update(current.primary, current.secondary)
	if err != nil {
		return nil, err
	}
	primary, secondary = normalizeMuscles(primary, secondary)

	if _, err = tx.Exec(ctx, `DELETE FROM exercise_muscle WHERE exercise_id = $1;`, id); err != nil {
		return nil, err
	}
	if err = writeMuscles(ctx, tx, id, primary, secondary); err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, selectExercise+` WHERE e.id = $1;`, id)
	if err != nil {
		return nil, err
	}
	exercises, err := r.collectExercises(ctx, rows, withMuscles(map[uuid.UUID]muscleSets{
		id: {primary: primary, secondary: secondary},
	}))
	if err != nil {
		return nil, err
	}
	if len(exercises) != 1 {
		return nil, apperr.NotFound("update exercise muscles", "exercise")
	}
	return &exercises[0], nil
}

const selectExercise = `
	SELECT
		e.id, e.name, e.equipment_id, e.category_id, e.level, e.force, e.mechanic,
		e.instructions, e.images
	FROM exercise e`

// exerciseFilterSQL is shared by the find and count queries. Parameters:
// $1 raw query, $2 escaped LIKE pattern, $3 equipment, $4 level, $5 category,
// $6 primary muscle, $7 gym restriction enabled, $8 gym equipment.
const exerciseFilterSQL = `
	WHERE ($1::text = '' OR e.name ILIKE '%' || $2::text || '%' ESCAPE '\')
		AND ($3::uuid IS NULL OR e.equipment_id = $3)
		AND ($4::text = '' OR e.level = $4)
		AND ($5::uuid IS NULL OR e.category_id = $5)
		AND ($6::uuid IS NULL OR EXISTS (
			SELECT 1 FROM exercise_muscle em
			WHERE em.exercise_id = e.id AND em.role = 'primary' AND em.muscle_group_id = $6
		))
		AND ($7::boolean IS FALSE OR e.equipment_id IS NULL OR e.equipment_id = ANY($8::uuid[]))`

func filterArgs(f ExerciseFilter) []any {
	gym := f.GymEquipment != nil
	equipment := f.GymEquipment
	if equipment == nil {
		equipment = []uuid.UUID{}
	}
	return []any{
		f.Query, likeEscape(f.Query),
		f.EquipmentID, string(f.Level), f.CategoryID, f.PrimaryMuscleID,
		gym, equipment,
	}
}

func (r *Repo) FindExercises(ctx context.Context, q ExerciseQuery) (_ []Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.catalog.exercise.find")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(
		attribute.String("query", q.Filter.Query),
		attribute.Int("limit", q.Limit),
		attribute.Int("offset", q.Offset),
		attribute.Bool("gym", q.Filter.GymEquipment != nil),
	)

	args := filterArgs(q.Filter)
	var sql string
	if q.Filter.TextSearch() {
		// ranked search path, backed by the trigram index on exercise.name
		sql = selectExercise + exerciseFilterSQL + `
			ORDER BY
				CASE
					WHEN lower(e.name) = lower($1) THEN 0
					WHEN e.name ILIKE $2 || '%' ESCAPE '\' THEN 1
					WHEN e.name ILIKE '% ' || $2 || '%' ESCAPE '\' THEN 2
					ELSE 3
				END,
				similarity(e.name, $1) DESC,
				e.name COLLATE "C", e.id
			OFFSET $9 LIMIT NULLIF($10::int, 0);`
		args = append(args, q.Offset, q.Limit)
	} else {
		var afterName *string
		var afterID *uuid.UUID
		if q.After != nil {
			afterName, afterID = &q.After.Name, &q.After.ID
		}
		sql = selectExercise + exerciseFilterSQL + `
				AND ($9::text IS NULL OR (e.name COLLATE "C", e.id) > ($9::text COLLATE "C", $10::uuid))
			ORDER BY e.name COLLATE "C", e.id
			OFFSET $11 LIMIT NULLIF($12::int, 0);`
		args = append(args, afterName, afterID, q.Offset, q.Limit)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	return r.collectExercises(ctx, rows)
}

func (r *Repo) CountExercises(ctx context.Context, f ExerciseFilter) (_ int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.catalog.exercise.count")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var count int
	err = r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM exercise e`+exerciseFilterSQL+`;`,
		filterArgs(f)...,
	).Scan(&count)
	if err != nil {
		return -1, fmt.Errorf("count exercises: %w", err)
	}
	span.SetAttributes(attribute.Int("count", count))
	return count, nil
}

type muscleSets struct {
	primary   []uuid.UUID
	secondary []uuid.UUID
}

type collectOpt func(map[uuid.UUID]muscleSets)

func withMuscles(known map[uuid.UUID]muscleSets) collectOpt {
	return func(m map[uuid.UUID]muscleSets) {
		for k, v := range known {
			m[k] = v
		}
	}
}

func (r *Repo) collectExercises(ctx context.Context, rows pgx.Rows, opts ...collectOpt) ([]Exercise, error) {
	defer rows.Close()

	exercises := make([]Exercise, 0)
	for rows.Next() {
		var e Exercise
		var level string
		if err := rows.Scan(
			&e.ID, &e.Name, &e.EquipmentID, &e.CategoryID, &level, &e.Force, &e.Mechanic,
			&e.Instructions, &e.Images,
		); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		e.Level = Level(level)
		exercises = append(exercises, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(exercises) == 0 {
		return exercises, nil
	}

	muscles := make(map[uuid.UUID]muscleSets)
	for _, opt := range opts {
		opt(muscles)
	}
	var missing []uuid.UUID
	for _, e := range exercises {
		if _, ok := muscles[e.ID]; !ok {
			missing = append(missing, e.ID)
		}
	}
	if len(missing) > 0 {
		loaded, err := loadMuscles(ctx, r.db, missing)
		if err != nil {
			return nil, err
		}
		for k, v := range loaded {
			muscles[k] = v
		}
	}

	for i := range exercises {
		m := muscles[exercises[i].ID]
		exercises[i].PrimaryMuscleIDs = nonNil(m.primary)
		exercises[i].SecondaryMuscleIDs = nonNil(m.secondary)
		if exercises[i].Instructions == nil {
			exercises[i].Instructions = []string{}
		}
		if exercises[i].Images == nil {
			exercises[i].Images = []string{}
		}
	}
	return exercises, nil
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func loadMuscles(ctx context.Context, q querier, ids []uuid.UUID) (map[uuid.UUID]muscleSets, error) {
	rows, err := q.Query(ctx, `
		SELECT exercise_id, muscle_group_id, role
		FROM exercise_muscle
		WHERE exercise_id = ANY($1::uuid[])
		ORDER BY exercise_id, muscle_group_id;`,
		ids,
	)
	if err != nil {
		return nil, fmt.Errorf("query muscles: %w", err)
	}
	defer rows.Close()

	out := make(map[uuid.UUID]muscleSets)
	for rows.Next() {
		var exerciseID, muscleID uuid.UUID
		var role string
		if err := rows.Scan(&exerciseID, &muscleID, &role); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		m := out[exerciseID]
		if MuscleRole(role) == RolePrimary {
			m.primary = append(m.primary, muscleID)
		} else {
			m.secondary = append(m.secondary, muscleID)
		}
		out[exerciseID] = m
	}
	return out, rows.Err()
}

func writeMuscles(ctx context.Context, tx pgx.Tx, exerciseID uuid.UUID, primary, secondary []uuid.UUID) error {
	primary, secondary = normalizeMuscles(primary, secondary)
	batch := &pgx.Batch{}
	for _, id := range primary {
		batch.Queue(`INSERT INTO exercise_muscle (exercise_id, muscle_group_id, role) VALUES ($1, $2, 'primary');`, exerciseID, id)
	}
	for _, id := range secondary {
		batch.Queue(`INSERT INTO exercise_muscle (exercise_id, muscle_group_id, role) VALUES ($1, $2, 'secondary');`, exerciseID, id)
	}
	if batch.Len() == 0 {
		return nil
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		if pkg.IsForeignKeyViolationError(err) {
			return apperr.Validation("exercise muscles", "unknown muscle group")
		}
		return fmt.Errorf("insert muscles: %w", err)
	}
	return nil
}

func likeEscape(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func nonNil(ids []uuid.UUID) []uuid.UUID {
	if ids == nil {
		return []uuid.UUID{}
	}
	return ids
}

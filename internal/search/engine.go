package search

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/soodoh/openfit/internal/apperr"
	"github.com/soodoh/openfit/internal/catalog"
	"github.com/soodoh/openfit/internal/telemetry/metrics"
	"github.com/soodoh/openfit/internal/telemetry/tracing"
	"github.com/soodoh/openfit/internal/workouts"
	"github.com/soodoh/openfit/pkg"
)

const (
	DefaultLimit = 25
	MaxLimit     = 100
)

//go:generate mockgen -source=$GOFILE -destination=engine_mocks_test.go -package=search_test

// Source runs exercise queries. Both catalog stores implement it.
type Source interface {
	FindExercises(ctx context.Context, q catalog.ExerciseQuery) ([]catalog.Exercise, error)
	CountExercises(ctx context.Context, f catalog.ExerciseFilter) (int, error)
}

// Gyms resolves a user's gyms into equipment sets.
type Gyms interface {
	GetGym(ctx context.Context, userID, id uuid.UUID) (*workouts.Gym, error)
	DefaultGym(ctx context.Context, userID uuid.UUID) (*workouts.Gym, error)
}

// Filter is the user facing search filter. GymID restricts results to
// exercises doable with the gym's equipment. DefaultGym applies the user's
// default gym when GymID is unset; without a default gym it has no effect.
type Filter struct {
	Query           string        `json:"q,omitempty"`
	EquipmentID     *uuid.UUID    `json:"equipmentId,omitempty"`
	Level           catalog.Level `json:"level,omitempty"`
	CategoryID      *uuid.UUID    `json:"categoryId,omitempty"`
	PrimaryMuscleID *uuid.UUID    `json:"primaryMuscleId,omitempty"`
	GymID           *uuid.UUID    `json:"gymId,omitempty"`
	DefaultGym      bool          `json:"defaultGym,omitempty"`
}

func (f Filter) normalized() Filter {
	f.Query = strings.TrimSpace(f.Query)
	if f.GymID != nil {
		f.DefaultGym = false
	}
	return f
}

type CursorRequest struct {
	Filter Filter
	Cursor string
	Limit  int
}

type CursorPage struct {
	Page           []catalog.Exercise `json:"page"`
	IsDone         bool               `json:"isDone"`
	ContinueCursor string             `json:"continueCursor,omitempty"`
}

type OffsetRequest struct {
	Filter   Filter
	Page     int
	PageSize int
}

type OffsetPage struct {
	Items      []catalog.Exercise `json:"items"`
	Total      int                `json:"total"`
	Page       int                `json:"page"`
	PageSize   int                `json:"pageSize"`
	TotalPages int                `json:"totalPages"`
}

type Engine struct {
	source  Source
	gyms    Gyms
	metrics *metrics.Manager
}

func NewEngine(source Source, gyms Gyms, m *metrics.Manager) *Engine {
	return &Engine{
		source:  source,
		gyms:    gyms,
		metrics: m,
	}
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultLimit
	case limit > MaxLimit:
		return MaxLimit
	default:
		return limit
	}
}

// resolve turns the user filter into a catalog filter, replacing the gym with
// its equipment.
func (e *Engine) resolve(ctx context.Context, op string, userID uuid.UUID, f Filter) (catalog.ExerciseFilter, error) {
	out := catalog.ExerciseFilter{
		Query:           f.Query,
		EquipmentID:     f.EquipmentID,
		Level:           f.Level,
		CategoryID:      f.CategoryID,
		PrimaryMuscleID: f.PrimaryMuscleID,
	}
	if f.Level != "" && !f.Level.IsValid() {
		return out, apperr.Validation(op, "invalid level %q", f.Level)
	}

	var gym *workouts.Gym
	var err error
	switch {
	case f.GymID != nil:
		gym, err = e.gyms.GetGym(ctx, userID, *f.GymID)
	case f.DefaultGym:
		gym, err = e.gyms.DefaultGym(ctx, userID)
	}
	if err != nil {
		return out, err
	}
	if gym != nil {
		out.GymEquipment = append([]uuid.UUID{}, gym.EquipmentIDs...)
	}
	return out, nil
}

func (e *Engine) observe(f catalog.ExerciseFilter, paging string, start time.Time) {
	if e.metrics == nil {
		return
	}
	path := "filter"
	if f.TextSearch() {
		path = "text"
	}
	e.metrics.HistogramSearchDuration.WithLabelValues(path, paging).Observe(time.Since(start).Seconds())
}

// Search returns one page of the cursor contract. A page is fetched with one
// extra row to tell whether more results follow.
func (e *Engine) Search(ctx context.Context, userID uuid.UUID, req CursorRequest) (_ *CursorPage, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.search.cursor")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	const op = "search exercises"
	if userID == uuid.Nil {
		return nil, apperr.New(op, apperr.ErrUnauthorized, "no user")
	}

	filter := req.Filter.normalized()
	fingerprint := filter.fingerprint()
	pos := cursor{Filter: fingerprint}
	if req.Cursor != "" {
		if pos, err = decodeCursor(op, req.Cursor); err != nil {
			return nil, err
		}
		if pos.Filter != fingerprint {
			return nil, apperr.Validation(op, "cursor was issued for different filters")
		}
	}

	resolved, err := e.resolve(ctx, op, userID, filter)
	if err != nil {
		return nil, err
	}
	limit := clampLimit(req.Limit)
	span.SetAttributes(
		attribute.Bool("text", resolved.TextSearch()),
		attribute.Int("limit", limit),
		attribute.Bool("continued", req.Cursor != ""),
	)

	q := catalog.ExerciseQuery{Filter: resolved, Limit: limit + 1}
	if resolved.TextSearch() {
		q.Offset = pos.Offset
	} else {
		q.After = pos.After
	}

	start := time.Now()
	found, err := e.source.FindExercises(ctx, q)
	e.observe(resolved, "cursor", start)
	if err != nil {
		return nil, err
	}

	page := &CursorPage{Page: found, IsDone: len(found) <= limit}
	if page.IsDone {
		return page, nil
	}

	page.Page = found[:limit]
	next := cursor{Filter: fingerprint}
	if resolved.TextSearch() {
		next.Offset = pos.Offset + limit
	} else {
		last := page.Page[limit-1]
		next.After = &catalog.Keyset{Name: last.Name, ID: last.ID}
	}
	page.ContinueCursor = next.encode()
	log.Tracef("search: %d results, continue at %+v", limit, next)
	return page, nil
}

// Page returns one page of the offset contract. Pages are 1-based; a page
// past the end is empty but still reports the total.
func (e *Engine) Page(ctx context.Context, userID uuid.UUID, req OffsetRequest) (_ *OffsetPage, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.search.offset")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	const op = "page exercises"
	if userID == uuid.Nil {
		return nil, apperr.New(op, apperr.ErrUnauthorized, "no user")
	}
	if req.Page < 1 {
		return nil, apperr.Validation(op, "page must be 1 or greater")
	}

	resolved, err := e.resolve(ctx, op, userID, req.Filter.normalized())
	if err != nil {
		return nil, err
	}
	size := clampLimit(req.PageSize)
	span.SetAttributes(
		attribute.Bool("text", resolved.TextSearch()),
		attribute.Int("page", req.Page),
		attribute.Int("size", size),
	)

	start := time.Now()
	defer e.observe(resolved, "offset", start)

	total, err := e.source.CountExercises(ctx, resolved)
	if err != nil {
		return nil, err
	}
	items := []catalog.Exercise{}
	offset, ok := pkg.PageOffset(req.Page, size)
	if !ok {
		return nil, apperr.Validation(op, "page %d is out of range", req.Page)
	}
	if offset < total {
		items, err = e.source.FindExercises(ctx, catalog.ExerciseQuery{
			Filter: resolved,
			Offset: offset,
			Limit:  size,
		})
		if err != nil {
			return nil, err
		}
	}

	return &OffsetPage{
		Items:      items,
		Total:      total,
		Page:       req.Page,
		PageSize:   size,
		TotalPages: (total + size - 1) / size,
	}, nil
}

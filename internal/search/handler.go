package search

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/soodoh/openfit/internal/apperr"
	"github.com/soodoh/openfit/internal/auth"
	"github.com/soodoh/openfit/internal/catalog"
	"github.com/soodoh/openfit/internal/telemetry/tracing"
	"github.com/soodoh/openfit/pkg"
)

type Handler struct {
	engine *Engine
}

func NewHandler(engine *Engine) *Handler {
	return &Handler{
		engine: engine,
	}
}

func optionalID(query url.Values, name string) (*uuid.UUID, error) {
	raw := query.Get(name)
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, apperr.Validation("search", "parameter <%s> is not an id", name)
	}
	return &id, nil
}

func optionalInt(query url.Values, name string) (int, error) {
	raw := query.Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperr.Validation("search", "parameter <%s> NaN", name)
	}
	return n, nil
}

// filterFromQuery reads the filter parameters. gym=default selects the
// user's default gym.
func filterFromQuery(query url.Values) (Filter, error) {
	f := Filter{
		Query: query.Get("q"),
		Level: catalog.Level(query.Get("level")),
	}
	var err error
	if f.EquipmentID, err = optionalID(query, "equipment"); err != nil {
		return f, err
	}
	if f.CategoryID, err = optionalID(query, "category"); err != nil {
		return f, err
	}
	if f.PrimaryMuscleID, err = optionalID(query, "muscle"); err != nil {
		return f, err
	}
	if query.Get("gym") == "default" {
		f.DefaultGym = true
	} else if f.GymID, err = optionalID(query, "gym"); err != nil {
		return f, err
	}
	return f, nil
}

func (handler *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.search.cursor")
	defer span.End()

	query := r.URL.Query()
	filter, err := filterFromQuery(query)
	if err != nil {
		apperr.Respond(w, "search exercises", err)
		return
	}
	limit, err := optionalInt(query, "limit")
	if err != nil {
		apperr.Respond(w, "search exercises", err)
		return
	}

	page, err := handler.engine.Search(ctx, auth.UserIDFromContext(ctx), CursorRequest{
		Filter: filter,
		Cursor: query.Get("cursor"),
		Limit:  limit,
	})
	if err != nil {
		apperr.Respond(w, "search exercises", err)
		return
	}
	pkg.WriteJSON(w, page, http.StatusOK)
}

func (handler *Handler) HandlePage(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.search.offset")
	defer span.End()

	query := r.URL.Query()
	filter, err := filterFromQuery(query)
	if err != nil {
		apperr.Respond(w, "page exercises", err)
		return
	}
	page, err := optionalInt(query, "page")
	if err != nil {
		apperr.Respond(w, "page exercises", err)
		return
	}
	if page == 0 {
		page = 1
	}
	size, err := optionalInt(query, "pageSize")
	if err != nil {
		apperr.Respond(w, "page exercises", err)
		return
	}

	result, err := handler.engine.Page(ctx, auth.UserIDFromContext(ctx), OffsetRequest{
		Filter:   filter,
		Page:     page,
		PageSize: size,
	})
	if err != nil {
		apperr.Respond(w, "page exercises", err)
		return
	}
	pkg.WriteJSON(w, result, http.StatusOK)
}

func (handler *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/search/exercises", handler.HandleSearch).Methods("GET", "OPTIONS")
	r.HandleFunc("/search/exercises/pages", handler.HandlePage).Methods("GET", "OPTIONS")
}

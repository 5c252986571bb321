package catalog

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/soodoh/openfit/internal/apperr"
	"github.com/soodoh/openfit/internal/telemetry/tracing"
	"github.com/soodoh/openfit/pkg"
)

type ToggleMuscleRequest struct {
	MuscleID uuid.UUID  `json:"muscleId"`
	Role     MuscleRole `json:"role"`
}

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service: service,
	}
}

func (handler *Handler) HandleLookups(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.catalog.lookups")
	defer span.End()

	kind := Kind(mux.Vars(r)["kind"])
	lookups, err := handler.service.Lookups(ctx, kind)
	if err != nil {
		apperr.Respond(w, "list lookups", err)
		return
	}
	pkg.WriteJSON(w, lookups, http.StatusOK)
}

func (handler *Handler) HandleGetExercise(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.catalog.exercise.get")
	defer span.End()

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		apperr.Respond(w, "get exercise", apperr.Validation("get exercise", "invalid id"))
		return
	}
	exercise, err := handler.service.Exercise(ctx, id)
	if err != nil {
		apperr.Respond(w, "get exercise", err)
		return
	}
	pkg.WriteJSON(w, exercise, http.StatusOK)
}

func (handler *Handler) HandleMutation(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.catalog.mutation")
	defer span.End()

	var m Mutation
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
		apperr.Respond(w, "catalog mutation", apperr.Validation("catalog mutation", "%s", err))
		return
	}
	lookup, err := handler.service.Apply(ctx, m)
	if err != nil {
		apperr.Respond(w, "catalog mutation", err)
		return
	}
	log.Infof("catalog mutation applied: %s %s", m.Action, m.Kind)

	status := http.StatusOK
	if m.Action == ActionCreate {
		status = http.StatusCreated
	}
	pkg.WriteJSON(w, lookup, status)
}

func (handler *Handler) HandleCreateExercise(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.catalog.exercise.create")
	defer span.End()

	var e Exercise
	if err := json.NewDecoder(r.Body).Decode(&e); err != nil {
		apperr.Respond(w, "create exercise", apperr.Validation("create exercise", "%s", err))
		return
	}
	if err := handler.service.CreateExercise(ctx, &e); err != nil {
		apperr.Respond(w, "create exercise", err)
		return
	}
	pkg.WriteJSON(w, e, http.StatusCreated)
}

func (handler *Handler) HandleToggleMuscle(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.catalog.exercise.togglemuscle")
	defer span.End()

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		apperr.Respond(w, "toggle muscle", apperr.Validation("toggle muscle", "invalid id"))
		return
	}
	var req ToggleMuscleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperr.Respond(w, "toggle muscle", apperr.Validation("toggle muscle", "%s", err))
		return
	}
	exercise, err := handler.service.ToggleMuscle(ctx, id, req.MuscleID, req.Role)
	if err != nil {
		apperr.Respond(w, "toggle muscle", err)
		return
	}
	pkg.WriteJSON(w, exercise, http.StatusOK)
}

// RegisterRoutes mounts the read endpoints on r and the admin endpoints on
// admin.
func (handler *Handler) RegisterRoutes(r, admin *mux.Router) {
	r.HandleFunc("/catalog/{kind}", handler.HandleLookups).Methods("GET", "OPTIONS")
	r.HandleFunc("/exercises/{id}", handler.HandleGetExercise).Methods("GET", "OPTIONS")

	admin.HandleFunc("/catalog", handler.HandleMutation).Methods("POST", "OPTIONS")
	admin.HandleFunc("/exercises", handler.HandleCreateExercise).Methods("POST", "OPTIONS")
	admin.HandleFunc("/exercises/{id}/muscles", handler.HandleToggleMuscle).Methods("PUT", "OPTIONS")
}

package workouts

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/soodoh/openfit/internal/apperr"
	"github.com/soodoh/openfit/internal/auth"
	"github.com/soodoh/openfit/internal/ordering"
	"github.com/soodoh/openfit/internal/telemetry/tracing"
	"github.com/soodoh/openfit/pkg"
)

type DeletedResponse struct {
	DeletedID uuid.UUID `json:"deletedId"`
}

type ReorderRequest struct {
	IDs []uuid.UUID `json:"ids"`
}

type ReplaceExerciseRequest struct {
	ExerciseID uuid.UUID `json:"exerciseId"`
}

type CompletedRequest struct {
	Completed bool `json:"completed"`
}

type DefaultGymRequest struct {
	GymID *uuid.UUID `json:"gymId"`
}

type RoutineDayInput struct {
	Description string `json:"description"`
	Weekdays    []int  `json:"weekdays"`
}

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service: service,
	}
}

func pathID(r *http.Request, name string) (uuid.UUID, error) {
	raw := mux.Vars(r)[name]
	if raw == "" {
		return uuid.Nil, apperr.Validation("path", "%s empty", name)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperr.Validation("path", "invalid %s [%s]", name, raw)
	}
	return id, nil
}

func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperr.Validation("decode body", "%s", err)
	}
	return nil
}

func (handler *Handler) HandleListRoutines(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.routines.list")
	defer span.End()

	routines, err := handler.service.ListRoutines(ctx, auth.UserIDFromContext(ctx))
	if err != nil {
		apperr.Respond(w, "list routines", err)
		return
	}
	pkg.WriteJSON(w, routines, http.StatusOK)
}

func (handler *Handler) HandleCreateRoutine(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.routines.create")
	defer span.End()

	var in RoutineInput
	if err := decodeBody(r, &in); err != nil {
		apperr.Respond(w, "create routine", err)
		return
	}
	routine, err := handler.service.CreateRoutine(ctx, auth.UserIDFromContext(ctx), in)
	if err != nil {
		apperr.Respond(w, "create routine", err)
		return
	}
	log.Debugf("routine %s created", routine.ID)
	pkg.WriteJSON(w, routine, http.StatusCreated)
}

func (handler *Handler) HandleGetRoutine(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.routines.get")
	defer span.End()

	id, err := pathID(r, "id")
	if err != nil {
		apperr.Respond(w, "get routine", err)
		return
	}
	routine, err := handler.service.GetRoutine(ctx, auth.UserIDFromContext(ctx), id)
	if err != nil {
		apperr.Respond(w, "get routine", err)
		return
	}
	pkg.WriteJSON(w, routine, http.StatusOK)
}

func (handler *Handler) HandleUpdateRoutine(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.routines.update")
	defer span.End()

	id, err := pathID(r, "id")
	if err != nil {
		apperr.Respond(w, "update routine", err)
		return
	}
	var patch RoutinePatch
	if err := decodeBody(r, &patch); err != nil {
		apperr.Respond(w, "update routine", err)
		return
	}
	routine, err := handler.service.UpdateRoutine(ctx, auth.UserIDFromContext(ctx), id, patch)
	if err != nil {
		apperr.Respond(w, "update routine", err)
		return
	}
	pkg.WriteJSON(w, routine, http.StatusOK)
}

func (handler *Handler) HandleDeleteRoutine(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.routines.delete")
	defer span.End()

	id, err := pathID(r, "id")
	if err != nil {
		apperr.Respond(w, "delete routine", err)
		return
	}
	if err := handler.service.DeleteRoutine(ctx, auth.UserIDFromContext(ctx), id); err != nil {
		apperr.Respond(w, "delete routine", err)
		return
	}
	pkg.WriteJSON(w, DeletedResponse{DeletedID: id}, http.StatusOK)
}

func (handler *Handler) HandleListRoutineDays(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.days.list")
	defer span.End()

	routineID, err := pathID(r, "id")
	if err != nil {
		apperr.Respond(w, "list routine days", err)
		return
	}
	days, err := handler.service.ListRoutineDays(ctx, auth.UserIDFromContext(ctx), routineID)
	if err != nil {
		apperr.Respond(w, "list routine days", err)
		return
	}
	pkg.WriteJSON(w, days, http.StatusOK)
}

func (handler *Handler) HandleCreateRoutineDay(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.days.create")
	defer span.End()

	routineID, err := pathID(r, "id")
	if err != nil {
		apperr.Respond(w, "create routine day", err)
		return
	}
	var in RoutineDayInput
	if err := decodeBody(r, &in); err != nil {
		apperr.Respond(w, "create routine day", err)
		return
	}
	day, err := handler.service.CreateRoutineDay(ctx, auth.UserIDFromContext(ctx), routineID, in.Description, in.Weekdays)
	if err != nil {
		apperr.Respond(w, "create routine day", err)
		return
	}
	pkg.WriteJSON(w, day, http.StatusCreated)
}

func (handler *Handler) HandleGetRoutineDay(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.days.get")
	defer span.End()

	id, err := pathID(r, "id")
	if err != nil {
		apperr.Respond(w, "get routine day", err)
		return
	}
	day, err := handler.service.GetRoutineDay(ctx, auth.UserIDFromContext(ctx), id)
	if err != nil {
		apperr.Respond(w, "get routine day", err)
		return
	}
	pkg.WriteJSON(w, day, http.StatusOK)
}

func (handler *Handler) HandleUpdateRoutineDay(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.days.update")
	defer span.End()

	id, err := pathID(r, "id")
	if err != nil {
		apperr.Respond(w, "update routine day", err)
		return
	}
	var patch RoutineDayPatch
	if err := decodeBody(r, &patch); err != nil {
		apperr.Respond(w, "update routine day", err)
		return
	}
	day, err := handler.service.UpdateRoutineDay(ctx, auth.UserIDFromContext(ctx), id, patch)
	if err != nil {
		apperr.Respond(w, "update routine day", err)
		return
	}
	pkg.WriteJSON(w, day, http.StatusOK)
}

func (handler *Handler) HandleDeleteRoutineDay(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.days.delete")
	defer span.End()

	id, err := pathID(r, "id")
	if err != nil {
		apperr.Respond(w, "delete routine day", err)
		return
	}
	if err := handler.service.DeleteRoutineDay(ctx, auth.UserIDFromContext(ctx), id); err != nil {
		apperr.Respond(w, "delete routine day", err)
		return
	}
	pkg.WriteJSON(w, DeletedResponse{DeletedID: id}, http.StatusOK)
}

func (handler *Handler) HandleListSessions(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.sessions.list")
	defer span.End()

	page, pageSize := 1, DefaultSessionsPageSize
	var err error
	if raw := r.URL.Query().Get("page"); raw != "" {
		if page, err = strconv.Atoi(raw); err != nil {
			apperr.Respond(w, "list sessions", apperr.Validation("list sessions", "parameter <page> NaN"))
			return
		}
	}
	if raw := r.URL.Query().Get("size"); raw != "" {
		if pageSize, err = strconv.Atoi(raw); err != nil {
			apperr.Respond(w, "list sessions", apperr.Validation("list sessions", "parameter <size> NaN"))
			return
		}
	}

	sessions, err := handler.service.ListSessions(ctx, auth.UserIDFromContext(ctx), page, pageSize)
	if err != nil {
		apperr.Respond(w, "list sessions", err)
		return
	}
	pkg.WriteJSON(w, sessions, http.StatusOK)
}

func (handler *Handler) HandleCreateSession(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.sessions.create")
	defer span.End()

	var in SessionInput
	if err := decodeBody(r, &in); err != nil {
		apperr.Respond(w, "create session", err)
		return
	}
	session, err := handler.service.CreateSession(ctx, auth.UserIDFromContext(ctx), in)
	if err != nil {
		apperr.Respond(w, "create session", err)
		return
	}
	log.Debugf("session %s started with %d set groups", session.ID, len(session.SetGroups))
	pkg.WriteJSON(w, session, http.StatusCreated)
}

// HandleCurrentSession responds with the active session, or null when the
// user is idle.
func (handler *Handler) HandleCurrentSession(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.sessions.current")
	defer span.End()

	session, err := handler.service.CurrentSession(ctx, auth.UserIDFromContext(ctx))
	if err != nil {
		apperr.Respond(w, "current session", err)
		return
	}
	pkg.WriteJSON(w, session, http.StatusOK)
}

func (handler *Handler) HandleGetSession(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.sessions.get")
	defer span.End()

	id, err := pathID(r, "id")
	if err != nil {
		apperr.Respond(w, "get session", err)
		return
	}
	session, err := handler.service.GetSession(ctx, auth.UserIDFromContext(ctx), id)
	if err != nil {
		apperr.Respond(w, "get session", err)
		return
	}
	pkg.WriteJSON(w, session, http.StatusOK)
}

func (handler *Handler) HandleUpdateSession(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.sessions.update")
	defer span.End()

	id, err := pathID(r, "id")
	if err != nil {
		apperr.Respond(w, "update session", err)
		return
	}
	var patch SessionPatch
	if err := decodeBody(r, &patch); err != nil {
		apperr.Respond(w, "update session", err)
		return
	}
	session, err := handler.service.UpdateSession(ctx, auth.UserIDFromContext(ctx), id, patch)
	if err != nil {
		apperr.Respond(w, "update session", err)
		return
	}
	pkg.WriteJSON(w, session, http.StatusOK)
}

func (handler *Handler) HandleFinishSession(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.sessions.finish")
	defer span.End()

	id, err := pathID(r, "id")
	if err != nil {
		apperr.Respond(w, "finish session", err)
		return
	}
	session, err := handler.service.FinishSession(ctx, auth.UserIDFromContext(ctx), id)
	if err != nil {
		apperr.Respond(w, "finish session", err)
		return
	}
	log.Debugf("session %s finished after %s", session.ID, session.EndTime.Sub(session.StartTime).Round(time.Second))
	pkg.WriteJSON(w, session, http.StatusOK)
}

func (handler *Handler) HandleDeleteSession(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.sessions.delete")
	defer span.End()

	id, err := pathID(r, "id")
	if err != nil {
		apperr.Respond(w, "delete session", err)
		return
	}
	if err := handler.service.DeleteSession(ctx, auth.UserIDFromContext(ctx), id); err != nil {
		apperr.Respond(w, "delete session", err)
		return
	}
	pkg.WriteJSON(w, DeletedResponse{DeletedID: id}, http.StatusOK)
}

// HandleCreateSetGroup returns the handler appending a set group to a parent
// of the given kind, identified by the {id} path variable.
func (handler *Handler) HandleCreateSetGroup(kind ordering.ParentKind) http.HandlerFunc {
	op := fmt.Sprintf("create %s set group", kind)
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.setgroups.create")
		defer span.End()

		parentID, err := pathID(r, "id")
		if err != nil {
			apperr.Respond(w, op, err)
			return
		}
		var in SetGroupInput
		if err := decodeBody(r, &in); err != nil {
			apperr.Respond(w, op, err)
			return
		}
		parent := Parent{Kind: kind, ID: parentID}
		group, err := handler.service.CreateSetGroup(ctx, auth.UserIDFromContext(ctx), parent, in)
		if err != nil {
			apperr.Respond(w, op, err)
			return
		}
		pkg.WriteJSON(w, group, http.StatusCreated)
	}
}

// HandleReorderSetGroups returns the handler reordering the set groups of a
// parent of the given kind.
func (handler *Handler) HandleReorderSetGroups(kind ordering.ParentKind) http.HandlerFunc {
	op := fmt.Sprintf("reorder %s set groups", kind)
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.setgroups.reorder")
		defer span.End()

		parentID, err := pathID(r, "id")
		if err != nil {
			apperr.Respond(w, op, err)
			return
		}
		var req ReorderRequest
		if err := decodeBody(r, &req); err != nil {
			apperr.Respond(w, op, err)
			return
		}
		parent := Parent{Kind: kind, ID: parentID}
		groups, err := handler.service.ReorderSetGroups(ctx, auth.UserIDFromContext(ctx), parent, req.IDs)
		if err != nil {
			apperr.Respond(w, op, err)
			return
		}
		pkg.WriteJSON(w, groups, http.StatusOK)
	}
}

func (handler *Handler) HandleUpdateSetGroup(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.setgroups.update")
	defer span.End()

	id, err := pathID(r, "id")
	if err != nil {
		apperr.Respond(w, "update set group", err)
		return
	}
	var patch SetGroupPatch
	if err := decodeBody(r, &patch); err != nil {
		apperr.Respond(w, "update set group", err)
		return
	}
	group, err := handler.service.UpdateSetGroup(ctx, auth.UserIDFromContext(ctx), id, patch)
	if err != nil {
		apperr.Respond(w, "update set group", err)
		return
	}
	pkg.WriteJSON(w, group, http.StatusOK)
}

func (handler *Handler) HandleDeleteSetGroup(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.setgroups.delete")
	defer span.End()

	id, err := pathID(r, "id")
	if err != nil {
		apperr.Respond(w, "delete set group", err)
		return
	}
	if err := handler.service.DeleteSetGroup(ctx, auth.UserIDFromContext(ctx), id); err != nil {
		apperr.Respond(w, "delete set group", err)
		return
	}
	pkg.WriteJSON(w, DeletedResponse{DeletedID: id}, http.StatusOK)
}

func (handler *Handler) HandleReplaceExercise(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.setgroups.exercise")
	defer span.End()

	id, err := pathID(r, "id")
	if err != nil {
		apperr.Respond(w, "replace exercise", err)
		return
	}
	var req ReplaceExerciseRequest
	if err := decodeBody(r, &req); err != nil {
		apperr.Respond(w, "replace exercise", err)
		return
	}
	group, err := handler.service.ReplaceExerciseInSetGroup(ctx, auth.UserIDFromContext(ctx), id, req.ExerciseID)
	if err != nil {
		apperr.Respond(w, "replace exercise", err)
		return
	}
	pkg.WriteJSON(w, group, http.StatusOK)
}

func (handler *Handler) HandleCreateSet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.sets.create")
	defer span.End()

	groupID, err := pathID(r, "id")
	if err != nil {
		apperr.Respond(w, "create set", err)
		return
	}
	var in SetInput
	if err := decodeBody(r, &in); err != nil {
		apperr.Respond(w, "create set", err)
		return
	}
	set, err := handler.service.CreateSet(ctx, auth.UserIDFromContext(ctx), groupID, in)
	if err != nil {
		apperr.Respond(w, "create set", err)
		return
	}
	pkg.WriteJSON(w, set, http.StatusCreated)
}

func (handler *Handler) HandleReorderSets(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.sets.reorder")
	defer span.End()

	groupID, err := pathID(r, "id")
	if err != nil {
		apperr.Respond(w, "reorder sets", err)
		return
	}
	var req ReorderRequest
	if err := decodeBody(r, &req); err != nil {
		apperr.Respond(w, "reorder sets", err)
		return
	}
	sets, err := handler.service.ReorderSets(ctx, auth.UserIDFromContext(ctx), groupID, req.IDs)
	if err != nil {
		apperr.Respond(w, "reorder sets", err)
		return
	}
	pkg.WriteJSON(w, sets, http.StatusOK)
}

func (handler *Handler) HandleUpdateSet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.sets.update")
	defer span.End()

	id, err := pathID(r, "id")
	if err != nil {
		apperr.Respond(w, "update set", err)
		return
	}
	var patch SetPatch
	if err := decodeBody(r, &patch); err != nil {
		apperr.Respond(w, "update set", err)
		return
	}
	set, err := handler.service.UpdateSet(ctx, auth.UserIDFromContext(ctx), id, patch)
	if err != nil {
		apperr.Respond(w, "update set", err)
		return
	}
	pkg.WriteJSON(w, set, http.StatusOK)
}

func (handler *Handler) HandleDeleteSet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.sets.delete")
	defer span.End()

	id, err := pathID(r, "id")
	if err != nil {
		apperr.Respond(w, "delete set", err)
		return
	}
	if err := handler.service.DeleteSet(ctx, auth.UserIDFromContext(ctx), id); err != nil {
		apperr.Respond(w, "delete set", err)
		return
	}
	pkg.WriteJSON(w, DeletedResponse{DeletedID: id}, http.StatusOK)
}

func (handler *Handler) HandleSetCompleted(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.sets.completed")
	defer span.End()

	id, err := pathID(r, "id")
	if err != nil {
		apperr.Respond(w, "complete set", err)
		return
	}
	var req CompletedRequest
	if err := decodeBody(r, &req); err != nil {
		apperr.Respond(w, "complete set", err)
		return
	}
	result, err := handler.service.SetCompleted(ctx, auth.UserIDFromContext(ctx), id, req.Completed)
	if err != nil {
		apperr.Respond(w, "complete set", err)
		return
	}
	pkg.WriteJSON(w, result, http.StatusOK)
}

func (handler *Handler) HandleCountdownFinished(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.sets.countdown")
	defer span.End()

	id, err := pathID(r, "id")
	if err != nil {
		apperr.Respond(w, "finish countdown", err)
		return
	}
	result, err := handler.service.CountdownFinished(ctx, auth.UserIDFromContext(ctx), id)
	if err != nil {
		apperr.Respond(w, "finish countdown", err)
		return
	}
	pkg.WriteJSON(w, result, http.StatusOK)
}

func (handler *Handler) HandleListGyms(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.gyms.list")
	defer span.End()

	gyms, err := handler.service.ListGyms(ctx, auth.UserIDFromContext(ctx))
	if err != nil {
		apperr.Respond(w, "list gyms", err)
		return
	}
	pkg.WriteJSON(w, gyms, http.StatusOK)
}

func (handler *Handler) HandleCreateGym(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.gyms.create")
	defer span.End()

	var in GymInput
	if err := decodeBody(r, &in); err != nil {
		apperr.Respond(w, "create gym", err)
		return
	}
	gym, err := handler.service.CreateGym(ctx, auth.UserIDFromContext(ctx), in)
	if err != nil {
		apperr.Respond(w, "create gym", err)
		return
	}
	pkg.WriteJSON(w, gym, http.StatusCreated)
}

func (handler *Handler) HandleGetGym(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.gyms.get")
	defer span.End()

	id, err := pathID(r, "id")
	if err != nil {
		apperr.Respond(w, "get gym", err)
		return
	}
	gym, err := handler.service.GetGym(ctx, auth.UserIDFromContext(ctx), id)
	if err != nil {
		apperr.Respond(w, "get gym", err)
		return
	}
	pkg.WriteJSON(w, gym, http.StatusOK)
}

func (handler *Handler) HandleUpdateGym(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.gyms.update")
	defer span.End()

	id, err := pathID(r, "id")
	if err != nil {
		apperr.Respond(w, "update gym", err)
		return
	}
	var patch GymPatch
	if err := decodeBody(r, &patch); err != nil {
		apperr.Respond(w, "update gym", err)
		return
	}
	gym, err := handler.service.UpdateGym(ctx, auth.UserIDFromContext(ctx), id, patch)
	if err != nil {
		apperr.Respond(w, "update gym", err)
		return
	}
	pkg.WriteJSON(w, gym, http.StatusOK)
}

func (handler *Handler) HandleDeleteGym(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.gyms.delete")
	defer span.End()

	id, err := pathID(r, "id")
	if err != nil {
		apperr.Respond(w, "delete gym", err)
		return
	}
	if err := handler.service.DeleteGym(ctx, auth.UserIDFromContext(ctx), id); err != nil {
		apperr.Respond(w, "delete gym", err)
		return
	}
	pkg.WriteJSON(w, DeletedResponse{DeletedID: id}, http.StatusOK)
}

func (handler *Handler) HandleSetDefaultGym(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.gyms.default")
	defer span.End()

	var req DefaultGymRequest
	if err := decodeBody(r, &req); err != nil {
		apperr.Respond(w, "set default gym", err)
		return
	}
	if err := handler.service.SetDefaultGym(ctx, auth.UserIDFromContext(ctx), req.GymID); err != nil {
		apperr.Respond(w, "set default gym", err)
		return
	}
	pkg.WriteJSON(w, req, http.StatusOK)
}

// RegisterRoutes mounts the workout endpoints on r.
func (handler *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/routines", handler.HandleListRoutines).Methods("GET", "OPTIONS")
	r.HandleFunc("/routines", handler.HandleCreateRoutine).Methods("POST", "OPTIONS")
	r.HandleFunc("/routines/{id}", handler.HandleGetRoutine).Methods("GET", "OPTIONS")
	r.HandleFunc("/routines/{id}", handler.HandleUpdateRoutine).Methods("PATCH", "OPTIONS")
	r.HandleFunc("/routines/{id}", handler.HandleDeleteRoutine).Methods("DELETE", "OPTIONS")
	r.HandleFunc("/routines/{id}/days", handler.HandleListRoutineDays).Methods("GET", "OPTIONS")
	r.HandleFunc("/routines/{id}/days", handler.HandleCreateRoutineDay).Methods("POST", "OPTIONS")

	r.HandleFunc("/days/{id}", handler.HandleGetRoutineDay).Methods("GET", "OPTIONS")
	r.HandleFunc("/days/{id}", handler.HandleUpdateRoutineDay).Methods("PATCH", "OPTIONS")
	r.HandleFunc("/days/{id}", handler.HandleDeleteRoutineDay).Methods("DELETE", "OPTIONS")
	r.HandleFunc("/days/{id}/groups", handler.HandleCreateSetGroup(ordering.ParentRoutineDay)).Methods("POST", "OPTIONS")
	r.HandleFunc("/days/{id}/groups/order", handler.HandleReorderSetGroups(ordering.ParentRoutineDay)).Methods("PUT", "OPTIONS")

	r.HandleFunc("/sessions", handler.HandleListSessions).Methods("GET", "OPTIONS")
	r.HandleFunc("/sessions", handler.HandleCreateSession).Methods("POST", "OPTIONS")
	r.HandleFunc("/sessions/current", handler.HandleCurrentSession).Methods("GET", "OPTIONS")
	r.HandleFunc("/sessions/{id}", handler.HandleGetSession).Methods("GET", "OPTIONS")
	r.HandleFunc("/sessions/{id}", handler.HandleUpdateSession).Methods("PATCH", "OPTIONS")
	r.HandleFunc("/sessions/{id}", handler.HandleDeleteSession).Methods("DELETE", "OPTIONS")
	r.HandleFunc("/sessions/{id}/finish", handler.HandleFinishSession).Methods("POST", "OPTIONS")
	r.HandleFunc("/sessions/{id}/groups", handler.HandleCreateSetGroup(ordering.ParentSession)).Methods("POST", "OPTIONS")
	r.HandleFunc("/sessions/{id}/groups/order", handler.HandleReorderSetGroups(ordering.ParentSession)).Methods("PUT", "OPTIONS")

	r.HandleFunc("/groups/{id}", handler.HandleUpdateSetGroup).Methods("PATCH", "OPTIONS")
	r.HandleFunc("/groups/{id}", handler.HandleDeleteSetGroup).Methods("DELETE", "OPTIONS")
	r.HandleFunc("/groups/{id}/exercise", handler.HandleReplaceExercise).Methods("PUT", "OPTIONS")
	r.HandleFunc("/groups/{id}/sets", handler.HandleCreateSet).Methods("POST", "OPTIONS")
	r.HandleFunc("/groups/{id}/sets/order", handler.HandleReorderSets).Methods("PUT", "OPTIONS")

	r.HandleFunc("/sets/{id}", handler.HandleUpdateSet).Methods("PATCH", "OPTIONS")
	r.HandleFunc("/sets/{id}", handler.HandleDeleteSet).Methods("DELETE", "OPTIONS")
	r.HandleFunc("/sets/{id}/completed", handler.HandleSetCompleted).Methods("PUT", "OPTIONS")
	r.HandleFunc("/sets/{id}/countdown", handler.HandleCountdownFinished).Methods("POST", "OPTIONS")

	r.HandleFunc("/gyms", handler.HandleListGyms).Methods("GET", "OPTIONS")
	r.HandleFunc("/gyms", handler.HandleCreateGym).Methods("POST", "OPTIONS")
	r.HandleFunc("/gyms/default", handler.HandleSetDefaultGym).Methods("PUT", "OPTIONS")
	r.HandleFunc("/gyms/{id}", handler.HandleGetGym).Methods("GET", "OPTIONS")
	r.HandleFunc("/gyms/{id}", handler.HandleUpdateGym).Methods("PATCH", "OPTIONS")
	r.HandleFunc("/gyms/{id}", handler.HandleDeleteGym).Methods("DELETE", "OPTIONS")
}

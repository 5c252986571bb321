package auth

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/soodoh/openfit/internal/apperr"
	"github.com/soodoh/openfit/internal/telemetry/tracing"
	"github.com/soodoh/openfit/pkg"
)

// TokenHeader carries the session token of a request.
const TokenHeader = "X-OPENFIT-TOKEN"

type LoginResponse struct {
	Token string `json:"token"`
}

type LogoutResponse struct {
	LoggedOut bool `json:"loggedOut"`
}

type Handler struct {
	service *Service
	users   Users
	now     func() time.Time
}

func NewHandler(service *Service, users Users) *Handler {
	return &Handler{
		service: service,
		users:   users,
		now:     time.Now,
	}
}

func (handler *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.auth.login")
	defer span.End()

	var creds Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		apperr.Respond(w, "login", apperr.Validation("login", "%s", err))
		return
	}
	token, err := handler.service.Login(ctx, creds, handler.now())
	if err != nil {
		apperr.Respond(w, "login", err)
		return
	}
	log.Debugf("user %s logged in", creds.Username)
	pkg.WriteJSON(w, LoginResponse{Token: token}, http.StatusOK)
}

func (handler *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.auth.logout")
	defer span.End()

	token := r.Header.Get(TokenHeader)
	if token == "" {
		apperr.Respond(w, "logout", apperr.New("logout", apperr.ErrUnauthorized, "missing token"))
		return
	}
	loggedOut, err := handler.service.Logout(ctx, token)
	if err != nil {
		apperr.Respond(w, "logout", err)
		return
	}
	pkg.WriteJSON(w, LogoutResponse{LoggedOut: loggedOut}, http.StatusOK)
}

func (handler *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.auth.me")
	defer span.End()

	userID := UserIDFromContext(ctx)
	if userID == uuid.Nil {
		apperr.Respond(w, "me", apperr.New("me", apperr.ErrUnauthorized, "no user"))
		return
	}
	u, err := handler.users.Get(ctx, userID)
	if err != nil {
		apperr.Respond(w, "me", err)
		return
	}
	pkg.WriteJSON(w, u, http.StatusOK)
}

// RegisterRoutes mounts login and logout on public and the identity endpoint
// on r.
func (handler *Handler) RegisterRoutes(public, r *mux.Router) {
	public.HandleFunc("/auth/login", handler.HandleLogin).Methods("POST", "OPTIONS")
	public.HandleFunc("/auth/logout", handler.HandleLogout).Methods("POST", "OPTIONS")
	r.HandleFunc("/auth/me", handler.HandleMe).Methods("GET", "OPTIONS")
}

package dashboard

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/soodoh/openfit/internal/apperr"
	"github.com/soodoh/openfit/internal/auth"
	"github.com/soodoh/openfit/internal/telemetry/tracing"
	"github.com/soodoh/openfit/pkg"
)

type Handler struct {
	service *Service
	now     func() time.Time
}

func NewHandler(service *Service, now func() time.Time) *Handler {
	if now == nil {
		now = time.Now
	}
	return &Handler{
		service: service,
		now:     now,
	}
}

// HandleSummary serves the dashboard. The tz parameter names an IANA zone;
// UTC is used without it.
func (handler *Handler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.dashboard.summary")
	defer span.End()

	loc := time.UTC
	if tz := r.URL.Query().Get("tz"); tz != "" {
		var err error
		if loc, err = time.LoadLocation(tz); err != nil {
			apperr.Respond(w, "dashboard", apperr.Validation("dashboard", "unknown time zone %q", tz))
			return
		}
	}

	summary, err := handler.service.Summary(ctx, auth.UserIDFromContext(ctx), handler.now(), loc)
	if err != nil {
		apperr.Respond(w, "dashboard", err)
		return
	}
	pkg.WriteJSON(w, summary, http.StatusOK)
}

func (handler *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/dashboard", handler.HandleSummary).Methods("GET", "OPTIONS")
}

package apperr

import (
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/soodoh/openfit/pkg"
)

type errorResponse struct {
	Error string `json:"error"`
}

// Respond writes err as a JSON error body with the status HTTPStatus maps it
// to. Server errors are logged and their details are not exposed.
func Respond(w http.ResponseWriter, op string, err error) {
	status := HTTPStatus(err)
	msg := err.Error()
	if status >= http.StatusInternalServerError {
		log.Errorf("%s: %s", op, err)
		msg = "internal error"
	} else {
		log.Tracef("%s: %s", op, err)
	}
	pkg.WriteJSON(w, errorResponse{Error: msg}, status)
}

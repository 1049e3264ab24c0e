package api

import (
	"encoding/json"
	"net/http"

	"github.com/matzehuels/rigwire/pkg/errors"
)

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError answers with the code of err. Errors without a code are
// internal and their text is not exposed.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := errors.GetCode(err)
	msg := errors.UserMessage(err)
	if code == "" || code == errors.ErrCodeInternal {
		s.logger.Error("request failed", "path", r.URL.Path, "err", err)
		code, msg = errors.ErrCodeInternal, "internal error"
	}
	writeJSON(w, code.HTTPStatus(), errorBody{Error: errorDetail{Code: code, Message: msg}})
}

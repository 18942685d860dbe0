// Package httpio holds the JSON reply helpers shared by the lab handlers.
package httpio

import (
	"encoding/json"
	"net/http"

	"github.com/ansel1/merry"
	"github.com/powerman/structlog"
)

var log = structlog.New(structlog.KeyUnit, "http")

func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.PrintErr(merry.Append(err, "encode response"))
	}
}

// WriteError maps a merry error to its HTTP code. Client errors carry the
// full message so the operator sees which row or parameter is wrong; server
// errors are logged and hidden.
func WriteError(w http.ResponseWriter, err error) {
	code := merry.HTTPCode(err)
	if code >= http.StatusInternalServerError {
		log.PrintErr(err, "stack", merry.Stacktrace(err))
		http.Error(w, http.StatusText(code), code)
		return
	}
	msg := merry.UserMessage(err)
	if msg == "" {
		msg = err.Error()
	}
	http.Error(w, msg, code)
}

// DecodeJSON decodes the request body into v, reporting a 400 on failure.
func DecodeJSON(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return merry.Prepend(err, "Invalid request payload").WithHTTPCode(http.StatusBadRequest)
	}
	return nil
}

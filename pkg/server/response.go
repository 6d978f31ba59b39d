package server

import (
	"encoding/json"
	"net/http"

	"github.com/matzehuels/repertoire/pkg/errors"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error string      `json:"error"`
	Code  errors.Code `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusOf(err), errorBody{
		Error: err.Error(),
		Code:  errors.GetCode(err),
	})
}

func statusOf(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidColor, errors.ErrCodeParse:
		return http.StatusBadRequest
	case errors.ErrCodeIllegalMove, errors.ErrCodeUnknownMove:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeInvalidState:
		return http.StatusConflict
	case errors.ErrCodeNotFound:
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

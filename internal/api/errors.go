package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/zhuiying-client/internal/types"
)

// Envelope codes used by the backend
const (
	CodeOK           = 200
	CodeInvalidInput = 400
	CodeUnauthorized = 401
	CodeNotFound     = 404
	CodeRateLimited  = 429
	CodeInternal     = 500
)

// respondJSON writes v with the given status.
func respondJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if v != nil {
		json.NewEncoder(w).Encode(v)
	}
}

// respondOK wraps data in a success envelope.
func respondOK(w http.ResponseWriter, data interface{}) {
	raw, err := json.Marshal(data)
	if err != nil {
		respondFailure(w, http.StatusInternalServerError, CodeInternal, "服务器内部错误")
		return
	}
	ok := true
	respondJSON(w, http.StatusOK, types.Envelope{Code: CodeOK, Message: "ok", Data: raw, Success: &ok})
}

// respondFailure writes a failure envelope.
func respondFailure(w http.ResponseWriter, statusCode, code int, message string) {
	ok := false
	respondJSON(w, statusCode, types.Envelope{Code: code, Message: message, Success: &ok})
}

// respondError maps a backend error to a failure envelope.
func respondError(w http.ResponseWriter, err error) {
	var be *BackendError
	if errors.As(err, &be) {
		respondFailure(w, be.Status, be.Code, be.Message)
		return
	}
	respondFailure(w, http.StatusInternalServerError, CodeInternal, "服务器内部错误")
}

// parseJSONBody parses the request body. An empty body leaves v untouched.
func parseJSONBody(r *http.Request, v interface{}) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(v)
}

func respondInvalidBody(w http.ResponseWriter) {
	respondFailure(w, http.StatusBadRequest, CodeInvalidInput, "请求参数错误")
}

package middleware

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/MrEthical07/bloombox"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	ErrorCode string            `json:"error_code"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
}

// WriteJSON writes v as the JSON response body with status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError maps err through bloombox.ErrorInfo and writes the error body.
func WriteError(w http.ResponseWriter, err error) {
	info := bloombox.ErrorInfo(err)
	body := ErrorBody{ErrorCode: info.Code, Message: info.Message}

	var inputErr *bloombox.InputError
	if errors.As(err, &inputErr) && len(inputErr.Fields) > 0 {
		body.Fields = make(map[string]string, len(inputErr.Fields))
		for field, fieldErr := range inputErr.Fields {
			body.Fields[field] = fieldErr.Error()
		}
	}

	if info.Status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", "Bearer")
	}
	WriteJSON(w, info.Status, body)
}

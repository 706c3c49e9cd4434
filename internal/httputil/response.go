// Package httputil provides the uniform JSON response envelope used by every
// handler: {"code": <http status>, "message": ..., "data": ...}.
package httputil

import (
	"encoding/json"
	"net/http"
)

type envelope struct {
	Code    int         `json:"code"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// WriteSuccess writes a success envelope with the given status code.
func WriteSuccess(w http.ResponseWriter, status int, data interface{}, message string) {
	write(w, status, envelope{Code: status, Message: message, Data: data})
}

// WriteError writes an error envelope with the given status code.
func WriteError(w http.ResponseWriter, status int, message string) {
	write(w, status, envelope{Code: status, Message: message})
}

func write(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

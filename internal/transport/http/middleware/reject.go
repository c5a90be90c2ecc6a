package middleware

import (
	"encoding/json"
	"net/http"
)

// rejection has the same shape as the handlers' error envelope.
type rejection struct {
	Error     string `json:"error"`
	ErrorCode int    `json:"error_code"`
}

func reject(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(rejection{Error: msg, ErrorCode: status})
}

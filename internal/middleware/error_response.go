package middleware

import (
	"net/http"

	jsoniter "github.com/json-iterator/go"
)

// ErrorBody is the JSON body of every error response written by this package and by the handlers.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// WriteError writes status with an ErrorBody.
func WriteError(w http.ResponseWriter, status int, code string, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	_ = jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(w).Encode(ErrorBody{Code: code, Message: message})
}

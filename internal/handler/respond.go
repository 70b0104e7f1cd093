package handler

import (
	"errors"
	"io"
	"net/http"

	jsoniter "github.com/json-iterator/go"

	"github.com/mrcrpro/panaguas/internal/middleware"
)

const maxBodyBytes = 1 << 16

var (
	json = jsoniter.ConfigCompatibleWithStandardLibrary

	errEmptyBody = errors.New("request body is empty")
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(body)
}

func writeBadRequest(w http.ResponseWriter, message string) {
	middleware.WriteError(w, http.StatusBadRequest, "invalid_request", message)
}

func decodeJSON(r *http.Request, target any) error {
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(target)
	if errors.Is(err, io.EOF) {
		return errEmptyBody
	}

	return err
}

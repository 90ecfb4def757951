package attempthandlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	attemptservice "github.com/Black-And-White-Club/speedsolve/app/modules/attempt/application"
	"github.com/google/uuid"
)

var errBadRequest = errors.New("bad request")

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadRequest),
		errors.Is(err, attemptservice.ErrInvalidAttempt),
		errors.Is(err, attemptservice.ErrInvalidPage),
		errors.Is(err, attemptservice.ErrEmptyBatch):
		return http.StatusBadRequest
	case errors.Is(err, attemptservice.ErrUserNotFound),
		errors.Is(err, attemptservice.ErrPuzzleTypeNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// failWith writes err with its mapped status. Internal errors are logged and
// their detail withheld from the client.
func (h *AttemptHandlers) failWith(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), "Request failed", "path", r.URL.Path, "error", err)
		writeError(w, status, http.StatusText(status))
		return
	}
	writeError(w, status, err.Error())
}

func optionalUUID(q url.Values, key string) (*uuid.UUID, error) {
	v := q.Get(key)
	if v == "" {
		return nil, nil
	}
	id, err := uuid.Parse(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %s is not a valid id", errBadRequest, key)
	}
	return &id, nil
}

func requiredUUID(q url.Values, key string) (uuid.UUID, error) {
	id, err := optionalUUID(q, key)
	if err != nil {
		return uuid.Nil, err
	}
	if id == nil {
		return uuid.Nil, fmt.Errorf("%w: %s is required", errBadRequest, key)
	}
	return *id, nil
}

func optionalInt(q url.Values, key string) (*int, error) {
	v := q.Get(key)
	if v == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be an integer", errBadRequest, key)
	}
	return &n, nil
}

// pairFromQuery reads the userId and puzzleTypeId every ledger route needs.
func pairFromQuery(q url.Values) (uuid.UUID, uuid.UUID, error) {
	userID, err := requiredUUID(q, "userId")
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	puzzleTypeID, err := requiredUUID(q, "puzzleTypeId")
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return userID, puzzleTypeID, nil
}

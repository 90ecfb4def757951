package attempthandlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	attemptservice "github.com/Black-And-White-Club/speedsolve/app/modules/attempt/application"
	"github.com/Black-And-White-Club/speedsolve/pkg/observability/attr"
	"github.com/google/uuid"
)

const (
	maxBodyBytes   = 1 << 20
	maxUploadBytes = 10 << 20
)

// HandleListAttempts serves GET /api/attempts.
func (h *AttemptHandlers) HandleListAttempts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	userID, err := optionalUUID(q, "userId")
	if err != nil {
		h.failWith(w, r, err)
		return
	}
	puzzleTypeID, err := optionalUUID(q, "puzzleTypeId")
	if err != nil {
		h.failWith(w, r, err)
		return
	}
	skip, err := optionalInt(q, "skip")
	if err != nil {
		h.failWith(w, r, err)
		return
	}
	take, err := optionalInt(q, "take")
	if err != nil {
		h.failWith(w, r, err)
		return
	}

	req := attemptservice.ListAttemptsRequest{UserID: userID, PuzzleTypeID: puzzleTypeID, Take: take}
	if skip != nil {
		req.Skip = *skip
	}

	page, err := h.service.ListAttempts(r.Context(), req)
	if err != nil {
		h.failWith(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// HandleCreateAttempt serves POST /api/attempts.
func (h *AttemptHandlers) HandleCreateAttempt(w http.ResponseWriter, r *http.Request) {
	var req attemptservice.NewAttempt
	if err := decodeBody(w, r, &req); err != nil {
		h.failWith(w, r, err)
		return
	}

	res, err := h.service.CreateAttempt(r.Context(), req)
	if err != nil {
		h.failWith(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

type batchResponse struct {
	Count int `json:"count"`
}

// HandleBatchCreateAttempts serves POST /api/attempts/batch with a JSON array body.
func (h *AttemptHandlers) HandleBatchCreateAttempts(w http.ResponseWriter, r *http.Request) {
	var reqs []attemptservice.NewAttempt
	if err := decodeBody(w, r, &reqs); err != nil {
		h.failWith(w, r, err)
		return
	}

	n, err := h.service.BatchCreateAttempts(r.Context(), reqs)
	if err != nil {
		h.failWith(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, batchResponse{Count: n})
}

// HandleImportAttempts serves POST /api/attempts/import as multipart form
// data with a file part and the pair as form fields.
func (h *AttemptHandlers) HandleImportAttempts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		h.failWith(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}

	userID, err := uuid.Parse(r.FormValue("userId"))
	if err != nil {
		h.failWith(w, r, fmt.Errorf("%w: userId is not a valid id", errBadRequest))
		return
	}
	puzzleTypeID, err := uuid.Parse(r.FormValue("puzzleTypeId"))
	if err != nil {
		h.failWith(w, r, fmt.Errorf("%w: puzzleTypeId is not a valid id", errBadRequest))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.failWith(w, r, fmt.Errorf("%w: file is required", errBadRequest))
		return
	}
	defer file.Close()

	n, err := h.service.ImportAttempts(ctx, userID, puzzleTypeID, header.Filename, file)
	if err != nil {
		h.failWith(w, r, err)
		return
	}

	h.logger.InfoContext(ctx, "Attempts imported",
		attr.ExtractCorrelationID(ctx),
		attr.UserID(userID),
		attr.String("filename", header.Filename),
		attr.Int("count", n),
	)
	writeJSON(w, http.StatusCreated, batchResponse{Count: n})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: invalid JSON body: %v", errBadRequest, err)
	}
	return nil
}

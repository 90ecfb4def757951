package attempthandlers

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
)

// HandleCurrentBests serves GET /api/bests.
func (h *AttemptHandlers) HandleCurrentBests(w http.ResponseWriter, r *http.Request) {
	userID, puzzleTypeID, err := pairFromQuery(r.URL.Query())
	if err != nil {
		h.failWith(w, r, err)
		return
	}

	bests, err := h.service.CurrentBests(r.Context(), userID, puzzleTypeID)
	if err != nil {
		h.failWith(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bests)
}

type rebuildRequest struct {
	UserID       uuid.UUID `json:"userId"`
	PuzzleTypeID uuid.UUID `json:"puzzleTypeId"`
}

// HandleRebuildLedger serves POST /api/bests/rebuild.
func (h *AttemptHandlers) HandleRebuildLedger(w http.ResponseWriter, r *http.Request) {
	var req rebuildRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.failWith(w, r, err)
		return
	}

	bests, err := h.service.RebuildLedger(r.Context(), req.UserID, req.PuzzleTypeID)
	if err != nil {
		h.failWith(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bests)
}

type rebuildAllResponse struct {
	Queued   int  `json:"queued,omitempty"`
	Pairs    int  `json:"pairs"`
	Failed   int  `json:"failed"`
	Deferred bool `json:"deferred"`
}

// HandleRebuildAll serves POST /api/bests/rebuild-all. With the job queue
// enabled the rebuilds are enqueued and the call returns 202.
func (h *AttemptHandlers) HandleRebuildAll(w http.ResponseWriter, r *http.Request) {
	if h.queue != nil {
		n, err := h.queue.EnqueueRebuildAll(r.Context())
		if err != nil {
			h.failWith(w, r, err)
			return
		}
		writeJSON(w, http.StatusAccepted, rebuildAllResponse{Queued: n, Deferred: true})
		return
	}

	summary, err := h.service.RebuildAll(r.Context())
	if err != nil {
		h.failWith(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rebuildAllResponse{Pairs: summary.Pairs, Failed: summary.Failed})
}

// HandleLedgerChart serves GET /api/bests/chart.png.
func (h *AttemptHandlers) HandleLedgerChart(w http.ResponseWriter, r *http.Request) {
	userID, puzzleTypeID, err := pairFromQuery(r.URL.Query())
	if err != nil {
		h.failWith(w, r, err)
		return
	}

	png, err := h.service.LedgerChart(r.Context(), userID, puzzleTypeID)
	if err != nil {
		h.failWith(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(png)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

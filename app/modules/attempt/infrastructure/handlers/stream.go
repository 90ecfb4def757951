package attempthandlers

import (
	"encoding/json"
	"net/http"
	"time"

	attemptevents "github.com/Black-And-White-Club/speedsolve/app/modules/attempt/domain/events"
	scoped "github.com/Black-And-White-Club/speedsolve/pkg/eventbus"
	"github.com/Black-And-White-Club/speedsolve/pkg/observability/attr"
)

// keepAliveInterval is how often an idle stream writes a blank line.
const keepAliveInterval = 25 * time.Second

// HandleStreamAttempts serves GET /api/attempts/stream as newline-delimited
// JSON: one created-attempt payload per line, filtered to the optional
// userId and puzzleTypeId.
func (h *AttemptHandlers) HandleStreamAttempts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
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

	flusher, ok := w.(http.Flusher)
	if !ok || h.eventBus == nil {
		writeError(w, http.StatusNotImplemented, "streaming is not supported")
		return
	}

	messages, err := h.eventBus.Subscribe(ctx, attemptevents.AttemptCreatedV1)
	if err != nil {
		h.failWith(w, r, err)
		return
	}

	// Streams outlive the server's write timeout.
	_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	h.logger.InfoContext(ctx, "Attempt stream opened", attr.ExtractCorrelationID(ctx))
	defer h.logger.InfoContext(ctx, "Attempt stream closed", attr.ExtractCorrelationID(ctx))

	keepAlive := time.NewTicker(keepAliveInterval)
	defer keepAlive.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-keepAlive.C:
			if _, err := w.Write([]byte("\n")); err != nil {
				return
			}
			flusher.Flush()
		case msg, ok := <-messages:
			if !ok {
				return
			}
			msg.Ack()
			if !scoped.MatchesScope(msg, userID, puzzleTypeID) {
				continue
			}
			if !json.Valid(msg.Payload) {
				h.logger.WarnContext(ctx, "Dropping malformed event", attr.String("message_id", msg.UUID))
				continue
			}
			if _, err := w.Write(append(msg.Payload, '\n')); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

package handlers

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// handleEvents streams change notifications for one game over Server-Sent
// Events. Events carry no state; clients re-fetch the aggregate when one
// arrives, and poll regardless, so a dropped event is harmless.
func (h *Handler) handleEvents(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "id")
	if _, err := h.Dispatcher.GameByID(r.Context(), gameID); err != nil {
		respondError(w, err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // disable buffering in nginx/proxies

	// Subscribe before acknowledging so no change slips between the two
	ch := h.Hub.Subscribe(gameID)
	defer h.Hub.Unsubscribe(gameID, ch)

	fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, gameID)
			flusher.Flush()
		}
	}
}

package web

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/oklog/ulid/v2"
)

// StateHandler returns the current run snapshot as JSON.
// GET /api/state
func StateHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(store.Snapshot())
	}
}

// EventsHandler streams run events as server-sent events.
// GET /api/events
//
// The stream opens with a "snapshot" event holding the current state so a
// client attaching mid-run does not need a separate /api/state call. Later
// events are numbered per connection.
func EventsHandler(hub *Hub, store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "streaming not supported", http.StatusInternalServerError)
			return
		}

		client := NewClient(ulid.Make().String())
		if !hub.Register(client) {
			http.Error(w, "monitor is shutting down", http.StatusServiceUnavailable)
			return
		}
		defer hub.Unregister(client)

		h := w.Header()
		h.Set("Content-Type", "text/event-stream")
		h.Set("Cache-Control", "no-cache")
		h.Set("Connection", "keep-alive")
		h.Set("Access-Control-Allow-Origin", "*")

		// Registered first, so nothing broadcast after the snapshot is missed
		if err := writeEvent(w, 0, "snapshot", store.Snapshot()); err != nil {
			return
		}
		flusher.Flush()

		var seq int
		for {
			select {
			case <-r.Context().Done():
				return
			case event, ok := <-client.events:
				if !ok {
					return
				}
				seq++
				if err := writeEvent(w, seq, string(event.Type), event); err != nil {
					return
				}
				flusher.Flush()
			}
		}
	}
}

// writeEvent writes one SSE frame. id 0 omits the id field.
func writeEvent(w http.ResponseWriter, id int, name string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if id > 0 {
		if _, err := fmt.Fprintf(w, "id: %d\n", id); err != nil {
			return err
		}
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", name, data)
	return err
}

// Reelguard - LLM-Powered Parental Content Advisory Reports
// Copyright 2026 Reelguard Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelguard/reelguard

package api

import (
	"fmt"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/reelguard/reelguard/internal/logging"
)

// sseWriter frames server-sent events over a streaming response. Each
// event is flushed immediately so dimensions reach the client as they
// complete rather than when the response ends.
type sseWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

// newSSEWriter prepares the response for event streaming. It returns
// false when the underlying writer cannot flush, in which case the
// caller must not stream.
func newSSEWriter(w http.ResponseWriter) (*sseWriter, bool) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, false
	}

	w.Header().Set("Content-Type", "text/event-stream; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	return &sseWriter{w: w, flusher: flusher}, true
}

// Send writes one named event with a JSON payload. Write errors are
// logged and otherwise ignored: a disconnected client must not abort
// the in-process pipeline, and the orchestrator guards the cache
// commit independently.
func (s *sseWriter) Send(r *http.Request, event string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Str("event", event).Msg("Failed to marshal SSE payload")
		return
	}

	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", event, data); err != nil {
		logging.Ctx(r.Context()).Debug().Err(err).Str("event", event).Msg("SSE write failed, client likely disconnected")
		return
	}
	s.flusher.Flush()
}

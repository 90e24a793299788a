package api

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// SSE event payloads. Both streaming endpoints emit the same envelope:
//   - chunk:   partial answer text {"text": "..."}
//   - sources: documents the answer cites {"sources": [...]}
//   - done:    final output {"response": "...", "sessionId": "...", ...}
//   - error:   turn failed {"code": "...", "message": "..."}

// SSEChunkData is the data for "chunk" events.
type SSEChunkData struct {
	Text string `json:"text"`
}

// SSESourceRef identifies one cited document page.
type SSESourceRef struct {
	Document string `json:"document"`
	Page     int    `json:"page"`
}

// SSESourcesData is the data for "sources" events.
type SSESourcesData struct {
	Sources []SSESourceRef `json:"sources"`
}

// SSEDoneData is the data for "done" events.
type SSEDoneData struct {
	Response  string `json:"response"`
	SessionID string `json:"sessionId"`
	Mode      string `json:"mode"`
	Partial   bool   `json:"partial,omitempty"`
}

// SSEErrorData is the data for "error" events.
type SSEErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// setSSEHeaders prepares the response for Server-Sent Events.
func setSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering
}

// writeSSEEvent writes one named event and flushes it to the client.
func writeSSEEvent(w http.ResponseWriter, flusher http.Flusher, event string, payload any) {
	data, _ := json.Marshal(payload)
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
	flusher.Flush()
}

func writeSSEChunk(w http.ResponseWriter, flusher http.Flusher, text string) {
	writeSSEEvent(w, flusher, "chunk", SSEChunkData{Text: text})
}

func writeSSESources(w http.ResponseWriter, flusher http.Flusher, sources []SSESourceRef) {
	writeSSEEvent(w, flusher, "sources", SSESourcesData{Sources: sources})
}

func writeSSEDone(w http.ResponseWriter, flusher http.Flusher, data SSEDoneData) {
	writeSSEEvent(w, flusher, "done", data)
}

func writeSSEError(w http.ResponseWriter, flusher http.Flusher, code, message string) {
	writeSSEEvent(w, flusher, "error", SSEErrorData{Code: code, Message: message})
}

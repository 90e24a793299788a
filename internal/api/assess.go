package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"fdassist/internal/document"
	"fdassist/internal/router"
	"fdassist/internal/stream"
)

const (
	// defaultMaxUploadBytes caps one uploaded file when the server
	// config leaves the ceiling unset.
	defaultMaxUploadBytes = 25 << 20

	// multipartMemory is how much of a multipart body stays in memory
	// before spilling to temp files.
	multipartMemory = 32 << 20

	// maxAskBody caps the JSON body of an ask request.
	maxAskBody = 1 << 20
)

// Assistant runs one user turn to completion.
type Assistant interface {
	Run(ctx context.Context, question string, uploads []document.Upload) (*router.State, error)
}

// assessHandler serves the two assessment endpoints. Both stream the
// compiled answer back as SSE chunk events paced by the formatter.
type assessHandler struct {
	assistant      Assistant
	formatter      *stream.Formatter
	parser         *document.Parser
	maxUploadBytes int64
	logger         *slog.Logger
}

// askRequest is the body of POST /api/v1/ask.
type askRequest struct {
	Question  string `json:"question"`
	SessionID string `json:"sessionId"`
}

// ask answers a regulatory or cybersecurity question against the
// knowledge base and streams the answer as SSE.
func (h *assessHandler) ask(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxAskBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid request body", h.logger)
		return
	}

	question := strings.TrimSpace(req.Question)
	if question == "" {
		writeError(w, http.StatusBadRequest, "missing_question", "question is required", h.logger)
		return
	}

	h.streamTurn(w, r, question, nil, req.SessionID)
}

// gapAnalysis runs the compliance gap pipeline over uploaded submission
// documents. Uploads are validated before the turn starts so bad input
// fails with a plain HTTP status instead of a broken stream.
func (h *assessHandler) gapAnalysis(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_multipart", "invalid multipart body", h.logger)
		return
	}
	defer func() {
		if err := r.MultipartForm.RemoveAll(); err != nil {
			h.logger.Debug("removing multipart temp files", "error", err)
		}
	}()

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		writeError(w, http.StatusBadRequest, "missing_files", "at least one file is required", h.logger)
		return
	}

	uploads := make([]document.Upload, 0, len(headers))
	for _, fh := range headers {
		if fh.Size > h.maxUploadBytes {
			writeError(w, http.StatusRequestEntityTooLarge, "file_too_large", fh.Filename+" exceeds the upload limit", h.logger)
			return
		}

		f, err := fh.Open()
		if err != nil {
			writeError(w, http.StatusBadRequest, "unreadable_file", "cannot read "+fh.Filename, h.logger)
			return
		}
		data, err := io.ReadAll(io.LimitReader(f, h.maxUploadBytes+1))
		f.Close()
		if err != nil {
			writeError(w, http.StatusBadRequest, "unreadable_file", "cannot read "+fh.Filename, h.logger)
			return
		}
		if int64(len(data)) > h.maxUploadBytes {
			writeError(w, http.StatusRequestEntityTooLarge, "file_too_large", fh.Filename+" exceeds the upload limit", h.logger)
			return
		}

		u := document.Upload{Name: fh.Filename, Data: data}
		if err := h.parser.Check(u); err != nil {
			h.writeUploadError(w, fh.Filename, err)
			return
		}
		uploads = append(uploads, u)
	}

	question := strings.TrimSpace(r.FormValue("question"))
	h.streamTurn(w, r, question, uploads, r.FormValue("sessionId"))
}

// writeUploadError maps document validation failures to HTTP statuses.
func (h *assessHandler) writeUploadError(w http.ResponseWriter, name string, err error) {
	switch {
	case errors.Is(err, document.ErrUploadTooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, "file_too_large", name+" exceeds the upload limit", h.logger)
	case errors.Is(err, document.ErrUnsupportedType):
		writeError(w, http.StatusUnsupportedMediaType, "unsupported_type", name+" is not a supported document format", h.logger)
	default:
		writeError(w, http.StatusUnprocessableEntity, "invalid_document", name+" cannot be processed", h.logger)
	}
}

// streamTurn runs one turn and streams the compiled answer.
//
// Event order on success: chunk* → sources (when the answer cites any)
// → done. A turn failure after headers are sent becomes an error event.
func (h *assessHandler) streamTurn(w http.ResponseWriter, r *http.Request, question string, uploads []document.Upload, sessionID string) {
	setSSEHeaders(w)

	flusher, ok := w.(http.Flusher)
	if !ok {
		h.logger.Error("streaming not supported")
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	if sessionID == "" {
		sessionID = uuid.New().String()
	}

	ctx := r.Context()
	requestID, _ := requestIDFromContext(ctx)
	h.logger.Info("SSE stream started",
		"session_id", sessionID, "request_id", requestID, "uploads", len(uploads))

	st, err := h.assistant.Run(ctx, question, uploads)
	if err != nil {
		if ctx.Err() != nil {
			h.logger.Info("SSE stream canceled", "session_id", sessionID)
			return
		}
		h.logger.Error("turn failed", "session_id", sessionID, "error", err)
		writeSSEError(w, flusher, turnErrorCode(err), err.Error())
		return
	}

	streamErr := h.formatter.Stream(ctx, st.Final, func(text string) error {
		writeSSEChunk(w, flusher, text)
		return nil
	})
	if streamErr != nil {
		h.logger.Info("SSE stream interrupted", "session_id", sessionID, "error", streamErr)
		return
	}

	if sources := st.Sources(); len(sources) > 0 {
		refs := make([]SSESourceRef, len(sources))
		for i, s := range sources {
			refs[i] = SSESourceRef{Document: s.Document, Page: s.Page}
		}
		writeSSESources(w, flusher, refs)
	}

	writeSSEDone(w, flusher, SSEDoneData{
		Response:  st.Final,
		SessionID: sessionID,
		Mode:      string(st.Mode),
		Partial:   st.Partial,
	})
	h.logger.Info("SSE stream completed",
		"session_id", sessionID, "mode", st.Mode, "partial", st.Partial)
}

// turnErrorCode maps turn failures to machine-readable error codes.
func turnErrorCode(err error) string {
	switch {
	case errors.Is(err, router.ErrEmptyQuestion):
		return "MISSING_QUESTION"
	case errors.Is(err, router.ErrGenerationUnavailable):
		return "GENERATION_UNAVAILABLE"
	default:
		return "TURN_FAILED"
	}
}

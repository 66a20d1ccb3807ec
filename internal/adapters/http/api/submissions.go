// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	service "github.com/okian/enso/internal/app"
	"github.com/okian/enso/internal/adapters/ledger"
	"github.com/okian/enso/internal/domain/model"
	"github.com/okian/enso/internal/domain/vision"
)

// SubmitDependencies defines the interface for submission processing.
type SubmitDependencies interface {
	Submit(ctx context.Context, userID int64, image []byte) (model.Submission, error)
}

// SubmissionsHandler handles drawing submissions.
type SubmissionsHandler struct {
	deps     SubmitDependencies
	maxBytes int64
}

// NewSubmissionsHandler creates a new submissions handler.
func NewSubmissionsHandler(deps SubmitDependencies, maxBytes int64) *SubmissionsHandler {
	if maxBytes <= 0 {
		maxBytes = defaultMaxImageBytes
	}
	return &SubmissionsHandler{deps: deps, maxBytes: maxBytes}
}

// HandlePostSubmission handles POST /api/v1/submissions requests. The body
// is multipart/form-data with a decimal user_id field and an image file part.
func (h *SubmissionsHandler) HandlePostSubmission(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		if isBodyTooLarge(err) {
			writeError(w, http.StatusRequestEntityTooLarge, "image_too_large",
				fmt.Errorf("%w: body exceeds %d bytes", ErrBadRequest, h.maxBytes))
			return
		}
		writeError(w, http.StatusBadRequest, "bad_request",
			fmt.Errorf("%w: malformed multipart form", ErrBadRequest))
		return
	}

	userID, err := strconv.ParseInt(r.FormValue("user_id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request",
			fmt.Errorf("%w: user_id must be a decimal integer", ErrBadRequest))
		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request",
			fmt.Errorf("%w: missing image part", ErrBadRequest))
		return
	}
	defer func() { _ = file.Close() }()

	image, err := io.ReadAll(file)
	if err != nil {
		if isBodyTooLarge(err) {
			writeError(w, http.StatusRequestEntityTooLarge, "image_too_large",
				fmt.Errorf("%w: body exceeds %d bytes", ErrBadRequest, h.maxBytes))
			return
		}
		writeError(w, http.StatusBadRequest, "bad_request",
			fmt.Errorf("%w: unreadable image part", ErrBadRequest))
		return
	}

	sub, err := h.deps.Submit(r.Context(), userID, image)
	if err != nil {
		h.writeSubmitError(w, sub, err)
		return
	}

	writeJSON(w, http.StatusCreated, submissionResponse{
		UserID:      sub.UserID,
		Day:         sub.Day.String(),
		Score:       sub.Score,
		SubmittedAt: sub.SubmittedAt.UTC().Format(time.RFC3339),
	})
}

// isBodyTooLarge detects the MaxBytesReader trip. The multipart parser does
// not always preserve the error chain, so the message is checked as well.
func isBodyTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return true
	}
	return strings.Contains(err.Error(), "request body too large") ||
		errors.Is(err, multipart.ErrMessageTooLarge)
}

// writeSubmitError translates pipeline sentinels into the wire contract.
func (h *SubmissionsHandler) writeSubmitError(w http.ResponseWriter, sub model.Submission, err error) {
	switch {
	case errors.Is(err, service.ErrAlreadySubmitted):
		writeError(w, http.StatusConflict, "already_submitted", err)
	case errors.Is(err, service.ErrSubmissionInFlight):
		writeError(w, http.StatusConflict, "submission_in_progress", err)
	case errors.Is(err, vision.ErrDecodeFailed):
		writeError(w, http.StatusUnprocessableEntity, "decode_failed", err)
	case errors.Is(err, vision.ErrNoShapeFound):
		writeError(w, http.StatusUnprocessableEntity, "no_shape_found", err)
	case errors.Is(err, service.ErrBusy):
		writeError(w, http.StatusTooManyRequests, "busy", err)
	case errors.Is(err, ledger.ErrStore):
		// Scoring succeeded; surface the unsaved score with the failure.
		score := sub.Score
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Code:    "record_failed",
			Message: err.Error(),
			Score:   &score,
		})
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}

// Package web holds the HTTP response conventions shared by every controller:
// JSON encoding, the error envelope and the mapping from application errors
// to status codes.
package web

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	apperrors "inventario/internal/errors"
)

type ctxKey int

const traceIDKey ctxKey = iota

func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey, traceID)
}

func TraceID(ctx context.Context) string {
	v, _ := ctx.Value(traceIDKey).(string)
	return v
}

type ErrorResponse struct {
	TraceID   string                       `json:"traceId"`
	Status    int                          `json:"status"`
	Error     string                       `json:"error"`
	Message   string                       `json:"message"`
	Details   []apperrors.ValidationDetail `json:"details,omitempty"`
	Timestamp time.Time                    `json:"timestamp"`
}

// Responder writes JSON bodies and logs with the request trace id.
type Responder struct {
	logger *zap.Logger
}

func NewResponder(logger *zap.Logger) *Responder {
	return &Responder{logger: logger}
}

// Logger returns the base logger scoped to the request's trace id.
func (rs *Responder) Logger(r *http.Request) *zap.Logger {
	if traceID := TraceID(r.Context()); traceID != "" {
		return rs.logger.With(zap.String("traceId", traceID))
	}
	return rs.logger
}

func (rs *Responder) JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		rs.logger.Error("failed to encode response", zap.Error(err))
	}
}

func (rs *Responder) ValidationError(w http.ResponseWriter, r *http.Request, message string, details ...apperrors.ValidationDetail) {
	rs.writeError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", message, details)
}

// Error maps err to a status code. Store and unknown failures are logged and
// answered with internalMessage so no driver detail reaches the client.
func (rs *Responder) Error(w http.ResponseWriter, r *http.Request, err error, internalMessage string) {
	log := rs.Logger(r)

	if ve, ok := apperrors.IsValidationError(err); ok {
		rs.writeError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", ve.Message, ve.Details)
		return
	}

	if _, ok := apperrors.IsInsufficientStockError(err); ok {
		rs.writeError(w, r, http.StatusBadRequest, "INSUFFICIENT_STOCK", "insufficient stock", nil)
		return
	}

	if nfe, ok := apperrors.IsNotFoundError(err); ok {
		rs.writeError(w, r, http.StatusNotFound, "NOT_FOUND", nfe.Message, nil)
		return
	}

	if ce, ok := apperrors.IsConflictError(err); ok {
		rs.writeError(w, r, http.StatusConflict, "CONFLICT", ce.Message, nil)
		return
	}

	if _, ok := apperrors.IsUploadError(err); ok {
		log.Error("image upload failed", zap.Error(err))
		rs.writeError(w, r, http.StatusBadGateway, "UPLOAD_FAILED", "could not upload image", nil)
		return
	}

	if be, ok := apperrors.IsBulkUpdateError(err); ok {
		log.Error("bulk update failed",
			zap.Ints("committedIds", be.Committed),
			zap.Error(be.Cause),
		)
		rs.writeError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", internalMessage, nil)
		return
	}

	log.Error("unexpected error", zap.Error(err))
	rs.writeError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", internalMessage, nil)
}

func (rs *Responder) writeError(w http.ResponseWriter, r *http.Request, status int, code, message string, details []apperrors.ValidationDetail) {
	rs.JSON(w, status, ErrorResponse{
		TraceID:   TraceID(r.Context()),
		Status:    status,
		Error:     code,
		Message:   message,
		Details:   details,
		Timestamp: time.Now().UTC(),
	})
}

package errors

import (
	stderrors "errors"
	"fmt"
)

type ValidationDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ValidationError struct {
	Message string
	Details []ValidationDetail
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidationError(message string, details ...ValidationDetail) *ValidationError {
	return &ValidationError{
		Message: message,
		Details: details,
	}
}

func IsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if stderrors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string {
	return e.Message
}

func NewNotFoundError(message string) *NotFoundError {
	return &NotFoundError{Message: message}
}

func IsNotFoundError(err error) (*NotFoundError, bool) {
	var nfe *NotFoundError
	if stderrors.As(err, &nfe) {
		return nfe, true
	}
	return nil, false
}

// ConflictError signals a unique constraint violation, e.g. a repeated product name.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

func NewConflictError(message string) *ConflictError {
	return &ConflictError{Message: message}
}

func IsConflictError(err error) (*ConflictError, bool) {
	var ce *ConflictError
	if stderrors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// InsufficientStockError is returned when a decrement would leave stock
// negative or the product does not exist.
type InsufficientStockError struct {
	ProductID int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d (requested %d)", e.ProductID, e.Requested)
}

func NewInsufficientStockError(productID, requested int) *InsufficientStockError {
	return &InsufficientStockError{ProductID: productID, Requested: requested}
}

func IsInsufficientStockError(err error) (*InsufficientStockError, bool) {
	var ise *InsufficientStockError
	if stderrors.As(err, &ise) {
		return ise, true
	}
	return nil, false
}

// UploadError wraps a failure of the image hosting provider.
type UploadError struct {
	Cause error
}

func (e *UploadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("uploading image: %v", e.Cause)
	}
	return "uploading image"
}

func (e *UploadError) Unwrap() error {
	return e.Cause
}

func NewUploadError(cause error) *UploadError {
	return &UploadError{Cause: cause}
}

func IsUploadError(err error) (*UploadError, bool) {
	var ue *UploadError
	if stderrors.As(err, &ue) {
		return ue, true
	}
	return nil, false
}

type InternalError struct {
	Message string
	Cause   error
}

func (e *InternalError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *InternalError) Unwrap() error {
	return e.Cause
}

func NewInternalError(message string, cause error) *InternalError {
	return &InternalError{
		Message: message,
		Cause:   cause,
	}
}

// BulkUpdateError reports a bulk price update that stopped partway.
// Committed lists the product ids whose new price was already persisted.
type BulkUpdateError struct {
	Committed []int
	Cause     error
}

func (e *BulkUpdateError) Error() string {
	return fmt.Sprintf("bulk price update failed after %d committed updates: %v", len(e.Committed), e.Cause)
}

func (e *BulkUpdateError) Unwrap() error {
	return e.Cause
}

func NewBulkUpdateError(committed []int, cause error) *BulkUpdateError {
	return &BulkUpdateError{Committed: committed, Cause: cause}
}

func IsBulkUpdateError(err error) (*BulkUpdateError, bool) {
	var be *BulkUpdateError
	if stderrors.As(err, &be) {
		return be, true
	}
	return nil, false
}

// ConnectionError is fatal: the store could not be reached during startup.
type ConnectionError struct {
	Attempts int
	Cause    error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("could not connect to database after %d attempts: %v", e.Attempts, e.Cause)
}

func (e *ConnectionError) Unwrap() error {
	return e.Cause
}

func NewConnectionError(attempts int, cause error) *ConnectionError {
	return &ConnectionError{Attempts: attempts, Cause: cause}
}

package errors

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error codes returned in the "code" field of every error body
const (
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeForbidden          = "FORBIDDEN"
	ErrCodeInvalidInput       = "INVALID_INPUT"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeConflict           = "CONFLICT"
	ErrCodeIllegalTransition  = "ILLEGAL_TRANSITION"
	ErrCodeWorkflowConfig     = "WORKFLOW_CONFIG"
	ErrCodeInternalError      = "INTERNAL_ERROR"
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
)

// APIError is the JSON body of every failed request
type APIError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return e.Message
}

// NewAPIError creates a new APIError
func NewAPIError(code, message string) *APIError {
	return &APIError{Code: code, Message: message}
}

// NewAPIErrorWithDetails creates a new APIError with details
func NewAPIErrorWithDetails(code, message string, details interface{}) *APIError {
	return &APIError{Code: code, Message: message, Details: details}
}

// RespondWithError sends an error response
func RespondWithError(c *gin.Context, statusCode int, err *APIError) {
	c.JSON(statusCode, err)
}

type fallback struct {
	status  int
	message string
}

var fallbacks = map[string]fallback{
	ErrCodeUnauthorized:       {http.StatusUnauthorized, "Authentication required"},
	ErrCodeForbidden:          {http.StatusForbidden, "Access denied"},
	ErrCodeNotFound:           {http.StatusNotFound, "Resource not found"},
	ErrCodeInvalidInput:       {http.StatusBadRequest, "Invalid request"},
	ErrCodeConflict:           {http.StatusConflict, "Resource conflict"},
	ErrCodeInternalError:      {http.StatusInternalServerError, "Internal server error"},
	ErrCodeServiceUnavailable: {http.StatusServiceUnavailable, "Service temporarily unavailable"},
}

func respond(c *gin.Context, code, message string) {
	fb := fallbacks[code]
	if message == "" {
		message = fb.message
	}
	RespondWithError(c, fb.status, NewAPIError(code, message))
}

// Respond maps a typed core failure to its transport status.
// Anything unrecognised is reported as a 500 without leaking the message.
func Respond(c *gin.Context, err error) {
	var (
		validation *ValidationError
		notFound   *NotFoundError
		illegal    *IllegalTransitionError
		config     *WorkflowConfigError
		conflict   *ConflictError
	)

	switch {
	case stderrors.As(err, &validation):
		RespondWithError(c, http.StatusBadRequest, NewAPIErrorWithDetails(ErrCodeInvalidInput, validation.Error(), gin.H{
			"entity": validation.Entity,
			"field":  validation.Field,
		}))
	case stderrors.As(err, &notFound):
		NotFound(c, notFound.Error())
	case stderrors.As(err, &illegal):
		RespondWithError(c, http.StatusUnprocessableEntity, NewAPIErrorWithDetails(ErrCodeIllegalTransition, illegal.Error(), gin.H{
			"from": illegal.From,
			"to":   illegal.To,
		}))
	case stderrors.As(err, &config):
		RespondWithError(c, http.StatusUnprocessableEntity, NewAPIError(ErrCodeWorkflowConfig, config.Error()))
	case stderrors.As(err, &conflict):
		Conflict(c, conflict.Error())
	default:
		InternalError(c, "")
	}
}

// Unauthorized sends a 401 response
func Unauthorized(c *gin.Context, message string) { respond(c, ErrCodeUnauthorized, message) }

// Forbidden sends a 403 response
func Forbidden(c *gin.Context, message string) { respond(c, ErrCodeForbidden, message) }

// NotFound sends a 404 response
func NotFound(c *gin.Context, message string) { respond(c, ErrCodeNotFound, message) }

// BadRequest sends a 400 response
func BadRequest(c *gin.Context, message string) { respond(c, ErrCodeInvalidInput, message) }

// Conflict sends a 409 response
func Conflict(c *gin.Context, message string) { respond(c, ErrCodeConflict, message) }

// InternalError sends a 500 response
func InternalError(c *gin.Context, message string) { respond(c, ErrCodeInternalError, message) }

// ServiceUnavailable sends a 503 response
func ServiceUnavailable(c *gin.Context, message string) {
	respond(c, ErrCodeServiceUnavailable, message)
}

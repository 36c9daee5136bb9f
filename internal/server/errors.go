package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apikeydomain "github.com/wrenchworks/torqbill/internal/apikey/domain"
	billingdomain "github.com/wrenchworks/torqbill/internal/billing/domain"
	counterpartydomain "github.com/wrenchworks/torqbill/internal/counterparty/domain"
	recurringdomain "github.com/wrenchworks/torqbill/internal/recurring/domain"
	"github.com/wrenchworks/torqbill/internal/taxid"
)

// APIError is the wire shape for every non-2xx response.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func (e *APIError) Error() string { return e.Code + ": " + e.Message }

var (
	ErrUnauthorized = &APIError{Status: http.StatusUnauthorized, Code: "unauthorized", Message: "missing or invalid credentials"}
	ErrNotFound     = &APIError{Status: http.StatusNotFound, Code: "not_found", Message: "resource not found"}
	ErrTooMany      = &APIError{Status: http.StatusTooManyRequests, Code: "rate_limited", Message: "too many requests"}
)

func invalidRequestError() *APIError {
	return &APIError{Status: http.StatusBadRequest, Code: "invalid_request", Message: "request body could not be parsed"}
}

func newValidationError(field, code, message string) *APIError {
	return &APIError{Status: http.StatusBadRequest, Code: code, Message: message, Field: field}
}

// AbortWithError renders a domain error as an HTTP response. Unknown
// errors become opaque 500s so internals never leak to callers.
func AbortWithError(c *gin.Context, err error) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		c.AbortWithStatusJSON(apiErr.Status, gin.H{"error": apiErr})
		return
	}

	status := statusForError(err)
	body := gin.H{"error": gin.H{"code": err.Error(), "message": messageForError(err)}}
	c.AbortWithStatusJSON(status, body)
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, billingdomain.ErrDocumentNotFound),
		errors.Is(err, counterpartydomain.ErrCounterpartyNotFound),
		errors.Is(err, recurringdomain.ErrProfileNotFound),
		errors.Is(err, apikeydomain.ErrKeyNotFound):
		return http.StatusNotFound

	case errors.Is(err, apikeydomain.ErrInvalidToken):
		return http.StatusUnauthorized

	case errors.Is(err, billingdomain.ErrIllegalTransition),
		errors.Is(err, billingdomain.ErrDuplicatePayment),
		errors.Is(err, recurringdomain.ErrProfileNotActive),
		errors.Is(err, recurringdomain.ErrProfileNotStopped),
		errors.Is(err, recurringdomain.ErrProfileExpired),
		errors.Is(err, apikeydomain.ErrKeyRevoked):
		return http.StatusConflict

	// Guarded updates lose only to a concurrent writer; the caller can
	// retry the request as-is.
	case errors.Is(err, billingdomain.ErrConcurrencyConflict):
		return http.StatusConflict

	case errors.Is(err, billingdomain.ErrOverpaymentRejected):
		return http.StatusUnprocessableEntity

	case errors.Is(err, billingdomain.ErrInvalidWorkshop),
		errors.Is(err, billingdomain.ErrInvalidDocumentID),
		errors.Is(err, billingdomain.ErrInvalidDocument),
		errors.Is(err, billingdomain.ErrInvalidCounterparty),
		errors.Is(err, billingdomain.ErrInvalidLineItem),
		errors.Is(err, billingdomain.ErrInvalidDiscount),
		errors.Is(err, billingdomain.ErrInvalidTDSRate),
		errors.Is(err, billingdomain.ErrInvalidPayment),
		errors.Is(err, billingdomain.ErrVoidReasonRequired),
		errors.Is(err, counterpartydomain.ErrInvalidWorkshop),
		errors.Is(err, counterpartydomain.ErrInvalidKind),
		errors.Is(err, counterpartydomain.ErrInvalidName),
		errors.Is(err, counterpartydomain.ErrInvalidID),
		errors.Is(err, taxid.ErrInvalidGSTIN),
		errors.Is(err, recurringdomain.ErrInvalidProfile),
		errors.Is(err, recurringdomain.ErrInvalidFrequency),
		errors.Is(err, recurringdomain.ErrInvalidSchedule),
		errors.Is(err, apikeydomain.ErrInvalidWorkshop),
		errors.Is(err, apikeydomain.ErrInvalidName):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func messageForError(err error) string {
	if statusForError(err) == http.StatusInternalServerError {
		return "internal error"
	}
	var transitionErr *billingdomain.TransitionError
	if errors.As(err, &transitionErr) {
		return transitionErr.Error()
	}
	return err.Error()
}

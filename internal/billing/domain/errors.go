package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidWorkshop     = errors.New("invalid_workshop")
	ErrInvalidDocumentID   = errors.New("invalid_document_id")
	ErrInvalidDocument     = errors.New("invalid_document")
	ErrInvalidCounterparty = errors.New("invalid_counterparty")
	ErrDocumentNotFound    = errors.New("document_not_found")
	ErrInvalidLineItem     = errors.New("invalid_line_item")
	ErrInvalidDiscount     = errors.New("invalid_discount")
	ErrInvalidTDSRate      = errors.New("invalid_tds_rate")
	ErrIllegalTransition   = errors.New("illegal_transition")
	ErrInvalidPayment      = errors.New("invalid_payment")
	ErrOverpaymentRejected = errors.New("overpayment_rejected")
	ErrVoidReasonRequired  = errors.New("void_reason_required")
	ErrDuplicatePayment    = errors.New("duplicate_payment")
	ErrConcurrencyConflict = errors.New("concurrency_conflict")
)

// TransitionError reports a state machine violation. It unwraps to
// ErrIllegalTransition so callers can classify it as non-retryable.
type TransitionError struct {
	DocumentType DocumentType
	From         Status
	Action       Action
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("illegal_transition: %s in state %q does not allow %q", e.DocumentType, e.From, e.Action)
}

func (e *TransitionError) Unwrap() error { return ErrIllegalTransition }

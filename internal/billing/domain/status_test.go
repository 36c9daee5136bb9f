package domain

import (
	"errors"
	"testing"
)

func TestCanApplyBill(t *testing.T) {
	allowed := []struct {
		status Status
		action Action
	}{
		{StatusDraft, ActionOpen},
		{StatusDraft, ActionVoid},
		{StatusOpen, ActionRecordPayment},
		{StatusOpen, ActionVoid},
		{StatusPartiallyPaid, ActionRecordPayment},
		{StatusPartiallyPaid, ActionVoid},
	}
	for _, tt := range allowed {
		if err := CanApply(DocumentTypeBill, tt.status, tt.action); err != nil {
			t.Errorf("bill %s/%s: unexpected error %v", tt.status, tt.action, err)
		}
	}

	denied := []struct {
		status Status
		action Action
	}{
		{StatusDraft, ActionRecordPayment},
		{StatusPaid, ActionRecordPayment},
		{StatusPaid, ActionVoid},
		{StatusVoid, ActionRecordPayment},
		{StatusVoid, ActionOpen},
		{StatusOpen, ActionIssue},
		{StatusOpen, ActionConvertToBill},
	}
	for _, tt := range denied {
		err := CanApply(DocumentTypeBill, tt.status, tt.action)
		if !errors.Is(err, ErrIllegalTransition) {
			t.Errorf("bill %s/%s: error = %v, want ErrIllegalTransition", tt.status, tt.action, err)
		}
	}
}

func TestCanApplyPurchaseOrder(t *testing.T) {
	allowed := []struct {
		status Status
		action Action
	}{
		{StatusDraft, ActionIssue},
		{StatusIssued, ActionReceive},
		{StatusIssued, ActionConvertToBill},
		{StatusReceived, ActionConvertToBill},
		{StatusReceived, ActionVoid},
	}
	for _, tt := range allowed {
		if err := CanApply(DocumentTypePurchaseOrder, tt.status, tt.action); err != nil {
			t.Errorf("po %s/%s: unexpected error %v", tt.status, tt.action, err)
		}
	}

	denied := []struct {
		status Status
		action Action
	}{
		{StatusDraft, ActionConvertToBill},
		{StatusDraft, ActionOpen},
		{StatusBilled, ActionConvertToBill},
		{StatusBilled, ActionVoid},
		{StatusVoid, ActionIssue},
		{StatusIssued, ActionRecordPayment},
	}
	for _, tt := range denied {
		err := CanApply(DocumentTypePurchaseOrder, tt.status, tt.action)
		if !errors.Is(err, ErrIllegalTransition) {
			t.Errorf("po %s/%s: error = %v, want ErrIllegalTransition", tt.status, tt.action, err)
		}
	}
}

func TestTransitionErrorUnwraps(t *testing.T) {
	err := CanApply(DocumentTypeBill, StatusPaid, ActionRecordPayment)

	var transitionErr *TransitionError
	if !errors.As(err, &transitionErr) {
		t.Fatalf("error = %v, want *TransitionError", err)
	}
	if transitionErr.From != StatusPaid || transitionErr.Action != ActionRecordPayment {
		t.Fatalf("TransitionError = %+v", transitionErr)
	}
	if !errors.Is(err, ErrIllegalTransition) {
		t.Fatalf("errors.Is(err, ErrIllegalTransition) = false")
	}
}

func TestIsTerminal(t *testing.T) {
	terminal := []struct {
		docType DocumentType
		status  Status
	}{
		{DocumentTypeBill, StatusPaid},
		{DocumentTypeBill, StatusVoid},
		{DocumentTypePurchaseOrder, StatusBilled},
		{DocumentTypePurchaseOrder, StatusVoid},
	}
	for _, tt := range terminal {
		if !IsTerminal(tt.docType, tt.status) {
			t.Errorf("IsTerminal(%s, %s) = false, want true", tt.docType, tt.status)
		}
	}

	if IsTerminal(DocumentTypeBill, StatusOpen) {
		t.Error("IsTerminal(bill, open) = true, want false")
	}
	if IsTerminal(DocumentTypePurchaseOrder, StatusIssued) {
		t.Error("IsTerminal(purchase_order, issued) = true, want false")
	}
}

func TestKnownStatus(t *testing.T) {
	if !KnownStatus(DocumentTypeBill, StatusPartiallyPaid) {
		t.Error("KnownStatus(bill, partially_paid) = false, want true")
	}
	if KnownStatus(DocumentTypeBill, StatusIssued) {
		t.Error("KnownStatus(bill, issued) = true, want false")
	}
	if KnownStatus(DocumentTypePurchaseOrder, StatusPartiallyPaid) {
		t.Error("KnownStatus(purchase_order, partially_paid) = true, want false")
	}
}

package events

// Billing event types published to the outbox.
const (
	EventBillOpened             = "bill.opened"
	EventBillPaid               = "bill.paid"
	EventBillVoided             = "bill.voided"
	EventPaymentRecorded        = "payment.recorded"
	EventPurchaseOrderIssued    = "purchase_order.issued"
	EventPurchaseOrderConverted = "purchase_order.converted"
	EventRecurringBillGenerated = "recurring_bill.generated"
)

// DocumentPayload identifies the document an event refers to.
type DocumentPayload struct {
	DocumentID     string `json:"document_id"`
	DocumentType   string `json:"document_type"`
	CounterpartyID string `json:"counterparty_id,omitempty"`
	Status         string `json:"status,omitempty"`
}

// ToMap converts a payload into an outbox-friendly map.
func (p DocumentPayload) ToMap() map[string]any {
	payload := map[string]any{
		"document_id":   p.DocumentID,
		"document_type": p.DocumentType,
	}
	if p.CounterpartyID != "" {
		payload["counterparty_id"] = p.CounterpartyID
	}
	if p.Status != "" {
		payload["status"] = p.Status
	}
	return payload
}

// PaymentPayload captures the minimal data for payment events.
type PaymentPayload struct {
	PaymentID  string `json:"payment_id"`
	DocumentID string `json:"document_id"`
	Amount     string `json:"amount"`
	Mode       string `json:"mode"`
}

// ToMap converts a payload into an outbox-friendly map.
func (p PaymentPayload) ToMap() map[string]any {
	return map[string]any{
		"payment_id":  p.PaymentID,
		"document_id": p.DocumentID,
		"amount":      p.Amount,
		"mode":        p.Mode,
	}
}

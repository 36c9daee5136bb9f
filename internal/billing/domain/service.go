package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wrenchworks/torqbill/pkg/db/pagination"
)

// LineItemInput carries one line item on a create request.
type LineItemInput struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	HSNSACCode  string          `json:"hsn_sac_code"`
	Unit        string          `json:"unit"`
	Quantity    decimal.Decimal `json:"quantity"`
	Rate        decimal.Decimal `json:"rate"`
	TaxRate     decimal.Decimal `json:"tax_rate"`
}

type CreateDocumentRequest struct {
	WorkshopID     string
	Type           DocumentType
	CounterpartyID string
	Number         string
	IssueDate      time.Time
	DueDate        *time.Time
	OrderDate      *time.Time
	ExpectedDate   *time.Time
	Currency       string
	DiscountType   DiscountType
	DiscountValue  decimal.Decimal
	TDSApplicable  bool
	TDSRate        decimal.Decimal
	LineItems      []LineItemInput
}

type ListDocumentsRequest struct {
	WorkshopID     string
	Type           DocumentType
	Status         Status
	CounterpartyID string
	PageToken      string
	PageSize       int
}

type ListDocumentsResponse struct {
	pagination.PageInfo
	Documents []Document `json:"documents"`
}

type RecordPaymentRequest struct {
	WorkshopID      string
	DocumentID      string
	Amount          decimal.Decimal
	Mode            PaymentMode
	ReferenceNumber string
	IdempotencyKey  string
	PaidAt          time.Time
	Notes           string
}

type AgingReportRequest struct {
	WorkshopID string
	AsOf       time.Time
}

// AgingReportRow is one counterparty's outstanding position.
type AgingReportRow struct {
	CounterpartyID   string `json:"counterparty_id"`
	CounterpartyName string `json:"counterparty_name"`
	Aging
}

type AgingReportResponse struct {
	AsOf  time.Time        `json:"as_of"`
	Total Aging            `json:"total"`
	Rows  []AgingReportRow `json:"rows"`
}

// Service owns the document lifecycle: creation, status transitions,
// payment recording, and receivables/payables aging.
type Service interface {
	Create(ctx context.Context, req CreateDocumentRequest) (Document, error)
	GetByID(ctx context.Context, workshopID, id string) (Document, error)
	List(ctx context.Context, req ListDocumentsRequest) (ListDocumentsResponse, error)

	// Transition applies a deterministic lifecycle action (open, issue,
	// receive, void). record_payment and convert_to_bill have dedicated
	// entry points because they carry extra inputs or side effects.
	Transition(ctx context.Context, workshopID, id string, action Action, reason string) (Document, error)

	// ConvertToBill converts a purchase order into a draft bill exactly
	// once, atomically marking the order billed.
	ConvertToBill(ctx context.Context, workshopID, purchaseOrderID string) (Document, error)

	RecordPayment(ctx context.Context, req RecordPaymentRequest) (Document, error)
	ListPayments(ctx context.Context, workshopID, documentID string) ([]Payment, error)

	AgingReport(ctx context.Context, req AgingReportRequest) (AgingReportResponse, error)
}

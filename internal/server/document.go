package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	billingdomain "github.com/wrenchworks/torqbill/internal/billing/domain"
	"github.com/wrenchworks/torqbill/pkg/db/pagination"
)

type lineItemRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	HSNSACCode  string          `json:"hsn_sac_code"`
	Unit        string          `json:"unit"`
	Quantity    decimal.Decimal `json:"quantity"`
	Rate        decimal.Decimal `json:"rate"`
	TaxRate     decimal.Decimal `json:"tax_rate"`
}

type createDocumentRequest struct {
	Type           string            `json:"type"`
	CounterpartyID string            `json:"counterparty_id"`
	Number         string            `json:"number"`
	IssueDate      string            `json:"issue_date"`
	DueDate        string            `json:"due_date"`
	OrderDate      string            `json:"order_date"`
	ExpectedDate   string            `json:"expected_date"`
	Currency       string            `json:"currency"`
	DiscountType   string            `json:"discount_type"`
	DiscountValue  decimal.Decimal   `json:"discount_value"`
	TDSApplicable  bool              `json:"tds_applicable"`
	TDSRate        decimal.Decimal   `json:"tds_rate"`
	LineItems      []lineItemRequest `json:"line_items"`
}

// @Summary      Create Document
// @Description  Create a draft bill or purchase order
// @Tags         documents
// @Accept       json
// @Produce      json
// @Security     ApiKeyAuth
// @Param        request body createDocumentRequest true "Create Document Request"
// @Success      200  {object}  billingdomain.Document
// @Router       /documents [post]
func (s *Server) CreateDocument(c *gin.Context) {
	var req createDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	issueDate, err := parseOptionalDate(req.IssueDate)
	if err != nil {
		AbortWithError(c, newValidationError("issue_date", "invalid_date", "invalid issue_date"))
		return
	}
	dueDate, err := parseOptionalDatePtr(req.DueDate)
	if err != nil {
		AbortWithError(c, newValidationError("due_date", "invalid_date", "invalid due_date"))
		return
	}
	orderDate, err := parseOptionalDatePtr(req.OrderDate)
	if err != nil {
		AbortWithError(c, newValidationError("order_date", "invalid_date", "invalid order_date"))
		return
	}
	expectedDate, err := parseOptionalDatePtr(req.ExpectedDate)
	if err != nil {
		AbortWithError(c, newValidationError("expected_date", "invalid_date", "invalid expected_date"))
		return
	}

	items := make([]billingdomain.LineItemInput, 0, len(req.LineItems))
	for _, item := range req.LineItems {
		items = append(items, billingdomain.LineItemInput{
			Name:        item.Name,
			Description: item.Description,
			HSNSACCode:  item.HSNSACCode,
			Unit:        item.Unit,
			Quantity:    item.Quantity,
			Rate:        item.Rate,
			TaxRate:     item.TaxRate,
		})
	}

	resp, err := s.billingSvc.Create(c.Request.Context(), billingdomain.CreateDocumentRequest{
		WorkshopID:     s.workshopID(c),
		Type:           billingdomain.DocumentType(strings.TrimSpace(req.Type)),
		CounterpartyID: req.CounterpartyID,
		Number:         req.Number,
		IssueDate:      issueDate,
		DueDate:        dueDate,
		OrderDate:      orderDate,
		ExpectedDate:   expectedDate,
		Currency:       req.Currency,
		DiscountType:   billingdomain.DiscountType(strings.TrimSpace(req.DiscountType)),
		DiscountValue:  req.DiscountValue,
		TDSApplicable:  req.TDSApplicable,
		TDSRate:        req.TDSRate,
		LineItems:      items,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      List Documents
// @Description  List bills and purchase orders
// @Tags         documents
// @Produce      json
// @Security     ApiKeyAuth
// @Param        type            query  string  false  "Document Type"
// @Param        status          query  string  false  "Status"
// @Param        counterparty_id query  string  false  "Counterparty ID"
// @Param        page_token      query  string  false  "Page Token"
// @Param        page_size       query  int     false  "Page Size"
// @Success      200  {object}  billingdomain.ListDocumentsResponse
// @Router       /documents [get]
func (s *Server) ListDocuments(c *gin.Context) {
	var query struct {
		pagination.Pagination
		Type           string `form:"type"`
		Status         string `form:"status"`
		CounterpartyID string `form:"counterparty_id"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.billingSvc.List(c.Request.Context(), billingdomain.ListDocumentsRequest{
		WorkshopID:     s.workshopID(c),
		Type:           billingdomain.DocumentType(strings.TrimSpace(query.Type)),
		Status:         billingdomain.Status(strings.TrimSpace(query.Status)),
		CounterpartyID: query.CounterpartyID,
		PageToken:      query.PageToken,
		PageSize:       query.PageSize,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      Get Document
// @Description  Get a document with its line items
// @Tags         documents
// @Produce      json
// @Security     ApiKeyAuth
// @Param        id   path      string  true  "Document ID"
// @Success      200  {object}  billingdomain.Document
// @Router       /documents/{id} [get]
func (s *Server) GetDocument(c *gin.Context) {
	resp, err := s.billingSvc.GetByID(c.Request.Context(), s.workshopID(c), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) transitionHandler(action billingdomain.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		resp, err := s.billingSvc.Transition(c.Request.Context(), s.workshopID(c), c.Param("id"), action, "")
		if err != nil {
			AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": resp})
	}
}

type voidDocumentRequest struct {
	Reason string `json:"reason"`
}

// @Summary      Void Document
// @Description  Void a document with a mandatory reason
// @Tags         documents
// @Accept       json
// @Produce      json
// @Security     ApiKeyAuth
// @Param        id      path  string              true  "Document ID"
// @Param        request body  voidDocumentRequest true  "Void Request"
// @Success      200  {object}  billingdomain.Document
// @Router       /documents/{id}/void [post]
func (s *Server) VoidDocument(c *gin.Context) {
	var req voidDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.billingSvc.Transition(c.Request.Context(), s.workshopID(c), c.Param("id"), billingdomain.ActionVoid, req.Reason)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      Convert Purchase Order
// @Description  Convert an issued or received purchase order into a draft bill
// @Tags         documents
// @Produce      json
// @Security     ApiKeyAuth
// @Param        id   path      string  true  "Purchase Order ID"
// @Success      200  {object}  billingdomain.Document
// @Router       /documents/{id}/convert [post]
func (s *Server) ConvertToBill(c *gin.Context) {
	resp, err := s.billingSvc.ConvertToBill(c.Request.Context(), s.workshopID(c), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type recordPaymentRequest struct {
	Amount          decimal.Decimal `json:"amount"`
	Mode            string          `json:"mode"`
	ReferenceNumber string          `json:"reference_number"`
	IdempotencyKey  string          `json:"idempotency_key"`
	PaidAt          string          `json:"paid_at"`
	Notes           string          `json:"notes"`
}

// @Summary      Record Payment
// @Description  Record a payment against an open bill
// @Tags         payments
// @Accept       json
// @Produce      json
// @Security     ApiKeyAuth
// @Param        id      path  string               true  "Bill ID"
// @Param        request body  recordPaymentRequest true  "Record Payment Request"
// @Success      200  {object}  billingdomain.Document
// @Router       /documents/{id}/payments [post]
func (s *Server) RecordPayment(c *gin.Context) {
	if !s.paymentLimiter.Allow(s.workshopID(c)) {
		AbortWithError(c, ErrTooMany)
		return
	}

	var req recordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	paidAt, err := parseOptionalDate(req.PaidAt)
	if err != nil {
		AbortWithError(c, newValidationError("paid_at", "invalid_date", "invalid paid_at"))
		return
	}

	resp, err := s.billingSvc.RecordPayment(c.Request.Context(), billingdomain.RecordPaymentRequest{
		WorkshopID:      s.workshopID(c),
		DocumentID:      c.Param("id"),
		Amount:          req.Amount,
		Mode:            billingdomain.PaymentMode(strings.TrimSpace(req.Mode)),
		ReferenceNumber: req.ReferenceNumber,
		IdempotencyKey:  req.IdempotencyKey,
		PaidAt:          paidAt,
		Notes:           req.Notes,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      List Payments
// @Description  List payments recorded against a document
// @Tags         payments
// @Produce      json
// @Security     ApiKeyAuth
// @Param        id   path      string  true  "Document ID"
// @Success      200  {object}  []billingdomain.Payment
// @Router       /documents/{id}/payments [get]
func (s *Server) ListPayments(c *gin.Context) {
	resp, err := s.billingSvc.ListPayments(c.Request.Context(), s.workshopID(c), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func parseOptionalDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	if parsed, err := time.Parse("2006-01-02", value); err == nil {
		return parsed.UTC(), nil
	}
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, err
	}
	return parsed.UTC(), nil
}

func parseOptionalDatePtr(value string) (*time.Time, error) {
	parsed, err := parseOptionalDate(value)
	if err != nil {
		return nil, err
	}
	if parsed.IsZero() {
		return nil, nil
	}
	return &parsed, nil
}

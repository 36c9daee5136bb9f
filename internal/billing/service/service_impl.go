package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	auditdomain "github.com/wrenchworks/torqbill/internal/audit/domain"
	billingdomain "github.com/wrenchworks/torqbill/internal/billing/domain"
	"github.com/wrenchworks/torqbill/internal/clock"
	"github.com/wrenchworks/torqbill/internal/events"
	ledgerdomain "github.com/wrenchworks/torqbill/internal/ledger/domain"
	"github.com/wrenchworks/torqbill/pkg/db/pagination"
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Clock     clock.Clock
	LedgerSvc ledgerdomain.Service
	AuditSvc  auditdomain.Service
	Outbox    *events.Outbox
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	clock     clock.Clock
	ledgerSvc ledgerdomain.Service
	auditSvc  auditdomain.Service
	outbox    *events.Outbox
}

func NewService(p Params) billingdomain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("billing.service"),
		genID:     p.GenID,
		clock:     p.Clock,
		ledgerSvc: p.LedgerSvc,
		auditSvc:  p.AuditSvc,
		outbox:    p.Outbox,
	}
}

func (s *Service) Create(ctx context.Context, req billingdomain.CreateDocumentRequest) (billingdomain.Document, error) {
	workshopID, err := parseID(req.WorkshopID)
	if err != nil {
		return billingdomain.Document{}, billingdomain.ErrInvalidWorkshop
	}
	counterpartyID, err := parseID(req.CounterpartyID)
	if err != nil {
		return billingdomain.Document{}, billingdomain.ErrInvalidCounterparty
	}
	if req.Type != billingdomain.DocumentTypeBill && req.Type != billingdomain.DocumentTypePurchaseOrder {
		return billingdomain.Document{}, billingdomain.ErrInvalidDocument
	}
	if len(req.LineItems) == 0 {
		return billingdomain.Document{}, billingdomain.ErrInvalidLineItem
	}

	items := make([]billingdomain.LineItem, 0, len(req.LineItems))
	for _, input := range req.LineItems {
		items = append(items, billingdomain.LineItem{
			Name:        strings.TrimSpace(input.Name),
			Description: strings.TrimSpace(input.Description),
			HSNSACCode:  strings.TrimSpace(input.HSNSACCode),
			Unit:        strings.TrimSpace(input.Unit),
			Quantity:    input.Quantity,
			Rate:        input.Rate,
			TaxRate:     input.TaxRate,
		})
	}

	discountType := req.DiscountType
	if discountType == "" {
		discountType = billingdomain.DiscountTypeFlat
	}
	totals, err := billingdomain.ComputeTotals(items, discountType, req.DiscountValue, req.TDSApplicable, req.TDSRate)
	if err != nil {
		return billingdomain.Document{}, err
	}

	now := s.clock.Now()
	docID := s.genID.Generate()

	issueDate := req.IssueDate
	if issueDate.IsZero() {
		issueDate = now
	}
	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = "INR"
	}
	number := strings.TrimSpace(req.Number)
	if number == "" {
		number = defaultNumber(req.Type, docID)
	}

	doc := billingdomain.Document{
		ID:             docID,
		WorkshopID:     workshopID,
		Type:           req.Type,
		CounterpartyID: counterpartyID,
		Number:         number,
		Status:         billingdomain.InitialStatus,
		IssueDate:      issueDate,
		DueDate:        req.DueDate,
		OrderDate:      req.OrderDate,
		ExpectedDate:   req.ExpectedDate,
		Currency:       currency,
		DiscountType:   discountType,
		DiscountValue:  req.DiscountValue,
		TDSApplicable:  req.TDSApplicable,
		TDSRate:        req.TDSRate,
		SubTotal:       totals.SubTotal,
		TaxTotal:       totals.TaxTotal,
		DiscountAmount: totals.Discount,
		TDSAmount:      totals.TDSAmount,
		GrandTotal:     totals.GrandTotal,
		AmountPaid:     decimal.Zero,
		Metadata:       datatypes.JSONMap{},
		Version:        1,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("LineItems").Create(&doc).Error; err != nil {
			return err
		}
		for i := range items {
			valuation, err := billingdomain.Valuate(items[i])
			if err != nil {
				return err
			}
			items[i].ID = s.genID.Generate()
			items[i].DocumentID = docID
			items[i].Amount = valuation.Amount
			items[i].Tax = valuation.Tax
			items[i].Total = valuation.Total
			items[i].CreatedAt = now
			if err := tx.Create(&items[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return billingdomain.Document{}, err
	}

	doc.LineItems = items
	return doc, nil
}

func (s *Service) GetByID(ctx context.Context, workshopID, id string) (billingdomain.Document, error) {
	wid, err := parseID(workshopID)
	if err != nil {
		return billingdomain.Document{}, billingdomain.ErrInvalidWorkshop
	}
	docID, err := parseID(id)
	if err != nil {
		return billingdomain.Document{}, billingdomain.ErrInvalidDocumentID
	}

	var doc billingdomain.Document
	if err := s.db.WithContext(ctx).
		Preload("LineItems").
		Where("workshop_id = ? AND id = ?", wid, docID).
		Take(&doc).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return billingdomain.Document{}, billingdomain.ErrDocumentNotFound
		}
		return billingdomain.Document{}, err
	}
	return doc, nil
}

func (s *Service) List(ctx context.Context, req billingdomain.ListDocumentsRequest) (billingdomain.ListDocumentsResponse, error) {
	wid, err := parseID(req.WorkshopID)
	if err != nil {
		return billingdomain.ListDocumentsResponse{}, billingdomain.ErrInvalidWorkshop
	}

	query := s.db.WithContext(ctx).
		Model(&billingdomain.Document{}).
		Where("workshop_id = ?", wid)
	if req.Type != "" {
		query = query.Where("type = ?", req.Type)
	}
	if req.Status != "" {
		query = query.Where("status = ?", req.Status)
	}
	if strings.TrimSpace(req.CounterpartyID) != "" {
		counterpartyID, err := parseID(req.CounterpartyID)
		if err != nil {
			return billingdomain.ListDocumentsResponse{}, billingdomain.ErrInvalidCounterparty
		}
		query = query.Where("counterparty_id = ?", counterpartyID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return billingdomain.ListDocumentsResponse{}, err
	}

	page := pagination.Pagination{PageToken: req.PageToken, PageSize: req.PageSize}
	limit := page.Limit()
	offset := page.Offset()

	var docs []billingdomain.Document
	if err := query.Order("issue_date DESC, id DESC").Limit(limit).Offset(offset).Find(&docs).Error; err != nil {
		return billingdomain.ListDocumentsResponse{}, err
	}

	return billingdomain.ListDocumentsResponse{
		PageInfo: pagination.PageInfo{
			NextPageToken: pagination.NextToken(offset, limit, total),
			TotalSize:     total,
		},
		Documents: docs,
	}, nil
}

func (s *Service) Transition(ctx context.Context, workshopID, id string, action billingdomain.Action, reason string) (billingdomain.Document, error) {
	wid, err := parseID(workshopID)
	if err != nil {
		return billingdomain.Document{}, billingdomain.ErrInvalidWorkshop
	}
	docID, err := parseID(id)
	if err != nil {
		return billingdomain.Document{}, billingdomain.ErrInvalidDocumentID
	}

	var updated billingdomain.Document
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		doc, err := s.lockDocument(ctx, tx, wid, docID)
		if err != nil {
			return err
		}
		if err := billingdomain.CanApply(doc.Type, doc.Status, action); err != nil {
			return err
		}

		now := s.clock.Now()
		var next billingdomain.Status
		switch action {
		case billingdomain.ActionOpen:
			next = billingdomain.StatusOpen
		case billingdomain.ActionIssue:
			next = billingdomain.StatusIssued
		case billingdomain.ActionReceive:
			next = billingdomain.StatusReceived
		case billingdomain.ActionVoid:
			if strings.TrimSpace(reason) == "" {
				return billingdomain.ErrVoidReasonRequired
			}
			next = billingdomain.StatusVoid
		default:
			return &billingdomain.TransitionError{DocumentType: doc.Type, From: doc.Status, Action: action}
		}

		columns := map[string]any{
			"status":     next,
			"version":    doc.Version + 1,
			"updated_at": now,
		}
		var voidReason string
		if action == billingdomain.ActionVoid {
			voidReason = strings.TrimSpace(reason)
			columns["void_reason"] = voidReason
		}
		if err := s.guardedUpdate(ctx, tx, doc, columns); err != nil {
			return err
		}

		switch action {
		case billingdomain.ActionOpen:
			if err := s.postBillOpened(ctx, tx, doc, now); err != nil {
				return err
			}
			if err := s.outbox.PublishTx(ctx, tx, events.Event{
				WorkshopID: doc.WorkshopID,
				Type:       events.EventBillOpened,
				Payload:    documentPayload(doc, next),
				DedupeKey:  "bill_opened:" + doc.ID.String(),
			}); err != nil {
				return err
			}
		case billingdomain.ActionIssue:
			if err := s.outbox.PublishTx(ctx, tx, events.Event{
				WorkshopID: doc.WorkshopID,
				Type:       events.EventPurchaseOrderIssued,
				Payload:    documentPayload(doc, next),
				DedupeKey:  "po_issued:" + doc.ID.String(),
			}); err != nil {
				return err
			}
		case billingdomain.ActionVoid:
			if err := s.postBillVoided(ctx, tx, doc, now); err != nil {
				return err
			}
			if doc.Type == billingdomain.DocumentTypeBill {
				if err := s.outbox.PublishTx(ctx, tx, events.Event{
					WorkshopID: doc.WorkshopID,
					Type:       events.EventBillVoided,
					Payload:    documentPayload(doc, next),
					DedupeKey:  "bill_voided:" + doc.ID.String(),
				}); err != nil {
					return err
				}
			}
		}

		doc.Status = next
		doc.Version++
		doc.UpdatedAt = now
		if action == billingdomain.ActionVoid {
			doc.VoidReason = &voidReason
		}
		updated = doc
		return nil
	})
	if err != nil {
		return billingdomain.Document{}, err
	}

	s.writeAudit(ctx, updated, "document."+string(action), map[string]any{"reason": strings.TrimSpace(reason)})
	return updated, nil
}

func (s *Service) ConvertToBill(ctx context.Context, workshopID, purchaseOrderID string) (billingdomain.Document, error) {
	wid, err := parseID(workshopID)
	if err != nil {
		return billingdomain.Document{}, billingdomain.ErrInvalidWorkshop
	}
	poID, err := parseID(purchaseOrderID)
	if err != nil {
		return billingdomain.Document{}, billingdomain.ErrInvalidDocumentID
	}

	var bill billingdomain.Document
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		po, err := s.lockDocument(ctx, tx, wid, poID)
		if err != nil {
			return err
		}
		if po.Type != billingdomain.DocumentTypePurchaseOrder {
			return billingdomain.ErrInvalidDocument
		}
		if err := billingdomain.CanApply(po.Type, po.Status, billingdomain.ActionConvertToBill); err != nil {
			return err
		}
		if po.LinkedBillID != nil {
			return &billingdomain.TransitionError{DocumentType: po.Type, From: po.Status, Action: billingdomain.ActionConvertToBill}
		}

		var items []billingdomain.LineItem
		if err := tx.WithContext(ctx).
			Where("document_id = ?", po.ID).
			Order("id ASC").
			Find(&items).Error; err != nil {
			return err
		}

		now := s.clock.Now()
		billID := s.genID.Generate()
		bill = billingdomain.Document{
			ID:             billID,
			WorkshopID:     po.WorkshopID,
			Type:           billingdomain.DocumentTypeBill,
			CounterpartyID: po.CounterpartyID,
			Number:         defaultNumber(billingdomain.DocumentTypeBill, billID),
			Status:         billingdomain.InitialStatus,
			IssueDate:      now,
			Currency:       po.Currency,
			DiscountType:   po.DiscountType,
			DiscountValue:  po.DiscountValue,
			TDSApplicable:  po.TDSApplicable,
			TDSRate:        po.TDSRate,
			SubTotal:       po.SubTotal,
			TaxTotal:       po.TaxTotal,
			DiscountAmount: po.DiscountAmount,
			TDSAmount:      po.TDSAmount,
			GrandTotal:     po.GrandTotal,
			AmountPaid:     decimal.Zero,
			Metadata:       datatypes.JSONMap{"purchase_order_id": po.ID.String()},
			Version:        1,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := tx.Omit("LineItems").Create(&bill).Error; err != nil {
			return err
		}
		for _, item := range items {
			copied := item
			copied.ID = s.genID.Generate()
			copied.DocumentID = billID
			copied.CreatedAt = now
			if err := tx.Create(&copied).Error; err != nil {
				return err
			}
		}

		// The linked_bill_id IS NULL guard makes conversion single-shot even
		// if two callers pass the state check concurrently.
		result := tx.WithContext(ctx).Exec(
			`UPDATE documents
			 SET status = ?, linked_bill_id = ?, version = version + 1, updated_at = ?
			 WHERE id = ? AND workshop_id = ? AND status IN (?, ?) AND linked_bill_id IS NULL`,
			billingdomain.StatusBilled,
			billID,
			now,
			po.ID,
			po.WorkshopID,
			billingdomain.StatusIssued,
			billingdomain.StatusReceived,
		)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return billingdomain.ErrConcurrencyConflict
		}

		return s.outbox.PublishTx(ctx, tx, events.Event{
			WorkshopID: po.WorkshopID,
			Type:       events.EventPurchaseOrderConverted,
			Payload: map[string]any{
				"purchase_order_id": po.ID.String(),
				"bill_id":           billID.String(),
			},
			DedupeKey: "po_converted:" + po.ID.String(),
		})
	})
	if err != nil {
		return billingdomain.Document{}, err
	}

	s.writeAudit(ctx, bill, "purchase_order.convert_to_bill", map[string]any{
		"purchase_order_id": purchaseOrderID,
		"bill_id":           bill.ID.String(),
	})
	return bill, nil
}

func (s *Service) RecordPayment(ctx context.Context, req billingdomain.RecordPaymentRequest) (billingdomain.Document, error) {
	wid, err := parseID(req.WorkshopID)
	if err != nil {
		return billingdomain.Document{}, billingdomain.ErrInvalidWorkshop
	}
	docID, err := parseID(req.DocumentID)
	if err != nil {
		return billingdomain.Document{}, billingdomain.ErrInvalidDocumentID
	}
	if !req.Amount.IsPositive() {
		return billingdomain.Document{}, billingdomain.ErrInvalidPayment
	}
	if req.Mode == "" {
		return billingdomain.Document{}, billingdomain.ErrInvalidPayment
	}

	idempotencyKey := strings.TrimSpace(req.IdempotencyKey)
	if idempotencyKey == "" {
		idempotencyKey = uuid.NewString()
	}

	var updated billingdomain.Document
	var payment billingdomain.Payment
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		doc, err := s.lockDocument(ctx, tx, wid, docID)
		if err != nil {
			return err
		}
		if doc.Type != billingdomain.DocumentTypeBill {
			return billingdomain.ErrInvalidDocument
		}
		if err := billingdomain.CanApply(doc.Type, doc.Status, billingdomain.ActionRecordPayment); err != nil {
			return err
		}

		balance := doc.BalanceDue()
		if req.Amount.GreaterThan(balance) {
			return billingdomain.ErrOverpaymentRejected
		}

		var existing int64
		if err := tx.WithContext(ctx).
			Model(&billingdomain.Payment{}).
			Where("idempotency_key = ?", idempotencyKey).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return billingdomain.ErrDuplicatePayment
		}

		now := s.clock.Now()
		paidAt := req.PaidAt
		if paidAt.IsZero() {
			paidAt = now
		}
		payment = billingdomain.Payment{
			ID:              s.genID.Generate(),
			WorkshopID:      doc.WorkshopID,
			DocumentID:      doc.ID,
			Amount:          req.Amount,
			Mode:            req.Mode,
			ReferenceNumber: strings.TrimSpace(req.ReferenceNumber),
			IdempotencyKey:  idempotencyKey,
			Notes:           strings.TrimSpace(req.Notes),
			PaidAt:          paidAt,
			CreatedAt:       now,
		}
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}

		newPaid := doc.AmountPaid.Add(req.Amount)
		next := billingdomain.StatusPartiallyPaid
		if newPaid.GreaterThanOrEqual(doc.GrandTotal) {
			next = billingdomain.StatusPaid
		}

		if err := s.guardedUpdate(ctx, tx, doc, map[string]any{
			"amount_paid": newPaid,
			"status":      next,
			"version":     doc.Version + 1,
			"updated_at":  now,
		}); err != nil {
			return err
		}

		if err := s.postPayment(ctx, tx, doc, payment); err != nil {
			return err
		}

		if err := s.outbox.PublishTx(ctx, tx, events.Event{
			WorkshopID: doc.WorkshopID,
			Type:       events.EventPaymentRecorded,
			Payload: events.PaymentPayload{
				PaymentID:  payment.ID.String(),
				DocumentID: doc.ID.String(),
				Amount:     payment.Amount.String(),
				Mode:       string(payment.Mode),
			}.ToMap(),
			DedupeKey: "payment:" + payment.ID.String(),
		}); err != nil {
			return err
		}
		if next == billingdomain.StatusPaid {
			if err := s.outbox.PublishTx(ctx, tx, events.Event{
				WorkshopID: doc.WorkshopID,
				Type:       events.EventBillPaid,
				Payload:    documentPayload(doc, next),
				DedupeKey:  "bill_paid:" + doc.ID.String(),
			}); err != nil {
				return err
			}
		}

		doc.AmountPaid = newPaid
		doc.Status = next
		doc.Version++
		doc.UpdatedAt = now
		updated = doc
		return nil
	})
	if err != nil {
		return billingdomain.Document{}, err
	}

	s.writeAudit(ctx, updated, "payment.record", map[string]any{
		"payment_id": payment.ID.String(),
		"amount":     payment.Amount.String(),
		"mode":       string(payment.Mode),
	})
	return updated, nil
}

func (s *Service) ListPayments(ctx context.Context, workshopID, documentID string) ([]billingdomain.Payment, error) {
	wid, err := parseID(workshopID)
	if err != nil {
		return nil, billingdomain.ErrInvalidWorkshop
	}
	docID, err := parseID(documentID)
	if err != nil {
		return nil, billingdomain.ErrInvalidDocumentID
	}

	var payments []billingdomain.Payment
	if err := s.db.WithContext(ctx).
		Where("workshop_id = ? AND document_id = ?", wid, docID).
		Order("paid_at ASC, id ASC").
		Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

func (s *Service) AgingReport(ctx context.Context, req billingdomain.AgingReportRequest) (billingdomain.AgingReportResponse, error) {
	wid, err := parseID(req.WorkshopID)
	if err != nil {
		return billingdomain.AgingReportResponse{}, billingdomain.ErrInvalidWorkshop
	}
	asOf := req.AsOf
	if asOf.IsZero() {
		asOf = s.clock.Now()
	}

	var docs []billingdomain.Document
	if err := s.db.WithContext(ctx).
		Where("workshop_id = ? AND type = ? AND status IN (?, ?)",
			wid,
			billingdomain.DocumentTypeBill,
			billingdomain.StatusOpen,
			billingdomain.StatusPartiallyPaid,
		).
		Find(&docs).Error; err != nil {
		return billingdomain.AgingReportResponse{}, err
	}

	names, err := s.counterpartyNames(ctx, wid)
	if err != nil {
		return billingdomain.AgingReportResponse{}, err
	}

	perCounterparty := map[snowflake.ID]billingdomain.Aging{}
	order := make([]snowflake.ID, 0)
	total := billingdomain.Aging{}
	for _, doc := range docs {
		aging := billingdomain.ComputeAging(doc, asOf)
		if _, seen := perCounterparty[doc.CounterpartyID]; !seen {
			order = append(order, doc.CounterpartyID)
		}
		perCounterparty[doc.CounterpartyID] = perCounterparty[doc.CounterpartyID].Add(aging)
		total = total.Add(aging)
	}

	rows := make([]billingdomain.AgingReportRow, 0, len(order))
	for _, counterpartyID := range order {
		rows = append(rows, billingdomain.AgingReportRow{
			CounterpartyID:   counterpartyID.String(),
			CounterpartyName: names[counterpartyID],
			Aging:            perCounterparty[counterpartyID],
		})
	}

	return billingdomain.AgingReportResponse{
		AsOf:  asOf,
		Total: total,
		Rows:  rows,
	}, nil
}

func (s *Service) counterpartyNames(ctx context.Context, workshopID snowflake.ID) (map[snowflake.ID]string, error) {
	var rows []struct {
		ID   snowflake.ID
		Name string
	}
	if err := s.db.WithContext(ctx).
		Table("counterparties").
		Select("id, name").
		Where("workshop_id = ?", workshopID).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	names := make(map[snowflake.ID]string, len(rows))
	for _, row := range rows {
		names[row.ID] = row.Name
	}
	return names, nil
}

// lockDocument loads a document under a row lock. The lock clause is only
// emitted on postgres; sqlite used in tests serializes writers anyway.
func (s *Service) lockDocument(ctx context.Context, tx *gorm.DB, workshopID, docID snowflake.ID) (billingdomain.Document, error) {
	query := tx.WithContext(ctx)
	if tx.Dialector.Name() == "postgres" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var doc billingdomain.Document
	if err := query.
		Where("workshop_id = ? AND id = ?", workshopID, docID).
		Take(&doc).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return billingdomain.Document{}, billingdomain.ErrDocumentNotFound
		}
		return billingdomain.Document{}, err
	}
	if !billingdomain.KnownStatus(doc.Type, doc.Status) {
		return billingdomain.Document{}, billingdomain.ErrInvalidDocument
	}
	return doc, nil
}

// guardedUpdate applies columns only when the document version is unchanged.
// A lost guard means another writer got there first.
func (s *Service) guardedUpdate(ctx context.Context, tx *gorm.DB, doc billingdomain.Document, columns map[string]any) error {
	result := tx.WithContext(ctx).
		Model(&billingdomain.Document{}).
		Where("id = ? AND workshop_id = ? AND version = ?", doc.ID, doc.WorkshopID, doc.Version).
		Updates(columns)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return billingdomain.ErrConcurrencyConflict
	}
	return nil
}

// postBillOpened writes the payable posting for a newly opened bill:
// expense and input tax on the debit side, TDS withheld and the payable
// balance on the credit side.
func (s *Service) postBillOpened(ctx context.Context, tx *gorm.DB, doc billingdomain.Document, now time.Time) error {
	if doc.Type != billingdomain.DocumentTypeBill || !doc.GrandTotal.IsPositive() {
		return nil
	}

	expenseID, err := s.ledgerSvc.EnsureAccount(ctx, tx, doc.WorkshopID, ledgerdomain.AccountCodeExpense, "Expense")
	if err != nil {
		return err
	}
	inputTaxID, err := s.ledgerSvc.EnsureAccount(ctx, tx, doc.WorkshopID, ledgerdomain.AccountCodeInputTax, "Input Tax")
	if err != nil {
		return err
	}
	tdsID, err := s.ledgerSvc.EnsureAccount(ctx, tx, doc.WorkshopID, ledgerdomain.AccountCodeTDSPayable, "TDS Payable")
	if err != nil {
		return err
	}
	payableID, err := s.ledgerSvc.EnsureAccount(ctx, tx, doc.WorkshopID, ledgerdomain.AccountCodeAccountsPayable, "Accounts Payable")
	if err != nil {
		return err
	}

	lines := []ledgerdomain.EntryLine{
		{AccountID: expenseID, Direction: ledgerdomain.EntryDirectionDebit, Amount: doc.SubTotal.Sub(doc.DiscountAmount)},
		{AccountID: inputTaxID, Direction: ledgerdomain.EntryDirectionDebit, Amount: doc.TaxTotal},
		{AccountID: tdsID, Direction: ledgerdomain.EntryDirectionCredit, Amount: doc.TDSAmount},
		{AccountID: payableID, Direction: ledgerdomain.EntryDirectionCredit, Amount: doc.GrandTotal},
	}
	return s.ledgerSvc.CreateEntryTx(ctx, tx, doc.WorkshopID, ledgerdomain.SourceTypeBillOpened, doc.ID, doc.Currency, now, lines)
}

// postBillVoided reverses the remaining payable when an opened bill is
// voided. Draft bills never reached the ledger, so there is nothing to do.
func (s *Service) postBillVoided(ctx context.Context, tx *gorm.DB, doc billingdomain.Document, now time.Time) error {
	if doc.Type != billingdomain.DocumentTypeBill {
		return nil
	}
	if doc.Status != billingdomain.StatusOpen && doc.Status != billingdomain.StatusPartiallyPaid {
		return nil
	}
	balance := doc.BalanceDue()
	if !balance.IsPositive() {
		return nil
	}

	payableID, err := s.ledgerSvc.EnsureAccount(ctx, tx, doc.WorkshopID, ledgerdomain.AccountCodeAccountsPayable, "Accounts Payable")
	if err != nil {
		return err
	}
	expenseID, err := s.ledgerSvc.EnsureAccount(ctx, tx, doc.WorkshopID, ledgerdomain.AccountCodeExpense, "Expense")
	if err != nil {
		return err
	}

	lines := []ledgerdomain.EntryLine{
		{AccountID: payableID, Direction: ledgerdomain.EntryDirectionDebit, Amount: balance},
		{AccountID: expenseID, Direction: ledgerdomain.EntryDirectionCredit, Amount: balance},
	}
	return s.ledgerSvc.CreateEntryTx(ctx, tx, doc.WorkshopID, ledgerdomain.SourceTypeBillVoided, doc.ID, doc.Currency, now, lines)
}

func (s *Service) postPayment(ctx context.Context, tx *gorm.DB, doc billingdomain.Document, payment billingdomain.Payment) error {
	payableID, err := s.ledgerSvc.EnsureAccount(ctx, tx, doc.WorkshopID, ledgerdomain.AccountCodeAccountsPayable, "Accounts Payable")
	if err != nil {
		return err
	}
	cashID, err := s.ledgerSvc.EnsureAccount(ctx, tx, doc.WorkshopID, ledgerdomain.AccountCodeCash, "Cash")
	if err != nil {
		return err
	}

	lines := []ledgerdomain.EntryLine{
		{AccountID: payableID, Direction: ledgerdomain.EntryDirectionDebit, Amount: payment.Amount},
		{AccountID: cashID, Direction: ledgerdomain.EntryDirectionCredit, Amount: payment.Amount},
	}
	return s.ledgerSvc.CreateEntryTx(ctx, tx, doc.WorkshopID, ledgerdomain.SourceTypePayment, payment.ID, doc.Currency, payment.PaidAt, lines)
}

func (s *Service) writeAudit(ctx context.Context, doc billingdomain.Document, action string, extra map[string]any) {
	if s.auditSvc == nil || doc.ID == 0 {
		return
	}
	metadata := map[string]any{
		"document_id":   doc.ID.String(),
		"document_type": string(doc.Type),
		"status":        string(doc.Status),
	}
	for key, value := range extra {
		if key == "" || value == "" {
			continue
		}
		metadata[key] = value
	}
	workshopID := doc.WorkshopID
	targetID := doc.ID.String()
	if err := s.auditSvc.AuditLog(ctx, &workshopID, "", action, "document", &targetID, metadata); err != nil {
		s.log.Warn("audit write failed", zap.String("action", action), zap.Error(err))
	}
}

func documentPayload(doc billingdomain.Document, status billingdomain.Status) map[string]any {
	return events.DocumentPayload{
		DocumentID:     doc.ID.String(),
		DocumentType:   string(doc.Type),
		CounterpartyID: doc.CounterpartyID.String(),
		Status:         string(status),
	}.ToMap()
}

func defaultNumber(docType billingdomain.DocumentType, id snowflake.ID) string {
	prefix := "BILL"
	if docType == billingdomain.DocumentTypePurchaseOrder {
		prefix = "PO"
	}
	return prefix + "-" + id.String()
}

func parseID(value string) (snowflake.ID, error) {
	return snowflake.ParseString(strings.TrimSpace(value))
}

package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	billingdomain "github.com/wrenchworks/torqbill/internal/billing/domain"
	"github.com/wrenchworks/torqbill/internal/clock"
	"github.com/wrenchworks/torqbill/internal/events"
	recurringdomain "github.com/wrenchworks/torqbill/internal/recurring/domain"
	"github.com/wrenchworks/torqbill/pkg/db/pagination"
)

type Params struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	GenID  *snowflake.Node
	Clock  clock.Clock
	Outbox *events.Outbox
}

type Service struct {
	db     *gorm.DB
	log    *zap.Logger
	genID  *snowflake.Node
	clock  clock.Clock
	outbox *events.Outbox
}

func NewService(p Params) recurringdomain.Service {
	return &Service{
		db:     p.DB,
		log:    p.Log.Named("recurring.service"),
		genID:  p.GenID,
		clock:  p.Clock,
		outbox: p.Outbox,
	}
}

func (s *Service) Create(ctx context.Context, req recurringdomain.CreateProfileRequest) (recurringdomain.Profile, error) {
	workshopID, err := snowflake.ParseString(strings.TrimSpace(req.WorkshopID))
	if err != nil {
		return recurringdomain.Profile{}, billingdomain.ErrInvalidWorkshop
	}
	counterpartyID, err := snowflake.ParseString(strings.TrimSpace(req.CounterpartyID))
	if err != nil {
		return recurringdomain.Profile{}, billingdomain.ErrInvalidCounterparty
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return recurringdomain.Profile{}, recurringdomain.ErrInvalidProfile
	}
	if !recurringdomain.ValidFrequency(req.Frequency) {
		return recurringdomain.Profile{}, recurringdomain.ErrInvalidFrequency
	}
	repeatEvery := req.RepeatEvery
	if repeatEvery == 0 {
		repeatEvery = 1
	}
	if repeatEvery < 1 {
		return recurringdomain.Profile{}, recurringdomain.ErrInvalidSchedule
	}
	if req.StartDate.IsZero() {
		return recurringdomain.Profile{}, recurringdomain.ErrInvalidSchedule
	}
	startDate := dateOnly(req.StartDate)
	var endDate *time.Time
	if !req.NeverExpires && req.EndDate != nil {
		end := dateOnly(*req.EndDate)
		if end.Before(startDate) {
			return recurringdomain.Profile{}, recurringdomain.ErrInvalidSchedule
		}
		endDate = &end
	}
	if len(req.LineItems) == 0 {
		return recurringdomain.Profile{}, billingdomain.ErrInvalidLineItem
	}

	items := make([]recurringdomain.ProfileLineItem, 0, len(req.LineItems))
	billingItems := make([]billingdomain.LineItem, 0, len(req.LineItems))
	for _, input := range req.LineItems {
		item := recurringdomain.ProfileLineItem{
			Name:        strings.TrimSpace(input.Name),
			Description: strings.TrimSpace(input.Description),
			HSNSACCode:  strings.TrimSpace(input.HSNSACCode),
			Unit:        strings.TrimSpace(input.Unit),
			Quantity:    input.Quantity,
			Rate:        input.Rate,
			TaxRate:     input.TaxRate,
		}
		items = append(items, item)
		billingItems = append(billingItems, billingdomain.LineItem{
			Name:     item.Name,
			Quantity: item.Quantity,
			Rate:     item.Rate,
			TaxRate:  item.TaxRate,
		})
	}

	discountType := req.DiscountType
	if discountType == "" {
		discountType = billingdomain.DiscountTypeFlat
	}
	// Template inputs must produce a valid bill before any bill exists.
	if _, err := billingdomain.ComputeTotals(billingItems, discountType, req.DiscountValue, req.TDSApplicable, req.TDSRate); err != nil {
		return recurringdomain.Profile{}, err
	}

	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = "INR"
	}

	now := s.clock.Now()
	profile := recurringdomain.Profile{
		ID:             s.genID.Generate(),
		WorkshopID:     workshopID,
		CounterpartyID: counterpartyID,
		Name:           name,
		Frequency:      req.Frequency,
		RepeatEvery:    repeatEvery,
		StartDate:      startDate,
		EndDate:        endDate,
		NeverExpires:   req.NeverExpires || endDate == nil,
		NextBillDate:   startDate,
		Status:         recurringdomain.ProfileStatusActive,
		Currency:       currency,
		DiscountType:   discountType,
		DiscountValue:  req.DiscountValue,
		TDSApplicable:  req.TDSApplicable,
		TDSRate:        req.TDSRate,
		Metadata:       datatypes.JSONMap{},
		Version:        1,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("LineItems").Create(&profile).Error; err != nil {
			return err
		}
		for i := range items {
			items[i].ID = s.genID.Generate()
			items[i].ProfileID = profile.ID
			items[i].CreatedAt = now
			if err := tx.Create(&items[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return recurringdomain.Profile{}, err
	}

	profile.LineItems = items
	return profile, nil
}

func (s *Service) GetByID(ctx context.Context, workshopID, id string) (recurringdomain.Profile, error) {
	wid, err := snowflake.ParseString(strings.TrimSpace(workshopID))
	if err != nil {
		return recurringdomain.Profile{}, billingdomain.ErrInvalidWorkshop
	}
	profileID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return recurringdomain.Profile{}, recurringdomain.ErrProfileNotFound
	}

	var profile recurringdomain.Profile
	if err := s.db.WithContext(ctx).
		Preload("LineItems").
		Where("workshop_id = ? AND id = ?", wid, profileID).
		Take(&profile).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return recurringdomain.Profile{}, recurringdomain.ErrProfileNotFound
		}
		return recurringdomain.Profile{}, err
	}
	return profile, nil
}

func (s *Service) List(ctx context.Context, req recurringdomain.ListProfilesRequest) (recurringdomain.ListProfilesResponse, error) {
	wid, err := snowflake.ParseString(strings.TrimSpace(req.WorkshopID))
	if err != nil {
		return recurringdomain.ListProfilesResponse{}, billingdomain.ErrInvalidWorkshop
	}

	query := s.db.WithContext(ctx).
		Model(&recurringdomain.Profile{}).
		Where("workshop_id = ?", wid)
	if req.Status != "" {
		query = query.Where("status = ?", req.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return recurringdomain.ListProfilesResponse{}, err
	}

	page := pagination.Pagination{PageToken: req.PageToken, PageSize: req.PageSize}
	limit := page.Limit()
	offset := page.Offset()

	var profiles []recurringdomain.Profile
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Offset(offset).Find(&profiles).Error; err != nil {
		return recurringdomain.ListProfilesResponse{}, err
	}

	return recurringdomain.ListProfilesResponse{
		PageInfo: pagination.PageInfo{
			NextPageToken: pagination.NextToken(offset, limit, total),
			TotalSize:     total,
		},
		Profiles: profiles,
	}, nil
}

func (s *Service) Stop(ctx context.Context, workshopID, id string) (recurringdomain.Profile, error) {
	return s.setStatus(ctx, workshopID, id,
		recurringdomain.ProfileStatusActive,
		recurringdomain.ProfileStatusStopped,
		recurringdomain.ErrProfileNotActive,
		nil,
	)
}

func (s *Service) Resume(ctx context.Context, workshopID, id string) (recurringdomain.Profile, error) {
	// Occurrences missed while stopped are skipped, not backfilled: the
	// next bill date jumps to the first occurrence from today onward.
	return s.setStatus(ctx, workshopID, id,
		recurringdomain.ProfileStatusStopped,
		recurringdomain.ProfileStatusActive,
		recurringdomain.ErrProfileNotStopped,
		func(profile *recurringdomain.Profile) error {
			today := dateOnly(s.clock.Now())
			generated := profile.BillsGenerated
			next := profile.NextBillDateAfter(generated)
			for next.Before(today) {
				generated++
				next = profile.NextBillDateAfter(generated)
			}
			if profile.Expired(next) {
				return recurringdomain.ErrProfileExpired
			}
			profile.BillsGenerated = generated
			profile.NextBillDate = next
			return nil
		},
	)
}

func (s *Service) setStatus(
	ctx context.Context,
	workshopID, id string,
	from, to recurringdomain.ProfileStatus,
	stateErr error,
	mutate func(*recurringdomain.Profile) error,
) (recurringdomain.Profile, error) {
	wid, err := snowflake.ParseString(strings.TrimSpace(workshopID))
	if err != nil {
		return recurringdomain.Profile{}, billingdomain.ErrInvalidWorkshop
	}
	profileID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return recurringdomain.Profile{}, recurringdomain.ErrProfileNotFound
	}

	var updated recurringdomain.Profile
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		query := tx.WithContext(ctx)
		if tx.Dialector.Name() == "postgres" {
			query = query.Clauses(clause.Locking{Strength: "UPDATE"})
		}

		var profile recurringdomain.Profile
		if err := query.
			Where("workshop_id = ? AND id = ?", wid, profileID).
			Take(&profile).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return recurringdomain.ErrProfileNotFound
			}
			return err
		}
		if profile.Status != from {
			return stateErr
		}

		profile.Status = to
		if mutate != nil {
			if err := mutate(&profile); err != nil {
				return err
			}
		}

		now := s.clock.Now()
		result := tx.WithContext(ctx).
			Model(&recurringdomain.Profile{}).
			Where("id = ? AND workshop_id = ? AND version = ?", profile.ID, profile.WorkshopID, profile.Version).
			Updates(map[string]any{
				"status":          profile.Status,
				"next_bill_date":  profile.NextBillDate,
				"bills_generated": profile.BillsGenerated,
				"version":         profile.Version + 1,
				"updated_at":      now,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return billingdomain.ErrConcurrencyConflict
		}

		profile.Version++
		profile.UpdatedAt = now
		updated = profile
		return nil
	})
	if err != nil {
		return recurringdomain.Profile{}, err
	}
	return updated, nil
}

func (s *Service) GenerateDue(ctx context.Context, asOf time.Time, batchSize int) (recurringdomain.GenerateResult, error) {
	if asOf.IsZero() {
		asOf = s.clock.Now()
	}
	cutoff := dateOnly(asOf)
	if batchSize <= 0 {
		batchSize = 50
	}

	var result recurringdomain.GenerateResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		query := tx.WithContext(ctx)
		if tx.Dialector.Name() == "postgres" {
			query = query.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"})
		}

		var due []recurringdomain.Profile
		if err := query.
			Where("status = ? AND next_bill_date <= ?", recurringdomain.ProfileStatusActive, cutoff).
			Order("next_bill_date ASC, id ASC").
			Limit(batchSize).
			Find(&due).Error; err != nil {
			return err
		}
		result.Claimed = len(due)

		for i := range due {
			if err := s.generateOne(ctx, tx, &due[i], &result); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return recurringdomain.GenerateResult{}, err
	}

	if result.Claimed > 0 {
		s.log.Info("recurring sweep complete",
			zap.Int("claimed", result.Claimed),
			zap.Int("generated", result.Generated),
			zap.Int("skipped", result.Skipped),
			zap.Int("expired", result.Expired),
		)
	}
	return result, nil
}

func (s *Service) generateOne(ctx context.Context, tx *gorm.DB, profile *recurringdomain.Profile, result *recurringdomain.GenerateResult) error {
	runDate := dateOnly(profile.NextBillDate)
	now := s.clock.Now()
	billID := s.genID.Generate()

	// The unique (profile_id, run_date) pair is the idempotency guard: a
	// second worker racing on the same occurrence inserts zero rows.
	claim := tx.WithContext(ctx).Exec(
		`INSERT INTO recurring_runs (id, profile_id, run_date, document_id, created_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (profile_id, run_date) DO NOTHING`,
		s.genID.Generate(),
		profile.ID,
		runDate,
		billID,
		now,
	)
	if claim.Error != nil {
		return claim.Error
	}

	if claim.RowsAffected > 0 {
		if err := s.createBill(ctx, tx, profile, billID, runDate, now); err != nil {
			return err
		}
		result.Generated++
		result.BillIDs = append(result.BillIDs, billID.String())
	} else {
		result.Skipped++
	}

	generated := profile.BillsGenerated + 1
	next := profile.NextBillDateAfter(generated)
	status := profile.Status
	if profile.Expired(next) {
		status = recurringdomain.ProfileStatusExpired
		result.Expired++
	}

	update := tx.WithContext(ctx).
		Model(&recurringdomain.Profile{}).
		Where("id = ? AND version = ?", profile.ID, profile.Version).
		Updates(map[string]any{
			"bills_generated": generated,
			"next_bill_date":  next,
			"status":          status,
			"version":         profile.Version + 1,
			"updated_at":      now,
		})
	if update.Error != nil {
		return update.Error
	}
	if update.RowsAffected == 0 {
		return billingdomain.ErrConcurrencyConflict
	}
	return nil
}

func (s *Service) createBill(ctx context.Context, tx *gorm.DB, profile *recurringdomain.Profile, billID snowflake.ID, runDate, now time.Time) error {
	var templateItems []recurringdomain.ProfileLineItem
	if err := tx.WithContext(ctx).
		Where("profile_id = ?", profile.ID).
		Order("id ASC").
		Find(&templateItems).Error; err != nil {
		return err
	}
	if len(templateItems) == 0 {
		return billingdomain.ErrInvalidLineItem
	}

	items := make([]billingdomain.LineItem, 0, len(templateItems))
	for _, template := range templateItems {
		items = append(items, billingdomain.LineItem{
			Name:        template.Name,
			Description: template.Description,
			HSNSACCode:  template.HSNSACCode,
			Unit:        template.Unit,
			Quantity:    template.Quantity,
			Rate:        template.Rate,
			TaxRate:     template.TaxRate,
		})
	}

	totals, err := billingdomain.ComputeTotals(items, profile.DiscountType, profile.DiscountValue, profile.TDSApplicable, profile.TDSRate)
	if err != nil {
		return err
	}

	profileID := profile.ID
	bill := billingdomain.Document{
		ID:              billID,
		WorkshopID:      profile.WorkshopID,
		Type:            billingdomain.DocumentTypeBill,
		CounterpartyID:  profile.CounterpartyID,
		Number:          "BILL-" + billID.String(),
		Status:          billingdomain.InitialStatus,
		IssueDate:       runDate,
		Currency:        profile.Currency,
		DiscountType:    profile.DiscountType,
		DiscountValue:   profile.DiscountValue,
		TDSApplicable:   profile.TDSApplicable,
		TDSRate:         profile.TDSRate,
		SubTotal:        totals.SubTotal,
		TaxTotal:        totals.TaxTotal,
		DiscountAmount:  totals.Discount,
		TDSAmount:       totals.TDSAmount,
		GrandTotal:      totals.GrandTotal,
		SourceProfileID: &profileID,
		Metadata:        datatypes.JSONMap{"recurring_profile_id": profileID.String()},
		Version:         1,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := tx.Omit("LineItems").Create(&bill).Error; err != nil {
		return err
	}

	for i := range items {
		valuation, err := billingdomain.Valuate(items[i])
		if err != nil {
			return err
		}
		items[i].ID = s.genID.Generate()
		items[i].DocumentID = billID
		items[i].Amount = valuation.Amount
		items[i].Tax = valuation.Tax
		items[i].Total = valuation.Total
		items[i].CreatedAt = now
		if err := tx.Create(&items[i]).Error; err != nil {
			return err
		}
	}

	return s.outbox.PublishTx(ctx, tx, events.Event{
		WorkshopID: profile.WorkshopID,
		Type:       events.EventRecurringBillGenerated,
		Payload: map[string]any{
			"profile_id": profileID.String(),
			"bill_id":    billID.String(),
			"run_date":   runDate.Format("2006-01-02"),
		},
		DedupeKey: "recurring:" + profileID.String() + ":" + runDate.Format("2006-01-02"),
	})
}

func dateOnly(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

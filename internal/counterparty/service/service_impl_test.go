package service

import (
	"context"
	"errors"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	counterpartydomain "github.com/wrenchworks/torqbill/internal/counterparty/domain"
	"github.com/wrenchworks/torqbill/internal/taxid"
)

func newTestService(t *testing.T) (counterpartydomain.Service, snowflake.ID) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&counterpartydomain.Counterparty{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake: %v", err)
	}

	svc := NewService(Params{DB: db, Log: zap.NewNop(), GenID: node})
	return svc, node.Generate()
}

func TestCreateCounterpartyValidatesGSTIN(t *testing.T) {
	svc, workshopID := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, counterpartydomain.CreateCounterpartyRequest{
		WorkshopID: workshopID.String(),
		Kind:       counterpartydomain.KindVendor,
		Name:       "Apex Auto Spares",
		GSTIN:      " 27aapfu0939f1zv ",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.GSTIN != "27AAPFU0939F1ZV" {
		t.Fatalf("expected normalized gstin, got %q", created.GSTIN)
	}

	_, err = svc.Create(ctx, counterpartydomain.CreateCounterpartyRequest{
		WorkshopID: workshopID.String(),
		Kind:       counterpartydomain.KindVendor,
		Name:       "Bad GSTIN Garage",
		GSTIN:      "27AAPFU0939F1ZW",
	})
	if !errors.Is(err, taxid.ErrInvalidGSTIN) {
		t.Fatalf("expected ErrInvalidGSTIN, got %v", err)
	}
}

func TestCreateCounterpartyRejectsBadInput(t *testing.T) {
	svc, workshopID := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, counterpartydomain.CreateCounterpartyRequest{
		WorkshopID: "not-a-snowflake",
		Kind:       counterpartydomain.KindVendor,
		Name:       "Apex",
	})
	if !errors.Is(err, counterpartydomain.ErrInvalidWorkshop) {
		t.Fatalf("expected ErrInvalidWorkshop, got %v", err)
	}

	_, err = svc.Create(ctx, counterpartydomain.CreateCounterpartyRequest{
		WorkshopID: workshopID.String(),
		Kind:       "supplier",
		Name:       "Apex",
	})
	if !errors.Is(err, counterpartydomain.ErrInvalidKind) {
		t.Fatalf("expected ErrInvalidKind, got %v", err)
	}

	_, err = svc.Create(ctx, counterpartydomain.CreateCounterpartyRequest{
		WorkshopID: workshopID.String(),
		Kind:       counterpartydomain.KindCustomer,
		Name:       "   ",
	})
	if !errors.Is(err, counterpartydomain.ErrInvalidName) {
		t.Fatalf("expected ErrInvalidName, got %v", err)
	}
}

func TestGetByIDUsesLookupCache(t *testing.T) {
	svc, workshopID := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, counterpartydomain.CreateCounterpartyRequest{
		WorkshopID: workshopID.String(),
		Kind:       counterpartydomain.KindVendor,
		Name:       "Apex Auto Spares",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	first, err := svc.GetByID(ctx, workshopID.String(), created.ID.String())
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	// A second lookup is served from the TTL cache.
	second, err := svc.GetByID(ctx, workshopID.String(), created.ID.String())
	if err != nil {
		t.Fatalf("cached get: %v", err)
	}
	if first.ID != second.ID || second.Name != "Apex Auto Spares" {
		t.Fatalf("expected identical cached row, got %+v", second)
	}

	_, err = svc.GetByID(ctx, workshopID.String(), snowflake.ID(99999).String())
	if !errors.Is(err, counterpartydomain.ErrCounterpartyNotFound) {
		t.Fatalf("expected ErrCounterpartyNotFound, got %v", err)
	}
}

func TestListCounterpartiesFilters(t *testing.T) {
	svc, workshopID := newTestService(t)
	ctx := context.Background()

	seedRows := []struct {
		kind counterpartydomain.Kind
		name string
	}{
		{counterpartydomain.KindVendor, "Apex Auto Spares"},
		{counterpartydomain.KindVendor, "Bharat Lubricants"},
		{counterpartydomain.KindCustomer, "City Cabs"},
	}
	for _, row := range seedRows {
		if _, err := svc.Create(ctx, counterpartydomain.CreateCounterpartyRequest{
			WorkshopID: workshopID.String(),
			Kind:       row.kind,
			Name:       row.name,
		}); err != nil {
			t.Fatalf("seed %s: %v", row.name, err)
		}
	}

	resp, err := svc.List(ctx, counterpartydomain.ListCounterpartyRequest{
		WorkshopID: workshopID.String(),
		Kind:       counterpartydomain.KindVendor,
	})
	if err != nil {
		t.Fatalf("list vendors: %v", err)
	}
	if resp.TotalSize != 2 || len(resp.Counterparties) != 2 {
		t.Fatalf("expected 2 vendors, got total=%d rows=%d", resp.TotalSize, len(resp.Counterparties))
	}
	if resp.Counterparties[0].Name != "Apex Auto Spares" {
		t.Fatalf("expected name ordering, got %q", resp.Counterparties[0].Name)
	}

	resp, err = svc.List(ctx, counterpartydomain.ListCounterpartyRequest{
		WorkshopID: workshopID.String(),
		Name:       "City",
	})
	if err != nil {
		t.Fatalf("list by name: %v", err)
	}
	if resp.TotalSize != 1 || resp.Counterparties[0].Kind != counterpartydomain.KindCustomer {
		t.Fatalf("expected the customer row, got %+v", resp.Counterparties)
	}
}

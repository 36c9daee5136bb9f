package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	billingdomain "github.com/wrenchworks/torqbill/internal/billing/domain"
	"github.com/wrenchworks/torqbill/internal/clock"
	"github.com/wrenchworks/torqbill/internal/events"
	recurringdomain "github.com/wrenchworks/torqbill/internal/recurring/domain"
)

type testEnv struct {
	svc        recurringdomain.Service
	db         *gorm.DB
	node       *snowflake.Node
	workshopID snowflake.ID
	vendorID   snowflake.ID
}

func newTestEnv(t *testing.T, at time.Time) *testEnv {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	err = db.AutoMigrate(
		&billingdomain.Document{},
		&billingdomain.LineItem{},
		&recurringdomain.Profile{},
		&recurringdomain.ProfileLineItem{},
		&recurringdomain.Run{},
		&events.OutboxEvent{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}

	node, err := snowflake.NewNode(2)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}

	svc := NewService(Params{
		DB:     db,
		Log:    zap.NewNop(),
		GenID:  node,
		Clock:  clock.FixedClock{At: at},
		Outbox: events.NewOutbox(db, node),
	})

	return &testEnv{
		svc:        svc,
		db:         db,
		node:       node,
		workshopID: node.Generate(),
		vendorID:   node.Generate(),
	}
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func (e *testEnv) createProfile(t *testing.T, start time.Time, end *time.Time) recurringdomain.Profile {
	t.Helper()
	profile, err := e.svc.Create(context.Background(), recurringdomain.CreateProfileRequest{
		WorkshopID:     e.workshopID.String(),
		CounterpartyID: e.vendorID.String(),
		Name:           "Monthly AMC",
		Frequency:      recurringdomain.FrequencyMonthly,
		StartDate:      start,
		EndDate:        end,
		LineItems: []billingdomain.LineItemInput{
			{Name: "Service contract", Quantity: dec("1"), Rate: dec("2000"), TaxRate: dec("18")},
		},
	})
	if err != nil {
		t.Fatalf("create profile: %v", err)
	}
	return profile
}

func (e *testEnv) billsFor(t *testing.T, profileID snowflake.ID) []billingdomain.Document {
	t.Helper()
	var bills []billingdomain.Document
	if err := e.db.
		Where("source_profile_id = ?", profileID).
		Order("issue_date ASC").
		Find(&bills).Error; err != nil {
		t.Fatalf("load bills: %v", err)
	}
	return bills
}

func TestCreateProfileDefaults(t *testing.T) {
	start := time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC)
	env := newTestEnv(t, start)

	profile := env.createProfile(t, start, nil)
	if profile.Status != recurringdomain.ProfileStatusActive {
		t.Fatalf("Status = %s, want active", profile.Status)
	}
	if !profile.NextBillDate.Equal(start) {
		t.Fatalf("NextBillDate = %s, want %s", profile.NextBillDate, start)
	}
	if profile.RepeatEvery != 1 {
		t.Fatalf("RepeatEvery = %d, want 1", profile.RepeatEvery)
	}
	if !profile.NeverExpires {
		t.Fatal("NeverExpires = false, want true with no end date")
	}
}

func TestCreateProfileValidation(t *testing.T) {
	start := time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC)
	env := newTestEnv(t, start)
	ctx := context.Background()

	base := recurringdomain.CreateProfileRequest{
		WorkshopID:     env.workshopID.String(),
		CounterpartyID: env.vendorID.String(),
		Name:           "AMC",
		Frequency:      recurringdomain.FrequencyMonthly,
		StartDate:      start,
		LineItems: []billingdomain.LineItemInput{
			{Name: "Contract", Quantity: dec("1"), Rate: dec("100")},
		},
	}

	bad := base
	bad.Frequency = "fortnightly"
	if _, err := env.svc.Create(ctx, bad); !errors.Is(err, recurringdomain.ErrInvalidFrequency) {
		t.Fatalf("frequency: error = %v, want ErrInvalidFrequency", err)
	}

	bad = base
	end := start.AddDate(0, 0, -1)
	bad.EndDate = &end
	if _, err := env.svc.Create(ctx, bad); !errors.Is(err, recurringdomain.ErrInvalidSchedule) {
		t.Fatalf("end before start: error = %v, want ErrInvalidSchedule", err)
	}

	bad = base
	bad.LineItems = nil
	if _, err := env.svc.Create(ctx, bad); !errors.Is(err, billingdomain.ErrInvalidLineItem) {
		t.Fatalf("no items: error = %v, want ErrInvalidLineItem", err)
	}
}

func TestGenerateDueCreatesBillAndAdvances(t *testing.T) {
	start := time.Date(2024, time.January, 31, 0, 0, 0, 0, time.UTC)
	env := newTestEnv(t, start)
	ctx := context.Background()

	profile := env.createProfile(t, start, nil)

	result, err := env.svc.GenerateDue(ctx, start, 0)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if result.Generated != 1 || result.Skipped != 0 {
		t.Fatalf("result = %+v, want 1 generated", result)
	}

	bills := env.billsFor(t, profile.ID)
	if len(bills) != 1 {
		t.Fatalf("bills = %d, want 1", len(bills))
	}
	bill := bills[0]
	if bill.Status != billingdomain.StatusDraft {
		t.Errorf("bill Status = %s, want draft", bill.Status)
	}
	if !bill.GrandTotal.Equal(dec("2360")) {
		t.Errorf("GrandTotal = %s, want 2360", bill.GrandTotal)
	}
	if !bill.IssueDate.Equal(start) {
		t.Errorf("IssueDate = %s, want %s", bill.IssueDate, start)
	}

	after, err := env.svc.GetByID(ctx, env.workshopID.String(), profile.ID.String())
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if after.BillsGenerated != 1 {
		t.Errorf("BillsGenerated = %d, want 1", after.BillsGenerated)
	}
	wantNext := time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC)
	if !after.NextBillDate.Equal(wantNext) {
		t.Errorf("NextBillDate = %s, want %s", after.NextBillDate.Format("2006-01-02"), wantNext.Format("2006-01-02"))
	}
}

func TestGenerateDueIsIdempotent(t *testing.T) {
	start := time.Date(2024, time.January, 31, 0, 0, 0, 0, time.UTC)
	env := newTestEnv(t, start)
	ctx := context.Background()

	profile := env.createProfile(t, start, nil)

	if _, err := env.svc.GenerateDue(ctx, start, 0); err != nil {
		t.Fatalf("first sweep: %v", err)
	}
	second, err := env.svc.GenerateDue(ctx, start, 0)
	if err != nil {
		t.Fatalf("second sweep: %v", err)
	}
	if second.Claimed != 0 || second.Generated != 0 {
		t.Fatalf("second sweep = %+v, want nothing claimed", second)
	}
	if bills := env.billsFor(t, profile.ID); len(bills) != 1 {
		t.Fatalf("bills = %d, want 1", len(bills))
	}
}

func TestGenerateDueMonthEndSequence(t *testing.T) {
	start := time.Date(2024, time.January, 31, 0, 0, 0, 0, time.UTC)
	env := newTestEnv(t, start)
	ctx := context.Background()

	profile := env.createProfile(t, start, nil)

	// March 31 is past two further occurrences; each sweep generates one
	// bill for the occurrence the profile is parked on.
	dates := []time.Time{
		start,
		time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC),
		time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC),
	}
	asOf := dates[len(dates)-1]
	for range dates {
		if _, err := env.svc.GenerateDue(ctx, asOf, 0); err != nil {
			t.Fatalf("sweep: %v", err)
		}
	}

	bills := env.billsFor(t, profile.ID)
	if len(bills) != len(dates) {
		t.Fatalf("bills = %d, want %d", len(bills), len(dates))
	}
	for i, want := range dates {
		if !bills[i].IssueDate.Equal(want) {
			t.Errorf("bill %d IssueDate = %s, want %s", i, bills[i].IssueDate.Format("2006-01-02"), want.Format("2006-01-02"))
		}
	}
}

func TestGenerateDueExpiresProfile(t *testing.T) {
	start := time.Date(2026, time.January, 31, 0, 0, 0, 0, time.UTC)
	env := newTestEnv(t, start)
	ctx := context.Background()

	end := time.Date(2026, time.February, 15, 0, 0, 0, 0, time.UTC)
	profile := env.createProfile(t, start, &end)

	result, err := env.svc.GenerateDue(ctx, start, 0)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if result.Generated != 1 || result.Expired != 1 {
		t.Fatalf("result = %+v, want 1 generated 1 expired", result)
	}

	after, err := env.svc.GetByID(ctx, env.workshopID.String(), profile.ID.String())
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if after.Status != recurringdomain.ProfileStatusExpired {
		t.Fatalf("Status = %s, want expired", after.Status)
	}
}

func TestStopAndResume(t *testing.T) {
	start := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	env := newTestEnv(t, start)
	ctx := context.Background()

	profile := env.createProfile(t, start, nil)

	stopped, err := env.svc.Stop(ctx, env.workshopID.String(), profile.ID.String())
	if err != nil {
		t.Fatalf("stop: %v", err)
	}
	if stopped.Status != recurringdomain.ProfileStatusStopped {
		t.Fatalf("Status = %s, want stopped", stopped.Status)
	}
	if _, err := env.svc.Stop(ctx, env.workshopID.String(), profile.ID.String()); !errors.Is(err, recurringdomain.ErrProfileNotActive) {
		t.Fatalf("double stop: error = %v, want ErrProfileNotActive", err)
	}

	// Stopped profiles are skipped by the sweep.
	result, err := env.svc.GenerateDue(ctx, start, 0)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if result.Claimed != 0 {
		t.Fatalf("claimed = %d, want 0", result.Claimed)
	}

	resumed, err := env.svc.Resume(ctx, env.workshopID.String(), profile.ID.String())
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	if resumed.Status != recurringdomain.ProfileStatusActive {
		t.Fatalf("Status = %s, want active", resumed.Status)
	}
	if _, err := env.svc.Resume(ctx, env.workshopID.String(), profile.ID.String()); !errors.Is(err, recurringdomain.ErrProfileNotStopped) {
		t.Fatalf("double resume: error = %v, want ErrProfileNotStopped", err)
	}
}

func TestResumeSkipsMissedOccurrences(t *testing.T) {
	start := time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC)
	// Today is months past the start; the missed January-April dates are
	// not backfilled on resume.
	today := time.Date(2026, time.May, 1, 0, 0, 0, 0, time.UTC)
	env := newTestEnv(t, today)
	ctx := context.Background()

	profile := env.createProfile(t, start, nil)
	if _, err := env.svc.Stop(ctx, env.workshopID.String(), profile.ID.String()); err != nil {
		t.Fatalf("stop: %v", err)
	}

	resumed, err := env.svc.Resume(ctx, env.workshopID.String(), profile.ID.String())
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	wantNext := time.Date(2026, time.May, 15, 0, 0, 0, 0, time.UTC)
	if !resumed.NextBillDate.Equal(wantNext) {
		t.Fatalf("NextBillDate = %s, want %s", resumed.NextBillDate.Format("2006-01-02"), wantNext.Format("2006-01-02"))
	}
}

func TestListProfilesByStatus(t *testing.T) {
	start := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	env := newTestEnv(t, start)
	ctx := context.Background()

	first := env.createProfile(t, start, nil)
	env.createProfile(t, start, nil)
	if _, err := env.svc.Stop(ctx, env.workshopID.String(), first.ID.String()); err != nil {
		t.Fatalf("stop: %v", err)
	}

	resp, err := env.svc.List(ctx, recurringdomain.ListProfilesRequest{
		WorkshopID: env.workshopID.String(),
		Status:     recurringdomain.ProfileStatusActive,
	})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if resp.TotalSize != 1 {
		t.Fatalf("active profiles = %d, want 1", resp.TotalSize)
	}
}

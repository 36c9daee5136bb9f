package domain

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	billingdomain "github.com/wrenchworks/torqbill/internal/billing/domain"
	"github.com/wrenchworks/torqbill/pkg/db/pagination"
)

var (
	ErrInvalidProfile    = errors.New("invalid_profile")
	ErrInvalidFrequency  = errors.New("invalid_frequency")
	ErrInvalidSchedule   = errors.New("invalid_schedule")
	ErrProfileNotFound   = errors.New("profile_not_found")
	ErrProfileNotActive  = errors.New("profile_not_active")
	ErrProfileNotStopped = errors.New("profile_not_stopped")
	ErrProfileExpired    = errors.New("profile_expired")
)

type CreateProfileRequest struct {
	WorkshopID     string
	CounterpartyID string
	Name           string
	Frequency      Frequency
	RepeatEvery    int
	StartDate      time.Time
	EndDate        *time.Time
	NeverExpires   bool
	Currency       string
	DiscountType   billingdomain.DiscountType
	DiscountValue  decimal.Decimal
	TDSApplicable  bool
	TDSRate        decimal.Decimal
	LineItems      []billingdomain.LineItemInput
}

type ListProfilesRequest struct {
	WorkshopID string
	Status     ProfileStatus
	PageToken  string
	PageSize   int
}

type ListProfilesResponse struct {
	pagination.PageInfo
	Profiles []Profile `json:"profiles"`
}

// GenerateResult summarizes one generation sweep.
type GenerateResult struct {
	Claimed   int      `json:"claimed"`
	Generated int      `json:"generated"`
	Skipped   int      `json:"skipped"`
	Expired   int      `json:"expired"`
	BillIDs   []string `json:"bill_ids,omitempty"`
}

// Service manages recurring bill profiles and runs the generation sweep.
type Service interface {
	Create(ctx context.Context, req CreateProfileRequest) (Profile, error)
	GetByID(ctx context.Context, workshopID, id string) (Profile, error)
	List(ctx context.Context, req ListProfilesRequest) (ListProfilesResponse, error)

	// Stop pauses an active profile; Resume reactivates a stopped one.
	// Resuming skips occurrences that fell due while stopped.
	Stop(ctx context.Context, workshopID, id string) (Profile, error)
	Resume(ctx context.Context, workshopID, id string) (Profile, error)

	// GenerateDue creates draft bills for every active profile whose next
	// bill date is not after asOf. Safe to call concurrently; each
	// (profile, date) pair generates at most one bill.
	GenerateDue(ctx context.Context, asOf time.Time, batchSize int) (GenerateResult, error)
}

package domain

import (
	"context"
	"errors"

	"github.com/wrenchworks/torqbill/pkg/db/pagination"
)

type CreateCounterpartyRequest struct {
	WorkshopID     string
	Kind           Kind
	Name           string
	Email          string
	Phone          string
	GSTIN          string
	BillingAddress string
}

type ListCounterpartyRequest struct {
	WorkshopID string
	Kind       Kind
	Name       string
	PageToken  string
	PageSize   int
}

type ListCounterpartyResponse struct {
	pagination.PageInfo
	Counterparties []Counterparty `json:"counterparties"`
}

type Service interface {
	Create(ctx context.Context, req CreateCounterpartyRequest) (Counterparty, error)
	GetByID(ctx context.Context, workshopID, id string) (Counterparty, error)
	List(ctx context.Context, req ListCounterpartyRequest) (ListCounterpartyResponse, error)
}

var (
	ErrInvalidWorkshop      = errors.New("invalid_workshop")
	ErrInvalidKind          = errors.New("invalid_counterparty_kind")
	ErrInvalidName          = errors.New("invalid_name")
	ErrInvalidID            = errors.New("invalid_counterparty_id")
	ErrCounterpartyNotFound = errors.New("counterparty_not_found")
)

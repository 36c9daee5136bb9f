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

	"github.com/wrenchworks/torqbill/internal/cache"
	counterpartydomain "github.com/wrenchworks/torqbill/internal/counterparty/domain"
	"github.com/wrenchworks/torqbill/internal/taxid"
	"github.com/wrenchworks/torqbill/pkg/db/pagination"
)

const lookupCacheTTL = 30 * time.Second

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
}

type Service struct {
	db     *gorm.DB
	log    *zap.Logger
	genID  *snowflake.Node
	lookup *cache.TTLCache[snowflake.ID, counterpartydomain.Counterparty]
}

func NewService(p Params) counterpartydomain.Service {
	return &Service{
		db:     p.DB,
		log:    p.Log.Named("counterparty.service"),
		genID:  p.GenID,
		lookup: cache.NewTTLCache[snowflake.ID, counterpartydomain.Counterparty](),
	}
}

func (s *Service) Create(ctx context.Context, req counterpartydomain.CreateCounterpartyRequest) (counterpartydomain.Counterparty, error) {
	workshopID, err := parseID(req.WorkshopID)
	if err != nil {
		return counterpartydomain.Counterparty{}, counterpartydomain.ErrInvalidWorkshop
	}
	if req.Kind != counterpartydomain.KindVendor && req.Kind != counterpartydomain.KindCustomer {
		return counterpartydomain.Counterparty{}, counterpartydomain.ErrInvalidKind
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return counterpartydomain.Counterparty{}, counterpartydomain.ErrInvalidName
	}
	gstin := taxid.NormalizeGSTIN(req.GSTIN)
	if err := taxid.ValidateGSTIN(gstin); err != nil {
		return counterpartydomain.Counterparty{}, err
	}

	now := time.Now().UTC()
	row := counterpartydomain.Counterparty{
		ID:             s.genID.Generate(),
		WorkshopID:     workshopID,
		Kind:           req.Kind,
		Name:           name,
		Email:          strings.TrimSpace(req.Email),
		Phone:          strings.TrimSpace(req.Phone),
		GSTIN:          gstin,
		BillingAddress: strings.TrimSpace(req.BillingAddress),
		Metadata:       datatypes.JSONMap{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return counterpartydomain.Counterparty{}, err
	}
	return row, nil
}

func (s *Service) GetByID(ctx context.Context, workshopID, id string) (counterpartydomain.Counterparty, error) {
	wid, err := parseID(workshopID)
	if err != nil {
		return counterpartydomain.Counterparty{}, counterpartydomain.ErrInvalidWorkshop
	}
	cid, err := parseID(id)
	if err != nil {
		return counterpartydomain.Counterparty{}, counterpartydomain.ErrInvalidID
	}

	if cached, ok := s.lookup.Get(cid); ok && cached.WorkshopID == wid {
		return cached, nil
	}

	var row counterpartydomain.Counterparty
	if err := s.db.WithContext(ctx).
		Where("workshop_id = ? AND id = ?", wid, cid).
		Take(&row).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return counterpartydomain.Counterparty{}, counterpartydomain.ErrCounterpartyNotFound
		}
		return counterpartydomain.Counterparty{}, err
	}

	s.lookup.Set(cid, row, lookupCacheTTL)
	return row, nil
}

func (s *Service) List(ctx context.Context, req counterpartydomain.ListCounterpartyRequest) (counterpartydomain.ListCounterpartyResponse, error) {
	wid, err := parseID(req.WorkshopID)
	if err != nil {
		return counterpartydomain.ListCounterpartyResponse{}, counterpartydomain.ErrInvalidWorkshop
	}

	query := s.db.WithContext(ctx).
		Model(&counterpartydomain.Counterparty{}).
		Where("workshop_id = ?", wid)
	if req.Kind != "" {
		query = query.Where("kind = ?", req.Kind)
	}
	if name := strings.TrimSpace(req.Name); name != "" {
		query = query.Where("name LIKE ?", name+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return counterpartydomain.ListCounterpartyResponse{}, err
	}

	page := pagination.Pagination{PageToken: req.PageToken, PageSize: req.PageSize}
	limit := page.Limit()
	offset := page.Offset()

	var rows []counterpartydomain.Counterparty
	if err := query.Order("name ASC, id ASC").Limit(limit).Offset(offset).Find(&rows).Error; err != nil {
		return counterpartydomain.ListCounterpartyResponse{}, err
	}

	return counterpartydomain.ListCounterpartyResponse{
		PageInfo: pagination.PageInfo{
			NextPageToken: pagination.NextToken(offset, limit, total),
			TotalSize:     total,
		},
		Counterparties: rows,
	}, nil
}

func parseID(value string) (snowflake.ID, error) {
	return snowflake.ParseString(strings.TrimSpace(value))
}

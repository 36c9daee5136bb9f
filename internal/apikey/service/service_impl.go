package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	apikeydomain "github.com/wrenchworks/torqbill/internal/apikey/domain"
	"github.com/wrenchworks/torqbill/internal/clock"
)

const tokenPrefix = "tbk_"

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  apikeydomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  apikeydomain.Repository
}

func New(p Params) apikeydomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("apikey.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, workshopID, name string, expiresAt *time.Time) (apikeydomain.CreatedKey, error) {
	wid, err := snowflake.ParseString(strings.TrimSpace(workshopID))
	if err != nil {
		return apikeydomain.CreatedKey{}, apikeydomain.ErrInvalidWorkshop
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return apikeydomain.CreatedKey{}, apikeydomain.ErrInvalidName
	}

	secret, err := apikeydomain.NewSecret()
	if err != nil {
		return apikeydomain.CreatedKey{}, err
	}
	encoded, err := apikeydomain.EncodeSecret(secret)
	if err != nil {
		return apikeydomain.CreatedKey{}, err
	}

	now := s.clock.Now()
	key := apikeydomain.APIKey{
		ID:         s.genID.Generate(),
		WorkshopID: wid,
		Name:       name,
		Prefix:     secret[:6],
		SecretHash: encoded,
		IsActive:   true,
		ExpiresAt:  expiresAt,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repo.Insert(ctx, s.db, &key); err != nil {
		return apikeydomain.CreatedKey{}, err
	}

	// Token carries the key id so authentication is a point lookup.
	return apikeydomain.CreatedKey{
		Key:   key,
		Token: tokenPrefix + key.ID.String() + "." + secret,
	}, nil
}

func (s *Service) List(ctx context.Context, workshopID string) ([]apikeydomain.APIKey, error) {
	wid, err := snowflake.ParseString(strings.TrimSpace(workshopID))
	if err != nil {
		return nil, apikeydomain.ErrInvalidWorkshop
	}
	return s.repo.List(ctx, s.db, wid)
}

func (s *Service) Revoke(ctx context.Context, workshopID, id string) error {
	wid, err := snowflake.ParseString(strings.TrimSpace(workshopID))
	if err != nil {
		return apikeydomain.ErrInvalidWorkshop
	}
	keyID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return apikeydomain.ErrKeyNotFound
	}

	key, err := s.repo.FindByID(ctx, s.db, keyID)
	if err != nil {
		return err
	}
	if key.WorkshopID != wid {
		return apikeydomain.ErrKeyNotFound
	}
	if !key.IsActive {
		return apikeydomain.ErrKeyRevoked
	}

	key.IsActive = false
	key.UpdatedAt = s.clock.Now()
	return s.repo.Update(ctx, s.db, key)
}

func (s *Service) Authenticate(ctx context.Context, token string) (*apikeydomain.APIKey, error) {
	token = strings.TrimSpace(token)
	rest, ok := strings.CutPrefix(token, tokenPrefix)
	if !ok {
		return nil, apikeydomain.ErrInvalidToken
	}
	idPart, secret, ok := strings.Cut(rest, ".")
	if !ok || secret == "" {
		return nil, apikeydomain.ErrInvalidToken
	}
	keyID, err := snowflake.ParseString(idPart)
	if err != nil {
		return nil, apikeydomain.ErrInvalidToken
	}

	key, err := s.repo.FindByID(ctx, s.db, keyID)
	if err != nil {
		if err == apikeydomain.ErrKeyNotFound {
			return nil, apikeydomain.ErrInvalidToken
		}
		return nil, err
	}
	if !key.IsActive || key.Expired(s.clock.Now()) {
		return nil, apikeydomain.ErrInvalidToken
	}
	if !apikeydomain.VerifySecret(secret, key.SecretHash) {
		return nil, apikeydomain.ErrInvalidToken
	}

	now := s.clock.Now()
	key.LastUsedAt = &now
	if err := s.repo.Update(ctx, s.db, key); err != nil {
		s.log.Warn("last_used update failed", zap.Error(err))
	}
	return key, nil
}

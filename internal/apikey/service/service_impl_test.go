package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	apikeydomain "github.com/wrenchworks/torqbill/internal/apikey/domain"
	"github.com/wrenchworks/torqbill/internal/apikey/repository"
	"github.com/wrenchworks/torqbill/internal/clock"
)

func newTestService(t *testing.T, at time.Time) (apikeydomain.Service, snowflake.ID) {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&apikeydomain.APIKey{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	node, err := snowflake.NewNode(3)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}

	svc := New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: clock.FixedClock{At: at},
		Repo:  repository.Provide(),
	})
	return svc, node.Generate()
}

func TestCreateAndAuthenticate(t *testing.T) {
	now := time.Date(2026, time.May, 1, 0, 0, 0, 0, time.UTC)
	svc, workshopID := newTestService(t, now)
	ctx := context.Background()

	created, err := svc.Create(ctx, workshopID.String(), "ci pipeline", nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !strings.HasPrefix(created.Token, "tbk_") {
		t.Fatalf("Token = %q, want tbk_ prefix", created.Token)
	}
	if strings.Contains(created.Key.SecretHash, created.Token) {
		t.Fatal("stored hash contains the token")
	}

	key, err := svc.Authenticate(ctx, created.Token)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if key.WorkshopID != workshopID {
		t.Fatalf("WorkshopID = %s, want %s", key.WorkshopID, workshopID)
	}
	if key.LastUsedAt == nil {
		t.Fatal("LastUsedAt not set")
	}
}

func TestAuthenticateRejectsTamperedToken(t *testing.T) {
	now := time.Date(2026, time.May, 1, 0, 0, 0, 0, time.UTC)
	svc, workshopID := newTestService(t, now)
	ctx := context.Background()

	created, err := svc.Create(ctx, workshopID.String(), "ci pipeline", nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	bad := []string{
		"",
		"tbk_",
		created.Token + "x",
		created.Token[:len(created.Token)-2],
		"other_" + created.Token,
	}
	for _, token := range bad {
		if _, err := svc.Authenticate(ctx, token); !errors.Is(err, apikeydomain.ErrInvalidToken) {
			t.Errorf("token %q: error = %v, want ErrInvalidToken", token, err)
		}
	}
}

func TestRevokedKeyStopsAuthenticating(t *testing.T) {
	now := time.Date(2026, time.May, 1, 0, 0, 0, 0, time.UTC)
	svc, workshopID := newTestService(t, now)
	ctx := context.Background()

	created, err := svc.Create(ctx, workshopID.String(), "ci pipeline", nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.Revoke(ctx, workshopID.String(), created.Key.ID.String()); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if _, err := svc.Authenticate(ctx, created.Token); !errors.Is(err, apikeydomain.ErrInvalidToken) {
		t.Fatalf("error = %v, want ErrInvalidToken", err)
	}
	if err := svc.Revoke(ctx, workshopID.String(), created.Key.ID.String()); !errors.Is(err, apikeydomain.ErrKeyRevoked) {
		t.Fatalf("double revoke: error = %v, want ErrKeyRevoked", err)
	}
}

func TestExpiredKeyStopsAuthenticating(t *testing.T) {
	now := time.Date(2026, time.May, 1, 0, 0, 0, 0, time.UTC)
	svc, workshopID := newTestService(t, now)
	ctx := context.Background()

	expiry := now.Add(-time.Hour)
	created, err := svc.Create(ctx, workshopID.String(), "stale key", &expiry)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Authenticate(ctx, created.Token); !errors.Is(err, apikeydomain.ErrInvalidToken) {
		t.Fatalf("error = %v, want ErrInvalidToken", err)
	}
}

package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	apikeydomain "github.com/wrenchworks/torqbill/internal/apikey/domain"
	auditdomain "github.com/wrenchworks/torqbill/internal/audit/domain"
	billingdomain "github.com/wrenchworks/torqbill/internal/billing/domain"
	"github.com/wrenchworks/torqbill/internal/config"
	counterpartydomain "github.com/wrenchworks/torqbill/internal/counterparty/domain"
	"github.com/wrenchworks/torqbill/internal/observability/logger"
	obscontext "github.com/wrenchworks/torqbill/internal/observability/context"
	recurringdomain "github.com/wrenchworks/torqbill/internal/recurring/domain"
)

// HeaderWorkshop carries the workshop scope when no API key is presented.
// Only honored outside production.
const HeaderWorkshop = "X-Workshop-Id"

type Params struct {
	fx.In

	Config          config.Config
	Log             *zap.Logger
	DB              *gorm.DB
	BillingSvc      billingdomain.Service
	CounterpartySvc counterpartydomain.Service
	RecurringSvc    recurringdomain.Service
	APIKeySvc       apikeydomain.Service
	AuditSvc        auditdomain.Service
}

type Server struct {
	cfg             config.Config
	log             *zap.Logger
	db              *gorm.DB
	billingSvc      billingdomain.Service
	counterpartySvc counterpartydomain.Service
	recurringSvc    recurringdomain.Service
	apiKeySvc       apikeydomain.Service
	auditSvc        auditdomain.Service
	paymentLimiter  *rateLimiter
}

func NewServer(p Params) *Server {
	return &Server{
		cfg:             p.Config,
		log:             p.Log.Named("server"),
		db:              p.DB,
		billingSvc:      p.BillingSvc,
		counterpartySvc: p.CounterpartySvc,
		recurringSvc:    p.RecurringSvc,
		apiKeySvc:       p.APIKeySvc,
		auditSvc:        p.AuditSvc,
		paymentLimiter:  newRateLimiter(30, time.Minute),
	}
}

// NewEngine builds the gin engine with the shared middleware stack.
func NewEngine(cfg config.Config, log *zap.Logger) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(logger.GinMiddleware(logger.MiddlewareConfig{
		SkipPaths: []string{"/healthz"},
	}))
	return engine
}

// RegisterRoutes mounts every API route on the engine.
func (s *Server) RegisterRoutes(engine *gin.Engine) {
	engine.GET("/healthz", s.Health)

	v1 := engine.Group("/v1", s.WorkshopRequired())
	{
		v1.POST("/documents", s.CreateDocument)
		v1.GET("/documents", s.ListDocuments)
		v1.GET("/documents/:id", s.GetDocument)
		v1.POST("/documents/:id/open", s.transitionHandler(billingdomain.ActionOpen))
		v1.POST("/documents/:id/issue", s.transitionHandler(billingdomain.ActionIssue))
		v1.POST("/documents/:id/receive", s.transitionHandler(billingdomain.ActionReceive))
		v1.POST("/documents/:id/void", s.VoidDocument)
		v1.POST("/documents/:id/convert", s.ConvertToBill)
		v1.POST("/documents/:id/payments", s.RecordPayment)
		v1.GET("/documents/:id/payments", s.ListPayments)

		v1.GET("/reports/aging", s.AgingReport)

		v1.POST("/counterparties", s.CreateCounterparty)
		v1.GET("/counterparties", s.ListCounterparties)
		v1.GET("/counterparties/:id", s.GetCounterparty)

		v1.POST("/recurring-profiles", s.CreateRecurringProfile)
		v1.GET("/recurring-profiles", s.ListRecurringProfiles)
		v1.GET("/recurring-profiles/:id", s.GetRecurringProfile)
		v1.POST("/recurring-profiles/:id/stop", s.StopRecurringProfile)
		v1.POST("/recurring-profiles/:id/resume", s.ResumeRecurringProfile)

		v1.POST("/api-keys", s.CreateAPIKey)
		v1.GET("/api-keys", s.ListAPIKeys)
		v1.DELETE("/api-keys/:id", s.RevokeAPIKey)
	}

	internal := engine.Group("/internal")
	{
		internal.POST("/recurring/sweep", s.RunRecurringSweep)
	}
}

func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// WorkshopRequired resolves the caller's workshop scope. API key tokens
// are authoritative; the plain header shortcut exists for local
// development only.
func (s *Server) WorkshopRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := strings.TrimSpace(c.GetHeader("Authorization"))
		if header != "" {
			parts := strings.Fields(header)
			if len(parts) != 2 || parts[0] != "Bearer" {
				AbortWithError(c, ErrUnauthorized)
				return
			}
			key, err := s.apiKeySvc.Authenticate(c.Request.Context(), parts[1])
			if err != nil {
				AbortWithError(c, ErrUnauthorized)
				return
			}
			s.setWorkshop(c, key.WorkshopID.String(), "api_key:"+key.ID.String())
			c.Next()
			return
		}

		if !s.cfg.IsProduction() {
			if workshopID := strings.TrimSpace(c.GetHeader(HeaderWorkshop)); workshopID != "" {
				s.setWorkshop(c, workshopID, "header")
				c.Next()
				return
			}
		}

		AbortWithError(c, ErrUnauthorized)
	}
}

func (s *Server) setWorkshop(c *gin.Context, workshopID, actor string) {
	ctx := c.Request.Context()
	ctx = obscontext.WithWorkshopID(ctx, workshopID)
	ctx = obscontext.WithActor(ctx, actor)
	c.Request = c.Request.WithContext(ctx)
	c.Set("workshop_id", workshopID)
}

func (s *Server) workshopID(c *gin.Context) string {
	return obscontext.WorkshopIDFromGin(c)
}

// Module wires the HTTP server into the fx application.
var Module = fx.Module("server",
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(func(lc fx.Lifecycle, engine *gin.Engine, s *Server, cfg config.Config, log *zap.Logger) {
		s.RegisterRoutes(engine)

		srv := &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           engine,
			ReadHeaderTimeout: 10 * time.Second,
		}

		lc.Append(fx.Hook{
			OnStart: func(context.Context) error {
				go func() {
					log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
					if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
						log.Error("http server stopped", zap.Error(err))
					}
				}()
				return nil
			},
			OnStop: func(ctx context.Context) error {
				return srv.Shutdown(ctx)
			},
		})
	}),
)

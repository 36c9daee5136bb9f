package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	counterpartydomain "github.com/wrenchworks/torqbill/internal/counterparty/domain"
	"github.com/wrenchworks/torqbill/pkg/db/pagination"
)

type createCounterpartyRequest struct {
	Kind           string `json:"kind"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	GSTIN          string `json:"gstin"`
	BillingAddress string `json:"billing_address"`
}

// @Summary      Create Counterparty
// @Description  Create a vendor or customer
// @Tags         counterparties
// @Accept       json
// @Produce      json
// @Security     ApiKeyAuth
// @Param        request body createCounterpartyRequest true "Create Counterparty Request"
// @Success      200  {object}  counterpartydomain.Counterparty
// @Router       /counterparties [post]
func (s *Server) CreateCounterparty(c *gin.Context) {
	var req createCounterpartyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.counterpartySvc.Create(c.Request.Context(), counterpartydomain.CreateCounterpartyRequest{
		WorkshopID:     s.workshopID(c),
		Kind:           counterpartydomain.Kind(strings.TrimSpace(req.Kind)),
		Name:           req.Name,
		Email:          req.Email,
		Phone:          req.Phone,
		GSTIN:          req.GSTIN,
		BillingAddress: req.BillingAddress,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if s.auditSvc != nil {
		targetID := resp.ID.String()
		_ = s.auditSvc.AuditLog(c.Request.Context(), &resp.WorkshopID, "", "counterparty.create", "counterparty", &targetID, map[string]any{
			"counterparty_id": resp.ID.String(),
			"kind":            string(resp.Kind),
			"name":            resp.Name,
		})
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      List Counterparties
// @Description  List vendors and customers
// @Tags         counterparties
// @Produce      json
// @Security     ApiKeyAuth
// @Param        kind        query  string  false  "Kind"
// @Param        name        query  string  false  "Name"
// @Param        page_token  query  string  false  "Page Token"
// @Param        page_size   query  int     false  "Page Size"
// @Success      200  {object}  counterpartydomain.ListCounterpartyResponse
// @Router       /counterparties [get]
func (s *Server) ListCounterparties(c *gin.Context) {
	var query struct {
		pagination.Pagination
		Kind string `form:"kind"`
		Name string `form:"name"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.counterpartySvc.List(c.Request.Context(), counterpartydomain.ListCounterpartyRequest{
		WorkshopID: s.workshopID(c),
		Kind:       counterpartydomain.Kind(strings.TrimSpace(query.Kind)),
		Name:       query.Name,
		PageToken:  query.PageToken,
		PageSize:   query.PageSize,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      Get Counterparty
// @Description  Get counterparty by ID
// @Tags         counterparties
// @Produce      json
// @Security     ApiKeyAuth
// @Param        id   path      string  true  "Counterparty ID"
// @Success      200  {object}  counterpartydomain.Counterparty
// @Router       /counterparties/{id} [get]
func (s *Server) GetCounterparty(c *gin.Context) {
	resp, err := s.counterpartySvc.GetByID(c.Request.Context(), s.workshopID(c), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

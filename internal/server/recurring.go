package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	billingdomain "github.com/wrenchworks/torqbill/internal/billing/domain"
	recurringdomain "github.com/wrenchworks/torqbill/internal/recurring/domain"
	"github.com/wrenchworks/torqbill/pkg/db/pagination"
)

type createRecurringProfileRequest struct {
	CounterpartyID string            `json:"counterparty_id"`
	Name           string            `json:"name"`
	Frequency      string            `json:"frequency"`
	RepeatEvery    int               `json:"repeat_every"`
	StartDate      string            `json:"start_date"`
	EndDate        string            `json:"end_date"`
	NeverExpires   bool              `json:"never_expires"`
	Currency       string            `json:"currency"`
	DiscountType   string            `json:"discount_type"`
	DiscountValue  decimal.Decimal   `json:"discount_value"`
	TDSApplicable  bool              `json:"tds_applicable"`
	TDSRate        decimal.Decimal   `json:"tds_rate"`
	LineItems      []lineItemRequest `json:"line_items"`
}

// @Summary      Create Recurring Profile
// @Description  Create a profile that generates bills on a schedule
// @Tags         recurring
// @Accept       json
// @Produce      json
// @Security     ApiKeyAuth
// @Param        request body createRecurringProfileRequest true "Create Profile Request"
// @Success      200  {object}  recurringdomain.Profile
// @Router       /recurring-profiles [post]
func (s *Server) CreateRecurringProfile(c *gin.Context) {
	var req createRecurringProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	startDate, err := parseOptionalDate(req.StartDate)
	if err != nil {
		AbortWithError(c, newValidationError("start_date", "invalid_date", "invalid start_date"))
		return
	}
	endDate, err := parseOptionalDatePtr(req.EndDate)
	if err != nil {
		AbortWithError(c, newValidationError("end_date", "invalid_date", "invalid end_date"))
		return
	}

	items := make([]billingdomain.LineItemInput, 0, len(req.LineItems))
	for _, item := range req.LineItems {
		items = append(items, billingdomain.LineItemInput{
			Name:        item.Name,
			Description: item.Description,
			HSNSACCode:  item.HSNSACCode,
			Unit:        item.Unit,
			Quantity:    item.Quantity,
			Rate:        item.Rate,
			TaxRate:     item.TaxRate,
		})
	}

	resp, err := s.recurringSvc.Create(c.Request.Context(), recurringdomain.CreateProfileRequest{
		WorkshopID:     s.workshopID(c),
		CounterpartyID: req.CounterpartyID,
		Name:           req.Name,
		Frequency:      recurringdomain.Frequency(strings.TrimSpace(req.Frequency)),
		RepeatEvery:    req.RepeatEvery,
		StartDate:      startDate,
		EndDate:        endDate,
		NeverExpires:   req.NeverExpires,
		Currency:       req.Currency,
		DiscountType:   billingdomain.DiscountType(strings.TrimSpace(req.DiscountType)),
		DiscountValue:  req.DiscountValue,
		TDSApplicable:  req.TDSApplicable,
		TDSRate:        req.TDSRate,
		LineItems:      items,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      List Recurring Profiles
// @Description  List recurring bill profiles
// @Tags         recurring
// @Produce      json
// @Security     ApiKeyAuth
// @Param        status      query  string  false  "Status"
// @Param        page_token  query  string  false  "Page Token"
// @Param        page_size   query  int     false  "Page Size"
// @Success      200  {object}  recurringdomain.ListProfilesResponse
// @Router       /recurring-profiles [get]
func (s *Server) ListRecurringProfiles(c *gin.Context) {
	var query struct {
		pagination.Pagination
		Status string `form:"status"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.recurringSvc.List(c.Request.Context(), recurringdomain.ListProfilesRequest{
		WorkshopID: s.workshopID(c),
		Status:     recurringdomain.ProfileStatus(strings.TrimSpace(query.Status)),
		PageToken:  query.PageToken,
		PageSize:   query.PageSize,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      Get Recurring Profile
// @Description  Get a recurring profile with its template line items
// @Tags         recurring
// @Produce      json
// @Security     ApiKeyAuth
// @Param        id   path      string  true  "Profile ID"
// @Success      200  {object}  recurringdomain.Profile
// @Router       /recurring-profiles/{id} [get]
func (s *Server) GetRecurringProfile(c *gin.Context) {
	resp, err := s.recurringSvc.GetByID(c.Request.Context(), s.workshopID(c), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      Stop Recurring Profile
// @Tags         recurring
// @Produce      json
// @Security     ApiKeyAuth
// @Param        id   path      string  true  "Profile ID"
// @Success      200  {object}  recurringdomain.Profile
// @Router       /recurring-profiles/{id}/stop [post]
func (s *Server) StopRecurringProfile(c *gin.Context) {
	resp, err := s.recurringSvc.Stop(c.Request.Context(), s.workshopID(c), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      Resume Recurring Profile
// @Tags         recurring
// @Produce      json
// @Security     ApiKeyAuth
// @Param        id   path      string  true  "Profile ID"
// @Success      200  {object}  recurringdomain.Profile
// @Router       /recurring-profiles/{id}/resume [post]
func (s *Server) ResumeRecurringProfile(c *gin.Context) {
	resp, err := s.recurringSvc.Resume(c.Request.Context(), s.workshopID(c), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

package server

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	billingdomain "github.com/wrenchworks/torqbill/internal/billing/domain"
)

// @Summary      Aging Report
// @Description  Outstanding payables bucketed by days overdue, per counterparty
// @Tags         reports
// @Produce      json
// @Security     ApiKeyAuth
// @Param        as_of   query  string  false  "As-of date (YYYY-MM-DD)"
// @Param        format  query  string  false  "Set to csv for a CSV export"
// @Success      200  {object}  billingdomain.AgingReportResponse
// @Router       /reports/aging [get]
func (s *Server) AgingReport(c *gin.Context) {
	asOf, err := parseOptionalDate(c.Query("as_of"))
	if err != nil {
		AbortWithError(c, newValidationError("as_of", "invalid_date", "invalid as_of date"))
		return
	}

	resp, err := s.billingSvc.AgingReport(c.Request.Context(), billingdomain.AgingReportRequest{
		WorkshopID: s.workshopID(c),
		AsOf:       asOf,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if strings.EqualFold(c.Query("format"), "csv") {
		writeAgingCSV(c, resp)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func writeAgingCSV(c *gin.Context, resp billingdomain.AgingReportResponse) {
	filename := "aging_" + resp.AsOf.Format("2006-01-02") + ".csv"
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	_ = writer.Write([]string{"Counterparty", "Current", "1-30", "31-60", "61-90", "Over 90", "Total"})
	for _, row := range resp.Rows {
		name := row.CounterpartyName
		if name == "" {
			name = row.CounterpartyID
		}
		_ = writer.Write([]string{
			name,
			row.Current.StringFixed(2),
			row.Days1.StringFixed(2),
			row.Days31.StringFixed(2),
			row.Days61.StringFixed(2),
			row.Over90.StringFixed(2),
			row.Total().StringFixed(2),
		})
	}
	_ = writer.Write([]string{
		"TOTAL",
		resp.Total.Current.StringFixed(2),
		resp.Total.Days1.StringFixed(2),
		resp.Total.Days31.StringFixed(2),
		resp.Total.Days61.StringFixed(2),
		resp.Total.Over90.StringFixed(2),
		resp.Total.Total().StringFixed(2),
	})
}

// RunRecurringSweep triggers one recurring generation pass. Exposed on the
// internal group for cron-style invocation alongside the in-process worker.
func (s *Server) RunRecurringSweep(c *gin.Context) {
	asOf, err := parseOptionalDate(c.Query("as_of"))
	if err != nil {
		AbortWithError(c, newValidationError("as_of", "invalid_date", "invalid as_of date"))
		return
	}
	if asOf.IsZero() {
		asOf = time.Now().UTC()
	}

	result, err := s.recurringSvc.GenerateDue(c.Request.Context(), asOf, s.cfg.Recurring.BatchSize)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}

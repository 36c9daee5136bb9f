package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	apikeydomain "github.com/wrenchworks/torqbill/internal/apikey/domain"
)

type createAPIKeyRequest struct {
	Name      string `json:"name"`
	ExpiresAt string `json:"expires_at"`
}

// @Summary      Create API Key
// @Description  Mint an API key; the token is returned exactly once
// @Tags         api-keys
// @Accept       json
// @Produce      json
// @Security     ApiKeyAuth
// @Param        request body createAPIKeyRequest true "Create API Key Request"
// @Success      200  {object}  apikeydomain.CreatedKey
// @Router       /api-keys [post]
func (s *Server) CreateAPIKey(c *gin.Context) {
	var req createAPIKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	expiresAt, err := parseOptionalDatePtr(req.ExpiresAt)
	if err != nil {
		AbortWithError(c, newValidationError("expires_at", "invalid_date", "invalid expires_at"))
		return
	}

	resp, err := s.apiKeySvc.Create(c.Request.Context(), s.workshopID(c), req.Name, expiresAt)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if s.auditSvc != nil {
		targetID := resp.Key.ID.String()
		_ = s.auditSvc.AuditLog(c.Request.Context(), &resp.Key.WorkshopID, "", "api_key.create", "api_key", &targetID, map[string]any{
			"name": resp.Key.Name,
		})
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      List API Keys
// @Tags         api-keys
// @Produce      json
// @Security     ApiKeyAuth
// @Success      200  {object}  []apikeydomain.APIKey
// @Router       /api-keys [get]
func (s *Server) ListAPIKeys(c *gin.Context) {
	resp, err := s.apiKeySvc.List(c.Request.Context(), s.workshopID(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      Revoke API Key
// @Tags         api-keys
// @Produce      json
// @Security     ApiKeyAuth
// @Param        id   path      string  true  "API Key ID"
// @Success      200  {object}  map[string]string
// @Router       /api-keys/{id} [delete]
func (s *Server) RevokeAPIKey(c *gin.Context) {
	if err := s.apiKeySvc.Revoke(c.Request.Context(), s.workshopID(c), strings.TrimSpace(c.Param("id"))); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "revoked"})
}

package server

import (
	"strings"

	"github.com/gin-gonic/gin"
)

type loginExchangeRequest struct {
	ExternalAccountID *int64 `json:"external_account_id"`
	Email             string `json:"email"`
	Signature         string `json:"signature"`
}

// LoginExchange trades an HMAC-signed identity assertion from the CMS for a
// short-lived bearer token scoped to the proxy routes.
func (s *Server) LoginExchange(c *gin.Context) {
	var req loginExchangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, withDetails(ErrMissingFields, "invalid JSON body"))
		return
	}
	if req.ExternalAccountID == nil || strings.TrimSpace(req.Signature) == "" {
		AbortWithError(c, withDetails(ErrMissingFields, "external_account_id and signature are required"))
		return
	}

	token, err := s.authSvc.Exchange(c.Request.Context(),
		*req.ExternalAccountID, strings.TrimSpace(req.Email), strings.TrimSpace(req.Signature))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(200, gin.H{"jwt": token})
}

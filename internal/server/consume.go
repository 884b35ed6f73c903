package server

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	ledgerdomain "github.com/tvorai/creditgate/internal/ledger/domain"
)

type consumeRequest struct {
	ExternalAccountID *int64         `json:"external_account_id"`
	FeatureType       string         `json:"feature_type"`
	EstimatedCost     *int64         `json:"estimated_cost"`
	Metadata          map[string]any `json:"metadata"`
}

type consumeResponse struct {
	OK               bool  `json:"ok"`
	CreditsRemaining int64 `json:"credits_remaining"`
	Charged          int64 `json:"charged"`
}

// Consume prices the request, checks the account and subscription and runs
// the atomic debit. It never creates accounts: provisioning happens only
// through the webhook and login-exchange paths.
func (s *Server) Consume(c *gin.Context) {
	var req consumeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, withDetails(ErrMissingFields, "invalid JSON body"))
		return
	}
	if req.ExternalAccountID == nil {
		AbortWithError(c, withDetails(ErrMissingFields, "external_account_id is required"))
		return
	}
	req.FeatureType = strings.TrimSpace(req.FeatureType)
	if req.FeatureType == "" {
		AbortWithError(c, withDetails(ErrMissingFields, "feature_type is required"))
		return
	}
	c.Set("feature_type", req.FeatureType)

	cost, err := s.prices.Resolve(req.FeatureType, req.EstimatedCost, req.Metadata)
	if err != nil {
		s.gateway.RecordConsume(req.FeatureType, "unknown_feature", 0)
		AbortWithError(c, err)
		return
	}

	ctx := c.Request.Context()

	account, err := s.accountSvc.FindByExternalID(ctx, *req.ExternalAccountID)
	if err != nil {
		s.gateway.RecordConsume(req.FeatureType, "account_not_found", 0)
		AbortWithError(c, err)
		return
	}

	overview, err := s.subscriptionSvc.ActiveWithBalance(ctx, account.ID)
	if err != nil {
		s.gateway.RecordConsume(req.FeatureType, "no_subscription", 0)
		AbortWithError(c, err)
		return
	}
	if overview.Balance == nil {
		s.gateway.RecordConsume(req.FeatureType, "no_balance", 0)
		AbortWithError(c, ledgerdomain.ErrBalanceMissing)
		return
	}

	// Fast-path sufficiency check on the unlocked row. The authoritative
	// re-check happens under the row lock inside Consume.
	if overview.Balance.CreditsRemaining < cost {
		s.gateway.RecordConsume(req.FeatureType, "insufficient", 0)
		AbortWithError(c, ledgerdomain.ErrInsufficientCredits)
		return
	}

	result, err := s.ledgerSvc.Consume(ctx, ledgerdomain.ConsumeRequest{
		AccountID:   account.ID,
		FeatureType: req.FeatureType,
		Cost:        cost,
		Metadata:    datatypes.JSONMap(req.Metadata),
	})
	if err != nil {
		s.gateway.RecordConsume(req.FeatureType, consumeOutcome(err), 0)
		s.log.Error("consume failed",
			zap.Int64("external_account_id", *req.ExternalAccountID),
			zap.String("feature_type", req.FeatureType),
			zap.Int64("cost", cost),
			zap.Error(err),
		)
		AbortWithError(c, err)
		return
	}

	s.gateway.RecordConsume(req.FeatureType, "ok", result.Charged)
	c.JSON(200, consumeResponse{
		OK:               true,
		CreditsRemaining: result.CreditsRemaining,
		Charged:          result.Charged,
	})
}

func consumeOutcome(err error) string {
	switch {
	case errors.Is(err, ledgerdomain.ErrInsufficientCredits):
		return "insufficient"
	case errors.Is(err, ledgerdomain.ErrBalanceMissing):
		return "no_balance"
	default:
		return "tx_failed"
	}
}

package server

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	subscriptiondomain "github.com/tvorai/creditgate/internal/subscription/domain"
)

type subscriptionUpdateRequest struct {
	ExternalAccountID  *int64     `json:"external_account_id"`
	Email              string     `json:"email"`
	PlanID             string     `json:"plan_id"`
	MonthlyCreditLimit *int64     `json:"monthly_credit_limit"`
	CycleStart         *time.Time `json:"cycle_start"`
	CycleEnd           *time.Time `json:"cycle_end"`
	Active             *bool      `json:"active"`
}

// SubscriptionUpdate applies one billing-system webhook event. Replays of
// an identical payload land on the same rows and leave the same state.
func (s *Server) SubscriptionUpdate(c *gin.Context) {
	var req subscriptionUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.gateway.RecordWebhook("bad_payload")
		AbortWithError(c, withDetails(ErrMissingFields, "invalid JSON body"))
		return
	}

	if details, ok := validateSubscriptionUpdate(req); !ok {
		s.gateway.RecordWebhook("bad_payload")
		AbortWithError(c, withDetails(ErrMissingFields, details))
		return
	}

	err := s.subscriptionSvc.Sync(c.Request.Context(), subscriptiondomain.SyncRequest{
		ExternalUserID:     *req.ExternalAccountID,
		Email:              strings.TrimSpace(req.Email),
		PlanID:             strings.TrimSpace(req.PlanID),
		MonthlyCreditLimit: *req.MonthlyCreditLimit,
		CycleStart:         *req.CycleStart,
		CycleEnd:           *req.CycleEnd,
		Active:             *req.Active,
	})
	if err != nil {
		s.gateway.RecordWebhook("failed")
		s.log.Error("subscription sync failed",
			zap.Int64("external_account_id", *req.ExternalAccountID),
			zap.String("plan_id", req.PlanID),
			zap.Error(err),
		)
		AbortWithError(c, err)
		return
	}

	s.gateway.RecordWebhook("ok")
	c.JSON(200, gin.H{"ok": true})
}

func validateSubscriptionUpdate(req subscriptionUpdateRequest) (string, bool) {
	switch {
	case req.ExternalAccountID == nil:
		return "external_account_id is required", false
	case strings.TrimSpace(req.PlanID) == "":
		return "plan_id is required", false
	case req.MonthlyCreditLimit == nil:
		return "monthly_credit_limit is required", false
	case req.CycleStart == nil || req.CycleEnd == nil:
		return "cycle_start and cycle_end are required", false
	case req.Active == nil:
		return "active is required", false
	default:
		return "", true
	}
}

package server

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// recentUsageLimit is how many records the dashboard shows.
const recentUsageLimit = 20

type usageEntry struct {
	Timestamp    time.Time `json:"timestamp"`
	FeatureType  string    `json:"feature_type"`
	CreditsSpent int64     `json:"credits_spent"`
}

type usageResponse struct {
	PlanID             string       `json:"plan_id"`
	CreditsRemaining   int64        `json:"credits_remaining"`
	MonthlyCreditLimit int64        `json:"monthly_credit_limit"`
	CycleEnd           time.Time    `json:"cycle_end"`
	RecentUsage        []usageEntry `json:"recent_usage"`
}

// Usage is the read-only dashboard projection. It reads the balance without
// locking; staleness against an in-flight debit is acceptable here.
func (s *Server) Usage(c *gin.Context) {
	externalID, err := strconv.ParseInt(c.Param("external_account_id"), 10, 64)
	if err != nil {
		AbortWithError(c, withDetails(ErrMissingFields, "external_account_id must be an integer"))
		return
	}

	ctx := c.Request.Context()

	account, err := s.accountSvc.FindByExternalID(ctx, externalID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	overview, err := s.subscriptionSvc.ActiveWithBalance(ctx, account.ID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var remaining int64
	if overview.Balance != nil {
		remaining = overview.Balance.CreditsRemaining
	}

	records, err := s.ledgerSvc.Recent(ctx, account.ID, recentUsageLimit)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	recent := make([]usageEntry, 0, len(records))
	for _, record := range records {
		recent = append(recent, usageEntry{
			Timestamp:    record.CreatedAt,
			FeatureType:  record.FeatureType,
			CreditsSpent: record.CreditsSpent,
		})
	}

	c.JSON(200, usageResponse{
		PlanID:             overview.Subscription.PlanID,
		CreditsRemaining:   remaining,
		MonthlyCreditLimit: overview.Subscription.MonthlyCreditLimit,
		CycleEnd:           overview.Subscription.CycleEnd,
		RecentUsage:        recent,
	})
}

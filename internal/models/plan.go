package models

import (
	"strconv"

	"github.com/cask-indexer/internal/types"
)

// SubscriptionPlan aggregates per-status subscription counts for one plan of
// one provider.
type SubscriptionPlan struct {
	ID                         string           `json:"id" db:"id"`
	Provider                   string           `json:"provider" db:"provider"`
	PlanID                     uint32           `json:"planId" db:"plan_id"`
	Status                     types.PlanStatus `json:"status" db:"status"`
	TotalSubscriptionCount     int64            `json:"totalSubscriptionCount" db:"total_subscription_count"`
	ActiveSubscriptionCount    int64            `json:"activeSubscriptionCount" db:"active_subscription_count"`
	TrialingSubscriptionCount  int64            `json:"trialingSubscriptionCount" db:"trialing_subscription_count"`
	ConvertedSubscriptionCount int64            `json:"convertedSubscriptionCount" db:"converted_subscription_count"`
	CanceledSubscriptionCount  int64            `json:"canceledSubscriptionCount" db:"canceled_subscription_count"`
	PausedSubscriptionCount    int64            `json:"pausedSubscriptionCount" db:"paused_subscription_count"`
	PastDueSubscriptionCount   int64            `json:"pastDueSubscriptionCount" db:"past_due_subscription_count"`
}

// PlanKey builds the plan's natural key from its provider address and plan id.
func PlanKey(provider string, planID uint32) string {
	return provider + "-" + strconv.FormatUint(uint64(planID), 10)
}

// NewSubscriptionPlan constructs a zero-valued plan. New plans start Enabled.
func NewSubscriptionPlan(provider string, planID uint32) *SubscriptionPlan {
	return &SubscriptionPlan{
		ID:       PlanKey(provider, planID),
		Provider: provider,
		PlanID:   planID,
		Status:   types.PlanEnabled,
	}
}

// Discount tracks redemptions of one provider discount.
type Discount struct {
	ID          string `json:"id" db:"id"`
	Provider    string `json:"provider" db:"provider"`
	DiscountID  string `json:"discountId" db:"discount_id"`
	Redemptions int64  `json:"redemptions" db:"redemptions"`
}

// DiscountKey builds the discount's natural key from its provider address
// and discount id hex.
func DiscountKey(provider, discountID string) string {
	return provider + "-" + discountID
}

// NewDiscount constructs a zero-valued discount.
func NewDiscount(provider, discountID string) *Discount {
	return &Discount{
		ID:         DiscountKey(provider, discountID),
		Provider:   provider,
		DiscountID: discountID,
	}
}

package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSubscriptionSnapshot_ActiveAt(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	planID := int64(1)
	future := now.Add(time.Hour)
	past := now.Add(-time.Hour)

	tests := []struct {
		name     string
		snapshot SubscriptionSnapshot
		want     bool
	}{
		{name: "active with future end", snapshot: SubscriptionSnapshot{PlanID: &planID, EndDate: &future, Active: true}, want: true},
		{name: "active flag but expired", snapshot: SubscriptionSnapshot{PlanID: &planID, EndDate: &past, Active: true}, want: false},
		{name: "end equals now", snapshot: SubscriptionSnapshot{PlanID: &planID, EndDate: &now, Active: true}, want: false},
		{name: "inactive", snapshot: SubscriptionSnapshot{PlanID: &planID, EndDate: &future}, want: false},
		{name: "no plan", snapshot: SubscriptionSnapshot{EndDate: &future, Active: true}, want: false},
		{name: "empty", snapshot: SubscriptionSnapshot{}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.snapshot.ActiveAt(now))
		})
	}
}

func TestCoupon_UsedByUser(t *testing.T) {
	c := &Coupon{UsedBy: []string{"u-1", "u-2"}}

	assert.True(t, c.UsedByUser("u-2"))
	assert.False(t, c.UsedByUser("u-3"))
	assert.False(t, (&Coupon{}).UsedByUser("u-1"))
}

func TestPlanRequest_ToPlan(t *testing.T) {
	price := int64(999)
	plan := PlanRequest{Name: "Pro", Price: &price, DurationInDays: 30, Description: "monthly"}.ToPlan()

	assert.Equal(t, Plan{Name: "Pro", Price: 999, DurationInDays: 30, Description: "monthly"}, plan)
	assert.True(t, plan.IsPaid())
	assert.False(t, PlanRequest{Name: "Free", DurationInDays: 7}.ToPlan().IsPaid())
}

func TestProduct_Snapshot(t *testing.T) {
	p := Product{ID: 7, Title: "Pack", Price: 500, FileRef: "files/7.zip", ImageRef: "img/7.png"}

	assert.Equal(t, ProductSnapshot{ProductID: 7, Title: "Pack", Price: 500, FileRef: "files/7.zip", ImageRef: "img/7.png"}, p.Snapshot())
}

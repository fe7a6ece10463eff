// Package metrics объявляет бизнес-счётчики сервиса для Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Значения метки result.
const (
	ResultGranted   = "granted"
	ResultDuplicate = "duplicate"
	ResultRejected  = "rejected"
	ResultError     = "error"
	ResultApplied   = "applied"
	ResultAllowed   = "allowed"
	ResultDenied    = "denied"
)

// Значения метки flow.
const (
	FlowSubscription = "subscription"
	FlowProduct      = "product"
)

var (
	// EntitlementVerifications считает проверки платёжных callback'ов по потоку и исходу.
	EntitlementVerifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storefront",
		Name:      "entitlement_verifications_total",
		Help:      "Payment verification attempts by flow and result.",
	}, []string{"flow", "result"})

	// CouponApplications считает применения купонов.
	CouponApplications = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storefront",
		Name:      "coupon_applications_total",
		Help:      "Coupon application attempts by result.",
	}, []string{"result"})

	// DownloadDecisions считает решения о доступе к скачиванию.
	DownloadDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storefront",
		Name:      "download_decisions_total",
		Help:      "Download access decisions by result.",
	}, []string{"result"})
)

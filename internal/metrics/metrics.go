package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// PurchaseRequests counts accepted purchase requests.
	PurchaseRequests = promauto.NewCounter(prometheus.CounterOpts{
		Name: "landchain_purchase_requests_total",
		Help: "Number of accepted purchase requests.",
	})

	// Mints counts settlement attempts by outcome.
	Mints = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "landchain_mints_total",
		Help: "Number of mint settlements by outcome.",
	}, []string{"outcome"})

	// KYCSubmissions counts KYC workflow submissions.
	KYCSubmissions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "landchain_kyc_submissions_total",
		Help: "Number of KYC submissions.",
	})

	// AuthVerifications counts signature verification attempts by outcome.
	AuthVerifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "landchain_auth_verifications_total",
		Help: "Number of wallet signature verifications by outcome.",
	}, []string{"outcome"})
)

const (
	OutcomeSettled = "settled"
	OutcomeFailed  = "failed"
	OutcomeSuccess = "success"
)

// Handler serves the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

package common

import "github.com/prometheus/client_golang/prometheus"

const (
	HTTPRequestTotal           = "http_requests_total"
	HTTPRequestDurationSeconds = "http_request_duration_seconds"
	DrawTotal                  = "draw_total"
	DrawRejectedTotal          = "draw_rejected_total"
	DrawRecordDroppedTotal     = "draw_record_dropped_total"
	VIPExpiredTotal            = "vip_expired_total"
)

var (
	PromCounters = map[string]*prometheus.CounterVec{
		HTTPRequestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: HTTPRequestTotal,
			Help: "Count of all HTTP requests",
		}, []string{"path", "code"}),
		DrawTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: DrawTotal,
			Help: "Count of completed draws",
		}, []string{"source", "kind"}),
		DrawRejectedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: DrawRejectedTotal,
			Help: "Count of rejected draws",
		}, []string{"reason"}),
		DrawRecordDroppedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: DrawRecordDroppedTotal,
			Help: "Count of draw records not delivered to the remote recorder",
		}, []string{"reason"}),
		VIPExpiredTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: VIPExpiredTotal,
			Help: "Count of VIP trials turned off after expiry",
		}, []string{}),
	}

	PromHistograms = map[string]*prometheus.HistogramVec{
		HTTPRequestDurationSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name: HTTPRequestDurationSeconds,
			Help: "Duration of all HTTP requests",
		}, []string{"path", "code"}),
	}
)

// PromCollectors returns every metric of the service, for registration.
func PromCollectors() []prometheus.Collector {
	var result []prometheus.Collector
	for _, counter := range PromCounters {
		result = append(result, counter)
	}

	for _, histogram := range PromHistograms {
		result = append(result, histogram)
	}

	return result
}

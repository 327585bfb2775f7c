package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	dto "github.com/prometheus/client_model/go"
)

var (
	// recordsTotal counts accepted dose recordings by resulting status.
	recordsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "medtrack",
		Subsystem: "tracker",
		Name:      "records_total",
		Help:      "Total dose recordings accepted, by status",
	}, []string{"status"})

	// storeFailures counts event log operations that returned an error.
	storeFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "medtrack",
		Subsystem: "store",
		Name:      "failures_total",
		Help:      "Total event log operations that failed",
	})

	// degradedReads counts aggregate reads that fell back to zero
	// because the store was unavailable.
	degradedReads = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "medtrack",
		Subsystem: "tracker",
		Name:      "degraded_reads_total",
		Help:      "Aggregate reads answered with a zero fallback",
	}, []string{"aggregate"})

	// prunedRecords counts rows removed by retention pruning.
	prunedRecords = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "medtrack",
		Subsystem: "store",
		Name:      "pruned_records_total",
		Help:      "Total dose records removed by pruning",
	})

	// httpRequests counts API requests by route and status code.
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "medtrack",
		Subsystem: "api",
		Name:      "requests_total",
		Help:      "Total API requests, by route and status code",
	}, []string{"route", "code"})
)

func RecordDose(status string) {
	recordsTotal.WithLabelValues(status).Inc()
}

func RecordStoreFailure() {
	storeFailures.Inc()
}

func RecordDegradedRead(aggregate string) {
	degradedReads.WithLabelValues(aggregate).Inc()
}

func RecordPruned(count int64) {
	prunedRecords.Add(float64(count))
}

func RecordHTTPRequest(route, code string) {
	httpRequests.WithLabelValues(route, code).Inc()
}

// DegradedReadCount reads back the fallback counter for one aggregate.
// Tests use it to assert the degraded path actually fired.
func DegradedReadCount(aggregate string) float64 {
	c, err := degradedReads.GetMetricWithLabelValues(aggregate)
	if err != nil {
		return 0
	}
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		return 0
	}
	return m.GetCounter().GetValue()
}

// Handler serves the default registry in Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// These are the metrics functions exposed by the package. Unless
// 'addImageHostMetrics' is called they are all NOPs.

var IncManifestRefreshes noLabel = func() {}
var IncManifestRefreshFailures noLabel = func() {}
var IncImageQueries noLabel = func() {}
var IncQueryMisses noLabel = func() {}
var IncApiEndpointHits noLabel = func() {}
var IncApiErrorResults noLabel = func() {}

type noLabel func()

const (
	manifest_refreshes_total        = "manifest_refreshes_total"
	manifest_refresh_failures_total = "manifest_refresh_failures_total"
	image_queries_total             = "image_queries_total"
	query_misses_total              = "query_misses_total"
	api_endpoint_hits_total         = "api_endpoint_hits_total"
	api_errors_total                = "api_errors_total"
)

// Prometheus metrics objects

var manifestRefreshesTotal prometheus.Counter
var manifestRefreshFailuresTotal prometheus.Counter
var imageQueriesTotal prometheus.Counter
var queryMissesTotal prometheus.Counter
var apiEndpointHitsTotal prometheus.Counter
var apiErrorsTotal prometheus.Counter

// addImageHostMetrics creates all the image host metrics and registers them
// with the prometheus library. It also assigns a function to actually
// implement each metric.
func addImageHostMetrics() {
	manifestRefreshesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name:      manifest_refreshes_total,
			Namespace: "imagehost",
			Help:      "Total count of successful manifest refreshes",
		},
	)
	IncManifestRefreshes = func() {
		manifestRefreshesTotal.Add(1)
	}

	///
	manifestRefreshFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name:      manifest_refresh_failures_total,
			Namespace: "imagehost",
			Help:      "Total count of manifest refreshes aborted by a download failure",
		},
	)
	IncManifestRefreshFailures = func() {
		manifestRefreshFailuresTotal.Add(1)
	}

	///
	imageQueriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name:      image_queries_total,
			Namespace: "imagehost",
			Help:      "Total count of image info queries",
		},
	)
	IncImageQueries = func() {
		imageQueriesTotal.Add(1)
	}

	///
	queryMissesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name:      query_misses_total,
			Namespace: "imagehost",
			Help:      "Total count of image info queries that matched no record",
		},
	)
	IncQueryMisses = func() {
		queryMissesTotal.Add(1)
	}

	///
	apiEndpointHitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name:      api_endpoint_hits_total,
			Namespace: "imagehost",
			Help:      "Total count of API endpoint hits",
		},
	)
	IncApiEndpointHits = func() {
		apiEndpointHitsTotal.Add(1)
	}

	///
	apiErrorsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name:      api_errors_total,
			Namespace: "imagehost",
			Help:      "Total count of API calls returning an error result",
		},
	)
	IncApiErrorResults = func() {
		apiErrorsTotal.Add(1)
	}
}

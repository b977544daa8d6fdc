// Package metrics exposes prometheus metrics for the image host. All the
// metric functions exported by the package are NOP functions by default to
// minimize overhead when metrics are not enabled; InitMetrics replaces them
// with real implementations.
package metrics

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// InitMetrics initializes metrics. If the passed port is zero, no action is
// taken. Otherwise the function creates the image host metrics (the go
// runtime and process collectors come with the default registry) and serves
// them at the passed port under the '/metrics' path.
func InitMetrics(port int) {
	if port == 0 {
		return
	}
	addImageHostMetrics()
	http.Handle("/metrics", promhttp.Handler())
	go http.ListenAndServe(fmt.Sprintf(":%d", port), nil)
}

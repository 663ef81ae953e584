// Package prometheus provides the Prometheus implementation of
// actor.ActorMetrics.
package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/gdmec07150948/NetX/core/metrics"
)

const namespace = "netx"

func newTimer(h prometheus.Observer) metrics.Timer {
	return metrics.NewTimer(h.Observe)
}

// Default histogram buckets for dispatch latency (in seconds). Queue hops of
// an in-process actor sit well below a millisecond.
var defaultBuckets = []float64{
	.00001, .000025, .00005, .0001, .00025, .0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1,
}

func boolToStr(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

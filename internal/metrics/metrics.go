// Package metrics centralizes the VictoriaMetrics counters and histograms
// this runtime exposes, grounded on the teacher's middleware.go
// (metrics.GetOrCreateCounter with a label-string workaround for the lack of
// a native CounterVec, per the VictoriaMetrics client's own documented
// pattern).
package metrics

import (
	"fmt"
	"time"

	"github.com/VictoriaMetrics/metrics"
)

// AddonFetchLatency records how long one add-on resource fetch took,
// labeled by resource kind and outcome (§4.5).
func AddonFetchLatency(resource string, ok bool, d time.Duration) {
	status := "ok"
	if !ok {
		status = "error"
	}
	name := fmt.Sprintf(`addon_fetch_duration_seconds{resource="%s",status="%s"}`, resource, status)
	metrics.GetOrCreateHistogram(name).Update(d.Seconds())
}

// LibrarySyncPlanned counts how many ids a library sync plan decided to
// pull/push, labeled by direction (§4.6.1).
func LibrarySyncPlanned(direction string, count int) {
	name := fmt.Sprintf(`library_sync_planned_total{direction="%s"}`, direction)
	metrics.GetOrCreateCounter(name).Add(count)
}

// ResourceRequestsDispatched counts how many per-addon resource requests a
// single ResourcesRequested handler launched (§4.5).
func ResourceRequestsDispatched(resource string, count int) {
	name := fmt.Sprintf(`resource_requests_dispatched_total{resource="%s"}`, resource)
	metrics.GetOrCreateCounter(name).Add(count)
}

// CtxAuthAttempt counts login/register/logout attempts by outcome (§4.6).
func CtxAuthAttempt(action string, ok bool) {
	status := "ok"
	if !ok {
		status = "error"
	}
	name := fmt.Sprintf(`ctx_auth_attempts_total{action="%s",status="%s"}`, action, status)
	metrics.GetOrCreateCounter(name).Add(1)
}

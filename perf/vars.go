package perf

import (
	"expvar"
	"net/http"

	"github.com/encodeous/metric"
)

var (
	DispatchLatency  = metric.NewHistogram("1m1s")
	PacketsSent      = metric.NewCounter("10s1s")
	PacketsDelivered = metric.NewCounter("10s1s")
	PacketsIgnored   = metric.NewCounter("10s1s")
	TableChanges     = metric.NewCounter("10s1s")
	LinkChanges      = metric.NewCounter("1m1s")
)

func init() {
	http.Handle("/debug/metrics", metric.Handler(metric.Exposed))
	expvar.Publish("dvnet:PacketsSent/s", PacketsSent)
	expvar.Publish("dvnet:PacketsDelivered/s", PacketsDelivered)
	expvar.Publish("dvnet:PacketsIgnored/s", PacketsIgnored)
	expvar.Publish("dvnet:TableChanges/s", TableChanges)
	expvar.Publish("dvnet:LinkChanges", LinkChanges)
	expvar.Publish("dvnet:DispatchLatency (µs)", DispatchLatency)
}

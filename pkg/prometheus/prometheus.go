package prometheus

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewHandler exposes the given collectors, plus the go runtime and process
// metrics, on a private registry.
func NewHandler(cs ...prometheus.Collector) (http.Handler, error) {
	registry := prometheus.NewRegistry()
	cs = append(cs,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	for _, c := range cs {
		if err := registry.Register(c); err != nil {
			return nil, err
		}
	}

	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}), nil
}

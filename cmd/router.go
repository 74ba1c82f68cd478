package main

import (
	"net/http"

	"github.com/angeloszaimis/lvs-monitor/internal/metrics"
)

func setupRouter(collector *metrics.Collector, driver string) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/metrics", collector.Handler(driver))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return mux
}

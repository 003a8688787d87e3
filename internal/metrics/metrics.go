// Package metrics holds the prometheus collectors for the mirroring pipeline.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	NameSpace = "s3_resources"

	// Uploads counts objects written to the canonical key, by kind (resource, resource_zip, package_zip)
	Uploads = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: prometheus.BuildFQName(NameSpace, "", "uploads_total"),
		Help: "How many objects were uploaded to the object store",
	}, []string{"kind"})

	// Failures counts aborted pipeline runs by the stage that failed
	Failures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: prometheus.BuildFQName(NameSpace, "", "failures_total"),
		Help: "How many pipeline runs failed",
	}, []string{"stage"})

	// ArchiveBytes size of the generated zip files
	ArchiveBytes = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    prometheus.BuildFQName(NameSpace, "", "archive_bytes"),
		Help:    "Size of generated zip archives",
		Buckets: prometheus.ExponentialBuckets(1024, 4, 10),
	}, []string{"shape"})

	// MigratedResources counts resources handled by the batch migration, by outcome
	MigratedResources = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: prometheus.BuildFQName(NameSpace, "", "migrated_resources_total"),
		Help: "How many resources the batch migration processed",
	}, []string{"outcome"})

	registerOnce sync.Once
)

// RegisterMetrics 注册到默认 registry，重复调用无副作用
func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(Uploads)
		prometheus.MustRegister(Failures)
		prometheus.MustRegister(ArchiveBytes)
		prometheus.MustRegister(MigratedResources)
	})
}

// Handler /metrics
func Handler() http.Handler {
	return promhttp.Handler()
}

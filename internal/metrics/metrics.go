package metrics

import (
    "net/http"
    "time"

    "github.com/prometheus/client_golang/prometheus"
    "github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
    documentsProcessed = prometheus.NewCounterVec(
        prometheus.CounterOpts{
            Namespace: "pdfocr",
            Name:      "documents_processed_total",
            Help:      "Total documents processed by result (success, failure)",
        },
        []string{"result"},
    )

    pagesRasterized = prometheus.NewCounter(
        prometheus.CounterOpts{
            Namespace: "pdfocr",
            Name:      "pages_rasterized_total",
            Help:      "Total PDF pages rasterized to images",
        },
    )

    pagesRecognized = prometheus.NewCounterVec(
        prometheus.CounterOpts{
            Namespace: "pdfocr",
            Name:      "pages_recognized_total",
            Help:      "Total pages run through OCR by result (success, error)",
        },
        []string{"result"},
    )

    documentDuration = prometheus.NewHistogramVec(
        prometheus.HistogramOpts{
            Namespace: "pdfocr",
            Name:      "document_duration_seconds",
            Help:      "Duration of full document pipeline runs by stage",
            Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600},
        },
        []string{"stage"},
    )

    cleanupRemoved = prometheus.NewCounterVec(
        prometheus.CounterOpts{
            Namespace: "pdfocr",
            Name:      "cleanup_removed_total",
            Help:      "Entries removed by the retention cleaner per area",
        },
        []string{"area"},
    )

    cleanupBytesFreed = prometheus.NewCounterVec(
        prometheus.CounterOpts{
            Namespace: "pdfocr",
            Name:      "cleanup_bytes_freed_total",
            Help:      "Bytes freed by the retention cleaner per area",
        },
        []string{"area"},
    )

    diskUsage = prometheus.NewGaugeVec(
        prometheus.GaugeOpts{
            Namespace: "pdfocr",
            Name:      "disk_usage_bytes",
            Help:      "Current disk usage per storage area",
        },
        []string{"area"},
    )
)

// Init registers collectors.
func Init() {
    prometheus.MustRegister(documentsProcessed, pagesRasterized, pagesRecognized, documentDuration, cleanupRemoved, cleanupBytesFreed, diskUsage)
}

// Handler returns the http.Handler for /metrics
func Handler() http.Handler { return promhttp.Handler() }

func IncDocument(result string)            { documentsProcessed.WithLabelValues(result).Inc() }
func AddPagesRasterized(n int)             { pagesRasterized.Add(float64(n)) }
func IncPageRecognized(result string)      { pagesRecognized.WithLabelValues(result).Inc() }
func ObserveStage(stage string, d time.Duration) {
    documentDuration.WithLabelValues(stage).Observe(d.Seconds())
}
func AddCleanup(area string, removed int, bytes int64) {
    cleanupRemoved.WithLabelValues(area).Add(float64(removed))
    cleanupBytesFreed.WithLabelValues(area).Add(float64(bytes))
}
func SetDiskUsage(area string, bytes int64) { diskUsage.WithLabelValues(area).Set(float64(bytes)) }

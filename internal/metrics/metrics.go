package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "clipforge"

var (
	VideoJobsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "video_jobs_total",
			Help:      "Total number of image-to-video jobs, labeled by outcome.",
		},
		[]string{"outcome"},
	)

	SoundJobsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sound_jobs_total",
			Help:      "Total number of video-to-sound jobs, labeled by outcome.",
		},
		[]string{"outcome"},
	)

	StageDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Wall-clock duration of one pipeline stage over a whole batch.",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600, 1200},
		},
		[]string{"stage"},
	)

	BatchesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batches_total",
			Help:      "Total number of pipeline batch runs.",
		},
	)
)

// Register installs all collectors on the default registry. Call once at
// process start; the pipeline increments the collectors whether or not they
// are registered, so CLI runs without a metrics endpoint stay cheap.
func Register() {
	prometheus.MustRegister(
		VideoJobsTotal,
		SoundJobsTotal,
		StageDurationSeconds,
		BatchesTotal,
	)
}

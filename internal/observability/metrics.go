package observability

import (
	"io"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

const (
	DirectionRead  = "read"
	DirectionWrite = "write"
)

var (
	registerOnce sync.Once

	sessionFrames = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "agentwire",
			Subsystem: "session",
			Name:      "frames_total",
			Help:      "Agent protocol frames read or written.",
		},
		[]string{"direction"},
	)
	sessionFrameBytes = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "agentwire",
			Subsystem: "session",
			Name:      "frame_bytes",
			Help:      "Agent protocol frame payload size in bytes.",
			Buckets:   prometheus.ExponentialBuckets(16, 4, 8),
		},
		[]string{"direction"},
	)
	codecMessages = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "agentwire",
			Subsystem: "codec",
			Name:      "messages_total",
			Help:      "Agent protocol messages encoded or decoded, by message type.",
		},
		[]string{"direction", "type"},
	)
	codecDecodeErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "agentwire",
			Subsystem: "codec",
			Name:      "decode_errors_total",
			Help:      "Agent protocol messages rejected by the decoder.",
		},
		[]string{"reason"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(sessionFrames, sessionFrameBytes, codecMessages, codecDecodeErrors)
	})
}

func RecordFrame(direction string, size int) {
	RegisterMetrics()
	sessionFrames.WithLabelValues(direction).Inc()
	sessionFrameBytes.WithLabelValues(direction).Observe(float64(size))
}

func RecordMessage(direction, messageType string) {
	RegisterMetrics()
	codecMessages.WithLabelValues(direction, messageType).Inc()
}

func RecordDecodeError(reason string) {
	RegisterMetrics()
	codecDecodeErrors.WithLabelValues(reason).Inc()
}

// WriteMetrics dumps the agentwire metric families in the Prometheus text
// format, for one-shot CLI runs that have no scrape endpoint.
func WriteMetrics(w io.Writer) error {
	RegisterMetrics()
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		return err
	}
	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if !strings.HasPrefix(mf.GetName(), "agentwire_") {
			continue
		}
		if err := enc.Encode(mf); err != nil {
			return err
		}
	}
	return nil
}

// Package metrics exposes Prometheus counters for the generator.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/oneminute/oneminute-go/internal/crypto"
)

const namespace = "oneminute"

var (
	PasswordsGenerated = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "passwords_generated_total",
		Help:      "Passwords generated, by where the request came from.",
	}, []string{"source"})

	StrengthRatings = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "strength_ratings_total",
		Help:      "Strength ratings handed out.",
	}, []string{"rating"})

	ClipboardCopies = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "clipboard_copies_total",
		Help:      "Copy-to-clipboard attempts by result.",
	}, []string{"result"})
)

// ObserveGenerated records one generated password and its rating.
func ObserveGenerated(source string, strength crypto.Strength) {
	PasswordsGenerated.WithLabelValues(source).Inc()
	StrengthRatings.WithLabelValues(string(strength.Rating)).Inc()
}

// ObserveCopy records the result of a clipboard copy.
func ObserveCopy(ok bool) {
	result := "failed"
	if ok {
		result = "copied"
	}
	ClipboardCopies.WithLabelValues(result).Inc()
}

// RegisterActiveSessions exposes the number of live sessions as reported by count.
// It must be called at most once per process.
func RegisterActiveSessions(count func() int) {
	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "sessions_active",
		Help:      "Generator sessions held in memory.",
	}, func() float64 { return float64(count()) })
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

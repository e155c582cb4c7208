package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oneminute/oneminute-go/internal/crypto"
)

func TestObserveGenerated(t *testing.T) {
	before := testutil.ToFloat64(PasswordsGenerated.WithLabelValues("test"))
	beforeGood := testutil.ToFloat64(StrengthRatings.WithLabelValues("Good"))

	ObserveGenerated("test", crypto.ScoreStrength(14, crypto.DefaultOptions()))

	assert.Equal(t, before+1, testutil.ToFloat64(PasswordsGenerated.WithLabelValues("test")))
	assert.Equal(t, beforeGood+1, testutil.ToFloat64(StrengthRatings.WithLabelValues("Good")))
}

func TestObserveCopy(t *testing.T) {
	copied := testutil.ToFloat64(ClipboardCopies.WithLabelValues("copied"))
	failed := testutil.ToFloat64(ClipboardCopies.WithLabelValues("failed"))

	ObserveCopy(true)
	ObserveCopy(false)
	ObserveCopy(false)

	assert.Equal(t, copied+1, testutil.ToFloat64(ClipboardCopies.WithLabelValues("copied")))
	assert.Equal(t, failed+2, testutil.ToFloat64(ClipboardCopies.WithLabelValues("failed")))
}

func TestHandlerExposesCounters(t *testing.T) {
	ObserveGenerated("test", crypto.ScoreStrength(4, crypto.Options{}))

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "oneminute_passwords_generated_total")
}

package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordUpstreamCall(t *testing.T) {
	m := New()

	m.RecordUpstreamCall(20*time.Millisecond, nil)
	m.RecordUpstreamCall(30*time.Millisecond, errors.New("boom"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.upstreamCalls))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.upstreamErrors))
}

func TestRecordSync(t *testing.T) {
	m := New()

	m.RecordSync("live")
	m.RecordSync("live")
	m.RecordSync("seed")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.syncs.WithLabelValues("live")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.syncs.WithLabelValues("seed")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.syncs.WithLabelValues("cache")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.RecordUpstreamCall(time.Second, nil)
		m.RecordSync("live")
		m.RecordContact()
		m.RecordNotificationFailure()
	})
}

func TestHandler(t *testing.T) {
	m := New()
	m.RecordContact()
	m.RecordNotificationFailure()

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "portfolio_contacts_submissions_total 1")
	assert.Contains(t, string(body), "portfolio_contacts_notification_failures_total 1")
}

package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordJob(t *testing.T) {
	before := testutil.ToFloat64(JobsProcessed.WithLabelValues("tasks.test_metric", "SUCCESS"))

	RecordJob("tasks.test_metric", "SUCCESS", 250*time.Millisecond)

	after := testutil.ToFloat64(JobsProcessed.WithLabelValues("tasks.test_metric", "SUCCESS"))
	assert.Equal(t, before+1, after)
}

func TestHandlerExposesCollectors(t *testing.T) {
	RecordJob("tasks.test_handler", "FAILURE", time.Second)

	server := httptest.NewServer(Handler())
	defer server.Close()

	resp, err := http.Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "trends_jobs_processed_total")
	assert.Contains(t, string(body), `task="tasks.test_handler"`)
}

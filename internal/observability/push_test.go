package observability

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPush_SendsGroupedMetrics(t *testing.T) {
	var gotMethod, gotPath, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	m := NewMetrics()
	m.PendingPods.Set(2)

	err := Push(context.Background(), nil, srv.URL, "sig-123", m)
	require.NoError(t, err)

	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, "/metrics/job/spotinst_autoscaler/elastigroup/sig-123", gotPath)
	assert.NotEmpty(t, gotBody)
}

func TestPush_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gateway down", http.StatusInternalServerError)
	}))
	defer srv.Close()

	err := Push(context.Background(), nil, srv.URL, "sig-123", NewMetrics())
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "push metrics"))
}

type countingDoer struct {
	calls int
}

func (d *countingDoer) Do(req *http.Request) (*http.Response, error) {
	d.calls++
	return http.DefaultClient.Do(req)
}

func TestPush_UsesClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	doer := &countingDoer{}
	require.NoError(t, Push(context.Background(), doer, srv.URL, "sig-123", NewMetrics()))
	assert.Equal(t, 1, doer.calls)
}

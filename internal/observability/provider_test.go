package observability

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestProvider_HandlerExportsInstruments(t *testing.T) {
	p, err := NewProvider("pogodata-test")
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Shutdown(context.Background()) })

	m, err := NewMetrics(p)
	require.NoError(t, err)
	ctx := context.Background()
	m.RecordRebuild(ctx, 2*time.Second, nil)
	m.RecordFetch(ctx, errors.New("boom"))
	m.RecordEntities(ctx, "creatures", 42)

	rec := httptest.NewRecorder()
	p.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)

	text := string(body)
	assert.Contains(t, text, "pogodata_catalog_rebuilds")
	assert.Contains(t, text, "pogodata_fetch_attempts")
	assert.Contains(t, text, `kind="creatures"`)
}

func TestProvider_ServeStopsOnCancel(t *testing.T) {
	p, err := NewProvider("pogodata-test")
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Shutdown(context.Background()) })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Serve(ctx, "127.0.0.1:0", zap.NewNop()) }()
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancellation")
	}
}

func TestProvider_ServeBadAddress(t *testing.T) {
	p, err := NewProvider("pogodata-test")
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Shutdown(context.Background()) })

	err = p.Serve(context.Background(), "not-an-address", zap.NewNop())
	assert.Error(t, err)
}

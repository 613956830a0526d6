package server

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/worklogger/internal/logging"
	"github.com/dmitrijs2005/worklogger/internal/server/config"
)

func TestNewPruneScheduler(t *testing.T) {
	app := &App{logger: logging.NopLogger{}}

	c, err := app.newPruneScheduler(context.Background(), "")
	require.NoError(t, err)
	assert.Nil(t, c, "empty schedule disables pruning")

	c, err = app.newPruneScheduler(context.Background(), "@hourly")
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Len(t, c.Entries(), 1)

	_, err = app.newPruneScheduler(context.Background(), "every now and then")
	require.ErrorContains(t, err, "invalid prune schedule")
}

type stubSource struct{ err error }

func (s stubSource) Run(ctx context.Context) error {
	<-ctx.Done()
	if s.err != nil {
		return s.err
	}
	return ctx.Err()
}

func TestStartFeed_ReturnsWithContext(t *testing.T) {
	for _, src := range []stubSource{{}, {err: errors.New("gone")}} {
		app := &App{logger: logging.NopLogger{}, source: src}
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		go func() {
			app.startFeed(ctx)
			close(done)
		}()
		cancel()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("startFeed did not return")
		}
	}
}

func freeAddr(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())
	return addr
}

func TestStartMetricsServer_ServesRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewCounter(prometheus.CounterOpts{Name: "worklogger_test_total", Help: "t"}))

	addr := freeAddr(t)
	app := &App{
		config:   &config.Config{MetricsAddr: addr},
		logger:   logging.NopLogger{},
		registry: reg,
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		app.startMetricsServer(ctx)
		close(done)
	}()

	var body string
	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/metrics")
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		b, _ := io.ReadAll(resp.Body)
		body = string(b)
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)
	assert.Contains(t, body, "worklogger_test_total")

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("metrics server did not stop")
	}
}

func TestStartMetricsServer_DisabledWithoutAddress(t *testing.T) {
	app := &App{config: &config.Config{}, logger: logging.NopLogger{}}
	app.startMetricsServer(context.Background())
}

package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	natsserver "github.com/nats-io/nats-server/v2/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/newswatch/pkg/config"
	"github.com/umputun/newswatch/pkg/domain"
	"github.com/umputun/newswatch/pkg/notify"
)

func TestRun_MissingConfig(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	err := run(ctx, Opts{Config: "non-existent-config.yml"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to load config")
}

func TestRun_InvalidConfig(t *testing.T) {
	cfgFile := filepath.Join(t.TempDir(), "invalid-config.yml")
	require.NoError(t, os.WriteFile(cfgFile, []byte("invalid: yaml: content: ["), 0o600))

	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	err := run(ctx, Opts{Config: cfgFile})
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to load config")
}

func TestRun_StartStop(t *testing.T) {
	ns, err := natsserver.NewServer(&natsserver.Options{Port: -1, JetStream: true, StoreDir: t.TempDir()})
	require.NoError(t, err)
	ns.Start()
	require.True(t, ns.ReadyForConnections(5*time.Second))
	defer ns.Shutdown()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())

	cfgFile := filepath.Join(t.TempDir(), "config.yml")
	cfgData := fmt.Sprintf(`
server:
  listen: %q
database:
  dsn: %q
broker:
  url: %q
llm:
  endpoint: http://127.0.0.1:1/v1
  api_key: secret-key
  model: test-model
scheduler:
  interval: 1h
`, addr, filepath.Join(t.TempDir(), "test.db"), ns.ClientURL())
	require.NoError(t, os.WriteFile(cfgFile, []byte(cfgData), 0o600))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- run(ctx, Opts{Config: cfgFile, Roles: []string{"all"}}) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/api/v1/status")
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 10*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("run did not stop")
	}
}

func TestParseRoles(t *testing.T) {
	tests := []struct {
		in      []string
		want    []string
		wantErr bool
	}{
		{in: nil, want: allRoles},
		{in: []string{"all"}, want: allRoles},
		{in: []string{"filter", "scheduler", "filter"}, want: []string{"scheduler", "filter"}},
		{in: []string{"Refiner,dispatcher"}, want: []string{"refiner", "dispatcher"}},
		{in: []string{"gateway"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%v", tt.in), func(t *testing.T) {
			got, err := parseRoles(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

type pingerFunc func(context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestWatchStore(t *testing.T) {
	t.Run("lost store is fatal", func(t *testing.T) {
		err := watchStore(context.Background(), pingerFunc(func(context.Context) error {
			return errors.New("disk I/O error")
		}), 5*time.Millisecond)
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
	})

	t.Run("transient failures tolerated", func(t *testing.T) {
		calls := 0
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer cancel()
		err := watchStore(ctx, pingerFunc(func(context.Context) error {
			calls++
			if calls%2 == 0 {
				return errors.New("database is locked")
			}
			return nil
		}), 5*time.Millisecond)
		require.NoError(t, err)
	})
}

func TestNewDeliverer(t *testing.T) {
	cfg := &config.Config{}
	cfg.Dispatcher.Channel = "log"
	_, ok := newDeliverer(cfg, false).(*notify.LogDeliverer)
	assert.True(t, ok)

	cfg.Dispatcher.Channel = "webhook"
	cfg.Dispatcher.Webhook.URL = "https://example.com/hook"
	_, ok = newDeliverer(cfg, false).(*notify.WebhookDeliverer)
	assert.True(t, ok)
}

func TestNewSourceRegistry(t *testing.T) {
	cfg := &config.Config{}
	cfg.Sources.Extraction.Enabled = true
	reg := newSourceRegistry(cfg)
	assert.Equal(t, []domain.SourceType{domain.SourceReddit, domain.SourceRSS}, reg.Types())
}

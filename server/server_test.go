// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package server

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func okHandler(body string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, body)
	})
}

func TestRouterRejectsDuplicateRoute(t *testing.T) {
	require := require.New(t)
	r := newRouter()

	require.NoError(r.AddRouter("/ext", "/a", okHandler("a")))
	require.NoError(r.AddRouter("/ext", "/b", okHandler("b")))
	require.ErrorIs(r.AddRouter("/ext", "/a", okHandler("a")), ErrRouteExists)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ext/b", nil))
	require.Equal("b", w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ext/c", nil))
	require.Equal(http.StatusNotFound, w.Code)
}

func TestAllowedHosts(t *testing.T) {
	tests := []struct {
		name    string
		allowed []string
		host    string
		code    int
	}{
		{
			name:    "wildcard",
			allowed: []string{"*"},
			host:    "evil.com",
			code:    http.StatusOK,
		},
		{
			name:    "listed host",
			allowed: []string{"Vault.Local"},
			host:    "vault.local:9650",
			code:    http.StatusOK,
		},
		{
			name:    "ip",
			allowed: []string{"vault.local"},
			host:    "127.0.0.1:9650",
			code:    http.StatusOK,
		},
		{
			name:    "unlisted host",
			allowed: []string{"vault.local"},
			host:    "evil.com",
			code:    http.StatusForbidden,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := filterInvalidHosts(okHandler("ok"), tt.allowed)
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Host = tt.host
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)
			require.Equal(t, tt.code, w.Code)
		})
	}
}

func TestServerDispatch(t *testing.T) {
	require := require.New(t)

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(err)

	registry := prometheus.NewRegistry()
	wrapper, err := NewMetricsWrapper("http", registry)
	require.NoError(err)

	cfg := NewDefaultConfig()
	cfg.ShutdownTimeout = time.Second
	s := New(logging.NoLog{}, listener, cfg, wrapper)
	require.NoError(s.AddRoutes("ext", map[string]http.Handler{
		"/ping": okHandler("pong"),
		"/info": okHandler("info"),
	}))
	require.ErrorIs(s.AddRoute(okHandler("again"), "ext", "/ping"), ErrRouteExists)

	done := make(chan error, 1)
	go func() {
		done <- s.Dispatch()
	}()

	resp, err := http.Get("http://" + s.Addr().String() + "/ext/ping")
	require.NoError(err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(err)
	require.NoError(resp.Body.Close())
	require.Equal(http.StatusOK, resp.StatusCode)
	require.Equal("pong", string(body))

	count, err := testutil.GatherAndCount(registry, "http_requests")
	require.NoError(err)
	require.Equal(1, count)

	require.NoError(s.Shutdown(context.Background()))
	require.NoError(<-done)
}

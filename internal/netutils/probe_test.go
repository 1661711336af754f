package netutils

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hostPort(srv *httptest.Server) string {
	return strings.TrimPrefix(srv.URL, "http://")
}

func TestProbe_AnyStatusIsReady(t *testing.T) {
	for _, code := range []int{http.StatusOK, http.StatusUnauthorized, http.StatusInternalServerError} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(code)
		}))

		ready, err := NewHTTPProber().Probe(context.Background(), hostPort(srv))
		require.NoError(t, err)
		assert.True(t, ready, "status %d", code)
		srv.Close()
	}
}

func TestProbe_RedirectNotFollowed(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		http.Redirect(w, r, "/auth-sign-in", http.StatusFound)
	}))
	defer srv.Close()

	ready, err := NewHTTPProber().Probe(context.Background(), hostPort(srv))
	require.NoError(t, err)
	assert.True(t, ready)
	assert.Equal(t, 1, hits)
}

func TestProbe_ConnectionRefusedIsNotReady(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	l.Close()

	ready, err := NewHTTPProber().Probe(context.Background(), addr)
	require.NoError(t, err)
	assert.False(t, ready)
}

func TestProbe_SilentListenerIsNotReady(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()
	go func() {
		for {
			conn, err := l.Accept()
			if err != nil {
				return
			}
			conn.Close()
		}
	}()

	ready, err := NewHTTPProber().Probe(context.Background(), l.Addr().String())
	require.NoError(t, err)
	assert.False(t, ready)
}

func TestProbe_ContextDone(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := NewHTTPProber().Probe(ctx, hostPort(srv))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

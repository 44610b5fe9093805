package remote

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHostReachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	up := New(srv.URL)
	assert.True(t, up.HostReachable(context.Background()))

	srv.Close()
	assert.False(t, up.HostReachable(context.Background()))
	assert.False(t, New("not a url").HostReachable(context.Background()))
}

func TestHostAddr(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"http://127.0.0.1:8787", "127.0.0.1:8787"},
		{"http://store.example", "store.example:80"},
		{"https://store.example/root", "store.example:443"},
		{"http://[::1]:9000", "[::1]:9000"},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			got, err := hostAddr(tt.url)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := hostAddr("/relative/only")
	assert.Error(t, err)
}

func TestWatchHostReportsTransitions(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	g := New(srv.URL, WithTimeout(100*time.Millisecond))

	var mu sync.Mutex
	var seen []bool
	last := func() (bool, int) {
		mu.Lock()
		defer mu.Unlock()
		if len(seen) == 0 {
			return false, 0
		}
		return seen[len(seen)-1], len(seen)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		g.WatchHost(ctx, 10*time.Millisecond, func(online bool) {
			mu.Lock()
			seen = append(seen, online)
			mu.Unlock()
		})
	}()

	require.Eventually(t, func() bool {
		ok, n := last()
		return n > 0 && ok
	}, 2*time.Second, 5*time.Millisecond)

	srv.Close()
	require.Eventually(t, func() bool {
		ok, _ := last()
		return !ok
	}, 2*time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("WatchHost did not return after cancel")
	}
}

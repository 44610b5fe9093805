package remote

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"time"
)

// HostReachable reports whether a TCP connection to the store's host can
// be opened within the request timeout. It says nothing about whether the
// store would accept requests.
func (g *Gateway) HostReachable(ctx context.Context) bool {
	addr, err := hostAddr(g.baseURL)
	if err != nil {
		slog.Debug("remote host address invalid", "url", g.baseURL, "error", err)
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		slog.Debug("remote host unreachable", "addr", addr, "error", err)
		return false
	}
	conn.Close()
	return true
}

// WatchHost checks host reachability now and then every interval, passing
// each result to report, until ctx ends. A check cut short by ctx is not
// reported.
func (g *Gateway) WatchHost(ctx context.Context, interval time.Duration, report func(online bool)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		ok := g.HostReachable(ctx)
		if ctx.Err() != nil {
			return
		}
		report(ok)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func hostAddr(baseURL string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", err
	}
	if u.Host == "" {
		return "", fmt.Errorf("no host in %q", baseURL)
	}
	port := u.Port()
	if port == "" {
		port = "80"
		if u.Scheme == "https" {
			port = "443"
		}
	}
	return net.JoinHostPort(u.Hostname(), port), nil
}

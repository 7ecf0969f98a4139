package main

import (
	"net"
	"testing"

	"github.com/Belphemur/MovieLinks/internal/config"
)

func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()
	return ln.Addr().(*net.TCPAddr).Port
}

func TestCommandContext_StartAndCloseMetricsServer(t *testing.T) {
	cfg := &config.Config{}
	cfg.Metrics.Enabled = true
	cfg.Metrics.Address = "127.0.0.1"
	cfg.Metrics.Port = freePort(t)

	c := &commandContext{cfg: cfg}
	if err := c.start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if c.metricsServer == nil {
		t.Fatal("Expected a metrics server")
	}
	c.close()
	if c.metricsServer != nil || c.flushSentry != nil {
		t.Error("Expected close to clear started services")
	}

	// A second close has nothing left to stop.
	c.close()
}

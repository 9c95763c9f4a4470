package metrics

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"
)

func TestRecordFetch(t *testing.T) {
	// Smoke test: recording must not panic for any status shape.
	RecordFetch(200, false, false, 120*time.Millisecond)
	RecordFetch(403, false, true, 50*time.Millisecond)
	RecordFetch(0, true, false, 2*time.Second)
}

func TestMetricsServer(t *testing.T) {
	// Find a free port first.
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to find free port: %v", err)
	}
	port := l.Addr().(*net.TCPAddr).Port
	l.Close()

	s := Start(port)
	defer func() {
		if err := s.Stop(context.Background()); err != nil {
			t.Errorf("stop failed: %v", err)
		}
	}()

	RecordFetch(200, false, false, 10*time.Millisecond)

	var body string
	for i := 0; i < 20; i++ {
		resp, err := http.Get(fmt.Sprintf("http://127.0.0.1:%d/metrics", port))
		if err != nil {
			time.Sleep(25 * time.Millisecond)
			continue
		}
		data, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		body = string(data)
		break
	}

	if !strings.Contains(body, "prospector_fetches_total") {
		t.Errorf("expected fetch counter in /metrics output")
	}
}

func TestStop_NilServer(t *testing.T) {
	s := &Server{}
	if err := s.Stop(context.Background()); err != nil {
		t.Errorf("expected nil error for empty server, got %v", err)
	}
}

// =============================================================================
// File: cmd/spline-sim/telemetry.go
// /ws/telemetry: one JSON frame per CongControl round, fanned out to
// every connected dashboard/test client over gorilla/websocket
// (SPEC_FULL.md §3), the same duplex-channel library the teacher uses
// for its client/server transport.
// =============================================================================
package main

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/bkalimollayev/spline/internal/congestion"
)

// telemetryFrame is one broadcast unit: the connection snapshot plus a
// wall-clock timestamp so a client can plot a timeline without its own
// polling loop.
type telemetryFrame struct {
	Timestamp     time.Time `json:"timestamp"`
	Mode          string    `json:"mode"`
	CwndSegments  uint32    `json:"cwnd_segments"`
	PacingRateBPS uint64    `json:"pacing_rate_bps"`
	BandwidthBPS  uint64    `json:"bandwidth_bps"`
	MinRTTUS      uint32    `json:"min_rtt_us"`
	SmoothedRTTUS uint32    `json:"smoothed_rtt_us"`
	FairnessRatio uint32    `json:"fairness_ratio"`
	LossCount     uint8     `json:"loss_count"`
}

func newTelemetryFrame(stats congestion.ConnStats) telemetryFrame {
	return telemetryFrame{
		Timestamp:     time.Now(),
		Mode:          stats.Mode.String(),
		CwndSegments:  stats.CwndSegments,
		PacingRateBPS: stats.PacingRateBPS,
		BandwidthBPS:  stats.BandwidthBPS,
		MinRTTUS:      stats.MinRTTUS,
		SmoothedRTTUS: stats.SmoothedRTTUS,
		FairnessRatio: stats.FairnessRatio,
		LossCount:     stats.LossCount,
	}
}

// telemetryHub tracks connected websocket clients and fans frames out to
// each; a slow or gone client is dropped rather than blocking the
// simulation loop.
type telemetryHub struct {
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*websocket.Conn]chan telemetryFrame
}

func newTelemetryHub() *telemetryHub {
	return &telemetryHub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		clients: make(map[*websocket.Conn]chan telemetryFrame),
	}
}

func (hub *telemetryHub) handle(w http.ResponseWriter, r *http.Request) {
	conn, err := hub.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	out := make(chan telemetryFrame, 16)
	hub.mu.Lock()
	hub.clients[conn] = out
	hub.mu.Unlock()

	defer func() {
		hub.mu.Lock()
		delete(hub.clients, conn)
		hub.mu.Unlock()
		conn.Close()
	}()

	for frame := range out {
		if err := conn.WriteJSON(frame); err != nil {
			return
		}
	}
}

// broadcast fans a frame out to every connected client, disconnecting
// any client whose outbound buffer is full instead of blocking.
func (hub *telemetryHub) broadcast(frame telemetryFrame) {
	hub.mu.Lock()
	defer hub.mu.Unlock()
	for conn, out := range hub.clients {
		select {
		case out <- frame:
		default:
			delete(hub.clients, conn)
			close(out)
			conn.Close()
		}
	}
}

// telemetryServer wraps the hub in its own HTTP server, run as an
// errgroup stage alongside the simulation loop and the metrics server.
type telemetryServer struct {
	hub    *telemetryHub
	server *http.Server
}

func newTelemetryServer(listen, path string) *telemetryServer {
	hub := newTelemetryHub()
	mux := http.NewServeMux()
	mux.HandleFunc(path, hub.handle)
	return &telemetryServer{
		hub:    hub,
		server: &http.Server{Addr: listen, Handler: mux},
	}
}

// run serves until ctx is cancelled, then shuts down gracefully. It
// returns any ListenAndServe error other than the expected
// http.ErrServerClosed, matching the errgroup convention the other
// stages use.
func (ts *telemetryServer) run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() { errCh <- ts.server.ListenAndServe() }()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return ts.server.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	}
}

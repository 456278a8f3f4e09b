package feed

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/YashMane007/Crypto-track-pappa/internal/domain"
	"github.com/YashMane007/Crypto-track-pappa/internal/infra"
)

// Handler defines source-specific logic for the Worker.
type Handler interface {
	URL() string
	OnConnect(ctx context.Context, conn *websocket.Conn) error
	OnMessage(ctx context.Context, msg []byte)
	ID() string
}

// Worker manages the lifecycle of a feed WebSocket connection:
// Disconnected -> Connecting -> Streaming, back to Disconnected on any
// transport failure, with capped exponential backoff between attempts. The
// backoff counter resets only after a connection stayed up for
// SustainedReset, so a flapping endpoint keeps escalating instead of
// hammering the server.
type Worker struct {
	handler Handler
	mu      sync.RWMutex
	conn    *websocket.Conn
	state   atomic.Int32
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	ReadTimeout    time.Duration
	SustainedReset time.Duration
}

// NewWorker creates a feed worker around a source handler.
func NewWorker(handler Handler) *Worker {
	return &Worker{
		handler:        handler,
		ReadTimeout:    60 * time.Second,
		SustainedReset: 30 * time.Second,
	}
}

// State returns the current connection state. Safe from any goroutine;
// presentation uses it to flag cached valuations as stale.
func (w *Worker) State() domain.FeedState {
	return domain.FeedState(w.state.Load())
}

func (w *Worker) setState(s domain.FeedState) {
	w.state.Store(int32(s))
}

// Start initiates the connection loop.
func (w *Worker) Start(ctx context.Context) {
	ctx, w.cancel = context.WithCancel(ctx)
	w.wg.Add(1)
	go w.runLoop(ctx)
}

// Stop terminates the worker and its reconnect loop.
func (w *Worker) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	w.close()
	w.wg.Wait()
	w.setState(domain.FeedDisconnected)
}

func (w *Worker) runLoop(ctx context.Context) {
	defer w.wg.Done()
	defer w.setState(domain.FeedDisconnected)
	retry := 0

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		w.setState(domain.FeedConnecting)
		if err := w.connect(ctx); err != nil {
			w.setState(domain.FeedDisconnected)
			delay := infra.CalculateBackoff(retry)
			slog.Warn("Feed connection failed",
				"id", w.handler.ID(), "err", err, "retry", retry, "delay", delay)
			retry++

			select {
			case <-ctx.Done():
				return
			case <-time.After(delay):
				continue
			}
		}

		w.setState(domain.FeedStreaming)
		connectedAt := time.Now()
		w.process(ctx)
		w.setState(domain.FeedDisconnected)

		if time.Since(connectedAt) >= w.SustainedReset {
			retry = 0
		} else {
			retry++
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(infra.CalculateBackoff(retry)):
		}
	}
}

func (w *Worker) connect(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}

	conn, _, err := dialer.DialContext(ctx, w.handler.URL(), nil)
	if err != nil {
		return err
	}

	w.mu.Lock()
	w.conn = conn
	w.mu.Unlock()

	if err := w.handler.OnConnect(ctx, conn); err != nil {
		w.close()
		return fmt.Errorf("OnConnect failed: %w", err)
	}

	slog.Info("Feed connected", "id", w.handler.ID())
	return nil
}

func (w *Worker) process(ctx context.Context) {
	for {
		w.mu.RLock()
		c := w.conn
		w.mu.RUnlock()
		if c == nil {
			return
		}

		c.SetReadDeadline(time.Now().Add(w.ReadTimeout))
		_, msg, err := c.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				slog.Warn("Feed read error", "id", w.handler.ID(), "err", err)
			}
			w.close()
			return
		}

		w.handler.OnMessage(ctx, msg)
	}
}

func (w *Worker) close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.conn != nil {
		w.conn.Close()
		w.conn = nil
	}
}

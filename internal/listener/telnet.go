package listener

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"syscall"

	"github.com/iammegalith/telnet"
)

// TelnetListener serves sessions over plain telnet. Clients already
// speak CRLF line endings, so connections are handed over raw.
type TelnetListener struct {
	port uint16
	cm   *ConnectionManager
}

func NewTelnetListener(port uint16, cm *ConnectionManager) *TelnetListener {
	return &TelnetListener{
		port: port,
		cm:   cm,
	}
}

func (l *TelnetListener) Start(ctx context.Context) error {
	// Connections share one context so shutdown cancels them together.
	connCtx, cancelConns := context.WithCancel(context.Background())

	handler := &telnetHandler{
		accept:      l.cm.AcceptConnection,
		connCtx:     connCtx,
		cancelConns: cancelConns,
	}

	svr := telnet.NewServer(fmt.Sprintf(":%d", l.port), handler)
	slog.InfoContext(ctx, "listening for telnet", "port", l.port)

	// done signals that Start is returning, success or failure.
	done := make(chan struct{})
	defer close(done)

	go func() {
		select {
		case <-ctx.Done():
			svr.Stop()
			handler.stop()
		case <-done:
		}
	}()

	err := svr.ListenAndServe()
	if err != nil {
		if errors.Is(err, syscall.EADDRINUSE) {
			return fmt.Errorf("port %d is already in use (another server running?)", l.port)
		}
		return fmt.Errorf("serving telnet on port %d: %w", l.port, err)
	}

	return nil
}

// telnetHandler tracks live connections so a shutdown can cancel them
// and wait for their session loops to unwind.
type telnetHandler struct {
	wg          sync.WaitGroup
	accept      func(context.Context, io.ReadWriter)
	connCtx     context.Context
	cancelConns context.CancelFunc
}

func (h *telnetHandler) HandleTelnet(conn *telnet.Connection) {
	h.wg.Add(1)
	defer h.wg.Done()

	h.accept(h.connCtx, conn)

	err := conn.Close()
	if err != nil {
		slog.Warn("closing telnet connection", "error", err)
	}
}

func (h *telnetHandler) stop() {
	h.cancelConns()
	h.wg.Wait()
}

package listener

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strconv"
	"sync"
	"syscall"

	"github.com/iammegalith/telnet"
)

type TelnetListener struct {
	host string
	port uint16
	cm   *ConnectionManager
}

type TelnetOpt func(*TelnetListener)

func WithTelnetHost(host string) TelnetOpt {
	return func(l *TelnetListener) {
		l.host = host
	}
}

func NewTelnetListener(port uint16, cm *ConnectionManager, opts ...TelnetOpt) *TelnetListener {
	l := &TelnetListener{
		port: port,
		cm:   cm,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *TelnetListener) Start(ctx context.Context) error {
	connCtx, cancelConns := context.WithCancel(context.Background())
	handler := &telnetHandler{
		accept:      l.cm.AcceptConnection,
		connCtx:     connCtx,
		cancelConns: cancelConns,
	}

	addr := net.JoinHostPort(l.host, strconv.Itoa(int(l.port)))
	svr := telnet.NewServer(addr, handler)

	done := make(chan struct{})
	defer close(done)

	go func() {
		select {
		case <-ctx.Done():
			svr.Stop()
			handler.Stop()
		case <-done:
		}
	}()

	slog.InfoContext(ctx, "listening for telnet", "addr", addr)
	err := svr.ListenAndServe()
	if err != nil {
		if errors.Is(err, syscall.EADDRINUSE) {
			return fmt.Errorf("port %d is already in use (another server running?)", l.port)
		}
		return fmt.Errorf("serving telnet on %s: %w", addr, err)
	}

	return nil
}

type telnetHandler struct {
	wg          sync.WaitGroup
	accept      func(context.Context, io.ReadWriter)
	connCtx     context.Context
	cancelConns context.CancelFunc
}

func (h *telnetHandler) HandleTelnet(conn *telnet.Connection) {
	h.wg.Add(1)
	defer h.wg.Done()
	defer func() {
		if err := conn.Close(); err != nil {
			slog.WarnContext(h.connCtx, "closing telnet connection", "error", err)
		}
	}()

	h.accept(h.connCtx, newCRLFReadWriter(conn))
}

// Stop ends every open session and waits for them to return.
func (h *telnetHandler) Stop() {
	h.cancelConns()
	h.wg.Wait()
}

package listener

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
)

// Sessioner runs one interactive session over a line-oriented connection.
type Sessioner interface {
	RunSession(ctx context.Context, conn io.ReadWriter) error
}

// ConnectionManager hands accepted connections to the console and caps how
// many run at once. A zero limit means no cap.
type ConnectionManager struct {
	sessions Sessioner
	limit    int64
	active   atomic.Int64
}

func NewConnectionManager(sessions Sessioner, limit int) *ConnectionManager {
	return &ConnectionManager{
		sessions: sessions,
		limit:    int64(limit),
	}
}

// Active reports how many sessions are running.
func (m *ConnectionManager) Active() int {
	return int(m.active.Load())
}

func (m *ConnectionManager) AcceptConnection(ctx context.Context, conn io.ReadWriter) {
	n := m.active.Add(1)
	defer m.active.Add(-1)

	if m.limit > 0 && n > m.limit {
		slog.WarnContext(ctx, "console session refused", "active", n-1, "limit", m.limit)
		_, _ = fmt.Fprintln(conn, "Too many operators are connected. Try again later.")
		return
	}

	slog.InfoContext(ctx, "console session started", "active", n)
	if err := m.sessions.RunSession(ctx, conn); err != nil {
		slog.WarnContext(ctx, "console session", "error", err)
	}
	slog.InfoContext(ctx, "console session ended")
}

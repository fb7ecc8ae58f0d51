package gateway

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pixil98/hamlet/internal/messaging"
	"github.com/pixil98/hamlet/internal/protocol"
)

const (
	pingInterval   = 10 * time.Second
	pongWait       = 60 * time.Second
	writeWait      = 10 * time.Second
	sendBufferSize = 256
	maxMessageSize = 64 * 1024
)

// session is one browser connection. Frames from the bus are queued on
// send and written by the write pump; client frames are decoded by the
// read pump and handed to the loop.
type session struct {
	id   string
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
	once sync.Once
	seq  messaging.Sequencer
}

func newSession(id string, conn *websocket.Conn) *session {
	return &session{
		id:   id,
		conn: conn,
		send: make(chan []byte, sendBufferSize),
		done: make(chan struct{}),
	}
}

func (s *session) close() {
	s.once.Do(func() {
		close(s.done)
	})
}

// deliver is the bus handler for the session subject. It never blocks: a
// gap in the sequence or a full send buffer closes the session.
func (s *session) deliver(data []byte) {
	f, err := messaging.DecodeFrame(data)
	if err != nil {
		slog.Warn("dropping undecodable frame", "session", s.id, "error", err)
		s.close()
		return
	}
	err = s.seq.Accept(f)
	if err != nil {
		slog.Warn("closing session", "session", s.id, "error", err)
		s.close()
		return
	}

	select {
	case s.send <- f.Body:
	case <-s.done:
	default:
		slog.Warn("closing slow session", "session", s.id, "buffered", len(s.send))
		s.close()
	}
}

func (s *session) readPump(ctx context.Context, handle func(protocol.ClientEvent)) {
	s.conn.SetReadLimit(maxMessageSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, msg, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.InfoContext(ctx, "websocket closed unexpectedly", "session", s.id, "error", err)
			}
			return
		}

		ev, err := protocol.DecodeClient(msg)
		if err != nil {
			slog.DebugContext(ctx, "dropping client frame", "session", s.id, "error", err)
			continue
		}
		handle(ev)
	}
}

func (s *session) writePump(ctx context.Context) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		s.conn.Close()
	}()

	for {
		select {
		case msg := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			err := s.conn.WriteMessage(websocket.TextMessage, msg)
			if err != nil {
				slog.DebugContext(ctx, "writing websocket frame", "session", s.id, "error", err)
				s.close()
				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			err := s.conn.WriteMessage(websocket.PingMessage, nil)
			if err != nil {
				s.close()
				return
			}
		case <-s.done:
			err := s.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			if err != nil && !errors.Is(err, websocket.ErrCloseSent) {
				slog.DebugContext(ctx, "sending close frame", "session", s.id, "error", err)
			}
			return
		}
	}
}

func (s *Server) handleSocket(connCtx context.Context, w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.WarnContext(r.Context(), "upgrading websocket", "error", err)
		return
	}

	id := s.newID()
	sess := newSession(id, conn)
	ctx := connCtx

	// Subscribe before connecting so the initial snapshot is not missed.
	unsub, err := s.bus.Subscribe(messaging.SessionSubject(id), sess.deliver)
	if err != nil {
		slog.ErrorContext(ctx, "subscribing session", "session", id, "error", err)
		conn.Close()
		return
	}
	defer unsub()

	err = s.loop.Submit(func(ctx context.Context) {
		err := s.world.Connect(ctx, id)
		if err != nil {
			slog.WarnContext(ctx, "connecting session", "session", id, "error", err)
			sess.close()
		}
	})
	if err != nil {
		slog.WarnContext(ctx, "submitting connect", "session", id, "error", err)
		conn.Close()
		return
	}

	slog.InfoContext(ctx, "session opened", "session", id, "remote", r.RemoteAddr)

	go func() {
		select {
		case <-ctx.Done():
			sess.close()
		case <-sess.done:
		}
	}()

	go sess.writePump(ctx)

	sess.readPump(ctx, func(ev protocol.ClientEvent) {
		err := s.loop.Submit(func(ctx context.Context) {
			s.world.Dispatch(ctx, id, ev)
		})
		if err != nil {
			sess.close()
		}
	})
	sess.close()

	err = s.loop.Submit(func(ctx context.Context) {
		err := s.world.Disconnect(ctx, id)
		if err != nil {
			slog.DebugContext(ctx, "disconnecting session", "session", id, "error", err)
		}
		s.pub.Forget(id)
	})
	if err != nil {
		slog.DebugContext(ctx, "submitting disconnect", "session", id, "error", err)
	}

	slog.InfoContext(ctx, "session closed", "session", id)
}

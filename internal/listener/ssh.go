package listener

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"sync"

	"golang.org/x/crypto/ssh"
)

type SshListener struct {
	host     string
	port     uint16
	cm       *ConnectionManager
	hostKey  ssh.Signer
	password string

	addr  net.Addr
	ready chan struct{}
}

type SshOpt func(*SshListener)

func WithSshHost(host string) SshOpt {
	return func(l *SshListener) {
		l.host = host
	}
}

// WithSshPassword requires operators to log in with password. Without it
// any client is let in.
func WithSshPassword(password string) SshOpt {
	return func(l *SshListener) {
		l.password = password
	}
}

func NewSshListener(port uint16, cm *ConnectionManager, hostKey ssh.Signer, opts ...SshOpt) *SshListener {
	l := &SshListener{
		port:    port,
		cm:      cm,
		hostKey: hostKey,
		ready:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Addr blocks until the listener is bound.
func (l *SshListener) Addr(ctx context.Context) (net.Addr, error) {
	select {
	case <-l.ready:
		return l.addr, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (l *SshListener) serverConfig() *ssh.ServerConfig {
	config := &ssh.ServerConfig{}
	if l.password == "" {
		config.NoClientAuth = true
	} else {
		config.PasswordCallback = func(meta ssh.ConnMetadata, pass []byte) (*ssh.Permissions, error) {
			if subtle.ConstantTimeCompare(pass, []byte(l.password)) == 1 {
				return nil, nil
			}
			return nil, errors.New("password rejected")
		}
	}
	config.AddHostKey(l.hostKey)
	return config
}

func (l *SshListener) Start(ctx context.Context) error {
	config := l.serverConfig()

	listener, err := net.Listen("tcp", net.JoinHostPort(l.host, strconv.Itoa(int(l.port))))
	if err != nil {
		return fmt.Errorf("listening on port %d: %w", l.port, err)
	}
	l.addr = listener.Addr()
	close(l.ready)

	slog.InfoContext(ctx, "listening for ssh", "addr", l.addr.String(), "password", l.password != "")

	connCtx, cancelConns := context.WithCancel(context.Background())
	var wg sync.WaitGroup

	go func() {
		<-ctx.Done()
		listener.Close()
	}()

	for {
		conn, err := listener.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				cancelConns()
				wg.Wait()
				return nil
			default:
			}
			slog.ErrorContext(ctx, "accepting ssh connection", "error", err)
			continue
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			l.handleConnection(connCtx, conn, config)
		}()
	}
}

func (l *SshListener) handleConnection(ctx context.Context, conn net.Conn, config *ssh.ServerConfig) {
	defer conn.Close()

	sshConn, chans, reqs, err := ssh.NewServerConn(conn, config)
	if err != nil {
		slog.WarnContext(ctx, "ssh handshake", "remote", conn.RemoteAddr(), "error", err)
		return
	}
	defer sshConn.Close()

	log := slog.With("remote", sshConn.RemoteAddr().String(), "user", sshConn.User())
	log.InfoContext(ctx, "ssh operator connected")

	// Closing the connection ends the channel range below.
	go func() {
		<-ctx.Done()
		sshConn.Close()
	}()

	go ssh.DiscardRequests(reqs)

	for newChan := range chans {
		if newChan.ChannelType() != "session" {
			_ = newChan.Reject(ssh.UnknownChannelType, "unknown channel type")
			continue
		}

		ch, requests, err := newChan.Accept()
		if err != nil {
			log.ErrorContext(ctx, "accepting ssh channel", "error", err)
			continue
		}

		// Clients hold back input until the shell request is answered.
		shellReady := make(chan struct{})
		go func(in <-chan *ssh.Request) {
			for req := range in {
				switch req.Type {
				case "shell":
					_ = req.Reply(true, nil)
					close(shellReady)
				default:
					// pty-req included; the client keeps local echo.
					_ = req.Reply(false, nil)
				}
			}
		}(requests)

		select {
		case <-shellReady:
		case <-ctx.Done():
			ch.Close()
			continue
		}

		l.cm.AcceptConnection(ctx, newCRLFReadWriter(ch))
		_, _ = ch.SendRequest("exit-status", false, ssh.Marshal(struct{ Status uint32 }{0}))
		ch.Close()
	}
}

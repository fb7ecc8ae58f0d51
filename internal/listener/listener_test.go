package listener

import (
	"bufio"
	"bytes"
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pixil98/go-testutil"
	"golang.org/x/crypto/ssh"
)

// chunkedReader returns one chunk per Read call.
type chunkedReader struct {
	chunks []string
}

func (r *chunkedReader) Read(p []byte) (int, error) {
	if len(r.chunks) == 0 {
		return 0, io.EOF
	}
	n := copy(p, r.chunks[0])
	r.chunks = r.chunks[1:]
	return n, nil
}

type chunkedConn struct {
	in  chunkedReader
	out bytes.Buffer
}

func (c *chunkedConn) Read(p []byte) (int, error)  { return c.in.Read(p) }
func (c *chunkedConn) Write(p []byte) (int, error) { return c.out.Write(p) }

func newChunkedConn(chunks ...string) *chunkedConn {
	return &chunkedConn{in: chunkedReader{chunks: chunks}}
}

func TestCRLFReadWriter(t *testing.T) {
	tests := map[string]struct {
		chunks []string
		exp    string
	}{
		"lf untouched":  {chunks: []string{"who\nquit\n"}, exp: "who\nquit\n"},
		"crlf":          {chunks: []string{"who\r\nquit\r\n"}, exp: "who\nquit\n"},
		"bare cr":       {chunks: []string{"who\rquit\r"}, exp: "who\nquit\n"},
		"split crlf":    {chunks: []string{"who\r", "\nquit\r\n"}, exp: "who\nquit\n"},
		"blank lines":   {chunks: []string{"\r\n\r\n"}, exp: "\n\n"},
		"cr lf then cr": {chunks: []string{"a\r", "\n", "\rb"}, exp: "a\n\nb"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			conn := newChunkedConn(tt.chunks...)
			got, err := io.ReadAll(newCRLFReadWriter(conn))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			testutil.AssertEqual(t, "read", string(got), tt.exp)
		})
	}
}

func TestCRLFReadWriter_Write(t *testing.T) {
	conn := newChunkedConn()
	rw := newCRLFReadWriter(conn)

	n, err := fmt.Fprint(rw, "one\ntwo\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "reported length", n, 8)
	testutil.AssertEqual(t, "written", conn.out.String(), "one\r\ntwo\r\n")
}

// echoSession answers the first line it reads and ends.
type echoSession struct {
	release chan struct{}
}

func (e *echoSession) RunSession(ctx context.Context, conn io.ReadWriter) error {
	if e.release != nil {
		select {
		case <-e.release:
		case <-ctx.Done():
			return nil
		}
	}
	line, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(conn, "got: %s", line)
	return err
}

func TestConnectionManager_Limit(t *testing.T) {
	release := make(chan struct{})
	cm := NewConnectionManager(&echoSession{release: release}, 1)

	var wg sync.WaitGroup
	first := newChunkedConn("hello\n")
	wg.Add(1)
	go func() {
		defer wg.Done()
		cm.AcceptConnection(t.Context(), first)
	}()

	deadline := time.Now().Add(time.Second)
	for cm.Active() != 1 {
		if time.Now().After(deadline) {
			t.Fatal("first session never started")
		}
		time.Sleep(time.Millisecond)
	}

	second := newChunkedConn("hello\n")
	cm.AcceptConnection(t.Context(), second)
	testutil.AssertEqual(t, "refused", second.out.String(), "Too many operators are connected. Try again later.\n")

	close(release)
	wg.Wait()
	testutil.AssertEqual(t, "first answered", first.out.String(), "got: hello\n")
	testutil.AssertEqual(t, "active", cm.Active(), 0)
}

func startSsh(t *testing.T, opts ...SshOpt) string {
	t.Helper()

	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generating key: %v", err)
	}
	signer, err := ssh.NewSignerFromKey(priv)
	if err != nil {
		t.Fatalf("building signer: %v", err)
	}

	opts = append([]SshOpt{WithSshHost("127.0.0.1")}, opts...)
	l := NewSshListener(0, NewConnectionManager(&echoSession{}, 0), signer, opts...)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- l.Start(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		if err := <-done; err != nil {
			t.Errorf("ssh listener: %v", err)
		}
	})

	addrCtx, addrCancel := context.WithTimeout(ctx, 5*time.Second)
	defer addrCancel()
	addr, err := l.Addr(addrCtx)
	if err != nil {
		t.Fatalf("waiting for listener: %v", err)
	}
	return addr.String()
}

func TestSshListener(t *testing.T) {
	tests := map[string]struct {
		opts     []SshOpt
		auth     []ssh.AuthMethod
		expErr   string
		expReply string
	}{
		"open":           {expReply: "got: who\r\n"},
		"password":       {opts: []SshOpt{WithSshPassword("hunter2")}, auth: []ssh.AuthMethod{ssh.Password("hunter2")}, expReply: "got: who\r\n"},
		"wrong password": {opts: []SshOpt{WithSshPassword("hunter2")}, auth: []ssh.AuthMethod{ssh.Password("nope")}, expErr: "unable to authenticate"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			addr := startSsh(t, tt.opts...)

			client, err := ssh.Dial("tcp", addr, &ssh.ClientConfig{
				User:            "operator",
				Auth:            tt.auth,
				HostKeyCallback: ssh.InsecureIgnoreHostKey(),
				Timeout:         5 * time.Second,
			})
			if tt.expErr != "" {
				testutil.AssertErrorContains(t, err, tt.expErr)
				return
			}
			if err != nil {
				t.Fatalf("dialing: %v", err)
			}
			defer client.Close()

			session, err := client.NewSession()
			if err != nil {
				t.Fatalf("opening session: %v", err)
			}
			defer session.Close()

			session.Stdin = strings.NewReader("who\r")
			var out bytes.Buffer
			session.Stdout = &out
			if err := session.Shell(); err != nil {
				t.Fatalf("requesting shell: %v", err)
			}
			if err := session.Wait(); err != nil {
				t.Fatalf("waiting for session: %v", err)
			}
			testutil.AssertEqual(t, "reply", out.String(), tt.expReply)
		})
	}
}

package listener

import (
	"bytes"
	"io"
)

// crlfReadWriter turns CR and CRLF line endings into LF on reads and LF into
// CRLF on writes. Telnet clients send CRLF and ssh clients with a pty send a
// bare CR.
type crlfReadWriter struct {
	rw io.ReadWriter
	// lastCR is set when the previous read ended in CR, so a LF at the
	// start of the next read belongs to the same line ending.
	lastCR bool
}

func newCRLFReadWriter(rw io.ReadWriter) io.ReadWriter {
	return &crlfReadWriter{rw: rw}
}

func (c *crlfReadWriter) Read(p []byte) (int, error) {
	n, err := c.rw.Read(p)
	if n == 0 {
		return n, err
	}

	out := 0
	for _, b := range p[:n] {
		switch {
		case b == '\n' && c.lastCR:
			c.lastCR = false
			continue
		case b == '\r':
			c.lastCR = true
			b = '\n'
		default:
			c.lastCR = false
		}
		p[out] = b
		out++
	}
	return out, err
}

func (c *crlfReadWriter) Write(p []byte) (int, error) {
	_, err := c.rw.Write(bytes.ReplaceAll(p, []byte("\n"), []byte("\r\n")))
	if err != nil {
		return 0, err
	}
	return len(p), nil
}

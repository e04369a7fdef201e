package listener

import (
	"bytes"
	"io"
)

// crlfConn adapts a raw byte stream to the session line discipline:
// writes expand bare \n to \r\n, reads collapse client line endings to
// \n. Telnet sends \r\n; ssh without a pty sends a lone \r.
type crlfConn struct {
	rw io.ReadWriter
}

func newCRLFReadWriter(rw io.ReadWriter) io.ReadWriter {
	return &crlfConn{rw: rw}
}

func (c *crlfConn) Read(p []byte) (int, error) {
	n, err := c.rw.Read(p)
	if n == 0 {
		return n, err
	}
	return copy(p, normalizeNewlines(p[:n])), err
}

func (c *crlfConn) Write(p []byte) (int, error) {
	_, err := c.rw.Write(bytes.ReplaceAll(p, []byte("\n"), []byte("\r\n")))
	// Report the caller's length; the expansion is not theirs to see.
	return len(p), err
}

func normalizeNewlines(b []byte) []byte {
	b = bytes.ReplaceAll(b, []byte("\r\n"), []byte("\n"))
	return bytes.ReplaceAll(b, []byte("\r"), []byte("\n"))
}

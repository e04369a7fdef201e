package listener

import (
	"bytes"
	"testing"

	"github.com/pixil98/go-testutil"
)

type memConn struct {
	in  *bytes.Reader
	out bytes.Buffer
}

func (m *memConn) Read(p []byte) (int, error)  { return m.in.Read(p) }
func (m *memConn) Write(p []byte) (int, error) { return m.out.Write(p) }

func TestCRLFConn_Read(t *testing.T) {
	tests := map[string]struct {
		in  string
		exp string
	}{
		"telnet crlf":  {in: "look\r\n", exp: "look\n"},
		"bare cr":      {in: "look\r", exp: "look\n"},
		"already lf":   {in: "look\n", exp: "look\n"},
		"mixed lines":  {in: "go north\r\nsay hi\r", exp: "go north\nsay hi\n"},
		"no line ends": {in: "inv", exp: "inv"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			conn := &memConn{in: bytes.NewReader([]byte(tt.in))}
			rw := newCRLFReadWriter(conn)

			buf := make([]byte, 64)
			n, err := rw.Read(buf)
			if err != nil {
				t.Fatalf("reading: %v", err)
			}
			testutil.AssertEqual(t, "normalized", string(buf[:n]), tt.exp)
		})
	}
}

func TestCRLFConn_Write(t *testing.T) {
	conn := &memConn{in: bytes.NewReader(nil)}
	rw := newCRLFReadWriter(conn)

	n, err := rw.Write([]byte("Exits: north\nAlso here: Brom.\n"))
	if err != nil {
		t.Fatalf("writing: %v", err)
	}

	// Callers see their own byte count, not the expanded one.
	testutil.AssertEqual(t, "reported length", n, len("Exits: north\nAlso here: Brom.\n"))
	testutil.AssertEqual(t, "expanded", conn.out.String(), "Exits: north\r\nAlso here: Brom.\r\n")
}

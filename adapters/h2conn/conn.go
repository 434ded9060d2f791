package h2conn

import (
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"sync/atomic"

	"golang.org/x/net/http2"
)

// Conn is one HTTP/2 client connection to a module instance. It implements interfaces.DataConnection.
type Conn struct {
	address string
	cc      *http2.ClientConn
	watched *watchedConn
}

// Address returns the host:port the connection was dialled to.
func (c *Conn) Address() string {
	return c.address
}

// RoundTrip opens one stream on the shared connection.
func (c *Conn) RoundTrip(req *http.Request) (*http.Response, error) {
	return c.cc.RoundTrip(req)
}

// Done is closed once the underlying TCP connection has ended.
func (c *Conn) Done() <-chan struct{} {
	return c.watched.done
}

// Err is nil for a clean end (peer EOF, peer GOAWAY with NO_ERROR, or local Close). A close started by the
// HTTP/2 transport itself (protocol error, failed health-check ping) is ErrProtocol; a read or write failure is
// the transport error.
func (c *Conn) Err() error {
	return c.watched.cause()
}

// Close tears the connection down. In-flight streams fail. Idempotent.
func (c *Conn) Close() error {
	c.watched.local.Store(true)
	err := c.cc.Close()
	c.watched.finish(nil)
	return err
}

// ErrProtocol ends a connection the HTTP/2 transport closed on its own without a graceful GOAWAY from the peer.
var ErrProtocol = errors.New("h2conn: connection closed by the http2 transport")

// watchedConn records how the TCP connection under an http2.ClientConn ends. The first terminal event
// wins: a read or write error, or Close. Close is attributed to the transport unless local is set first.
type watchedConn struct {
	net.Conn

	local   atomic.Bool
	closing atomic.Bool

	once   sync.Once
	done   chan struct{}
	mu     sync.Mutex
	err    error
	frames frameScanner
}

func newWatchedConn(c net.Conn) *watchedConn {
	return &watchedConn{Conn: c, done: make(chan struct{})}
}

func (w *watchedConn) Read(p []byte) (int, error) {
	n, err := w.Conn.Read(p)
	if n > 0 {
		w.mu.Lock()
		w.frames.scan(p[:n])
		w.mu.Unlock()
	}
	if err != nil && !w.closing.Load() {
		w.finish(w.endCause(classify(err)))
	}
	return n, err
}

func (w *watchedConn) Write(p []byte) (int, error) {
	n, err := w.Conn.Write(p)
	if err != nil && !w.closing.Load() {
		w.finish(classify(err))
	}
	return n, err
}

func (w *watchedConn) Close() error {
	w.closing.Store(true)
	err := w.Conn.Close()
	switch {
	case w.local.Load():
		w.finish(nil)
	case w.goAwayCode() != nil:
		w.finish(w.endCause(nil))
	default:
		w.finish(ErrProtocol)
	}
	return err
}

// endCause turns a clean end into an error when the peer announced it with a GOAWAY carrying an error code.
func (w *watchedConn) endCause(err error) error {
	if err != nil {
		return err
	}
	if code := w.goAwayCode(); code != nil && *code != http2.ErrCodeNo {
		return fmt.Errorf("%w: peer sent GOAWAY %v", ErrProtocol, *code)
	}
	return nil
}

func (w *watchedConn) goAwayCode() *http2.ErrCode {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.frames.goAway {
		return nil
	}
	code := http2.ErrCode(w.frames.code)
	return &code
}

func (w *watchedConn) finish(err error) {
	w.once.Do(func() {
		w.mu.Lock()
		w.err = err
		w.mu.Unlock()
		close(w.done)
	})
}

func (w *watchedConn) cause() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.err
}

// classify maps a read/write error to nil when the connection simply ended.
func classify(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
		return nil
	}
	return err
}

const frameHeaderLen = 9

// frameScanner follows the frame headers of the peer's byte stream and remembers the error code of the last
// GOAWAY frame. The server preface is a plain SETTINGS frame, so scanning starts at the first byte read.
type frameScanner struct {
	hdr       [frameHeaderLen]byte
	hdrN      int
	remaining uint32
	inGoAway  bool
	payloadN  int

	goAway bool
	code   uint32
}

func (s *frameScanner) scan(p []byte) {
	for len(p) > 0 {
		if s.hdrN < frameHeaderLen {
			n := copy(s.hdr[s.hdrN:], p)
			s.hdrN += n
			p = p[n:]
			if s.hdrN < frameHeaderLen {
				return
			}
			s.remaining = uint32(s.hdr[0])<<16 | uint32(s.hdr[1])<<8 | uint32(s.hdr[2])
			s.inGoAway = http2.FrameType(s.hdr[3]) == http2.FrameGoAway
			s.payloadN = 0
			if s.inGoAway {
				s.goAway = true
				s.code = 0
			}
			if s.remaining == 0 {
				s.hdrN = 0
			}
			continue
		}
		n := min(uint32(len(p)), s.remaining)
		if s.inGoAway {
			// GOAWAY payload: last stream id (4 bytes), error code (4 bytes), debug data.
			for _, b := range p[:n] {
				if s.payloadN >= 8 {
					break
				}
				if s.payloadN >= 4 {
					s.code = s.code<<8 | uint32(b)
				}
				s.payloadN++
			}
		}
		s.remaining -= n
		p = p[n:]
		if s.remaining == 0 {
			s.hdrN = 0
		}
	}
}

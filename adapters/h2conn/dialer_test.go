package h2conn

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/go-kit/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/http2"
)

// h2cServer serves prior-knowledge HTTP/2 on a loopback listener and keeps the accepted connections so a
// test can drop them.
type h2cServer struct {
	lis   net.Listener
	mu    sync.Mutex
	conns []net.Conn
}

func newH2CServer(t *testing.T, h http.Handler) *h2cServer {
	t.Helper()
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	s := &h2cServer{lis: lis}
	srv := &http2.Server{}
	go func() {
		for {
			c, err := lis.Accept()
			if err != nil {
				return
			}
			s.mu.Lock()
			s.conns = append(s.conns, c)
			s.mu.Unlock()
			go srv.ServeConn(c, &http2.ServeConnOpts{Handler: h})
		}
	}()
	t.Cleanup(func() {
		_ = lis.Close()
		s.closeConns()
	})
	return s
}

func (s *h2cServer) addr() string {
	return s.lis.Addr().String()
}

func (s *h2cServer) closeConns() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.conns {
		_ = c.Close()
	}
	s.conns = nil
}

func TestNewDialer_Panics(t *testing.T) {
	assert.PanicsWithValue(t, "h2conn.dialer.go: logger is required", func() {
		NewDialer(nil)
	})
}

func TestDialer_DialAndRoundTrip(t *testing.T) {
	srv := newH2CServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Proto", r.Proto)
		_, _ = io.WriteString(w, "hello "+r.URL.Path+" "+r.Header.Get("token"))
	}))
	addr := srv.addr()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	conn, err := NewDialer(log.NewNopLogger(), WithReadIdleTimeout(time.Second)).Dial(ctx, addr)
	require.NoError(t, err)
	defer conn.Close()

	for i := 0; i < 3; i++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://"+addr+"/invoice/1", nil)
		require.NoError(t, err)
		req.Header.Set("token", "s3cret")
		resp, err := conn.RoundTrip(req)
		require.NoError(t, err)
		body, _ := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "HTTP/2.0", resp.Header.Get("X-Proto"))
		assert.Equal(t, "hello /invoice/1 s3cret", string(body))
	}

	select {
	case <-conn.Done():
		t.Fatal("connection ended early")
	default:
	}
}

func TestDialer_PeerCloseIsClean(t *testing.T) {
	srv := newH2CServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	conn, err := NewDialer(log.NewNopLogger()).Dial(context.Background(), srv.addr())
	require.NoError(t, err)

	srv.closeConns()
	select {
	case <-conn.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("peer close not detected")
	}
	assert.NoError(t, conn.Err())
}

func TestDialer_CloseIsClean(t *testing.T) {
	srv := newH2CServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	conn, err := NewDialer(log.NewNopLogger()).Dial(context.Background(), srv.addr())
	require.NoError(t, err)

	require.NoError(t, conn.Close())
	require.NoError(t, conn.Close())
	select {
	case <-conn.Done():
	default:
		t.Fatal("Done not closed after Close")
	}
	assert.NoError(t, conn.Err())
}

func TestDialer_DialErrors(t *testing.T) {
	t.Run("refused", func(t *testing.T) {
		lis, err := net.Listen("tcp", "127.0.0.1:0")
		require.NoError(t, err)
		addr := lis.Addr().String()
		require.NoError(t, lis.Close())

		_, err = NewDialer(log.NewNopLogger()).Dial(context.Background(), addr)
		assert.Error(t, err)
	})
	t.Run("not_http2", func(t *testing.T) {
		lis, err := net.Listen("tcp", "127.0.0.1:0")
		require.NoError(t, err)
		t.Cleanup(func() { _ = lis.Close() })
		go func() {
			c, err := lis.Accept()
			if err != nil {
				return
			}
			_, _ = io.WriteString(c, "HTTP/1.1 400 Bad Request\r\n\r\n")
			_ = c.Close()
		}()

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_, err = NewDialer(log.NewNopLogger()).Dial(ctx, lis.Addr().String())
		assert.Error(t, err)
	})
}

type fakeNetConn struct {
	net.Conn
	readData []byte
	readErr  error
	writeErr error
}

func (f *fakeNetConn) Read(p []byte) (int, error) {
	if len(f.readData) > 0 {
		n := copy(p, f.readData)
		f.readData = f.readData[n:]
		return n, nil
	}
	return 0, f.readErr
}
func (f *fakeNetConn) Write(p []byte) (int, error) { return len(p), f.writeErr }
func (f *fakeNetConn) Close() error                { return nil }

// goAwayBytes is a SETTINGS frame followed by a GOAWAY frame with code, as a server would send them.
func goAwayBytes(t *testing.T, code http2.ErrCode) []byte {
	t.Helper()
	var buf bytes.Buffer
	fr := http2.NewFramer(&buf, nil)
	require.NoError(t, fr.WriteSettings())
	require.NoError(t, fr.WriteGoAway(1, code, []byte("bye")))
	return buf.Bytes()
}

func TestWatchedConn_Classify(t *testing.T) {
	reset := errors.New("connection reset by peer")
	read := func(w *watchedConn) {
		buf := make([]byte, 4)
		for {
			if _, err := w.Read(buf); err != nil {
				return
			}
		}
	}
	localClose := func(w *watchedConn) {
		w.local.Store(true)
		_ = w.Close()
	}
	transportClose := func(w *watchedConn) {
		read(w)
		_ = w.Close()
	}
	tests := []struct {
		name    string
		conn    *fakeNetConn
		trigger func(w *watchedConn)
		want    error
	}{
		{"eof_is_clean", &fakeNetConn{readErr: io.EOF}, read, nil},
		{"local_close_is_clean", &fakeNetConn{}, localClose, nil},
		{"closed_read_is_clean", &fakeNetConn{readErr: net.ErrClosed}, read, nil},
		{"read_reset_is_error", &fakeNetConn{readErr: reset}, read, reset},
		{"write_error_is_error", &fakeNetConn{writeErr: reset}, func(w *watchedConn) { _, _ = w.Write([]byte("x")) }, reset},
		{"transport_close_is_protocol_error", &fakeNetConn{}, func(w *watchedConn) { _ = w.Close() }, ErrProtocol},
		{"graceful_goaway_then_transport_close_is_clean", &fakeNetConn{readData: goAwayBytes(t, http2.ErrCodeNo), readErr: reset}, func(w *watchedConn) {
			buf := make([]byte, 4)
			for len(w.Conn.(*fakeNetConn).readData) > 0 {
				_, _ = w.Read(buf)
			}
			_ = w.Close()
		}, nil},
		{"goaway_with_error_then_eof_is_error", &fakeNetConn{readData: goAwayBytes(t, http2.ErrCodeProtocol), readErr: io.EOF}, read, ErrProtocol},
		{"goaway_with_error_then_transport_close_is_error", &fakeNetConn{readData: goAwayBytes(t, http2.ErrCodeEnhanceYourCalm), readErr: io.EOF}, transportClose, ErrProtocol},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newWatchedConn(tt.conn)
			tt.trigger(w)
			<-w.done
			first := w.cause()
			if tt.want == nil {
				assert.NoError(t, first)
			} else {
				assert.ErrorIs(t, first, tt.want)
			}

			_ = w.Close()
			assert.Equal(t, first, w.cause(), "first terminal event wins")
		})
	}
}

func TestFrameScanner_SplitReads(t *testing.T) {
	data := goAwayBytes(t, http2.ErrCodeProtocol)
	var s frameScanner
	for _, b := range data {
		s.scan([]byte{b})
	}
	assert.True(t, s.goAway)
	assert.Equal(t, uint32(http2.ErrCodeProtocol), s.code)
}

// badFramePeer completes the HTTP/2 handshake, answers PINGs and then sends a DATA frame on stream 0,
// which the client must treat as a connection-level PROTOCOL_ERROR.
func badFramePeer(t *testing.T) string {
	t.Helper()
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	conns := make(chan net.Conn, 1)
	go func() {
		c, err := lis.Accept()
		if err != nil {
			return
		}
		conns <- c
		if _, err := io.ReadFull(c, make([]byte, len(http2.ClientPreface))); err != nil {
			return
		}
		fr := http2.NewFramer(c, c)
		fr.AllowIllegalWrites = true
		if err := fr.WriteSettings(); err != nil {
			return
		}
		for {
			f, err := fr.ReadFrame()
			if err != nil {
				return
			}
			switch f := f.(type) {
			case *http2.SettingsFrame:
				if !f.IsAck() {
					_ = fr.WriteSettingsAck()
				}
			case *http2.PingFrame:
				if !f.IsAck() {
					_ = fr.WritePing(true, f.Data)
					// Let Dial return on the PING ack before the connection breaks.
					time.Sleep(50 * time.Millisecond)
					_ = fr.WriteData(0, false, []byte("x"))
				}
			}
		}
	}()
	t.Cleanup(func() {
		_ = lis.Close()
		select {
		case c := <-conns:
			_ = c.Close()
		default:
		}
	})
	return lis.Addr().String()
}

func TestDialer_ProtocolErrorIsNotClean(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	conn, err := NewDialer(log.NewNopLogger()).Dial(ctx, badFramePeer(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	select {
	case <-conn.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("protocol error not detected")
	}
	assert.ErrorIs(t, conn.Err(), ErrProtocol)
}

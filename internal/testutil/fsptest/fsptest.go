package fsptest

import (
	"bufio"
	"net"
	"net/netip"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/danmuck/fileget/internal/protocol/fsp"
)

// Handler answers one decoded request on conn. The server closes conn after.
type Handler func(req fsp.Request, conn net.Conn)

type FileServer struct {
	ln       net.Listener
	mu       sync.Mutex
	requests []fsp.Request
}

func NewFileServer(t testing.TB, h Handler) *FileServer {
	t.Helper()
	ln, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen tcp: %v", err)
	}
	s := &FileServer{ln: ln}
	t.Cleanup(func() { _ = ln.Close() })
	go s.serve(h)
	return s
}

func (s *FileServer) serve(h Handler) {
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			return
		}
		req, err := fsp.ReadRequest(bufio.NewReader(conn), fsp.DefaultLimits())
		if err != nil {
			_ = conn.Close()
			continue
		}
		s.mu.Lock()
		s.requests = append(s.requests, req)
		s.mu.Unlock()
		h(req, conn)
		_ = conn.Close()
	}
}

func (s *FileServer) Addr() netip.AddrPort {
	return s.ln.Addr().(*net.TCPAddr).AddrPort()
}

// Requests returns every request served so far, in arrival order.
func (s *FileServer) Requests() []fsp.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]fsp.Request, len(s.requests))
	copy(out, s.requests)
	return out
}

// Names returns the requested resource names, in arrival order.
func (s *FileServer) Names() []string {
	reqs := s.Requests()
	out := make([]string, 0, len(reqs))
	for _, req := range reqs {
		out = append(out, req.Name)
	}
	return out
}

// Entry is one catalog response.
type Entry struct {
	Status fsp.Status
	Body   []byte
}

func OK(body string) Entry {
	return Entry{Status: fsp.StatusSuccess, Body: []byte(body)}
}

func Fail(status fsp.Status, msg string) Entry {
	return Entry{Status: status, Body: []byte(msg)}
}

// Index builds the listing served for wildcard requests.
func Index(names ...string) Entry {
	return OK(strings.Join(names, "\n"))
}

// Catalog serves entries by name; unknown names get Not Found.
func Catalog(entries map[string]Entry) Handler {
	return func(req fsp.Request, conn net.Conn) {
		e, ok := entries[req.Name]
		if !ok {
			e = Fail(fsp.StatusNotFound, "Not Found")
		}
		_ = fsp.WriteResponse(conn, e.Status, e.Body)
	}
}

// Raw writes raw verbatim, chunk bytes at a time with pause between writes.
// chunk <= 0 writes everything at once.
func Raw(raw string, chunk int, pause time.Duration) Handler {
	return func(_ fsp.Request, conn net.Conn) {
		b := []byte(raw)
		if chunk <= 0 {
			chunk = len(b)
		}
		for len(b) > 0 {
			n := min(chunk, len(b))
			if _, err := conn.Write(b[:n]); err != nil {
				return
			}
			b = b[n:]
			if pause > 0 && len(b) > 0 {
				time.Sleep(pause)
			}
		}
	}
}

// Stall holds the connection open without answering until the client leaves.
func Stall() Handler {
	return func(_ fsp.Request, conn net.Conn) {
		buf := make([]byte, 1)
		_, _ = conn.Read(buf)
	}
}

type NameServer struct {
	conn *net.UDPConn
}

// NewNameServer answers every WHEREIS with reply(hostname).
func NewNameServer(t testing.TB, reply func(hostname string) string) *NameServer {
	t.Helper()
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		t.Fatalf("listen udp: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	go func() {
		buf := make([]byte, 1500)
		for {
			n, from, err := conn.ReadFromUDPAddrPort(buf)
			if err != nil {
				return
			}
			hostname, _ := strings.CutPrefix(string(buf[:n]), "WHEREIS ")
			_, _ = conn.WriteToUDPAddrPort([]byte(reply(hostname)), from)
		}
	}()
	return &NameServer{conn: conn}
}

// Pointing replies OK with addr for host and ERR for anything else.
func Pointing(host string, addr netip.AddrPort) func(string) string {
	return func(hostname string) string {
		if hostname == host {
			return "OK " + addr.String()
		}
		return "ERR Not Found"
	}
}

func (s *NameServer) Addr() netip.AddrPort {
	return s.conn.LocalAddr().(*net.UDPAddr).AddrPort()
}

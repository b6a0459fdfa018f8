package transport

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"
	"testing"
	"time"

	eiop "github.com/njones/eioclient/engineio/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serverOptions(t *testing.T, server *httptest.Server) []Option {
	u, err := url.Parse(server.URL)
	require.NoError(t, err)
	port, err := strconv.Atoi(u.Port())
	require.NoError(t, err)

	return []Option{WithHost(u.Hostname()), WithPort(port), WithHTTPClient(server.Client())}
}

func binaryFrame(marker byte, data []byte) []byte {
	frame := []byte{marker}
	for _, r := range strconv.Itoa(len(data)) {
		frame = append(frame, byte(r-'0'))
	}
	return append(append(frame, 0xFF), data...)
}

func nextPacket(t *testing.T, ch <-chan eiop.Packet) eiop.Packet {
	t.Helper()
	select {
	case packet := <-ch:
		return packet
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for a packet")
	}
	return eiop.Packet{}
}

func nextString(t *testing.T, ch <-chan string) string {
	t.Helper()
	select {
	case str := <-ch:
		return str
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for a request")
	}
	return ""
}

// pollServer answers GETs from bodies in order, then holds the poll open
// until the client goes away.
type pollServer struct {
	t           *testing.T
	contentType string
	bodies      [][]byte

	mu      sync.Mutex
	queries []url.Values
	gets    int
	posts   chan string
}

func (s *pollServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.queries = append(s.queries, r.URL.Query())
	s.mu.Unlock()

	switch r.Method {
	case http.MethodGet:
		s.mu.Lock()
		n := s.gets
		s.gets++
		s.mu.Unlock()

		if n >= len(s.bodies) {
			<-r.Context().Done()
			return
		}
		w.Header().Set("Content-Type", s.contentType)
		w.Write(s.bodies[n])
	case http.MethodPost:
		b, err := io.ReadAll(r.Body)
		assert.NoError(s.t, err)
		s.posts <- r.Header.Get("Content-Type") + " " + string(b)
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("ok"))
	}
}

func (s *pollServer) polls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gets
}

func TestXHRPollingText(t *testing.T) {
	ps := &pollServer{
		t:           t,
		contentType: "text/plain; charset=UTF-8",
		bodies:      [][]byte{textPayload(testHandshake), textPayload("4a", "2")},
		posts:       make(chan string, 4),
	}
	server := httptest.NewServer(ps)
	defer server.Close()

	tr := NewXHRPollingTransport(append(serverOptions(t, server), WithForceBase64(true))...)

	packets := make(chan eiop.Packet, 8)
	tr.On(EventPacket, func(x Emit) { packets <- x.Packet })

	require.NoError(t, tr.Open())

	assert.Equal(t, eiop.OpenPacket, nextPacket(t, packets).T)
	assert.Equal(t, eiop.Packet{T: eiop.MessagePacket, D: "a"}, nextPacket(t, packets))
	assert.Equal(t, eiop.Packet{T: eiop.PingPacket}, nextPacket(t, packets))
	assert.Equal(t, StateOpen, tr.ReadyState())
	assert.Equal(t, SessionID("abc123"), tr.SID())

	require.Eventually(t, func() bool { return ps.polls() == 3 }, 5*time.Second, time.Millisecond)

	require.NoError(t, tr.Send(eiop.Packet{T: eiop.MessagePacket, D: "hi"}))
	assert.Equal(t, "text/plain;charset=UTF-8 3:4hi", nextString(t, ps.posts))

	require.NoError(t, tr.Close())
	assert.Equal(t, "text/plain;charset=UTF-8 1:1", nextString(t, ps.posts))
	assert.Equal(t, StateClosed, tr.ReadyState())

	tr.Wait()

	ps.mu.Lock()
	defer ps.mu.Unlock()

	first := ps.queries[0]
	assert.Equal(t, "3", first.Get("EIO"))
	assert.Equal(t, "polling", first.Get("transport"))
	assert.Equal(t, "1", first.Get("b64"))
	assert.Empty(t, first.Get("sid"))
	assert.NotEmpty(t, first.Get("t"))

	for _, query := range ps.queries[1:] {
		assert.Equal(t, "abc123", query.Get("sid"))
		assert.Empty(t, query.Get("b64"))
	}
}

func TestXHRPollingBinary(t *testing.T) {
	ps := &pollServer{
		t:           t,
		contentType: "application/octet-stream",
		bodies: [][]byte{
			append(binaryFrame(0x00, []byte(testHandshake)), binaryFrame(0x01, []byte{0x04, 1, 2, 3})...),
		},
		posts: make(chan string, 4),
	}
	server := httptest.NewServer(ps)
	defer server.Close()

	tr := NewXHRPollingTransport(serverOptions(t, server)...)

	packets := make(chan eiop.Packet, 8)
	tr.On(EventPacket, func(x Emit) { packets <- x.Packet })

	require.NoError(t, tr.Open())

	assert.Equal(t, eiop.OpenPacket, nextPacket(t, packets).T)
	assert.Equal(t, eiop.Packet{T: eiop.MessagePacket, D: []byte{1, 2, 3}}, nextPacket(t, packets))

	require.NoError(t, tr.Send(eiop.Packet{T: eiop.MessagePacket, D: []byte{9}}))
	assert.Equal(t, "application/octet-stream \x01\x02\xff\x04\x09", nextString(t, ps.posts))

	require.NoError(t, tr.Close())
	tr.Wait()

	ps.mu.Lock()
	defer ps.mu.Unlock()
	assert.Empty(t, ps.queries[0].Get("b64"))
}

func TestXHRPollingAcknowledgment(t *testing.T) {
	tr := NewXHRPollingTransport()
	tr.readyState, tr.sid = StateOpen, "abc123"
	rec := record(tr, EventPacket, EventPollComplete)

	more := tr.onLoad(http.Header{"Content-Type": {"text/plain; charset=UTF-8"}}, textPayload("4ignored"))

	assert.True(t, more)
	assert.Equal(t, []Event{EventPollComplete}, rec.events())
}

func TestXHRPollingRequestFailed(t *testing.T) {
	var (
		mu   sync.Mutex
		gets int
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		gets++
		mu.Unlock()
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte("bad"))
	}))
	defer server.Close()

	tr := NewXHRPollingTransport(serverOptions(t, server)...)
	rec := record(tr, EventError, EventPoll, EventClose)

	require.NoError(t, tr.Open())
	tr.Wait()

	errs := rec.errs()
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], ErrRequestFailed)
	assert.Equal(t, []byte("bad"), errs[0].(*Error).Detail)
	assert.Equal(t, []Event{EventError, EventPoll}, rec.events())
	assert.Equal(t, StateOpening, tr.ReadyState())

	assert.False(t, tr.Poll())
	assert.Len(t, rec.errs(), 2)

	mu.Lock()
	assert.Equal(t, 2, gets)
	mu.Unlock()
}

func TestXHRPollingReopenAfterServerClose(t *testing.T) {
	ps := &pollServer{
		t:           t,
		contentType: "text/plain; charset=UTF-8",
		bodies:      [][]byte{textPayload(testHandshake, "1"), textPayload(testHandshake, "1")},
		posts:       make(chan string, 4),
	}
	server := httptest.NewServer(ps)
	defer server.Close()

	tr := NewXHRPollingTransport(append(serverOptions(t, server), WithForceBase64(true))...)
	rec := record(tr, EventOpen, EventClose)

	require.NoError(t, tr.Open())
	tr.Wait()
	assert.Equal(t, StateClosed, tr.ReadyState())

	require.NoError(t, tr.Open())
	tr.Wait()
	assert.Equal(t, StateClosed, tr.ReadyState())

	assert.Equal(t, 2, ps.polls())
	assert.Equal(t, []Event{EventOpen, EventClose, EventOpen, EventClose}, rec.events())
}

func TestXHRPollingCloseAfterFailedHandshake(t *testing.T) {
	var (
		received = make(chan struct{})
		release  = make(chan struct{})
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(received)
		<-release
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	tr := NewXHRPollingTransport(serverOptions(t, server)...)
	rec := record(tr, EventError, EventClose)

	require.NoError(t, tr.Open())
	<-received

	require.NoError(t, tr.Close())
	assert.Equal(t, StateClosing, tr.ReadyState())

	close(release)
	tr.Wait()

	assert.Equal(t, StateClosed, tr.ReadyState())
	assert.Equal(t, []Event{EventError, EventClose}, rec.events())
	assert.Equal(t, 0, listenerCount(tr.PollingTransport, EventOpen))
	assert.Error(t, tr.context().Err())
}

func TestXHRPollingWriteFailed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	tr := NewXHRPollingTransport(serverOptions(t, server)...)
	tr.readyState, tr.sid, tr.writable = StateOpen, "abc123", true
	rec := record(tr, EventError, EventDrain)

	err := tr.Send(eiop.Packet{T: eiop.MessagePacket, D: "hi"})

	assert.ErrorIs(t, err, ErrRequestFailed)
	assert.Equal(t, []Event{EventError, EventDrain}, rec.events())
	assert.True(t, tr.Writable())
}

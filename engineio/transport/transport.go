package transport

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"time"

	eiop "github.com/njones/eioclient/engineio/protocol"
	eios "github.com/njones/eioclient/engineio/session"
	erro "github.com/njones/eioclient/internal/errors"
	"github.com/njones/eioclient/internal/option"
	"go.uber.org/zap"
)

type SessionID = eios.ID

type Name string

func (name Name) String() string { return string(name) }

const (
	Polling   Name = "polling"
	Websocket Name = "websocket"
)

const ProtocolVersion = 3

// The capabilities a concrete transport provides to the lifecycle
// controller. A missing one fails with ErrUnimplementedMethod.
type (
	Opener interface{ DoOpen() error }
	Closer interface{ DoClose() error }
	Writer interface{ Write([]eiop.Packet) error }

	// Poller issues one poll request and reports whether another should
	// follow.
	Poller interface{ DoPoll() (more bool, err error) }

	// PayloadWriter sends one encoded payload to the server.
	PayloadWriter interface {
		DoWrite(data []byte, isBinary bool) error
	}
)

type Transporter interface {
	Name() Name
	SID() SessionID
	SetSID(SessionID)
	ReadyState() ReadyState
	Writable() bool

	Open() error
	Close() error
	Send(...eiop.Packet) error

	On(Event, Listener) func()
	Once(Event, Listener) func()
}

// Transports lists the constructors by transport name.
var Transports = map[Name]func(...Option) Transporter{
	Polling:   func(opts ...Option) Transporter { return NewXHRPollingTransport(opts...) },
	Websocket: func(opts ...Option) Transporter { return NewWebsocketTransport(opts...) },
}

// Transport is the lifecycle shared by every transport kind. The concrete
// kind plugs itself in through the Opener, Closer and Writer capabilities.
type Transport struct {
	*emitter

	name    Name
	codec   eiop.Codec
	log     *zap.Logger
	metrics *Metrics
	now     func() time.Time

	host, path     string
	port           int
	secure         bool
	supportsBinary bool
	query          url.Values

	parent context.Context

	opener Opener
	closer Closer
	writer Writer

	mu         sync.Mutex
	sid        SessionID
	readyState ReadyState
	writable   bool
	ctx        context.Context
	cancel     context.CancelFunc

	// removes the open listener of a close that waits for the handshake
	deferredClose func()
}

func newTransport(name Name) *Transport {
	return &Transport{
		emitter:        newEmitter(),
		name:           name,
		codec:          eiop.CodecV3{},
		log:            zap.NewNop(),
		now:            time.Now,
		host:           "localhost",
		path:           "/engine.io/",
		supportsBinary: true,
		query:          url.Values{},
		parent:         context.Background(),
		ctx:            context.Background(),
	}
}

func (t *Transport) InnerTransport() *Transport { return t }
func (t *Transport) With(opts ...Option)        { option.Apply(t, opts...) }

func (t *Transport) Name() Name { return t.name }

func (t *Transport) SID() SessionID {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sid
}

func (t *Transport) SetSID(sid SessionID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sid = sid
}

func (t *Transport) ReadyState() ReadyState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.readyState
}

func (t *Transport) Writable() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.writable
}

func (t *Transport) setWritable(writable bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.writable = writable
}

func (t *Transport) context() context.Context {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.ctx
}

// Open starts the transport. It does nothing unless the transport is new
// or closed.
func (t *Transport) Open() error {
	if t.opener == nil {
		return ErrUnimplementedMethod.F("DoOpen")
	}

	t.mu.Lock()
	if t.readyState != StateNone && t.readyState != StateClosed {
		t.mu.Unlock()
		return nil
	}
	t.readyState = StateOpening
	t.ctx, t.cancel = context.WithCancel(t.parent)
	t.mu.Unlock()

	t.log.Debug("opening", zap.String("host", t.host))
	return t.opener.DoOpen()
}

// Close tears the transport down. It does nothing unless the transport is
// opening, open or closing, and the transition to closed happens even when
// the concrete close fails. A second Close on a transport still waiting to
// finish a deferred close forces it closed.
func (t *Transport) Close() error {
	if t.closer == nil {
		return ErrUnimplementedMethod.F("DoClose")
	}

	switch t.ReadyState() {
	case StateOpening, StateOpen:
	case StateClosing:
		t.abortDeferredClose()
		t.onClose()
		return nil
	default:
		return nil
	}

	err := t.closer.DoClose()
	if errors.Is(err, ErrCloseDeferred) {
		t.mu.Lock()
		if t.readyState == StateOpening {
			t.readyState = StateClosing
		}
		t.mu.Unlock()
		return nil
	}
	if err != nil {
		t.log.Debug("close failed", zap.Error(err))
	}

	t.onClose()
	return err
}

// Send writes packets, the transport must be open.
func (t *Transport) Send(packets ...eiop.Packet) error {
	if t.writer == nil {
		return ErrUnimplementedMethod.F("Write")
	}
	if t.ReadyState() != StateOpen {
		return ErrNotOpen
	}
	if len(packets) == 0 {
		return nil
	}
	return t.writer.Write(packets)
}

func (t *Transport) onOpen() {
	t.mu.Lock()
	t.readyState = StateOpen
	t.writable = true
	t.mu.Unlock()

	t.log.Debug("open")
	t.emit(Emit{Event: EventOpen})
}

// deferClose keeps the off func of a close waiting on EventOpen.
func (t *Transport) deferClose(off func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.deferredClose = off
}

func (t *Transport) abortDeferredClose() {
	t.mu.Lock()
	off := t.deferredClose
	t.deferredClose = nil
	t.mu.Unlock()

	if off != nil {
		off()
	}
}

func (t *Transport) onClose() {
	t.mu.Lock()
	t.readyState = StateClosed
	t.deferredClose = nil
	cancel := t.cancel
	t.mu.Unlock()

	if cancel != nil {
		cancel()
	}

	t.log.Debug("closed")
	t.emit(Emit{Event: EventClose})
}

func (t *Transport) onError(msg erro.String, detail interface{}) {
	err := &Error{Message: msg.Error(), Detail: detail}

	t.metrics.errored(t.name)
	t.log.Debug("error", zap.Error(err))
	t.emit(Emit{Event: EventError, Err: err})
}

// onData decodes a single packet, which is how framed transports deliver
// inbound data.
func (t *Transport) onData(data []byte, isBinary bool) {
	packet, err := t.codec.DecodePacket(data, isBinary)
	if err != nil {
		t.onError(ErrDecodeFailed, err)
		return
	}
	t.onPacket(packet)
}

// onPacket takes the session id from an open handshake when none is known
// yet, then hands the packet to the owner.
func (t *Transport) onPacket(packet eiop.Packet) {
	if hs, ok := packet.D.(*eiop.HandshakeV3); ok && packet.T == eiop.OpenPacket && hs != nil {
		t.mu.Lock()
		if t.sid.IsZero() {
			t.sid = SessionID(hs.SID)
		}
		t.mu.Unlock()
	}

	t.metrics.received(t.name)
	t.emit(Emit{Event: EventPacket, Packet: packet})
}

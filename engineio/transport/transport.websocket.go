package transport

import (
	"context"
	"errors"
	"sync"

	eiop "github.com/njones/eioclient/engineio/protocol"
	"github.com/njones/eioclient/internal/option"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	ws "nhooyr.io/websocket"
)

const defaultReadLimit = 1 << 20

// WebsocketTransport carries one engine.io packet per websocket message.
type WebsocketTransport struct {
	*Transport

	dialOptions *ws.DialOptions
	readLimit   int64

	connMu sync.Mutex
	conn   *ws.Conn
	group  *errgroup.Group
}

func NewWebsocketTransport(opts ...Option) *WebsocketTransport {
	t := &WebsocketTransport{
		Transport: newTransport(Websocket),
		readLimit: defaultReadLimit,
	}
	t.opener, t.closer, t.writer = t, t, t
	t.With(opts...)
	return t
}

func (t *WebsocketTransport) With(opts ...Option) { option.Apply(t, opts...) }

func (t *WebsocketTransport) URI() string { return t.uri("wss", "ws") }

// DoOpen dials the server and starts the read loop.
func (t *WebsocketTransport) DoOpen() error {
	ctx := t.context()

	conn, _, err := ws.Dial(ctx, t.URI(), t.dialOptions)
	if err != nil {
		if ctx.Err() == nil {
			t.onError(ErrWebsocketDial, err)
		}
		return err
	}
	conn.SetReadLimit(t.readLimit)

	grp, gctx := errgroup.WithContext(ctx)

	t.connMu.Lock()
	t.conn, t.group = conn, grp
	t.connMu.Unlock()

	t.onOpen()

	grp.Go(func() error { return t.read(gctx, conn) })
	return nil
}

// Wait blocks until the read loop has ended and returns its error.
func (t *WebsocketTransport) Wait() error {
	t.connMu.Lock()
	grp := t.group
	t.connMu.Unlock()

	if grp == nil {
		return nil
	}
	return grp.Wait()
}

func (t *WebsocketTransport) read(ctx context.Context, conn *ws.Conn) error {
	for {
		typ, data, err := conn.Read(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			switch status := ws.CloseStatus(err); status {
			case ws.StatusNormalClosure, ws.StatusGoingAway:
				t.log.Debug("websocket closed by peer", zap.Int("status", int(status)))
				return nil
			}

			switch t.ReadyState() {
			case StateClosing, StateClosed:
				return nil
			}
			t.onError(ErrWebsocketRead, err)
			return err
		}

		t.onData(data, typ == ws.MessageBinary)
	}
}

// Write sends each packet as its own message. Failures are reported as
// error events and the rest of the packets are still sent.
func (t *WebsocketTransport) Write(packets []eiop.Packet) error {
	t.setWritable(false)
	defer func() {
		t.setWritable(true)
		t.emit(Emit{Event: EventDrain})
	}()

	t.connMu.Lock()
	conn := t.conn
	t.connMu.Unlock()

	if conn == nil {
		return ErrNotOpen
	}

	ctx := t.context()
	for _, packet := range packets {
		data, isBinary, err := t.codec.EncodePacket(packet, t.supportsBinary)
		if err != nil {
			t.onError(ErrEncodeFailed, err)
			continue
		}

		typ := ws.MessageText
		if isBinary {
			typ = ws.MessageBinary
		}

		if err := conn.Write(ctx, typ, data); err != nil {
			t.onError(ErrWebsocketSend, err)
			continue
		}
		t.metrics.sent(t.name, 1)
	}
	return nil
}

// DoClose closes the websocket with a normal closure, the read loop stops
// when the transport context is cancelled.
func (t *WebsocketTransport) DoClose() error {
	t.connMu.Lock()
	conn := t.conn
	t.connMu.Unlock()

	if conn == nil {
		return nil
	}

	t.log.Debug("closing websocket")
	err := conn.Close(ws.StatusNormalClosure, "")
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

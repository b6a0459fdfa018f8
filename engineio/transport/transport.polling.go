package transport

import (
	"sync"
	"sync/atomic"
	"time"

	eiop "github.com/njones/eioclient/engineio/protocol"
	"go.uber.org/zap"
)

// PollingTransport drives the long-poll loop. The request itself is made by
// the Poller and PayloadWriter it was built with.
type PollingTransport struct {
	*Transport

	poller  Poller
	payload PayloadWriter

	polling bool // guarded by Transport.mu
	loop    sync.WaitGroup
}

func newPollingTransport(poller Poller, payload PayloadWriter) *PollingTransport {
	p := &PollingTransport{
		Transport: newTransport(Polling),
		poller:    poller,
		payload:   payload,
	}
	p.opener, p.closer, p.writer = p, p, p
	return p
}

// DoOpen starts the poll loop in the background.
func (p *PollingTransport) DoOpen() error {
	p.loop.Add(1)
	go func() {
		defer p.loop.Done()
		for p.Poll() {
		}
	}()
	return nil
}

// Wait blocks until the background poll loop has ended.
func (p *PollingTransport) Wait() { p.loop.Wait() }

// Poll issues a single poll request and reports whether the transport wants
// the next one. It is a no-op while another poll is in flight, and an owner
// can call it to resume polling after a failed request or a pause.
func (p *PollingTransport) Poll() bool {
	p.mu.Lock()
	if p.polling || p.ctx.Err() != nil {
		p.mu.Unlock()
		return false
	}
	p.polling = true
	p.mu.Unlock()

	p.log.Debug("polling")
	p.metrics.polled(p.name)

	more, err := p.poller.DoPoll()
	if err != nil || !more {
		p.stopPolling()
	}
	if err != nil {
		p.log.Debug("poll failed", zap.Error(err))

		// the handshake will not come, finish a close waiting on it
		if p.ReadyState() == StateClosing {
			p.abortDeferredClose()
			p.onClose()
		}
	}

	p.emit(Emit{Event: EventPoll})
	return more && err == nil
}

func (p *PollingTransport) stopPolling() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.polling = false
}

// halt closes the transport from inside a poll, the poll in flight ends with it.
func (p *PollingTransport) halt() {
	p.stopPolling()
	p.onClose()
}

// onData decodes a payload and dispatches its packets in order. It returns
// true when the transport is still open and another poll should follow.
func (p *PollingTransport) onData(data []byte, isBinary bool) bool {
	p.log.Debug("polling got data", zap.Int("size", len(data)), zap.Bool("binary", isBinary))

	payload, err := p.codec.DecodePayload(data, isBinary)
	if err != nil {
		p.stopPolling()
		p.onError(ErrDecodeFailed, err)
		return false
	}

	for i, packet := range payload {
		switch p.ReadyState() {
		case StateOpening, StateClosing:
			p.onOpen()
			if p.ReadyState() != StateOpen {
				return false // a deferred close ran on open
			}
		}

		if packet.T == eiop.ClosePacket {
			p.log.Debug("close packet", zap.Int("index", i), zap.Int("total", len(payload)))
			p.halt()
			return false
		}

		p.onPacket(packet)
	}

	p.mu.Lock()
	state, sid := p.readyState, p.sid
	p.mu.Unlock()

	if state == StateOpen && sid.IsZero() {
		p.onError(ErrNoSessionID, nil)
		p.halt()
		return false
	}
	if state == StateClosed {
		return false
	}

	p.stopPolling()
	p.emit(Emit{Event: EventPollComplete})

	if state == StateOpen {
		return true
	}

	p.log.Debug("ignoring poll", zap.Stringer("state", state))
	return false
}

// Write sends packets as one payload. The transport is not writable until
// the request is done, then drain is emitted.
func (p *PollingTransport) Write(packets []eiop.Packet) error {
	p.setWritable(false)
	defer func() {
		p.setWritable(true)
		p.emit(Emit{Event: EventDrain})
	}()

	data, isBinary, err := p.codec.EncodePayload(packets, p.supportsBinary)
	if err != nil {
		p.onError(ErrEncodeFailed, err)
		return err
	}

	if err := p.payload.DoWrite(data, isBinary); err != nil {
		return err
	}

	p.metrics.sent(p.name, len(packets))
	return nil
}

// DoClose writes a close packet. While the handshake is still pending the
// write waits for the transport to open.
func (p *PollingTransport) DoClose() error {
	closePacket := func() error {
		p.log.Debug("writing close packet")
		return p.Write([]eiop.Packet{{T: eiop.ClosePacket}})
	}

	if p.ReadyState() == StateOpen {
		return closePacket()
	}

	p.log.Debug("transport not open, deferring close")
	p.deferClose(p.Once(EventOpen, func(Emit) {
		if err := closePacket(); err != nil {
			p.log.Debug("close failed", zap.Error(err))
		}
		p.halt()
	}))
	return ErrCloseDeferred
}

// Pause stops polling once the in flight poll and write are done. With
// noWait it returns at once, otherwise it waits up to timeout and fails with
// ErrPauseTimeout, leaving the transport pausing.
func (p *PollingTransport) Pause(noWait bool, timeout time.Duration) error {
	done := make(chan struct{})

	p.mu.Lock()
	p.readyState = StatePausing

	var waitFor []Event
	if p.polling {
		waitFor = append(waitFor, EventPollComplete)
	}
	if !p.writable {
		waitFor = append(waitFor, EventDrain)
	}

	var offs []func()
	if len(waitFor) == 0 {
		p.readyState = StatePaused
		close(done)
	} else {
		var pending = int32(len(waitFor))
		for _, event := range waitFor {
			offs = append(offs, p.Once(event, func(Emit) {
				if atomic.AddInt32(&pending, -1) > 0 {
					return
				}
				p.mu.Lock()
				if p.readyState == StatePausing {
					p.readyState = StatePaused
				}
				p.mu.Unlock()
				close(done)
			}))
		}
	}
	p.mu.Unlock()

	p.log.Debug("pausing", zap.Int("pending", len(waitFor)))

	if noWait {
		return nil
	}

	select {
	case <-done:
		return nil
	default:
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-done:
		return nil
	case <-timer.C:
		for _, off := range offs {
			off()
		}
		return ErrPauseTimeout
	}
}

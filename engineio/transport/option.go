package transport

import (
	"context"
	"net/url"

	eiop "github.com/njones/eioclient/engineio/protocol"
	"github.com/njones/eioclient/internal/option"
	"go.uber.org/zap"
	ws "nhooyr.io/websocket"
)

type Option = option.Option
type OptionWith = option.OptionWith

type innerTransport interface{ InnerTransport() *Transport }

func WithCodec(codec eiop.Codec) Option {
	return func(o OptionWith) {
		switch v := o.(type) {
		case innerTransport:
			v.InnerTransport().codec = codec
		}
	}
}

func WithHost(host string) Option {
	return func(o OptionWith) {
		switch v := o.(type) {
		case innerTransport:
			v.InnerTransport().host = host
		}
	}
}

// WithPort sets the server port, zero leaves it out of the uri.
func WithPort(port int) Option {
	return func(o OptionWith) {
		switch v := o.(type) {
		case innerTransport:
			v.InnerTransport().port = port
		}
	}
}

func WithPath(path string) Option {
	return func(o OptionWith) {
		switch v := o.(type) {
		case innerTransport:
			v.InnerTransport().path = path
		}
	}
}

func WithSecure(secure bool) Option {
	return func(o OptionWith) {
		switch v := o.(type) {
		case innerTransport:
			v.InnerTransport().secure = secure
		}
	}
}

// WithQuery adds extra query parameters to every request uri. The engine.io
// parameters always win over these.
func WithQuery(query url.Values) Option {
	return func(o OptionWith) {
		switch v := o.(type) {
		case innerTransport:
			t := v.InnerTransport()
			for key, vals := range query {
				t.query[key] = append(t.query[key], vals...)
			}
		}
	}
}

// WithForceBase64 turns off binary support, binary data then travels as
// base64 text and the first request asks for it with b64=1.
func WithForceBase64(force bool) Option {
	return func(o OptionWith) {
		switch v := o.(type) {
		case innerTransport:
			v.InnerTransport().supportsBinary = !force
		}
	}
}

func WithSessionID(sid SessionID) Option {
	return func(o OptionWith) {
		switch v := o.(type) {
		case innerTransport:
			v.InnerTransport().sid = sid
		}
	}
}

func WithLogger(log *zap.Logger) Option {
	return func(o OptionWith) {
		switch v := o.(type) {
		case innerTransport:
			t := v.InnerTransport()
			if log == nil {
				log = zap.NewNop()
			}
			t.log = log.Named("engineio").With(zap.Stringer("transport", t.name))
		}
	}
}

func WithMetrics(metrics *Metrics) Option {
	return func(o OptionWith) {
		switch v := o.(type) {
		case innerTransport:
			v.InnerTransport().metrics = metrics
		}
	}
}

// WithContext sets the parent of the context every request and the read
// loop run under.
func WithContext(ctx context.Context) Option {
	return func(o OptionWith) {
		switch v := o.(type) {
		case innerTransport:
			if ctx != nil {
				v.InnerTransport().parent = ctx
			}
		}
	}
}

func WithHTTPClient(client Requester) Option {
	return func(o OptionWith) {
		switch v := o.(type) {
		case *XHRPollingTransport:
			if client != nil {
				v.client = client
			}
		}
	}
}

func WithDialOptions(opts *ws.DialOptions) Option {
	return func(o OptionWith) {
		switch v := o.(type) {
		case *WebsocketTransport:
			v.dialOptions = opts
		}
	}
}

// WithReadLimit caps the size of a single inbound websocket message.
func WithReadLimit(n int64) Option {
	return func(o OptionWith) {
		switch v := o.(type) {
		case *WebsocketTransport:
			v.readLimit = n
		}
	}
}

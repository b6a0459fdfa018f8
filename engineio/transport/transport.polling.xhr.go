package transport

import (
	"bytes"
	"errors"
	"io"
	"mime"
	"net/http"

	"github.com/njones/eioclient/internal/option"
	"go.uber.org/zap"
)

const (
	contentTypeBinary = "application/octet-stream"
	contentTypeText   = "text/plain;charset=UTF-8"
)

// Requester does a single HTTP round trip, *http.Client fits.
type Requester interface {
	Do(*http.Request) (*http.Response, error)
}

// XHRPollingTransport is the long-polling transport over plain HTTP
// requests: GET to poll, POST to write.
type XHRPollingTransport struct {
	*PollingTransport

	client Requester
}

func NewXHRPollingTransport(opts ...Option) *XHRPollingTransport {
	t := &XHRPollingTransport{client: http.DefaultClient}
	t.PollingTransport = newPollingTransport(t, t)
	t.With(opts...)
	return t
}

func (t *XHRPollingTransport) With(opts ...Option) { option.Apply(t, opts...) }

// URI is the request uri, a fresh t parameter makes every call unique.
func (t *XHRPollingTransport) URI() string { return t.uri("https", "http") }

func (t *XHRPollingTransport) DoPoll() (bool, error) {
	resp, body, err := t.request(http.MethodGet, nil, false)
	if err != nil {
		return false, err
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return t.onLoad(resp.Header, body), nil
	}
	if resp.StatusCode >= 400 {
		t.onError(ErrRequestFailed, body)
		return false, ErrRequestFailed
	}

	t.log.Debug("unexpected poll status", zap.Int("status", resp.StatusCode))
	return t.ReadyState() == StateOpen, nil
}

func (t *XHRPollingTransport) DoWrite(data []byte, isBinary bool) error {
	resp, body, err := t.request(http.MethodPost, data, isBinary)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		t.onError(ErrRequestFailed, body)
		return ErrRequestFailed
	}
	return nil
}

// onLoad picks the payload out of a successful poll response. A client
// that supports binary only gets payloads as octet-stream, any other body
// is the "ok" acknowledgment.
func (t *XHRPollingTransport) onLoad(header http.Header, body []byte) bool {
	var data, isBinary = body, false

	mediaType, _, _ := mime.ParseMediaType(header.Get("Content-Type"))
	switch {
	case mediaType == contentTypeBinary:
		isBinary = true
	case t.supportsBinary:
		data = []byte("ok")
	}

	return t.onData(data, isBinary)
}

// request does one round trip under the transport context. Errors after
// the transport was closed are dropped silently.
func (t *XHRPollingTransport) request(method string, data []byte, isBinary bool) (*http.Response, []byte, error) {
	ctx := t.context()

	var body io.Reader
	if data != nil {
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, t.URI(), body)
	if err != nil {
		t.onError(ErrRequestFailed, err)
		return nil, nil, err
	}

	if method == http.MethodPost {
		req.Header.Set("Content-Type", contentTypeText)
		if isBinary {
			req.Header.Set("Content-Type", contentTypeBinary)
		}
	}

	t.log.Debug("xhr request", zap.String("method", method), zap.String("uri", req.URL.String()))

	resp, err := t.client.Do(req)
	if err != nil {
		if ctx.Err() == nil {
			t.onError(ErrRequestFailed, err)
		}
		return nil, nil, err
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil && !errors.Is(err, io.EOF) {
		if ctx.Err() == nil {
			t.onError(ErrRequestFailed, err)
		}
		return nil, nil, err
	}

	return resp, b, nil
}

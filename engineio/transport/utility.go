package transport

import (
	"net"
	"net/url"
	"strconv"
	"strings"
)

// uri builds the request uri for the transport. The port is left out when
// it is the default for the scheme.
func (t *Transport) uri(secureScheme, scheme string) string {
	t.mu.Lock()
	sid := t.sid
	t.mu.Unlock()

	query := url.Values{}
	for key, vals := range t.query {
		query[key] = append([]string(nil), vals...)
	}
	query.Set("EIO", strconv.Itoa(ProtocolVersion))
	query.Set("transport", t.name.String())
	query.Set("t", strconv.FormatInt(t.now().UnixMilli(), 10))
	if !sid.IsZero() {
		query.Set("sid", sid.String())
	}
	if !t.supportsBinary && sid.IsZero() {
		query.Set("b64", "1")
	}

	if t.secure {
		scheme = secureScheme
	}

	host := t.host
	if t.port > 0 && !(t.secure && t.port == 443) && !(!t.secure && t.port == 80) {
		host = net.JoinHostPort(strings.Trim(host, "[]"), strconv.Itoa(t.port))
	}

	u := url.URL{
		Scheme:   scheme,
		Host:     host,
		Path:     "/" + strings.TrimLeft(t.path, "/"),
		RawQuery: query.Encode(),
	}
	return u.String()
}

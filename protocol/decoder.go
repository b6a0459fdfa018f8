package protocol

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Decoder reads packets in the socket.io text format. A binary packet is
// held back until all of its attachments were added.
type Decoder struct {
	pending *Packet
	buffers []Blob
}

// Add feeds one engine.io message, a string or []byte, to the decoder. It
// returns the packet and true once a packet is complete.
func (dec *Decoder) Add(v interface{}) (Packet, bool, error) {
	switch val := v.(type) {
	case string:
		if dec.pending != nil {
			dec.reset()
			return Packet{}, false, ErrUnexpectedText
		}

		packet, err := decodeString(val)
		if err != nil {
			return Packet{}, false, err
		}
		if packet.Type.IsBinary() && packet.Attachments > 0 {
			dec.pending = &packet
			return Packet{}, false, nil
		}
		return packet, true, nil
	case []byte, Blob:
		if dec.pending == nil {
			return Packet{}, false, ErrUnexpectedBinary
		}

		var blob Blob
		switch raw := val.(type) {
		case []byte:
			blob = Blob(raw)
		case Blob:
			blob = raw
		}
		dec.buffers = append(dec.buffers, blob)
		if len(dec.buffers) < dec.pending.Attachments {
			return Packet{}, false, nil
		}

		packet, err := ReconstructPacket(*dec.pending, dec.buffers)
		dec.reset()
		if err != nil {
			return Packet{}, false, err
		}
		return packet, true, nil
	}

	return Packet{}, false, ErrInvalidData.F(v)
}

// Pending reports if the decoder waits for attachments.
func (dec *Decoder) Pending() bool { return dec.pending != nil }

func (dec *Decoder) reset() { dec.pending, dec.buffers = nil, nil }

func decodeString(str string) (Packet, error) {
	var packet = Packet{Namespace: "/"}

	if len(str) == 0 {
		return packet, ErrEmptyPacket
	}

	if str[0] < '0' || str[0] > '9' {
		return packet, ErrInvalidPacketType.F(str[:1])
	}
	packet.Type = PacketType(str[0] - '0')
	if !packet.Type.Valid() {
		return packet, ErrInvalidPacketType.F(str[:1])
	}
	str = str[1:]

	if packet.Type.IsBinary() {
		idx := strings.IndexByte(str, '-')
		if idx < 0 {
			return packet, ErrBadParse.F("attachments", strconv.ErrSyntax)
		}
		n, err := strconv.Atoi(str[:idx])
		if err != nil {
			return packet, ErrBadParse.F("attachments", err)
		}
		packet.Attachments, str = n, str[idx+1:]
	}

	if strings.HasPrefix(str, "/") {
		nsp := str
		if idx := strings.IndexByte(str, ','); idx > -1 {
			nsp, str = str[:idx], str[idx+1:]
		} else {
			str = ""
		}
		// the query a client connects a namespace with is not part of it
		if idx := strings.IndexByte(nsp, '?'); idx > -1 {
			nsp = nsp[:idx]
		}
		packet.Namespace = nsp
	}

	var digits int
	for digits < len(str) && str[digits] >= '0' && str[digits] <= '9' {
		digits++
	}
	if digits > 0 {
		id, err := strconv.ParseUint(str[:digits], 10, 64)
		if err != nil {
			return packet, ErrBadParse.F("ack id", err)
		}
		packet.ID, str = &id, str[digits:]
	}

	if len(str) > 0 {
		var data interface{}
		if err := json.Unmarshal([]byte(str), &data); err != nil {
			return packet, ErrBadUnmarshal.F(err)
		}
		packet.Data = data
	}

	return packet, nil
}

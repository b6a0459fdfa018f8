package protocol

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Encoder writes packets in the socket.io text format.
type Encoder struct{}

// Encode returns the messages for packet: the text message first, then
// one []byte per attachment. Event and ack packets with binary data are
// sent as their binary flavor.
func (Encoder) Encode(packet Packet) ([]interface{}, error) {
	if !packet.Type.Valid() {
		return nil, ErrInvalidPacketType.F(strconv.Itoa(int(packet.Type)))
	}

	data, err := RemoveBlobs(packet.Data)
	if err != nil {
		return nil, err
	}
	packet.Data = data

	if HasBinary(packet.Data) {
		packet.Type = packet.Type.binary()
	}

	if packet.Type.IsBinary() {
		dec := DeconstructPacket(packet)
		text, err := encodeString(dec.Packet)
		if err != nil {
			return nil, err
		}

		out := make([]interface{}, 0, len(dec.Buffers)+1)
		out = append(out, text)
		for _, buf := range dec.Buffers {
			out = append(out, []byte(buf))
		}
		return out, nil
	}

	text, err := encodeString(packet)
	if err != nil {
		return nil, err
	}
	return []interface{}{text}, nil
}

func encodeString(packet Packet) (string, error) {
	var str bytes.Buffer

	str.WriteString(strconv.Itoa(int(packet.Type)))
	if packet.Type.IsBinary() {
		str.WriteString(strconv.Itoa(packet.Attachments))
		str.WriteByte('-')
	}

	if nsp := packet.namespace(); nsp != "" {
		str.WriteString(nsp)
		str.WriteByte(',')
	}

	if id, ok := packet.GetAckID(); ok {
		str.WriteString(strconv.FormatUint(id, 10))
	}

	if packet.Data != nil {
		enc := json.NewEncoder(&str)
		enc.SetEscapeHTML(false)
		if err := enc.Encode(packet.Data); err != nil {
			return "", ErrBadMarshal.F(err)
		}
		str.Truncate(str.Len() - 1) // the newline Encode adds
	}

	return str.String(), nil
}

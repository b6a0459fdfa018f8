package protocol

import (
	"fmt"

	"github.com/vmihailenco/msgpack"
)

// MarshalMsgpack encodes packet as a single msgpack message, the way the
// socket.io msgpack parser does. Binary leaves travel in place as msgpack
// bin values so no attachments are needed.
func MarshalMsgpack(packet Packet) ([]byte, error) {
	if !packet.Type.Valid() {
		return nil, ErrInvalidPacketType.F(fmt.Sprint(int(packet.Type)))
	}

	data, err := RemoveBlobs(packet.Data)
	if err != nil {
		return nil, err
	}
	packet.Data, packet.Attachments = data, 0
	if packet.Namespace == "" {
		packet.Namespace = "/"
	}

	out, err := msgpack.Marshal(packet)
	if err != nil {
		return nil, ErrEncodeFieldFailed.F(err)
	}
	return out, nil
}

// UnmarshalMsgpack decodes a packet written by MarshalMsgpack. Numbers in
// the data come back as float64 and binary as Blob, matching a JSON decode.
func UnmarshalMsgpack(b []byte) (Packet, error) {
	var packet Packet
	if err := msgpack.Unmarshal(b, &packet); err != nil {
		return Packet{}, ErrDecodeFieldFailed.F(err)
	}
	if !packet.Type.Valid() {
		return Packet{}, ErrInvalidPacketType.F(fmt.Sprint(int(packet.Type)))
	}
	if packet.Namespace == "" {
		packet.Namespace = "/"
	}
	packet.Data = normalize(packet.Data)
	return packet, nil
}

func normalize(v interface{}) interface{} {
	switch val := v.(type) {
	case []byte:
		return Blob(val)
	case []interface{}:
		for i, item := range val {
			val[i] = normalize(item)
		}
		return val
	case map[string]interface{}:
		for key, item := range val {
			val[key] = normalize(item)
		}
		return val
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(val))
		for key, item := range val {
			out[fmt.Sprint(key)] = normalize(item)
		}
		return out
	case float32:
		return float64(val)
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		n, _ := toInt(val)
		return float64(n)
	}
	return v
}

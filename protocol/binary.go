package protocol

import (
	"io"
	"sort"
)

// Blob is a raw binary leaf of a packet data tree.
type Blob []byte

// Placeholder stands in the data tree for the attachment at index Num.
type Placeholder struct {
	Placeholder bool `json:"_placeholder" msgpack:"_placeholder"`
	Num         int  `json:"num" msgpack:"num"`
}

// Deconstructed is a packet with its binary leaves pulled out.
type Deconstructed struct {
	Packet  Packet
	Buffers []Blob
}

// DeconstructPacket replaces every binary leaf of the packet data with a
// Placeholder. Leaves are numbered in array order and sorted map key order.
// The data of the packet passed in is not changed. A []byte leaf is taken
// as a Blob, so it comes back from ReconstructPacket as a Blob.
func DeconstructPacket(packet Packet) Deconstructed {
	var buffers []Blob
	packet.Data = deconstruct(packet.Data, &buffers)
	packet.Attachments = len(buffers)
	return Deconstructed{Packet: packet, Buffers: buffers}
}

func deconstruct(v interface{}, buffers *[]Blob) interface{} {
	switch val := v.(type) {
	case Blob:
		*buffers = append(*buffers, val)
		return Placeholder{Placeholder: true, Num: len(*buffers) - 1}
	case []byte:
		return deconstruct(Blob(val), buffers)
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			out[i] = deconstruct(item, buffers)
		}
		return out
	case map[string]interface{}:
		out := make(map[string]interface{}, len(val))
		for _, key := range sortedKeys(val) {
			out[key] = deconstruct(val[key], buffers)
		}
		return out
	}
	return v
}

// ReconstructPacket puts buffers back in place of the placeholders of the
// packet data. Placeholders may be Placeholder values or the maps a JSON
// decode leaves behind.
func ReconstructPacket(packet Packet, buffers []Blob) (Packet, error) {
	data, err := reconstruct(packet.Data, buffers)
	if err != nil {
		return packet, err
	}
	packet.Data, packet.Attachments = data, 0
	return packet, nil
}

func reconstruct(v interface{}, buffers []Blob) (interface{}, error) {
	switch val := v.(type) {
	case Placeholder:
		return attachment(val.Num, buffers)
	case *Placeholder:
		if val != nil {
			return attachment(val.Num, buffers)
		}
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			var err error
			if out[i], err = reconstruct(item, buffers); err != nil {
				return nil, err
			}
		}
		return out, nil
	case map[string]interface{}:
		if num, ok := placeholderNum(val); ok {
			return attachment(num, buffers)
		}
		out := make(map[string]interface{}, len(val))
		for key, item := range val {
			var err error
			if out[key], err = reconstruct(item, buffers); err != nil {
				return nil, err
			}
		}
		return out, nil
	}
	return v, nil
}

func attachment(num int, buffers []Blob) (Blob, error) {
	if num < 0 || num >= len(buffers) {
		return nil, ErrUnexpectedAttachmentEnd.KV("num", num, "buffers", len(buffers))
	}
	return buffers[num], nil
}

func placeholderNum(m map[string]interface{}) (int, bool) {
	if is, _ := m["_placeholder"].(bool); !is {
		return 0, false
	}
	return toInt(m["num"])
}

// RemoveBlobs turns readers and byte slices into Blob values, recursing
// into arrays and maps. Other values pass through.
func RemoveBlobs(v interface{}) (interface{}, error) {
	switch val := v.(type) {
	case Blob:
		return val, nil
	case []byte:
		return Blob(val), nil
	case io.Reader:
		raw, err := io.ReadAll(val)
		if err != nil {
			return nil, ErrReadFailed.F(err)
		}
		return Blob(raw), nil
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			var err error
			if out[i], err = RemoveBlobs(item); err != nil {
				return nil, err
			}
		}
		return out, nil
	case map[string]interface{}:
		out := make(map[string]interface{}, len(val))
		for key, item := range val {
			var err error
			if out[key], err = RemoveBlobs(item); err != nil {
				return nil, err
			}
		}
		return out, nil
	}
	return v, nil
}

// HasBinary reports if any leaf of v, at any depth, is binary.
func HasBinary(v interface{}) bool {
	switch val := v.(type) {
	case Blob, []byte, io.Reader:
		return true
	case []interface{}:
		for _, item := range val {
			if HasBinary(item) {
				return true
			}
		}
	case map[string]interface{}:
		for _, item := range val {
			if HasBinary(item) {
				return true
			}
		}
	}
	return false
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

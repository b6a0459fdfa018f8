package protocol

import (
	"bytes"
)

// Codec is the packet and payload codec a transport frames its data with.
type Codec interface {
	EncodePacket(packet Packet, supportsBinary bool) (data []byte, isBinary bool, err error)
	DecodePacket(data []byte, isBinary bool) (Packet, error)
	EncodePayload(packets []Packet, supportsBinary bool) (data []byte, isBinary bool, err error)
	DecodePayload(data []byte, isBinary bool) (Payload, error)
}

// CodecV3 implements Codec for engine.io protocol version 3.
type CodecV3 struct{}

var _ Codec = CodecV3{}

func (CodecV3) EncodePacket(packet Packet, supportsBinary bool) ([]byte, bool, error) {
	return encodeV3(packet, supportsBinary)
}

func (CodecV3) DecodePacket(data []byte, isBinary bool) (Packet, error) {
	var packet = PacketV3{IsBinary: isBinary}
	err := NewPacketDecoderV3(bytes.NewReader(data)).Decode(&packet)
	return packet.Packet, err
}

func (CodecV3) EncodePayload(packets []Packet, supportsBinary bool) ([]byte, bool, error) {
	var buf = new(bytes.Buffer)
	err := NewPayloadEncoderV3.SetBinary(supportsBinary).To(buf).WritePayload(Payload(packets))
	if err != nil {
		return nil, false, err
	}
	return buf.Bytes(), supportsBinary && Payload(packets).HasBinary(), nil
}

func (CodecV3) DecodePayload(data []byte, isBinary bool) (Payload, error) {
	var payload Payload
	err := NewPayloadDecoderV3.SetBinary(isBinary).From(bytes.NewReader(data)).ReadPayload(&payload)
	return payload, err
}
